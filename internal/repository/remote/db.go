package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverPostgres - Postgres бэкенда через pgx
	DriverPostgres = "pgx"
	// DriverSQLite - локальная база для разработки и тестов
	DriverSQLite = "sqlite3"
)

// DBConfig настройки подключения к базе
type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect открывает пул соединений и проверяет доступность базы
func Connect(ctx context.Context, cfg DBConfig) (*sqlx.DB, error) {
	var db *sqlx.DB

	switch cfg.Driver {
	case DriverPostgres, "postgres", "":
		// DSN → pgx config, затем sql.DB через stdlib-адаптер pgx
		pgxCfg, err := pgx.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}
		pgxCfg.ConnectTimeout = 5 * time.Second
		db = sqlx.NewDb(stdlib.OpenDB(*pgxCfg), DriverPostgres)

	case DriverSQLite:
		var err error
		db, err = sqlx.Open(DriverSQLite, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db: failed to open sqlite: %w", err)
		}
		// Каждое соединение к :memory: - отдельная база, поэтому одно соединение
		cfg.MaxOpenConns = 1

	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: failed to connect: %w", err)
	}

	return db, nil
}
