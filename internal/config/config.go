package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envPattern находит ${VAR} и ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults расширяет переменные окружения с поддержкой дефолтных значений
// Формат: ${VAR:-default}
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Извлекаем имя переменной и значение по умолчанию
		matches := envPattern.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}

		varName := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		// Пытаемся получить значение из переменных окружения
		value := os.Getenv(varName)
		if value == "" {
			// Если переменная не установлена, используем значение по умолчанию
			return defaultValue
		}
		return value
	})
}

// InitConfig читает конфигурационный файл и возвращает экземпляр конфигурации
// Использует generic для работы с произвольным типом конфигурации
func InitConfig[C any](configFile string) (*C, error) {
	v := viper.New()
	ext := strings.TrimLeft(filepath.Ext(configFile), ".")

	v.SetConfigFile(configFile)
	v.SetConfigType(ext)
	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	// Заменяем переменные окружения формата ${VAR:-default} на их значения
	for _, k := range v.AllKeys() {
		value := v.GetString(k)
		if value == "" {
			continue
		}
		// Используем кастомную функцию для поддержки дефолтных значений
		expanded := expandEnvWithDefaults(value)

		// Пытаемся определить тип значения и установить его правильно
		// Если значение выглядит как число или boolean, пытаемся распарсить
		if expanded == "true" || expanded == "false" {
			boolValue, _ := strconv.ParseBool(expanded)
			v.Set(k, boolValue)
		} else if intValue, err := strconv.Atoi(expanded); err == nil {
			v.Set(k, intValue)
		} else {
			v.Set(k, expanded)
		}
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек и заполняет значения по умолчанию
func (c *Config) Validate() error {
	if c.Server == nil {
		c.Server = &ConfigServer{}
	}
	if c.Gateway == nil {
		c.Gateway = &ConfigGateway{}
	}
	if c.Logger == nil {
		c.Logger = &ConfigLogger{}
	}
	if c.Repository == nil {
		c.Repository = &ConfigRepository{}
	}
	if c.Auth == nil {
		c.Auth = &ConfigAuth{}
	}
	if c.Storage == nil {
		c.Storage = &ConfigStorage{}
	}

	if c.Repository.Backend == "" {
		c.Repository.Backend = BackendMemory
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}

	switch c.Repository.Backend {
	case BackendMemory:
	case BackendRemote:
		if c.Database == nil || c.Database.DSN == "" {
			return fmt.Errorf("repository.backend=%s requires database.dsn", BackendRemote)
		}
		// Удаленный репозиторий берет автора из сессии, без секрета сессий не будет
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("repository.backend=%s requires auth.jwt_secret", BackendRemote)
		}
	default:
		return fmt.Errorf("unknown repository.backend %q", c.Repository.Backend)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRemote:
		if c.Storage.BaseURL == "" {
			return fmt.Errorf("storage.backend=%s requires storage.base_url", BackendRemote)
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	return nil
}

// AcceptedTypes возвращает список допустимых типов файлов
func (s *ConfigStorage) AcceptedTypes() []string {
	var types []string
	for _, t := range strings.Split(s.AcceptedFileTypes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}
