package config

// ConfigLogger настройки логирования
type ConfigLogger struct {
	// Level: "debug" включает подробные логи gRPC (grpclog)
	Level string `mapstructure:"level"`
}

// ConfigServer настройки сервера
type ConfigServer struct {
	UseReflection           bool `mapstructure:"use_reflection"`
	PortGRPC                int  `mapstructure:"port_grpc"`
	PortHTTP                int  `mapstructure:"port_http"`
	HTTPReadTimeout         int  `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int  `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int  `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int  `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int  `mapstructure:"graceful_shutdown_timeout"`
	MaxConcurrentStreams    int  `mapstructure:"max_concurrent_streams"`
}

// ConfigGateway настройки HTTP Gateway
type ConfigGateway struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
	MaxBodyBytes       int64  `mapstructure:"max_body_bytes"`
}

// Варианты хранилищ
const (
	BackendMemory = "memory"
	BackendRemote = "remote"
)

// ConfigRepository выбирает реализацию репозитория постов
type ConfigRepository struct {
	Backend string `mapstructure:"backend"` // memory | remote
}

// ConfigDatabase настройки подключения к базе бэкенда
type ConfigDatabase struct {
	Driver          string `mapstructure:"driver"` // pgx | sqlite3
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // секунды
	Migrate         bool   `mapstructure:"migrate"`
}

// ConfigAuth настройки проверки токенов
type ConfigAuth struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	DefaultAuthorID string `mapstructure:"default_author_id"`
}

// ConfigStorage настройки хранилища картинок
type ConfigStorage struct {
	Backend           string `mapstructure:"backend"` // memory | remote
	BaseURL           string `mapstructure:"base_url"`
	Bucket            string `mapstructure:"bucket"`
	APIKey            string `mapstructure:"api_key"`
	PublicBaseURL     string `mapstructure:"public_base_url"`
	MaxSize           int64  `mapstructure:"max_size"`
	AcceptedFileTypes string `mapstructure:"accepted_file_types"` // через запятую
}

// Config основная структура конфигурации
type Config struct {
	Logger     *ConfigLogger     `mapstructure:"logger"`
	Server     *ConfigServer     `mapstructure:"server"`
	Gateway    *ConfigGateway    `mapstructure:"gateway"`
	Repository *ConfigRepository `mapstructure:"repository"`
	Database   *ConfigDatabase   `mapstructure:"database"`
	Auth       *ConfigAuth       `mapstructure:"auth"`
	Storage    *ConfigStorage    `mapstructure:"storage"`
}
