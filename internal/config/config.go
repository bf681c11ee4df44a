package config

// Store backends accepted by store.backend.
const (
	BackendPostgres = "postgres"
	BackendAzTables = "aztables"
	BackendMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Store      StoreConfig      `mapstructure:"store"      validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	AzTables   AzTablesConfig   `mapstructure:"aztables"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Validation ValidationConfig `mapstructure:"validation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int      `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string   `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"          validate:"dive,required"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gte=1,lte=300"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=postgres aztables memory"`
}

// DatabaseConfig contains PostgreSQL settings. URL is required only when
// the postgres backend is selected.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"omitempty,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AzTablesConfig contains Azure Table Storage settings.
type AzTablesConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	TableName        string `mapstructure:"table_name"        validate:"required,alphanum,min=3,max=63"`
}

// CacheConfig enables the Redis read cache when RedisURL is set.
type CacheConfig struct {
	RedisURL   string `mapstructure:"redis_url"   validate:"omitempty,url"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=1"`
}

// Enabled reports whether a Redis cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

// ValidationConfig tunes the task input rules.
type ValidationConfig struct {
	DescriptionMaxLength int `mapstructure:"description_max_length" validate:"gte=1,lte=10000"`
}
