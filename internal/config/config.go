package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Cron      CronConfig      `mapstructure:"cron"`
	Retention RetentionConfig `mapstructure:"retention" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel     string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// CronConfig holds the shared secret for scheduler-triggered endpoints.
// An empty Secret is allowed at load time; the purge endpoint refuses to run
// without one.
type CronConfig struct {
	Secret string `mapstructure:"secret"`
}

// RetentionConfig controls how long soft-deleted tasks are kept.
// A zero PurgeInterval disables the in-process purge schedule.
type RetentionConfig struct {
	Days          int           `mapstructure:"days" validate:"required,gt=0"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// StorageConfig configures where uploaded audio is kept and how it is addressed.
type StorageConfig struct {
	AudioDir       string `mapstructure:"audio_dir" validate:"required"`
	PublicBasePath string `mapstructure:"public_base_path" validate:"required,startswith=/"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// RateLimitConfig configures throttling of the authentication endpoints.
// With RedisURL set the limit is shared across instances as Burst requests
// per Window; otherwise each instance keeps an in-memory token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"gt=0"`
	Window            time.Duration `mapstructure:"window"`
	RedisURL          string        `mapstructure:"redis_url" validate:"omitempty,url"`
}
