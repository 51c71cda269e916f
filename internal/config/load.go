package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. VOICETASK_DATABASE_URL for database.url.
const EnvPrefix = "VOICETASK"

// defaults lists every configuration key. Registering a key here is also
// what lets viper resolve it from the environment during Unmarshal.
var defaults = map[string]any{
	"server.port":                   8080,
	"server.log_level":              "info",
	"server.read_timeout":           15 * time.Second,
	"server.write_timeout":          30 * time.Second,
	"database.url":                  "",
	"database.max_open_conns":       10,
	"database.max_idle_conns":       5,
	"database.conn_max_lifetime":    5 * time.Minute,
	"auth.jwt_secret":               "",
	"auth.token_lifetime_minutes":   60 * 24,
	"auth.bcrypt_cost":              12,
	"cron.secret":                   "",
	"retention.days":                30,
	"retention.purge_interval":      time.Duration(0),
	"storage.audio_dir":             "uploads/voice-notes",
	"storage.public_base_path":      "/uploads/voice-notes",
	"storage.max_upload_bytes":      int64(25 << 20),
	"ratelimit.requests_per_second": 1.0,
	"ratelimit.burst":               10,
	"ratelimit.window":              time.Minute,
	"ratelimit.redis_url":           "",
}

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over
// values from the file.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom loads configuration into v, which may already carry bound CLI
// flags. A non-empty configFile must exist; otherwise config.yaml is read
// from the working directory when present.
func LoadFrom(v *viper.Viper, configFile string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// PurgeRetention is the retention window as a duration.
func (c RetentionConfig) PurgeRetention() time.Duration {
	return time.Duration(c.Days) * 24 * time.Hour
}
