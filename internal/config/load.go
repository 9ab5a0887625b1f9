package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g.
// SRS_SERVER_PORT or SRS_DATABASE_URL.
const envPrefix = "SRS"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults carry the
		// full configuration. Anything else is a real problem.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// setDefaults registers a default for every key so AutomaticEnv can see
// the corresponding environment variables.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.session_ttl", "24h")

	v.SetDefault("database.url", "")

	v.SetDefault("cache.path", "./data/review-cache")
	v.SetDefault("cache.in_memory", false)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("catalog.path", "")

	v.SetDefault("scheduler.again_review_minutes", 0)
	v.SetDefault("scheduler.first_interval", 0)
	v.SetDefault("scheduler.second_interval", 0)
	v.SetDefault("scheduler.mastered_repetitions", 0)

	v.SetDefault("writer.queue_size", 0)
	v.SetDefault("writer.worker_count", 0)
	v.SetDefault("writer.write_timeout", "0s")
}
