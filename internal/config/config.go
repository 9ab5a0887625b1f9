package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Writer    WriterConfig    `mapstructure:"writer"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`

	// SessionTTL is how long an untouched session stays registered before
	// the server reclaims it. Zero disables idle eviction.
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"min=0"`
}

// DatabaseConfig contains the remote review-record store settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// CacheConfig contains the local review-record cache settings.
type CacheConfig struct {
	// Path is the on-disk location of the cache. Ignored when InMemory is set.
	Path     string `mapstructure:"path" validate:"required_without=InMemory"`
	InMemory bool   `mapstructure:"in_memory"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// CatalogConfig points at the learnable-item inventory. An empty path uses
// the embedded default catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig overrides individual scheduling parameters. Zero values
// keep the defaults, so a config file only needs to name what it changes.
type SchedulerConfig struct {
	AgainReviewMinutes  int `mapstructure:"again_review_minutes" validate:"min=0"`
	FirstInterval       int `mapstructure:"first_interval" validate:"min=0"`
	SecondInterval      int `mapstructure:"second_interval" validate:"min=0"`
	MasteredRepetitions int `mapstructure:"mastered_repetitions" validate:"min=0"`
}

// WriterConfig tunes the write-behind persistence queue.
type WriterConfig struct {
	QueueSize    int           `mapstructure:"queue_size" validate:"min=0"`
	WorkerCount  int           `mapstructure:"worker_count" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
}
