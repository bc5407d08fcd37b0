package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// ReviewConfig contains settings for the review service.
type ReviewConfig struct {
	// MaxSessionLimit caps the number of cards in a new session.
	MaxSessionLimit int `mapstructure:"max_session_limit" validate:"gte=1,lte=100"`
	// UpdateRetries bounds how often a card update is retried after a version conflict.
	UpdateRetries  uint64        `mapstructure:"update_retries" validate:"lte=10"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gt=0"`
}

// SweeperConfig contains settings for the idle session sweeper.
type SweeperConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval" validate:"gte=1s"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=1m"`
	BatchSize   int           `mapstructure:"batch_size" validate:"gte=1"`
}
