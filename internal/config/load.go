package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "VOCAB"

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"port":      "server.port",
	"log-level": "server.log_level",
	"migrate":   "database.auto_migrate",
}

// Load builds the configuration from, in increasing precedence: defaults, an
// optional YAML file named by --config, a .env file in the working directory,
// VOCAB_ prefixed environment variables and command line flags. The result is
// validated before it is returned.
func Load(args []string) (*Config, error) {
	// A missing .env file is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	flags := pflag.NewFlagSet("vocab-api", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a YAML configuration file")
	flags.Int("port", 0, "HTTP listen port")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("migrate", false, "apply database migrations on startup")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", *configFile, err)
		}
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validation tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setDefaults registers a default for every key. Viper only reads environment
// variables for keys it knows, so keys without a meaningful default are still
// registered with a zero value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("review.max_session_limit", 100)
	v.SetDefault("review.update_retries", 3)
	v.SetDefault("review.retry_base_delay", 20*time.Millisecond)

	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.interval", 10*time.Minute)
	v.SetDefault("sweeper.idle_timeout", 24*time.Hour)
	v.SetDefault("sweeper.batch_size", 100)
}
