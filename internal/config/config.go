// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix for environment variables, e.g. TETRIS_PORT.
const envPrefix = "tetris"

// Config holds all server settings.
type Config struct {
	Host string `envconfig:"HOST" default:""`
	Port int    `envconfig:"PORT" default:"8080"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// StorageType selects "memory" or "redis".
	StorageType string `envconfig:"STORAGE_TYPE" default:"memory"`
	RedisURL    string `envconfig:"REDIS_URL" default:""`

	SessionDuration time.Duration `envconfig:"SESSION_DURATION" default:"24h"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}

	if cfg.StorageType == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("TETRIS_REDIS_URL required when TETRIS_STORAGE_TYPE=redis")
	}

	return cfg, nil
}
