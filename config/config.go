// Package config loads process configuration for the trident binary
// from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config controls the trident binary: the HTTP listener, logging, the
// registry execution limits, and the identity advertised to MCP
// clients.
type Config struct {
	HTTPAddr        string        `env:"TRIDENT_HTTP_ADDR"        envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"TRIDENT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"TRIDENT_REQUEST_TIMEOUT"  envDefault:"30s"`
	MaxConcurrency  int           `env:"TRIDENT_MAX_CONCURRENCY"  envDefault:"0"`
	LogLevel        string        `env:"TRIDENT_LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"TRIDENT_LOG_FORMAT"       envDefault:"console"`
	ServerName      string        `env:"TRIDENT_SERVER_NAME"      envDefault:"trident"`
}

// Load reads configuration from the environment, after applying a .env
// file when one is present in the working directory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json; got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive; got %s", c.ShutdownTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive; got %s", c.RequestTimeout)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency must not be negative; got %d", c.MaxConcurrency)
	}
	return nil
}
