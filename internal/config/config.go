package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds all application configuration
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"data/app.db"`
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`

	// RepliesPath points at an optional YAML file overriding the built-in
	// coach reply book. Empty means use the defaults.
	RepliesPath string `env:"REPLIES_PATH"`

	// AllowedOrigins is the CORS origin allowlist. Empty allows any origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
