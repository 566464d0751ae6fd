// Package config handles configuration for the drivedb tooling, including
// defaults, JSON overlay, command-line flags and validation.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for opening an identity database.
//
// Fields:
//   - DatabasePath: path of the SQLite database file.
//   - CacheSize / CacheTTL: row cache capacity and entry lifetime.
//   - LogLevel: slog level (debug, info, warn, error).
type Config struct {
	DatabasePath string        `json:"database_path" validate:"required"`
	CacheSize    int           `json:"cache_size" validate:"gte=1"`
	CacheTTL     time.Duration `json:"-" validate:"gt=0"`
	LogLevel     string        `json:"log_level" validate:"oneof=debug info warn error"`
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "identity.db"
	c.CacheSize = 1024
	c.CacheTTL = 5 * time.Minute
	c.LogLevel = "info"
}

var validate = validator.New()

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. The
// result is validated before being returned.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
