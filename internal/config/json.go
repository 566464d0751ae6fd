package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/avolkov/drivedb/internal/flagx"
)

// jsonConfig mirrors Config for file overlay; pointer fields distinguish
// "absent" from "zero", and the TTL is a duration string ("5m").
type jsonConfig struct {
	DatabasePath *string `json:"database_path"`
	CacheSize    *int    `json:"cache_size"`
	CacheTTL     *string `json:"cache_ttl"`
	LogLevel     *string `json:"log_level"`
}

// parseJSON overlays cfg with values from the file given via -c/-config,
// if any. A missing flag is not an error; an unreadable or invalid file is.
func parseJSON(cfg *Config) error {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.CacheSize != nil {
		cfg.CacheSize = *jc.CacheSize
	}
	if jc.CacheTTL != nil {
		d, err := time.ParseDuration(*jc.CacheTTL)
		if err != nil {
			return fmt.Errorf("failed to parse cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
