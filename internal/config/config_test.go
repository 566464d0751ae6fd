package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.DatabasePath, "identity.db")
	assert.Equal(t, c.CacheSize, 1024)
	assert.Equal(t, c.CacheTTL, 5*time.Minute)
	assert.Equal(t, c.LogLevel, "info")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(c *Config)
		name    string
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty database path", mutate: func(c *Config) { c.DatabasePath = "" }, wantErr: true},
		{name: "zero cache size", mutate: func(c *Config) { c.CacheSize = 0 }, wantErr: true},
		{name: "zero cache ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
