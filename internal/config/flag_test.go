package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "all flags set", args: []string{"cmd",
			"-d", "/tmp/identity.db", "-s", "2048", "-t", "10", "-l", "debug",
		},
			expected: &Config{
				DatabasePath: "/tmp/identity.db",
				CacheSize:    2048,
				CacheTTL:     10 * time.Minute,
				LogLevel:     "debug",
			}},
		{name: "unrelated flags are ignored", args: []string{"cmd",
			"-d", "/tmp/identity.db", "-x", "whatever",
		},
			expected: &Config{
				DatabasePath: "/tmp/identity.db",
				CacheSize:    1024,
				CacheTTL:     5 * time.Minute,
				LogLevel:     "info",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })
			os.Args = tt.args

			config := &Config{}
			config.LoadDefaults()

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
