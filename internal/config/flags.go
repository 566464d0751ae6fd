package config

import (
	"flag"
	"os"
	"time"

	"github.com/avolkov/drivedb/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   database file path
//	-s int      row cache size (entries)
//	-t int      row cache TTL, minutes
//	-l string   log level (debug, info, warn, error)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "database file path")
	fs.IntVar(&config.CacheSize, "s", config.CacheSize, "row cache size (entries)")
	cacheTTLMinutes := fs.Int("t", int(config.CacheTTL.Minutes()), "row cache TTL (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return
	}

	config.CacheTTL = time.Duration(*cacheTTLMinutes) * time.Minute
}
