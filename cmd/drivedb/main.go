package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/avolkov/drivedb/internal/config"
	"github.com/avolkov/drivedb/internal/db"
	"github.com/avolkov/drivedb/internal/logging"
)

func slogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("%v", err)
		return
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel(cfg.LogLevel)})
	logger := logging.NewSlogLogger(slog.New(handler))

	manager, err := db.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "failed to open identity database", "path", cfg.DatabasePath, "error", err)
		return
	}
	defer manager.Close()

	logger.Info(ctx, "identity database ready", "path", cfg.DatabasePath)

	stats, err := manager.Stats(ctx)
	if err != nil {
		logger.Error(ctx, "failed to collect table stats", "error", err)
		return
	}
	for table, n := range stats {
		logger.Info(ctx, "table stats", "table", table, "rows", n)
	}
}
