package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/shelfgrab/shelfgrab/config"
)

func main() {
	// .env is optional; the OpenRouter key usually lives there.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	cfg := config.Load()
	initLogger(cfg.Log)

	if err := newRootCmd(cfg).Execute(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
