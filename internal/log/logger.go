// Package log configures structured logging for the tracker binaries.
package log

import (
	"log/slog"
	"os"
)

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Service string
	JSON    bool
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig(service string) Config {
	return Config{
		Level:   slog.LevelInfo,
		Service: service,
	}
}

// Setup builds a slog.Logger from the configuration and installs it as the
// process default, so slog.InfoContext and friends pick it up everywhere.
func Setup(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", cfg.Service)
	slog.SetDefault(logger)
	return logger
}
