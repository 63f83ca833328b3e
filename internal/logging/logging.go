// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
)

// New creates a *slog.Logger writing JSON to stderr and installs it as the
// slog default so package-level slog calls share the same handler.
func New(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
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
