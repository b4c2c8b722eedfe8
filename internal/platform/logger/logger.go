// Package logger provides structured logging functionality for the
// application using Go's standard library log/slog package, plus helpers
// for carrying a request-scoped logger through context.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// contextKey is the private key type for the context-carried logger.
type contextKey struct{}

// loggerKey is the context key under which the request logger travels.
var loggerKey = contextKey{}

// Setup initializes the application's logging system: a structured JSON
// logger at the configured level, installed as the process default so the
// slog package functions work everywhere.
func Setup(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	return logger
}

// parseLevel maps a configured level name to a slog.Level, falling back to
// info and warning about anything unrecognized.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
		return slog.LevelInfo
	}
}

// WithLogger returns a context carrying the given logger, typically
// enriched with request-scoped attributes like a trace ID.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context, or the process
// default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, preferring
// the given fallback over the process default when none was attached.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
