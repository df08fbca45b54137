// Package logging provides the structured logger shared by all cf4j passes.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with cf4j-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// WithMetric adds a similarity metric field to the logger.
func (l *Logger) WithMetric(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("metric", name),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithSide adds the processed side ("user" or "item") to the logger.
func (l *Logger) WithSide(side string) *Logger {
	return &Logger{
		Logger: l.Logger.With("side", side),
	}
}

// WithWorkers adds a worker count field to the logger.
func (l *Logger) WithWorkers(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("workers", n),
	}
}

// LogPass logs one partitioned pass.
func (l *Logger) LogPass(ctx context.Context, pass string, domainSize int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pass failed",
			"pass", pass,
			"domain", domainSize,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "pass completed",
			"pass", pass,
			"domain", domainSize,
			"duration", duration,
		)
	}
}

// LogFit logs a recommender fit (similarity pass followed by neighbor pass).
func (l *Logger) LogFit(ctx context.Context, entities int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"entities", entities,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "fit completed",
			"entities", entities,
			"duration", duration,
		)
	}
}

// LogSnapshot logs a snapshot write or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"op", op,
			"name", name,
			"bytes", bytes,
		)
	}
}
