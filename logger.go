package rascal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with consistent field names for engine operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
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
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithName adds a snapshot name field.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{Logger: l.Logger.With("name", name)}
}

// WithShape adds the samples and features counts of a result.
func (l *Logger) WithShape(samples, features int) *Logger {
	return &Logger{Logger: l.Logger.With("samples", samples, "features", features)}
}

// LogDensify logs a densify operation.
func (l *Logger) LogDensify(ctx context.Context, variables []string, features int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "densify failed",
			"variables", strings.Join(variables, ","),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "densify completed",
		"variables", strings.Join(variables, ","),
		"features", features,
		"duration", duration,
	)
}

// LogDot logs a dot operation.
func (l *Logger) LogDot(ctx context.Context, rows, cols int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dot failed",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "dot completed",
		"rows", rows,
		"cols", cols,
		"duration", duration,
	)
}

// LogSave logs a snapshot write.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"name", name,
		"bytes", bytes,
	)
}

// LogLoad logs a snapshot read.
func (l *Logger) LogLoad(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "snapshot loaded",
		"name", name,
	)
}
