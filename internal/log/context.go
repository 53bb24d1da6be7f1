package log

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const loggerKey contextKey = "logger"

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// WithRun tags the context logger with a fresh run ID so the records of one
// command invocation or one worker pass can be grouped.
func WithRun(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return NewContext(ctx, FromContext(ctx).With(FieldRunID, id)), id
}
