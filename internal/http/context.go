package http

import (
	"context"
	"log/slog"

	"github.com/example/calendar-events/internal/logging"
)

// ContextWithLogger returns a derived context carrying the request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithRequestID stores the identifier assigned by RequestLogger.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return logging.ContextWithRequestID(ctx, id)
}

// RequestIDFromContext returns the identifier assigned by RequestLogger.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return logging.RequestID(ctx)
}
