package http

import (
	"context"
	"log/slog"

	"github.com/example/calendar-events/internal/logging"
)

// handlerLogger prefers the request logger installed by RequestLogger and
// falls back to the handler's own logger tagged with the request id.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, fallback, "handler", handlerName, operation, attrs...)
}
