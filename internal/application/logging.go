package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/calendar-events/internal/logging"
	"github.com/example/calendar-events/internal/weather"
)

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSuggestionSuperseded), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, weather.ErrQueryTooShort), errors.Is(err, weather.ErrDateOutOfRange), errors.Is(err, weather.ErrInvalidRequest):
		return "rejected"
	case errors.Is(err, weather.ErrUpstream):
		return "upstream"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
