package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler reports whether the backing store answers.
type HealthHandler struct {
	ping    func(ctx context.Context) error
	timeout time.Duration
	responder
}

func NewHealthHandler(ping func(ctx context.Context) error, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, timeout: 2 * time.Second, responder: newResponder(logger)}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.ping == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		handlerLogger(r.Context(), h.logger, "HealthHandler", "Health").ErrorContext(r.Context(), "storage ping failed", "error", err)
		h.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}
