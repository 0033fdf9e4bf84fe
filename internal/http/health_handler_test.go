package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ping   func(ctx context.Context) error
		status int
		body   string
	}{
		{name: "store answers", ping: func(context.Context) error { return nil }, status: http.StatusOK, body: "{\"status\":\"ok\"}\n"},
		{name: "store down", ping: func(context.Context) error { return errors.New("closed") }, status: http.StatusServiceUnavailable, body: "{\"status\":\"unavailable\"}\n"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := NewRouter(RouterConfig{Health: NewHealthHandler(tc.ping, nil)})
			rec := serve(router, http.MethodGet, "/health", "")
			if rec.Code != tc.status || rec.Body.String() != tc.body {
				t.Fatalf("expected %d %q, got %d %q", tc.status, tc.body, rec.Code, rec.Body.String())
			}
		})
	}
}
