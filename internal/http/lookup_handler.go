package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/weather"
)

type lookupService interface {
	SearchCities(ctx context.Context, query string) ([]weather.Location, error)
	Weather(ctx context.Context, location, dateTime string) (weather.Conditions, error)
	Timezone(ctx context.Context, location string) (string, error)
}

// LookupHandler proxies location, weather and timezone lookups.
type LookupHandler struct {
	service   lookupService
	responder responder
}

func NewLookupHandler(service lookupService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{service: service, responder: newResponder(logger)}
}

func (h *LookupHandler) SearchCity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	locations, err := h.service.SearchCities(r.Context(), query)
	if err != nil {
		// A newer query replaced this one; the caller gets an empty list.
		if errors.Is(err, application.ErrSuggestionSuperseded) {
			h.responder.writeJSON(r.Context(), w, http.StatusOK, []weather.Location{})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if locations == nil {
		locations = []weather.Location{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, locations)
}

func (h *LookupHandler) Weather(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	location := strings.TrimSpace(query.Get("location"))
	dateTime := strings.TrimSpace(query.Get("dateTime"))

	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	if location == "" {
		vErr.FieldErrors["location"] = "La ubicación es obligatoria."
	}
	if dateTime == "" {
		vErr.FieldErrors["dateTime"] = "La fecha es obligatoria."
	}
	if vErr.HasErrors() {
		h.responder.writeValidation(r.Context(), w, http.StatusBadRequest, vErr)
		return
	}

	conditions, err := h.service.Weather(r.Context(), location, dateTime)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conditions)
}

func (h *LookupHandler) Timezone(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		h.responder.writeValidation(r.Context(), w, http.StatusBadRequest, fieldError("location", "La ubicación es obligatoria."))
		return
	}

	tz, err := h.service.Timezone(r.Context(), location)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timezoneResponse{Timezone: tz})
}

type timezoneResponse struct {
	Timezone string `json:"timezone"`
}
