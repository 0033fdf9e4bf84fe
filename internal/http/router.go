package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Events     *EventHandler
	Lookups    *LookupHandler
	Calendar   *CalendarHandler
	State      *StateHandler
	Health     *HealthHandler
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	responder := newResponder(cfg.Logger)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, errors.New(localizedStatusMessage(http.StatusNotFound)))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusMethodNotAllowed, errors.New(localizedStatusMessage(http.StatusMethodNotAllowed)))
	})

	if cfg.Events != nil {
		router.HandleFunc("/events", cfg.Events.List).Methods(http.MethodGet)
		router.HandleFunc("/events", cfg.Events.Create).Methods(http.MethodPost)
		router.HandleFunc("/events.ics", cfg.Events.ExportICS).Methods(http.MethodGet)
		router.HandleFunc("/events.ics", cfg.Events.ImportICS).Methods(http.MethodPost)
		router.HandleFunc("/events/{id}", cfg.Events.Get).Methods(http.MethodGet)
		router.HandleFunc("/events/{id}", cfg.Events.Update).Methods(http.MethodPut)
		router.HandleFunc("/events/{id}", cfg.Events.Delete).Methods(http.MethodDelete)
		router.HandleFunc("/events/{id}/reschedule", cfg.Events.Reschedule).Methods(http.MethodPost)
	}

	if cfg.Lookups != nil {
		router.HandleFunc("/searchCity", cfg.Lookups.SearchCity).Methods(http.MethodGet)
		router.HandleFunc("/weather", cfg.Lookups.Weather).Methods(http.MethodGet)
		router.HandleFunc("/timezone", cfg.Lookups.Timezone).Methods(http.MethodGet)
	}

	if cfg.Calendar != nil {
		router.HandleFunc("/calendar", cfg.Calendar.View).Methods(http.MethodGet)
		router.HandleFunc("/calendar/next", cfg.Calendar.Next).Methods(http.MethodGet)
		router.HandleFunc("/calendar/prev", cfg.Calendar.Prev).Methods(http.MethodGet)
	}

	if cfg.State != nil {
		router.HandleFunc("/view-state", cfg.State.GetViewState).Methods(http.MethodGet)
		router.HandleFunc("/view-state", cfg.State.DispatchViewCommand).Methods(http.MethodPost)
		router.HandleFunc("/notifications", cfg.State.ListNotifications).Methods(http.MethodGet)
		router.HandleFunc("/notifications/{id}", cfg.State.DismissNotification).Methods(http.MethodDelete)
	}

	if cfg.Health != nil {
		router.HandleFunc("/health", cfg.Health.Health).Methods(http.MethodGet)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
