package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
	"github.com/example/calendar-events/internal/ics"
)

const (
	maxImportBytes   = 1 << 20
	calendarName     = "Calendario"
	icsContentType   = "text/calendar; charset=utf-8"
	jsonContentType  = "application/json; charset=utf-8"
	icsFileName      = "calendar.ics"
	icsAttachmentHdr = `attachment; filename="` + icsFileName + `"`
)

type eventService interface {
	CreateEvent(ctx context.Context, input application.EventInput) (application.Event, error)
	GetEvent(ctx context.Context, eventID string) (application.Event, error)
	ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (application.Event, error)
	RescheduleEvent(ctx context.Context, params application.RescheduleEventParams) (application.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ImportEvents(ctx context.Context, inputs []application.EventInput) ([]application.Event, error)
}

// EventHandler serves the event store endpoints.
type EventHandler struct {
	service   eventService
	responder responder
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: newResponder(logger)}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, vErr := buildListParams(r.URL.Query())
	if vErr != nil {
		h.responder.writeValidation(r.Context(), w, http.StatusBadRequest, vErr)
		return
	}

	events, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	body, err := json.Marshal(toEventDTOs(events))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	writeCacheable(w, r, jsonContentType, append(body, '\n'))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := eventIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "EventHandler", "Create").InfoContext(r.Context(), "event created", "event_id", event.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := eventIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		EventID: eventID,
		Patch:   req.toPatch(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := eventIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := eventIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	granularity, err := calendar.ParseGranularity(req.Granularity)
	if err != nil {
		h.responder.writeValidation(r.Context(), w, http.StatusUnprocessableEntity, fieldError("granularity", "La granularidad debe ser hour o day."))
		return
	}

	event, err := h.service.RescheduleEvent(r.Context(), application.RescheduleEventParams{
		EventID:     eventID,
		TargetStart: parseTime(req.TargetStart),
		Granularity: granularity,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

// ExportICS renders the (optionally filtered) event list as an iCalendar
// document. DTSTAMP is the latest modification time so the body, and with
// it the ETag, only changes when events do.
func (h *EventHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, vErr := buildListParams(r.URL.Query())
	if vErr != nil {
		h.responder.writeValidation(r.Context(), w, http.StatusBadRequest, vErr)
		return
	}

	events, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	body := ics.Export(events, calendarName, ics.LatestUpdate(events))
	w.Header().Set("Content-Disposition", icsAttachmentHdr)
	writeCacheable(w, r, icsContentType, []byte(body))
}

func (h *EventHandler) ImportICS(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	inputs, err := ics.Parse(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.responder.writeError(r.Context(), w, http.StatusRequestEntityTooLarge, nil)
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	events, err := h.service.ImportEvents(r.Context(), inputs)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "EventHandler", "ImportICS").InfoContext(r.Context(), "events imported", "count", len(events))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTOs(events))
}

func eventIDFromRequest(r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	return id, id != ""
}

func buildListParams(query url.Values) (application.ListEventsParams, *application.ValidationError) {
	var (
		params application.ListEventsParams
		vErr   application.ValidationError
	)
	for _, key := range []string{"from", "to"} {
		raw := strings.TrimSpace(query.Get(key))
		if raw == "" {
			continue
		}
		ts := parseTime(raw)
		if ts.IsZero() {
			if vErr.FieldErrors == nil {
				vErr.FieldErrors = map[string]string{}
			}
			vErr.FieldErrors[key] = "Debe ser una fecha RFC 3339."
			continue
		}
		if key == "from" {
			params.From = &ts
		} else {
			params.To = &ts
		}
	}
	if vErr.HasErrors() {
		return application.ListEventsParams{}, &vErr
	}
	return params, nil
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type eventRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	AllDay       *bool    `json:"allDay"`
	Location     *string  `json:"location"`
	Timezone     *string  `json:"timezone"`
	Temperature  *float64 `json:"temperature"`
	Condition    *string  `json:"condition"`
	Icon         *string  `json:"icon"`
	ClearWeather bool     `json:"clearWeather"`
}

func (r eventRequest) toInput() application.EventInput {
	return application.EventInput{
		Title:       strings.TrimSpace(deref(r.Title)),
		Description: deref(r.Description),
		Start:       parseTime(deref(r.StartDate)),
		End:         parseTime(deref(r.EndDate)),
		AllDay:      r.AllDay != nil && *r.AllDay,
		Location:    strings.TrimSpace(deref(r.Location)),
		Timezone:    strings.TrimSpace(deref(r.Timezone)),
		Weather:     r.weather(),
	}
}

func (r eventRequest) toPatch() application.EventPatch {
	patch := application.EventPatch{
		Title:        r.Title,
		Description:  r.Description,
		AllDay:       r.AllDay,
		Location:     r.Location,
		Timezone:     r.Timezone,
		Weather:      r.weather(),
		ClearWeather: r.ClearWeather,
	}
	if r.StartDate != nil {
		start := parseTime(*r.StartDate)
		patch.Start = &start
	}
	if r.EndDate != nil {
		end := parseTime(*r.EndDate)
		patch.End = &end
	}
	return patch
}

// weather returns a snapshot when any weather field was sent. Partial
// snapshots are rejected by the service.
func (r eventRequest) weather() *application.WeatherSnapshot {
	if r.Temperature == nil && r.Condition == nil && r.Icon == nil {
		return nil
	}
	snapshot := &application.WeatherSnapshot{
		Condition: strings.TrimSpace(deref(r.Condition)),
		Icon:      strings.TrimSpace(deref(r.Icon)),
	}
	if r.Temperature != nil {
		snapshot.Temperature = *r.Temperature
	}
	return snapshot
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

type rescheduleRequest struct {
	TargetStart string `json:"targetStart"`
	Granularity string `json:"granularity"`
}

type eventDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	AllDay      bool     `json:"allDay"`
	Location    string   `json:"location"`
	Timezone    string   `json:"timezone"`
	Temperature *float64 `json:"temperature,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartDate:   formatTime(event.Start),
		EndDate:     formatTime(event.End),
		AllDay:      event.AllDay,
		Location:    event.Location,
		Timezone:    event.Timezone,
		CreatedAt:   formatTime(event.CreatedAt),
		UpdatedAt:   formatTime(event.UpdatedAt),
	}
	if w := event.Weather; w != nil {
		temperature := w.Temperature
		dto.Temperature = &temperature
		dto.Condition = w.Condition
		dto.Icon = w.Icon
	}
	return dto
}

func toEventDTOs(events []application.Event) []eventDTO {
	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	return dtos
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}
