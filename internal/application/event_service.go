package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/calendar-events/internal/calendar"
	"github.com/example/calendar-events/internal/logging"
)

// EventRepository captures the persistence interactions needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEventTimes(ctx context.Context, id string, start, end, updatedAt time.Time) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, filter EventRepositoryFilter) ([]Event, error)
}

// EventRepositoryFilter narrows queries issued to the event repository by start time.
type EventRepositoryFilter struct {
	StartsFrom   *time.Time
	StartsBefore *time.Time
}

// EventObserver is told about deleted events so it can drop references to them.
type EventObserver interface {
	EventDeleted(id string)
}

// EventService orchestrates validation and persistence for event operations.
type EventService struct {
	events      EventRepository
	notifier    Notifier
	observer    EventObserver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// EventServiceDeps groups the optional collaborators of an EventService.
type EventServiceDeps struct {
	Notifier Notifier
	Observer EventObserver
}

// NewEventService wires dependencies for event operations.
func NewEventService(events EventRepository, deps EventServiceDeps, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, deps, idGenerator, now, nil)
}

// NewEventServiceWithLogger wires dependencies for event operations with an explicit logger.
func NewEventServiceWithLogger(events EventRepository, deps EventServiceDeps, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		notifier:    deps.Notifier,
		observer:    deps.Observer,
		idGenerator: idGenerator,
		now:         now,
		logger:      logging.Or(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates the input, normalizes all-day bounds and persists the event.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (event Event, err error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "CreateEvent")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			s.notify(titleError, msgCreateFailed, SeverityError)
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
		s.notify(titleSuccess, msgEventCreated, SeveritySuccess)
	}()

	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}

	normalized, err := normalizeEventInput(input)
	if err != nil {
		return Event{}, err
	}

	createdAt := s.now()
	candidate := Event{
		ID:          s.idGenerator(),
		Title:       normalized.Title,
		Description: normalized.Description,
		Start:       normalized.Start,
		End:         normalized.End,
		AllDay:      normalized.AllDay,
		Location:    normalized.Location,
		Timezone:    normalized.Timezone,
		Weather:     normalized.Weather,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	persisted, err := s.events.CreateEvent(ctx, candidate)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return persisted, nil
}

// GetEvent returns the event with the given id.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return event, nil
}

// ListEvents returns events ordered by start, optionally bounded by start time.
func (s *EventService) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}

	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		vErr := &ValidationError{}
		vErr.add("to", "to must not be before from")
		return nil, vErr
	}

	events, err := s.events.ListEvents(ctx, EventRepositoryFilter{StartsFrom: params.From, StartsBefore: params.To})
	if err != nil {
		if errors.Is(mapEventRepoError(err), ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return events, nil
}

// UpdateEvent applies a partial update. The merged event is validated as a whole.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (event Event, err error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateEvent", "event_id", params.EventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			s.notify(titleError, msgUpdateFailed, SeverityError)
			return
		}
		logger.InfoContext(ctx, "event updated")
		s.notify(titleSuccess, msgEventUpdated, SeveritySuccess)
	}()

	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}

	normalized, err := normalizeEventInput(applyPatch(existing, params.Patch))
	if err != nil {
		return Event{}, err
	}

	updated := existing
	updated.Title = normalized.Title
	updated.Description = normalized.Description
	updated.Start = normalized.Start
	updated.End = normalized.End
	updated.AllDay = normalized.AllDay
	updated.Location = normalized.Location
	updated.Timezone = normalized.Timezone
	updated.Weather = normalized.Weather
	updated.UpdatedAt = s.now()

	persisted, err := s.events.UpdateEvent(ctx, updated)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return persisted, nil
}

// RescheduleEvent moves an event onto a calendar cell keeping its duration.
// The target cell is evaluated in the event's timezone and only the start
// and end are written.
func (s *EventService) RescheduleEvent(ctx context.Context, params RescheduleEventParams) (event Event, err error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "RescheduleEvent",
		"event_id", params.EventID,
		"granularity", params.Granularity.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule event", "error", err, "error_kind", ErrorKind(err))
			s.notify(titleError, msgRescheduleFailed, SeverityError)
			return
		}
		logger.With("start", event.Start, "end", event.End).InfoContext(ctx, "event rescheduled")
		s.notify(titleSuccess, msgEventRescheduled, SeveritySuccess)
	}()

	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}
	if params.TargetStart.IsZero() {
		vErr := &ValidationError{}
		vErr.add("targetStart", "target start is required")
		return Event{}, vErr
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}

	loc := locationOrUTC(existing.Timezone)
	target := calendar.TargetCell(params.TargetStart.In(loc), params.Granularity)
	start, end := calendar.Reschedule(existing.ToCalendarEvent(), target)

	persisted, err := s.events.UpdateEventTimes(ctx, existing.ID, start, end, s.now())
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return persisted, nil
}

// DeleteEvent removes an event.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteEvent", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			s.notify(titleError, msgDeleteFailed, SeverityError)
			return
		}
		logger.InfoContext(ctx, "event deleted")
		s.notify(titleSuccess, msgEventDeleted, SeveritySuccess)
	}()

	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return mapEventRepoError(err)
	}
	if s.observer != nil {
		s.observer.EventDeleted(eventID)
	}
	return nil
}

// ImportEvents creates every input, stopping at the first invalid one. Events
// created before a failure are kept.
func (s *EventService) ImportEvents(ctx context.Context, inputs []EventInput) (events []Event, err error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "ImportEvents", "count", len(inputs))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import events", "error", err, "error_kind", ErrorKind(err), "imported", len(events))
			s.notify(titleError, msgImportFailed, SeverityError)
			return
		}
		logger.InfoContext(ctx, "events imported")
		s.notify(titleSuccess, msgEventsImported, SeveritySuccess)
	}()

	if s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}

	events = make([]Event, 0, len(inputs))
	for i, input := range inputs {
		normalized, err := normalizeEventInput(input)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				prefixed := &ValidationError{}
				for field, msg := range vErr.FieldErrors {
					prefixed.add(fmt.Sprintf("events[%d].%s", i, field), msg)
				}
				return events, prefixed
			}
			return events, err
		}

		createdAt := s.now()
		normalized.ID = s.idGenerator()
		normalized.CreatedAt = createdAt
		normalized.UpdatedAt = createdAt

		persisted, err := s.events.CreateEvent(ctx, normalized)
		if err != nil {
			return events, mapEventRepoError(err)
		}
		events = append(events, persisted)
	}
	return events, nil
}

func (s *EventService) notify(title, message string, severity Severity) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(title, message, severity)
}

func applyPatch(existing Event, patch EventPatch) EventInput {
	input := EventInput{
		Title:       existing.Title,
		Description: existing.Description,
		Start:       existing.Start,
		End:         existing.End,
		AllDay:      existing.AllDay,
		Location:    existing.Location,
		Timezone:    existing.Timezone,
		Weather:     existing.Weather,
	}
	if patch.Title != nil {
		input.Title = *patch.Title
	}
	if patch.Description != nil {
		input.Description = *patch.Description
	}
	if patch.Start != nil {
		input.Start = *patch.Start
	}
	if patch.End != nil {
		input.End = *patch.End
	}
	if patch.AllDay != nil {
		input.AllDay = *patch.AllDay
	}
	if patch.Location != nil {
		input.Location = *patch.Location
	}
	if patch.Timezone != nil {
		input.Timezone = *patch.Timezone
	}
	if patch.ClearWeather {
		input.Weather = nil
	}
	if patch.Weather != nil {
		input.Weather = patch.Weather
	}
	return input
}

// normalizeEventInput validates input and returns the event fields to store.
// All-day events are clamped to their local day in the event's timezone.
func normalizeEventInput(input EventInput) (Event, error) {
	vErr := &ValidationError{}
	vErr.merge(validateEventCore(input))

	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		vErr.add("timezone", fmt.Sprintf("unknown timezone %q", timezone))
	}

	if vErr.HasErrors() {
		return Event{}, vErr
	}

	start, end := input.Start, input.End
	if input.AllDay {
		start, end = calendar.AllDayBounds(start.In(loc))
	}

	event := Event{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Start:       start,
		End:         end,
		AllDay:      input.AllDay,
		Location:    strings.TrimSpace(input.Location),
		Timezone:    timezone,
	}
	if input.Weather != nil {
		snapshot := *input.Weather
		event.Weather = &snapshot
	}
	return event, nil
}

func validateEventCore(input EventInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("startDate", "start date is required")
	}
	if input.End.IsZero() && !input.AllDay {
		vErr.add("endDate", "end date is required")
	}
	if !input.AllDay && !input.Start.IsZero() && !input.End.IsZero() && input.End.Before(input.Start) {
		vErr.add("endDate", "end date must not be before start date")
	}
	if w := input.Weather; w != nil {
		if strings.TrimSpace(w.Condition) == "" || strings.TrimSpace(w.Icon) == "" {
			vErr.add("weather", "weather snapshot requires condition and icon")
		}
	}
	return vErr
}

func locationOrUTC(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
