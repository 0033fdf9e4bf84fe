package main

import (
	"context"
	"time"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/persistence"
)

// eventRepositoryAdapter exposes the SQLite event store through the
// application's repository contract. Mutations re-read the stored row so
// callers see what was persisted.
type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, event.ID)
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, event.ID)
}

func (a *eventRepositoryAdapter) UpdateEventTimes(ctx context.Context, id string, start, end, updatedAt time.Time) (application.Event, error) {
	if err := a.repo.UpdateEventTimes(ctx, id, start, end, updatedAt); err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, id)
}

func (a *eventRepositoryAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	stored, err := a.repo.ListEvents(ctx, persistence.EventFilter{
		StartsFrom:   cloneTime(filter.StartsFrom),
		StartsBefore: cloneTime(filter.StartsBefore),
	})
	if err != nil {
		return nil, err
	}
	events := make([]application.Event, 0, len(stored))
	for _, model := range stored {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

func toApplicationEvent(model persistence.Event) application.Event {
	event := application.Event{
		ID:        model.ID,
		Title:     model.Title,
		Start:     model.Start,
		End:       model.End,
		AllDay:    model.AllDay,
		Location:  model.Location,
		Timezone:  model.Timezone,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Description != nil {
		event.Description = *model.Description
	}
	if model.Temperature != nil && model.Condition != nil && model.Icon != nil {
		event.Weather = &application.WeatherSnapshot{
			Temperature: *model.Temperature,
			Condition:   *model.Condition,
			Icon:        *model.Icon,
		}
	}
	return event
}

func toPersistenceEvent(event application.Event) persistence.Event {
	model := persistence.Event{
		ID:        event.ID,
		Title:     event.Title,
		Start:     event.Start,
		End:       event.End,
		AllDay:    event.AllDay,
		Location:  event.Location,
		Timezone:  event.Timezone,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
	if event.Description != "" {
		description := event.Description
		model.Description = &description
	}
	if w := event.Weather; w != nil {
		temperature, condition, icon := w.Temperature, w.Condition, w.Icon
		model.Temperature = &temperature
		model.Condition = &condition
		model.Icon = &icon
	}
	return model
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
