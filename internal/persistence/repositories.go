package persistence

import (
	"context"
	"time"
)

// EventFilter narrows event queries. Bounds apply to the event start.
type EventFilter struct {
	StartsFrom   *time.Time
	StartsBefore *time.Time
}

// EventRepository stores calendar events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	UpdateEventTimes(ctx context.Context, id string, start, end time.Time, updatedAt time.Time) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
