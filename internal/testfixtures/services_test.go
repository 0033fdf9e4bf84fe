package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/calendar-events/internal/application"
)

type capturingEventRepo struct {
	created application.Event
}

func (c *capturingEventRepo) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	c.created = event
	return event, nil
}

func (c *capturingEventRepo) GetEvent(ctx context.Context, id string) (application.Event, error) {
	return application.Event{}, application.ErrNotFound
}

func (c *capturingEventRepo) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	return event, nil
}

func (c *capturingEventRepo) UpdateEventTimes(ctx context.Context, id string, start, end, updatedAt time.Time) (application.Event, error) {
	return application.Event{}, application.ErrNotFound
}

func (c *capturingEventRepo) DeleteEvent(ctx context.Context, id string) error {
	return nil
}

func (c *capturingEventRepo) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	return nil, nil
}

func TestServiceFactoryNewEventService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingEventRepo{}
	center := factory.NewNotificationCenter()

	svc := factory.NewEventService(EventServiceDeps{Events: repo, Notifier: center})
	fixture := NewEventFixture(WithEventTitle("Dentista"))

	event, err := svc.CreateEvent(context.Background(), fixture.Input())
	if err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	if event.ID != "evt-1" {
		t.Fatalf("expected generated ID evt-1, got %q", event.ID)
	}
	if repo.created.ID != event.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !event.CreatedAt.Equal(factory.Clock.Peek()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Peek(), event.CreatedAt)
	}
	if active := center.Active(); len(active) != 1 || active[0].ID != "ntf-1" || active[0].Severity != application.SeveritySuccess {
		t.Fatalf("expected a success notification, got %#v", active)
	}
}

func TestServiceFactoryNewViewService(t *testing.T) {
	factory := NewServiceFactory()
	events := EventsOnDay(ReferenceTime(), 3)

	lister := listerFunc(func(ctx context.Context, params application.ListEventsParams) ([]application.Event, error) {
		out := make([]application.Event, 0, len(events))
		for _, fixture := range events {
			out = append(out, fixture.Application())
		}
		return out, nil
	})

	view, err := factory.NewViewService(lister).Calendar(context.Background(), "month", ReferenceTime())
	if err != nil {
		t.Fatalf("Calendar returned error: %v", err)
	}
	cell := view.Cells[9]
	if len(cell.Placements) != 2 || cell.More != "+1 eventos" {
		t.Fatalf("unexpected month cell %#v", cell)
	}
}

type listerFunc func(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)

func (f listerFunc) ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error) {
	return f(ctx, params)
}
