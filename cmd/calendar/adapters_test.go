package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/persistence"
	"github.com/example/calendar-events/internal/testfixtures"
)

func TestEventRepositoryAdapter_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	adapter := newEventRepositoryAdapter(harness.Events)

	fixture := testfixtures.NewEventFixture(
		testfixtures.WithEventID("evt-adapter"),
		testfixtures.WithEventDescription("Revisión semanal"),
		testfixtures.WithEventLocation("Madrid"),
		testfixtures.WithEventTimezone("Europe/Madrid"),
		testfixtures.WithEventWeather(12.5, "Soleado", "//cdn.weatherapi.com/113.png"),
	)

	created, err := adapter.CreateEvent(ctx, fixture.Application())
	if err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if created.Description != "Revisión semanal" || created.Weather == nil || created.Weather.Condition != "Soleado" {
		t.Fatalf("unexpected created event %#v", created)
	}
	if !created.Start.Equal(fixture.Start) || !created.End.Equal(fixture.End) {
		t.Fatalf("expected window %s-%s, got %s-%s", fixture.Start, fixture.End, created.Start, created.End)
	}

	created.Description = ""
	created.Weather = nil
	updated, err := adapter.UpdateEvent(ctx, created)
	if err != nil {
		t.Fatalf("UpdateEvent returned error: %v", err)
	}
	if updated.Description != "" || updated.Weather != nil {
		t.Fatalf("expected optional fields to be cleared, got %#v", updated)
	}

	start := fixture.Start.Add(24 * time.Hour)
	moved, err := adapter.UpdateEventTimes(ctx, created.ID, start, start.Add(2*time.Hour), start)
	if err != nil {
		t.Fatalf("UpdateEventTimes returned error: %v", err)
	}
	if !moved.Start.Equal(start) || moved.Title != fixture.Title {
		t.Fatalf("expected only times to change, got %#v", moved)
	}

	if err := adapter.DeleteEvent(ctx, created.ID); err != nil {
		t.Fatalf("DeleteEvent returned error: %v", err)
	}
	if _, err := adapter.GetEvent(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEventRepositoryAdapter_ListEvents(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	day := testfixtures.ReferenceTime()
	harness.Seed(t, testfixtures.EventsOnDay(day, 3)...)
	harness.Seed(t, testfixtures.EventsOnDay(day.AddDate(0, 0, 1), 2)...)

	adapter := newEventRepositoryAdapter(harness.Events)

	all, err := adapter.ListEvents(context.Background(), application.EventRepositoryFilter{})
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 events, got %d", len(all))
	}

	from := day.AddDate(0, 0, 1)
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	later, err := adapter.ListEvents(context.Background(), application.EventRepositoryFilter{StartsFrom: &from})
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(later) != 2 {
		t.Fatalf("expected 2 events from %s, got %d", from, len(later))
	}
	for i := 1; i < len(later); i++ {
		if later[i].Start.Before(later[i-1].Start) {
			t.Fatalf("expected events ordered by start")
		}
	}
}

func TestConversions_PartialWeatherColumns(t *testing.T) {
	t.Parallel()

	condition := "Nublado"
	model := persistence.Event{ID: "evt-1", Title: "Partial", Condition: &condition}
	if event := toApplicationEvent(model); event.Weather != nil {
		t.Fatalf("expected incomplete weather columns to be ignored, got %#v", event.Weather)
	}

	row := toPersistenceEvent(application.Event{ID: "evt-2", Title: "Bare"})
	if row.Description != nil || row.Temperature != nil || row.Condition != nil || row.Icon != nil {
		t.Fatalf("expected optional columns to stay NULL, got %#v", row)
	}
}
