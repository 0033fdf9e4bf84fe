package application

import (
	"time"

	"github.com/example/calendar-events/internal/calendar"
)

// DefaultTimezone applies to events created without an explicit timezone.
const DefaultTimezone = "UTC"

// WeatherSnapshot is the weather stored alongside an event. It is either
// fully present or absent.
type WeatherSnapshot struct {
	Temperature float64
	Condition   string
	Icon        string
}

// Event represents a persisted calendar event.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Timezone    string
	Weather     *WeatherSnapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Timezone    string
	Weather     *WeatherSnapshot
}

// EventPatch carries the fields of a partial update. Nil fields are left
// unchanged. ClearWeather removes a stored snapshot.
type EventPatch struct {
	Title        *string
	Description  *string
	Start        *time.Time
	End          *time.Time
	AllDay       *bool
	Location     *string
	Timezone     *string
	Weather      *WeatherSnapshot
	ClearWeather bool
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	EventID string
	Patch   EventPatch
}

// RescheduleEventParams describes a drag of an event onto a calendar cell.
type RescheduleEventParams struct {
	EventID     string
	TargetStart time.Time
	Granularity calendar.Granularity
}

// ListEventsParams narrows event listings by start time.
type ListEventsParams struct {
	From *time.Time
	To   *time.Time
}

// ToCalendarEvent projects an event onto the layout engine's view of it.
func (e Event) ToCalendarEvent() calendar.Event {
	return calendar.Event{
		ID:     e.ID,
		Title:  e.Title,
		Start:  e.Start,
		End:    e.End,
		AllDay: e.AllDay,
	}
}

func cloneEvent(event Event) Event {
	if event.Weather != nil {
		snapshot := *event.Weather
		event.Weather = &snapshot
	}
	return event
}
