package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
	"github.com/example/calendar-events/internal/persistence"
)

var eventCounter uint64

var referenceTime = time.Date(2022, time.January, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// EventFixture represents a deterministic calendar event that can be
// materialised for application, persistence or layout tests.
type EventFixture struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Timezone    string
	Weather     *application.WeatherSnapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a one hour event on the reference day. Successive
// fixtures start one hour apart.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(time.Duration(idx%8) * time.Hour)
	fixture := EventFixture{
		ID:        fmt.Sprintf("evt-%03d", idx),
		Title:     fmt.Sprintf("Evento %03d", idx),
		Start:     start,
		End:       start.Add(time.Hour),
		Timezone:  application.DefaultTimezone,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventDescription sets the description.
func WithEventDescription(description string) EventOption {
	return func(f *EventFixture) {
		f.Description = description
	}
}

// WithEventWindow sets start and end.
func WithEventWindow(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.Start = start
		f.End = end
	}
}

// WithEventAllDay marks the fixture as an all-day event on the local day of
// its start in its timezone.
func WithEventAllDay() EventOption {
	return func(f *EventFixture) {
		loc, err := time.LoadLocation(f.Timezone)
		if err != nil {
			loc = time.UTC
		}
		f.AllDay = true
		f.Start, f.End = calendar.AllDayBounds(f.Start.In(loc))
	}
}

// WithEventLocation sets the location text.
func WithEventLocation(location string) EventOption {
	return func(f *EventFixture) {
		f.Location = location
	}
}

// WithEventTimezone sets the IANA timezone.
func WithEventTimezone(tz string) EventOption {
	return func(f *EventFixture) {
		f.Timezone = tz
	}
}

// WithEventWeather attaches a weather snapshot.
func WithEventWeather(temperature float64, condition, icon string) EventOption {
	return func(f *EventFixture) {
		f.Weather = &application.WeatherSnapshot{Temperature: temperature, Condition: condition, Icon: icon}
	}
}

// WithEventTimestamps sets both created and updated timestamps.
func WithEventTimestamps(created, updated time.Time) EventOption {
	return func(f *EventFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	event := application.Event{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Start:       f.Start,
		End:         f.End,
		AllDay:      f.AllDay,
		Location:    f.Location,
		Timezone:    f.Timezone,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.Weather != nil {
		snapshot := *f.Weather
		event.Weather = &snapshot
	}
	return event
}

// Input returns the caller supplied fields of the fixture.
func (f EventFixture) Input() application.EventInput {
	input := application.EventInput{
		Title:       f.Title,
		Description: f.Description,
		Start:       f.Start,
		End:         f.End,
		AllDay:      f.AllDay,
		Location:    f.Location,
		Timezone:    f.Timezone,
	}
	if f.Weather != nil {
		snapshot := *f.Weather
		input.Weather = &snapshot
	}
	return input
}

// Persistence returns the fixture as a persistence.Event row.
func (f EventFixture) Persistence() persistence.Event {
	event := persistence.Event{
		ID:        f.ID,
		Title:     f.Title,
		Start:     f.Start,
		End:       f.End,
		AllDay:    f.AllDay,
		Location:  f.Location,
		Timezone:  f.Timezone,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	if f.Description != "" {
		description := f.Description
		event.Description = &description
	}
	if f.Weather != nil {
		temperature := f.Weather.Temperature
		condition := f.Weather.Condition
		icon := f.Weather.Icon
		event.Temperature = &temperature
		event.Condition = &condition
		event.Icon = &icon
	}
	return event
}

// Calendar returns the fixture as seen by the layout engine.
func (f EventFixture) Calendar() calendar.Event {
	return f.Application().ToCalendarEvent()
}

// EventsOnDay returns n fixtures on day, starting at 09:00 and one hour apart.
func EventsOnDay(day time.Time, n int) []EventFixture {
	base := calendar.StartOfDay(day).Add(9 * time.Hour)
	fixtures := make([]EventFixture, 0, n)
	for i := 0; i < n; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		fixtures = append(fixtures, NewEventFixture(WithEventWindow(start, start.Add(time.Hour))))
	}
	return fixtures
}
