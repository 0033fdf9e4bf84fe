package ics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/calendar-events/internal/application"
)

var stamp = time.Date(2022, time.January, 10, 8, 0, 0, 0, time.UTC)

func sampleEvents() []application.Event {
	start := time.Date(2022, time.January, 10, 9, 0, 0, 0, time.UTC)
	return []application.Event{
		{
			ID:          "evt-1",
			Title:       "Standup",
			Description: "Daily sync",
			Location:    "Madrid",
			Start:       start,
			End:         start.Add(30 * time.Minute),
			Timezone:    "UTC",
			Weather:     &application.WeatherSnapshot{Temperature: 21.5, Condition: "Sunny", Icon: "//icons/113.png"},
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
		},
		{
			ID:       "evt-2",
			Title:    "Holiday",
			Start:    time.Date(2022, time.January, 12, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2022, time.January, 12, 23, 59, 59, 0, time.UTC),
			AllDay:   true,
			Timezone: "UTC",
		},
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	doc := Export(sampleEvents(), "Calendario", stamp)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + productID,
		"UID:evt-1" + uidSuffix,
		"SUMMARY:Standup",
		"LOCATION:Madrid",
		"DTSTART:20220110T090000Z",
		"DTEND:20220110T093000Z",
		"X-WEATHER-CONDITION:Sunny",
		"UID:evt-2" + uidSuffix,
		"20220112",
		"20220113",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected export to contain %q\n%s", want, doc)
		}
	}
	if strings.Count(doc, "BEGIN:VEVENT") != 2 {
		t.Fatalf("expected two events\n%s", doc)
	}
}

func TestParse_ExportedDocument(t *testing.T) {
	t.Parallel()

	inputs, err := Parse(strings.NewReader(Export(sampleEvents(), "", stamp)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}

	timed := inputs[0]
	if timed.Title != "Standup" || timed.Location != "Madrid" || timed.AllDay {
		t.Fatalf("unexpected timed input %#v", timed)
	}
	if !timed.Start.Equal(time.Date(2022, time.January, 10, 9, 0, 0, 0, time.UTC)) || timed.End.Sub(timed.Start) != 30*time.Minute {
		t.Fatalf("unexpected times %s - %s", timed.Start, timed.End)
	}
	if timed.Weather == nil || timed.Weather.Temperature != 21.5 || timed.Weather.Icon != "//icons/113.png" {
		t.Fatalf("unexpected weather %#v", timed.Weather)
	}

	allDay := inputs[1]
	if !allDay.AllDay || allDay.Title != "Holiday" {
		t.Fatalf("unexpected all-day input %#v", allDay)
	}
	if y, m, d := allDay.Start.Date(); y != 2022 || m != time.January || d != 12 {
		t.Fatalf("expected all-day start on 2022-01-12, got %s", allDay.Start)
	}
}

func TestParse_ForeignCalendar(t *testing.T) {
	t.Parallel()

	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"BEGIN:VEVENT",
		"UID:abc@example.com",
		"DTSTAMP:20220101T000000Z",
		"DTSTART;TZID=Europe/Madrid:20220110T100000",
		"DTEND;TZID=Europe/Madrid:20220110T110000",
		"SUMMARY:Dentista",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:def@example.com",
		"DTSTAMP:20220101T000000Z",
		"DTSTART;VALUE=DATE:20220115",
		"SUMMARY:Viaje",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	inputs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(inputs))
	}

	if inputs[0].Timezone != "Europe/Madrid" || inputs[0].Weather != nil {
		t.Fatalf("expected timezone from TZID, got %#v", inputs[0])
	}
	if got := inputs[0].End.Sub(inputs[0].Start); got != time.Hour {
		t.Fatalf("expected one hour event, got %s", got)
	}
	if !inputs[1].AllDay || inputs[1].Title != "Viaje" {
		t.Fatalf("expected all-day event, got %#v", inputs[1])
	}
}

func TestParse_MissingStart(t *testing.T) {
	t.Parallel()

	doc := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Example//EN",
		"BEGIN:VEVENT",
		"UID:abc@example.com",
		"SUMMARY:Sin fecha",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	if _, err := Parse(strings.NewReader(doc)); !errors.Is(err, ErrInvalidCalendar) {
		t.Fatalf("expected ErrInvalidCalendar, got %v", err)
	}
}

func TestLatestUpdate(t *testing.T) {
	t.Parallel()

	if got := LatestUpdate(nil); !got.Equal(time.Unix(0, 0)) {
		t.Fatalf("expected the epoch for no events, got %s", got)
	}

	older := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(36 * time.Hour)
	events := []application.Event{{UpdatedAt: older}, {UpdatedAt: newer}, {UpdatedAt: older}}
	if got := LatestUpdate(events); !got.Equal(newer) {
		t.Fatalf("expected %s, got %s", newer, got)
	}
}
