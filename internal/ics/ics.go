// Package ics converts calendar events to and from iCalendar documents.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/calendar-events/internal/application"
)

const (
	productID = "-//calendar-events//Calendario//ES"
	uidSuffix = "@calendar-events"

	propTimezone           ical.ComponentProperty = "X-CALENDAR-TIMEZONE"
	propWeatherTemperature ical.ComponentProperty = "X-WEATHER-TEMPERATURE"
	propWeatherCondition   ical.ComponentProperty = "X-WEATHER-CONDITION"
	propWeatherIcon        ical.ComponentProperty = "X-WEATHER-ICON"
)

// ErrInvalidCalendar is returned for documents that cannot be imported.
var ErrInvalidCalendar = errors.New("ics: invalid calendar")

// Export renders events as a VCALENDAR. All-day events are written as DATE
// values with an exclusive DTEND on the following day.
func Export(events []application.Event, name string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, event := range events {
		ve := cal.AddEvent(event.ID + uidSuffix)
		ve.SetDtStampTime(stamp.UTC())
		if !event.CreatedAt.IsZero() {
			ve.SetCreatedTime(event.CreatedAt.UTC())
		}
		if !event.UpdatedAt.IsZero() {
			ve.SetModifiedAt(event.UpdatedAt.UTC())
		}

		if event.AllDay {
			local := event.Start.In(locationFor(event.Timezone))
			ve.SetAllDayStartAt(local)
			ve.SetAllDayEndAt(local.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(event.Start.UTC())
			ve.SetEndAt(event.End.UTC())
		}

		ve.SetSummary(event.Title)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.Timezone != "" {
			ve.SetProperty(propTimezone, event.Timezone)
		}
		if w := event.Weather; w != nil {
			ve.SetProperty(propWeatherTemperature, strconv.FormatFloat(w.Temperature, 'f', -1, 64))
			ve.SetProperty(propWeatherCondition, w.Condition)
			ve.SetProperty(propWeatherIcon, w.Icon)
		}
	}

	return cal.Serialize()
}

// LatestUpdate returns the most recent UpdatedAt of events, or the Unix
// epoch when there are none. Exports stamped with it are stable while the
// events are unchanged.
func LatestUpdate(events []application.Event) time.Time {
	var latest time.Time
	for _, event := range events {
		if event.UpdatedAt.After(latest) {
			latest = event.UpdatedAt
		}
	}
	if latest.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return latest
}

// Write streams Export's output to w.
func Write(w io.Writer, events []application.Event, name string, stamp time.Time) error {
	_, err := io.WriteString(w, Export(events, name, stamp))
	return err
}

// Parse reads the VEVENTs of an iCalendar document as event inputs.
func Parse(r io.Reader) ([]application.EventInput, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCalendar, err)
	}

	events := cal.Events()
	inputs := make([]application.EventInput, 0, len(events))
	for i, ve := range events {
		input, err := parseEvent(ve)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrInvalidCalendar, i, err)
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

func parseEvent(ve *ical.VEvent) (application.EventInput, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return application.EventInput{}, errors.New("missing DTSTART")
	}

	input := application.EventInput{
		Title:       propertyValue(ve, ical.ComponentPropertySummary),
		Description: propertyValue(ve, ical.ComponentPropertyDescription),
		Location:    propertyValue(ve, ical.ComponentPropertyLocation),
		Timezone:    propertyValue(ve, propTimezone),
		AllDay:      isDateValue(dtStart),
	}
	if input.Timezone == "" {
		if tzids := dtStart.ICalParameters["TZID"]; len(tzids) > 0 {
			input.Timezone = tzids[0]
		}
	}

	if input.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return application.EventInput{}, fmt.Errorf("DTSTART: %w", err)
		}
		loc := locationFor(input.Timezone)
		input.Start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		input.End = input.Start
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return application.EventInput{}, fmt.Errorf("DTSTART: %w", err)
		}
		input.Start = start
		input.End = start
		if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
			end, err := ve.GetEndAt()
			if err != nil {
				return application.EventInput{}, fmt.Errorf("DTEND: %w", err)
			}
			input.End = end
		}
	}

	if raw := propertyValue(ve, propWeatherTemperature); raw != "" {
		temperature, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return application.EventInput{}, fmt.Errorf("%s: %w", propWeatherTemperature, err)
		}
		input.Weather = &application.WeatherSnapshot{
			Temperature: temperature,
			Condition:   propertyValue(ve, propWeatherCondition),
			Icon:        propertyValue(ve, propWeatherIcon),
		}
	}
	return input, nil
}

func propertyValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// isDateValue reports whether a DTSTART carries a DATE rather than a DATE-TIME.
func isDateValue(p *ical.IANAProperty) bool {
	if values := p.ICalParameters["VALUE"]; len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func locationFor(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
