// Package weather talks to the weatherapi.com HTTP API for city search,
// hourly conditions and timezone lookups.
package weather

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the local wall-clock format accepted for condition lookups.
const DateTimeLayout = "2006-01-02 15:04"

const (
	// MinQueryLength is the shortest city query forwarded upstream.
	MinQueryLength = 3
	// ForecastHorizon bounds the range served by the forecast endpoint.
	ForecastHorizon = 13 * 24 * time.Hour
	// FutureHorizon bounds the range served by the future endpoint.
	FutureHorizon = 300 * 24 * time.Hour
)

var (
	// ErrQueryTooShort is returned for city queries under MinQueryLength characters.
	ErrQueryTooShort = errors.New("weather: query must be at least 3 characters long")
	// ErrDateOutOfRange is returned when the requested time is beyond FutureHorizon.
	ErrDateOutOfRange = errors.New("weather: requested date out of valid range (0-300 days from today)")
	// ErrInvalidRequest is returned for missing or malformed lookup parameters.
	ErrInvalidRequest = errors.New("weather: invalid request")
	// ErrUpstream wraps failures reported by or while reaching the upstream API.
	ErrUpstream = errors.New("weather: upstream failure")
)

// Location is a city suggestion.
type Location struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Conditions is the weather snapshot for one hour.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
}

// Mode identifies which upstream endpoint serves a lookup.
type Mode string

const (
	ModeHistory  Mode = "history"
	ModeForecast Mode = "forecast"
	ModeFuture   Mode = "future"
)

// SelectMode picks the endpoint for target relative to now: history for the
// past, forecast up to ForecastHorizon ahead and future up to FutureHorizon.
func SelectMode(target, now time.Time) (Mode, error) {
	switch {
	case target.Before(now):
		return ModeHistory, nil
	case !target.After(now.Add(ForecastHorizon)):
		return ModeForecast, nil
	case !target.After(now.Add(FutureHorizon)):
		return ModeFuture, nil
	default:
		return "", ErrDateOutOfRange
	}
}

// ParseDateTime reads a DateTimeLayout value in loc and returns the instant and
// its hour of day, which indexes the upstream hourly forecast.
func ParseDateTime(value string, loc *time.Location) (time.Time, int, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	parsed, err := time.ParseInLocation(DateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: dateTime must match YYYY-MM-DD HH:mm", ErrInvalidRequest)
	}
	hour, err := strconv.Atoi(value[len(value)-5 : len(value)-3])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: dateTime hour", ErrInvalidRequest)
	}
	return parsed, hour, nil
}
