package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/calendar-events/internal/logging"
	"github.com/example/calendar-events/internal/weather"
)

// WeatherProvider is the upstream used for location lookups.
type WeatherProvider interface {
	CitySearcher
	Conditions(ctx context.Context, location, dateTime string) (weather.Conditions, error)
	Timezone(ctx context.Context, location string) (string, error)
}

// FetchTracker flags outstanding requests.
type FetchTracker interface {
	BeginFetch() func()
}

// LookupService resolves city suggestions, weather and timezones for the
// event form, caching weather and timezone results.
type LookupService struct {
	provider  WeatherProvider
	suggester *CitySuggester
	weather   *expirable.LRU[string, weather.Conditions]
	timezones *expirable.LRU[string, string]
	notifier  Notifier
	fetch     FetchTracker
	logger    *slog.Logger
}

// LookupServiceOptions configures a LookupService.
type LookupServiceOptions struct {
	CacheTTL time.Duration
	Notifier Notifier
	Fetch    FetchTracker
	Logger   *slog.Logger
}

// NewLookupService wires the lookup service around provider.
func NewLookupService(provider WeatherProvider, opts LookupServiceOptions) *LookupService {
	logger := logging.Or(opts.Logger)
	return &LookupService{
		provider:  provider,
		suggester: NewCitySuggesterWithLogger(provider, opts.Notifier, opts.Fetch, logger),
		weather:   newLookupCache[weather.Conditions](opts.CacheTTL, 0),
		timezones: newLookupCache[string](opts.CacheTTL, 0),
		notifier:  opts.Notifier,
		fetch:     opts.Fetch,
		logger:    logger,
	}
}

func (s *LookupService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LookupService", operation, attrs...)
}

// SearchCities returns suggestions for the latest query.
func (s *LookupService) SearchCities(ctx context.Context, query string) ([]weather.Location, error) {
	if s == nil {
		return nil, fmt.Errorf("LookupService is nil")
	}
	return s.suggester.Suggest(ctx, query)
}

// Weather returns conditions at location for a local "YYYY-MM-DD HH:mm" value.
func (s *LookupService) Weather(ctx context.Context, location, dateTime string) (conditions weather.Conditions, err error) {
	if s == nil {
		return weather.Conditions{}, fmt.Errorf("LookupService is nil")
	}
	if s.provider == nil {
		return weather.Conditions{}, fmt.Errorf("weather provider not configured")
	}

	logger := s.loggerWith(ctx, "Weather", "location", location, "date_time", dateTime)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to fetch weather", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	key := lookupKey(location, hourKey(dateTime))
	if cached, ok := s.weather.Get(key); ok {
		logger.DebugContext(ctx, "weather served from cache")
		return cached, nil
	}

	done := s.beginFetch()
	defer done()

	conditions, err = s.provider.Conditions(ctx, location, dateTime)
	if err != nil {
		s.notifyUpstreamFailure(err, msgWeatherFailed)
		return weather.Conditions{}, err
	}
	s.weather.Add(key, conditions)
	return conditions, nil
}

// Timezone resolves location to an IANA timezone identifier.
func (s *LookupService) Timezone(ctx context.Context, location string) (tz string, err error) {
	if s == nil {
		return "", fmt.Errorf("LookupService is nil")
	}
	if s.provider == nil {
		return "", fmt.Errorf("weather provider not configured")
	}

	logger := s.loggerWith(ctx, "Timezone", "location", location)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve timezone", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	key := lookupKey(location)
	if cached, ok := s.timezones.Get(key); ok {
		return cached, nil
	}

	done := s.beginFetch()
	defer done()

	tz, err = s.provider.Timezone(ctx, location)
	if err != nil {
		s.notifyUpstreamFailure(err, msgTimezoneFailed)
		return "", err
	}
	s.timezones.Add(key, tz)
	return tz, nil
}

func (s *LookupService) beginFetch() func() {
	if s.fetch == nil {
		return func() {}
	}
	return s.fetch.BeginFetch()
}

func (s *LookupService) notifyUpstreamFailure(err error, message string) {
	if s.notifier == nil || ErrorKind(err) != "upstream" {
		return
	}
	s.notifier.Notify(titleError, message, SeverityError)
}

// hourKey truncates a "YYYY-MM-DD HH:mm" value to its hour.
func hourKey(dateTime string) string {
	dateTime = strings.TrimSpace(dateTime)
	if len(dateTime) == len(weather.DateTimeLayout) {
		return dateTime[:13]
	}
	return dateTime
}
