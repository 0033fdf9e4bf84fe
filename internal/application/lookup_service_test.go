package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/calendar-events/internal/weather"
)

type weatherProviderStub struct {
	citySearcherStub

	conditions     weather.Conditions
	conditionsErr  error
	conditionCalls int

	timezone      string
	timezoneErr   error
	timezoneCalls int
}

func (p *weatherProviderStub) Conditions(ctx context.Context, location, dateTime string) (weather.Conditions, error) {
	p.conditionCalls++
	if p.conditionsErr != nil {
		return weather.Conditions{}, p.conditionsErr
	}
	return p.conditions, nil
}

func (p *weatherProviderStub) Timezone(ctx context.Context, location string) (string, error) {
	p.timezoneCalls++
	if p.timezoneErr != nil {
		return "", p.timezoneErr
	}
	return p.timezone, nil
}

func TestLookupService_WeatherIsCachedPerHour(t *testing.T) {
	t.Parallel()

	provider := &weatherProviderStub{conditions: weather.Conditions{Temperature: 8, Condition: "Fog", Icon: "//icons/248.png"}}
	fetch := NewViewStateStore(time.Date(2022, time.January, 10, 9, 0, 0, 0, time.UTC))
	svc := NewLookupService(provider, LookupServiceOptions{
		CacheTTL: 50 * time.Millisecond,
		Fetch:    fetch,
	})

	ctx := context.Background()
	for _, dateTime := range []string{"2022-01-10 10:00", "2022-01-10 10:45"} {
		got, err := svc.Weather(ctx, "Madrid", dateTime)
		if err != nil {
			t.Fatalf("Weather failed: %v", err)
		}
		if got.Condition != "Fog" {
			t.Fatalf("unexpected conditions %#v", got)
		}
	}
	if provider.conditionCalls != 1 {
		t.Fatalf("expected a single upstream call within the hour, got %d", provider.conditionCalls)
	}
	if fetch.Snapshot().Fetching {
		t.Fatalf("expected fetching flag to be reset")
	}

	time.Sleep(120 * time.Millisecond)
	if _, err := svc.Weather(ctx, "madrid", "2022-01-10 10:00"); err != nil {
		t.Fatalf("Weather failed: %v", err)
	}
	if provider.conditionCalls != 2 {
		t.Fatalf("expected a fresh upstream call after expiry, got %d", provider.conditionCalls)
	}
}

func TestLookupService_Timezone(t *testing.T) {
	t.Parallel()

	provider := &weatherProviderStub{timezone: "Europe/Madrid"}
	svc := NewLookupService(provider, LookupServiceOptions{})

	for i := 0; i < 2; i++ {
		tz, err := svc.Timezone(context.Background(), "Madrid")
		if err != nil || tz != "Europe/Madrid" {
			t.Fatalf("expected Europe/Madrid, got %q (%v)", tz, err)
		}
	}
	if provider.timezoneCalls != 1 {
		t.Fatalf("expected cached timezone, got %d calls", provider.timezoneCalls)
	}
}

func TestLookupService_Failures(t *testing.T) {
	t.Parallel()

	t.Run("upstream errors notify", func(t *testing.T) {
		t.Parallel()

		provider := &weatherProviderStub{conditionsErr: weather.ErrUpstream, timezoneErr: weather.ErrUpstream}
		notifier := &notifierStub{}
		svc := NewLookupService(provider, LookupServiceOptions{Notifier: notifier})

		if _, err := svc.Weather(context.Background(), "Madrid", "2022-01-10 10:00"); !errors.Is(err, weather.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
		if _, err := svc.Timezone(context.Background(), "Madrid"); !errors.Is(err, weather.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
		if len(notifier.notifications) != 2 || notifier.notifications[0].Message != msgWeatherFailed {
			t.Fatalf("unexpected notifications %#v", notifier.notifications)
		}
	})

	t.Run("rejections are not notified", func(t *testing.T) {
		t.Parallel()

		provider := &weatherProviderStub{conditionsErr: weather.ErrDateOutOfRange}
		notifier := &notifierStub{}
		svc := NewLookupService(provider, LookupServiceOptions{Notifier: notifier})

		if _, err := svc.Weather(context.Background(), "Madrid", "2030-01-10 10:00"); !errors.Is(err, weather.ErrDateOutOfRange) {
			t.Fatalf("expected ErrDateOutOfRange, got %v", err)
		}
		if len(notifier.notifications) != 0 {
			t.Fatalf("expected no notification, got %#v", notifier.notifications)
		}
	})
}
