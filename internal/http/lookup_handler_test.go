package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/weather"
)

type lookupServiceStub struct {
	locations  []weather.Location
	searchErr  error
	conditions weather.Conditions
	weatherErr error
	timezone   string

	searches int
	lastWhen string
}

func (s *lookupServiceStub) SearchCities(ctx context.Context, query string) ([]weather.Location, error) {
	s.searches++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.locations, nil
}

func (s *lookupServiceStub) Weather(ctx context.Context, location, dateTime string) (weather.Conditions, error) {
	s.lastWhen = dateTime
	if s.weatherErr != nil {
		return weather.Conditions{}, s.weatherErr
	}
	return s.conditions, nil
}

func (s *lookupServiceStub) Timezone(ctx context.Context, location string) (string, error) {
	return s.timezone, nil
}

func TestLookupHandler_SearchCity(t *testing.T) {
	t.Parallel()

	t.Run("returns suggestions", func(t *testing.T) {
		t.Parallel()

		stub := &lookupServiceStub{locations: []weather.Location{{Name: "Madrid", Region: "Madrid", Country: "Spain"}}}
		router := NewRouter(RouterConfig{Lookups: NewLookupHandler(stub, nil)})

		rec := serve(router, http.MethodGet, "/searchCity?query=Mad", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var locations []weather.Location
		if err := json.Unmarshal(rec.Body.Bytes(), &locations); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(locations) != 1 || locations[0].Country != "Spain" {
			t.Fatalf("unexpected locations %#v", locations)
		}
	})

	t.Run("short queries are rejected with 400", func(t *testing.T) {
		t.Parallel()

		stub := &lookupServiceStub{searchErr: weather.ErrQueryTooShort}
		router := NewRouter(RouterConfig{Lookups: NewLookupHandler(stub, nil)})

		rec := serve(router, http.MethodGet, "/searchCity?query=Ma", "")
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).ErrorCode != CodeValidation {
			t.Fatalf("expected 400 E_VALIDATION, got %d", rec.Code)
		}
	})

	t.Run("superseded lookups answer with an empty list", func(t *testing.T) {
		t.Parallel()

		stub := &lookupServiceStub{searchErr: application.ErrSuggestionSuperseded}
		router := NewRouter(RouterConfig{Lookups: NewLookupHandler(stub, nil)})

		rec := serve(router, http.MethodGet, "/searchCity?query=Madr", "")
		if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
			t.Fatalf("expected empty list, got %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestLookupHandler_Weather(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "success", target: "/weather?location=Madrid&dateTime=2022-01-11%2010:00", wantStatus: http.StatusOK},
		{name: "missing parameters", target: "/weather?location=Madrid", wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "date out of range", target: "/weather?location=Madrid&dateTime=2030-01-11%2010:00", err: weather.ErrDateOutOfRange, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "upstream failure", target: "/weather?location=Madrid&dateTime=2022-01-11%2010:00", err: weather.ErrUpstream, wantStatus: http.StatusBadGateway, wantCode: CodeUpstream},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stub := &lookupServiceStub{conditions: weather.Conditions{Temperature: 8, Condition: "Fog", Icon: "//icons/248.png"}, weatherErr: tc.err}
			router := NewRouter(RouterConfig{Lookups: NewLookupHandler(stub, nil)})

			rec := serve(router, http.MethodGet, tc.target, "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantCode != "" {
				if code := decodeError(t, rec).ErrorCode; code != tc.wantCode {
					t.Fatalf("expected %s, got %s", tc.wantCode, code)
				}
				return
			}
			if stub.lastWhen != "2022-01-11 10:00" {
				t.Fatalf("expected dateTime to be forwarded, got %q", stub.lastWhen)
			}
			var conditions weather.Conditions
			if err := json.Unmarshal(rec.Body.Bytes(), &conditions); err != nil || conditions.Condition != "Fog" {
				t.Fatalf("unexpected conditions %#v (%v)", conditions, err)
			}
		})
	}
}

func TestLookupHandler_Timezone(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{Lookups: NewLookupHandler(&lookupServiceStub{timezone: "Europe/Madrid"}, nil)})

	rec := serve(router, http.MethodGet, "/timezone?location=Madrid", "")
	var resp timezoneResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Timezone != "Europe/Madrid" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	if rec := serve(router, http.MethodGet, "/timezone", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without location, got %d", rec.Code)
	}
}
