package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
)

type eventListerStub struct {
	events []application.Event
}

func (l eventListerStub) ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error) {
	return l.events, nil
}

func newCalendarRouter(events ...application.Event) http.Handler {
	engine := calendar.NewEngine(time.Monday, calendar.SpanishLabels(), func() time.Time { return handlerNow })
	views := application.NewViewService(eventListerStub{events: events}, engine, time.UTC)
	return NewRouter(RouterConfig{Calendar: NewCalendarHandler(views, func() time.Time { return handlerNow }, nil)})
}

func TestCalendarHandler_View(t *testing.T) {
	t.Parallel()

	router := newCalendarRouter(sampleEvent())

	t.Run("month grid", func(t *testing.T) {
		t.Parallel()

		rec := serve(router, http.MethodGet, "/calendar?mode=month&date=2022-01-10", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var view calendarDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if view.Mode != "month" || len(view.Cells) != 31 || view.LeadingBlanks != 5 {
			t.Fatalf("unexpected month view: mode=%s cells=%d blanks=%d", view.Mode, len(view.Cells), view.LeadingBlanks)
		}
		if len(view.WeekdayHeader) != 7 || view.WeekdayHeader[0] != "lun" {
			t.Fatalf("unexpected header %v", view.WeekdayHeader)
		}
		today := view.Cells[9]
		if !today.IsToday || len(today.Events) != 1 || today.Events[0].ID != "evt-1" {
			t.Fatalf("unexpected cell %#v", today)
		}
	})

	t.Run("day grid defaults to today", func(t *testing.T) {
		t.Parallel()

		rec := serve(router, http.MethodGet, "/calendar?mode=day", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var view calendarDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if view.Date != "2022-01-10" || len(view.Cells) != 24 {
			t.Fatalf("unexpected day view %s with %d cells", view.Date, len(view.Cells))
		}
		nine := view.Cells[9]
		if nine.Hour == nil || *nine.Hour != 9 || len(nine.Events) != 1 {
			t.Fatalf("unexpected 09:00 cell %#v", nine)
		}
		if p := nine.Events[0]; p.Top != 30 || p.ZIndex != 1 {
			t.Fatalf("unexpected layout %#v", p)
		}
		if len(view.Cells[8].Events) != 0 {
			t.Fatalf("expected 08:00 cell to be empty")
		}
	})

	t.Run("rejects unknown modes and dates", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"/calendar?mode=year", "/calendar?date=tomorrow", "/calendar/next?mode=decade"} {
			rec := serve(router, http.MethodGet, target, "")
			if rec.Code != http.StatusBadRequest || decodeError(t, rec).ErrorCode != CodeValidation {
				t.Fatalf("%s: expected 400 E_VALIDATION, got %d", target, rec.Code)
			}
		}
	})
}

func TestCalendarHandler_Navigate(t *testing.T) {
	t.Parallel()

	router := newCalendarRouter()

	tests := []struct {
		target string
		want   string
	}{
		{target: "/calendar/next?mode=month&date=2022-01-31", want: "2022-02-28T00:00:00Z"},
		{target: "/calendar/prev?mode=week&date=2022-01-10", want: "2022-01-03T00:00:00Z"},
		{target: "/calendar/next?mode=day&date=2022-01-10T09:15:00Z", want: "2022-01-11T09:15:00Z"},
	}

	for _, tc := range tests {
		rec := serve(router, http.MethodGet, tc.target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.target, rec.Code)
		}
		var resp navigationResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Date != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.target, tc.want, resp.Date)
		}
	}
}
