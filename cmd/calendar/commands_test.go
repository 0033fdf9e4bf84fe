package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/calendar-events/internal/config"
	"github.com/example/calendar-events/internal/testfixtures"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWeatherStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/timezone.json":
			_, _ = io.WriteString(w, `{"location":{"tz_id":"Europe/Madrid"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestApp_ServesWiredAPI(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	weatherStub := newWeatherStub(t)
	clock := testfixtures.NewClock(time.Date(2022, time.January, 10, 8, 0, 0, 0, time.UTC))

	cfg := config.Config{
		WeatherBaseURL: weatherStub.URL,
		WeatherAPIKey:  "test-key",
		WeatherTimeout: time.Second,
		CacheTTL:       time.Minute,
		Timezone:       "UTC",
		Location:       time.UTC,
		WeekStart:      time.Monday,
		Locale:         "es",
	}
	app, err := newApp(cfg, harness.Storage, clock.NowFunc(), discardLogger())
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}

	do := func(method, target, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected healthy storage, got %d", rec.Code)
	}

	rec := do(http.MethodPost, "/events", `{"title":"Standup","startDate":"2022-01-10T09:00:00Z","endDate":"2022-01-10T09:30:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header from middleware")
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("expected a UUID event id, got %q", created.ID)
	}

	rec = do(http.MethodGet, "/calendar?mode=day&date=2022-01-10", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Standup") {
		t.Fatalf("expected the event in the day grid, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/timezone?location=Madrid", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Europe/Madrid") {
		t.Fatalf("expected proxied timezone, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/notifications", "")
	if !strings.Contains(rec.Body.String(), `"severity":"success"`) {
		t.Fatalf("expected a success notification, got %s", rec.Body.String())
	}

	rec = do(http.MethodPost, "/view-state", `{"type":"set_event_to_edit","eventId":"`+created.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec = do(http.MethodDelete, "/events/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if state := app.views.Snapshot(); state.EditingEventID != nil {
		t.Fatalf("expected deleting the edited event to clear the reference")
	}

	clock.Advance(time.Hour)
	app.maintenance.RunOnce()
	if rec = do(http.MethodGet, "/notifications", ""); rec.Body.String() != "[]\n" {
		t.Fatalf("expected maintenance to sweep expired notifications, got %s", rec.Body.String())
	}
}

// setupEnv points the configuration at a fresh database file.
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		config.EnvHTTPAddr, config.EnvWeatherAPIKey, config.EnvWeatherBaseURL, config.EnvWeatherTimeout,
		config.EnvCacheTTL, config.EnvWeekStart, config.EnvConfigFile,
	} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "calendar.db")
	t.Setenv(config.EnvDBPath, path)
	t.Setenv(config.EnvTimezone, "UTC")
	t.Setenv(config.EnvLocale, "es")
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func seedDatabase(t *testing.T, path string, fixtures ...testfixtures.EventFixture) {
	t.Helper()
	storage, err := openStorage(context.Background(), config.Config{DBPath: path}, discardLogger())
	if err != nil {
		t.Fatalf("openStorage returned error: %v", err)
	}
	defer closeStorage(storage, discardLogger())
	for _, fixture := range fixtures {
		if err := storage.CreateEvent(context.Background(), fixture.Persistence()); err != nil {
			t.Fatalf("seed %s: %v", fixture.ID, err)
		}
	}
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)

	out, err := runCommand(t, "migrate", "--status")
	if err != nil {
		t.Fatalf("migrate --status returned error: %v", err)
	}
	if !strings.Contains(out, "001") || !strings.Contains(out, "pending") {
		t.Fatalf("expected the first migration to be pending:\n%s", out)
	}

	out, err = runCommand(t, "migrate")
	if err != nil {
		t.Fatalf("migrate returned error: %v", err)
	}
	if strings.Contains(out, "pending") || !strings.Contains(out, "applied") {
		t.Fatalf("expected every migration to be applied:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	path := setupEnv(t)
	day := testfixtures.ReferenceTime()
	seedDatabase(t, path,
		testfixtures.NewEventFixture(testfixtures.WithEventID("evt-jan"), testfixtures.WithEventTitle("Enero"), testfixtures.WithEventWindow(day, day.Add(time.Hour))),
		testfixtures.NewEventFixture(testfixtures.WithEventID("evt-feb"), testfixtures.WithEventTitle("Febrero"), testfixtures.WithEventWindow(day.AddDate(0, 1, 0), day.AddDate(0, 1, 0).Add(time.Hour))),
	)

	t.Run("writes every event to stdout", func(t *testing.T) {
		out, err := runCommand(t, "export")
		if err != nil {
			t.Fatalf("export returned error: %v", err)
		}
		for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Enero", "SUMMARY:Febrero"} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("filters by range into a file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "enero.ics")
		if _, err := runCommand(t, "export", "--from", "2022-01-01", "--to", "2022-02-01", "--output", target); err != nil {
			t.Fatalf("export returned error: %v", err)
		}
		content, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("read export: %v", err)
		}
		if !strings.Contains(string(content), "SUMMARY:Enero") || strings.Contains(string(content), "Febrero") {
			t.Fatalf("expected only January events:\n%s", content)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		if _, err := runCommand(t, "export", "--from", "01/01/2022"); err == nil {
			t.Fatalf("expected an error for a malformed date")
		}
	})
}

func TestViewCommand(t *testing.T) {
	path := setupEnv(t)
	day := testfixtures.ReferenceTime()
	seedDatabase(t, path,
		testfixtures.NewEventFixture(testfixtures.WithEventTitle("Planificación"), testfixtures.WithEventWindow(day, day.Add(time.Hour))),
		testfixtures.NewEventFixture(testfixtures.WithEventTitle("Vacaciones"), testfixtures.WithEventWindow(day.AddDate(0, 0, 2), day.AddDate(0, 0, 2)), testfixtures.WithEventAllDay()),
	)

	t.Run("month agenda", func(t *testing.T) {
		out, err := runCommand(t, "view", "--mode", "month", "--date", "2022-01-10")
		if err != nil {
			t.Fatalf("view returned error: %v", err)
		}
		for _, want := range []string{"month", "lun 2022-01-10", "09:00-10:00 Planificación", "mié 2022-01-12", "Vacaciones"} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in agenda:\n%s", want, out)
			}
		}
	})

	t.Run("day agenda lists hourly cells", func(t *testing.T) {
		out, err := runCommand(t, "view", "--mode", "day", "--date", "2022-01-10")
		if err != nil {
			t.Fatalf("view returned error: %v", err)
		}
		if !strings.Contains(out, "lun 2022-01-10 09:00") || strings.Contains(out, "Vacaciones") {
			t.Fatalf("unexpected day agenda:\n%s", out)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := runCommand(t, "view", "--mode", "year"); err == nil {
			t.Fatalf("expected an error for an unknown mode")
		}
	})
}

func TestServeCommand_RequiresWeatherKey(t *testing.T) {
	setupEnv(t)

	_, err := runCommand(t, "serve")
	if err == nil || !strings.Contains(err.Error(), config.EnvWeatherAPIKey) {
		t.Fatalf("expected missing API key error, got %v", err)
	}
}
