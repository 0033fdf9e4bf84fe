package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/calendar-events/internal/persistence"
	"github.com/example/calendar-events/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database for integration-style tests.
type SQLiteHarness struct {
	Storage *sqlite.Storage
	Events  persistence.EventRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// Seed inserts the fixtures directly through the repository.
func (h *SQLiteHarness) Seed(tb testing.TB, fixtures ...EventFixture) {
	tb.Helper()
	for _, fixture := range fixtures {
		if err := h.Events.CreateEvent(context.Background(), fixture.Persistence()); err != nil {
			tb.Fatalf("failed to seed event %s: %v", fixture.ID, err)
		}
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "calendar.db")

	storage, err := sqlite.Open(path, nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage: storage,
		Events:  storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
