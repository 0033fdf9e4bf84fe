package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func newTestManager(t *testing.T, files fstest.MapFS) (*Manager, func() *Executor) {
	t.Helper()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	executor := NewExecutor(db)
	return NewManager(NewScanner(files, "m"), executor, nil), func() *Executor { return executor }
}

func TestManager_RunMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("applies pending migrations once", func(t *testing.T) {
		t.Parallel()

		files := fstest.MapFS{
			"m/001_create.sql": {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
			"m/002_seed.sql":   {Data: []byte("INSERT INTO notes (id) VALUES ('a');\nINSERT INTO notes (id) VALUES ('b');")},
		}
		manager, executor := newTestManager(t, files)

		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("second RunMigrations failed: %v", err)
		}

		applied, err := executor().AppliedMigrations(ctx)
		if err != nil {
			t.Fatalf("AppliedMigrations failed: %v", err)
		}
		if len(applied) != 2 || applied[1].Version != "002" {
			t.Fatalf("unexpected applied migrations: %#v", applied)
		}

		var count int
		if err := executor().db.GetContext(ctx, &count, "SELECT COUNT(*) FROM notes"); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 2 {
			t.Fatalf("expected seed to run once, got %d rows", count)
		}

		status, err := manager.Status(ctx)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.CurrentVersion != "002" || len(status.Pending) != 0 {
			t.Fatalf("unexpected status: %#v", status)
		}
	})

	t.Run("failed migration rolls back", func(t *testing.T) {
		t.Parallel()

		files := fstest.MapFS{
			"m/001_broken.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nCREATE TABLE ok (id TEXT);")},
		}
		manager, executor := newTestManager(t, files)

		err := manager.RunMigrations(ctx)
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}

		applied, err := executor().AppliedMigrations(ctx)
		if err != nil {
			t.Fatalf("AppliedMigrations failed: %v", err)
		}
		if len(applied) != 0 {
			t.Fatalf("expected no applied migrations, got %d", len(applied))
		}
	})

	t.Run("gaps in the sequence are rejected", func(t *testing.T) {
		t.Parallel()

		files := fstest.MapFS{
			"m/001_a.sql": {Data: []byte("CREATE TABLE a (id TEXT);")},
			"m/003_c.sql": {Data: []byte("CREATE TABLE c (id TEXT);")},
		}
		manager, _ := newTestManager(t, files)

		if err := manager.RunMigrations(ctx); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})
}
