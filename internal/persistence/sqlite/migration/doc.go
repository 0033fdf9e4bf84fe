// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are read from an fs.FS (normally an embedded directory)
// and must be named {version}_{description}.sql, for example
// "001_create_events.sql". An optional "-- Description:" comment at the top
// of the file overrides the description taken from the name.
//
// Applied versions are tracked in the schema_migrations table so each file
// runs once. Every migration runs inside its own transaction.
//
// Example usage:
//
//	manager := NewManager(NewScanner(files, "migrations"), NewExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
