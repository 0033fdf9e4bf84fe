package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Executor applies migrations and tracks them in schema_migrations.
type Executor struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewExecutor creates a new SQLite migration executor
func NewExecutor(db *sqlx.DB) *Executor {
	return &Executor{db: db, now: time.Now}
}

// InitializeVersionTable creates the schema_migrations table if it doesn't exist
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT NOT NULL DEFAULT '',
			execution_time_ms INTEGER NOT NULL DEFAULT 0
		)
	`
	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewDatabaseError("", "create schema_migrations table", err)
	}
	return nil
}

// ExecuteMigration runs a single migration and records it in the same transaction.
func (e *Executor) ExecuteMigration(ctx context.Context, migration Migration) (err error) {
	started := e.now()

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewDatabaseError(migration.Version, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	statements := SplitStatements(migration.SQL)
	if len(statements) == 0 {
		err = NewMigrationError(migration.Version, migration.FilePath, "parse SQL", fmt.Errorf("no SQL statements found in migration"))
		return err
	}

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = NewDatabaseError(migration.Version, fmt.Sprintf("execute statement %d", i+1), execErr)
			return err
		}
	}

	elapsed := e.now().Sub(started)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`,
		migration.Version, e.now().UTC().Format(time.RFC3339), migration.Checksum, elapsed.Milliseconds(),
	)
	if err != nil {
		err = NewDatabaseError(migration.Version, "record migration", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = NewDatabaseError(migration.Version, "commit transaction", err)
		return err
	}
	return nil
}

type appliedRow struct {
	Version         string `db:"version"`
	AppliedAt       string `db:"applied_at"`
	Checksum        string `db:"checksum"`
	ExecutionTimeMS int64  `db:"execution_time_ms"`
}

// AppliedMigrations returns all applied migrations ordered by version.
func (e *Executor) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	var rows []appliedRow
	err := e.db.SelectContext(ctx, &rows,
		`SELECT version, applied_at, checksum, execution_time_ms FROM schema_migrations ORDER BY CAST(version AS INTEGER) ASC`)
	if err != nil {
		return nil, NewDatabaseError("", "list applied migrations", err)
	}

	applied := make([]AppliedMigration, 0, len(rows))
	for _, row := range rows {
		appliedAt, parseErr := time.Parse(time.RFC3339, row.AppliedAt)
		if parseErr != nil {
			return nil, NewDatabaseError(row.Version, "parse applied_at", parseErr)
		}
		applied = append(applied, AppliedMigration{
			Version:       row.Version,
			AppliedAt:     appliedAt,
			ExecutionTime: time.Duration(row.ExecutionTimeMS) * time.Millisecond,
			Checksum:      row.Checksum,
		})
	}
	return applied, nil
}
