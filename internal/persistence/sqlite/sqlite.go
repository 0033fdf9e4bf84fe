package sqlite

import (
	"context"
	"embed"
	"log/slog"

	"github.com/example/calendar-events/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the connection pool and the repositories built on it.
type Storage struct {
	*EventRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open connects to the SQLite database at path. ":memory:" opens a private
// in-memory database.
func Open(path string, logger *slog.Logger) (*Storage, error) {
	config := migration.DefaultSQLiteConfig(path)
	if path == ":memory:" {
		config = migration.InMemorySQLiteConfig()
	}
	return OpenWithConfig(config, logger)
}

// OpenWithConfig connects using an explicit SQLite configuration.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		EventRepository: NewEventRepository(pool),
		pool:            pool,
		logger:          logger,
	}, nil
}

// Close releases the underlying connections.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return s.migrationManager().RunMigrations(ctx)
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.migrationManager().Status(ctx)
}

func (s *Storage) migrationManager() *migration.Manager {
	return migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewExecutor(s.pool.DB()),
		s.logger,
	)
}
