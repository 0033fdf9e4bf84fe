package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/example/calendar-events/internal/config"
	"github.com/example/calendar-events/internal/persistence/sqlite"
	"github.com/example/calendar-events/internal/persistence/sqlite/migration"
)

func newMigrateCommand(c *cli) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := c.logger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			storage, err := sqlite.Open(cfg.DBPath, logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer closeStorage(storage, logger)

			if !statusOnly {
				if err := storage.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
			}

			status, err := storage.MigrationStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("read migration status: %w", err)
			}
			return writeMigrationStatus(cmd.OutOrStdout(), status)
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "report the schema state without applying migrations")
	return cmd
}

func writeMigrationStatus(w io.Writer, status migration.Status) error {
	current := status.CurrentVersion
	if current == "" {
		current = "-"
	}

	rows := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("VERSION", "STATE", "APPLIED AT", "DESCRIPTION")
	for _, applied := range status.Applied {
		rows.Row(applied.Version, "applied", applied.AppliedAt.UTC().Format(time.RFC3339), "")
	}
	for _, pending := range status.Pending {
		rows.Row(pending.Version, "pending", "-", pending.Description)
	}

	_, err := fmt.Fprintf(w, "current version: %s\n%s\n", current, rows.Render())
	return err
}
