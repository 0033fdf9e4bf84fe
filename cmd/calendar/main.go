package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/example/calendar-events/internal/config"
	"github.com/example/calendar-events/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries what every subcommand shares.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	debug  bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "calendar",
		Short:         "Calendar events service with weather lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCommand(c),
		newMigrateCommand(c),
		newExportCommand(c),
		newViewCommand(c),
	)
	return root
}

// logger writes human readable records to a terminal and JSON otherwise.
func (c *cli) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := c.stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(c.stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(c.stderr, opts))
}

// openStorage opens the configured database and brings its schema up to date.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlite.Storage, error) {
	storage, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return storage, nil
}

func closeStorage(storage *sqlite.Storage, logger *slog.Logger) {
	if err := storage.Close(); err != nil {
		logger.Error("failed to close storage", "error", err)
	}
}
