package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
	"github.com/example/calendar-events/internal/config"
	httptransport "github.com/example/calendar-events/internal/http"
	"github.com/example/calendar-events/internal/persistence"
	"github.com/example/calendar-events/internal/weather"
)

func newServeCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), c.logger())
		},
	}
}

func runServe(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireWeather(); err != nil {
		return err
	}

	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage(storage, logger)

	app, err := newApp(cfg, storage, time.Now, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	}
	logger.Info("calendar API listening", "addr", listener.Addr().String(), "timezone", cfg.Timezone, "locale", cfg.Locale)
	return serveUntilDone(ctx, server, listener, app.maintenance, logger)
}

// serveUntilDone serves on listener until ctx is done, then drains in-flight
// requests and stops maintenance before returning, so callers may release
// storage afterwards.
func serveUntilDone(ctx context.Context, server *http.Server, listener net.Listener, maintenance *application.Maintenance, logger *slog.Logger) error {
	maintenance.Start()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdown(server, maintenance, logger)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		maintenance.Stop(context.Background())
		return fmt.Errorf("server encountered error: %w", err)
	}
	<-stopped
	return nil
}

func shutdown(server *http.Server, maintenance *application.Maintenance, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to shutdown server", "error", err)
	}
	maintenance.Stop(shutdownCtx)
}

// store is the persistence surface the API needs.
type store interface {
	persistence.EventRepository
	Ping(ctx context.Context) error
}

// app is the wired service graph behind the HTTP API.
type app struct {
	handler     http.Handler
	views       *application.ViewStateStore
	maintenance *application.Maintenance
}

func newApp(cfg config.Config, events store, now func() time.Time, logger *slog.Logger) (*app, error) {
	notifications := application.NewNotificationCenterWithLogger(0, uuid.NewString, now, logger)
	views := application.NewViewStateStore(calendar.StartOfDay(now().In(cfg.Location)))

	eventService := application.NewEventServiceWithLogger(
		newEventRepositoryAdapter(events),
		application.EventServiceDeps{Notifier: notifications, Observer: views},
		uuid.NewString,
		now,
		logger,
	)

	client := weather.NewClient(weather.ClientConfig{
		BaseURL:  cfg.WeatherBaseURL,
		APIKey:   cfg.WeatherAPIKey,
		Timeout:  cfg.WeatherTimeout,
		Location: cfg.Location,
		Now:      now,
		Logger:   logger,
	})
	lookups := application.NewLookupService(client, application.LookupServiceOptions{
		CacheTTL: cfg.CacheTTL,
		Notifier: notifications,
		Fetch:    views,
		Logger:   logger,
	})

	engine := calendar.NewEngine(cfg.WeekStart, calendar.LabelsFor(cfg.Locale), now)
	viewService := application.NewViewServiceWithLogger(eventService, engine, cfg.Location, logger)

	maintenance, err := application.NewMaintenance(application.DefaultMaintenanceSchedule, []application.MaintenanceJob{
		{Name: "notifications", Run: notifications.Sweep},
	}, logger)
	if err != nil {
		return nil, err
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Events:   httptransport.NewEventHandler(eventService, logger),
		Lookups:  httptransport.NewLookupHandler(lookups, logger),
		Calendar: httptransport.NewCalendarHandler(viewService, now, logger),
		State:    httptransport.NewStateHandler(views, notifications, cfg.Location, logger),
		Health:   httptransport.NewHealthHandler(events.Ping, logger),
		Logger:   logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})

	return &app{handler: handler, views: views, maintenance: maintenance}, nil
}
