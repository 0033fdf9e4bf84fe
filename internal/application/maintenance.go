package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/example/calendar-events/internal/logging"
)

// DefaultMaintenanceSchedule runs the sweeps once a minute.
const DefaultMaintenanceSchedule = "@every 1m"

// MaintenanceJob is a periodic cleanup returning the number of items removed.
type MaintenanceJob struct {
	Name string
	Run  func() int
}

// Maintenance runs cleanup jobs on a cron schedule.
type Maintenance struct {
	cron   *cron.Cron
	jobs   []MaintenanceJob
	logger *slog.Logger
}

// NewMaintenance registers jobs under schedule. An empty schedule selects
// DefaultMaintenanceSchedule.
func NewMaintenance(schedule string, jobs []MaintenanceJob, logger *slog.Logger) (*Maintenance, error) {
	if schedule == "" {
		schedule = DefaultMaintenanceSchedule
	}
	logger = logging.Or(logger).With("component", "maintenance")

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger: logger})))
	m := &Maintenance{cron: c, jobs: jobs, logger: logger}
	if _, err := c.AddFunc(schedule, m.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}
	return m, nil
}

// Start begins running jobs in the background.
func (m *Maintenance) Start() {
	m.cron.Start()
}

// Stop prevents further runs and waits for a running sweep until ctx is done.
func (m *Maintenance) Stop(ctx context.Context) {
	done := m.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce executes every job immediately.
func (m *Maintenance) RunOnce() {
	for _, job := range m.jobs {
		if job.Run == nil {
			continue
		}
		if removed := job.Run(); removed > 0 {
			m.logger.Debug("maintenance sweep", "job", job.Name, "removed", removed)
		}
	}
}

// cronLogger adapts slog to the cron logging interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
