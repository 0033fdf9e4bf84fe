package application

import (
	"context"
	"testing"
	"time"
)

func TestMaintenance_RunOnce(t *testing.T) {
	t.Parallel()

	current := time.Date(2022, time.January, 10, 9, 0, 0, 0, time.UTC)
	center := newTestNotificationCenter(&current)
	center.Notify(titleSuccess, msgEventCreated, SeveritySuccess)

	calls := 0
	maintenance, err := NewMaintenance("", []MaintenanceJob{
		{Name: "notifications", Run: center.Sweep},
		{Name: "counter", Run: func() int { calls++; return 0 }},
		{Name: "empty"},
	}, nil)
	if err != nil {
		t.Fatalf("NewMaintenance failed: %v", err)
	}

	current = current.Add(time.Minute)
	maintenance.RunOnce()

	if calls != 1 {
		t.Fatalf("expected job to run once, got %d", calls)
	}
	if len(center.Active()) != 0 {
		t.Fatalf("expected notifications to be swept")
	}
}

func TestMaintenance_InvalidSchedule(t *testing.T) {
	t.Parallel()

	if _, err := NewMaintenance("every so often", nil, nil); err == nil {
		t.Fatalf("expected invalid schedule to be rejected")
	}
}

func TestMaintenance_StartStop(t *testing.T) {
	t.Parallel()

	maintenance, err := NewMaintenance("@every 1h", nil, nil)
	if err != nil {
		t.Fatalf("NewMaintenance failed: %v", err)
	}
	maintenance.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	maintenance.Stop(ctx)
}
