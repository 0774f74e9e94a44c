// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestMaintenanceService_RunOnce(t *testing.T) {
	var first, second atomic.Int32
	svc := NewMaintenanceService(time.Hour,
		MaintenanceTask{Name: "broken", Run: func(context.Context) error {
			first.Add(1)
			return errors.New("disk full")
		}},
		MaintenanceTask{Name: "sweep", Run: func(context.Context) error {
			second.Add(1)
			return nil
		}},
	)

	svc.RunOnce(context.Background())

	if first.Load() != 1 || second.Load() != 1 {
		t.Errorf("runs = %d, %d; a failing task must not stop the next one", first.Load(), second.Load())
	}
}

func TestMaintenanceService_TaskDeadline(t *testing.T) {
	svc := NewMaintenanceService(50 * time.Millisecond)
	svc.tasks = []MaintenanceTask{{Name: "slow", Run: func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("task context has no deadline")
		}
		return nil
	}}}
	svc.RunOnce(context.Background())
}

func TestMaintenanceService_Serve(t *testing.T) {
	var runs atomic.Int32
	svc := NewMaintenanceService(10*time.Millisecond, MaintenanceTask{
		Name: "count",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("task ran %d times, want at least 2", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestMaintenanceService_Defaults(t *testing.T) {
	svc := NewMaintenanceService(0)
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
	if svc.String() != "maintenance" {
		t.Errorf("String() = %q", svc.String())
	}
}
