// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package services

import (
	"context"
	"time"

	"github.com/tomtom215/plexcord/internal/logging"
)

// MaintenanceTask is one periodic housekeeping job.
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// MaintenanceService runs every task on a fixed interval: expiring memory
// and bolt thumbnails, badger value-log GC, and the location cache sweep.
//
// A failing task is logged and retried on the next tick. It never makes
// Serve return, so one broken store does not restart the others.
type MaintenanceService struct {
	tasks    []MaintenanceTask
	interval time.Duration
	timeout  time.Duration
}

// NewMaintenanceService creates the service. Each run of a task is bounded
// by the interval itself.
func NewMaintenanceService(interval time.Duration, tasks ...MaintenanceTask) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		tasks:    tasks,
		interval: interval,
		timeout:  interval,
	}
}

// Serve implements suture.Service.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce runs every task sequentially.
func (m *MaintenanceService) RunOnce(ctx context.Context) {
	log := logging.WithComponent("maintenance")
	for _, task := range m.tasks {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		taskCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := task.Run(taskCtx)
		cancel()

		if err != nil {
			log.Warn().Err(err).Str("task", task.Name).Msg("Maintenance task failed")
			continue
		}
		log.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("Maintenance task completed")
	}
}

func (m *MaintenanceService) String() string {
	return "maintenance"
}
