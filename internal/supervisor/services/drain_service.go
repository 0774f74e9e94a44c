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

// Drainer stops accepting work and waits for in-flight work.
// Satisfied by *pipeline.Pipeline.
type Drainer interface {
	Drain(ctx context.Context) error
}

// PipelineDrainService owns the background task lifetime. It does nothing
// while running; on shutdown it drains the pipeline so thumbnails being
// written and notifications being sent are finished, bounded by timeout.
type PipelineDrainService struct {
	pipeline Drainer
	timeout  time.Duration
}

// NewPipelineDrainService wraps p.
func NewPipelineDrainService(p Drainer, timeout time.Duration) *PipelineDrainService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PipelineDrainService{pipeline: p, timeout: timeout}
}

// Serve implements suture.Service.
func (d *PipelineDrainService) Serve(ctx context.Context) error {
	<-ctx.Done()

	drainCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.pipeline.Drain(drainCtx); err != nil {
		logging.Warn().Err(err).Msg("Pipeline tasks still running at shutdown")
	} else {
		logging.Info().Msg("Pipeline drained")
	}
	return ctx.Err()
}

func (d *PipelineDrainService) String() string {
	return "pipeline-drain"
}
