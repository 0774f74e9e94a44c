// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package api

import (
	"context"
	"time"

	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/pipeline"
)

// DefaultMaxUploadBytes caps the thumbnail part of a webhook.
const DefaultMaxUploadBytes = 10 << 20

// Submitter accepts decoded webhooks.
type Submitter interface {
	Submit(ctx context.Context, ev *models.MediaEvent, thumb []byte) pipeline.Decision
}

// ImageSource serves cached thumbnails and reports store health.
type ImageSource interface {
	Get(ctx context.Context, key identity.Key) ([]byte, bool)
	Ping(ctx context.Context) error
	Backend() string
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	MaxUploadBytes int64
	ImageMaxAge    time.Duration
	Version        string
	GeoProvider    string
}

// Handler serves the webhook, image and health endpoints.
type Handler struct {
	pipeline  Submitter
	images    ImageSource
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates a Handler. images may be nil, in which case every
// image request is a 404 and readiness only reports the process is up.
func NewHandler(p Submitter, images ImageSource, cfg HandlerConfig) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ImageMaxAge <= 0 {
		cfg.ImageMaxAge = 24 * time.Hour
	}
	return &Handler{
		pipeline:  p,
		images:    images,
		config:    cfg,
		startTime: time.Now(),
	}
}
