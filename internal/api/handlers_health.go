// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/plexcord/internal/models"
)

const readinessTimeout = 2 * time.Second

// HealthLive reports that the process is serving.
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, models.HealthStatus{
		Status:  "healthy",
		Version: h.config.Version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthReady pings the thumbnail store.
// GET /api/v1/health/ready
//
// Returns 503 when the store does not answer, so orchestrators hold traffic
// until Redis (or the local database) is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:    "healthy",
		StoreOK:   true,
		Version:   h.config.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		GeoSource: h.config.GeoProvider,
	}

	if h.images != nil {
		status.Store = h.images.Backend()

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.images.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.StoreOK = false
			respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
				Status:   "error",
				Data:     status,
				Metadata: newMetadata(r),
				Error:    errorf(CodeUnavailable, "Thumbnail store unavailable"),
			})
			return
		}
	}

	respondSuccess(w, r, status)
}
