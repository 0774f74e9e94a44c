// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package models

import (
	"time"
)

// APIResponse is the JSON envelope for every non-binary HTTP response.
//
//	{
//	  "status": "success",
//	  "data": {"accepted": true, "event": "media.play"},
//	  "metadata": {"timestamp": "2026-01-02T12:00:00Z", "request_id": "..."}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine readable error.
//
// Codes used by Plexcord:
//   - VALIDATION_ERROR: malformed webhook form or payload
//   - NOT_FOUND: unknown or expired thumbnail
//   - SERVICE_UNAVAILABLE: readiness probe failed
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WebhookAck is the data of a successful webhook response. Accepted is false
// when the event was parsed but filtered out by classification.
type WebhookAck struct {
	Accepted bool   `json:"accepted"`
	Event    string `json:"event"`
	Action   string `json:"action,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status    string `json:"status"`
	Store     string `json:"store,omitempty"`
	StoreOK   bool   `json:"store_ok"`
	Version   string `json:"version,omitempty"`
	Uptime    string `json:"uptime,omitempty"`
	GeoSource string `json:"geo_provider,omitempty"`
}
