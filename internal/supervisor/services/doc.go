// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package services adapts Plexcord's long-running components to
// suture.Service.
//
//   - HTTPServerService: the webhook, image and health server (api layer)
//   - PipelineDrainService: waits for background tasks at shutdown (delivery layer)
//   - MaintenanceService: periodic store and cache housekeeping (data layer)
//
// Every service returns ctx.Err() after a requested stop and implements
// fmt.Stringer so suture's event log names it.
package services
