// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

/*
Package api exposes Plexcord over HTTP using the Chi router.

Routes:

	POST /                       Plex webhook (multipart "payload" + optional "thumb", or raw JSON)
	GET  /images/{key}           cached 75x75 JPEG thumbnail used by Discord embeds
	GET  /api/v1/health/live     liveness
	GET  /api/v1/health/ready    readiness, pings the thumbnail store
	GET  /metrics                Prometheus exposition
	GET  /*                      static files (plex-icon.png)

The webhook handler only parses and validates. Once the payload is decoded
the request is answered with 200 whatever happens downstream; the pipeline
does the rest in the background.

Every JSON response uses the models.APIResponse envelope:

	{"status":"success","data":{"accepted":true,"event":"media.play"},"metadata":{...}}
	{"status":"error","error":{"code":"VALIDATION_ERROR","message":"..."},"metadata":{...}}
*/
package api
