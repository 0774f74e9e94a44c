// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

/*
Command server runs Plexcord, which turns Plex Media Server webhooks into
Discord notifications.

Point a Plex webhook (Settings > Webhooks) at the server root. On play and
rate the attached poster is resized and cached; on play, rate and video
scrobble a Discord embed is sent with the title, the user and player, and
where the player is.

# Process Layout

	plexcord
	├── data-layer
	│   └── maintenance (thumbnail expiry, badger GC, location cache sweep)
	├── delivery-layer
	│   └── pipeline-drain
	└── api-layer
	    └── http-server

Startup order:

 1. Configuration (koanf: defaults, config.yaml, environment)
 2. Logging (zerolog)
 3. Thumbnail store (memory, redis, badger or bolt)
 4. Location resolver (ip-api or MaxMind, Nominatim fallback)
 5. Discord dispatcher and pipeline
 6. Chi router and supervisor tree

# Configuration

	DISCORD_WEBHOOK_KEY=<id>/<token>     # required
	APP_URL=https://plexcord.example.com # where Discord fetches images
	PORT=11000
	THUMBNAIL_BACKEND=memory             # memory, redis, badger, bolt
	REDIS_URL=redis://localhost:6379/0
	GEO_PROVIDER=ip-api                  # ip-api or maxmind
	HOME_COUNTRY=US
	LOG_LEVEL=info

See package config for the full list.

# Endpoints

	POST /                      Plex webhook (multipart or JSON)
	GET  /images/{key}          cached thumbnail
	GET  /api/v1/health/live    liveness
	GET  /api/v1/health/ready   readiness (pings the thumbnail store)
	GET  /metrics               Prometheus
	GET  /*                     static files, including /plex-icon.png

# Signals

SIGINT and SIGTERM stop the HTTP server, then wait up to TASK_TIMEOUT for
thumbnail writes and notifications already scheduled.
*/
package main
