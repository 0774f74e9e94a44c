// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

/*
Package config loads Plexcord configuration with koanf.

# Configuration Sources

Three layers, later ones winning:

 1. Struct defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or
    /etc/plexcord/config.yaml
 3. Environment variables listed in the mapping table in koanf.go

Unknown environment variables are ignored, so the process environment
cannot leak into configuration by accident.

# Minimal Setup

Only the Discord webhook key is required:

	DISCORD_WEBHOOK_KEY=123456789/abcdef...
	APP_URL=https://plexcord.example.com

APP_URL must be reachable by Discord, because embed thumbnails and the sender
avatar are served from it.

# Thumbnail Storage

THUMBNAIL_BACKEND picks the store:

  - memory (default): process local, lost on restart
  - redis: REDIS_URL or REDISCLOUD_URL
  - badger: BADGER_PATH directory
  - bolt: BOLT_PATH file

# Example config.yaml

	server:
	  port: 11000
	  public_url: https://plexcord.example.com
	discord:
	  webhook_key: 123456789/abcdef
	thumbnail:
	  backend: redis
	  redis_url: redis://localhost:6379/0
	geo:
	  provider: ip-api
	  home_country: US
*/
package config
