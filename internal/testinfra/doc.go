// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package testinfra provides fixtures for integration tests, built only
// with the integration tag:
//
//	go test -tags integration ./...
//
// # Redis
//
// NewRedisContainer starts a real Redis with testcontainers-go so the redis
// thumbnail backend is tested against SET EX and key expiry as the server
// implements them.
//
// # Discord
//
// NewMockDiscordServer records webhook executions and decodes them into
// notify.Payload so tests can assert on embeds.
//
// Container tests call SkipIfNoDocker first and are skipped where Docker is
// not available.
package testinfra
