// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package geo resolves a player's public address to an approximate
// location.
//
// Resolution is a two stage chain. An IP geolocation Provider (ip-api.com
// by default, MaxMind GeoLite2 optionally) answers first. When its answer
// lacks a usable city the coordinates it returned are reverse geocoded
// through Nominatim. Either stage may fail; the Resolver returns the best
// partial answer it has and callers treat errors as "location unknown".
package geo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/plexcord/internal/models"
)

var (
	// ErrPrivateAddress is returned for loopback, private, link-local and
	// unspecified addresses, which cannot be geolocated.
	ErrPrivateAddress = errors.New("address is not publicly routable")

	// ErrInvalidAddress is returned when the address cannot be parsed.
	ErrInvalidAddress = errors.New("invalid IP address")

	// ErrNoProvider is returned when no IP provider is configured.
	ErrNoProvider = errors.New("no geolocation provider configured")
)

// Provider looks up the location of a public IP address.
type Provider interface {
	// Lookup returns the location of ip. ip is already normalised and
	// known to be public.
	Lookup(ctx context.Context, ip string) (*models.ResolvedLocation, error)

	// Name identifies the provider in logs, metrics and ResolvedLocation.Source.
	Name() string

	// IsAvailable reports whether the provider is configured.
	IsAvailable() bool
}

// ReverseGeocoder maps coordinates to a named place.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*models.ResolvedLocation, error)
	Name() string
}

// DefaultUserAgent identifies Plexcord to public geocoding services.
const DefaultUserAgent = "plexcord/1.0 (+https://github.com/tomtom215/plexcord)"

// maxResponseBytes bounds provider replies.
const maxResponseBytes = 1 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
