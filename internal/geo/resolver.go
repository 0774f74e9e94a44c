// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package geo

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/plexcord/internal/cache"
	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/models"
)

const (
	// DefaultCacheTTL is how long resolved locations are reused.
	DefaultCacheTTL = time.Hour

	// DefaultPartialTTL is how long a city-less location is reused after the
	// reverse geocoder failed, before the fallback is tried again.
	DefaultPartialTTL = time.Minute
)

// Resolver runs the provider then reverse-geocoder chain with a result
// cache in front.
type Resolver struct {
	primary    Provider
	fallback   ReverseGeocoder
	cache      *cache.Cache[*models.ResolvedLocation]
	partialTTL time.Duration
}

// ResolverOptions configures a Resolver. Fallback may be nil to disable
// reverse geocoding.
type ResolverOptions struct {
	Primary    Provider
	Fallback   ReverseGeocoder
	CacheTTL   time.Duration
	PartialTTL time.Duration

	// Clock overrides time.Now for cache expiry.
	Clock func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	partialTTL := opts.PartialTTL
	if partialTTL <= 0 {
		partialTTL = DefaultPartialTTL
	}
	partialTTL = min(partialTTL, ttl)

	var cacheOpts []cache.Option
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}
	return &Resolver{
		primary:    opts.Primary,
		fallback:   opts.Fallback,
		cache:      cache.New[*models.ResolvedLocation](ttl, cacheOpts...),
		partialTTL: partialTTL,
	}
}

// Resolve returns the location of address.
//
// Non-public or unparsable addresses return ErrPrivateAddress or
// ErrInvalidAddress without any network call. A primary provider failure
// is returned as an error and not cached. A fallback failure is not an
// error: the primary's partial location is returned and kept only for the
// partial TTL, so the fallback runs again soon.
func (r *Resolver) Resolve(ctx context.Context, address string) (*models.ResolvedLocation, error) {
	ip, err := NormalizeAddress(address)
	if err != nil {
		metrics.RecordGeoLookup("resolver", "skipped", 0)
		return nil, err
	}

	if loc, ok := r.cache.Get(ip); ok {
		metrics.RecordGeoLookup("resolver", "cached", 0)
		copied := *loc
		return &copied, nil
	}

	if r.primary == nil || !r.primary.IsAvailable() {
		return nil, ErrNoProvider
	}

	loc, err := r.primary.Lookup(ctx, ip)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, errors.New(r.primary.Name() + " returned no location")
	}

	complete := true
	if !loc.HasUsableCity() {
		loc, complete = r.reverse(ctx, loc)
	}

	if complete {
		r.cache.Set(ip, loc)
	} else {
		r.cache.SetWithTTL(ip, loc, r.partialTTL)
	}
	copied := *loc
	return &copied, nil
}

// reverse enriches loc from its coordinates. It always returns a usable
// location: loc itself when the fallback is disabled or fails. The flag is
// false only when the fallback was tried and failed.
func (r *Resolver) reverse(ctx context.Context, loc *models.ResolvedLocation) (*models.ResolvedLocation, bool) {
	if r.fallback == nil || !loc.HasCoordinates() {
		return loc, true
	}

	place, err := r.fallback.Reverse(ctx, *loc.Latitude, *loc.Longitude)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("provider", r.fallback.Name()).
			Float64("lat", *loc.Latitude).
			Float64("lon", *loc.Longitude).
			Msg("Reverse geocode failed, using partial location")
		return loc, false
	}
	return loc.Merge(place), true
}

// CacheHitRate returns the location cache hit rate as a percentage.
func (r *Resolver) CacheHitRate() float64 {
	return r.cache.HitRate()
}

// SweepCache drops expired cache entries.
func (r *Resolver) SweepCache() int {
	return r.cache.Sweep()
}

// ProviderName returns the primary provider name, or "" when none is set.
func (r *Resolver) ProviderName() string {
	if r.primary == nil {
		return ""
	}
	return r.primary.Name()
}
