// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package thumbnail stores letterboxed JPEG thumbnails keyed by media
// identity.
//
// Plex attaches a poster to play and rate webhooks. Put shrinks it to a
// small JPEG and stores it for a week; Get serves it back to the
// notification formatter and to the public /images/{key} route. The cache
// is best effort: every failure is reported to the caller and none of them
// stops a notification.
package thumbnail

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/metrics"
)

// Defaults.
const (
	DefaultTTL     = 7 * 24 * time.Hour
	DefaultWidth   = 75
	DefaultHeight  = 75
	DefaultQuality = 90
)

// Options configures a Cache.
type Options struct {
	TTL     time.Duration
	Width   int
	Height  int
	Quality int
}

// DefaultOptions returns a 75x75 box, quality 90 and a one week TTL.
func DefaultOptions() Options {
	return Options{
		TTL:     DefaultTTL,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Quality: DefaultQuality,
	}
}

// Cache transforms thumbnails and keeps them in a Store.
type Cache struct {
	store   Store
	resizer Resizer
	ttl     time.Duration
}

// NewCache wraps store. Zero option values fall back to the defaults.
func NewCache(store Store, opts Options) *Cache {
	def := DefaultOptions()
	if opts.TTL <= 0 {
		opts.TTL = def.TTL
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}
	return &Cache{
		store:   store,
		resizer: Resizer{Width: opts.Width, Height: opts.Height, Quality: opts.Quality},
		ttl:     opts.TTL,
	}
}

// Put letterboxes raw and stores it under key. A later Put for the same key
// replaces the image and restarts its TTL.
func (c *Cache) Put(ctx context.Context, key identity.Key, raw []byte) error {
	backend := c.store.Name()

	start := time.Now()
	encoded, err := c.resizer.Letterbox(raw)
	metrics.RecordThumbnailTransform(time.Since(start), len(raw))
	if err != nil {
		metrics.RecordThumbnailOp(backend, "transform", "error")
		return err
	}

	if err := c.store.Put(ctx, key.String(), encoded, c.ttl); err != nil {
		metrics.RecordThumbnailOp(backend, "put", "error")
		return err
	}
	metrics.RecordThumbnailOp(backend, "put", "ok")

	logging.Ctx(ctx).Debug().
		Str("key", key.String()).
		Int("input_bytes", len(raw)).
		Int("stored_bytes", len(encoded)).
		Msg("Thumbnail cached")
	return nil
}

// Get returns the stored JPEG for key. Store errors are logged and treated
// as a miss.
func (c *Cache) Get(ctx context.Context, key identity.Key) ([]byte, bool) {
	backend := c.store.Name()

	data, err := c.store.Get(ctx, key.String())
	switch {
	case err == nil:
		metrics.RecordThumbnailOp(backend, "get", "hit")
		return data, true
	case errors.Is(err, ErrNotFound):
		metrics.RecordThumbnailOp(backend, "get", "miss")
	default:
		metrics.RecordThumbnailOp(backend, "get", "error")
		logging.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Str("backend", backend).Msg("Thumbnail lookup failed")
	}
	return nil, false
}

// Ping checks the backing store.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Backend returns the store name.
func (c *Cache) Backend() string {
	return c.store.Name()
}

// TTL returns the lifetime given to new entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Maintain runs store housekeeping when the backend needs it.
func (c *Cache) Maintain(ctx context.Context) error {
	m, ok := c.store.(Maintainer)
	if !ok {
		return nil
	}
	err := m.Maintain(ctx)
	metrics.RecordMaintenance(c.store.Name(), err)
	return err
}

// Close closes the store.
func (c *Cache) Close() error {
	return c.store.Close()
}
