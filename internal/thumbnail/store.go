// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Store.Get for missing or expired keys.
var ErrNotFound = errors.New("thumbnail not found")

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendBolt   = "bolt"
)

// Store persists encoded thumbnails with a time-to-live. Implementations
// must be safe for concurrent use.
type Store interface {
	// Put stores data under key, replacing any previous value and
	// restarting its TTL.
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error

	// Name is the backend name used in logs and metrics.
	Name() string
}

// Maintainer is implemented by stores that need periodic housekeeping:
// dropping expired entries or reclaiming disk space.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// StoreOptions selects and configures a backend.
type StoreOptions struct {
	Backend    string
	RedisURL   string
	BadgerPath string
	BoltPath   string
}

// OpenStore creates the configured backend.
func OpenStore(ctx context.Context, opts StoreOptions) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return OpenRedisStore(ctx, opts.RedisURL)
	case BackendBadger:
		return OpenBadgerStore(opts.BadgerPath)
	case BackendBolt:
		return OpenBoltStore(opts.BoltPath)
	default:
		return nil, fmt.Errorf("unknown thumbnail backend %q", opts.Backend)
	}
}
