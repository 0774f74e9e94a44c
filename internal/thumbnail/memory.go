// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package thumbnail

import (
	"context"
	"time"

	"github.com/tomtom215/plexcord/internal/cache"
)

// MemoryStore keeps thumbnails in process memory. Contents are lost on
// restart, which is acceptable for a cache with a one-week lifetime.
type MemoryStore struct {
	entries *cache.Cache[[]byte]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...cache.Option) *MemoryStore {
	return &MemoryStore{entries: cache.New[[]byte](DefaultTTL, opts...)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.entries.SetWithTTL(key, stored, ttl)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Name() string { return BackendMemory }

// Maintain drops expired entries.
func (m *MemoryStore) Maintain(context.Context) error {
	m.entries.Sweep()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}
