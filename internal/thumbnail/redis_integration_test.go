// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

//go:build integration

package thumbnail

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/testinfra"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	redis, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	testinfra.CleanupContainer(t, redis)

	store, err := OpenRedisStore(ctx, redis.URL)
	if err != nil {
		t.Fatalf("OpenRedisStore(%s): %v", redis.URL, err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_Integration(t *testing.T) {
	store := newRedisStore(t)
	storeContract(t, store)

	ctx := context.Background()
	if err := store.Put(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)
	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after server-side expiry err = %v, want ErrNotFound", err)
	}
}

func TestCache_RedisBackend_Integration(t *testing.T) {
	store := newRedisStore(t)
	c := NewCache(store, DefaultOptions())
	ctx := context.Background()
	key := identity.Derive("srv-1", "plex://movie/42")

	if err := c.Put(ctx, key, solidPNG(t, 200, 300, color.White)); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit")
	}
	img := decodeJPEG(t, data)
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Errorf("stored image is %dx%d", b.Dx(), b.Dy())
	}
	if c.Backend() != BackendRedis {
		t.Errorf("Backend() = %q", c.Backend())
	}
}

func TestOpenRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := OpenRedisStore(ctx, "redis://127.0.0.1:1/0"); err == nil {
		t.Error("expected connection error")
	}
}
