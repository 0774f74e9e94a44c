// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package thumbnail

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/tomtom215/plexcord/internal/logging"
)

var bucketThumbnails = []byte("thumbnails")

// expiryPrefixLen is the size of the big-endian unix-nano expiry stored in
// front of every value.
const expiryPrefixLen = 8

// BoltStore keeps thumbnails in a single bbolt file. bbolt has no TTL, so
// each value is prefixed with its expiry and Maintain deletes stale keys.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// OpenBoltStore opens (or creates) the database file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("bolt backend requires a path")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database at %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketThumbnails)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucketThumbnails, err)
	}

	logging.Info().Str("path", path).Msg("Bolt thumbnail store opened")
	return &BoltStore{db: db, now: time.Now}, nil
}

func (b *BoltStore) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	value := make([]byte, expiryPrefixLen+len(data))
	binary.BigEndian.PutUint64(value, uint64(b.now().Add(ttl).UnixNano())) //nolint:gosec // expiry is after 1970
	copy(value[expiryPrefixLen:], data)

	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketThumbnails).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

func (b *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	now := b.now()
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketThumbnails).Get([]byte(key))
		if value == nil || b.expired(value, now) {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		data = make([]byte, len(value)-expiryPrefixLen)
		copy(data, value[expiryPrefixLen:])
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bolt get: %w", err)
	}
	return data, nil
}

func (b *BoltStore) Ping(context.Context) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketThumbnails) == nil {
			return errors.New("thumbnail bucket missing")
		}
		return nil
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

func (b *BoltStore) Name() string { return BackendBolt }

// Maintain deletes expired entries.
func (b *BoltStore) Maintain(ctx context.Context) error {
	now := b.now()
	removed := 0
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketThumbnails)

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if b.expired(v, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return ctx.Err()
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt sweep: %w", err)
	}
	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Expired thumbnails swept")
	}
	return nil
}

func (b *BoltStore) expired(value []byte, now time.Time) bool {
	if len(value) < expiryPrefixLen {
		return true
	}
	expiry := int64(binary.BigEndian.Uint64(value[:expiryPrefixLen])) //nolint:gosec // written by Put
	return now.UnixNano() >= expiry
}
