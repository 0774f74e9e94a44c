// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package identity derives the stable cache key of a media item.
//
// The key is the lowercase hex SHA-1 of the server UUID followed by the
// item GUID. It names both the cached thumbnail and its public URL, so it
// must stay stable across restarts and releases.
package identity

import (
	"crypto/sha1" //nolint:gosec // content addressing, not a security boundary
	"encoding/hex"
	"fmt"

	"github.com/tomtom215/plexcord/internal/validation"
)

// keyTag matches a hex SHA-1 digest. excludes=x rejects the 0x prefix that
// the hexadecimal validator would allow.
var keyTag = fmt.Sprintf("len=%d,hexadecimal,lowercase,excludes=x", sha1.Size*2)

// Key identifies a media item across the thumbnail cache and image URLs.
type Key string

// Derive returns the key for guid on the server identified by serverUUID.
// Empty inputs are hashed like any other string.
func Derive(serverUUID, guid string) Key {
	sum := sha1.Sum([]byte(serverUUID + guid)) //nolint:gosec // see import
	return Key(hex.EncodeToString(sum[:]))
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Valid reports whether k has the shape of a derived key: 40 lowercase
// hex characters.
func (k Key) Valid() bool {
	return validation.ValidateVar("key", string(k), keyTag) == nil
}

// Parse validates s and returns it as a Key.
func Parse(s string) (Key, bool) {
	k := Key(s)
	return k, k.Valid()
}
