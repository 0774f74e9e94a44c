// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package models

// Plex webhook event kinds Plexcord reacts to.
const (
	EventPlay     = "media.play"
	EventRate     = "media.rate"
	EventScrobble = "media.scrobble"
)

// Library section types.
const (
	SectionMovie  = "movie"
	SectionShow   = "show"
	SectionArtist = "artist"
)

// MetadataTypeMovie and MetadataTypeTrack are item types with special
// subtitle handling.
const (
	MetadataTypeMovie = "movie"
	MetadataTypeTrack = "track"
)

// MediaEvent is the JSON document Plex posts in the "payload" form field.
//
// Field names follow Plex exactly, including the capitalised nested objects.
// Optional values are pointers: nil means Plex did not send the field, which
// is different from sending zero (season 0 is a real season).
type MediaEvent struct {
	Event    string         `json:"event" validate:"required"`
	User     bool           `json:"user"`
	Owner    bool           `json:"owner"`
	Rating   *float64       `json:"rating,omitempty"`
	Account  Account        `json:"Account"`
	Server   Server         `json:"Server"`
	Player   Player         `json:"Player"`
	Metadata *MediaMetadata `json:"Metadata,omitempty"`
}

// Account is the Plex user that triggered the event.
type Account struct {
	ID    int    `json:"id"`
	Thumb string `json:"thumb"` // avatar URL
	Title string `json:"title"` // display name
}

// Server identifies the Plex Media Server instance.
type Server struct {
	Title string `json:"title"`
	UUID  string `json:"uuid"`
}

// Player is the client device.
type Player struct {
	Local         bool   `json:"local"`
	PublicAddress string `json:"publicAddress"`
	Title         string `json:"title"`
	UUID          string `json:"uuid"`
}

// MediaMetadata describes the library item.
type MediaMetadata struct {
	LibrarySectionType string `json:"librarySectionType"`
	Type               string `json:"type"`
	Title              string `json:"title"`
	GUID               string `json:"guid"`
	RatingKey          string `json:"ratingKey"`
	Thumb              string `json:"thumb"`

	GrandparentTitle      *string `json:"grandparentTitle,omitempty"`
	ParentTitle           *string `json:"parentTitle,omitempty"`
	Index                 *int    `json:"index,omitempty"`
	ParentIndex           *int    `json:"parentIndex,omitempty"`
	Year                  *int    `json:"year,omitempty"`
	OriginallyAvailableAt *string `json:"originallyAvailableAt,omitempty"`
	Tagline               *string `json:"tagline,omitempty"`
	Summary               *string `json:"summary,omitempty"`
}

// IsVideo reports whether the item lives in a movie or TV library.
func (m *MediaMetadata) IsVideo() bool {
	return m.LibrarySectionType == SectionMovie || m.LibrarySectionType == SectionShow
}

// IsAudio reports whether the item lives in a music library.
func (m *MediaMetadata) IsAudio() bool {
	return m.LibrarySectionType == SectionArtist
}

// HasGrandparent reports whether the item has series or album context.
// An empty string counts as absent, matching how Plex omits it for movies.
func (m *MediaMetadata) HasGrandparent() bool {
	return m.GrandparentTitle != nil && *m.GrandparentTitle != ""
}

// ServerUUID returns the server identifier used for cache identity.
func (e *MediaEvent) ServerUUID() string {
	return e.Server.UUID
}

// PlayerAddress returns the player's public address for geolocation.
func (e *MediaEvent) PlayerAddress() string {
	return e.Player.PublicAddress
}

// StringValue dereferences an optional string, returning "" when absent.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
