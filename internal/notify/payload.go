// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package notify turns accepted Plex events into Discord webhook messages
// and delivers them.
//
// Formatting is a pure function of its input; delivery is a single POST per
// notification through a circuit breaker, with no retry.
package notify

// Payload is the Discord webhook message body.
type Payload struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// Embed is a Discord embed object.
type Embed struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Color       int             `json:"color,omitempty"`
	Footer      EmbedFooter     `json:"footer"`
	Thumbnail   *EmbedThumbnail `json:"thumbnail,omitempty"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedThumbnail points Discord at the cached poster image.
type EmbedThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}
