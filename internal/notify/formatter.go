// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package notify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/models"
)

const (
	// DefaultUsername is the sender name shown in Discord.
	DefaultUsername = "Plex"

	// DefaultAvatarPath is served from the static directory.
	DefaultAvatarPath = "/plex-icon.png"

	// DefaultEmbedColor is Plex orange.
	DefaultEmbedColor = 0xE5A00D

	// DefaultHomeCountry decides whether the region or the country name is
	// shown next to the city.
	DefaultHomeCountry = "US"

	summaryLimit       = 300
	thumbnailDisplayPx = 200
)

// Formatter builds Discord payloads. The zero value is usable but has no
// public URL, so image links are relative.
type Formatter struct {
	PublicURL   string
	Username    string
	AvatarPath  string
	EmbedColor  int
	HomeCountry string
}

// Input is everything Format needs for one notification.
type Input struct {
	// Action is the label from the pipeline, e.g. "played" or "rated ★★★".
	Action string

	Event *models.MediaEvent

	// Location is nil when the player address could not be resolved.
	Location *models.ResolvedLocation

	// ThumbnailURL is empty when no cached thumbnail exists.
	ThumbnailURL string
}

// ImageURL is the public address of a cached thumbnail.
func (f Formatter) ImageURL(key identity.Key) string {
	return f.baseURL() + "/images/" + key.String()
}

func (f Formatter) baseURL() string {
	return strings.TrimSuffix(f.PublicURL, "/")
}

// Format renders in as a Discord payload. It has no side effects.
func (f Formatter) Format(in Input) Payload {
	username := f.Username
	if username == "" {
		username = DefaultUsername
	}
	avatarPath := f.AvatarPath
	if avatarPath == "" {
		avatarPath = DefaultAvatarPath
	}
	if !strings.HasPrefix(avatarPath, "/") {
		avatarPath = "/" + avatarPath
	}

	var meta models.MediaMetadata
	var account, player, server string
	var accountThumb string
	if in.Event != nil {
		if in.Event.Metadata != nil {
			meta = *in.Event.Metadata
		}
		account = in.Event.Account.Title
		accountThumb = in.Event.Account.Thumb
		player = in.Event.Player.Title
		server = in.Event.Server.Title
	}

	embed := Embed{
		Title:       Title(&meta),
		Description: Subtitle(&meta) + Summary(&meta),
		Color:       f.EmbedColor,
		Footer: EmbedFooter{
			Text: fmt.Sprintf("%s by %s on %s from %s%s",
				in.Action, account, player, server, f.LocationSuffix(in.Location)),
			IconURL: accountThumb,
		},
	}
	if in.ThumbnailURL != "" {
		embed.Thumbnail = &EmbedThumbnail{
			URL:    in.ThumbnailURL,
			Width:  thumbnailDisplayPx,
			Height: thumbnailDisplayPx,
		}
	}

	return Payload{
		Username:  username,
		AvatarURL: f.baseURL() + avatarPath,
		Embeds:    []Embed{embed},
	}
}

// Title is the grandparent title (show or artist) when present, otherwise
// the item title with the year in brackets.
func Title(m *models.MediaMetadata) string {
	if m.HasGrandparent() {
		return *m.GrandparentTitle
	}
	if m.Year != nil {
		return fmt.Sprintf("%s (%d)", m.Title, *m.Year)
	}
	return m.Title
}

// Subtitle describes the item within its grandparent: album for tracks,
// season/episode numbers or air date for episodes. Movies use the tagline.
func Subtitle(m *models.MediaMetadata) string {
	if !m.HasGrandparent() {
		if m.Type == models.MetadataTypeMovie {
			return models.StringValue(m.Tagline)
		}
		return ""
	}

	var sub string
	switch {
	case m.Type == models.MetadataTypeTrack:
		sub = models.StringValue(m.ParentTitle)
	case m.Index != nil && m.ParentIndex != nil:
		sub = fmt.Sprintf("S%d E%d", *m.ParentIndex, *m.Index)
	default:
		sub = models.StringValue(m.OriginallyAvailableAt)
	}
	if m.Title != "" {
		sub += " - " + m.Title
	}
	return sub
}

// Summary is the truncated synopsis separated from the subtitle by a blank
// line, or "" when there is none.
func Summary(m *models.MediaMetadata) string {
	summary := models.StringValue(m.Summary)
	if summary == "" {
		return ""
	}
	if utf8.RuneCountInString(summary) > summaryLimit {
		summary = string([]rune(summary)[:summaryLimit]) + "..."
	}
	return "\r\n\r\n" + summary
}

// LocationSuffix is appended to the footer: " near {city}, {place}" with a
// usable city, ", {place}" without one, and "" when nothing is known.
func (f Formatter) LocationSuffix(loc *models.ResolvedLocation) string {
	if loc == nil {
		return ""
	}
	home := f.HomeCountry
	if home == "" {
		home = DefaultHomeCountry
	}
	place := loc.DisplayRegion(home)

	if loc.HasUsableCity() {
		if place == "" {
			return " near " + loc.City
		}
		return " near " + loc.City + ", " + place
	}
	if place == "" {
		return ""
	}
	return ", " + place
}
