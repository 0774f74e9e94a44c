// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package pipeline

import (
	"strings"

	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/validation"
)

// Rejection reasons reported in Decision.Reason.
const (
	ReasonMalformedEvent = "malformed event name"
	ReasonNotUser        = "not a user event"
	ReasonNoMetadata     = "no metadata"
	ReasonUnsupported    = "unsupported library section"
	ReasonNoAction       = "event has no action"
	ReasonShuttingDown   = "shutting down"
)

// Decision is the result of classifying one event.
type Decision struct {
	// Accepted is true when at least one task will run.
	Accepted bool `json:"accepted"`

	// Reason explains a rejection.
	Reason string `json:"reason,omitempty"`

	// WriteThumbnail asks for the attached thumbnail to be cached.
	WriteThumbnail bool `json:"write_thumbnail"`

	// Notify asks for a Discord message.
	Notify bool `json:"notify"`
}

func reject(reason string) Decision {
	return Decision{Reason: reason}
}

// Classify decides what to do with ev. It has no side effects.
//
// Only events flagged as coming from a user, with metadata from a movie,
// show or music library, are considered. play and rate refresh the
// thumbnail cache; play, rate and scrobble of video produce a notification.
func Classify(ev *models.MediaEvent) Decision {
	if ev == nil {
		return reject(ReasonNoMetadata)
	}
	if err := validation.ValidateVar("event", ev.Event, "plexevent"); err != nil {
		return reject(ReasonMalformedEvent)
	}
	if !ev.User {
		return reject(ReasonNotUser)
	}
	if ev.Metadata == nil {
		return reject(ReasonNoMetadata)
	}

	video := ev.Metadata.IsVideo()
	if !video && !ev.Metadata.IsAudio() {
		return reject(ReasonUnsupported)
	}

	d := Decision{
		WriteThumbnail: ev.Event == models.EventPlay || ev.Event == models.EventRate,
		Notify: (ev.Event == models.EventScrobble && video) ||
			ev.Event == models.EventRate ||
			ev.Event == models.EventPlay,
	}
	d.Accepted = d.WriteThumbnail || d.Notify
	if !d.Accepted {
		d.Reason = ReasonNoAction
	}
	return d
}

// maxRating is the top of the Plex rating scale.
const maxRating = 10.0

// ActionLabel is the verb shown in the notification footer.
//
// A rating is out of 10 and drawn as one star per two whole points, so 6 is
// three stars and 5 is two. Ratings above 10 are drawn as 10.
func ActionLabel(ev *models.MediaEvent) string {
	if ev == nil {
		return ""
	}
	switch ev.Event {
	case models.EventScrobble, models.EventPlay:
		return "played"
	case models.EventRate:
		if ev.Rating == nil || !(*ev.Rating > 0) {
			return "unrated"
		}
		rating := min(*ev.Rating, maxRating)
		return "rated " + strings.Repeat("★", int(rating)/2)
	default:
		return ""
	}
}
