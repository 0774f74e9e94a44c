// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

/*
Package models defines the data structures shared across Plexcord.

  - MediaEvent and friends: the Plex webhook payload, decoded from the
    multipart "payload" field.
  - ResolvedLocation: the result of geolocating a player address, with the
    display helpers the notification footer relies on.
  - APIResponse, APIError, Metadata: the JSON envelope used by HTTP handlers.

Optional webhook fields are pointers so that presence can be distinguished
from zero values.
*/
package models
