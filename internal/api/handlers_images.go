// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/logging"
)

// Image serves a cached thumbnail.
// GET /images/{key}
//
// Unknown, expired and malformed keys all answer 404 so the key space
// cannot be probed.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	key, ok := identity.Parse(chi.URLParam(r, "key"))
	if !ok || h.images == nil {
		respondError(w, r, http.StatusNotFound, errorf(CodeNotFound, "Image not found"), nil)
		return
	}

	data, ok := h.images.Get(r.Context(), key)
	if !ok {
		respondError(w, r, http.StatusNotFound, errorf(CodeNotFound, "Image not found"), nil)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.config.ImageMaxAge.Seconds())))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write image")
	}
}
