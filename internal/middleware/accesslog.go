// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/plexcord/internal/logging"
)

// AccessLog logs one line per request at debug level, or at warn level when
// the request took longer than slow. A zero slow disables the warning.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusRecorder(w)

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			log := logging.Ctx(r.Context())
			evt := log.Debug()
			msg := "Request handled"
			if slow > 0 && duration > slow {
				evt = log.Warn()
				msg = "Slow request detected"
			}
			evt.Str("method", r.Method).
				Str("route", routePattern(r)).
				Str("remote", logging.SanitizeValue(r.RemoteAddr)).
				Int("status", wrapper.statusCode).
				Int64("duration_ms", duration.Milliseconds()).
				Msg(msg)
		})
	}
}
