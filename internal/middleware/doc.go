// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: takes X-Request-ID from the proxy or generates a UUID, and
    seeds the logging context with request and correlation IDs
  - AccessLog: one structured log line per request, warning when slow
  - PrometheusMetrics: request count, latency and in-flight gauge keyed by
    chi route pattern

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(chimw.Recoverer)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Post("/", h.Webhook)
	})

Route patterns, not raw paths, label the metrics so /images/{key} stays a
single series.
*/
package middleware
