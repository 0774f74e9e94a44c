// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/plexcord/internal/middleware"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Middleware *ChiMiddlewareConfig

	// ImageRateLimit is the per-IP budget for /images, which Discord's
	// proxy hits once per embed. Zero reuses the general budget.
	ImageRateLimit int

	// StaticDir is served at /. Empty disables static hosting.
	StaticDir string

	// SlowRequest is the access log warning threshold.
	SlowRequest time.Duration
}

// NewRouter builds the HTTP handler.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mw := NewChiMiddleware(cfg.Middleware)
	if cfg.SlowRequest == 0 {
		cfg.SlowRequest = time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(cfg.SlowRequest))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(APISecurityHeaders())

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/", h.Webhook)
	})

	r.Group(func(r chi.Router) {
		imageLimit := cfg.ImageRateLimit
		if imageLimit > 0 {
			r.Use(mw.RateLimitCustom(imageLimit, mw.config.RateLimitWindow))
		} else {
			r.Use(mw.RateLimit())
		}
		r.Use(middleware.PrometheusMetrics)
		r.Get("/images/{key}", h.Image)
		r.Head("/images/{key}", h.Image)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	if cfg.StaticDir != "" {
		r.Get("/*", staticHandler(cfg.StaticDir).ServeHTTP)
	}

	return r
}
