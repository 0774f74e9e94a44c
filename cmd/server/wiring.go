// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package main

import (
	"context"
	"time"

	"github.com/tomtom215/plexcord/internal/api"
	"github.com/tomtom215/plexcord/internal/config"
	"github.com/tomtom215/plexcord/internal/geo"
	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/notify"
	"github.com/tomtom215/plexcord/internal/supervisor/services"
	"github.com/tomtom215/plexcord/internal/thumbnail"
)

// openThumbnails opens the configured store. The redis connection check is
// bounded so a wrong REDIS_URL fails startup instead of hanging it.
func openThumbnails(ctx context.Context, cfg *config.Config) (*thumbnail.Cache, error) {
	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := thumbnail.OpenStore(openCtx, thumbnail.StoreOptions{
		Backend:    cfg.Thumbnail.Backend,
		RedisURL:   cfg.Thumbnail.RedisAddress(),
		BadgerPath: cfg.Thumbnail.BadgerPath,
		BoltPath:   cfg.Thumbnail.BoltPath,
	})
	if err != nil {
		return nil, err
	}

	return thumbnail.NewCache(store, thumbnail.Options{
		TTL:     cfg.Thumbnail.TTL,
		Width:   cfg.Thumbnail.Width,
		Height:  cfg.Thumbnail.Height,
		Quality: cfg.Thumbnail.JPEGQuality,
	}), nil
}

func newResolver(cfg *config.Config) *geo.Resolver {
	g := cfg.Geo

	var primary geo.Provider
	switch g.Provider {
	case "maxmind":
		primary = geo.NewMaxMindProvider(geo.MaxMindOptions{
			AccountID:     g.MaxMindAccountID,
			LicenseKey:    g.MaxMindLicenseKey,
			Timeout:       g.Timeout,
			RatePerMinute: g.RateLimit,
		})
	default:
		primary = geo.NewIPAPIProvider(geo.IPAPIOptions{
			BaseURL:       g.IPAPIURL,
			UserAgent:     g.UserAgent,
			Timeout:       g.Timeout,
			RatePerMinute: g.RateLimit,
		})
	}

	var fallback geo.ReverseGeocoder
	if g.FallbackEnabled {
		fallback = geo.NewNominatim(geo.NominatimOptions{
			BaseURL:   g.NominatimURL,
			UserAgent: g.UserAgent,
			Timeout:   g.Timeout,
		})
	}

	logging.Info().
		Str("provider", primary.Name()).
		Bool("reverse_geocoding", fallback != nil).
		Dur("cache_ttl", g.CacheTTL).
		Msg("Location resolver configured")

	return geo.NewResolver(geo.ResolverOptions{
		Primary:  primary,
		Fallback: fallback,
		CacheTTL: g.CacheTTL,
	})
}

func newFormatter(cfg *config.Config) notify.Formatter {
	return notify.Formatter{
		PublicURL:   cfg.Server.PublicURL,
		Username:    cfg.Discord.Username,
		AvatarPath:  cfg.Discord.AvatarPath,
		EmbedColor:  cfg.Discord.EmbedColor,
		HomeCountry: cfg.Geo.HomeCountry,
	}
}

func newRouterConfig(cfg *config.Config) api.RouterConfig {
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	return api.RouterConfig{
		Middleware: &api.ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			CORSMaxAge:         300,
			RateLimitRequests:  cfg.Security.RateLimitReqs,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
		},
		ImageRateLimit: cfg.Security.ImageRateLimit,
		StaticDir:      cfg.Server.StaticDir,
		SlowRequest:    time.Second,
	}
}

func maintenanceTasks(thumbs *thumbnail.Cache, resolver *geo.Resolver) []services.MaintenanceTask {
	return []services.MaintenanceTask{
		{Name: "thumbnail-store", Run: thumbs.Maintain},
		{Name: "location-cache", Run: func(context.Context) error {
			n := resolver.SweepCache()
			logging.Debug().
				Int("removed", n).
				Float64("hit_rate", resolver.CacheHitRate()).
				Msg("Location cache swept")
			return nil
		}},
	}
}
