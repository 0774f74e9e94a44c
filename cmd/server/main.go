// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/plexcord/internal/api"
	"github.com/tomtom215/plexcord/internal/config"
	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/notify"
	"github.com/tomtom215/plexcord/internal/pipeline"
	"github.com/tomtom215/plexcord/internal/supervisor"
	"github.com/tomtom215/plexcord/internal/supervisor/services"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetBuildInfo(version, commit)

	logging.Info().
		Str("version", version).
		Str("public_url", cfg.Server.PublicURL).
		Str("thumbnail_backend", cfg.Thumbnail.Backend).
		Str("geo_provider", cfg.Geo.Provider).
		Str("webhook_key", logging.SanitizeToken(cfg.Discord.WebhookKey)).
		Msg("Starting Plexcord")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	thumbs, err := openThumbnails(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open thumbnail store")
	}
	defer func() {
		if err := thumbs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing thumbnail store")
		}
	}()

	resolver := newResolver(cfg)

	dispatcher, err := notify.NewDiscordDispatcher(notify.DiscordOptions{
		WebhookKey: cfg.Discord.WebhookKey,
		BaseURL:    cfg.Discord.WebhookBaseURL,
		Timeout:    cfg.Discord.Timeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Discord dispatcher")
	}

	p := pipeline.New(pipeline.Config{
		Thumbnails:  thumbs,
		Resolver:    resolver,
		Formatter:   newFormatter(cfg),
		Dispatcher:  dispatcher,
		TaskTimeout: cfg.Server.TaskTimeout,
	})

	handler := api.NewHandler(p, thumbs, api.HandlerConfig{
		MaxUploadBytes: cfg.Thumbnail.MaxUploadBytes,
		Version:        version,
		GeoProvider:    resolver.ProviderName(),
	})
	router := api.NewRouter(handler, newRouterConfig(cfg))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.TaskTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewMaintenanceService(cfg.Thumbnail.MaintenanceInterval,
		maintenanceTasks(thumbs, resolver)...))
	tree.AddDeliveryService(services.NewPipelineDrainService(p, cfg.Server.TaskTimeout))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.Timeout))

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Plexcord stopped")
}
