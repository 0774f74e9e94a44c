// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package supervisor runs Plexcord's long-lived services under a suture v4
// tree with restart backoff.
//
// Services live in internal/supervisor/services. main wires them:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
//	    ShutdownTimeout: cfg.Server.TaskTimeout + 5*time.Second,
//	})
//	tree.AddDataService(services.NewMaintenanceService(interval, tasks...))
//	tree.AddDeliveryService(services.NewPipelineDrainService(p, cfg.Server.TaskTimeout))
//	tree.AddAPIService(services.NewHTTPServerService(srv, addr, cfg.Server.Timeout))
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    logging.Error().Err(err).Msg("Supervisor stopped with error")
//	}
//
// When the signal arrives every layer is cancelled together. The HTTP server
// stops accepting webhooks while the drain service waits for tasks that were
// already scheduled.
package supervisor
