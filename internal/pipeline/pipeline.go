// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package pipeline turns an accepted webhook into background work.
//
// Submit classifies the event and returns at once. The thumbnail write and
// the notification run as independent tasks on a context detached from the
// HTTP request, so a client hanging up does not cancel delivery. Each task
// reports its error on a channel that a log sink drains; nothing downstream
// of acceptance reaches the caller.
//
//	p := pipeline.New(pipeline.Config{...})
//	decision := p.Submit(r.Context(), event, thumb)
//	...
//	_ = p.Drain(shutdownCtx)
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/plexcord/internal/geo"
	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/notify"
)

// DefaultTaskTimeout bounds each background task.
const DefaultTaskTimeout = 60 * time.Second

// Task names used in logs and metrics.
const (
	TaskCacheWrite = "cache_write"
	TaskNotify     = "notify"
)

// ThumbnailCache stores and fetches resized thumbnails.
type ThumbnailCache interface {
	Put(ctx context.Context, key identity.Key, raw []byte) error
	Get(ctx context.Context, key identity.Key) ([]byte, bool)
}

// LocationResolver maps a player address to a place.
type LocationResolver interface {
	Resolve(ctx context.Context, address string) (*models.ResolvedLocation, error)
}

// Config wires the pipeline's collaborators. Resolver may be nil, in which
// case notifications carry no location.
type Config struct {
	Thumbnails  ThumbnailCache
	Resolver    LocationResolver
	Formatter   notify.Formatter
	Dispatcher  notify.Dispatcher
	TaskTimeout time.Duration
}

// Pipeline runs accepted events. It is safe for concurrent use.
type Pipeline struct {
	thumbs     ThumbnailCache
	resolver   LocationResolver
	formatter  notify.Formatter
	dispatcher notify.Dispatcher
	timeout    time.Duration

	// mu orders wg.Add in Submit before wg.Wait in Drain.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	timeout := cfg.TaskTimeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &Pipeline{
		thumbs:     cfg.Thumbnails,
		resolver:   cfg.Resolver,
		formatter:  cfg.Formatter,
		dispatcher: cfg.Dispatcher,
		timeout:    timeout,
	}
}

// Submit classifies ev and starts its tasks. thumb is the raw image from
// the webhook and may be empty. It never blocks on downstream work.
func (p *Pipeline) Submit(ctx context.Context, ev *models.MediaEvent, thumb []byte) Decision {
	eventName := ""
	if ev != nil {
		eventName = ev.Event
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.RecordWebhookEvent(eventName, "rejected")
		return reject(ReasonShuttingDown)
	}

	d := Classify(ev)
	if !d.Accepted {
		metrics.RecordWebhookEvent(eventName, "rejected")
		logging.Ctx(ctx).Debug().
			Str("event", logging.SanitizeValue(eventName)).
			Str("reason", d.Reason).
			Msg("Webhook ignored")
		return d
	}
	outcome := "notify"
	if !d.Notify {
		outcome = "cache_only"
	}
	metrics.RecordWebhookEvent(eventName, outcome)

	key := identity.Derive(ev.ServerUUID(), ev.Metadata.GUID)

	// Keeps request and correlation IDs for logging, drops cancellation.
	taskCtx := logging.ContextWithNewCorrelationID(context.WithoutCancel(ctx))

	if d.WriteThumbnail && len(thumb) > 0 && p.thumbs != nil {
		raw := thumb
		p.run(taskCtx, TaskCacheWrite, func(ctx context.Context) error {
			return p.thumbs.Put(ctx, key, raw)
		})
	}

	if d.Notify && p.dispatcher != nil {
		p.run(taskCtx, TaskNotify, func(ctx context.Context) error {
			return p.notify(ctx, ev, key)
		})
	}

	return d
}

// notify resolves the player location, looks up the cached thumbnail,
// formats and dispatches.
func (p *Pipeline) notify(ctx context.Context, ev *models.MediaEvent, key identity.Key) error {
	loc := p.resolve(ctx, ev.PlayerAddress())

	var thumbURL string
	if p.thumbs != nil {
		if _, ok := p.thumbs.Get(ctx, key); ok {
			thumbURL = p.formatter.ImageURL(key)
		}
	}

	payload := p.formatter.Format(notify.Input{
		Action:       ActionLabel(ev),
		Event:        ev,
		Location:     loc,
		ThumbnailURL: thumbURL,
	})

	if err := p.dispatcher.Dispatch(ctx, payload); err != nil {
		return fmt.Errorf("dispatch %s: %w", ev.Event, err)
	}
	logging.Ctx(ctx).Info().
		Str("event", ev.Event).
		Str("user", logging.SanitizeValue(ev.Account.Title)).
		Str("title", logging.SanitizeValue(payload.Embeds[0].Title)).
		Msg("Notification sent")
	return nil
}

func (p *Pipeline) resolve(ctx context.Context, address string) *models.ResolvedLocation {
	if p.resolver == nil || address == "" {
		return nil
	}
	loc, err := p.resolver.Resolve(ctx, address)
	if err != nil {
		evt := logging.Ctx(ctx).Warn()
		if errors.Is(err, geo.ErrPrivateAddress) || errors.Is(err, geo.ErrInvalidAddress) || errors.Is(err, geo.ErrNoProvider) {
			evt = logging.Ctx(ctx).Debug()
		}
		evt.Err(err).Str("address", logging.SanitizeValue(address)).Msg("Location unavailable")
		return nil
	}
	return loc
}

// run spawns fn and a sink that logs its result.
func (p *Pipeline) run(ctx context.Context, name string, fn func(context.Context) error) {
	errs := p.spawn(ctx, name, fn)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for err := range errs {
			metrics.RecordTaskError(name)
			logging.Ctx(ctx).Error().Err(err).Str("task", name).Msg("Background task failed")
		}
	}()
}

// spawn runs fn on its own goroutine under the task timeout. The returned
// channel yields fn's error, if any, and is then closed.
func (p *Pipeline) spawn(ctx context.Context, name string, fn func(context.Context) error) <-chan error {
	errs := make(chan error, 1)

	p.wg.Add(1)
	metrics.TrackTask(true)
	go func() {
		defer p.wg.Done()
		defer metrics.TrackTask(false)
		defer close(errs)
		defer func() {
			if r := recover(); r != nil {
				errs <- fmt.Errorf("task %s panicked: %v", name, r)
			}
		}()

		taskCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		if err := fn(taskCtx); err != nil {
			errs <- err
		}
	}()
	return errs
}

// Wait blocks until every spawned task and its sink have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Drain stops accepting events and waits for in-flight tasks, giving up
// when ctx is done.
func (p *Pipeline) Drain(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline drain: %w", ctx.Err())
	}
}
