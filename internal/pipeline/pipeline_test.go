// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/plexcord/internal/geo"
	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/notify"
)

type fakeThumbs struct {
	mu     sync.Mutex
	puts   map[identity.Key][]byte
	gets   []identity.Key
	stored bool
}

func (f *fakeThumbs) Put(_ context.Context, key identity.Key, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.puts == nil {
		f.puts = make(map[identity.Key][]byte)
	}
	f.puts[key] = raw
	return nil
}

func (f *fakeThumbs) Get(_ context.Context, key identity.Key) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, key)
	return []byte("jpeg"), f.stored
}

func (f *fakeThumbs) counts() (puts, gets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts), len(f.gets)
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	loc   *models.ResolvedLocation
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, address string) (*models.ResolvedLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, address)
	return f.loc, f.err
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDispatcher struct {
	mu       sync.Mutex
	payloads []notify.Payload
	ctxErrs  []error
	err      error
	block    bool
	panics   bool
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, p notify.Payload) error {
	if f.panics {
		panic("dispatcher exploded")
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

func (f *fakeDispatcher) sent() []notify.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Payload(nil), f.payloads...)
}

func newTestPipeline(th *fakeThumbs, res *fakeResolver, disp *fakeDispatcher) *Pipeline {
	cfg := Config{
		Formatter:   notify.Formatter{PublicURL: "http://localhost:11000", HomeCountry: "US"},
		TaskTimeout: time.Second,
	}
	if th != nil {
		cfg.Thumbnails = th
	}
	if res != nil {
		cfg.Resolver = res
	}
	if disp != nil {
		cfg.Dispatcher = disp
	}
	return New(cfg)
}

func TestSubmit_PlayWritesThumbnailAndNotifies(t *testing.T) {
	t.Parallel()

	th := &fakeThumbs{stored: true}
	res := &fakeResolver{loc: &models.ResolvedLocation{City: "Paris", CountryName: "France", CountryCode: "FR"}}
	disp := &fakeDispatcher{}
	p := newTestPipeline(th, res, disp)

	ev := event(models.EventPlay, models.SectionShow, true)
	d := p.Submit(context.Background(), ev, []byte("raw-image"))
	p.Wait()

	if !d.Accepted || !d.WriteThumbnail || !d.Notify {
		t.Fatalf("decision = %+v", d)
	}

	key := identity.Derive("srv-1", "plex://episode/1")
	th.mu.Lock()
	raw, ok := th.puts[key]
	th.mu.Unlock()
	if !ok || string(raw) != "raw-image" {
		t.Errorf("thumbnail not written under %s", key)
	}

	if res.callCount() != 1 || res.calls[0] != "203.0.113.7" {
		t.Errorf("resolver calls = %v", res.calls)
	}

	sent := disp.sent()
	if len(sent) != 1 {
		t.Fatalf("dispatched %d payloads", len(sent))
	}
	e := sent[0].Embeds[0]
	if e.Footer.Text != "played by alice on TV from Basement near Paris, France" {
		t.Errorf("footer = %q", e.Footer.Text)
	}
	if e.Thumbnail == nil || !strings.HasSuffix(e.Thumbnail.URL, "/images/"+key.String()) {
		t.Errorf("thumbnail = %+v", e.Thumbnail)
	}
}

func TestSubmit_ScrobbleAlwaysLooksUpThumbnail(t *testing.T) {
	t.Parallel()

	th := &fakeThumbs{}
	disp := &fakeDispatcher{}
	p := newTestPipeline(th, nil, disp)

	d := p.Submit(context.Background(), event(models.EventScrobble, models.SectionMovie, true), []byte("ignored"))
	p.Wait()

	if d.WriteThumbnail {
		t.Error("scrobble should not write thumbnails")
	}
	puts, gets := th.counts()
	if puts != 0 || gets != 1 {
		t.Errorf("puts=%d gets=%d, want 0 and 1", puts, gets)
	}
	sent := disp.sent()
	if len(sent) != 1 || sent[0].Embeds[0].Thumbnail != nil {
		t.Errorf("expected one payload without thumbnail, got %+v", sent)
	}
}

func TestSubmit_NoThumbnailAttached(t *testing.T) {
	t.Parallel()

	th := &fakeThumbs{}
	p := newTestPipeline(th, nil, &fakeDispatcher{})
	p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)
	p.Wait()

	if puts, _ := th.counts(); puts != 0 {
		t.Error("nothing to write without thumbnail bytes")
	}
}

func TestSubmit_RejectedEventsHaveNoEffects(t *testing.T) {
	t.Parallel()

	for _, ev := range []*models.MediaEvent{
		event(models.EventPlay, models.SectionMovie, false),
		event(models.EventScrobble, models.SectionArtist, true),
	} {
		th := &fakeThumbs{}
		res := &fakeResolver{}
		disp := &fakeDispatcher{}
		p := newTestPipeline(th, res, disp)

		d := p.Submit(context.Background(), ev, []byte("raw"))
		p.Wait()

		if d.Accepted {
			t.Errorf("%s user=%v accepted", ev.Event, ev.User)
		}
		puts, gets := th.counts()
		if puts != 0 || gets != 0 || res.callCount() != 0 || len(disp.sent()) != 0 {
			t.Errorf("%s user=%v had side effects", ev.Event, ev.User)
		}
	}
}

func TestSubmit_SurvivesRequestCancellation(t *testing.T) {
	t.Parallel()

	disp := &fakeDispatcher{}
	p := newTestPipeline(nil, nil, disp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Submit(ctx, event(models.EventPlay, models.SectionMovie, true), nil)
	p.Wait()

	if len(disp.sent()) != 1 {
		t.Fatal("notification dropped after the request context was cancelled")
	}
	if disp.ctxErrs[0] != nil {
		t.Errorf("task context already done: %v", disp.ctxErrs[0])
	}
}

func TestSubmit_ResolverFailureStillNotifies(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{err: errors.New("ip-api down")}
	disp := &fakeDispatcher{}
	p := newTestPipeline(nil, res, disp)

	p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)
	p.Wait()

	sent := disp.sent()
	if len(sent) != 1 {
		t.Fatal("expected a notification without location")
	}
	if sent[0].Embeds[0].Footer.Text != "played by alice on TV from Basement" {
		t.Errorf("footer = %q", sent[0].Embeds[0].Footer.Text)
	}

	private := &fakeResolver{err: geo.ErrPrivateAddress}
	disp2 := &fakeDispatcher{}
	p2 := newTestPipeline(nil, private, disp2)
	p2.Submit(context.Background(), event(models.EventRate, models.SectionMovie, true), nil)
	p2.Wait()
	if len(disp2.sent()) != 1 {
		t.Error("private address should not block the notification")
	}
}

func TestSubmit_TaskErrorsAreCounted(t *testing.T) {
	before := testutil.ToFloat64(metrics.PipelineTaskErrors.WithLabelValues(TaskNotify))

	p := newTestPipeline(nil, nil, &fakeDispatcher{err: errors.New("discord 500")})
	d := p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)
	p.Wait()

	if !d.Accepted {
		t.Error("downstream failure must not change the decision")
	}
	after := testutil.ToFloat64(metrics.PipelineTaskErrors.WithLabelValues(TaskNotify))
	if after-before < 1 {
		t.Errorf("task error counter moved by %v", after-before)
	}
}

func TestSubmit_PanickingTaskIsContained(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(nil, nil, &fakeDispatcher{panics: true})
	p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)
	p.Wait()
}

func TestSubmit_TaskTimeout(t *testing.T) {
	t.Parallel()

	p := New(Config{Dispatcher: &fakeDispatcher{block: true}, TaskTimeout: 20 * time.Millisecond})
	p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not bounded by the timeout")
	}
}

func TestDrain(t *testing.T) {
	t.Parallel()

	disp := &fakeDispatcher{}
	p := newTestPipeline(nil, nil, disp)
	p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)

	if err := p.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(disp.sent()) != 1 {
		t.Error("drain returned before in-flight work finished")
	}

	d := p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)
	if d.Accepted || d.Reason != ReasonShuttingDown {
		t.Errorf("submit after drain = %+v", d)
	}
}

func TestDrain_GivesUpOnDeadline(t *testing.T) {
	t.Parallel()

	p := New(Config{Dispatcher: &fakeDispatcher{block: true}, TaskTimeout: time.Minute})
	p.Submit(context.Background(), event(models.EventPlay, models.SectionMovie, true), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
