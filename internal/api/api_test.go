// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plexcord/internal/identity"
	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/pipeline"
)

type submission struct {
	event *models.MediaEvent
	thumb []byte
}

type fakeSubmitter struct {
	mu   sync.Mutex
	subs []submission
}

func (f *fakeSubmitter) Submit(_ context.Context, ev *models.MediaEvent, thumb []byte) pipeline.Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, submission{event: ev, thumb: thumb})
	return pipeline.Classify(ev)
}

func (f *fakeSubmitter) last(t *testing.T) submission {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		t.Fatal("nothing submitted")
	}
	return f.subs[len(f.subs)-1]
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeImages struct {
	data    map[identity.Key][]byte
	pingErr error
}

func (f *fakeImages) Get(_ context.Context, key identity.Key) ([]byte, bool) {
	b, ok := f.data[key]
	return b, ok
}

func (f *fakeImages) Ping(context.Context) error { return f.pingErr }
func (f *fakeImages) Backend() string            { return "memory" }

const playPayload = `{
	"event": "media.play",
	"user": true,
	"owner": true,
	"Account": {"id": 1, "thumb": "https://plex.tv/users/1/avatar", "title": "alice"},
	"Server": {"title": "Basement", "uuid": "srv-1"},
	"Player": {"local": false, "publicAddress": "203.0.113.7", "title": "TV", "uuid": "p-1"},
	"Metadata": {
		"librarySectionType": "show",
		"type": "episode",
		"title": "Episode Title",
		"grandparentTitle": "Show X",
		"guid": "plex://episode/1",
		"index": 5,
		"parentIndex": 2
	}
}`

func newTestServer(t *testing.T, images ImageSource, cfg RouterConfig) (*fakeSubmitter, http.Handler) {
	t.Helper()
	sub := &fakeSubmitter{}
	h := NewHandler(sub, images, HandlerConfig{MaxUploadBytes: 1024, Version: "test"})
	if cfg.Middleware == nil {
		cfg.Middleware = &ChiMiddlewareConfig{RateLimitDisabled: true}
	}
	return sub, NewRouter(h, cfg)
}

func multipartBody(t *testing.T, payload string, thumb []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if payload != "" {
		if err := mw.WriteField("payload", payload); err != nil {
			t.Fatal(err)
		}
	}
	if thumb != nil {
		fw, err := mw.CreateFormFile("thumb", "thumb.jpg")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(thumb)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestWebhook_MultipartWithThumbnail(t *testing.T) {
	t.Parallel()

	sub, router := newTestServer(t, nil, RouterConfig{})
	body, contentType := multipartBody(t, playPayload, []byte("jpeg-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "success" {
		t.Errorf("status field = %q", resp.Status)
	}
	data := resp.Data.(map[string]interface{})
	if data["accepted"] != true || data["event"] != "media.play" || data["action"] != "played" {
		t.Errorf("data = %v", data)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("response should carry the request ID")
	}

	got := sub.last(t)
	if string(got.thumb) != "jpeg-bytes" {
		t.Errorf("thumb = %q", got.thumb)
	}
	if got.event.Metadata == nil || models.StringValue(got.event.Metadata.GrandparentTitle) != "Show X" {
		t.Errorf("event not decoded: %+v", got.event)
	}
	if *got.event.Metadata.ParentIndex != 2 {
		t.Errorf("parentIndex = %v", got.event.Metadata.ParentIndex)
	}
}

func TestWebhook_RawJSON(t *testing.T) {
	t.Parallel()

	sub, router := newTestServer(t, nil, RouterConfig{})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(playPayload))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := sub.last(t); got.thumb != nil {
		t.Error("raw JSON carries no thumbnail")
	}
}

func TestWebhook_FilteredEventStill200(t *testing.T) {
	t.Parallel()

	sub, router := newTestServer(t, nil, RouterConfig{})
	payload := `{"event":"media.scrobble","user":true,"Metadata":{"librarySectionType":"artist","type":"track","title":"Song"}}`
	body, contentType := multipartBody(t, payload, nil)

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["accepted"] != false {
		t.Errorf("artist scrobble should not be accepted: %v", data)
	}
	if _, ok := data["action"]; ok {
		t.Error("rejected event should not report an action")
	}
	if sub.count() != 1 {
		t.Error("parsed events are always handed to the pipeline")
	}
}

func TestWebhook_OutOfRangeRating(t *testing.T) {
	t.Parallel()

	for _, rating := range []string{"1e19", "2e8", "11"} {
		_, router := newTestServer(t, nil, RouterConfig{})
		payload := `{"event":"media.rate","user":true,"rating":` + rating +
			`,"Metadata":{"librarySectionType":"movie","type":"movie","title":"Film","guid":"plex://movie/1"}}`
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("rating %s: status = %d body=%s", rating, rec.Code, rec.Body.String())
		}
		data := decodeResponse(t, rec).Data.(map[string]interface{})
		if data["action"] != "rated ★★★★★" {
			t.Errorf("rating %s: action = %v", rating, data["action"])
		}
	}
}

func TestWebhook_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        func(t *testing.T) (*bytes.Buffer, string)
		wantMessage string
	}{
		{
			name: "missing payload field",
			body: func(t *testing.T) (*bytes.Buffer, string) { return multipartBody(t, "", []byte("x")) },
		},
		{
			name: "payload not JSON",
			body: func(t *testing.T) (*bytes.Buffer, string) { return multipartBody(t, "{not json", nil) },
		},
		{
			name: "missing event",
			body: func(t *testing.T) (*bytes.Buffer, string) { return multipartBody(t, `{"user":true}`, nil) },
		},
		{
			name: "not a form",
			body: func(*testing.T) (*bytes.Buffer, string) { return bytes.NewBufferString("hello"), "text/plain" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sub, router := newTestServer(t, nil, RouterConfig{})
			body, contentType := tt.body(t)

			req := httptest.NewRequest(http.MethodPost, "/", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != CodeValidation {
				t.Errorf("response = %+v", resp)
			}
			if sub.count() != 0 {
				t.Error("malformed webhooks must not reach the pipeline")
			}
		})
	}
}

func TestWebhook_OversizedThumbIgnored(t *testing.T) {
	t.Parallel()

	sub, router := newTestServer(t, nil, RouterConfig{})
	body, contentType := multipartBody(t, playPayload, bytes.Repeat([]byte{0xff}, 2048))

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := sub.last(t); got.thumb != nil {
		t.Errorf("oversized thumbnail should be dropped, got %d bytes", len(got.thumb))
	}
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	t.Parallel()

	_, router := newTestServer(t, nil, RouterConfig{})
	huge := `{"event":"media.play","pad":"` + string(bytes.Repeat([]byte("a"), payloadAllowance+2048)) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(huge))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestWebhook_RateLimited(t *testing.T) {
	t.Parallel()

	_, router := newTestServer(t, nil, RouterConfig{
		Middleware: &ChiMiddlewareConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute},
	})

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(playPayload))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "198.51.100.50:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestImage(t *testing.T) {
	t.Parallel()

	key := identity.Derive("srv-1", "plex://episode/1")
	images := &fakeImages{data: map[identity.Key][]byte{key: []byte("jpeg")}}
	_, router := newTestServer(t, images, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/"+key.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("content type = %s", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=86400" {
		t.Errorf("cache control = %s", rec.Header().Get("Cache-Control"))
	}
	if rec.Body.String() != "jpeg" {
		t.Errorf("body = %q", rec.Body.String())
	}

	other := identity.Derive("srv-1", "plex://episode/2")
	for _, path := range []string{"/images/" + other.String(), "/images/not-a-key", "/images/" + key.String() + "x"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	images := &fakeImages{}
	_, router := newTestServer(t, images, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["store"] != "memory" || data["store_ok"] != true {
		t.Errorf("ready data = %v", data)
	}

	down := &fakeImages{pingErr: errors.New("redis: connection refused")}
	_, router = newTestServer(t, down, RouterConfig{})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready with failing store = %d, want 503", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Code != CodeUnavailable {
		t.Errorf("response = %+v", resp)
	}
}

func TestStaticAndMetrics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := writeFile(dir, "plex-icon.png", []byte("\x89PNG")); err != nil {
		t.Fatal(err)
	}
	_, router := newTestServer(t, nil, RouterConfig{StaticDir: dir})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plex-icon.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "\x89PNG" {
		t.Errorf("static status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code == http.StatusOK {
		t.Error("static directory must not be listed")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("plexcord_")) {
		t.Errorf("metrics status=%d", rec.Code)
	}
}

func TestSecurityAndRequestIDHeaders(t *testing.T) {
	t.Parallel()

	_, router := newTestServer(t, nil, RouterConfig{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}
}
