// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

//go:build integration

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plexcord/internal/notify"
)

// DiscordCapture is one webhook execution received by MockDiscordServer.
type DiscordCapture struct {
	Path    string
	Header  http.Header
	Body    []byte
	Payload notify.Payload
}

// MockDiscordServer stands in for the Discord webhook API. Point
// DISCORD_WEBHOOK_BASE_URL at URL().
type MockDiscordServer struct {
	server *httptest.Server

	mu       sync.Mutex
	captures []DiscordCapture
	status   int
}

// NewMockDiscordServer starts the server and closes it when the test ends.
// It answers 204 No Content, as Discord does without ?wait=true.
func NewMockDiscordServer(t *testing.T) *MockDiscordServer {
	t.Helper()

	m := &MockDiscordServer{status: http.StatusNoContent}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

func (m *MockDiscordServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(r.Body)

	capture := DiscordCapture{Path: r.URL.Path, Header: r.Header.Clone(), Body: body}
	if err := json.Unmarshal(body, &capture.Payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "Cannot send an empty message", "code": 50006}`))
		return
	}

	m.mu.Lock()
	m.captures = append(m.captures, capture)
	status := m.status
	m.mu.Unlock()

	w.WriteHeader(status)
	if status >= 400 {
		_, _ = w.Write([]byte(`{"message": "Unknown Webhook", "code": 10015}`))
	}
}

// URL is the base URL to use in place of https://discordapp.com/api/webhooks.
func (m *MockDiscordServer) URL() string {
	return m.server.URL
}

// SetStatus changes the status returned for subsequent requests.
func (m *MockDiscordServer) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// Captures returns a copy of what has been received.
func (m *MockDiscordServer) Captures() []DiscordCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DiscordCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// WaitForCaptures waits until n requests have arrived or timeout passes.
func (m *MockDiscordServer) WaitForCaptures(n int, timeout time.Duration) []DiscordCapture {
	deadline := time.Now().Add(timeout)
	for {
		captures := m.Captures()
		if len(captures) >= n || time.Now().After(deadline) {
			return captures
		}
		time.Sleep(20 * time.Millisecond)
	}
}
