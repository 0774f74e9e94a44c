// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plexcord/internal/breaker"
	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/metrics"
)

// DefaultWebhookBaseURL is prefixed to the webhook key.
const DefaultWebhookBaseURL = "https://discordapp.com/api/webhooks"

const maxErrorBody = 1024

// Dispatcher delivers a formatted payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload Payload) error
}

// DispatchError is returned for a non-2xx reply from Discord.
type DispatchError struct {
	StatusCode int
	Body       string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("discord webhook returned %d: %s", e.StatusCode, e.Body)
}

// DiscordOptions configures a DiscordDispatcher.
type DiscordOptions struct {
	// WebhookKey is the "{id}/{token}" part of the webhook URL.
	WebhookKey string
	BaseURL    string
	Timeout    time.Duration
	Breaker    breaker.Config
}

// DiscordDispatcher posts payloads to one Discord webhook.
type DiscordDispatcher struct {
	client   *http.Client
	breaker  *breaker.Breaker
	endpoint string
}

// NewDiscordDispatcher creates a dispatcher. The key is required.
func NewDiscordDispatcher(opts DiscordOptions) (*DiscordDispatcher, error) {
	key := strings.Trim(opts.WebhookKey, "/")
	if key == "" {
		return nil, errors.New("discord webhook key is required")
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultWebhookBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := opts.Breaker
	if cfg == (breaker.Config{}) {
		cfg = breaker.DefaultConfig()
	}

	return &DiscordDispatcher{
		client:   &http.Client{Timeout: timeout},
		breaker:  breaker.New("discord", cfg),
		endpoint: strings.TrimSuffix(base, "/") + "/" + key,
	}, nil
}

// Dispatch sends payload once. Any 2xx reply is success.
func (d *DiscordDispatcher) Dispatch(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	start := time.Now()
	var status int
	_, err = breaker.Execute(d.breaker, func() (struct{}, error) {
		var postErr error
		status, postErr = d.post(ctx, body)
		return struct{}{}, postErr
	})
	metrics.RecordDispatch(status, time.Since(start), err)

	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Int("status", status).Msg("Discord notification delivered")
	return nil
}

func (d *DiscordDispatcher) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		// The URL embeds the webhook token; keep it out of logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, fmt.Errorf("failed to send discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}

	msg, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		msg = []byte("(failed to read response)")
	}
	return resp.StatusCode, &DispatchError{StatusCode: resp.StatusCode, Body: string(msg)}
}
