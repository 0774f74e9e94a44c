// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/tomtom215/plexcord/internal/breaker"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/validation"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// cityFields are the Nominatim address keys that can name a settlement, in
// order of preference.
var cityFields = []string{"address.city", "address.town", "address.village", "address.hamlet"}

// Nominatim reverse geocodes coordinates through OpenStreetMap. The public
// usage policy requires a descriptive User-Agent and at most one request
// per second.
type Nominatim struct {
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *breaker.Breaker
	baseURL   string
	userAgent string
}

// NominatimOptions configures a Nominatim client.
type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Interval between requests; defaults to one second.
	Interval time.Duration
}

// NewNominatim creates a reverse geocoder.
func NewNominatim(opts NominatimOptions) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	return &Nominatim{
		client:    newHTTPClient(opts.Timeout),
		limiter:   rate.NewLimiter(rate.Every(opts.Interval), 1),
		breaker:   breaker.New("nominatim", breaker.DefaultConfig()),
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
	}
}

func (n *Nominatim) Name() string { return models.SourceNominatim }

// Reverse returns the place at lat/lon. Only the descriptive fields are
// set; coordinates stay with the caller's location.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*models.ResolvedLocation, error) {
	if verr := validation.ValidateVar("lat", lat, "latitude"); verr != nil {
		return nil, verr
	}
	if verr := validation.ValidateVar("lon", lon, "longitude"); verr != nil {
		return nil, verr
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nominatim rate limit wait: %w", err)
	}

	start := time.Now()
	loc, err := breaker.Execute(n.breaker, func() (*models.ResolvedLocation, error) {
		return n.query(ctx, lat, lon)
	})
	result := "ok"
	if err != nil {
		result = "error"
	} else if !loc.HasUsableCity() {
		result = "partial"
	}
	metrics.RecordGeoLookup(n.Name(), result, time.Since(start))
	return loc, err
}

func (n *Nominatim) query(ctx context.Context, lat, lon float64) (*models.ResolvedLocation, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("accept-language", "en")
	endpoint := n.baseURL + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read nominatim response: %w", err)
	}
	return parseNominatim(body)
}

// parseNominatim maps a /reverse reply onto a location.
func parseNominatim(body []byte) (*models.ResolvedLocation, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("nominatim returned invalid JSON")
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return nil, fmt.Errorf("nominatim lookup failed: %s", msg.String())
	}

	loc := &models.ResolvedLocation{
		RegionName:  gjson.GetBytes(body, "address.state").String(),
		CountryName: gjson.GetBytes(body, "address.country").String(),
		CountryCode: strings.ToUpper(gjson.GetBytes(body, "address.country_code").String()),
		Source:      models.SourceNominatim,
	}
	for _, field := range cityFields {
		if city := gjson.GetBytes(body, field).String(); city != "" {
			loc.City = city
			break
		}
	}
	return loc, nil
}
