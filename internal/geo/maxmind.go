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
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/plexcord/internal/breaker"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/models"
)

// DefaultMaxMindURL is the GeoLite2 City web service.
const DefaultMaxMindURL = "https://geolite.info/geoip/v2.1/city"

// MaxMindProvider uses the GeoLite2 web service with account ID and
// license key as basic auth credentials.
// Register at https://www.maxmind.com/en/geolite2/signup
type MaxMindProvider struct {
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *breaker.Breaker
	accountID  string
	licenseKey string
	baseURL    string
}

// MaxMindOptions configures a MaxMindProvider.
type MaxMindOptions struct {
	AccountID     string
	LicenseKey    string
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

type maxMindResponse struct {
	City struct {
		Names map[string]string `json:"names"`
	} `json:"city"`
	Country struct {
		ISOCode string            `json:"iso_code"`
		Names   map[string]string `json:"names"`
	} `json:"country"`
	Location struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	Subdivisions []struct {
		Names map[string]string `json:"names"`
	} `json:"subdivisions"`
}

type maxMindErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// NewMaxMindProvider creates a GeoLite2 provider.
func NewMaxMindProvider(opts MaxMindOptions) *MaxMindProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultMaxMindURL
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 60
	}
	return &MaxMindProvider{
		client:     newHTTPClient(opts.Timeout),
		limiter:    perMinuteLimiter(opts.RatePerMinute),
		breaker:    breaker.New("maxmind", breaker.DefaultConfig()),
		accountID:  opts.AccountID,
		licenseKey: opts.LicenseKey,
		baseURL:    opts.BaseURL,
	}
}

func (p *MaxMindProvider) Name() string { return models.SourceMaxMind }

// IsAvailable returns true when credentials are configured.
func (p *MaxMindProvider) IsAvailable() bool {
	return p.accountID != "" && p.licenseKey != ""
}

// Lookup queries the GeoLite2 web service for ip.
func (p *MaxMindProvider) Lookup(ctx context.Context, ip string) (*models.ResolvedLocation, error) {
	if !p.IsAvailable() {
		return nil, errors.New("MaxMind credentials not configured")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("MaxMind rate limit wait: %w", err)
	}

	start := time.Now()
	loc, err := breaker.Execute(p.breaker, func() (*models.ResolvedLocation, error) {
		return p.query(ctx, ip)
	})
	result := "ok"
	if err != nil {
		result = "error"
	} else if !loc.HasUsableCity() {
		result = "partial"
	}
	metrics.RecordGeoLookup(p.Name(), result, time.Since(start))
	return loc, err
}

func (p *MaxMindProvider) query(ctx context.Context, ip string) (*models.ResolvedLocation, error) {
	endpoint := fmt.Sprintf("%s/%s", p.baseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(p.accountID, p.licenseKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query MaxMind: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode != http.StatusOK {
		var errResp maxMindErrorResponse
		if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("MaxMind error (%s): %s", errResp.Code, errResp.Error)
		}
		return nil, fmt.Errorf("MaxMind returned status %d", resp.StatusCode)
	}

	var result maxMindResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode MaxMind response: %w", err)
	}

	loc := &models.ResolvedLocation{
		IPAddress:   ip,
		City:        result.City.Names["en"],
		CountryName: result.Country.Names["en"],
		CountryCode: result.Country.ISOCode,
		Latitude:    result.Location.Latitude,
		Longitude:   result.Location.Longitude,
		Source:      p.Name(),
	}
	if len(result.Subdivisions) > 0 {
		loc.RegionName = result.Subdivisions[0].Names["en"]
	}
	return loc, nil
}
