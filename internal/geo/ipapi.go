// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package geo

import (
	"context"
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

// DefaultIPAPIURL is the free ip-api.com endpoint (HTTP only on the free tier).
const DefaultIPAPIURL = "http://ip-api.com/json"

const ipAPIFields = "status,message,country,countryCode,regionName,city,lat,lon,query"

// IPAPIProvider queries ip-api.com. The free tier allows 45 requests per
// minute; Lookup waits for a token rather than failing.
type IPAPIProvider struct {
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *breaker.Breaker
	baseURL   string
	userAgent string
}

// IPAPIOptions configures an IPAPIProvider.
type IPAPIOptions struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RatePerMinute  int
	BreakerSetting breaker.Config
}

// NewIPAPIProvider creates an ip-api.com provider.
func NewIPAPIProvider(opts IPAPIOptions) *IPAPIProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultIPAPIURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 45
	}
	if opts.BreakerSetting == (breaker.Config{}) {
		opts.BreakerSetting = breaker.DefaultConfig()
	}

	return &IPAPIProvider{
		client:    newHTTPClient(opts.Timeout),
		limiter:   perMinuteLimiter(opts.RatePerMinute),
		breaker:   breaker.New("ip-api", opts.BreakerSetting),
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
	}
}

// perMinuteLimiter spreads n requests evenly over a minute with a small
// burst for back-to-back webhooks.
func perMinuteLimiter(n int) *rate.Limiter {
	burst := n / 9
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), burst)
}

// ipAPIResponse is the subset of ip-api.com fields Plexcord requests.
type ipAPIResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Query       string  `json:"query"`
}

func (p *IPAPIProvider) Name() string { return models.SourceIPAPI }

func (p *IPAPIProvider) IsAvailable() bool { return true }

// Lookup queries ip-api.com for ip.
func (p *IPAPIProvider) Lookup(ctx context.Context, ip string) (*models.ResolvedLocation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ip-api.com rate limit wait: %w", err)
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

func (p *IPAPIProvider) query(ctx context.Context, ip string) (*models.ResolvedLocation, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=%s", p.baseURL, url.PathEscape(ip), ipAPIFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip-api.com: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("ip-api.com lookup failed: %s", result.Message)
	}

	lat, lon := result.Lat, result.Lon
	return &models.ResolvedLocation{
		IPAddress:   ip,
		City:        result.City,
		RegionName:  result.RegionName,
		CountryName: result.Country,
		CountryCode: result.CountryCode,
		Latitude:    &lat,
		Longitude:   &lon,
		Source:      p.Name(),
	}, nil
}
