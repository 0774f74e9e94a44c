// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete application configuration. It is immutable after
// Load and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Discord   DiscordConfig   `koanf:"discord"`
	Thumbnail ThumbnailConfig `koanf:"thumbnail"`
	Geo       GeoConfig       `koanf:"geo"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	PublicURL   string        `koanf:"public_url"` // base URL Discord uses to fetch images
	Timeout     time.Duration `koanf:"timeout"`
	StaticDir   string        `koanf:"static_dir"`
	TaskTimeout time.Duration `koanf:"task_timeout"` // bound on each background task
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DiscordConfig holds webhook delivery settings.
type DiscordConfig struct {
	WebhookKey     string        `koanf:"webhook_key"`
	WebhookBaseURL string        `koanf:"webhook_base_url"`
	Username       string        `koanf:"username"`
	AvatarPath     string        `koanf:"avatar_path"`
	EmbedColor     int           `koanf:"embed_color"` // 0 omits the colour
	Timeout        time.Duration `koanf:"timeout"`
}

// ThumbnailConfig holds thumbnail cache settings.
type ThumbnailConfig struct {
	Backend       string `koanf:"backend"`
	RedisURL      string `koanf:"redis_url"`
	RedisCloudURL string `koanf:"rediscloud_url"`
	BadgerPath    string `koanf:"badger_path"`
	BoltPath      string `koanf:"bolt_path"`

	TTL         time.Duration `koanf:"ttl"`
	Width       int           `koanf:"width"`
	Height      int           `koanf:"height"`
	JPEGQuality int           `koanf:"jpeg_quality"`

	MaxUploadBytes      int64         `koanf:"max_upload_bytes"`
	MaintenanceInterval time.Duration `koanf:"maintenance_interval"`
}

// RedisAddress prefers REDIS_URL and falls back to REDISCLOUD_URL.
func (t ThumbnailConfig) RedisAddress() string {
	if t.RedisURL != "" {
		return t.RedisURL
	}
	return t.RedisCloudURL
}

// GeoConfig holds geolocation settings.
type GeoConfig struct {
	Provider          string        `koanf:"provider"` // ip-api or maxmind
	IPAPIURL          string        `koanf:"ip_api_url"`
	MaxMindAccountID  string        `koanf:"maxmind_account_id"`
	MaxMindLicenseKey string        `koanf:"maxmind_license_key"`
	NominatimURL      string        `koanf:"nominatim_url"`
	UserAgent         string        `koanf:"user_agent"`
	HomeCountry       string        `koanf:"home_country"`
	FallbackEnabled   bool          `koanf:"fallback_enabled"`
	Timeout           time.Duration `koanf:"timeout"`
	RateLimit         int           `koanf:"rate_limit_per_minute"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// SecurityConfig holds HTTP protection settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	ImageRateLimit    int           `koanf:"image_rate_limit_reqs"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, file and environment, then
// validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
