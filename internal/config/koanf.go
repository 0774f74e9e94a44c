// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/plexcord/config.yaml",
	"/etc/plexcord/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        11000,
			PublicURL:   "http://localhost:11000",
			Timeout:     30 * time.Second,
			StaticDir:   "images",
			TaskTimeout: 60 * time.Second,
		},
		Discord: DiscordConfig{
			WebhookKey:     "",
			WebhookBaseURL: "https://discordapp.com/api/webhooks",
			Username:       "Plex",
			AvatarPath:     "/plex-icon.png",
			EmbedColor:     0xE5A00D,
			Timeout:        30 * time.Second,
		},
		Thumbnail: ThumbnailConfig{
			Backend:             "memory",
			BadgerPath:          "/data/thumbnails",
			BoltPath:            "/data/thumbnails.db",
			TTL:                 7 * 24 * time.Hour,
			Width:               75,
			Height:              75,
			JPEGQuality:         90,
			MaxUploadBytes:      10 << 20,
			MaintenanceInterval: 10 * time.Minute,
		},
		Geo: GeoConfig{
			Provider:        "ip-api",
			IPAPIURL:        "http://ip-api.com/json",
			NominatimURL:    "https://nominatim.openstreetmap.org",
			UserAgent:       "plexcord/1.0 (+https://github.com/tomtom215/plexcord)",
			HomeCountry:     "US",
			FallbackEnabled: true,
			Timeout:         10 * time.Second,
			RateLimit:       45, // ip-api free tier
			CacheTTL:        time.Hour,
		},
		Security: SecurityConfig{
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			ImageRateLimit:  300,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers defaults, the optional YAML file and the
// environment, in that order of increasing precedence, then validates.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DISCORD_WEBHOOK_KEY -> discord.webhook_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_host":      "server.host",
	"http_port":      "server.port",
	"port":           "server.port", // PaaS convention
	"app_url":        "server.public_url",
	"server_timeout": "server.timeout",
	"static_dir":     "server.static_dir",
	"task_timeout":   "server.task_timeout",

	// Discord
	"discord_webhook_key":      "discord.webhook_key",
	"discord_webhook_base_url": "discord.webhook_base_url",
	"discord_username":         "discord.username",
	"discord_avatar_path":      "discord.avatar_path",
	"discord_embed_color":      "discord.embed_color",
	"discord_timeout":          "discord.timeout",

	// Thumbnails
	"thumbnail_backend":      "thumbnail.backend",
	"redis_url":              "thumbnail.redis_url",
	"rediscloud_url":         "thumbnail.rediscloud_url",
	"badger_path":            "thumbnail.badger_path",
	"bolt_path":              "thumbnail.bolt_path",
	"thumbnail_ttl":          "thumbnail.ttl",
	"thumbnail_width":        "thumbnail.width",
	"thumbnail_height":       "thumbnail.height",
	"thumbnail_jpeg_quality": "thumbnail.jpeg_quality",
	"max_upload_bytes":       "thumbnail.max_upload_bytes",
	"maintenance_interval":   "thumbnail.maintenance_interval",

	// Geolocation
	"geo_provider":              "geo.provider",
	"ip_api_url":                "geo.ip_api_url",
	"maxmind_account_id":        "geo.maxmind_account_id",
	"maxmind_license_key":       "geo.maxmind_license_key",
	"nominatim_url":             "geo.nominatim_url",
	"geo_user_agent":            "geo.user_agent",
	"home_country":              "geo.home_country",
	"geo_fallback_enabled":      "geo.fallback_enabled",
	"geo_timeout":               "geo.timeout",
	"geo_rate_limit_per_minute": "geo.rate_limit_per_minute",
	"geo_cache_ttl":             "geo.cache_ttl",

	// Security
	"rate_limit_requests":       "security.rate_limit_reqs",
	"rate_limit_window":         "security.rate_limit_window",
	"disable_rate_limit":        "security.rate_limit_disabled",
	"image_rate_limit_requests": "security.image_rate_limit_reqs",
	"cors_origins":              "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
