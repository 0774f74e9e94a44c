// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/plexcord/internal/validation"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDiscord(); err != nil {
		return err
	}
	if err := c.validateThumbnail(); err != nil {
		return err
	}
	if err := c.validateGeo(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.PublicURL == "" {
		return errors.New("APP_URL is required")
	}
	if err := validateHTTPURL(c.Server.PublicURL, "APP_URL", true); err != nil {
		return err
	}
	if err := positive("SERVER_TIMEOUT", c.Server.Timeout); err != nil {
		return err
	}
	return positive("TASK_TIMEOUT", c.Server.TaskTimeout)
}

func (c *Config) validateDiscord() error {
	key := c.Discord.WebhookKey
	if key == "" {
		return errors.New("DISCORD_WEBHOOK_KEY is required")
	}
	if strings.ContainsAny(key, " \t\r\n?#") || strings.HasPrefix(key, "/") {
		return errors.New("DISCORD_WEBHOOK_KEY must be the <id>/<token> part of the webhook URL")
	}
	if err := validateHTTPURL(c.Discord.WebhookBaseURL, "DISCORD_WEBHOOK_BASE_URL", true); err != nil {
		return err
	}
	if c.Discord.Username == "" {
		return errors.New("DISCORD_USERNAME must not be empty")
	}
	if c.Discord.EmbedColor < 0 || c.Discord.EmbedColor > 0xFFFFFF {
		return fmt.Errorf("DISCORD_EMBED_COLOR must be between 0 and 16777215, got %d", c.Discord.EmbedColor)
	}
	return positive("DISCORD_TIMEOUT", c.Discord.Timeout)
}

func (c *Config) validateThumbnail() error {
	t := c.Thumbnail
	if verr := validation.ValidateVar("THUMBNAIL_BACKEND", t.Backend, "oneof=memory redis badger bolt"); verr != nil {
		return verr
	}

	switch t.Backend {
	case "redis":
		addr := t.RedisAddress()
		if addr == "" {
			return errors.New("REDIS_URL or REDISCLOUD_URL is required when THUMBNAIL_BACKEND=redis")
		}
		u, err := url.Parse(addr)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") || u.Host == "" {
			return errors.New("REDIS_URL must look like redis://[:password@]host:port[/db]")
		}
	case "badger":
		if t.BadgerPath == "" {
			return errors.New("BADGER_PATH is required when THUMBNAIL_BACKEND=badger")
		}
	case "bolt":
		if t.BoltPath == "" {
			return errors.New("BOLT_PATH is required when THUMBNAIL_BACKEND=bolt")
		}
	}

	if err := positive("THUMBNAIL_TTL", t.TTL); err != nil {
		return err
	}
	if verr := validation.ValidateVar("THUMBNAIL_WIDTH", t.Width, "min=1,max=2048"); verr != nil {
		return verr
	}
	if verr := validation.ValidateVar("THUMBNAIL_HEIGHT", t.Height, "min=1,max=2048"); verr != nil {
		return verr
	}
	if verr := validation.ValidateVar("THUMBNAIL_JPEG_QUALITY", t.JPEGQuality, "min=1,max=100"); verr != nil {
		return verr
	}
	if t.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", t.MaxUploadBytes)
	}
	return positive("MAINTENANCE_INTERVAL", t.MaintenanceInterval)
}

func (c *Config) validateGeo() error {
	g := c.Geo
	if verr := validation.ValidateVar("GEO_PROVIDER", g.Provider, "oneof=ip-api maxmind"); verr != nil {
		return verr
	}
	switch g.Provider {
	case "ip-api":
		if err := validateHTTPURL(g.IPAPIURL, "IP_API_URL", true); err != nil {
			return err
		}
	case "maxmind":
		if g.MaxMindAccountID == "" || g.MaxMindLicenseKey == "" {
			return errors.New("MAXMIND_ACCOUNT_ID and MAXMIND_LICENSE_KEY are required when GEO_PROVIDER=maxmind")
		}
	}

	if g.FallbackEnabled {
		if err := validateHTTPURL(g.NominatimURL, "NOMINATIM_URL", true); err != nil {
			return err
		}
	}
	if verr := validation.ValidateVar("HOME_COUNTRY", g.HomeCountry, "iso3166_1_alpha2"); verr != nil {
		return verr
	}
	if g.UserAgent == "" {
		return errors.New("GEO_USER_AGENT must not be empty")
	}
	if g.RateLimit <= 0 {
		return fmt.Errorf("GEO_RATE_LIMIT_PER_MINUTE must be positive, got %d", g.RateLimit)
	}
	if err := positive("GEO_TIMEOUT", g.Timeout); err != nil {
		return err
	}
	return positive("GEO_CACHE_TTL", g.CacheTTL)
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if !s.RateLimitDisabled {
		if s.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", s.RateLimitReqs)
		}
		if s.ImageRateLimit <= 0 {
			return fmt.Errorf("IMAGE_RATE_LIMIT_REQUESTS must be positive, got %d", s.ImageRateLimit)
		}
		if err := positive("RATE_LIMIT_WINDOW", s.RateLimitWindow); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if verr := validation.ValidateVar("LOG_LEVEL", level, "oneof=trace debug info warn warning error fatal panic disabled"); verr != nil {
		return verr
	}
	if verr := validation.ValidateVar("LOG_FORMAT", c.Logging.Format, "oneof=json console"); verr != nil {
		return verr
	}
	return nil
}

func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return nil
}
