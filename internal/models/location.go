// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package models

import (
	"strings"
	"unicode/utf8"
)

// Location sources.
const (
	SourceIPAPI     = "ip-api.com"
	SourceMaxMind   = "maxmind-geolite2"
	SourceNominatim = "nominatim"
)

// ResolvedLocation is the approximate physical location of a player.
//
// Every descriptive field may be empty; a resolver that knows only the
// country still returns a location.
type ResolvedLocation struct {
	IPAddress   string   `json:"ip_address,omitempty"`
	City        string   `json:"city,omitempty"`
	RegionName  string   `json:"region_name,omitempty"`
	CountryName string   `json:"country_name,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// HasUsableCity reports whether City has more than one character. Some
// providers return a single placeholder character for unknown cities.
func (l *ResolvedLocation) HasUsableCity() bool {
	return l != nil && utf8.RuneCountInString(l.City) > 1
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l *ResolvedLocation) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// IsHomeCountry compares the country code with home, ignoring case.
func (l *ResolvedLocation) IsHomeCountry(home string) bool {
	return l != nil && home != "" && strings.EqualFold(l.CountryCode, home)
}

// DisplayRegion returns the region name for players in the home country
// and the country name elsewhere. When the preferred field is empty the
// other one is used.
func (l *ResolvedLocation) DisplayRegion(home string) string {
	if l == nil {
		return ""
	}
	primary, secondary := l.CountryName, l.RegionName
	if l.IsHomeCountry(home) {
		primary, secondary = l.RegionName, l.CountryName
	}
	if primary != "" {
		return primary
	}
	return secondary
}

// Merge overlays the non-empty descriptive fields of other onto a copy of l.
// Coordinates, address and source stay those of l.
func (l *ResolvedLocation) Merge(other *ResolvedLocation) *ResolvedLocation {
	if l == nil {
		return other
	}
	merged := *l
	if other == nil {
		return &merged
	}
	if other.City != "" {
		merged.City = other.City
	}
	if other.RegionName != "" {
		merged.RegionName = other.RegionName
	}
	if other.CountryName != "" {
		merged.CountryName = other.CountryName
	}
	if other.CountryCode != "" {
		merged.CountryCode = other.CountryCode
	}
	return &merged
}
