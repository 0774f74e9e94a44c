// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package logging

import (
	"fmt"
	"strings"
)

// maxValueLen caps user supplied strings (titles, player names) in log lines.
const maxValueLen = 256

// SanitizeValue escapes control characters and truncates s so that values
// taken from webhook payloads cannot forge log lines.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			b.WriteString(fmt.Sprintf("\\x%02x", r))
			continue
		}
		b.WriteRune(r)
	}
	return truncateString(b.String(), maxValueLen)
}

// SanitizeToken masks a secret, keeping the first and last 4 characters.
// Example: "1234567890/abcdefghijkl" -> "1234...ijkl"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
