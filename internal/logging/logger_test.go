// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Init(DefaultConfig()) })

	Init(Config{
		Level:     "debug",
		Format:    "json",
		Timestamp: true,
		Output:    &buf,
	})

	Info().Str("event", "media.play").Msg("Webhook received")

	output := buf.String()
	if !strings.Contains(output, "Webhook received") {
		t.Errorf("expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
	if !strings.Contains(output, `"event":"media.play"`) {
		t.Errorf("expected output to contain event field, got: %s", output)
	}
}

func TestInit_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Init(DefaultConfig()) })

	Init(Config{Level: "info", Format: "console", Output: &buf})
	Warn().Msg("console line")

	output := buf.String()
	if strings.HasPrefix(output, "{") {
		t.Errorf("console format should not emit JSON, got: %s", output)
	}
	if !strings.Contains(output, "console line") {
		t.Errorf("expected message in console output, got: %s", output)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { Init(DefaultConfig()) })

	Init(Config{Level: "warn", Output: &buf})
	Info().Msg("dropped")
	Debug().Msg("dropped too")
	Error().Msg("kept")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("info/debug should be filtered at warn level, got: %s", output)
	}
	if !strings.Contains(output, "kept") {
		t.Errorf("error should pass warn level, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestSetLevelString(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	SetLevelString("error")
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %v", zerolog.GlobalLevel())
	}
	SetLevelString("debug")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", zerolog.GlobalLevel())
	}
}

// captureLogs points the global logger at a buffer at debug level until the
// test ends.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })
	return &buf
}

func TestErr(t *testing.T) {
	buf := captureLogs(t)
	Err(errors.New("webhook rejected")).Msg("Dispatch failed")

	output := buf.String()
	if !strings.Contains(output, `"error":"webhook rejected"`) {
		t.Errorf("expected error field, got: %s", output)
	}
	if !strings.Contains(output, `"level":"error"`) {
		t.Errorf("expected error level, got: %s", output)
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureLogs(t)
	l := WithComponent("thumbnail")
	l.Info().Msg("stored")

	if !strings.Contains(buf.String(), `"component":"thumbnail"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
