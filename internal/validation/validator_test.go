// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type webhookHeader struct {
	Event string `json:"event" validate:"required,plexevent"`
	Limit int    `json:"limit" validate:"min=1,max=10"`
	Name  string `json:"name" validate:"omitempty,max=5"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	for _, ev := range []string{"media.play", "media.scrobble", "library.on.deck"} {
		if err := ValidateStruct(&webhookHeader{Event: ev, Limit: 1}); err != nil {
			t.Errorf("event %q: unexpected error %v", ev, err)
		}
	}
}

func TestValidateStruct_MissingEvent(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&webhookHeader{Limit: 1})
	if err == nil {
		t.Fatal("expected error for missing event")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(err.Errors()), err)
	}
	fe := err.Errors()[0]
	if fe.Field() != "event" || fe.Tag() != "required" {
		t.Errorf("expected required error on json name 'event', got %s/%s", fe.Field(), fe.Tag())
	}
	if fe.Error() != "event is required" {
		t.Errorf("unexpected message %q", fe.Error())
	}
}

func TestValidateStruct_BadEventName(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&webhookHeader{Event: "Play!", Limit: 1})
	if err == nil || err.Errors()[0].Tag() != "plexevent" {
		t.Fatalf("expected plexevent failure, got %v", err)
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&webhookHeader{Limit: 50, Name: "too long"})
	if err == nil {
		t.Fatal("expected errors")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "limit must be at most 10") {
		t.Errorf("message missing numeric max: %s", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "name must be at most 5 characters") {
		t.Errorf("message missing string max: %s", apiErr.Message)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected fields detail for multiple errors")
	}
}

func TestToAPIError_Single(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&webhookHeader{Limit: 1})
	apiErr := err.ToAPIError()
	if apiErr.Details["field"] != "event" {
		t.Errorf("expected field detail, got %v", apiErr.Details)
	}
}

func TestValidateVar_Coordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		value float64
		tag   string
		ok    bool
	}{
		{"lat", 48.85, "latitude", true},
		{"lat", -90, "latitude", true},
		{"lat", 91, "latitude", false},
		{"lon", 2.35, "longitude", true},
		{"lon", -181, "longitude", false},
	}
	for _, tt := range tests {
		err := ValidateVar(tt.field, tt.value, tt.tag)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateVar(%s=%v, %s) err=%v, want ok=%v", tt.field, tt.value, tt.tag, err, tt.ok)
		}
		if err != nil && !strings.HasPrefix(err.Error(), tt.field+" must be a valid") {
			t.Errorf("message should name the field: %q", err.Error())
		}
	}
}

func TestValidateVar_CountryCode(t *testing.T) {
	t.Parallel()

	if err := ValidateVar("home_country", "US", "iso3166_1_alpha2"); err != nil {
		t.Errorf("US should be valid: %v", err)
	}
	if err := ValidateVar("home_country", "USA", "iso3166_1_alpha2"); err == nil {
		t.Error("USA should be rejected")
	}
}
