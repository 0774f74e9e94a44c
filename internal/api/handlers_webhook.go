// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plexcord/internal/logging"
	"github.com/tomtom215/plexcord/internal/metrics"
	"github.com/tomtom215/plexcord/internal/models"
	"github.com/tomtom215/plexcord/internal/pipeline"
	"github.com/tomtom215/plexcord/internal/validation"
)

const (
	// payloadAllowance is the room left for the JSON payload and multipart
	// framing on top of the thumbnail cap.
	payloadAllowance = 1 << 20

	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 8 << 20
)

var errPayloadMissing = errors.New(`form field "payload" is required`)

// Webhook handles Plex webhook deliveries.
// POST /
//
// Plex posts multipart/form-data with the event JSON in the "payload" field
// and, for play and rate events, the poster in the "thumb" file part. A raw
// application/json body is accepted too, without a thumbnail.
//
// Thumbnail size has two tiers. A thumb part over MaxUploadBytes is dropped
// and the event is still handled without it. A whole body over
// MaxUploadBytes plus one MiB of payload allowance is refused with 413 and
// the event is lost.
//
// Responses:
//   - 200 once the payload is parsed, whether or not anything is sent
//   - 400 for a malformed form, payload JSON or missing event
//   - 413 when the body exceeds the upload cap plus allowance
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+payloadAllowance)

	raw, thumb, err := h.readWebhook(r)
	if err != nil {
		metrics.RecordWebhookEvent("", "invalid")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge,
				errorf(CodePayloadTooLarge, "Webhook body too large"), err)
			return
		}
		respondError(w, r, http.StatusBadRequest, errorf(CodeValidation, err.Error()), err)
		return
	}

	var ev models.MediaEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		metrics.RecordWebhookEvent("", "invalid")
		respondError(w, r, http.StatusBadRequest,
			errorf(CodeValidation, "Failed to parse webhook payload JSON"), err)
		return
	}
	if verr := validation.ValidateStruct(&ev); verr != nil {
		metrics.RecordWebhookEvent("", "invalid")
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("event", logging.SanitizeValue(ev.Event)).
		Str("user", logging.SanitizeValue(ev.Account.Title)).
		Str("player", logging.SanitizeValue(ev.Player.Title)).
		Int("thumb_bytes", len(thumb)).
		Msg("Webhook received")

	d := h.pipeline.Submit(r.Context(), &ev, thumb)

	ack := models.WebhookAck{Accepted: d.Accepted, Event: ev.Event}
	if d.Notify {
		ack.Action = pipeline.ActionLabel(&ev)
	}
	respondSuccess(w, r, ack)
}

// readWebhook returns the payload JSON and the thumbnail bytes, if any.
func (h *Handler) readWebhook(r *http.Request) (payload, thumb []byte, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		payload, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read body: %w", err)
		}
		return payload, nil, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	value := r.FormValue("payload")
	if value == "" {
		return nil, nil, errPayloadMissing
	}

	thumb, err = h.readThumb(r)
	if err != nil {
		return nil, nil, err
	}
	return []byte(value), thumb, nil
}

func (h *Handler) readThumb(r *http.Request) ([]byte, error) {
	file, header, err := r.FormFile("thumb")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read thumb: %w", err)
	}
	defer file.Close()

	if header.Size > h.config.MaxUploadBytes {
		logging.Ctx(r.Context()).Warn().
			Int64("size", header.Size).
			Int64("limit", h.config.MaxUploadBytes).
			Msg("Thumbnail over size limit, ignoring it")
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, h.config.MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read thumb: %w", err)
	}
	return data, nil
}
