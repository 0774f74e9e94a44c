// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Resizer letterboxes images into a fixed JPEG box.
type Resizer struct {
	Width   int
	Height  int
	Quality int
}

// Letterbox decodes raw, scales it to fit inside the box keeping the aspect
// ratio (small images are scaled up), centres it on a black canvas of
// exactly Width x Height and encodes the result as JPEG.
func (r Resizer) Letterbox(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("decode thumbnail: empty image")
	}

	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	canvas := imaging.New(r.Width, r.Height, color.Black)
	fitted := r.fit(src)
	canvas = imaging.PasteCenter(canvas, fitted)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(r.Quality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales src to the largest size that fits the box. imaging.Fit never
// enlarges, so the target size is computed here.
func (r Resizer) fit(src image.Image) image.Image {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return src
	}

	scale := math.Min(float64(r.Width)/float64(srcW), float64(r.Height)/float64(srcH))
	w := clamp(int(math.Round(float64(srcW)*scale)), 1, r.Width)
	h := clamp(int(math.Round(float64(srcH)*scale)), 1, r.Height)

	return imaging.Resize(src, w, h, imaging.Lanczos)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
