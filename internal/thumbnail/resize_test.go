// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// solidPNG returns a w x h PNG filled with c.
func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	return img
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x2000 && g < 0x2000 && b < 0x2000
}

func isWhitish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xE000 && g > 0xE000 && b > 0xE000
}

func TestLetterbox_OutputIsExactBox(t *testing.T) {
	t.Parallel()

	r := Resizer{Width: 75, Height: 75, Quality: 90}
	sizes := [][2]int{{300, 450}, {1920, 1080}, {75, 75}, {10, 10}, {1, 400}}

	for _, sz := range sizes {
		out, err := r.Letterbox(solidPNG(t, sz[0], sz[1], color.White))
		if err != nil {
			t.Fatalf("%v: %v", sz, err)
		}
		img := decodeJPEG(t, out)
		if b := img.Bounds(); b.Dx() != 75 || b.Dy() != 75 {
			t.Errorf("%v: output %dx%d, want 75x75", sz, b.Dx(), b.Dy())
		}
	}
}

func TestLetterbox_PortraitGetsSideBars(t *testing.T) {
	t.Parallel()

	// 2:3 poster scales to 50x75 with 12-13px black bars left and right.
	out, err := Resizer{Width: 75, Height: 75, Quality: 95}.Letterbox(solidPNG(t, 200, 300, color.White))
	if err != nil {
		t.Fatal(err)
	}
	img := decodeJPEG(t, out)

	if !isDark(img.At(2, 37)) || !isDark(img.At(72, 37)) {
		t.Error("expected black bars on the left and right edges")
	}
	if !isWhitish(img.At(37, 2)) || !isWhitish(img.At(37, 72)) {
		t.Error("expected image content to reach the top and bottom edges")
	}
}

func TestLetterbox_SmallImageIsScaledUp(t *testing.T) {
	t.Parallel()

	out, err := Resizer{Width: 75, Height: 75, Quality: 95}.Letterbox(solidPNG(t, 10, 5, color.White))
	if err != nil {
		t.Fatal(err)
	}
	img := decodeJPEG(t, out)

	// 10x5 becomes 75x38: content spans the full width.
	if !isWhitish(img.At(2, 37)) || !isWhitish(img.At(72, 37)) {
		t.Error("small image should be enlarged to the box width")
	}
	if !isDark(img.At(37, 2)) {
		t.Error("expected a black bar above the enlarged image")
	}
}

func TestLetterbox_RejectsGarbage(t *testing.T) {
	t.Parallel()

	r := Resizer{Width: 75, Height: 75, Quality: 90}
	if _, err := r.Letterbox(nil); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := r.Letterbox([]byte("definitely not an image")); err == nil {
		t.Error("expected error for undecodable input")
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	if clamp(0, 1, 75) != 1 || clamp(80, 1, 75) != 75 || clamp(40, 1, 75) != 40 {
		t.Error("clamp bounds wrong")
	}
}
