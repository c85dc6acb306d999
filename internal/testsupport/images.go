package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	webpenc "github.com/gen2brain/webp"
)

// Gradient returns an opaque RGBA raster with a horizontal and vertical
// colour ramp, which gives encoders enough detail for quality to matter.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 255) / max(w-1, 1)),
				G: uint8((y * 255) / max(h-1, 1)),
				B: uint8(((x ^ y) * 7) & 0xff),
				A: 0xff,
			})
		}
	}
	return img
}

// Transparent returns a fully transparent raster.
func Transparent(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// JPEG encodes a gradient of the given size as JPEG.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg fixture: %v", err)
	}
	return buf.Bytes()
}

// PNG encodes img as PNG. A nil img encodes a gradient of the given size.
func PNG(t testing.TB, w, h int, img image.Image) []byte {
	t.Helper()

	if img == nil {
		img = Gradient(w, h)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}

// WebP encodes a gradient of the given size as lossy WebP.
func WebP(t testing.TB, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := webpenc.Encode(&buf, Gradient(w, h), webpenc.Options{Quality: 80}); err != nil {
		t.Fatalf("encode webp fixture: %v", err)
	}
	return buf.Bytes()
}
