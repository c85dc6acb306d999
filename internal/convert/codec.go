package convert

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	webpenc "github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"
)

func decode(src []byte) (image.Image, error) {
	if len(src) == 0 {
		return nil, errors.New("empty source")
	}
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// flatten composites img onto an opaque white canvas.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

func encode(img image.Image, s Settings) ([]byte, error) {
	var buf bytes.Buffer
	switch s.Format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: s.Quality}); err != nil {
			return nil, err
		}
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	case FormatWebP:
		if err := webpenc.Encode(&buf, img, webpenc.Options{Quality: s.Quality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", s.Format)
	}
	return buf.Bytes(), nil
}
