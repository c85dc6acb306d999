package convert

import (
	"fmt"
	"strings"
)

// Format is a target encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// Formats lists the supported targets in display order.
var Formats = []Format{FormatJPEG, FormatPNG, FormatWebP}

// ParseFormat accepts a format name or a media type. "jpg" is an alias for jpeg.
func ParseFormat(value string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, "image/")
	v = strings.TrimPrefix(v, ".")
	switch v {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected jpeg, png, or webp)", value)
	}
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatWebP:
		return true
	default:
		return false
	}
}

// Extension is the file extension used for outputs, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// MediaType returns the image media type.
func (f Format) MediaType() string {
	return "image/" + string(f)
}

// Lossless reports whether the format ignores quality.
func (f Format) Lossless() bool {
	return f == FormatPNG
}

func (f Format) String() string {
	return string(f)
}
