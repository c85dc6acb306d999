package convert

import (
	"bytes"
	"image"

	"pixbatch/internal/failure"
)

// Probe reads image dimensions and the detected format name from the header
// without decoding pixel data. Dimensions are as stored; EXIF orientation is
// not applied.
func Probe(src []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return 0, 0, "", failure.Wrap(failure.KindDecodeFailed, "convert: probe", KeyConversionError, err)
	}
	return cfg.Width, cfg.Height, format, nil
}
