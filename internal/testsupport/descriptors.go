package testsupport

import (
	"bytes"
	"io"

	"pixbatch/internal/ingest"
)

// Descriptor wraps in-memory bytes in an ingest descriptor.
func Descriptor(name, mediaType string, data []byte) ingest.Descriptor {
	return ingest.Descriptor{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// SizedDescriptor reports size without holding that many bytes. Opening it
// yields data, which lets tests exercise size limits cheaply.
func SizedDescriptor(name, mediaType string, size int64, data []byte) ingest.Descriptor {
	d := Descriptor(name, mediaType, data)
	d.Size = size
	return d
}
