package convert

import (
	"bytes"
	"encoding/base64"
	"io"
	"sync"

	"pixbatch/internal/failure"
)

// KeyFetchFailed is the message key for reads from a released output.
const KeyFetchFailed = "app.notifications.fetchFailed"

// Output is an encoded image owned by whoever holds it. After Release the
// bytes are dropped and every accessor returns KindFetchFailed.
type Output struct {
	mu       sync.RWMutex
	format   Format
	width    int
	height   int
	data     []byte
	released bool
}

// NewOutput wraps encoded bytes. data is retained, not copied.
func NewOutput(format Format, width, height int, data []byte) *Output {
	return &Output{format: format, width: width, height: height, data: data}
}

func (o *Output) Format() Format { return o.format }

func (o *Output) Width() int { return o.width }

func (o *Output) Height() int { return o.height }

// Size returns the encoded byte length, or 0 once released.
func (o *Output) Size() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.data)
}

// Bytes returns the encoded bytes. The slice must not be modified.
func (o *Output) Bytes() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.released {
		return nil, failure.New(failure.KindFetchFailed, "output: read", KeyFetchFailed)
	}
	return o.data, nil
}

// Reader returns a reader over the encoded bytes.
func (o *Output) Reader() (io.Reader, error) {
	data, err := o.Bytes()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// DataURL returns a displayable data: URL for the output.
func (o *Output) DataURL() (string, error) {
	data, err := o.Bytes()
	if err != nil {
		return "", err
	}
	prefix := "data:" + o.format.MediaType() + ";base64,"
	buf := make([]byte, len(prefix)+base64.StdEncoding.EncodedLen(len(data)))
	copy(buf, prefix)
	base64.StdEncoding.Encode(buf[len(prefix):], data)
	return string(buf), nil
}

// Release drops the bytes. It is safe to call more than once and on nil.
func (o *Output) Release() {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.data = nil
	o.released = true
	o.mu.Unlock()
}

// Released reports whether Release has been called.
func (o *Output) Released() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.released
}
