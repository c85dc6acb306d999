package batch

import (
	"sync"

	"pixbatch/internal/convert"
	"pixbatch/internal/failure"
)

// Buffer holds an item's source bytes until Release.
type Buffer struct {
	mu       sync.RWMutex
	data     []byte
	released bool
}

func newBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the source bytes. The slice must not be modified.
func (b *Buffer) Bytes() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.released {
		return nil, failure.New(failure.KindFetchFailed, "source: read", convert.KeyFetchFailed)
	}
	return b.data, nil
}

// Len returns the number of held bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Release drops the bytes. Safe to call more than once and on nil.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.data = nil
	b.released = true
	b.mu.Unlock()
}
