package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"pixbatch/internal/fileutil"
)

// Sink receives one named file per call.
type Sink interface {
	Deliver(ctx context.Context, name string, r io.Reader) error
}

// lockFileName is the advisory lock guarding an output directory.
const lockFileName = ".pixbatch.lock"

// ErrDirectoryBusy reports that another process holds the output directory lock.
var ErrDirectoryBusy = errors.New("output directory is locked by another pixbatch process")

// DirectorySink writes deliveries into a directory.
type DirectorySink struct {
	dir  string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewDirectorySink prepares a sink for dir. The directory is created on first
// delivery.
func NewDirectorySink(dir string) *DirectorySink {
	return &DirectorySink{dir: dir, lock: flock.New(filepath.Join(dir, lockFileName))}
}

// Dir returns the output directory.
func (s *DirectorySink) Dir() string {
	return s.dir
}

// Deliver writes r to dir/name atomically while holding the directory lock.
// An existing file with the same name is replaced.
func (s *DirectorySink) Deliver(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("deliver: invalid file name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrDirectoryBusy
	}
	defer func() { _ = s.lock.Unlock() }()

	if _, err := fileutil.WriteFileAtomic(filepath.Join(s.dir, name), r, 0o644); err != nil {
		return fmt.Errorf("deliver %s: %w", name, err)
	}
	return nil
}

// MemorySink keeps deliveries in memory, keyed by name.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) Deliver(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		s.order = append(s.order, name)
	}
	s.files[name] = buf.Bytes()
	return nil
}

// File returns the content delivered under name.
func (s *MemorySink) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names returns delivered names in first-delivery order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
