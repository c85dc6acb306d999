// Package watch feeds image files dropped into a directory to a handler in
// debounced batches.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"pixbatch/internal/config"
	"pixbatch/internal/ingest"
	"pixbatch/internal/logging"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatchingOutput reports that converted files would be delivered into the
// watched directory and picked up again.
var ErrWatchingOutput = errors.New("watched directory is the export output directory")

// CheckOutputDir returns ErrWatchingOutput when outputDir is dir. Both paths
// are compared by file identity when they exist, so symlinks and relative
// spellings of the same directory are caught.
func CheckOutputDir(dir, outputDir string) error {
	if strings.TrimSpace(outputDir) == "" {
		return nil
	}
	dirInfo, dirErr := os.Stat(dir)
	outInfo, outErr := os.Stat(outputDir)
	if dirErr == nil && outErr == nil {
		if os.SameFile(dirInfo, outInfo) {
			return fmt.Errorf("%s: %w", dir, ErrWatchingOutput)
		}
		return nil
	}
	if outErr != nil && !errors.Is(outErr, fs.ErrNotExist) {
		return fmt.Errorf("stat output directory: %w", outErr)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}
	if absDir == absOut {
		return fmt.Errorf("%s: %w", dir, ErrWatchingOutput)
	}
	return nil
}

// Handler receives the image paths that settled during one quiet period,
// sorted.
type Handler func(ctx context.Context, paths []string)

// Watcher monitors one directory for new or rewritten image files.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	fs       *fsnotify.Watcher
}

// New starts watching dir. Events that arrive before Run is called are
// buffered by the underlying watcher.
func New(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logging.NewComponentLogger(logger, "watch"),
		fs:       fsWatcher,
	}, nil
}

// NewFromConfig watches dir using the configured debounce.
func NewFromConfig(cfg *config.Config, dir string, logger *slog.Logger) (*Watcher, error) {
	debounce := DefaultDebounce
	if cfg != nil && cfg.Watch.DebounceMillis > 0 {
		debounce = time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
	}
	return New(dir, debounce, logger)
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run delivers settled batches to handle until ctx is done or the watcher is
// closed. Pending paths are flushed before Run returns on cancellation. Paths
// that no longer exist at flush time are dropped with a warning.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fs.Close()
	w.logger.Info("watching directory",
		logging.String("dir", w.dir),
		logging.Duration("debounce", w.debounce),
	)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	flush := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			if _, err := os.Stat(p); err != nil {
				w.logger.Warn("skipping file that vanished before conversion",
					logging.String("path", p),
					logging.Error(err),
					logging.String(logging.FieldEventType, "watch_file_vanished"),
				)
				continue
			}
			paths = append(paths, p)
		}
		clear(pending)
		if len(paths) == 0 {
			return
		}
		sort.Strings(paths)
		w.logger.Debug("batch settled", logging.Int("files", len(paths)))
		handle(ctx, paths)
	}

	for {
		select {
		case <-ctx.Done():
			flush(context.WithoutCancel(ctx))
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				flush(ctx)
				return nil
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				flush(ctx)
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logging.WarnWithContext(w.logger, "watch events dropped", "watch_overflow",
					logging.String(logging.FieldErrorHint, "re-add the directory contents with pixbatch convert"),
					logging.String(logging.FieldImpact, "some files may not be converted"),
				)
				continue
			}
			w.logger.Warn("watcher error", logging.Error(err))
		case <-timer.C:
			flush(ctx)
		}
	}
}

// Close stops the watcher. Run returns once the event channel drains.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	return strings.HasPrefix(ingest.MediaTypeForName(base), "image/")
}
