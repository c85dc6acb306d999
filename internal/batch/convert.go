package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pixbatch/internal/convert"
	"pixbatch/internal/failure"
	"pixbatch/internal/logging"
	"pixbatch/internal/notifications"
)

// Convert runs one item's conversion with the current shared settings and
// returns the item as it stands afterwards. The engine error, if any, is
// returned and also recorded on the item. A second call while the item is
// converting returns ErrAlreadyConverting without touching it.
func (m *Manager) Convert(ctx context.Context, id string) (View, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return View{}, ErrClosed
	}
	it, ok := m.items[id]
	if !ok {
		m.mu.Unlock()
		return View{}, fmt.Errorf("convert %s: %w", id, ErrNotFound)
	}
	if !it.state.CanConvert() {
		view := it.view()
		m.mu.Unlock()
		m.notify(ctx, notifications.KindError, notifications.KeyAlreadyInProgress, notifications.Payload{"name": view.Name})
		return view, fmt.Errorf("convert %s: %w", view.Name, ErrAlreadyConverting)
	}

	settings := m.settings
	itemCtx, cancel := context.WithCancel(ctx)
	itemCtx = logging.WithItemID(itemCtx, id)
	it.generation++
	generation := it.generation
	it.settings = settings
	it.state = StateConverting
	it.progress = 0
	it.lastErr = nil
	it.cancel = cancel
	it.updatedAt = time.Now()
	previous := it.output
	it.output = nil
	source := it.source
	name := it.name
	view := it.view()
	m.mu.Unlock()
	defer cancel()

	previous.Release()
	m.publish(view)

	logger := logging.WithContext(itemCtx, m.logger)
	logger.Info("conversion started",
		logging.String(logging.FieldItemName, name),
		logging.String("format", settings.Format.String()),
		logging.Int("quality", settings.Quality),
		logging.Int("width", settings.Width),
		logging.Int("height", settings.Height),
	)
	started := time.Now()

	out, err := m.runEngine(itemCtx, source, settings, id, generation)

	m.mu.Lock()
	cur, ok := m.items[id]
	if !ok || cur.generation != generation {
		m.mu.Unlock()
		out.Release()
		logger.Info("conversion discarded; item removed", logging.String(logging.FieldItemName, name))
		return View{}, fmt.Errorf("convert %s: %w", name, ErrRemoved)
	}
	cur.cancel = nil
	cur.updatedAt = time.Now()
	switch {
	case err == nil:
		cur.state = StateConverted
		cur.output = out
		cur.progress = 100
	case errors.Is(err, failure.KindCancelled):
		cur.state = StateCancelled
		cur.lastErr = err
	default:
		cur.state = StateFailed
		cur.lastErr = err
	}
	view = cur.view()
	m.mu.Unlock()

	m.publish(view)
	elapsed := time.Since(started)
	switch view.State {
	case StateConverted:
		logger.Info("conversion completed",
			logging.String(logging.FieldItemName, name),
			logging.Int("bytes", out.Size()),
			logging.Int("output_width", out.Width()),
			logging.Int("output_height", out.Height()),
			logging.Duration("elapsed", elapsed),
		)
		m.notify(ctx, notifications.KindSuccess, notifications.KeyConverted, notifications.Payload{"name": name})
	case StateCancelled:
		logger.Info("conversion cancelled", logging.String(logging.FieldItemName, name), logging.Duration("elapsed", elapsed))
		m.notify(ctx, notifications.KindInfo, notifications.KeyCancelled, notifications.Payload{"name": name})
	default:
		kind, _ := failure.KindOf(err)
		logging.ErrorWithContext(logger, "conversion failed", "conversion_failed",
			logging.String(logging.FieldItemName, name),
			logging.String("kind", string(kind)),
			logging.String("category", string(kind.Category())),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "re-run conversion or check the source image"),
		)
		m.notify(ctx, notifications.KindError, notifications.KeyConversionError, notifications.Payload{
			"name":  name,
			"error": err.Error(),
		})
	}
	return view, err
}

func (m *Manager) runEngine(ctx context.Context, source *Buffer, settings convert.Settings, id string, generation uint64) (*convert.Output, error) {
	data, err := source.Bytes()
	if err != nil {
		return nil, err
	}
	sampler := logging.NewProgressSampler(0)
	logger := logging.WithContext(ctx, m.logger)
	sink := func(p convert.Progress) {
		if sampler.ShouldLog(p.Percent, string(p.Stage)) {
			logger.Debug("conversion progress",
				logging.String(logging.FieldStage, string(p.Stage)),
				logging.Float64("percent", p.Percent),
			)
		}
		m.mu.Lock()
		cur, ok := m.items[id]
		if !ok || cur.generation != generation || cur.state != StateConverting {
			m.mu.Unlock()
			return
		}
		cur.progress = p.Percent
		view := cur.view()
		m.mu.Unlock()
		m.publish(view)
	}

	out, err := m.engine.Convert(ctx, data, settings, sink)
	if err != nil {
		out.Release()
		return nil, err
	}
	if out == nil {
		return nil, failure.New(failure.KindContextUnavailable, "convert", convert.KeyConversionError)
	}
	return out, nil
}

// BatchResult summarizes a ConvertBatch run. Each id appears in exactly one
// list; Skipped holds ids that were not started.
type BatchResult struct {
	Converted []string
	Failed    []string
	Cancelled []string
	Skipped   []string
	Elapsed   time.Duration
}

// Total returns the number of ids the batch considered.
func (r BatchResult) Total() int {
	return len(r.Converted) + len(r.Failed) + len(r.Cancelled) + len(r.Skipped)
}

// ConvertBatch converts ids one at a time in submission order. With no ids it
// converts the selected items, or every item when none is selected. A failure
// or per-item cancellation moves on to the next item. When ctx is cancelled
// the in-flight item ends cancelled and the rest are skipped untouched.
func (m *Manager) ConvertBatch(ctx context.Context, ids ...string) BatchResult {
	started := time.Now()
	ids = m.batchTargets(ids)
	var result BatchResult

	m.logger.Info("batch conversion started", logging.Int("count", len(ids)))
	for i, id := range ids {
		if ctx.Err() != nil {
			result.Skipped = append(result.Skipped, ids[i:]...)
			break
		}
		view, err := m.Convert(ctx, id)
		switch {
		case err == nil:
			result.Converted = append(result.Converted, id)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyConverting), errors.Is(err, ErrRemoved), errors.Is(err, ErrClosed):
			result.Skipped = append(result.Skipped, id)
		case view.State == StateCancelled:
			result.Cancelled = append(result.Cancelled, id)
		default:
			result.Failed = append(result.Failed, id)
		}
	}
	result.Elapsed = time.Since(started)
	m.logger.Info("batch conversion finished",
		logging.Int("converted", len(result.Converted)),
		logging.Int("failed", len(result.Failed)),
		logging.Int("cancelled", len(result.Cancelled)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result
}

func (m *Manager) batchTargets(ids []string) []string {
	if len(ids) > 0 {
		return append([]string(nil), ids...)
	}
	if selected := m.Selected(); len(selected) > 0 {
		return selected
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Cancel requests cancellation of a converting item. It reports whether a
// conversion was in flight. Other items are unaffected.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.state != StateConverting || it.cancel == nil {
		return false
	}
	it.cancel()
	return true
}
