package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pixbatch/internal/config"
	"pixbatch/internal/convert"
	"pixbatch/internal/failure"
	"pixbatch/internal/ingest"
	"pixbatch/internal/logging"
	"pixbatch/internal/notifications"
	"pixbatch/internal/validate"
)

// Selection targets accepted by ToggleSelect in place of an item id.
const (
	SelectAll  = "all"
	SelectNone = ""
)

// Converter performs one conversion. *convert.Engine satisfies it. The default
// engine bounds its canvas by the validator's dimension limits.
type Converter interface {
	Convert(ctx context.Context, src []byte, settings convert.Settings, sink convert.ProgressSink) (*convert.Output, error)
}

// UpdateFunc observes item changes. It is called without the manager lock
// held and must not block for long.
type UpdateFunc func(View)

// Manager owns the batch. All methods are safe for concurrent use.
type Manager struct {
	logger    *slog.Logger
	engine    Converter
	validator *validate.Validator
	notifier  notifications.Notifier
	newID     func() string

	mu       sync.RWMutex
	items    map[string]*item
	order    []string
	settings convert.Settings
	onUpdate UpdateFunc
	closed   bool
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithConverter replaces the default conversion engine.
func WithConverter(c Converter) Option {
	return func(m *Manager) {
		if c != nil {
			m.engine = c
		}
	}
}

// WithNotifier sets the notification sink. The default logs events.
func WithNotifier(n notifications.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithValidator replaces the validator built from config limits.
func WithValidator(v *validate.Validator) Option {
	return func(m *Manager) {
		if v != nil {
			m.validator = v
		}
	}
}

// WithSettings overrides the initial shared settings.
func WithSettings(s convert.Settings) Option {
	return func(m *Manager) {
		m.settings = s
	}
}

// NewManager constructs a manager from configuration. A nil cfg uses defaults.
func NewManager(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Manager, error) {
	settings, err := convert.SettingsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("conversion settings: %w", err)
	}
	m := &Manager{
		logger:    logging.NewComponentLogger(logger, "batch"),
		validator: validate.New(validate.LimitsFromConfig(cfg)),
		notifier:  notifications.NewLogNotifier(logger),
		newID:     uuid.NewString,
		items:     make(map[string]*item),
		settings:  settings,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.engine == nil {
		limits := m.validator.Limits()
		m.engine = convert.NewEngine(logger, convert.WithCanvasLimits(convert.CanvasLimits{
			MaxDimension: limits.MaxDimension,
			MaxPixels:    limits.MaxPixels,
		}))
	}
	if err := m.settings.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetUpdateCallback registers fn to observe every state or progress change.
// Passing nil removes the callback.
func (m *Manager) SetUpdateCallback(fn UpdateFunc) {
	m.mu.Lock()
	m.onUpdate = fn
	m.mu.Unlock()
}

// Add validates each descriptor and appends accepted ones in order. Rejected
// descriptors produce an error notification each and are not added. It
// returns the ids of accepted items. Descriptors not yet read when ctx is
// done are left out.
func (m *Manager) Add(ctx context.Context, descriptors []ingest.Descriptor) []string {
	if m.isClosed() {
		return nil
	}
	ids := make([]string, 0, len(descriptors))
	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			m.logger.Info("add interrupted",
				logging.Int("added", len(ids)),
				logging.Int("skipped", len(descriptors)-i),
				logging.Error(err),
			)
			break
		}
		it, warning, err := m.admit(d)
		if err != nil {
			m.rejected(ctx, d, err)
			continue
		}

		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			it.release()
			break
		}
		m.items[it.id] = it
		m.order = append(m.order, it.id)
		view := it.view()
		m.mu.Unlock()

		ids = append(ids, it.id)
		m.logger.Debug("item added",
			logging.String(logging.FieldItemID, it.id),
			logging.String(logging.FieldItemName, it.name),
			logging.Int64("bytes", it.size),
			logging.Int("width", it.width),
			logging.Int("height", it.height),
		)
		if warning != "" {
			logging.WarnWithContext(m.logger, "image exceeds web size", "web_size_warning",
				logging.String(logging.FieldItemID, it.id),
				logging.String(logging.FieldItemName, it.name),
				logging.String(logging.FieldImpact, "item kept; consider resizing"),
			)
			m.notify(ctx, notifications.KindWarning, warning, notifications.Payload{"name": it.name})
		}
		m.publish(view)
	}
	if len(ids) > 0 {
		m.notify(ctx, notifications.KindSuccess, notifications.KeyAdded, notifications.Payload{"count": len(ids)})
	}
	return ids
}

// admit runs validation, reads the content, and checks dimensions. A header
// that cannot be probed does not reject the item; its conversion will fail
// with DecodeFailed instead.
func (m *Manager) admit(d ingest.Descriptor) (*item, string, error) {
	valid, err := m.validator.Validate(d)
	if err != nil {
		return nil, "", err
	}
	data, err := valid.ReadLimited(m.validator.Limits().MaxFileBytes)
	if errors.Is(err, ingest.ErrContentTooLarge) {
		return nil, "", failure.Wrap(failure.KindTooLarge, "add "+valid.Name, validate.KeyFileSize, err)
	}
	if err != nil {
		return nil, "", failure.Wrap(failure.KindDecodeFailed, "add "+valid.Name+": read", validate.KeyFormat, err)
	}

	now := time.Now()
	it := &item{
		id:           m.newID(),
		source:       newBuffer(data),
		name:         valid.Name,
		originalName: d.Name,
		mediaType:    valid.MediaType,
		size:         int64(len(data)),
		state:        StateIdle,
		addedAt:      now,
		updatedAt:    now,
	}
	m.mu.RLock()
	it.settings = m.settings
	m.mu.RUnlock()

	var warning string
	w, h, _, probeErr := convert.Probe(data)
	if probeErr != nil {
		m.logger.Warn("image header unreadable; conversion will fail",
			logging.String(logging.FieldItemName, valid.Name),
			logging.Error(probeErr),
			logging.String(logging.FieldEventType, "probe_failed"),
			logging.String(logging.FieldErrorHint, "verify the file is a valid jpeg, png, or webp image"),
		)
		return it, "", nil
	}
	report, err := m.validator.ValidateDimensions(w, h)
	if err != nil {
		return nil, "", err
	}
	it.width, it.height = w, h
	if report.HasWarning() {
		warning = report.WarningKey
		it.warnings = append(it.warnings, report.WarningKey)
	}
	return it, warning, nil
}

// rejected reports a descriptor that was not added. Unclassified errors are
// treated as fatal.
func (m *Manager) rejected(ctx context.Context, d ingest.Descriptor, err error) {
	kind, ok := failure.KindOf(err)
	noticeKind := notifications.KindError
	if ok && !kind.Fatal() {
		noticeKind = notifications.KindWarning
	}
	m.logger.Info("item rejected",
		logging.String(logging.FieldItemName, d.Name),
		logging.String("kind", string(kind)),
		logging.String("category", string(kind.Category())),
		logging.Error(err),
	)
	m.notify(ctx, noticeKind, failure.MessageKey(err, validate.KeyFormat), notifications.Payload{
		"name":  d.Name,
		"error": err.Error(),
	})
}

// Remove drops an item and releases its buffers. A converting item is
// cancelled and its eventual output is discarded.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	it, ok := m.items[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	m.detachLocked(id)
	m.mu.Unlock()

	m.dispose(it)
	m.logger.Debug("item removed", logging.String(logging.FieldItemID, id))
	m.notify(ctx, notifications.KindInfo, notifications.KeyDeleted, notifications.Payload{"name": it.name})
	return nil
}

// RemoveAll empties the batch and returns how many items were dropped.
func (m *Manager) RemoveAll(ctx context.Context) int {
	m.mu.Lock()
	removed := make([]*item, 0, len(m.order))
	for _, id := range m.order {
		removed = append(removed, m.items[id])
	}
	m.items = make(map[string]*item)
	m.order = nil
	m.mu.Unlock()

	for _, it := range removed {
		m.dispose(it)
	}
	if len(removed) > 0 {
		m.notify(ctx, notifications.KindInfo, notifications.KeyAllDeleted, notifications.Payload{"count": len(removed)})
	}
	return len(removed)
}

// RemoveSelected drops every selected item and returns how many were dropped.
func (m *Manager) RemoveSelected(ctx context.Context) int {
	m.mu.Lock()
	var removed []*item
	for _, id := range append([]string(nil), m.order...) {
		if it := m.items[id]; it.selected {
			m.detachLocked(id)
			removed = append(removed, it)
		}
	}
	m.mu.Unlock()

	for _, it := range removed {
		m.dispose(it)
	}
	switch len(removed) {
	case 0:
	case 1:
		m.notify(ctx, notifications.KindInfo, notifications.KeyDeleted, notifications.Payload{"name": removed[0].name})
	default:
		m.notify(ctx, notifications.KindInfo, notifications.KeyDeleted, notifications.Payload{
			"name":  fmt.Sprintf("%d images", len(removed)),
			"count": len(removed),
		})
	}
	return len(removed)
}

// detachLocked removes id from the index. Caller holds m.mu.
func (m *Manager) detachLocked(id string) {
	delete(m.items, id)
	for i, candidate := range m.order {
		if candidate == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// dispose cancels an in-flight conversion and releases buffers. The item is
// no longer reachable from the index.
func (m *Manager) dispose(it *item) {
	if it.cancel != nil {
		it.cancel()
	}
	it.release()
}

// ToggleSelect flips selection of one item, or selects every item for
// SelectAll and clears every selection for SelectNone. State is never touched.
func (m *Manager) ToggleSelect(id string) error {
	m.mu.Lock()
	var changed []View
	switch id {
	case SelectAll, SelectNone:
		want := id == SelectAll
		for _, itemID := range m.order {
			it := m.items[itemID]
			if it.selected != want {
				it.selected = want
				changed = append(changed, it.view())
			}
		}
	default:
		it, ok := m.items[id]
		if !ok {
			m.mu.Unlock()
			return fmt.Errorf("select %s: %w", id, ErrNotFound)
		}
		it.selected = !it.selected
		changed = append(changed, it.view())
	}
	m.mu.Unlock()

	for _, v := range changed {
		m.publish(v)
	}
	return nil
}

// Selected returns the ids of selected items in submission order.
func (m *Manager) Selected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, id := range m.order {
		if m.items[id].selected {
			ids = append(ids, id)
		}
	}
	return ids
}

// UpdateSettings applies a partial update to the shared settings. Items keep
// the settings they were converted with.
func (m *Manager) UpdateSettings(patch SettingsPatch) (convert.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.settings.Apply(patch)
	if err := next.Validate(); err != nil {
		return m.settings, err
	}
	m.settings = next
	return next, nil
}

// SettingsPatch is re-exported for callers that only import batch.
type SettingsPatch = convert.SettingsPatch

// Settings returns a copy of the shared settings.
func (m *Manager) Settings() convert.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Get returns a copy of one item.
func (m *Manager) Get(id string) (View, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return View{}, false
	}
	return it.view(), true
}

// Snapshot returns copies of every item in submission order.
func (m *Manager) Snapshot() []View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	views := make([]View, 0, len(m.order))
	for _, id := range m.order {
		views = append(views, m.items[id].view())
	}
	return views
}

// Converted returns copies of converted items in submission order.
func (m *Manager) Converted() []View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var views []View
	for _, id := range m.order {
		if it := m.items[id]; it.state == StateConverted {
			views = append(views, it.view())
		}
	}
	return views
}

// Len returns the number of items.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Counts returns the number of items per state.
func (m *Manager) Counts() map[State]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[State]int, len(allStates))
	for _, it := range m.items {
		counts[it.state]++
	}
	return counts
}

// Close cancels in-flight conversions and releases every buffer. Further
// calls to Add are ignored and conversions return ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	removed := make([]*item, 0, len(m.items))
	for _, id := range m.order {
		removed = append(removed, m.items[id])
	}
	m.items = make(map[string]*item)
	m.order = nil
	m.mu.Unlock()

	for _, it := range removed {
		m.dispose(it)
	}
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) publish(v View) {
	m.mu.RLock()
	fn := m.onUpdate
	m.mu.RUnlock()
	if fn != nil {
		fn(v)
	}
}

func (m *Manager) notify(ctx context.Context, kind notifications.Kind, key string, params notifications.Payload) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, notifications.NewEvent(kind, key, params)); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("notification skipped after cancellation", logging.String("message_key", key))
			return
		}
		m.logger.Debug("notification delivery failed", logging.String("message_key", key), logging.Error(err))
	}
}
