package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"pixbatch/internal/config"
	"pixbatch/internal/logging"
)

const userAgent = "pixbatch/0.1.0"

// Notifier receives events. Implementations must be safe for concurrent use
// and should return quickly.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// NewService builds the configured notifier set: the log notifier always,
// plus ntfy when a topic is configured.
func NewService(cfg *config.Config, logger *slog.Logger) Notifier {
	logNotifier := NewLogNotifier(logger)
	if cfg == nil {
		return logNotifier
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return logNotifier
	}

	minKind, err := ParseKind(cfg.Notifications.MinKind)
	if err != nil {
		minKind = KindInfo
	}
	return Multi(logNotifier, NewNtfyNotifier(topic, time.Duration(cfg.Notifications.RequestTimeout)*time.Second, minKind))
}

// Multi fans an event out to every notifier and joins their errors.
func Multi(notifiers ...Notifier) Notifier {
	filtered := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
func Nop() Notifier {
	return NotifierFunc(func(context.Context, Event) error { return nil })
}

type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier writes each event to logger at a level matching its kind.
func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logging.NewComponentLogger(logger, "notifications")}
}

func (n *logNotifier) Notify(ctx context.Context, event Event) error {
	logger := logging.WithContext(ctx, n.logger)
	attrs := []logging.Attr{
		logging.String("kind", string(event.Kind)),
		logging.String("message_key", event.MessageKey),
	}
	for key, value := range event.Params {
		attrs = append(attrs, logging.Any(key, value))
	}
	msg := event.Message()
	switch event.Kind {
	case KindError:
		logging.ErrorWithContext(logger, msg, "notification", attrs...)
	case KindWarning:
		logging.WarnWithContext(logger, msg, "notification", attrs...)
	default:
		logger.Info(msg, logging.Args(attrs...)...)
	}
	return nil
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Keys returns the message keys of recorded events in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.events))
	for i, e := range r.events {
		keys[i] = e.MessageKey
	}
	return keys
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type ntfyNotifier struct {
	endpoint string
	client   *http.Client
	minKind  Kind
}

// NewNtfyNotifier publishes events at or above minKind to an ntfy topic URL.
func NewNtfyNotifier(endpoint string, timeout time.Duration, minKind Kind) Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyNotifier{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
		minKind:  minKind,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

func (n *ntfyNotifier) Notify(ctx context.Context, event Event) error {
	if !event.Kind.AtLeast(n.minKind) {
		return nil
	}
	data := payload{
		title:   "pixbatch - " + titleFor(event.Kind),
		message: event.Message(),
		tags:    []string{"pixbatch", string(event.Kind)},
	}
	switch event.Kind {
	case KindError:
		data.priority = "high"
	case KindInfo:
		data.priority = "low"
	}
	return n.send(ctx, data)
}

func titleFor(kind Kind) string {
	switch kind {
	case KindSuccess:
		return "Done"
	case KindWarning:
		return "Warning"
	case KindError:
		return "Error"
	default:
		return "Info"
	}
}

func (n *ntfyNotifier) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil || n.endpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
