package notifications_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"pixbatch/internal/logging"
	"pixbatch/internal/notifications"
	"pixbatch/internal/testsupport"
)

func TestNewServiceLogsWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	svc := notifications.NewService(cfg, logger)
	event := notifications.NewEvent(notifications.KindSuccess, notifications.KeyAdded, notifications.Payload{"count": 3})
	if err := svc.Notify(context.Background(), event); err != nil {
		t.Fatalf("expected log notifier to return nil, got %v", err)
	}
	if !strings.Contains(buf.String(), "Added 3 image(s)") {
		t.Fatalf("expected rendered message in log, got %q", buf.String())
	}
}

func TestNtfyNotifierFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "converted",
			event:         notifications.NewEvent(notifications.KindSuccess, notifications.KeyConverted, notifications.Payload{"name": "caf_ photo.jpg"}),
			expectTitle:   "pixbatch - Done",
			expectMessage: "Converted caf_ photo.jpg",
			expectTags:    "pixbatch,success",
		},
		{
			name:           "conversion error",
			event:          notifications.NewEvent(notifications.KindError, notifications.KeyConversionError, notifications.Payload{"name": "broken.png"}),
			expectTitle:    "pixbatch - Error",
			expectMessage:  "Failed to convert broken.png",
			expectTags:     "pixbatch,error",
			expectPriority: "high",
		},
		{
			name:          "web size warning",
			event:         notifications.NewEvent(notifications.KindWarning, "app.validation.dimensions.webSize", notifications.Payload{"name": "huge.jpg"}),
			expectTitle:   "pixbatch - Warning",
			expectMessage: "huge.jpg is larger than recommended for the web",
			expectTags:    "pixbatch,warning",
		},
		{
			name:           "deleted",
			event:          notifications.NewEvent(notifications.KindInfo, notifications.KeyAllDeleted, nil),
			expectTitle:    "pixbatch - Info",
			expectMessage:  "Removed all images",
			expectTags:     "pixbatch,info",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := testsupport.NewConfig(t)
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(cfg, nil)
			if err := svc.Notify(context.Background(), tc.event); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyNotifierRespectsMinKind(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.MinKind = "warning"

	svc := notifications.NewService(cfg, nil)
	for _, kind := range []notifications.Kind{notifications.KindInfo, notifications.KindSuccess, notifications.KindWarning, notifications.KindError} {
		if err := svc.Notify(context.Background(), notifications.NewEvent(kind, notifications.KeyAdded, nil)); err != nil {
			t.Fatalf("Notify(%s): %v", kind, err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 published events, got %d", got)
	}
}

func TestNtfyNotifierReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n := notifications.NewNtfyNotifier(server.URL, 0, notifications.KindInfo)
	err := n.Notify(context.Background(), notifications.NewEvent(notifications.KindError, notifications.KeyConversionError, nil))
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	rec := &notifications.Recorder{}
	boom := errors.New("boom")
	failing := notifications.NotifierFunc(func(context.Context, notifications.Event) error { return boom })

	n := notifications.Multi(rec, nil, failing, notifications.Nop())
	err := n.Notify(context.Background(), notifications.NewEvent(notifications.KindInfo, notifications.KeyDeleted, nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(rec.Events()) != 1 {
		t.Fatal("expected recorder to receive the event despite sibling failure")
	}
}

func TestRecorder(t *testing.T) {
	rec := &notifications.Recorder{}
	ctx := context.Background()
	_ = rec.Notify(ctx, notifications.NewEvent(notifications.KindError, "app.validation.fileSize", nil))
	_ = rec.Notify(ctx, notifications.NewEvent(notifications.KindSuccess, notifications.KeyAdded, nil))
	_ = rec.Notify(ctx, notifications.NewEvent(notifications.KindError, "app.validation.format", nil))

	if rec.Count(notifications.KindError) != 2 || rec.Count(notifications.KindSuccess) != 1 {
		t.Fatalf("unexpected counts in %+v", rec.Events())
	}
	keys := rec.Keys()
	if keys[0] != "app.validation.fileSize" || keys[2] != "app.validation.format" {
		t.Fatalf("unexpected key order %v", keys)
	}
	rec.Reset()
	if len(rec.Events()) != 0 {
		t.Fatal("expected reset to drop events")
	}
}

func TestMessageFallbacks(t *testing.T) {
	if got := notifications.Message("app.unknown", notifications.Payload{"name": "x.png"}); got != "app.unknown: x.png" {
		t.Fatalf("unknown key with name rendered %q", got)
	}
	if got := notifications.Message("app.unknown", nil); got != "app.unknown" {
		t.Fatalf("unknown key rendered %q", got)
	}
	if _, err := notifications.ParseKind("loud"); err == nil {
		t.Fatal("expected unknown kind to be rejected")
	}
}
