package notifications

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/allplay/internal/shared"
)

func TestNewService(t *testing.T) {
	t.Run("log service when topic missing", func(t *testing.T) {
		svc := NewService(shared.NotificationsConfig{NtfyTopic: "  "}, nil)
		if _, ok := svc.(*logService); !ok {
			t.Fatalf("expected log service, got %T", svc)
		}
		if err := svc.NotifyPlaying(context.Background(), "Song"); err != nil {
			t.Errorf("expected nil logger to discard, got %v", err)
		}
	})

	t.Run("ntfy service when topic set", func(t *testing.T) {
		svc := NewService(shared.NotificationsConfig{NtfyTopic: "https://ntfy.sh/allplay"}, nil)
		n, ok := svc.(*ntfyService)
		if !ok {
			t.Fatalf("expected ntfy service, got %T", svc)
		}
		if n.client.Timeout.Seconds() != 10 {
			t.Errorf("expected default timeout of 10s, got %v", n.client.Timeout)
		}
	})
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "playing",
			send:          func(s Service) error { return s.NotifyPlaying(context.Background(), " Song A ") },
			expectTitle:   "Playing 🎶",
			expectMessage: "Song A",
			expectTags:    "allplay,playing",
		},
		{
			name:          "added",
			send:          func(s Service) error { return s.NotifyAdded(context.Background(), "Song A", "Focus") },
			expectTitle:   "Added to Playlist",
			expectMessage: "Song A → Focus",
			expectTags:    "allplay,playlist,added",
		},
		{
			name:          "link copied",
			send:          func(s Service) error { return s.NotifyLinkCopied(context.Background(), "Focus") },
			expectTitle:   "Link copied!",
			expectMessage: "Share link for Focus is on the clipboard",
			expectTags:    "allplay,share",
		},
		{
			name:          "exported",
			send:          func(s Service) error { return s.NotifyExported(context.Background(), "backup.json") },
			expectTitle:   "Exported",
			expectMessage: "Playlists saved to backup.json",
			expectTags:    "allplay,backup,exported",
		},
		{
			name:           "test",
			send:           func(s Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "allplay - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "allplay,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title, tags, priority, body string
			}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := NewService(shared.NotificationsConfig{NtfyTopic: server.URL, RequestTimeoutSeconds: 5}, nil)
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Errorf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Errorf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Errorf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Errorf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic reserved", http.StatusForbidden)
	}))
	defer server.Close()

	svc := NewService(shared.NotificationsConfig{NtfyTopic: server.URL}, nil)
	err := svc.NotifyPlaying(context.Background(), "Song")
	if !errors.Is(err, shared.ErrAPIRequest) {
		t.Fatalf("expected ErrAPIRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), "topic reserved") {
		t.Errorf("expected response body in error, got %v", err)
	}
}

func TestLogService(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(shared.NotificationsConfig{}, shared.NewLogger(&buf))

	if err := svc.NotifyImported(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Imported") || !strings.Contains(out, "Restored 3 playlists") {
		t.Errorf("expected notice in log output, got %q", out)
	}
}
