package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/shared"
)

const userAgent = "allplay/0.1.0"

// Service defines the notification surface used by the library and front ends.
type Service interface {
	NotifyPlaying(ctx context.Context, title string) error
	NotifyAdded(ctx context.Context, title, playlist string) error
	NotifyLinkCopied(ctx context.Context, playlist string) error
	NotifyExported(ctx context.Context, filename string) error
	NotifyImported(ctx context.Context, count int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic is configured.
// When no topic is configured, notices go to the logger.
func NewService(cfg shared.NotificationsConfig, logger *log.Logger) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return &logService{logger: logger}
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

func playingPayload(title string) payload {
	return payload{
		title:   "Playing 🎶",
		message: strings.TrimSpace(title),
		tags:    []string{"allplay", "playing"},
	}
}

func addedPayload(title, playlist string) payload {
	msg := strings.TrimSpace(title)
	if playlist = strings.TrimSpace(playlist); playlist != "" {
		msg = fmt.Sprintf("%s → %s", msg, playlist)
	}
	return payload{
		title:   "Added to Playlist",
		message: msg,
		tags:    []string{"allplay", "playlist", "added"},
	}
}

func linkCopiedPayload(playlist string) payload {
	return payload{
		title:   "Link copied!",
		message: fmt.Sprintf("Share link for %s is on the clipboard", strings.TrimSpace(playlist)),
		tags:    []string{"allplay", "share"},
	}
}

func exportedPayload(filename string) payload {
	return payload{
		title:   "Exported",
		message: fmt.Sprintf("Playlists saved to %s", strings.TrimSpace(filename)),
		tags:    []string{"allplay", "backup", "exported"},
	}
}

func importedPayload(count int) payload {
	return payload{
		title:   "Imported",
		message: fmt.Sprintf("Restored %d playlists", count),
		tags:    []string{"allplay", "backup", "imported"},
	}
}

func testPayload() payload {
	return payload{
		title:    "allplay - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"allplay", "test"},
		priority: "low",
	}
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPlaying(ctx context.Context, title string) error {
	return n.send(ctx, playingPayload(title))
}

func (n *ntfyService) NotifyAdded(ctx context.Context, title, playlist string) error {
	return n.send(ctx, addedPayload(title, playlist))
}

func (n *ntfyService) NotifyLinkCopied(ctx context.Context, playlist string) error {
	return n.send(ctx, linkCopiedPayload(playlist))
}

func (n *ntfyService) NotifyExported(ctx context.Context, filename string) error {
	return n.send(ctx, exportedPayload(filename))
}

func (n *ntfyService) NotifyImported(ctx context.Context, count int) error {
	return n.send(ctx, importedPayload(count))
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, testPayload())
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
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
		return fmt.Errorf("%w: send ntfy notification: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: ntfy returned %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// logService writes notices to the logger. A nil logger discards them.
type logService struct {
	logger *log.Logger
}

func (s *logService) NotifyPlaying(_ context.Context, title string) error {
	return s.send(playingPayload(title))
}

func (s *logService) NotifyAdded(_ context.Context, title, playlist string) error {
	return s.send(addedPayload(title, playlist))
}

func (s *logService) NotifyLinkCopied(_ context.Context, playlist string) error {
	return s.send(linkCopiedPayload(playlist))
}

func (s *logService) NotifyExported(_ context.Context, filename string) error {
	return s.send(exportedPayload(filename))
}

func (s *logService) NotifyImported(_ context.Context, count int) error {
	return s.send(importedPayload(count))
}

func (s *logService) TestNotification(context.Context) error {
	return s.send(testPayload())
}

func (s *logService) send(data payload) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Info(data.title, "message", data.message, "tags", strings.Join(data.tags, ","))
	return nil
}
