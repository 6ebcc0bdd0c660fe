// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/repositories"
	"github.com/desertthunder/allplay/internal/services"
	"github.com/desertthunder/allplay/internal/shared"
)

// MemoryStore is an in-memory test double for library.Store
type MemoryStore struct {
	mu      sync.Mutex
	state   repositories.State
	found   bool
	notify  bool
	Saves   int
	SaveErr error
	LoadErr error
}

// NewMemoryStore returns a store seeded with state. found reports whether Load should treat it as stored.
func NewMemoryStore(state repositories.State, found bool) *MemoryStore {
	return &MemoryStore{state: state, found: found}
}

func (m *MemoryStore) Load(ctx context.Context) (repositories.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return repositories.State{}, false, m.LoadErr
	}
	return cloneState(m.state), m.found, nil
}

func (m *MemoryStore) Save(ctx context.Context, state repositories.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.state = cloneState(state)
	m.found = true
	m.Saves++
	return nil
}

func (m *MemoryStore) NotifyEnabled(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notify, nil
}

func (m *MemoryStore) SetNotifyEnabled(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.notify = enabled
	return nil
}

// State returns a copy of the last saved state
func (m *MemoryStore) State() repositories.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state)
}

func cloneState(s repositories.State) repositories.State {
	out := repositories.State{Active: s.Active, Recent: slices.Clone(s.Recent)}
	for _, p := range s.Playlists {
		out.Playlists = append(out.Playlists, p.Clone())
	}
	return out
}

// MockNotifier records every notice it is asked to send
type MockNotifier struct {
	mu      sync.Mutex
	Notices []string
	Err     error
}

func (m *MockNotifier) record(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notices = append(m.Notices, s)
	return m.Err
}

func (m *MockNotifier) NotifyPlaying(ctx context.Context, title string) error {
	return m.record("Playing 🎶 " + title)
}

func (m *MockNotifier) NotifyAdded(ctx context.Context, title, playlist string) error {
	return m.record("Added to Playlist " + title)
}

func (m *MockNotifier) NotifyLinkCopied(ctx context.Context, playlist string) error {
	return m.record("Link copied! " + playlist)
}

func (m *MockNotifier) NotifyExported(ctx context.Context, filename string) error {
	return m.record("Exported " + filename)
}

func (m *MockNotifier) NotifyImported(ctx context.Context, count int) error {
	return m.record("Imported")
}

func (m *MockNotifier) TestNotification(ctx context.Context) error {
	return m.record("Test")
}

// Sent returns a copy of the recorded notices
func (m *MockNotifier) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Notices)
}

// MockSearcher is a test double for [services.Searcher] returning canned results per query
type MockSearcher struct {
	mu      sync.Mutex
	Results map[string][]services.SearchResult
	Err     error
	Delay   time.Duration
	Queries []string
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]services.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.ErrEmptyQuery
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[query], nil
}

// Calls returns the number of searches issued so far.
func (m *MockSearcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// Result builds a search result for a video id with the standard thumbnail
func Result(title, videoID string) services.SearchResult {
	return services.SearchResult{Title: title, VideoID: videoID, Thumbnail: models.ThumbnailURL(videoID, "default")}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
