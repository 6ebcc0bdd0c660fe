package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/allplay/internal/library"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/repositories"
	"github.com/desertthunder/allplay/internal/services"
	tu "github.com/desertthunder/allplay/internal/testing"
)

type fixture struct {
	m        *Model
	lib      *library.Library
	fake     *player.Fake
	bridge   *player.Bridge
	searcher *tu.MockSearcher
	copied   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	lib, err := library.Open(ctx, tu.NewMemoryStore(repositories.State{}, false), nil, &tu.MockNotifier{}, nil)
	if err != nil {
		t.Fatalf("library.Open() error = %v", err)
	}

	fake := player.NewFake()
	bridge := player.NewBridge(fake, lib, nil, 10*time.Millisecond, nil)
	t.Cleanup(func() { bridge.Close() })

	f := &fixture{
		lib:    lib,
		fake:   fake,
		bridge: bridge,
		searcher: &tu.MockSearcher{Results: map[string][]services.SearchResult{
			"lofi": {tu.Result("Lofi Beats", "lofi1"), tu.Result("Lofi Rain", "lofi2")},
			"old":  {tu.Result("Old Result", "old1")},
		}},
	}
	f.m = NewModel(ctx, Options{
		Library:   lib,
		Searcher:  f.searcher,
		Player:    bridge,
		ShareBase: "https://allplay.example/",
		Copy: func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		},
	})
	t.Cleanup(f.m.Close)
	f.m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return f
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press sends a key and runs the resulting command, feeding its message back.
func (f *fixture) press(t *testing.T, s string) {
	t.Helper()
	_, cmd := f.m.Update(keyPress(s))
	f.run(cmd)
}

func (f *fixture) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		f.m.Update(msg)
	}
	f.drain()
}

// drain applies pending library events without blocking.
func (f *fixture) drain() {
	for {
		select {
		case ev := <-f.m.events:
			f.m.Update(libraryChangedMsg(ev))
		default:
			return
		}
	}
}

func (f *fixture) search(t *testing.T, query string) {
	t.Helper()
	f.m.input.SetValue(query)
	f.press(t, "enter")
}

func TestSearch(t *testing.T) {
	t.Run("results", func(t *testing.T) {
		f := newFixture(t)
		f.search(t, "lofi")

		if got := len(f.m.results.Items()); got != 2 {
			t.Fatalf("expected 2 results, got %d", got)
		}
		if f.m.mode != browsing {
			t.Error("search should leave typing mode")
		}
		if !strings.Contains(f.m.View(), "Lofi Rain") {
			t.Error("results should be rendered")
		}
	})

	t.Run("empty query", func(t *testing.T) {
		f := newFixture(t)
		f.search(t, "   ")
		if !f.m.isErr || f.m.message != "enter something to search" {
			t.Errorf("unexpected status %q (err=%v)", f.m.message, f.m.isErr)
		}
		if len(f.searcher.Queries) != 0 {
			t.Error("blank query must not reach the searcher")
		}
	})

	t.Run("stale results dropped", func(t *testing.T) {
		f := newFixture(t)
		older := f.m.search("old")
		newer := f.m.search("lofi")

		f.run(newer)
		f.run(older)

		items := f.m.results.Items()
		if len(items) != 2 || items[0].(resultItem).result.VideoID != "lofi1" {
			t.Errorf("stale results replaced the latest ones: %+v", items)
		}
	})

	t.Run("search error", func(t *testing.T) {
		f := newFixture(t)
		f.searcher.Err = errors.New("quota exceeded")
		f.search(t, "lofi")
		if !f.m.isErr || !strings.Contains(f.m.View(), "quota exceeded") {
			t.Errorf("error should be on the status line, got %q", f.m.message)
		}
	})
}

func TestAddAndRemove(t *testing.T) {
	f := newFixture(t)
	f.search(t, "lofi")

	f.press(t, "a")
	if songs := f.lib.Active().Songs; len(songs) != 1 || songs[0].VideoID != "lofi1" {
		t.Fatalf("expected lofi1 in playlist, got %+v", songs)
	}
	if len(f.m.songs.Items()) != 1 {
		t.Error("playlist view should refresh from the library event")
	}

	f.press(t, "a")
	if !f.m.isErr || !strings.Contains(f.m.message, "already in playlist") {
		t.Errorf("duplicate add should report an error, got %q", f.m.message)
	}

	f.press(t, "tab")
	if f.m.view != PlaylistView {
		t.Fatalf("expected playlist view, got %s", f.m.view)
	}
	f.press(t, "x")
	if len(f.lib.Active().Songs) != 0 {
		t.Error("song should be removed")
	}
}

func TestPlayback(t *testing.T) {
	f := newFixture(t)
	f.search(t, "lofi")
	f.press(t, "enter")

	if f.fake.Loaded() != "lofi1" {
		t.Fatalf("expected lofi1 loaded, got %q", f.fake.Loaded())
	}

	deadline := time.After(2 * time.Second)
	for f.m.status.State != player.Playing {
		select {
		case st := <-f.bridge.Updates():
			f.m.Update(playerStatusMsg(st))
		case <-deadline:
			t.Fatal("timed out waiting for playing status")
		}
	}
	f.drain()

	view := f.m.View()
	if !strings.Contains(view, "⏸  Lofi Beats") {
		t.Errorf("now-playing bar should show the pause glyph and title:\n%s", view)
	}
	if recent := f.lib.Snapshot().Recent; len(recent) != 1 || recent[0].VideoID != "lofi1" {
		t.Errorf("play should be recorded, got %+v", recent)
	}
	if len(f.m.recent.Items()) != 1 {
		t.Error("recent view should refresh")
	}

	f.press(t, " ")
	for f.m.status.State != player.Paused {
		select {
		case st := <-f.bridge.Updates():
			f.m.Update(playerStatusMsg(st))
		case <-deadline:
			t.Fatal("timed out waiting for paused status")
		}
	}
	if !strings.Contains(f.m.View(), "▶  Lofi Beats") {
		t.Error("paused bar should show the play glyph")
	}
}

func TestPlaylistManagement(t *testing.T) {
	f := newFixture(t)
	f.press(t, "esc")

	f.press(t, "n")
	if f.m.mode != prompting {
		t.Fatalf("expected prompt, mode = %d", f.m.mode)
	}
	f.m.prompt.SetValue("Road Trip")
	f.press(t, "enter")
	if f.lib.Active().Name != "Road Trip" || f.m.message != `Created "Road Trip"` {
		t.Errorf("create failed: active %q, message %q", f.lib.Active().Name, f.m.message)
	}

	f.press(t, "n")
	f.m.prompt.SetValue("Road Trip")
	f.press(t, "enter")
	if !f.m.isErr {
		t.Error("duplicate name should be an error")
	}

	f.press(t, "r")
	f.m.prompt.SetValue("Drive")
	f.press(t, "enter")
	if f.lib.Active().Name != "Drive" {
		t.Errorf("rename failed: %q", f.lib.Active().Name)
	}

	f.press(t, "D")
	f.press(t, "n")
	if len(f.lib.Snapshot().Collection.Playlists) != 2 {
		t.Error("declined delete must not change state")
	}

	f.press(t, "D")
	f.press(t, "y")
	snap := f.lib.Snapshot()
	if names := snap.Collection.Names(); len(names) != 1 {
		t.Errorf("delete failed: %v", names)
	}
	if len(f.m.playlists.Items()) != 1 {
		t.Error("playlists view should refresh")
	}
}

func TestClearRecent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.lib.Record(ctx, "A", "a")
	f.drain()
	f.press(t, "esc")

	f.press(t, "C")
	if f.m.mode != confirming || !strings.Contains(f.m.View(), "Clear recently played?") {
		t.Fatal("expected confirmation prompt")
	}
	f.press(t, "esc")
	if len(f.lib.Snapshot().Recent) != 1 {
		t.Error("cancelled clear must not change state")
	}

	f.press(t, "C")
	f.press(t, "y")
	if len(f.lib.Snapshot().Recent) != 0 || len(f.m.recent.Items()) != 0 {
		t.Error("recent should be cleared")
	}
}

func TestShareAndNotify(t *testing.T) {
	f := newFixture(t)
	f.press(t, "esc")

	f.press(t, "s")
	if len(f.copied) != 1 || !strings.HasPrefix(f.copied[0], "https://allplay.example/?share=") {
		t.Errorf("unexpected clipboard contents %v", f.copied)
	}
	if f.m.message != "Link copied!" {
		t.Errorf("unexpected message %q", f.m.message)
	}

	f.press(t, "N")
	if !f.lib.NotifyEnabled() || !f.m.snapshot.NotifyEnabled {
		t.Error("notifications should be enabled")
	}
}

func TestSwitchPlaylist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.lib.Create(ctx, "Second")
	f.drain()
	f.press(t, "esc")

	for f.m.view != PlaylistsView {
		f.press(t, "tab")
	}
	f.m.playlists.Select(0)
	f.press(t, "enter")
	if f.lib.Active().Name != "Default Playlist" {
		t.Errorf("expected switch to default, got %q", f.lib.Active().Name)
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "--:--"},
		{-3, "--:--"},
		{5, "0:05"},
		{125.9, "2:05"},
		{3600, "60:00"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
