package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/allplay/internal/services"
	"github.com/desertthunder/allplay/internal/shared"
	tu "github.com/desertthunder/allplay/internal/testing"
)

type mockAdder struct {
	mu    sync.Mutex
	songs []string
	err   error
}

func (m *mockAdder) AddSong(ctx context.Context, title, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, id := range m.songs {
		if id == videoID {
			return shared.ErrDuplicateSong
		}
	}
	m.songs = append(m.songs, videoID)
	return nil
}

func TestFill(t *testing.T) {
	ctx := context.Background()
	fast := FillOpts{NumWorkers: 4, RateLimit: 1000}

	t.Run("adds top hits in query order", func(t *testing.T) {
		searcher := &tu.MockSearcher{Results: map[string][]services.SearchResult{
			"alpha": {tu.Result("Alpha", "a1"), tu.Result("Alpha 2", "a2")},
			"beta":  {tu.Result("Beta", "b1")},
			"gamma": {tu.Result("Gamma", "g1")},
		}}
		adder := &mockAdder{}
		engine := NewPlaylistEngine(searcher, adder)

		progress := make(chan ProgressUpdate, 32)
		result, err := engine.Fill(ctx, progress, []string{"alpha", "", "beta", "  gamma  "}, fast)
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}

		if result.Added != 3 || result.Failed != 0 || result.Skipped != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		want := []string{"a1", "b1", "g1"}
		for i, id := range want {
			if adder.songs[i] != id {
				t.Errorf("song %d = %s, want %s", i, adder.songs[i], id)
			}
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("counts failures and duplicates", func(t *testing.T) {
		searcher := &tu.MockSearcher{Results: map[string][]services.SearchResult{
			"alpha": {tu.Result("Alpha", "a1")},
			"again": {tu.Result("Alpha", "a1")},
		}}
		engine := NewPlaylistEngine(searcher, &mockAdder{})

		result, err := engine.Fill(ctx, nil, []string{"alpha", "again", "nothing"}, fast)
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if result.Added != 1 || result.Skipped != 1 || result.Failed != 1 {
			t.Errorf("unexpected counts %+v", result)
		}
		if result.Results[2].Error == nil {
			t.Error("expected no-results error for third query")
		}
	})

	t.Run("search errors are per query", func(t *testing.T) {
		searcher := &tu.MockSearcher{Err: shared.ErrAPIRequest}
		engine := NewPlaylistEngine(searcher, &mockAdder{})

		result, err := engine.Fill(ctx, nil, []string{"a", "b"}, fast)
		if err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if result.Failed != 2 {
			t.Errorf("expected 2 failures, got %+v", result)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			engine  *PlaylistEngine
			queries []string
			want    error
		}{
			{"no searcher", NewPlaylistEngine(nil, &mockAdder{}), []string{"a"}, shared.ErrServiceUnavailable},
			{"no library", NewPlaylistEngine(&tu.MockSearcher{}, nil), []string{"a"}, shared.ErrServiceUnavailable},
			{"blank queries", NewPlaylistEngine(&tu.MockSearcher{}, &mockAdder{}), []string{" ", ""}, shared.ErrEmptyQuery},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := tt.engine.Fill(ctx, nil, tt.queries, fast); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		searcher := &tu.MockSearcher{Results: map[string][]services.SearchResult{"a": {tu.Result("A", "a")}}}
		adder := &mockAdder{}
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewPlaylistEngine(searcher, adder).Fill(cctx, nil, []string{"a"}, fast)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(adder.songs) != 0 {
			t.Error("nothing should be added after cancellation")
		}
	})
}

func TestSendProgress(t *testing.T) {
	e := NewPlaylistEngine(nil, nil)

	e.sendProgress(nil, ProgressUpdate{})

	full := make(chan ProgressUpdate)
	e.sendProgress(full, ProgressUpdate{Message: "dropped"})

	buffered := make(chan ProgressUpdate, 1)
	e.sendProgress(buffered, ProgressUpdate{Message: "kept"})
	if got := <-buffered; got.Message != "kept" {
		t.Errorf("unexpected update %+v", got)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{SearchSongs, "search_songs"},
		{AddSongs, "add_songs"},
		{ExportPlaylist, "export_playlist"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
