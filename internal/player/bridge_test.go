package player

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/shared"
	tu "github.com/desertthunder/allplay/internal/testing"
)

type recorder struct {
	mu       sync.Mutex
	plays    []string
	notifier tu.MockNotifier
	err      error
}

func (r *recorder) Record(ctx context.Context, title, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, videoID)
	return r.err
}

func (r *recorder) Notify(ctx context.Context, send func(context.Context, notifications.Service) error) {
	send(ctx, &r.notifier)
}

func (r *recorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.plays...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestBridge(t *testing.T) (*Bridge, *Fake, *recorder, *Session) {
	t.Helper()
	fake := NewFake()
	rec := &recorder{}
	session := NewSession()
	b := NewBridge(fake, rec, session, 10*time.Millisecond, nil)
	t.Cleanup(func() { b.Close() })
	return b, fake, rec, session
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		duration float64
		want     float64
	}{
		{"quarter", 30, 120, 25},
		{"zero duration", 30, 0, 0},
		{"negative duration", 30, -1, 0},
		{"past end", 130, 120, 100},
		{"negative position", -5, 120, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.position, tt.duration); got != tt.want {
				t.Errorf("Progress(%v, %v) = %v, want %v", tt.position, tt.duration, got, tt.want)
			}
		})
	}
}

func TestStateGlyph(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "▶"},
		{Playing, "⏸"},
		{Paused, "▶"},
		{Ended, "▶"},
	}
	for _, tt := range tests {
		if got := tt.state.Glyph(); got != tt.want {
			t.Errorf("%s glyph = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(Status{State: Paused, VideoID: "v"})
	if err != nil {
		t.Fatal(err)
	}
	if want := `"state":"paused"`; !strings.Contains(string(data), want) {
		t.Errorf("expected %s in %s", want, data)
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil || st.State != Paused {
		t.Errorf("round trip gave %+v, %v", st, err)
	}
	if err := json.Unmarshal([]byte(`{"state":"rewinding"}`), &st); err == nil {
		t.Error("unknown state should fail")
	}
}

func TestBridgePlay(t *testing.T) {
	ctx := context.Background()

	t.Run("new video loads and records", func(t *testing.T) {
		b, fake, rec, session := newTestBridge(t)

		if err := b.Play(ctx, "vid123", "Song A"); err != nil {
			t.Fatalf("Play() error = %v", err)
		}
		waitFor(t, "playing state", func() bool { return b.Status().State == Playing })

		if fake.Loaded() != "vid123" {
			t.Errorf("loaded %s, want vid123", fake.Loaded())
		}
		if got := rec.recorded(); len(got) != 1 || got[0] != "vid123" {
			t.Errorf("recorded %v", got)
		}
		if sent := rec.notifier.Sent(); len(sent) != 1 || sent[0] != "Playing 🎶 Song A" {
			t.Errorf("unexpected notices %v", sent)
		}

		md := session.Metadata()
		if md.Title != "Song A" || md.Artist != "AllPlay" || md.Album != "Playlist" {
			t.Errorf("unexpected metadata %+v", md)
		}
		if len(md.Artwork) != 1 || md.Artwork[0].Src != "https://img.youtube.com/vi/vid123/mqdefault.jpg" || md.Artwork[0].Sizes != "320x180" {
			t.Errorf("unexpected artwork %+v", md.Artwork)
		}
		if !b.Polling() {
			t.Error("expected poller to run while playing")
		}
		if b.Status().Glyph() != "⏸" {
			t.Error("expected pause glyph while playing")
		}
	})

	t.Run("same video toggles", func(t *testing.T) {
		b, fake, rec, _ := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")
		waitFor(t, "playing", func() bool { return b.Status().State == Playing })

		if err := b.Play(ctx, "vid123", "Song A"); err != nil {
			t.Fatalf("second Play() error = %v", err)
		}
		waitFor(t, "paused", func() bool { return b.Status().State == Paused })
		if b.Polling() {
			t.Error("expected poller stopped while paused")
		}

		b.Play(ctx, "vid123", "Song A")
		waitFor(t, "resumed", func() bool { return b.Status().State == Playing })

		if len(fake.Loads) != 1 {
			t.Errorf("expected a single load, got %v", fake.Loads)
		}
		if len(rec.recorded()) != 1 {
			t.Errorf("toggling should not record again, got %v", rec.recorded())
		}
	})

	t.Run("same video after end loads again", func(t *testing.T) {
		b, fake, rec, session := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")
		waitFor(t, "playing", func() bool { return b.Status().State == Playing })

		fake.Finish()
		waitFor(t, "ended", func() bool { return b.Status().State == Ended })

		if err := b.Play(ctx, "vid123", "Song A"); err != nil {
			t.Fatalf("replay Play() error = %v", err)
		}
		waitFor(t, "playing again", func() bool { return b.Status().State == Playing })

		if len(fake.Loads) != 2 {
			t.Errorf("expected a second load, got %v", fake.Loads)
		}
		if got := rec.recorded(); len(got) != 2 || got[1] != "vid123" {
			t.Errorf("expected the replay to be recorded, got %v", got)
		}
		if sent := rec.notifier.Sent(); len(sent) != 2 {
			t.Errorf("expected a second notice, got %v", sent)
		}
		if session.Metadata().Title != "Song A" {
			t.Errorf("unexpected metadata %+v", session.Metadata())
		}
	})

	t.Run("toggle after end loads again", func(t *testing.T) {
		b, fake, rec, _ := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")
		waitFor(t, "playing", func() bool { return b.Status().State == Playing })
		fake.Finish()
		waitFor(t, "ended", func() bool { return b.Status().State == Ended })

		if err := b.Toggle(ctx); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		waitFor(t, "playing again", func() bool { return b.Status().State == Playing })

		if len(fake.Loads) != 2 || fake.Loads[1] != "vid123" {
			t.Errorf("expected vid123 loaded again, got %v", fake.Loads)
		}
		if len(rec.recorded()) != 2 {
			t.Errorf("expected two plays recorded, got %v", rec.recorded())
		}
	})

	t.Run("ended fake ignores play", func(t *testing.T) {
		fake := NewFake()
		fake.Load(ctx, "vid123")
		<-fake.Events()
		fake.Finish()
		<-fake.Events()

		fake.Play(ctx)
		select {
		case ev := <-fake.Events():
			t.Errorf("expected no event after end, got %s", ev)
		default:
		}
	})

	t.Run("empty id", func(t *testing.T) {
		b, _, _, _ := newTestBridge(t)
		if err := b.Play(ctx, " ", "x"); !errors.Is(err, shared.ErrEmptyVideoID) {
			t.Errorf("expected ErrEmptyVideoID, got %v", err)
		}
	})

	t.Run("load failure leaves status", func(t *testing.T) {
		b, fake, rec, _ := newTestBridge(t)
		fake.LoadErr = errors.New("no network")

		if err := b.Play(ctx, "vid123", "Song A"); !errors.Is(err, shared.ErrPlayerUnavailable) {
			t.Fatalf("expected ErrPlayerUnavailable, got %v", err)
		}
		if b.Status().VideoID != "" || len(rec.recorded()) != 0 {
			t.Errorf("expected no state change, got %+v", b.Status())
		}
	})
}

func TestBridgeProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("poller reports progress", func(t *testing.T) {
		b, fake, _, _ := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")
		fake.SetTimes(30, 120)

		waitFor(t, "progress", func() bool { return b.Status().Progress == 25 })
	})

	t.Run("zero duration is zero progress", func(t *testing.T) {
		b, fake, _, _ := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")
		fake.SetTimes(30, 0)

		waitFor(t, "poll", func() bool { return b.Status().Position == 30 })
		if b.Status().Progress != 0 {
			t.Errorf("expected 0 progress, got %v", b.Status().Progress)
		}
	})

	t.Run("ended resets progress and stops poller", func(t *testing.T) {
		b, fake, _, session := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")
		fake.SetTimes(60, 120)
		waitFor(t, "progress", func() bool { return b.Status().Progress == 50 })

		fake.Finish()
		waitFor(t, "ended", func() bool { return b.Status().State == Ended })

		st := b.Status()
		if st.Progress != 0 || st.Glyph() != "▶" {
			t.Errorf("unexpected ended status %+v", st)
		}
		if b.Polling() {
			t.Error("expected poller stopped after end")
		}
		if session.PlaybackState() != Ended {
			t.Errorf("session state = %s, want ended", session.PlaybackState())
		}
	})

	t.Run("updates are delivered", func(t *testing.T) {
		b, _, _, _ := newTestBridge(t)
		b.Play(ctx, "vid123", "Song A")

		select {
		case st := <-b.Updates():
			if st.VideoID != "vid123" {
				t.Errorf("unexpected update %+v", st)
			}
		case <-time.After(time.Second):
			t.Fatal("no update received")
		}
	})
}

func TestBridgeSeekFraction(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing loaded", func(t *testing.T) {
		b, fake, _, _ := newTestBridge(t)
		if err := b.SeekFraction(ctx, 0.5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fake.Seeks) != 0 {
			t.Errorf("expected no seek, got %v", fake.Seeks)
		}
	})

	tests := []struct {
		name     string
		duration float64
		fraction float64
		want     []float64
	}{
		{"quarter", 200, 0.25, []float64{50}},
		{"clamped", 200, 1.5, []float64{200}},
		{"unknown duration", 0, 0.5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, fake, _, _ := newTestBridge(t)
			b.Play(ctx, "vid123", "Song A")
			b.Toggle(ctx)
			waitFor(t, "paused", func() bool { return b.Status().State == Paused })
			fake.SetTimes(0, tt.duration)

			if err := b.SeekFraction(ctx, tt.fraction); err != nil {
				t.Fatalf("SeekFraction() error = %v", err)
			}
			if len(fake.Seeks) != len(tt.want) {
				t.Fatalf("seeks = %v, want %v", fake.Seeks, tt.want)
			}
			for i := range tt.want {
				if fake.Seeks[i] != tt.want[i] {
					t.Errorf("seek %d = %v, want %v", i, fake.Seeks[i], tt.want[i])
				}
			}
		})
	}
}

func TestBridgeSessionHandlers(t *testing.T) {
	ctx := context.Background()
	b, _, _, session := newTestBridge(t)
	b.Play(ctx, "vid123", "Song A")
	waitFor(t, "playing", func() bool { return b.Status().State == Playing })

	if !session.Invoke(ActionPause) {
		t.Fatal("expected pause handler")
	}
	waitFor(t, "paused", func() bool { return b.Status().State == Paused })

	if !session.Invoke(ActionPlay) {
		t.Fatal("expected play handler")
	}
	waitFor(t, "playing", func() bool { return b.Status().State == Playing })

	for _, a := range []Action{ActionPreviousTrack, ActionNextTrack} {
		if !session.Invoke(a) {
			t.Errorf("expected %s to be registered", a)
		}
	}
	if session.Invoke(Action("seekto")) {
		t.Error("unregistered action should report false")
	}
}

func TestBridgeClose(t *testing.T) {
	ctx := context.Background()
	fake := NewFake()
	b := NewBridge(fake, nil, nil, 5*time.Millisecond, nil)

	b.Play(ctx, "vid123", "Song A")
	waitFor(t, "poller", b.Polling)

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if b.Polling() {
		t.Error("poller should not outlive Close")
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := b.Toggle(ctx); !errors.Is(err, shared.ErrPlayerUnavailable) {
		t.Errorf("expected closed player error, got %v", err)
	}
}
