package library

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/repositories"
	"github.com/desertthunder/allplay/internal/shared"
	tu "github.com/desertthunder/allplay/internal/testing"
)

func openTestLibrary(t *testing.T, store *tu.MemoryStore) (*Library, *tu.MockNotifier) {
	t.Helper()
	notifier := &tu.MockNotifier{}
	lib, err := Open(context.Background(), store, nil, notifier, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return lib, notifier
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields defaults", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))

		snap := lib.Snapshot()
		if len(snap.Collection.Playlists) != 1 || snap.Collection.Active != models.DefaultPlaylistName {
			t.Errorf("expected default playlist, got %+v", snap.Collection)
		}
		if len(snap.Recent) != 0 || snap.NotifyEnabled {
			t.Errorf("expected empty recent and notifications off, got %+v", snap)
		}
		if !lib.FirstRun() {
			t.Error("expected FirstRun on empty store")
		}
	})

	t.Run("corrupt state", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{}, false)
		store.LoadErr = fmt.Errorf("%w: slot userPlaylists", shared.ErrCorruptState)

		_, err := Open(ctx, store, nil, nil, nil)
		if !errors.Is(err, shared.ErrCorruptState) {
			t.Errorf("expected ErrCorruptState, got %v", err)
		}
	})

	t.Run("duplicate stored names", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{
			Playlists: []models.Playlist{{Name: "A"}, {Name: "A"}},
		}, true)

		_, err := Open(ctx, store, nil, nil, nil)
		if !errors.Is(err, shared.ErrCorruptState) {
			t.Errorf("expected ErrCorruptState, got %v", err)
		}
	})

	t.Run("persisted state survives reopen", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations() error = %v", err)
		}

		first, err := Open(ctx, repositories.NewStateRepository(db), repositories.NewPlayLogRepository(db), nil, nil)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		first.Create(ctx, "Road Trip")
		first.AddSong(ctx, "Song A", "vid123")
		first.Record(ctx, "Song A", "vid123")
		first.SetNotify(ctx, true)

		second, err := Open(ctx, repositories.NewStateRepository(db), nil, nil, nil)
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		snap := second.Snapshot()
		if snap.Collection.Active != "Road Trip" {
			t.Errorf("active = %s, want Road Trip", snap.Collection.Active)
		}
		if got := snap.Active().Songs; len(got) != 1 || got[0].VideoID != "vid123" {
			t.Errorf("unexpected songs %+v", got)
		}
		if len(snap.Recent) != 1 || !snap.NotifyEnabled {
			t.Errorf("unexpected recent/notify %+v", snap)
		}
		if second.FirstRun() {
			t.Error("expected FirstRun false after saving")
		}
	})
}

func TestSwitchSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	first, err := Open(ctx, repositories.NewStateRepository(db), nil, nil, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first.AddSong(ctx, "Song A", "vid123")
	first.AddSong(ctx, "Song B", "vid456")
	first.Create(ctx, "Road Trip")
	first.AddSong(ctx, "Song C", "vid789")

	if err := first.Switch(ctx, models.DefaultPlaylistName); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	want := first.Active()

	second, err := Open(ctx, repositories.NewStateRepository(db), nil, nil, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := second.Snapshot().Collection.Active; got != models.DefaultPlaylistName {
		t.Errorf("active = %q, want %q", got, models.DefaultPlaylistName)
	}
	if got := second.Active(); !reflect.DeepEqual(got, want) {
		t.Errorf("active playlist = %+v, want %+v", got, want)
	}
}

func TestPlaylistOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("create persists and activates", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{}, false)
		lib, _ := openTestLibrary(t, store)

		if err := lib.Create(ctx, "  Road Trip  "); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		state := store.State()
		if state.Active != "Road Trip" || len(state.Playlists) != 2 {
			t.Errorf("unexpected persisted state %+v", state)
		}
	})

	t.Run("validation failures persist nothing", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{}, false)
		lib, _ := openTestLibrary(t, store)
		events, cancel := lib.Subscribe()
		defer cancel()

		tests := []struct {
			name string
			op   func() error
			want error
		}{
			{"empty name", func() error { return lib.Create(ctx, "   ") }, shared.ErrEmptyName},
			{"duplicate create", func() error { return lib.Create(ctx, models.DefaultPlaylistName) }, shared.ErrDuplicatePlaylist},
			{"rename to self", func() error { return lib.Rename(ctx, models.DefaultPlaylistName) }, shared.ErrDuplicatePlaylist},
			{"delete last", func() error { return lib.Delete(ctx) }, shared.ErrLastPlaylist},
			{"switch unknown", func() error { return lib.Switch(ctx, "Nope") }, shared.ErrPlaylistNotFound},
			{"remove out of range", func() error { _, err := lib.RemoveSong(ctx, 0); return err }, shared.ErrIndexOutOfRange},
			{"move out of range", func() error { return lib.MoveSong(ctx, 0, 1) }, shared.ErrIndexOutOfRange},
			{"empty video id", func() error { return lib.AddSong(ctx, "Song", "") }, shared.ErrEmptyVideoID},
			{"empty import", func() error { return lib.Import(ctx, nil) }, shared.ErrInvalidBackup},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.op(); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		if store.Saves != 0 {
			t.Errorf("expected no saves, got %d", store.Saves)
		}
		select {
		case ev := <-events:
			t.Errorf("expected no events, got %v", ev.Kind)
		default:
		}
	})

	t.Run("duplicate song is rejected without mutation", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{}, false)
		lib, notifier := openTestLibrary(t, store)
		lib.SetNotify(ctx, true)

		if err := lib.AddSong(ctx, "Song A", "vid123"); err != nil {
			t.Fatalf("AddSong() error = %v", err)
		}
		err := lib.AddSong(ctx, "Song A again", "vid123")
		if !errors.Is(err, shared.ErrDuplicateSong) {
			t.Fatalf("expected ErrDuplicateSong, got %v", err)
		}

		if songs := lib.Active().Songs; len(songs) != 1 || songs[0].Title != "Song A" {
			t.Errorf("unexpected songs %+v", songs)
		}
		if sent := notifier.Sent(); len(sent) != 1 || !strings.HasPrefix(sent[0], "Added to Playlist") {
			t.Errorf("expected one added notice, got %v", sent)
		}
	})

	t.Run("delete activates first remaining", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		lib.Create(ctx, "A")
		lib.Create(ctx, "B")

		if err := lib.Delete(ctx); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		snap := lib.Snapshot()
		if snap.Collection.Active != models.DefaultPlaylistName {
			t.Errorf("active = %s, want %s", snap.Collection.Active, models.DefaultPlaylistName)
		}
		if got := snap.Collection.Names(); len(got) != 2 || got[1] != "A" {
			t.Errorf("unexpected names %v", got)
		}
	})

	t.Run("remove and move", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		for _, id := range []string{"a", "b", "c"} {
			lib.AddSong(ctx, strings.ToUpper(id), id)
		}

		if err := lib.MoveSong(ctx, 2, 0); err != nil {
			t.Fatalf("MoveSong() error = %v", err)
		}
		removed, err := lib.RemoveSong(ctx, 1)
		if err != nil {
			t.Fatalf("RemoveSong() error = %v", err)
		}
		if removed.VideoID != "a" {
			t.Errorf("removed %s, want a", removed.VideoID)
		}

		songs := lib.Active().Songs
		if len(songs) != 2 || songs[0].VideoID != "c" || songs[1].VideoID != "b" {
			t.Errorf("unexpected order %+v", songs)
		}
	})

	t.Run("save failure leaves state intact", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{}, false)
		lib, _ := openTestLibrary(t, store)
		store.SaveErr = errors.New("disk full")

		if err := lib.Create(ctx, "Road Trip"); err == nil {
			t.Fatal("expected save error")
		}
		snap := lib.Snapshot()
		if snap.Collection.Has("Road Trip") || snap.Collection.Active != models.DefaultPlaylistName {
			t.Errorf("expected unchanged state, got %+v", snap.Collection)
		}
	})
}

func TestRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("record eleven keeps ten", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		for i := 1; i <= 11; i++ {
			if err := lib.Record(ctx, fmt.Sprintf("Song %d", i), fmt.Sprintf("S%d", i)); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}

		recent := lib.Snapshot().Recent
		if len(recent) != models.MaxRecent {
			t.Fatalf("expected %d entries, got %d", models.MaxRecent, len(recent))
		}
		if recent[0].VideoID != "S11" || recent[9].VideoID != "S2" {
			t.Errorf("unexpected order: first %s last %s", recent[0].VideoID, recent[9].VideoID)
		}
	})

	t.Run("replay moves to front", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		lib.Record(ctx, "A", "a")
		lib.Record(ctx, "B", "b")
		lib.Record(ctx, "A", "a")

		recent := lib.Snapshot().Recent
		if len(recent) != 2 || recent[0].VideoID != "a" || recent[1].VideoID != "b" {
			t.Errorf("unexpected recent %+v", recent)
		}
	})

	t.Run("clear", func(t *testing.T) {
		store := tu.NewMemoryStore(repositories.State{}, false)
		lib, _ := openTestLibrary(t, store)
		lib.Record(ctx, "A", "a")

		if err := lib.ClearRecent(ctx); err != nil {
			t.Fatalf("ClearRecent() error = %v", err)
		}
		if len(lib.Snapshot().Recent) != 0 || len(store.State().Recent) != 0 {
			t.Error("expected recent to be cleared and persisted")
		}
	})

	t.Run("play log stats", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()
		shared.RunMigrations(db)

		lib, err := Open(ctx, tu.NewMemoryStore(repositories.State{}, false), repositories.NewPlayLogRepository(db), nil, nil)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		lib.now = func() time.Time { tick = tick.Add(time.Second); return tick }

		lib.Record(ctx, "A", "a")
		lib.Record(ctx, "B", "b")
		lib.Record(ctx, "A", "a")

		stats, err := lib.Stats(ctx, 10)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if len(stats) != 2 || stats[0].Song.VideoID != "a" || stats[0].Plays != 2 {
			t.Errorf("unexpected stats %+v", stats)
		}
	})
}

func TestSharingAndBackup(t *testing.T) {
	ctx := context.Background()

	t.Run("load shared twice keeps names unique", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		pl := models.Playlist{Name: "Mix", Songs: []models.Song{{Title: "A", VideoID: "a"}}}

		first, err := lib.LoadShared(ctx, pl)
		if err != nil || first != "Mix (Shared)" {
			t.Fatalf("LoadShared() = %q, %v", first, err)
		}
		second, _ := lib.LoadShared(ctx, pl)
		if second == first {
			t.Errorf("expected a distinct name, got %q twice", second)
		}
		if lib.Snapshot().Collection.Active != second {
			t.Errorf("expected %q to be active", second)
		}
	})

	t.Run("import replaces collection", func(t *testing.T) {
		lib, notifier := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		lib.SetNotify(ctx, true)
		lib.Create(ctx, "Old")

		err := lib.Import(ctx, []models.Playlist{{Name: "X"}, {Name: "Y", Songs: []models.Song{{Title: "Y1", VideoID: "y1"}}}})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		snap := lib.Snapshot()
		if snap.Collection.Active != "X" || snap.Collection.Has("Old") || len(snap.Collection.Playlists) != 2 {
			t.Errorf("unexpected collection %+v", snap.Collection)
		}
		if got := lib.Export(); len(got) != 2 || got[1].Songs[0].VideoID != "y1" {
			t.Errorf("unexpected export %+v", got)
		}
		if sent := notifier.Sent(); len(sent) != 1 || sent[0] != "Imported" {
			t.Errorf("unexpected notices %v", sent)
		}
	})

	t.Run("import rejects duplicate names", func(t *testing.T) {
		lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))
		err := lib.Import(ctx, []models.Playlist{{Name: "X"}, {Name: "X"}})
		if !errors.Is(err, shared.ErrInvalidBackup) {
			t.Errorf("expected ErrInvalidBackup, got %v", err)
		}
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	lib, _ := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))

	t.Run("receives snapshot", func(t *testing.T) {
		events, cancel := lib.Subscribe()
		defer cancel()

		lib.Create(ctx, "Road Trip")

		select {
		case ev := <-events:
			if ev.Kind != PlaylistsChanged || ev.Snapshot.Collection.Active != "Road Trip" {
				t.Errorf("unexpected event %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("slow subscriber does not block", func(t *testing.T) {
		_, cancel := lib.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < subscriberBuffer*2; i++ {
				lib.Record(ctx, "A", fmt.Sprintf("v%d", i))
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("mutations blocked on a full subscriber")
		}
	})

	t.Run("cancel closes channel", func(t *testing.T) {
		events, cancel := lib.Subscribe()
		cancel()
		cancel()

		if _, ok := <-events; ok {
			t.Error("expected closed channel")
		}
	})
}

func TestNotifyRequiresOptIn(t *testing.T) {
	ctx := context.Background()
	lib, notifier := openTestLibrary(t, tu.NewMemoryStore(repositories.State{}, false))

	lib.AddSong(ctx, "A", "a")
	if len(notifier.Sent()) != 0 {
		t.Errorf("expected no notices while opted out, got %v", notifier.Sent())
	}

	lib.SetNotify(ctx, true)
	lib.AddSong(ctx, "B", "b")
	if len(notifier.Sent()) != 1 {
		t.Errorf("expected one notice after opting in, got %v", notifier.Sent())
	}
}
