package library

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/repositories"
)

const subscriberBuffer = 16

// Store persists the whole library state. Implemented by [repositories.StateRepository].
type Store interface {
	Load(ctx context.Context) (repositories.State, bool, error)
	Save(ctx context.Context, state repositories.State) error
	NotifyEnabled(ctx context.Context) (bool, error)
	SetNotifyEnabled(ctx context.Context, enabled bool) error
}

// PlayLog records every play. Implemented by [repositories.PlayLogRepository].
type PlayLog interface {
	Append(ctx context.Context, song models.Song, at time.Time) error
	Top(ctx context.Context, limit int) ([]repositories.PlayCount, error)
}

// EventKind tells subscribers which part of the state changed.
type EventKind int

const (
	PlaylistsChanged EventKind = iota
	RecentChanged
	SettingsChanged
)

func (k EventKind) String() string {
	switch k {
	case PlaylistsChanged:
		return "playlists_changed"
	case RecentChanged:
		return "recent_changed"
	case SettingsChanged:
		return "settings_changed"
	default:
		return ""
	}
}

// Snapshot is a deep copy of the library state, safe to read without locking.
type Snapshot struct {
	Collection    models.Collection
	Recent        models.Recent
	NotifyEnabled bool
}

// Active returns the active playlist of the snapshot.
func (s Snapshot) Active() models.Playlist {
	for _, p := range s.Collection.Playlists {
		if p.Name == s.Collection.Active {
			return p
		}
	}
	return models.Playlist{}
}

// Event is published after every successful mutation.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Library is the single owner of playlist and recently-played state.
type Library struct {
	mu         sync.Mutex
	store      Store
	plays      PlayLog
	notifier   notifications.Service
	logger     *log.Logger
	collection *models.Collection
	recent     models.Recent
	notify     bool
	firstRun   bool

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int

	now func() time.Time
}

// Open loads state from store and returns a ready Library.
//
// plays and notifier may be nil. Corrupt stored state is returned as an error
// wrapping [shared.ErrCorruptState] and no Library is created.
func Open(ctx context.Context, store Store, plays PlayLog, notifier notifications.Service, logger *log.Logger) (*Library, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	state, found, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	collection, err := models.RestoreCollection(state.Playlists, state.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	notify, err := store.NotifyEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification setting: %w", err)
	}

	recent := state.Recent
	if len(recent) > models.MaxRecent {
		recent = recent[:models.MaxRecent]
	}

	l := &Library{
		store:      store,
		plays:      plays,
		notifier:   notifier,
		logger:     logger,
		collection: collection,
		recent:     slices.Clone(recent),
		notify:     notify,
		firstRun:   !found,
		subs:       make(map[int]chan Event),
		now:        time.Now,
	}

	logger.Debug("library loaded", "playlists", len(collection.Playlists), "active", collection.Active, "recent", len(l.recent), "first_run", l.firstRun)
	return l, nil
}

// FirstRun reports whether no playlists were stored when the library was opened.
// Front ends use it to offer a backup import.
func (l *Library) FirstRun() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.firstRun
}

// Snapshot returns a deep copy of the current state.
func (l *Library) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Library) snapshotLocked() Snapshot {
	return Snapshot{
		Collection:    l.collection.Snapshot(),
		Recent:        slices.Clone(l.recent),
		NotifyEnabled: l.notify,
	}
}

// Active returns a copy of the active playlist.
func (l *Library) Active() models.Playlist {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collection.ActivePlaylist().Clone()
}

// Subscribe registers a subscriber. The returned cancel func unregisters it and closes the channel.
func (l *Library) Subscribe() (<-chan Event, func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	id := l.nextID
	l.nextID++
	ch := make(chan Event, subscriberBuffer)
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.subMu.Lock()
			defer l.subMu.Unlock()
			delete(l.subs, id)
			close(ch)
		})
	}
}

// publish sends an event to every subscriber without blocking.
func (l *Library) publish(ev Event) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	for id, ch := range l.subs {
		select {
		case ch <- ev:
		default:
			l.logger.Debug("subscriber behind, dropping event", "subscriber", id, "kind", ev.Kind)
		}
	}
}

// mutate applies fn to working copies of the state, persists them, then commits and publishes.
func (l *Library) mutate(ctx context.Context, kind EventKind, fn func(c *models.Collection, r *models.Recent) error) error {
	l.mu.Lock()

	working := l.collection.Snapshot()
	recent := slices.Clone(l.recent)
	if err := fn(&working, &recent); err != nil {
		l.mu.Unlock()
		return err
	}

	state := repositories.State{Playlists: working.Playlists, Active: working.Active, Recent: recent}
	if err := l.store.Save(ctx, state); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to save library: %w", err)
	}

	l.collection = &working
	l.recent = recent
	l.firstRun = false
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.publish(Event{Kind: kind, Snapshot: snap})
	return nil
}

// Create adds an empty playlist and makes it active.
func (l *Library) Create(ctx context.Context, name string) error {
	return l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		return c.Create(name)
	})
}

// Rename renames the active playlist.
func (l *Library) Rename(ctx context.Context, newName string) error {
	return l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		return c.Rename(newName)
	})
}

// Delete removes the active playlist. The last playlist cannot be deleted.
func (l *Library) Delete(ctx context.Context) error {
	return l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		return c.Delete()
	})
}

// Switch makes the named playlist active.
func (l *Library) Switch(ctx context.Context, name string) error {
	return l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		return c.Switch(name)
	})
}

// AddSong appends a song to the active playlist and sends an "Added to Playlist" notice.
func (l *Library) AddSong(ctx context.Context, title, videoID string) error {
	var playlist string
	err := l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		playlist = c.Active
		return c.AddSong(title, videoID)
	})
	if err != nil {
		return err
	}

	l.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
		return n.NotifyAdded(ctx, title, playlist)
	})
	return nil
}

// RemoveSong removes the song at index from the active playlist.
func (l *Library) RemoveSong(ctx context.Context, index int) (models.Song, error) {
	var removed models.Song
	err := l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		s, err := c.RemoveSong(index)
		removed = s
		return err
	})
	return removed, err
}

// MoveSong reorders a song within the active playlist.
func (l *Library) MoveSong(ctx context.Context, from, to int) error {
	return l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		return c.MoveSong(from, to)
	})
}

// Record moves a song to the front of the recently-played list and appends it to the play log.
//
// Play log failures are logged and do not fail the call.
func (l *Library) Record(ctx context.Context, title, videoID string) error {
	err := l.mutate(ctx, RecentChanged, func(_ *models.Collection, r *models.Recent) error {
		*r = r.Record(title, videoID)
		return nil
	})
	if err != nil {
		return err
	}

	if l.plays != nil {
		if err := l.plays.Append(ctx, models.Song{Title: title, VideoID: videoID}, l.now()); err != nil {
			l.logger.Warn("failed to append play log", "video_id", videoID, "error", err)
		}
	}
	return nil
}

// ClearRecent empties the recently-played list.
func (l *Library) ClearRecent(ctx context.Context) error {
	return l.mutate(ctx, RecentChanged, func(_ *models.Collection, r *models.Recent) error {
		*r = models.Recent{}
		return nil
	})
}

// Stats returns the most played songs from the play log.
func (l *Library) Stats(ctx context.Context, limit int) ([]repositories.PlayCount, error) {
	if l.plays == nil {
		return nil, nil
	}
	return l.plays.Top(ctx, limit)
}

// SetNotify stores the notification opt-in flag.
func (l *Library) SetNotify(ctx context.Context, enabled bool) error {
	l.mu.Lock()
	if err := l.store.SetNotifyEnabled(ctx, enabled); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to save notification setting: %w", err)
	}
	l.notify = enabled
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.publish(Event{Kind: SettingsChanged, Snapshot: snap})
	return nil
}

// NotifyEnabled reports the notification opt-in flag.
func (l *Library) NotifyEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notify
}

// Notify runs send against the notifier when the user has opted in.
// Delivery failures are logged, never returned.
func (l *Library) Notify(ctx context.Context, send func(context.Context, notifications.Service) error) {
	if l.notifier == nil || !l.NotifyEnabled() {
		return
	}
	if err := send(ctx, l.notifier); err != nil {
		l.logger.Warn("notification failed", "error", err)
	}
}

// Export returns a copy of every playlist in display order.
func (l *Library) Export() []models.Playlist {
	return l.Snapshot().Collection.Playlists
}

// Import replaces the whole collection with playlists from a backup. The first playlist becomes active.
func (l *Library) Import(ctx context.Context, playlists []models.Playlist) error {
	incoming := make([]models.Playlist, len(playlists))
	for i, p := range playlists {
		incoming[i] = p.Clone()
	}

	err := l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		return c.Replace(incoming)
	})
	if err != nil {
		return err
	}

	l.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
		return n.NotifyImported(ctx, len(incoming))
	})
	return nil
}

// LoadShared appends a shared playlist as "<name> (Shared)", makes it active, and returns the name it got.
func (l *Library) LoadShared(ctx context.Context, p models.Playlist) (string, error) {
	var name string
	err := l.mutate(ctx, PlaylistsChanged, func(c *models.Collection, _ *models.Recent) error {
		name = c.AddShared(p)
		return nil
	})
	return name, err
}
