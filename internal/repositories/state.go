package repositories

import (
	"context"
	"database/sql"

	"github.com/desertthunder/allplay/internal/models"
)

// State is everything the library persists after a mutation.
type State struct {
	Playlists []models.Playlist
	Active    string
	Recent    models.Recent
}

// StateRepository loads and saves the whole library state through a [SlotStore].
type StateRepository struct {
	slots *SlotStore
}

// NewStateRepository creates a new StateRepository with the given database connection
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{slots: NewSlotStore(db)}
}

// Load reads the stored state. found is false on first run, when no playlists have ever been saved.
func (r *StateRepository) Load(ctx context.Context) (state State, found bool, err error) {
	found, err = r.slots.Get(ctx, KeyPlaylists, &state.Playlists)
	if err != nil {
		return State{}, found, err
	}
	if _, err = r.slots.Get(ctx, KeyActive, &state.Active); err != nil {
		return State{}, found, err
	}
	if _, err = r.slots.Get(ctx, KeyRecent, &state.Recent); err != nil {
		return State{}, found, err
	}
	return state, found, nil
}

// Save writes the whole state.
func (r *StateRepository) Save(ctx context.Context, state State) error {
	recent := state.Recent
	if recent == nil {
		recent = models.Recent{}
	}
	return r.slots.PutAll(ctx, map[string]any{
		KeyPlaylists: state.Playlists,
		KeyActive:    state.Active,
		KeyRecent:    recent,
	})
}

// NotifyEnabled reports the notification opt-in flag, false when never set.
func (r *StateRepository) NotifyEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	if _, err := r.slots.Get(ctx, KeyNotify, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// SetNotifyEnabled stores the notification opt-in flag.
func (r *StateRepository) SetNotifyEnabled(ctx context.Context, enabled bool) error {
	return r.slots.Put(ctx, KeyNotify, enabled)
}
