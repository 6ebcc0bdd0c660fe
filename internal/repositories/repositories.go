package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/allplay/internal/shared"
)

// Slot keys.
const (
	KeyPlaylists = "userPlaylists"
	KeyActive    = "activePlaylistName"
	KeyRecent    = "recentlyPlayed"
	KeyNotify    = "notifyEnabled"
)

// SlotStore is a key/value store of JSON documents backed by the slots table.
type SlotStore struct {
	db *sql.DB
}

// NewSlotStore creates a new SlotStore with the given database connection
func NewSlotStore(db *sql.DB) *SlotStore {
	return &SlotStore{db: db}
}

// Get decodes the slot at key into v. Returns false when the slot has never been written.
func (s *SlotStore) Get(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("%w: slot %s: %v", shared.ErrCorruptState, key, err)
	}
	return true, nil
}

// Put encodes v as JSON and writes it to the slot at key.
func (s *SlotStore) Put(ctx context.Context, key string, v any) error {
	return s.PutAll(ctx, map[string]any{key: v})
}

// PutAll writes several slots in one transaction, so readers never observe half of a save.
func (s *SlotStore) PutAll(ctx context.Context, values map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now()
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode slot %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, query, key, string(data), now); err != nil {
			return fmt.Errorf("failed to write slot %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slots: %w", err)
	}
	return nil
}
