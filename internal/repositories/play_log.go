package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
)

// PlayCount aggregates plays of one video.
type PlayCount struct {
	Song       models.Song
	Plays      int
	LastPlayed time.Time
}

// PlayLogRepository appends every play to the play_events table.
//
// Unlike the recently-played slot it is unbounded, which makes play counts possible.
type PlayLogRepository struct {
	db *sql.DB
}

// NewPlayLogRepository creates a new PlayLogRepository with the given database connection
func NewPlayLogRepository(db *sql.DB) *PlayLogRepository {
	return &PlayLogRepository{db: db}
}

// Append records one play of song at the given time.
func (r *PlayLogRepository) Append(ctx context.Context, song models.Song, at time.Time) error {
	query := `INSERT INTO play_events (id, video_id, title, played_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, shared.GenerateID(), song.VideoID, song.Title, at.UTC()); err != nil {
		return fmt.Errorf("failed to insert play event: %w", err)
	}
	return nil
}

// Top returns the most played videos, most plays first, ties broken by most recent play.
func (r *PlayLogRepository) Top(ctx context.Context, limit int) ([]PlayCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT video_id,
		       (SELECT title FROM play_events p2 WHERE p2.video_id = p.video_id ORDER BY played_at DESC LIMIT 1) AS title,
		       COUNT(*) AS plays,
		       MAX(played_at) AS last_played
		FROM play_events p
		GROUP BY video_id
		ORDER BY plays DESC, last_played DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query play events: %w", err)
	}
	defer rows.Close()

	var counts []PlayCount
	for rows.Next() {
		var (
			pc       PlayCount
			lastSeen string
		)
		if err := rows.Scan(&pc.Song.VideoID, &pc.Song.Title, &pc.Plays, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan play count: %w", err)
		}
		pc.LastPlayed = parseSQLiteTime(lastSeen)
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// parseSQLiteTime parses the text form go-sqlite3 returns for aggregated timestamps.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
