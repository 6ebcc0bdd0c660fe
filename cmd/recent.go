package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/urfave/cli/v3"
)

type playStat struct {
	Title      string    `json:"title"`
	VideoID    string    `json:"videoId"`
	Plays      int       `json:"plays"`
	LastPlayed time.Time `json:"lastPlayed"`
}

// RecentList prints the recently-played list, newest first.
func (r *Runner) RecentList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	recent := lib.Snapshot().Recent
	if cmd.Bool("json") {
		if recent == nil {
			recent = models.Recent{}
		}
		return r.writeJSON(recent, cmd.Bool("pretty"))
	}

	if len(recent) == 0 {
		return r.writePlain("Nothing played yet.\n")
	}
	return r.writeTable([]string{"#", "Title", "Video ID"}, songRows(recent), []columnAlignment{alignRight})
}

// RecentClear empties the recently-played list.
func (r *Runner) RecentClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to clear recently played", shared.ErrMissingArgument)
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}
	if err := lib.ClearRecent(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Cleared recently played\n")
}

// RecentStats prints the most played songs from the play log.
func (r *Runner) RecentStats(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	counts, err := lib.Stats(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to read play log: %w", err)
	}

	stats := make([]playStat, len(counts))
	for i, c := range counts {
		stats[i] = playStat{Title: c.Song.Title, VideoID: c.Song.VideoID, Plays: c.Plays, LastPlayed: c.LastPlayed}
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	if len(stats) == 0 {
		return r.writePlain("Nothing played yet.\n")
	}

	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{s.Title, strconv.Itoa(s.Plays), s.LastPlayed.Local().Format("2006-01-02 15:04")}
	}
	return r.writeTable([]string{"Title", "Plays", "Last Played"}, rows, []columnAlignment{alignLeft, alignRight})
}
