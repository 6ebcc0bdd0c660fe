package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/allplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries YouTube and prints the hits, optionally adding one to the active playlist.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return shared.ErrEmptyQuery
	}

	searcher, err := r.searchService(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("searching", "query", query)
	results, err := searcher.Search(ctx, query)
	if err != nil {
		return err
	}

	if add := cmd.Int("add"); add != 0 {
		if add < 1 || add > len(results) {
			return fmt.Errorf("%w: --add must be between 1 and %d", shared.ErrInvalidArgument, len(results))
		}

		lib, err := r.editLibrary(ctx)
		if err != nil {
			return err
		}
		hit := results[add-1]
		if err := lib.AddSong(ctx, hit.Title, hit.VideoID); err != nil {
			return err
		}
		return r.writePlain("✓ Added %q to %q\n", hit.Title, lib.Active().Name)
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	rows := make([][]string, len(results))
	for i, res := range results {
		rows[i] = []string{strconv.Itoa(i + 1), res.Title, res.VideoID}
	}
	return r.writeTable([]string{"#", "Title", "Video ID"}, rows, []columnAlignment{alignRight})
}
