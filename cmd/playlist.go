package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/desertthunder/allplay/internal/tasks"
	"github.com/urfave/cli/v3"
)

type playlistSummary struct {
	Name   string `json:"name"`
	Songs  int    `json:"songs"`
	Active bool   `json:"active"`
}

// PlaylistList prints every playlist with its song count.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	c := lib.Snapshot().Collection
	summaries := make([]playlistSummary, len(c.Playlists))
	for i, p := range c.Playlists {
		summaries[i] = playlistSummary{Name: p.Name, Songs: len(p.Songs), Active: p.Name == c.Active}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		marker := ""
		if s.Active {
			marker = "●"
		}
		rows[i] = []string{marker, s.Name, strconv.Itoa(s.Songs)}
	}
	return r.writeTable([]string{"", "Playlist", "Songs"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

// PlaylistShow prints the songs of the named playlist, or the active one.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	c := lib.Snapshot().Collection
	name := strings.TrimSpace(cmd.Args().First())
	if name == "" {
		name = c.Active
	}

	p, err := c.Get(name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, cmd.Bool("pretty"))
	}

	r.writePlain("%s (%d songs)\n", p.Name, len(p.Songs))
	if len(p.Songs) == 0 {
		r.writePlain("No songs yet. Add one with: allplay playlist add <video id>\n")
		return nil
	}
	return r.writeTable([]string{"#", "Title", "Video ID"}, songRows(p.Songs), []columnAlignment{alignRight})
}

func songRows(songs []models.Song) [][]string {
	rows := make([][]string, len(songs))
	for i, s := range songs {
		rows[i] = []string{strconv.Itoa(i + 1), s.Title, s.VideoID}
	}
	return rows
}

// PlaylistCreate creates a playlist and makes it active.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	name := strings.Join(cmd.Args().Slice(), " ")
	if err := lib.Create(ctx, name); err != nil {
		return err
	}
	return r.writePlain("✓ Created %q\n", strings.TrimSpace(name))
}

// PlaylistRename renames the active playlist.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	old := lib.Active().Name
	name := strings.Join(cmd.Args().Slice(), " ")
	if err := lib.Rename(ctx, name); err != nil {
		return err
	}
	return r.writePlain("✓ Renamed %q to %q\n", old, strings.TrimSpace(name))
}

// PlaylistDelete deletes the active playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	name := lib.Active().Name
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete %q", shared.ErrMissingArgument, name)
	}
	if err := lib.Delete(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %q, now using %q\n", name, lib.Active().Name)
}

// PlaylistUse switches the active playlist.
func (r *Runner) PlaylistUse(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	name := strings.Join(cmd.Args().Slice(), " ")
	if err := lib.Switch(ctx, name); err != nil {
		return err
	}
	return r.writePlain("✓ Now using %q\n", name)
}

// PlaylistAdd adds a video to the active playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDArg(cmd.Args().First())
	if err != nil {
		return err
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	title := r.songTitle(ctx, cmd.String("title"), videoID)
	if err := lib.AddSong(ctx, title, videoID); err != nil {
		return err
	}
	return r.writePlain("✓ Added %q to %q\n", title, lib.Active().Name)
}

// songTitle returns title, else the oEmbed title for videoID, else videoID itself.
func (r *Runner) songTitle(ctx context.Context, title, videoID string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}

	info, err := r.titleResolver().Lookup(ctx, videoID)
	if err != nil || strings.TrimSpace(info.Title) == "" {
		r.logger.Debug("title lookup failed, using video id", "video_id", videoID, "error", err)
		return videoID
	}
	return info.Title
}

// PlaylistRemove removes the song at a 1-based position.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	pos, err := positionArg(cmd.Args().First())
	if err != nil {
		return err
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	song, err := lib.RemoveSong(ctx, pos-1)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %q\n", song.Title)
}

// PlaylistMove moves a song between 1-based positions.
func (r *Runner) PlaylistMove(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("%w: expected <from> <to>", shared.ErrMissingArgument)
	}
	from, err := positionArg(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	to, err := positionArg(cmd.Args().Get(1))
	if err != nil {
		return err
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	if err := lib.MoveSong(ctx, from-1, to-1); err != nil {
		return err
	}
	return r.writePlain("✓ Moved song %d to position %d\n", from, to)
}

// PlaylistFill searches each non-empty line of a file and adds the top hit to the active playlist.
func (r *Runner) PlaylistFill(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: file path required", shared.ErrMissingArgument)
	}

	queries, err := readQueries(path)
	if err != nil {
		return err
	}

	searcher, err := r.searchService(ctx)
	if err != nil {
		return err
	}
	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Filling %q from %s\n\n", lib.Active().Name, path)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SearchSongs:
				if update.Step == 0 {
					r.writePlain("🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.AddSongs:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	engine := tasks.NewPlaylistEngine(searcher, lib)
	result, err := engine.Fill(ctx, progressCh, queries, tasks.FillOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Fill Complete!")
	r.writePlain("Added: %d  Already present: %d  Failed: %d\n", result.Added, result.Skipped, result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nNo match for:\n")
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s (%v)\n", res.Query, res.Error)
			}
		}
	}
	return nil
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return queries, nil
}

func positionArg(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: position required", shared.ErrMissingArgument)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: position must be a number from 1", shared.ErrInvalidArgument)
	}
	return n, nil
}

// videoIDArg accepts a bare video id or a youtube.com / youtu.be URL.
func videoIDArg(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", shared.ErrEmptyVideoID
	}
	if !strings.Contains(s, "/") {
		return s, nil
	}

	raw := s
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a video id or URL", shared.ErrInvalidArgument, s)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	host = strings.TrimPrefix(host, "music.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")

	var id string
	switch {
	case host == "youtu.be":
		id = path
	case host == "youtube.com" && path == "watch":
		id = u.Query().Get("v")
	case host == "youtube.com" && (strings.HasPrefix(path, "shorts/") || strings.HasPrefix(path, "embed/")):
		id = path[strings.Index(path, "/")+1:]
	}

	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %q is not a YouTube video URL", shared.ErrInvalidArgument, s)
	}
	return id, nil
}
