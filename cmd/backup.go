package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/allplay/internal/formatter"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/desertthunder/allplay/internal/tasks"
	"github.com/urfave/cli/v3"
)

const csvExportFilename = "allplay_playlists.csv"

// Export writes every playlist as a JSON backup or CSV file, or the active playlist as Markdown or text.
// With --split, each playlist gets its own file and a manifest.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	switch format {
	case "json", "csv", "markdown", "txt":
	default:
		return fmt.Errorf("%w: unknown format %q (json, csv, markdown, txt)", shared.ErrInvalidArgument, format)
	}

	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("split") {
		return r.bulkExport(ctx, cmd, lib.Export(), format)
	}

	output := cmd.String("output")
	var written string
	switch format {
	case "json":
		written, err = formatter.WriteBackup(output, lib.Export())
	case "csv":
		written, err = writeCSVFile(output, lib.Export())
	case "markdown":
		var res *formatter.MarkdownExportResult
		active := lib.Active()
		if res, err = formatter.WriteMarkdownExport(active, output, coverImage(active)); err == nil {
			written = res.Directory
		}
	case "txt":
		written, err = formatter.WriteTextExport(lib.Active(), output)
	}
	if err != nil {
		return err
	}

	lib.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
		return n.NotifyExported(ctx, written)
	})
	return r.writePlain("✓ Exported to %s\n", written)
}

func (r *Runner) bulkExport(ctx context.Context, cmd *cli.Command, playlists []models.Playlist, format string) error {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	engine := tasks.NewPlaylistEngine(nil, nil)
	result, err := engine.BulkExport(ctx, progressCh, playlists, tasks.BulkExportOpts{
		Format:        format,
		OutputDir:     cmd.String("dir"),
		NumWorkers:    cmd.Int("workers"),
		GetCoverImage: coverImage,
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  - %s: %s\n", res.PlaylistName, res.ErrorMessage)
		}
	}
	return nil
}

// coverImage uses the first song's thumbnail as the playlist cover.
func coverImage(p models.Playlist) string {
	if len(p.Songs) == 0 {
		return ""
	}
	return p.Songs[0].Thumbnail()
}

func writeCSVFile(path string, playlists []models.Playlist) (string, error) {
	if path == "" {
		path = csvExportFilename
	}

	data, err := formatter.ExportToCSV(playlists)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}

// Import replaces every playlist with the contents of a backup file.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: backup file required", shared.ErrMissingArgument)
	}

	playlists, err := formatter.ReadBackup(path)
	if err != nil {
		return err
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") && !lib.FirstRun() {
		return fmt.Errorf("%w: importing replaces all %d playlists, pass --yes to continue",
			shared.ErrMissingArgument, len(lib.Export()))
	}

	if err := lib.Import(ctx, playlists); err != nil {
		return err
	}
	return r.writePlain("✓ Imported %d playlists, now using %q\n", len(playlists), lib.Active().Name)
}
