package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/allplay/internal/formatter"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format        string                         // Export format: json, csv, markdown, txt
	OutputDir     string                         // Base output directory (default: allplay_export_{epoch})
	NumWorkers    int                            // Concurrent workers (default: 5)
	GetCoverImage func(p models.Playlist) string // Cover image URL for markdown exports, optional
}

// PlaylistExportJob is one playlist queued for export.
type PlaylistExportJob struct {
	Index    int
	Playlist models.Playlist
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistName string   `json:"playlist"`
	Files        []string `json:"files"`
	Success      bool     `json:"success"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	Format            string                 `json:"format"`
	OutputDirectory   string                 `json:"output_directory"`
	ExportedAt        time.Time              `json:"exported_at"`
	Results           []PlaylistExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// BulkExport writes each playlist to its own file(s) concurrently and records a manifest.
//
// Failures of individual playlists are collected in the result rather than aborting the run.
func (e *PlaylistEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	playlists []models.Playlist,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("allplay_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.Format == "" {
		opts.Format = "json"
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(playlists),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]PlaylistExportResult, 0, len(playlists)),
	}

	jobs := make(chan PlaylistExportJob, len(playlists))
	results := make(chan PlaylistExportResult, len(playlists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, p := range playlists {
			select {
			case <-ctx.Done():
				return
			default:
			}

			jobs <- PlaylistExportJob{Index: i, Playlist: p}
			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(playlists), p.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMessage = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(playlists), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(playlists), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist exports a single playlist to the requested format.
//
// Base names are prefixed with the playlist position so distinct names that slug alike never collide.
func (e *PlaylistEngine) exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistName: j.Playlist.Name,
		Files:        []string{},
	}
	base := fmt.Sprintf("%02d-%s", j.Index+1, formatter.Slug(j.Playlist.Name))

	switch opts.Format {
	case "csv":
		path, err := formatter.WriteCSVExport(j.Playlist, filepath.Join(opts.OutputDir, base))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	case "markdown":
		var imageURL string
		if opts.GetCoverImage != nil {
			imageURL = opts.GetCoverImage(j.Playlist)
		}

		mdRes, err := formatter.WriteMarkdownExport(j.Playlist, filepath.Join(opts.OutputDir, base), imageURL)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	case "txt":
		path, err := formatter.WriteTextExport(j.Playlist, filepath.Join(opts.OutputDir, base+".txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, base+".json")
		data, err := shared.MarshalJSON(j.Playlist, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
	}

	result.Success = true
	return result
}
