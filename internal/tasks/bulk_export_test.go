package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/allplay/internal/models"
	tu "github.com/desertthunder/allplay/internal/testing"
)

func bulkPlaylists() []models.Playlist {
	return []models.Playlist{
		{Name: "Road Trip", Songs: []models.Song{{Title: "A", VideoID: "a"}, {Title: "B", VideoID: "b"}}},
		{Name: "Focus!", Songs: []models.Song{{Title: "C", VideoID: "c"}}},
		{Name: "Focus?", Songs: []models.Song{}},
	}
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		wantFiles []string
	}{
		{"json", "json", []string{"01-road-trip.json", "02-focus.json", "03-focus.json"}},
		{"csv", "csv", []string{"01-road-trip.csv", "02-focus.csv", "03-focus.csv"}},
		{"txt", "txt", []string{"01-road-trip.txt", "02-focus.txt", "03-focus.txt"}},
		{"markdown", "markdown", []string{"01-road-trip/README.md", "02-focus/README.md", "03-focus/README.md"}},
		{"default format", "", []string{"01-road-trip.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			progress := make(chan ProgressUpdate, 64)

			result, err := NewPlaylistEngine(nil, nil).BulkExport(context.Background(), progress, bulkPlaylists(), BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
			})
			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}

			if result.SuccessfulExports != 3 || result.FailedExports != 0 {
				t.Errorf("unexpected counts %+v", result)
			}
			for _, f := range tt.wantFiles {
				tu.AssertFileExists(t, filepath.Join(dir, f))
			}
			if len(progress) == 0 {
				t.Error("expected progress updates")
			}

			var manifest BulkExportResult
			if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
				t.Fatalf("manifest is not valid JSON: %v", err)
			}
			if manifest.TotalPlaylists != 3 || len(manifest.Results) != 3 {
				t.Errorf("unexpected manifest %+v", manifest)
			}
		})
	}

	t.Run("failures are collected", func(t *testing.T) {
		dir := t.TempDir()
		// A file where the markdown directory should go makes that playlist fail.
		tu.MustWriteFile(t, filepath.Join(dir, "01-road-trip"), "blocker")

		result, err := NewPlaylistEngine(nil, nil).BulkExport(context.Background(), nil, bulkPlaylists(), BulkExportOpts{
			Format:    "markdown",
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if result.FailedExports != 1 || result.SuccessfulExports != 2 {
			t.Errorf("unexpected counts %+v", result)
		}

		manifest := tu.MustReadFile(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(manifest, "markdown export failed") {
			t.Errorf("manifest should record the failure, got %s", manifest)
		}
	})

	t.Run("default output directory", func(t *testing.T) {
		t.Chdir(t.TempDir())

		result, err := NewPlaylistEngine(nil, nil).BulkExport(context.Background(), nil, bulkPlaylists()[:1], BulkExportOpts{})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if !strings.HasPrefix(result.OutputDirectory, "allplay_export_") {
			t.Errorf("unexpected output directory %s", result.OutputDirectory)
		}
		if _, err := os.Stat(result.ManifestPath); err != nil {
			t.Errorf("manifest missing: %v", err)
		}
	})
}
