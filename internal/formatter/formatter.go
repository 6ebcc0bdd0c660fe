// package formatter serializes playlists: share links, backup files, and CSV/Markdown/text exports
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/allplay/internal/models"
)

// ExportToCSV converts playlists to CSV with columns: Playlist, Index, Title, VideoID, URL
func ExportToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, playlists); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV streams the CSV form of playlists to w.
func WriteCSV(w io.Writer, playlists []models.Playlist) error {
	writer := csv.NewWriter(w)

	headers := []string{"Playlist", "Index", "Title", "VideoID", "URL"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		for i, song := range p.Songs {
			record := []string{
				p.Name,
				strconv.Itoa(i + 1),
				song.Title,
				song.VideoID,
				song.WatchURL(),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// ExportToMarkdown converts a playlist to Markdown with optional cover image
func ExportToMarkdown(p models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", p.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(p.Songs)))

	buf.WriteString("## Songs\n\n")
	for i, song := range p.Songs {
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, song.Title, song.WatchURL()))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text
func ExportToText(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", p.Name))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(p.Songs)))

	for i, song := range p.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, song.Title, song.VideoID))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteCSVExport writes one playlist to {base}.csv.
func WriteCSVExport(p models.Playlist, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(p.Name)
	}

	csvData, err := ExportToCSV([]models.Playlist{p})
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	path := baseFilepath + ".csv"
	if err := os.WriteFile(path, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist slug.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(p models.Playlist, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(p.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(p, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {slug}.txt as the filename.
func WriteTextExport(p models.Playlist, path string) (string, error) {
	if path == "" {
		path = Slug(p.Name) + ".txt"
	}

	textData, err := ExportToText(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}
