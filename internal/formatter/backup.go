package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
)

// BackupFilename is the default name of a full backup file.
const BackupFilename = "allplay_playlists_backup.json"

// EncodeBackup renders playlists as a pretty-printed JSON array.
func EncodeBackup(playlists []models.Playlist) ([]byte, error) {
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return shared.MarshalJSON(playlists, true)
}

// WriteBackup writes a backup file, defaulting the path to [BackupFilename].
func WriteBackup(path string, playlists []models.Playlist) (string, error) {
	if path == "" {
		path = BackupFilename
	}

	data, err := EncodeBackup(playlists)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return path, nil
}

// DecodeBackup parses a backup. The document must be a non-empty JSON array of
// {name, songs} objects; anything else fails with [shared.ErrInvalidBackup].
func DecodeBackup(r io.Reader) ([]models.Playlist, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of playlists", shared.ErrInvalidBackup)
	}

	var playlists []models.Playlist
	if err := json.Unmarshal(trimmed, &playlists); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidBackup, err)
	}
	if len(playlists) == 0 {
		return nil, fmt.Errorf("%w: no playlists", shared.ErrInvalidBackup)
	}

	for i := range playlists {
		if err := validatePlaylist(&playlists[i]); err != nil {
			return nil, fmt.Errorf("%w: playlist %d: %v", shared.ErrInvalidBackup, i+1, err)
		}
	}
	return playlists, nil
}

// ReadBackup opens and decodes a backup file.
func ReadBackup(path string) ([]models.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()
	return DecodeBackup(f)
}

// validatePlaylist normalizes nil songs and rejects nameless playlists or songs without ids.
func validatePlaylist(p *models.Playlist) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	if p.Songs == nil {
		p.Songs = []models.Song{}
	}
	for j, s := range p.Songs {
		if strings.TrimSpace(s.VideoID) == "" {
			return fmt.Errorf("song %d has no videoId", j+1)
		}
	}
	return nil
}

// Slug turns a playlist name into a file-system friendly base name.
func Slug(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "playlist"
	}
	return slug
}
