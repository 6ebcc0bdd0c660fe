package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/services"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = songItem{}
	_ list.Item = resultItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
	active   bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string {
	if i.active {
		return "● " + i.playlist.Name
	}
	return i.playlist.Name
}
func (i playlistItem) Description() string {
	if len(i.playlist.Songs) == 1 {
		return "1 song"
	}
	return fmt.Sprintf("%d songs", len(i.playlist.Songs))
}

// songItem wraps [models.Song] to implement [list.Item]. glyph marks the loaded song.
type songItem struct {
	song  models.Song
	glyph string
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string {
	if i.glyph != "" {
		return i.glyph + " " + i.song.Title
	}
	return i.song.Title
}
func (i songItem) Description() string { return i.song.VideoID }

// resultItem wraps [services.SearchResult] to implement [list.Item].
type resultItem struct {
	result services.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Title }
func (i resultItem) Title() string       { return i.result.Title }
func (i resultItem) Description() string { return i.result.VideoID }

func playlistItems(playlists []models.Playlist, active string) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, active: p.Name == active}
	}
	return items
}

func songItems(songs []models.Song, loaded, glyph string) []list.Item {
	items := make([]list.Item, len(songs))
	for i, s := range songs {
		item := songItem{song: s}
		if s.VideoID == loaded {
			item.glyph = glyph
		}
		items[i] = item
	}
	return items
}

func resultItems(results []services.SearchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
