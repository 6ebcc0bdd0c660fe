package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/allplay/internal/shared"
)

const (
	// DefaultPlaylistName names the playlist created when nothing is stored.
	DefaultPlaylistName = "Default Playlist"
	// MaxRecent caps the recently-played list.
	MaxRecent = 10
	// SharedSuffix marks playlists imported from a share link.
	SharedSuffix = " (Shared)"
)

// Song references a playable video. Two songs are the same song when their VideoID matches.
type Song struct {
	Title   string `json:"title"`
	VideoID string `json:"videoId"`
}

// Thumbnail returns the small thumbnail URL for the song.
func (s Song) Thumbnail() string {
	return ThumbnailURL(s.VideoID, "default")
}

// WatchURL returns the canonical watch URL used by external players.
func (s Song) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + s.VideoID
}

// ThumbnailURL builds an img.youtube.com URL for a video id and size variant (default, mqdefault, hqdefault).
func ThumbnailURL(videoID, variant string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, variant)
}

// Playlist is a named, ordered sequence of songs.
type Playlist struct {
	Name  string `json:"name"`
	Songs []Song `json:"songs"`
}

// Contains reports whether a song with videoID is already in the playlist.
func (p *Playlist) Contains(videoID string) bool {
	return p.IndexOf(videoID) >= 0
}

// IndexOf returns the position of videoID in the playlist, or -1.
func (p *Playlist) IndexOf(videoID string) int {
	return slices.IndexFunc(p.Songs, func(s Song) bool { return s.VideoID == videoID })
}

// Clone returns a deep copy.
func (p Playlist) Clone() Playlist {
	return Playlist{Name: p.Name, Songs: slices.Clone(p.Songs)}
}

// Collection holds every playlist in display order and the name of the active one.
//
// Invariants: at least one playlist exists, names are unique, Active names an existing playlist.
type Collection struct {
	Playlists []Playlist
	Active    string
}

// NewCollection returns the default collection: one empty "Default Playlist", active.
func NewCollection() *Collection {
	return &Collection{
		Playlists: []Playlist{{Name: DefaultPlaylistName, Songs: []Song{}}},
		Active:    DefaultPlaylistName,
	}
}

// RestoreCollection builds a collection from stored parts.
//
// An empty playlist list yields the default collection. An unknown or empty active
// name falls back to the first playlist. Duplicate names are rejected as corrupt state.
func RestoreCollection(playlists []Playlist, active string) (*Collection, error) {
	if len(playlists) == 0 {
		return NewCollection(), nil
	}

	seen := make(map[string]struct{}, len(playlists))
	for i := range playlists {
		if playlists[i].Songs == nil {
			playlists[i].Songs = []Song{}
		}
		if _, ok := seen[playlists[i].Name]; ok {
			return nil, fmt.Errorf("%w: duplicate playlist name %q", shared.ErrCorruptState, playlists[i].Name)
		}
		seen[playlists[i].Name] = struct{}{}
	}

	c := &Collection{Playlists: playlists, Active: active}
	if c.index(active) < 0 {
		c.Active = playlists[0].Name
	}
	return c, nil
}

func (c *Collection) index(name string) int {
	return slices.IndexFunc(c.Playlists, func(p Playlist) bool { return p.Name == name })
}

// Has reports whether a playlist called name exists.
func (c *Collection) Has(name string) bool {
	return c.index(name) >= 0
}

// Names lists playlist names in display order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.Playlists))
	for i, p := range c.Playlists {
		names[i] = p.Name
	}
	return names
}

// ActivePlaylist returns a pointer to the active playlist.
func (c *Collection) ActivePlaylist() *Playlist {
	return &c.Playlists[c.index(c.Active)]
}

// Get returns a copy of the named playlist.
func (c *Collection) Get(name string) (Playlist, error) {
	i := c.index(name)
	if i < 0 {
		return Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	return c.Playlists[i].Clone(), nil
}

// Create appends an empty playlist and makes it active.
func (c *Collection) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrEmptyName
	}
	if c.Has(name) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicatePlaylist, name)
	}

	c.Playlists = append(c.Playlists, Playlist{Name: name, Songs: []Song{}})
	c.Active = name
	return nil
}

// Rename renames the active playlist. The new name must not be taken by any playlist.
func (c *Collection) Rename(newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return shared.ErrEmptyName
	}
	if c.Has(newName) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicatePlaylist, newName)
	}

	c.ActivePlaylist().Name = newName
	c.Active = newName
	return nil
}

// Delete removes the active playlist and activates the first remaining one.
func (c *Collection) Delete() error {
	if len(c.Playlists) <= 1 {
		return shared.ErrLastPlaylist
	}

	i := c.index(c.Active)
	c.Playlists = slices.Delete(c.Playlists, i, i+1)
	c.Active = c.Playlists[0].Name
	return nil
}

// Switch makes the named playlist active. Unknown names leave the collection unchanged.
func (c *Collection) Switch(name string) error {
	if !c.Has(name) {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	c.Active = name
	return nil
}

// AddSong appends a song to the active playlist unless its video id is already there.
func (c *Collection) AddSong(title, videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return shared.ErrEmptyVideoID
	}

	p := c.ActivePlaylist()
	if p.Contains(videoID) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateSong, title)
	}

	p.Songs = append(p.Songs, Song{Title: title, VideoID: videoID})
	return nil
}

// RemoveSong removes the song at index from the active playlist and returns it.
func (c *Collection) RemoveSong(index int) (Song, error) {
	p := c.ActivePlaylist()
	if index < 0 || index >= len(p.Songs) {
		return Song{}, fmt.Errorf("%w: %d", shared.ErrIndexOutOfRange, index)
	}

	removed := p.Songs[index]
	p.Songs = slices.Delete(p.Songs, index, index+1)
	return removed, nil
}

// MoveSong moves the song at from to position to within the active playlist.
func (c *Collection) MoveSong(from, to int) error {
	p := c.ActivePlaylist()
	n := len(p.Songs)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: %d", shared.ErrIndexOutOfRange, from)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: %d", shared.ErrIndexOutOfRange, to)
	}

	song := p.Songs[from]
	p.Songs = slices.Delete(p.Songs, from, from+1)
	p.Songs = slices.Insert(p.Songs, to, song)
	return nil
}

// AddShared appends a copy of a shared playlist under "<name> (Shared)" and makes it active.
//
// A numeric suffix keeps the name unique when the same playlist is loaded twice.
func (c *Collection) AddShared(p Playlist) string {
	base := strings.TrimSpace(p.Name) + SharedSuffix
	name := base
	for n := 2; c.Has(name); n++ {
		name = fmt.Sprintf("%s %d", base, n)
	}

	songs := slices.Clone(p.Songs)
	if songs == nil {
		songs = []Song{}
	}
	c.Playlists = append(c.Playlists, Playlist{Name: name, Songs: songs})
	c.Active = name
	return name
}

// Replace swaps in a whole new playlist list (backup import) and activates the first playlist.
func (c *Collection) Replace(playlists []Playlist) error {
	if len(playlists) == 0 {
		return fmt.Errorf("%w: no playlists", shared.ErrInvalidBackup)
	}
	restored, err := RestoreCollection(playlists, "")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidBackup, err)
	}

	c.Playlists = restored.Playlists
	c.Active = restored.Playlists[0].Name
	return nil
}

// Snapshot returns a deep copy safe to hand to renderers.
func (c *Collection) Snapshot() Collection {
	out := Collection{Active: c.Active, Playlists: make([]Playlist, len(c.Playlists))}
	for i, p := range c.Playlists {
		out.Playlists[i] = p.Clone()
	}
	return out
}

// Recent is the play history: most recent first, unique by video id, at most [MaxRecent] entries.
type Recent []Song

// Record moves or inserts the song at the front, dropping the oldest entries beyond [MaxRecent].
func (r Recent) Record(title, videoID string) Recent {
	out := make(Recent, 0, MaxRecent)
	out = append(out, Song{Title: title, VideoID: videoID})
	for _, s := range r {
		if s.VideoID == videoID {
			continue
		}
		if len(out) == MaxRecent {
			break
		}
		out = append(out, s)
	}
	return out
}
