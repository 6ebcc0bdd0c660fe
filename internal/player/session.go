package player

import (
	"sync"

	"github.com/desertthunder/allplay/internal/models"
)

// Action names a media-session action, matching the platform action names.
type Action string

const (
	ActionPlay          Action = "play"
	ActionPause         Action = "pause"
	ActionPreviousTrack Action = "previoustrack"
	ActionNextTrack     Action = "nexttrack"
)

// Artwork is one media-session artwork entry.
type Artwork struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Metadata is what the platform shows for the current track.
type Metadata struct {
	Title   string    `json:"title"`
	Artist  string    `json:"artist"`
	Album   string    `json:"album"`
	Artwork []Artwork `json:"artwork"`
}

// NewMetadata builds the metadata published for a newly loaded video.
func NewMetadata(title, videoID string) Metadata {
	return Metadata{
		Title:  title,
		Artist: "AllPlay",
		Album:  "Playlist",
		Artwork: []Artwork{
			{Src: models.ThumbnailURL(videoID, "mqdefault"), Sizes: "320x180", Type: "image/jpeg"},
		},
	}
}

// MediaSession is the platform surface for lock-screen and media-key controls.
type MediaSession interface {
	SetMetadata(m Metadata)
	SetPlaybackState(s State)
	SetActionHandler(a Action, handler func())
}

// Session is an in-process [MediaSession]. Front ends read its metadata and
// route media keys or remote controls through [Session.Invoke].
type Session struct {
	mu       sync.Mutex
	metadata Metadata
	state    State
	handlers map[Action]func()
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{handlers: make(map[Action]func())}
}

func (s *Session) SetMetadata(m Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = m
}

func (s *Session) SetPlaybackState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Session) SetActionHandler(a Action, handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[a] = handler
}

// Metadata returns the current metadata.
func (s *Session) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// PlaybackState returns the last published playback state.
func (s *Session) PlaybackState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Invoke runs the handler registered for a. It reports false when none is registered.
func (s *Session) Invoke(a Action) bool {
	s.mu.Lock()
	h, ok := s.handlers[a]
	s.mu.Unlock()

	if !ok || h == nil {
		return false
	}
	h()
	return true
}
