package player

import (
	"context"
	"fmt"
	"math"
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return ""
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by [State.MarshalText].
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Idle, Playing, Paused, Ended} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown player state %q", b)
}

// Glyph returns the play/pause button face: ⏸ while playing, ▶ otherwise.
func (s State) Glyph() string {
	if s == Playing {
		return "⏸"
	}
	return "▶"
}

// Player is an external media player addressed by opaque video ids.
type Player interface {
	// Load replaces the current media with videoID and starts playback.
	Load(ctx context.Context, videoID string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	// Seek jumps to an absolute position in seconds.
	Seek(ctx context.Context, seconds float64) error
	// Position is the playback position in seconds.
	Position(ctx context.Context) (float64, error)
	// Duration is the media length in seconds, 0 when unknown.
	Duration(ctx context.Context) (float64, error)
	// Events delivers lifecycle transitions (Playing, Paused, Ended).
	Events() <-chan State
	Close() error
}

// Progress returns position/duration as a percentage clamped to [0, 100].
// An unknown or non-positive duration yields 0.
func Progress(position, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) || math.IsNaN(position) {
		return 0
	}
	return math.Max(0, math.Min(100, position/duration*100))
}
