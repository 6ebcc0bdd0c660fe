package player

import (
	"context"
	"errors"
	"sync"
)

var errFakeClosed = errors.New("fake player closed")

// Fake is an in-memory [Player] for tests and dry runs.
//
// Load and Play emit Playing, Pause emits Paused, and [Fake.Finish] emits Ended.
// Like mpv, Play does nothing after Finish until the next Load.
// Position and duration are set by the test.
type Fake struct {
	mu       sync.Mutex
	loaded   string
	playing  bool
	ended    bool
	position float64
	duration float64
	closed   bool
	events   chan State

	Loads   []string
	Seeks   []float64
	LoadErr error
}

// NewFake creates a fake player with an idle state.
func NewFake() *Fake {
	return &Fake{events: make(chan State, 32)}
}

func (f *Fake) emit(s State) {
	select {
	case f.events <- s:
	default:
	}
}

func (f *Fake) Load(ctx context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errFakeClosed
	}
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.loaded = videoID
	f.Loads = append(f.Loads, videoID)
	f.position = 0
	f.playing = true
	f.ended = false
	f.emit(Playing)
	return nil
}

func (f *Fake) Play(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errFakeClosed
	}
	if f.loaded == "" || f.ended {
		return nil
	}
	f.playing = true
	f.emit(Playing)
	return nil
}

func (f *Fake) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errFakeClosed
	}
	f.playing = false
	f.emit(Paused)
	return nil
}

func (f *Fake) Seek(ctx context.Context, seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = seconds
	f.Seeks = append(f.Seeks, seconds)
	return nil
}

func (f *Fake) Position(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *Fake) Duration(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, nil
}

func (f *Fake) Events() <-chan State {
	return f.events
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// SetTimes sets the reported position and duration in seconds.
func (f *Fake) SetTimes(position, duration float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = position
	f.duration = duration
}

// Finish simulates the end of the loaded media.
func (f *Fake) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.ended = true
	f.position = f.duration
	f.emit(Ended)
}

// Loaded returns the currently loaded video id.
func (f *Fake) Loaded() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}
