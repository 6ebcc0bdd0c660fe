package player

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/shared"
)

const updateBuffer = 8

// Recorder is the part of the library the bridge writes plays into.
type Recorder interface {
	Record(ctx context.Context, title, videoID string) error
	Notify(ctx context.Context, send func(context.Context, notifications.Service) error)
}

// Status is a point-in-time view of playback.
type Status struct {
	State    State   `json:"state"`
	VideoID  string  `json:"videoId"`
	Title    string  `json:"title"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Progress float64 `json:"progress"`
}

// Glyph is the play/pause button face for the status.
func (s Status) Glyph() string {
	return s.State.Glyph()
}

// Bridge owns the player state machine and the progress poller.
type Bridge struct {
	mu       sync.Mutex
	player   Player
	recorder Recorder
	session  MediaSession
	logger   *log.Logger
	interval time.Duration

	status     Status
	pollCancel context.CancelFunc
	pollDone   chan struct{}

	updates   chan Status
	closing   chan struct{}
	watchDone chan struct{}
	closeOnce sync.Once
}

// NewBridge wires p to the recorder and session and starts watching player events.
//
// session may be nil. interval is the progress poll period, one second when zero.
func NewBridge(p Player, recorder Recorder, session MediaSession, interval time.Duration, logger *log.Logger) *Bridge {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	b := &Bridge{
		player:    p,
		recorder:  recorder,
		session:   session,
		logger:    shared.WithLogger(logger, "component", "player"),
		interval:  interval,
		updates:   make(chan Status, updateBuffer),
		closing:   make(chan struct{}),
		watchDone: make(chan struct{}),
	}

	if session != nil {
		session.SetActionHandler(ActionPlay, func() { b.invoke(b.resume) })
		session.SetActionHandler(ActionPause, func() { b.invoke(p.Pause) })
		session.SetActionHandler(ActionPreviousTrack, func() {})
		session.SetActionHandler(ActionNextTrack, func() {})
	}

	go b.watch(p.Events())
	return b
}

func (b *Bridge) invoke(fn func(context.Context) error) {
	if err := fn(context.Background()); err != nil {
		b.logger.Warn("media session action failed", "error", err)
	}
}

// Updates delivers status changes. Slow readers miss intermediate updates.
func (b *Bridge) Updates() <-chan Status {
	return b.updates
}

// Status returns the current playback status.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Polling reports whether the progress poller is running.
func (b *Bridge) Polling() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pollCancel != nil
}

// Play pauses or resumes when videoID is already loaded, otherwise loads and starts it.
// A video that has ended is loaded again, since the player unloads it at the end.
func (b *Bridge) Play(ctx context.Context, videoID, title string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return shared.ErrEmptyVideoID
	}
	if title == "" {
		title = videoID
	}

	b.mu.Lock()
	current, state := b.status.VideoID, b.status.State
	b.mu.Unlock()

	if videoID == current && state != Ended {
		if state == Playing {
			return b.wrap(b.player.Pause(ctx))
		}
		return b.wrap(b.player.Play(ctx))
	}
	return b.load(ctx, videoID, title)
}

// load starts videoID from the beginning, records it and publishes session metadata.
func (b *Bridge) load(ctx context.Context, videoID, title string) error {
	if err := b.player.Load(ctx, videoID); err != nil {
		return b.wrap(err)
	}

	b.mu.Lock()
	b.status.VideoID = videoID
	b.status.Title = title
	b.status.Position, b.status.Duration, b.status.Progress = 0, 0, 0
	st := b.status
	b.mu.Unlock()
	b.send(st)

	b.logger.Info("now playing", "video_id", videoID, "title", title)

	if b.session != nil {
		b.session.SetMetadata(NewMetadata(title, videoID))
	}

	if b.recorder != nil {
		b.recorder.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
			return n.NotifyPlaying(ctx, title)
		})
		if err := b.recorder.Record(ctx, title, videoID); err != nil {
			return fmt.Errorf("failed to record play: %w", err)
		}
	}
	return nil
}

// Toggle pauses while playing and resumes otherwise. No-op when nothing is loaded.
func (b *Bridge) Toggle(ctx context.Context) error {
	st := b.Status()
	if st.VideoID == "" {
		return nil
	}
	if st.State == Playing {
		return b.wrap(b.player.Pause(ctx))
	}
	return b.resume(ctx)
}

// resume continues the loaded video, or replays it from the start once it has ended.
func (b *Bridge) resume(ctx context.Context) error {
	st := b.Status()
	if st.State == Ended && st.VideoID != "" {
		return b.load(ctx, st.VideoID, st.Title)
	}
	return b.wrap(b.player.Play(ctx))
}

// SeekFraction seeks to fraction × duration, fraction clamped to [0, 1].
// No-op while the duration is unknown.
func (b *Bridge) SeekFraction(ctx context.Context, fraction float64) error {
	if b.Status().VideoID == "" || math.IsNaN(fraction) {
		return nil
	}

	duration, err := b.player.Duration(ctx)
	if err != nil {
		return b.wrap(err)
	}
	if duration <= 0 {
		return nil
	}

	fraction = math.Max(0, math.Min(1, fraction))
	return b.wrap(b.player.Seek(ctx, fraction*duration))
}

func (b *Bridge) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", shared.ErrPlayerUnavailable, err)
}

// watch applies lifecycle events until the channel closes or the bridge is closed.
func (b *Bridge) watch(events <-chan State) {
	defer close(b.watchDone)
	for {
		select {
		case <-b.closing:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			b.apply(ev)
		}
	}
}

func (b *Bridge) apply(ev State) {
	b.mu.Lock()
	switch ev {
	case Playing:
		b.status.State = Playing
		b.startPollerLocked()
	case Paused:
		b.status.State = Paused
		b.stopPollerLocked()
	case Ended:
		b.status.State = Ended
		b.status.Progress = 0
		b.status.Position = 0
		b.stopPollerLocked()
	default:
		b.mu.Unlock()
		return
	}
	st := b.status
	b.mu.Unlock()

	if b.session != nil {
		b.session.SetPlaybackState(st.State)
	}
	b.logger.Debug("player state", "state", st.State, "video_id", st.VideoID)
	b.send(st)
}

// startPollerLocked replaces any running poller with a fresh one.
func (b *Bridge) startPollerLocked() {
	b.stopPollerLocked()

	select {
	case <-b.closing:
		return
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.pollCancel = cancel
	b.pollDone = done
	go b.poll(ctx, done)
}

// stopPollerLocked cancels the running poller. Idempotent.
func (b *Bridge) stopPollerLocked() {
	if b.pollCancel != nil {
		b.pollCancel()
		b.pollCancel = nil
		b.pollDone = nil
	}
}

func (b *Bridge) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

func (b *Bridge) tick(ctx context.Context) {
	position, err := b.player.Position(ctx)
	if err != nil {
		b.logger.Debug("position unavailable", "error", err)
		return
	}
	duration, err := b.player.Duration(ctx)
	if err != nil {
		b.logger.Debug("duration unavailable", "error", err)
		return
	}

	b.mu.Lock()
	if ctx.Err() != nil {
		b.mu.Unlock()
		return
	}
	b.status.Position = position
	b.status.Duration = duration
	b.status.Progress = Progress(position, duration)
	st := b.status
	b.mu.Unlock()

	b.send(st)
}

// send delivers a status update without blocking.
func (b *Bridge) send(st Status) {
	select {
	case b.updates <- st:
	default:
	}
}

// Close stops the poller and the event watcher, then closes the player.
// No poller goroutine is running once Close returns.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.closing)

		b.mu.Lock()
		done := b.pollDone
		b.stopPollerLocked()
		b.mu.Unlock()

		if done != nil {
			<-done
		}
		<-b.watchDone
		err = b.player.Close()
	})
	return err
}
