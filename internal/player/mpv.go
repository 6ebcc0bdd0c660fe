package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
)

var commandContext = exec.CommandContext

const (
	mpvDialTimeout = 5 * time.Second
	mpvEventBuffer = 16
)

var errMPVClosed = errors.New("mpv connection closed")

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvMessage struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Reason    string          `json:"reason"`
}

// MPV controls an mpv process through its JSON IPC socket.
type MPV struct {
	conn   net.Conn
	logger *log.Logger

	cmd        *exec.Cmd
	procCancel context.CancelFunc
	socketPath string

	writeMu sync.Mutex
	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan mpvMessage

	// read loop state
	fileLoaded bool
	paused     bool

	events    chan State
	closed    chan struct{}
	readDone  chan struct{}
	closeOnce sync.Once
}

// StartMPV launches mpv with video disabled and connects to its IPC socket.
func StartMPV(ctx context.Context, cfg shared.PlayerConfig, logger *log.Logger) (*MPV, error) {
	binary := cfg.MPVPath
	if binary == "" {
		binary = "mpv"
	}
	socket := cfg.SocketPath
	if socket == "" {
		socket = filepath.Join(os.TempDir(), fmt.Sprintf("allplay-mpv-%d.sock", os.Getpid()))
	}
	_ = os.Remove(socket)

	procCtx, procCancel := context.WithCancel(context.Background())
	args := []string{"--idle=yes", "--no-video", "--no-terminal", "--input-ipc-server=" + socket}
	cmd := commandContext(procCtx, binary, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		procCancel()
		return nil, fmt.Errorf("%w: start mpv: %v", shared.ErrPlayerUnavailable, err)
	}

	conn, err := dialSocket(ctx, socket)
	if err != nil {
		procCancel()
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: %v", shared.ErrPlayerUnavailable, err)
	}

	m, err := AttachMPV(ctx, conn, logger)
	if err != nil {
		procCancel()
		_ = cmd.Wait()
		return nil, err
	}
	m.cmd = cmd
	m.procCancel = procCancel
	m.socketPath = socket
	return m, nil
}

// dialSocket waits for mpv to create its socket.
func dialSocket(ctx context.Context, socket string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, mpvDialTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dial mpv socket %s: %w", socket, err)
		case <-ticker.C:
		}
	}
}

// AttachMPV takes over an established IPC connection and subscribes to pause changes.
func AttachMPV(ctx context.Context, conn net.Conn, logger *log.Logger) (*MPV, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &MPV{
		conn:     conn,
		logger:   shared.WithLogger(logger, "component", "mpv"),
		pending:  make(map[int64]chan mpvMessage),
		events:   make(chan State, mpvEventBuffer),
		closed:   make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go m.readLoop()

	if _, err := m.command(ctx, "observe_property", 1, "pause"); err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: observe pause: %v", shared.ErrPlayerUnavailable, err)
	}
	return m, nil
}

func (m *MPV) Load(ctx context.Context, videoID string) error {
	if _, err := m.command(ctx, "loadfile", models.Song{VideoID: videoID}.WatchURL(), "replace"); err != nil {
		return err
	}
	_, err := m.command(ctx, "set_property", "pause", false)
	return err
}

func (m *MPV) Play(ctx context.Context) error {
	_, err := m.command(ctx, "set_property", "pause", false)
	return err
}

func (m *MPV) Pause(ctx context.Context) error {
	_, err := m.command(ctx, "set_property", "pause", true)
	return err
}

func (m *MPV) Seek(ctx context.Context, seconds float64) error {
	_, err := m.command(ctx, "seek", seconds, "absolute")
	return err
}

func (m *MPV) Position(ctx context.Context) (float64, error) {
	return m.floatProperty(ctx, "time-pos")
}

func (m *MPV) Duration(ctx context.Context) (float64, error) {
	return m.floatProperty(ctx, "duration")
}

func (m *MPV) Events() <-chan State {
	return m.events
}

// floatProperty reads a numeric property. Unavailable properties (nothing loaded) read as 0.
func (m *MPV) floatProperty(ctx context.Context, name string) (float64, error) {
	data, err := m.command(ctx, "get_property", name)
	if errors.Is(err, errPropertyUnavailable) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

var errPropertyUnavailable = errors.New("property unavailable")

// command sends one IPC command and waits for its reply.
func (m *MPV) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	reply := make(chan mpvMessage, 1)
	m.pending[id] = reply
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}()

	line, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("encode mpv command: %w", err)
	}

	m.writeMu.Lock()
	_, err = m.conn.Write(append(line, '\n'))
	m.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write mpv command: %w", err)
	}

	select {
	case msg := <-reply:
		switch msg.Error {
		case "success":
			return msg.Data, nil
		case "property unavailable":
			return nil, errPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
	case <-m.readDone:
		return nil, errMPVClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readLoop routes replies to waiting commands and translates events into states.
func (m *MPV) readLoop() {
	defer close(m.readDone)
	defer close(m.events)

	scanner := bufio.NewScanner(m.conn)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			m.logger.Debug("skipping unparseable mpv line", "error", err)
			continue
		}

		if msg.Event != "" {
			m.handleEvent(msg)
			continue
		}

		m.mu.Lock()
		reply, ok := m.pending[msg.RequestID]
		m.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-m.closed:
		default:
			m.logger.Warn("mpv connection lost", "error", err)
		}
	}
}

func (m *MPV) handleEvent(msg mpvMessage) {
	switch msg.Event {
	case "file-loaded":
		m.fileLoaded = true
		if !m.paused {
			m.emit(Playing)
		}
	case "property-change":
		if msg.Name != "pause" {
			return
		}
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return
		}
		m.paused = paused
		if !m.fileLoaded {
			return
		}
		if paused {
			m.emit(Paused)
		} else {
			m.emit(Playing)
		}
	case "end-file":
		if msg.Reason == "eof" {
			m.fileLoaded = false
			m.emit(Ended)
		}
	}
}

func (m *MPV) emit(s State) {
	select {
	case m.events <- s:
	default:
		m.logger.Warn("dropping player event", "state", s)
	}
}

// Close disconnects from mpv and stops the process if this MPV started it.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
		_ = m.conn.Close()
		<-m.readDone

		if m.cmd != nil {
			m.procCancel()
			_ = m.cmd.Wait()
		}
		if m.socketPath != "" {
			_ = os.Remove(m.socketPath)
		}
	})
	return nil
}
