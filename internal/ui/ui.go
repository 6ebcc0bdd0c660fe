package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/allplay/internal/formatter"
	"github.com/desertthunder/allplay/internal/library"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/services"
	"github.com/desertthunder/allplay/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	PlaylistView
	RecentView
	PlaylistsView
)

var viewNames = []string{"Search", "Playlist", "Recent", "Playlists"}

func (v ViewState) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return ""
}

// mode decides where key presses go.
type mode int

const (
	browsing mode = iota
	typing
	prompting
	confirming
)

type promptKind int

const (
	promptCreate promptKind = iota
	promptRename
)

type confirmKind int

const (
	confirmClearRecent confirmKind = iota
	confirmDeletePlaylist
)

// seekStep is the fraction of the track skipped by one seek key press.
const seekStep = 0.05

// Player is the playback surface the TUI drives. [player.Bridge] implements it.
type Player interface {
	Play(ctx context.Context, videoID, title string) error
	Toggle(ctx context.Context) error
	SeekFraction(ctx context.Context, fraction float64) error
	Status() player.Status
	Updates() <-chan player.Status
}

// Options holds the TUI's dependencies.
type Options struct {
	Library   *library.Library
	Searcher  services.Searcher  // nil disables search
	Player    Player             // nil disables playback
	ShareBase string             // base URL for share links
	Copy      func(string) error // clipboard writer, [clipboard.WriteAll] when nil
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	mode      mode
	library   *library.Library
	searcher  services.Searcher
	player    Player
	shareBase string
	copy      func(string) error

	events      <-chan library.Event
	unsubscribe func()
	snapshot    library.Snapshot
	status      player.Status

	seq       services.Sequencer
	searching bool
	query     string

	input      textinput.Model
	prompt     textinput.Model
	promptKind promptKind
	confirm    confirmKind

	results   list.Model
	songs     list.Model
	recent    list.Model
	playlists list.Model
	progress  progress.Model
	help      help.Model
	keys      keyMap

	message string
	isErr   bool
	width   int
	height  int
}

// NewModel creates a new TUI model subscribed to the library. Call [Model.Close] when the program exits.
func NewModel(ctx context.Context, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Search YouTube"
	input.Prompt = "🔍 "
	input.CharLimit = 200

	prompt := textinput.New()
	prompt.CharLimit = 100

	m := &Model{
		ctx:       ctx,
		view:      SearchView,
		mode:      typing,
		library:   opts.Library,
		searcher:  opts.Searcher,
		player:    opts.Player,
		shareBase: opts.ShareBase,
		copy:      opts.Copy,
		input:     input,
		prompt:    prompt,
		results:   newList("Results"),
		songs:     newList(""),
		recent:    newList("Recently Played"),
		playlists: newList("Playlists"),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	if m.copy == nil {
		m.copy = clipboard.WriteAll
	}
	m.input.Focus()

	m.events, m.unsubscribe = opts.Library.Subscribe()
	m.snapshot = opts.Library.Snapshot()
	if m.player != nil {
		m.status = m.player.Status()
	}
	m.refresh()
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	return l
}

// Close releases the library subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts listening for library and player updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent(), m.waitForStatus())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case typing:
			return m.handleSearchInput(msg)
		case prompting:
			return m.handlePrompt(msg)
		case confirming:
			return m.handleConfirm(msg)
		default:
			return m.handleKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchDone:
		d := msg.data.(searchDone)
		if !m.seq.IsCurrent(d.token) {
			return m, nil
		}
		m.searching = false
		switch {
		case d.err != nil:
			m.setError(d.err)
		case len(d.results) == 0:
			m.setMessage(fmt.Sprintf("No results for %q", d.query))
			m.results.SetItems(nil)
		default:
			m.setMessage(fmt.Sprintf("%d results for %q", len(d.results), d.query))
			m.results.SetItems(resultItems(d.results))
			m.results.Select(0)
		}
		return m, nil

	case MsgLibraryChanged:
		m.snapshot = msg.data.(library.Event).Snapshot
		m.refresh()
		return m, m.waitForEvent()

	case MsgPlayerStatus:
		m.status = msg.data.(player.Status)
		m.refresh()
		return m, m.waitForStatus()

	case MsgActionDone:
		d := msg.data.(actionDone)
		switch {
		case d.err != nil:
			m.setError(d.err)
		case d.message != "":
			m.setMessage(d.message)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextView):
		m.view = (m.view + 1) % ViewState(len(viewNames))
		return m, nil
	case key.Matches(msg, m.keys.prevView):
		m.view = (m.view + ViewState(len(viewNames)) - 1) % ViewState(len(viewNames))
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.mode = typing
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.toggle):
		return m, m.togglePlayback()
	case key.Matches(msg, m.keys.seekBack):
		return m, m.seek(-seekStep)
	case key.Matches(msg, m.keys.seekFwd):
		return m, m.seek(seekStep)
	case key.Matches(msg, m.keys.share):
		return m, m.share()
	case key.Matches(msg, m.keys.notify):
		return m, m.toggleNotify()
	case key.Matches(msg, m.keys.create):
		return m, m.startPrompt(promptCreate)
	case key.Matches(msg, m.keys.rename):
		return m, m.startPrompt(promptRename)
	case key.Matches(msg, m.keys.delete):
		m.mode, m.confirm = confirming, confirmDeletePlaylist
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.mode, m.confirm = confirming, confirmClearRecent
		return m, nil
	}

	switch m.view {
	case SearchView:
		if r, ok := m.results.SelectedItem().(resultItem); ok {
			switch {
			case key.Matches(msg, m.keys.enter):
				return m, m.play(r.result.VideoID, r.result.Title)
			case key.Matches(msg, m.keys.add):
				return m, m.addSong(r.result.Title, r.result.VideoID)
			}
		}
	case PlaylistView:
		index := m.songs.Index()
		if s, ok := m.songs.SelectedItem().(songItem); ok {
			switch {
			case key.Matches(msg, m.keys.enter):
				return m, m.play(s.song.VideoID, s.song.Title)
			case key.Matches(msg, m.keys.remove):
				return m, m.removeSong(index)
			case key.Matches(msg, m.keys.moveUp):
				return m, m.moveSong(index, index-1)
			case key.Matches(msg, m.keys.moveDown):
				return m, m.moveSong(index, index+1)
			}
		}
	case RecentView:
		if s, ok := m.recent.SelectedItem().(songItem); ok {
			switch {
			case key.Matches(msg, m.keys.enter):
				return m, m.play(s.song.VideoID, s.song.Title)
			case key.Matches(msg, m.keys.add):
				return m, m.addSong(s.song.Title, s.song.VideoID)
			}
		}
	case PlaylistsView:
		if p, ok := m.playlists.SelectedItem().(playlistItem); ok && key.Matches(msg, m.keys.enter) {
			return m, m.switchPlaylist(p.playlist.Name)
		}
	}

	return m.updateList(msg)
}

func (m *Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyTab:
		m.input.Blur()
		m.mode = browsing
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		m.mode = browsing
		return m, m.search(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.prompt.Blur()
		m.mode = browsing
		return m, nil
	case tea.KeyEnter:
		m.prompt.Blur()
		m.mode = browsing
		name := m.prompt.Value()
		if m.promptKind == promptRename {
			return m, m.action(func(ctx context.Context) (string, error) {
				return fmt.Sprintf("Renamed to %q", strings.TrimSpace(name)), m.library.Rename(ctx, name)
			})
		}
		return m, m.action(func(ctx context.Context) (string, error) {
			return fmt.Sprintf("Created %q", strings.TrimSpace(name)), m.library.Create(ctx, name)
		})
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.mode = browsing
		if m.confirm == confirmDeletePlaylist {
			name := m.snapshot.Collection.Active
			return m, m.action(func(ctx context.Context) (string, error) {
				return fmt.Sprintf("Deleted %q", name), m.library.Delete(ctx)
			})
		}
		return m, m.action(func(ctx context.Context) (string, error) {
			return "Recently played cleared", m.library.ClearRecent(ctx)
		})
	case key.Matches(msg, m.keys.no):
		m.mode = browsing
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.results, cmd = m.results.Update(msg)
	case PlaylistView:
		m.songs, cmd = m.songs.Update(msg)
	case RecentView:
		m.recent, cmd = m.recent.Update(msg)
	case PlaylistsView:
		m.playlists, cmd = m.playlists.Update(msg)
	}
	return m, cmd
}

// refresh re-projects the snapshot and player status into the lists.
func (m *Model) refresh() {
	active := m.snapshot.Active()
	glyph := m.status.Glyph()

	m.songs.Title = active.Name
	m.songs.SetItems(songItems(active.Songs, m.status.VideoID, glyph))
	m.recent.SetItems(songItems(m.snapshot.Recent, m.status.VideoID, glyph))
	m.playlists.SetItems(playlistItems(m.snapshot.Collection.Playlists, m.snapshot.Collection.Active))
}

func (m *Model) resize() {
	h := max(m.height-10, 3)
	w := max(m.width-4, 20)
	for _, l := range []*list.Model{&m.results, &m.songs, &m.recent, &m.playlists} {
		l.SetSize(w, h)
	}
	m.results.SetHeight(max(h-2, 3))
	m.progress.Width = min(max(m.width-40, 10), 60)
	m.help.Width = m.width
}

func (m *Model) setError(err error) {
	m.message = err.Error()
	m.isErr = true
}

func (m *Model) setMessage(s string) {
	m.message = s
	m.isErr = false
}

func (m *Model) startPrompt(kind promptKind) tea.Cmd {
	m.mode = prompting
	m.promptKind = kind
	m.prompt.SetValue("")
	if kind == promptRename {
		m.prompt.Placeholder = "New name for " + m.snapshot.Collection.Active
		m.prompt.SetValue(m.snapshot.Collection.Active)
	} else {
		m.prompt.Placeholder = "Playlist name"
	}
	return m.prompt.Focus()
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg()
		}
		return libraryChangedMsg(ev)
	}
}

func (m *Model) waitForStatus() tea.Cmd {
	if m.player == nil {
		return nil
	}
	updates := m.player.Updates()
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return closedMsg()
		}
		return playerStatusMsg(st)
	}
}

// search issues a new search token; results for older tokens are dropped on arrival.
func (m *Model) search(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		m.setError(shared.ErrEmptyQuery)
		return nil
	}
	if m.searcher == nil {
		m.setError(fmt.Errorf("%w: search not configured", shared.ErrServiceUnavailable))
		return nil
	}

	token := m.seq.Begin()
	m.searching = true
	m.query = query
	m.setMessage(fmt.Sprintf("Searching %q...", query))

	ctx, searcher := m.ctx, m.searcher
	return func() tea.Msg {
		results, err := searcher.Search(ctx, query)
		return searchDoneMsg(token, query, results, err)
	}
}

// action runs fn off the update loop and reports its outcome in the status line.
func (m *Model) action(fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		msg, err := fn(ctx)
		if err != nil {
			return actionDoneMsg("", err)
		}
		return actionDoneMsg(msg, nil)
	}
}

func (m *Model) play(videoID, title string) tea.Cmd {
	if m.player == nil {
		return m.action(func(context.Context) (string, error) {
			return "", fmt.Errorf("%w: no player configured", shared.ErrPlayerUnavailable)
		})
	}
	return m.action(func(ctx context.Context) (string, error) {
		return "", m.player.Play(ctx, videoID, title)
	})
}

func (m *Model) togglePlayback() tea.Cmd {
	if m.player == nil {
		return nil
	}
	return m.action(func(ctx context.Context) (string, error) {
		return "", m.player.Toggle(ctx)
	})
}

func (m *Model) seek(delta float64) tea.Cmd {
	if m.player == nil || m.status.VideoID == "" {
		return nil
	}
	target := m.status.Progress/100 + delta
	return m.action(func(ctx context.Context) (string, error) {
		return "", m.player.SeekFraction(ctx, target)
	})
}

func (m *Model) addSong(title, videoID string) tea.Cmd {
	playlist := m.snapshot.Collection.Active
	return m.action(func(ctx context.Context) (string, error) {
		return fmt.Sprintf("Added %q to %s", title, playlist), m.library.AddSong(ctx, title, videoID)
	})
}

func (m *Model) removeSong(index int) tea.Cmd {
	return m.action(func(ctx context.Context) (string, error) {
		song, err := m.library.RemoveSong(ctx, index)
		return fmt.Sprintf("Removed %q", song.Title), err
	})
}

func (m *Model) moveSong(from, to int) tea.Cmd {
	if to < 0 || to >= len(m.snapshot.Active().Songs) {
		return nil
	}
	m.songs.Select(to)
	return m.action(func(ctx context.Context) (string, error) {
		return "", m.library.MoveSong(ctx, from, to)
	})
}

func (m *Model) switchPlaylist(name string) tea.Cmd {
	return m.action(func(ctx context.Context) (string, error) {
		return fmt.Sprintf("Switched to %s", name), m.library.Switch(ctx, name)
	})
}

func (m *Model) toggleNotify() tea.Cmd {
	enabled := !m.snapshot.NotifyEnabled
	return m.action(func(ctx context.Context) (string, error) {
		if err := m.library.SetNotify(ctx, enabled); err != nil {
			return "", err
		}
		if enabled {
			return "Notifications on", nil
		}
		return "Notifications off", nil
	})
}

// share copies a link to the active playlist. Clipboard failures fall back to showing the link.
func (m *Model) share() tea.Cmd {
	active := m.snapshot.Active()
	base, copyFn := m.shareBase, m.copy
	return m.action(func(ctx context.Context) (string, error) {
		link, err := formatter.ShareLink(base, active)
		if err != nil {
			return "", err
		}
		if err := copyFn(link); err != nil {
			return "Share link: " + link, nil
		}
		m.library.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
			return n.NotifyLinkCopied(ctx, active.Name)
		})
		return "Link copied!", nil
	})
}
