package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/allplay/internal/player"
)

// View renders the tabs, the current view, the status line and the now-playing bar.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.view {
	case SearchView:
		b.WriteString(m.renderSearch())
	case PlaylistView:
		b.WriteString(m.renderList(m.songs, "No songs yet. Search and press a to add one."))
	case RecentView:
		b.WriteString(m.renderList(m.recent, "Nothing played yet."))
	case PlaylistsView:
		b.WriteString(m.renderList(m.playlists, ""))
	}

	b.WriteString("\n")
	switch m.mode {
	case prompting:
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
	case confirming:
		b.WriteString(styles.warn.Render(m.confirmQuestion()))
		b.WriteString("  ")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.contextKeys()))
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		if ViewState(i) == PlaylistView {
			name = fmt.Sprintf("%s (%d)", m.snapshot.Collection.Active, len(m.snapshot.Active().Songs))
		}
		if ViewState(i) == m.view {
			tabs[i] = styles.active.Render(name)
		} else {
			tabs[i] = styles.tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.searching {
		b.WriteString(styles.help.Render("Searching..."))
		b.WriteString("\n")
	}
	if len(m.results.Items()) > 0 {
		b.WriteString(m.results.View())
	}
	return b.String()
}

func (m *Model) renderList(l list.Model, empty string) string {
	if empty != "" && len(l.Items()) == 0 {
		return styles.help.Render(empty)
	}
	return l.View()
}

func (m *Model) confirmQuestion() string {
	if m.confirm == confirmDeletePlaylist {
		return fmt.Sprintf("Delete %q?", m.snapshot.Collection.Active)
	}
	return "Clear recently played?"
}

func (m *Model) renderStatusLine() string {
	if m.message == "" {
		return ""
	}
	if m.isErr {
		return styles.err.Render("✗ " + m.message)
	}
	return styles.ok.Render(m.message)
}

func (m *Model) renderNowPlaying() string {
	st := m.status
	if st.VideoID == "" {
		return styles.playing.Render(styles.help.Render("Nothing playing"))
	}

	line := fmt.Sprintf("%s  %s  %s %s / %s",
		st.Glyph(),
		st.Title,
		m.progress.ViewAs(st.Progress/100),
		formatSeconds(st.Position),
		formatSeconds(st.Duration),
	)
	if st.State == player.Ended {
		line += "  " + styles.help.Render("ended")
	}
	return styles.playing.Render(line)
}

func (m *Model) contextKeys() []key.Binding {
	switch m.mode {
	case typing:
		search := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
		return []key.Binding{search, m.keys.back}
	case prompting:
		save := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
		return []key.Binding{save, m.keys.back}
	case confirming:
		return nil
	}

	common := []key.Binding{m.keys.nextView, m.keys.toggle, m.keys.seekBack, m.keys.seekFwd}
	switch m.view {
	case SearchView:
		return append([]key.Binding{m.keys.search, m.keys.enter, m.keys.add}, append(common, m.keys.quit)...)
	case PlaylistView:
		return append([]key.Binding{m.keys.enter, m.keys.remove, m.keys.moveUp, m.keys.moveDown, m.keys.share}, append(common, m.keys.quit)...)
	case RecentView:
		return append([]key.Binding{m.keys.enter, m.keys.add, m.keys.clear}, append(common, m.keys.quit)...)
	default:
		switchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "switch"))
		return []key.Binding{switchKey, m.keys.create, m.keys.rename, m.keys.delete, m.keys.notify, m.keys.nextView, m.keys.quit}
	}
}

// formatSeconds renders m:ss, or --:-- when unknown.
func formatSeconds(s float64) string {
	if s <= 0 {
		return "--:--"
	}
	total := int(s)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
