package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	nextView key.Binding
	prevView key.Binding
	search   key.Binding
	enter    key.Binding
	back     key.Binding
	add      key.Binding
	remove   key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	create   key.Binding
	rename   key.Binding
	delete   key.Binding
	clear    key.Binding
	toggle   key.Binding
	seekBack key.Binding
	seekFwd  key.Binding
	share    key.Binding
	notify   key.Binding
	yes      key.Binding
	no       key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		nextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevView: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		moveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		create:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		delete:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		clear:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		seekBack: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek back")),
		seekFwd:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek forward")),
		share:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
		notify:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "notifications")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextView, k.toggle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextView, k.prevView, k.search, k.enter},
		{k.add, k.remove, k.moveUp, k.moveDown},
		{k.create, k.rename, k.delete, k.clear},
		{k.toggle, k.seekBack, k.seekFwd, k.share, k.notify, k.quit},
	}
}
