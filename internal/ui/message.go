package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/allplay/internal/library"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchDone MsgKind = iota
	MsgLibraryChanged
	MsgPlayerStatus
	MsgActionDone
	MsgClosed
)

type searchDone struct {
	token   uint64
	query   string
	results []services.SearchResult
	err     error
}

type actionDone struct {
	message string
	err     error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(token uint64, query string, results []services.SearchResult, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchDone{token, query, results, err}}
}

// libraryChangedMsg is the constructor for [MsgLibraryChanged]
func libraryChangedMsg(ev library.Event) Msg {
	return Msg{kind: MsgLibraryChanged, data: ev}
}

// playerStatusMsg is the constructor for [MsgPlayerStatus]
func playerStatusMsg(st player.Status) Msg {
	return Msg{kind: MsgPlayerStatus, data: st}
}

// actionDoneMsg is the constructor for [MsgActionDone]. An empty message with a nil error shows nothing.
func actionDoneMsg(message string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionDone{message, err}}
}

// closedMsg reports that a subscription channel closed.
func closedMsg() Msg {
	return Msg{kind: MsgClosed}
}
