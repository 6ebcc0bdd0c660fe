// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has four tabbed views over one [library.Library]:
//  1. [SearchView] : search YouTube, play or add results
//  2. [PlaylistView] : the active playlist, with remove and reorder
//  3. [RecentView] : recently played, with clear
//  4. [PlaylistsView] : create, rename, delete and switch playlists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Library change events and player status updates arrive through channels and are re-projected into the lists,
// so every view stays in sync with mutations made from anywhere.
//
// Searches carry a [services.Sequencer] token. A response whose token is no longer current is dropped,
// so a slow earlier query never overwrites the results of a later one.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
