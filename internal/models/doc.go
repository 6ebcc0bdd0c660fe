// Package models defines the playlist domain for allplay.
//
// The package is a pure state layer: no I/O, no logging, no persistence.
//
//   - [Song] : a title plus the opaque YouTube video id used for playback
//   - [Playlist] : a named, ordered list of songs
//   - [Collection] : all playlists plus the active playlist name
//   - [Recent] : the bounded, de-duplicated, most-recent-first play history
//
// Mutating methods validate first and change nothing on error, so callers can
// persist the whole value after every successful call.
package models
