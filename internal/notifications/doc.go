// Package notifications delivers user-facing notices ("Playing 🎶", "Added to Playlist", ...).
//
// When an ntfy topic URL is configured, notices are POSTed to it. Otherwise they are
// written to the logger, so front ends never need to check whether delivery is set up.
// Opt-in is enforced by the caller (see library.Library.Notify), not here.
package notifications
