// Package player drives audio playback and tracks player state.
//
// # Player
//
// [Player] is the external media player capability: load a video by id, play,
// pause, seek, report position and duration, and emit lifecycle events.
// [MPV] implements it over mpv's JSON IPC socket, running mpv with video
// disabled. [Fake] is an in-memory implementation for tests.
//
// # Bridge
//
// [Bridge] sits between front ends and a Player. It owns the state machine
//
//	Idle → Playing ⇄ Paused → Ended
//
// driven solely by player lifecycle events, and a progress poller that runs
// only while Playing. Play on the loaded video toggles pause; play on any other
// video loads it, records it as recently played, sends a "Playing 🎶" notice and
// publishes media-session metadata.
//
// Status changes are delivered on [Bridge.Updates] with non-blocking sends.
package player
