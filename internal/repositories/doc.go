// Package repositories implements SQLite persistence for allplay.
//
// State lives in named slots of the slots table, one JSON document per slot,
// mirroring browser local storage:
//   - [KeyPlaylists] : the whole playlist collection
//   - [KeyActive] : the active playlist name
//   - [KeyRecent] : the recently-played list
//   - [KeyNotify] : the notification opt-in flag
//
// [SlotStore] reads and writes raw slots. [StateRepository] layers the
// "load whole state, persist whole state" discipline on top of it, and
// [PlayLogRepository] keeps an append-only history of plays.
package repositories
