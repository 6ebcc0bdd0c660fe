package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrSessionLocked = fmt.Errorf("another interactive session holds the database")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrStaleSearch        = fmt.Errorf("search superseded by a newer query")
	ErrPlayerUnavailable  = fmt.Errorf("player unavailable")

	// Playlist validation errors
	ErrEmptyName         = fmt.Errorf("enter playlist name")
	ErrDuplicatePlaylist = fmt.Errorf("playlist already exists")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrLastPlaylist      = fmt.Errorf("cannot delete the only playlist")
	ErrDuplicateSong     = fmt.Errorf("already in playlist")
	ErrEmptyVideoID      = fmt.Errorf("missing video id")
	ErrIndexOutOfRange   = fmt.Errorf("song index out of range")

	// Input validation errors
	ErrEmptyQuery      = fmt.Errorf("enter something to search")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Data errors
	ErrInvalidBackup = fmt.Errorf("invalid backup file")
	ErrInvalidShare  = fmt.Errorf("invalid shared playlist data")
	ErrCorruptState  = fmt.Errorf("stored state is corrupt")
)
