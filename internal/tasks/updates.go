package tasks

import (
	"fmt"

	"github.com/desertthunder/allplay/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SearchSongs Phase = iota
	AddSongs
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case SearchSongs:
		return "search_songs"
	case AddSongs:
		return "add_songs"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func searchStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchSongs,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching %d queries...", total),
	}
}

func searchDoneUpdate(step, total int, res QueryResult) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   SearchSongs,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Query, res.Error),
		}
	}
	return ProgressUpdate{
		Phase:   SearchSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s → %s", step, total, res.Query, res.Match.Title),
		Data:    res.Match,
	}
}

func addSongUpdate(step, total int, match *services.SearchResult, added bool) ProgressUpdate {
	status := "✓"
	if !added {
		status = "="
	}
	return ProgressUpdate{
		Phase:   AddSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, status, match.Title),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
