package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/allplay/internal/formatter"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/server"
	"github.com/desertthunder/allplay/internal/shared"
)

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, found, err := formatter.ParseShareQuery(r.URL.Query())
	switch {
	case err != nil:
		a.redirect(w, r, "", err)
		return
	case found:
		name, err := a.library.LoadShared(r.Context(), p)
		if err != nil {
			a.redirect(w, r, "", err)
			return
		}
		a.redirect(w, r, fmt.Sprintf("Loaded shared playlist %q", name), nil)
		return
	}

	a.render(w, r, a.pageData(r))
}

func (a *App) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if err := a.library.Create(r.Context(), name); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, fmt.Sprintf("Created %q", strings.TrimSpace(name)), nil)
}

func (a *App) handleRename(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if err := a.library.Rename(r.Context(), name); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, fmt.Sprintf("Renamed to %q", strings.TrimSpace(name)), nil)
}

func (a *App) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := a.library.Active().Name
	if err := a.library.Delete(r.Context()); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, fmt.Sprintf("Deleted %q", name), nil)
}

func (a *App) handleSwitch(w http.ResponseWriter, r *http.Request) {
	if err := a.library.Switch(r.Context(), r.FormValue("name")); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, "", nil)
}

func (a *App) handleAddSong(w http.ResponseWriter, r *http.Request) {
	title, videoID := r.FormValue("title"), r.FormValue("videoId")
	if err := a.library.AddSong(r.Context(), title, videoID); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, fmt.Sprintf("Added %q to %s", title, a.library.Active().Name), nil)
}

func (a *App) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		a.redirect(w, r, "", fmt.Errorf("%w: index %q", shared.ErrIndexOutOfRange, r.FormValue("index")))
		return
	}
	song, err := a.library.RemoveSong(r.Context(), index)
	if err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, fmt.Sprintf("Removed %q", song.Title), nil)
}

func (a *App) handleClearRecent(w http.ResponseWriter, r *http.Request) {
	if err := a.library.ClearRecent(r.Context()); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, "Recently played cleared", nil)
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	d := a.pageData(r)
	d.Query = r.URL.Query().Get("q")

	if a.searcher == nil {
		a.redirect(w, r, "", fmt.Errorf("%w: search not configured", shared.ErrServiceUnavailable))
		return
	}

	results, err := a.searcher.Search(r.Context(), d.Query)
	if a.metrics != nil && !errors.Is(err, shared.ErrEmptyQuery) {
		a.metrics.ObserveSearch(err)
	}
	switch {
	case errors.Is(err, shared.ErrStaleSearch):
		d.Flash = "A newer search replaced this one. Search again to see its results."
	case err != nil:
		server.LoggerFrom(r.Context(), a.logger).Warn("search failed", "query", d.Query, "error", err)
		d.Flash, d.FlashError = userMessage(err), true
	case len(results) == 0:
		d.Flash = "No results"
	default:
		d.Results = results
	}
	a.render(w, r, d)
}

func (a *App) handlePlay(w http.ResponseWriter, r *http.Request) {
	videoID, title := strings.TrimSpace(r.FormValue("videoId")), r.FormValue("title")
	if err := a.play(r.Context(), videoID, title); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, "", nil)
}

// play hands the video to the player, or records it for the embedded browser player.
func (a *App) play(ctx context.Context, videoID, title string) error {
	if a.player != nil {
		isNew := a.player.Status().VideoID != videoID
		if err := a.player.Play(ctx, videoID, title); err != nil {
			return err
		}
		if isNew && a.metrics != nil {
			a.metrics.PlaysTotal.Inc()
		}
		return nil
	}

	if videoID == "" {
		return shared.ErrEmptyVideoID
	}
	if title == "" {
		title = videoID
	}

	a.mu.Lock()
	if a.embed.VideoID == videoID {
		a.mu.Unlock()
		a.toggleEmbed()
		return nil
	}
	a.embed = player.Status{State: player.Playing, VideoID: videoID, Title: title}
	a.mu.Unlock()

	if a.session != nil {
		a.session.SetMetadata(player.NewMetadata(title, videoID))
		a.session.SetPlaybackState(player.Playing)
	}
	if a.metrics != nil {
		a.metrics.PlaysTotal.Inc()
	}

	a.library.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
		return n.NotifyPlaying(ctx, title)
	})
	return a.library.Record(ctx, title, videoID)
}

// toggleEmbed pauses or resumes the embedded player. Pausing drops the iframe from the page.
func (a *App) toggleEmbed() {
	a.mu.Lock()
	if a.embed.VideoID == "" {
		a.mu.Unlock()
		return
	}
	if a.embed.State == player.Playing {
		a.embed.State = player.Paused
	} else {
		a.embed.State = player.Playing
	}
	st := a.embed.State
	a.mu.Unlock()

	if a.session != nil {
		a.session.SetPlaybackState(st)
	}
}

func (a *App) handleToggle(w http.ResponseWriter, r *http.Request) {
	if a.player == nil {
		a.toggleEmbed()
		a.redirect(w, r, "", nil)
		return
	}
	if err := a.player.Toggle(r.Context()); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, "", nil)
}

func (a *App) handleSeek(w http.ResponseWriter, r *http.Request) {
	fraction, err := strconv.ParseFloat(r.FormValue("fraction"), 64)
	if err != nil {
		http.Error(w, "invalid fraction", http.StatusBadRequest)
		return
	}
	if a.player == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := a.player.SeekFraction(r.Context(), fraction); err != nil {
		server.LoggerFrom(r.Context(), a.logger).Warn("seek failed", "error", err)
		http.Error(w, userMessage(err), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleShare(w http.ResponseWriter, r *http.Request) {
	base := a.shareBase
	if base == "" {
		base = "http://" + r.Host + "/"
	}

	link, err := formatter.ShareLink(base, a.library.Active())
	if err != nil {
		a.redirect(w, r, "", err)
		return
	}

	d := a.pageData(r)
	d.ShareLink = link
	d.Flash = "Share link ready"
	a.render(w, r, d)
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := formatter.EncodeBackup(a.library.Export())
	if err != nil {
		a.redirect(w, r, "", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", formatter.BackupFilename))
	w.Write(data)

	a.library.Notify(r.Context(), func(ctx context.Context, n notifications.Service) error {
		return n.NotifyExported(ctx, formatter.BackupFilename)
	})
}

func (a *App) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		a.redirect(w, r, "", fmt.Errorf("%w: %v", shared.ErrInvalidBackup, err))
		return
	}
	defer file.Close()

	playlists, err := formatter.DecodeBackup(file)
	if err != nil {
		a.redirect(w, r, "", err)
		return
	}
	if err := a.library.Import(r.Context(), playlists); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	a.redirect(w, r, fmt.Sprintf("Imported %d playlists", len(playlists)), nil)
}

func (a *App) handleNotify(w http.ResponseWriter, r *http.Request) {
	enabled, err := parseToggle(r.FormValue("enabled"))
	if err != nil {
		a.redirect(w, r, "", err)
		return
	}
	if err := a.library.SetNotify(r.Context(), enabled); err != nil {
		a.redirect(w, r, "", err)
		return
	}
	if enabled {
		a.redirect(w, r, "Notifications on", nil)
		return
	}
	a.redirect(w, r, "Notifications off", nil)
}

func parseToggle(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not on or off", shared.ErrInvalidInput, v)
	}
}

// stateResponse is the JSON shape of /api/state.
type stateResponse struct {
	Playlists     []models.Playlist `json:"playlists"`
	Active        string            `json:"active"`
	Recent        models.Recent     `json:"recent"`
	NotifyEnabled bool              `json:"notifyEnabled"`
	Player        player.Status     `json:"player"`
	Session       *player.Metadata  `json:"session,omitempty"`
}

func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	snap := a.library.Snapshot()
	resp := stateResponse{
		Playlists:     snap.Collection.Playlists,
		Active:        snap.Collection.Active,
		Recent:        snap.Recent,
		NotifyEnabled: snap.NotifyEnabled,
		Player:        a.status(),
	}
	if resp.Recent == nil {
		resp.Recent = models.Recent{}
	}
	if a.session != nil {
		if md := a.session.Metadata(); md.Title != "" {
			resp.Session = &md
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		server.LoggerFrom(r.Context(), a.logger).Error("failed to encode state", "error", err)
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
