// Package web serves a single-user HTML front end over the [library.Library].
//
// # Architecture
//
// One server-rendered page (templates/index.html) shows the playlist switcher, search,
// the active playlist, recently played and the now-playing bar. Every mutation is a
// plain form POST that redirects back to the page (POST/redirect/GET), carrying a
// flash message in the query string:
//
//	GET  /                   page; consumes ?share=
//	POST /playlists          create
//	POST /playlists/rename   rename active
//	POST /playlists/delete   delete active
//	POST /playlists/switch   switch active
//	POST /songs              add to active
//	POST /songs/remove       remove by index
//	POST /recent/clear       clear recently played
//	GET  /search?q=          page with results
//	POST /play               play or toggle a video
//	POST /player/toggle      play/pause button
//	POST /player/seek        progress bar click (fraction)
//	GET  /share              page with the share link
//	GET  /export             backup download
//	POST /import             backup upload (multipart "file")
//	POST /settings/notify    notification opt-in
//	GET  /api/state          JSON snapshot
//	GET  /healthz            liveness
//	GET  /metrics            Prometheus
//
// # Playback
//
// With a [Player] (mpv through [player.Bridge]) audio plays on the host and the page
// polls /api/state once a second for progress. Without one the page embeds the
// YouTube player and the app only records plays. Playing the embedded video again
// pauses it by dropping the iframe; the next play or toggle starts it over.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/library"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/server"
	"github.com/desertthunder/allplay/internal/services"
	"github.com/desertthunder/allplay/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const maxUploadBytes = 4 << 20

// Player is the playback surface the page drives. [player.Bridge] implements it.
type Player interface {
	Play(ctx context.Context, videoID, title string) error
	Toggle(ctx context.Context) error
	SeekFraction(ctx context.Context, fraction float64) error
	Status() player.Status
}

// Options configures an [App].
type Options struct {
	Library   *library.Library
	Searcher  services.Searcher // nil disables search
	Player    Player            // nil switches to embedded browser playback
	Session   *player.Session   // optional
	Metrics   *server.Metrics   // optional
	ShareBase string            // share link base; the request's own URL when empty
	Logger    *log.Logger
}

// App holds the web front end's dependencies.
type App struct {
	library   *library.Library
	searcher  services.Searcher
	player    Player
	session   *player.Session
	metrics   *server.Metrics
	shareBase string
	logger    *log.Logger

	mu    sync.Mutex
	embed player.Status
}

// New creates an App. Searches go through a stale-response guard.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &App{
		library:   opts.Library,
		player:    opts.Player,
		session:   opts.Session,
		metrics:   opts.Metrics,
		shareBase: opts.ShareBase,
		logger:    shared.WithLogger(logger, "component", "web"),
	}
	if opts.Searcher != nil {
		a.searcher = services.NewLatestSearch(opts.Searcher)
	}
	return a
}

// Handler returns the routed handler with request id, logging, recovery and metrics middleware.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.RequestID(a.logger), server.Logging(a.logger, "/api/state", "/healthz", "/metrics"), server.Recover(a.logger))
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
	}
	a.Routes(r)
	return r
}

// Routes registers every route on r.
func (a *App) Routes(r *server.BasicRouter) {
	r.HandleFunc(http.MethodGet, "/{$}", a.handleIndex)
	r.HandleFunc(http.MethodPost, "/playlists", a.handleCreate)
	r.HandleFunc(http.MethodPost, "/playlists/rename", a.handleRename)
	r.HandleFunc(http.MethodPost, "/playlists/delete", a.handleDelete)
	r.HandleFunc(http.MethodPost, "/playlists/switch", a.handleSwitch)
	r.HandleFunc(http.MethodPost, "/songs", a.handleAddSong)
	r.HandleFunc(http.MethodPost, "/songs/remove", a.handleRemoveSong)
	r.HandleFunc(http.MethodPost, "/recent/clear", a.handleClearRecent)
	r.HandleFunc(http.MethodGet, "/search", a.handleSearch)
	r.HandleFunc(http.MethodPost, "/play", a.handlePlay)
	r.HandleFunc(http.MethodPost, "/player/toggle", a.handleToggle)
	r.HandleFunc(http.MethodPost, "/player/seek", a.handleSeek)
	r.HandleFunc(http.MethodGet, "/share", a.handleShare)
	r.HandleFunc(http.MethodGet, "/export", a.handleExport)
	r.HandleFunc(http.MethodPost, "/import", a.handleImport)
	r.HandleFunc(http.MethodPost, "/settings/notify", a.handleNotify)
	r.HandleFunc(http.MethodGet, "/api/state", a.handleState)
	r.HandleFunc(http.MethodGet, "/healthz", a.handleHealth)
	if a.metrics != nil {
		r.Handle(http.MethodGet, "/metrics", a.metrics.Handler())
	}
}

// pageData is everything the page template renders.
type pageData struct {
	Playlists     []models.Playlist
	Active        models.Playlist
	Recent        models.Recent
	NotifyEnabled bool
	Status        player.Status
	Embed         bool
	EmbedPlaying  bool
	Query         string
	Results       []services.SearchResult
	ShareLink     string
	Flash         string
	FlashError    bool
}

func (a *App) pageData(r *http.Request) pageData {
	snap := a.library.Snapshot()
	q := r.URL.Query()
	status := a.status()
	d := pageData{
		Playlists:     snap.Collection.Playlists,
		Active:        snap.Active(),
		Recent:        snap.Recent,
		NotifyEnabled: snap.NotifyEnabled,
		Status:        status,
		Embed:         a.player == nil,
		EmbedPlaying:  a.player == nil && status.VideoID != "" && status.State == player.Playing,
		Flash:         q.Get("msg"),
	}
	if msg := q.Get("err"); msg != "" {
		d.Flash, d.FlashError = msg, true
	}
	return d
}

func (a *App) render(w http.ResponseWriter, r *http.Request, d pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		server.LoggerFrom(r.Context(), a.logger).Error("failed to render page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// redirect sends the browser back to the page with a flash message.
func (a *App) redirect(w http.ResponseWriter, r *http.Request, msg string, err error) {
	q := url.Values{}
	switch {
	case err != nil:
		server.LoggerFrom(r.Context(), a.logger).Warn("request failed", "path", r.URL.Path, "error", err)
		q.Set("err", userMessage(err))
	case msg != "":
		q.Set("msg", msg)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// userMessage maps known failures to the text shown in the flash area.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidShare):
		return "Could not read the shared playlist"
	case errors.Is(err, shared.ErrInvalidBackup):
		return "Invalid file format"
	case errors.Is(err, shared.ErrAPIRequest), errors.Is(err, shared.ErrServiceUnavailable):
		return "Search is unavailable right now"
	case errors.Is(err, shared.ErrPlayerUnavailable):
		return "Player is unavailable"
	}

	for _, sentinel := range []error{
		shared.ErrEmptyName, shared.ErrDuplicatePlaylist, shared.ErrPlaylistNotFound,
		shared.ErrLastPlaylist, shared.ErrDuplicateSong, shared.ErrEmptyVideoID,
		shared.ErrIndexOutOfRange, shared.ErrEmptyQuery, shared.ErrInvalidInput,
	} {
		if errors.Is(err, sentinel) {
			msg := sentinel.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return "Something went wrong"
}

func (a *App) status() player.Status {
	if a.player != nil {
		return a.player.Status()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.embed
}
