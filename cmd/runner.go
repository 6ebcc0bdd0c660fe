package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/library"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/repositories"
	"github.com/desertthunder/allplay/internal/services"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, library and search client are opened on first use so commands
// that never touch them (setup, help) work without a database or credentials.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client

	db       *sql.DB
	lock     *shared.SessionLock
	library  *library.Library
	notifier notifications.Service
	searcher services.Searcher
	resolver services.TitleResolver

	newPlayer func(context.Context) (player.Player, error)
	copy      func(string) error
	openURL   func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Library    *library.Library
	Notifier   notifications.Service
	Searcher   services.Searcher
	Resolver   services.TitleResolver
	Player     func(context.Context) (player.Player, error) // mpv when nil
	Copy       func(string) error
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		library:    opts.Library,
		notifier:   opts.Notifier,
		searcher:   opts.Searcher,
		resolver:   opts.Resolver,
		newPlayer:  opts.Player,
		copy:       opts.Copy,
		openURL:    opts.OpenURL,
	}
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playlistCommand, recentCommand, searchCommand, playCommand,
		shareCommand, loadCommand, exportCommand, importCommand, notifyCommand,
		tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// lockSession takes the session lock for the rest of the process.
//
// tui and serve write their in-memory state back whole, so a command that changes
// state while one of them runs would be overwritten. Such commands fail with
// [shared.ErrSessionLocked] instead.
func (r *Runner) lockSession() error {
	if r.lock != nil {
		return nil
	}
	lock, err := shared.AcquireSessionLock(r.config.Database.Path)
	if err != nil {
		return err
	}
	r.lock = lock
	return nil
}

// editLibrary is [Runner.openLibrary] for commands that change state.
func (r *Runner) editLibrary(ctx context.Context) (*library.Library, error) {
	if err := r.lockSession(); err != nil {
		return nil, err
	}
	return r.openLibrary(ctx)
}

// openLibrary opens the database and loads the library once per process.
func (r *Runner) openLibrary(ctx context.Context) (*library.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	lib, err := library.Open(ctx,
		repositories.NewStateRepository(db),
		repositories.NewPlayLogRepository(db),
		r.notifications(),
		shared.WithLogger(r.logger, "component", "library"),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	r.db = db
	r.library = lib
	return lib, nil
}

func (r *Runner) notifications() notifications.Service {
	if r.notifier == nil {
		r.notifier = notifications.NewService(r.config.Notifications, shared.WithLogger(r.logger, "component", "notify"))
	}
	return r.notifier
}

// searchService returns the configured search client, building the YouTube client on first use.
func (r *Runner) searchService(ctx context.Context) (services.Searcher, error) {
	if r.searcher != nil {
		return r.searcher, nil
	}

	yt, err := services.NewYouTubeSearch(ctx, r.config.Credentials.YouTube, r.config.Search, r.logger)
	if err != nil {
		return nil, err
	}
	r.searcher = yt
	return yt, nil
}

func (r *Runner) titleResolver() services.TitleResolver {
	if r.resolver == nil {
		r.resolver = services.NewOEmbedService("", r.httpClient)
	}
	return r.resolver
}

// startBridge starts the configured player and wires it to lib and session (which may be nil).
func (r *Runner) startBridge(ctx context.Context, lib *library.Library, session player.MediaSession) (*player.Bridge, error) {
	var (
		p   player.Player
		err error
	)
	if r.newPlayer != nil {
		p, err = r.newPlayer(ctx)
	} else {
		p, err = player.StartMPV(ctx, r.config.Player, shared.WithLogger(r.logger, "component", "mpv"))
	}
	if err != nil {
		return nil, err
	}
	return player.NewBridge(p, lib, session, r.config.Player.PollInterval(), r.logger), nil
}

// Close releases the database handle and the session lock if they were taken.
func (r *Runner) Close() error {
	var err error
	if r.db != nil {
		err = r.db.Close()
		r.db = nil
	}
	if r.lock != nil {
		if lerr := r.lock.Release(); err == nil {
			err = lerr
		}
		r.lock = nil
	}
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
