package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/desertthunder/allplay/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
//
// Search and playback are optional: without credentials or mpv the UI still manages playlists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.lockSession(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.ApplyLogLevel(fileLogger, r.config.Log.Level)
	r.SetLogger(fileLogger)

	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	opts := ui.Options{Library: lib, ShareBase: r.config.Share.BaseURL, Copy: r.copy}

	if searcher, err := r.searchService(ctx); err == nil {
		opts.Searcher = searcher
	} else if !errors.Is(err, shared.ErrMissingCredentials) {
		return err
	} else {
		r.logger.Warn("search disabled", "error", err)
	}

	if bridge, err := r.startBridge(ctx, lib, player.NewSession()); err == nil {
		defer bridge.Close()
		opts.Player = bridge
	} else {
		r.logger.Warn("playback disabled", "error", err)
	}

	model := ui.NewModel(ctx, opts)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
