package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/allplay/internal/player"
	"github.com/desertthunder/allplay/internal/server"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/desertthunder/allplay/internal/web"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Serve runs the web interface until interrupted.
//
// Playback goes through mpv when it starts; otherwise (or with --embedded) the page plays videos itself.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.lockSession(); err != nil {
		return err
	}

	shared.ApplyLogLevel(r.logger, r.config.Log.Level)

	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := server.NewMetrics()
	session := player.NewSession()
	opts := web.Options{
		Library:   lib,
		Session:   session,
		Metrics:   metrics,
		ShareBase: r.config.Share.BaseURL,
		Logger:    r.logger,
	}

	if searcher, err := r.searchService(ctx); err == nil {
		opts.Searcher = searcher
	} else {
		r.logger.Warn("search disabled", "error", err)
	}

	var bridge *player.Bridge
	if !cmd.Bool("embedded") {
		if bridge, err = r.startBridge(ctx, lib, session); err == nil {
			defer bridge.Close()
			opts.Player = bridge
		} else {
			r.logger.Warn("mpv unavailable, playing in the browser", "error", err)
		}
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	srv := server.New(addr, web.New(opts).Handler(), r.logger)
	if err := srv.Listen(); err != nil {
		return err
	}

	r.writePlain("Serving allplay at %s\n", srv.URL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if bridge != nil {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case st := <-bridge.Updates():
					r.logger.Debug("player status", "state", st.State, "video_id", st.VideoID, "progress", st.Progress)
				}
			}
		})
	}

	if cmd.Bool("open") {
		if err := r.openURL(srv.URL()); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return g.Wait()
}
