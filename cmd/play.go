package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/desertthunder/allplay/internal/player"
	"github.com/urfave/cli/v3"
)

// Play plays one video through the player and prints progress until it ends or is interrupted.
// The play is recorded in recently played like any other.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDArg(cmd.Args().First())
	if err != nil {
		return err
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	bridge, err := r.startBridge(ctx, lib, nil)
	if err != nil {
		return err
	}
	defer bridge.Close()

	title := r.songTitle(ctx, cmd.String("title"), videoID)
	if err := bridge.Play(ctx, videoID, title); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			r.writePlain("\n")
			return nil
		case st := <-bridge.Updates():
			switch st.State {
			case player.Ended:
				r.writePlain("\r%s %s  done\n", st.Glyph(), st.Title)
				return nil
			case player.Playing, player.Paused:
				r.writePlain("\r%s %s  %s / %s", st.Glyph(), st.Title, clock(st.Position), clock(st.Duration))
			}
		}
	}
}

func clock(seconds float64) string {
	if seconds <= 0 {
		return "--:--"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
