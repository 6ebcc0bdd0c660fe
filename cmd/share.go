package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/allplay/internal/formatter"
	"github.com/desertthunder/allplay/internal/notifications"
	"github.com/desertthunder/allplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Share prints a link carrying the active playlist, optionally copying or opening it.
func (r *Runner) Share(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	active := lib.Active()
	link, err := formatter.ShareLink(r.config.Share.BaseURL, active)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", link)

	if cmd.Bool("copy") {
		if err := r.copy(link); err != nil {
			r.logger.Warn("failed to copy link to clipboard", "error", err)
			r.writePlain("Could not copy to the clipboard; copy the link above.\n")
		} else {
			r.writePlain("✓ Link copied to clipboard\n")
			lib.Notify(ctx, func(ctx context.Context, n notifications.Service) error {
				return n.NotifyLinkCopied(ctx, active.Name)
			})
		}
	}

	if cmd.Bool("open") {
		if err := r.openURL(link); err != nil {
			return err
		}
	}
	return nil
}

// LoadShared adds the playlist carried by a share link as a new active playlist.
func (r *Runner) LoadShared(ctx context.Context, cmd *cli.Command) error {
	link := cmd.Args().First()
	if link == "" {
		return fmt.Errorf("%w: share link required", shared.ErrMissingArgument)
	}

	p, found, err := formatter.ParseShareLink(link)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: link has no %q parameter", shared.ErrInvalidShare, formatter.ShareParam)
	}

	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}

	name, err := lib.LoadShared(ctx, p)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Loaded shared playlist: %s (%d songs)\n", name, len(p.Songs))
}
