package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// NotifyOn enables notifications.
func (r *Runner) NotifyOn(ctx context.Context, cmd *cli.Command) error {
	return r.setNotify(ctx, true)
}

// NotifyOff disables notifications.
func (r *Runner) NotifyOff(ctx context.Context, cmd *cli.Command) error {
	return r.setNotify(ctx, false)
}

func (r *Runner) setNotify(ctx context.Context, enabled bool) error {
	lib, err := r.editLibrary(ctx)
	if err != nil {
		return err
	}
	if err := lib.SetNotify(ctx, enabled); err != nil {
		return err
	}
	return r.writePlain("✓ Notifications %s\n", onOff(enabled))
}

// NotifyStatus prints the notification setting and where notices go.
func (r *Runner) NotifyStatus(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.openLibrary(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Notifications: %s\n", onOff(lib.NotifyEnabled()))
	if topic := r.config.Notifications.NtfyTopic; topic != "" {
		r.writePlain("Delivery: %s\n", topic)
	} else {
		r.writePlain("Delivery: log only (set notifications.ntfy_topic to push)\n")
	}
	return nil
}

// NotifyTest sends a test notification regardless of the opt-in flag.
func (r *Runner) NotifyTest(ctx context.Context, cmd *cli.Command) error {
	if err := r.notifications().TestNotification(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Test notification sent\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
