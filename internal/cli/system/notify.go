package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitloop/internal/alarms"
	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/notifier"
)

// newNotifier is swapped in tests.
var newNotifier = func() alarms.Notifier { return notifier.New() }

type stdoutNotifier struct{}

func (stdoutNotifier) Notify(text string) error {
	fmt.Println("[DryRun] " + text)
	return nil
}

func newDispatcher(ctx *cli.Context, dryRun bool) *alarms.Dispatcher {
	opts := alarms.Options{Clock: ctx.Clock, DryRun: dryRun}
	if ctx.Config != nil {
		opts.RatePerMinute = ctx.Config.Dispatch.RatePerMinute
		opts.Burst = ctx.Config.Dispatch.Burst
	}
	var n alarms.Notifier = stdoutNotifier{}
	if !dryRun {
		n = newNotifier()
	}
	return alarms.NewDispatcher(ctx.Habits, ctx.Prefs, ctx.Reminders, ctx.Runner, n, opts)
}

// NotifyCmd delivers due reminders once. It is meant to be run from cron
// or a systemd timer when the daemon is not running.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout and leave alarms pending."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	if !ctx.Prefs.NotificationsEnabled() && c.DryRun {
		fmt.Println("Notifications are disabled in settings.")
	}

	res, err := newDispatcher(ctx, c.DryRun).RunOnce(context.Background())
	if err != nil {
		return fmt.Errorf("failed to dispatch reminders: %w", err)
	}

	if res.Refreshed {
		fmt.Println("Recomputed habits for the new day.")
	}
	if c.DryRun || res.Sent+res.Failed > 0 {
		fmt.Printf("Sent %d, skipped %d, failed %d, removed %d\n", res.Sent, res.Skipped, res.Failed, res.Removed)
	}
	return nil
}
