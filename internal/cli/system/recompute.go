package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitloop/internal/cli"
)

// RecomputeCmd rebuilds the derived entries and scores of every habit and
// books all reminders again.
type RecomputeCmd struct{}

func (c *RecomputeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	bg := context.Background()
	if err := ctx.Runner.RecomputeAll(bg, ctx.Today()); err != nil {
		return fmt.Errorf("failed to recompute habits: %w", err)
	}
	if err := ctx.Reminders.ScheduleAll(bg); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}
	if err := ctx.Reminders.ScheduleRefresh(); err != nil {
		return err
	}

	fmt.Printf("Recomputed %d habit(s).\n", ctx.Habits.Len())
	return nil
}
