package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/storage"
)

type ExportCmd struct {
	Path string `arg:"" type:"path" help:"File to write the JSON snapshot to."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	snap, err := storage.ExportSnapshot(ctx.Store)
	if err != nil {
		return err
	}
	if err := storage.WriteSnapshot(c.Path, snap); err != nil {
		return err
	}

	fmt.Printf("Exported %d habit(s) to %s\n", len(snap.Habits), c.Path)
	return nil
}

type ImportCmd struct {
	Path string `arg:"" type:"existingfile" help:"JSON snapshot to import."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	snap, err := storage.ReadSnapshot(c.Path)
	if err != nil {
		return err
	}
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := storage.ImportSnapshot(ctx.Store, snap); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	// The snapshot holds stored entries only; rebuild the rest.
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

	fmt.Printf("Imported %d habit(s) from %s\n", len(snap.Habits), c.Path)
	return nil
}
