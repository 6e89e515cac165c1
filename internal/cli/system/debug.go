package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump a habit and its entries as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
	DumpAlarms   *DebugDumpAlarmsCmd   `cmd:"" help:"Dump pending alarms as JSON."`
}

func printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"ID or name of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	h, err := ctx.FindHabit(cmd.Habit)
	if err != nil {
		return err
	}
	// Stored entries only; computed YES_AUTO days are not persisted.
	entries, err := ctx.Store.GetEntries(h.ID())
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}
	return printJSON(storage.HabitSnapshot{ID: h.ID(), Data: h.Data(), Entries: entries})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(settings)
}

type DebugDumpAlarmsCmd struct{}

func (cmd *DebugDumpAlarmsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	alarms, err := ctx.Store.GetAlarms()
	if err != nil {
		return fmt.Errorf("failed to get alarms: %w", err)
	}
	return printJSON(alarms)
}
