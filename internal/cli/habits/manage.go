package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/commands"
)

// confirm asks a yes/no question on the terminal. Tests replace it.
var confirm = func(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	return ok, err
}

type HabitArchiveCmd struct {
	Habits []string `arg:"" help:"Habit names or ids."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	ids, err := ctx.FindHabits(c.Habits)
	if err != nil {
		return err
	}
	if err := ctx.Execute(&commands.ArchiveHabits{HabitIDs: ids}); err != nil {
		return err
	}
	fmt.Printf("Archived %d habit(s)\n", len(ids))
	return nil
}

type HabitUnarchiveCmd struct {
	Habits []string `arg:"" help:"Habit names or ids."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	ids, err := ctx.FindHabits(c.Habits)
	if err != nil {
		return err
	}
	if err := ctx.Execute(&commands.UnarchiveHabits{HabitIDs: ids}); err != nil {
		return err
	}
	fmt.Printf("Unarchived %d habit(s)\n", len(ids))
	return nil
}

type HabitDeleteCmd struct {
	Habits []string `arg:"" help:"Habit names or ids."`
	Yes    bool     `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	ids, err := ctx.FindHabits(c.Habits)
	if err != nil {
		return err
	}

	if !c.Yes {
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			h, _ := ctx.Habits.Get(id)
			names = append(names, h.Name())
		}
		ok, err := confirm(fmt.Sprintf("Delete %s and all of its history?", strings.Join(names, ", ")))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Execute(&commands.DeleteHabits{HabitIDs: ids}); err != nil {
		return err
	}
	fmt.Println(cli.DangerStyle.Render(fmt.Sprintf("Deleted %d habit(s)", len(ids))))
	return nil
}

type HabitColorCmd struct {
	Color  int      `arg:"" help:"Palette color index."`
	Habits []string `arg:"" help:"Habit names or ids."`
}

func (c *HabitColorCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	ids, err := ctx.FindHabits(c.Habits)
	if err != nil {
		return err
	}
	if err := ctx.Execute(&commands.ChangeHabitColor{HabitIDs: ids, Color: c.Color}); err != nil {
		return err
	}
	fmt.Printf("Changed color of %d habit(s) to %d\n", len(ids), c.Color)
	return nil
}

type HabitReorderCmd struct {
	From string `arg:"" help:"Habit to move."`
	To   string `arg:"" help:"Habit whose position it takes."`
}

func (c *HabitReorderCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	from, err := ctx.FindHabit(c.From)
	if err != nil {
		return err
	}
	to, err := ctx.FindHabit(c.To)
	if err != nil {
		return err
	}
	if err := ctx.Execute(&commands.ReorderHabit{FromID: from.ID(), ToID: to.ID()}); err != nil {
		return err
	}
	fmt.Printf("Moved %q to position %d\n", from.Name(), from.Data().Position+1)
	return nil
}
