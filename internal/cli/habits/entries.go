package habits

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/commands"
	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
)

// ParseValue converts user input into an entry value for data. Boolean
// habits take yes, no, skip or clear; numerical habits take a quantity.
func ParseValue(data models.HabitData, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "clear" || s == "unknown" {
		return models.EntryUnknown, nil
	}
	if data.IsNumerical() {
		if s == "" {
			return 0, apperrors.InvalidArgument("numerical habits need a --value")
		}
		q, err := strconv.ParseFloat(s, 64)
		if err != nil || q < 0 || math.IsInf(q, 0) {
			return 0, apperrors.InvalidArgument("invalid quantity %q", s)
		}
		return int(math.Round(q * constants.NumericalScale)), nil
	}
	switch s {
	case "", "yes", "y", "done":
		return models.EntryYesManual, nil
	case "no", "n":
		return models.EntryNo, nil
	case "skip":
		return models.EntrySkip, nil
	}
	return 0, apperrors.InvalidArgument("invalid value %q (expected yes, no, skip or clear)", s)
}

type HabitMarkCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format, today or yesterday (default: today)."`
	Value string `help:"yes, no, skip or clear; a quantity for numerical habits."`
	Notes string `help:"Optional note for this entry."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := cli.ParseDay(c.Date, ctx.Today())
	if err != nil {
		return err
	}
	data := h.Data()
	value, err := ParseValue(data, c.Value)
	if err != nil {
		return err
	}

	cmd := &commands.CreateRepetition{HabitID: h.ID(), Day: day, Value: value, Notes: c.Notes}
	if err := ctx.Execute(cmd); err != nil {
		return err
	}
	if value == models.EntryUnknown && c.Notes == "" {
		fmt.Printf("Cleared %q for %s\n", data.Name, day)
		return nil
	}
	fmt.Printf("Marked %q as %s for %s\n", data.Name, data.FormatValue(value), day)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format, today or yesterday (default: today)."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := cli.ParseDay(c.Date, ctx.Today())
	if err != nil {
		return err
	}

	cmd := &commands.ToggleRepetition{HabitID: h.ID(), Day: day}
	if err := ctx.Execute(cmd); err != nil {
		return err
	}
	fmt.Printf("%s on %s: %s\n", h.Name(), day, h.Data().FormatValue(cmd.Value))
	return nil
}

type HabitLogCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Days  int    `help:"Number of days to show." default:"14"`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return apperrors.InvalidArgument("--days must be positive")
	}
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	today := ctx.Today()
	data := h.Data()
	recorded := make(map[models.Timestamp]models.Entry)
	for _, e := range h.Entries() {
		recorded[e.Timestamp] = e
	}

	fmt.Println(cli.TitleStyle.Render(data.Name))
	for _, e := range h.ComputedEntries(today.Minus(c.Days-1), today) {
		label := data.FormatValue(e.Value)
		switch {
		case e.Value == models.EntryYesManual, data.IsNumerical() && e.Value > 0:
			label = cli.SuccessStyle.Render(label)
		case e.Value == models.EntryYesAuto, e.Value == models.EntrySkip, e.Value == models.EntryUnknown:
			label = cli.MutedStyle.Render(label)
		}
		line := fmt.Sprintf("  %s %s  %s", e.Timestamp, e.Timestamp.Weekday().String()[:3], label)
		if notes := recorded[e.Timestamp].Notes; notes != "" {
			line += "  " + cli.MutedStyle.Render(notes)
		}
		fmt.Println(line)
	}
	return nil
}
