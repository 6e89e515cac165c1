package habits

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/commands"
	"github.com/julianstephens/habitloop/internal/models"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits with their score and streak."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit a habit."`
	Mark      HabitMarkCmd      `cmd:"" help:"Record a value for a habit on a day."`
	Toggle    HabitToggleCmd    `cmd:"" help:"Toggle a habit's checkmark for a day."`
	Log       HabitLogCmd       `cmd:"" help:"Show recent checkmarks of a habit."`
	Score     HabitScoreCmd     `cmd:"" help:"Show a habit's score history."`
	Streaks   HabitStreaksCmd   `cmd:"" help:"Show a habit's best streaks."`
	Stats     HabitStatsCmd     `cmd:"" help:"Show per-period totals for a habit."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive habits."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Unarchive habits."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete habits and all their entries."`
	Color     HabitColorCmd     `cmd:"" help:"Change the color of habits."`
	Reorder   HabitReorderCmd   `cmd:"" help:"Move a habit to another habit's position."`
	Remind    HabitRemindCmd    `cmd:"" help:"Set or clear a habit's reminder."`
	Snooze    HabitSnoozeCmd    `cmd:"" help:"Postpone a habit's reminder."`
}

// HabitFlags are the fields shared by add and edit. Nil pointers leave the
// current value unchanged when editing.
type HabitFlags struct {
	Question    *string  `help:"Question asked by the reminder."`
	Description *string  `help:"Free-form description."`
	Type        *string  `help:"Habit type: boolean or numerical."`
	Unit        *string  `help:"Unit of a numerical habit."`
	Target      *float64 `help:"Target value of a numerical habit."`
	TargetType  *string  `help:"Target type of a numerical habit: at-least or at-most." name:"target-type"`
	Frequency   *string  `help:"Frequency: daily, weekly or N/M (N times every M days)."`
	Color       *int     `help:"Palette color index."`
}

func (f HabitFlags) apply(data *models.HabitData) error {
	if f.Question != nil {
		data.Question = *f.Question
	}
	if f.Description != nil {
		data.Description = *f.Description
	}
	if f.Type != nil {
		t, err := models.ParseHabitType(*f.Type)
		if err != nil {
			return err
		}
		data.Type = t
	}
	if f.Unit != nil {
		data.Unit = *f.Unit
	}
	if f.Target != nil {
		data.TargetValue = *f.Target
	}
	if f.TargetType != nil {
		t, err := models.ParseTargetType(*f.TargetType)
		if err != nil {
			return err
		}
		data.TargetType = t
	}
	if f.Frequency != nil {
		freq, err := models.ParseFrequency(*f.Frequency)
		if err != nil {
			return err
		}
		data.Frequency = freq
	}
	if f.Color != nil {
		data.Color = *f.Color
	}
	return nil
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Remind string `help:"Reminder time in HH:MM." placeholder:"HH:MM"`
	Days   string `help:"Reminder weekdays, e.g. mon,wed,fri or weekdays." default:"daily"`

	HabitFlags `embed:""`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	for _, h := range ctx.Habits.All() {
		if strings.EqualFold(h.Name(), c.Name) && !h.Data().Archived {
			return fmt.Errorf("habit with name %q already exists", c.Name)
		}
	}

	data := models.HabitData{Name: c.Name, Frequency: models.Daily}
	if err := c.HabitFlags.apply(&data); err != nil {
		return err
	}
	if c.Remind != "" {
		r, err := models.ParseReminder(c.Remind, c.Days)
		if err != nil {
			return err
		}
		data.Reminder = &r
	}

	cmd := &commands.CreateHabit{Data: data}
	if err := ctx.Execute(cmd); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s)\n", c.Name, cmd.HabitID)
	return nil
}

type HabitEditCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Name  string `help:"New name."`

	HabitFlags `embed:""`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	data := h.Data()
	if c.Name != "" {
		data.Name = c.Name
	}
	if err := c.HabitFlags.apply(&data); err != nil {
		return err
	}
	if err := ctx.Execute(&commands.EditHabit{HabitID: h.ID(), Data: data}); err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s\n", data.Name)
	return nil
}

type HabitListCmd struct {
	Archived bool   `help:"Include archived habits."`
	Match    string `help:"Only list habits whose name matches this glob pattern."`
	Pending  bool   `help:"Hide habits already completed today."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	matcher := models.Active
	if c.Archived {
		matcher = models.All
	}
	matcher.CompletedAllowed = !c.Pending
	matcher, err := matcher.WithName(c.Match)
	if err != nil {
		return err
	}

	today := ctx.Today()
	habits := ctx.Habits.Matching(matcher, today)
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	alarms, err := ctx.Store.GetAlarms()
	if err != nil {
		return fmt.Errorf("failed to load alarms: %w", err)
	}
	next := make(map[string]models.Alarm, len(alarms))
	for _, a := range alarms {
		next[a.HabitID] = a
	}

	now := ctx.Clock.Now()
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Habits (%s)", today)))
	for _, h := range habits {
		data := h.Data()
		score, err := h.CurrentScore(today)
		if err != nil {
			return err
		}
		streak, err := h.CurrentStreak(today)
		if err != nil {
			return err
		}

		mark := " "
		if h.IsCompletedToday(today) {
			mark = cli.SuccessStyle.Render("✓")
		}
		line := fmt.Sprintf("%s %-24s %3.0f%%  streak %-4d %s", mark, data.Name, score*100, streak, data.Frequency)
		if data.Archived {
			line += cli.MutedStyle.Render(" [archived]")
		}
		if a, ok := next[h.ID()]; ok {
			line += cli.MutedStyle.Render(fmt.Sprintf("  next reminder %s", humanize.RelTime(a.FireTime(), now, "ago", "from now")))
		}
		fmt.Println(line)
	}
	return nil
}
