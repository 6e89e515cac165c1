package habits

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/commands"
	"github.com/julianstephens/habitloop/internal/models"
)

type HabitRemindCmd struct {
	Set   HabitRemindSetCmd   `cmd:"" help:"Set the reminder time and weekdays."`
	Clear HabitRemindClearCmd `cmd:"" help:"Remove the reminder."`
}

type HabitRemindSetCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Time  string `arg:"" help:"Reminder time in HH:MM."`
	Days  string `help:"Reminder weekdays, e.g. mon,wed,fri or weekdays." default:"daily"`
}

func (c *HabitRemindSetCmd) Run(ctx *cli.Context) error {
	r, err := models.ParseReminder(c.Time, c.Days)
	if err != nil {
		return err
	}
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	data := h.Data()
	data.Reminder = &r
	if err := ctx.Execute(&commands.EditHabit{HabitID: h.ID(), Data: data}); err != nil {
		return err
	}

	alarm, ok, err := nextAlarm(ctx, h.ID())
	if err != nil {
		return err
	}
	fmt.Printf("Reminder for %q set to %s\n", data.Name, r)
	if ok {
		fmt.Println(cli.MutedStyle.Render("Next: " + alarm.FireTime().In(ctx.Prefs.Location()).Format(time.RFC1123)))
	}
	return nil
}

type HabitRemindClearCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitRemindClearCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	data := h.Data()
	if data.Reminder == nil {
		fmt.Printf("%q has no reminder.\n", data.Name)
		return nil
	}
	data.Reminder = nil
	if err := ctx.Execute(&commands.EditHabit{HabitID: h.ID(), Data: data}); err != nil {
		return err
	}
	// Rescheduling skips habits without reminders, so their alarm is dropped here.
	if err := ctx.Store.DeleteAlarm(h.ID()); err != nil {
		return fmt.Errorf("failed to delete pending alarm: %w", err)
	}
	if err := ctx.Store.DeleteSnooze(h.ID()); err != nil {
		return fmt.Errorf("failed to delete snooze: %w", err)
	}
	fmt.Printf("Reminder for %q cleared\n", data.Name)
	return nil
}

type HabitSnoozeCmd struct {
	Habit   string `arg:"" help:"Habit name or id."`
	Minutes int    `help:"Minutes to postpone (default: the snooze interval setting)."`
}

func (c *HabitSnoozeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Reminders.Snooze(context.Background(), h, c.Minutes); err != nil {
		return err
	}

	alarm, ok, err := nextAlarm(ctx, h.ID())
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("Snoozed %q until %s\n", h.Name(), alarm.FireTime().In(ctx.Prefs.Location()).Format(time.Kitchen))
	} else {
		fmt.Printf("Snoozed %q\n", h.Name())
	}
	return nil
}

func nextAlarm(ctx *cli.Context, habitID string) (models.Alarm, bool, error) {
	alarms, err := ctx.Store.GetAlarms()
	if err != nil {
		return models.Alarm{}, false, fmt.Errorf("failed to load alarms: %w", err)
	}
	for _, a := range alarms {
		if a.HabitID == habitID {
			return a, true, nil
		}
	}
	return models.Alarm{}, false, nil
}
