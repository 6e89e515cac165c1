package settings

import (
	"fmt"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone             *string `help:"IANA timezone name, or Local for the system timezone."`
	DayStartOffsetMin    *int    `help:"Minutes after midnight at which a new day begins." name:"day-start-offset"`
	SkipEnabled          *bool   `help:"Include SKIP when toggling a checkmark."`
	SnoozeIntervalMin    *int    `help:"Default snooze length in minutes." name:"snooze-interval"`
	NotificationsEnabled *bool   `help:"Enable or disable reminder notifications."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	if c.List {
		printSettings(ctx.Prefs.Settings())
		return nil
	}

	updated := false
	dayChanged := false
	err := ctx.Prefs.Update(func(s *models.Settings) {
		if c.Timezone != nil {
			s.Timezone = *c.Timezone
			updated, dayChanged = true, true
		}
		if c.DayStartOffsetMin != nil {
			s.DayStartOffsetMin = *c.DayStartOffsetMin
			updated, dayChanged = true, true
		}
		if c.SkipEnabled != nil {
			s.SkipEnabled = *c.SkipEnabled
			updated = true
		}
		if c.SnoozeIntervalMin != nil {
			s.SnoozeIntervalMin = *c.SnoozeIntervalMin
			updated = true
		}
		if c.NotificationsEnabled != nil {
			s.NotificationsEnabled = *c.NotificationsEnabled
			updated = true
		}
		// A new day boundary invalidates the scheduled day-change refresh.
		if dayChanged {
			s.NextRefreshMs = 0
		}
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if updated {
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}
	return nil
}

func printSettings(s models.Settings) {
	fmt.Println(cli.TitleStyle.Render("Current Settings:"))
	fmt.Printf("  Timezone:              %s\n", s.Timezone)
	fmt.Printf("  Day Start Offset:      %d min\n", s.DayStartOffsetMin)
	fmt.Printf("  Skip Enabled:          %v\n", s.SkipEnabled)
	fmt.Printf("  Snooze Interval:       %d min\n", s.SnoozeIntervalMin)
	fmt.Println()
	fmt.Println(cli.TitleStyle.Render("Notification Settings:"))
	fmt.Printf("  Notifications Enabled: %v\n", s.NotificationsEnabled)
}
