package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/notifier"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/utils"
	"github.com/julianstephens/habitloop/internal/validation"
)

type DoctorCmd struct {
	Fix bool `help:"Repair conflicts that can be fixed without losing data."`
}

// errWarning marks a check whose failure does not fail the run.
var errWarning = errors.New("warning")

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	run     func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) checks() []check {
	return []check{
		{"Database reachable", false, checkDBReachable},
		{"Schema version", true, checkSchemaVersion},
		{"Migrations complete", true, checkMigrationsComplete},
		{"Settings", true, checkSettings},
		{"Clock/timezone", true, checkClockTimezone},
		{"Habit integrity", true, cmd.checkHabitIntegrity},
		{"Tray notifier", false, checkTrayNotifier},
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	for i, c := range cmd.checks() {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case errors.Is(err, errWarning):
			fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("⚠ %s: WARNING", c.name)))
			fmt.Printf("   %v\n", err)
		default:
			fmt.Println(cli.DangerStyle.Render(fmt.Sprintf("❌ %s: FAIL", c.name)))
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if m, ok := ctx.Store.(storage.Migrator); ok {
		if err := m.Ping(); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, ok bool, err error) {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return 0, 0, false, nil
	}
	current, latest, err = m.SchemaVersion()
	return current, latest, true, err
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if !ok || err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if !ok || err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return preferences.Validate(settings)
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx == nil || ctx.Store == nil {
		return nil
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		// Reported by the settings check.
		return nil
	}
	if _, err := utils.NowInTimezone(settings.Timezone); err != nil {
		return err
	}
	return nil
}

func (cmd *DoctorCmd) checkHabitIntegrity(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}
	v := validation.New()
	today := ctx.Today()
	result, err := v.CheckIntegrity(ctx.Habits, today)
	if err != nil {
		return err
	}
	if !result.HasConflicts() {
		return nil
	}

	if !cmd.Fix {
		for _, c := range result.Conflicts {
			if validation.IsFixable(c.Type) {
				return fmt.Errorf("%s   Run 'habitloop doctor --fix' to repair what can be repaired", result.FormatReport())
			}
		}
		return errors.New(result.FormatReport())
	}
	for _, action := range v.Repair(ctx.Habits, result, today) {
		fmt.Printf("   %s\n", action.Action)
	}

	after, err := v.CheckIntegrity(ctx.Habits, today)
	if err != nil {
		return err
	}
	if after.HasConflicts() {
		return errors.New(after.FormatReport())
	}
	return nil
}

func checkTrayNotifier(*cli.Context) error {
	if err := notifier.Status(); err != nil {
		return fmt.Errorf("%w: %v (reminders will not be shown)", errWarning, err)
	}
	return nil
}
