package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitloop/internal/alarms"
	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/commands"
	"github.com/julianstephens/habitloop/internal/config"
	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/keyring"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/scheduler"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/storage/postgres"
	"github.com/julianstephens/habitloop/internal/storage/sqlite"
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	DangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Context is handed to every command's Run method. Store is always set;
// the remaining services exist after Open.
type Context struct {
	Config *config.Config
	// ConfigPath is the expanded path Config was loaded from.
	ConfigPath string
	Version    string
	Store      storage.Provider
	Clock      clock.Clock

	Habits    *storage.HabitStore
	Prefs     *preferences.Store
	Runner    *commands.Runner
	Reminders *scheduler.ReminderScheduler
}

// NewProvider picks the storage backend for cfg. A PostgreSQL DSN in the
// config wins, then a connection string from the environment or keyring,
// then the SQLite file.
func NewProvider(cfg *config.Config) (storage.Provider, error) {
	if dsn := cfg.Database.DSN; dsn != "" {
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("database.dsn must not contain a password; store it with 'habitloop system keyring set' or %s", constants.DBConnectionEnvVar)
			}
			return nil, err
		}
		return postgres.New(dsn), nil
	}

	connStr, source, err := keyring.New(cfg.Database.KeyringUser).Resolve()
	switch {
	case err == nil:
		logger.Debug("Using PostgreSQL connection", "source", source)
		return postgres.New(connStr), nil
	case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
		logger.Debug("No stored PostgreSQL connection, using SQLite", "reason", err)
	default:
		return nil, err
	}

	path, err := config.ExpandPath(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// Open loads the store and starts the services commands work with. It is a
// no-op when already open.
func (c *Context) Open() error {
	if c.Runner != nil {
		return nil
	}
	if c.Clock == nil {
		c.Clock = clock.System{}
	}
	if err := c.Store.Load(); err != nil {
		return err
	}

	prefs, err := preferences.New(c.Store)
	if err != nil {
		return err
	}
	habits := storage.NewHabitStore(c.Store)
	if err := habits.Load(); err != nil {
		return err
	}

	workers := constants.DefaultRunnerWorkers
	if c.Config != nil {
		workers = c.Config.Runner.Workers
	}
	runner := commands.NewRunner(habits, prefs, commands.Options{Workers: workers, Clock: c.Clock})
	reminders := scheduler.New(runner, habits, alarms.NewScheduler(c.Store, prefs, c.Clock), c.Store, prefs, scheduler.Options{
		Clock:             c.Clock,
		Location:          prefs.Location(),
		DayStartOffsetMin: prefs.DayStartOffset(),
	})
	reminders.StartListening()

	c.Prefs, c.Habits, c.Runner, c.Reminders = prefs, habits, runner, reminders
	return nil
}

// Close stops the runner, waiting for queued commands, and closes the store.
func (c *Context) Close() error {
	if c.Runner != nil {
		c.Reminders.StopListening()
		c.Runner.Close()
		c.Runner = nil
	}
	return c.Store.Close()
}

func (c *Context) Today() models.Timestamp {
	return c.Prefs.Today(c.Clock.Now())
}

// Execute runs cmd and waits for it and its listeners to finish.
func (c *Context) Execute(cmd commands.Command) error {
	return c.Runner.ExecuteSync(context.Background(), cmd, "")
}

// FindHabit resolves ref as a habit id, then as a case-insensitive name.
func (c *Context) FindHabit(ref string) (*models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if h, err := c.Habits.Get(ref); err != nil {
		return nil, err
	} else if h != nil {
		return h, nil
	}

	var found *models.Habit
	for _, h := range c.Habits.All() {
		if !strings.EqualFold(h.Name(), ref) {
			continue
		}
		if found != nil {
			return nil, apperrors.InvalidArgument("more than one habit is named %q, use its id", ref)
		}
		found = h
	}
	if found == nil {
		return nil, apperrors.NotFound("habit %q", ref)
	}
	return found, nil
}

// FindHabits resolves every ref with FindHabit and returns their ids.
func (c *Context) FindHabits(refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		h, err := c.FindHabit(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, h.ID())
	}
	return ids, nil
}

// ParseDay accepts YYYY-MM-DD, "today", "yesterday" or an empty string
// (today).
func ParseDay(s string, today models.Timestamp) (models.Timestamp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.Minus(1), nil
	}
	day, err := models.ParseTimestamp(s)
	if err != nil {
		return 0, apperrors.InvalidArgument("invalid date %q (expected YYYY-MM-DD)", s)
	}
	if day.IsNewerThan(today) {
		return 0, apperrors.InvalidArgument("date %s is in the future", day)
	}
	return day, nil
}
