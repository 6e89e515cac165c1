package storage

import "github.com/julianstephens/habitloop/internal/models"

// HabitRecord is a persisted habit row without its entries.
type HabitRecord struct {
	ID   string
	Data models.HabitData
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	SaveHabit(id string, data models.HabitData) error
	// DeleteHabit removes the habit together with its entries, snooze and
	// pending alarm.
	DeleteHabit(id string) error
	// GetAllHabits returns every habit ordered by position.
	GetAllHabits() ([]HabitRecord, error)

	// Entries
	SaveEntry(habitID string, entry models.Entry) error
	DeleteEntry(habitID string, day models.Timestamp) error
	// GetEntries returns the recorded entries of a habit, newest first.
	GetEntries(habitID string) ([]models.Entry, error)

	// Snoozes
	GetSnooze(habitID string) (models.Snooze, bool, error)
	SaveSnooze(models.Snooze) error
	DeleteSnooze(habitID string) error

	// Alarms
	SaveAlarm(models.Alarm) error
	DeleteAlarm(habitID string) error
	GetAlarms() ([]models.Alarm, error)
	// GetDueAlarms returns alarms firing at or before nowMs, oldest first.
	GetDueAlarms(nowMs int64) ([]models.Alarm, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by the SQL providers.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
	Ping() error
}
