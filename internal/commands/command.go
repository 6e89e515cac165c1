// Package commands holds every mutation habitloop performs on habits and
// the runner that applies them and notifies listeners.
package commands

import (
	"github.com/julianstephens/habitloop/internal/models"
)

// Command is a closed set of mutations. Only the pointer types declared in
// this package implement it.
type Command interface {
	// Kind is a stable snake_case name used in logs and metrics.
	Kind() string
	isCommand()
}

// Listener is told about every command that completed successfully.
// Implementations must not wait on the Runner that calls them.
type Listener interface {
	OnCommandExecuted(cmd Command, refreshKey string)
}

// CreateHabit adds a new habit. HabitID is filled in on success.
type CreateHabit struct {
	Data    models.HabitData
	HabitID string
}

// EditHabit replaces the editable data of a habit. Position and creation
// time are kept.
type EditHabit struct {
	HabitID string
	Data    models.HabitData

	previous *models.HabitData
}

// CreateRepetition records Value for a habit on Day, replacing any entry on
// that day. EntryUnknown clears the day.
type CreateRepetition struct {
	HabitID string
	Day     models.Timestamp
	Value   int
	Notes   string

	previous *models.Entry
}

// ToggleRepetition advances the entry on Day through the toggle cycle.
// Value holds the new entry value on success.
type ToggleRepetition struct {
	HabitID string
	Day     models.Timestamp
	Value   int

	previous *models.Entry
}

// ChangeHabitColor sets Color on every habit in HabitIDs.
type ChangeHabitColor struct {
	HabitIDs []string
	Color    int

	// per-habit colors, used when undoing
	colors   map[string]int
	previous map[string]int
}

// DeleteHabits removes habits with all their entries. It cannot be undone.
type DeleteHabits struct {
	HabitIDs []string
}

type ArchiveHabits struct {
	HabitIDs []string

	changed []string
}

type UnarchiveHabits struct {
	HabitIDs []string

	changed []string
}

// ReorderHabit moves FromID into the list slot held by ToID.
type ReorderHabit struct {
	FromID string
	ToID   string
}

func (*CreateHabit) Kind() string      { return "create_habit" }
func (*EditHabit) Kind() string        { return "edit_habit" }
func (*CreateRepetition) Kind() string { return "create_repetition" }
func (*ToggleRepetition) Kind() string { return "toggle_repetition" }
func (*ChangeHabitColor) Kind() string { return "change_habit_color" }
func (*DeleteHabits) Kind() string     { return "delete_habits" }
func (*ArchiveHabits) Kind() string    { return "archive_habits" }
func (*UnarchiveHabits) Kind() string  { return "unarchive_habits" }
func (*ReorderHabit) Kind() string     { return "reorder_habit" }

func (*CreateHabit) isCommand()      {}
func (*EditHabit) isCommand()        {}
func (*CreateRepetition) isCommand() {}
func (*ToggleRepetition) isCommand() {}
func (*ChangeHabitColor) isCommand() {}
func (*DeleteHabits) isCommand()     {}
func (*ArchiveHabits) isCommand()    {}
func (*UnarchiveHabits) isCommand()  {}
func (*ReorderHabit) isCommand()     {}

// laneKey returns the habit whose state cmd touches, or "" when it touches
// several habits or the list order.
func laneKey(cmd Command) string {
	switch c := cmd.(type) {
	case *EditHabit:
		return c.HabitID
	case *CreateRepetition:
		return c.HabitID
	case *ToggleRepetition:
		return c.HabitID
	case *ChangeHabitColor:
		if len(c.HabitIDs) == 1 {
			return c.HabitIDs[0]
		}
	}
	return ""
}
