package models

import (
	"strings"

	"github.com/gobwas/glob"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

// HabitMatcher selects habits by archived state, completion, reminder and
// name. The zero value matches only unarchived, uncompleted habits.
type HabitMatcher struct {
	ArchivedAllowed  bool
	CompletedAllowed bool
	ReminderRequired bool

	pattern string
	glob    glob.Glob
}

var (
	// WithReminder matches the habits the reminder scheduler cares about.
	WithReminder = HabitMatcher{CompletedAllowed: true, ReminderRequired: true}
	// Active matches every habit that is not archived.
	Active = HabitMatcher{CompletedAllowed: true}
	// All matches every habit.
	All = HabitMatcher{ArchivedAllowed: true, CompletedAllowed: true}
)

// WithName returns a copy of m that also requires the habit name to match
// the case-insensitive glob pattern. An empty pattern matches every name.
func (m HabitMatcher) WithName(pattern string) (HabitMatcher, error) {
	if pattern == "" {
		m.pattern, m.glob = "", nil
		return m, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return m, apperrors.InvalidArgument("invalid name pattern %q: %v", pattern, err)
	}
	m.pattern, m.glob = pattern, g
	return m, nil
}

func (m HabitMatcher) Pattern() string { return m.pattern }

// Matches reports whether h is selected; today is used for completion.
func (m HabitMatcher) Matches(h *Habit, today Timestamp) bool {
	data := h.Data()
	if data.Archived && !m.ArchivedAllowed {
		return false
	}
	if m.ReminderRequired && !data.HasReminder() {
		return false
	}
	if m.glob != nil && !m.glob.Match(strings.ToLower(data.Name)) {
		return false
	}
	if !m.CompletedAllowed && h.IsCompletedToday(today) {
		return false
	}
	return true
}
