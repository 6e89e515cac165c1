package models

import (
	"testing"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

func TestHabitMatcher(t *testing.T) {
	reminder := &Reminder{Hour: 8, Minute: 0, Days: EveryDay}
	withReminder := NewHabit("a", HabitData{Name: "Morning run", Frequency: Daily, Reminder: reminder})
	archived := NewHabit("b", HabitData{Name: "Old habit", Frequency: Daily, Reminder: reminder, Archived: true})
	plain := NewHabit("c", HabitData{Name: "Read", Frequency: Daily})
	completed := NewHabit("d", HabitData{Name: "Running shoes", Frequency: Daily})
	completed.AddEntry(Entry{Timestamp: today, Value: EntryYesManual})

	byName, err := All.WithName("RUN*")
	if err != nil {
		t.Fatalf("WithName() error = %v", err)
	}

	tests := []struct {
		name    string
		matcher HabitMatcher
		habit   *Habit
		want    bool
	}{
		{"reminder matcher accepts reminder", WithReminder, withReminder, true},
		{"reminder matcher rejects archived", WithReminder, archived, false},
		{"reminder matcher rejects no reminder", WithReminder, plain, false},
		{"active rejects archived", Active, archived, false},
		{"active accepts completed", Active, completed, true},
		{"zero matcher rejects completed", HabitMatcher{}, completed, false},
		{"all accepts archived", All, archived, true},
		{"glob is case insensitive", byName, completed, true},
		{"glob anchors at start", byName, withReminder, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.matcher.Matches(tt.habit, today); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHabitMatcherInvalidPattern(t *testing.T) {
	if _, err := Active.WithName("[run"); !apperrors.IsInvalidArgument(err) {
		t.Errorf("WithName() error = %v, want invalid argument", err)
	}
	m, err := Active.WithName("")
	if err != nil || m.Pattern() != "" {
		t.Errorf("WithName(\"\") = %v, %v", m.Pattern(), err)
	}
}
