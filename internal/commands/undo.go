package commands

import (
	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

// Undo returns the command that reverses an executed cmd. Deleting and
// reordering habits cannot be undone.
func Undo(cmd Command) (Command, error) {
	switch c := cmd.(type) {
	case *CreateHabit:
		if c.HabitID == "" {
			return nil, notExecuted(cmd)
		}
		return &DeleteHabits{HabitIDs: []string{c.HabitID}}, nil
	case *EditHabit:
		if c.previous == nil {
			return nil, notExecuted(cmd)
		}
		return &EditHabit{HabitID: c.HabitID, Data: c.previous.Clone()}, nil
	case *CreateRepetition:
		if c.previous == nil {
			return nil, notExecuted(cmd)
		}
		return &CreateRepetition{HabitID: c.HabitID, Day: c.Day, Value: c.previous.Value, Notes: c.previous.Notes}, nil
	case *ToggleRepetition:
		if c.previous == nil {
			return nil, notExecuted(cmd)
		}
		return &CreateRepetition{HabitID: c.HabitID, Day: c.Day, Value: c.previous.Value, Notes: c.previous.Notes}, nil
	case *ChangeHabitColor:
		if c.previous == nil {
			return nil, notExecuted(cmd)
		}
		colors := make(map[string]int, len(c.previous))
		for id, color := range c.previous {
			colors[id] = color
		}
		return &ChangeHabitColor{HabitIDs: append([]string(nil), c.HabitIDs...), colors: colors}, nil
	case *ArchiveHabits:
		if len(c.changed) == 0 {
			return nil, notExecuted(cmd)
		}
		return &UnarchiveHabits{HabitIDs: append([]string(nil), c.changed...)}, nil
	case *UnarchiveHabits:
		if len(c.changed) == 0 {
			return nil, notExecuted(cmd)
		}
		return &ArchiveHabits{HabitIDs: append([]string(nil), c.changed...)}, nil
	case *DeleteHabits, *ReorderHabit:
		return nil, apperrors.InvalidArgument("%s cannot be undone", cmd.Kind())
	case nil:
		return nil, apperrors.InvalidArgument("nil command")
	}
	return nil, apperrors.InvalidArgument("unknown command %T", cmd)
}

func notExecuted(cmd Command) error {
	return apperrors.InvalidArgument("%s has not been executed", cmd.Kind())
}
