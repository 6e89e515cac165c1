package commands

import (
	"math"

	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/validation"
)

// apply performs cmd against the store. Commands fail before touching
// anything when an argument is invalid.
func (r *Runner) apply(cmd Command) error {
	switch c := cmd.(type) {
	case *CreateHabit:
		return r.createHabit(c)
	case *EditHabit:
		return r.editHabit(c)
	case *CreateRepetition:
		return r.createRepetition(c)
	case *ToggleRepetition:
		return r.toggleRepetition(c)
	case *ChangeHabitColor:
		return r.changeColor(c)
	case *DeleteHabits:
		return r.deleteHabits(c)
	case *ArchiveHabits:
		changed, err := r.setArchived(c.HabitIDs, true)
		c.changed = changed
		return err
	case *UnarchiveHabits:
		changed, err := r.setArchived(c.HabitIDs, false)
		c.changed = changed
		return err
	case *ReorderHabit:
		return r.reorder(c)
	case nil:
		return apperrors.InvalidArgument("nil command")
	}
	return apperrors.InvalidArgument("unknown command %T", cmd)
}

func (r *Runner) habit(id string) (*models.Habit, error) {
	h, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperrors.NotFound("habit %s", id)
	}
	return h, nil
}

func (r *Runner) habits(ids []string) ([]*models.Habit, error) {
	if len(ids) == 0 {
		return nil, apperrors.InvalidArgument("no habits given")
	}
	out := make([]*models.Habit, 0, len(ids))
	for _, id := range ids {
		h, err := r.habit(id)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *Runner) createHabit(c *CreateHabit) error {
	if err := validation.ValidateHabit(c.Data); err != nil {
		return err
	}
	data := c.Data.Clone()
	data.Frequency = data.Frequency.Reduce()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = r.clock.Now().UTC()
	}
	h := models.NewHabit("", data)
	if err := r.store.Add(h); err != nil {
		return err
	}
	c.HabitID = h.ID()
	return nil
}

func (r *Runner) editHabit(c *EditHabit) error {
	h, err := r.habit(c.HabitID)
	if err != nil {
		return err
	}
	if err := validation.ValidateHabit(c.Data); err != nil {
		return err
	}

	previous := h.Data()
	next := c.Data.Clone()
	next.Frequency = next.Frequency.Reduce()
	next.Position = previous.Position
	next.CreatedAt = previous.CreatedAt

	h.SetData(next)
	if err := r.store.Update(h); err != nil {
		h.SetData(previous)
		return err
	}
	c.previous = &previous
	return nil
}

func (r *Runner) validateValue(h *models.Habit, value int) error {
	if value == models.EntryUnknown {
		return nil
	}
	if h.Data().IsNumerical() {
		if value < 0 {
			return apperrors.InvalidArgument("numerical value must not be negative, got %d", value)
		}
		return nil
	}
	switch value {
	case models.EntryNo, models.EntryYesAuto, models.EntryYesManual, models.EntrySkip:
		return nil
	}
	return apperrors.InvalidArgument("invalid entry value %d for a yes/no habit", value)
}

// writeEntry stores value on day and returns the entry it replaced.
func (r *Runner) writeEntry(h *models.Habit, day models.Timestamp, value int, notes string) (models.Entry, error) {
	previous := h.Entry(day)
	if value == models.EntryUnknown && notes == "" {
		return previous, r.store.DeleteEntry(h, day)
	}
	return previous, r.store.SaveEntry(h, models.Entry{Timestamp: day, Value: value, Notes: notes})
}

func (r *Runner) createRepetition(c *CreateRepetition) error {
	h, err := r.habit(c.HabitID)
	if err != nil {
		return err
	}
	if err := r.validateValue(h, c.Value); err != nil {
		return err
	}
	previous, err := r.writeEntry(h, c.Day, c.Value, c.Notes)
	if err != nil {
		return err
	}
	c.previous = &previous
	return nil
}

func (r *Runner) toggleRepetition(c *ToggleRepetition) error {
	h, err := r.habit(c.HabitID)
	if err != nil {
		return err
	}
	current := h.Entry(c.Day)
	next := NextValue(h.Data(), current.Value, r.prefs.IsSkipEnabled())
	previous, err := r.writeEntry(h, c.Day, next, current.Notes)
	if err != nil {
		return err
	}
	c.Value = next
	c.previous = &previous
	return nil
}

// NextValue is the value a toggle moves current to. Numerical habits flip
// between zero and their target.
func NextValue(data models.HabitData, current int, skipEnabled bool) int {
	if data.IsNumerical() {
		if current > 0 {
			return 0
		}
		return int(math.Round(data.TargetValue * constants.NumericalScale))
	}
	return models.NextToggleValue(current, skipEnabled)
}

func (r *Runner) changeColor(c *ChangeHabitColor) error {
	habits, err := r.habits(c.HabitIDs)
	if err != nil {
		return err
	}
	if c.colors == nil && c.Color < 0 {
		return apperrors.InvalidArgument("habit color must not be negative, got %d", c.Color)
	}

	previous := make(map[string]int, len(habits))
	for _, h := range habits {
		data := h.Data()
		previous[h.ID()] = data.Color
		color := c.Color
		if pc, ok := c.colors[h.ID()]; ok {
			color = pc
		}
		if data.Color == color {
			continue
		}
		data.Color = color
		h.SetData(data)
		if err := r.store.Update(h); err != nil {
			return err
		}
	}
	c.previous = previous
	return nil
}

func (r *Runner) deleteHabits(c *DeleteHabits) error {
	habits, err := r.habits(c.HabitIDs)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if err := r.store.Remove(h.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) setArchived(ids []string, archived bool) ([]string, error) {
	habits, err := r.habits(ids)
	if err != nil {
		return nil, err
	}
	var changed []string
	for _, h := range habits {
		data := h.Data()
		if data.Archived == archived {
			continue
		}
		data.Archived = archived
		h.SetData(data)
		if err := r.store.Update(h); err != nil {
			return changed, err
		}
		changed = append(changed, h.ID())
	}
	return changed, nil
}

func (r *Runner) reorder(c *ReorderHabit) error {
	from, err := r.habit(c.FromID)
	if err != nil {
		return err
	}
	to, err := r.habit(c.ToID)
	if err != nil {
		return err
	}
	return r.store.Reorder(from, to)
}
