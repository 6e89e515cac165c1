package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictInvalidFrequency   ConflictType = "invalid_frequency"
	ConflictInvalidReminder    ConflictType = "invalid_reminder"
	ConflictInvalidTarget      ConflictType = "invalid_target"
	ConflictOrphanAlarm        ConflictType = "orphan_alarm"
	ConflictInconsistentCache  ConflictType = "inconsistent_cache"
)

// Conflict represents a detected problem in the stored habits
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit names involved
	HabitIDs    []string // IDs involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string   // Human-readable description of the action
	SourceConflict Conflict // The conflict that triggered this fix action
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// ValidateHabit checks user-editable habit data before it is stored.
func ValidateHabit(data models.HabitData) error {
	if strings.TrimSpace(data.Name) == "" {
		return apperrors.InvalidArgument("habit name is required")
	}
	if err := data.Frequency.Validate(); err != nil {
		return err
	}
	if data.Color < 0 {
		return apperrors.InvalidArgument("habit color must not be negative, got %d", data.Color)
	}
	if data.IsNumerical() {
		if math.IsNaN(data.TargetValue) || math.IsInf(data.TargetValue, 0) || data.TargetValue <= 0 {
			return apperrors.InvalidArgument("numerical habits need a target greater than zero, got %v", data.TargetValue)
		}
	}
	if data.Reminder != nil {
		if err := data.Reminder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validator checks stored habits for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// CheckIntegrity inspects every habit in store and the reminder state kept
// by its provider.
func (v *Validator) CheckIntegrity(store *storage.HabitStore, today models.Timestamp) (ValidationResult, error) {
	result := ValidationResult{}
	habits := store.All()

	byName := make(map[string][]*models.Habit)
	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID()] = true
		data := h.Data()
		if !data.Archived {
			key := strings.ToLower(strings.TrimSpace(data.Name))
			byName[key] = append(byName[key], h)
		}

		if err := data.Frequency.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, habitConflict(ConflictInvalidFrequency, h,
				fmt.Sprintf("Habit %q has an invalid frequency %s", data.Name, data.Frequency)))
		}
		if data.Reminder != nil {
			if err := data.Reminder.Validate(); err != nil {
				result.Conflicts = append(result.Conflicts, habitConflict(ConflictInvalidReminder, h,
					fmt.Sprintf("Habit %q has an invalid reminder: %v", data.Name, err)))
			}
		}
		if data.IsNumerical() && data.TargetValue <= 0 {
			result.Conflicts = append(result.Conflicts, habitConflict(ConflictInvalidTarget, h,
				fmt.Sprintf("Habit %q has a non-positive target %v", data.Name, data.TargetValue)))
		}

		if err := checkCaches(h, today); err != nil {
			result.Conflicts = append(result.Conflicts, habitConflict(ConflictInconsistentCache, h,
				fmt.Sprintf("Habit %q has inconsistent scores or streaks: %v", data.Name, err)))
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		c := Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("%d active habits are named %q", len(group), group[0].Name()),
		}
		for _, h := range group {
			c.Items = append(c.Items, h.Name())
			c.HabitIDs = append(c.HabitIDs, h.ID())
		}
		result.Conflicts = append(result.Conflicts, c)
	}

	alarms, err := store.Provider().GetAlarms()
	if err != nil {
		return result, fmt.Errorf("failed to read alarms: %w", err)
	}
	for _, a := range alarms {
		if !known[a.HabitID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanAlarm,
				Description: fmt.Sprintf("Pending alarm for deleted habit %s", a.HabitID),
				HabitIDs:    []string{a.HabitID},
			})
		}
	}

	return result, nil
}

func habitConflict(t ConflictType, h *models.Habit, description string) Conflict {
	return Conflict{
		Type:        t,
		Description: description,
		Items:       []string{h.Name()},
		HabitIDs:    []string{h.ID()},
	}
}

// checkCaches brings the habit's caches up to today and verifies them.
func checkCaches(h *models.Habit, today models.Timestamp) error {
	if err := h.Recompute(today); err != nil {
		return err
	}
	return h.Verify()
}

// Repair fixes the conflicts that can be fixed without losing user data:
// orphan alarms are deleted and inconsistent habits are rebuilt from their
// entries. Other conflicts are left for the user.
func (v *Validator) Repair(store *storage.HabitStore, result ValidationResult, today models.Timestamp) []FixAction {
	actions := []FixAction{}

	for _, conflict := range result.Conflicts {
		switch conflict.Type {
		case ConflictOrphanAlarm:
			for _, id := range conflict.HabitIDs {
				if err := store.Provider().DeleteAlarm(id); err != nil {
					actions = append(actions, FixAction{
						Action:         fmt.Sprintf("Failed to delete orphan alarm %s: %v", id, err),
						SourceConflict: conflict,
					})
					continue
				}
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Deleted orphan alarm for %s", id),
					SourceConflict: conflict,
				})
			}
		case ConflictInconsistentCache:
			for _, id := range conflict.HabitIDs {
				h, _ := store.Get(id)
				if h == nil {
					continue
				}
				err := h.Rebuild(today)
				if err == nil {
					err = h.Verify()
				}
				if err != nil {
					actions = append(actions, FixAction{
						Action:         fmt.Sprintf("Failed to rebuild %q: %v", h.Name(), err),
						SourceConflict: conflict,
					})
					continue
				}
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Rebuilt scores and streaks for %q", h.Name()),
					SourceConflict: conflict,
				})
			}
		}
	}

	return actions
}

// IsFixable reports whether Repair acts on conflicts of type t.
func IsFixable(t ConflictType) bool {
	return t == ConflictOrphanAlarm || t == ConflictInconsistentCache
}
