package validation

import (
	"math"
	"strings"
	"testing"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/storage/memory"
)

const today = models.Timestamp(16460)

func TestValidateHabit(t *testing.T) {
	valid := models.HabitData{Name: "Run", Frequency: models.Daily}

	tests := []struct {
		name    string
		mutate  func(*models.HabitData)
		wantErr bool
	}{
		{"valid boolean", func(d *models.HabitData) {}, false},
		{"blank name", func(d *models.HabitData) { d.Name = "  " }, true},
		{"zero frequency", func(d *models.HabitData) { d.Frequency = models.Frequency{} }, true},
		{"more than daily", func(d *models.HabitData) { d.Frequency = models.Frequency{Numerator: 8, Denominator: 7} }, true},
		{"negative color", func(d *models.HabitData) { d.Color = -1 }, true},
		{"numerical without target", func(d *models.HabitData) { d.Type = models.HabitNumerical }, true},
		{"numerical NaN target", func(d *models.HabitData) {
			d.Type = models.HabitNumerical
			d.TargetValue = math.NaN()
		}, true},
		{"numerical with target", func(d *models.HabitData) {
			d.Type = models.HabitNumerical
			d.TargetValue = 5
		}, false},
		{"bad reminder", func(d *models.HabitData) { d.Reminder = &models.Reminder{Hour: 25, Days: models.EveryDay} }, true},
		{"reminder without days", func(d *models.HabitData) { d.Reminder = &models.Reminder{Hour: 8} }, true},
		{"good reminder", func(d *models.HabitData) { d.Reminder = &models.Reminder{Hour: 8, Minute: 30, Days: models.EveryDay} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := valid
			tt.mutate(&data)
			err := ValidateHabit(data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateHabit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.IsInvalidArgument(err) {
				t.Errorf("ValidateHabit() error = %v, want invalid argument", err)
			}
		})
	}
}

func newStore(t *testing.T) *storage.HabitStore {
	t.Helper()
	p := memory.New()
	_ = p.Init()
	return storage.NewHabitStore(p)
}

func addHabit(t *testing.T, s *storage.HabitStore, data models.HabitData) *models.Habit {
	t.Helper()
	h := models.NewHabit("", data)
	if err := s.Add(h); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return h
}

func conflictTypes(r ValidationResult) map[ConflictType]int {
	out := make(map[ConflictType]int)
	for _, c := range r.Conflicts {
		out[c.Type]++
	}
	return out
}

func TestCheckIntegrityClean(t *testing.T) {
	s := newStore(t)
	h := addHabit(t, s, models.HabitData{Name: "Run", Frequency: models.Daily})
	_ = s.SaveEntry(h, models.Entry{Timestamp: today, Value: models.EntryYesManual})

	result, err := New().CheckIntegrity(s, today)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	if result.HasConflicts() {
		t.Errorf("unexpected conflicts: %s", result.FormatReport())
	}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", got)
	}
}

func TestCheckIntegrityDuplicateNames(t *testing.T) {
	s := newStore(t)
	addHabit(t, s, models.HabitData{Name: "Run", Frequency: models.Daily})
	addHabit(t, s, models.HabitData{Name: "run ", Frequency: models.Daily})
	addHabit(t, s, models.HabitData{Name: "RUN", Frequency: models.Daily, Archived: true})

	result, err := New().CheckIntegrity(s, today)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	types := conflictTypes(result)
	if types[ConflictDuplicateHabitName] != 1 {
		t.Fatalf("conflicts = %v, want one duplicate name", types)
	}
	for _, c := range result.Conflicts {
		if c.Type == ConflictDuplicateHabitName && len(c.HabitIDs) != 2 {
			t.Errorf("duplicate conflict lists %d habits, want 2 (archived excluded)", len(c.HabitIDs))
		}
	}
	if !strings.Contains(result.FormatReport(), "named") {
		t.Errorf("FormatReport() = %q", result.FormatReport())
	}
}

func TestCheckIntegrityInvalidStoredData(t *testing.T) {
	p := memory.New()
	_ = p.Init()
	_ = p.SaveHabit("bad-freq", models.HabitData{Name: "a", Frequency: models.Frequency{Numerator: 0, Denominator: 1}})
	_ = p.SaveHabit("bad-reminder", models.HabitData{Name: "b", Frequency: models.Daily, Reminder: &models.Reminder{Hour: 30, Days: models.EveryDay}})
	_ = p.SaveHabit("bad-target", models.HabitData{Name: "c", Frequency: models.Daily, Type: models.HabitNumerical})
	s := storage.NewHabitStore(p)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	result, err := New().CheckIntegrity(s, today)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	types := conflictTypes(result)
	for _, want := range []ConflictType{ConflictInvalidFrequency, ConflictInvalidReminder, ConflictInvalidTarget} {
		if types[want] != 1 {
			t.Errorf("conflicts = %v, want one %s", types, want)
		}
	}
}

func TestRepairOrphanAlarm(t *testing.T) {
	s := newStore(t)
	addHabit(t, s, models.HabitData{Name: "Run", Frequency: models.Daily})
	_ = s.Provider().SaveAlarm(models.Alarm{HabitID: "ghost", FireAt: 1000, Day: today})

	v := New()
	result, err := v.CheckIntegrity(s, today)
	if err != nil {
		t.Fatalf("CheckIntegrity() error = %v", err)
	}
	if conflictTypes(result)[ConflictOrphanAlarm] != 1 {
		t.Fatalf("conflicts = %v, want one orphan alarm", conflictTypes(result))
	}

	actions := v.Repair(s, result, today)
	if len(actions) != 1 {
		t.Fatalf("Repair() = %d actions, want 1", len(actions))
	}
	if alarms, _ := s.Provider().GetAlarms(); len(alarms) != 0 {
		t.Errorf("orphan alarm survived repair: %+v", alarms)
	}

	again, _ := v.CheckIntegrity(s, today)
	if again.HasConflicts() {
		t.Errorf("conflicts after repair: %s", again.FormatReport())
	}
}

func TestRepairRebuildsInconsistentHabit(t *testing.T) {
	s := newStore(t)
	h := addHabit(t, s, models.HabitData{Name: "Run", Frequency: models.Daily})
	_ = s.SaveEntry(h, models.Entry{Timestamp: today, Value: models.EntryYesManual})

	conflict := Conflict{Type: ConflictInconsistentCache, HabitIDs: []string{h.ID(), "missing"}}
	actions := New().Repair(s, ValidationResult{Conflicts: []Conflict{conflict}}, today)
	if len(actions) != 1 || !strings.Contains(actions[0].Action, "Rebuilt") {
		t.Fatalf("Repair() = %+v", actions)
	}
	if err := h.Verify(); err != nil {
		t.Errorf("Verify() after repair error = %v", err)
	}
}

func TestIsFixable(t *testing.T) {
	if !IsFixable(ConflictOrphanAlarm) || !IsFixable(ConflictInconsistentCache) {
		t.Error("orphan alarms and caches should be fixable")
	}
	if IsFixable(ConflictDuplicateHabitName) {
		t.Error("duplicate names should not be fixable")
	}
}
