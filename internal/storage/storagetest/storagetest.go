// Package storagetest holds behavior checks shared by every storage.Provider.
package storagetest

import (
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage"
)

// Factory returns an initialized, empty provider. It registers its own cleanup.
type Factory func(t *testing.T) storage.Provider

var created = time.Date(2024, time.March, 3, 9, 30, 0, 0, time.UTC)

// SampleHabit returns habit data with every persisted field set.
func SampleHabit(name string, position int) models.HabitData {
	return models.HabitData{
		Name:        name,
		Question:    "Did you " + name + " today?",
		Description: "sample",
		Unit:        "km",
		Color:       4,
		Position:    position,
		Type:        models.HabitNumerical,
		Frequency:   models.Frequency{Numerator: 3, Denominator: 7},
		TargetType:  models.TargetAtMost,
		TargetValue: 2.5,
		Reminder:    &models.Reminder{Hour: 8, Minute: 15, Days: models.NewWeekdayMask(time.Monday, time.Friday)},
		CreatedAt:   created,
	}
}

// Run exercises the full Provider contract against providers from newProvider.
func Run(t *testing.T, newProvider Factory) {
	t.Run("Settings", func(t *testing.T) { testSettings(t, newProvider(t)) })
	t.Run("Habits", func(t *testing.T) { testHabits(t, newProvider(t)) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, newProvider(t)) })
	t.Run("DeleteHabit", func(t *testing.T) { testDeleteHabit(t, newProvider(t)) })
	t.Run("Snoozes", func(t *testing.T) { testSnoozes(t, newProvider(t)) })
	t.Run("Alarms", func(t *testing.T) { testAlarms(t, newProvider(t)) })
}

func testSettings(t *testing.T, p storage.Provider) {
	got, err := p.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if want := models.DefaultSettings(); got != want {
		t.Errorf("default settings = %+v, want %+v", got, want)
	}

	want := models.Settings{
		Timezone:             "America/New_York",
		DayStartOffsetMin:    180,
		SkipEnabled:          true,
		SnoozeIntervalMin:    30,
		NotificationsEnabled: false,
		NextRefreshMs:        1700000000000,
	}
	if err := p.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	got, err = p.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func testHabits(t *testing.T, p storage.Provider) {
	habits, err := p.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits() error = %v", err)
	}
	if len(habits) != 0 {
		t.Fatalf("fresh provider has %d habits", len(habits))
	}

	run := SampleHabit("run", 1)
	read := models.HabitData{Name: "read", Frequency: models.Daily, Position: 0, CreatedAt: created}
	if err := p.SaveHabit("h-run", run); err != nil {
		t.Fatalf("SaveHabit() error = %v", err)
	}
	if err := p.SaveHabit("h-read", read); err != nil {
		t.Fatalf("SaveHabit() error = %v", err)
	}

	habits, err = p.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits() error = %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("got %d habits, want 2", len(habits))
	}
	if habits[0].ID != "h-read" || habits[1].ID != "h-run" {
		t.Errorf("habits not ordered by position: %s, %s", habits[0].ID, habits[1].ID)
	}
	if got := habits[1].Data; !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
	if got := sameTime(habits[1].Data, run.CreatedAt); !reflect.DeepEqual(got, run) {
		t.Errorf("round trip = %+v, want %+v", got, run)
	}
	if habits[0].Data.Reminder != nil {
		t.Errorf("habit without reminder came back with %v", habits[0].Data.Reminder)
	}

	run.Archived = true
	run.Reminder = nil
	run.Position = 5
	if err := p.SaveHabit("h-run", run); err != nil {
		t.Fatalf("SaveHabit() update error = %v", err)
	}
	habits, _ = p.GetAllHabits()
	if len(habits) != 2 {
		t.Fatalf("update created a new row: %d habits", len(habits))
	}
	if got := habits[1].Data; !got.Archived || got.Reminder != nil || got.Position != 5 {
		t.Errorf("updated habit = %+v", got)
	}
}

func testEntries(t *testing.T, p storage.Provider) {
	if err := p.SaveHabit("h1", SampleHabit("walk", 0)); err != nil {
		t.Fatalf("SaveHabit() error = %v", err)
	}

	for _, e := range []models.Entry{
		{Timestamp: 100, Value: models.EntryYesManual},
		{Timestamp: 102, Value: models.EntrySkip, Notes: "sick"},
		{Timestamp: 101, Value: models.EntryNo},
	} {
		if err := p.SaveEntry("h1", e); err != nil {
			t.Fatalf("SaveEntry() error = %v", err)
		}
	}
	if err := p.SaveEntry("h1", models.Entry{Timestamp: 100, Value: 2500, Notes: "long"}); err != nil {
		t.Fatalf("SaveEntry() overwrite error = %v", err)
	}

	got, err := p.GetEntries("h1")
	if err != nil {
		t.Fatalf("GetEntries() error = %v", err)
	}
	want := []models.Entry{
		{Timestamp: 102, Value: models.EntrySkip, Notes: "sick"},
		{Timestamp: 101, Value: models.EntryNo},
		{Timestamp: 100, Value: 2500, Notes: "long"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEntries() = %+v, want %+v", got, want)
	}

	if err := p.DeleteEntry("h1", 101); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if err := p.DeleteEntry("h1", 999); err != nil {
		t.Errorf("DeleteEntry() of a missing day error = %v", err)
	}
	got, _ = p.GetEntries("h1")
	if len(got) != 2 {
		t.Errorf("after delete got %d entries, want 2", len(got))
	}

	if other, _ := p.GetEntries("nobody"); len(other) != 0 {
		t.Errorf("unknown habit has %d entries", len(other))
	}
}

func testDeleteHabit(t *testing.T, p storage.Provider) {
	if err := p.SaveHabit("gone", SampleHabit("gone", 0)); err != nil {
		t.Fatalf("SaveHabit() error = %v", err)
	}
	if err := p.SaveHabit("kept", SampleHabit("kept", 1)); err != nil {
		t.Fatalf("SaveHabit() error = %v", err)
	}
	for _, id := range []string{"gone", "kept"} {
		if err := p.SaveEntry(id, models.Entry{Timestamp: 10, Value: models.EntryYesManual}); err != nil {
			t.Fatalf("SaveEntry() error = %v", err)
		}
		if err := p.SaveSnooze(models.Snooze{HabitID: id, Until: 5000}); err != nil {
			t.Fatalf("SaveSnooze() error = %v", err)
		}
		if err := p.SaveAlarm(models.Alarm{HabitID: id, FireAt: 6000, Day: 10, CreatedAt: created}); err != nil {
			t.Fatalf("SaveAlarm() error = %v", err)
		}
	}

	if err := p.DeleteHabit("gone"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}

	habits, _ := p.GetAllHabits()
	if len(habits) != 1 || habits[0].ID != "kept" {
		t.Errorf("after delete habits = %+v", habits)
	}
	if entries, _ := p.GetEntries("gone"); len(entries) != 0 {
		t.Errorf("deleted habit kept %d entries", len(entries))
	}
	if _, ok, _ := p.GetSnooze("gone"); ok {
		t.Error("deleted habit kept its snooze")
	}
	alarms, _ := p.GetAlarms()
	if len(alarms) != 1 || alarms[0].HabitID != "kept" {
		t.Errorf("after delete alarms = %+v", alarms)
	}
	if entries, _ := p.GetEntries("kept"); len(entries) != 1 {
		t.Errorf("other habit lost its entries")
	}
}

func testSnoozes(t *testing.T, p storage.Provider) {
	if _, ok, err := p.GetSnooze("h1"); err != nil || ok {
		t.Fatalf("GetSnooze() on empty store = %v, %v", ok, err)
	}

	want := models.Snooze{HabitID: "h1", Until: 1700000000000, Day: 19675, HasDay: true}
	if err := p.SaveSnooze(want); err != nil {
		t.Fatalf("SaveSnooze() error = %v", err)
	}
	got, ok, err := p.GetSnooze("h1")
	if err != nil || !ok {
		t.Fatalf("GetSnooze() = %v, %v", ok, err)
	}
	if got != want {
		t.Errorf("GetSnooze() = %+v, want %+v", got, want)
	}

	noDay := models.Snooze{HabitID: "h1", Until: 1700000600000}
	if err := p.SaveSnooze(noDay); err != nil {
		t.Fatalf("SaveSnooze() overwrite error = %v", err)
	}
	if got, _, _ = p.GetSnooze("h1"); got != noDay {
		t.Errorf("GetSnooze() after overwrite = %+v, want %+v", got, noDay)
	}

	if err := p.DeleteSnooze("h1"); err != nil {
		t.Fatalf("DeleteSnooze() error = %v", err)
	}
	if _, ok, _ := p.GetSnooze("h1"); ok {
		t.Error("snooze still present after delete")
	}
}

func testAlarms(t *testing.T, p storage.Provider) {
	alarms := []models.Alarm{
		{HabitID: "late", FireAt: 3000, Day: 3, CreatedAt: created},
		{HabitID: "early", FireAt: 1000, Day: 1, CreatedAt: created},
		{HabitID: "mid", FireAt: 2000, Day: 2, CreatedAt: created},
	}
	for _, a := range alarms {
		if err := p.SaveAlarm(a); err != nil {
			t.Fatalf("SaveAlarm() error = %v", err)
		}
	}
	// one pending alarm per habit
	if err := p.SaveAlarm(models.Alarm{HabitID: "mid", FireAt: 2500, Day: 2, CreatedAt: created}); err != nil {
		t.Fatalf("SaveAlarm() replace error = %v", err)
	}

	all, err := p.GetAlarms()
	if err != nil {
		t.Fatalf("GetAlarms() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d alarms, want 3", len(all))
	}

	due, err := p.GetDueAlarms(2500)
	if err != nil {
		t.Fatalf("GetDueAlarms() error = %v", err)
	}
	for i := range due {
		if !due[i].CreatedAt.Equal(created) {
			t.Errorf("alarm %s created_at = %v, want %v", due[i].HabitID, due[i].CreatedAt, created)
		}
		due[i].CreatedAt = created
	}
	want := []models.Alarm{
		{HabitID: "early", FireAt: 1000, Day: 1, CreatedAt: created},
		{HabitID: "mid", FireAt: 2500, Day: 2, CreatedAt: created},
	}
	if !reflect.DeepEqual(due, want) {
		t.Errorf("GetDueAlarms() = %+v, want %+v", due, want)
	}

	if err := p.DeleteAlarm("early"); err != nil {
		t.Fatalf("DeleteAlarm() error = %v", err)
	}
	if due, _ = p.GetDueAlarms(2500); len(due) != 1 {
		t.Errorf("after delete %d alarms due, want 1", len(due))
	}
}

// sameTime replaces d.CreatedAt with an equal instant so DeepEqual ignores
// the location representation chosen by the driver.
func sameTime(d models.HabitData, t time.Time) models.HabitData {
	if d.CreatedAt.Equal(t) {
		d.CreatedAt = t
	}
	return d
}
