package habits

import (
	"testing"
	"time"

	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/clock"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage/memory"
)

// wednesday 2024-03-06 09:00 UTC
var now = time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC)

func newContext(t *testing.T) *cli.Context {
	t.Helper()
	p := memory.New()
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	settings, err := p.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	settings.Timezone = "UTC"
	if err := p.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	ctx := &cli.Context{Store: p, Clock: clock.Fixed{T: now}}
	if err := ctx.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func addHabit(t *testing.T, ctx *cli.Context, cmd HabitAddCmd) *models.Habit {
	t.Helper()
	if cmd.Days == "" {
		cmd.Days = "daily"
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add %q: %v", cmd.Name, err)
	}
	h, err := ctx.FindHabit(cmd.Name)
	if err != nil {
		t.Fatalf("FindHabit(%q) error = %v", cmd.Name, err)
	}
	return h
}

func ptr[T any](v T) *T { return &v }

func TestParseValue(t *testing.T) {
	boolean := models.HabitData{Name: "Run"}
	numerical := models.HabitData{Name: "Water", Type: models.HabitNumerical, TargetValue: 8}

	tests := []struct {
		name    string
		data    models.HabitData
		input   string
		want    int
		wantErr bool
	}{
		{"default is yes", boolean, "", models.EntryYesManual, false},
		{"yes", boolean, "Yes", models.EntryYesManual, false},
		{"no", boolean, "no", models.EntryNo, false},
		{"skip", boolean, "skip", models.EntrySkip, false},
		{"clear", boolean, "clear", models.EntryUnknown, false},
		{"bad boolean", boolean, "maybe", 0, true},
		{"quantity", numerical, "2.5", 2500, false},
		{"zero", numerical, "0", 0, false},
		{"clear numerical", numerical, "clear", models.EntryUnknown, false},
		{"missing quantity", numerical, "", 0, true},
		{"negative quantity", numerical, "-1", 0, true},
		{"not a number", numerical, "lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.data, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAddHabit(t *testing.T) {
	ctx := newContext(t)
	h := addHabit(t, ctx, HabitAddCmd{Name: "Water", HabitFlags: HabitFlags{
		Type:      ptr("numerical"),
		Unit:      ptr("glasses"),
		Target:    ptr(8.0),
		Frequency: ptr("daily"),
	}})

	data := h.Data()
	if !data.IsNumerical() || data.Unit != "glasses" || data.TargetValue != 8 {
		t.Errorf("unexpected habit data: %+v", data)
	}
	if err := (&HabitAddCmd{Name: "water", Days: "daily"}).Run(ctx); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if err := (&HabitAddCmd{Name: "Bad", Days: "daily", HabitFlags: HabitFlags{Frequency: ptr("5/2")}}).Run(ctx); !apperrors.IsInvalidArgument(err) {
		t.Errorf("expected invalid frequency, got %v", err)
	}
}

func TestEditHabit(t *testing.T) {
	ctx := newContext(t)
	h := addHabit(t, ctx, HabitAddCmd{Name: "Gym"})

	cmd := &HabitEditCmd{Habit: "gym", Name: "Gym session", HabitFlags: HabitFlags{Frequency: ptr("6/14")}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("edit: %v", err)
	}
	data := h.Data()
	if data.Name != "Gym session" {
		t.Errorf("Name = %q", data.Name)
	}
	if data.Frequency != (models.Frequency{Numerator: 3, Denominator: 7}) {
		t.Errorf("Frequency = %+v, want 3/7", data.Frequency)
	}
}

func TestMarkAndToggle(t *testing.T) {
	ctx := newContext(t)
	h := addHabit(t, ctx, HabitAddCmd{Name: "Run"})
	today := ctx.Today()

	if err := (&HabitMarkCmd{Habit: "Run", Date: "yesterday", Value: "skip", Notes: "rain"}).Run(ctx); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if e := h.Entry(today.Minus(1)); e.Value != models.EntrySkip || e.Notes != "rain" {
		t.Errorf("yesterday = %+v, want skip with notes", e)
	}

	toggle := &HabitToggleCmd{Habit: "Run"}
	for _, want := range []int{models.EntryYesManual, models.EntryNo, models.EntryYesManual} {
		if err := toggle.Run(ctx); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if got := h.Entry(today).Value; got != want {
			t.Errorf("after toggle value = %d, want %d", got, want)
		}
	}

	if err := (&HabitMarkCmd{Habit: "Run", Value: "clear"}).Run(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := h.Entry(today).Value; got != models.EntryUnknown {
		t.Errorf("cleared value = %d", got)
	}

	if err := (&HabitMarkCmd{Habit: "Run", Date: "2030-01-01"}).Run(ctx); !apperrors.IsInvalidArgument(err) {
		t.Errorf("expected future date to be rejected, got %v", err)
	}
	if err := (&HabitMarkCmd{Habit: "Walk"}).Run(ctx); !apperrors.IsNotFound(err) {
		t.Errorf("expected unknown habit to be not found, got %v", err)
	}
}

func TestArchiveAndDelete(t *testing.T) {
	ctx := newContext(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read"})
	addHabit(t, ctx, HabitAddCmd{Name: "Write"})

	if err := (&HabitArchiveCmd{Habits: []string{"Read"}}).Run(ctx); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if got := len(ctx.Habits.Matching(models.Active, ctx.Today())); got != 1 {
		t.Errorf("active habits = %d, want 1", got)
	}
	if err := (&HabitUnarchiveCmd{Habits: []string{"Read"}}).Run(ctx); err != nil {
		t.Fatalf("unarchive: %v", err)
	}

	original := confirm
	t.Cleanup(func() { confirm = original })

	confirm = func(string) (bool, error) { return false, nil }
	if err := (&HabitDeleteCmd{Habits: []string{"Read"}}).Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ctx.Habits.Len() != 2 {
		t.Fatalf("cancelled delete removed a habit")
	}

	confirm = func(string) (bool, error) { return true, nil }
	if err := (&HabitDeleteCmd{Habits: []string{"Read"}}).Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := (&HabitDeleteCmd{Habits: []string{"Write"}, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete --yes: %v", err)
	}
	if ctx.Habits.Len() != 0 {
		t.Errorf("habits left = %d", ctx.Habits.Len())
	}
}

func TestColorAndReorder(t *testing.T) {
	ctx := newContext(t)
	a := addHabit(t, ctx, HabitAddCmd{Name: "A"})
	b := addHabit(t, ctx, HabitAddCmd{Name: "B"})
	addHabit(t, ctx, HabitAddCmd{Name: "C"})

	if err := (&HabitColorCmd{Color: 4, Habits: []string{"A", "B"}}).Run(ctx); err != nil {
		t.Fatalf("color: %v", err)
	}
	if a.Data().Color != 4 || b.Data().Color != 4 {
		t.Errorf("colors = %d, %d", a.Data().Color, b.Data().Color)
	}

	if err := (&HabitReorderCmd{From: "C", To: "A"}).Run(ctx); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	var names []string
	for _, h := range ctx.Habits.All() {
		names = append(names, h.Name())
	}
	if got := names; len(got) != 3 || got[0] != "C" || got[1] != "A" || got[2] != "B" {
		t.Errorf("order = %v, want [C A B]", got)
	}
}

func TestRemindAndSnooze(t *testing.T) {
	ctx := newContext(t)
	h := addHabit(t, ctx, HabitAddCmd{Name: "Stretch", Remind: "08:00"})

	alarm, ok, err := nextAlarm(ctx, h.ID())
	if err != nil || !ok {
		t.Fatalf("nextAlarm() = %v, %v", ok, err)
	}
	// 08:00 has passed on the 6th, so the next reminder is on the 7th.
	if want := time.Date(2024, time.March, 7, 8, 0, 0, 0, time.UTC); !alarm.FireTime().Equal(want) {
		t.Errorf("fire time = %s, want %s", alarm.FireTime(), want)
	}

	if err := (&HabitSnoozeCmd{Habit: "Stretch", Minutes: 30}).Run(ctx); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	alarm, _, _ = nextAlarm(ctx, h.ID())
	if want := now.Add(30 * time.Minute); !alarm.FireTime().Equal(want) {
		t.Errorf("snoozed fire time = %s, want %s", alarm.FireTime(), want)
	}
	if alarm.Day != models.TimestampFromDate(2024, time.March, 6) {
		t.Errorf("snoozed day = %s", alarm.Day)
	}

	if err := (&HabitRemindSetCmd{Habit: "Stretch", Time: "21:30", Days: "weekdays"}).Run(ctx); err != nil {
		t.Fatalf("remind set: %v", err)
	}
	if r := h.Data().Reminder; r == nil || r.Hour != 21 || r.Minute != 30 {
		t.Errorf("reminder = %+v", r)
	}

	if err := (&HabitRemindClearCmd{Habit: "Stretch"}).Run(ctx); err != nil {
		t.Fatalf("remind clear: %v", err)
	}
	if _, ok, _ := nextAlarm(ctx, h.ID()); ok {
		t.Error("alarm left after clearing the reminder")
	}
	if err := (&HabitSnoozeCmd{Habit: "Stretch"}).Run(ctx); !apperrors.IsInvalidArgument(err) {
		t.Errorf("expected snooze without reminder to fail, got %v", err)
	}
}
