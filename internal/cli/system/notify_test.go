package system

import (
	"testing"
	"time"

	"github.com/julianstephens/habitloop/internal/alarms"
	"github.com/julianstephens/habitloop/internal/cli"
	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/commands"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/storage/memory"
)

type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) Notify(text string) error {
	n.sent = append(n.sent, text)
	return nil
}

// monday 2024-03-04 07:00 UTC
var notifyStart = time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC)

func setupNotifyContext(t *testing.T) (*cli.Context, *clock.Manual, *recordingNotifier) {
	t.Helper()
	p := memory.New()
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	settings, _ := p.GetSettings()
	settings.Timezone = "UTC"
	if err := p.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	c := clock.NewManual(notifyStart)
	ctx := &cli.Context{Store: p, Clock: c}
	if err := ctx.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { ctx.Close() })

	rec := &recordingNotifier{}
	prev := newNotifier
	newNotifier = func() alarms.Notifier { return rec }
	t.Cleanup(func() { newNotifier = prev })
	return ctx, c, rec
}

func addReminderHabit(t *testing.T, ctx *cli.Context, name string) string {
	t.Helper()
	cmd := &commands.CreateHabit{Data: models.HabitData{
		Name:      name,
		Question:  "Did you " + name + " today?",
		Frequency: models.Daily,
		Reminder:  &models.Reminder{Hour: 8, Minute: 0, Days: models.EveryDay},
	}}
	if err := ctx.Execute(cmd); err != nil {
		t.Fatalf("CreateHabit error = %v", err)
	}
	return cmd.HabitID
}

func alarmFor(t *testing.T, ctx *cli.Context, habitID string) (models.Alarm, bool) {
	t.Helper()
	all, err := ctx.Store.GetAlarms()
	if err != nil {
		t.Fatalf("GetAlarms() error = %v", err)
	}
	for _, a := range all {
		if a.HabitID == habitID {
			return a, true
		}
	}
	return models.Alarm{}, false
}

func TestNotifyCmd_SendsDueReminder(t *testing.T) {
	ctx, c, rec := setupNotifyContext(t)
	id := addReminderHabit(t, ctx, "stretch")

	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("NotifyCmd.Run() error = %v", err)
	}
	if len(rec.sent) != 0 {
		t.Fatalf("sent %v before the reminder time", rec.sent)
	}

	c.Set(notifyStart.Add(time.Hour + time.Minute))
	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("NotifyCmd.Run() error = %v", err)
	}
	if len(rec.sent) != 1 || rec.sent[0] != "Did you stretch today?" {
		t.Fatalf("sent = %v", rec.sent)
	}

	alarm, ok := alarmFor(t, ctx, id)
	want := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC).UnixMilli()
	if !ok || alarm.FireAt != want {
		t.Errorf("next alarm = %+v, %v; want fire at %d", alarm, ok, want)
	}

	// Running again does not repeat the notification.
	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("NotifyCmd.Run() error = %v", err)
	}
	if len(rec.sent) != 1 {
		t.Errorf("sent twice: %v", rec.sent)
	}
}

func TestNotifyCmd_DryRunLeavesAlarm(t *testing.T) {
	ctx, c, rec := setupNotifyContext(t)
	id := addReminderHabit(t, ctx, "read")
	before, ok := alarmFor(t, ctx, id)
	if !ok {
		t.Fatal("no alarm scheduled")
	}

	c.Set(notifyStart.Add(2 * time.Hour))
	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("NotifyCmd.Run() error = %v", err)
	}
	if len(rec.sent) != 0 {
		t.Errorf("dry run used the real notifier: %v", rec.sent)
	}
	after, ok := alarmFor(t, ctx, id)
	if !ok || after.FireAt != before.FireAt {
		t.Errorf("alarm changed by dry run: %+v -> %+v", before, after)
	}
}

func TestNotifyCmd_SkipsCompletedHabit(t *testing.T) {
	ctx, c, rec := setupNotifyContext(t)
	id := addReminderHabit(t, ctx, "walk")

	if err := ctx.Execute(&commands.CreateRepetition{HabitID: id, Day: ctx.Today(), Value: models.EntryYesManual}); err != nil {
		t.Fatalf("CreateRepetition error = %v", err)
	}

	c.Set(notifyStart.Add(90 * time.Minute))
	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("NotifyCmd.Run() error = %v", err)
	}
	if len(rec.sent) != 0 {
		t.Errorf("sent %v for a completed habit", rec.sent)
	}
}

func TestNotifyCmd_Disabled(t *testing.T) {
	ctx, c, rec := setupNotifyContext(t)
	id := addReminderHabit(t, ctx, "floss")
	if err := ctx.Prefs.Update(func(s *models.Settings) { s.NotificationsEnabled = false }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	c.Set(notifyStart.Add(2 * time.Hour))
	if err := (&NotifyCmd{}).Run(ctx); err != nil {
		t.Fatalf("NotifyCmd.Run() error = %v", err)
	}
	if len(rec.sent) != 0 {
		t.Errorf("sent %v with notifications disabled", rec.sent)
	}
	if _, ok := alarmFor(t, ctx, id); !ok {
		t.Error("alarm should stay pending while notifications are disabled")
	}
}
