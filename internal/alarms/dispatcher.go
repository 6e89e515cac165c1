package alarms

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/constants"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/observability"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/scheduler"
	"github.com/julianstephens/habitloop/internal/storage"
)

// Notifier delivers a reminder text to the user.
type Notifier interface {
	Notify(text string) error
}

// Recomputer rebuilds derived habit state when a new day starts.
type Recomputer interface {
	RecomputeAll(ctx context.Context, today models.Timestamp) error
}

// lateAfter is how overdue an alarm must be before the message says so.
const lateAfter = 5 * time.Minute

type Options struct {
	Clock         clock.Clock
	RatePerMinute int
	Burst         int
	// DryRun sends messages without consuming alarms or rescheduling.
	DryRun bool
}

// Result counts what one dispatch pass did.
type Result struct {
	Sent      int
	Skipped   int
	Failed    int
	Removed   int
	Refreshed bool
}

type Dispatcher struct {
	provider   storage.Provider
	habits     *storage.HabitStore
	prefs      *preferences.Store
	reminders  *scheduler.ReminderScheduler
	recomputer Recomputer
	notifier   Notifier

	clock   clock.Clock
	limiter *rate.Limiter
	dryRun  bool
}

func NewDispatcher(habits *storage.HabitStore, prefs *preferences.Store, reminders *scheduler.ReminderScheduler, recomputer Recomputer, n Notifier, opts Options) *Dispatcher {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = constants.DefaultDispatchPerMin
	}
	if opts.Burst <= 0 {
		opts.Burst = constants.DefaultDispatchBurst
	}
	return &Dispatcher{
		provider:   habits.Provider(),
		habits:     habits,
		prefs:      prefs,
		reminders:  reminders,
		recomputer: recomputer,
		notifier:   n,
		clock:      opts.Clock,
		limiter:    rate.NewLimiter(perMinute(opts.RatePerMinute), opts.Burst),
		dryRun:     opts.DryRun,
	}
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

// SetRate changes the notification pace of a running dispatcher.
func (d *Dispatcher) SetRate(perMin, burst int) {
	if perMin > 0 {
		d.limiter.SetLimit(perMinute(perMin))
	}
	if burst > 0 {
		d.limiter.SetBurst(burst)
	}
}

// RunOnce handles the refresh alarm and every reminder alarm that is due.
func (d *Dispatcher) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	now := d.clock.Now()

	refreshed, err := d.refresh(ctx, now)
	if err != nil {
		return res, err
	}
	res.Refreshed = refreshed

	if !d.prefs.NotificationsEnabled() {
		logger.Debug("Notifications are disabled, leaving alarms pending")
		return res, nil
	}

	due, err := d.provider.GetDueAlarms(now.UnixMilli())
	if err != nil {
		return res, fmt.Errorf("failed to load due alarms: %w", err)
	}

	for _, alarm := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := d.deliver(ctx, alarm, now)
		if err != nil {
			return res, err
		}
		observability.AlarmsDispatched.WithLabelValues(outcome).Inc()
		switch outcome {
		case "sent":
			res.Sent++
		case "skipped":
			res.Skipped++
		case "failed":
			res.Failed++
		case "removed":
			res.Removed++
		}
	}
	return res, nil
}

func (d *Dispatcher) refresh(ctx context.Context, now time.Time) (bool, error) {
	next := d.prefs.Settings().NextRefreshMs
	if next == 0 {
		if d.dryRun {
			return false, nil
		}
		return false, d.reminders.ScheduleRefresh()
	}
	if next > now.UnixMilli() {
		return false, nil
	}
	if err := d.recomputer.RecomputeAll(ctx, d.prefs.Today(now)); err != nil {
		return false, fmt.Errorf("failed to recompute habits: %w", err)
	}
	if d.dryRun {
		return true, nil
	}
	return true, d.reminders.ScheduleRefresh()
}

func (d *Dispatcher) deliver(ctx context.Context, alarm models.Alarm, now time.Time) (string, error) {
	h, err := d.habits.Get(alarm.HabitID)
	if err != nil {
		return "", err
	}
	if h == nil {
		logger.Warn("Alarm for a missing habit, removing", "habit", alarm.HabitID)
		return "removed", d.consume(alarm)
	}

	data := h.Data()
	if !data.HasReminder() || data.Archived {
		logger.Debug("Habit no longer has an active reminder", "habit", h.ID())
		return "removed", d.consume(alarm)
	}

	outcome := "sent"
	switch {
	case !data.Reminder.Days.Contains(alarm.Day.Weekday()):
		logger.Debug("Reminder not active on this weekday", "habit", h.ID(), "day", alarm.Day.String())
		outcome = "skipped"
	case h.IsCompletedToday(alarm.Day):
		logger.Debug("Habit already completed", "habit", h.ID(), "day", alarm.Day.String())
		outcome = "skipped"
	default:
		if err := d.limiter.Wait(ctx); err != nil {
			return "", err
		}
		if err := d.notifier.Notify(Message(h, alarm, now)); err != nil {
			logger.Error("Failed to send notification", "habit", h.ID(), "error", err)
			outcome = "failed"
		}
	}

	if err := d.consume(alarm); err != nil {
		return "", err
	}
	if d.dryRun {
		return outcome, nil
	}
	if err := d.reminders.Schedule(ctx, h); err != nil {
		logger.Error("Failed to reschedule reminder", "habit", h.ID(), "error", err)
	}
	return outcome, nil
}

func (d *Dispatcher) consume(alarm models.Alarm) error {
	if d.dryRun {
		return nil
	}
	if err := d.provider.DeleteAlarm(alarm.HabitID); err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}
	return nil
}

// Message is the notification text for alarm.
func Message(h *models.Habit, alarm models.Alarm, now time.Time) string {
	data := h.Data()
	text := data.Question
	if text == "" {
		text = fmt.Sprintf("Time for %s", data.Name)
	}
	fire := alarm.FireTime()
	if now.Sub(fire) >= lateAfter {
		text = fmt.Sprintf("%s (%s)", text, humanize.RelTime(fire, now, "late", "early"))
	}
	return text
}

// Run calls RunOnce every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = constants.DefaultDispatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := d.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Error("Dispatch pass failed", "error", err)
		} else if res.Sent+res.Failed+res.Skipped+res.Removed > 0 {
			logger.Info("Dispatched alarms", "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed, "removed", res.Removed)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
