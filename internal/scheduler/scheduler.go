// Package scheduler decides when each habit's reminder fires and hands the
// result to a SystemScheduler.
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/commands"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/observability"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/storage"
	"github.com/julianstephens/habitloop/internal/utils"
)

const component = "ReminderScheduler"

// SystemScheduler delivers scheduling decisions to the platform. Scheduling
// a habit again replaces its pending reminder.
type SystemScheduler interface {
	ScheduleShowReminder(fireMillis int64, habit *models.Habit, day models.Timestamp) error
	ScheduleWidgetUpdate(millis int64) error
	Log(component, msg string)
}

// SnoozeStore keeps at most one snooze per habit. storage.Provider
// implements it.
type SnoozeStore interface {
	GetSnooze(habitID string) (models.Snooze, bool, error)
	SaveSnooze(models.Snooze) error
	DeleteSnooze(habitID string) error
}

// Subscriber is the part of commands.Runner the scheduler listens on.
type Subscriber interface {
	AddListener(commands.Listener)
	RemoveListener(commands.Listener)
}

type Options struct {
	Clock clock.Clock
	// Location is the user's timezone. Defaults to time.Local.
	Location *time.Location
	// DayStartOffsetMin shifts the start of a day for refresh scheduling.
	DayStartOffsetMin int
	Tracer            trace.Tracer
}

type ReminderScheduler struct {
	mu sync.Mutex

	runner  Subscriber
	habits  *storage.HabitStore
	sys     SystemScheduler
	snoozes SnoozeStore
	prefs   preferences.Preferences

	clock     clock.Clock
	loc       *time.Location
	dayOffset int
	tracer    trace.Tracer
}

var _ commands.Listener = (*ReminderScheduler)(nil)

func New(runner Subscriber, habits *storage.HabitStore, sys SystemScheduler, snoozes SnoozeStore, prefs preferences.Preferences, opts Options) *ReminderScheduler {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer
	}
	return &ReminderScheduler{
		runner:    runner,
		habits:    habits,
		sys:       sys,
		snoozes:   snoozes,
		prefs:     prefs,
		clock:     opts.Clock,
		loc:       opts.Location,
		dayOffset: opts.DayStartOffsetMin,
		tracer:    opts.Tracer,
	}
}

func (s *ReminderScheduler) log(msg string, keyvals ...interface{}) {
	logger.Debug(msg, append([]interface{}{"component", component}, keyvals...)...)
	if len(keyvals) > 0 {
		msg = fmt.Sprintf("%s %v", msg, keyvals)
	}
	s.sys.Log(component, msg)
}

// Schedule books the next reminder of h. Habits without a reminder and
// archived habits are left alone.
func (s *ReminderScheduler) Schedule(ctx context.Context, h *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule(ctx, h)
}

func (s *ReminderScheduler) schedule(ctx context.Context, h *models.Habit) error {
	data := h.Data()
	if !data.HasReminder() {
		s.log("Habit has no reminder, skipping", "habit", h.ID())
		return nil
	}
	if data.Archived {
		s.log("Habit is archived, skipping", "habit", h.ID())
		return nil
	}

	now := s.clock.Now()
	fire := utils.UpcomingTimeMillis(now, s.loc, data.Reminder.Hour, data.Reminder.Minute)
	day := utils.DayOf(fire, s.loc)

	snooze, ok, err := s.snoozes.GetSnooze(h.ID())
	if err != nil {
		return fmt.Errorf("failed to load snooze for habit %s: %w", h.ID(), err)
	}
	if ok {
		if snooze.Until > now.UnixMilli() {
			s.log("Snooze is in the future, accepting", "habit", h.ID(), "until", snooze.Until)
			fire = snooze.Until
			if snooze.HasDay {
				day = snooze.Day
			}
		} else {
			s.log("Snooze is in the past, discarding", "habit", h.ID(), "until", snooze.Until)
			if err := s.snoozes.DeleteSnooze(h.ID()); err != nil {
				return fmt.Errorf("failed to discard snooze for habit %s: %w", h.ID(), err)
			}
		}
	}

	return s.scheduleAtTime(ctx, h, fire, day)
}

// ScheduleAtTime books a reminder for h at fireMillis concerning day's
// checkmark, bypassing the regular time and any snooze.
func (s *ReminderScheduler) ScheduleAtTime(ctx context.Context, h *models.Habit, fireMillis int64, day models.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleAtTime(ctx, h, fireMillis, day)
}

func (s *ReminderScheduler) scheduleAtTime(ctx context.Context, h *models.Habit, fireMillis int64, day models.Timestamp) error {
	data := h.Data()
	if !data.HasReminder() || data.Archived {
		return nil
	}

	_, span := s.tracer.Start(ctx, "scheduler.Schedule", trace.WithAttributes(
		attribute.String("habit.id", h.ID()),
		attribute.Int64("reminder.fire_ms", fireMillis),
	))
	defer span.End()

	s.log("Scheduling reminder", "habit", h.ID(), "fire", fireMillis, "day", day.String())
	if err := s.sys.ScheduleShowReminder(fireMillis, h, day); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to schedule reminder for habit %s: %w", h.ID(), err)
	}
	observability.RemindersScheduled.Inc()
	return nil
}

// ScheduleAll schedules every unarchived habit with a reminder. A failing
// habit does not stop the others; the failures are returned together.
func (s *ReminderScheduler) ScheduleAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log("Scheduling all reminders")
	var errs []error
	for _, h := range s.habits.Matching(models.WithReminder, s.today()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.schedule(ctx, h); err != nil {
			logger.Warn("Failed to schedule reminder", "component", component, "habit", h.ID(), "error", err)
			observability.ReminderFailures.Inc()
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// ScheduleRefresh books the recompute that runs when the next day starts.
func (s *ReminderScheduler) ScheduleRefresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := utils.StartOfTomorrowWithOffset(s.clock.Now(), s.loc, s.dayOffset)
	s.log("Scheduling refresh", "at", next)
	return s.sys.ScheduleWidgetUpdate(next)
}

// Snooze postpones the reminder of h by minutes, or by the configured
// snooze interval when minutes is zero. The notification still refers to the
// day of the occurrence being snoozed.
func (s *ReminderScheduler) Snooze(ctx context.Context, h *models.Habit, minutes int) error {
	if minutes < 0 {
		return apperrors.InvalidArgument("snooze minutes must not be negative, got %d", minutes)
	}
	if minutes == 0 {
		minutes = s.prefs.SnoozeInterval()
	}
	data := h.Data()
	if !data.HasReminder() {
		return apperrors.InvalidArgument("habit %s has no reminder to snooze", h.ID())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	occurrence := utils.MostRecentTimeMillis(now, s.loc, data.Reminder.Hour, data.Reminder.Minute)
	snooze := models.Snooze{
		HabitID: h.ID(),
		Until:   now.UnixMilli() + int64(minutes)*int64(time.Minute/time.Millisecond),
		Day:     utils.DayOf(occurrence, s.loc),
		HasDay:  true,
	}
	if err := s.snoozes.SaveSnooze(snooze); err != nil {
		return fmt.Errorf("failed to save snooze for habit %s: %w", h.ID(), err)
	}
	s.log("Snoozed reminder", "habit", h.ID(), "until", snooze.Until)
	return s.schedule(ctx, h)
}

// OnCommandExecuted reschedules every reminder after commands that may
// change reminder timing.
func (s *ReminderScheduler) OnCommandExecuted(cmd commands.Command, _ string) {
	switch cmd.(type) {
	case *commands.CreateRepetition, *commands.ToggleRepetition, *commands.ChangeHabitColor:
		return
	case *commands.CreateHabit, *commands.EditHabit, *commands.DeleteHabits,
		*commands.ArchiveHabits, *commands.UnarchiveHabits, *commands.ReorderHabit:
	default:
		logger.Warn("Unknown command, rescheduling anyway", "component", component, "command", fmt.Sprintf("%T", cmd))
	}
	if err := s.ScheduleAll(context.Background()); err != nil {
		logger.Error("Failed to reschedule reminders", "component", component, "error", err)
	}
}

func (s *ReminderScheduler) StartListening() {
	s.runner.AddListener(s)
}

func (s *ReminderScheduler) StopListening() {
	s.runner.RemoveListener(s)
}

func (s *ReminderScheduler) HasHabitsWithReminders() bool {
	return len(s.habits.Matching(models.WithReminder, s.today())) > 0
}

func (s *ReminderScheduler) today() models.Timestamp {
	return utils.TodayWithOffset(s.clock.Now(), s.loc, s.dayOffset)
}
