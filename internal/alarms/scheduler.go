// Package alarms persists reminder decisions and delivers the ones that are
// due.
package alarms

import (
	"fmt"

	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/scheduler"
	"github.com/julianstephens/habitloop/internal/storage"
)

// Scheduler stores one pending alarm per habit in the provider and the next
// refresh time in the settings.
type Scheduler struct {
	provider storage.Provider
	prefs    *preferences.Store
	clock    clock.Clock
}

var _ scheduler.SystemScheduler = (*Scheduler)(nil)

func NewScheduler(p storage.Provider, prefs *preferences.Store, c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.System{}
	}
	return &Scheduler{provider: p, prefs: prefs, clock: c}
}

func (s *Scheduler) ScheduleShowReminder(fireMillis int64, h *models.Habit, day models.Timestamp) error {
	alarm := models.Alarm{
		HabitID:   h.ID(),
		FireAt:    fireMillis,
		Day:       day,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.provider.SaveAlarm(alarm); err != nil {
		return fmt.Errorf("failed to save alarm: %w", err)
	}
	return nil
}

func (s *Scheduler) ScheduleWidgetUpdate(millis int64) error {
	if err := s.prefs.Update(func(settings *models.Settings) {
		settings.NextRefreshMs = millis
	}); err != nil {
		return fmt.Errorf("failed to save next refresh time: %w", err)
	}
	return nil
}

func (s *Scheduler) Log(component, msg string) {
	logger.Debug(msg, "component", component)
}
