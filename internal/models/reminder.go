package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

// WeekdayMask is a bit set of weekdays, bit 0 being Sunday.
type WeekdayMask uint8

const EveryDay WeekdayMask = 0x7f

func NewWeekdayMask(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, d := range days {
		m |= 1 << uint(d)
	}
	return m
}

func (m WeekdayMask) Contains(day time.Weekday) bool {
	return m&(1<<uint(day)) != 0
}

func (m WeekdayMask) Weekdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if m.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (m WeekdayMask) String() string {
	switch m {
	case EveryDay:
		return "daily"
	case 0:
		return "never"
	}
	var days []string
	for _, d := range m.Weekdays() {
		days = append(days, strings.ToLower(d.String()[:3]))
	}
	return strings.Join(days, ",")
}

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekdayMask parses "daily", "weekdays", "weekends" or a comma-separated
// list of weekday names or numbers (0=Sunday, 6=Saturday).
func ParseWeekdayMask(s string) (WeekdayMask, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "daily":
		return EveryDay, nil
	case "weekdays":
		return NewWeekdayMask(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday), nil
	case "weekends":
		return NewWeekdayMask(time.Saturday, time.Sunday), nil
	}

	var m WeekdayMask
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := weekdayNames[part]; ok {
			m |= NewWeekdayMask(wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return 0, apperrors.InvalidArgument("invalid weekday: %s", part)
		}
		m |= NewWeekdayMask(time.Weekday(num))
	}
	return m, nil
}

// Reminder is the daily notification time of a habit, in local wall time.
type Reminder struct {
	Hour   int         `json:"hour"`
	Minute int         `json:"minute"`
	Days   WeekdayMask `json:"days"`
}

// ParseReminder parses "HH:MM" and a weekday list into a Reminder.
func ParseReminder(clock string, days string) (Reminder, error) {
	t, err := time.Parse(constants.TimeFormat, strings.TrimSpace(clock))
	if err != nil {
		return Reminder{}, apperrors.InvalidArgument("invalid reminder time %q, expected HH:MM", clock)
	}
	mask, err := ParseWeekdayMask(days)
	if err != nil {
		return Reminder{}, err
	}
	r := Reminder{Hour: t.Hour(), Minute: t.Minute(), Days: mask}
	return r, r.Validate()
}

func (r Reminder) Validate() error {
	if r.Hour < 0 || r.Hour > 23 {
		return apperrors.InvalidArgument("reminder hour must be between 0 and 23, got %d", r.Hour)
	}
	if r.Minute < 0 || r.Minute > 59 {
		return apperrors.InvalidArgument("reminder minute must be between 0 and 59, got %d", r.Minute)
	}
	if r.Days == 0 || r.Days&^EveryDay != 0 {
		return apperrors.InvalidArgument("reminder needs at least one valid weekday")
	}
	return nil
}

func (r Reminder) TimeString() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

func (r Reminder) String() string {
	return r.TimeString() + " " + r.Days.String()
}

// Snooze postpones the reminder of a habit until Until (UTC milliseconds).
// Day is the checkmark day the postponed notification refers to.
type Snooze struct {
	HabitID string    `json:"habit_id"`
	Until   int64     `json:"until"`
	Day     Timestamp `json:"day"`
	HasDay  bool      `json:"has_day"`
}

// Alarm is a pending reminder notification recorded by the reminder scheduler.
type Alarm struct {
	HabitID   string    `json:"habit_id"`
	FireAt    int64     `json:"fire_at"`
	Day       Timestamp `json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Alarm) FireTime() time.Time { return time.UnixMilli(a.FireAt).UTC() }
