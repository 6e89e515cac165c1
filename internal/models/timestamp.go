package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitloop/internal/constants"
)

const (
	DayLength    = 24 * time.Hour
	dayMillis    = int64(DayLength / time.Millisecond)
	secondsByDay = int64(DayLength / time.Second)
)

// Timestamp is a whole day, counted in days since 1970-01-01 and aligned to
// UTC midnight.
type Timestamp int64

// TruncateField selects the calendar unit used by Timestamp.Truncate.
type TruncateField int

const (
	TruncateDay TruncateField = iota
	TruncateWeek
	TruncateMonth
	TruncateQuarter
	TruncateYear
)

// TimestampFromUnixMilli returns the day containing the given UTC instant.
func TimestampFromUnixMilli(ms int64) Timestamp {
	days := ms / dayMillis
	if ms%dayMillis < 0 {
		days--
	}
	return Timestamp(days)
}

// TimestampFromTime returns the day matching the wall date of t in its own location.
func TimestampFromTime(t time.Time) Timestamp {
	y, m, d := t.Date()
	return TimestampFromDate(y, m, d)
}

func TimestampFromDate(year int, month time.Month, day int) Timestamp {
	return Timestamp(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsByDay)
}

// ParseTimestamp parses a YYYY-MM-DD date.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return TimestampFromTime(t), nil
}

func (t Timestamp) Plus(days int) Timestamp  { return t + Timestamp(days) }
func (t Timestamp) Minus(days int) Timestamp { return t - Timestamp(days) }

// DaysUntil returns the number of days from t to other, negative when other is older.
func (t Timestamp) DaysUntil(other Timestamp) int { return int(other - t) }

func (t Timestamp) IsOlderThan(other Timestamp) bool { return t < other }
func (t Timestamp) IsNewerThan(other Timestamp) bool { return t > other }

// Compare returns -1, 0 or 1.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t < other:
		return -1
	case t > other:
		return 1
	}
	return 0
}

// ToTime returns midnight UTC of the day.
func (t Timestamp) ToTime() time.Time {
	return time.Unix(int64(t)*secondsByDay, 0).UTC()
}

func (t Timestamp) UnixMilli() int64 { return int64(t) * dayMillis }

func (t Timestamp) Weekday() time.Weekday { return t.ToTime().Weekday() }

func (t Timestamp) String() string { return t.ToTime().Format(constants.DateFormat) }

// Truncate returns the first day of the unit containing t. Weeks start on firstWeekday.
func (t Timestamp) Truncate(field TruncateField, firstWeekday time.Weekday) Timestamp {
	date := t.ToTime()
	switch field {
	case TruncateWeek:
		diff := (int(date.Weekday()) - int(firstWeekday) + 7) % 7
		return t.Minus(diff)
	case TruncateMonth:
		return TimestampFromDate(date.Year(), date.Month(), 1)
	case TruncateQuarter:
		month := ((date.Month()-1)/3)*3 + 1
		return TimestampFromDate(date.Year(), month, 1)
	case TruncateYear:
		return TimestampFromDate(date.Year(), time.January, 1)
	default:
		return t
	}
}

// monthLength returns the number of days in the month containing t.
func (t Timestamp) monthLength() int {
	date := t.ToTime()
	return time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (t Timestamp) dayOfMonth() int { return t.ToTime().Day() }
