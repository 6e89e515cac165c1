package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitloop/internal/models"
)

const (
	minuteMillis = int64(time.Minute / time.Millisecond)
	hourMillis   = int64(time.Hour / time.Millisecond)
	dayMillis    = int64(models.DayLength / time.Millisecond)
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// offsetMillis returns the UTC offset of loc at the instant utcMillis.
func offsetMillis(utcMillis int64, loc *time.Location) int64 {
	_, offset := time.UnixMilli(utcMillis).In(loc).Zone()
	return int64(offset) * 1000
}

// RemoveTimezone converts a UTC instant into "local milliseconds": the wall
// clock reading in loc, expressed as if it were a UTC instant.
func RemoveTimezone(utcMillis int64, loc *time.Location) int64 {
	return utcMillis + offsetMillis(utcMillis, loc)
}

// ApplyTimezone is the inverse of RemoveTimezone away from DST transitions.
func ApplyTimezone(localMillis int64, loc *time.Location) int64 {
	diff := localMillis - offsetMillis(localMillis, loc)
	return localMillis - offsetMillis(diff, loc)
}

// LocalMillis returns the wall clock reading of t in loc as local milliseconds.
func LocalMillis(t time.Time, loc *time.Location) int64 {
	return RemoveTimezone(t.UnixMilli(), loc)
}

// StartOfDay truncates local milliseconds to midnight.
func StartOfDay(localMillis int64) int64 {
	return floorDiv(localMillis, dayMillis) * dayMillis
}

// StartOfDayWithOffset truncates local milliseconds to the start of the day
// when days begin offsetMin minutes after midnight.
func StartOfDayWithOffset(localMillis int64, offsetMin int) int64 {
	return StartOfDay(localMillis - int64(offsetMin)*minuteMillis)
}

// TodayWithOffset returns the current day for a user in loc whose day
// begins offsetMin minutes after midnight.
func TodayWithOffset(now time.Time, loc *time.Location, offsetMin int) models.Timestamp {
	return models.TimestampFromUnixMilli(StartOfDayWithOffset(LocalMillis(now, loc), offsetMin))
}

// DayOf returns the calendar day of the UTC instant utcMillis in loc.
func DayOf(utcMillis int64, loc *time.Location) models.Timestamp {
	return models.TimestampFromUnixMilli(RemoveTimezone(utcMillis, loc))
}

// StartOfTomorrowWithOffset returns, as a UTC instant, the moment the next
// day begins.
func StartOfTomorrowWithOffset(now time.Time, loc *time.Location, offsetMin int) int64 {
	start := StartOfDayWithOffset(LocalMillis(now, loc), offsetMin) + dayMillis + int64(offsetMin)*minuteMillis
	return ApplyTimezone(start, loc)
}

// UpcomingTimeMillis returns the next occurrence of hour:minute wall time in
// loc as a UTC instant: today if that time has not passed yet, else tomorrow.
func UpcomingTimeMillis(now time.Time, loc *time.Location, hour, minute int) int64 {
	local := LocalMillis(now, loc)
	candidate := StartOfDay(local) + int64(hour)*hourMillis + int64(minute)*minuteMillis
	if local > candidate {
		candidate += dayMillis
	}
	return ApplyTimezone(candidate, loc)
}

// MostRecentTimeMillis returns the latest occurrence of hour:minute wall time
// in loc at or before now, as a UTC instant.
func MostRecentTimeMillis(now time.Time, loc *time.Location, hour, minute int) int64 {
	local := LocalMillis(now, loc)
	candidate := StartOfDay(local) + int64(hour)*hourMillis + int64(minute)*minuteMillis
	if candidate > local {
		candidate -= dayMillis
	}
	return ApplyTimezone(candidate, loc)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
