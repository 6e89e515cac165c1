package models

import (
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/habitloop/internal/constants"
)

// EntryList holds at most one Entry per day for a single habit.
// It is safe for concurrent use.
type EntryList struct {
	mu      sync.RWMutex
	entries map[Timestamp]Entry
}

func NewEntryList() *EntryList {
	return &EntryList{entries: make(map[Timestamp]Entry)}
}

// Get returns the entry for t, or an UNKNOWN entry when none was recorded.
func (l *EntryList) Get(t Timestamp) Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[t]; ok {
		return e
	}
	return Entry{Timestamp: t, Value: EntryUnknown}
}

// GetByInterval returns one entry per day from `to` down to `from`, newest first.
func (l *EntryList) GetByInterval(from, to Timestamp) []Entry {
	if from.IsNewerThan(to) {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]Entry, 0, from.DaysUntil(to)+1)
	for current := to; current >= from; current-- {
		if e, ok := l.entries[current]; ok {
			result = append(result, e)
		} else {
			result = append(result, Entry{Timestamp: current, Value: EntryUnknown})
		}
	}
	return result
}

// Add inserts e, replacing any entry on the same day.
func (l *EntryList) Add(e Entry) {
	l.mu.Lock()
	l.entries[e.Timestamp] = e
	l.mu.Unlock()
}

// Remove deletes the entry for t and reports whether one existed.
func (l *EntryList) Remove(t Timestamp) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[t]
	delete(l.entries, t)
	return ok
}

// Known returns every recorded entry, newest first.
func (l *EntryList) Known() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})
	return result
}

func (l *EntryList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *EntryList) Clear() {
	l.mu.Lock()
	l.entries = make(map[Timestamp]Entry)
	l.mu.Unlock()
}

// replaceAll swaps the content of the list in one step.
func (l *EntryList) replaceAll(entries []Entry) {
	m := make(map[Timestamp]Entry, len(entries))
	for _, e := range entries {
		m[e.Timestamp] = e
	}
	l.mu.Lock()
	l.entries = m
	l.mu.Unlock()
}

// RecomputeFrom replaces the content of l with entries derived from original.
// Numerical habits are copied. Boolean habits receive YES_AUTO entries on the
// days covered by a completed frequency window.
func (l *EntryList) RecomputeFrom(original *EntryList, freq Frequency, isNumerical bool) {
	known := original.Known()
	if isNumerical {
		l.replaceAll(known)
		return
	}
	intervals := buildIntervals(freq, known)
	snapIntervalsTogether(intervals)
	computed := buildEntriesFromIntervals(known, intervals)
	filtered := computed[:0]
	for _, e := range computed {
		if e.Value != EntryUnknown || e.Notes != "" {
			filtered = append(filtered, e)
		}
	}
	l.replaceAll(filtered)
}

// Interval is a window in which the frequency quota was met.
type Interval struct {
	Begin  Timestamp
	Center Timestamp
	End    Timestamp
}

func (i Interval) Length() int { return i.Begin.DaysUntil(i.End) + 1 }

// buildIntervals finds every window of freq.Denominator days starting on a
// YES_MANUAL entry that contains freq.Numerator YES_MANUAL entries.
// entries must be sorted newest first; the result is newest first too.
func buildIntervals(freq Frequency, entries []Entry) []Interval {
	var filtered []Entry
	for _, e := range entries {
		if e.Value == EntryYesManual {
			filtered = append(filtered, e)
		}
	}
	num, den := freq.Numerator, freq.Denominator
	if num < 1 {
		return nil
	}
	var intervals []Interval
	for i := num - 1; i < len(filtered); i++ {
		begin := filtered[i].Timestamp
		center := filtered[i-num+1].Timestamp
		size := den
		if den == 30 || den == 31 {
			if begin.dayOfMonth() == begin.monthLength() {
				size = begin.Plus(1).monthLength()
			} else {
				size = begin.monthLength()
			}
		}
		if begin.DaysUntil(center) < size {
			intervals = append(intervals, Interval{Begin: begin, Center: center, End: begin.Plus(size - 1)})
		}
	}
	return intervals
}

// snapIntervalsTogether slides each interval after the newest one back into
// the past so that gaps between consecutive windows disappear.
func snapIntervalsTogether(intervals []Interval) {
	for i := 1; i < len(intervals); i++ {
		curr := intervals[i]
		next := intervals[i-1]
		gapNextToCurrent := next.Begin.DaysUntil(curr.End)
		gapCenterToEnd := curr.Center.DaysUntil(curr.End)
		if gapNextToCurrent >= 0 {
			shift := min(gapCenterToEnd, gapNextToCurrent+1)
			intervals[i] = Interval{
				Begin:  curr.Begin.Minus(shift),
				Center: curr.Center,
				End:    curr.End.Minus(shift),
			}
		}
	}
}

// buildEntriesFromIntervals returns one entry per day covering original and
// intervals, newest first. Days inside an interval become YES_AUTO; recorded
// entries are copied over, and YES_MANUAL and SKIP always win.
func buildEntriesFromIntervals(original []Entry, intervals []Interval) []Entry {
	if len(original) == 0 {
		return nil
	}
	from, to := original[0].Timestamp, original[0].Timestamp
	for _, e := range original {
		from = min(from, e.Timestamp)
		to = max(to, e.Timestamp)
	}
	for _, iv := range intervals {
		from = min(from, iv.Begin)
		to = max(to, iv.End)
	}

	result := make([]Entry, from.DaysUntil(to)+1)
	for i := range result {
		result[i] = Entry{Timestamp: to.Minus(i), Value: EntryUnknown}
	}
	for _, iv := range intervals {
		for current := iv.End; current >= iv.Begin; current-- {
			result[current.DaysUntil(to)] = Entry{Timestamp: current, Value: EntryYesAuto}
		}
	}
	for _, e := range original {
		offset := e.Timestamp.DaysUntil(to)
		if result[offset].Value == EntryUnknown || e.Value == EntrySkip || e.Value == EntryYesManual {
			result[offset] = e
		}
	}
	return result
}

// GroupedSum totals entries per truncated period, newest period first.
// Boolean YES_MANUAL counts as constants.NumericalScale; SKIP and negative
// values count as zero.
func GroupedSum(entries []Entry, field TruncateField, firstWeekday time.Weekday, isNumerical bool) []Entry {
	return groupBy(entries, field, firstWeekday, func(e Entry) int {
		if isNumerical {
			if e.Value == EntrySkip || e.Value < 0 {
				return 0
			}
			return e.Value
		}
		if e.Value == EntryYesManual {
			return constants.NumericalScale
		}
		return 0
	})
}

// CountSkippedDays counts SKIP entries per truncated period, newest period first.
func CountSkippedDays(entries []Entry, field TruncateField, firstWeekday time.Weekday) []Entry {
	return groupBy(entries, field, firstWeekday, func(e Entry) int {
		if e.Value == EntrySkip {
			return 1
		}
		return 0
	})
}

func groupBy(entries []Entry, field TruncateField, firstWeekday time.Weekday, value func(Entry) int) []Entry {
	sums := make(map[Timestamp]int)
	for _, e := range entries {
		sums[e.Timestamp.Truncate(field, firstWeekday)] += value(e)
	}
	result := make([]Entry, 0, len(sums))
	for t, v := range sums {
		result = append(result, Entry{Timestamp: t, Value: v})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})
	return result
}

// ComputeWeekdayFrequency counts successes per weekday for each month. The
// key is the first day of the month; index 0 of the array is Sunday.
func (l *EntryList) ComputeWeekdayFrequency(isNumerical bool) map[Timestamp][7]int {
	result := make(map[Timestamp][7]int)
	for _, e := range l.Known() {
		month := e.Timestamp.Truncate(TruncateMonth, time.Sunday)
		counts := result[month]
		wd := e.Timestamp.Weekday()
		if isNumerical {
			counts[wd] += e.Value
		} else if e.Value == EntryYesManual {
			counts[wd]++
		}
		result[month] = counts
	}
	return result
}
