package models

import (
	"sort"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

// Streak is a maximal run of consecutive successful days, both ends included.
type Streak struct {
	Start Timestamp `json:"start"`
	End   Timestamp `json:"end"`
}

func (s Streak) Length() int { return s.Start.DaysUntil(s.End) + 1 }

// CompareLonger orders by length, then by end date.
func (s Streak) CompareLonger(other Streak) int {
	if s.Length() != other.Length() {
		if s.Length() < other.Length() {
			return -1
		}
		return 1
	}
	return s.CompareNewer(other)
}

// CompareNewer orders by end date.
func (s Streak) CompareNewer(other Streak) int {
	return s.End.Compare(other.End)
}

// StreakList holds disjoint streaks sorted oldest first. Like ScoreList it is
// a value type; mutating operations return a new list.
type StreakList struct {
	streaks []Streak
}

func (l StreakList) Len() int { return len(l.streaks) }

// GetAll returns a copy of the streaks, oldest first.
func (l StreakList) GetAll() []Streak {
	return append([]Streak(nil), l.streaks...)
}

// GetBest returns the limit longest streaks, newest first.
func (l StreakList) GetBest(limit int) ([]Streak, error) {
	if limit < 0 {
		return nil, apperrors.InvalidArgument("streak limit must be non-negative, got %d", limit)
	}
	streaks := l.GetAll()
	sort.SliceStable(streaks, func(i, j int) bool {
		return streaks[i].CompareLonger(streaks[j]) > 0
	})
	streaks = streaks[:min(limit, len(streaks))]
	sort.SliceStable(streaks, func(i, j int) bool {
		return streaks[i].CompareNewer(streaks[j]) > 0
	})
	return streaks, nil
}

// NewestComputed returns the most recent streak, if any.
func (l StreakList) NewestComputed() (Streak, bool) {
	if len(l.streaks) == 0 {
		return Streak{}, false
	}
	return l.streaks[len(l.streaks)-1], true
}

// invalidatedNewerThan drops every streak ending on or after t.
func (l StreakList) invalidatedNewerThan(t Timestamp) StreakList {
	keep := 0
	for keep < len(l.streaks) && l.streaks[keep].End.IsOlderThan(t) {
		keep++
	}
	if keep == len(l.streaks) {
		return l
	}
	return StreakList{streaks: l.streaks[:keep:keep]}
}

// rebuilt recomputes the streaks from the start of the newest cached streak,
// or from oldestSuccess when none is cached, up to today.
func (l StreakList) rebuilt(computed *EntryList, oldestSuccess Timestamp, hasSuccess bool, today Timestamp) StreakList {
	kept := l.streaks
	beginning := oldestSuccess
	if newest, ok := l.NewestComputed(); ok {
		beginning = newest.Start
		kept = l.streaks[:len(l.streaks)-1]
	} else if !hasSuccess {
		return StreakList{}
	}
	if beginning.IsNewerThan(today) {
		return l
	}

	streaks := make([]Streak, len(kept), len(kept)+4)
	copy(streaks, kept)
	streaks = append(streaks, streaksFromEntries(beginning, computed.GetByInterval(beginning, today))...)
	return StreakList{streaks: streaks}
}

// streaksFromEntries walks days (newest first, the oldest being beginning)
// from oldest to newest and pairs up the success transitions.
func streaksFromEntries(beginning Timestamp, days []Entry) []Streak {
	var streaks []Streak
	current := beginning
	lastSuccessful := beginning
	start := beginning
	inStreak := false

	for i := len(days) - 1; i >= 0; i-- {
		success := IsSuccess(days[i].Value)
		if success {
			lastSuccessful = current
		}
		if inStreak && !success {
			streaks = append(streaks, Streak{Start: start, End: lastSuccessful})
			inStreak = false
		}
		if !inStreak && success {
			start = current
			inStreak = true
		}
		current = current.Plus(1)
	}
	if inStreak {
		streaks = append(streaks, Streak{Start: start, End: lastSuccessful})
	}
	return streaks
}
