package models

import (
	"reflect"
	"testing"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

func streakLengths(streaks []Streak) []int {
	lengths := make([]int, len(streaks))
	for i, s := range streaks {
		lengths[i] = s.Length()
	}
	return lengths
}

func TestBestStreaks(t *testing.T) {
	tests := []struct {
		name string
		freq Frequency
		want []int
	}{
		{"daily", Daily, []int{4, 3, 5, 6}},
		{"three times per week", ThreeTimesPerWeek, []int{31, 51, 8, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBooleanHabit(t, tt.freq, longHabitOffsets...)
			best, err := h.BestStreaks(4, today)
			if err != nil {
				t.Fatalf("BestStreaks() error = %v", err)
			}
			if got := streakLengths(best); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BestStreaks(4) lengths = %v, want %v", got, tt.want)
			}
			for i := 1; i < len(best); i++ {
				if best[i].End.IsNewerThan(best[i-1].End) {
					t.Errorf("BestStreaks() not ordered newest first: %v", best)
				}
			}
		})
	}
}

func TestStreaksThreeTimesPerWeek(t *testing.T) {
	h := newBooleanHabit(t, ThreeTimesPerWeek, longHabitOffsets...)
	got, err := h.Streaks(today)
	if err != nil {
		t.Fatalf("Streaks() error = %v", err)
	}
	want := []Streak{
		{Start: day(120), End: day(120)},
		{Start: day(109), End: day(102)},
		{Start: day(96), End: day(46)},
		{Start: day(30), End: day(0)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Streaks() = %v, want %v", got, want)
	}
}

func TestStreaksSkipAndUnknownBreakStreaks(t *testing.T) {
	offsets := make([]int, 21)
	for i := range offsets {
		offsets[i] = i
	}
	h := newBooleanHabit(t, Daily, offsets...)
	for _, o := range []int{5, 10, 11} {
		h.AddEntry(Entry{Timestamp: day(o), Value: EntrySkip})
	}
	h.RemoveEntry(day(15))

	got, err := h.Streaks(today)
	if err != nil {
		t.Fatalf("Streaks() error = %v", err)
	}
	want := []Streak{
		{Start: day(20), End: day(16)},
		{Start: day(14), End: day(12)},
		{Start: day(9), End: day(6)},
		{Start: day(4), End: day(0)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Streaks() = %v, want %v", got, want)
	}

	current, err := h.CurrentStreak(today)
	if err != nil {
		t.Fatalf("CurrentStreak() error = %v", err)
	}
	if current != 5 {
		t.Errorf("CurrentStreak() = %d, want 5", current)
	}
}

func TestStreaksCoverExactlyTheSuccessDays(t *testing.T) {
	h := newBooleanHabit(t, ThreeTimesPerWeek, longHabitOffsets...)
	streaks, err := h.Streaks(today)
	if err != nil {
		t.Fatalf("Streaks() error = %v", err)
	}
	covered := make(map[Timestamp]bool)
	for _, s := range streaks {
		for d := s.Start; !d.IsNewerThan(s.End); d++ {
			covered[d] = true
		}
	}
	for _, e := range h.ComputedEntries(day(130), today) {
		if IsSuccess(e.Value) != covered[e.Timestamp] {
			t.Errorf("day %s: success %v, covered %v", e.Timestamp, IsSuccess(e.Value), covered[e.Timestamp])
		}
	}
}

func TestStreaksIncrementalMatchesRebuild(t *testing.T) {
	h := newBooleanHabit(t, Daily, longHabitOffsets...)
	if err := h.Recompute(day(60)); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if err := h.Recompute(today); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	h.AddEntry(Entry{Timestamp: day(2), Value: EntryYesManual})
	h.AddEntry(Entry{Timestamp: day(55), Value: EntryYesManual})
	h.RemoveEntry(day(8))

	got, err := h.Streaks(today)
	if err != nil {
		t.Fatalf("Streaks() error = %v", err)
	}
	fresh := NewHabit("h2", h.Data())
	if err := fresh.LoadEntries(h.Entries()); err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	want, err := fresh.Streaks(today)
	if err != nil {
		t.Fatalf("Streaks() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("incremental streaks = %v, rebuild = %v", got, want)
	}
}

func TestGetBest(t *testing.T) {
	list := StreakList{streaks: []Streak{
		{Start: day(30), End: day(28)},
		{Start: day(20), End: day(18)},
		{Start: day(10), End: day(5)},
		{Start: day(2), End: day(2)},
	}}

	best, err := list.GetBest(2)
	if err != nil {
		t.Fatalf("GetBest() error = %v", err)
	}
	want := []Streak{{Start: day(10), End: day(5)}, {Start: day(20), End: day(18)}}
	if !reflect.DeepEqual(best, want) {
		t.Errorf("GetBest(2) = %v, want %v", best, want)
	}

	if best, err := list.GetBest(0); err != nil || len(best) != 0 {
		t.Errorf("GetBest(0) = %v, %v", best, err)
	}
	if _, err := list.GetBest(-1); !apperrors.IsInvalidArgument(err) {
		t.Errorf("GetBest(-1) error = %v, want invalid argument", err)
	}
	if best, _ := list.GetBest(10); len(best) != 4 {
		t.Errorf("GetBest(10) returned %d streaks, want 4", len(best))
	}
}

func TestStreakCompare(t *testing.T) {
	a := Streak{Start: day(10), End: day(8)}
	b := Streak{Start: day(5), End: day(3)}
	c := Streak{Start: day(20), End: day(10)}
	if a.CompareLonger(b) != -1 || b.CompareLonger(a) != 1 {
		t.Error("equal lengths should be ordered by end date")
	}
	if c.CompareLonger(b) != 1 {
		t.Error("longer streak should compare greater")
	}
	if a.CompareNewer(a) != 0 {
		t.Error("CompareNewer() of a streak with itself should be 0")
	}
}

func TestStreakListInvalidatedNewerThan(t *testing.T) {
	list := StreakList{streaks: []Streak{
		{Start: day(30), End: day(28)},
		{Start: day(20), End: day(18)},
		{Start: day(10), End: day(5)},
	}}
	got := list.invalidatedNewerThan(day(18)).GetAll()
	want := []Streak{{Start: day(30), End: day(28)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("invalidatedNewerThan() = %v, want %v", got, want)
	}
	if list.Len() != 3 {
		t.Error("invalidatedNewerThan() modified the receiver")
	}
}
