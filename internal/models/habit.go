package models

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

type HabitType int

const (
	HabitBoolean HabitType = iota
	HabitNumerical
)

func (t HabitType) String() string {
	if t == HabitNumerical {
		return "numerical"
	}
	return "boolean"
}

func ParseHabitType(s string) (HabitType, error) {
	switch s {
	case "", "boolean", "yes-no":
		return HabitBoolean, nil
	case "numerical", "measurable":
		return HabitNumerical, nil
	}
	return HabitBoolean, apperrors.InvalidArgument("unknown habit type %q", s)
}

type TargetType int

const (
	TargetAtLeast TargetType = iota
	TargetAtMost
)

func (t TargetType) String() string {
	if t == TargetAtMost {
		return "at-most"
	}
	return "at-least"
}

func ParseTargetType(s string) (TargetType, error) {
	switch s {
	case "", "at-least", "atleast":
		return TargetAtLeast, nil
	case "at-most", "atmost":
		return TargetAtMost, nil
	}
	return TargetAtLeast, apperrors.InvalidArgument("unknown target type %q", s)
}

// HabitData is the user-editable part of a habit.
type HabitData struct {
	Name        string     `json:"name"`
	Question    string     `json:"question,omitempty"`
	Description string     `json:"description,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Color       int        `json:"color"`
	Position    int        `json:"position"`
	Type        HabitType  `json:"type"`
	Frequency   Frequency  `json:"frequency"`
	TargetType  TargetType `json:"target_type"`
	TargetValue float64    `json:"target_value"`
	Reminder    *Reminder  `json:"reminder,omitempty"`
	Archived    bool       `json:"archived"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Clone returns a deep copy of d.
func (d HabitData) Clone() HabitData {
	if d.Reminder != nil {
		r := *d.Reminder
		d.Reminder = &r
	}
	return d
}

func (d HabitData) IsNumerical() bool { return d.Type == HabitNumerical }

func (d HabitData) HasReminder() bool { return d.Reminder != nil }

func (d HabitData) scoringRule() scoringRule {
	return scoringRule{
		numerical:   d.IsNumerical(),
		atMost:      d.TargetType == TargetAtMost,
		targetValue: d.TargetValue,
	}
}

// sameScoring reports whether d and other derive identical entries and scores.
func (d HabitData) sameScoring(other HabitData) bool {
	return d.Type == other.Type &&
		d.Frequency.Reduce() == other.Frequency.Reduce() &&
		d.TargetType == other.TargetType &&
		d.TargetValue == other.TargetValue
}

// Habit is the aggregate of a habit's data, its recorded and computed
// entries, and the score and streak caches derived from them. All methods
// are safe for concurrent use.
type Habit struct {
	mu   sync.RWMutex
	id   string
	data HabitData

	original *EntryList
	computed *EntryList

	scores  ScoreList
	streaks StreakList

	// scores and streaks are valid through validThrough when valid is set.
	validThrough Timestamp
	valid        bool
}

func NewHabit(id string, data HabitData) *Habit {
	return &Habit{
		id:       id,
		data:     data.Clone(),
		original: NewEntryList(),
		computed: NewEntryList(),
	}
}

func (h *Habit) ID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// AssignID sets the id of a habit that has never been persisted.
func (h *Habit) AssignID(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id != "" && h.id != id {
		return apperrors.InvalidArgument("habit already has id %s", h.id)
	}
	h.id = id
	return nil
}

func (h *Habit) Data() HabitData {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data.Clone()
}

func (h *Habit) Name() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data.Name
}

// SetData replaces the habit data. Derived caches are dropped when the
// change affects how entries are scored.
func (h *Habit) SetData(data HabitData) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rescore := !h.data.sameScoring(data)
	h.data = data.Clone()
	if rescore {
		h.computed.RecomputeFrom(h.original, h.data.Frequency, h.data.IsNumerical())
		h.clearCachesLocked()
	}
}

// LoadEntries replaces every recorded entry, as done when loading a habit
// from storage. It reports ErrInconsistentState when entries holds more
// than one entry for the same day; the last one wins.
func (h *Habit) LoadEntries(entries []Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[Timestamp]bool, len(entries))
	var dup *Timestamp
	for _, e := range entries {
		if seen[e.Timestamp] && dup == nil {
			t := e.Timestamp
			dup = &t
		}
		seen[e.Timestamp] = true
	}
	h.original.replaceAll(entries)
	h.computed.RecomputeFrom(h.original, h.data.Frequency, h.data.IsNumerical())
	h.clearCachesLocked()
	if dup != nil {
		return apperrors.InconsistentState("habit %s has more than one entry on %s", h.id, *dup)
	}
	return nil
}

// Entry returns the recorded entry for t, UNKNOWN when there is none.
func (h *Habit) Entry(t Timestamp) Entry {
	return h.original.Get(t)
}

// ComputedEntry returns the derived entry for t, including YES_AUTO days.
func (h *Habit) ComputedEntry(t Timestamp) Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.computed.Get(t)
}

// Entries returns every recorded entry, newest first.
func (h *Habit) Entries() []Entry {
	return h.original.Known()
}

// WeekdayFrequency counts recorded successes per weekday for each month.
func (h *Habit) WeekdayFrequency() map[Timestamp][7]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.original.ComputeWeekdayFrequency(h.data.IsNumerical())
}

// ComputedEntries returns derived entries from `to` down to `from`.
func (h *Habit) ComputedEntries(from, to Timestamp) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.computed.GetByInterval(from, to)
}

// AddEntry records e, replacing any entry on the same day.
func (h *Habit) AddEntry(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.original.Add(e)
	h.entriesChangedLocked(e.Timestamp)
}

// RemoveEntry deletes the recorded entry for t and reports whether one existed.
func (h *Habit) RemoveEntry(t Timestamp) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.original.Remove(t) {
		return false
	}
	h.entriesChangedLocked(t)
	return true
}

func (h *Habit) entriesChangedLocked(day Timestamp) {
	before := h.computed.Known()
	next := NewEntryList()
	next.RecomputeFrom(h.original, h.data.Frequency, h.data.IsNumerical())
	earliest := earliestDifference(before, next.Known(), day)
	h.computed = next
	h.invalidateLocked(earliest)
}

// earliestDifference returns the oldest day on which the two entry sets
// disagree, bounded above by limit.
func earliestDifference(a, b []Entry, limit Timestamp) Timestamp {
	earliest := limit
	index := make(map[Timestamp]int, len(a))
	for _, e := range a {
		index[e.Timestamp] = e.Value
	}
	for _, e := range b {
		if v, ok := index[e.Timestamp]; !ok || v != e.Value {
			earliest = min(earliest, e.Timestamp)
		}
		delete(index, e.Timestamp)
	}
	for t := range index {
		earliest = min(earliest, t)
	}
	return earliest
}

func (h *Habit) invalidateLocked(t Timestamp) {
	h.scores = h.scores.invalidatedFrom(t)
	h.streaks = h.streaks.invalidatedNewerThan(t)
	if h.valid && !h.validThrough.IsOlderThan(t) {
		h.validThrough = t.Minus(1)
	}
}

func (h *Habit) clearCachesLocked() {
	h.scores = ScoreList{}
	h.streaks = StreakList{}
	h.valid = false
}

// Recompute brings the score and streak caches up to today. New caches are
// built aside and swapped in only on success.
func (h *Habit) Recompute(today Timestamp) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recomputeLocked(today)
}

// Rebuild drops every derived cache and recomputes it from the recorded entries.
func (h *Habit) Rebuild(today Timestamp) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	computed := NewEntryList()
	computed.RecomputeFrom(h.original, h.data.Frequency, h.data.IsNumerical())
	previous, prevScores, prevStreaks, prevValid, prevThrough := h.computed, h.scores, h.streaks, h.valid, h.validThrough
	h.computed = computed
	h.clearCachesLocked()
	if err := h.recomputeLocked(today); err != nil {
		h.computed, h.scores, h.streaks, h.valid, h.validThrough = previous, prevScores, prevStreaks, prevValid, prevThrough
		return err
	}
	return nil
}

func (h *Habit) recomputeLocked(today Timestamp) (err error) {
	if h.valid && h.validThrough == today {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.InconsistentState("recomputing habit %s: %v", h.id, r)
		}
	}()

	scores, streaks := h.scores, h.streaks
	if !h.valid {
		scores, streaks = ScoreList{}, StreakList{}
	} else if h.validThrough.IsNewerThan(today) {
		scores = scores.invalidatedFrom(today.Plus(1))
		streaks = streaks.invalidatedNewerThan(today.Plus(1))
	}

	known := h.computed.Known()
	if len(known) == 0 {
		h.scores, h.streaks = ScoreList{}, StreakList{}
		h.validThrough, h.valid = today, true
		return nil
	}
	oldest := known[len(known)-1].Timestamp

	newScores, err := scores.extended(h.data.scoringRule(), h.data.Frequency, h.computed, oldest, today)
	if err != nil {
		return err
	}

	var oldestSuccess Timestamp
	hasSuccess := false
	for i := len(known) - 1; i >= 0; i-- {
		if IsSuccess(known[i].Value) {
			oldestSuccess, hasSuccess = known[i].Timestamp, true
			break
		}
	}
	newStreaks := streaks.rebuilt(h.computed, oldestSuccess, hasSuccess, today)

	h.scores, h.streaks = newScores, newStreaks
	h.validThrough, h.valid = today, true
	return nil
}

// Verify checks the derived caches for states that can only come from a bug
// or corrupted storage.
func (h *Habit) Verify() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i, v := range h.scores.values {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return apperrors.InconsistentState("habit %s: score %v on %s outside [0,1]", h.id, v, h.scores.from.Plus(i))
		}
	}
	for i, s := range h.streaks.streaks {
		if s.End.IsOlderThan(s.Start) {
			return apperrors.InconsistentState("habit %s: streak %s..%s ends before it starts", h.id, s.Start, s.End)
		}
		if i > 0 && !h.streaks.streaks[i-1].End.Plus(1).IsOlderThan(s.Start) {
			return apperrors.InconsistentState("habit %s: streaks overlap or touch at %s", h.id, s.Start)
		}
	}
	return nil
}

// CurrentScore returns the score for today.
func (h *Habit) CurrentScore(today Timestamp) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.recomputeLocked(today); err != nil {
		return 0, err
	}
	return h.scores.Get(today).Value, nil
}

// Scores returns one score per day from `to` down to `from`.
func (h *Habit) Scores(from, to, today Timestamp) ([]Score, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.recomputeLocked(today); err != nil {
		return nil, err
	}
	return h.scores.GetByInterval(from, to), nil
}

// AllScores returns every computed score, newest first.
func (h *Habit) AllScores(today Timestamp) ([]Score, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.recomputeLocked(today); err != nil {
		return nil, err
	}
	return h.scores.GetAll(), nil
}

// Streaks returns every streak, oldest first.
func (h *Habit) Streaks(today Timestamp) ([]Streak, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.recomputeLocked(today); err != nil {
		return nil, err
	}
	return h.streaks.GetAll(), nil
}

// BestStreaks returns the limit longest streaks, newest first.
func (h *Habit) BestStreaks(limit int, today Timestamp) ([]Streak, error) {
	if limit < 0 {
		return nil, apperrors.InvalidArgument("streak limit must be non-negative, got %d", limit)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.recomputeLocked(today); err != nil {
		return nil, err
	}
	return h.streaks.GetBest(limit)
}

// CurrentStreak returns the length of the streak ending today, or zero.
func (h *Habit) CurrentStreak(today Timestamp) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.recomputeLocked(today); err != nil {
		return 0, err
	}
	if s, ok := h.streaks.NewestComputed(); ok && s.End == today {
		return s.Length(), nil
	}
	return 0, nil
}

// IsCompletedToday reports whether nothing more is expected on today.
// For boolean habits a SKIP counts as completed.
func (h *Habit) IsCompletedToday(today Timestamp) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	value := h.computed.Get(today).Value
	if !h.data.IsNumerical() {
		return value != EntryNo && value != EntryUnknown
	}
	strength, _ := h.data.scoringRule().strength(value)
	return strength == 1
}

func (h *Habit) String() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fmt.Sprintf("%s (%s)", h.data.Name, h.id)
}

// FormatValue renders an entry value in the unit of the habit.
func (d HabitData) FormatValue(value int) string {
	if !d.IsNumerical() {
		return ValueLabel(value)
	}
	if value < 0 {
		return "-"
	}
	q := float64(value) / constants.NumericalScale
	if d.Unit == "" {
		return fmt.Sprintf("%g", q)
	}
	return fmt.Sprintf("%g %s", q, d.Unit)
}
