package models

import (
	"math"

	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

// Score is the adherence value of a habit on one day, in [0, 1].
type Score struct {
	Timestamp Timestamp `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ComputeScore applies one step of the decay recurrence. A daily habit halves
// its distance to the checkmark strength every ScoreHalfLifeDays days.
func ComputeScore(frequency, previous, strength float64) float64 {
	multiplier := math.Pow(0.5, frequency/constants.ScoreHalfLifeDays)
	return previous*multiplier + strength*(1-multiplier)
}

// scoringRule decides the checkmark strength of a computed entry value.
type scoringRule struct {
	numerical   bool
	atMost      bool
	targetValue float64
}

// strength returns the checkmark strength of value and whether the day is
// skipped, in which case the previous score carries over.
func (r scoringRule) strength(value int) (float64, bool) {
	if value == EntrySkip {
		return 0, true
	}
	if !r.numerical {
		if IsSuccess(value) {
			return 1, false
		}
		return 0, false
	}
	quantity := float64(max(value, 0)) / constants.NumericalScale
	if r.atMost {
		if quantity <= r.targetValue {
			return 1, false
		}
		return 0, false
	}
	if quantity >= r.targetValue {
		return 1, false
	}
	return 0, false
}

// ScoreList is a dense cache of scores, one per day starting at from.
// Values are valid through from+len(values)-1. It is a value type: every
// mutating operation returns a new list and leaves the receiver untouched.
type ScoreList struct {
	from   Timestamp
	values []float64
}

func (s ScoreList) Len() int { return len(s.values) }

// Get returns the score for t, or zero outside the computed range.
func (s ScoreList) Get(t Timestamp) Score {
	idx := s.from.DaysUntil(t)
	if len(s.values) == 0 || idx < 0 || idx >= len(s.values) {
		return Score{Timestamp: t}
	}
	return Score{Timestamp: t, Value: s.values[idx]}
}

// GetByInterval returns one score per day from `to` down to `from`, newest first.
func (s ScoreList) GetByInterval(from, to Timestamp) []Score {
	if from.IsNewerThan(to) {
		return nil
	}
	result := make([]Score, 0, from.DaysUntil(to)+1)
	for current := to; !current.IsOlderThan(from); current-- {
		result = append(result, s.Get(current))
	}
	return result
}

// GetAll returns every computed score, newest first.
func (s ScoreList) GetAll() []Score {
	if len(s.values) == 0 {
		return nil
	}
	return s.GetByInterval(s.from, s.newest())
}

func (s ScoreList) newest() Timestamp {
	return s.from.Plus(len(s.values) - 1)
}

// invalidatedFrom drops every cached score on or after t.
func (s ScoreList) invalidatedFrom(t Timestamp) ScoreList {
	idx := s.from.DaysUntil(t)
	switch {
	case idx <= 0:
		return ScoreList{}
	case idx < len(s.values):
		return ScoreList{from: s.from, values: s.values[:idx:idx]}
	}
	return s
}

// extended returns a list covering oldest..today. Cached values are reused
// when the list still starts at oldest; otherwise scores are rebuilt from a
// zero base on the day before oldest.
func (s ScoreList) extended(rule scoringRule, freq Frequency, computed *EntryList, oldest, today Timestamp) (ScoreList, error) {
	if oldest.IsNewerThan(today) {
		return ScoreList{}, nil
	}
	if len(s.values) > 0 && s.from == oldest {
		if !s.newest().IsOlderThan(today) {
			return s.invalidatedFrom(today.Plus(1)), nil
		}
	} else {
		s = ScoreList{from: oldest}
	}

	start := s.from.Plus(len(s.values))
	previous := 0.0
	if len(s.values) > 0 {
		previous = s.values[len(s.values)-1]
	}

	values := make([]float64, len(s.values), s.from.DaysUntil(today)+1)
	copy(values, s.values)

	frequency := freq.ToDouble()
	days := computed.GetByInterval(start, today)
	for i := len(days) - 1; i >= 0; i-- {
		strength, skipped := rule.strength(days[i].Value)
		if !skipped {
			previous = ComputeScore(frequency, previous, strength)
		}
		if math.IsNaN(previous) || previous < 0 || previous > 1 {
			return s, apperrors.InconsistentState("score %v on %s outside [0,1]", previous, days[i].Timestamp)
		}
		values = append(values, previous)
	}
	return ScoreList{from: s.from, values: values}, nil
}
