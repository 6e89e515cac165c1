package models

import "fmt"

// Entry values for boolean habits. Numerical habits store the measured
// quantity multiplied by constants.NumericalScale instead.
const (
	EntryUnknown   = -1
	EntryNo        = 0
	EntryYesAuto   = 1
	EntryYesManual = 2
	EntrySkip      = 3
)

// Entry is one observation for a habit on one day.
type Entry struct {
	Timestamp Timestamp `json:"timestamp"`
	Value     int       `json:"value"`
	Notes     string    `json:"notes,omitempty"`
}

// IsSuccess reports whether a boolean entry value counts as a completed day.
func IsSuccess(value int) bool {
	return value == EntryYesManual || value == EntryYesAuto
}

// NextToggleValue returns the value following current in the toggle cycle.
// UNKNOWN and YES_AUTO behave like NO.
func NextToggleValue(current int, skipEnabled bool) int {
	switch current {
	case EntryYesManual:
		if skipEnabled {
			return EntrySkip
		}
		return EntryNo
	case EntrySkip:
		return EntryNo
	default:
		return EntryYesManual
	}
}

// ValueLabel returns a short human-readable label for a boolean entry value.
func ValueLabel(value int) string {
	switch value {
	case EntryUnknown:
		return "unknown"
	case EntryNo:
		return "no"
	case EntryYesAuto:
		return "auto"
	case EntryYesManual:
		return "yes"
	case EntrySkip:
		return "skip"
	}
	return fmt.Sprintf("%d", value)
}
