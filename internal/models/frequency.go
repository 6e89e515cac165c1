package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/habitloop/internal/constants"
	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

// Frequency is a reduced fraction: Numerator successes every Denominator days.
type Frequency struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

var (
	Daily             = Frequency{1, 1}
	ThreeTimesPerWeek = Frequency{3, 7}
	TwoTimesPerWeek   = Frequency{2, 7}
	Weekly            = Frequency{1, 7}
)

// NewFrequency validates and reduces numerator/denominator.
func NewFrequency(numerator, denominator int) (Frequency, error) {
	f := Frequency{Numerator: numerator, Denominator: denominator}
	if err := f.Validate(); err != nil {
		return Frequency{}, err
	}
	return f.Reduce(), nil
}

// ParseFrequency accepts "daily", "weekly" or "N/M".
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return Frequency{}, apperrors.InvalidArgument("frequency %q must look like N/M", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Frequency{}, apperrors.InvalidArgument("invalid frequency numerator %q", parts[0])
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Frequency{}, apperrors.InvalidArgument("invalid frequency denominator %q", parts[1])
	}
	return NewFrequency(num, den)
}

func (f Frequency) Validate() error {
	if f.Numerator < 1 {
		return apperrors.InvalidArgument("frequency numerator must be at least 1, got %d", f.Numerator)
	}
	if f.Numerator > f.Denominator {
		return apperrors.InvalidArgument("frequency numerator %d exceeds denominator %d", f.Numerator, f.Denominator)
	}
	if f.Denominator > constants.MaxFrequencyDenominator {
		return apperrors.InvalidArgument("frequency denominator %d exceeds %d", f.Denominator, constants.MaxFrequencyDenominator)
	}
	return nil
}

// Reduce divides both terms by their greatest common divisor.
func (f Frequency) Reduce() Frequency {
	d := gcd(f.Numerator, f.Denominator)
	if d <= 1 {
		return f
	}
	return Frequency{Numerator: f.Numerator / d, Denominator: f.Denominator / d}
}

func (f Frequency) ToDouble() float64 {
	return float64(f.Numerator) / float64(f.Denominator)
}

func (f Frequency) IsDaily() bool {
	return f.Numerator == f.Denominator
}

func (f Frequency) String() string {
	r := f.Reduce()
	switch {
	case r.IsDaily():
		return "daily"
	case r == Weekly:
		return "weekly"
	}
	return fmt.Sprintf("%d times per %d days", f.Numerator, f.Denominator)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
