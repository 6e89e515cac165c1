package models

import (
	"testing"

	apperrors "github.com/julianstephens/habitloop/internal/errors"
)

func TestNewFrequency(t *testing.T) {
	tests := []struct {
		name     string
		num, den int
		want     Frequency
		wantErr  bool
	}{
		{name: "daily", num: 1, den: 1, want: Daily},
		{name: "reduced", num: 2, den: 14, want: Weekly},
		{name: "three per week", num: 3, den: 7, want: ThreeTimesPerWeek},
		{name: "zero numerator", num: 0, den: 7, wantErr: true},
		{name: "numerator above denominator", num: 8, den: 7, wantErr: true},
		{name: "denominator too large", num: 1, den: 400, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFrequency(tt.num, tt.den)
			if tt.wantErr {
				if !apperrors.IsInvalidArgument(err) {
					t.Fatalf("NewFrequency() error = %v, want invalid argument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFrequency() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NewFrequency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    Frequency
		wantErr bool
	}{
		{input: "daily", want: Daily},
		{input: "Weekly", want: Weekly},
		{input: "3/7", want: ThreeTimesPerWeek},
		{input: " 2 / 7 ", want: TwoTimesPerWeek},
		{input: "3", wantErr: true},
		{input: "a/7", wantErr: true},
		{input: "3/b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFrequency(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseFrequency(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFrequencyString(t *testing.T) {
	if Daily.String() != "daily" || Weekly.String() != "weekly" {
		t.Errorf("unexpected names %q %q", Daily, Weekly)
	}
	if got := ThreeTimesPerWeek.String(); got != "3 times per 7 days" {
		t.Errorf("String() = %q", got)
	}
	if got := ThreeTimesPerWeek.ToDouble(); got != 3.0/7.0 {
		t.Errorf("ToDouble() = %v", got)
	}
}
