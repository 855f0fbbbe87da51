package forecast

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name           string
		baseline       float64
		shocked        float64
		wantDifference float64
		wantPct        float64
		wantPctDefined bool
	}{
		{
			name:           "downward five percent",
			baseline:       75.00,
			shocked:        71.25,
			wantDifference: -3.75,
			wantPct:        -5.00,
			wantPctDefined: true,
		},
		{
			name:           "upward move",
			baseline:       80.00,
			shocked:        82.40,
			wantDifference: 2.40,
			wantPct:        3.00,
			wantPctDefined: true,
		},
		{
			name:           "no change",
			baseline:       75.00,
			shocked:        75.00,
			wantDifference: 0.00,
			wantPct:        0.00,
			wantPctDefined: true,
		},
		{
			name:           "zero baseline has no percentage",
			baseline:       0.0,
			shocked:        3.00,
			wantDifference: 3.00,
			wantPct:        0.00,
			wantPctDefined: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.baseline, tt.shocked)
			if got.Difference != tt.wantDifference {
				t.Errorf("Difference = %v, expected %v", got.Difference, tt.wantDifference)
			}
			if got.PctChange != tt.wantPct {
				t.Errorf("PctChange = %v, expected %v", got.PctChange, tt.wantPct)
			}
			if got.PctDefined != tt.wantPctDefined {
				t.Errorf("PctDefined = %v, expected %v", got.PctDefined, tt.wantPctDefined)
			}
		})
	}
}

func TestSummarizeNearZeroThreshold(t *testing.T) {
	// Just inside the epsilon: treated as undefined.
	inside := Summarize(9.9e-7, 1.0)
	if inside.PctDefined {
		t.Error("baseline just below epsilon should have undefined percentage")
	}
	if strings.Contains(inside.Formatted, "Inf") || strings.Contains(inside.Formatted, "NaN") {
		t.Errorf("Formatted leaked a non-finite value: %q", inside.Formatted)
	}

	// Just outside: defined, even though the percentage is enormous.
	outside := Summarize(1.1e-6, 1.0)
	if !outside.PctDefined {
		t.Error("baseline just above epsilon should have a defined percentage")
	}
}

func TestSummarizeDirectionUsesUnroundedDifference(t *testing.T) {
	// A difference of -0.001 rounds to 0.00 for display but the
	// direction marker must still point down.
	got := Summarize(75.000, 74.999)
	if got.Difference != 0.00 {
		t.Errorf("Difference = %v, expected rounded 0.00", got.Difference)
	}
	if !strings.HasPrefix(got.Formatted, "▼") {
		t.Errorf("Formatted = %q, expected a downward marker", got.Formatted)
	}
}

func TestSummarizeFormatted(t *testing.T) {
	got := Summarize(75.00, 71.25)
	expected := "▼ $-3.75/barrel (-5.0%)"
	if got.Formatted != expected {
		t.Errorf("Formatted = %q, expected %q", got.Formatted, expected)
	}
}
