package driver

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, d := range All() {
		parsed, ok := Parse(d.String())
		if !ok {
			t.Errorf("Parse(%q) not ok", d.String())
		}
		if parsed != d {
			t.Errorf("Parse(%q) = %v, expected %v", d.String(), parsed, d)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, ok := Parse("oil_output"); ok {
		t.Error("Parse accepted a name outside the fixed schema")
	}
}

func TestNamesOrder(t *testing.T) {
	expected := []string{"dollar_return", "indpro_return", "inventory_pct", "fed_funds_diff", "vix_diff"}
	got := Names()
	if len(got) != len(expected) {
		t.Fatalf("Names() length = %d, expected %d", len(got), len(expected))
	}
	for i, name := range expected {
		if got[i] != name {
			t.Errorf("Names()[%d] = %q, expected %q", i, got[i], name)
		}
	}
}

func TestShifted(t *testing.T) {
	base := Vector{0.001, -0.002, 0.01, 0.0, 1.5}

	tests := []struct {
		name     string
		shocks   Shocks
		expected Vector
	}{
		{
			name:     "nil shocks leave vector unchanged",
			shocks:   nil,
			expected: base,
		},
		{
			name:     "partial shock set defaults missing drivers to zero",
			shocks:   Shocks{"vix_diff": 2.0},
			expected: Vector{0.001, -0.002, 0.01, 0.0, 3.5},
		},
		{
			name: "unknown driver names are silently ignored",
			shocks: Shocks{
				"vix_diff":     -1.5,
				"made_up_name": 99.0,
			},
			expected: Vector{0.001, -0.002, 0.01, 0.0, 0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Shifted(tt.shocks)
			if got != tt.expected {
				t.Errorf("Shifted() = %v, expected %v", got, tt.expected)
			}
			// The receiver must never be modified.
			if base != (Vector{0.001, -0.002, 0.01, 0.0, 1.5}) {
				t.Error("Shifted() mutated its receiver")
			}
		})
	}
}

func TestShocksCopy(t *testing.T) {
	original := Shocks{"vix_diff": 3.0, "dollar_return": 0.005}
	copied := original.Copy()
	copied["vix_diff"] = -100.0

	if original["vix_diff"] != 3.0 {
		t.Error("Copy() returned a map sharing storage with the original")
	}
}
