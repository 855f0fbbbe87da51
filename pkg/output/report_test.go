package output

import (
	"strings"
	"testing"

	"github.com/oilmacro/scenario-forecast/internal/forecast"
)

func TestReport(t *testing.T) {
	result := &forecast.RunResult{
		ScenarioName:  "OPEC Production Cut (10%)",
		CurrentPrice:  75.00,
		Weeks:         3,
		Baseline:      []float64{75.10, 75.20, 75.30},
		Shocked:       []float64{76.00, 76.50, 77.00},
		ImpactWeek1:   forecast.Summarize(75.10, 76.00),
		ImpactHorizon: forecast.Summarize(75.30, 77.00),
	}

	report := Report(result)

	for _, want := range []string{
		"SCENARIO RESULTS: OPEC Production Cut (10%)",
		"Current Brent Price:  $75.00/barrel",
		"Week 1",
		"<- Week 3",
		"Immediate impact (Week 1)",
		"Full impact (Week 3)",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	if lines := strings.Count(report, "Week "); lines < 3 {
		t.Errorf("report has %d week lines, expected at least 3", lines)
	}
}

func TestShockLines(t *testing.T) {
	shocks := map[string]float64{
		"inventory_pct":  -0.05,
		"vix_diff":       -2.0,
		"fed_funds_diff": 0.0,
	}

	lines := ShockLines(shocks)

	if strings.Contains(lines, "fed_funds_diff") {
		t.Error("zero-magnitude shock should be omitted")
	}
	if !strings.Contains(lines, "inventory_pct") || !strings.Contains(lines, "vix_diff") {
		t.Errorf("missing non-zero shocks in %q", lines)
	}
}
