// Package output provides utilities for formatting and displaying
// scenario simulation results.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oilmacro/scenario-forecast/internal/forecast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report renders a complete human-readable scenario report: current
// conditions, the week-by-week forecast table, and the impact summary.
func Report(result *forecast.RunResult) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	rule := strings.Repeat("=", 55)
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("SCENARIO RESULTS: %s\n", result.ScenarioName))
	b.WriteString(rule + "\n\n")

	_, _ = p.Fprintf(&b, "Current Brent Price:  $%.2f/barrel\n\n", result.CurrentPrice)
	b.WriteString(fmt.Sprintf("%-8s %12s %12s %15s\n", "Week", "Baseline", "Scenario", "Change"))
	b.WriteString(strings.Repeat("-", 55) + "\n")

	for i := 0; i < result.Weeks; i++ {
		baseline := result.Baseline[i]
		shocked := result.Shocked[i]
		diff := shocked - baseline
		sign := ""
		if diff >= 0 {
			sign = "+"
		}
		marker := ""
		switch i {
		case 0:
			marker = "  <- Week 1"
		case result.Weeks - 1:
			marker = fmt.Sprintf("  <- Week %d", result.Weeks)
		}
		_, _ = p.Fprintf(&b, "Week %-3d $%10.2f  $%10.2f  %s$%8.2f%s\n",
			i+1, baseline, shocked, sign, diff, marker)
	}

	b.WriteString(strings.Repeat("-", 55) + "\n\n")
	b.WriteString(fmt.Sprintf("Immediate impact (Week 1):  %s\n", result.ImpactWeek1.Formatted))
	b.WriteString(fmt.Sprintf("Full impact (Week %d):      %s\n", result.Weeks, result.ImpactHorizon.Formatted))
	b.WriteString(rule + "\n")

	return b.String()
}

// ShockLines renders the non-zero shocks of a run, one per line, for
// report and log output.
func ShockLines(shocks map[string]float64) string {
	names := make([]string, 0, len(shocks))
	for name, magnitude := range shocks {
		if magnitude != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		sign := ""
		if shocks[name] > 0 {
			sign = "+"
		}
		b.WriteString(fmt.Sprintf("  %-20s %s%v\n", name, sign, shocks[name]))
	}
	return b.String()
}
