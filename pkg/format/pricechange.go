// Package format provides utilities for formatting prices and price changes.
package format

import (
	"fmt"
	"math"
)

// Round2 rounds a value to two decimal places for display.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Price returns a dollar price string, e.g. "$75.00".
func Price(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

// PriceChange renders a price delta with a direction marker, e.g.
// "▲ +$2.15/barrel (+2.9%)". Direction is taken from the unrounded
// difference so a small negative change never displays as an upward
// move after rounding. When pctDefined is false the percentage is
// omitted entirely rather than showing NaN or Inf.
func PriceChange(difference, pctChange float64, pctDefined bool) string {
	arrow := "▼"
	sign := ""
	if difference > 0 {
		arrow = "▲"
		sign = "+"
	}
	if !pctDefined {
		return fmt.Sprintf("%s %s$%.2f/barrel (pct n/a)", arrow, sign, difference)
	}
	return fmt.Sprintf("%s %s$%.2f/barrel (%s%.1f%%)", arrow, sign, difference, sign, pctChange)
}
