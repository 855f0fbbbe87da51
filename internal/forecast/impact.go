package forecast

import (
	"math"

	"github.com/oilmacro/scenario-forecast/pkg/format"
)

// pctEpsilon is the threshold below which a baseline forecast is
// considered too close to zero for a meaningful percentage change. A
// strict zero check is not enough: a near-zero baseline would produce
// an absurdly large percentage that is noise, not signal.
const pctEpsilon = 1e-6

// ImpactSummary compares a baseline and shocked forecast at one week.
// Numeric fields are rounded to two decimals for display; Formatted and
// the direction marker are derived from the unrounded difference so
// rounding can never flip the sign. When the baseline is within
// pctEpsilon of zero, PctDefined is false and PctChange is zero rather
// than NaN or Inf.
type ImpactSummary struct {
	Baseline   float64 `json:"baseline"`
	Shocked    float64 `json:"shocked"`
	Difference float64 `json:"difference"`
	PctChange  float64 `json:"pctChange"`
	PctDefined bool    `json:"pctDefined"`
	Formatted  string  `json:"formatted"`
}

// Summarize computes the impact of a shocked forecast relative to the
// baseline at a single week.
func Summarize(baseline, shocked float64) ImpactSummary {
	diff := shocked - baseline

	var pct float64
	pctDefined := math.Abs(baseline) >= pctEpsilon
	if pctDefined {
		pct = diff / baseline * 100
	}

	return ImpactSummary{
		Baseline:   format.Round2(baseline),
		Shocked:    format.Round2(shocked),
		Difference: format.Round2(diff),
		PctChange:  format.Round2(pct),
		PctDefined: pctDefined,
		Formatted:  format.PriceChange(diff, pct, pctDefined),
	}
}
