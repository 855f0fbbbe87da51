package forecast

import (
	"fmt"

	"github.com/oilmacro/scenario-forecast/internal/baseline"
	"github.com/oilmacro/scenario-forecast/internal/scenario"
	"github.com/oilmacro/scenario-forecast/pkg/driver"
	"go.uber.org/zap"
)

// Runner orchestrates scenario simulations: baseline forecast, shocked
// forecast, and the impact comparison between them. The catalog and
// snapshot are read-only inputs shared across concurrent calls; every
// per-request value (scaled shock sets, matrices, results) is local to
// the call, so Runner has no locking and no shared mutable state.
type Runner struct {
	logger   *zap.Logger
	catalog  *scenario.Catalog
	snapshot *baseline.Snapshot
	oracle   Oracle
}

// NewRunner constructs a Runner. The snapshot and oracle must already be
// loaded; their absence is a start-up failure, not a per-request one.
func NewRunner(logger *zap.Logger, catalog *scenario.Catalog, snapshot *baseline.Snapshot, oracle Oracle) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		return nil, fmt.Errorf("scenario catalog is required")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("baseline snapshot is required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("forecast oracle is required")
	}
	return &Runner{logger: logger, catalog: catalog, snapshot: snapshot, oracle: oracle}, nil
}

// RunResult is the structured outcome of one scenario simulation. Field
// names and types are stable across calls for the same inputs; the API
// layer and the explanation generator both consume it.
type RunResult struct {
	ScenarioKey  string `json:"scenarioKey"`
	ScenarioName string `json:"scenarioName"`
	ScenarioDesc string `json:"scenarioDesc"`

	// CurrentPrice is the latest observed Brent price, not a forecast.
	CurrentPrice float64 `json:"currentPrice"`

	Weeks int `json:"weeks"`

	Baseline []float64 `json:"baseline"`
	Shocked  []float64 `json:"shocked"`

	// Intervals are 95% confidence bands for the shocked forecast,
	// nil when the oracle does not provide them.
	Intervals []Interval `json:"intervals,omitempty"`

	// ShocksApplied is the shock set actually fed to the model after
	// any magnitude scaling.
	ShocksApplied driver.Shocks `json:"shocksApplied"`

	ImpactWeek1   ImpactSummary `json:"impactWeek1"`
	ImpactHorizon ImpactSummary `json:"impactHorizon"`
}

// Run simulates a catalog scenario at its calibrated severity.
func (r *Runner) Run(scenarioKey string, weeks int) (*RunResult, error) {
	return r.RunScaled(scenarioKey, weeks, 1.0)
}

// RunScaled simulates a catalog scenario with its shock set scaled by
// the modifier. The scaled set is a request-local copy; the catalog
// entry is never modified, so concurrent calls for the same key with
// different modifiers cannot contaminate each other.
func (r *Runner) RunScaled(scenarioKey string, weeks int, modifier float64) (*RunResult, error) {
	if weeks < 1 {
		return nil, &InvalidHorizonError{Weeks: weeks}
	}

	s, err := r.catalog.Lookup(scenarioKey)
	if err != nil {
		return nil, err
	}
	shocks := scenario.Scale(s.ShockCopy(), modifier)

	r.logger.Debug("running scenario",
		zap.String("op", "forecast.RunScaled"),
		zap.String("scenario", scenarioKey),
		zap.Int("weeks", weeks),
		zap.Float64("modifier", modifier),
	)

	baselineSeq, err := r.forecast(nil, weeks, "baseline forecast")
	if err != nil {
		return nil, err
	}
	shockedSeq, err := r.forecast(shocks, weeks, "shocked forecast")
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		ScenarioKey:   s.Key,
		ScenarioName:  s.Name,
		ScenarioDesc:  s.Description,
		CurrentPrice:  r.snapshot.BrentPrice,
		Weeks:         weeks,
		Baseline:      baselineSeq,
		Shocked:       shockedSeq,
		ShocksApplied: shocks,
		ImpactWeek1:   Summarize(baselineSeq[0], shockedSeq[0]),
		ImpactHorizon: Summarize(baselineSeq[weeks-1], shockedSeq[weeks-1]),
	}

	if io, ok := r.oracle.(IntervalOracle); ok {
		matrix, err := BuildMatrix(r.snapshot, shocks, weeks)
		if err != nil {
			return nil, err
		}
		intervals, err := io.ForecastInterval(matrix, weeks)
		if err != nil {
			return nil, &OracleError{Op: "confidence intervals", Err: err}
		}
		if len(intervals) == weeks {
			result.Intervals = intervals
		}
	}

	return result, nil
}

// RunBaseline produces the no-shock forecast on its own.
func (r *Runner) RunBaseline(weeks int) ([]float64, error) {
	if weeks < 1 {
		return nil, &InvalidHorizonError{Weeks: weeks}
	}
	return r.forecast(nil, weeks, "baseline forecast")
}

// Snapshot exposes the read-only baseline conditions.
func (r *Runner) Snapshot() *baseline.Snapshot {
	return r.snapshot
}

// Catalog exposes the read-only scenario catalog.
func (r *Runner) Catalog() *scenario.Catalog {
	return r.catalog
}

func (r *Runner) forecast(shocks driver.Shocks, weeks int, op string) ([]float64, error) {
	matrix, err := BuildMatrix(r.snapshot, shocks, weeks)
	if err != nil {
		return nil, err
	}

	seq, err := r.oracle.Forecast(matrix, weeks)
	if err != nil {
		return nil, &OracleError{Op: op, Err: err}
	}
	if len(seq) != weeks {
		return nil, &OracleError{
			Op:  op,
			Err: fmt.Errorf("expected %d forecast values, got %d", weeks, len(seq)),
		}
	}
	return seq, nil
}
