package forecast

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/oilmacro/scenario-forecast/internal/baseline"
	"github.com/oilmacro/scenario-forecast/internal/scenario"
	"github.com/oilmacro/scenario-forecast/pkg/driver"
)

// stubOracle is a deterministic linear model: each week's forecast is
// offset + scale * (sum of that week's driver values) + drift * week.
type stubOracle struct {
	offset float64
	scale  float64
	drift  float64
}

func (o *stubOracle) Forecast(matrix Matrix, horizon int) ([]float64, error) {
	out := make([]float64, 0, horizon)
	for week, row := range matrix.Rows {
		sum := 0.0
		for _, d := range driver.All() {
			sum += row.Get(d)
		}
		out = append(out, o.offset+o.scale*sum+o.drift*float64(week+1))
	}
	return out, nil
}

type failingOracle struct {
	err   error
	short int // when > 0, return a sequence of this length instead of erroring
}

func (o *failingOracle) Forecast(matrix Matrix, horizon int) ([]float64, error) {
	if o.err != nil {
		return nil, o.err
	}
	return make([]float64, o.short), nil
}

func testSnapshot() *baseline.Snapshot {
	return &baseline.Snapshot{BrentPrice: 75.00}
}

func newTestRunner(t *testing.T, oracle Oracle) *Runner {
	t.Helper()
	r, err := NewRunner(nil, scenario.Default(), testSnapshot(), oracle)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func TestRunSequenceLengths(t *testing.T) {
	r := newTestRunner(t, &stubOracle{offset: 75, scale: 10})

	for _, weeks := range []int{1, 4, 12, 52} {
		t.Run(fmt.Sprintf("%d weeks", weeks), func(t *testing.T) {
			result, err := r.Run("opec_cut", weeks)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(result.Baseline) != weeks || len(result.Shocked) != weeks {
				t.Errorf("sequence lengths = %d/%d, expected %d",
					len(result.Baseline), len(result.Shocked), weeks)
			}
			if result.Weeks != weeks {
				t.Errorf("Weeks = %d, expected %d", result.Weeks, weeks)
			}
		})
	}
}

func TestRunUnknownScenario(t *testing.T) {
	r := newTestRunner(t, &stubOracle{offset: 75})

	for _, weeks := range []int{1, 12, 52} {
		_, err := r.Run("made_up_key", weeks)
		var unknownErr *scenario.UnknownScenarioError
		if !errors.As(err, &unknownErr) {
			t.Fatalf("Run() error = %v, expected *scenario.UnknownScenarioError", err)
		}
		if len(unknownErr.Valid) != 5 {
			t.Errorf("error lists %d valid keys, expected 5", len(unknownErr.Valid))
		}
	}
}

func TestRunInvalidHorizon(t *testing.T) {
	r := newTestRunner(t, &stubOracle{offset: 75})

	for _, weeks := range []int{0, -1, -12} {
		_, err := r.Run("opec_cut", weeks)
		var horizonErr *InvalidHorizonError
		if !errors.As(err, &horizonErr) {
			t.Errorf("Run(weeks=%d) error = %v, expected *InvalidHorizonError", weeks, err)
		}
	}

	// The horizon check applies even for unknown keys.
	_, err := r.Run("made_up_key", 0)
	var horizonErr *InvalidHorizonError
	if !errors.As(err, &horizonErr) {
		t.Errorf("Run() error = %v, expected horizon validation first", err)
	}
}

func TestZeroShockMatchesBaseline(t *testing.T) {
	catalog, err := scenario.NewCatalog([]scenario.Scenario{
		{Key: "no_op", Name: "No-op", Shocks: driver.Shocks{
			"dollar_return": 0, "indpro_return": 0, "inventory_pct": 0,
			"fed_funds_diff": 0, "vix_diff": 0,
		}},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	r, err := NewRunner(nil, catalog, testSnapshot(), &stubOracle{offset: 75, scale: 10, drift: 0.1})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	result, err := r.Run("no_op", 12)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(result.Baseline, result.Shocked) {
		t.Error("zero-shock scenario diverged from the baseline forecast")
	}
	if result.ImpactHorizon.Difference != 0 {
		t.Errorf("ImpactHorizon.Difference = %v, expected 0", result.ImpactHorizon.Difference)
	}
}

func TestRunDeterminism(t *testing.T) {
	r := newTestRunner(t, &stubOracle{offset: 75, scale: 10, drift: 0.05})

	first, err := r.Run("global_recession", 12)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := r.Run("global_recession", 12)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two identical runs produced different results")
	}
}

func TestRunEndToEndExample(t *testing.T) {
	// Baseline $75.00; the opec_cut shock sums to -0.05 - 2.0 - 0.002 =
	// -2.052, so a scale of 75*0.05/2.052 yields a -5% end-of-horizon
	// deviation against the flat $75 baseline.
	scale := 75.0 * 0.05 / 2.052
	r := newTestRunner(t, &stubOracle{offset: 75, scale: scale})

	result, err := r.Run("opec_cut", 12)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	impact := result.ImpactHorizon
	if math.Abs(impact.Difference - -3.75) > 0.01 {
		t.Errorf("Difference = %v, expected about -3.75", impact.Difference)
	}
	if math.Abs(impact.PctChange - -5.00) > 0.01 {
		t.Errorf("PctChange = %v, expected about -5.00", impact.PctChange)
	}
	if impact.Formatted[:3] != "▼" {
		t.Errorf("Formatted = %q, expected a downward marker", impact.Formatted)
	}
	if result.CurrentPrice != 75.00 {
		t.Errorf("CurrentPrice = %v, expected 75.00", result.CurrentPrice)
	}
}

func TestRunScaledDoesNotTouchCatalog(t *testing.T) {
	catalog := scenario.Default()
	r, err := NewRunner(nil, catalog, testSnapshot(), &stubOracle{offset: 75, scale: 10})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	result, err := r.RunScaled("opec_cut", 4, 2.0)
	if err != nil {
		t.Fatalf("RunScaled() error = %v", err)
	}
	if result.ShocksApplied["vix_diff"] != -4.0 {
		t.Errorf("ShocksApplied[vix_diff] = %v, expected -4.0", result.ShocksApplied["vix_diff"])
	}

	stored, _ := catalog.Lookup("opec_cut")
	if stored.Shocks["vix_diff"] != -2.0 {
		t.Errorf("catalog shock = %v after a scaled run, expected -2.0 untouched", stored.Shocks["vix_diff"])
	}
}

func TestConcurrentScaledRunsDoNotContaminate(t *testing.T) {
	r := newTestRunner(t, &stubOracle{offset: 75, scale: 10})

	// Expected horizon difference is linear in the modifier for the
	// linear stub: diff(modifier) = modifier * diff(1.0).
	ref, err := r.Run("opec_cut", 4)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	refDiff := ref.Shocked[3] - ref.Baseline[3]

	modifiers := []float64{0.5, 1.0, 2.0}
	const iterations = 50

	var wg sync.WaitGroup
	errs := make(chan error, len(modifiers)*iterations)
	for _, modifier := range modifiers {
		for i := 0; i < iterations; i++ {
			wg.Add(1)
			go func(m float64) {
				defer wg.Done()
				result, err := r.RunScaled("opec_cut", 4, m)
				if err != nil {
					errs <- err
					return
				}
				got := result.Shocked[3] - result.Baseline[3]
				if math.Abs(got-m*refDiff) > 1e-9 {
					errs <- fmt.Errorf("modifier %v saw diff %v, expected %v", m, got, m*refDiff)
				}
			}(modifier)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRunOracleFailure(t *testing.T) {
	tests := []struct {
		name   string
		oracle Oracle
	}{
		{name: "oracle error", oracle: &failingOracle{err: errors.New("singular matrix")}},
		{name: "wrong-length sequence", oracle: &failingOracle{short: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(t, tt.oracle)
			_, err := r.Run("opec_cut", 12)
			var oracleErr *OracleError
			if !errors.As(err, &oracleErr) {
				t.Errorf("Run() error = %v, expected *OracleError", err)
			}
		})
	}
}

func TestRunBaseline(t *testing.T) {
	r := newTestRunner(t, &stubOracle{offset: 75, drift: 0.1})

	seq, err := r.RunBaseline(6)
	if err != nil {
		t.Fatalf("RunBaseline() error = %v", err)
	}
	if len(seq) != 6 {
		t.Fatalf("sequence length = %d, expected 6", len(seq))
	}
	if math.Abs(seq[0]-75.1) > 1e-9 {
		t.Errorf("week 1 = %v, expected 75.1", seq[0])
	}

	if _, err := r.RunBaseline(0); err == nil {
		t.Error("RunBaseline(0) succeeded, expected InvalidHorizonError")
	}
}
