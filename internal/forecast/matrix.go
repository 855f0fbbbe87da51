// Package forecast implements the scenario simulation core: it builds
// exogenous input matrices from the baseline conditions, runs the fitted
// model for baseline and shocked trajectories, and derives the impact
// comparison between them.
package forecast

import (
	"github.com/oilmacro/scenario-forecast/internal/baseline"
	"github.com/oilmacro/scenario-forecast/pkg/driver"
)

// Matrix is the exogenous input to the forecasting model: one full
// driver vector per forecast week. Every row is identical because a
// shock is assumed to persist across the whole horizon (no decay).
type Matrix struct {
	Rows []driver.Vector
}

// Weeks returns the horizon length the matrix covers.
func (m Matrix) Weeks() int {
	return len(m.Rows)
}

// BuildMatrix combines the baseline driver values with a shock set into
// the model's input matrix for the given horizon. Shock entries naming
// drivers outside the fixed schema are silently ignored and drivers
// absent from the shock set stay at baseline; see driver.Vector.Shifted.
func BuildMatrix(snap *baseline.Snapshot, shocks driver.Shocks, weeks int) (Matrix, error) {
	if weeks < 1 {
		return Matrix{}, &InvalidHorizonError{Weeks: weeks}
	}

	shifted := snap.Drivers.Shifted(shocks)
	rows := make([]driver.Vector, weeks)
	for i := range rows {
		rows[i] = shifted
	}
	return Matrix{Rows: rows}, nil
}
