package forecast

import (
	"errors"
	"testing"

	"github.com/oilmacro/scenario-forecast/internal/baseline"
	"github.com/oilmacro/scenario-forecast/pkg/driver"
)

func TestBuildMatrix(t *testing.T) {
	snap := &baseline.Snapshot{
		Drivers: driver.Vector{0.001, -0.002, 0.01, 0.0, 1.5},
	}

	matrix, err := BuildMatrix(snap, driver.Shocks{"vix_diff": 2.0, "inventory_pct": -0.05}, 8)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}
	if matrix.Weeks() != 8 {
		t.Fatalf("Weeks() = %d, expected 8", matrix.Weeks())
	}

	expected := driver.Vector{0.001, -0.002, -0.04, 0.0, 3.5}
	for i, row := range matrix.Rows {
		if row != expected {
			t.Errorf("row %d = %v, expected %v (shock persists across the horizon)", i, row, expected)
		}
	}
}

func TestBuildMatrixNilShocks(t *testing.T) {
	snap := &baseline.Snapshot{Drivers: driver.Vector{1, 2, 3, 4, 5}}

	matrix, err := BuildMatrix(snap, nil, 3)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}
	for i, row := range matrix.Rows {
		if row != snap.Drivers {
			t.Errorf("row %d = %v, expected baseline %v", i, row, snap.Drivers)
		}
	}
}

func TestBuildMatrixIgnoresUnknownDrivers(t *testing.T) {
	// Permissive by design: shock sets come from external callers and an
	// unrecognized key must not fail the simulation.
	snap := &baseline.Snapshot{Drivers: driver.Vector{}}

	matrix, err := BuildMatrix(snap, driver.Shocks{"gold_price": 100.0}, 2)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}
	if matrix.Rows[0] != (driver.Vector{}) {
		t.Errorf("unknown driver shock leaked into the matrix: %v", matrix.Rows[0])
	}
}

func TestBuildMatrixInvalidHorizon(t *testing.T) {
	snap := &baseline.Snapshot{}

	for _, weeks := range []int{0, -5} {
		_, err := BuildMatrix(snap, nil, weeks)
		var horizonErr *InvalidHorizonError
		if !errors.As(err, &horizonErr) {
			t.Errorf("BuildMatrix(weeks=%d) error = %v, expected *InvalidHorizonError", weeks, err)
		}
	}
}
