// Package sarimax implements the forecast oracle backed by the fitted
// SARIMAX model. The offline training pipeline fits the model and
// exports a JSON artifact with the reduced state needed for inference:
// ARMA coefficients on the differenced series, exogenous betas, the
// innovation variance, and the final observed state. Forecasting is a
// deterministic recursion from that state; no estimation happens here.
package sarimax

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/oilmacro/scenario-forecast/internal/forecast"
	"github.com/oilmacro/scenario-forecast/pkg/driver"
	"go.uber.org/zap"
)

// artifact is the JSON layout exported by the training pipeline.
type artifact struct {
	AR        float64            `json:"ar"`
	MA        float64            `json:"ma"`
	Intercept float64            `json:"intercept"`
	Beta      map[string]float64 `json:"beta"`
	Sigma2    float64            `json:"sigma2"`

	// Final observed state at the training cutoff.
	LastLevel    float64 `json:"lastLevel"`
	LastCentered float64 `json:"lastCentered"`
	LastResidual float64 `json:"lastResidual"`
}

// Model is a fitted SARIMAX(1,1,1)-shaped forecaster over the weekly
// Brent series with the five exogenous drivers. It is immutable after
// loading; Forecast works on local state only, so a single Model is
// safe for concurrent use.
type Model struct {
	ar        float64
	ma        float64
	intercept float64
	beta      driver.Vector
	sigma2    float64

	lastLevel    float64
	lastCentered float64
	lastResidual float64
}

// Load reads a fitted model artifact from disk. A missing or malformed
// artifact is a start-up fatal condition for the caller.
func Load(logger *zap.Logger, path string) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	if a.Sigma2 < 0 {
		return nil, fmt.Errorf("model artifact %s: negative innovation variance %v", path, a.Sigma2)
	}

	m := &Model{
		ar:           a.AR,
		ma:           a.MA,
		intercept:    a.Intercept,
		sigma2:       a.Sigma2,
		lastLevel:    a.LastLevel,
		lastCentered: a.LastCentered,
		lastResidual: a.LastResidual,
	}
	for name, b := range a.Beta {
		d, ok := driver.Parse(name)
		if !ok {
			return nil, fmt.Errorf("model artifact %s: beta for unknown driver %q", path, name)
		}
		m.beta.Set(d, b)
	}

	logger.Info("SARIMAX model loaded",
		zap.String("op", "sarimax.Load"),
		zap.String("path", path),
		zap.Float64("ar", m.ar),
		zap.Float64("ma", m.ma),
	)

	return m, nil
}

// New constructs a model directly from coefficients. Used by tests and
// by callers that embed artifacts.
func New(ar, ma, intercept, sigma2, lastLevel, lastCentered, lastResidual float64, beta driver.Vector) *Model {
	return &Model{
		ar: ar, ma: ma, intercept: intercept, sigma2: sigma2,
		lastLevel: lastLevel, lastCentered: lastCentered, lastResidual: lastResidual,
		beta: beta,
	}
}

// Forecast produces point forecasts for the price level. The series is
// differenced once, so each step forecasts the weekly change and
// accumulates it onto the level:
//
//	change_h = intercept + beta·x_h + ar*centered_{h-1} + ma*resid_{h-1}
//
// Future residuals are zero in expectation, so the MA term only
// contributes at the first step.
func (m *Model) Forecast(matrix forecast.Matrix, horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", horizon)
	}
	if matrix.Weeks() != horizon {
		return nil, fmt.Errorf("exogenous matrix covers %d weeks, horizon is %d", matrix.Weeks(), horizon)
	}

	out := make([]float64, 0, horizon)
	level := m.lastLevel
	centered := m.lastCentered
	resid := m.lastResidual

	for _, row := range matrix.Rows {
		exogEffect := 0.0
		for _, d := range driver.All() {
			exogEffect += m.beta.Get(d) * row.Get(d)
		}

		next := m.ar*centered + m.ma*resid
		level += m.intercept + exogEffect + next
		out = append(out, level)

		centered = next
		resid = 0
	}

	return out, nil
}

// ForecastInterval produces 95% confidence bands around the point
// forecasts using the psi-weight recursion of the differenced ARMA
// process; level-forecast variance accumulates the cumulative weights.
func (m *Model) ForecastInterval(matrix forecast.Matrix, horizon int) ([]forecast.Interval, error) {
	points, err := m.Forecast(matrix, horizon)
	if err != nil {
		return nil, err
	}

	intervals := make([]forecast.Interval, horizon)
	psi := 1.0     // psi_0
	cumPsi := 0.0  // sum of psi weights up to the current step
	sumSq := 0.0   // accumulated squared cumulative weights
	for h := 0; h < horizon; h++ {
		cumPsi += psi
		sumSq += cumPsi * cumPsi
		half := 1.96 * math.Sqrt(m.sigma2*sumSq)
		intervals[h] = forecast.Interval{Lower: points[h] - half, Upper: points[h] + half}

		if h == 0 {
			psi = m.ar + m.ma
		} else {
			psi *= m.ar
		}
	}

	return intervals, nil
}
