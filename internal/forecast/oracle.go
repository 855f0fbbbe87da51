package forecast

// Oracle is the fitted forecasting model, treated as an opaque
// capability. Given an exogenous matrix and a horizon it produces one
// point forecast per week. Implementations must be deterministic:
// identical inputs yield identical outputs, which the runner and the
// test suite rely on.
type Oracle interface {
	Forecast(matrix Matrix, horizon int) ([]float64, error)
}

// Interval is a confidence band around one week's point forecast.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IntervalOracle is implemented by oracles that can also produce
// confidence intervals. The runner surfaces intervals when available
// but never requires them.
type IntervalOracle interface {
	Oracle
	ForecastInterval(matrix Matrix, horizon int) ([]Interval, error)
}
