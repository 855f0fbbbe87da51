package forecast

import "fmt"

// InvalidHorizonError is returned when a requested horizon is not a
// positive number of weeks.
type InvalidHorizonError struct {
	Weeks int
}

func (e *InvalidHorizonError) Error() string {
	return fmt.Sprintf("invalid forecast horizon %d: must be at least 1 week", e.Weeks)
}

// OracleError wraps a failure of the forecasting model, including
// malformed output such as a wrong-length sequence. The model is
// deterministic, so these are not retried: an identical call would
// reproduce the failure.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("forecast oracle failed during %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
