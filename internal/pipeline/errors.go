package pipeline

import "fmt"

// ValidationError reports an input field outside its configured range.
type ValidationError struct {
	Field   string
	Value   float64
	Allowed Range
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %g is outside the allowed range %s", e.Field, e.Value, e.Allowed)
}

// Failure reasons carried by PredictionError.
const (
	ReasonEstimator = "estimator failed"
	ReasonArity     = "wrong output arity"
	ReasonNonFinite = "non-finite output"
	ReasonTimeout   = "timeout"
)

// PredictionError reports a stage that failed to produce a usable output.
type PredictionError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s stage: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s stage: %s", e.Stage, e.Reason)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
