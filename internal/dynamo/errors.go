package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates a cut-back step fell below the smallest allowed size.
	ErrStepTooSmall = errors.New("dynamo: timestep below minimum")

	// ErrTooManyCutbacks indicates a step kept failing after repeated cutbacks.
	ErrTooManyCutbacks = errors.New("dynamo: too many consecutive cutbacks")

	// ErrDimensionMismatch indicates an initial state that does not fit the system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	DT      float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, dt=%.3g): %v", e.Step, e.Time, e.DT, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
