package stepper

import "errors"

var (
	// ErrConfiguration indicates an invalid combination of parameters, such
	// as supplying both a table and a function, or neither.
	ErrConfiguration = errors.New("stepper: invalid configuration")

	// ErrDomain indicates a malformed step-size table.
	ErrDomain = errors.New("stepper: malformed step-size table")
)
