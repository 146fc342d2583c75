// Package funcs provides time functions that prescribe a timestep size.
//
// A [Func] is sampled as Value(t, x). The spatial point x is accepted so that
// callers holding space-time functions can pass them in unchanged; every
// function in this package depends on time only and ignores it.
//
// Functions that are defined by a table of breakpoints implement
// [Piecewise], which exposes those breakpoints so that a stepper can land on
// them exactly.
package funcs

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrTooFewPoints    = errors.New("funcs: piecewise function needs at least one point")
	ErrLengthMismatch  = errors.New("funcs: x and y have different lengths")
	ErrNotIncreasing   = errors.New("funcs: x values must be strictly increasing")
	ErrNaN             = errors.New("funcs: table contains NaN")
	ErrUnknownFunction = errors.New("funcs: unknown function")
	ErrUnknownType     = errors.New("funcs: unknown function type")
)

type Func interface {
	Value(t float64, x []float64) float64
}

// Piecewise is a Func with known breakpoints in time.
type Piecewise interface {
	Func
	Len() int
	Domain(i int) float64
}

type Constant struct {
	C float64
}

func NewConstant(c float64) *Constant {
	return &Constant{C: c}
}

func (c *Constant) Value(t float64, x []float64) float64 {
	return c.C
}

// TimeFunc adapts an ordinary function of time.
type TimeFunc func(t float64) float64

func (f TimeFunc) Value(t float64, x []float64) float64 {
	return f(t)
}

// CheckTable reports whether xs and ys form a valid table: equal lengths, at
// least one point, no NaN, and strictly increasing xs.
func CheckTable(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: len(x)=%d len(y)=%d", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return ErrTooFewPoints
	}
	if floats.HasNaN(xs) || floats.HasNaN(ys) {
		return ErrNaN
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("%w: x[%d]=%g <= x[%d]=%g", ErrNotIncreasing, i, xs[i], i-1, xs[i-1])
		}
	}
	return nil
}

// Breakpoints returns a copy of the breakpoints of p.
func Breakpoints(p Piecewise) []float64 {
	n := p.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = p.Domain(i)
	}
	return out
}
