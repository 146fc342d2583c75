package stepper

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/dtgrowth/internal/funcs"
)

// relTol is the relative tolerance of the fuzzy comparisons used by the
// stepwise table lookup.
const relTol = 1e-12

// source yields the raw step size at time t. It is one of tableSource or
// functionSource, chosen once in New.
type source interface {
	sample(t float64) float64
}

type tableSource struct {
	times       []float64
	dts         []float64
	interpolate bool
	ipol        interp.PiecewiseLinear
}

func newTableSource(times, dts []float64, interpolate bool) (*tableSource, error) {
	if len(times) != len(dts) {
		return nil, fmt.Errorf("%w: time_t has %d entries, time_dt has %d", ErrConfiguration, len(times), len(dts))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("%w: table needs at least 2 points, got %d", ErrConfiguration, len(times))
	}
	if err := funcs.CheckTable(times, dts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDomain, err)
	}
	s := &tableSource{
		times:       append([]float64(nil), times...),
		dts:         append([]float64(nil), dts...),
		interpolate: interpolate,
	}
	if err := s.ipol.Fit(s.times, s.dts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDomain, err)
	}
	return s, nil
}

func (s *tableSource) sample(t float64) float64 {
	if s.interpolate {
		return s.ipol.Predict(t)
	}
	return s.lookup(t)
}

// lookup returns dts[i] for the first interval whose right end lies past t,
// and the last dt once t reaches the end of the table.
func (s *tableSource) lookup(t float64) float64 {
	n := len(s.times)
	if fuzzyGreaterEqual(t, s.times[n-1]) {
		return s.dts[n-1]
	}
	for i := 0; i < n-1; i++ {
		if fuzzyLess(t, s.times[i+1]) {
			return s.dts[i]
		}
	}
	return s.dts[n-1]
}

type functionSource struct {
	fn funcs.Func
}

// The function depends on time only, so it is sampled at the origin.
var origin = []float64{0, 0, 0}

func (s *functionSource) sample(t float64) float64 {
	return s.fn.Value(t, origin)
}

func fuzzyLess(a, b float64) bool {
	return a < b && !scalar.EqualWithinRel(a, b, relTol)
}

func fuzzyGreaterEqual(a, b float64) bool {
	return a >= b || scalar.EqualWithinRel(a, b, relTol)
}
