package stepper

import (
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
)

// knotTol is the absolute distance under which a knot counts as reached.
const knotTol = 1e-10

// knots is an ordered set of future times the stepper must land on.
type knots []float64

func newKnots(ts []float64) knots {
	k := append(knots(nil), ts...)
	sort.Float64s(k)
	return k
}

// purge drops every knot at or before t.
func (k *knots) purge(t float64) int {
	n := 0
	for n < len(*k) && ((*k)[n] <= t || scalar.EqualWithinAbs((*k)[n], t, knotTol)) {
		n++
	}
	*k = (*k)[n:]
	return n
}

func (k knots) next() (float64, bool) {
	if len(k) == 0 {
		return 0, false
	}
	return k[0], true
}
