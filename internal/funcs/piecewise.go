package funcs

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/interp"
)

type table struct {
	xs    []float64
	ys    []float64
	scale float64
}

func newTable(xs, ys []float64, scale float64) (table, error) {
	if err := CheckTable(xs, ys); err != nil {
		return table{}, err
	}
	if scale == 0 {
		scale = 1
	}
	t := table{
		xs:    append([]float64(nil), xs...),
		ys:    append([]float64(nil), ys...),
		scale: scale,
	}
	return t, nil
}

func (t table) Len() int             { return len(t.xs) }
func (t table) Domain(i int) float64 { return t.xs[i] }

// PiecewiseLinear interpolates linearly between points and holds the end
// values constant outside the table.
type PiecewiseLinear struct {
	table
	ipol interp.PiecewiseLinear
}

func NewPiecewiseLinear(xs, ys []float64, scale float64) (*PiecewiseLinear, error) {
	tab, err := newTable(xs, ys, scale)
	if err != nil {
		return nil, err
	}
	p := &PiecewiseLinear{table: tab}
	if len(xs) > 1 {
		if err := p.ipol.Fit(tab.xs, tab.ys); err != nil {
			return nil, fmt.Errorf("funcs: fit piecewise linear: %w", err)
		}
	}
	return p, nil
}

func (p *PiecewiseLinear) Value(t float64, x []float64) float64 {
	if len(p.xs) == 1 {
		return p.scale * p.ys[0]
	}
	return p.scale * p.ipol.Predict(t)
}

type Direction int

const (
	// Left holds y[i] on [x[i], x[i+1]).
	Left Direction = iota
	// Right holds y[i+1] on (x[i], x[i+1]].
	Right
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Left, fmt.Errorf("funcs: unknown direction %q", s)
}

func (d Direction) String() string {
	if d == Right {
		return "right"
	}
	return "left"
}

// PiecewiseConstant is a step function over the table.
type PiecewiseConstant struct {
	table
	dir Direction
}

func NewPiecewiseConstant(xs, ys []float64, dir Direction, scale float64) (*PiecewiseConstant, error) {
	tab, err := newTable(xs, ys, scale)
	if err != nil {
		return nil, err
	}
	return &PiecewiseConstant{table: tab, dir: dir}, nil
}

func (p *PiecewiseConstant) Value(t float64, x []float64) float64 {
	n := len(p.xs)
	if t <= p.xs[0] {
		return p.scale * p.ys[0]
	}
	if t >= p.xs[n-1] {
		return p.scale * p.ys[n-1]
	}
	switch p.dir {
	case Right:
		// first index with xs[i] >= t
		i := sort.SearchFloat64s(p.xs, t)
		return p.scale * p.ys[i]
	default:
		// last index with xs[i] <= t
		i := sort.Search(n, func(i int) bool { return p.xs[i] > t }) - 1
		return p.scale * p.ys[i]
	}
}
