package funcs

import (
	"errors"
	"math"
	"testing"
)

func TestPiecewiseLinear(t *testing.T) {
	f, err := NewPiecewiseLinear([]float64{0, 1, 2}, []float64{0.1, 0.2, 0.3}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		t        float64
		expected float64
	}{
		{-1, 0.1},
		{0, 0.1},
		{0.5, 0.15},
		{1.5, 0.25},
		{2, 0.3},
		{5, 0.3},
	}

	for _, tt := range tests {
		got := f.Value(tt.t, nil)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("t=%g: expected %g, got %g", tt.t, tt.expected, got)
		}
	}
}

func TestPiecewiseLinear_Scale(t *testing.T) {
	f, err := NewPiecewiseLinear([]float64{0, 1}, []float64{1, 3}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Value(0.5, nil); math.Abs(got-4) > 1e-12 {
		t.Errorf("expected 4, got %g", got)
	}
}

func TestPiecewiseLinear_SinglePoint(t *testing.T) {
	f, err := NewPiecewiseLinear([]float64{1}, []float64{0.5}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Value(10, nil); got != 0.5 {
		t.Errorf("expected 0.5, got %g", got)
	}
}

func TestPiecewiseConstant_Left(t *testing.T) {
	f, err := NewPiecewiseConstant([]float64{0, 1, 2}, []float64{0.1, 0.2, 0.3}, Left, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		t        float64
		expected float64
	}{
		{-1, 0.1},
		{0, 0.1},
		{0.99, 0.1},
		{1, 0.2},
		{1.5, 0.2},
		{2, 0.3},
		{3, 0.3},
	}

	for _, tt := range tests {
		if got := f.Value(tt.t, nil); got != tt.expected {
			t.Errorf("t=%g: expected %g, got %g", tt.t, tt.expected, got)
		}
	}
}

func TestPiecewiseConstant_Right(t *testing.T) {
	f, err := NewPiecewiseConstant([]float64{0, 1, 2}, []float64{0.1, 0.2, 0.3}, Right, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		t        float64
		expected float64
	}{
		{0, 0.1},
		{0.5, 0.2},
		{1, 0.2},
		{1.5, 0.3},
		{2, 0.3},
	}

	for _, tt := range tests {
		if got := f.Value(tt.t, nil); got != tt.expected {
			t.Errorf("t=%g: expected %g, got %g", tt.t, tt.expected, got)
		}
	}
}

func TestPiecewise_InvalidTables(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want error
	}{
		{"empty", nil, nil, ErrTooFewPoints},
		{"mismatch", []float64{0, 1}, []float64{1}, ErrLengthMismatch},
		{"decreasing", []float64{0, 2, 1}, []float64{1, 2, 3}, ErrNotIncreasing},
		{"repeated", []float64{0, 1, 1}, []float64{1, 2, 3}, ErrNotIncreasing},
		{"nan", []float64{0, math.NaN()}, []float64{1, 2}, ErrNaN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPiecewiseLinear(tt.xs, tt.ys, 0); !errors.Is(err, tt.want) {
				t.Errorf("linear: expected %v, got %v", tt.want, err)
			}
			if _, err := NewPiecewiseConstant(tt.xs, tt.ys, Left, 0); !errors.Is(err, tt.want) {
				t.Errorf("constant: expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBreakpoints(t *testing.T) {
	xs := []float64{0, 0.5, 2}
	f, err := NewPiecewiseConstant(xs, []float64{1, 2, 3}, Left, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bp := Breakpoints(f)
	if len(bp) != 3 {
		t.Fatalf("expected 3 breakpoints, got %d", len(bp))
	}
	for i := range xs {
		if bp[i] != xs[i] {
			t.Errorf("breakpoint %d: expected %g, got %g", i, xs[i], bp[i])
		}
	}

	xs[0] = 99
	if f.Domain(0) != 0 {
		t.Error("function should not alias the caller's slice")
	}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistryFromSpecs([]Spec{
		{Name: "dt", Type: "piecewise_linear", X: []float64{0, 1}, Y: []float64{0.1, 0.2}},
		{Name: "flat", Type: "constant", Value: 0.05},
		{Name: "steps", Type: "piecewise_constant", X: []float64{0, 1}, Y: []float64{1, 2}, Direction: "right"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := r.Names()
	if len(names) != 3 || names[0] != "dt" {
		t.Errorf("unexpected names: %v", names)
	}

	f, err := r.Get("flat")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if f.Value(3, nil) != 0.05 {
		t.Errorf("expected 0.05, got %g", f.Value(3, nil))
	}

	if _, ok := f.(Piecewise); ok {
		t.Error("constant should not be piecewise")
	}

	pw, err := r.Get("steps")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, ok := pw.(Piecewise); !ok {
		t.Error("piecewise_constant should expose breakpoints")
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("expected ErrUnknownFunction, got %v", err)
	}
}

func TestFromSpec_Errors(t *testing.T) {
	if _, err := FromSpec(Spec{Name: "x", Type: "spline"}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if _, err := FromSpec(Spec{Name: "x", Type: "piecewise_constant", X: []float64{0}, Y: []float64{1}, Direction: "up"}); err == nil {
		t.Error("expected error for unknown direction")
	}
	if _, err := NewRegistryFromSpecs([]Spec{{Name: "bad", Type: "piecewise_linear"}}); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestTimeFunc(t *testing.T) {
	f := TimeFunc(func(t float64) float64 { return 2 * t })
	if got := f.Value(1.5, []float64{1, 2, 3}); got != 3 {
		t.Errorf("expected 3, got %g", got)
	}
}
