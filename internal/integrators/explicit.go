package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dtgrowth/internal/dynamo"
)

// Tableau is the Butcher tableau of an explicit Runge-Kutta method. A is
// strictly lower triangular.
type Tableau struct {
	A [][]float64
	B []float64
	C []float64
}

var (
	eulerTableau = Tableau{
		A: [][]float64{{0}},
		B: []float64{1},
		C: []float64{0},
	}

	heunTableau = Tableau{
		A: [][]float64{
			{0, 0},
			{1, 0},
		},
		B: []float64{0.5, 0.5},
		C: []float64{0, 1},
	}

	rk4Tableau = Tableau{
		A: [][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		},
		B: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		C: []float64{0, 0.5, 0.5, 1},
	}
)

// Explicit is a fixed-step explicit Runge-Kutta integrator.
type Explicit struct {
	tab Tableau
}

func NewExplicit(tab Tableau) *Explicit {
	return &Explicit{tab: tab}
}

func NewEuler() *Explicit { return NewExplicit(eulerTableau) }
func NewHeun() *Explicit  { return NewExplicit(heunTableau) }
func NewRK4() *Explicit   { return NewExplicit(rk4Tableau) }

// Stages is the number of derivative evaluations per step.
func (e *Explicit) Stages() int { return len(e.tab.B) }

func (e *Explicit) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	k := stages(e.tab, dyn, x, t, dt)
	return combine(x, dt, e.tab.B, k)
}

// stages evaluates the derivative at every stage of tab.
func stages(tab Tableau, dyn dynamo.System, x dynamo.State, t, dt float64) []dynamo.State {
	k := make([]dynamo.State, len(tab.C))
	stage := make(dynamo.State, len(x))

	for i := range k {
		copy(stage, x)
		for j := 0; j < i; j++ {
			if a := tab.A[i][j]; a != 0 {
				floats.AddScaled(stage, dt*a, k[j])
			}
		}
		k[i] = dyn.Derive(stage, t+tab.C[i]*dt)
	}
	return k
}

// combine returns x + dt * sum(w[i] * k[i]).
func combine(x dynamo.State, dt float64, w []float64, k []dynamo.State) dynamo.State {
	out := x.Clone()
	for i, wi := range w {
		if wi != 0 {
			floats.AddScaled(out, dt*wi, k[i])
		}
	}
	return out
}
