package integrators

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dtgrowth/internal/dynamo"
)

// dormandPrince is the 5(4) pair. The seventh stage is evaluated at the new
// solution and only feeds the error estimate.
var dormandPrince = struct {
	Tableau
	BHat []float64
}{
	Tableau: Tableau{
		A: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
		},
		B: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		C: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	},
	BHat: []float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40},
}

// RK45 is the Dormand-Prince 5(4) pair. It does not pick its own step size;
// it only reports how far the embedded error estimate is from tol.
type RK45 struct {
	DefaultTol float64
	errWeights []float64
}

func NewRK45() *RK45 {
	w := make([]float64, len(dormandPrince.B))
	floats.SubTo(w, dormandPrince.B, dormandPrince.BHat)
	return &RK45{DefaultTol: 1e-6, errWeights: w}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	newX, _ := r.StepWithError(dyn, x, t, dt, r.DefaultTol)
	return newX
}

// StepWithError returns the fifth order solution and the ratio of the
// largest scaled local error to tol. NaN errors report +Inf.
func (r *RK45) StepWithError(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64) {
	k := stages(dormandPrince.Tableau, dyn, x, t, dt)
	newX := combine(x, dt, dormandPrince.B, k)

	errEst := combine(make(dynamo.State, len(x)), dt, r.errWeights, k)

	errMax := 0.0
	for i := range x {
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst[i])/scale)
	}

	if math.IsNaN(errMax) {
		return newX, math.Inf(1)
	}
	return newX, errMax / tol
}
