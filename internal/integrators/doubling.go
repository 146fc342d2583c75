package integrators

import "github.com/san-kum/dtgrowth/internal/dynamo"

// StepDoubling turns a fixed-step integrator into an adaptive one by
// comparing one full step with two half steps.
type StepDoubling struct {
	Base dynamo.Integrator
}

func NewStepDoubling(base dynamo.Integrator) *StepDoubling {
	return &StepDoubling{Base: base}
}

func (s *StepDoubling) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return s.Base.Step(dyn, x, t, dt)
}

func (s *StepDoubling) StepWithError(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64) {
	x1 := s.Base.Step(dyn, x, t, dt)
	xHalf := s.Base.Step(dyn, x, t, dt/2)
	x2 := s.Base.Step(dyn, xHalf, t+dt/2, dt/2)

	err := x1.Sub(x2).Norm() / (x2.Norm() + 1e-10)
	return x2, err / tol
}
