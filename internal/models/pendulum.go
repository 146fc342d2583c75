package models

import (
	"math"

	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/funcs"
)

// Pendulum is a damped pendulum with state (theta, omega). An optional
// Torque(t) drives the pivot.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
	Torque  funcs.Func
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int { return 2 }

func (p *Pendulum) inertia() float64 { return p.Mass * p.Length * p.Length }

func (p *Pendulum) Derive(x dynamo.State, t float64) dynamo.State {
	tau := -p.Damping*x[1] - p.Mass*p.Gravity*p.Length*math.Sin(x[0])
	if p.Torque != nil {
		tau += p.Torque.Value(t, nil)
	}
	return dynamo.State{x[1], tau / p.inertia()}
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	kinetic := 0.5 * p.inertia() * x[1] * x[1]
	potential := p.Mass * p.Gravity * p.Length * (1 - math.Cos(x[0]))
	return kinetic + potential
}
