package models

import (
	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/funcs"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a damped oscillator. When Load is set, the mass is driven
// by the force Load(t).
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
	Load      funcs.Func
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

// NewForced returns a spring-mass driven by load.
func NewForced(load funcs.Func) *SpringMass {
	s := NewSpringMass()
	s.Load = load
	return s
}

func (s *SpringMass) StateDim() int { return 2 }

func (s *SpringMass) Derive(x dynamo.State, t float64) dynamo.State {
	force := 0.0
	if s.Load != nil {
		force = s.Load.Value(t, nil)
	}
	acc := (force - s.Stiffness*x[0] - s.Damping*x[1]) / s.Mass
	return dynamo.State{x[1], acc}
}

func (s *SpringMass) Energy(x dynamo.State) float64 {
	return 0.5*s.Mass*x[1]*x[1] + 0.5*s.Stiffness*x[0]*x[0]
}
