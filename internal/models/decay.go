package models

import "github.com/san-kum/dtgrowth/internal/dynamo"

// Decay is x' = -Rate * x. Large rates make it stiff, so explicit
// integrators reject large steps.
type Decay struct {
	Rate float64
}

func NewDecay(rate float64) *Decay {
	return &Decay{Rate: rate}
}

func (d *Decay) StateDim() int { return 1 }

func (d *Decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.Rate * x[0]}
}
