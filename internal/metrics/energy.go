package metrics

import (
	"math"

	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/sim"
)

// EnergyDrift is the largest relative deviation from the energy of the first
// observed state. Systems that are not Hamiltonian report 0.
type EnergyDrift struct {
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.System
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	return &EnergyDrift{dyn: dyn}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

// Seed records the reference energy before the first step.
func (e *EnergyDrift) Seed(x dynamo.State) {
	if h, ok := e.dyn.(dynamo.Hamiltonian); ok {
		e.initialEnergy = h.Energy(x)
		e.samples = 1
	}
}

func (e *EnergyDrift) OnStep(_ sim.StepRecord, x dynamo.State) {
	h, ok := e.dyn.(dynamo.Hamiltonian)
	if !ok {
		return
	}

	energy := h.Energy(x)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
