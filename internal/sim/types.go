package sim

import "github.com/san-kum/dtgrowth/internal/dynamo"

// Policy chooses step sizes for the driver. *stepper.Stepper implements it.
type Policy interface {
	Init()
	ComputeInitialDT() float64
	ComputeDT() float64
	PostStep()
	RejectStep()
}

// knotPolicy is implemented by policies that expose their next knot.
type knotPolicy interface {
	NextKnot() (float64, bool)
}

type Observer interface {
	OnStep(rec StepRecord, x dynamo.State)
}

type Config struct {
	StartTime float64
	Duration  float64
	// Tolerance is passed to adaptive integrators; a step whose error ratio
	// exceeds 1 is rejected.
	Tolerance     float64
	CutbackFactor float64
	MaxCutbacks   int
	MinStep       float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      10.0,
		Tolerance:     1e-6,
		CutbackFactor: 0.5,
		MaxCutbacks:   20,
		MinStep:       1e-14,
		ValidateState: true,
	}
}

// StepRecord describes one accepted step.
type StepRecord struct {
	Step     int     `json:"step"`
	Time     float64 `json:"time"`
	DT       float64 `json:"dt"`
	Cutbacks int     `json:"cutbacks"`
	OnKnot   bool    `json:"on_knot"`
}

type Result struct {
	Times       []float64
	States      []dynamo.State
	Steps       []StepRecord
	Accepted    int
	Rejected    int
	EnergyDrift float64
}

// DTs returns the accepted step sizes in order.
func (r *Result) DTs() []float64 {
	dts := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		dts[i] = s.DT
	}
	return dts
}
