package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/dtgrowth/internal/dynamo"
	"github.com/san-kum/dtgrowth/internal/sim"
)

// MaxGrowth tracks the largest ratio between consecutive accepted step sizes.
// Steps taken after a cutback or ending on a knot are excluded, since both
// legitimately shrink dt and the following step is measured against them.
type MaxGrowth struct {
	prev     float64
	maxRatio float64
}

func NewMaxGrowth() *MaxGrowth { return &MaxGrowth{} }

func (m *MaxGrowth) Name() string { return "max_growth" }

func (m *MaxGrowth) OnStep(rec sim.StepRecord, _ dynamo.State) {
	if m.prev > 0 && rec.Cutbacks == 0 && !rec.OnKnot {
		m.maxRatio = math.Max(m.maxRatio, rec.DT/m.prev)
	}
	m.prev = rec.DT
}

func (m *MaxGrowth) Value() float64 { return m.maxRatio }

func (m *MaxGrowth) Reset() {
	m.prev = 0
	m.maxRatio = 0
}

// CutbackRate is the number of rejected attempts per accepted step.
type CutbackRate struct {
	steps    int
	cutbacks int
}

func NewCutbackRate() *CutbackRate { return &CutbackRate{} }

func (c *CutbackRate) Name() string { return "cutback_rate" }

func (c *CutbackRate) OnStep(rec sim.StepRecord, _ dynamo.State) {
	c.steps++
	c.cutbacks += rec.Cutbacks
}

func (c *CutbackRate) Value() float64 {
	if c.steps == 0 {
		return 0
	}
	return float64(c.cutbacks) / float64(c.steps)
}

func (c *CutbackRate) Reset() {
	c.steps = 0
	c.cutbacks = 0
}

// MeanDT is the mean accepted step size.
type MeanDT struct {
	dts []float64
}

func NewMeanDT() *MeanDT { return &MeanDT{} }

func (m *MeanDT) Name() string { return "mean_dt" }

func (m *MeanDT) OnStep(rec sim.StepRecord, _ dynamo.State) {
	m.dts = append(m.dts, rec.DT)
}

func (m *MeanDT) Value() float64 {
	if len(m.dts) == 0 {
		return 0
	}
	return stat.Mean(m.dts, nil)
}

func (m *MeanDT) Reset() { m.dts = m.dts[:0] }
