// Package metrics accumulates per-run statistics from accepted steps. Every
// metric is a sim.Observer and can be attached to a driver with AddObserver.
package metrics

import "github.com/san-kum/dtgrowth/internal/sim"

type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Set attaches several metrics to a driver at once and reports them by name.
type Set []Metric

func (s Set) Attach(d *sim.Driver) {
	for _, m := range s {
		d.AddObserver(m)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}
