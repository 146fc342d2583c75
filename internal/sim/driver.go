package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dtgrowth/internal/dynamo"
)

// Driver is a sequential time loop. It owns the clock that a Policy reads
// through Time, PreviousDT and Converged.
type Driver struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	cfg        Config
	observers  []Observer
	log        *slog.Logger

	t         float64
	dt        float64
	converged bool
}

func New(dyn dynamo.System, integrator dynamo.Integrator, cfg Config) *Driver {
	return &Driver{
		dyn:        dyn,
		integrator: integrator,
		cfg:        cfg,
		log:        slog.Default(),
		t:          cfg.StartTime,
		converged:  true,
	}
}

func (d *Driver) SetLogger(l *slog.Logger) {
	if l != nil {
		d.log = l
	}
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) Time() float64       { return d.t }
func (d *Driver) PreviousDT() float64 { return d.dt }
func (d *Driver) Converged() bool     { return d.converged }

func (d *Driver) validateConfig() error {
	if d.cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", d.cfg.Duration)
	}
	if d.cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", d.cfg.Tolerance)
	}
	if d.cfg.CutbackFactor <= 0 || d.cfg.CutbackFactor >= 1 {
		return fmt.Errorf("cutback factor must be in (0, 1), got %g", d.cfg.CutbackFactor)
	}
	if d.cfg.MaxCutbacks < 0 {
		return fmt.Errorf("max cutbacks must be non-negative, got %d", d.cfg.MaxCutbacks)
	}
	return nil
}

// Run integrates from x0 over the configured duration, asking p for every
// step size. A failed attempt is reported to p with RejectStep and retried
// with a smaller step.
func (d *Driver) Run(ctx context.Context, x0 dynamo.State, p Policy) (*Result, error) {
	if err := d.validateConfig(); err != nil {
		return nil, err
	}
	if len(x0) != d.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system needs %d", dynamo.ErrDimensionMismatch, len(x0), d.dyn.StateDim())
	}

	d.t = d.cfg.StartTime
	d.dt = 0
	d.converged = true

	tEnd := d.cfg.StartTime + d.cfg.Duration
	eps := 1e-12 * math.Max(1, math.Abs(tEnd))

	kp, _ := p.(knotPolicy)

	result := &Result{
		Times:  []float64{d.t},
		States: []dynamo.State{x0.Clone()},
	}

	x := x0.Clone()
	initialEnergy := d.computeEnergy(x)

	p.Init()

	for step := 0; tEnd-d.t > eps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var dt float64
		if step == 0 {
			dt = p.ComputeInitialDT()
		} else {
			dt = p.ComputeDT()
		}
		if d.t+dt > tEnd {
			dt = tEnd - d.t
		}

		knot, hasKnot := 0.0, false
		if kp != nil {
			knot, hasKnot = kp.NextKnot()
		}

		var newX dynamo.State
		cutbacks := 0
		for {
			if dt < d.cfg.MinStep || math.IsNaN(dt) {
				return result, &dynamo.SimulationError{Step: step, Time: d.t, DT: dt, Wrapped: dynamo.ErrStepTooSmall}
			}

			var reason error
			newX, reason = d.attempt(x, dt)
			d.dt = dt
			if reason == nil {
				d.converged = true
				break
			}

			d.converged = false
			result.Rejected++
			cutbacks++
			d.log.Warn("step rejected", "step", step, "time", d.t, "dt", dt, "reason", reason)
			if cutbacks > d.cfg.MaxCutbacks {
				return result, &dynamo.SimulationError{Step: step, Time: d.t, DT: dt, Wrapped: fmt.Errorf("%w: %v", dynamo.ErrTooManyCutbacks, reason)}
			}

			p.RejectStep()
			retry := dt * d.cfg.CutbackFactor
			if next := p.ComputeDT(); next < retry {
				retry = next
			}
			dt = retry
		}

		x = newX
		d.t += dt
		result.Accepted++

		rec := StepRecord{
			Step:     step,
			Time:     d.t,
			DT:       dt,
			Cutbacks: cutbacks,
			OnKnot:   hasKnot && math.Abs(d.t-knot) < 1e-10,
		}
		result.Steps = append(result.Steps, rec)
		result.Times = append(result.Times, d.t)
		result.States = append(result.States, x.Clone())

		p.PostStep()

		for _, obs := range d.observers {
			obs.OnStep(rec, x)
		}
	}

	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(d.computeEnergy(x)-initialEnergy) / math.Abs(initialEnergy)
	}

	d.log.Info("run finished", "time", d.t, "accepted", result.Accepted, "rejected", result.Rejected)

	return result, nil
}

// attempt returns the new state and nil when the step converged, or the
// reason it did not.
func (d *Driver) attempt(x dynamo.State, dt float64) (dynamo.State, error) {
	var newX dynamo.State
	ratio := 0.0
	if adaptive, ok := d.integrator.(dynamo.AdaptiveIntegrator); ok {
		newX, ratio = adaptive.StepWithError(d.dyn, x, d.t, dt, d.cfg.Tolerance)
	} else {
		newX = d.integrator.Step(d.dyn, x, d.t, dt)
	}

	if d.cfg.ValidateState && !newX.IsValid() {
		return newX, dynamo.ErrInvalidState
	}
	if ratio > 1 || math.IsNaN(ratio) {
		return newX, fmt.Errorf("error ratio %.3g exceeds tolerance", ratio)
	}
	return newX, nil
}

func (d *Driver) computeEnergy(x dynamo.State) float64 {
	if h, ok := d.dyn.(dynamo.Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}
