package stepper

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dtgrowth/internal/funcs"
)

// Clock is the view of the time loop the stepper reads from. It is owned and
// advanced by the driver.
type Clock interface {
	// Time is the current simulation time.
	Time() float64
	// PreviousDT is the size of the last attempted step, 0 before the first.
	PreviousDT() float64
	// Converged reports whether the last attempted step converged.
	Converged() bool
}

// Params configures a Stepper. Exactly one of Function or the TimeT/TimeDT
// table must be set.
type Params struct {
	Function funcs.Func

	// Deprecated: use Function with a funcs.PiecewiseLinear (Interpolate) or
	// funcs.PiecewiseConstant (stepwise) instead.
	TimeT  []float64
	TimeDT []float64

	// GrowthFactor bounds the ratio of a new step to the previous one.
	// +Inf disables the bound.
	GrowthFactor float64
	MinDT        float64

	// Interpolate selects linear interpolation of the table rather than a
	// stepwise lookup. Ignored for Function.
	Interpolate bool

	// SyncTableKnots makes the table times knots as well.
	SyncTableKnots bool
}

// DefaultParams returns Params with an unbounded growth factor, no minimum
// step and interpolated tables.
func DefaultParams() Params {
	return Params{
		GrowthFactor: math.Inf(1),
		MinDT:        0,
		Interpolate:  true,
	}
}

// Option configures a Stepper in New.
type Option func(*Stepper)

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Stepper) {
		if l != nil {
			s.log = l
		}
	}
}

// Stepper computes the next step size from a table or function, landing on
// knots and limiting growth between steps. It is not safe for concurrent use.
type Stepper struct {
	params  Params
	clock   Clock
	src     source
	knots   knots
	cutback bool
	log     *slog.Logger
}

// New validates p and resolves the step-size source. Piecewise functions
// contribute their breakpoints as knots.
func New(p Params, clock Clock, opts ...Option) (*Stepper, error) {
	if clock == nil {
		return nil, fmt.Errorf("%w: nil clock", ErrConfiguration)
	}
	if math.IsNaN(p.GrowthFactor) || p.GrowthFactor <= 0 {
		return nil, fmt.Errorf("%w: growth_factor must be positive, got %g", ErrConfiguration, p.GrowthFactor)
	}
	if math.IsNaN(p.MinDT) || p.MinDT < 0 {
		return nil, fmt.Errorf("%w: min_dt must be non-negative, got %g", ErrConfiguration, p.MinDT)
	}

	s := &Stepper{
		params: p,
		clock:  clock,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	hasTable := len(p.TimeT) > 0 || len(p.TimeDT) > 0
	switch {
	case hasTable && p.Function != nil:
		return nil, fmt.Errorf("%w: time_t/time_dt and function are mutually exclusive; use only function", ErrConfiguration)
	case hasTable:
		src, err := newTableSource(p.TimeT, p.TimeDT, p.Interpolate)
		if err != nil {
			return nil, err
		}
		s.src = src
		if p.SyncTableKnots {
			s.knots = newKnots(src.times)
		}
		s.log.Warn("time_t/time_dt tables are deprecated; use a piecewise function",
			"interpolate", p.Interpolate, "points", len(p.TimeT))
	case p.Function != nil:
		s.src = &functionSource{fn: p.Function}
		if pw, ok := p.Function.(funcs.Piecewise); ok {
			s.knots = newKnots(funcs.Breakpoints(pw))
		}
	default:
		return nil, fmt.Errorf("%w: a function prescribing the step size is required", ErrConfiguration)
	}

	return s, nil
}

// Init drops knots that are already behind the clock.
func (s *Stepper) Init() {
	s.purge()
}

// ComputeInitialDT returns the size of the first step. There is no previous
// step to grow from, so the growth bounds do not apply.
func (s *Stepper) ComputeInitialDT() float64 {
	return s.compute(false)
}

// ComputeDT returns the size of the next step. It consumes the cutback flag
// set by RejectStep.
func (s *Stepper) ComputeDT() float64 {
	dt := s.compute(true)
	s.cutback = false
	return dt
}

func (s *Stepper) compute(bounded bool) float64 {
	t := s.clock.Time()
	dt := s.src.sample(t)

	if k, ok := s.knots.next(); ok && t+dt >= k {
		dt = k - t
		s.log.Debug("step synced to knot", "time", t, "knot", k, "dt", dt)
	}

	if dt < s.params.MinDT {
		dt = s.params.MinDT
	}

	if !bounded {
		return dt
	}

	prev := s.clock.PreviousDT()
	if prev <= 0 {
		return dt
	}
	limit := prev * s.params.GrowthFactor

	if (!s.clock.Converged() || s.cutback) && dt > limit {
		dt = limit
	}

	// Growth is bounded on every step, not only after a cutback.
	if dt > limit {
		dt = limit
	}

	return dt
}

// PostStep is called after an accepted step.
func (s *Stepper) PostStep() {
	s.purge()
}

// RejectStep records a failed attempt.
func (s *Stepper) RejectStep() {
	s.cutback = true
}

// CutbackOccurred reports whether a rejection is pending for the next ComputeDT.
func (s *Stepper) CutbackOccurred() bool { return s.cutback }

// Params returns the parameters the stepper was built with.
func (s *Stepper) Params() Params { return s.params }

// Knots returns a copy of the pending knots in increasing order.
func (s *Stepper) Knots() []float64 {
	return append([]float64(nil), s.knots...)
}

// NextKnot returns the earliest remaining knot, false when none is left.
func (s *Stepper) NextKnot() (float64, bool) {
	return s.knots.next()
}

func (s *Stepper) purge() {
	if n := s.knots.purge(s.clock.Time()); n > 0 {
		s.log.Debug("knots passed", "time", s.clock.Time(), "removed", n, "remaining", len(s.knots))
	}
}
