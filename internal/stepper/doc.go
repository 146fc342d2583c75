// Package stepper implements an adaptive timestep-size policy driven by a
// prescribed step-size source.
//
// The step size comes from either a table of (time, dt) pairs or a time
// function (see package funcs). On top of that value the policy
//
//   - lands exactly on knot times (breakpoints of a piecewise function),
//   - never returns less than a minimum step,
//   - limits growth relative to the previous step by a growth factor, both
//     after a failed solve and on every regular step.
//
// A [Stepper] does not own the simulation clock. The driver that does
// implements [Clock]; the stepper pulls the current time, the previous step
// size and the convergence flag from it whenever a step size is requested.
//
// The driver calls, in order: [Stepper.Init] once, then per step
// [Stepper.ComputeInitialDT] (first step) or [Stepper.ComputeDT], and after
// the attempt either [Stepper.PostStep] (accepted) or [Stepper.RejectStep]
// (failed).
//
// # Thread Safety
//
// A Stepper is NOT safe for concurrent use. It is meant to be called from a
// single sequential time loop.
package stepper
