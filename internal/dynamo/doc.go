// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [AdaptiveIntegrator]: integrator that also reports a local error estimate
//
// Step sizes are not chosen here. A time loop (see package sim) asks a
// step-size policy for each step and uses the error estimate to accept or
// reject it.
package dynamo
