// Package integrator provides fixed-step and adaptive-step numerical
// integration over plain []float64 state vectors, decoupled from any
// particular state layout.
package integrator

// Integrable is a first-order ODE right-hand side: given time t and state
// y, it returns dy/dt. The run-loop bookkeeping (state storage, stop
// decisions) belongs to the callers -- the propagator and segment solving
// drive the stepper one step at a time, since event-condition bisection
// needs to inspect intermediate states.
type Integrable interface {
	Func(t float64, y []float64) []float64
}

// IntegrableFunc adapts a plain function to Integrable.
type IntegrableFunc func(t float64, y []float64) []float64

func (f IntegrableFunc) Func(t float64, y []float64) []float64 { return f(t, y) }
