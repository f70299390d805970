package integrator

import (
	"math"
	"testing"
)

// Exponential growth dy/dt = y, y(0) = 1 has the exact solution y = e^t;
// RK4 should match it to 4th-order accuracy over a modest step.
func TestRK4StepMatchesExponential(t *testing.T) {
	f := IntegrableFunc(func(t float64, y []float64) []float64 {
		return []float64{y[0]}
	})

	y := []float64{1}
	h := 0.01
	steps := 100 // t: 0 -> 1
	tt := 0.0
	for i := 0; i < steps; i++ {
		y = RK4Step(f, tt, h, y)
		tt += h
	}

	want := math.Exp(1)
	if math.Abs(y[0]-want) > 1e-6 {
		t.Errorf("RK4 exponential integration: got %v, want %v", y[0], want)
	}
}

// Simple harmonic oscillator conserves energy; RK4 drifts slowly but a
// single period should stay close to the initial amplitude.
func TestRK4StepHarmonicOscillator(t *testing.T) {
	f := IntegrableFunc(func(t float64, y []float64) []float64 {
		return []float64{y[1], -y[0]}
	})

	y := []float64{1, 0} // x(0)=1, v(0)=0 -> x(t) = cos(t)
	h := 0.001
	period := 2 * math.Pi
	steps := int(period / h)
	tt := 0.0
	for i := 0; i < steps; i++ {
		y = RK4Step(f, tt, h, y)
		tt += h
	}

	if math.Abs(y[0]-1) > 1e-3 {
		t.Errorf("after one period, x = %v, want close to 1", y[0])
	}
}

func TestPropagateStopsOnCondition(t *testing.T) {
	f := IntegrableFunc(func(t float64, y []float64) []float64 {
		return []float64{1} // dy/dt = 1 -> y = t
	})

	tFinal, yFinal := Propagate(f, 0, []float64{0}, 0.1, 1000, func(tt float64, y []float64) bool {
		return y[0] >= 5.0
	})

	if tFinal < 5.0 || tFinal > 5.2 {
		t.Errorf("Propagate should stop near t=5, got t=%v", tFinal)
	}
	if yFinal[0] < 5.0 {
		t.Errorf("yFinal = %v, want >= 5", yFinal[0])
	}
}
