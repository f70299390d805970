package integrator

import (
	"math"
	"testing"
)

func TestRKF78StepAcceptsWithinTolerance(t *testing.T) {
	f := IntegrableFunc(func(t float64, y []float64) []float64 {
		return []float64{y[0]} // dy/dt = y
	})

	r := NewRKF78(1e-12, 1e-12)
	y := []float64{1}
	yNext, hUsed, hNext, accepted, err := r.Step(f, 0, 0.1, y)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !accepted {
		t.Fatal("expected the step to be accepted at tight tolerance with a small step")
	}
	if hUsed != 0.1 {
		t.Errorf("hUsed = %v, want 0.1", hUsed)
	}
	if hNext <= 0 {
		t.Errorf("hNext should be positive, got %v", hNext)
	}

	want := math.Exp(0.1)
	if math.Abs(yNext[0]-want) > 1e-9 {
		t.Errorf("yNext = %v, want close to %v", yNext[0], want)
	}
}

func TestRKF78StepRejectsOversizedStep(t *testing.T) {
	// A stiff-ish exponential with a very large step and very tight
	// tolerance should be rejected and the controller should propose a
	// smaller step to retry with.
	f := IntegrableFunc(func(t float64, y []float64) []float64 {
		return []float64{50 * y[0]}
	})

	r := NewRKF78(1e-14, 1e-14)
	y := []float64{1}
	_, _, hNext, accepted, err := r.Step(f, 0, 2.0, y)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if accepted {
		t.Fatal("expected a large step on a fast-growing exponential to be rejected at tight tolerance")
	}
	if hNext >= 2.0 {
		t.Errorf("rejected step should propose a smaller retry step, got %v", hNext)
	}
}

func TestRKF78ConservesEnergyOverManySteps(t *testing.T) {
	// Harmonic oscillator: dx/dt = v, dv/dt = -x.
	f := IntegrableFunc(func(t float64, y []float64) []float64 {
		return []float64{y[1], -y[0]}
	})

	r := NewRKF78(1e-10, 1e-10)
	y := []float64{1, 0}
	tt, h := 0.0, 0.1
	target := 2 * math.Pi

	for tt < target {
		if tt+h > target {
			h = target - tt
		}
		next, _, hNext, accepted, err := r.Step(f, tt, h, y)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if !accepted {
			h = hNext
			continue
		}
		y = next
		tt += h
		h = hNext
	}

	energy := 0.5*y[0]*y[0] + 0.5*y[1]*y[1]
	if math.Abs(energy-0.5) > 1e-6 {
		t.Errorf("energy after one period = %v, want close to 0.5", energy)
	}
}
