package astrocore

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func epoch() Instant {
	return NewInstant(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

// 60 min two-body propagation against reference values, computed via the
// closed-form StateAt under PerturbationNone.
func TestKeplerStateAtNoneScenario(t *testing.T) {
	position := []float64{7_000_000, 0, 0}
	velocity := []float64{0, 7546.053290, 0}
	coe, err := FromCartesian(position, velocity, GCRF, muEarth)
	if err != nil {
		t.Fatalf("FromCartesian: %v", err)
	}

	kepler, err := NewKepler(coe, epoch(), muEarth, 0, 0, 0, PerturbationNone, 0)
	if err != nil {
		t.Fatalf("NewKepler: %v", err)
	}

	state, err := kepler.StateAt(epoch().Add(DurationFromSeconds(3600)))
	if err != nil {
		t.Fatalf("StateAt: %v", err)
	}

	wantPos := []float64{-5_172_890.4138, -4_716_058.1941, 0}
	wantVel := []float64{5083.9466, -5576.4152, 0}

	for i := 0; i < 3; i++ {
		if math.Abs(state.Position[i]-wantPos[i]) > 1.0 {
			t.Errorf("position[%d] = %v, want %v", i, state.Position[i], wantPos[i])
		}
		if math.Abs(state.Velocity[i]-wantVel[i]) > 1e-2 {
			t.Errorf("velocity[%d] = %v, want %v", i, state.Velocity[i], wantVel[i])
		}
	}
}

// Property 3: Keplerian energy conservation under PerturbationNone.
func TestKeplerEnergyConservation(t *testing.T) {
	coe := NewCOE(7000e3, 0.1, 20*deg2rad, 10*deg2rad, 30*deg2rad, 0, TrueAnomaly)
	kepler, err := NewKepler(coe, epoch(), muEarth, 0, 0, 0, PerturbationNone, 0)
	if err != nil {
		t.Fatalf("NewKepler: %v", err)
	}

	initial, err := coe.ToCartesian(muEarth, GCRF)
	if err != nil {
		t.Fatalf("ToCartesian: %v", err)
	}
	r0 := Norm(initial.Position)
	v0 := Norm(initial.Velocity)
	energy0 := 0.5*v0*v0 - muEarth/r0

	period := coe.Period(muEarth)
	for frac := 0.0; frac <= 1.0; frac += 0.05 {
		state, err := kepler.StateAt(epoch().Add(DurationFromSeconds(frac * period)))
		if err != nil {
			t.Fatalf("StateAt at frac %v: %v", frac, err)
		}
		r := Norm(state.Position)
		v := Norm(state.Velocity)
		energy := 0.5*v*v - muEarth/r
		if !scalar.EqualWithinRel(energy, energy0, 1e-9) {
			t.Errorf("frac=%v: energy = %v, want %v (rel tol 1e-9)", frac, energy, energy0)
		}
	}
}

// Property 4: J2 secular rates -- a, e, i constant; RAAN advances by
// RAANDot*dt.
func TestKeplerJ2SecularRates(t *testing.T) {
	coe := NewCOE(7000e3, 0.01, 45*deg2rad, 10*deg2rad, 30*deg2rad, 0, TrueAnomaly)
	j2 := Earth.J2
	req := Earth.RadiusMeters

	kepler, err := NewKepler(coe, epoch(), muEarth, req, j2, 0, PerturbationJ2, 0)
	if err != nil {
		t.Fatalf("NewKepler: %v", err)
	}

	nBar, aopDot, raanDot := kepler.j2Rates()
	period := 2 * math.Pi / (nBar + aopDot) // nodal period

	nRevs := 5.0
	dt := nRevs * period
	state, err := kepler.StateAt(epoch().Add(DurationFromSeconds(dt)))
	if err != nil {
		t.Fatalf("StateAt: %v", err)
	}

	gotCOE, err := FromCartesian(state.Position, state.Velocity, GCRF, muEarth)
	if err != nil {
		t.Fatalf("FromCartesian: %v", err)
	}

	if !scalar.EqualWithinAbs(gotCOE.SemiMajorAxis, coe.SemiMajorAxis, 1e-3) {
		t.Errorf("a drifted: got %v, want %v", gotCOE.SemiMajorAxis, coe.SemiMajorAxis)
	}
	if !scalar.EqualWithinAbs(gotCOE.Eccentricity, coe.Eccentricity, 1e-9) {
		t.Errorf("e drifted: got %v, want %v", gotCOE.Eccentricity, coe.Eccentricity)
	}
	if !scalar.EqualWithinAbs(gotCOE.Inclination, coe.Inclination, 1e-9) {
		t.Errorf("i drifted: got %v, want %v", gotCOE.Inclination, coe.Inclination)
	}

	wantRAAN := WrapTwoPi(coe.RAAN + raanDot*dt)
	if !scalar.EqualWithinAbs(gotCOE.RAAN, wantRAAN, 1e-8) {
		t.Errorf("RAAN = %v, want %v (raanDot=%v, dt=%v)", gotCOE.RAAN, wantRAAN, raanDot, dt)
	}
}

func TestKeplerRevolutionNumberAt(t *testing.T) {
	coe := NewCOE(7000e3, 0, 0, 0, 0, 0, TrueAnomaly)
	kepler, err := NewKepler(coe, epoch(), muEarth, 0, 0, 0, PerturbationNone, 3)
	if err != nil {
		t.Fatalf("NewKepler: %v", err)
	}
	period := coe.Period(muEarth)

	rev, err := kepler.RevolutionNumberAt(epoch().Add(DurationFromSeconds(2.5 * period)))
	if err != nil {
		t.Fatalf("RevolutionNumberAt: %v", err)
	}
	if rev != 5 { // floor(2.5) + 3
		t.Errorf("RevolutionNumberAt = %v, want 5", rev)
	}
}

func TestNewKeplerRequiresDefinedInputs(t *testing.T) {
	if _, err := NewKepler(UndefinedCOE(), epoch(), muEarth, 0, 0, 0, PerturbationNone, 0); err == nil {
		t.Fatal("expected an error for an undefined COE")
	}
	coe := NewCOE(7000e3, 0, 0, 0, 0, 0, TrueAnomaly)
	if _, err := NewKepler(coe, UndefinedInstant(), muEarth, 0, 0, 0, PerturbationNone, 0); err == nil {
		t.Fatal("expected an error for an undefined epoch")
	}
	if _, err := NewKepler(coe, epoch(), 0, 0, 0, 0, PerturbationNone, 0); err == nil {
		t.Fatal("expected an error for an undefined mu")
	}
}
