package astrocore

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const muEarth = 3.986004418e14

// Circular equatorial orbit: position along x, velocity along y.
func TestToCartesianCircularEquatorial(t *testing.T) {
	coe := NewCOE(7000e3, 0, 0, 0, 0, 0, TrueAnomaly)
	state, err := coe.ToCartesian(muEarth, GCRF)
	if err != nil {
		t.Fatalf("ToCartesian: %v", err)
	}

	wantPos := []float64{7_000_000, 0, 0}
	wantVel := []float64{0, 7546.053290, 0}

	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinRel(state.Position[i], wantPos[i], 1e-10) && !scalar.EqualWithinAbs(state.Position[i], wantPos[i], 1e-6) {
			t.Errorf("position[%d] = %v, want %v", i, state.Position[i], wantPos[i])
		}
		if !scalar.EqualWithinRel(state.Velocity[i], wantVel[i], 1e-10) && !scalar.EqualWithinAbs(state.Velocity[i], wantVel[i], 1e-6) {
			t.Errorf("velocity[%d] = %v, want %v", i, state.Velocity[i], wantVel[i])
		}
	}
}

// Inclined, mildly eccentric orbit against reference values.
func TestToCartesianInclinedNonCircular(t *testing.T) {
	coe := NewCOE(7000e3, 0.05, 45*deg2rad, 10*deg2rad, 20*deg2rad, 30*deg2rad, TrueAnomaly)
	state, err := coe.ToCartesian(muEarth, GCRF)
	if err != nil {
		t.Fatalf("ToCartesian: %v", err)
	}

	wantPos := []float64{3_607_105.0915, 4_317_224.0559, 3_625_268.4959}
	wantVel := []float64{-6467.0829, 2601.6692, 3685.1412}

	for i := 0; i < 3; i++ {
		if math.Abs(state.Position[i]-wantPos[i]) > 1e-2 {
			t.Errorf("position[%d] = %v, want %v", i, state.Position[i], wantPos[i])
		}
		if math.Abs(state.Velocity[i]-wantVel[i]) > 1e-3 {
			t.Errorf("velocity[%d] = %v, want %v", i, state.Velocity[i], wantVel[i])
		}
	}
}

// Property 1: COE round-trip through Cartesian and back.
func TestCOERoundTrip(t *testing.T) {
	cases := []COE{
		NewCOE(7000e3, 0.1, 10*deg2rad, 30*deg2rad, 40*deg2rad, 50*deg2rad, TrueAnomaly),
		NewCOE(8000e3, 0.5, 45*deg2rad, 120*deg2rad, 200*deg2rad, 300*deg2rad, TrueAnomaly),
		NewCOE(42164e3, 0.01, 1*deg2rad, 0, 0, 180*deg2rad, TrueAnomaly),
		NewCOE(7200e3, 0.2, 90*deg2rad, 45*deg2rad, 10*deg2rad, 10*deg2rad, TrueAnomaly),
		NewCOE(9000e3, 0.7, 170*deg2rad, 200*deg2rad, 20*deg2rad, 350*deg2rad, TrueAnomaly),
	}

	for _, coe := range cases {
		state, err := coe.ToCartesian(muEarth, GCRF)
		if err != nil {
			t.Fatalf("ToCartesian(%+v): %v", coe, err)
		}
		got, err := FromCartesian(state.Position, state.Velocity, GCRF, muEarth)
		if err != nil {
			t.Fatalf("FromCartesian round trip: %v", err)
		}

		if !scalar.EqualWithinRel(got.SemiMajorAxis, coe.SemiMajorAxis, 1e-9) {
			t.Errorf("a = %v, want %v", got.SemiMajorAxis, coe.SemiMajorAxis)
		}
		if !scalar.EqualWithinAbs(got.Eccentricity, coe.Eccentricity, 1e-10) {
			t.Errorf("e = %v, want %v", got.Eccentricity, coe.Eccentricity)
		}
		if !scalar.EqualWithinAbs(got.Inclination, coe.Inclination, 1e-10) {
			t.Errorf("i = %v, want %v", got.Inclination, coe.Inclination)
		}
		gotNu, err := got.TrueAnomaly(1e-12)
		if err != nil {
			t.Fatalf("TrueAnomaly: %v", err)
		}
		wantNu, _ := coe.TrueAnomaly(1e-12)
		if !scalar.EqualWithinAbs(gotNu, wantNu, 1e-9) {
			t.Errorf("nu = %v, want %v", gotNu, wantNu)
		}
	}
}

func TestToCartesianRejectsParabolic(t *testing.T) {
	coe := NewCOE(7000e3, 1.0, 0, 0, 0, 0, TrueAnomaly)
	if _, err := coe.ToCartesian(muEarth, GCRF); err == nil {
		t.Fatal("expected an error for a parabolic orbit")
	} else if cerr, ok := err.(*Error); !ok || cerr.Kind != ConicSingular {
		t.Errorf("expected ConicSingular, got %v", err)
	}
}

func TestToCartesianRejectsNonQuasiInertialFrame(t *testing.T) {
	coe := NewCOE(7000e3, 0, 0, 0, 0, 0, TrueAnomaly)
	rotating := NewFrame("ITRF", false)
	if _, err := coe.ToCartesian(muEarth, rotating); err == nil {
		t.Fatal("expected an error for a non-quasi-inertial frame")
	} else if cerr, ok := err.(*Error); !ok || cerr.Kind != FrameNotQuasiInertial {
		t.Errorf("expected FrameNotQuasiInertial, got %v", err)
	}
}

func TestFromCartesianRejectsZeroAngularMomentum(t *testing.T) {
	position := []float64{7000e3, 0, 0}
	velocity := []float64{1, 0, 0} // parallel to position: h = 0
	if _, err := FromCartesian(position, velocity, GCRF, muEarth); err == nil {
		t.Fatal("expected an error for zero angular momentum")
	}
}

func TestFrozenOrbitFromInclination(t *testing.T) {
	params := FrozenOrbitParams{
		SemiMajorAxis:       7000e3,
		J2:                  1082.6269e-6,
		J3:                  -2.5324e-6,
		EquatorialRadius:    6378.1363e3,
		Inclination:         63.4349 * deg2rad,
		IncludesInclination: true,
		RAAN:                0,
		AOP:                 math.Pi / 2,
		Anomaly:             0,
	}
	coe, err := FrozenOrbit(params)
	if err != nil {
		t.Fatalf("FrozenOrbit: %v", err)
	}
	eCoefficient := -params.J3 * params.EquatorialRadius / (2.0 * params.J2 * params.SemiMajorAxis)
	wantE := eCoefficient * math.Sin(params.Inclination)
	if !scalar.EqualWithinRel(coe.Eccentricity, wantE, 1e-9) {
		t.Errorf("e = %v, want %v", coe.Eccentricity, wantE)
	}
}

func TestFrozenOrbitRejectsNonCriticalAnglesWithoutInclinationOrEccentricity(t *testing.T) {
	params := FrozenOrbitParams{
		SemiMajorAxis:    7000e3,
		J2:               1082.6269e-6,
		J3:               -2.5324e-6,
		EquatorialRadius: 6378.1363e3,
		RAAN:             0,
		AOP:              10 * deg2rad, // not critical
		Anomaly:          0,
	}
	if _, err := FrozenOrbit(params); err == nil {
		t.Fatal("expected an error: neither AOP nor inclination is critical")
	}
}

func TestDerivedScalars(t *testing.T) {
	coe := NewCOE(7000e3, 0.1, 0, 0, 0, 0, TrueAnomaly)
	if got, want := coe.SemiLatusRectum(), 7000e3*(1-0.01); math.Abs(got-want) > 1e-6 {
		t.Errorf("SemiLatusRectum = %v, want %v", got, want)
	}
	if got, want := coe.PeriapsisRadius(), 7000e3*0.9; math.Abs(got-want) > 1e-6 {
		t.Errorf("PeriapsisRadius = %v, want %v", got, want)
	}
	if got, want := coe.ApoapsisRadius(), 7000e3*1.1; math.Abs(got-want) > 1e-6 {
		t.Errorf("ApoapsisRadius = %v, want %v", got, want)
	}
	period := coe.Period(muEarth)
	n := coe.MeanMotion(muEarth)
	if math.Abs(period-2*math.Pi/n) > 1e-9 {
		t.Errorf("Period inconsistent with MeanMotion")
	}
}
