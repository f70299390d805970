package astrocore

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// Reference case: a mildly eccentric orbit's mean anomaly solved to the
// matching eccentric anomaly.
func TestEccentricAnomalyFromMeanAnomalyScenario(t *testing.T) {
	M := 0.99262603391585447
	e := 0.05
	E, err := eccentricAnomalyFromMeanAnomaly(M, e, 1e-8)
	if err != nil {
		t.Fatalf("eccentricAnomalyFromMeanAnomaly: %v", err)
	}
	want := 1.0356353614863638
	if math.Abs(E-want) > 1e-8 {
		t.Errorf("E = %v, want %v", E, want)
	}
}

// Property 2: anomaly conversions are mutually inverse.
func TestAnomalyConversionsAreMutuallyInverse(t *testing.T) {
	eccentricities := []float64{0, 0.01, 0.3, 0.6, 0.9, 0.99}
	for _, e := range eccentricities {
		for nuDeg := 0; nuDeg < 360; nuDeg += 15 {
			nu := float64(nuDeg) * deg2rad
			E, err := ConvertAnomaly(nu, e, TrueAnomaly, EccentricAnomaly, 1e-13)
			if err != nil {
				t.Fatalf("true->eccentric (e=%v, nu=%v): %v", e, nu, err)
			}
			M, err := ConvertAnomaly(E, e, EccentricAnomaly, MeanAnomaly, 1e-13)
			if err != nil {
				t.Fatalf("eccentric->mean (e=%v): %v", e, err)
			}
			E2, err := ConvertAnomaly(M, e, MeanAnomaly, EccentricAnomaly, 1e-13)
			if err != nil {
				t.Fatalf("mean->eccentric (e=%v): %v", e, err)
			}
			nu2, err := ConvertAnomaly(E2, e, EccentricAnomaly, TrueAnomaly, 1e-13)
			if err != nil {
				t.Fatalf("eccentric->true (e=%v): %v", e, err)
			}

			if !scalar.EqualWithinAbs(WrapTwoPi(nu2), WrapTwoPi(nu), 1e-10) {
				t.Errorf("e=%v nu=%v: round trip gave %v", e, nu, nu2)
			}
		}
	}
}

func TestEccentricAnomalyFromMeanAnomalyCircular(t *testing.T) {
	M := 1.234
	E, err := eccentricAnomalyFromMeanAnomaly(M, 0, 1e-12)
	if err != nil {
		t.Fatalf("eccentricAnomalyFromMeanAnomaly: %v", err)
	}
	if math.Abs(E-WrapTwoPi(M)) > 1e-12 {
		t.Errorf("circular orbit: E = %v, want M = %v", E, M)
	}
}

func TestConvertAnomalyRejectsParabolic(t *testing.T) {
	if _, err := ConvertAnomaly(0.1, 1.0, TrueAnomaly, MeanAnomaly, 1e-8); err == nil {
		t.Fatal("expected ConicSingular for e == 1")
	}
}

func TestConvertAnomalyIdentity(t *testing.T) {
	got, err := ConvertAnomaly(1.5, 0.2, TrueAnomaly, TrueAnomaly, 1e-8)
	if err != nil {
		t.Fatalf("ConvertAnomaly: %v", err)
	}
	if math.Abs(got-1.5) > 1e-12 {
		t.Errorf("identity conversion changed the angle: got %v, want 1.5", got)
	}
}

func TestHyperbolicAnomalyConversions(t *testing.T) {
	e := 1.5
	H := 0.8
	nu, err := trueAnomalyFromEccentricAnomaly(H, e)
	if err != nil {
		t.Fatalf("trueAnomalyFromEccentricAnomaly: %v", err)
	}
	H2, err := eccentricAnomalyFromTrueAnomaly(nu, e)
	if err != nil {
		t.Fatalf("eccentricAnomalyFromTrueAnomaly: %v", err)
	}
	if math.Abs(H2-H) > 1e-8 {
		t.Errorf("hyperbolic round trip: got %v, want %v", H2, H)
	}
}
