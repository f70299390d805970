package astrocore

import "math"

// AnomalyType tags which of the three anomaly conventions a stored angle
// represents.
type AnomalyType uint8

const (
	TrueAnomaly AnomalyType = iota
	MeanAnomaly
	EccentricAnomaly
)

func (t AnomalyType) String() string {
	switch t {
	case TrueAnomaly:
		return "True"
	case MeanAnomaly:
		return "Mean"
	case EccentricAnomaly:
		return "Eccentric"
	default:
		return "Unknown"
	}
}

const parabolicTolerance = 1e-11

// eccentricAnomalyFromTrueAnomaly converts true anomaly (rad) to eccentric
// (or, for e > 1, hyperbolic) anomaly.
func eccentricAnomalyFromTrueAnomaly(nu, e float64) (float64, error) {
	if math.Abs(1.0-e) <= parabolicTolerance {
		return 0, New(ConicSingular, "parabolic orbits are not supported")
	}
	if e < 1.0 {
		if e == 0.0 {
			return WrapTwoPi(nu), nil
		}
		E := math.Atan2(math.Sqrt(1.0-e*e)*math.Sin(nu), e+math.Cos(nu))
		return WrapTwoPi(E), nil
	}
	// Hyperbolic.
	if math.Abs(nu)+1e-5 >= math.Pi-math.Acos(1.0/e) {
		return 0, New(WrongInput, "true anomaly %f rad is not reachable on a hyperbolic orbit with e=%f", nu, e)
	}
	H := 2.0 * math.Atanh(math.Sqrt((e-1.0)/(e+1.0))*math.Tan(nu/2.0))
	return H, nil
}

// trueAnomalyFromEccentricAnomaly converts eccentric (or hyperbolic) anomaly
// back to true anomaly.
func trueAnomalyFromEccentricAnomaly(E, e float64) (float64, error) {
	if math.Abs(1.0-e) <= parabolicTolerance {
		return 0, New(ConicSingular, "parabolic orbits are not supported")
	}
	if e < 1.0 {
		if e == 0.0 {
			return WrapTwoPi(E), nil
		}
		nu := math.Atan2(math.Sqrt(1.0-e*e)*math.Sin(E), math.Cos(E)-e)
		return WrapTwoPi(nu), nil
	}
	nu := 2.0 * math.Atan2(math.Sqrt(e+1.0)*math.Sinh(E/2.0), math.Sqrt(e-1.0)*math.Cosh(E/2.0))
	return nu, nil
}

// meanAnomalyFromEccentricAnomaly applies Kepler's equation.
func meanAnomalyFromEccentricAnomaly(E, e float64) float64 {
	if e < 1.0 {
		return WrapTwoPi(E - e*math.Sin(E))
	}
	return e*math.Sinh(E) - E
}

// eps3 is Danby's cubic-order correction to a trial eccentric anomaly.
func eps3(M, e, E float64) float64 {
	fn := E - e*math.Sin(E) - M
	fp := 1.0 - e*math.Cos(E)
	fpp := e * math.Sin(E)
	fppp := e * math.Cos(E)
	delta1 := -fn / fp
	delta2 := -fn / (fp + 0.5*delta1*fpp)
	delta3 := -fn / (fp + 0.5*delta2*fpp + delta2*delta2*fppp/6.0)
	return delta3
}

// eccentricAnomalyFromMeanAnomaly solves Kepler's equation M = E - e*sin(E)
// via Danby's cubic-order iteration, seeded by keplerstart3.
func eccentricAnomalyFromMeanAnomaly(M, e, tolerance float64) (float64, error) {
	if math.Abs(1.0-e) <= parabolicTolerance {
		return 0, New(ConicSingular, "parabolic orbits are not supported")
	}
	M = WrapTwoPi(M)

	if e < 1.0 {
		cosM := math.Cos(M)
		E := M + math.Sin(M)*(e+(e*e+1.5*cosM*e*e)*cosM-0.5*e*e*e)

		const maxIterations = 1000
		for iter := 0; iter < maxIterations; iter++ {
			delta := eps3(M, e, E)
			E += delta
			if math.Abs(delta) <= tolerance {
				return WrapTwoPi(E), nil
			}
		}
		return 0, New(DidNotConverge, "mean-to-eccentric anomaly solve did not converge within %d iterations", maxIterations)
	}

	// Hyperbolic: Newton's method on e*sinh(H) - H = M, seeded per Conway.
	H := M
	if math.Abs(M) > 1 {
		H = Sign(M) * math.Log(2.0*math.Abs(M)/e+1.8)
	}
	const maxIterations = 1000
	for iter := 0; iter < maxIterations; iter++ {
		fn := e*math.Sinh(H) - H - M
		fp := e*math.Cosh(H) - 1.0
		delta := -fn / fp
		H += delta
		if math.Abs(delta) <= tolerance {
			return H, nil
		}
	}
	return 0, New(DidNotConverge, "mean-to-hyperbolic anomaly solve did not converge within %d iterations", maxIterations)
}

// trueAnomalyFromMeanAnomaly composes mean->eccentric->true.
func trueAnomalyFromMeanAnomaly(M, e, tolerance float64) (float64, error) {
	E, err := eccentricAnomalyFromMeanAnomaly(M, e, tolerance)
	if err != nil {
		return 0, err
	}
	return trueAnomalyFromEccentricAnomaly(E, e)
}

// ConvertAnomaly converts an anomaly angle (radians) from one convention to
// another, dispatching through whichever intermediate conversions are
// needed. Every other anomaly helper in this package routes through the
// same pairwise conversions.
func ConvertAnomaly(angle, e float64, from, to AnomalyType, tolerance float64) (float64, error) {
	if from == to {
		return WrapTwoPi(angle), nil
	}

	var asTrue, asMean, asEccentric float64
	var err error

	switch from {
	case TrueAnomaly:
		asTrue = WrapTwoPi(angle)
		asEccentric, err = eccentricAnomalyFromTrueAnomaly(asTrue, e)
		if err != nil {
			return 0, err
		}
		asMean = meanAnomalyFromEccentricAnomaly(asEccentric, e)
	case EccentricAnomaly:
		asEccentric = angle
		asMean = meanAnomalyFromEccentricAnomaly(asEccentric, e)
		asTrue, err = trueAnomalyFromEccentricAnomaly(asEccentric, e)
		if err != nil {
			return 0, err
		}
	case MeanAnomaly:
		asMean = WrapTwoPi(angle)
		asEccentric, err = eccentricAnomalyFromMeanAnomaly(asMean, e, tolerance)
		if err != nil {
			return 0, err
		}
		asTrue, err = trueAnomalyFromEccentricAnomaly(asEccentric, e)
		if err != nil {
			return 0, err
		}
	default:
		return 0, New(WrongInput, "unknown source anomaly type %v", from)
	}

	switch to {
	case TrueAnomaly:
		return asTrue, nil
	case MeanAnomaly:
		return asMean, nil
	case EccentricAnomaly:
		return asEccentric, nil
	default:
		return 0, New(WrongInput, "unknown destination anomaly type %v", to)
	}
}
