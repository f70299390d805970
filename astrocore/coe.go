package astrocore

import "math"

// COE is the classical orbital element tuple (a, e, i, Omega, omega, anomaly),
// with the trailing anomaly tagged as true, mean, or eccentric. Angles are in
// radians, a is in meters. Undefined when constructed via UndefinedCOE.
//
// The anomaly is stored once, tagged as true, mean, or eccentric.
type COE struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	RAAN          float64
	AOP           float64
	Anomaly       float64
	AnomalyType   AnomalyType
	defined       bool
}

// NewCOE builds a defined COE.
func NewCOE(a, e, i, raan, aop, anomaly float64, anomalyType AnomalyType) COE {
	return COE{
		SemiMajorAxis: a,
		Eccentricity:  e,
		Inclination:   i,
		RAAN:          raan,
		AOP:           aop,
		Anomaly:       anomaly,
		AnomalyType:   anomalyType,
		defined:       true,
	}
}

// UndefinedCOE returns the zero-value, undefined COE.
func UndefinedCOE() COE { return COE{} }

// IsDefined reports whether this COE was built via NewCOE.
func (c COE) IsDefined() bool { return c.defined }

// Anomaly accessors perform conversion on demand rather than caching,
// the COE value itself is immutable once constructed.

func (c COE) TrueAnomaly(tolerance float64) (float64, error) {
	return ConvertAnomaly(c.Anomaly, c.Eccentricity, c.AnomalyType, TrueAnomaly, tolerance)
}

func (c COE) MeanAnomaly(tolerance float64) (float64, error) {
	return ConvertAnomaly(c.Anomaly, c.Eccentricity, c.AnomalyType, MeanAnomaly, tolerance)
}

func (c COE) EccentricAnomaly(tolerance float64) (float64, error) {
	return ConvertAnomaly(c.Anomaly, c.Eccentricity, c.AnomalyType, EccentricAnomaly, tolerance)
}

// WithAnomaly returns a copy of c with its anomaly converted to the
// requested convention.
func (c COE) WithAnomaly(anomalyType AnomalyType, tolerance float64) (COE, error) {
	angle, err := ConvertAnomaly(c.Anomaly, c.Eccentricity, c.AnomalyType, anomalyType, tolerance)
	if err != nil {
		return COE{}, err
	}
	out := c
	out.Anomaly = angle
	out.AnomalyType = anomalyType
	return out, nil
}

// SemiLatusRectum returns p = a(1 - e^2).
func (c COE) SemiLatusRectum() float64 {
	return c.SemiMajorAxis * (1.0 - c.Eccentricity*c.Eccentricity)
}

// AngularMomentum returns h = sqrt(mu*p).
func (c COE) AngularMomentum(mu float64) float64 {
	return math.Sqrt(mu * c.SemiLatusRectum())
}

// PeriapsisRadius returns a(1 - e).
func (c COE) PeriapsisRadius() float64 {
	return c.SemiMajorAxis * (1.0 - c.Eccentricity)
}

// ApoapsisRadius returns a(1 + e).
func (c COE) ApoapsisRadius() float64 {
	return c.SemiMajorAxis * (1.0 + c.Eccentricity)
}

// RadialDistance returns p/(1 + e*cos(nu)) for the given true anomaly.
func (c COE) RadialDistance(nu float64) float64 {
	return c.SemiLatusRectum() / (1.0 + c.Eccentricity*math.Cos(nu))
}

// MeanMotion returns n = sqrt(mu/a^3).
func (c COE) MeanMotion(mu float64) float64 {
	return math.Sqrt(mu / (c.SemiMajorAxis * c.SemiMajorAxis * c.SemiMajorAxis))
}

// Period returns T = 2*pi/n.
func (c COE) Period(mu float64) float64 {
	return 2.0 * math.Pi / c.MeanMotion(mu)
}

// NodalPrecessionRate returns the J2 RAAN drift rate
// -(3/2)*Req^2*J2*n*cos(i) / [a(1-e^2)]^2.
func (c COE) NodalPrecessionRate(mu, j2, equatorialRadius float64) float64 {
	n := c.MeanMotion(mu)
	p := c.SemiLatusRectum()
	return -1.5 * equatorialRadius * equatorialRadius * j2 * n * math.Cos(c.Inclination) / (p * p)
}

// CartesianState is a (position, velocity) pair in a given frame.
type CartesianState struct {
	Position []float64
	Velocity []float64
	Frame    Frame
}

// ToCartesian computes the Cartesian state for this COE under gravitational
// parameter mu, in the frame perifocal quantities are rotated into. Fails
// for parabolic orbits, zero specific energy, or a singular conic.
func (c COE) ToCartesian(mu float64, frame Frame) (CartesianState, error) {
	if !c.defined {
		return CartesianState{}, New(Undefined, "COE is undefined")
	}
	if mu <= 0 {
		return CartesianState{}, New(Undefined, "gravitational parameter is undefined")
	}
	if !frame.IsQuasiInertial() {
		return CartesianState{}, New(FrameNotQuasiInertial, "frame %s is not quasi-inertial", frame)
	}
	if math.Abs(1.0-c.Eccentricity) <= parabolicTolerance {
		return CartesianState{}, New(ConicSingular, "parabolic orbits are not supported")
	}

	nu, err := c.TrueAnomaly(1e-12)
	if err != nil {
		return CartesianState{}, err
	}

	p := c.SemiLatusRectum()

	denom := 1.0 + c.Eccentricity*math.Cos(nu)
	if denom == 0 {
		return CartesianState{}, New(ConicSingular, "conic section is singular at true anomaly %f", nu)
	}
	r := p / denom

	sNu, cNu := math.Sincos(nu)
	rPQW := []float64{r * cNu, r * sNu, 0}
	speedFactor := math.Sqrt(mu / p)
	vPQW := []float64{-speedFactor * sNu, speedFactor * (c.Eccentricity + cNu), 0}

	rot := R3R1R3(-c.AOP, -c.Inclination, -c.RAAN)
	position := MxV3(rot, rPQW)
	velocity := MxV3(rot, vPQW)

	if math.Abs(c.PeriapsisRadius()) < 1e-9 {
		return CartesianState{}, New(ConicSingular, "periapsis radius below representable precision")
	}

	return CartesianState{Position: position, Velocity: velocity, Frame: frame}, nil
}

const coeTolerance = 1e-11

// FromCartesian derives a COE from a Cartesian state under gravitational
// parameter mu. Implements the four-regime decomposition (non-circular
// inclined / non-circular equatorial / circular inclined / circular
// equatorial).
func FromCartesian(position, velocity []float64, frame Frame, mu float64) (COE, error) {
	if !frame.IsQuasiInertial() {
		return COE{}, New(FrameNotQuasiInertial, "frame %s is not quasi-inertial", frame)
	}
	if mu <= 0 {
		return COE{}, New(Undefined, "gravitational parameter is undefined")
	}

	r := Norm(position)
	v := Norm(velocity)
	if r == 0 {
		return COE{}, New(WrongInput, "position vector is zero")
	}

	h := Cross(position, velocity)
	hNorm := Norm(h)
	if hNorm == 0 {
		return COE{}, New(WrongInput, "angular momentum is zero")
	}

	nodeVec := Cross([]float64{0, 0, 1}, h)
	nodeNorm := Norm(nodeVec)

	eVec := make([]float64, 3)
	rv := Dot(position, velocity)
	for i := 0; i < 3; i++ {
		eVec[i] = (1.0/mu)*((v*v-mu/r)*position[i] - rv*velocity[i])
	}
	e := Norm(eVec)

	if math.Abs(1.0-e) <= coeTolerance {
		return COE{}, New(ConicSingular, "parabolic orbits are not supported")
	}

	specificEnergy := 0.5*v*v - mu/r
	if specificEnergy == 0 {
		return COE{}, New(Undefined, "specific orbital energy is zero")
	}
	a := -mu / (2.0 * specificEnergy)

	if math.Abs(a*(1.0-e)) < 1e-12 {
		return COE{}, New(ConicSingular, "conic section is singular")
	}

	iRad := math.Acos(clamp(h[2]/hNorm, -1, 1))

	var raan, aop, nu float64

	inclined := iRad >= coeTolerance && iRad <= math.Pi-coeTolerance
	circular := e < coeTolerance

	switch {
	case !circular && inclined:
		if nodeNorm == 0 {
			return COE{}, New(Undefined, "ascending node is undefined")
		}
		raan = math.Acos(clamp(nodeVec[0]/nodeNorm, -1, 1))
		if nodeVec[1] < 0 {
			raan = 2*math.Pi - raan
		}
		aop = math.Acos(clamp(Dot(nodeVec, eVec)/(nodeNorm*e), -1, 1))
		if eVec[2] < 0 {
			aop = 2*math.Pi - aop
		}
		nu = math.Acos(clamp(Dot(eVec, position)/(e*r), -1, 1))
		if rv < 0 {
			nu = 2*math.Pi - nu
		}
	case !circular && !inclined:
		raan = 0
		aop = math.Acos(clamp(eVec[0]/e, -1, 1))
		if eVec[1] < 0 {
			aop = 2*math.Pi - aop
		}
		if iRad > math.Pi-coeTolerance {
			aop = -aop
		}
		if aop < 0 {
			aop += 2 * math.Pi
		}
		nu = math.Acos(clamp(Dot(eVec, position)/(e*r), -1, 1))
		if rv < 0 {
			nu = 2*math.Pi - nu
		}
	case circular && inclined:
		if nodeNorm == 0 {
			return COE{}, New(Undefined, "ascending node is undefined")
		}
		raan = math.Acos(clamp(nodeVec[0]/nodeNorm, -1, 1))
		if nodeVec[1] < 0 {
			raan = 2*math.Pi - raan
		}
		aop = 0
		nu = math.Acos(clamp(Dot(nodeVec, position)/(nodeNorm*r), -1, 1))
		if position[2] < 0 {
			nu = 2*math.Pi - nu
		}
	default: // circular && equatorial
		raan = 0
		aop = 0
		nu = math.Acos(clamp(position[0]/r, -1, 1))
		if position[1] < 0 {
			nu = 2*math.Pi - nu
		}
		if iRad > math.Pi-coeTolerance {
			nu = -nu
		}
		if nu < 0 {
			nu += 2 * math.Pi
		}
	}

	return NewCOE(a, e, iRad, raan, aop, nu, TrueAnomaly), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const (
	criticalInclinationLow  = 63.4349 * deg2rad
	criticalInclinationHigh = 116.5651 * deg2rad
)

func isCritical(angle, reference float64) bool {
	return math.Abs(angle-reference) < 1e-6
}

// FrozenOrbitParams configures COE.FrozenOrbit. Exactly one of Inclination
// or Eccentricity should be set (IncludesInclination / IncludesEccentricity)
// when the argument of periapsis is critical; otherwise AOP itself must be
// critical, or Inclination must be critical.
type FrozenOrbitParams struct {
	SemiMajorAxis        float64
	J2, J3               float64
	EquatorialRadius     float64
	Inclination          float64
	IncludesInclination  bool
	Eccentricity         float64
	IncludesEccentricity bool
	RAAN                 float64
	AOP                  float64
	Anomaly              float64
}

// FrozenOrbit builds the COE of a J2/J3 frozen orbit: either the
// eccentricity or the inclination is derived from the other when the
// argument of periapsis is critical.
func FrozenOrbit(p FrozenOrbitParams) (COE, error) {
	eCoefficient := -p.J3 * p.EquatorialRadius / (2.0 * p.J2 * p.SemiMajorAxis)

	aopIsCritical := isCritical(p.AOP, math.Pi/2) || isCritical(p.AOP, 3*math.Pi/2)

	if aopIsCritical {
		switch {
		case p.IncludesInclination && !p.IncludesEccentricity:
			e := eCoefficient * math.Sin(p.Inclination)
			return NewCOE(p.SemiMajorAxis, e, p.Inclination, p.RAAN, p.AOP, p.Anomaly, TrueAnomaly), nil
		case p.IncludesEccentricity && !p.IncludesInclination:
			if math.Abs(p.Eccentricity) > math.Abs(eCoefficient) {
				return COE{}, New(WrongInput, "eccentricity %f exceeds frozen-orbit bound %f", p.Eccentricity, eCoefficient)
			}
			i := math.Asin(p.Eccentricity / eCoefficient)
			return NewCOE(p.SemiMajorAxis, p.Eccentricity, i, p.RAAN, p.AOP, p.Anomaly, TrueAnomaly), nil
		default:
			return COE{}, New(WrongInput, "frozen orbit with critical AOP requires exactly one of inclination or eccentricity")
		}
	}

	inclinationIsCritical := p.IncludesInclination &&
		(isCritical(p.Inclination, criticalInclinationLow) || isCritical(p.Inclination, criticalInclinationHigh))
	if !inclinationIsCritical {
		return COE{}, New(WrongInput, "frozen orbit requires a critical argument of periapsis or a critical inclination")
	}
	e := eCoefficient * math.Sin(p.Inclination)
	return NewCOE(p.SemiMajorAxis, e, p.Inclination, p.RAAN, p.AOP, p.Anomaly, TrueAnomaly), nil
}
