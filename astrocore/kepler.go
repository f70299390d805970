package astrocore

import "math"

// PerturbationType selects the closed-form Kepler propagation model.
type PerturbationType uint8

const (
	PerturbationNone PerturbationType = iota
	PerturbationJ2
	PerturbationJ4
)

func (p PerturbationType) String() string {
	switch p {
	case PerturbationNone:
		return "None"
	case PerturbationJ2:
		return "J2"
	case PerturbationJ4:
		return "J4"
	default:
		return "Unknown"
	}
}

// Kepler is an analytic propagator: closed-form state at any instant under
// two-body, J2-secular, or J4-secular perturbation, plus a revolution
// counter. Defined iff COE, epoch, and mu are all defined. Under J2/J4 the
// semi-major axis, eccentricity, and inclination are held constant while
// M, omega, and Omega advance linearly at the secular rates.
type Kepler struct {
	InitialCOE            COE
	Epoch                 Instant
	GravitationalParameter float64
	EquatorialRadius       float64
	J2, J4                 float64
	Perturbation           PerturbationType
	RevolutionNumberAtEpoch int
}

// NewKepler builds a Kepler model, validating invariant 4.
func NewKepler(coe COE, epoch Instant, mu, equatorialRadius, j2, j4 float64, perturbation PerturbationType, revAtEpoch int) (Kepler, error) {
	if !coe.IsDefined() {
		return Kepler{}, New(Undefined, "COE is undefined")
	}
	if !epoch.IsDefined() {
		return Kepler{}, New(Undefined, "epoch is undefined")
	}
	if mu <= 0 {
		return Kepler{}, New(Undefined, "gravitational parameter is undefined")
	}
	return Kepler{
		InitialCOE:              coe,
		Epoch:                   epoch,
		GravitationalParameter:  mu,
		EquatorialRadius:        equatorialRadius,
		J2:                      j2,
		J4:                      j4,
		Perturbation:            perturbation,
		RevolutionNumberAtEpoch: revAtEpoch,
	}, nil
}

// IsDefined reports whether this Kepler model satisfies invariant 4.
func (k Kepler) IsDefined() bool {
	return k.InitialCOE.IsDefined() && k.Epoch.IsDefined() && k.GravitationalParameter > 0
}

// StateAt returns the Cartesian state at the given instant.
func (k Kepler) StateAt(at Instant) (CartesianState, error) {
	if !k.IsDefined() {
		return CartesianState{}, New(Undefined, "Kepler model is undefined")
	}
	switch k.Perturbation {
	case PerturbationNone:
		return k.stateAtNone(at)
	case PerturbationJ2:
		return k.stateAtJ2(at)
	case PerturbationJ4:
		return k.stateAtJ4(at)
	default:
		return CartesianState{}, New(WrongInput, "unsupported perturbation type %v", k.Perturbation)
	}
}

func (k Kepler) dtSeconds(at Instant) float64 {
	return at.Sub(k.Epoch).Seconds()
}

// stateAtNone: if e < 1e-8 advance nu directly; otherwise solve M'->E'->nu'.
func (k Kepler) stateAtNone(at Instant) (CartesianState, error) {
	coe := k.InitialCOE
	dt := k.dtSeconds(at)
	n := coe.MeanMotion(k.GravitationalParameter)

	var nu float64
	if coe.Eccentricity < 1e-8 {
		nu0, err := coe.TrueAnomaly(1e-12)
		if err != nil {
			return CartesianState{}, err
		}
		nu = WrapTwoPi(nu0 + n*dt)
	} else {
		m0, err := coe.MeanAnomaly(1e-12)
		if err != nil {
			return CartesianState{}, err
		}
		mNew := WrapTwoPi(m0 + n*dt)
		nuNew, err := trueAnomalyFromMeanAnomaly(mNew, coe.Eccentricity, 1e-12)
		if err != nil {
			return CartesianState{}, err
		}
		nu = nuNew
	}

	out := NewCOE(coe.SemiMajorAxis, coe.Eccentricity, coe.Inclination, coe.RAAN, coe.AOP, nu, TrueAnomaly)
	return out.ToCartesian(k.GravitationalParameter, GCRF)
}

// j2Rates: first-order secular rates n-bar, omega-dot, Omega-dot; a, e, i
// are held constant.
func (k Kepler) j2Rates() (nBar, aopDot, raanDot float64) {
	coe := k.InitialCOE
	n := coe.MeanMotion(k.GravitationalParameter)
	p := coe.SemiLatusRectum()
	sinI := math.Sin(coe.Inclination)
	cosI := math.Cos(coe.Inclination)
	sinI2 := sinI * sinI

	expr := 1.5 * k.J2 * math.Pow(k.EquatorialRadius/p, 2)
	nBar = n * (1.0 + expr*math.Sqrt(1.0-coe.Eccentricity*coe.Eccentricity)*(1.0-1.5*sinI2))
	aopDot = expr * (2.0 - 2.5*sinI2) * nBar
	raanDot = -expr * cosI * nBar
	return
}

func (k Kepler) stateAtJ2(at Instant) (CartesianState, error) {
	coe := k.InitialCOE
	dt := k.dtSeconds(at)
	nBar, aopDot, raanDot := k.j2Rates()

	m0, err := coe.MeanAnomaly(1e-12)
	if err != nil {
		return CartesianState{}, err
	}

	mNew := m0 + nBar*dt
	aopNew := coe.AOP + aopDot*dt
	raanNew := coe.RAAN + raanDot*dt

	nuNew, err := trueAnomalyFromMeanAnomaly(mNew, coe.Eccentricity, 1e-12)
	if err != nil {
		return CartesianState{}, err
	}

	out := NewCOE(coe.SemiMajorAxis, coe.Eccentricity, coe.Inclination, WrapTwoPi(raanNew), WrapTwoPi(aopNew), nuNew, TrueAnomaly)
	return out.ToCartesian(k.GravitationalParameter, GCRF)
}

// j4Rates computes n-bar, Omega-dot, omega-dot with the additive J2^2/J4
// corrections (terms in J2^2, J4, e^2, cos^2 i, cos^4 i).
func (k Kepler) j4Rates() (nBar, raanDot, aopDot float64) {
	coe := k.InitialCOE
	n := coe.MeanMotion(k.GravitationalParameter)
	p := coe.SemiLatusRectum()
	e2 := coe.Eccentricity * coe.Eccentricity
	sqrtBeta := math.Sqrt(1.0 - e2)

	cosI := math.Cos(coe.Inclination)
	sinI := math.Sin(coe.Inclination)
	cosI2 := cosI * cosI
	sinI2 := sinI * sinI

	reOverP := k.EquatorialRadius / p
	expr := 1.5 * k.J2 * reOverP * reOverP

	nBar = n * (1.0 + expr*sqrtBeta*(1.0-1.5*sinI2) +
		3.0/128.0*k.J2*k.J2*math.Pow(reOverP, 4)*sqrtBeta*
			(16.0*sqrtBeta+25.0*(1.0-e2)-15.0+
				(30.0-96.0*sqrtBeta-90.0*(1.0-e2))*cosI2+
				(105.0+144.0*sqrtBeta+25.0*(1.0-e2))*math.Pow(cosI, 4)) -
		45.0/128.0*k.J4*e2*math.Pow(reOverP, 4)*sqrtBeta*
			(3.0-30.0*cosI2+35.0*math.Pow(cosI, 4)))

	raanDot = -nBar*expr*cosI*
		(1.0+expr*(1.5+e2/6.0-2.0*sqrtBeta-(5.0/3.0-5.0/24.0*e2-3.0*sqrtBeta)*sinI2)) -
		35.0/8.0*n*k.J4*math.Pow(reOverP, 4)*cosI*
			(1.0+1.5*e2)*(12.0-21.0*sinI2)/14.0

	aopDot = nBar*expr*(2.0-2.5*sinI2)*
		(1.0+expr*(2.0+e2/2.0-2.0*sqrtBeta-(43.0/24.0-e2/48.0-3.0*sqrtBeta)*sinI2)) -
		45.0/36.0*k.J2*k.J2*n*math.Pow(reOverP, 4)*e2*math.Pow(cosI, 4) -
		35.0/8.0*n*k.J4*math.Pow(reOverP, 4)*
			(12.0/7.0-93.0/14.0*sinI2+21.0/4.0*math.Pow(sinI, 4)+
				e2*(27.0/14.0-189.0/28.0*sinI2+81.0/16.0*math.Pow(sinI, 4)))

	return
}

func (k Kepler) stateAtJ4(at Instant) (CartesianState, error) {
	coe := k.InitialCOE
	dt := k.dtSeconds(at)
	nBar, raanDot, aopDot := k.j4Rates()

	m0, err := coe.MeanAnomaly(1e-12)
	if err != nil {
		return CartesianState{}, err
	}

	mNew := m0 + nBar*dt
	raanNew := coe.RAAN + raanDot*dt
	aopNew := coe.AOP + aopDot*dt

	nuNew, err := trueAnomalyFromMeanAnomaly(mNew, coe.Eccentricity, 1e-12)
	if err != nil {
		return CartesianState{}, err
	}

	out := NewCOE(coe.SemiMajorAxis, coe.Eccentricity, coe.Inclination, WrapTwoPi(raanNew), WrapTwoPi(aopNew), nuNew, TrueAnomaly)
	return out.ToCartesian(k.GravitationalParameter, GCRF)
}

// RevolutionNumberAt returns floor(dt/T) + epoch_revolution_number, where T
// is the anomalistic period for None and the nodal period
// (2*pi/(nBar+omegaDot)) for J2/J4, which counts revolutions by
// ascending-node crossings.
func (k Kepler) RevolutionNumberAt(at Instant) (int, error) {
	if !k.IsDefined() {
		return 0, New(Undefined, "Kepler model is undefined")
	}
	dt := k.dtSeconds(at)

	var period float64
	switch k.Perturbation {
	case PerturbationNone:
		period = k.InitialCOE.Period(k.GravitationalParameter)
	case PerturbationJ2:
		nBar, aopDot, _ := k.j2Rates()
		period = 2.0 * math.Pi / (nBar + aopDot)
	case PerturbationJ4:
		nBar, _, aopDot := k.j4Rates()
		period = 2.0 * math.Pi / (nBar + aopDot)
	default:
		return 0, New(WrongInput, "unsupported perturbation type %v", k.Perturbation)
	}

	return int(math.Floor(dt/period)) + k.RevolutionNumberAtEpoch, nil
}

// InertialCoeFromFixedCoe converts a COE supplied in a body-fixed frame to
// GCRF by transforming the corresponding Cartesian state (applying both
// position and velocity rotations, including the rotating-frame
// velocity-coupling term) and re-deriving COE, so all internal propagation
// runs in GCRF.
func InertialCoeFromFixedCoe(coe COE, fixedFrame Frame, mu float64, provider FrameProvider, at Instant) (COE, error) {
	// COE.ToCartesian only uses its frame argument to tag the result and to
	// guard against non-quasi-inertial frames; pass GCRF here to get the raw
	// perifocal-to-body-fixed-axes position/velocity without that guard
	// rejecting the (by construction, not-yet-inertial) fixedFrame.
	bodyFixedState, err := coe.ToCartesian(mu, GCRF)
	if err != nil {
		return COE{}, err
	}

	transform, err := provider.TransformAt(at, fixedFrame, GCRF)
	if err != nil {
		return COE{}, err
	}

	position, velocity := transform.ApplyToPositionVelocity(bodyFixedState.Position, bodyFixedState.Velocity)
	return FromCartesian(position, velocity, GCRF, mu)
}
