package astrocore

import (
	"math"
	"strings"

	"github.com/soniakeys/meeus/julian"
)

// AU is one astronomical unit, in meters.
const AU = 1.49597870700e11

// CelestialObject is a central-body catalog entry: gravitational parameter,
// radius, and secular-perturbation J coefficients. Ecliptic inclination,
// axial tilt, and SOI are descriptive metadata, not used by any computation
// in this package.
type CelestialObject struct {
	Name                 string
	RadiusMeters          float64
	SemiMajorAxisMeters   float64
	GravitationalParameter float64
	AxialTilt             float64
	EclipticInclination   float64
	SphereOfInfluenceMeters float64
	J2, J3, J4            float64
}

// J returns the perturbing J_n coefficient for n in {2,3,4}, 0 otherwise.
func (c CelestialObject) J(n uint8) float64 {
	switch n {
	case 2:
		return c.J2
	case 3:
		return c.J3
	case 4:
		return c.J4
	default:
		return 0
	}
}

func (c CelestialObject) String() string { return c.Name }

// Predefined bodies. All values in meters and m^3/s^2.
var (
	Sun = CelestialObject{Name: "Sun", RadiusMeters: 695700e3, SemiMajorAxisMeters: -1, GravitationalParameter: 1.32712440017987e20}

	Venus = CelestialObject{Name: "Venus", RadiusMeters: 6051.8e3, SemiMajorAxisMeters: 108208601e3, GravitationalParameter: 3.24858599e14,
		AxialTilt: 117.36 * deg2rad, EclipticInclination: 3.39458 * deg2rad, SphereOfInfluenceMeters: 0.616e9, J2: 0.000027}

	Earth = CelestialObject{Name: "Earth", RadiusMeters: 6378.1363e3, SemiMajorAxisMeters: 149598023e3, GravitationalParameter: 3.98600433e14,
		AxialTilt: 23.4 * deg2rad, EclipticInclination: 0.00005 * deg2rad, SphereOfInfluenceMeters: 924645e3,
		J2: 1082.6269e-6, J3: -2.5324e-6, J4: -1.6204e-6}

	Mars = CelestialObject{Name: "Mars", RadiusMeters: 3396.19e3, SemiMajorAxisMeters: 227939282.5616e3, GravitationalParameter: 4.28283100e13,
		AxialTilt: 25.19 * deg2rad, EclipticInclination: 1.85 * deg2rad, SphereOfInfluenceMeters: 576000e3,
		J2: 1964e-6, J3: 36e-6, J4: -18e-6}

	Jupiter = CelestialObject{Name: "Jupiter", RadiusMeters: 71492.0e3, SemiMajorAxisMeters: 778298361e3, GravitationalParameter: 1.266865361e17,
		AxialTilt: 3.13 * deg2rad, EclipticInclination: 1.30326966 * deg2rad, SphereOfInfluenceMeters: 48.2e9,
		J2: 0.01475, J4: -0.00058}

	Saturn = CelestialObject{Name: "Saturn", RadiusMeters: 60268.0e3, SemiMajorAxisMeters: 1429394133e3, GravitationalParameter: 3.7931208e16,
		AxialTilt: 0.93 * deg2rad, EclipticInclination: 2.485 * deg2rad, J2: 0.01645, J4: -0.001}

	Uranus = CelestialObject{Name: "Uranus", RadiusMeters: 25559.0e3, SemiMajorAxisMeters: 2875038615e3, GravitationalParameter: 5.7939513e15,
		AxialTilt: 1.02 * deg2rad, EclipticInclination: 0.773 * deg2rad, J2: 0.012}

	Pluto = CelestialObject{Name: "Pluto", RadiusMeters: 1151.0e3, SemiMajorAxisMeters: 5915799000e3, GravitationalParameter: 9e11,
		AxialTilt: 118.0 * deg2rad, EclipticInclination: 17.14216667 * deg2rad, SphereOfInfluenceMeters: 1e3}
)

// CelestialObjectFromString looks up a predefined body by (case-insensitive)
// name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	for _, body := range []CelestialObject{Sun, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Pluto} {
		if strings.EqualFold(body.Name, name) {
			return body, nil
		}
	}
	return CelestialObject{}, New(WrongInput, "undefined celestial object %q", name)
}

// EarthSunEphemeris implements SolarEphemerisProvider with a file-free
// analytic heliocentric-Earth orbit model (the low-precision formulary from
// Meeus chapter 25, no VSOP87/SPICE data files required). Returns the Sun's
// position as seen from Earth's center, i.e. the negative of Earth's
// heliocentric position vector.
type EarthSunEphemeris struct{}

// PositionAt returns the Sun's position relative to Earth's center at the
// given instant, expressed in frame (caller is responsible for frame
// consistency; this model computes in an Earth-mean-ecliptic-of-date frame
// and performs no further rotation).
func (EarthSunEphemeris) PositionAt(at Instant, frame Frame) ([]float64, error) {
	if !at.IsDefined() {
		return nil, New(Undefined, "instant is undefined")
	}

	t := julianCenturiesSinceJ2000(at)
	tVec := []float64{1, t, t * t, t * t * t}

	L := []float64{100.466449, 35999.3728519, -0.00000568, 0.0}
	aCoef := []float64{1.000001018, 0.0, 0.0, 0.0}
	eCoef := []float64{0.01670862, -0.000042037, -0.0000001236, 0.00000000004}
	iCoef := []float64{0.0, 0.0130546, -0.00000931, -0.000000034}
	wCoef := []float64{174.873174, -0.2410908, 0.00004067, -0.000001327}
	pCoef := []float64{102.937348, 0.3225557, 0.00015026, 0.000000478}

	valL := polyDot(L, tVec) * deg2rad
	valSMA := polyDot(aCoef, tVec) * AU
	e := polyDot(eCoef, tVec)
	valInc := polyDot(iCoef, tVec) * deg2rad
	valW := polyDot(wCoef, tVec) * deg2rad
	valP := polyDot(pCoef, tVec) * deg2rad

	aop := valP - valW
	meanAnomaly := valL - valP

	equationOfCenter := (2*e-math.Pow(e, 3)/4+5.0/96*math.Pow(e, 5))*math.Sin(meanAnomaly) +
		(5.0/4*e*e-11.0/24*math.Pow(e, 4))*math.Sin(2*meanAnomaly) +
		(13.0/12*math.Pow(e, 3)-43.0/64*math.Pow(e, 5))*math.Sin(3*meanAnomaly) +
		103.0/96*math.Pow(e, 4)*math.Sin(4*meanAnomaly) +
		1097.0/960*math.Pow(e, 5)*math.Sin(5*meanAnomaly)
	nu := meanAnomaly + equationOfCenter

	earthCOE := NewCOE(valSMA, e, valInc, valW, aop, nu, TrueAnomaly)
	earthHelio, err := earthCOE.ToCartesian(Sun.GravitationalParameter, GCRF)
	if err != nil {
		return nil, err
	}

	sunFromEarth := make([]float64, 3)
	for i := 0; i < 3; i++ {
		sunFromEarth[i] = -earthHelio.Position[i]
	}
	return sunFromEarth, nil
}

// julianCenturiesSinceJ2000 converts an Instant to Julian centuries of TT
// since J2000.0.
func julianCenturiesSinceJ2000(at Instant) float64 {
	jd := julian.TimeToJD(at.Time())
	return (jd - 2451545.0) / 36525.0
}

func polyDot(coefficients, powers []float64) float64 {
	var sum float64
	for i := range coefficients {
		sum += coefficients[i] * powers[i]
	}
	return sum
}
