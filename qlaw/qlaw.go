// Package qlaw implements Q-Law: a Lyapunov feedback guidance law that
// commands a thrust direction driving a spacecraft's osculating elements
// toward a target COE, without ever integrating a two-point boundary-value
// problem. Follows Petropoulos' formulation.
package qlaw

import (
	"math"

	"github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/astrocore"
)

// Element names one of the five osculating elements Q-Law can target.
type Element int

const (
	SemiMajorAxis Element = iota
	Eccentricity
	Inclination
	RAAN
	ArgumentOfPeriapsis
)

// ElementTarget is one entry of a Parameters element-weight map: how
// strongly to weight an element's convergence, and how close is "converged".
type ElementTarget struct {
	Weight                float64
	ConvergenceThreshold  float64 // 0 means "use the 1e-10 default"
}

// GradientStrategy selects how dQ/dOE is computed.
type GradientStrategy uint8

const (
	Analytical GradientStrategy = iota
	Numerical
)

// Parameters configures a Law: per-element weights and convergence
// thresholds, the Q-function's shape parameters (m, n, r, b, k), a periapsis
// floor, and optional effectivity gating thresholds.
type Parameters struct {
	ControlWeights        [5]float64
	ConvergenceThresholds [5]float64

	M, N, R int
	B       float64
	K       int

	PeriapsisWeight        float64
	MinimumPeriapsisRadius float64

	AbsoluteEffectivityThreshold    float64
	HasAbsoluteEffectivityThreshold bool
	RelativeEffectivityThreshold    float64
	HasRelativeEffectivityThreshold bool
}

// elementOrder fixes the ordering the weight and threshold vectors are
// built in.
var elementOrder = [5]Element{SemiMajorAxis, Eccentricity, Inclination, RAAN, ArgumentOfPeriapsis}

// NewParameters builds a Parameters set from a sparse element-weight map
// (elements absent from the map get zero weight, i.e. are not targeted) plus
// the Q-function shape parameters. Requires at least one targeted element
// and, if set, requires the effectivity thresholds to lie within [0, 1].
func NewParameters(
	elementWeights map[Element]ElementTarget,
	m, n, r int,
	b float64,
	k int,
	periapsisWeight, minimumPeriapsisRadius float64,
	absoluteEffectivityThreshold, relativeEffectivityThreshold *float64,
) (Parameters, error) {
	if len(elementWeights) == 0 {
		return Parameters{}, astrocore.New(astrocore.WrongInput, "element weights map is empty, must target at least one element")
	}

	p := Parameters{M: m, N: n, R: r, B: b, K: k, PeriapsisWeight: periapsisWeight, MinimumPeriapsisRadius: minimumPeriapsisRadius}
	for i, el := range elementOrder {
		p.ConvergenceThresholds[i] = 1e-10
		target, ok := elementWeights[el]
		if !ok {
			continue
		}
		p.ControlWeights[i] = target.Weight
		if target.ConvergenceThreshold != 0 {
			p.ConvergenceThresholds[i] = target.ConvergenceThreshold
		}
	}

	if absoluteEffectivityThreshold != nil {
		if *absoluteEffectivityThreshold < 0 || *absoluteEffectivityThreshold > 1 {
			return Parameters{}, astrocore.New(astrocore.WrongInput, "absolute effectivity threshold must be within [0, 1]")
		}
		p.HasAbsoluteEffectivityThreshold = true
		p.AbsoluteEffectivityThreshold = *absoluteEffectivityThreshold
	}
	if relativeEffectivityThreshold != nil {
		if *relativeEffectivityThreshold < 0 || *relativeEffectivityThreshold > 1 {
			return Parameters{}, astrocore.New(astrocore.WrongInput, "relative effectivity threshold must be within [0, 1]")
		}
		p.HasRelativeEffectivityThreshold = true
		p.RelativeEffectivityThreshold = *relativeEffectivityThreshold
	}

	return p, nil
}

// elements5 is the 5-element subset of a COE that Q-Law targets: semi-major
// axis, eccentricity, inclination, RAAN, argument of periapsis.
type elements5 [5]float64

// elements6 additionally carries the current true anomaly, needed by
// computeDOEdF for the radial distance and in-plane geometry.
type elements6 [6]float64

func (e elements6) segment5() elements5 { return elements5{e[0], e[1], e[2], e[3], e[4]} }

// Law is a Q-Law instance: a fixed target COE, gravitational parameter, and
// Parameters, implementing astrocore.GuidanceLaw. Osculating elements are
// recomputed from the Cartesian state at every evaluation; the elements
// are always osculating (no mean-element conversion is applied).
type Law struct {
	TargetCOEVector elements5
	GravitationalParameter float64
	Parameters             Parameters
	Strategy               GradientStrategy

	// trueAnomalyGrid is the coarse true-anomaly sampling grid used by
	// computeEffectivity's min/max search; a coarse grid is sufficient,
	// the exact extremum is not needed.
	trueAnomalyGrid []float64
}

const effectivityGridSize = 36

// NewLaw builds a Q-Law guidance law targeting targetCOE under
// gravitational parameter mu.
func NewLaw(targetCOE astrocore.COE, mu float64, params Parameters, strategy GradientStrategy) (*Law, error) {
	if !targetCOE.IsDefined() {
		return nil, astrocore.New(astrocore.Undefined, "target COE is undefined")
	}
	if mu <= 0 {
		return nil, astrocore.New(astrocore.Undefined, "gravitational parameter is undefined")
	}

	grid := make([]float64, effectivityGridSize)
	for i := range grid {
		grid[i] = 2 * math.Pi * float64(i) / float64(effectivityGridSize)
	}

	return &Law{
		TargetCOEVector:        elements5{targetCOE.SemiMajorAxis, targetCOE.Eccentricity, targetCOE.Inclination, targetCOE.RAAN, targetCOE.AOP},
		GravitationalParameter: mu,
		Parameters:             params,
		Strategy:               strategy,
		trueAnomalyGrid:        grid,
	}, nil
}

func (l *Law) Name() string { return "Q-Law" }

// ThrustDirectionAt computes Q-Law's commanded thrust direction at the given
// osculating Cartesian state. As with every astrocore.GuidanceLaw, the
// returned vector's norm is 1 when thrusting and 0 when not. The caller
// (astrocore.Thruster) applies the actual acceleration magnitude; scaling
// the direction here as well would double-count it.
// thrustAccelMagnitude is still threaded through to the Q-function
// formulas that reference it (computeOrbitalElementsMaximalChange), even
// though the resulting direction is provably invariant to its value, since
// it appears as a uniform scale factor across all five dQ/dOE components
// that a subsequent normalization divides out.
func (l *Law) ThrustDirectionAt(_ astrocore.Instant, position, velocity []float64, thrustAccelMagnitude float64, _ astrocore.Frame) ([]float64, error) {
	coe, err := astrocore.FromCartesian(position, velocity, astrocore.GCRF, l.GravitationalParameter)
	if err != nil {
		return nil, err
	}

	nu, err := coe.TrueAnomaly(1e-12)
	if err != nil {
		return nil, err
	}

	e := math.Max(coe.Eccentricity, 1e-4)
	i := math.Max(coe.Inclination, 1e-4)

	accel := thrustAccelMagnitude
	if accel <= 0 {
		accel = 1.0
	}

	coeVector := elements6{coe.SemiMajorAxis, e, i, coe.RAAN, coe.AOP, nu}

	direction, err := l.computeThrustDirection(coeVector, accel)
	if err != nil {
		return nil, err
	}
	if direction == ([3]float64{}) {
		return []float64{0, 0, 0}, nil
	}

	rotation := thetaRHToGCRF(position, velocity)
	return apply3x3(rotation, direction[:]), nil
}

// thetaRHToGCRF returns the rotation from the theta-radial-h basis (theta:
// in-plane, perpendicular to radial, in the direction of motion; R: radial;
// H: along the angular momentum vector) to the frame position/velocity are
// expressed in.
func thetaRHToGCRF(position, velocity []float64) [3][3]float64 {
	r := astrocore.Unit(position)
	h := astrocore.Unit(astrocore.Cross(position, velocity))
	theta := astrocore.Cross(h, r)

	return [3][3]float64{
		{theta[0], r[0], h[0]},
		{theta[1], r[1], h[1]},
		{theta[2], r[2], h[2]},
	}
}

func apply3x3(m [3][3]float64, v []float64) []float64 {
	return []float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// computeThrustDirection returns the unit thrust direction in the
// theta-radial-h basis, or the zero vector if every targeted element is
// already within its convergence threshold or effectivity gating vetoes
// thrusting this orbit.
func (l *Law) computeThrustDirection(coeVector elements6, thrustAccel float64) ([3]float64, error) {
	seg := coeVector.segment5()
	deltaCOE := computeDeltaCOE(seg, l.TargetCOEVector)

	converged := true
	for i := 0; i < 5; i++ {
		if math.Abs(l.Parameters.ControlWeights[i]*deltaCOE[i]) > l.Parameters.ConvergenceThresholds[i] {
			converged = false
			break
		}
	}
	if converged {
		return [3]float64{}, nil
	}

	derivativeMatrix := computeDOEdF(coeVector, l.GravitationalParameter)

	dQdOE, err := l.computeDQdOE(seg, thrustAccel)
	if err != nil {
		return [3]float64{}, err
	}
	for _, v := range dQdOE {
		if math.IsNaN(v) {
			return [3]float64{}, astrocore.New(astrocore.NaNEncountered, "NaN encountered in dQ/dOE calculation")
		}
	}

	thrustDirection := dQdOEtimesDerivative(dQdOE, derivativeMatrix)

	if l.Parameters.HasAbsoluteEffectivityThreshold || l.Parameters.HasRelativeEffectivityThreshold {
		etaAbsolute, etaRelative := l.computeEffectivity(coeVector, thrustDirection, dQdOE)

		// The absolute threshold gates on etaAbsolute and the relative
		// threshold on etaRelative; any other binding puts the ratios
		// outside [0, 1].
		if l.Parameters.HasRelativeEffectivityThreshold && etaRelative < l.Parameters.RelativeEffectivityThreshold {
			return [3]float64{}, nil
		}
		if l.Parameters.HasAbsoluteEffectivityThreshold && etaAbsolute < l.Parameters.AbsoluteEffectivityThreshold {
			return [3]float64{}, nil
		}
	}

	norm := astrocore.Norm(thrustDirection[:])
	if norm == 0 {
		return [3]float64{}, nil
	}
	return [3]float64{-thrustDirection[0] / norm, -thrustDirection[1] / norm, -thrustDirection[2] / norm}, nil
}

func dQdOEtimesDerivative(dQdOE [5]float64, derivativeMatrix [5][3]float64) [3]float64 {
	var out [3]float64
	for col := 0; col < 3; col++ {
		sum := 0.0
		for row := 0; row < 5; row++ {
			sum += dQdOE[row] * derivativeMatrix[row][col]
		}
		out[col] = sum
	}
	return out
}
