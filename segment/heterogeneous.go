package segment

import (
	"math"

	"github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/astrocore"
)

// ManeuverArc is a resolved thrust arc: the interval over which a segment's
// thruster fired. Carries only the interval
// the segment solver actually needs to drive constraint checks and LOF
// reconstruction; the corresponding states remain available from
// Solution.States.
type ManeuverArc struct {
	Interval astrocore.Interval
}

type intervalLaw struct {
	interval astrocore.Interval
	law      astrocore.GuidanceLaw
}

// HeterogeneousGuidanceLaw composes guidance laws keyed by disjoint time
// intervals, dispatching ThrustDirectionAt to whichever law's interval
// contains the query instant. Outside every registered
// interval it commands zero thrust, matching a Coast sub-segment. Built up
// incrementally across a segment's accepted maneuvers via AddGuidanceLaw.
type HeterogeneousGuidanceLaw struct {
	laws []intervalLaw
}

// NewHeterogeneousGuidanceLaw returns an empty composite law.
func NewHeterogeneousGuidanceLaw() *HeterogeneousGuidanceLaw {
	return &HeterogeneousGuidanceLaw{}
}

// AddGuidanceLaw registers law as active over interval.
func (h *HeterogeneousGuidanceLaw) AddGuidanceLaw(law astrocore.GuidanceLaw, interval astrocore.Interval) {
	h.laws = append(h.laws, intervalLaw{interval: interval, law: law})
}

func (h *HeterogeneousGuidanceLaw) ThrustDirectionAt(instant astrocore.Instant, position, velocity []float64, thrustAccelMagnitude float64, outputFrame astrocore.Frame) ([]float64, error) {
	for _, il := range h.laws {
		if il.interval.Contains(instant) {
			return il.law.ThrustDirectionAt(instant, position, velocity, thrustAccelMagnitude, outputFrame)
		}
	}
	return []float64{0, 0, 0}, nil
}

// constantDirectionLOFGuidanceLaw commands a fixed direction expressed in a
// named local orbital frame, re-resolved into the inertial output frame at
// every evaluation as the orbit (and hence the LOF basis) moves.
type constantDirectionLOFGuidanceLaw struct {
	kind         astrocore.LocalOrbitalFrameKind
	directionLOF []float64
}

func (g constantDirectionLOFGuidanceLaw) ThrustDirectionAt(_ astrocore.Instant, position, velocity []float64, thrustAccelMagnitude float64, _ astrocore.Frame) ([]float64, error) {
	rotation := astrocore.LocalOrbitalFrameRotation(g.kind, position, velocity)
	direction := apply3x3(rotation, g.directionLOF)
	return []float64{
		thrustAccelMagnitude * direction[0],
		thrustAccelMagnitude * direction[1],
		thrustAccelMagnitude * direction[2],
	}, nil
}

func apply3x3(r [3][3]float64, v []float64) []float64 {
	return []float64{
		r[0][0]*v[0] + r[0][1]*v[1] + r[0][2]*v[2],
		r[1][0]*v[0] + r[1][1]*v[1] + r[1][2]*v[2],
		r[2][0]*v[0] + r[2][1]*v[1] + r[2][2]*v[2],
	}
}

// constantLOFDirectionFromVariableLaw samples originalLaw's unit-thrust
// direction at the start, middle, and end of interval, converts each
// sample into the named LOF's basis at that instant's osculating
// position/velocity, and averages them into a single constant LOF
// direction. Returns WrongInput if any sample deviates from the average by
// more than maxAngularOffsetRad.
func constantLOFDirectionFromVariableLaw(
	originalLaw astrocore.GuidanceLaw,
	kind astrocore.LocalOrbitalFrameKind,
	interval astrocore.Interval,
	positionAt, velocityAt func(astrocore.Instant) ([]float64, []float64, error),
	maxAngularOffsetRad float64,
) ([]float64, error) {
	mid := interval.Center()
	samples := []astrocore.Instant{interval.Start, mid, interval.End}

	directionsLOF := make([][]float64, 0, len(samples))
	for _, instant := range samples {
		position, velocity, err := positionAt(instant)
		if err != nil {
			return nil, err
		}
		thrustDir, err := originalLaw.ThrustDirectionAt(instant, position, velocity, 1.0, astrocore.GCRF)
		if err != nil {
			return nil, err
		}
		rotation := astrocore.LocalOrbitalFrameRotation(kind, position, velocity)
		directionsLOF = append(directionsLOF, rotate3x3Transpose(rotation, thrustDir))
	}

	average := []float64{0, 0, 0}
	for _, d := range directionsLOF {
		for i := 0; i < 3; i++ {
			average[i] += d[i]
		}
	}
	average = astrocore.Unit(average)

	for _, d := range directionsLOF {
		cosAngle := astrocore.Dot(astrocore.Unit(d), average)
		if cosAngle > 1 {
			cosAngle = 1
		}
		if cosAngle < -1 {
			cosAngle = -1
		}
		angle := math.Acos(cosAngle)
		if angle > maxAngularOffsetRad {
			return nil, astrocore.New(astrocore.WrongInput, "guidance direction deviates from the constant local-orbital-frame direction by %f rad, exceeding the maximum allowed offset %f rad", angle, maxAngularOffsetRad)
		}
	}

	return average, nil
}

// rotate3x3Transpose applies the transpose of r (i.e. the inverse of an
// orthonormal rotation) to v: inertial -> LOF.
func rotate3x3Transpose(r [3][3]float64, v []float64) []float64 {
	return []float64{
		r[0][0]*v[0] + r[1][0]*v[1] + r[2][0]*v[2],
		r[0][1]*v[0] + r[1][1]*v[1] + r[2][1]*v[2],
		r[0][2]*v[0] + r[1][2]*v[1] + r[2][2]*v[2],
	}
}
