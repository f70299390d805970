package segment

import (
	"math"
	"testing"
	"time"

	"github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/astrocore"
)

type fixedDirectionLaw struct {
	direction []float64
}

func (l fixedDirectionLaw) ThrustDirectionAt(_ astrocore.Instant, _, _ []float64, _ float64, _ astrocore.Frame) ([]float64, error) {
	return l.direction, nil
}

func heteroEpoch() astrocore.Instant {
	return astrocore.NewInstant(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
}

func TestHeterogeneousGuidanceLawDispatchesByInterval(t *testing.T) {
	h := NewHeterogeneousGuidanceLaw()

	first := fixedDirectionLaw{direction: []float64{1, 0, 0}}
	second := fixedDirectionLaw{direction: []float64{0, 1, 0}}

	t0 := heteroEpoch()
	iv1 := astrocore.NewInterval(t0, t0.Add(astrocore.DurationFromSeconds(100)))
	iv2 := astrocore.NewInterval(t0.Add(astrocore.DurationFromSeconds(200)), t0.Add(astrocore.DurationFromSeconds(300)))

	h.AddGuidanceLaw(first, iv1)
	h.AddGuidanceLaw(second, iv2)

	got, err := h.ThrustDirectionAt(t0.Add(astrocore.DurationFromSeconds(50)), nil, nil, 1, astrocore.GCRF)
	if err != nil {
		t.Fatalf("ThrustDirectionAt: %v", err)
	}
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("within iv1, direction = %v, want {1,0,0}", got)
	}

	got, err = h.ThrustDirectionAt(t0.Add(astrocore.DurationFromSeconds(250)), nil, nil, 1, astrocore.GCRF)
	if err != nil {
		t.Fatalf("ThrustDirectionAt: %v", err)
	}
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("within iv2, direction = %v, want {0,1,0}", got)
	}
}

func TestHeterogeneousGuidanceLawZeroOutsideAllIntervals(t *testing.T) {
	h := NewHeterogeneousGuidanceLaw()
	t0 := heteroEpoch()
	iv := astrocore.NewInterval(t0, t0.Add(astrocore.DurationFromSeconds(100)))
	h.AddGuidanceLaw(fixedDirectionLaw{direction: []float64{1, 0, 0}}, iv)

	got, err := h.ThrustDirectionAt(t0.Add(astrocore.DurationFromSeconds(500)), nil, nil, 1, astrocore.GCRF)
	if err != nil {
		t.Fatalf("ThrustDirectionAt: %v", err)
	}
	if got[0] != 0 || got[1] != 0 || got[2] != 0 {
		t.Errorf("outside every registered interval, direction = %v, want zero", got)
	}
}

func TestConstantLOFDirectionAveragesConsistentSamples(t *testing.T) {
	t0 := heteroEpoch()
	interval := astrocore.NewInterval(t0, t0.Add(astrocore.DurationFromSeconds(100)))

	// A circular orbit's intrack-thrusting law always points along the
	// QSW along-track axis: every sample in the QSW frame should agree.
	law := fixedThetaDirectionLaw{}

	radius := astrocore.Earth.RadiusMeters + 500e3
	speed := math.Sqrt(muEarth / radius)

	posAt := func(instant astrocore.Instant) ([]float64, []float64, error) {
		dt := instant.Sub(t0).Seconds()
		angle := speed / radius * dt
		c, s := math.Cos(angle), math.Sin(angle)
		position := []float64{radius * c, radius * s, 0}
		velocity := []float64{-speed * s, speed * c, 0}
		return position, velocity, nil
	}

	direction, err := constantLOFDirectionFromVariableLaw(law, astrocore.QSW, interval, posAt, posAt, 1e-3)
	if err != nil {
		t.Fatalf("constantLOFDirectionFromVariableLaw: %v", err)
	}
	if math.Abs(astrocore.Norm(direction)-1) > 1e-6 {
		t.Errorf("direction should be a unit vector, got norm %v", astrocore.Norm(direction))
	}
	// QSW's along-track axis is the second component; an along-track law
	// should resolve to (0, 1, 0) in that basis.
	if math.Abs(direction[1]-1) > 1e-6 {
		t.Errorf("expected a pure along-track QSW direction, got %v", direction)
	}
}

func TestConstantLOFDirectionRejectsExcessiveDeviation(t *testing.T) {
	t0 := heteroEpoch()
	interval := astrocore.NewInterval(t0, t0.Add(astrocore.DurationFromSeconds(100)))

	// A law whose direction rotates from radial to along-track across the
	// interval cannot be reconstructed as constant within a tight bound.
	law := sweepingDirectionLaw{start: t0, end: t0.Add(astrocore.DurationFromSeconds(100))}

	radius := astrocore.Earth.RadiusMeters + 500e3
	speed := math.Sqrt(muEarth / radius)
	posAt := func(instant astrocore.Instant) ([]float64, []float64, error) {
		dt := instant.Sub(t0).Seconds()
		angle := speed / radius * dt
		c, s := math.Cos(angle), math.Sin(angle)
		return []float64{radius * c, radius * s, 0}, []float64{-speed * s, speed * c, 0}, nil
	}

	_, err := constantLOFDirectionFromVariableLaw(law, astrocore.QSW, interval, posAt, posAt, 1e-3)
	if err == nil {
		t.Fatal("expected a WrongInput error for an excessively varying direction")
	}
	if cerr, ok := err.(*astrocore.Error); !ok || cerr.Kind != astrocore.WrongInput {
		t.Errorf("expected WrongInput, got %v", err)
	}
}

// fixedThetaDirectionLaw always thrusts along the instantaneous velocity
// (QSW along-track) direction.
type fixedThetaDirectionLaw struct{}

func (fixedThetaDirectionLaw) ThrustDirectionAt(_ astrocore.Instant, _, velocity []float64, _ float64, _ astrocore.Frame) ([]float64, error) {
	return astrocore.Unit(velocity), nil
}

// sweepingDirectionLaw linearly interpolates from a pure-radial to a
// pure-along-track command across [start, end], so a constant-LOF
// reconstruction should reject it.
type sweepingDirectionLaw struct {
	start, end astrocore.Instant
}

func (l sweepingDirectionLaw) ThrustDirectionAt(instant astrocore.Instant, position, velocity []float64, _ float64, _ astrocore.Frame) ([]float64, error) {
	total := l.end.Sub(l.start).Seconds()
	frac := 0.0
	if total > 0 {
		frac = instant.Sub(l.start).Seconds() / total
	}
	radial := astrocore.Unit(position)
	along := astrocore.Unit(velocity)
	dir := make([]float64, 3)
	for i := 0; i < 3; i++ {
		dir[i] = (1-frac)*radial[i] + frac*along[i]
	}
	return astrocore.Unit(dir), nil
}
