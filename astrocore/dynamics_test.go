package astrocore

import (
	"math"
	"testing"
	"time"
)

func cartesianBroker() *Broker {
	return NewBroker(subsetCartesianPosition, subsetCartesianVelocity, subsetMass)
}

func cartesianState(position, velocity []float64, mass float64) State {
	broker := cartesianBroker()
	coords := append(append(append([]float64{}, position...), velocity...), mass)
	state, err := NewState(NewInstant(time.Now()), GCRF, broker, coords)
	if err != nil {
		panic(err)
	}
	return state
}

// doubleGravity is a dynamics whose velocity contribution is twice the one
// its embedded CentralBodyGravity returns. TestDynamicsAdditivity does not
// use it: it lists CentralBodyGravity twice instead.
type doubleGravity struct {
	CentralBodyGravity
}

func (d doubleGravity) Name() string { return "DoubleGravity" }
func (d doubleGravity) Contribution(instant Instant, read []float64, frame Frame) ([]float64, error) {
	c, err := d.CentralBodyGravity.Contribution(instant, read, frame)
	if err != nil {
		return nil, err
	}
	return []float64{c[0] * 2, c[1] * 2, c[2] * 2}, nil
}

// Property 5: dynamics additivity -- two dynamics writing the same subset
// produce a derivative equal to the sum of what each produces alone.
func TestDynamicsAdditivity(t *testing.T) {
	position := []float64{7_000_000, 0, 0}
	velocity := []float64{0, 7546.053290, 0}
	state := cartesianState(position, velocity, 100)

	gravity := CentralBodyGravity{GravitationalParameter: muEarth}
	positionDeriv := PositionDerivative{}

	combined, err := AssembleDerivative(state.Instant, state.Broker, state.Coordinates, state.Frame, []Dynamics{positionDeriv, gravity, gravity})
	if err != nil {
		t.Fatalf("AssembleDerivative combined: %v", err)
	}

	alone, err := AssembleDerivative(state.Instant, state.Broker, state.Coordinates, state.Frame, []Dynamics{positionDeriv, gravity})
	if err != nil {
		t.Fatalf("AssembleDerivative alone: %v", err)
	}

	// combined applied gravity twice, so its velocity-derivative entries
	// should equal 2x alone's, while the position-derivative entries (fed
	// only by PositionDerivative once in both cases) match exactly.
	for i := 0; i < 3; i++ {
		if math.Abs(combined[i]-alone[i]) > 1e-12 {
			t.Errorf("position derivative[%d] = %v, want %v", i, combined[i], alone[i])
		}
		if math.Abs(combined[3+i]-2*alone[3+i]) > 1e-9 {
			t.Errorf("velocity derivative[%d] = %v, want 2x%v", i, combined[3+i], alone[3+i])
		}
	}
}

func TestCentralBodyGravityRejectsZeroPosition(t *testing.T) {
	g := CentralBodyGravity{GravitationalParameter: muEarth}
	if _, err := g.Contribution(UndefinedInstant(), []float64{0, 0, 0}, GCRF); err == nil {
		t.Fatal("expected an error for zero position")
	}
}

func TestThrusterMassFlowRate(t *testing.T) {
	thruster := Thruster{
		ThrustNewtons:          0.1,
		SpecificImpulseSeconds: 1500,
		Guidance:               constantDirectionGuidance{direction: []float64{0, 1, 0}},
		OutputFrame:            GCRF,
	}
	out, err := thruster.Contribution(UndefinedInstant(), []float64{7000e3, 0, 0, 0, 7546, 0, 100}, GCRF)
	if err != nil {
		t.Fatalf("Contribution: %v", err)
	}
	wantMassRate := -0.1 / (1500 * StandardGravity)
	if math.Abs(out[3]-wantMassRate) > 1e-12 {
		t.Errorf("mass rate = %v, want %v", out[3], wantMassRate)
	}
}

func TestIsThrustingBimodalDiscriminator(t *testing.T) {
	thrusting, err := IsThrusting(constantDirectionGuidance{direction: []float64{1, 0, 0}}, UndefinedInstant(), []float64{1, 0, 0}, []float64{0, 1, 0}, GCRF)
	if err != nil {
		t.Fatalf("IsThrusting: %v", err)
	}
	if !thrusting {
		t.Error("expected a unit-direction guidance law to register as thrusting")
	}

	coasting, err := IsThrusting(constantDirectionGuidance{direction: []float64{0, 0, 0}}, UndefinedInstant(), []float64{1, 0, 0}, []float64{0, 1, 0}, GCRF)
	if err != nil {
		t.Fatalf("IsThrusting: %v", err)
	}
	if coasting {
		t.Error("expected a zero-direction guidance law to register as coasting")
	}
}

// constantDirectionGuidance is a minimal GuidanceLaw test double.
type constantDirectionGuidance struct {
	direction []float64
}

func (g constantDirectionGuidance) ThrustDirectionAt(Instant, []float64, []float64, float64, Frame) ([]float64, error) {
	return g.direction, nil
}

func TestTabulatedInterpolatesBetweenRows(t *testing.T) {
	t0 := NewInstant(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	t1 := t0.Add(DurationFromSeconds(10))
	tab := NewTabulated("Tab", []CoordinateSubsetID{CartesianPosition}, []CoordinateSubsetID{CartesianVelocity},
		[]Instant{t0, t1}, [][]float64{{0, 0, 0}, {10, 20, 30}})

	mid := t0.Add(DurationFromSeconds(5))
	got, err := tab.Contribution(mid, nil, GCRF)
	if err != nil {
		t.Fatalf("Contribution: %v", err)
	}
	want := []float64{5, 10, 15}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("interpolated[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
