package astrocore

import (
	"testing"
	"time"
)

// Invariant 1: a state's coordinate vector length equals the sum of its
// subset sizes.
func TestNewStateRejectsMismatchedLength(t *testing.T) {
	broker := NewBroker(subsetCartesianPosition, subsetCartesianVelocity)
	if _, err := NewState(NewInstant(time.Now()), GCRF, broker, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected an error: coordinate vector too short for broker")
	}
}

func TestBrokerSliceAndScatterRoundTrip(t *testing.T) {
	broker := NewBroker(subsetCartesianPosition, subsetCartesianVelocity, subsetMass)
	coords := []float64{1, 2, 3, 4, 5, 6, 100}

	pos := broker.Slice(coords, CartesianPosition)
	if pos[0] != 1 || pos[1] != 2 || pos[2] != 3 {
		t.Errorf("Slice(CartesianPosition) = %v", pos)
	}
	mass := broker.Slice(coords, Mass)
	if len(mass) != 1 || mass[0] != 100 {
		t.Errorf("Slice(Mass) = %v", mass)
	}

	derivative := make([]float64, len(coords))
	broker.Scatter(derivative, CartesianVelocity, []float64{10, 20, 30})
	broker.Scatter(derivative, CartesianVelocity, []float64{1, 1, 1})
	if derivative[3] != 11 || derivative[4] != 21 || derivative[5] != 31 {
		t.Errorf("Scatter should add: got %v", derivative[3:6])
	}
}

func TestBrokerSizeMatchesSubsets(t *testing.T) {
	broker := NewBroker(StandardSubsets()...)
	want := 3 + 3 + 3 + 1 + 1 + 1 + 1
	if broker.Size() != want {
		t.Errorf("Broker.Size() = %d, want %d", broker.Size(), want)
	}
}

func TestStateClonedCoordinatesAreIndependent(t *testing.T) {
	broker := NewBroker(subsetCartesianPosition)
	state, err := NewState(NewInstant(time.Now()), GCRF, broker, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	clone := state.Clone()
	clone.Coordinates[0] = 99
	if state.Coordinates[0] != 1 {
		t.Error("mutating a clone's coordinates mutated the original")
	}
}
