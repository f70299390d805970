package astrocore

// CoordinateSubsetID names a slice of a State's dense coordinate vector.
type CoordinateSubsetID string

const (
	CartesianPosition     CoordinateSubsetID = "CartesianPosition"
	CartesianVelocity     CoordinateSubsetID = "CartesianVelocity"
	CartesianAcceleration CoordinateSubsetID = "CartesianAcceleration"
	Mass                  CoordinateSubsetID = "Mass"
	MassFlowRate          CoordinateSubsetID = "MassFlowRate"
	SurfaceArea           CoordinateSubsetID = "SurfaceArea"
	DragCoefficient       CoordinateSubsetID = "DragCoefficient"
)

// CoordinateSubset is a named, fixed-size slice of a State's coordinate
// vector.
type CoordinateSubset struct {
	ID   CoordinateSubsetID
	Size int
}

// QLawElementVector is the application-defined 5-wide subset Q-Law reads
// its targeted osculating elements from/writes its accumulated delta-COE to.
var QLawElementVector = CoordinateSubset{ID: "QLaw Element Vector", Size: 5}

var (
	subsetCartesianPosition     = CoordinateSubset{ID: CartesianPosition, Size: 3}
	subsetCartesianVelocity     = CoordinateSubset{ID: CartesianVelocity, Size: 3}
	subsetCartesianAcceleration = CoordinateSubset{ID: CartesianAcceleration, Size: 3}
	subsetMass                  = CoordinateSubset{ID: Mass, Size: 1}
	subsetMassFlowRate           = CoordinateSubset{ID: MassFlowRate, Size: 1}
	subsetSurfaceArea            = CoordinateSubset{ID: SurfaceArea, Size: 1}
	subsetDragCoefficient        = CoordinateSubset{ID: DragCoefficient, Size: 1}
)

// StandardSubsets returns the built-in subset descriptors, in broker
// order.
func StandardSubsets() []CoordinateSubset {
	return []CoordinateSubset{
		subsetCartesianPosition,
		subsetCartesianVelocity,
		subsetCartesianAcceleration,
		subsetMass,
		subsetMassFlowRate,
		subsetSurfaceArea,
		subsetDragCoefficient,
	}
}

// Broker maps coordinate subsets to their offset within a flat coordinate
// vector, in the order the subsets were registered. Invariant: a State's
// coordinate vector length equals the sum of its subset sizes.
type Broker struct {
	subsets []CoordinateSubset
	offset  map[CoordinateSubsetID]int
}

// NewBroker builds a Broker over the given ordered subsets.
func NewBroker(subsets ...CoordinateSubset) *Broker {
	b := &Broker{subsets: append([]CoordinateSubset(nil), subsets...), offset: make(map[CoordinateSubsetID]int)}
	pos := 0
	for _, s := range b.subsets {
		b.offset[s.ID] = pos
		pos += s.Size
	}
	return b
}

// Size returns the total coordinate-vector length the broker expects.
func (b *Broker) Size() int {
	size := 0
	for _, s := range b.subsets {
		size += s.Size
	}
	return size
}

// Has reports whether the broker carries the given subset.
func (b *Broker) Has(id CoordinateSubsetID) bool {
	_, ok := b.offset[id]
	return ok
}

// Slice returns the sub-slice of coordinates belonging to id.
func (b *Broker) Slice(coordinates []float64, id CoordinateSubsetID) []float64 {
	offset, ok := b.offset[id]
	if !ok {
		return nil
	}
	for _, s := range b.subsets {
		if s.ID == id {
			return coordinates[offset : offset+s.Size]
		}
	}
	return nil
}

// Scatter adds values into the coordinate vector at id's offset.
// Contributions with the same write subset add.
func (b *Broker) Scatter(coordinates []float64, id CoordinateSubsetID, values []float64) {
	dst := b.Slice(coordinates, id)
	for i := range values {
		if i < len(dst) {
			dst[i] += values[i]
		}
	}
}

// Subsets returns the broker's ordered subset list.
func (b *Broker) Subsets() []CoordinateSubset {
	return append([]CoordinateSubset(nil), b.subsets...)
}

// State is (instant, frame, ordered subsets, dense coordinate vector).
type State struct {
	Instant     Instant
	Frame       Frame
	Broker      *Broker
	Coordinates []float64
}

// NewState validates invariant 1 (coordinate-vector length matches the
// broker's declared total size) and builds a State.
func NewState(instant Instant, frame Frame, broker *Broker, coordinates []float64) (State, error) {
	if broker.Size() != len(coordinates) {
		return State{}, New(WrongInput, "coordinate vector length %d does not match broker size %d", len(coordinates), broker.Size())
	}
	return State{Instant: instant, Frame: frame, Broker: broker, Coordinates: coordinates}, nil
}

// Subset returns the sub-slice of this state's coordinates for id.
func (s State) Subset(id CoordinateSubsetID) []float64 {
	return s.Broker.Slice(s.Coordinates, id)
}

// Position returns the CartesianPosition subset, or nil if absent.
func (s State) Position() []float64 { return s.Subset(CartesianPosition) }

// Velocity returns the CartesianVelocity subset, or nil if absent.
func (s State) Velocity() []float64 { return s.Subset(CartesianVelocity) }

// Clone returns a deep copy of the state's coordinate vector.
func (s State) Clone() State {
	coords := append([]float64(nil), s.Coordinates...)
	return State{Instant: s.Instant, Frame: s.Frame, Broker: s.Broker, Coordinates: coords}
}
