package astrocore

// StandardGravity is g0 in m/s^2, used to convert specific impulse (s) to
// effective exhaust velocity.
const StandardGravity = 9.80665

// GuidanceLaw emits a thrust direction in the theta-radial-normal local
// frame (or any frame the law documents) given the current osculating
// state. Implemented by qlaw.Law and by simple constant/coast laws used by
// the segment package's maneuver reconstruction.
type GuidanceLaw interface {
	ThrustDirectionAt(instant Instant, position, velocity []float64, thrustAccelMagnitude float64, outputFrame Frame) ([]float64, error)
}

// GravityProvider is the collaborator contract for a gravity contribution:
// not implemented beyond a two-body central term, consumed as an oracle
// everywhere else.
type GravityProvider interface {
	AccelerationAt(instant Instant, positionInFrame []float64) ([]float64, error)
}

// AtmosphereProvider is the collaborator contract for atmospheric density
// and relative wind.
type AtmosphereProvider interface {
	DensityAt(instant Instant, position []float64) (float64, error)
	RelativeWindAt(instant Instant, position, velocity []float64) ([]float64, error)
}

// SolarEphemerisProvider is the collaborator contract for a solar position
// oracle, needed by ThirdBodyGravity.
type SolarEphemerisProvider interface {
	PositionAt(instant Instant, frame Frame) ([]float64, error)
}

// Dynamics is a named computation over a subset of a State's coordinates:
// it declares which subsets it reads and writes, and computes an
// instantaneous contribution. The tag is recovered via Name() for
// composite-guidance bookkeeping, not via type-switching.
type Dynamics interface {
	Name() string
	ReadSubsets() []CoordinateSubsetID
	WriteSubsets() []CoordinateSubsetID
	Contribution(instant Instant, read []float64, frame Frame) ([]float64, error)
}

// PositionDerivative couples r' = v: it reads CartesianVelocity and writes
// it straight into CartesianPosition's derivative slot.
type PositionDerivative struct{}

func (PositionDerivative) Name() string                        { return "PositionDerivative" }
func (PositionDerivative) ReadSubsets() []CoordinateSubsetID    { return []CoordinateSubsetID{CartesianVelocity} }
func (PositionDerivative) WriteSubsets() []CoordinateSubsetID   { return []CoordinateSubsetID{CartesianPosition} }
func (PositionDerivative) Contribution(_ Instant, read []float64, _ Frame) ([]float64, error) {
	return append([]float64(nil), read...), nil
}

// CentralBodyGravity is a point-mass two-body acceleration contribution.
type CentralBodyGravity struct {
	GravitationalParameter float64
}

func (CentralBodyGravity) Name() string                     { return "CentralBodyGravity" }
func (CentralBodyGravity) ReadSubsets() []CoordinateSubsetID { return []CoordinateSubsetID{CartesianPosition} }
func (CentralBodyGravity) WriteSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianVelocity}
}

func (d CentralBodyGravity) Contribution(_ Instant, read []float64, _ Frame) ([]float64, error) {
	r := Norm(read)
	if r == 0 {
		return nil, New(WrongInput, "position is zero in CentralBodyGravity")
	}
	factor := -d.GravitationalParameter / (r * r * r)
	return []float64{factor * read[0], factor * read[1], factor * read[2]}, nil
}

// ThirdBodyGravity is a third-body perturbing acceleration using the
// collaborator solar/lunar ephemeris oracle.
type ThirdBodyGravity struct {
	BodyName               string
	GravitationalParameter float64
	Ephemeris              SolarEphemerisProvider
	EphemerisFrame         Frame
}

func (d ThirdBodyGravity) Name() string { return "ThirdBodyGravity:" + d.BodyName }
func (ThirdBodyGravity) ReadSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianPosition}
}
func (ThirdBodyGravity) WriteSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianVelocity}
}

func (d ThirdBodyGravity) Contribution(instant Instant, read []float64, frame Frame) ([]float64, error) {
	bodyPosition, err := d.Ephemeris.PositionAt(instant, frame)
	if err != nil {
		return nil, err
	}
	relative := make([]float64, 3)
	for i := 0; i < 3; i++ {
		relative[i] = bodyPosition[i] - read[i]
	}
	relNorm := Norm(relative)
	bodyNorm := Norm(bodyPosition)
	if relNorm == 0 || bodyNorm == 0 {
		return nil, New(WrongInput, "degenerate third-body geometry for %s", d.BodyName)
	}
	relFactor := d.GravitationalParameter / (relNorm * relNorm * relNorm)
	bodyFactor := d.GravitationalParameter / (bodyNorm * bodyNorm * bodyNorm)
	accel := make([]float64, 3)
	for i := 0; i < 3; i++ {
		accel[i] = relFactor*relative[i] - bodyFactor*bodyPosition[i]
	}
	return accel, nil
}

// AtmosphericDrag is a velocity-squared drag acceleration contribution
// using the collaborator atmosphere oracle.
type AtmosphericDrag struct {
	Atmosphere       AtmosphereProvider
	SurfaceArea      float64
	DragCoefficient  float64
}

func (AtmosphericDrag) Name() string { return "AtmosphericDrag" }
func (AtmosphericDrag) ReadSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianPosition, CartesianVelocity, Mass}
}
func (AtmosphericDrag) WriteSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianVelocity}
}

func (d AtmosphericDrag) Contribution(instant Instant, read []float64, _ Frame) ([]float64, error) {
	position := read[0:3]
	velocity := read[3:6]
	mass := read[6]
	if mass <= 0 {
		return nil, New(WrongInput, "non-positive mass in AtmosphericDrag")
	}
	density, err := d.Atmosphere.DensityAt(instant, position)
	if err != nil {
		return nil, err
	}
	wind, err := d.Atmosphere.RelativeWindAt(instant, position, velocity)
	if err != nil {
		return nil, err
	}
	windSpeed := Norm(wind)
	factor := -0.5 * density * d.DragCoefficient * d.SurfaceArea / mass * windSpeed
	return []float64{factor * wind[0], factor * wind[1], factor * wind[2]}, nil
}

// Thruster writes an acceleration (direction from a GuidanceLaw, magnitude
// thrust/mass) into velocity's derivative slot, and a mass-flow-rate
// contribution -|thrust|/(Isp*g0) into mass's derivative slot.
type Thruster struct {
	ThrustNewtons          float64
	SpecificImpulseSeconds float64
	Guidance               GuidanceLaw
	OutputFrame            Frame
}

func (Thruster) Name() string { return "Thruster" }
func (Thruster) ReadSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianPosition, CartesianVelocity, Mass}
}
func (Thruster) WriteSubsets() []CoordinateSubsetID {
	return []CoordinateSubsetID{CartesianVelocity, Mass}
}

func (d Thruster) Contribution(instant Instant, read []float64, frame Frame) ([]float64, error) {
	position := read[0:3]
	velocity := read[3:6]
	mass := read[6]
	if mass <= 0 {
		return nil, New(WrongInput, "non-positive mass in Thruster")
	}
	accelMagnitude := d.ThrustNewtons / mass
	direction, err := d.Guidance.ThrustDirectionAt(instant, position, velocity, accelMagnitude, d.OutputFrame)
	if err != nil {
		return nil, err
	}
	accel := []float64{
		accelMagnitude * direction[0],
		accelMagnitude * direction[1],
		accelMagnitude * direction[2],
	}
	massRate := -Norm(direction) * d.ThrustNewtons / (d.SpecificImpulseSeconds * StandardGravity)
	return []float64{accel[0], accel[1], accel[2], massRate}, nil
}

// IsThrusting reports whether a unit-magnitude evaluation of a guidance law
// would command thrust. The guidance norm is 0 when the law commands coast
// and 1 when it commands thrust, so 0.5 is a bimodal discriminator, not a
// magnitude measurement.
func IsThrusting(guidance GuidanceLaw, instant Instant, position, velocity []float64, outputFrame Frame) (bool, error) {
	direction, err := guidance.ThrustDirectionAt(instant, position, velocity, 1.0, outputFrame)
	if err != nil {
		return false, err
	}
	return Norm(direction) > 0.5, nil
}

// tabulatedEntry is one row of a Tabulated dynamics' precomputed table.
type tabulatedEntry struct {
	instant      Instant
	contribution []float64
}

// Tabulated holds a precomputed (instant, contribution) table and
// binary-searches it on invocation.
type Tabulated struct {
	DynamicsName string
	Reads        []CoordinateSubsetID
	Writes       []CoordinateSubsetID
	entries      []tabulatedEntry
}

// NewTabulated builds a Tabulated dynamics from instants and matching
// contribution rows, which must already be sorted by instant ascending.
func NewTabulated(name string, reads, writes []CoordinateSubsetID, instants []Instant, contributions [][]float64) *Tabulated {
	entries := make([]tabulatedEntry, len(instants))
	for i := range instants {
		entries[i] = tabulatedEntry{instant: instants[i], contribution: contributions[i]}
	}
	return &Tabulated{DynamicsName: name, Reads: reads, Writes: writes, entries: entries}
}

func (t *Tabulated) Name() string                      { return t.DynamicsName }
func (t *Tabulated) ReadSubsets() []CoordinateSubsetID  { return t.Reads }
func (t *Tabulated) WriteSubsets() []CoordinateSubsetID { return t.Writes }

func (t *Tabulated) Contribution(instant Instant, _ []float64, _ Frame) ([]float64, error) {
	if len(t.entries) == 0 {
		return nil, New(Undefined, "tabulated dynamics %s has no entries", t.DynamicsName)
	}
	lo, hi := 0, len(t.entries)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.entries[mid].instant.Before(instant) || t.entries[mid].instant == instant {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == len(t.entries)-1 || instant.Before(t.entries[0].instant) {
		return t.entries[lo].contribution, nil
	}
	// Linear interpolation between bracketing rows.
	left, right := t.entries[lo], t.entries[lo+1]
	span := right.instant.Sub(left.instant).Seconds()
	if span == 0 {
		return left.contribution, nil
	}
	frac := instant.Sub(left.instant).Seconds() / span
	out := make([]float64, len(left.contribution))
	for i := range out {
		out[i] = left.contribution[i] + frac*(right.contribution[i]-left.contribution[i])
	}
	return out, nil
}

// AssembleDerivative composes one derivative vector from all dynamics:
// read the broker's named subsets for each dynamics, invoke its
// contribution, and scatter (additively) into the derivative vector.
func AssembleDerivative(instant Instant, broker *Broker, coordinates []float64, frame Frame, dynamicsList []Dynamics) ([]float64, error) {
	derivative := make([]float64, len(coordinates))
	for _, d := range dynamicsList {
		var read []float64
		for _, id := range d.ReadSubsets() {
			read = append(read, broker.Slice(coordinates, id)...)
		}
		contribution, err := d.Contribution(instant, read, frame)
		if err != nil {
			return nil, err
		}
		pos := 0
		for _, id := range d.WriteSubsets() {
			size := subsetSize(broker, id)
			if pos+size > len(contribution) {
				return nil, New(WrongInput, "dynamics %s returned a short contribution vector", d.Name())
			}
			broker.Scatter(derivative, id, contribution[pos:pos+size])
			pos += size
		}
	}
	return derivative, nil
}

func subsetSize(b *Broker, id CoordinateSubsetID) int {
	for _, s := range b.subsets {
		if s.ID == id {
			return s.Size
		}
	}
	return 0
}
