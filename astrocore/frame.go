package astrocore

// Frame is an identifier tag for a reference frame. The core treats frames
// as opaque handles resolved through a FrameProvider oracle rather than
// through a process-wide registry; the provider's lifetime is scoped to a
// mission.
type Frame struct {
	name          string
	quasiInertial bool
}

// GCRF is the canonical geocentric quasi-inertial frame all internal
// propagation is expressed in.
var GCRF = Frame{name: "GCRF", quasiInertial: true}

// NewFrame declares a frame handle. Rotating Earth-body-fixed frames (e.g.
// an ITRF-like frame) must be declared with quasiInertial = false.
func NewFrame(name string, quasiInertial bool) Frame {
	return Frame{name: name, quasiInertial: quasiInertial}
}

// Name returns the frame's identifier.
func (f Frame) Name() string { return f.name }

// IsQuasiInertial reports whether dynamics expressed in this frame may be
// integrated as inertial (no centrifugal/Coriolis coupling terms).
func (f Frame) IsQuasiInertial() bool { return f.quasiInertial }

func (f Frame) String() string { return f.name }

// Transform is a rigid-plus-velocity transform between two frames at a
// given instant: translation (m), the frame's own velocity (m/s), a
// rotation, and an angular velocity (rad/s) -- the rotating-frame
// velocity-coupling term needed by Kepler.InertialCoeFromFixedCoe.
type Transform struct {
	Translation    [3]float64
	Velocity       [3]float64
	Rotation       [3][3]float64
	AngularVelocity [3]float64
}

// FrameProvider is the collaborator contract the core consumes to resolve
// transforms between frames. Reference-frame transformation itself, GCRF
// to ITRF to body-fixed, is out of this module's scope; this interface is
// the oracle boundary.
type FrameProvider interface {
	TransformAt(instant Instant, from, to Frame) (Transform, error)
}

// ApplyToPositionVelocity applies a Transform to a Cartesian position and
// velocity, including the rotating-frame velocity-coupling term
// v' = R*v + omega x (R*r) + frame_velocity.
func (t Transform) ApplyToPositionVelocity(position, velocity []float64) (newPosition, newVelocity []float64) {
	rp := rotate(t.Rotation, position)
	rv := rotate(t.Rotation, velocity)
	newPosition = make([]float64, 3)
	newVelocity = make([]float64, 3)
	coupling := Cross(t.AngularVelocity[:], rp)
	for i := 0; i < 3; i++ {
		newPosition[i] = rp[i] + t.Translation[i]
		newVelocity[i] = rv[i] + coupling[i] + t.Velocity[i]
	}
	return
}

func rotate(r [3][3]float64, v []float64) []float64 {
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = r[i][0]*v[0] + r[i][1]*v[1] + r[i][2]*v[2]
	}
	return out
}

// LocalOrbitalFrameKind names the local orbital frame conventions a
// constant-direction maneuver can be expressed in.
type LocalOrbitalFrameKind uint8

const (
	LVLH LocalOrbitalFrameKind = iota
	VVLH
	QSW
	TNW
	VNC
	NED
)

// LocalOrbitalFrameRotation returns the 3x3 rotation matrix whose columns
// are the named local-orbital-frame basis vectors expressed in the inertial
// frame the position/velocity are given in, so that
// direction_inertial = R * direction_lof.
func LocalOrbitalFrameRotation(kind LocalOrbitalFrameKind, position, velocity []float64) [3][3]float64 {
	r := Unit(position)
	h := Unit(Cross(position, velocity))
	v := Unit(velocity)

	var x, y, z []float64
	switch kind {
	case QSW, LVLH:
		// QSW / LVLH: x = radial, z = along angular momentum, y completes the triad.
		x = r
		z = h
		y = Cross(z, x)
	case VVLH:
		// VVLH: z = nadir (-radial), y = -h, x completes the triad.
		z = negate(r)
		y = negate(h)
		x = Cross(y, z)
	case TNW:
		// TNW: x = velocity (tangential), z = h (normal), y completes the triad.
		x = v
		z = h
		y = Cross(z, x)
	case VNC:
		// VNC: x = velocity, y = h, z completes the triad.
		x = v
		y = h
		z = Cross(x, y)
	case NED:
		// NED: z = nadir (-radial), y = unit(z x v) (opposite the orbit
		// normal), x = y x z (the velocity direction projected into the local
		// horizontal).
		z = negate(r)
		y = Unit(Cross(z, v))
		x = Cross(y, z)
	default:
		x, y, z = r, Cross(h, r), h
	}

	return [3][3]float64{
		{x[0], y[0], z[0]},
		{x[1], y[1], z[1]},
		{x[2], y[2], z[2]},
	}
}

func negate(v []float64) []float64 {
	return []float64{-v[0], -v[1], -v[2]}
}
