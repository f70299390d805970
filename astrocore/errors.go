package astrocore

import "fmt"

// Kind classifies the ways a propagation or guidance computation can fail.
// Names are semantic, not Go type identifiers, matching the error taxonomy
// the rest of this module reports against.
type Kind uint8

const (
	// Undefined marks a missing input or dependency (instant, frame, state, ...).
	Undefined Kind = iota + 1
	// WrongInput marks an out-of-bounds or semantically invalid argument.
	WrongInput
	// ConicSingular marks a parabolic orbit or a(1-e) below machine precision.
	ConicSingular
	// NaNEncountered marks a NaN produced where the computation cannot proceed.
	NaNEncountered
	// BelowSurface marks the integrator stepping inside the central body.
	BelowSurface
	// DidNotConverge marks an iterative solve (M->E) exceeding its iteration budget.
	DidNotConverge
	// MaxDurationViolated marks a Fail-strategy maneuver exceeding its max duration.
	MaxDurationViolated
	// FrameNotQuasiInertial marks an inertial-only operation invoked on a rotating frame.
	FrameNotQuasiInertial
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "Undefined"
	case WrongInput:
		return "WrongInput"
	case ConicSingular:
		return "ConicSingular"
	case NaNEncountered:
		return "NaNEncountered"
	case BelowSurface:
		return "BelowSurface"
	case DidNotConverge:
		return "DidNotConverge"
	case MaxDurationViolated:
		return "MaxDurationViolated"
	case FrameNotQuasiInertial:
		return "FrameNotQuasiInertial"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned across the propagation and
// guidance core's public surface: a Kind, a message, and the offending
// instant and coordinates when available.
type Error struct {
	Kind    Kind
	Message string
	// Instant, when non-empty, is the offending instant formatted by the caller.
	Instant string
	// Coordinates, when non-nil, are the offending position/velocity/state vector.
	Coordinates []float64
}

func (e *Error) Error() string {
	if e.Instant == "" && e.Coordinates == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Coordinates == nil {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Instant)
	}
	return fmt.Sprintf("%s: %s (at %s, coordinates=%v)", e.Kind, e.Message, e.Instant, e.Coordinates)
}

// Is supports errors.Is against a bare Kind sentinel comparison via wrapping.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithInstant attaches a diagnostic instant string to the error.
func (e *Error) WithInstant(instant string) *Error {
	e.Instant = instant
	return e
}

// WithCoordinates attaches diagnostic coordinates to the error.
func (e *Error) WithCoordinates(coords []float64) *Error {
	e.Coordinates = append([]float64(nil), coords...)
	return e
}
