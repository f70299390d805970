package astrocore

import (
	"math"

	"github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/integrator"
)

// Propagator numerically integrates a State forward under a fixed set of
// Dynamics, using either a fixed-step RK4 or an adaptive RKF78 stepper.
//
// Reverse propagation (negative duration) is not supported.
type Propagator struct {
	DynamicsList       []Dynamics
	CentralBodyRadius  float64 // meters; 0 disables the BelowSurface guard
	FixedStep          float64 // seconds; used when > 0
	Adaptive           *integrator.RKF78
	BisectionTolerance float64 // seconds; defaults to 1e-6 if 0
	// Observer, if set, is called with every accepted intermediate state
	// produced while integrating, letting callers such as the segment
	// solver reconstruct a dense trajectory rather than only the boundary
	// state StateAt returns.
	Observer func(State)

	// observed caches the sub-step states of the most recent public
	// propagation call, inclusive of endpoints; it is reset at the start
	// of the next call on the same propagator, whether that call succeeds
	// or fails.
	observed []State
}

// ObservedStates returns every sub-step state the most recent StateAt,
// StateUntilCondition, or StateUntilConditionOrDeadline call emitted, in
// order, inclusive of endpoints.
func (p *Propagator) ObservedStates() []State {
	return append([]State(nil), p.observed...)
}

func (p *Propagator) recordState(s State) {
	p.observed = append(p.observed, s)
	if p.Observer != nil {
		p.Observer(s)
	}
}

func (p *Propagator) observe(initial State, t float64, y []float64) {
	instant := initial.Instant.Add(DurationFromSeconds(t))
	coords := append([]float64(nil), y...)
	if state, err := NewState(instant, initial.Frame, initial.Broker, coords); err == nil {
		p.recordState(state)
	}
}

// probe returns an unobserved copy of p, used for integrations whose
// intermediate states must not leak into the observed list or the
// Observer: bisection refinement and the per-chunk stepping of the
// condition loops (which record only the chunk boundaries they actually
// accept, keeping the observed list monotonic past a crossing).
func (p *Propagator) probe() *Propagator {
	clone := *p
	clone.Observer = nil
	clone.observed = nil
	return &clone
}

func (p *Propagator) derivative(initial State) (integrator.Integrable, *error) {
	var stepErr error
	fn := integrator.IntegrableFunc(func(t float64, y []float64) []float64 {
		instant := initial.Instant.Add(DurationFromSeconds(t))
		d, err := AssembleDerivative(instant, initial.Broker, y, initial.Frame, p.DynamicsList)
		if err != nil {
			stepErr = err
			return make([]float64, len(y))
		}
		return d
	})
	return fn, &stepErr
}

func (p *Propagator) belowSurface(position []float64) error {
	if p.CentralBodyRadius <= 0 {
		return nil
	}
	if Norm(position) < p.CentralBodyRadius {
		return New(BelowSurface, "radial distance %f m is below central body radius %f m", Norm(position), p.CentralBodyRadius)
	}
	return nil
}

// StateAt integrates initial forward to the target instant, recording
// every accepted sub-step into the observed list.
func (p *Propagator) StateAt(initial State, target Instant) (State, error) {
	p.observed = p.observed[:0]
	return p.stepTo(initial, target)
}

func (p *Propagator) stepTo(initial State, target Instant) (State, error) {
	totalSeconds := target.Sub(initial.Instant).Seconds()
	if totalSeconds < 0 {
		return State{}, New(WrongInput, "reverse propagation is not supported")
	}
	if totalSeconds == 0 {
		return initial.Clone(), nil
	}

	deriv, stepErr := p.derivative(initial)
	y := append([]float64(nil), initial.Coordinates...)
	if len(p.observed) == 0 {
		p.observe(initial, 0, y)
	}

	if p.FixedStep > 0 {
		h := math.Abs(p.FixedStep)
		t := 0.0
		nSteps := int(totalSeconds / h)
		for i := 0; i < nSteps; i++ {
			y = integrator.RK4Step(deriv, t, h, y)
			t += h
			if *stepErr != nil {
				return State{}, *stepErr
			}
			if position := sliceIfPresent(initial.Broker, y, CartesianPosition); position != nil {
				if err := p.belowSurface(position); err != nil {
					return State{}, err
				}
			}
			p.observe(initial, t, y)
		}
		remaining := totalSeconds - t
		if remaining > 1e-9 {
			y = integrator.RK4Step(deriv, t, remaining, y)
			if *stepErr != nil {
				return State{}, *stepErr
			}
			p.observe(initial, totalSeconds, y)
		}
		return NewState(target, initial.Frame, initial.Broker, y)
	}

	stepper := p.Adaptive
	if stepper == nil {
		def := integrator.NewRKF78(1e-9, 1e-9)
		stepper = &def
	}

	t := 0.0
	h := stepper.MaxStep
	if h <= 0 || h > totalSeconds {
		h = totalSeconds
	}
	for t < totalSeconds {
		if t+h > totalSeconds {
			h = totalSeconds - t
		}
		next, _, hNext, accepted, err := stepper.Step(deriv, t, h, y)
		if err != nil {
			return State{}, err
		}
		if !accepted {
			h = hNext
			continue
		}
		if *stepErr != nil {
			return State{}, *stepErr
		}
		y = next
		t += h
		if position := sliceIfPresent(initial.Broker, y, CartesianPosition); position != nil {
			if err := p.belowSurface(position); err != nil {
				return State{}, err
			}
		}
		p.observe(initial, t, y)
		h = hNext
	}

	return NewState(target, initial.Frame, initial.Broker, y)
}

func sliceIfPresent(broker *Broker, coordinates []float64, id CoordinateSubsetID) []float64 {
	if !broker.Has(id) {
		return nil
	}
	return broker.Slice(coordinates, id)
}

// StateUntilCondition integrates initial forward, accepting steps no larger
// than maxStep seconds, until condition fires or maxDuration elapses
// (MaxDurationViolated). Once a step straddles the firing transition, the
// crossing instant is refined by bisection down to BisectionTolerance
// seconds. The observed list holds the condition-evaluation chunk
// boundaries plus the refined crossing state.
func (p *Propagator) StateUntilCondition(initial State, condition EventCondition, maxStep Duration, maxDuration Duration) (State, error) {
	tolerance := p.BisectionTolerance
	if tolerance <= 0 {
		tolerance = 1e-6
	}
	step := maxStep.Seconds()
	if step <= 0 {
		return State{}, New(WrongInput, "maxStep must be positive")
	}

	p.observed = p.observed[:0]
	p.recordState(initial)
	stepper := p.probe()

	deadline := initial.Instant.Add(maxDuration)
	prev := initial
	for {
		remaining := deadline.Sub(prev.Instant).Seconds()
		if remaining <= 0 {
			return State{}, New(MaxDurationViolated, "event condition %s did not fire within the maximum duration", condition.Name())
		}
		h := math.Min(step, remaining)
		next, err := stepper.StateAt(prev, prev.Instant.Add(DurationFromSeconds(h)))
		if err != nil {
			return State{}, err
		}

		fired, _, err := condition.Evaluate(prev, next)
		if err != nil {
			return State{}, err
		}
		if fired {
			refined, err := p.bisect(prev, next, condition, tolerance)
			if err != nil {
				return State{}, err
			}
			p.recordState(refined)
			return refined, nil
		}
		p.recordState(next)
		prev = next
	}
}

// StateUntilConditionOrDeadline is StateUntilCondition's non-failing
// sibling: it integrates until condition fires or deadline is reached,
// whichever comes first, and reports which happened instead of treating
// reaching deadline as an error. Segment solving needs this distinction
// (a maneuver segment legitimately runs out of time without its stop
// condition ever firing, e.g. when searching for the next thruster-on
// instant), whereas a caller driving a single Propagator call to
// completion wants the stricter StateUntilCondition.
func (p *Propagator) StateUntilConditionOrDeadline(initial State, condition EventCondition, maxStep Duration, deadline Instant) (State, bool, error) {
	tolerance := p.BisectionTolerance
	if tolerance <= 0 {
		tolerance = 1e-6
	}
	step := maxStep.Seconds()
	if step <= 0 {
		return State{}, false, New(WrongInput, "maxStep must be positive")
	}

	p.observed = p.observed[:0]
	p.recordState(initial)
	stepper := p.probe()

	prev := initial
	for {
		remaining := deadline.Sub(prev.Instant).Seconds()
		if remaining <= 0 {
			return prev, false, nil
		}
		h := math.Min(step, remaining)
		next, err := stepper.StateAt(prev, prev.Instant.Add(DurationFromSeconds(h)))
		if err != nil {
			return State{}, false, err
		}

		fired, _, err := condition.Evaluate(prev, next)
		if err != nil {
			return State{}, false, err
		}
		if fired {
			refined, err := p.bisect(prev, next, condition, tolerance)
			if err != nil {
				return State{}, false, err
			}
			p.recordState(refined)
			return refined, true, nil
		}
		p.recordState(next)
		prev = next
	}
}

// bisect refines the instant within [lo, hi] at which condition's firing
// transition occurs, to within tolerance seconds. The probe integrations
// it runs are never observed.
func (p *Propagator) bisect(lo, hi State, condition EventCondition, tolerance float64) (State, error) {
	stepper := p.probe()
	for hi.Instant.Sub(lo.Instant).Seconds() > tolerance {
		midInstant := lo.Instant.Add(DurationFromSeconds(hi.Instant.Sub(lo.Instant).Seconds() / 2))
		mid, err := stepper.StateAt(lo, midInstant)
		if err != nil {
			return State{}, err
		}
		fired, _, err := condition.Evaluate(lo, mid)
		if err != nil {
			return State{}, err
		}
		if fired {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}
