package segment

import (
	"math"

	"github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/astrocore"
)

// Type distinguishes a Coast segment (no thrusting) from a Maneuver segment
// (a thruster is searched for and solved maneuver-by-maneuver).
type Type uint8

const (
	CoastType Type = iota
	ManeuverType
)

func (t Type) String() string {
	if t == ManeuverType {
		return "Maneuver"
	}
	return "Coast"
}

// shortManeuverThreshold is the duration below which a candidate thrust arc
// is treated as numerical noise around the thruster's on/off discriminator
// rather than a real maneuver, and coasted through instead of accumulated.
const shortManeuverThreshold = 5.0

// Segment is an event-driven propagation leg: propagate under a fixed set
// of free dynamics (plus, for a Maneuver, a searched-and-solved thruster)
// until Condition fires or MaxStep-paced integration exhausts the caller's
// deadline.
type Segment struct {
	SegmentName  string
	SegmentType  Type
	Condition    astrocore.EventCondition
	FreeDynamics []astrocore.Dynamics
	Propagator   astrocore.Propagator
	MaxStep      astrocore.Duration

	// Thruster fields, set only for Maneuver segments.
	ThrustNewtons          float64
	SpecificImpulseSeconds float64
	ThrusterGuidance       astrocore.GuidanceLaw
	OutputFrame            astrocore.Frame
	Constraints            Constraints

	// Constant-LOF reconstruction, optional even for a Maneuver segment.
	ConstantLOFKind        astrocore.LocalOrbitalFrameKind
	HasConstantLOFKind     bool
	MaxAngularOffsetRad    float64
}

// Coast builds a Coast segment: propagate freeDynamics until condition
// fires.
func Coast(name string, condition astrocore.EventCondition, freeDynamics []astrocore.Dynamics, propagator astrocore.Propagator, maxStep astrocore.Duration) *Segment {
	return &Segment{
		SegmentName:  name,
		SegmentType:  CoastType,
		Condition:    condition,
		FreeDynamics: freeDynamics,
		Propagator:   propagator,
		MaxStep:      maxStep,
	}
}

// Maneuver builds a Maneuver segment whose thruster is commanded by
// guidance, using its natural (possibly time-varying) thrust direction.
func Maneuver(
	name string,
	condition astrocore.EventCondition,
	freeDynamics []astrocore.Dynamics,
	thrustNewtons, specificImpulseSeconds float64,
	guidance astrocore.GuidanceLaw,
	outputFrame astrocore.Frame,
	propagator astrocore.Propagator,
	maxStep astrocore.Duration,
	constraints Constraints,
) *Segment {
	return &Segment{
		SegmentName:            name,
		SegmentType:            ManeuverType,
		Condition:              condition,
		FreeDynamics:           freeDynamics,
		ThrustNewtons:          thrustNewtons,
		SpecificImpulseSeconds: specificImpulseSeconds,
		ThrusterGuidance:       guidance,
		OutputFrame:            outputFrame,
		Propagator:             propagator,
		MaxStep:                maxStep,
		Constraints:            constraints,
	}
}

// ConstantLocalOrbitalFrameDirectionManeuver builds a Maneuver segment whose
// accepted thrust arcs are reconstructed, after solving, into a single
// direction fixed in the named local orbital frame,
// rejecting an arc whose natural direction wanders from that fixed
// direction by more than maxAngularOffsetRad.
func ConstantLocalOrbitalFrameDirectionManeuver(
	name string,
	condition astrocore.EventCondition,
	freeDynamics []astrocore.Dynamics,
	thrustNewtons, specificImpulseSeconds float64,
	guidance astrocore.GuidanceLaw,
	outputFrame astrocore.Frame,
	kind astrocore.LocalOrbitalFrameKind,
	maxAngularOffsetRad float64,
	propagator astrocore.Propagator,
	maxStep astrocore.Duration,
	constraints Constraints,
) *Segment {
	seg := Maneuver(name, condition, freeDynamics, thrustNewtons, specificImpulseSeconds, guidance, outputFrame, propagator, maxStep, constraints)
	seg.ConstantLOFKind = kind
	seg.HasConstantLOFKind = true
	seg.MaxAngularOffsetRad = maxAngularOffsetRad
	return seg
}

// Solution is the result of solving a Segment: its resolved dense
// trajectory, the dynamics actually in effect while producing it, and --
// for a Maneuver -- the accepted thrust arcs.
type Solution struct {
	SegmentName          string
	SegmentType          Type
	ConditionIsSatisfied bool
	EffectiveDynamics    []astrocore.Dynamics
	States               []astrocore.State
	Maneuvers            []ManeuverArc
}

func (s Solution) StartInstant() astrocore.Instant { return s.States[0].Instant }
func (s Solution) EndInstant() astrocore.Instant    { return s.States[len(s.States)-1].Instant }
func (s Solution) Interval() astrocore.Interval {
	return astrocore.NewInterval(s.StartInstant(), s.EndInstant())
}
func (s Solution) PropagationDuration() astrocore.Duration { return s.Interval().Duration() }

func (s Solution) InitialMass() float64 { return massOf(s.States[0]) }
func (s Solution) FinalMass() float64   { return massOf(s.States[len(s.States)-1]) }
func (s Solution) DeltaMass() float64   { return s.InitialMass() - s.FinalMass() }

// DeltaV returns the Tsiolkovsky delta-v implied by the mass consumed over
// the solution, for the given specific impulse.
func (s Solution) DeltaV(specificImpulseSeconds float64) float64 {
	initial, final := s.InitialMass(), s.FinalMass()
	if initial <= 0 || final <= 0 {
		return 0
	}
	return specificImpulseSeconds * astrocore.StandardGravity * math.Log(initial/final)
}

func massOf(s astrocore.State) float64 {
	m := s.Subset(astrocore.Mass)
	if len(m) == 0 {
		return 0
	}
	return m[0]
}

// toggleThreshold is the bimodal unit-thrust-norm discriminator a guidance
// law's on/off transitions are detected against, matching
// astrocore.IsThrusting.
const toggleThreshold = 0.5

func (seg *Segment) toggleEvaluator(guidance astrocore.GuidanceLaw) astrocore.Evaluator {
	return func(s astrocore.State) (float64, error) {
		direction, err := guidance.ThrustDirectionAt(s.Instant, s.Position(), s.Velocity(), 1.0, seg.OutputFrame)
		if err != nil {
			return 0, err
		}
		return astrocore.Norm(direction), nil
	}
}

func (seg *Segment) freePropagator(collect *[]astrocore.State) astrocore.Propagator {
	p := seg.Propagator
	p.DynamicsList = seg.FreeDynamics
	p.Observer = appendObserver(collect)
	return p
}

func (seg *Segment) thrustingPropagator(guidance astrocore.GuidanceLaw, collect *[]astrocore.State) astrocore.Propagator {
	p := seg.Propagator
	thruster := astrocore.Thruster{
		ThrustNewtons:          seg.ThrustNewtons,
		SpecificImpulseSeconds: seg.SpecificImpulseSeconds,
		Guidance:               guidance,
		OutputFrame:            seg.OutputFrame,
	}
	p.DynamicsList = append(append([]astrocore.Dynamics(nil), seg.FreeDynamics...), thruster)
	p.Observer = appendObserver(collect)
	return p
}

// appendObserver returns a Propagator.Observer that appends every observed
// state into dst, skipping the very first sample of every call after the
// first so adjoining legs of a multi-leg solve don't duplicate their shared
// boundary state.
func appendObserver(dst *[]astrocore.State) func(astrocore.State) {
	first := true
	return func(s astrocore.State) {
		if first && len(*dst) > 0 {
			first = false
			return
		}
		first = false
		*dst = append(*dst, s)
	}
}

// Solve propagates initialState forward under this segment's dynamics
// until Condition fires or maximumPropagationDuration elapses.
// previousManeuverInterval, if non-nil, is the most recently accepted
// maneuver interval from a prior segment in the same sequence, used to
// enforce Constraints.MinimumSeparation across segment boundaries.
func (seg *Segment) Solve(initialState astrocore.State, maximumPropagationDuration astrocore.Duration, previousManeuverInterval *astrocore.Interval) (Solution, error) {
	if maximumPropagationDuration.Seconds() <= 0 {
		return Solution{}, astrocore.New(astrocore.WrongInput, "maximum propagation duration must be positive")
	}
	if seg.SegmentType == CoastType {
		return seg.solveCoast(initialState, maximumPropagationDuration)
	}
	if err := seg.Constraints.Validate(); err != nil {
		return Solution{}, err
	}
	return seg.solveManeuver(initialState, maximumPropagationDuration, previousManeuverInterval)
}

func (seg *Segment) solveCoast(initialState astrocore.State, maxDuration astrocore.Duration) (Solution, error) {
	states := []astrocore.State{initialState}
	p := seg.freePropagator(&states)
	deadline := initialState.Instant.Add(maxDuration)

	final, satisfied, err := p.StateUntilConditionOrDeadline(initialState, seg.Condition, seg.MaxStep, deadline)
	if err != nil {
		return Solution{}, err
	}
	if len(states) == 0 || states[len(states)-1].Instant != final.Instant {
		states = append(states, final)
	}

	return Solution{
		SegmentName:          seg.SegmentName,
		SegmentType:          CoastType,
		ConditionIsSatisfied: satisfied,
		EffectiveDynamics:    seg.FreeDynamics,
		States:               states,
	}, nil
}

func (seg *Segment) solveManeuver(initialState astrocore.State, maxDuration astrocore.Duration, previousManeuverInterval *astrocore.Interval) (Solution, error) {
	deadline := initialState.Instant.Add(maxDuration)
	states := []astrocore.State{initialState}
	accumulator := NewHeterogeneousGuidanceLaw()
	var maneuvers []ManeuverArc

	current := initialState
	lastManeuverEnd := previousManeuverInterval
	skipMultiplier := 1.0
	// thrusterStillOn marks that the previous iteration ended mid-burn (a
	// Chunk cut), so the next iteration must resume thrusting immediately
	// instead of searching for a thrust-on crossing that cannot re-fire
	// while the guidance law is already commanding thrust.
	thrusterStillOn := false

	for {
		if !current.Instant.Before(deadline) {
			return seg.finishManeuver(states, accumulator, maneuvers, false), nil
		}

		var candidateStart astrocore.State
		if thrusterStillOn {
			candidateStart = current
			thrusterStillOn = false
		} else {
			if lastManeuverEnd != nil && seg.Constraints.HasMinimumSeparation {
				separationInstant := lastManeuverEnd.End.Add(seg.Constraints.MinimumSeparation)
				if current.Instant.Before(separationInstant) {
					next, fired, err := seg.coastToSeparation(current, separationInstant, deadline, &states)
					if err != nil {
						return Solution{}, err
					}
					if fired {
						return seg.finishManeuver(states, accumulator, maneuvers, true), nil
					}
					current = next
					if !current.Instant.Before(deadline) {
						return seg.finishManeuver(states, accumulator, maneuvers, false), nil
					}
				}
			}

			start, hit, err := seg.solveUntilThrusterOn(current, deadline, &states)
			if err != nil {
				return Solution{}, err
			}
			if !hit {
				// Either the segment condition fired (satisfied) or the
				// deadline was reached while coasting -- either way, no more
				// maneuvers are possible.
				fired, _, evalErr := seg.Condition.Evaluate(current, start)
				if evalErr != nil {
					return Solution{}, evalErr
				}
				return seg.finishManeuver(states, accumulator, maneuvers, fired), nil
			}
			candidateStart = start
		}

		candidateEnd, conditionFired, err := seg.solveUntilThrusterOff(candidateStart, deadline, &states)
		if err != nil {
			return Solution{}, err
		}

		candidateInterval := astrocore.NewInterval(candidateStart.Instant, candidateEnd.Instant)

		if candidateInterval.Duration().Seconds() < shortManeuverThreshold {
			// Noise-thin arc around the on/off discriminator: coast a
			// growing distance past it so repeated chatter cannot stall
			// the search, then retry. The multiplier resets on the next
			// accepted maneuver.
			next, err := seg.coastPast(candidateEnd, shortManeuverThreshold*skipMultiplier, deadline, &states)
			if err != nil {
				return Solution{}, err
			}
			skipMultiplier *= 2
			current = next
			if conditionFired {
				return seg.finishManeuver(states, accumulator, maneuvers, true), nil
			}
			continue
		}

		if seg.Constraints.HasMinimumDuration && !seg.Constraints.intervalHasValidMinimumDuration(candidateInterval) {
			// Below the minimum duration: coast to the candidate's end and
			// keep searching.
			current = candidateEnd
			if conditionFired {
				return seg.finishManeuver(states, accumulator, maneuvers, true), nil
			}
			continue
		}

		acceptedInterval, next, skipped, chunked, err := seg.resolveMaximumDuration(candidateInterval, candidateEnd, &states)
		if err != nil {
			return Solution{}, err
		}

		if !skipped {
			finalInterval, err := seg.accumulate(accumulator, acceptedInterval, &states)
			if err != nil {
				return Solution{}, err
			}
			maneuvers = append(maneuvers, ManeuverArc{Interval: finalInterval})
			lastManeuverEnd = &finalInterval
			skipMultiplier = 1.0
		}

		current = next
		thrusterStillOn = chunked
		if conditionFired && !next.Instant.Before(candidateEnd.Instant) {
			return seg.finishManeuver(states, accumulator, maneuvers, true), nil
		}
	}
}

// coastToSeparation coasts under the free dynamics up to separationInstant
// (or deadline, whichever is sooner), stopping early only if the segment's
// own condition fires; a thrust-on crossing inside the separation window is
// deliberately coasted through.
func (seg *Segment) coastToSeparation(current astrocore.State, separationInstant, deadline astrocore.Instant, states *[]astrocore.State) (astrocore.State, bool, error) {
	target := separationInstant
	if deadline.Before(target) {
		target = deadline
	}
	p := seg.freePropagator(states)
	next, fired, err := p.StateUntilConditionOrDeadline(current, seg.Condition, seg.MaxStep, target)
	if err != nil {
		return astrocore.State{}, false, err
	}
	return next, fired, nil
}

// coastPast coasts under the free dynamics for the given number of seconds
// past from (capped at deadline), without condition checks finer than the
// per-step ones the caller's next iteration performs.
func (seg *Segment) coastPast(from astrocore.State, seconds float64, deadline astrocore.Instant, states *[]astrocore.State) (astrocore.State, error) {
	if seconds <= 0 {
		seconds = 1
	}
	target := from.Instant.Add(astrocore.DurationFromSeconds(seconds))
	if deadline.Before(target) {
		target = deadline
	}
	if !target.After(from.Instant) {
		return from, nil
	}
	p := seg.freePropagator(states)
	return p.StateAt(from, target)
}

func (seg *Segment) finishManeuver(states []astrocore.State, accumulator *HeterogeneousGuidanceLaw, maneuvers []ManeuverArc, satisfied bool) Solution {
	thruster := astrocore.Thruster{
		ThrustNewtons:          seg.ThrustNewtons,
		SpecificImpulseSeconds: seg.SpecificImpulseSeconds,
		Guidance:               accumulator,
		OutputFrame:            seg.OutputFrame,
	}
	return Solution{
		SegmentName:          seg.SegmentName,
		SegmentType:          ManeuverType,
		ConditionIsSatisfied: satisfied,
		EffectiveDynamics:    append(append([]astrocore.Dynamics(nil), seg.FreeDynamics...), thruster),
		States:               states,
		Maneuvers:            maneuvers,
	}
}

// solveUntilThrusterOn coasts (free dynamics only) from current until
// either the guidance law's natural thrust-on crossing fires or the
// segment's own Condition fires, whichever comes first. hit reports
// whether the thrust-on crossing (rather than Condition or the deadline)
// is what stopped propagation.
func (seg *Segment) solveUntilThrusterOn(current astrocore.State, deadline astrocore.Instant, states *[]astrocore.State) (astrocore.State, bool, error) {
	onCondition := astrocore.NewRealCondition("thruster-on", seg.toggleEvaluator(seg.ThrusterGuidance), astrocore.PositiveCrossing, toggleThreshold)
	combined := astrocore.NewLogicalCondition("segment-or-thruster-on", astrocore.Or, seg.Condition, onCondition)

	p := seg.freePropagator(states)
	next, fired, err := p.StateUntilConditionOrDeadline(current, combined, seg.MaxStep, deadline)
	if err != nil {
		return astrocore.State{}, false, err
	}
	if !fired {
		return next, false, nil
	}

	segmentFired, _, err := seg.Condition.Evaluate(current, next)
	if err != nil {
		return astrocore.State{}, false, err
	}
	return next, !segmentFired, nil
}

// solveUntilThrusterOff propagates with the thruster active (natural
// guidance law) from candidateStart until either the guidance law's
// natural thrust-off crossing fires or the segment's own Condition fires.
// conditionFired reports whether the segment's Condition is what stopped
// propagation.
func (seg *Segment) solveUntilThrusterOff(candidateStart astrocore.State, deadline astrocore.Instant, states *[]astrocore.State) (astrocore.State, bool, error) {
	offCondition := astrocore.NewRealCondition("thruster-off", seg.toggleEvaluator(seg.ThrusterGuidance), astrocore.NegativeCrossing, toggleThreshold)
	combined := astrocore.NewLogicalCondition("segment-or-thruster-off", astrocore.Or, seg.Condition, offCondition)

	p := seg.thrustingPropagator(seg.ThrusterGuidance, states)
	next, _, err := p.StateUntilConditionOrDeadline(candidateStart, combined, seg.MaxStep, deadline)
	if err != nil {
		return astrocore.State{}, false, err
	}

	segmentFired, _, err := seg.Condition.Evaluate(candidateStart, next)
	if err != nil {
		return astrocore.State{}, false, err
	}
	return next, segmentFired, nil
}

// resolveMaximumDuration enforces Constraints.MaximumDuration against
// candidateInterval, returning the interval actually to be accumulated as a
// maneuver and the state propagation should resume from afterward. chunked
// reports that the accepted interval was a Chunk cut whose end lies
// mid-burn, so the caller must resume thrusting from there rather than
// search for a new thrust-on crossing.
func (seg *Segment) resolveMaximumDuration(candidateInterval astrocore.Interval, candidateEnd astrocore.State, states *[]astrocore.State) (astrocore.Interval, astrocore.State, bool, bool, error) {
	if !seg.Constraints.HasMaximumDuration || seg.Constraints.intervalHasValidMaximumDuration(candidateInterval) {
		return candidateInterval, candidateEnd, false, false, nil
	}

	maxDuration := seg.Constraints.MaximumDuration
	switch seg.Constraints.MaximumDurationStrategy {
	case Fail:
		return astrocore.Interval{}, astrocore.State{}, false, false, astrocore.New(astrocore.MaxDurationViolated,
			"maneuver candidate interval duration %f s exceeds the maximum allowed %f s", candidateInterval.Duration().Seconds(), maxDuration.Seconds())

	case Skip:
		return astrocore.Interval{}, candidateEnd, true, false, nil

	case TruncateEnd:
		truncated := astrocore.NewInterval(candidateInterval.Start, candidateInterval.Start.Add(maxDuration))
		interval, next, err := seg.solveTruncatedThenCoast(truncated, candidateInterval.End, states)
		return interval, next, false, false, err

	case TruncateStart:
		truncated := astrocore.NewInterval(candidateInterval.End.Add(astrocore.DurationFromSeconds(-maxDuration.Seconds())), candidateInterval.End)
		interval, next, err := seg.solveTruncatedThenCoast(truncated, candidateInterval.End, states)
		return interval, next, false, false, err

	case Center:
		centered := centeredInterval(candidateInterval.Center(), maxDuration)
		interval, next, err := seg.solveTruncatedThenCoast(centered, candidateInterval.End, states)
		return interval, next, false, false, err

	case Chunk:
		truncated := astrocore.NewInterval(candidateInterval.Start, candidateInterval.Start.Add(maxDuration))
		endState, err := seg.stateAtWithinCandidate(truncated, states)
		if err != nil {
			return astrocore.Interval{}, astrocore.State{}, false, false, err
		}
		return truncated, endState, false, true, nil

	default:
		return astrocore.Interval{}, astrocore.State{}, false, false, astrocore.New(astrocore.WrongInput, "unknown maximum duration violation strategy")
	}
}

// solveTruncatedThenCoast accepts truncated as the maneuver interval and
// coasts from its end to originalEnd under free dynamics, so propagation
// resumes from the same instant the un-truncated candidate would have.
func (seg *Segment) solveTruncatedThenCoast(truncated astrocore.Interval, originalEnd astrocore.Instant, states *[]astrocore.State) (astrocore.Interval, astrocore.State, error) {
	endState, err := seg.stateAtWithinCandidate(truncated, states)
	if err != nil {
		return astrocore.Interval{}, astrocore.State{}, err
	}
	if !originalEnd.After(truncated.End) {
		return truncated, endState, nil
	}

	p := seg.freePropagator(states)
	coastedEnd, err := p.StateAt(endState, originalEnd)
	if err != nil {
		return astrocore.Interval{}, astrocore.State{}, err
	}
	return truncated, coastedEnd, nil
}

// stateAtInstant returns the exact state at instant under the maneuver's
// full (free + thruster) dynamics, computed from the nearest already-
// visited state at or before it. It does not modify states.
func (seg *Segment) stateAtInstant(instant astrocore.Instant, states *[]astrocore.State) (astrocore.State, error) {
	anchor := (*states)[0]
	for i := len(*states) - 1; i >= 0; i-- {
		if !(*states)[i].Instant.After(instant) {
			anchor = (*states)[i]
			break
		}
	}

	p := seg.Propagator
	thruster := astrocore.Thruster{
		ThrustNewtons:          seg.ThrustNewtons,
		SpecificImpulseSeconds: seg.SpecificImpulseSeconds,
		Guidance:               seg.ThrusterGuidance,
		OutputFrame:            seg.OutputFrame,
	}
	p.DynamicsList = append(append([]astrocore.Dynamics(nil), seg.FreeDynamics...), thruster)
	p.Observer = nil

	return p.StateAt(anchor, instant)
}

// stateAtWithinCandidate returns the exact state at truncated.End and trims
// states (already densely populated by an earlier full-candidate solve) to
// that instant, so truncating a candidate interval doesn't leave dangling
// samples past the newly-accepted boundary.
func (seg *Segment) stateAtWithinCandidate(truncated astrocore.Interval, states *[]astrocore.State) (astrocore.State, error) {
	anchorIdx := 0
	for i := len(*states) - 1; i >= 0; i-- {
		if !(*states)[i].Instant.After(truncated.End) {
			anchorIdx = i
			break
		}
	}

	boundary, err := seg.stateAtInstant(truncated.End, states)
	if err != nil {
		return astrocore.State{}, err
	}

	*states = append((*states)[:anchorIdx+1], boundary)
	return boundary, nil
}

// accumulate registers interval's thrust arc into accumulator, reconstructing
// a constant local-orbital-frame direction first if the segment requires
// one, and returns the interval actually accumulated.
func (seg *Segment) accumulate(accumulator *HeterogeneousGuidanceLaw, interval astrocore.Interval, states *[]astrocore.State) (astrocore.Interval, error) {
	if !seg.HasConstantLOFKind {
		accumulator.AddGuidanceLaw(seg.ThrusterGuidance, interval)
		return interval, nil
	}

	sampleAt := func(instant astrocore.Instant) ([]float64, []float64, error) {
		state, err := seg.stateAtInstant(instant, states)
		if err != nil {
			return nil, nil, err
		}
		return state.Position(), state.Velocity(), nil
	}

	directionLOF, err := constantLOFDirectionFromVariableLaw(seg.ThrusterGuidance, seg.ConstantLOFKind, interval, sampleAt, sampleAt, seg.MaxAngularOffsetRad)
	if err != nil {
		return astrocore.Interval{}, err
	}

	constantLaw := constantDirectionLOFGuidanceLaw{kind: seg.ConstantLOFKind, directionLOF: directionLOF}
	accumulator.AddGuidanceLaw(constantLaw, interval)
	return interval, nil
}
