// Package segment implements event-driven Coast and Maneuver segments:
// propagate a state forward under a fixed dynamics set until an
// EventCondition fires, solving maneuver-by-maneuver so each thrust arc's
// start/stop instants are resolved exactly.
package segment

import "github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/astrocore"

// MaximumDurationViolationStrategy selects how a candidate maneuver whose
// duration exceeds Constraints.MaximumDuration is handled.
type MaximumDurationViolationStrategy uint8

const (
	Fail MaximumDurationViolationStrategy = iota
	Skip
	TruncateEnd
	TruncateStart
	Center
	Chunk
)

func (s MaximumDurationViolationStrategy) String() string {
	switch s {
	case Fail:
		return "Fail"
	case Skip:
		return "Skip"
	case TruncateEnd:
		return "TruncateEnd"
	case TruncateStart:
		return "TruncateStart"
	case Center:
		return "Center"
	case Chunk:
		return "Chunk"
	default:
		return "Unknown"
	}
}

// Constraints bounds a Maneuver segment's individual thrust arcs. A field
// only applies when its Has* companion flag is set.
type Constraints struct {
	MinimumDuration    astrocore.Duration
	HasMinimumDuration bool

	MaximumDuration         astrocore.Duration
	HasMaximumDuration      bool
	MaximumDurationStrategy MaximumDurationViolationStrategy

	MinimumSeparation    astrocore.Duration
	HasMinimumSeparation bool
}

// Validate checks the cross-field consistency rules a Maneuver segment's
// constraints must obey before solving: set durations are positive, and a
// maximum duration requires a positive minimum separation no shorter than
// the minimum duration.
func (c Constraints) Validate() error {
	if c.HasMinimumDuration && c.MinimumDuration.Seconds() <= 0 {
		return astrocore.New(astrocore.WrongInput, "minimum maneuver duration must be positive")
	}
	if c.HasMinimumSeparation && c.MinimumSeparation.Seconds() <= 0 {
		return astrocore.New(astrocore.WrongInput, "minimum maneuver separation must be positive")
	}
	if c.HasMaximumDuration {
		if c.MaximumDuration.Seconds() <= 0 {
			return astrocore.New(astrocore.WrongInput, "maximum maneuver duration must be positive")
		}
		if !c.HasMinimumSeparation {
			return astrocore.New(astrocore.WrongInput, "a maximum maneuver duration requires a minimum separation")
		}
		if c.HasMinimumDuration && c.MaximumDuration.Seconds() < c.MinimumDuration.Seconds() {
			return astrocore.New(astrocore.WrongInput, "maximum maneuver duration must not be shorter than the minimum duration")
		}
	}
	return nil
}

func (c Constraints) intervalHasValidMinimumDuration(iv astrocore.Interval) bool {
	if !c.HasMinimumDuration {
		return true
	}
	return iv.Duration().Seconds() >= c.MinimumDuration.Seconds()
}

func (c Constraints) intervalHasValidMaximumDuration(iv astrocore.Interval) bool {
	if !c.HasMaximumDuration {
		return true
	}
	return iv.Duration().Seconds() <= c.MaximumDuration.Seconds()
}

// centeredInterval returns the closed interval of the given duration
// centered on center.
func centeredInterval(center astrocore.Instant, duration astrocore.Duration) astrocore.Interval {
	half := astrocore.DurationFromSeconds(duration.Seconds() / 2)
	return astrocore.NewInterval(center.Add(astrocore.DurationFromSeconds(-half.Seconds())), center.Add(half))
}
