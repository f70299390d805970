package astrocore

import "time"

// Instant is a point on the UTC timeline, sufficient to resolve frame
// transforms and to drive Kepler/numerical propagation. It wraps time.Time.
type Instant struct {
	t     time.Time
	valid bool
}

// NewInstant builds a defined Instant from a time.Time.
func NewInstant(t time.Time) Instant {
	return Instant{t: t, valid: true}
}

// UndefinedInstant returns the zero-value, undefined Instant.
func UndefinedInstant() Instant {
	return Instant{}
}

// IsDefined reports whether this Instant was constructed via NewInstant.
func (i Instant) IsDefined() bool {
	return i.valid
}

// Time returns the underlying time.Time.
func (i Instant) Time() time.Time {
	return i.t
}

// Add returns the Instant offset by d.
func (i Instant) Add(d Duration) Instant {
	return Instant{t: i.t.Add(d.d), valid: true}
}

// Sub returns the signed Duration from other to i (i.e. i - other).
func (i Instant) Sub(other Instant) Duration {
	return Duration{d: i.t.Sub(other.t)}
}

// Before reports whether i occurs strictly before other.
func (i Instant) Before(other Instant) bool {
	return i.t.Before(other.t)
}

// After reports whether i occurs strictly after other.
func (i Instant) After(other Instant) bool {
	return i.t.After(other.t)
}

// String renders the instant in RFC3339 with nanosecond precision.
func (i Instant) String() string {
	if !i.valid {
		return "Undefined"
	}
	return i.t.Format("2006-01-02T15:04:05.000000000Z07:00")
}

// Duration is a signed span of time.
type Duration struct {
	d time.Duration
}

// NewDuration builds a Duration from a time.Duration.
func NewDuration(d time.Duration) Duration {
	return Duration{d: d}
}

// Seconds returns the duration in seconds.
func (d Duration) Seconds() float64 {
	return d.d.Seconds()
}

// DurationFromSeconds builds a Duration from a count of seconds.
func DurationFromSeconds(s float64) Duration {
	return Duration{d: time.Duration(s * float64(time.Second))}
}

func (d Duration) stdlib() time.Duration {
	return d.d
}

// Interval is a closed time span [Start, End]. Start must not be after End.
type Interval struct {
	Start Instant
	End   Instant
}

// NewInterval builds an Interval, swapping endpoints if given out of order.
func NewInterval(start, end Instant) Interval {
	if end.Before(start) {
		start, end = end, start
	}
	return Interval{Start: start, End: end}
}

// Duration returns the span of the interval.
func (iv Interval) Duration() Duration {
	return iv.End.Sub(iv.Start)
}

// Contains reports whether instant lies within the closed interval.
func (iv Interval) Contains(instant Instant) bool {
	return !instant.Before(iv.Start) && !instant.After(iv.End)
}

// OverlapsOrTouches reports whether two intervals share any instant.
func (iv Interval) OverlapsOrTouches(other Interval) bool {
	return !iv.End.Before(other.Start) && !other.End.Before(iv.Start)
}

// Center returns the midpoint instant of the interval.
func (iv Interval) Center() Instant {
	half := iv.Duration().Seconds() / 2
	return iv.Start.Add(DurationFromSeconds(half))
}
