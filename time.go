package demes

import "math"

// Time is a point in the graph's time_units, counted backward from the
// present (numerically decreasing toward 0). It wraps a float64 exactly as
// the scalar domain types in spec.md §4.1 require: finite and non-negative,
// with one distinguished exception documented below.
type Time float64

// InfinitySentinel is the distinguished value a root deme's start_time takes
// when it has no ancestors and no explicit start_time: "present since the
// indefinite past". It is the one value for which Time skips the finiteness
// check — NewTime rejects it, but DemeStartTimeDefault returns it directly,
// matching the Rust original's Time::default_deme_start_time (f64::INFINITY
// stored in the same newtype rather than a separate enum variant).
var InfinitySentinel Time = Time(math.Inf(1))

// NewTime validates and constructs a Time. Times must be finite and
// non-negative; use DemeStartTimeDefault for the infinity sentinel.
func NewTime(v float64) (Time, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, newErr(KindInvalidDomainValue, "time", "", "time must be finite, got %v", v)
	}
	if v < 0 {
		return 0, newErr(KindInvalidDomainValue, "time", "", "time must be >= 0, got %v", v)
	}
	return Time(v), nil
}

// DemeStartTimeDefault returns the infinity sentinel used as a root deme's
// implicit start_time.
func DemeStartTimeDefault() Time { return InfinitySentinel }

// EpochEndTimeDefault is the default end_time for a deme's final epoch: the
// present, generation 0.
func EpochEndTimeDefault() Time { return Time(0) }

// Float64 returns the underlying value.
func (t Time) Float64() float64 { return float64(t) }

// IsInfinite reports whether t is the infinity sentinel.
func (t Time) IsInfinite() bool { return math.IsInf(float64(t), 1) }

// IsWholeNumber reports whether t has no fractional part, as every time in a
// graph converted to integer generations must.
func (t Time) IsWholeNumber() bool { return float64(t) == math.Trunc(float64(t)) }

// IsValidDemeStartTime reports whether t is usable as a deme's start_time:
// strictly positive (the infinity sentinel qualifies, since +Inf > 0).
func (t Time) IsValidDemeStartTime() bool { return float64(t) > 0 }

// IsValidEpochEndTime reports whether t is usable as an epoch's end_time:
// finite (never the infinity sentinel — an epoch must end somewhere).
func (t Time) IsValidEpochEndTime() bool { return !math.IsInf(float64(t), 0) && !math.IsNaN(float64(t)) }

// IsValidPulseTime reports whether t is usable as a pulse's time: finite and
// non-negative (time 0 is syntactically valid here; stage R8 separately
// rejects it as outside any deme's open existence window).
func (t Time) IsValidPulseTime() bool {
	return !math.IsInf(float64(t), 0) && !math.IsNaN(float64(t)) && float64(t) >= 0
}

// TimeInterval is the half-open interval (end_time, start_time] over which a
// deme, epoch, migration is defined to exist, matching spec.md's
// "existence window" definition.
type TimeInterval struct {
	StartTime Time
	EndTime   Time
}

// Contains reports whether t lies in the half-open existence window,
// i.e. EndTime < t <= StartTime.
func (iv TimeInterval) Contains(t Time) bool {
	return t > iv.EndTime && t <= iv.StartTime
}

// StrictlyInside reports whether t lies strictly inside the window on both
// ends: EndTime < t < StartTime. Used by pulse validation (spec.md §4.3 R8).
func (iv TimeInterval) StrictlyInside(t Time) bool {
	return t > iv.EndTime && t < iv.StartTime
}

// Intersect returns the intersection of two intervals. The result may be
// empty (StartTime <= EndTime); callers must check IsEmpty.
func (iv TimeInterval) Intersect(other TimeInterval) TimeInterval {
	start := iv.StartTime
	if other.StartTime < start {
		start = other.StartTime
	}
	end := iv.EndTime
	if other.EndTime > end {
		end = other.EndTime
	}
	return TimeInterval{StartTime: start, EndTime: end}
}

// IsEmpty reports whether the interval contains no time values.
func (iv TimeInterval) IsEmpty() bool {
	return iv.StartTime <= iv.EndTime
}

// TimeUnits is the graph's unit of time: "generations", "years", or a
// free-form custom string (which requires an explicit generation_time).
type TimeUnits struct {
	raw string
}

// Generations is the well-known "generations" unit.
var Generations = TimeUnits{raw: "generations"}

// Years is the well-known "years" unit.
var Years = TimeUnits{raw: "years"}

// NewTimeUnits constructs a TimeUnits from a free-form string, rejecting
// only the empty string (spec.md §4.3 R1: "time_units present and
// non-empty").
func NewTimeUnits(s string) (TimeUnits, error) {
	if s == "" {
		return TimeUnits{}, newErr(KindMissingRequired, "graph", "", "time_units must be present and non-empty")
	}
	return TimeUnits{raw: s}, nil
}

// String returns the raw unit string.
func (u TimeUnits) String() string { return u.raw }

// IsGenerations reports whether the units are exactly "generations".
func (u TimeUnits) IsGenerations() bool { return u.raw == "generations" }
