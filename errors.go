package demes

import "fmt"

// Kind categorizes a resolution or runtime error. These mirror the error
// taxonomy in spec.md: the core never recovers silently, so every failure
// path returns one of these kinds wrapped in an *Error.
type Kind string

const (
	// KindInvalidDomainValue marks a scalar out of its permitted range or non-finite.
	KindInvalidDomainValue Kind = "InvalidDomainValue"
	// KindUnrecognizedField marks an unknown key in an input mapping.
	KindUnrecognizedField Kind = "UnrecognizedField"
	// KindMissingRequired marks a required field absent after all defaulting.
	KindMissingRequired Kind = "MissingRequired"
	// KindNameError marks a duplicate, empty, malformed, or unresolvable deme name.
	KindNameError Kind = "NameError"
	// KindTopologyError marks a forward ancestor reference or an empty deme list.
	KindTopologyError Kind = "TopologyError"
	// KindTimeError marks non-monotonic epoch times or an out-of-window migration/pulse.
	KindTimeError Kind = "TimeError"
	// KindSizeError marks a non-positive size or size_function/size mismatch.
	KindSizeError Kind = "SizeError"
	// KindProportionError marks proportions that fail to sum correctly or are out of range.
	KindProportionError Kind = "ProportionError"
	// KindMigrationConflict marks overlapping time intervals for the same (source, dest) pair.
	KindMigrationConflict Kind = "MigrationConflict"
	// KindAncestryInvariantViolated marks a forward-engine ancestry vector that does not sum to 1.
	KindAncestryInvariantViolated Kind = "AncestryInvariantViolated"
	// KindConversionError marks integer-generation rounding that destroyed required ordering.
	KindConversionError Kind = "ConversionError"
)

// Error is the structured error type returned by every fallible operation in
// this package: construction of scalar values, resolution stages, the time
// converter, and (via the forward package) engine runtime checks.
type Error struct {
	Kind    Kind
	Entity  string // "deme", "epoch", "migration", "pulse", "graph", ...
	Name    string // offending entity's name or index, when applicable
	Message string
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s %q: %s", e.Kind, e.Entity, e.Name, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newErr(kind Kind, entity, name, format string, args ...any) *Error {
	return &Error{Kind: kind, Entity: entity, Name: name, Message: fmt.Sprintf(format, args...)}
}
