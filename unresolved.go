package demes

// This file is the HDM (Human Data Model): every field is optional, ported
// field-for-field from the Rust original's UnresolvedGraph/UnresolvedDeme/
// UnresolvedEpoch/UnresolvedMigration/UnresolvedPulse (specification.rs).
// Optional fields are pointers so "absent" (nil) is distinguishable from
// "explicitly zero", which the resolver's defaulting precedence depends on.

// UnresolvedGraph is the top-level HDM document (spec.md §4.2, §6).
type UnresolvedGraph struct {
	TimeUnits      *string
	GenerationTime *float64
	Description    *string
	DOI            []string
	Metadata       Tree // opaque, passed through resolution unchanged
	Defaults       UnresolvedGraphDefaults
	Demes          []UnresolvedDeme
	Migrations     []UnresolvedMigrationEntry
	Pulses         []UnresolvedPulse
}

// UnresolvedGraphDefaults holds the three top-level defaults blocks
// (spec.md §4.2: defaults.epoch, defaults.migration, defaults.pulse).
type UnresolvedGraphDefaults struct {
	Epoch     UnresolvedEpoch
	Migration UnresolvedMigrationDefaults
	Pulse     UnresolvedPulseDefaults
}

// UnresolvedMigrationDefaults holds default rate/start_time/end_time shared
// by migrations that omit them.
type UnresolvedMigrationDefaults struct {
	Rate      *float64
	StartTime *float64
	EndTime   *float64
}

// UnresolvedPulseDefaults holds a default proportions list shared by pulses
// that omit it. (Sources/dest/time are always per-pulse.)
type UnresolvedPulseDefaults struct {
	Proportions []float64
}

// UnresolvedDeme is one deme entry in the HDM (spec.md §3).
type UnresolvedDeme struct {
	Name        string
	Description *string
	Ancestors   []string
	Proportions []float64
	StartTime   *float64
	Epochs      []UnresolvedEpoch
	Defaults    UnresolvedEpochDefaults // deme-level epoch defaults
}

// UnresolvedEpochDefaults is the deme-level "defaults.epoch" block; it has
// the same fields as UnresolvedEpoch. Neither carries start_time, which is
// never defaultable — it is always derived from the prior epoch or the deme.
type UnresolvedEpochDefaults struct {
	EndTime      *float64
	StartSize    *float64
	EndSize      *float64
	SizeFunction *string
	CloningRate  *float64
	SelfingRate  *float64
}

// UnresolvedEpoch is one epoch entry in a deme's epoch list (spec.md §3).
type UnresolvedEpoch struct {
	EndTime      *float64
	StartSize    *float64
	EndSize      *float64
	SizeFunction *string
	CloningRate  *float64
	SelfingRate  *float64
}

// UnresolvedMigrationEntry is either a symmetric-migration shorthand (Demes
// populated, Source/Dest nil) or an explicit asymmetric entry (Source/Dest
// populated, Demes nil), per spec.md §4.2.
type UnresolvedMigrationEntry struct {
	Demes     []string // symmetric shorthand: all ordered pairs among these
	Source    *string
	Dest      *string
	Rate      *float64
	StartTime *float64
	EndTime   *float64
}

// IsSymmetric reports whether this entry uses the symmetric shorthand.
func (m UnresolvedMigrationEntry) IsSymmetric() bool { return len(m.Demes) > 0 }

// UnresolvedPulse is one pulse entry in the HDM (spec.md §3).
type UnresolvedPulse struct {
	Sources     []string
	Dest        *string
	Time        *float64
	Proportions []float64
}

// applyFloatDefault fills a single *float64 field from a default if unset.
// Mirrors the layered precedence of spec.md R4: "never overwriting a value
// that was explicitly set."
func applyFloatDefault(field **float64, fallback *float64) {
	if *field == nil {
		*field = fallback
	}
}

func applyStringDefault(field **string, fallback *string) {
	if *field == nil {
		*field = fallback
	}
}

// mergeEpochDefaults applies deme-level then graph-level epoch defaults to
// an epoch, in that precedence order, never overwriting explicit values.
func mergeEpochDefaults(e *UnresolvedEpoch, demeDefaults UnresolvedEpochDefaults, graphDefaults UnresolvedEpoch) {
	applyFloatDefault(&e.EndTime, demeDefaults.EndTime)
	applyFloatDefault(&e.EndTime, graphDefaults.EndTime)

	applyFloatDefault(&e.StartSize, demeDefaults.StartSize)
	applyFloatDefault(&e.StartSize, graphDefaults.StartSize)

	applyFloatDefault(&e.EndSize, demeDefaults.EndSize)
	applyFloatDefault(&e.EndSize, graphDefaults.EndSize)

	applyStringDefault(&e.SizeFunction, demeDefaults.SizeFunction)
	applyStringDefault(&e.SizeFunction, graphDefaults.SizeFunction)

	applyFloatDefault(&e.CloningRate, demeDefaults.CloningRate)
	applyFloatDefault(&e.CloningRate, graphDefaults.CloningRate)

	applyFloatDefault(&e.SelfingRate, demeDefaults.SelfingRate)
	applyFloatDefault(&e.SelfingRate, graphDefaults.SelfingRate)
}
