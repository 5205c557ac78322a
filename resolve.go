package demes

import (
	"regexp"
)

// Resolve runs the fixed eight-stage pipeline of spec.md §4.3, turning an
// UnresolvedGraph (HDM) into a fully resolved Graph (MDM). Each stage either
// completes or returns an error; on error, resolution stops immediately and
// no partial graph is returned, per spec.md §4.3's framing.
func Resolve(u *UnresolvedGraph) (*Graph, error) {
	timeUnits, generationTime, err := resolveTopLevel(u) // R1
	if err != nil {
		return nil, err
	}

	nameIndex, err := resolveDemeSkeleton(u) // R2
	if err != nil {
		return nil, err
	}

	demes, err := resolveDemes(u, nameIndex, generationTime) // R3-R6
	if err != nil {
		return nil, err
	}

	g := &Graph{
		timeUnits:      timeUnits,
		generationTime: generationTime,
		doi:            append([]string(nil), u.DOI...),
		metadata:       u.Metadata,
		demes:          demes,
		demeIndex:      nameIndex,
	}
	if u.Description != nil {
		g.description = *u.Description
	}

	migrations, err := resolveMigrations(u, g) // R7
	if err != nil {
		return nil, err
	}
	g.migrations = migrations

	pulses, err := resolvePulses(u, g) // R8
	if err != nil {
		return nil, err
	}
	g.pulses = pulses

	return g, nil
}

// resolveTopLevel implements stage R1: time_units and generation_time
// resolution plus structural checks on doi/description/metadata.
func resolveTopLevel(u *UnresolvedGraph) (TimeUnits, GenerationTime, error) {
	if u.TimeUnits == nil || *u.TimeUnits == "" {
		return TimeUnits{}, 0, newErr(KindMissingRequired, "graph", "", "time_units is required and must be non-empty")
	}
	units, err := NewTimeUnits(*u.TimeUnits)
	if err != nil {
		return TimeUnits{}, 0, err
	}

	for _, d := range u.DOI {
		if d == "" {
			return TimeUnits{}, 0, newErr(KindInvalidDomainValue, "graph", "", "doi entries must be non-empty strings")
		}
	}

	if units.IsGenerations() {
		if u.GenerationTime == nil {
			return units, DefaultGenerationTime, nil
		}
		gt, err := NewGenerationTime(*u.GenerationTime)
		if err != nil {
			return TimeUnits{}, 0, err
		}
		if gt != DefaultGenerationTime {
			return TimeUnits{}, 0, newErr(KindInvalidDomainValue, "graph", "", "generation_time must be 1 when time_units is generations, got %v", gt.Float64())
		}
		return units, gt, nil
	}

	if u.GenerationTime == nil {
		return TimeUnits{}, 0, newErr(KindMissingRequired, "graph", "", "generation_time is required when time_units is %q", units.String())
	}
	gt, err := NewGenerationTime(*u.GenerationTime)
	if err != nil {
		return TimeUnits{}, 0, err
	}
	return units, gt, nil
}

var demeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateDemeName implements the name-syntax half of spec.md §3's deme
// invariant: "the first character must be alphabetic or underscore,
// remainder alphanumeric or underscore."
func validateDemeName(name string) error {
	if name == "" {
		return newErr(KindNameError, "deme", "", "deme name must not be empty")
	}
	if !demeNamePattern.MatchString(name) {
		return newErr(KindNameError, "deme", name, "deme name must start with a letter or underscore and contain only letters, digits, or underscores")
	}
	return nil
}

// resolveDemeSkeleton implements stage R2: collect names in declaration
// order, enforce uniqueness and syntax, build the name->index map.
func resolveDemeSkeleton(u *UnresolvedGraph) (map[string]int, error) {
	if len(u.Demes) == 0 {
		return nil, newErr(KindTopologyError, "graph", "", "at least one deme is required")
	}
	index := make(map[string]int, len(u.Demes))
	for i, d := range u.Demes {
		if err := validateDemeName(d.Name); err != nil {
			return nil, err
		}
		if _, dup := index[d.Name]; dup {
			return nil, newErr(KindNameError, "deme", d.Name, "duplicate deme name")
		}
		index[d.Name] = i
	}
	return index, nil
}
