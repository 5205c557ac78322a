package demes

// GraphBuilder constructs a Graph from code instead of a serialized
// document. Ported from the Rust original's builder.rs: every add_* method
// only appends to an UnresolvedGraph, and all validation is deferred to
// Resolve — a builder with a single deme and no sources can be constructed
// freely, and only fails once Resolve runs the eight-stage pipeline.
type GraphBuilder struct {
	graph UnresolvedGraph
}

// NewGraphBuilder starts a builder with the given time units and
// generation_time. Pass generationTime as nil to take the default (1, valid
// only when units is generations).
func NewGraphBuilder(units string, generationTime *float64, defaults UnresolvedGraphDefaults) *GraphBuilder {
	return &GraphBuilder{
		graph: UnresolvedGraph{
			TimeUnits:      &units,
			GenerationTime: generationTime,
			Defaults:       defaults,
		},
	}
}

// NewGenerationsGraphBuilder is the common case: time_units fixed to
// "generations", generation_time defaulted to 1.
func NewGenerationsGraphBuilder(defaults UnresolvedGraphDefaults) *GraphBuilder {
	units := "generations"
	return &GraphBuilder{
		graph: UnresolvedGraph{TimeUnits: &units, Defaults: defaults},
	}
}

// SetDescription sets the graph's top-level description.
func (b *GraphBuilder) SetDescription(description string) *GraphBuilder {
	b.graph.Description = &description
	return b
}

// SetDOI sets the graph's list of DOIs.
func (b *GraphBuilder) SetDOI(doi []string) *GraphBuilder {
	b.graph.DOI = doi
	return b
}

// SetMetadata attaches opaque top-level metadata, passed through resolution
// unchanged (spec.md §4.2). Repeated calls overwrite prior metadata, matching
// the Rust original's set_toplevel_metadata note.
func (b *GraphBuilder) SetMetadata(metadata Tree) *GraphBuilder {
	b.graph.Metadata = metadata
	return b
}

// AddDeme appends a deme, in the order it should appear in the resolved
// graph's deme index (ancestors must be added before their descendants).
func (b *GraphBuilder) AddDeme(name string, epochs []UnresolvedEpoch, ancestors []string, proportions []float64, startTime *float64, description *string, epochDefaults UnresolvedEpochDefaults) *GraphBuilder {
	b.graph.Demes = append(b.graph.Demes, UnresolvedDeme{
		Name:        name,
		Description: description,
		Ancestors:   ancestors,
		Proportions: proportions,
		StartTime:   startTime,
		Epochs:      epochs,
		Defaults:    epochDefaults,
	})
	return b
}

// AddAsymmetricMigration appends a single directed migration entry.
func (b *GraphBuilder) AddAsymmetricMigration(source, dest string, rate, startTime, endTime *float64) *GraphBuilder {
	b.graph.Migrations = append(b.graph.Migrations, UnresolvedMigrationEntry{
		Source:    &source,
		Dest:      &dest,
		Rate:      rate,
		StartTime: startTime,
		EndTime:   endTime,
	})
	return b
}

// AddSymmetricMigration appends a symmetric-shorthand migration entry over
// the given demes.
func (b *GraphBuilder) AddSymmetricMigration(demes []string, rate, startTime, endTime *float64) *GraphBuilder {
	b.graph.Migrations = append(b.graph.Migrations, UnresolvedMigrationEntry{
		Demes:     demes,
		Rate:      rate,
		StartTime: startTime,
		EndTime:   endTime,
	})
	return b
}

// AddPulse appends a pulse of admixture from sources into dest at time.
func (b *GraphBuilder) AddPulse(sources []string, dest string, time float64, proportions []float64) *GraphBuilder {
	b.graph.Pulses = append(b.graph.Pulses, UnresolvedPulse{
		Sources:     sources,
		Dest:        &dest,
		Time:        &time,
		Proportions: proportions,
	})
	return b
}

// Resolve runs the eight-stage pipeline over the accumulated graph. This is
// the only point at which a GraphBuilder can fail.
func (b *GraphBuilder) Resolve() (*Graph, error) {
	return Resolve(&b.graph)
}
