package demes

import "math"

// This file is the MDM (Machine Data Model, spec.md §4.4): every field is
// present, every invariant enforced by the resolver (resolve.go and
// resolve_*.go) before a value of these types can exist. Resolved values are
// shared by reference and never mutated in place; Graph.ToGenerations and
// Graph.ToIntegerGenerations (convert.go) return new graphs.

// Epoch is a maximal interval over which a deme's size follows a single
// function (spec.md §3, §4.4).
type Epoch struct {
	startTime    Time
	endTime      Time
	startSize    DemeSize
	endSize      DemeSize
	sizeFunction SizeFunction
	cloningRate  CloningRate
	selfingRate  SelfingRate
}

func (e Epoch) StartTime() Time             { return e.startTime }
func (e Epoch) EndTime() Time               { return e.endTime }
func (e Epoch) StartSize() DemeSize         { return e.startSize }
func (e Epoch) EndSize() DemeSize           { return e.endSize }
func (e Epoch) SizeFunction() SizeFunction  { return e.sizeFunction }
func (e Epoch) CloningRate() CloningRate    { return e.cloningRate }
func (e Epoch) SelfingRate() SelfingRate    { return e.selfingRate }
func (e Epoch) TimeInterval() TimeInterval  { return TimeInterval{StartTime: e.startTime, EndTime: e.endTime} }

// SizeAt evaluates the epoch's size function at time t, per spec.md §4.4.
// t must lie in (end_time, start_time]; on the shared boundary between two
// epochs, the later (more recent) epoch owns the instant — see spec.md §9
// design notes — so callers resolve boundary ties before calling SizeAt on
// the earlier epoch.
func (e Epoch) SizeAt(t Time) (DemeSize, error) {
	if !(t > e.endTime && t <= e.startTime) {
		return 0, newErr(KindTimeError, "epoch", "", "time %v outside epoch interval %s", t.Float64(), e.TimeInterval())
	}
	switch e.sizeFunction {
	case Constant:
		return e.startSize, nil
	case Linear:
		frac := (e.startTime.Float64() - t.Float64()) / (e.startTime.Float64() - e.endTime.Float64())
		return DemeSize(e.startSize.Float64() + (e.endSize.Float64()-e.startSize.Float64())*frac), nil
	case Exponential:
		frac := (e.startTime.Float64() - t.Float64()) / (e.startTime.Float64() - e.endTime.Float64())
		ratio := e.endSize.Float64() / e.startSize.Float64()
		return DemeSize(e.startSize.Float64() * math.Exp(math.Log(ratio)*frac)), nil
	default:
		return 0, newErr(KindSizeError, "epoch", "", "unknown size function")
	}
}

func (iv TimeInterval) String() string {
	return "(" + ftoa(iv.EndTime.Float64()) + ", " + ftoa(iv.StartTime.Float64()) + "]"
}

func ftoa(v float64) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	return trimFloat(v)
}

// Deme is a fully resolved population history (spec.md §4.4).
type Deme struct {
	name                string
	description         string
	ancestorIndexes     []int
	ancestorNames       []string
	ancestorProportions []Proportion
	epochs              []Epoch
}

func (d Deme) Name() string                        { return d.name }
func (d Deme) Description() string                 { return d.description }
func (d Deme) AncestorIndexes() []int               { return d.ancestorIndexes }
func (d Deme) AncestorNames() []string              { return d.ancestorNames }
func (d Deme) AncestorProportions() []Proportion    { return d.ancestorProportions }
func (d Deme) Epochs() []Epoch                      { return d.epochs }
func (d Deme) NumEpochs() int                       { return len(d.epochs) }
func (d Deme) StartTime() Time                      { return d.epochs[0].startTime }
func (d Deme) EndTime() Time                        { return d.epochs[len(d.epochs)-1].endTime }
func (d Deme) StartSize() DemeSize                  { return d.epochs[0].startSize }
func (d Deme) EndSize() DemeSize                    { return d.epochs[len(d.epochs)-1].endSize }
func (d Deme) ExistenceWindow() TimeInterval {
	return TimeInterval{StartTime: d.StartTime(), EndTime: d.EndTime()}
}

// SizeAt evaluates the deme's size at time t. Returns (0, false, nil) if the
// deme is not extant at t (this is not an error: spec.md §8 requires
// "parental_deme_sizes[i] > 0 iff deme i is extant at time t", i.e. a zero
// size for a non-extant deme, not a thrown error).
func (d Deme) SizeAt(t Time) (size DemeSize, extant bool, err error) {
	if !d.ExistenceWindow().Contains(t) {
		return 0, false, nil
	}
	for i, e := range d.epochs {
		// The later epoch owns a shared boundary instant, so check from the
		// most recent epoch backward... but epochs are stored past->present
		// (index 0 is most ancient), so "more recent" means higher index.
		// Walking forward and taking the first epoch whose interval contains
		// t (with t == e.endTime deferred to the next epoch) implements that
		// tie-break directly.
		if t > e.endTime && t <= e.startTime {
			if i+1 < len(d.epochs) && t == d.epochs[i+1].startTime && t == e.endTime {
				continue
			}
			sz, err := e.SizeAt(t)
			return sz, true, err
		}
	}
	return 0, false, nil
}

// AsymmetricMigration is a continuous per-generation gene-flow term from
// Source to Dest (spec.md §3, §4.4).
type AsymmetricMigration struct {
	sourceIndex int
	destIndex   int
	sourceName  string
	destName    string
	rate        MigrationRate
	startTime   Time
	endTime     Time
}

func (m AsymmetricMigration) SourceIndex() int          { return m.sourceIndex }
func (m AsymmetricMigration) DestIndex() int            { return m.destIndex }
func (m AsymmetricMigration) Source() string            { return m.sourceName }
func (m AsymmetricMigration) Dest() string               { return m.destName }
func (m AsymmetricMigration) Rate() MigrationRate        { return m.rate }
func (m AsymmetricMigration) StartTime() Time            { return m.startTime }
func (m AsymmetricMigration) EndTime() Time              { return m.endTime }
func (m AsymmetricMigration) TimeInterval() TimeInterval { return TimeInterval{StartTime: m.startTime, EndTime: m.endTime} }

// Pulse is an instantaneous admixture event (spec.md §3, §4.4).
type Pulse struct {
	sourceIndexes []int
	sourceNames   []string
	destIndex     int
	destName      string
	time          Time
	proportions   []Proportion
}

func (p Pulse) SourceIndexes() []int       { return p.sourceIndexes }
func (p Pulse) Sources() []string          { return p.sourceNames }
func (p Pulse) DestIndex() int             { return p.destIndex }
func (p Pulse) Dest() string               { return p.destName }
func (p Pulse) Time() Time                 { return p.time }
func (p Pulse) Proportions() []Proportion  { return p.proportions }

// Graph is the fully resolved MDM (spec.md §3, §4.4): every defaultable
// field materialized, every invariant in spec.md §8 held. Graph values are
// immutable after resolution; the only way to get a different Graph is
// ToGenerations/ToIntegerGenerations (convert.go) or Slice, each of which
// returns a new value.
type Graph struct {
	timeUnits      TimeUnits
	generationTime GenerationTime
	description    string
	doi            []string
	metadata       Tree
	demes          []Deme
	demeIndex      map[string]int
	migrations     []AsymmetricMigration
	pulses         []Pulse
}

func (g *Graph) TimeUnits() TimeUnits      { return g.timeUnits }
func (g *Graph) GenerationTime() GenerationTime { return g.generationTime }
func (g *Graph) Description() string       { return g.description }
func (g *Graph) DOI() []string             { return g.doi }
func (g *Graph) Metadata() Tree            { return g.metadata }
func (g *Graph) Demes() []Deme             { return g.demes }
func (g *Graph) NumDemes() int             { return len(g.demes) }
func (g *Graph) Migrations() []AsymmetricMigration { return g.migrations }
func (g *Graph) Pulses() []Pulse           { return g.pulses }

// DemeIndex returns the index of the deme with the given name.
func (g *Graph) DemeIndex(name string) (int, bool) {
	idx, ok := g.demeIndex[name]
	return idx, ok
}

// Deme returns the deme at index i.
func (g *Graph) Deme(i int) Deme { return g.demes[i] }

// DemeByName returns the deme with the given name, if any.
func (g *Graph) DemeByName(name string) (Deme, bool) {
	idx, ok := g.demeIndex[name]
	if !ok {
		return Deme{}, false
	}
	return g.demes[idx], true
}

// MostRecentDemeEndTime returns the minimum end_time across all demes,
// i.e. how far into the present the graph's youngest deme persists.
// Ported from the Rust original's Graph::most_recent_deme_end_time. The
// forward engine does not call it; it computes its span from start times.
func (g *Graph) MostRecentDemeEndTime() Time {
	min := Time(math.Inf(1))
	for _, d := range g.demes {
		if d.EndTime() < min {
			min = d.EndTime()
		}
	}
	if math.IsInf(float64(min), 1) {
		return 0
	}
	return min
}

// HasNonIntegerSizes reports the first deme index and epoch index whose
// start or end size is not a whole number, or ok=false if all sizes are
// whole numbers. Ported from the Rust original's Graph::has_non_integer_sizes;
// used by the forward engine's integer-size precondition (spec.md §4.6).
func (g *Graph) HasNonIntegerSizes() (demeIndex, epochIndex int, ok bool) {
	for di, d := range g.demes {
		for ei, e := range d.epochs {
			if !e.startSize.IsWholeNumber() || !e.endSize.IsWholeNumber() {
				return di, ei, true
			}
		}
	}
	return 0, 0, false
}

// DemeNames returns the declaration-ordered list of deme names.
func (g *Graph) DemeNames() []string {
	out := make([]string, len(g.demes))
	for i, d := range g.demes {
		out[i] = d.name
	}
	return out
}
