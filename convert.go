package demes

// This file implements the time converter of spec.md §4.5: an in-place
// (value-returning — resolved graphs are immutable, see spec.md §3
// Lifecycle) transformation between time units, plus the integer-generation
// conversion that injects a caller-supplied rounding strategy and
// re-validates the result.

// RoundingFunc maps a real-valued time (already in generations) to its
// rounded form. spec.md §4.5/§9 deliberately leaves the rounding policy to
// the caller; the converter's only requirement is that the result be a
// non-negative integer, checked after the call.
type RoundingFunc func(float64) float64

// RoundHalfAwayFromZero is the rounding strategy spec.md §8 scenario 6 names
// explicitly (used to convert the Jouganous et al. model to integer
// generations).
func RoundHalfAwayFromZero(t float64) float64 {
	if t >= 0 {
		return float64(int64(t + 0.5))
	}
	return -float64(int64(-t + 0.5))
}

// ToGenerations returns a new graph with time_units converted to
// "generations" and generation_time set to 1. If the graph is already in
// generations, it is returned unchanged (idempotency, spec.md §8's
// round-trip law: to_generations(to_generations(G)) ≡ to_generations(G)).
func (g *Graph) ToGenerations() (*Graph, error) {
	if g.timeUnits.IsGenerations() && g.generationTime == DefaultGenerationTime {
		return g, nil
	}
	scale := g.generationTime.Float64()
	return g.transformTimes(func(t Time) Time {
		if t.IsInfinite() {
			return t
		}
		return Time(t.Float64() / scale)
	}, Generations, DefaultGenerationTime)
}

// ToIntegerGenerations converts to generations and then rounds every time
// value using round, re-validating that rounding did not destroy the
// strict-ordering invariants of spec.md §8. A broken invariant is a
// KindConversionError, not a silently "fixed" graph.
func (g *Graph) ToIntegerGenerations(round RoundingFunc) (*Graph, error) {
	gens, err := g.ToGenerations()
	if err != nil {
		return nil, err
	}
	converted, err := gens.transformTimes(func(t Time) Time {
		if t.IsInfinite() {
			return t
		}
		return Time(round(t.Float64()))
	}, Generations, DefaultGenerationTime)
	if err != nil {
		return nil, err
	}
	if err := validateRoundedTimes(converted); err != nil {
		return nil, err
	}
	if err := validateGraphInvariants(converted); err != nil {
		return nil, &Error{Kind: KindConversionError, Entity: "graph", Message: err.Error()}
	}
	return converted, nil
}

func validateRoundedTimes(g *Graph) error {
	check := func(entity, name string, t Time) error {
		if t.IsInfinite() {
			return nil
		}
		f := t.Float64()
		if f < 0 || f != float64(int64(f)) {
			return &Error{Kind: KindConversionError, Entity: entity, Name: name, Message: "rounding produced a non-integer or negative time"}
		}
		return nil
	}
	for _, d := range g.demes {
		for i, e := range d.epochs {
			if err := check("epoch", epochName(d.name, i), e.startTime); err != nil {
				return err
			}
			if err := check("epoch", epochName(d.name, i), e.endTime); err != nil {
				return err
			}
		}
	}
	for _, m := range g.migrations {
		if err := check("migration", m.sourceName+"->"+m.destName, m.startTime); err != nil {
			return err
		}
		if err := check("migration", m.sourceName+"->"+m.destName, m.endTime); err != nil {
			return err
		}
	}
	for i, p := range g.pulses {
		if err := check("pulse", pulseName(i), p.time); err != nil {
			return err
		}
	}
	return nil
}

// transformTimes rebuilds a graph with every time field passed through f.
// Epoch start_times are re-derived from the (already-transformed) previous
// epoch's end_time rather than independently transformed, so chained epochs
// cannot desynchronize even under a non-linear rounding function.
func (g *Graph) transformTimes(f func(Time) Time, units TimeUnits, generationTime GenerationTime) (*Graph, error) {
	newDemes := make([]Deme, len(g.demes))
	for i, d := range g.demes {
		newEpochs := make([]Epoch, len(d.epochs))
		prevEnd := f(d.StartTime())
		for j, e := range d.epochs {
			end := f(e.endTime)
			newEpochs[j] = Epoch{
				startTime:    prevEnd,
				endTime:      end,
				startSize:    e.startSize,
				endSize:      e.endSize,
				sizeFunction: e.sizeFunction,
				cloningRate:  e.cloningRate,
				selfingRate:  e.selfingRate,
			}
			prevEnd = end
		}
		nd := d
		nd.epochs = newEpochs
		newDemes[i] = nd
	}

	newMigrations := make([]AsymmetricMigration, len(g.migrations))
	for i, m := range g.migrations {
		nm := m
		nm.startTime = f(m.startTime)
		nm.endTime = f(m.endTime)
		newMigrations[i] = nm
	}

	newPulses := make([]Pulse, len(g.pulses))
	for i, p := range g.pulses {
		np := p
		np.time = f(p.time)
		newPulses[i] = np
	}

	return &Graph{
		timeUnits:      units,
		generationTime: generationTime,
		description:    g.description,
		doi:            g.doi,
		metadata:       g.metadata,
		demes:          newDemes,
		demeIndex:      g.demeIndex,
		migrations:     newMigrations,
		pulses:         newPulses,
	}, nil
}

// validateGraphInvariants re-checks the invariants of spec.md §8 against an
// already-built Graph, used after a time conversion that might have broken
// strict ordering through rounding. It does not re-run the full resolver
// pipeline — only the ordering/containment checks that time transformation
// can break; defaulting and proportion sums are untouched by time scaling.
func validateGraphInvariants(g *Graph) error {
	for _, d := range g.demes {
		for i, e := range d.epochs {
			if e.startTime <= e.endTime {
				return newErr(KindTimeError, "epoch", epochName(d.name, i), "start_time (%v) must be > end_time (%v) after conversion", e.startTime.Float64(), e.endTime.Float64())
			}
			if i > 0 && e.startTime != d.epochs[i-1].endTime {
				return newErr(KindTimeError, "epoch", epochName(d.name, i), "epoch times no longer abut after conversion")
			}
		}
		if d.EndTime() < 0 {
			return newErr(KindTimeError, "deme", d.name, "end_time must be >= 0 after conversion")
		}
	}
	for _, m := range g.migrations {
		src := g.Deme(m.sourceIndex)
		dst := g.Deme(m.destIndex)
		window := src.ExistenceWindow().Intersect(dst.ExistenceWindow())
		if m.startTime <= m.endTime {
			return newErr(KindTimeError, "migration", m.sourceName+"->"+m.destName, "start_time must be > end_time after conversion")
		}
		if m.startTime > window.StartTime || m.endTime < window.EndTime {
			return newErr(KindTimeError, "migration", m.sourceName+"->"+m.destName, "interval escapes existence window after conversion")
		}
	}
	for i, p := range g.pulses {
		dst := g.Deme(p.destIndex)
		if !dst.ExistenceWindow().StrictlyInside(p.time) {
			return newErr(KindTimeError, "pulse", pulseName(i), "time escapes dest's existence window after conversion")
		}
		for _, idx := range p.sourceIndexes {
			if !g.Deme(idx).ExistenceWindow().StrictlyInside(p.time) {
				return newErr(KindTimeError, "pulse", pulseName(i), "time escapes a source's existence window after conversion")
			}
		}
	}
	return nil
}
