package demes

// This file ports the Rust original's graph_operations.rs: demographic-model
// slicing, a prototype operation for clipping a graph's history to a time
// window. spec.md's distillation dropped it entirely; SPEC_FULL.md's
// supplemented-features section (C) restores it because it is the one
// structural operation on a resolved Graph the original exposes beyond
// resolution and conversion.

// Slice clips the graph to a time window, keeping only what exists within
// it: equivalent to RemoveBefore(window.EndTime) followed by
// RemoveSince(window.StartTime).
func (g *Graph) Slice(window TimeInterval) (*Graph, error) {
	clipped, err := g.RemoveBefore(window.EndTime)
	if err != nil {
		return nil, err
	}
	if window.StartTime.IsInfinite() {
		return clipped, nil
	}
	return clipped.RemoveSince(window.StartTime)
}

// RemoveSince discards all history from [when, +Inf): demes, epochs,
// migrations and pulses entirely before `when` are kept unchanged; anything
// straddling `when` is clipped to end at it; anything entirely after `when`
// is dropped. The result is re-resolved, so an input that becomes internally
// inconsistent after slicing (e.g. a deme losing all its ancestors) surfaces
// as a normal resolver error rather than a silently malformed graph.
func (g *Graph) RemoveSince(when Time) (*Graph, error) {
	return g.sliceHistory(
		func(d Deme) bool { return d.EndTime() < when },
		func(e Epoch) bool { return e.endTime < when },
		func(m AsymmetricMigration) bool { return m.endTime < when },
		func(p Pulse) bool { return p.time < when },
		func(t Time) Time { return t },
		func(t Time) Time {
			if t > when {
				return when
			}
			return t
		},
		func(t Time) Time { return t },
	)
}

// RemoveBefore discards all history from [0, when): anything entirely after
// `when` is kept, anything straddling it is clipped to start at it, anything
// entirely before it is dropped.
func (g *Graph) RemoveBefore(when Time) (*Graph, error) {
	return g.sliceHistory(
		func(d Deme) bool { return d.StartTime() > when },
		func(e Epoch) bool { return e.startTime > when },
		func(m AsymmetricMigration) bool { return m.startTime > when },
		func(p Pulse) bool { return p.time > when },
		func(t Time) Time {
			if t < when {
				return when
			}
			return t
		},
		func(t Time) Time { return t },
		func(t Time) Time {
			if t <= when {
				return when
			}
			return t
		},
	)
}

// sliceHistory is the shared liftover machinery behind RemoveSince/
// RemoveBefore, parameterized by what to keep and how to clip the times of
// what survives. Mirrors the Rust original's remove_history/Callbacks.
func (g *Graph) sliceHistory(
	keepDeme func(Deme) bool,
	keepEpoch func(Epoch) bool,
	keepMigration func(AsymmetricMigration) bool,
	keepPulse func(Pulse) bool,
	epochEndTime func(Time) Time,
	migrationStartTime func(Time) Time,
	migrationEndTime func(Time) Time,
) (*Graph, error) {
	var retainedNames []string
	for _, d := range g.demes {
		if keepDeme(d) {
			retainedNames = append(retainedNames, d.name)
		}
	}
	retained := make(map[string]bool, len(retainedNames))
	for _, n := range retainedNames {
		retained[n] = true
	}

	units := g.timeUnits.String()
	gt := g.generationTime.Float64()
	b := NewGraphBuilder(units, &gt, UnresolvedGraphDefaults{})
	if g.description != "" {
		b.SetDescription(g.description)
	}
	if len(g.doi) > 0 {
		b.SetDOI(append([]string(nil), g.doi...))
	}
	if !g.metadata.IsNull() {
		b.SetMetadata(g.metadata)
	}

	for _, d := range g.demes {
		if !keepDeme(d) {
			continue
		}
		var ancestors []string
		var proportions []float64
		for i, name := range d.ancestorNames {
			if retained[name] {
				ancestors = append(ancestors, name)
				proportions = append(proportions, d.ancestorProportions[i].Float64())
			}
		}
		// A deme's start_time is clipped like a migration's start_time; it is
		// kept explicitly whenever it is finite, so a retained root deme does
		// not fall back to the infinity sentinel on re-resolution.
		var startTime *float64
		if st := migrationStartTime(d.StartTime()); !st.IsInfinite() {
			stf := st.Float64()
			startTime = &stf
		}

		var epochs []UnresolvedEpoch
		for _, e := range d.epochs {
			if !keepEpoch(e) {
				continue
			}
			end := epochEndTime(e.endTime).Float64()
			ss, es := e.startSize.Float64(), e.endSize.Float64()
			sf := e.sizeFunction.String()
			cr, sr := e.cloningRate.Float64(), e.selfingRate.Float64()
			epochs = append(epochs, UnresolvedEpoch{
				EndTime:      &end,
				StartSize:    &ss,
				EndSize:      &es,
				SizeFunction: &sf,
				CloningRate:  &cr,
				SelfingRate:  &sr,
			})
		}
		var description *string
		if d.description != "" {
			desc := d.description
			description = &desc
		}
		b.AddDeme(d.name, epochs, ancestors, proportions, startTime, description, UnresolvedEpochDefaults{})
	}

	for _, m := range g.migrations {
		if !retained[m.sourceName] || !retained[m.destName] || !keepMigration(m) {
			continue
		}
		start := migrationStartTime(m.startTime).Float64()
		end := migrationEndTime(m.endTime).Float64()
		rate := m.rate.Float64()
		b.AddAsymmetricMigration(m.sourceName, m.destName, &rate, &start, &end)
	}

	for _, p := range g.pulses {
		if !keepPulse(p) || !retained[p.destName] {
			continue
		}
		allSourcesRetained := true
		for _, s := range p.sourceNames {
			if !retained[s] {
				allSourcesRetained = false
				break
			}
		}
		if !allSourcesRetained {
			continue
		}
		props := make([]float64, len(p.proportions))
		for i, pr := range p.proportions {
			props[i] = pr.Float64()
		}
		b.AddPulse(append([]string(nil), p.sourceNames...), p.destName, p.time.Float64(), props)
	}

	return b.Resolve()
}
