package demes

// resolveMigrations implements stage R7 of spec.md §4.3: symmetric-shorthand
// expansion into deterministic (source_index, dest_index)-ordered asymmetric
// pairs, defaulting, and cross-entity validation (existence-window
// containment, overlap detection for a repeated (source,dest) pair).
func resolveMigrations(u *UnresolvedGraph, g *Graph) ([]AsymmetricMigration, error) {
	var out []AsymmetricMigration

	for _, entry := range u.Migrations {
		if entry.IsSymmetric() {
			expanded, err := expandSymmetricMigration(entry, g, u.Defaults.Migration)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		m, err := resolveAsymmetricMigration(entry, g, u.Defaults.Migration)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	if err := checkMigrationOverlaps(out); err != nil {
		return nil, err
	}
	return out, nil
}

// expandSymmetricMigration expands `{demes: [d1..dk], rate, start_time,
// end_time}` into k(k-1) asymmetric entries, outer loop over sources in
// listed order and inner loop over destinations in listed order skipping
// self — spec.md §4.3 R7 and §5's ordering guarantee.
func expandSymmetricMigration(entry UnresolvedMigrationEntry, g *Graph, defaults UnresolvedMigrationDefaults) ([]AsymmetricMigration, error) {
	if len(entry.Demes) < 2 {
		return nil, newErr(KindTopologyError, "migration", "", "symmetric migration requires at least 2 demes")
	}
	var out []AsymmetricMigration
	for _, src := range entry.Demes {
		for _, dst := range entry.Demes {
			if src == dst {
				continue
			}
			asym := UnresolvedMigrationEntry{
				Source:    strPtr(src),
				Dest:      strPtr(dst),
				Rate:      entry.Rate,
				StartTime: entry.StartTime,
				EndTime:   entry.EndTime,
			}
			m, err := resolveAsymmetricMigration(asym, g, defaults)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func resolveAsymmetricMigration(entry UnresolvedMigrationEntry, g *Graph, defaults UnresolvedMigrationDefaults) (AsymmetricMigration, error) {
	if entry.Source == nil || entry.Dest == nil {
		return AsymmetricMigration{}, newErr(KindMissingRequired, "migration", "", "source and dest are required")
	}
	source, dest := *entry.Source, *entry.Dest
	if source == dest {
		return AsymmetricMigration{}, newErr(KindNameError, "migration", source, "source and dest must differ")
	}
	srcIdx, ok := g.DemeIndex(source)
	if !ok {
		return AsymmetricMigration{}, newErr(KindNameError, "migration", source, "unknown source deme")
	}
	dstIdx, ok := g.DemeIndex(dest)
	if !ok {
		return AsymmetricMigration{}, newErr(KindNameError, "migration", dest, "unknown dest deme")
	}

	rate := entry.Rate
	if rate == nil {
		rate = defaults.Rate
	}
	if rate == nil {
		return AsymmetricMigration{}, newErr(KindMissingRequired, "migration", source+"->"+dest, "rate is required")
	}
	mr, err := NewMigrationRate(*rate)
	if err != nil {
		return AsymmetricMigration{}, err
	}
	if !mr.IsValidAsymmetricRate() {
		return AsymmetricMigration{}, newErr(KindProportionError, "migration", source+"->"+dest, "rate must be in (0, 1], got %v", mr.Float64())
	}

	window := g.Deme(srcIdx).ExistenceWindow().Intersect(g.Deme(dstIdx).ExistenceWindow())
	if window.IsEmpty() {
		return AsymmetricMigration{}, newErr(KindTimeError, "migration", source+"->"+dest, "source and dest existence windows do not overlap")
	}

	startTime := entry.StartTime
	if startTime == nil {
		startTime = defaults.StartTime
	}
	endTime := entry.EndTime
	if endTime == nil {
		endTime = defaults.EndTime
	}

	start := window.StartTime
	if startTime != nil {
		t, err := NewTime(*startTime)
		if err != nil {
			return AsymmetricMigration{}, err
		}
		start = t
	}
	end := window.EndTime
	if endTime != nil {
		t, err := NewTime(*endTime)
		if err != nil {
			return AsymmetricMigration{}, err
		}
		end = t
	}
	if start <= end {
		return AsymmetricMigration{}, newErr(KindTimeError, "migration", source+"->"+dest, "start_time (%v) must be > end_time (%v)", start.Float64(), end.Float64())
	}
	if start > window.StartTime || end < window.EndTime {
		return AsymmetricMigration{}, newErr(KindTimeError, "migration", source+"->"+dest, "interval (%v, %v] is not within the intersected existence window %s", end.Float64(), start.Float64(), window)
	}

	return AsymmetricMigration{
		sourceIndex: srcIdx,
		destIndex:   dstIdx,
		sourceName:  source,
		destName:    dest,
		rate:        mr,
		startTime:   start,
		endTime:     end,
	}, nil
}

// checkMigrationOverlaps enforces spec.md R7's "two migrations with the same
// (source, dest) ordered pair may not have overlapping time intervals."
func checkMigrationOverlaps(migrations []AsymmetricMigration) error {
	type pair struct{ src, dst int }
	byPair := make(map[pair][]AsymmetricMigration)
	for _, m := range migrations {
		p := pair{m.sourceIndex, m.destIndex}
		for _, existing := range byPair[p] {
			if m.startTime > existing.endTime && existing.startTime > m.endTime {
				return newErr(KindMigrationConflict, "migration", m.sourceName+"->"+m.destName,
					"overlapping time intervals for the same (source, dest) pair")
			}
		}
		byPair[p] = append(byPair[p], m)
	}
	return nil
}
