package demes

// resolvePulses implements stage R8 of spec.md §4.3. Declaration order is
// preserved in the output unchanged — spec.md §5/§9 make that order part of
// the ancestry-composition contract, so no sorting happens here.
func resolvePulses(u *UnresolvedGraph, g *Graph) ([]Pulse, error) {
	out := make([]Pulse, 0, len(u.Pulses))
	for i, up := range u.Pulses {
		p, err := resolvePulse(up, i, g, u.Defaults.Pulse)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func resolvePulse(up UnresolvedPulse, index int, g *Graph, defaults UnresolvedPulseDefaults) (Pulse, error) {
	name := pulseName(index)
	if len(up.Sources) == 0 {
		return Pulse{}, newErr(KindMissingRequired, "pulse", name, "sources must be non-empty")
	}
	if up.Dest == nil {
		return Pulse{}, newErr(KindMissingRequired, "pulse", name, "dest is required")
	}
	dest := *up.Dest
	destIdx, ok := g.DemeIndex(dest)
	if !ok {
		return Pulse{}, newErr(KindNameError, "pulse", name, "unknown dest deme %q", dest)
	}

	sourceIdx := make([]int, len(up.Sources))
	seen := make(map[string]bool, len(up.Sources))
	for i, s := range up.Sources {
		if s == dest {
			return Pulse{}, newErr(KindNameError, "pulse", name, "source %q cannot equal dest", s)
		}
		if seen[s] {
			return Pulse{}, newErr(KindNameError, "pulse", name, "duplicate source %q", s)
		}
		seen[s] = true
		idx, ok := g.DemeIndex(s)
		if !ok {
			return Pulse{}, newErr(KindNameError, "pulse", name, "unknown source deme %q", s)
		}
		sourceIdx[i] = idx
	}

	proportions := up.Proportions
	if len(proportions) == 0 {
		proportions = defaults.Proportions
	}
	if len(proportions) != len(up.Sources) {
		return Pulse{}, newErr(KindProportionError, "pulse", name, "proportions length (%d) must equal sources length (%d)", len(proportions), len(up.Sources))
	}
	var sum float64
	resolvedProps := make([]Proportion, len(proportions))
	for i, f := range proportions {
		p, err := NewProportion(f)
		if err != nil {
			return Pulse{}, err
		}
		resolvedProps[i] = p
		sum += f
	}
	if sum > 1.0+ProportionTolerance {
		return Pulse{}, newErr(KindProportionError, "pulse", name, "proportions must sum to <= 1, got %v", sum)
	}

	if up.Time == nil {
		return Pulse{}, newErr(KindMissingRequired, "pulse", name, "time is required")
	}
	t, err := NewTime(*up.Time)
	if err != nil {
		return Pulse{}, err
	}
	if !g.Deme(destIdx).ExistenceWindow().StrictlyInside(t) {
		return Pulse{}, newErr(KindTimeError, "pulse", name, "time %v must be strictly inside dest %q's existence window %s", t.Float64(), dest, g.Deme(destIdx).ExistenceWindow())
	}
	for i, idx := range sourceIdx {
		if !g.Deme(idx).ExistenceWindow().StrictlyInside(t) {
			return Pulse{}, newErr(KindTimeError, "pulse", name, "time %v must be strictly inside source %q's existence window %s", t.Float64(), up.Sources[i], g.Deme(idx).ExistenceWindow())
		}
	}

	return Pulse{
		sourceIndexes: sourceIdx,
		sourceNames:   append([]string(nil), up.Sources...),
		destIndex:     destIdx,
		destName:      dest,
		time:          t,
		proportions:   resolvedProps,
	}, nil
}

func pulseName(index int) string {
	return "<pulse " + itoa(index) + ">"
}
