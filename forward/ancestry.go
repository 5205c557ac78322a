package forward

import (
	"math"

	"github.com/popdemes/demes"
)

// ancestryTolerance mirrors demes.ProportionTolerance: the forward engine's
// sum-to-one check for a composed ancestry vector (spec.md §4.6, §7).
const ancestryTolerance = 1e-9

// ancestryProportions computes the ancestry vector for deme `child` across
// the transition from generation t to t+1, per spec.md §4.6's three-step
// construction: continuity self+migration, first-generation ancestor
// inheritance, then pulse redistribution in declaration order.
func ancestryProportions(g *demes.Graph, child int, t int64, backward func(int64) demes.Time) ([]float64, error) {
	n := g.NumDemes()
	out := make([]float64, n)

	tNow := backward(t)
	tNext := backward(t + 1)

	_, existedBefore, err := g.Deme(child).SizeAt(tNow)
	if err != nil {
		return nil, err
	}

	if existedBefore {
		// Step 1: continuity. Self weight 1, reduced by migration inflow.
		out[child] = 1.0
		for _, m := range g.Migrations() {
			if m.DestIndex() != child {
				continue
			}
			if !m.TimeInterval().Contains(tNow) {
				continue
			}
			rate := m.Rate().Float64()
			out[m.SourceIndex()] += rate
			out[child] -= rate
		}
	} else {
		// Step 2: the child deme is born at t+1 — inherit declared ancestry.
		d := g.Deme(child)
		for i, ancestorIdx := range d.AncestorIndexes() {
			out[ancestorIdx] = d.AncestorProportions()[i].Float64()
		}
		if len(d.AncestorIndexes()) == 0 {
			out[child] = 1.0
		}
	}

	// Step 3: pulses with dest = child and time in (tNext, tNow], applied in
	// declaration order, each further reducing the running residual. Backward
	// time decreases as forward time advances, so the transition t -> t+1
	// crosses the half-open backward interval (tNext, tNow], not (tNow, tNext].
	for _, p := range g.Pulses() {
		if p.DestIndex() != child {
			continue
		}
		pt := p.Time()
		if !(pt > tNext && pt <= tNow) {
			continue
		}
		var sum float64
		for _, prop := range p.Proportions() {
			sum += prop.Float64()
		}
		for i := range out {
			out[i] *= 1 - sum
		}
		for i, srcIdx := range p.SourceIndexes() {
			out[srcIdx] += p.Proportions()[i].Float64()
		}
	}

	var total float64
	for _, v := range out {
		total += v
	}
	if math.Abs(total-1.0) > ancestryTolerance {
		return nil, &demes.Error{
			Kind:    demes.KindAncestryInvariantViolated,
			Entity:  "deme",
			Name:    g.Deme(child).Name(),
			Message: "ancestry proportions do not sum to 1 within tolerance",
		}
	}
	for i := range out {
		out[i] /= total
	}
	return out, nil
}
