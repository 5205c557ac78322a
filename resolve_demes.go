package demes

// resolveDemes implements stages R3-R6 of spec.md §4.3 in a single forward
// pass over demes in declaration order. Stage R3 (resolveAncestors) rejects
// any ancestor whose index is not lower than its descendant's, so once it
// succeeds for deme i every ancestor it names is already a fully resolved
// Deme available in the `out` slice.
func resolveDemes(u *UnresolvedGraph, nameIndex map[string]int, generationTime GenerationTime) ([]Deme, error) {
	out := make([]Deme, len(u.Demes))

	for i, ud := range u.Demes {
		ancestorIdx, ancestorProps, err := resolveAncestors(ud, i, nameIndex) // R3
		if err != nil {
			return nil, err
		}

		startTime, err := resolveDemeStartTime(ud, out, ancestorIdx) // part of R5
		if err != nil {
			return nil, err
		}

		epochs, err := resolveEpochs(ud, u, startTime, out, ancestorIdx, ancestorProps) // R4-R6
		if err != nil {
			return nil, err
		}

		ancestorNames := make([]string, len(ancestorIdx))
		for j, idx := range ancestorIdx {
			ancestorNames[j] = out[idx].name
		}

		d := Deme{
			name:                ud.Name,
			ancestorIndexes:     ancestorIdx,
			ancestorNames:       ancestorNames,
			ancestorProportions: ancestorProps,
			epochs:              epochs,
		}
		if ud.Description != nil {
			d.description = *ud.Description
		}
		out[i] = d
	}
	return out, nil
}

// resolveAncestors implements stage R3.
func resolveAncestors(ud UnresolvedDeme, index int, nameIndex map[string]int) ([]int, []Proportion, error) {
	if len(ud.Ancestors) == 0 {
		if len(ud.Proportions) != 0 {
			return nil, nil, newErr(KindProportionError, "deme", ud.Name, "proportions given without ancestors")
		}
		return nil, nil, nil
	}

	ancestorIdx := make([]int, len(ud.Ancestors))
	seen := make(map[string]bool, len(ud.Ancestors))
	for i, name := range ud.Ancestors {
		if seen[name] {
			return nil, nil, newErr(KindTopologyError, "deme", ud.Name, "duplicate ancestor %q", name)
		}
		seen[name] = true
		idx, ok := nameIndex[name]
		if !ok {
			return nil, nil, newErr(KindNameError, "deme", ud.Name, "ancestor %q does not exist", name)
		}
		if idx >= index {
			return nil, nil, newErr(KindTopologyError, "deme", ud.Name, "ancestor %q must be declared before its descendant", name)
		}
		ancestorIdx[i] = idx
	}

	proportions := ud.Proportions
	if len(proportions) == 0 {
		if len(ud.Ancestors) == 1 {
			proportions = []float64{1.0}
		} else {
			return nil, nil, newErr(KindMissingRequired, "deme", ud.Name, "proportions is required when there is more than one ancestor")
		}
	}
	if len(proportions) != len(ud.Ancestors) {
		return nil, nil, newErr(KindProportionError, "deme", ud.Name, "proportions length (%d) must equal ancestors length (%d)", len(proportions), len(ud.Ancestors))
	}
	if !validateProportionSum(proportions, 1.0) {
		return nil, nil, newErr(KindProportionError, "deme", ud.Name, "ancestor proportions must sum to 1, got %v", sumOf(proportions))
	}
	out := make([]Proportion, len(proportions))
	for i, f := range proportions {
		p, err := NewProportion(f)
		if err != nil {
			return nil, nil, err
		}
		out[i] = p
	}
	return ancestorIdx, out, nil
}

func sumOf(fs []float64) float64 {
	var s float64
	for _, f := range fs {
		s += f
	}
	return s
}

// resolveDemeStartTime resolves a deme's start_time: explicit if given, else
// the minimum end_time across its ancestors, else the infinity sentinel.
func resolveDemeStartTime(ud UnresolvedDeme, resolved []Deme, ancestorIdx []int) (Time, error) {
	if ud.StartTime != nil {
		t, err := NewTime(*ud.StartTime)
		if err != nil {
			return 0, err
		}
		if !t.IsValidDemeStartTime() {
			return 0, newErr(KindTimeError, "deme", ud.Name, "start_time must be > 0, got %v", t.Float64())
		}
		return t, nil
	}
	if len(ancestorIdx) == 0 {
		return DemeStartTimeDefault(), nil
	}
	min := Time(0)
	for i, idx := range ancestorIdx {
		et := resolved[idx].EndTime()
		if i == 0 || et < min {
			min = et
		}
	}
	return min, nil
}

// resolveEpochs implements stages R4-R6 for a single deme's epoch list.
func resolveEpochs(ud UnresolvedDeme, u *UnresolvedGraph, demeStartTime Time, resolved []Deme, ancestorIdx []int, ancestorProps []Proportion) ([]Epoch, error) {
	n := len(ud.Epochs)
	working := make([]UnresolvedEpoch, n)
	copy(working, ud.Epochs)

	// R4: apply defaulting precedence (deme-level epoch defaults, then
	// graph-level epoch defaults), never overwriting an explicit value.
	for i := range working {
		mergeEpochDefaults(&working[i], ud.Defaults, u.Defaults.Epoch)
		if i == n-1 && working[i].EndTime == nil {
			zero := EpochEndTimeDefault().Float64()
			working[i].EndTime = &zero
		}
		if working[i].CloningRate == nil {
			zero := 0.0
			working[i].CloningRate = &zero
		}
		if working[i].SelfingRate == nil {
			zero := 0.0
			working[i].SelfingRate = &zero
		}
	}

	epochs := make([]Epoch, n)

	// R5: time resolution (chained end_time -> next start_time).
	startTimes := make([]Time, n)
	endTimes := make([]Time, n)
	startTimes[0] = demeStartTime
	for i := 0; i < n; i++ {
		if i > 0 {
			startTimes[i] = endTimes[i-1]
		}
		if working[i].EndTime == nil {
			return nil, newErr(KindMissingRequired, "epoch", epochName(ud.Name, i), "end_time is required")
		}
		et, err := NewTime(*working[i].EndTime)
		if err != nil {
			return nil, err
		}
		if !et.IsValidEpochEndTime() {
			return nil, newErr(KindTimeError, "epoch", epochName(ud.Name, i), "end_time must be finite, got %v", et.Float64())
		}
		if startTimes[i] <= et {
			return nil, newErr(KindTimeError, "epoch", epochName(ud.Name, i), "start_time (%v) must be > end_time (%v)", startTimes[i].Float64(), et.Float64())
		}
		endTimes[i] = et
	}
	if endTimes[n-1] < 0 {
		return nil, newErr(KindTimeError, "epoch", epochName(ud.Name, n-1), "end_time of the final epoch must be >= 0")
	}
	if len(ancestorIdx) > 0 && demeStartTime <= endTimes[0] {
		return nil, newErr(KindTimeError, "deme", ud.Name, "start_time (%v) must be strictly greater than the first epoch's end_time (%v)", demeStartTime.Float64(), endTimes[0].Float64())
	}

	// R6: size resolution, forward order so each epoch can inherit from the
	// previous one's resolved end_size.
	var prevEndSize *DemeSize
	for i := 0; i < n; i++ {
		startSize, endSize, sizeFn, err := resolveEpochSizes(working[i], i, n, ud, resolved, ancestorIdx, ancestorProps, demeStartTime, prevEndSize)
		if err != nil {
			return nil, err
		}

		cloning, err := NewCloningRate(*working[i].CloningRate)
		if err != nil {
			return nil, err
		}
		selfing, err := NewSelfingRate(*working[i].SelfingRate)
		if err != nil {
			return nil, err
		}

		epochs[i] = Epoch{
			startTime:    startTimes[i],
			endTime:      endTimes[i],
			startSize:    startSize,
			endSize:      endSize,
			sizeFunction: sizeFn,
			cloningRate:  cloning,
			selfingRate:  selfing,
		}
		es := endSize
		prevEndSize = &es
	}

	return epochs, nil
}

func epochName(demeName string, index int) string {
	return demeName + "[" + itoa(index) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

func resolveEpochSizes(
	we UnresolvedEpoch,
	i, n int,
	ud UnresolvedDeme,
	resolved []Deme,
	ancestorIdx []int,
	ancestorProps []Proportion,
	demeStartTime Time,
	prevEndSize *DemeSize,
) (DemeSize, DemeSize, SizeFunction, error) {
	var startSize, endSize *float64
	startSize = we.StartSize
	endSize = we.EndSize

	if startSize == nil {
		if i > 0 {
			v := prevEndSize.Float64()
			startSize = &v
		} else if len(ancestorIdx) == 1 && len(ancestorProps) == 1 && ancestorProps[0] == Proportion(1.0) {
			ancestor := resolved[ancestorIdx[0]]
			size, extant, err := ancestor.SizeAt(demeStartTime)
			if err != nil {
				return 0, 0, 0, err
			}
			if !extant {
				return 0, 0, 0, newErr(KindSizeError, "deme", ud.Name, "ancestor %q is not extant at start_time %v", ancestor.Name(), demeStartTime.Float64())
			}
			v := size.Float64()
			startSize = &v
		} else {
			return 0, 0, 0, newErr(KindMissingRequired, "epoch", epochName(ud.Name, i), "start_size is required")
		}
	}
	if endSize == nil {
		endSize = startSize
	}

	ss, err := NewDemeSize(*startSize)
	if err != nil {
		return 0, 0, 0, err
	}
	es, err := NewDemeSize(*endSize)
	if err != nil {
		return 0, 0, 0, err
	}

	if i == 0 && demeStartTime.IsInfinite() && ss != es {
		return 0, 0, 0, newErr(KindSizeError, "epoch", epochName(ud.Name, i), "the first epoch of a deme with infinite start_time cannot change size")
	}

	var sizeFn SizeFunction
	if we.SizeFunction != nil {
		sizeFn, err = ParseSizeFunction(*we.SizeFunction)
		if err != nil {
			return 0, 0, 0, err
		}
		if sizeFn == Constant && ss != es {
			return 0, 0, 0, newErr(KindSizeError, "epoch", epochName(ud.Name, i), "size_function constant requires start_size == end_size")
		}
	} else if ss == es {
		sizeFn = Constant
	} else {
		sizeFn = Exponential
	}

	return ss, es, sizeFn, nil
}
