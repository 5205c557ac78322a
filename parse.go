package demes

import "fmt"

// Parse converts a Tree into an UnresolvedGraph, rejecting unrecognized
// top-level and per-deme keys per spec.md §6. It performs no semantic
// validation beyond key recognition and basic scalar typing — that is the
// resolver's job (resolve.go).
func Parse(t Tree) (*UnresolvedGraph, error) {
	if t.Kind != KindMapping {
		return nil, newErr(KindMissingRequired, "graph", "", "top-level document must be a mapping")
	}
	if err := rejectUnrecognized(t, toplevelKeys, "graph", ""); err != nil {
		return nil, err
	}

	g := &UnresolvedGraph{}

	if v, ok := t.Get("time_units"); ok {
		s, ok := v.String()
		if !ok {
			return nil, newErr(KindInvalidDomainValue, "graph", "", "time_units must be a string")
		}
		g.TimeUnits = &s
	}
	if v, ok := t.Get("generation_time"); ok {
		f, ok := v.Float64()
		if !ok {
			return nil, newErr(KindInvalidDomainValue, "graph", "", "generation_time must be a number")
		}
		g.GenerationTime = &f
	}
	if v, ok := t.Get("description"); ok {
		s, ok := v.String()
		if !ok {
			return nil, newErr(KindInvalidDomainValue, "graph", "", "description must be a string")
		}
		g.Description = &s
	}
	if v, ok := t.Get("doi"); ok {
		ss, ok := v.StringSlice()
		if !ok {
			return nil, newErr(KindInvalidDomainValue, "graph", "", "doi must be a list of strings")
		}
		g.DOI = ss
	}
	if v, ok := t.Get("metadata"); ok {
		g.Metadata = v
	}
	if v, ok := t.Get("defaults"); ok {
		defaults, err := parseGraphDefaults(v)
		if err != nil {
			return nil, err
		}
		g.Defaults = defaults
	}

	demesNode, ok := t.Get("demes")
	if !ok || demesNode.Kind != KindSequence || len(demesNode.Sequence) == 0 {
		return nil, newErr(KindMissingRequired, "graph", "", "demes must be a non-empty list")
	}
	for i, dn := range demesNode.Sequence {
		d, err := parseDeme(dn, i)
		if err != nil {
			return nil, err
		}
		g.Demes = append(g.Demes, d)
	}

	if v, ok := t.Get("migrations"); ok {
		if v.Kind != KindSequence {
			return nil, newErr(KindInvalidDomainValue, "graph", "", "migrations must be a list")
		}
		for i, mn := range v.Sequence {
			m, err := parseMigrationEntry(mn, i)
			if err != nil {
				return nil, err
			}
			g.Migrations = append(g.Migrations, m)
		}
	}

	if v, ok := t.Get("pulses"); ok {
		if v.Kind != KindSequence {
			return nil, newErr(KindInvalidDomainValue, "graph", "", "pulses must be a list")
		}
		for i, pn := range v.Sequence {
			p, err := parsePulse(pn, i)
			if err != nil {
				return nil, err
			}
			g.Pulses = append(g.Pulses, p)
		}
	}

	return g, nil
}

var toplevelKeys = []string{
	"time_units", "generation_time", "description", "doi", "metadata",
	"defaults", "demes", "migrations", "pulses",
}

var demeKeys = []string{
	"name", "description", "ancestors", "proportions", "start_time", "epochs", "defaults",
}

var epochKeys = []string{
	"end_time", "start_size", "end_size", "size_function", "cloning_rate", "selfing_rate",
}

var migrationKeys = []string{
	"demes", "source", "dest", "rate", "start_time", "end_time",
}

var pulseKeys = []string{
	"sources", "dest", "time", "proportions",
}

func rejectUnrecognized(t Tree, allowed []string, entity, name string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = true
	}
	for _, k := range t.Keys {
		if !allowedSet[k] {
			return newErr(KindUnrecognizedField, entity, name, "unrecognized field %q", k)
		}
	}
	return nil
}

func parseGraphDefaults(t Tree) (UnresolvedGraphDefaults, error) {
	var out UnresolvedGraphDefaults
	if t.Kind != KindMapping {
		return out, newErr(KindInvalidDomainValue, "defaults", "", "defaults must be a mapping")
	}
	if err := rejectUnrecognized(t, []string{"epoch", "migration", "pulse"}, "defaults", ""); err != nil {
		return out, err
	}
	if v, ok := t.Get("epoch"); ok {
		e, err := parseEpochFields(v, "defaults.epoch")
		if err != nil {
			return out, err
		}
		out.Epoch = UnresolvedEpoch{
			EndTime:      e.EndTime,
			StartSize:    e.StartSize,
			EndSize:      e.EndSize,
			SizeFunction: e.SizeFunction,
			CloningRate:  e.CloningRate,
			SelfingRate:  e.SelfingRate,
		}
	}
	if v, ok := t.Get("migration"); ok {
		if err := rejectUnrecognized(v, []string{"rate", "start_time", "end_time"}, "defaults", "migration"); err != nil {
			return out, err
		}
		if f, ok := getFloat(v, "rate"); ok {
			out.Migration.Rate = f
		}
		if f, ok := getFloat(v, "start_time"); ok {
			out.Migration.StartTime = f
		}
		if f, ok := getFloat(v, "end_time"); ok {
			out.Migration.EndTime = f
		}
	}
	if v, ok := t.Get("pulse"); ok {
		if err := rejectUnrecognized(v, []string{"proportions"}, "defaults", "pulse"); err != nil {
			return out, err
		}
		if pv, ok := v.Get("proportions"); ok {
			fs, ok := pv.Float64Slice()
			if !ok {
				return out, newErr(KindInvalidDomainValue, "defaults", "pulse", "proportions must be a list of numbers")
			}
			out.Pulse.Proportions = fs
		}
	}
	return out, nil
}

func getFloat(t Tree, key string) (*float64, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	f, ok := v.Float64()
	if !ok {
		return nil, false
	}
	return &f, true
}

func parseEpochFields(t Tree, entityName string) (e UnresolvedEpochDefaults, err error) {
	if t.Kind != KindMapping {
		return e, newErr(KindInvalidDomainValue, "epoch", entityName, "must be a mapping")
	}
	if err := rejectUnrecognized(t, epochKeys, "epoch", entityName); err != nil {
		return e, err
	}
	if f, ok := getFloat(t, "end_time"); ok {
		e.EndTime = f
	}
	if f, ok := getFloat(t, "start_size"); ok {
		e.StartSize = f
	}
	if f, ok := getFloat(t, "end_size"); ok {
		e.EndSize = f
	}
	if v, ok := t.Get("size_function"); ok {
		s, ok := v.String()
		if !ok {
			return e, newErr(KindInvalidDomainValue, "epoch", entityName, "size_function must be a string")
		}
		e.SizeFunction = &s
	}
	if f, ok := getFloat(t, "cloning_rate"); ok {
		e.CloningRate = f
	}
	if f, ok := getFloat(t, "selfing_rate"); ok {
		e.SelfingRate = f
	}
	return e, nil
}

func parseDeme(t Tree, index int) (UnresolvedDeme, error) {
	var d UnresolvedDeme
	name := fmt.Sprintf("<deme %d>", index)
	if t.Kind != KindMapping {
		return d, newErr(KindInvalidDomainValue, "deme", name, "must be a mapping")
	}
	if err := rejectUnrecognized(t, demeKeys, "deme", name); err != nil {
		return d, err
	}
	nv, ok := t.Get("name")
	if !ok {
		return d, newErr(KindMissingRequired, "deme", name, "name is required")
	}
	nameStr, ok := nv.String()
	if !ok || nameStr == "" {
		return d, newErr(KindNameError, "deme", name, "name must be a non-empty string")
	}
	d.Name = nameStr
	name = nameStr

	if v, ok := t.Get("description"); ok {
		s, ok := v.String()
		if !ok {
			return d, newErr(KindInvalidDomainValue, "deme", name, "description must be a string")
		}
		d.Description = &s
	}
	if v, ok := t.Get("ancestors"); ok {
		ss, ok := v.StringSlice()
		if !ok {
			return d, newErr(KindInvalidDomainValue, "deme", name, "ancestors must be a list of strings")
		}
		d.Ancestors = ss
	}
	if v, ok := t.Get("proportions"); ok {
		fs, ok := v.Float64Slice()
		if !ok {
			return d, newErr(KindInvalidDomainValue, "deme", name, "proportions must be a list of numbers")
		}
		d.Proportions = fs
	}
	if f, ok := getFloat(t, "start_time"); ok {
		d.StartTime = f
	}
	if v, ok := t.Get("defaults"); ok {
		if err := rejectUnrecognized(v, []string{"epoch"}, "deme", name); err != nil {
			return d, err
		}
		if ev, ok := v.Get("epoch"); ok {
			e, err := parseEpochFields(ev, name)
			if err != nil {
				return d, err
			}
			d.Defaults = e
		}
	}

	en, ok := t.Get("epochs")
	if !ok || en.Kind != KindSequence || len(en.Sequence) == 0 {
		return d, newErr(KindMissingRequired, "deme", name, "epochs must be a non-empty list")
	}
	for _, epn := range en.Sequence {
		ef, err := parseEpochFields(epn, name)
		if err != nil {
			return d, err
		}
		d.Epochs = append(d.Epochs, UnresolvedEpoch{
			EndTime:      ef.EndTime,
			StartSize:    ef.StartSize,
			EndSize:      ef.EndSize,
			SizeFunction: ef.SizeFunction,
			CloningRate:  ef.CloningRate,
			SelfingRate:  ef.SelfingRate,
		})
	}
	return d, nil
}

func parseMigrationEntry(t Tree, index int) (UnresolvedMigrationEntry, error) {
	var m UnresolvedMigrationEntry
	name := fmt.Sprintf("<migration %d>", index)
	if t.Kind != KindMapping {
		return m, newErr(KindInvalidDomainValue, "migration", name, "must be a mapping")
	}
	if err := rejectUnrecognized(t, migrationKeys, "migration", name); err != nil {
		return m, err
	}
	if v, ok := t.Get("demes"); ok {
		ss, ok := v.StringSlice()
		if !ok {
			return m, newErr(KindInvalidDomainValue, "migration", name, "demes must be a list of strings")
		}
		m.Demes = ss
	}
	if v, ok := t.Get("source"); ok {
		s, ok := v.String()
		if !ok {
			return m, newErr(KindInvalidDomainValue, "migration", name, "source must be a string")
		}
		m.Source = &s
	}
	if v, ok := t.Get("dest"); ok {
		s, ok := v.String()
		if !ok {
			return m, newErr(KindInvalidDomainValue, "migration", name, "dest must be a string")
		}
		m.Dest = &s
	}
	if f, ok := getFloat(t, "rate"); ok {
		m.Rate = f
	}
	if f, ok := getFloat(t, "start_time"); ok {
		m.StartTime = f
	}
	if f, ok := getFloat(t, "end_time"); ok {
		m.EndTime = f
	}
	if len(m.Demes) > 0 && (m.Source != nil || m.Dest != nil) {
		return m, newErr(KindInvalidDomainValue, "migration", name, "cannot mix symmetric 'demes' shorthand with source/dest")
	}
	return m, nil
}

func parsePulse(t Tree, index int) (UnresolvedPulse, error) {
	var p UnresolvedPulse
	name := fmt.Sprintf("<pulse %d>", index)
	if t.Kind != KindMapping {
		return p, newErr(KindInvalidDomainValue, "pulse", name, "must be a mapping")
	}
	if err := rejectUnrecognized(t, pulseKeys, "pulse", name); err != nil {
		return p, err
	}
	sv, ok := t.Get("sources")
	if !ok {
		return p, newErr(KindMissingRequired, "pulse", name, "sources is required")
	}
	ss, ok := sv.StringSlice()
	if !ok || len(ss) == 0 {
		return p, newErr(KindMissingRequired, "pulse", name, "sources must be a non-empty list of strings")
	}
	p.Sources = ss

	dv, ok := t.Get("dest")
	if !ok {
		return p, newErr(KindMissingRequired, "pulse", name, "dest is required")
	}
	destStr, ok := dv.String()
	if !ok {
		return p, newErr(KindInvalidDomainValue, "pulse", name, "dest must be a string")
	}
	p.Dest = &destStr

	tv, ok := t.Get("time")
	if !ok {
		return p, newErr(KindMissingRequired, "pulse", name, "time is required")
	}
	tf, ok := tv.Float64()
	if !ok {
		return p, newErr(KindInvalidDomainValue, "pulse", name, "time must be a number")
	}
	timeF := tf
	p.Time = &timeF

	if pv, ok := t.Get("proportions"); ok {
		fs, ok := pv.Float64Slice()
		if !ok {
			return p, newErr(KindInvalidDomainValue, "pulse", name, "proportions must be a list of numbers")
		}
		p.Proportions = fs
	}
	return p, nil
}
