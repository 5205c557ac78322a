package demes

// serialize.go is the inverse of parse.go: a resolved Graph back into a
// Tree, used by MarshalCanonical (canonical.go) for hashing and by treeio
// encoders for round-tripping a resolved model back to YAML/JSON/TOML.

// ToTree renders a fully resolved graph as a Tree, with every defaultable
// field materialized — spec.md §4.4's promise that an MDM document is
// self-contained and carries no implicit defaults.
func (g *Graph) ToTree() Tree {
	keys := []string{"time_units", "generation_time", "demes"}
	values := []Tree{
		NewScalar(g.timeUnits.String()),
		NewScalar(g.generationTime.Float64()),
		demesToTree(g.demes),
	}
	if g.description != "" {
		keys = append(keys, "description")
		values = append(values, NewScalar(g.description))
	}
	if len(g.doi) > 0 {
		keys = append(keys, "doi")
		values = append(values, stringsToTree(g.doi))
	}
	if !g.metadata.IsNull() {
		keys = append(keys, "metadata")
		values = append(values, g.metadata)
	}
	if len(g.migrations) > 0 {
		keys = append(keys, "migrations")
		values = append(values, migrationsToTree(g.migrations))
	}
	if len(g.pulses) > 0 {
		keys = append(keys, "pulses")
		values = append(values, pulsesToTree(g.pulses))
	}
	return NewMapping(keys, values)
}

func stringsToTree(ss []string) Tree {
	items := make([]Tree, len(ss))
	for i, s := range ss {
		items[i] = NewScalar(s)
	}
	return NewSequence(items...)
}

func demesToTree(demes []Deme) Tree {
	items := make([]Tree, len(demes))
	for i, d := range demes {
		keys := []string{"name"}
		values := []Tree{NewScalar(d.name)}
		if d.description != "" {
			keys = append(keys, "description")
			values = append(values, NewScalar(d.description))
		}
		if len(d.ancestorNames) > 0 {
			keys = append(keys, "ancestors", "proportions")
			props := make([]Tree, len(d.ancestorProportions))
			for j, p := range d.ancestorProportions {
				props[j] = NewScalar(p.Float64())
			}
			values = append(values, stringsToTree(d.ancestorNames), NewSequence(props...))
		}
		// start_time is only absent from the rendered tree when it is the
		// ancestorless-default infinity sentinel; any other value (including an
		// ancestorless root deme with an explicit finite start_time) is
		// materialized so re-parsing never silently coerces it back to the
		// default, per ToTree's "carries no implicit defaults" promise above.
		if len(d.ancestorNames) > 0 || !d.StartTime().IsInfinite() {
			keys = append(keys, "start_time")
			values = append(values, NewScalar(d.StartTime().Float64()))
		}
		keys = append(keys, "epochs")
		values = append(values, epochsToTree(d.epochs))
		items[i] = NewMapping(keys, values)
	}
	return NewSequence(items...)
}

func epochsToTree(epochs []Epoch) Tree {
	items := make([]Tree, len(epochs))
	for i, e := range epochs {
		keys := []string{"end_time", "start_size", "end_size", "size_function", "cloning_rate", "selfing_rate"}
		values := []Tree{
			NewScalar(e.endTime.Float64()),
			NewScalar(e.startSize.Float64()),
			NewScalar(e.endSize.Float64()),
			NewScalar(e.sizeFunction.String()),
			NewScalar(e.cloningRate.Float64()),
			NewScalar(e.selfingRate.Float64()),
		}
		items[i] = NewMapping(keys, values)
	}
	return NewSequence(items...)
}

func migrationsToTree(migrations []AsymmetricMigration) Tree {
	items := make([]Tree, len(migrations))
	for i, m := range migrations {
		items[i] = NewMapping(
			[]string{"source", "dest", "rate", "start_time", "end_time"},
			[]Tree{
				NewScalar(m.sourceName),
				NewScalar(m.destName),
				NewScalar(m.rate.Float64()),
				NewScalar(m.startTime.Float64()),
				NewScalar(m.endTime.Float64()),
			},
		)
	}
	return NewSequence(items...)
}

func pulsesToTree(pulses []Pulse) Tree {
	items := make([]Tree, len(pulses))
	for i, p := range pulses {
		props := make([]Tree, len(p.proportions))
		for j, pr := range p.proportions {
			props[j] = NewScalar(pr.Float64())
		}
		items[i] = NewMapping(
			[]string{"sources", "dest", "time", "proportions"},
			[]Tree{
				stringsToTree(p.sourceNames),
				NewScalar(p.destName),
				NewScalar(p.time.Float64()),
				NewSequence(props...),
			},
		)
	}
	return NewSequence(items...)
}

// LoadTree parses and resolves a Tree in one step: the common entrypoint
// treeio's format-specific decoders call after producing a Tree.
func LoadTree(t Tree) (*Graph, error) {
	u, err := Parse(t)
	if err != nil {
		return nil, err
	}
	return Resolve(u)
}

// Dumps renders a resolved graph to its canonical string form (canonical.go),
// suitable for hashing or for a format encoder to re-parse.
func (g *Graph) Dumps() (string, error) {
	return MarshalCanonical(g.ToTree())
}

// Hash returns the domain-separated content hash of the graph's canonical
// form (canonical.go's GraphHash), spec.md §4.4's identity for a resolved
// graph.
func (g *Graph) Hash() (string, error) {
	canon, err := g.Dumps()
	if err != nil {
		return "", err
	}
	return GraphHash(canon), nil
}
