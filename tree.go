package demes

// Tree is the untyped intermediate representation the resolver consumes.
// It mirrors the "tree of scalars/maps/sequences" interface spec.md §1
// assigns to external document parsers: a YAML, JSON, or TOML decoder
// (see package treeio) builds a Tree, the resolver only ever reads one, and
// serialization produces one back.
//
// Exactly one of the fields is meaningful per node, selected by Kind.
type Tree struct {
	Kind     TreeKind
	Scalar   any            // string, float64, bool, int64, or nil
	Mapping  map[string]Tree // valid when Kind == KindMapping
	Sequence []Tree          // valid when Kind == KindSequence

	// Keys preserves mapping insertion order, which Go maps do not. The
	// resolver looks keys up by name, so only encoders that write mappings
	// in order (YAMLCodec) depend on it; deme/migration/pulse declaration
	// order lives in Sequence.
	Keys []string
}

// TreeKind discriminates the tree node shapes: scalar, mapping, sequence,
// and null.
type TreeKind int

const (
	KindScalar TreeKind = iota
	KindMapping
	KindSequence
	KindNull
)

// NewScalar wraps a scalar value as a Tree node.
func NewScalar(v any) Tree {
	if v == nil {
		return Tree{Kind: KindNull}
	}
	return Tree{Kind: KindScalar, Scalar: v}
}

// NewSequence wraps a slice of Tree nodes.
func NewSequence(items ...Tree) Tree {
	return Tree{Kind: KindSequence, Sequence: items}
}

// NewMapping builds an ordered mapping node from keys and values of equal length.
func NewMapping(keys []string, values []Tree) Tree {
	m := make(map[string]Tree, len(keys))
	for i, k := range keys {
		m[k] = values[i]
	}
	return Tree{Kind: KindMapping, Mapping: m, Keys: append([]string(nil), keys...)}
}

// Get looks up a key in a mapping node. Returns false if the node is not a
// mapping or the key is absent.
func (t Tree) Get(key string) (Tree, bool) {
	if t.Kind != KindMapping {
		return Tree{}, false
	}
	v, ok := t.Mapping[key]
	return v, ok
}

// IsNull reports whether a node is absent/null.
func (t Tree) IsNull() bool {
	return t.Kind == KindNull
}

// String extracts a string scalar.
func (t Tree) String() (string, bool) {
	if t.Kind != KindScalar {
		return "", false
	}
	s, ok := t.Scalar.(string)
	return s, ok
}

// Float64 extracts a numeric scalar as float64, accepting both float64 and
// int64 underlying representations (JSON/TOML decoders often prefer the
// latter for whole numbers).
func (t Tree) Float64() (float64, bool) {
	if t.Kind != KindScalar {
		return 0, false
	}
	switch v := t.Scalar.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Bool extracts a bool scalar.
func (t Tree) Bool() (bool, bool) {
	if t.Kind != KindScalar {
		return false, false
	}
	b, ok := t.Scalar.(bool)
	return b, ok
}

// StringSlice extracts a sequence of string scalars.
func (t Tree) StringSlice() ([]string, bool) {
	if t.Kind != KindSequence {
		return nil, false
	}
	out := make([]string, 0, len(t.Sequence))
	for _, item := range t.Sequence {
		s, ok := item.String()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Float64Slice extracts a sequence of numeric scalars.
func (t Tree) Float64Slice() ([]float64, bool) {
	if t.Kind != KindSequence {
		return nil, false
	}
	out := make([]float64, 0, len(t.Sequence))
	for _, item := range t.Sequence {
		f, ok := item.Float64()
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}
