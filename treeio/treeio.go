// Package treeio adapts the demes package's Tree type (the resolver's only
// view of external documents, per spec.md §1) to concrete serialization
// formats: YAML, JSON, and TOML. None of this package's logic is part of
// resolution — it only builds and renders demes.Tree values.
package treeio

import "github.com/popdemes/demes"

// Decoder turns raw document bytes into a demes.Tree.
type Decoder interface {
	Decode(data []byte) (demes.Tree, error)
}

// Encoder renders a demes.Tree back into raw document bytes.
type Encoder interface {
	Encode(t demes.Tree) ([]byte, error)
}

// Load decodes data with the given codec and resolves it in one step.
func Load(dec Decoder, data []byte) (*demes.Graph, error) {
	t, err := dec.Decode(data)
	if err != nil {
		return nil, err
	}
	return demes.LoadTree(t)
}

// Dump renders a resolved graph with the given codec.
func Dump(enc Encoder, g *demes.Graph) ([]byte, error) {
	return enc.Encode(g.ToTree())
}

func fromGo(v any) demes.Tree {
	switch val := v.(type) {
	case nil:
		return demes.Tree{Kind: demes.KindNull}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		values := make([]demes.Tree, len(keys))
		for i, k := range keys {
			values[i] = fromGo(val[k])
		}
		return demes.NewMapping(keys, values)
	case []any:
		items := make([]demes.Tree, len(val))
		for i, item := range val {
			items[i] = fromGo(item)
		}
		return demes.NewSequence(items...)
	default:
		return demes.NewScalar(normalizeScalar(v))
	}
}

// normalizeScalar collapses the assorted numeric representations format
// libraries hand back (int, int64, uint64, float32) to float64,
// matching demes.Tree.Float64's accepted set.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// toGo renders a demes.Tree back to plain Go values, the shape format
// encoders (yaml.Marshal, json.Marshal, toml.Marshal) expect.
func toGo(t demes.Tree) any {
	switch t.Kind {
	case demes.KindNull:
		return nil
	case demes.KindScalar:
		return t.Scalar
	case demes.KindSequence:
		out := make([]any, len(t.Sequence))
		for i, item := range t.Sequence {
			out[i] = toGo(item)
		}
		return out
	case demes.KindMapping:
		out := make(map[string]any, len(t.Keys))
		for _, k := range t.Keys {
			out[k] = toGo(t.Mapping[k])
		}
		return out
	default:
		return nil
	}
}
