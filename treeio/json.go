package treeio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/popdemes/demes"
)

// JSONCodec implements Decoder and Encoder for plain JSON documents.
// JSON mapping key order is not semantically meaningful to the resolver
// (only sequence order is), so this codec does not attempt to preserve it —
// unlike YAMLCodec, which does because demes documents are conventionally
// authored as YAML.
type JSONCodec struct{}

// Decode parses JSON bytes into a Tree. Numbers decode via json.Number so
// integers and floats both land on demes.Tree's float64 scalar without
// precision loss from an intermediate interface{} float64 cast.
func (JSONCodec) Decode(data []byte) (demes.Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return demes.Tree{}, fmt.Errorf("treeio: decoding JSON: %w", err)
	}
	return jsonValueToTree(raw)
}

func jsonValueToTree(v any) (demes.Tree, error) {
	switch val := v.(type) {
	case nil:
		return demes.Tree{Kind: demes.KindNull}, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return demes.Tree{}, fmt.Errorf("treeio: %q is not a valid number: %w", val, err)
		}
		return demes.NewScalar(f), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		values := make([]demes.Tree, len(keys))
		for i, k := range keys {
			t, err := jsonValueToTree(val[k])
			if err != nil {
				return demes.Tree{}, err
			}
			values[i] = t
		}
		return demes.NewMapping(keys, values), nil
	case []any:
		items := make([]demes.Tree, len(val))
		for i, item := range val {
			t, err := jsonValueToTree(item)
			if err != nil {
				return demes.Tree{}, err
			}
			items[i] = t
		}
		return demes.NewSequence(items...), nil
	default:
		return demes.NewScalar(v), nil
	}
}

// Encode renders a Tree to JSON bytes.
func (JSONCodec) Encode(t demes.Tree) ([]byte, error) {
	return json.Marshal(toGo(t))
}
