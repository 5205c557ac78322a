package treeio

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/popdemes/demes"
)

// TOMLCodec implements Decoder and Encoder using github.com/pelletier/go-toml/v2.
// Like JSONCodec, mapping key order is not preserved on decode: go-toml/v2's
// public API hands back plain map[string]any, and demes only depends on
// sequence order (deme/migration/pulse declaration order), never mapping
// order.
type TOMLCodec struct{}

// Decode parses TOML bytes into a Tree.
func (TOMLCodec) Decode(data []byte) (demes.Tree, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return demes.Tree{}, fmt.Errorf("treeio: decoding TOML: %w", err)
	}
	return fromGo(raw), nil
}

// Encode renders a Tree to TOML bytes.
func (TOMLCodec) Encode(t demes.Tree) ([]byte, error) {
	out, err := toml.Marshal(toGo(t))
	if err != nil {
		return nil, fmt.Errorf("treeio: encoding TOML: %w", err)
	}
	return out, nil
}
