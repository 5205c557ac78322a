package treeio

import (
	"fmt"

	"github.com/popdemes/demes"
	"gopkg.in/yaml.v3"
)

// YAMLCodec implements Decoder and Encoder using gopkg.in/yaml.v3, the
// reference serialization format for demes documents (spec.md §1, §6).
type YAMLCodec struct{}

// Decode parses YAML bytes into a Tree, walking yaml.Node directly rather
// than unmarshaling into interface{} so mapping key order survives the round
// trip (Go maps do not preserve it, and demes.Tree.Keys depends on it).
func (YAMLCodec) Decode(data []byte) (demes.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return demes.Tree{}, fmt.Errorf("treeio: decoding YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return demes.Tree{Kind: demes.KindNull}, nil
	}
	return nodeToTree(doc.Content[0])
}

func nodeToTree(n *yaml.Node) (demes.Tree, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return demes.Tree{Kind: demes.KindNull}, nil
		}
		return nodeToTree(n.Content[0])
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		values := make([]demes.Tree, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			v, err := nodeToTree(valNode)
			if err != nil {
				return demes.Tree{}, err
			}
			keys = append(keys, keyNode.Value)
			values = append(values, v)
		}
		return demes.NewMapping(keys, values), nil
	case yaml.SequenceNode:
		items := make([]demes.Tree, len(n.Content))
		for i, item := range n.Content {
			v, err := nodeToTree(item)
			if err != nil {
				return demes.Tree{}, err
			}
			items[i] = v
		}
		return demes.NewSequence(items...), nil
	case yaml.ScalarNode:
		return scalarNodeToTree(n)
	case yaml.AliasNode:
		return nodeToTree(n.Alias)
	default:
		return demes.Tree{}, fmt.Errorf("treeio: unsupported YAML node kind %v", n.Kind)
	}
}

func scalarNodeToTree(n *yaml.Node) (demes.Tree, error) {
	if n.Tag == "!!null" {
		return demes.Tree{Kind: demes.KindNull}, nil
	}
	switch n.Tag {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return demes.Tree{}, err
		}
		return demes.NewScalar(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return demes.Tree{}, err
		}
		return demes.NewScalar(f), nil
	default:
		return demes.NewScalar(n.Value), nil
	}
}

// Encode renders a Tree to YAML bytes, preserving mapping key order directly
// from Tree.Keys rather than routing through an unordered map.
func (YAMLCodec) Encode(t demes.Tree) ([]byte, error) {
	node, err := treeToNode(t)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func treeToNode(t demes.Tree) (*yaml.Node, error) {
	switch t.Kind {
	case demes.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case demes.KindScalar:
		return scalarToNode(t.Scalar)
	case demes.KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t.Sequence {
			child, err := treeToNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case demes.KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range t.Keys {
			child, err := treeToNode(t.Mapping[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, child)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("treeio: unsupported tree kind %v", t.Kind)
	}
}

func scalarToNode(v any) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("treeio: encoding scalar %v: %w", v, err)
	}
	return n, nil
}
