package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/popdemes/demes/treeio"
)

// codecForPath picks a treeio codec from a file's extension. YAML is the
// reference format (spec.md §1, §6); JSON and TOML are the accepted
// secondary formats.
func codecForPath(path string) (interface {
	treeio.Decoder
	treeio.Encoder
}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return treeio.YAMLCodec{}, nil
	case ".json":
		return treeio.JSONCodec{}, nil
	case ".toml":
		return treeio.TOMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unrecognized file extension %q (expected .yaml, .yml, .json, or .toml)", filepath.Ext(path))
	}
}
