package treeio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes/treeio"
)

const minimalYAML = `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`

func TestYAMLRoundTrip(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(minimalYAML))
	require.NoError(t, err)
	require.Equal(t, 1, g.NumDemes())

	out, err := treeio.Dump(treeio.YAMLCodec{}, g)
	require.NoError(t, err)

	g2, err := treeio.Load(treeio.YAMLCodec{}, out)
	require.NoError(t, err)
	assert.Equal(t, g.DemeNames(), g2.DemeNames())

	h1, err := g.Hash()
	require.NoError(t, err)
	h2, err := g2.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "resolution is idempotent at the MDM level")
}

func TestJSONRoundTrip(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(minimalYAML))
	require.NoError(t, err)

	out, err := treeio.Dump(treeio.JSONCodec{}, g)
	require.NoError(t, err)

	g2, err := treeio.Load(treeio.JSONCodec{}, out)
	require.NoError(t, err)
	assert.Equal(t, g.DemeNames(), g2.DemeNames())
}

func TestTOMLRoundTrip(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(minimalYAML))
	require.NoError(t, err)

	out, err := treeio.Dump(treeio.TOMLCodec{}, g)
	require.NoError(t, err)

	g2, err := treeio.Load(treeio.TOMLCodec{}, out)
	require.NoError(t, err)
	assert.Equal(t, g.DemeNames(), g2.DemeNames())
}

func TestYAMLDecodeRejectsUnrecognizedField(t *testing.T) {
	_, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
demes:
  - name: A
    bogus: 1
    epochs:
      - start_size: 100
`))
	require.Error(t, err)
}
