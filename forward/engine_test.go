package forward_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/forward"
	"github.com/popdemes/demes/treeio"
)

func mustLoad(t *testing.T, yaml string) *demes.Graph {
	t.Helper()
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(yaml))
	require.NoError(t, err)
	return g
}

func TestEngineSingleConstantDeme(t *testing.T) {
	g := mustLoad(t, `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`)
	eng, err := forward.NewEngine(g, 5, demes.RoundHalfAwayFromZero)
	require.NoError(t, err)
	assert.EqualValues(t, 5, eng.ModelEndTime()) // burn_in=5, span=0 (root deme has infinite start_time)

	eng.InitializeTimeIteration()

	var seen []int64
	for {
		tNow, ok, err := eng.IterateTime()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, eng.UpdateState(tNow))
		seen = append(seen, tNow)

		parental, err := eng.ParentalDemeSizes()
		require.NoError(t, err)
		require.Len(t, parental, 1)
		assert.Equal(t, 100.0, parental[0])
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, seen)
}

func TestEngineRejectsNonIntegerSizes(t *testing.T) {
	g := mustLoad(t, `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100.5
`)
	_, err := forward.NewEngine(g, 0, demes.RoundHalfAwayFromZero)
	require.Error(t, err)
	var derr *demes.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, demes.KindSizeError, derr.Kind)
}

func TestEngineRejectsNegativeBurnIn(t *testing.T) {
	g := mustLoad(t, `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`)
	_, err := forward.NewEngine(g, -1, demes.RoundHalfAwayFromZero)
	require.Error(t, err)
}

func TestEngineOffspringNilAtEndTime(t *testing.T) {
	g := mustLoad(t, `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`)
	eng, err := forward.NewEngine(g, 2, demes.RoundHalfAwayFromZero)
	require.NoError(t, err)
	eng.InitializeTimeIteration()

	for {
		tNow, ok, err := eng.IterateTime()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, eng.UpdateState(tNow))
		offspring, err := eng.OffspringDemeSizes()
		require.NoError(t, err)
		if tNow == eng.ModelEndTime() {
			assert.Nil(t, offspring)
		} else {
			assert.NotNil(t, offspring)
		}
	}
}
