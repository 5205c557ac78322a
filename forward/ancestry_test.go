package forward_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/forward"
)

func sumAncestry(props []float64) float64 {
	var total float64
	for _, p := range props {
		total += p
	}
	return total
}

func TestAncestryProportionsSumToOneUnderMigration(t *testing.T) {
	g := mustLoad(t, `
time_units: generations
demes:
  - name: A
    start_time: 100
    epochs:
      - start_size: 100
        end_time: 0
  - name: B
    start_time: 100
    epochs:
      - start_size: 100
        end_time: 0
migrations:
  - demes: [A, B]
    rate: 0.01
`)
	eng, err := forward.NewEngine(g, 0, demes.RoundHalfAwayFromZero)
	require.NoError(t, err)
	eng.InitializeTimeIteration()

	for {
		tNow, ok, err := eng.IterateTime()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, eng.UpdateState(tNow))
		if tNow == eng.ModelEndTime() {
			continue
		}
		for child := 0; child < eng.NumberOfDemes(); child++ {
			props, err := eng.AncestryProportions(child)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, sumAncestry(props), 1e-9)
		}
	}
}

func TestAncestryProportionsPulseAtExactGeneration(t *testing.T) {
	g := mustLoad(t, `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
        end_time: 0
  - name: B
    ancestors: [A]
    start_time: 100
    epochs:
      - start_size: 200
        end_time: 0
pulses:
  - sources: [A]
    dest: B
    time: 50
    proportions: [0.2]
`)
	eng, err := forward.NewEngine(g, 0, demes.RoundHalfAwayFromZero)
	require.NoError(t, err)
	eng.InitializeTimeIteration()

	aIdx, ok := g.DemeIndex("A")
	require.True(t, ok)
	bIdx, ok := g.DemeIndex("B")
	require.True(t, ok)

	var checked bool
	for {
		tNow, ok, err := eng.IterateTime()
		require.NoError(t, err)
		if !ok {
			break
		}
		require.NoError(t, eng.UpdateState(tNow))
		if tNow != 50 {
			continue
		}
		props, err := eng.AncestryProportions(bIdx)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, props[aIdx], 1e-9)
		assert.InDelta(t, 0.8, props[bIdx], 1e-9)
		checked = true
	}
	assert.True(t, checked)
}
