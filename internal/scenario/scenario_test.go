package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/treeio"
)

// Scenario 1: minimal single deme.
func TestScenarioMinimalSingleDeme(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`))
	require.NoError(t, err)
	require.Equal(t, 1, g.NumDemes())

	a := g.Deme(0)
	require.Equal(t, 1, a.NumEpochs())
	e := a.Epochs()[0]
	assert.True(t, e.StartTime().IsInfinite())
	assert.Equal(t, 0.0, e.EndTime().Float64())
	assert.Equal(t, 100.0, e.StartSize().Float64())
	assert.Equal(t, 100.0, e.EndSize().Float64())
	assert.Equal(t, demes.Constant, e.SizeFunction())
}

// Scenario 2: linear growth, size_at(50) == 55.
func TestScenarioLinearGrowth(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
time_units: generations
demes:
  - name: A
    start_time: 100
    epochs:
      - start_size: 10
        end_size: 100
        end_time: 0
        size_function: linear
`))
	require.NoError(t, err)

	size, extant, err := g.Deme(0).SizeAt(demes.Time(50))
	require.NoError(t, err)
	require.True(t, extant)
	assert.InDelta(t, 55.0, size.Float64(), 1e-9)
}

// Scenario 3: branch with start_time inheritance.
func TestScenarioBranchStartTimeInheritance(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 1000
        end_time: 100
  - name: B
    ancestors: [A]
    epochs:
      - start_size: 500
        end_time: 0
`))
	require.NoError(t, err)

	b, ok := g.DemeByName("B")
	require.True(t, ok)
	assert.InDelta(t, 100.0, b.StartTime().Float64(), 1e-9)
}

// Scenario 4: symmetric migration expands to two asymmetric entries.
func TestScenarioSymmetricMigrationExpansion(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
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
`))
	require.NoError(t, err)
	require.Len(t, g.Migrations(), 2)

	byPair := map[[2]string]demes.AsymmetricMigration{}
	for _, m := range g.Migrations() {
		byPair[[2]string{m.Source(), m.Dest()}] = m
	}
	ab, ok := byPair[[2]string{"A", "B"}]
	require.True(t, ok)
	ba, ok := byPair[[2]string{"B", "A"}]
	require.True(t, ok)

	for _, m := range []demes.AsymmetricMigration{ab, ba} {
		assert.InDelta(t, 0.01, m.Rate().Float64(), 1e-9)
		assert.InDelta(t, 100.0, m.StartTime().Float64(), 1e-9)
		assert.InDelta(t, 0.0, m.EndTime().Float64(), 1e-9)
	}
}

// Scenario 5: a pulse redistributes ancestry at the generation it falls in.
func TestScenarioPulseAncestry(t *testing.T) {
	result, err := Run(Scenario{
		Name:   "pulse_ancestry",
		BurnIn: 0,
		YAML: `
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
`,
	})
	require.NoError(t, err)

	bIndex := -1
	for i, name := range result.DemeNames {
		if name == "B" {
			bIndex = i
		}
	}
	require.GreaterOrEqual(t, bIndex, 0)

	var found bool
	for _, gen := range result.Trace {
		if gen.T != 50 {
			continue
		}
		require.Len(t, gen.Ancestry, len(gen.Offspring))
		props := gen.Ancestry[bIndex]
		assert.InDelta(t, 0.2, props[1-bIndex], 1e-9) // deme A's proportion
		assert.InDelta(t, 0.8, props[bIndex], 1e-9)
		found = true
	}
	assert.True(t, found, "expected a generation at t=50")
}

// Scenario 6: Jouganous-style years model converts cleanly to integer
// generations with generation_time=29.
func TestScenarioJouganousConversion(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
time_units: years
generation_time: 29
demes:
  - name: ancestral
    epochs:
      - start_size: 7300
        end_time: 220000
  - name: AMH
    ancestors: [ancestral]
    epochs:
      - start_size: 12300
        end_time: 140000
  - name: OOA
    ancestors: [AMH]
    epochs:
      - start_size: 2100
        end_time: 21200
  - name: CEU
    ancestors: [OOA]
    start_time: 21200
    epochs:
      - start_size: 1000
        end_size: 29725
        end_time: 0
        size_function: exponential
  - name: YRI
    ancestors: [AMH]
    start_time: 140000
    epochs:
      - start_size: 12300
        end_time: 0
migrations:
  - demes: [YRI, CEU]
    rate: 0.000192
`))
	require.NoError(t, err)

	integral, err := g.ToIntegerGenerations(demes.RoundHalfAwayFromZero)
	require.NoError(t, err)

	for _, d := range integral.Demes() {
		for _, e := range d.Epochs() {
			if !e.StartTime().IsInfinite() {
				assertWholeNonNegative(t, e.StartTime())
			}
			assertWholeNonNegative(t, e.EndTime())
		}
	}
}

func assertWholeNonNegative(t *testing.T, tm demes.Time) {
	t.Helper()
	f := tm.Float64()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.True(t, tm.IsWholeNumber(), "expected whole number generations, got %v", f)
}
