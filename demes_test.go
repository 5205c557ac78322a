package demes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/treeio"
)

func simpleGraph(t *testing.T) *demes.Graph {
	t.Helper()
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("ancestral", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	g, err := b.Resolve()
	require.NoError(t, err)
	return g
}

func f(v float64) *float64 { return &v }

func TestBuilderMinimalGraphResolves(t *testing.T) {
	g := simpleGraph(t)
	require.Equal(t, 1, g.NumDemes())
	d := g.Deme(0)
	assert.Equal(t, "ancestral", d.Name())
	assert.True(t, d.StartTime().IsInfinite())
	assert.EqualValues(t, 0, d.EndTime())
	assert.Equal(t, demes.DemeSize(100), d.StartSize())
	assert.Equal(t, demes.DemeSize(100), d.EndSize())
}

func TestBuilderBranchInheritsAncestorStartTime(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100), EndTime: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	b.AddDeme("B", []demes.UnresolvedEpoch{{StartSize: f(50)}}, []string{"A"}, []float64{1.0}, nil, nil, demes.UnresolvedEpochDefaults{})
	g, err := b.Resolve()
	require.NoError(t, err)

	bIdx, ok := g.DemeIndex("B")
	require.True(t, ok)
	assert.EqualValues(t, 100, g.Deme(bIdx).StartTime())
}

func TestBuilderDuplicateNameFails(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	_, err := b.Resolve()
	require.Error(t, err)
	var derr *demes.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, demes.KindNameError, derr.Kind)
}

func TestBuilderForwardAncestorReferenceFails(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100)}}, []string{"B"}, []float64{1.0}, nil, nil, demes.UnresolvedEpochDefaults{})
	b.AddDeme("B", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	_, err := b.Resolve()
	require.Error(t, err)
	var derr *demes.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, demes.KindTopologyError, derr.Kind)
}

func TestLinearEpochSizeAtMidpoint(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	sf := "linear"
	b.AddDeme("A", []demes.UnresolvedEpoch{{
		StartSize:    f(10),
		EndSize:      f(100),
		EndTime:      f(0),
		SizeFunction: &sf,
	}}, nil, nil, f(100), nil, demes.UnresolvedEpochDefaults{})
	g, err := b.Resolve()
	require.NoError(t, err)

	size, extant, err := g.Deme(0).SizeAt(demes.Time(50))
	require.NoError(t, err)
	require.True(t, extant)
	assert.InDelta(t, 55.0, size.Float64(), 1e-9)
}

func TestDemeSizeAtOutsideWindowIsNotExtant(t *testing.T) {
	g := simpleGraph(t)
	size, extant, err := g.Deme(0).SizeAt(demes.Time(-1))
	require.NoError(t, err)
	assert.False(t, extant)
	assert.Zero(t, size)
}

func TestSymmetricMigrationExpandsToTwoAsymmetricEntries(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, f(100), nil, demes.UnresolvedEpochDefaults{})
	b.AddDeme("B", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, f(100), nil, demes.UnresolvedEpochDefaults{})
	b.AddSymmetricMigration([]string{"A", "B"}, f(0.01), nil, nil)
	g, err := b.Resolve()
	require.NoError(t, err)

	require.Len(t, g.Migrations(), 2)
	var sawAB, sawBA bool
	for _, m := range g.Migrations() {
		if m.Source() == "A" && m.Dest() == "B" {
			sawAB = true
		}
		if m.Source() == "B" && m.Dest() == "A" {
			sawBA = true
		}
		assert.EqualValues(t, 0.01, m.Rate())
	}
	assert.True(t, sawAB)
	assert.True(t, sawBA)
}

func TestPulseProportionsMustNotExceedOne(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	b.AddDeme("B", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	b.AddPulse([]string{"A"}, "B", 50, []float64{1.5})
	_, err := b.Resolve()
	require.Error(t, err)
	var derr *demes.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, demes.KindProportionError, derr.Kind)
}

func TestToIntegerGenerationsRoundTripIsIdempotent(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100), EndTime: f(0)}}, nil, nil, f(100), nil, demes.UnresolvedEpochDefaults{})
	g, err := b.Resolve()
	require.NoError(t, err)

	once, err := g.ToIntegerGenerations(demes.RoundHalfAwayFromZero)
	require.NoError(t, err)
	twice, err := once.ToIntegerGenerations(demes.RoundHalfAwayFromZero)
	require.NoError(t, err)

	h1, err := once.Hash()
	require.NoError(t, err)
	h2, err := twice.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestSliceRemovesHistoryBeforeWindow(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100), EndTime: f(0)}}, nil, nil, f(200), nil, demes.UnresolvedEpochDefaults{})
	g, err := b.Resolve()
	require.NoError(t, err)

	sliced, err := g.Slice(demes.TimeInterval{StartTime: demes.Time(100), EndTime: demes.Time(0)})
	require.NoError(t, err)
	require.Equal(t, 1, sliced.NumDemes())
	assert.EqualValues(t, 100, sliced.Deme(0).StartTime())
	assert.EqualValues(t, 0, sliced.Deme(0).EndTime())
}

func TestSerializeRoundTripsAncestorlessExplicitStartTime(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100), EndTime: f(0)}}, nil, nil, f(200), nil, demes.UnresolvedEpochDefaults{})
	g, err := b.Resolve()
	require.NoError(t, err)
	require.EqualValues(t, 200, g.Deme(0).StartTime())

	reloaded, err := demes.LoadTree(g.ToTree())
	require.NoError(t, err)
	assert.EqualValues(t, 200, reloaded.Deme(0).StartTime())

	h1, err := g.Hash()
	require.NoError(t, err)
	h2, err := reloaded.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "start_time must survive ToTree/reparse for an ancestorless deme")
}

func TestPulseOmittingProportionsInheritsDefault(t *testing.T) {
	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(`
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
  - name: B
    epochs:
      - start_size: 100
defaults:
  pulse:
    proportions: [0.2]
pulses:
  - sources: [A]
    dest: B
    time: 50
`))
	require.NoError(t, err)
	require.Len(t, g.Pulses(), 1)
	assert.InDelta(t, 0.2, g.Pulses()[0].Proportions()[0].Float64(), 1e-9)
}

func TestDOIValidationAppliesRegardlessOfTimeUnits(t *testing.T) {
	b := demes.NewGenerationsGraphBuilder(demes.UnresolvedGraphDefaults{})
	b.SetDOI([]string{""})
	b.AddDeme("A", []demes.UnresolvedEpoch{{StartSize: f(100)}}, nil, nil, nil, nil, demes.UnresolvedEpochDefaults{})
	_, err := b.Resolve()
	require.Error(t, err)
	var derr *demes.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, demes.KindInvalidDomainValue, derr.Kind)
}

func TestGraphHashIsDeterministic(t *testing.T) {
	g := simpleGraph(t)
	h1, err := g.Hash()
	require.NoError(t, err)
	h2, err := g.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}
