package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes/internal/store"
)

func TestBeginRunAndRecordGeneration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.sqlite3")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runID, err := st.BeginRun("deadbeef", 10, 20, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.NoError(t, st.RecordGeneration(runID, 0, []float64{100, 200}, []float64{100, 205}))
	require.NoError(t, st.RecordGeneration(runID, 20, []float64{100, 300}, nil))
	require.NoError(t, st.RecordAncestry(runID, 0, 1, []float64{0, 1}))

	records, err := st.ReadRun(runID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.EqualValues(t, 0, records[0].T)
	assert.Equal(t, []float64{100, 200}, records[0].Parental)
	assert.Equal(t, []float64{100, 205}, records[0].Offspring)

	assert.EqualValues(t, 20, records[1].T)
	assert.Nil(t, records[1].Offspring)
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.sqlite3")
	st1, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	st2, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st2.Close()

	_, err = st2.BeginRun("abc123", 0, 0, 1)
	require.NoError(t, err)
}
