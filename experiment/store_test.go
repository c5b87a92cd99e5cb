package experiment

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRecordsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := OpenSQLiteStore(path, "synthetic", fastConfig())
	require.NoError(t, err)
	defer store.Close()

	runner := NewRunner(fastConfig())
	runner.Out = &bytes.Buffer{}
	runner.NewModel = constantFactory(1.5, nil)
	runner.Recorders = []Recorder{store}

	summary, err := runner.Run(linearDataset(2, 2, 1))
	require.NoError(t, err)

	splits, err := store.Splits()
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, 1, splits[0].Split)
	assert.Equal(t, "split0", splits[0].SplitID)
	assert.Equal(t, 7, splits[1].BestIteration)
	assert.Equal(t, summary.R2s[1], splits[1].R2)

	stored, ok, err := store.Summary()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary.MAEMean, stored.MAEMean)
}

func TestSQLiteStoreAbortedRunHasNoSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := OpenSQLiteStore(path, "synthetic", fastConfig())
	require.NoError(t, err)
	defer store.Close()

	ds := linearDataset(2, 2, 1)
	ds[1].Test.Y = ds[1].Test.Y[:1]

	runner := NewRunner(fastConfig())
	runner.Out = &bytes.Buffer{}
	runner.NewModel = constantFactory(1.5, nil)
	runner.Recorders = []Recorder{store}

	_, err = runner.Run(ds)
	require.Error(t, err)

	splits, err := store.Splits()
	require.NoError(t, err)
	assert.Len(t, splits, 1)

	_, ok, err := store.Summary()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreSeparateRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	first, err := OpenSQLiteStore(path, "a", fastConfig())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(path, "b", fastConfig())
	require.NoError(t, err)
	defer second.Close()

	assert.Greater(t, second.RunID(), first.RunID())
}
