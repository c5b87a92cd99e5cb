package experiment

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
	"github.com/YuminosukeSato/yieldboost/pkg/log"
)

func TestRunnerEndToEnd(t *testing.T) {
	ds := linearDataset(2, 2, 0.5)

	var out bytes.Buffer
	runner := NewRunner(fastConfig())
	runner.Out = &out

	summary, err := runner.Run(ds)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	var r2s, maes []float64
	for i, line := range lines[:2] {
		fields := strings.Fields(line)
		require.Len(t, fields, 4)
		assert.Equal(t, "Test", fields[0])
		assert.Equal(t, strconv.Itoa(i+1), fields[1])

		r2, err := strconv.ParseFloat(fields[2], 64)
		require.NoError(t, err)
		mae, err := strconv.ParseFloat(fields[3], 64)
		require.NoError(t, err)
		assert.Greater(t, r2, 0.8)
		r2s = append(r2s, r2)
		maes = append(maes, mae)
	}

	assert.True(t, strings.HasPrefix(lines[2], "Tests R2: "))
	assert.True(t, strings.HasPrefix(lines[3], "Tests MAE: "))

	r2Mean, err := strconv.ParseFloat(strings.Fields(lines[2])[2], 64)
	require.NoError(t, err)
	maeMean, err := strconv.ParseFloat(strings.Fields(lines[3])[2], 64)
	require.NoError(t, err)
	assert.InDelta(t, (r2s[0]+r2s[1])/2, r2Mean, 1e-12)
	assert.InDelta(t, (maes[0]+maes[1])/2, maeMean, 1e-12)

	assert.Equal(t, r2s, summary.R2s)
	assert.Equal(t, maes, summary.MAEs)
}

func TestRunnerLoopCardinality(t *testing.T) {
	for _, k := range []int{2, 3, 5} {
		t.Run(strconv.Itoa(k), func(t *testing.T) {
			calls := 0
			var out bytes.Buffer
			runner := NewRunner(fastConfig())
			runner.Out = &out
			runner.NewModel = constantFactory(1, &calls)

			summary, err := runner.Run(linearDataset(k, 2, 1))
			require.NoError(t, err)
			assert.Equal(t, k, calls)
			assert.Len(t, summary.R2s, k)
			assert.Len(t, summary.MAEs, k)
			assert.Equal(t, k+2, strings.Count(out.String(), "\n"))
		})
	}
}

func TestRunnerAbortsWithoutSummary(t *testing.T) {
	ds := linearDataset(3, 2, 1)
	ds[1].Test.Y = ds[1].Test.Y[:5] // X and y disagree on the second split

	var out bytes.Buffer
	runner := NewRunner(fastConfig())
	runner.Out = &out
	runner.NewModel = constantFactory(1, nil)

	_, err := runner.Run(ds)
	require.Error(t, err)

	var fe *yerrors.FitError
	require.True(t, yerrors.As(err, &fe))
	assert.Equal(t, 2, fe.Split)

	assert.Contains(t, out.String(), "Test 1 ")
	assert.NotContains(t, out.String(), "Test 2 ")
	assert.NotContains(t, out.String(), "Tests R2:")
	assert.NotContains(t, out.String(), "Tests MAE:")
}

func TestRunnerParallelMatchesSequential(t *testing.T) {
	ds := linearDataset(3, 2, 1)

	var seq, par bytes.Buffer
	sequential := NewRunner(fastConfig())
	sequential.Out = &seq
	_, err := sequential.Run(ds)
	require.NoError(t, err)

	concurrent := NewRunner(fastConfig())
	concurrent.Out = &par
	concurrent.Workers = 3
	_, err = concurrent.Run(ds)
	require.NoError(t, err)

	assert.Equal(t, seq.String(), par.String())
}

func TestRunnerParallelReportsUpToFailure(t *testing.T) {
	ds := linearDataset(3, 2, 1)
	ds[2].Valid.Y = nil // empty targets on the last split

	var out bytes.Buffer
	runner := NewRunner(fastConfig())
	runner.Out = &out
	runner.Workers = 3

	_, err := runner.Run(ds)
	var fe *yerrors.FitError
	require.True(t, yerrors.As(err, &fe))
	assert.Equal(t, 3, fe.Split)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestRunnerSingleSplitFailsAggregation(t *testing.T) {
	var out bytes.Buffer
	runner := NewRunner(fastConfig())
	runner.Out = &out
	runner.NewModel = constantFactory(1, nil)

	_, err := runner.Run(linearDataset(1, 2, 1))
	var ve *yerrors.ValueError
	require.True(t, yerrors.As(err, &ve))
	assert.Contains(t, out.String(), "Test 1 ")
	assert.NotContains(t, out.String(), "Tests R2:")
}

type recordingRecorder struct {
	splits  []int
	summary *Summary
}

func (r *recordingRecorder) RecordSplit(res SplitResult) error {
	r.splits = append(r.splits, res.Index)
	return nil
}

func (r *recordingRecorder) RecordSummary(s Summary) error {
	r.summary = &s
	return nil
}

func TestRunnerRecorders(t *testing.T) {
	rec := &recordingRecorder{}
	runner := NewRunner(fastConfig())
	runner.Out = &bytes.Buffer{}
	runner.NewModel = constantFactory(2, nil)
	runner.Recorders = []Recorder{rec}

	summary, err := runner.Run(linearDataset(3, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, rec.splits)
	require.NotNil(t, rec.summary)
	assert.Equal(t, summary.R2Mean, rec.summary.R2Mean)
}

func TestRunnerLogsSplits(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() { log.SetProvider(log.NewZerologProvider(log.LevelWarn)) })

	runner := NewRunner(fastConfig())
	runner.Out = &bytes.Buffer{}
	runner.NewModel = constantFactory(1, nil)
	_, err := runner.Run(linearDataset(2, 2, 1))
	require.NoError(t, err)

	logger := provider.Logger()
	assert.True(t, logger.ContainsMessage("Split evaluated"))
	assert.True(t, logger.ContainsMessage("Run completed"))
	assert.True(t, logger.ContainsField(log.SplitKey, float64(2)))
	assert.True(t, logger.ContainsField(log.ComponentKey, "experiment.runner"))
}
