package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/yieldboost/datasets"
	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

func TestResolveDefaultDataPath(t *testing.T) {
	path := resolveDefaultDataPath()
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, filepath.Join("data", "az", "az-2048-3-true.gob")))
}

func TestRunMissingDataset(t *testing.T) {
	err := run([]string{"-data", filepath.Join(t.TempDir(), "missing.gob")})
	var dle *yerrors.DataLoadError
	require.True(t, yerrors.As(err, &dle))
}

func TestRunBadFlags(t *testing.T) {
	assert.Error(t, run([]string{"-log-level", "loud", "-data", "x"}))
	assert.Error(t, run([]string{"-no-such-flag"}))
}

func TestRunWritesDiagnostics(t *testing.T) {
	if testing.Short() {
		t.Skip("trains with the full experiment configuration")
	}
	dir := t.TempDir()
	data := filepath.Join(dir, "az.gob.xz")
	require.NoError(t, datasets.Save(data, datasets.MakeLinear(datasets.LinearConfig{
		Splits: 2, Features: 2, Train: 120, Valid: 40, Test: 40,
		Slope: 2, Intercept: 1, Noise: 0.05, Seed: 11,
	})))

	err := run([]string{
		"-data", data,
		"-save-predictions", filepath.Join(dir, "pred"),
		"-results-db", filepath.Join(dir, "results.db"),
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "pred", "az_split0_predictions.csv"))
	assert.FileExists(t, filepath.Join(dir, "pred", "az_split1_predictions.csv"))
	assert.FileExists(t, filepath.Join(dir, "results.db"))
}
