package datasets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

func smallDataset() Dataset {
	return MakeLinear(LinearConfig{
		Splits: 2, Features: 3, Train: 8, Valid: 4, Test: 4,
		Slope: 2, Noise: 0.1, Seed: 7,
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ds := smallDataset()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds))

	got, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(ds))

	for i := range ds {
		assert.Equal(t, ds[i].ID, got[i].ID)
		assert.True(t, mat.Equal(ds[i].Train.X, got[i].Train.X))
		assert.Equal(t, ds[i].Test.Y, got[i].Test.Y)
	}
	assert.Equal(t, 3, got.NumFeatures())
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"az.gob", "az.gob.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			ds := smallDataset()
			require.NoError(t, Save(path, ds))

			got, err := Load(path)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.True(t, mat.Equal(ds[1].Valid.X, got[1].Valid.X))
			assert.Equal(t, ds[1].Valid.Y, got[1].Valid.Y)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "full.gob")
	require.NoError(t, Save(full, smallDataset()))
	data, err := os.ReadFile(full)
	require.NoError(t, err)

	truncated := filepath.Join(dir, "truncated.gob")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)/2], 0o600))

	notXZ := filepath.Join(dir, "plain.gob.xz")
	require.NoError(t, os.WriteFile(notXZ, data, 0o600))

	mismatch := smallDataset()
	mismatch[1].Test.X = mat.NewDense(4, 2, nil)
	mismatchPath := filepath.Join(dir, "mismatch.gob")
	require.NoError(t, Save(mismatchPath, mismatch))

	tests := []struct {
		name   string
		path   string
		reason string
	}{
		{"missing file", filepath.Join(dir, "nope.gob"), "open"},
		{"truncated gob", truncated, "decode"},
		{"bad xz header", notXZ, "xz header"},
		{"feature count mismatch", mismatchPath, "validate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)

			var dle *yerrors.DataLoadError
			require.True(t, yerrors.As(err, &dle), "got %T: %v", err, err)
			assert.Equal(t, tt.path, dle.Path)
			assert.Equal(t, tt.reason, dle.Reason)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Dataset) Dataset
		ok     bool
	}{
		{"valid", func(d Dataset) Dataset { return d }, true},
		{"no splits", func(Dataset) Dataset { return Dataset{} }, false},
		{"empty test partition", func(d Dataset) Dataset {
			d[0].Test = Partition{}
			return d
		}, false},
		{"row count mismatch", func(d Dataset) Dataset {
			d[0].Train.Y = d[0].Train.Y[:3]
			return d
		}, false},
		{"feature count mismatch", func(d Dataset) Dataset {
			d[1].Valid.X = mat.NewDense(4, 5, nil)
			return d
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(smallDataset()).Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPartitionCheck(t *testing.T) {
	good := Partition{X: mat.NewDense(2, 1, []float64{1, 2}), Y: []float64{1, 2}}
	assert.NoError(t, good.Check("train"))

	var ve *yerrors.ValidationError
	noTargets := Partition{X: mat.NewDense(2, 1, []float64{1, 2})}
	require.True(t, yerrors.As(noTargets.Check("valid"), &ve))
	assert.Equal(t, "valid", ve.ParamName)
	require.True(t, yerrors.As(Partition{}.Check("test"), &ve))

	var de *yerrors.DimensionError
	short := Partition{X: mat.NewDense(2, 1, []float64{1, 2}), Y: []float64{1}}
	require.True(t, yerrors.As(short.Check("train"), &de))
	assert.Equal(t, 2, de.Expected)
	assert.Equal(t, 1, de.Got)
}

func TestMakeLinearDeterministic(t *testing.T) {
	a := smallDataset()
	b := smallDataset()
	assert.True(t, mat.Equal(a[0].Train.X, b[0].Train.X))
	assert.Equal(t, a[0].Train.Y, b[0].Train.Y)
}
