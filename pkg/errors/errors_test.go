package errors

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataLoadError(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		reason  string
		err     error
		wantMsg string
	}{
		{
			name:    "with cause",
			path:    "data/az.gob",
			reason:  "open failed",
			err:     os.ErrNotExist,
			wantMsg: `yieldboost: load dataset "data/az.gob": open failed: file does not exist`,
		},
		{
			name:    "without cause",
			path:    "data/az.gob",
			reason:  "no splits",
			wantMsg: `yieldboost: load dataset "data/az.gob": no splits`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDataLoadError(tt.path, tt.reason, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			assert.True(t, strings.Contains(formatted, "errors_test.go"))

			var loadErr *DataLoadError
			require.True(t, As(err, &loadErr))
			assert.Equal(t, tt.path, loadErr.Path)

			if tt.err != nil {
				assert.True(t, Is(err, tt.err))
			}
		})
	}
}

func TestNewFitError(t *testing.T) {
	cause := NewDimensionError("Fit", 10, 9, 0)
	err := NewFitError(2, "fit", cause)

	assert.Equal(t,
		"yieldboost: split 2: fit failed: yieldboost: Fit: dimension mismatch on axis 0 (rows). Expected 10, got 9",
		err.Error())

	var fitErr *FitError
	require.True(t, As(err, &fitErr))
	assert.Equal(t, 2, fitErr.Split)
	assert.Equal(t, "fit", fitErr.Stage)

	var dimErr *DimensionError
	assert.True(t, As(err, &dimErr), "cause should stay reachable")

	noSplit := NewFitError(0, "predict", New("x"))
	assert.Equal(t, "yieldboost: predict failed: x", noSplit.Error())
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)
	assert.Equal(t, "yieldboost: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2", err.Error())
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("XGBRegressor", "Predict")
	assert.Equal(t, "yieldboost: XGBRegressor: this model is not fitted yet. Call Fit() before using Predict()", err.Error())
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("SampleStdDev", "need at least 2 values")
	assert.Equal(t, "yieldboost: SampleStdDev: need at least 2 values", err.Error())

	var valErr *ValueError
	assert.True(t, As(err, &valErr))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("subsample", "must be in (0, 1]", 1.5)
	assert.Equal(t, "yieldboost: validation failed for parameter 'subsample': must be in (0, 1] (got: 1.5)", err.Error())
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("r2", "constant y_true", 0.0)
	Warn(w)

	require.Len(t, got, 1)
	assert.Equal(t, "'r2' is ill-defined and being set to 0.000000 due to constant y_true.", got[0].Error())
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "split %d", 3)
	assert.True(t, Is(wrapped, ErrEmptyData))
	assert.Equal(t, "split 3: empty data", wrapped.Error())
	assert.Equal(t, "outer: empty data", Wrap(ErrEmptyData, "outer").Error())
}
