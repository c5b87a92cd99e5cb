package xgboost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFindBinBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		maxBin int
		want   []float64
	}{
		{"distinct values fit", []float64{3, 1, 2, 1, 3}, 256, []float64{1, 2, 3}},
		{"missing ignored", []float64{math.NaN(), 5, 4}, 256, []float64{4, 5}},
		{"all missing", []float64{math.NaN()}, 256, []float64{math.Inf(1)}},
		{"quantiles", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, []float64{2, 4, 6, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findBinBoundaries(tt.values, tt.maxBin))
		})
	}
}

func TestValueToBinMatchesThreshold(t *testing.T) {
	m := BinMapper{UpperBounds: []float64{2, 4, 6, 8}}
	for _, v := range []float64{0, 1.5, 2, 2.5, 4, 7.9, 8, 100} {
		b := int(m.ValueToBin(v))
		// the last bin also holds values above the training maximum and is
		// never used as a cut
		for cut := 0; cut < m.NumBins()-1; cut++ {
			assert.Equal(t, v <= m.UpperBounds[cut], b <= cut, "v=%v cut=%d", v, cut)
		}
	}
	assert.Equal(t, uint16(missingBin), m.ValueToBin(math.NaN()))
	assert.Equal(t, uint16(3), m.ValueToBin(100))
}

func TestTreePredictMatchesPartitionOutOfRange(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := []float64{0, 0, 10, 10}

	trainer := NewTrainer(TrainingParams{
		NumBoostRound:  1,
		LearningRate:   1,
		MaxDepth:       1,
		MinChildWeight: 1,
	})
	booster, err := trainer.Fit(X, y, nil, nil)
	require.NoError(t, err)

	tree := booster.Trees[0]
	root := tree.Nodes[0]
	require.False(t, root.IsLeaf())
	mapper := trainer.binned.Mappers[0]
	cut := mapper.ValueToBin(root.Threshold)
	split := SplitInfo{Feature: 0, Bin: int(cut), Threshold: root.Threshold, DefaultLeft: root.DefaultLeft}

	training := trainer.binned
	defer func() { trainer.binned = training }()

	// test rows outside the training range
	for _, v := range []float64{-5, 0.5, 1, 2.5, 3, 100} {
		trainer.binned = &BinnedMatrix{
			Rows:    1,
			Cols:    1,
			Mappers: training.Mappers,
			Bins:    [][]uint16{{mapper.ValueToBin(v)}},
		}
		left, _ := trainer.partition([]int{0}, split)

		want := tree.Nodes[root.RightChild].LeafValue
		if len(left) == 1 {
			want = tree.Nodes[root.LeftChild].LeafValue
		}
		assert.Equal(t, want, tree.Predict([]float64{v}), "v=%v", v)
	}
	assert.Equal(t, 2, tree.NumLeaves())
}

func TestBuildHistogram(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, math.NaN(), 1})
	bm := NewBinnedMatrix(X, 256, 2)
	require.Equal(t, 2, bm.Mappers[0].NumBins())

	grad := []float64{1, 2, 3, 4}
	hess := []float64{1, 1, 1, 1}
	h := buildHistogram(bm.Bins[0], []int{0, 1, 2, 3}, grad, hess, 2)

	assert.Equal(t, []float64{5, 2}, h.SumGrad)
	assert.Equal(t, []float64{2, 1}, h.SumHess)
	assert.Equal(t, 3.0, h.MissingGrad)
	assert.Equal(t, 1.0, h.MissingHess)
}
