package xgboost

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/core/parallel"
)

const (
	// maxBinLimit is the largest bin count representable next to missingBin.
	maxBinLimit = math.MaxUint16
	// missingBin marks NaN feature values.
	missingBin = math.MaxUint16
)

// BinMapper holds the quantile cut points of one feature. Bin b holds values
// in (UpperBounds[b-1], UpperBounds[b]].
type BinMapper struct {
	UpperBounds []float64
}

// NumBins returns the number of non-missing bins.
func (m *BinMapper) NumBins() int {
	return len(m.UpperBounds)
}

// ValueToBin maps a raw feature value to its bin index.
func (m *BinMapper) ValueToBin(v float64) uint16 {
	if math.IsNaN(v) {
		return missingBin
	}
	b := sort.SearchFloat64s(m.UpperBounds, v)
	if b >= len(m.UpperBounds) {
		b = len(m.UpperBounds) - 1
	}
	return uint16(b)
}

// findBinBoundaries computes at most maxBin cut points from the non-missing
// values of one feature. Distinct values get their own bin when they fit;
// otherwise cuts are placed at evenly spaced quantiles.
func findBinBoundaries(values []float64, maxBin int) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return []float64{math.Inf(1)}
	}
	sort.Float64s(sorted)

	distinct := sorted[:1:1]
	for _, v := range sorted[1:] {
		if v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) <= maxBin {
		return distinct
	}

	n := len(sorted)
	bounds := make([]float64, 0, maxBin)
	for b := 1; b <= maxBin; b++ {
		idx := b*n/maxBin - 1
		if idx < 0 {
			idx = 0
		}
		v := sorted[idx]
		if len(bounds) == 0 || v > bounds[len(bounds)-1] {
			bounds = append(bounds, v)
		}
	}
	if last := sorted[n-1]; bounds[len(bounds)-1] < last {
		bounds = append(bounds, last)
	}
	return bounds
}

// BinnedMatrix is the quantized training matrix, stored column-major so
// histogram construction scans one feature at a time.
type BinnedMatrix struct {
	Rows    int
	Cols    int
	Mappers []BinMapper
	Bins    [][]uint16 // Bins[feature][row]
}

// NewBinnedMatrix quantizes X with at most maxBin bins per feature.
func NewBinnedMatrix(X mat.Matrix, maxBin, numThreads int) *BinnedMatrix {
	rows, cols := X.Dims()
	bm := &BinnedMatrix{
		Rows:    rows,
		Cols:    cols,
		Mappers: make([]BinMapper, cols),
		Bins:    make([][]uint16, cols),
	}

	parallel.ParallelizeN(cols, numThreads, func(start, end int) {
		column := make([]float64, rows)
		for j := start; j < end; j++ {
			for i := 0; i < rows; i++ {
				column[i] = X.At(i, j)
			}
			bm.Mappers[j] = BinMapper{UpperBounds: findBinBoundaries(column, maxBin)}

			bins := make([]uint16, rows)
			for i, v := range column {
				bins[i] = bm.Mappers[j].ValueToBin(v)
			}
			bm.Bins[j] = bins
		}
	})
	return bm
}

// Histogram accumulates gradient statistics per bin of one feature.
type Histogram struct {
	SumGrad     []float64
	SumHess     []float64
	MissingGrad float64
	MissingHess float64
}

func newHistogram(numBins int) Histogram {
	return Histogram{
		SumGrad: make([]float64, numBins),
		SumHess: make([]float64, numBins),
	}
}

// buildHistogram accumulates the rows of one node for one feature.
func buildHistogram(bins []uint16, rows []int, grad, hess []float64, numBins int) Histogram {
	h := newHistogram(numBins)
	for _, r := range rows {
		b := bins[r]
		if b == missingBin {
			h.MissingGrad += grad[r]
			h.MissingHess += hess[r]
			continue
		}
		h.SumGrad[b] += grad[r]
		h.SumHess[b] += hess[r]
	}
	return h
}
