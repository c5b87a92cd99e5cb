// Package datasets holds the cross-validation split types used by the
// experiment runner and the on-disk codec for them.
package datasets

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// Partition is one subset of a split: a feature matrix and its targets.
type Partition struct {
	X *mat.Dense
	Y []float64
}

// Rows returns the number of samples in the partition.
func (p Partition) Rows() int {
	if p.X == nil {
		return 0
	}
	r, _ := p.X.Dims()
	return r
}

// Cols returns the number of features in the partition.
func (p Partition) Cols() int {
	if p.X == nil {
		return 0
	}
	_, c := p.X.Dims()
	return c
}

// Target returns Y as a column vector view. The slice is shared.
// Y must be non-empty; callers run Check first.
func (p Partition) Target() *mat.VecDense {
	return mat.NewVecDense(len(p.Y), p.Y)
}

// Check reports an empty partition or a row count that differs from len(Y).
func (p Partition) Check(name string) error {
	if p.Rows() == 0 || len(p.Y) == 0 {
		return yerrors.NewValidationError(name, "partition is empty", 0)
	}
	if p.Rows() != len(p.Y) {
		return yerrors.NewDimensionError(name, p.Rows(), len(p.Y), 0)
	}
	return nil
}

// Split is one pre-partitioned train/valid/test triple.
// ID is optional metadata; splits are displayed by their 1-based position.
type Split struct {
	ID    string
	Train Partition
	Valid Partition
	Test  Partition
}

// Dataset is the ordered sequence of splits of one experiment.
type Dataset []Split

// NumFeatures returns the feature count of the first split's training partition.
func (d Dataset) NumFeatures() int {
	if len(d) == 0 {
		return 0
	}
	return d[0].Train.Cols()
}

// Validate checks the structural invariants: at least one split, non-empty
// partitions, matching row counts, and one feature count across the dataset.
func (d Dataset) Validate() error {
	if len(d) == 0 {
		return yerrors.NewValidationError("splits", "dataset has no splits", 0)
	}

	nfeat := d.NumFeatures()
	for i, s := range d {
		parts := []struct {
			name string
			p    Partition
		}{
			{"train", s.Train},
			{"valid", s.Valid},
			{"test", s.Test},
		}
		for _, part := range parts {
			field := fmt.Sprintf("split[%d].%s", i, part.name)
			if err := part.p.Check(field); err != nil {
				return err
			}
			if part.p.Cols() != nfeat {
				return yerrors.NewDimensionError(field, nfeat, part.p.Cols(), 1)
			}
		}
	}
	return nil
}
