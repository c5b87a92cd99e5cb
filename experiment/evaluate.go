package experiment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/datasets"
	"github.com/YuminosukeSato/yieldboost/metrics"
	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// Stages reported in FitError.
const (
	StageFit     = "fit"
	StagePredict = "predict"
	StageScore   = "score"
)

// SplitResult is the outcome of one split.
type SplitResult struct {
	Index         int    // 1-based display position
	ID            string // split metadata, may be empty
	R2            float64
	MAE           float64
	BestIteration int
	Predictions   *mat.VecDense // clamped test predictions
	Truth         *mat.VecDense // test targets
}

// EvaluateSplit fits a fresh XGBRegressor on split and scores it on the test
// partition. index is the 0-based position of split in its dataset.
func EvaluateSplit(cfg Config, index int, split datasets.Split) (SplitResult, error) {
	return evaluateWith(NewXGBModel, cfg, index, split)
}

func evaluateWith(newModel ModelFactory, cfg Config, index int, split datasets.Split) (res SplitResult, err error) {
	display := index + 1
	// gonum panics on shape errors; report them as a failed fit of this split
	defer func() {
		if r := recover(); r != nil {
			err = yerrors.NewFitError(display, StageFit, yerrors.NewPanicError("experiment.EvaluateSplit", r))
		}
	}()

	for _, part := range []struct {
		name string
		p    datasets.Partition
	}{{"train", split.Train}, {"valid", split.Valid}, {"test", split.Test}} {
		if err := part.p.Check(part.name); err != nil {
			return SplitResult{}, yerrors.NewFitError(display, StageFit, err)
		}
	}

	m := newModel(cfg)
	if err := m.FitWithEvalSet(split.Train.X, split.Train.Target(), split.Valid.X, split.Valid.Target()); err != nil {
		return SplitResult{}, yerrors.NewFitError(display, StageFit, err)
	}

	raw, err := m.Predict(split.Test.X)
	if err != nil {
		return SplitResult{}, yerrors.NewFitError(display, StagePredict, err)
	}
	pred := toVec(raw)
	ClampNonNegative(pred)

	truth := mat.VecDenseCopyOf(split.Test.Target())
	r2, err := metrics.R2Score(truth, pred)
	if err != nil {
		return SplitResult{}, yerrors.NewFitError(display, StageScore, err)
	}
	mae, err := metrics.MAE(truth, pred)
	if err != nil {
		return SplitResult{}, yerrors.NewFitError(display, StageScore, err)
	}

	return SplitResult{
		Index:         display,
		ID:            split.ID,
		R2:            r2,
		MAE:           mae,
		BestIteration: m.BestIteration(),
		Predictions:   pred,
		Truth:         truth,
	}, nil
}

// ClampNonNegative sets every element below zero to exactly zero.
func ClampNonNegative(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}

// toVec copies an n×1 prediction matrix into a new vector.
func toVec(m mat.Matrix) *mat.VecDense {
	if v, ok := m.(*mat.VecDense); ok {
		return mat.VecDenseCopyOf(v)
	}
	rows, _ := m.Dims()
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, m.At(i, 0))
	}
	return out
}
