package experiment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/core/model"
	"github.com/YuminosukeSato/yieldboost/datasets"
)

// fastConfig keeps the fixed hyperparameter shape but converges quickly on
// the small synthetic datasets used in tests.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RoundCap = 2000
	cfg.LearningRate = 0.1
	cfg.MaxDepth = 4
	cfg.MinChildWeight = 1
	return cfg
}

func linearDataset(splits int, slope, intercept float64) datasets.Dataset {
	return datasets.MakeLinear(datasets.LinearConfig{
		Splits: splits, Features: 2, Train: 200, Valid: 60, Test: 60,
		Slope: slope, Intercept: intercept, Noise: 0.05, Seed: 3,
	})
}

// stubModel returns a fixed prediction, or fails at fit time.
type stubModel struct {
	pred   func(X mat.Matrix) mat.Matrix
	fitErr error
}

func (s *stubModel) FitWithEvalSet(X, y, evalX, evalY mat.Matrix) error {
	return s.fitErr
}

func (s *stubModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	return s.pred(X), nil
}

func (s *stubModel) BestIteration() int {
	return 7
}

// constantFactory predicts v for every row.
func constantFactory(v float64, calls *int) ModelFactory {
	return func(Config) model.EarlyStoppingRegressor {
		if calls != nil {
			*calls++
		}
		return &stubModel{pred: func(X mat.Matrix) mat.Matrix {
			rows, _ := X.Dims()
			out := mat.NewVecDense(rows, nil)
			for i := 0; i < rows; i++ {
				out.SetVec(i, v)
			}
			return out
		}}
	}
}
