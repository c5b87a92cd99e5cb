// Package experiment runs the per-split train/evaluate loop and reports the
// aggregate accuracy of the yield regressor.
package experiment

import (
	"github.com/YuminosukeSato/yieldboost/core/model"
	"github.com/YuminosukeSato/yieldboost/sklearn/xgboost"
)

// Config is the fixed model configuration applied to every split.
type Config struct {
	RoundCap              int     // maximum boosting rounds; early stopping ends training first
	LearningRate          float64 // shrinkage per tree
	MaxDepth              int
	MinChildWeight        float64 // minimum hessian sum per child
	Colsample             float64 // column fraction per tree
	Subsample             float64 // row fraction per tree
	Seed                  uint64
	EarlyStoppingPatience int // rounds without validation improvement before stopping

	// NumThreads bounds the goroutines used inside one fit; 0 means all cores.
	NumThreads int
}

// DefaultConfig returns the configuration of the AZ yield experiment.
func DefaultConfig() Config {
	return Config{
		RoundCap:              999999,
		LearningRate:          0.01,
		MaxDepth:              12,
		MinChildWeight:        6,
		Colsample:             0.6,
		Subsample:             0.8,
		Seed:                  42,
		EarlyStoppingPatience: 10,
	}
}

// Options translates the configuration into regressor options.
func (c Config) Options() []xgboost.Option {
	opts := []xgboost.Option{
		xgboost.WithNEstimators(c.RoundCap),
		xgboost.WithLearningRate(c.LearningRate),
		xgboost.WithMaxDepth(c.MaxDepth),
		xgboost.WithMinChildWeight(c.MinChildWeight),
		xgboost.WithColsampleBytree(c.Colsample),
		xgboost.WithSubsample(c.Subsample),
		xgboost.WithRandomState(c.Seed),
		xgboost.WithEarlyStoppingRounds(c.EarlyStoppingPatience),
	}
	if c.NumThreads > 0 {
		opts = append(opts, xgboost.WithNumThreads(c.NumThreads))
	}
	return opts
}

// ModelFactory builds a fresh, unfitted model for one split.
type ModelFactory func(cfg Config) model.EarlyStoppingRegressor

// NewXGBModel is the default ModelFactory.
func NewXGBModel(cfg Config) model.EarlyStoppingRegressor {
	return xgboost.NewXGBRegressor(cfg.Options()...)
}
