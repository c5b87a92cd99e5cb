package xgboost

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/core/model"
	"github.com/YuminosukeSato/yieldboost/metrics"
	scigoErrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
	"github.com/YuminosukeSato/yieldboost/pkg/log"
)

var _ model.EarlyStoppingRegressor = (*XGBRegressor)(nil)

// EvalSet is a held-out (X, y) pair monitored during training.
type EvalSet struct {
	X mat.Matrix
	Y mat.Matrix
}

// XGBRegressor implements an XGBoost-style regressor with scikit-learn compatible API
type XGBRegressor struct {
	model.BaseEstimator

	// Model
	Booster *Booster

	params  TrainingParams
	history map[string][]float64
}

// Option configures an XGBRegressor.
type Option func(*XGBRegressor)

// NewXGBRegressor creates a regressor with XGBoost's defaults, then applies opts.
func NewXGBRegressor(opts ...Option) *XGBRegressor {
	r := &XGBRegressor{params: DefaultParams()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithNEstimators sets the maximum number of boosting rounds
func WithNEstimators(n int) Option {
	return func(r *XGBRegressor) { r.params.NumBoostRound = n }
}

// WithLearningRate sets the learning rate (eta)
func WithLearningRate(lr float64) Option {
	return func(r *XGBRegressor) { r.params.LearningRate = lr }
}

// WithMaxDepth sets the maximum tree depth
func WithMaxDepth(d int) Option {
	return func(r *XGBRegressor) { r.params.MaxDepth = d }
}

// WithMinChildWeight sets the minimum hessian sum of a child
func WithMinChildWeight(w float64) Option {
	return func(r *XGBRegressor) { r.params.MinChildWeight = w }
}

// WithColsampleBytree sets the column fraction sampled per tree
func WithColsampleBytree(f float64) Option {
	return func(r *XGBRegressor) { r.params.ColsampleBytree = f }
}

// WithSubsample sets the row fraction sampled per tree
func WithSubsample(f float64) Option {
	return func(r *XGBRegressor) { r.params.Subsample = f }
}

// WithRegLambda sets the L2 regularization on leaf weights
func WithRegLambda(l float64) Option {
	return func(r *XGBRegressor) { r.params.Lambda = l }
}

// WithGamma sets the minimum loss reduction required to split
func WithGamma(g float64) Option {
	return func(r *XGBRegressor) { r.params.Gamma = g }
}

// WithMaxBin sets the maximum number of histogram bins per feature
func WithMaxBin(n int) Option {
	return func(r *XGBRegressor) { r.params.MaxBin = n }
}

// WithRandomState sets the random seed
func WithRandomState(seed uint64) Option {
	return func(r *XGBRegressor) { r.params.Seed = seed }
}

// WithEarlyStoppingRounds sets the early stopping patience
func WithEarlyStoppingRounds(n int) Option {
	return func(r *XGBRegressor) { r.params.EarlyStoppingRounds = n }
}

// WithObjective sets the objective function
func WithObjective(name string) Option {
	return func(r *XGBRegressor) { r.params.Objective = name }
}

// WithEvalMetric sets the metric monitored on the eval set
func WithEvalMetric(name string) Option {
	return func(r *XGBRegressor) { r.params.EvalMetric = name }
}

// WithNumThreads sets the goroutine count used for training and prediction
func WithNumThreads(n int) Option {
	return func(r *XGBRegressor) { r.params.NumThreads = n }
}

// WithVerbosity enables trainer progress logging when v > 0
func WithVerbosity(v int) Option {
	return func(r *XGBRegressor) { r.params.Verbosity = v }
}

// Fit trains the regressor. At most one eval set is accepted; it is required
// when early stopping is enabled.
func (r *XGBRegressor) Fit(X, y mat.Matrix, evalSet ...EvalSet) (err error) {
	defer scigoErrors.Recover(&err, "XGBRegressor.Fit")

	r.Reset()

	if len(evalSet) > 1 {
		return scigoErrors.NewValidationError("eval_set", "only one evaluation set is supported", len(evalSet))
	}

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return scigoErrors.ErrEmptyData
	}
	target, err := targetVector("y", rows, y)
	if err != nil {
		return err
	}

	var evalX mat.Matrix
	var evalY []float64
	if len(evalSet) == 1 {
		evalRows, evalCols := evalSet[0].X.Dims()
		if evalRows == 0 {
			return scigoErrors.ErrEmptyData
		}
		if evalCols != cols {
			return scigoErrors.NewDimensionError("Fit", cols, evalCols, 1)
		}
		if evalY, err = targetVector("eval_set.y", evalRows, evalSet[0].Y); err != nil {
			return err
		}
		evalX = evalSet[0].X
	}

	logger := log.GetLoggerWithName("xgboost.regressor")
	logger.Debug("Training XGBRegressor",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.LearningRateKey, r.params.LearningRate,
		log.MaxDepthKey, r.params.MaxDepth,
	)

	trainer := NewTrainer(r.params)
	booster, err := trainer.Fit(X, target, evalX, evalY)
	if err != nil {
		return scigoErrors.Wrap(err, "training failed")
	}

	r.Booster = booster
	r.history = trainer.History()
	r.SetFitted(cols)

	logger.Debug("Training completed",
		log.IterationKey, len(booster.Trees),
		log.BestIterationKey, booster.BestIteration,
	)
	return nil
}

// FitWithEvalSet implements model.EarlyStoppingRegressor.
func (r *XGBRegressor) FitWithEvalSet(X, y, evalX, evalY mat.Matrix) error {
	return r.Fit(X, y, EvalSet{X: evalX, Y: evalY})
}

// targetVector flattens an n×1 target and rejects non-finite values.
func targetVector(name string, rows int, y mat.Matrix) ([]float64, error) {
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, scigoErrors.NewDimensionError("Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, scigoErrors.NewDimensionError("Fit", 1, yCols, 1)
	}
	out := make([]float64, rows)
	for i := range out {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, scigoErrors.NewValidationError(name, "target must be finite", v)
		}
		out[i] = v
	}
	return out, nil
}

// Predict uses the trees up to and including the best iteration.
func (r *XGBRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := r.CheckFitted("XGBRegressor", "Predict"); err != nil {
		return nil, err
	}
	return r.PredictWithLimit(X, r.Booster.BestNTreeLimit())
}

// PredictWithLimit uses the first limit trees; limit <= 0 means all trees.
func (r *XGBRegressor) PredictWithLimit(X mat.Matrix, limit int) (mat.Matrix, error) {
	if err := r.CheckFitted("XGBRegressor", "PredictWithLimit"); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if err := r.CheckFeatures("Predict", cols); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, scigoErrors.ErrEmptyData
	}
	return r.Booster.Predict(X, limit, r.params.NumThreads), nil
}

// Score returns the coefficient of determination R^2 of the prediction
func (r *XGBRegressor) Score(X, y mat.Matrix) (float64, error) {
	if err := r.CheckFitted("XGBRegressor", "Score"); err != nil {
		return 0, err
	}

	predictions, err := r.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	yVec := mat.NewVecDense(rows, nil)
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, predictions.At(i, 0))
	}
	return metrics.R2Score(yVec, predVec)
}

// BestIteration returns the 0-based round with the best eval score.
func (r *XGBRegressor) BestIteration() int {
	if r.Booster == nil {
		return -1
	}
	return r.Booster.BestIteration
}

// BestScore returns the best eval score, NaN without an eval set.
func (r *XGBRegressor) BestScore() float64 {
	if r.Booster == nil {
		return math.NaN()
	}
	return r.Booster.BestScore
}

// EvalHistory returns the eval metric per round, keyed by EvalSetName.
func (r *XGBRegressor) EvalHistory() map[string][]float64 {
	return r.history
}

// FeatureImportances returns total split gain per feature over the trees
// used for prediction.
func (r *XGBRegressor) FeatureImportances() []float64 {
	if !r.IsFitted() {
		return nil
	}
	return r.Booster.FeatureImportance(r.Booster.BestNTreeLimit())
}

// GetParams returns the parameters of the regressor
func (r *XGBRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":          r.params.NumBoostRound,
		"learning_rate":         r.params.LearningRate,
		"max_depth":             r.params.MaxDepth,
		"min_child_weight":      r.params.MinChildWeight,
		"colsample_bytree":      r.params.ColsampleBytree,
		"subsample":             r.params.Subsample,
		"reg_lambda":            r.params.Lambda,
		"gamma":                 r.params.Gamma,
		"max_bin":               r.params.MaxBin,
		"random_state":          r.params.Seed,
		"early_stopping_rounds": r.params.EarlyStoppingRounds,
		"objective":             r.params.Objective,
		"eval_metric":           r.params.EvalMetric,
		"n_jobs":                r.params.NumThreads,
		"verbosity":             r.params.Verbosity,
	}
}
