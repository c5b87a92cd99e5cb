package xgboost

import (
	"math"
	"runtime"

	scigoErrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// Objective names accepted by TrainingParams.Objective.
const (
	ObjectiveSquaredError     = "reg:squarederror"
	ObjectiveAbsoluteError    = "reg:absoluteerror"
	ObjectivePseudoHuberError = "reg:pseudohubererror"
)

// Evaluation metric names accepted by TrainingParams.EvalMetric.
const (
	MetricRMSE = "rmse"
	MetricMAE  = "mae"
)

// TrainingParams contains all training hyperparameters
type TrainingParams struct {
	// Boosting
	NumBoostRound int     `json:"n_estimators"`
	LearningRate  float64 `json:"learning_rate"`

	// Tree growth
	MaxDepth       int     `json:"max_depth"`
	MinChildWeight float64 `json:"min_child_weight"`
	Lambda         float64 `json:"reg_lambda"`
	Gamma          float64 `json:"gamma"`

	// Sampling
	ColsampleBytree float64 `json:"colsample_bytree"`
	Subsample       float64 `json:"subsample"`
	Seed            uint64  `json:"random_state"`

	// Histogram
	MaxBin int `json:"max_bin"`

	// Objective and evaluation
	Objective           string  `json:"objective"`
	EvalMetric          string  `json:"eval_metric"`
	HuberSlope          float64 `json:"huber_slope"`
	EarlyStoppingRounds int     `json:"early_stopping_rounds"`

	// Other
	NumThreads int `json:"n_jobs"`
	Verbosity  int `json:"verbosity"`
}

// DefaultParams returns the library defaults of XGBoost's sklearn interface.
func DefaultParams() TrainingParams {
	return TrainingParams{
		NumBoostRound:   100,
		LearningRate:    0.3,
		MaxDepth:        6,
		MinChildWeight:  1,
		Lambda:          1,
		ColsampleBytree: 1,
		Subsample:       1,
		MaxBin:          256,
		Objective:       ObjectiveSquaredError,
		EvalMetric:      MetricRMSE,
		HuberSlope:      1,
		NumThreads:      runtime.NumCPU(),
	}
}

// withDefaults fills zero values from DefaultParams. MinChildWeight, Lambda,
// Gamma, Seed, EarlyStoppingRounds and Verbosity are taken verbatim since
// zero is a meaningful setting for them.
func (p TrainingParams) withDefaults() TrainingParams {
	d := DefaultParams()
	if p.NumBoostRound == 0 {
		p.NumBoostRound = d.NumBoostRound
	}
	if p.LearningRate == 0 {
		p.LearningRate = d.LearningRate
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = d.MaxDepth
	}
	if p.ColsampleBytree == 0 {
		p.ColsampleBytree = d.ColsampleBytree
	}
	if p.Subsample == 0 {
		p.Subsample = d.Subsample
	}
	if p.MaxBin == 0 {
		p.MaxBin = d.MaxBin
	}
	if p.Objective == "" {
		p.Objective = d.Objective
	}
	if p.EvalMetric == "" {
		p.EvalMetric = d.EvalMetric
	}
	if p.HuberSlope == 0 {
		p.HuberSlope = d.HuberSlope
	}
	if p.NumThreads <= 0 {
		p.NumThreads = d.NumThreads
	}
	return p
}

// Validate checks parameter ranges.
func (p TrainingParams) Validate() error {
	switch {
	case p.NumBoostRound < 1:
		return scigoErrors.NewValidationError("n_estimators", "must be at least 1", p.NumBoostRound)
	case !(p.LearningRate > 0) || math.IsInf(p.LearningRate, 0):
		return scigoErrors.NewValidationError("learning_rate", "must be positive and finite", p.LearningRate)
	case p.MaxDepth < 1:
		return scigoErrors.NewValidationError("max_depth", "must be at least 1", p.MaxDepth)
	case p.MinChildWeight < 0:
		return scigoErrors.NewValidationError("min_child_weight", "must be non-negative", p.MinChildWeight)
	case p.Lambda < 0:
		return scigoErrors.NewValidationError("reg_lambda", "must be non-negative", p.Lambda)
	case p.Gamma < 0:
		return scigoErrors.NewValidationError("gamma", "must be non-negative", p.Gamma)
	case p.ColsampleBytree <= 0 || p.ColsampleBytree > 1:
		return scigoErrors.NewValidationError("colsample_bytree", "must be in (0, 1]", p.ColsampleBytree)
	case p.Subsample <= 0 || p.Subsample > 1:
		return scigoErrors.NewValidationError("subsample", "must be in (0, 1]", p.Subsample)
	case p.MaxBin < 2 || p.MaxBin > maxBinLimit:
		return scigoErrors.NewValidationError("max_bin", "must be in [2, 65535]", p.MaxBin)
	case p.EarlyStoppingRounds < 0:
		return scigoErrors.NewValidationError("early_stopping_rounds", "must be non-negative", p.EarlyStoppingRounds)
	case p.HuberSlope <= 0:
		return scigoErrors.NewValidationError("huber_slope", "must be positive", p.HuberSlope)
	}
	switch p.EvalMetric {
	case MetricRMSE, MetricMAE:
	default:
		return scigoErrors.NewValidationError("eval_metric", "unsupported metric", p.EvalMetric)
	}
	return nil
}
