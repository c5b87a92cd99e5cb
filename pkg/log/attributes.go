// Package log defines standard attribute keys for training runs.
//
// The keys follow a hierarchical naming convention (e.g. "data.samples",
// "metrics.r2_score") so log lines can be filtered by category.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "XGBRegressor".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component emitted the record.
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase ("training", "validation", "testing").
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// SplitKey is the 1-based position of a cross-validation split.
	SplitKey = "data.split"

	// SplitsKey is the number of splits in a dataset.
	SplitsKey = "data.splits"

	// PathKey is a file system path being read or written.
	PathKey = "data.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records an evaluation loss (lower is better).
	LossKey = "metrics.loss"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// MAEKey records mean absolute error for regression.
	MAEKey = "metrics.mae"

	// IterationKey records the current boosting round.
	IterationKey = "training.iteration"

	// BestIterationKey records the round with the best validation score.
	BestIterationKey = "training.best_iteration"
)

// Hyperparameters and Configuration
const (
	// LearningRateKey records the shrinkage applied to each tree.
	LearningRateKey = "hyperparams.learning_rate"

	// MaxDepthKey records the maximum tree depth.
	MaxDepthKey = "hyperparams.max_depth"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationLoad    = "load"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"
)
