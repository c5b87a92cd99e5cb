package xgboost

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/metrics"
	scigoErrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// EarlyStopping handles early stopping logic
type EarlyStopping struct {
	Rounds          int     // Number of rounds without improvement to stop
	BestScore       float64 // Best validation score so far
	BestIteration   int     // Iteration with best score
	RoundsNoImprove int     // Current rounds without improvement
	Metric          string  // Metric to use for early stopping
	Enabled         bool    // Whether early stopping is enabled
}

// NewEarlyStopping creates a new early stopping handler. Both supported
// metrics are minimized.
func NewEarlyStopping(rounds int, metric string) *EarlyStopping {
	if rounds <= 0 {
		return &EarlyStopping{Enabled: false, BestScore: math.Inf(1)}
	}
	return &EarlyStopping{
		Rounds:    rounds,
		BestScore: math.Inf(1),
		Metric:    metric,
		Enabled:   true,
	}
}

// Update records the score of iteration and reports whether training should
// stop. Only a strictly lower score counts as an improvement.
func (es *EarlyStopping) Update(iteration int, score float64) bool {
	if score < es.BestScore {
		es.BestScore = score
		es.BestIteration = iteration
		es.RoundsNoImprove = 0
	} else {
		es.RoundsNoImprove++
	}
	return es.ShouldStop()
}

// ShouldStop returns whether training should stop
func (es *EarlyStopping) ShouldStop() bool {
	if !es.Enabled {
		return false
	}
	return es.RoundsNoImprove >= es.Rounds
}

// evaluate computes the named metric of pred against target.
func evaluate(metric string, target, pred []float64) (float64, error) {
	yTrue := mat.NewVecDense(len(target), target)
	yPred := mat.NewVecDense(len(pred), pred)
	switch metric {
	case MetricRMSE:
		return metrics.RMSE(yTrue, yPred)
	case MetricMAE:
		return metrics.MAE(yTrue, yPred)
	default:
		return 0, scigoErrors.NewValidationError("eval_metric", "unsupported metric", metric)
	}
}
