package xgboost

import (
	"math"
	"sort"

	scigoErrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// ObjectiveFunction defines the interface for different objective functions
type ObjectiveFunction interface {
	// CalculateGradient calculates the gradient for a single sample
	CalculateGradient(prediction, target float64) float64

	// CalculateHessian calculates the hessian for a single sample
	CalculateHessian(prediction, target float64) float64

	// CalculateLoss calculates the loss for a single sample
	CalculateLoss(prediction, target float64) float64

	// GetInitScore returns the base score for this objective
	GetInitScore(targets []float64) float64

	// Name returns the XGBoost name of the objective
	Name() string
}

// CreateObjectiveFunction returns the objective registered under name.
func CreateObjectiveFunction(name string, params *TrainingParams) (ObjectiveFunction, error) {
	switch name {
	case ObjectiveSquaredError, "reg:linear":
		return &SquaredErrorObjective{}, nil
	case ObjectiveAbsoluteError:
		return &AbsoluteErrorObjective{}, nil
	case ObjectivePseudoHuberError:
		slope := 1.0
		if params != nil && params.HuberSlope > 0 {
			slope = params.HuberSlope
		}
		return &PseudoHuberObjective{slope: slope}, nil
	default:
		return nil, scigoErrors.NewValidationError("objective", "unsupported objective", name)
	}
}

// SquaredErrorObjective implements reg:squarederror.
type SquaredErrorObjective struct{}

func (o *SquaredErrorObjective) CalculateGradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *SquaredErrorObjective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *SquaredErrorObjective) CalculateLoss(prediction, target float64) float64 {
	diff := prediction - target
	return 0.5 * diff * diff
}

func (o *SquaredErrorObjective) GetInitScore(targets []float64) float64 {
	return mean(targets)
}

func (o *SquaredErrorObjective) Name() string {
	return ObjectiveSquaredError
}

// AbsoluteErrorObjective implements reg:absoluteerror. The hessian is fixed
// at 1 so leaf weights become a scaled mean of gradient signs.
type AbsoluteErrorObjective struct{}

func (o *AbsoluteErrorObjective) CalculateGradient(prediction, target float64) float64 {
	switch diff := prediction - target; {
	case diff > 0:
		return 1.0
	case diff < 0:
		return -1.0
	default:
		return 0.0
	}
}

func (o *AbsoluteErrorObjective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *AbsoluteErrorObjective) CalculateLoss(prediction, target float64) float64 {
	return math.Abs(prediction - target)
}

func (o *AbsoluteErrorObjective) GetInitScore(targets []float64) float64 {
	return median(targets)
}

func (o *AbsoluteErrorObjective) Name() string {
	return ObjectiveAbsoluteError
}

// PseudoHuberObjective implements reg:pseudohubererror with slope δ:
// loss = δ²(sqrt(1+(r/δ)²) − 1).
type PseudoHuberObjective struct {
	slope float64
}

func (o *PseudoHuberObjective) CalculateGradient(prediction, target float64) float64 {
	r := prediction - target
	z := r / o.slope
	return r / math.Sqrt(1+z*z)
}

func (o *PseudoHuberObjective) CalculateHessian(prediction, target float64) float64 {
	z := (prediction - target) / o.slope
	s := math.Sqrt(1 + z*z)
	return 1 / (s * s * s)
}

func (o *PseudoHuberObjective) CalculateLoss(prediction, target float64) float64 {
	z := (prediction - target) / o.slope
	return o.slope * o.slope * (math.Sqrt(1+z*z) - 1)
}

func (o *PseudoHuberObjective) GetInitScore(targets []float64) float64 {
	return mean(targets)
}

func (o *PseudoHuberObjective) Name() string {
	return ObjectivePseudoHuberError
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
