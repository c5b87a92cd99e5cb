package xgboost

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/core/parallel"
	scigoErrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
	"github.com/YuminosukeSato/yieldboost/pkg/log"
)

// kRtEps is the smallest loss reduction accepted as a split.
const kRtEps = 1e-6

// parallelRowThreshold is the node size below which split search stays on
// one goroutine.
const parallelRowThreshold = 2048

// EvalSetName is the history key of the (single) evaluation set.
const EvalSetName = "validation_0"

// Trainer implements depth-wise histogram boosting with second-order gain.
type Trainer struct {
	params    TrainingParams
	objective ObjectiveFunction
	rng       *rand.Rand
	logger    log.Logger

	// Training data
	binned    *BinnedMatrix
	trainRows [][]float64
	y         []float64

	// Evaluation data
	evalRows [][]float64
	evalY    []float64

	// Cached raw predictions
	trainPred []float64
	evalPred  []float64

	gradients []float64
	hessians  []float64

	trees         []Tree
	baseScore     float64
	earlyStopping *EarlyStopping
	history       map[string][]float64
}

// SplitInfo contains information about a potential split
type SplitInfo struct {
	Feature     int
	Bin         int
	Threshold   float64
	Gain        float64
	DefaultLeft bool
}

// NewTrainer creates a trainer; zero-valued params take library defaults.
func NewTrainer(params TrainingParams) *Trainer {
	params = params.withDefaults()
	return &Trainer{
		params: params,
		rng:    rand.New(rand.NewPCG(params.Seed, params.Seed)),
		logger: log.GetLoggerWithName("xgboost.trainer"),
	}
}

// Params returns the effective training parameters.
func (t *Trainer) Params() TrainingParams {
	return t.params
}

// History returns the per-round eval metric keyed by EvalSetName.
func (t *Trainer) History() map[string][]float64 {
	return t.history
}

// Fit trains a booster on (X, y). When evalX is non-nil, the eval metric is
// computed on (evalX, evalY) after every round and drives early stopping.
func (t *Trainer) Fit(X mat.Matrix, y []float64, evalX mat.Matrix, evalY []float64) (*Booster, error) {
	if err := t.params.Validate(); err != nil {
		return nil, err
	}
	objective, err := CreateObjectiveFunction(t.params.Objective, &t.params)
	if err != nil {
		return nil, err
	}
	t.objective = objective

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, scigoErrors.ErrEmptyData
	}
	if len(y) != rows {
		return nil, scigoErrors.NewDimensionError("Fit", rows, len(y), 0)
	}
	if evalX == nil && t.params.EarlyStoppingRounds > 0 {
		return nil, scigoErrors.NewValidationError("eval_set", "early stopping requires an evaluation set", nil)
	}
	if evalX != nil {
		evalRows, evalCols := evalX.Dims()
		if evalRows == 0 {
			return nil, scigoErrors.ErrEmptyData
		}
		if evalCols != cols {
			return nil, scigoErrors.NewDimensionError("Fit", cols, evalCols, 1)
		}
		if len(evalY) != evalRows {
			return nil, scigoErrors.NewDimensionError("Fit", evalRows, len(evalY), 0)
		}
	}

	t.initialize(X, y, evalX, evalY)

	for iter := 0; iter < t.params.NumBoostRound; iter++ {
		t.calculateGradients()
		if err := scigoErrors.CheckNumericalStability("gradient", t.gradients, iter); err != nil {
			return nil, err
		}

		sampleRows := t.sampleRows()
		features := t.sampleFeatures()
		tree := t.buildTree(sampleRows, features)
		t.trees = append(t.trees, tree)
		t.updatePredictions(&tree)

		if t.evalRows == nil {
			continue
		}

		score, err := evaluate(t.params.EvalMetric, t.evalY, t.evalPred)
		if err != nil {
			return nil, err
		}
		if err := scigoErrors.CheckScalar("eval_metric", score, iter); err != nil {
			return nil, err
		}
		t.history[EvalSetName] = append(t.history[EvalSetName], score)

		if t.params.Verbosity > 0 && iter%100 == 0 {
			t.logger.Debug("Training progress",
				log.IterationKey, iter,
				log.LossKey, score,
			)
		}

		if t.earlyStopping.Update(iter, score) {
			if t.params.Verbosity > 0 {
				t.logger.Info("Early stopping",
					log.IterationKey, iter,
					log.BestIterationKey, t.earlyStopping.BestIteration,
					log.LossKey, t.earlyStopping.BestScore,
				)
			}
			break
		}
	}

	return t.GetModel(), nil
}

// GetModel returns the booster built so far.
func (t *Trainer) GetModel() *Booster {
	b := &Booster{
		Trees:         t.trees,
		BaseScore:     t.baseScore,
		NumFeatures:   t.binned.Cols,
		Objective:     t.objective.Name(),
		BestIteration: len(t.trees) - 1,
		BestScore:     math.NaN(),
	}
	if t.evalRows != nil && len(t.history[EvalSetName]) > 0 {
		b.BestIteration = t.earlyStopping.BestIteration
		b.BestScore = t.earlyStopping.BestScore
	}
	return b
}

// initialize quantizes the training matrix and seeds the prediction caches
// with the base score.
func (t *Trainer) initialize(X mat.Matrix, y []float64, evalX mat.Matrix, evalY []float64) {
	rows, _ := X.Dims()

	t.binned = NewBinnedMatrix(X, t.params.MaxBin, t.params.NumThreads)
	t.trainRows = denseRows(X)
	t.y = y
	t.baseScore = t.objective.GetInitScore(y)

	t.trainPred = make([]float64, rows)
	for i := range t.trainPred {
		t.trainPred[i] = t.baseScore
	}
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)

	t.trees = nil
	t.history = make(map[string][]float64)
	t.earlyStopping = NewEarlyStopping(t.params.EarlyStoppingRounds, t.params.EvalMetric)

	t.evalRows, t.evalY, t.evalPred = nil, nil, nil
	if evalX != nil {
		t.evalRows = denseRows(evalX)
		t.evalY = evalY
		t.evalPred = make([]float64, len(t.evalRows))
		for i := range t.evalPred {
			t.evalPred[i] = t.baseScore
		}
	}
}

func denseRows(X mat.Matrix) [][]float64 {
	rows, _ := X.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, X)
	}
	return out
}

func (t *Trainer) calculateGradients() {
	for i, p := range t.trainPred {
		t.gradients[i] = t.objective.CalculateGradient(p, t.y[i])
		t.hessians[i] = t.objective.CalculateHessian(p, t.y[i])
	}
}

// sampleRows draws round(Subsample*n) distinct rows, at least one.
func (t *Trainer) sampleRows() []int {
	n := t.binned.Rows
	if t.params.Subsample >= 1 {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	k := int(math.Round(t.params.Subsample * float64(n)))
	if k < 1 {
		k = 1
	}
	picked := t.rng.Perm(n)[:k]
	sort.Ints(picked)
	return picked
}

// sampleFeatures draws ceil(ColsampleBytree*nFeatures) distinct columns.
func (t *Trainer) sampleFeatures() []int {
	n := t.binned.Cols
	if t.params.ColsampleBytree >= 1 {
		all := make([]int, n)
		for j := range all {
			all[j] = j
		}
		return all
	}
	k := int(math.Ceil(t.params.ColsampleBytree * float64(n)))
	if k < 1 {
		k = 1
	}
	picked := t.rng.Perm(n)[:k]
	sort.Ints(picked)
	return picked
}

// buildTree grows one tree over rows using only the given features.
func (t *Trainer) buildTree(rows, features []int) Tree {
	tree := Tree{Nodes: make([]Node, 0, 64)}
	t.buildNode(&tree, rows, features, 0)
	return tree
}

// buildNode appends the node for rows and, if a worthwhile split exists,
// recurses into both children. It returns the new node's index.
func (t *Trainer) buildNode(tree *Tree, rows, features []int, depth int) int {
	id := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, Node{LeftChild: -1, RightChild: -1})
	if depth > tree.MaxDepth {
		tree.MaxDepth = depth
	}

	var sumGrad, sumHess float64
	for _, r := range rows {
		sumGrad += t.gradients[r]
		sumHess += t.hessians[r]
	}
	tree.Nodes[id].SumHess = sumHess

	if depth < t.params.MaxDepth && len(rows) >= 2 {
		split := t.findBestSplit(rows, features, sumGrad, sumHess)
		if split.Gain > kRtEps {
			left, right := t.partition(rows, split)

			tree.Nodes[id].SplitFeature = split.Feature
			tree.Nodes[id].Threshold = split.Threshold
			tree.Nodes[id].DefaultLeft = split.DefaultLeft
			tree.Nodes[id].Gain = split.Gain

			l := t.buildNode(tree, left, features, depth+1)
			r := t.buildNode(tree, right, features, depth+1)
			tree.Nodes[id].LeftChild = l
			tree.Nodes[id].RightChild = r
			return id
		}
	}

	tree.Nodes[id].LeafValue = t.leafWeight(sumGrad, sumHess) * t.params.LearningRate
	return id
}

func (t *Trainer) leafWeight(sumGrad, sumHess float64) float64 {
	return -sumGrad / (sumHess + t.params.Lambda)
}

func (t *Trainer) score(sumGrad, sumHess float64) float64 {
	return sumGrad * sumGrad / (sumHess + t.params.Lambda)
}

// calculateSplitGain is ½[G_L²/(H_L+λ) + G_R²/(H_R+λ) − G²/(H+λ)] − γ.
func (t *Trainer) calculateSplitGain(gl, hl, gr, hr, parentScore float64) float64 {
	return 0.5*(t.score(gl, hl)+t.score(gr, hr)-parentScore) - t.params.Gamma
}

// findBestSplit evaluates every candidate feature and returns the best split.
// Ties keep the lowest feature index and bin so the result is independent of
// scheduling.
func (t *Trainer) findBestSplit(rows, features []int, sumGrad, sumHess float64) SplitInfo {
	candidates := make([]SplitInfo, len(features))

	workers := t.params.NumThreads
	if len(rows) < parallelRowThreshold {
		workers = 1
	}
	parallel.ParallelizeN(len(features), workers, func(start, end int) {
		for k := start; k < end; k++ {
			candidates[k] = t.findBestSplitForFeature(features[k], rows, sumGrad, sumHess)
		}
	})

	best := SplitInfo{Feature: -1, Gain: math.Inf(-1)}
	for _, c := range candidates {
		if c.Gain > best.Gain {
			best = c
		}
	}
	return best
}

func (t *Trainer) findBestSplitForFeature(feature int, rows []int, sumGrad, sumHess float64) SplitInfo {
	best := SplitInfo{Feature: feature, Gain: math.Inf(-1)}
	mapper := &t.binned.Mappers[feature]
	numBins := mapper.NumBins()
	if numBins < 2 {
		return best
	}

	hist := buildHistogram(t.binned.Bins[feature], rows, t.gradients, t.hessians, numBins)
	hasMissing := hist.MissingHess > 0 || hist.MissingGrad != 0
	parentScore := t.score(sumGrad, sumHess)
	minChild := t.params.MinChildWeight

	var cumGrad, cumHess float64
	for b := 0; b < numBins-1; b++ {
		cumGrad += hist.SumGrad[b]
		cumHess += hist.SumHess[b]

		// missing values to the left first; without missing values this is
		// the only enumeration and the default direction is left
		gl, hl := cumGrad+hist.MissingGrad, cumHess+hist.MissingHess
		gr, hr := sumGrad-gl, sumHess-hl
		if hl >= minChild && hr >= minChild {
			if gain := t.calculateSplitGain(gl, hl, gr, hr, parentScore); gain > best.Gain {
				best = SplitInfo{Feature: feature, Bin: b, Threshold: mapper.UpperBounds[b], Gain: gain, DefaultLeft: true}
			}
		}

		if !hasMissing {
			continue
		}
		gl, hl = cumGrad, cumHess
		gr, hr = sumGrad-gl, sumHess-hl
		if hl >= minChild && hr >= minChild {
			if gain := t.calculateSplitGain(gl, hl, gr, hr, parentScore); gain > best.Gain {
				best = SplitInfo{Feature: feature, Bin: b, Threshold: mapper.UpperBounds[b], Gain: gain, DefaultLeft: false}
			}
		}
	}
	return best
}

// partition routes rows by the split's bin, matching Tree.Predict on raw values.
func (t *Trainer) partition(rows []int, split SplitInfo) (left, right []int) {
	bins := t.binned.Bins[split.Feature]
	for _, r := range rows {
		b := bins[r]
		goLeft := split.DefaultLeft
		if b != missingBin {
			goLeft = int(b) <= split.Bin
		}
		if goLeft {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}

// updatePredictions adds the new tree's output to the cached predictions of
// every training row (sampled or not) and every eval row.
func (t *Trainer) updatePredictions(tree *Tree) {
	add := func(rows [][]float64, pred []float64) {
		parallel.ParallelizeWithThreshold(len(rows), parallelRowThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				pred[i] += tree.Predict(rows[i])
			}
		})
	}
	add(t.trainRows, t.trainPred)
	if t.evalRows != nil {
		add(t.evalRows, t.evalPred)
	}
}
