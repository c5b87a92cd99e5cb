package xgboost

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/yieldboost/core/parallel"
)

// Node represents a single node in a regression tree
type Node struct {
	LeftChild  int // Left child node ID (-1 if leaf)
	RightChild int // Right child node ID (-1 if leaf)

	// Split information (for non-leaf nodes)
	SplitFeature int     // Feature index used for splitting
	Threshold    float64 // Samples with value <= Threshold go left
	DefaultLeft  bool    // Direction taken by missing values
	Gain         float64 // Loss reduction of the split

	// Leaf information (for leaf nodes)
	LeafValue float64 // Weight already scaled by the learning rate

	SumHess float64 // Hessian sum (cover) of the training rows reaching the node
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree represents a single tree of the ensemble. Nodes[0] is the root.
type Tree struct {
	Nodes    []Node
	MaxDepth int // Depth actually reached
}

// Predict returns the leaf value for one sample.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue
		}

		v := features[node.SplitFeature]
		switch {
		case math.IsNaN(v):
			if node.DefaultLeft {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		case v <= node.Threshold:
			nodeID = node.LeftChild
		default:
			nodeID = node.RightChild
		}
	}
}

// NumLeaves returns the number of leaves in the tree.
func (t *Tree) NumLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			n++
		}
	}
	return n
}

// Booster is a trained additive tree ensemble.
type Booster struct {
	Trees       []Tree
	BaseScore   float64
	NumFeatures int
	Objective   string

	// BestIteration is the 0-based round with the best eval score, or
	// len(Trees)-1 when training ran without an eval set.
	BestIteration int
	BestScore     float64
}

// BestNTreeLimit is the number of trees up to and including BestIteration.
func (b *Booster) BestNTreeLimit() int {
	return b.BestIteration + 1
}

// PredictRow sums the base score and the first limit trees for one sample.
// limit <= 0 or beyond the ensemble means all trees.
func (b *Booster) PredictRow(features []float64, limit int) float64 {
	if limit <= 0 || limit > len(b.Trees) {
		limit = len(b.Trees)
	}
	pred := b.BaseScore
	for i := 0; i < limit; i++ {
		pred += b.Trees[i].Predict(features)
	}
	return pred
}

// Predict scores every row of X with the first limit trees, splitting rows
// across numThreads goroutines.
func (b *Booster) Predict(X mat.Matrix, limit, numThreads int) *mat.VecDense {
	rows, cols := X.Dims()
	out := make([]float64, rows)

	parallel.ParallelizeN(rows, numThreads, func(start, end int) {
		row := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			out[i] = b.PredictRow(row, limit)
		}
	})
	return mat.NewVecDense(rows, out)
}

// FeatureImportance returns total gain per feature over the first limit trees.
func (b *Booster) FeatureImportance(limit int) []float64 {
	if limit <= 0 || limit > len(b.Trees) {
		limit = len(b.Trees)
	}
	imp := make([]float64, b.NumFeatures)
	for _, t := range b.Trees[:limit] {
		for _, n := range t.Nodes {
			if !n.IsLeaf() {
				imp[n.SplitFeature] += n.Gain
			}
		}
	}
	return imp
}
