package model

import (
	"gonum.org/v1/gonum/mat"
)

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を n×1 行列で返す
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// EarlyStoppingRegressor は検証データによる早期終了付きで学習する回帰モデル
type EarlyStoppingRegressor interface {
	Predictor

	// FitWithEvalSet は (X, y) で学習し、(evalX, evalY) の評価値が
	// 改善しなくなった時点で学習を打ち切る
	FitWithEvalSet(X, y, evalX, evalY mat.Matrix) error

	// BestIteration は検証スコアが最良だったラウンド（0始まり）を返す
	BestIteration() int
}
