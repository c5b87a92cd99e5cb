// Package model はモデル共通の学習状態管理とインターフェースを提供する
package model

import (
	"github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// BaseEstimator は学習済みかどうかと学習時の特徴量数を保持する。
// 回帰モデルに埋め込んで使う。
type BaseEstimator struct {
	fitted    bool
	nFeatures int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.fitted
}

// SetFitted は学習時の特徴量数を記録し、学習済み状態にする
func (e *BaseEstimator) SetFitted(nFeatures int) {
	e.fitted = true
	e.nFeatures = nFeatures
}

// NFeatures は学習時の特徴量数を返す（未学習なら0）
func (e *BaseEstimator) NFeatures() int {
	return e.nFeatures
}

// Reset はモデルを未学習状態に戻す
func (e *BaseEstimator) Reset() {
	e.fitted = false
	e.nFeatures = 0
}

// CheckFitted は未学習なら NotFittedError を返す
func (e *BaseEstimator) CheckFitted(modelName, method string) error {
	if !e.fitted {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// CheckFeatures は予測時の列数が学習時と一致するか検証する
func (e *BaseEstimator) CheckFeatures(op string, cols int) error {
	if cols != e.nFeatures {
		return errors.NewDimensionError(op, e.nFeatures, cols, 1)
	}
	return nil
}
