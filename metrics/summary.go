package metrics

import (
	"github.com/YuminosukeSato/yieldboost/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Mean は算術平均を計算する
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewValueError("Mean", "empty sequence")
	}
	return stat.Mean(values, nil), nil
}

// SampleStdDev は不偏標本標準偏差（除数 n-1）を計算する
//
// 要素数が2未満の場合は定義されないため ValueError を返す。
func SampleStdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, errors.NewValueError("SampleStdDev", "need at least 2 values to compute a sample standard deviation")
	}
	return stat.StdDev(values, nil), nil
}

// MeanStdDev は平均と標本標準偏差をまとめて返す
func MeanStdDev(values []float64) (mean, std float64, err error) {
	if len(values) < 2 {
		return 0, 0, errors.NewValueError("MeanStdDev", "need at least 2 values to compute a sample standard deviation")
	}
	mean, std = stat.MeanStdDev(values, nil)
	return mean, std, nil
}
