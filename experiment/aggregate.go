package experiment

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/yieldboost/metrics"
	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// Summary is the cross-split aggregate of a run.
type Summary struct {
	R2s  []float64
	MAEs []float64

	R2Mean  float64
	R2Std   float64
	MAEMean float64
	MAEStd  float64
}

// Aggregate computes mean and sample standard deviation of both sequences.
// Fewer than two values is an error since the deviation is undefined.
func Aggregate(r2s, maes []float64) (Summary, error) {
	if len(r2s) != len(maes) {
		return Summary{}, yerrors.NewDimensionError("Aggregate", len(r2s), len(maes), 0)
	}

	r2Mean, r2Std, err := metrics.MeanStdDev(r2s)
	if err != nil {
		return Summary{}, yerrors.Wrap(err, "aggregate R2")
	}
	maeMean, maeStd, err := metrics.MeanStdDev(maes)
	if err != nil {
		return Summary{}, yerrors.Wrap(err, "aggregate MAE")
	}

	return Summary{
		R2s:     r2s,
		MAEs:    maes,
		R2Mean:  r2Mean,
		R2Std:   r2Std,
		MAEMean: maeMean,
		MAEStd:  maeStd,
	}, nil
}

// Write prints the two summary lines.
func (s Summary) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Tests R2: %s %s\n", formatFloat(s.R2Mean), formatFloat(s.R2Std)); err != nil {
		return yerrors.Wrap(err, "write summary")
	}
	if _, err := fmt.Fprintf(w, "Tests MAE: %s %s\n", formatFloat(s.MAEMean), formatFloat(s.MAEStd)); err != nil {
		return yerrors.Wrap(err, "write summary")
	}
	return nil
}

// writeProgress prints the per-split line.
func writeProgress(w io.Writer, res SplitResult) error {
	_, err := fmt.Fprintf(w, "Test %d %s %s\n", res.Index, formatFloat(res.R2), formatFloat(res.MAE))
	return yerrors.Wrap(err, "write progress")
}

// formatFloat renders the shortest decimal that round-trips to v. Integral
// values keep a trailing ".0"; exponent notation is used below 1e-4 and from
// 1e16 on.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
