package experiment

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// PlotPredictions writes a parity plot (ground truth against prediction,
// with the y = x diagonal) as a PNG at path.
func PlotPredictions(path, title string, truth, pred *mat.VecDense) error {
	n := truth.Len()
	if pred.Len() != n {
		return yerrors.NewDimensionError("PlotPredictions", n, pred.Len(), 0)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "ground truth"
	p.Y.Label.Text = "prediction"

	pts := make(plotter.XYs, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		pts[i].X = truth.AtVec(i)
		pts[i].Y = pred.AtVec(i)
		lo = math.Min(lo, math.Min(pts[i].X, pts[i].Y))
		hi = math.Max(hi, math.Max(pts[i].X, pts[i].Y))
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return yerrors.Wrap(err, "failed to create scatter plot")
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 20, G: 80, B: 200, A: 200}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("test samples", scatter)

	diagonal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return yerrors.Wrap(err, "failed to create diagonal")
	}
	diagonal.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	diagonal.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(diagonal)
	p.Add(plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return yerrors.Wrap(err, "failed to save plot")
	}
	return nil
}

// ParityPlotter is a Recorder that draws one parity plot per split into Dir.
type ParityPlotter struct {
	Dir string
}

// RecordSplit implements Recorder.
func (p *ParityPlotter) RecordSplit(res SplitResult) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return yerrors.Wrap(err, "failed to create plot directory")
	}
	path := filepath.Join(p.Dir, fmt.Sprintf("parity_%d.png", res.Index))
	title := fmt.Sprintf("Test %d: R2 %.3f, MAE %.3f", res.Index, res.R2, res.MAE)
	return PlotPredictions(path, title, res.Truth, res.Predictions)
}

// RecordSummary implements Recorder.
func (p *ParityPlotter) RecordSummary(Summary) error {
	return nil
}
