package experiment

import (
	"io"
	"os"
	"time"

	"github.com/YuminosukeSato/yieldboost/core/parallel"
	"github.com/YuminosukeSato/yieldboost/datasets"
	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
	"github.com/YuminosukeSato/yieldboost/pkg/log"
)

// Recorder receives results while a run progresses. RecordSummary is only
// called when every split succeeded.
type Recorder interface {
	RecordSplit(res SplitResult) error
	RecordSummary(s Summary) error
}

// Runner evaluates every split of a dataset and aggregates the metrics.
type Runner struct {
	Config Config

	// Workers > 1 trains that many splits concurrently. Output is identical
	// to a sequential run.
	Workers int

	// Out receives the progress and summary lines; nil means os.Stdout.
	Out io.Writer

	// NewModel builds the per-split model; nil means NewXGBModel.
	NewModel ModelFactory

	Recorders []Recorder
}

// NewRunner returns a sequential runner for cfg writing to os.Stdout.
func NewRunner(cfg Config) *Runner {
	return &Runner{Config: cfg, Workers: 1}
}

// Run evaluates ds in stored order. Each split prints its progress line as
// soon as it is scored; the summary is printed once all splits succeeded.
// The first failing split aborts the run.
func (r *Runner) Run(ds datasets.Dataset) (Summary, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	newModel := r.NewModel
	if newModel == nil {
		newModel = NewXGBModel
	}

	logger := log.GetLoggerWithName("experiment.runner")
	logger.Info("Starting run", log.SplitsKey, len(ds))
	start := time.Now()

	r2s := make([]float64, 0, len(ds))
	maes := make([]float64, 0, len(ds))
	report := func(res SplitResult) error {
		logger.Info("Split evaluated",
			log.SplitKey, res.Index,
			log.BestIterationKey, res.BestIteration,
			log.R2ScoreKey, res.R2,
			log.MAEKey, res.MAE,
		)
		if err := writeProgress(out, res); err != nil {
			return err
		}
		for _, rec := range r.Recorders {
			if err := rec.RecordSplit(res); err != nil {
				return yerrors.Wrapf(err, "record split %d", res.Index)
			}
		}
		r2s = append(r2s, res.R2)
		maes = append(maes, res.MAE)
		return nil
	}

	var err error
	if r.Workers > 1 {
		err = r.runParallel(ds, newModel, report)
	} else {
		err = r.runSequential(ds, newModel, report)
	}
	if err != nil {
		return Summary{}, err
	}

	summary, err := Aggregate(r2s, maes)
	if err != nil {
		return Summary{}, err
	}
	if err := summary.Write(out); err != nil {
		return Summary{}, err
	}
	for _, rec := range r.Recorders {
		if err := rec.RecordSummary(summary); err != nil {
			return Summary{}, yerrors.Wrap(err, "record summary")
		}
	}

	logger.Info("Run completed",
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.R2ScoreKey, summary.R2Mean,
		log.MAEKey, summary.MAEMean,
	)
	return summary, nil
}

func (r *Runner) runSequential(ds datasets.Dataset, newModel ModelFactory, report func(SplitResult) error) error {
	for i, split := range ds {
		res, err := evaluateWith(newModel, r.Config, i, split)
		if err != nil {
			return err
		}
		if err := report(res); err != nil {
			return err
		}
	}
	return nil
}

// runParallel trains all splits on a worker pool, then reports the results
// in split order up to the first failure.
func (r *Runner) runParallel(ds datasets.Dataset, newModel ModelFactory, report func(SplitResult) error) error {
	results := make([]SplitResult, len(ds))
	failed := parallel.ForEach(len(ds), r.Workers, func(i int) error {
		var err error
		results[i], err = evaluateWith(newModel, r.Config, i, ds[i])
		return err
	})

	// ForEach returns the lowest-index error, so every split before it succeeded.
	limit := len(ds)
	if failed != nil {
		limit = 0
		var fe *yerrors.FitError
		if yerrors.As(failed, &fe) && fe.Split > 0 {
			limit = fe.Split - 1
		}
	}
	for i := 0; i < limit; i++ {
		if err := report(results[i]); err != nil {
			return err
		}
	}
	return failed
}
