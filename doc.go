// Package yieldboost reproduces the AZ reaction-yield regression experiment:
// one boosted-tree regressor per cross-validation split, scored by R² and MAE,
// with the mean and sample standard deviation reported across splits.
//
// # Packages
//
//   - datasets: split types and the gob (optionally xz) dataset codec
//   - sklearn/xgboost: histogram gradient boosting with early stopping
//   - experiment: the per-split loop, aggregation, and opt-in diagnostics
//   - metrics: regression metrics and summary statistics
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Quick Start
//
//	ds, err := datasets.Load("data/az/az-2048-3-true.gob")
//	if err != nil {
//	    log.LogError(err, "load failed")
//	    return
//	}
//	summary, err := experiment.NewRunner(experiment.DefaultConfig()).Run(ds)
//
// The runner prints "Test <n> <r2> <mae>" after each split and then
//
//	Tests R2: <mean> <stdev>
//	Tests MAE: <mean> <stdev>
//
// # Error Handling
//
// Loading failures are *errors.DataLoadError; a failure on any split is an
// *errors.FitError naming the 1-based split, and aborts the run before the
// summary is printed.
//
// # Logging
//
// Diagnostics go to stderr as zerolog JSON lines at level warn by default:
//
//	log.SetupLogger("info")
package yieldboost
