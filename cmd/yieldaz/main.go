// Command yieldaz trains one boosted-tree regressor per cross-validation split
// of the AZ yield dataset and prints per-split and aggregate R² and MAE.
//
// Usage:
//
//	yieldaz [-data PATH] [-workers N] [-log-level LEVEL]
//	        [-save-predictions DIR] [-plot DIR] [-results-db PATH]
//
// Results go to stdout; logs go to stderr as JSON lines.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"

	"github.com/YuminosukeSato/yieldboost/datasets"
	"github.com/YuminosukeSato/yieldboost/experiment"
	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
	"github.com/YuminosukeSato/yieldboost/pkg/log"
)

// defaultDataPath is resolved against the directory of this source file.
const defaultDataPath = "../../data/az/az-2048-3-true.gob"

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.LogError(err, "yieldaz failed")
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	fs := flag.NewFlagSet("yieldaz", flag.ContinueOnError)
	dataPath := fs.String("data", resolveDefaultDataPath(), "path to the split dataset (.gob, optionally .xz compressed)")
	logLevel := fs.String("log-level", "warn", "log level for stderr: debug, info, warn, error")
	workers := fs.Int("workers", 1, "number of splits trained concurrently")
	predDir := fs.String("save-predictions", "", "if set, write per-split prediction CSVs to this directory")
	plotDir := fs.String("plot", "", "if set, write per-split parity plots to this directory")
	resultsDB := fs.String("results-db", "", "if set, append run and split metrics to this SQLite database")
	if err := fs.Parse(args); err != nil {
		if yerrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := log.SetupLogger(*logLevel); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("yieldaz")

	ds, err := datasets.Load(*dataPath)
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded",
		log.PathKey, *dataPath,
		log.SplitsKey, len(ds),
		log.FeaturesKey, ds.NumFeatures(),
	)

	cfg := experiment.DefaultConfig()
	runner := experiment.NewRunner(cfg)
	runner.Workers = *workers

	if *predDir != "" {
		runner.Recorders = append(runner.Recorders, &experiment.PredictionWriter{Dir: *predDir})
	}
	if *plotDir != "" {
		runner.Recorders = append(runner.Recorders, &experiment.ParityPlotter{Dir: *plotDir})
	}
	if *resultsDB != "" {
		store, err := experiment.OpenSQLiteStore(*resultsDB, *dataPath, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		runner.Recorders = append(runner.Recorders, store)
	}

	_, err = runner.Run(ds)
	return err
}

// resolveDefaultDataPath returns defaultDataPath relative to this file's
// directory, or relative to the working directory when build information is
// unavailable.
func resolveDefaultDataPath() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return defaultDataPath
	}
	return filepath.Join(filepath.Dir(file), defaultDataPath)
}
