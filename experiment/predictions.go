package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// SavePredictions writes one CSV row per test sample,
// set_name,split_id,file_name,ground_truth,prediction, to
// dir/<setName>_<splitID>_<fileName>.csv and returns the path.
func SavePredictions(dir, setName, splitID, fileName string, truth, pred *mat.VecDense) (path string, err error) {
	if truth.Len() != pred.Len() {
		return "", yerrors.NewDimensionError("SavePredictions", truth.Len(), pred.Len(), 0)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", yerrors.Wrap(err, "failed to create predictions directory")
	}

	path = filepath.Join(dir, fmt.Sprintf("%s_%s_%s.csv", setName, splitID, fileName))
	f, err := os.Create(path)
	if err != nil {
		return "", yerrors.Wrap(err, "failed to create predictions file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = yerrors.Wrap(cerr, "failed to close predictions file")
		}
	}()

	w := csv.NewWriter(f)
	for i := 0; i < truth.Len(); i++ {
		record := []string{setName, splitID, fileName, formatFloat(truth.AtVec(i)), formatFloat(pred.AtVec(i))}
		if err := w.Write(record); err != nil {
			return "", yerrors.Wrap(err, "failed to write predictions row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", yerrors.Wrap(err, "failed to flush predictions file")
	}
	return path, nil
}

// PredictionWriter is a Recorder that saves each split's test predictions.
type PredictionWriter struct {
	Dir      string
	SetName  string // defaults to "az"
	FileName string // defaults to "predictions"
}

// RecordSplit implements Recorder. Splits without an ID use their index.
func (p *PredictionWriter) RecordSplit(res SplitResult) error {
	setName, fileName := p.SetName, p.FileName
	if setName == "" {
		setName = "az"
	}
	if fileName == "" {
		fileName = "predictions"
	}
	splitID := res.ID
	if splitID == "" {
		splitID = strconv.Itoa(res.Index)
	}
	_, err := SavePredictions(p.Dir, setName, splitID, fileName, res.Truth, res.Predictions)
	return err
}

// RecordSummary implements Recorder.
func (p *PredictionWriter) RecordSummary(Summary) error {
	return nil
}
