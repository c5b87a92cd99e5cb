package datasets

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"gonum.org/v1/gonum/mat"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

// FormatVersion is the envelope version written by Encode.
const FormatVersion = 1

// File is the gob envelope stored on disk.
type File struct {
	Version int
	Splits  []SplitRecord
}

// SplitRecord is the serialized form of a Split.
type SplitRecord struct {
	ID    string
	Train PartitionRecord
	Valid PartitionRecord
	Test  PartitionRecord
}

// PartitionRecord stores features row-major.
type PartitionRecord struct {
	Rows int
	Cols int
	X    []float64
	Y    []float64
}

// Load reads, decodes and validates the dataset at path. Files whose name ends
// in ".xz" are decompressed first. Every failure is a *errors.DataLoadError.
func Load(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, yerrors.NewDataLoadError(path, "open", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if isCompressed(path) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, yerrors.NewDataLoadError(path, "xz header", err)
		}
		r = xr
	}

	ds, err := decode(r)
	if err != nil {
		return nil, yerrors.NewDataLoadError(path, "decode", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, yerrors.NewDataLoadError(path, "validate", err)
	}
	return ds, nil
}

// Decode reads one envelope from r and validates it.
func Decode(r io.Reader) (Dataset, error) {
	ds, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func decode(r io.Reader) (Dataset, error) {
	var file File
	if err := gob.NewDecoder(r).Decode(&file); err != nil {
		return nil, yerrors.Wrap(err, "failed to decode dataset")
	}
	if file.Version != FormatVersion {
		return nil, yerrors.NewValidationError("version", "unsupported format version", file.Version)
	}

	ds := make(Dataset, len(file.Splits))
	for i, rec := range file.Splits {
		var err error
		ds[i].ID = rec.ID
		if ds[i].Train, err = rec.Train.partition(); err != nil {
			return nil, yerrors.Wrapf(err, "split %d train", i)
		}
		if ds[i].Valid, err = rec.Valid.partition(); err != nil {
			return nil, yerrors.Wrapf(err, "split %d valid", i)
		}
		if ds[i].Test, err = rec.Test.partition(); err != nil {
			return nil, yerrors.Wrapf(err, "split %d test", i)
		}
	}
	return ds, nil
}

func (rec PartitionRecord) partition() (Partition, error) {
	if rec.Rows <= 0 || rec.Cols <= 0 {
		return Partition{}, yerrors.NewValidationError("shape", "non-positive dimensions", [2]int{rec.Rows, rec.Cols})
	}
	if len(rec.X) != rec.Rows*rec.Cols {
		return Partition{}, yerrors.NewDimensionError("features", rec.Rows*rec.Cols, len(rec.X), 0)
	}
	return Partition{
		X: mat.NewDense(rec.Rows, rec.Cols, rec.X),
		Y: rec.Y,
	}, nil
}

// Encode writes ds to w as a gob envelope.
func Encode(w io.Writer, ds Dataset) error {
	file := File{Version: FormatVersion, Splits: make([]SplitRecord, len(ds))}
	for i, s := range ds {
		file.Splits[i] = SplitRecord{
			ID:    s.ID,
			Train: record(s.Train),
			Valid: record(s.Valid),
			Test:  record(s.Test),
		}
	}
	if err := gob.NewEncoder(w).Encode(&file); err != nil {
		return yerrors.Wrap(err, "failed to encode dataset")
	}
	return nil
}

func record(p Partition) PartitionRecord {
	rows, cols := p.Rows(), p.Cols()
	x := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		x = append(x, mat.Row(nil, i, p.X)...)
	}
	return PartitionRecord{Rows: rows, Cols: cols, X: x, Y: p.Y}
}

// Save writes ds to path, xz-compressed when the name ends in ".xz".
func Save(path string, ds Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return yerrors.Wrap(err, "failed to create dataset file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = yerrors.Wrap(cerr, "failed to close dataset file")
		}
	}()

	bw := bufio.NewWriter(f)
	if isCompressed(path) {
		xw, err := xz.NewWriter(bw)
		if err != nil {
			return yerrors.Wrap(err, "failed to create xz writer")
		}
		if err := Encode(xw, ds); err != nil {
			return err
		}
		if err := xw.Close(); err != nil {
			return yerrors.Wrap(err, "failed to finish xz stream")
		}
	} else if err := Encode(bw, ds); err != nil {
		return err
	}
	return yerrors.Wrap(bw.Flush(), "failed to flush dataset file")
}

func isCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xz")
}
