package experiment

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	yerrors "github.com/YuminosukeSato/yieldboost/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	dataset TEXT NOT NULL,
	learning_rate REAL NOT NULL,
	max_depth INTEGER NOT NULL,
	min_child_weight REAL NOT NULL,
	colsample REAL NOT NULL,
	subsample REAL NOT NULL,
	seed INTEGER NOT NULL,
	patience INTEGER NOT NULL,
	r2_mean REAL,
	r2_std REAL,
	mae_mean REAL,
	mae_std REAL
);
CREATE TABLE IF NOT EXISTS splits(
	run_id INTEGER NOT NULL REFERENCES runs(id),
	split INTEGER NOT NULL,
	split_id TEXT NOT NULL,
	r2 REAL NOT NULL,
	mae REAL NOT NULL,
	best_iteration INTEGER NOT NULL,
	PRIMARY KEY(run_id, split)
);`

// SQLiteStore is a Recorder that appends each run to a SQLite results ledger.
// A run's summary columns stay NULL when the run aborts.
type SQLiteStore struct {
	db    *sql.DB
	runID int64
}

// OpenSQLiteStore opens (creating if needed) the ledger at path and inserts a
// run row for cfg.
func OpenSQLiteStore(path, dataset string, cfg Config) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, yerrors.Wrap(err, "failed to open results database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, yerrors.Wrap(err, "failed to create results schema")
	}

	res, err := db.Exec(`INSERT INTO runs(started_at, dataset, learning_rate, max_depth, min_child_weight, colsample, subsample, seed, patience)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), dataset,
		cfg.LearningRate, cfg.MaxDepth, cfg.MinChildWeight, cfg.Colsample, cfg.Subsample, int64(cfg.Seed), cfg.EarlyStoppingPatience)
	if err != nil {
		db.Close()
		return nil, yerrors.Wrap(err, "failed to insert run")
	}
	runID, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, yerrors.Wrap(err, "failed to read run id")
	}
	return &SQLiteStore{db: db, runID: runID}, nil
}

// RunID returns the id of the run row owned by this store.
func (s *SQLiteStore) RunID() int64 {
	return s.runID
}

// RecordSplit implements Recorder.
func (s *SQLiteStore) RecordSplit(res SplitResult) error {
	_, err := s.db.Exec(`INSERT INTO splits(run_id, split, split_id, r2, mae, best_iteration) VALUES(?,?,?,?,?,?)`,
		s.runID, res.Index, res.ID, res.R2, res.MAE, res.BestIteration)
	return yerrors.Wrap(err, "failed to insert split result")
}

// RecordSummary implements Recorder.
func (s *SQLiteStore) RecordSummary(sum Summary) error {
	_, err := s.db.Exec(`UPDATE runs SET r2_mean=?, r2_std=?, mae_mean=?, mae_std=? WHERE id=?`,
		sum.R2Mean, sum.R2Std, sum.MAEMean, sum.MAEStd, s.runID)
	return yerrors.Wrap(err, "failed to update run summary")
}

// SplitRecord is one row of the splits table.
type SplitRecord struct {
	Split         int
	SplitID       string
	R2            float64
	MAE           float64
	BestIteration int
}

// Splits returns the recorded splits of this run in split order.
func (s *SQLiteStore) Splits() ([]SplitRecord, error) {
	rows, err := s.db.Query(`SELECT split, split_id, r2, mae, best_iteration FROM splits WHERE run_id=? ORDER BY split`, s.runID)
	if err != nil {
		return nil, yerrors.Wrap(err, "failed to query splits")
	}
	defer rows.Close()

	var out []SplitRecord
	for rows.Next() {
		var rec SplitRecord
		if err := rows.Scan(&rec.Split, &rec.SplitID, &rec.R2, &rec.MAE, &rec.BestIteration); err != nil {
			return nil, yerrors.Wrap(err, "failed to scan split")
		}
		out = append(out, rec)
	}
	return out, yerrors.Wrap(rows.Err(), "failed to iterate splits")
}

// Summary returns the stored aggregate of this run; ok is false while the
// run has not completed.
func (s *SQLiteStore) Summary() (sum Summary, ok bool, err error) {
	var r2Mean, r2Std, maeMean, maeStd sql.NullFloat64
	err = s.db.QueryRow(`SELECT r2_mean, r2_std, mae_mean, mae_std FROM runs WHERE id=?`, s.runID).
		Scan(&r2Mean, &r2Std, &maeMean, &maeStd)
	if err != nil {
		return Summary{}, false, yerrors.Wrap(err, "failed to query run")
	}
	if !r2Mean.Valid {
		return Summary{}, false, nil
	}
	return Summary{
		R2Mean:  r2Mean.Float64,
		R2Std:   r2Std.Float64,
		MAEMean: maeMean.Float64,
		MAEStd:  maeStd.Float64,
	}, true, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return yerrors.Wrap(s.db.Close(), "failed to close results database")
}
