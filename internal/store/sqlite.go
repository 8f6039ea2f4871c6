package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteIndex implements Index on a SQLite database.
type SQLiteIndex struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteIndex opens (creating if needed) the index database at dbPath.
// The parent directory must already exist.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("index directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteIndex{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteIndex) Path() string { return s.dbPath }

// BeginRun records the start of a run and returns its ID.
func (s *SQLiteIndex) BeginRun(ctx context.Context, seed uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (seed, started_at) VALUES (?, ?)`,
		int64(seed), formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// RecordCheckpoint inserts or replaces the checkpoint row for
// (rec.RunID, rec.Height, rec.Trials).
func (s *SQLiteIndex) RecordCheckpoint(ctx context.Context, rec CheckpointRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var chi, pValue sql.NullFloat64
	if rec.DegreesOfFreedom > 0 {
		chi = nullFloat(rec.ChiSquare)
		pValue = nullFloat(rec.PValue)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoints (
			run_id, height, trials, mean_squared_error, max_deviation,
			chi_square, degrees_of_freedom, p_value, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Height, rec.Trials, nullFloat(rec.MeanSquaredError), rec.MaxDeviation,
		chi, rec.DegreesOfFreedom, pValue, formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("failed to record checkpoint h=%d trials=%d: %w", rec.Height, rec.Trials, err)
	}
	return nil
}

// FinishRun stamps the run's finish time.
func (s *SQLiteIndex) FinishRun(ctx context.Context, runID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// LatestRun returns the run with the highest ID.
func (s *SQLiteIndex) LatestRun(ctx context.Context) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		run        Run
		seed       int64
		startedAt  string
		finishedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, seed, started_at, finished_at FROM runs ORDER BY id DESC LIMIT 1`).
		Scan(&run.ID, &seed, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	run.Seed = uint64(seed)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

// ListCheckpoints returns the checkpoints of runID, filtered to height
// unless height < 0.
func (s *SQLiteIndex) ListCheckpoints(ctx context.Context, runID int64, height int) ([]CheckpointRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT run_id, height, trials, mean_squared_error, max_deviation,
		       chi_square, degrees_of_freedom, p_value, created_at
		FROM checkpoints WHERE run_id = ?`
	args := []any{runID}
	if height >= 0 {
		query += ` AND height = ?`
		args = append(args, height)
	}
	query += ` ORDER BY height, trials`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer rows.Close()

	var out []CheckpointRecord
	for rows.Next() {
		var (
			rec            CheckpointRecord
			mse, chi, pVal sql.NullFloat64
			createdAt      string
		)
		if err := rows.Scan(&rec.RunID, &rec.Height, &rec.Trials, &mse, &rec.MaxDeviation,
			&chi, &rec.DegreesOfFreedom, &pVal, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		rec.MeanSquaredError = floatOrNaN(mse)
		rec.ChiSquare = floatOrNaN(chi)
		rec.PValue = floatOrNaN(pVal)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkpoints: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
