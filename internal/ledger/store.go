package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"measuremap/internal/measure"
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun records the beginning of a batch run and returns it with a fresh ID.
func (s *Store) StartRun(ctx context.Context, kind, root, outputDir string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Kind:      strings.TrimSpace(kind),
		Root:      root,
		OutputDir: outputDir,
		StartedAt: time.Now().UTC(),
	}
	if run.Kind == "" {
		return Run{}, errors.New("start run: kind is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, root, output_dir, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Root, nullableString(run.OutputDir), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FileResult is what a batch worker reports about one input.
type FileResult struct {
	InputPath  string
	OutputPath string
	InputHash  string
	Status     Status
	Measures   int
	Err        error
}

// RecordFile stores the outcome of one input within runID.
func (s *Store) RecordFile(ctx context.Context, runID string, result FileResult) error {
	var errMessage string
	if result.Err != nil {
		errMessage = result.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (
            run_id, input_path, output_path, input_hash, status, measures,
            error_kind, error_message, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.InputPath,
		nullableString(result.OutputPath),
		nullableString(result.InputHash),
		string(result.Status),
		result.Measures,
		nullableString(measure.Kind(result.Err)),
		nullableString(errMessage),
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert file %s: %w", result.InputPath, err)
	}
	return nil
}

// FinishRun stamps the run as finished with its final counts.
func (s *Store) FinishRun(ctx context.Context, runID string, counts Counts) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, failed = ?, skipped = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), counts.Converted, counts.Failed, counts.Skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// LastSuccess returns the most recent successful conversion of inputPath, or
// nil when there is none.
func (s *Store) LastSuccess(ctx context.Context, inputPath string) (*FileRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files
         WHERE input_path = ? AND status = ?
         ORDER BY id DESC LIMIT 1`,
		inputPath, string(StatusConverted),
	)
	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last success: %w", err)
	}
	return rec, nil
}

// Runs lists the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Files lists the file records of runID in the order they were recorded.
func (s *Store) Files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *rec)
	}
	return files, rows.Err()
}
