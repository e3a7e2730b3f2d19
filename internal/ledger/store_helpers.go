package ledger

import (
	"database/sql"
	"strings"
	"time"
)

const runColumns = "id, kind, root, output_dir, started_at, finished_at, converted, failed, skipped"

const fileColumns = "id, run_id, input_path, output_path, input_hash, status, measures, error_kind, error_message, recorded_at"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		outputDir   sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.Root,
		&outputDir,
		&startedRaw,
		&finishedRaw,
		&run.Counts.Converted,
		&run.Counts.Failed,
		&run.Counts.Skipped,
	); err != nil {
		return Run{}, err
	}
	run.OutputDir = outputDir.String
	run.StartedAt = parseTimeString(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTimeString(finishedRaw.String)
	}
	return run, nil
}

func scanFile(row scanner) (*FileRecord, error) {
	var (
		rec          FileRecord
		outputPath   sql.NullString
		inputHash    sql.NullString
		status       string
		errorKind    sql.NullString
		errorMessage sql.NullString
		recordedRaw  string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.InputPath,
		&outputPath,
		&inputHash,
		&status,
		&rec.Measures,
		&errorKind,
		&errorMessage,
		&recordedRaw,
	); err != nil {
		return nil, err
	}
	rec.OutputPath = outputPath.String
	rec.InputHash = inputHash.String
	rec.Status = Status(status)
	rec.ErrorKind = errorKind.String
	rec.ErrorMessage = errorMessage.String
	rec.RecordedAt = parseTimeString(recordedRaw)
	return &rec, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimeString(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
