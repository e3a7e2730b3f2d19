package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"measuremap/internal/ledger"
	"measuremap/internal/measure"
	"measuremap/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "convert", "/scores", "")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.ID == "" || run.StartedAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}

	results := []ledger.FileResult{
		{InputPath: "/scores/a.tsv", OutputPath: "/scores/a.mm.json", InputHash: "h1", Status: ledger.StatusConverted, Measures: 12},
		{InputPath: "/scores/b.tsv", Status: ledger.StatusFailed, Err: measure.Wrap(measure.ErrMissingTimeline, "table to map", "NA", nil)},
		{InputPath: "/scores/c.tsv", Status: ledger.StatusSkipped},
	}
	for _, res := range results {
		if err := store.RecordFile(ctx, run.ID, res); err != nil {
			t.Fatalf("RecordFile failed: %v", err)
		}
	}
	if err := store.FinishRun(ctx, run.ID, ledger.Counts{Converted: 1, Failed: 1, Skipped: 1}); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	files, err := store.Files(ctx, run.ID)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 file records, got %d", len(files))
	}
	if files[0].Measures != 12 || files[0].InputHash != "h1" || files[0].ErrorKind != "" {
		t.Fatalf("unexpected converted record %+v", files[0])
	}
	if files[1].ErrorKind != "missing_timeline" || files[1].ErrorMessage == "" {
		t.Fatalf("unexpected failed record %+v", files[1])
	}

	runs, err := store.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || !runs[0].Finished() || runs[0].Counts.Total() != 3 {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestLastSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	rec, err := store.LastSuccess(ctx, "/scores/a.tsv")
	if err != nil || rec != nil {
		t.Fatalf("expected no record, got %+v err=%v", rec, err)
	}

	for i, hash := range []string{"old", "new"} {
		run, err := store.StartRun(ctx, "convert", "/scores", "")
		if err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
		if err := store.RecordFile(ctx, run.ID, ledger.FileResult{
			InputPath: "/scores/a.tsv", InputHash: hash, Status: ledger.StatusConverted, Measures: i + 1,
		}); err != nil {
			t.Fatalf("RecordFile failed: %v", err)
		}
		if err := store.RecordFile(ctx, run.ID, ledger.FileResult{
			InputPath: "/scores/a.tsv", InputHash: "broken", Status: ledger.StatusFailed, Err: errors.New("boom"),
		}); err != nil {
			t.Fatalf("RecordFile failed: %v", err)
		}
	}

	rec, err = store.LastSuccess(ctx, "/scores/a.tsv")
	if err != nil {
		t.Fatalf("LastSuccess failed: %v", err)
	}
	if rec == nil || rec.InputHash != "new" || rec.Measures != 2 {
		t.Fatalf("expected newest successful record, got %+v", rec)
	}
}

func TestRunsLimitAndValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	for i := range 3 {
		if _, err := store.StartRun(ctx, "extract", fmt.Sprintf("/root-%d", i), "/out"); err != nil {
			t.Fatalf("StartRun failed: %v", err)
		}
	}
	runs, err := store.Runs(ctx, 2)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 || runs[0].OutputDir != "/out" || runs[0].Finished() {
		t.Fatalf("unexpected runs %+v", runs)
	}
	all, err := store.Runs(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all runs, got %d err=%v", len(all), err)
	}

	if _, err := store.StartRun(ctx, " ", "/x", ""); err == nil {
		t.Fatal("expected error for empty kind")
	}
	if err := store.FinishRun(ctx, "missing", ledger.Counts{}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := ledger.Open(path); !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}

	reopened, err := ledger.Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("expected nested path to be created: %v", err)
	}
	if reopened.Path() == "" {
		t.Fatal("expected path to be recorded")
	}
	reopened.Close()
}
