package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"measuremap/internal/config"
)

func TestPrettyHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	NewComponentLogger(logger, "batch").Info("converted", String(FieldFile, "a b.tsv"), Int(FieldCount, 12))

	line := buf.String()
	if !strings.Contains(line, " INFO batch: converted") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, `file="a b.tsv"`) || !strings.Contains(line, "count=12") {
		t.Fatalf("expected fields in %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
}

func TestJSONFormatAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", String(FieldPiece, "minuet"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single record, got %q", buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "warn" || record["msg"] != "shown" || record["piece"] != "minuet" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestComponentLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{
		Level:           "info",
		Format:          "console",
		Console:         &buf,
		ComponentLevels: map[string]string{"Batch": "debug", "ledger": "error"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("root debug")
	NewComponentLogger(logger, "batch").Debug("batch debug")
	NewComponentLogger(logger, "ledger").Warn("ledger warn")
	NewComponentLogger(logger, "ledger").Error("ledger error")

	out := buf.String()
	if strings.Contains(out, "root debug") || strings.Contains(out, "ledger warn") {
		t.Fatalf("unexpected records in %q", out)
	}
	if !strings.Contains(out, "batch debug") || !strings.Contains(out, "ledger error") {
		t.Fatalf("missing records in %q", out)
	}

	quiet := WithLevelOverride(logger, slog.LevelError)
	quiet.Warn("suppressed")
	if strings.Contains(buf.String(), "suppressed") {
		t.Fatal("expected override to suppress warnings")
	}
}

func TestFanoutWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = dir
	cfg.Logging.RetentionDays = 1

	stale := filepath.Join(dir, LogFilePrefix+"20000101.log")
	if err := os.WriteFile(stale, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "notes.log")
	if err := os.WriteFile(other, []byte("keep\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var console bytes.Buffer
	logger, err := NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello", String(FieldFile, "x.tsv"))

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale log to be pruned, stat err=%v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("expected unrelated file to survive: %v", err)
	}
	data, err := os.ReadFile(DailyLogPath(dir, time.Now()))
	if err != nil {
		t.Fatalf("read daily log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected JSON record in log file, got %q", data)
	}
	if !strings.Contains(console.String(), "hello") {
		t.Fatalf("expected console output, got %q", console.String())
	}
}

func TestWithContextAddsRunAndFile(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithFile(WithRunID(context.Background(), "run-1"), "in.tsv")
	WithContext(ctx, logger).Info("step")
	if out := buf.String(); !strings.Contains(out, "run_id=run-1") || !strings.Contains(out, "file=in.tsv") {
		t.Fatalf("expected context fields, got %q", out)
	}
	if got := WithContext(context.Background(), logger); got != logger {
		t.Fatal("expected logger unchanged without context fields")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	WarnWithContext(logger, "skipped", "file_skipped", String(FieldImpact, "file left unconverted"))
	out := buf.String()
	for _, want := range []string{"event_type=file_skipped", "error_hint=", `impact="file left unconverted"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	WarnWithContext(nil, "ignored", "none")
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unexpected level mapping")
	}
}

func TestPruneDailyLogsKeepsWindow(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)
	names := []string{"20240310", "20240308", "20240307", "20240301"}
	for _, day := range names {
		if err := os.WriteFile(filepath.Join(dir, LogFilePrefix+day+".log"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, LogFilePrefix+"20240301.log")

	removed := PruneDailyLogs(NewNop(), dir, 2, now, keep)
	if removed != 1 {
		t.Fatalf("expected one file removed, got %d", removed)
	}
	for _, day := range names {
		_, err := os.Stat(filepath.Join(dir, LogFilePrefix+day+".log"))
		gone := os.IsNotExist(err)
		if gone != (day == "20240307") {
			t.Fatalf("unexpected state for %s: gone=%v", day, gone)
		}
	}
	if PruneDailyLogs(NewNop(), dir, 0, now, "") != 0 {
		t.Fatal("expected zero retention to disable pruning")
	}
}
