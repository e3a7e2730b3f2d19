package logs_test

import (
	"strings"
	"testing"

	"measuremap/internal/logs"
)

const (
	infoLine  = `{"ts":"2026-01-02T10:00:00Z","level":"info","msg":"measure map written","component":"batch","run_id":"abc-123","file":"/s/a.tsv","count":5}`
	warnLine  = `{"ts":"2026-01-02T10:00:01Z","level":"warn","msg":"conversion failed; file skipped","component":"batch","run_id":"def-456","file":"/s/b.tsv","error_kind":"missing_timeline"}`
	debugLine = `{"ts":"2026-01-02T10:00:02Z","level":"debug","msg":"input unchanged","component":"ledger"}`
)

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter logs.Filter
		want   []bool
	}{
		{"empty", logs.Filter{}, []bool{true, true, true}},
		{"warn level", logs.Filter{Level: "warn"}, []bool{false, true, false}},
		{"component", logs.Filter{Component: "Batch"}, []bool{true, true, false}},
		{"run prefix", logs.Filter{RunID: "abc"}, []bool{true, false, false}},
		{"file", logs.Filter{File: "b.tsv"}, []bool{false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, line := range []string{infoLine, warnLine, debugLine} {
				if got := tt.filter.MatchLine(line); got != tt.want[i] {
					t.Fatalf("line %d: got %v want %v", i, got, tt.want[i])
				}
			}
		})
	}
	if (logs.Filter{Level: "info"}).MatchLine("not json") {
		t.Fatal("non-JSON lines should fail a non-empty filter")
	}
}

func TestFormat(t *testing.T) {
	rec, ok := logs.ParseRecord(warnLine)
	if !ok {
		t.Fatal("expected record to parse")
	}
	line := logs.Format(rec)
	if !strings.Contains(line, "WARN batch: conversion failed; file skipped") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "error_kind=missing_timeline file=/s/b.tsv run_id=def-456") {
		t.Fatalf("expected sorted fields in %q", line)
	}
}
