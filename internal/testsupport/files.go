package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the contents of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// TableHeader lists the columns of the fixture measures tables.
var TableHeader = []string{"mc", "mn", "volta", "timesig", "act_dur", "repeats", "next", "quarterbeats", "quarterbeats_all_endings"}

// TSV joins rows with tabs and newlines.
func TSV(rows ...[]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n") + "\n"
}

// VoltaTable is a five-measure 4/4 table: a pickup, a repeated section with
// two endings and a closing measure.
func VoltaTable() string {
	return TSV(
		TableHeader,
		[]string{"1", "0", "", "4/4", "1/4", "firstMeasure", "(2,)", "0", "0"},
		[]string{"2", "1", "", "4/4", "1", "start", "(3,)", "1", "1"},
		[]string{"3", "2a", "", "4/4", "1", "end", "(2, 4)", "5", "5"},
		[]string{"4", "2", "2", "4/4", "1", "", "(5,)", "", "9"},
		[]string{"5", "3", "", "4/4", "1", "", "()", "9", "13"},
	)
}

// BrokenTable is a table whose second measure has no timeline value.
func BrokenTable() string {
	return TSV(
		[]string{"mc", "mn", "timesig", "act_dur", "repeats", "next", "quarterbeats"},
		[]string{"1", "1", "3/4", "3/4", "", "(2,)", "0"},
		[]string{"2", "2", "3/4", "3/4", "", "()", ""},
	)
}

// RepeatFacts is a single-part facts document of four 2/4 measures whose
// third closes a repeat back to the start.
func RepeatFacts(piece string) string {
	return `{"piece": "` + piece + `", "parts": [[
  {"qstamp": 0, "number": 1, "time_signature": "2/4", "actual_length": 2},
  {"qstamp": 2, "number": 2, "actual_length": 2},
  {"qstamp": 4, "number": 3, "actual_length": 2, "end_repeat": true},
  {"qstamp": 6, "number": 4, "actual_length": 2}
]]}`
}
