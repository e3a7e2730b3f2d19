package logs

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"measuremap/internal/logging"
)

// Record is one decoded JSON log line.
type Record map[string]any

// ParseRecord decodes a JSON log line.
func ParseRecord(line string) (Record, bool) {
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return nil, false
	}
	return rec, true
}

func (r Record) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Filter selects records. Empty fields match everything.
type Filter struct {
	// Level is the minimum level to keep.
	Level     string
	Component string
	RunID     string
	File      string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Match reports whether rec passes every filter.
func (f Filter) Match(rec Record) bool {
	if f.Level != "" && levelRank[strings.ToLower(rec.str("level"))] < levelRank[strings.ToLower(f.Level)] {
		return false
	}
	if f.Component != "" && !strings.EqualFold(rec.str(logging.FieldComponent), f.Component) {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(rec.str(logging.FieldRunID), f.RunID) {
		return false
	}
	if f.File != "" && !strings.Contains(rec.str(logging.FieldFile), f.File) {
		return false
	}
	return true
}

// MatchLine decodes line and applies the filter. Lines that are not JSON
// pass only an empty filter.
func (f Filter) MatchLine(line string) bool {
	rec, ok := ParseRecord(line)
	if !ok {
		return f == Filter{}
	}
	return f.Match(rec)
}

var reservedKeys = []string{"ts", "level", "msg", "source", logging.FieldComponent}

// Format renders rec on one line in the console layout.
func Format(rec Record) string {
	var b strings.Builder
	if ts, err := time.Parse(time.RFC3339, rec.str("ts")); err == nil {
		b.WriteString(ts.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(rec.str("level")))
	b.WriteByte(' ')
	if component := rec.str(logging.FieldComponent); component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(rec.str("msg"))

	keys := make([]string, 0, len(rec))
	for key := range rec {
		if !slices.Contains(reservedKeys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		value := rec.str(key)
		if value == "" || strings.ContainsAny(value, " =\"") {
			value = strconv.Quote(value)
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	return b.String()
}
