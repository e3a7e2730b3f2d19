package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// logDate extracts the day encoded in a daily log name. Files that do not
// follow the naming scheme report false.
func logDate(name string) (time.Time, bool) {
	stem, ok := strings.CutPrefix(name, LogFilePrefix)
	if !ok {
		return time.Time{}, false
	}
	stem, ok = strings.CutSuffix(stem, ".log")
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("20060102", stem, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// PruneDailyLogs removes daily logs in dir whose day lies more than
// retentionDays before now. The file named by keep is never removed. A
// retentionDays value of 0 disables pruning. It returns the number of files
// removed.
func PruneDailyLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time, keep string) int {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.Local).AddDate(0, 0, -retentionDays)
	keepName := filepath.Base(keep)

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == keepName {
			continue
		}
		day, ok := logDate(name)
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on log_dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return removed
}
