package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"measuremap/internal/config"
)

// LogFilePrefix starts the name of every daily log file.
const LogFilePrefix = "measuremap-"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human output. Nil means os.Stderr.
	Console io.Writer
	// FilePath, when set, receives JSON records in addition to the console.
	FilePath        string
	ComponentLevels map[string]string
	Development     bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := ParseLevel(opts.Level)
	components := make(map[string]slog.Level, len(opts.ComponentLevels))
	floor := level
	for name, raw := range opts.ComponentLevels {
		lvl := ParseLevel(raw)
		components[strings.ToLower(strings.TrimSpace(name))] = lvl
		floor = min(floor, lvl)
	}
	addSource := opts.Development || level <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(console, floor, addSource)
	case "console":
		handler = newPrettyHandler(console, floor, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		handler = newFanoutHandler(handler, newJSONHandler(file, floor, addSource))
	}

	if len(components) > 0 {
		handler = newLevelOverrideHandler(handler, level, components)
	}
	return slog.New(handler), nil
}

// NewFromConfig creates a logger that writes to console and to the daily
// JSON log under the configured log directory. Log files older than the
// retention window are pruned.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console})
	}
	opts := Options{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		Console:         console,
		ComponentLevels: cfg.Logging.ComponentLevels,
	}
	if cfg.Paths.LogDir != "" {
		opts.FilePath = DailyLogPath(cfg.Paths.LogDir, time.Now())
	}
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	if opts.FilePath != "" {
		PruneDailyLogs(NewComponentLogger(logger, "logging"), cfg.Logging.RetentionDays, cfg.Paths.LogDir, time.Now(), opts.FilePath)
	}
	return logger, nil
}

// DailyLogPath names the log file for the day containing now.
func DailyLogPath(dir string, now time.Time) string {
	return filepath.Join(dir, LogFilePrefix+now.Format("20060102")+".log")
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// resolve to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
