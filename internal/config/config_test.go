package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"measuremap/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MEASUREMAP_STATE_DIR", "")
	t.Setenv("MEASUREMAP_LOG_LEVEL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "measuremap")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LedgerPath() != filepath.Join(wantState, "ledger.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}
	if cfg.Batch.Workers != runtime.NumCPU() {
		t.Fatalf("expected workers to default to CPU count, got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.Suffix != ".mm.json" || cfg.Batch.CompressedSuffix != ".mmc.json" {
		t.Fatalf("unexpected suffixes %q %q", cfg.Batch.Suffix, cfg.Batch.CompressedSuffix)
	}
	if !cfg.Batch.Incremental || !cfg.Batch.CheckPartsMatch {
		t.Fatal("expected incremental runs and part checks by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "measuremap.toml")
	t.Setenv("MEASUREMAP_STATE_DIR", "")
	t.Setenv("MEASUREMAP_LOG_LEVEL", "")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Batch struct {
			TableExtensions []string `toml:"table_extensions"`
			Workers         int      `toml:"workers"`
			Incremental     bool     `toml:"incremental"`
		} `toml:"batch"`
		Logging struct {
			Format          string            `toml:"format"`
			ComponentLevels map[string]string `toml:"component_levels"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Batch.TableExtensions = []string{"TSV", ".measures.tsv", ".tsv"}
	custom.Batch.Workers = 3
	custom.Logging.Format = "JSON"
	custom.Logging.ComponentLevels = map[string]string{"Batch": "DEBUG"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("expected state dir from file, got %q", cfg.Paths.StateDir)
	}
	if !slices.Equal(cfg.Batch.TableExtensions, []string{".tsv", ".measures.tsv"}) {
		t.Fatalf("unexpected normalized extensions %v", cfg.Batch.TableExtensions)
	}
	if cfg.Batch.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.Incremental {
		t.Fatal("expected incremental disabled by file")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.ComponentLevels["batch"] != "debug" {
		t.Fatalf("expected normalized component level, got %v", cfg.Logging.ComponentLevels)
	}
	if !slices.Equal(cfg.Extensions("facts"), []string{".facts.json"}) {
		t.Fatalf("unexpected facts extensions %v", cfg.Extensions("facts"))
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "measuremap.toml")
	contents := "[paths]\nstate_dir = \"/from/file\"\n\n[logging]\nlevel = \"warn\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	envState := filepath.Join(tempDir, "env-state")
	t.Setenv("MEASUREMAP_STATE_DIR", envState)
	t.Setenv("MEASUREMAP_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != envState {
		t.Errorf("expected state dir from env, got %q", cfg.Paths.StateDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level from env, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "measuremap.toml")
	if err := os.WriteFile(configPath, []byte("[batch]\nworkerz = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StateDir, "measuremap") {
		t.Fatalf("expected state dir to contain measuremap, got %q", cfg.Paths.StateDir)
	}
	if cfg.Batch.Suffix != ".mm.json" {
		t.Fatalf("unexpected sample suffix %q", cfg.Batch.Suffix)
	}

	t.Setenv("MEASUREMAP_STATE_DIR", "")
	t.Setenv("MEASUREMAP_LOG_LEVEL", "")
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load cleanly, exists=%v err=%v", exists, err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative workers", func(c *config.Config) { c.Batch.Workers = -1 }},
		{"too many workers", func(c *config.Config) { c.Batch.Workers = 1000 }},
		{"bad pattern", func(c *config.Config) { c.Batch.Pattern = "[" }},
		{"no table extensions", func(c *config.Config) { c.Batch.TableExtensions = nil }},
		{"same suffixes", func(c *config.Config) { c.Batch.CompressedSuffix = c.Batch.Suffix }},
		{"separator in suffix", func(c *config.Config) { c.Batch.Suffix = "/x.json" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "verbose" }},
		{"bad component level", func(c *config.Config) { c.Logging.ComponentLevels = map[string]string{"batch": "loud"} }},
		{"negative retention", func(c *config.Config) { c.Logging.RetentionDays = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
