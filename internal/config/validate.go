package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if len(c.Batch.TableExtensions) == 0 {
		return errors.New("batch.table_extensions must list at least one extension")
	}
	if len(c.Batch.FactsExtensions) == 0 {
		return errors.New("batch.facts_extensions must list at least one extension")
	}
	if _, err := filepath.Match(c.Batch.Pattern, ""); err != nil {
		return fmt.Errorf("batch.pattern %q: %w", c.Batch.Pattern, err)
	}
	if c.Batch.Suffix == c.Batch.CompressedSuffix {
		return errors.New("batch.suffix and batch.compressed_suffix must differ")
	}
	if strings.ContainsAny(c.Batch.Suffix, `/\`) || strings.ContainsAny(c.Batch.CompressedSuffix, `/\`) {
		return errors.New("batch suffixes must not contain path separators")
	}
	if c.Batch.Workers < 0 || c.Batch.Workers > maxWorkers {
		return fmt.Errorf("batch.workers must be between 0 and %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	for component, level := range c.Logging.ComponentLevels {
		if !validLevel(level) {
			return fmt.Errorf("logging.component_levels.%s %q must be one of debug, info, warn, error", component, level)
		}
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
