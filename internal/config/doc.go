// Package config loads, normalizes, and validates measuremap configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MEASUREMAP_STATE_DIR and
// MEASUREMAP_LOG_LEVEL environment overrides. The Config type centralizes the
// state and log directories, batch conversion defaults, and logging knobs so
// the CLI discovers everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
