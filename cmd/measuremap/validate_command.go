package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"measuremap/internal/batch"
	"measuremap/internal/codec"
	"measuremap/internal/config"
	"measuremap/internal/measure"
	"measuremap/internal/successor"
)

type validation struct {
	path      string
	measures  int
	stats     successor.Stats
	canonical bool
	err       error
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file.mm.json|dir>...",
		Short: "Check measure maps for structural errors and canonical layout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			paths, err := expandValidateArgs(logger, args, cfg.Batch.Suffix)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no measure maps found")
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := 0
			for _, path := range paths {
				v := validateFile(path)
				kind, message := statusOK, fmt.Sprintf("%d measures, %d of %d successors derivable",
					v.measures, v.stats.Derivable, max(v.measures-1, 0))
				switch {
				case v.err != nil:
					kind, message = statusError, v.err.Error()
					failed++
				case !v.canonical:
					kind = statusWarn
					message += "; layout differs from canonical encoding"
					if strict {
						failed++
					}
				}
				fmt.Fprintln(out, renderStatusLine(displayPath(path), kind, message, colorize))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d measure maps failed validation", failed, len(paths))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat non-canonical layout as a failure")
	return cmd
}

func expandValidateArgs(logger *slog.Logger, args []string, suffix string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, path)
			continue
		}
		found, err := batch.Collect(logger, path, suffix)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

func validateFile(path string) validation {
	v := validation{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		v.err = err
		return v
	}
	mm, err := codec.Decode(data)
	if err != nil {
		v.err = err
		return v
	}
	v.measures = mm.Len()
	if err := mm.Validate(); err != nil {
		v.err = err
		return v
	}
	v.stats = successor.Report(mm)
	v.canonical = bytes.Equal(codec.Encode(mm), data)
	if !v.canonical {
		again, err := codec.Decode(codec.Encode(mm))
		if err != nil || !again.Equal(mm) {
			v.err = measure.Wrap(measure.ErrFormat, "validate", "re-encoded map does not decode to the same measures", err)
		}
	}
	return v
}

func displayPath(path string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) {
			return rel
		}
	}
	return path
}
