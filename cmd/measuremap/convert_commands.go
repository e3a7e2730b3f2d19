package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"measuremap/internal/codec"
	"measuremap/internal/config"
	"measuremap/internal/facts"
	"measuremap/internal/logging"
	"measuremap/internal/measure"
	"measuremap/internal/table"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <table.tsv>",
		Short: "Convert a measures table into a measure map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, ctx, "convert", args[0], output, func(path string) (*measure.Map, error) {
				return table.ConvertFile(path)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <piece><suffix> beside the input)")
	return cmd
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var output string
	var noCheckParts bool

	cmd := &cobra.Command{
		Use:   "extract <piece.facts.json>",
		Short: "Build a measure map from a structural-facts document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checkParts := cfg.Batch.CheckPartsMatch && !noCheckParts
			return runSingle(cmd, ctx, "extract", args[0], output, func(path string) (*measure.Map, error) {
				return facts.ConvertFile(path, checkParts)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <piece><suffix> beside the input)")
	cmd.Flags().BoolVar(&noCheckParts, "no-check-parts", false, "Use the first part without comparing it to the others")
	return cmd
}

func runSingle(cmd *cobra.Command, ctx *commandContext, component, input, output string, build func(string) (*measure.Map, error)) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.loggerFor(cmd)
	if err != nil {
		return err
	}
	logger = logging.NewComponentLogger(logger, component)

	input, err = config.ExpandPath(input)
	if err != nil {
		return err
	}
	target, err := outputPathFor(input, output, cfg.Batch.Suffix)
	if err != nil {
		return err
	}

	mm, err := build(input)
	if err != nil {
		logFailure(logger, input, err)
		return err
	}
	if err := codec.WriteFile(target, mm); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	logger.Info("measure map written",
		logging.String(logging.FieldFile, input),
		logging.String(logging.FieldOutput, target),
		logging.Int(logging.FieldCount, mm.Len()),
		logging.String(logging.FieldEventType, "file_converted"),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d measures)\n", target, mm.Len())
	return nil
}

func logFailure(logger *slog.Logger, input string, err error) {
	logging.ErrorWithContext(logger, "conversion failed", "file_failed",
		logging.String(logging.FieldFile, input),
		logging.String(logging.FieldErrorKind, measure.Kind(err)),
		logging.Error(err),
	)
}
