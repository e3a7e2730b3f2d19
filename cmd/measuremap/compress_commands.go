package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"measuremap/internal/codec"
	"measuremap/internal/config"
	"measuremap/internal/successor"
)

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compress <file.mm.json>",
		Short: "Store only the measures that differ from their default successor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			target, err := outputPathFor(input, output, cfg.Batch.CompressedSuffix)
			if err != nil {
				return err
			}
			mm, err := codec.ReadFile(input)
			if err != nil {
				return err
			}
			compressed := successor.Compress(mm)
			if err := codec.WriteCompressedFile(target, compressed); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d of %d measures explicit)\n",
				target, compressed.Explicit(), compressed.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <piece><compressed suffix> beside the input)")
	return cmd
}

func newExpandCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "expand <file.mmc.json>",
		Short: "Rebuild a full measure map from its compressed form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			target, err := outputPathFor(input, output, cfg.Batch.Suffix)
			if err != nil {
				return err
			}
			compressed, err := codec.ReadCompressedFile(input)
			if err != nil {
				return err
			}
			mm, err := successor.Expand(compressed)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			if err := codec.WriteFile(target, mm); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d measures)\n", target, mm.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <piece><suffix> beside the input)")
	return cmd
}
