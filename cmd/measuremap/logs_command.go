package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"measuremap/internal/logging"
	"measuremap/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
		day    string
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show entries from the daily log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			when := time.Now()
			if day != "" {
				if when, err = time.ParseInLocation("2006-01-02", day, time.Local); err != nil {
					return fmt.Errorf("invalid --date %q: %w", day, err)
				}
			}
			path := logging.DailyLogPath(cfg.Paths.LogDir, when)

			out := cmd.OutOrStdout()
			printLines := func(batch []string) {
				for _, line := range batch {
					if rec, ok := logs.ParseRecord(line); ok && !raw {
						line = logs.Format(rec)
					}
					fmt.Fprintln(out, line)
				}
			}

			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Match: filter.MatchLine})
			if err != nil {
				return err
			}
			printLines(result.Lines)
			for follow {
				result, err = logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: result.Offset,
					Follow: true,
					Wait:   time.Minute,
					Match:  filter.MatchLine,
				})
				if err != nil {
					return err
				}
				printLines(result.Lines)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON lines unchanged")
	cmd.Flags().StringVar(&day, "date", "", "Day to read (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&filter.Level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&filter.Component, "component", "", "Only entries from this component")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only entries of this batch run (ID prefix)")
	cmd.Flags().StringVar(&filter.File, "file", "", "Only entries whose input path contains this text")
	return cmd
}
