package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"measuremap/internal/batch"
	"measuremap/internal/config"
	"measuremap/internal/ledger"
	"measuremap/internal/measure"
)

type batchFlags struct {
	output       string
	extensions   []string
	pattern      string
	suffix       string
	workers      int
	force        bool
	noLedger     bool
	noCheckParts bool
	jsonOutput   bool
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert every matching file under a directory",
	}
	batchCmd.AddCommand(newBatchRunCommand(ctx, "convert", "table", "Convert every measures table under <dir>"))
	batchCmd.AddCommand(newBatchRunCommand(ctx, "extract", "facts", "Build measure maps from every facts document under <dir>"))
	return batchCmd
}

func newBatchRunCommand(ctx *commandContext, kind, inputKind, short string) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   kind + " <dir>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}

			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			opts := batch.Options{
				Kind:        kind,
				Root:        root,
				Extensions:  cfg.Extensions(inputKind),
				Pattern:     cfg.Batch.Pattern,
				Suffix:      cfg.Batch.Suffix,
				Workers:     cfg.Batch.Workers,
				Incremental: cfg.Batch.Incremental,
				Force:       flags.force,
			}
			if flags.output != "" {
				if opts.OutputDir, err = config.ExpandPath(flags.output); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("ext") {
				opts.Extensions = normalizeExtensions(flags.extensions)
			}
			if cmd.Flags().Changed("pattern") {
				opts.Pattern = flags.pattern
			}
			if cmd.Flags().Changed("suffix") {
				opts.Suffix = flags.suffix
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = flags.workers
			}
			if inputKind == "facts" {
				opts.Convert = batch.FactsConverter(cfg.Batch.CheckPartsMatch && !flags.noCheckParts)
			} else {
				opts.Convert = batch.TableConverter()
			}

			var store *ledger.Store
			if !flags.noLedger {
				if store, err = ctx.openLedger(); err != nil {
					return err
				}
				defer store.Close()
			}

			summary, err := batch.NewRunner(logger, store).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return writeJSON(cmd, summaryView(summary))
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "Output directory mirroring the input tree (default: beside inputs)")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "Input extensions to select (default from config)")
	cmd.Flags().StringVar(&flags.pattern, "pattern", "", "Glob pattern file names must match (default from config)")
	cmd.Flags().StringVar(&flags.suffix, "suffix", "", "Output suffix (default from config)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "Concurrent conversions (default from config)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Convert inputs even when unchanged since the last run")
	cmd.Flags().BoolVar(&flags.noLedger, "no-ledger", false, "Do not record the run in the ledger")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the summary as JSON")
	if inputKind == "facts" {
		cmd.Flags().BoolVar(&flags.noCheckParts, "no-check-parts", false, "Use the first part without comparing it to the others")
	}
	return cmd
}

func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		out = append(out, v)
	}
	return out
}

type resultView struct {
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Status    string `json:"status"`
	Measures  int    `json:"measures,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

type summaryJSON struct {
	RunID     string       `json:"run_id,omitempty"`
	Root      string       `json:"root"`
	Converted int          `json:"converted"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Seconds   float64      `json:"seconds"`
	Results   []resultView `json:"results"`
}

func summaryView(s batch.Summary) summaryJSON {
	view := summaryJSON{
		RunID:     s.RunID,
		Root:      s.Root,
		Converted: s.Counts.Converted,
		Failed:    s.Counts.Failed,
		Skipped:   s.Counts.Skipped,
		Seconds:   s.Duration.Seconds(),
		Results:   make([]resultView, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		rv := resultView{Input: r.Input, Output: r.Output, Status: string(r.Status), Measures: r.Measures}
		if r.Err != nil {
			rv.Error = r.Err.Error()
			rv.ErrorKind = measure.Kind(r.Err)
		}
		view.Results = append(view.Results, rv)
	}
	return view
}

func printSummary(cmd *cobra.Command, s batch.Summary) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	if len(s.Results) > 0 {
		rows := make([][]string, 0, len(s.Results))
		for _, r := range s.Results {
			rel, err := filepath.Rel(s.Root, r.Input)
			if err != nil {
				rel = r.Input
			}
			measures := ""
			if r.Status == ledger.StatusConverted {
				measures = strconv.Itoa(r.Measures)
			}
			detail := ""
			if r.Err != nil {
				detail = measure.Kind(r.Err)
			}
			rows = append(rows, []string{rel, string(r.Status), measures, detail})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Input", "Status", "Measures", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			colorize,
		))
	}
	fmt.Fprintf(out, "Converted %d, failed %d, skipped %d in %s\n",
		s.Counts.Converted, s.Counts.Failed, s.Counts.Skipped, s.Duration.Round(time.Millisecond))
	if s.RunID != "" {
		fmt.Fprintf(out, "Run %s\n", s.RunID)
	}
}
