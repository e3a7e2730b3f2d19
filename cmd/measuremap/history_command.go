package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"measuremap/internal/ledger"
)

type runView struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Root       string    `json:"root"`
	OutputDir  string    `json:"output_dir,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Converted  int       `json:"converted"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

type fileView struct {
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Status    string `json:"status"`
	Measures  int    `json:"measures"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batch runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				files, err := store.Files(cmd.Context(), runID)
				if err != nil {
					return err
				}
				return printRunFiles(cmd, runID, files, jsonOutput)
			}

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printRuns(cmd, runs, jsonOutput)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the files of one run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []ledger.Run, jsonOutput bool) error {
	if jsonOutput {
		views := make([]runView, 0, len(runs))
		for _, r := range runs {
			views = append(views, runView{
				ID: r.ID, Kind: r.Kind, Root: r.Root, OutputDir: r.OutputDir,
				StartedAt: r.StartedAt, FinishedAt: r.FinishedAt,
				Converted: r.Counts.Converted, Failed: r.Counts.Failed, Skipped: r.Counts.Skipped,
			})
		}
		return writeJSON(cmd, views)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "running"
		if r.Finished() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			r.ID,
			r.Kind,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			strconv.Itoa(r.Counts.Converted),
			strconv.Itoa(r.Counts.Failed),
			strconv.Itoa(r.Counts.Skipped),
			r.Root,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Kind", "Started", "Duration", "Converted", "Failed", "Skipped", "Root"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
		shouldColorize(out),
	))
	return nil
}

func printRunFiles(cmd *cobra.Command, runID string, files []ledger.FileRecord, jsonOutput bool) error {
	if jsonOutput {
		views := make([]fileView, 0, len(files))
		for _, f := range files {
			views = append(views, fileView{
				Input: f.InputPath, Output: f.OutputPath, Hash: f.InputHash, Status: string(f.Status),
				Measures: f.Measures, ErrorKind: f.ErrorKind, Error: f.ErrorMessage,
			})
		}
		return writeJSON(cmd, views)
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		return fmt.Errorf("no files recorded for run %s", runID)
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.InputPath, string(f.Status), strconv.Itoa(f.Measures), f.ErrorKind})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Input", "Status", "Measures", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		shouldColorize(out),
	))
	return nil
}
