package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"measuremap/internal/codec"
	"measuremap/internal/config"
	"measuremap/internal/measure"
	"measuremap/internal/successor"
	"measuremap/internal/textutil"
)

type measureView struct {
	Count         int     `json:"count"`
	Name          string  `json:"name"`
	QStamp        float64 `json:"qstamp"`
	TimeSignature string  `json:"time_signature"`
	NominalLength float64 `json:"nominal_length"`
	ActualLength  float64 `json:"actual_length"`
	StartRepeat   bool    `json:"start_repeat"`
	EndRepeat     bool    `json:"end_repeat"`
	Next          []int   `json:"next"`
	Default       bool    `json:"default_successor"`
}

func newShowCommand(_ *commandContext) *cobra.Command {
	var jsonOutput bool
	var explicitOnly bool

	cmd := &cobra.Command{
		Use:   "show <file.mm.json>",
		Short: "Display a measure map as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			mm, err := codec.ReadFile(path)
			if err != nil {
				return err
			}
			views := measureViews(mm)
			if explicitOnly {
				filtered := views[:0]
				for _, v := range views {
					if !v.Default {
						filtered = append(filtered, v)
					}
				}
				views = filtered
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, textutil.PieceTitle(textutil.PieceName(path)))
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					strconv.Itoa(v.Count),
					v.Name,
					codec.FormatFloat(v.QStamp),
					v.TimeSignature,
					codec.FormatFloat(v.ActualLength),
					repeatLabel(v.StartRepeat, v.EndRepeat),
					formatNext(v.Next),
					explicitMark(v.Default),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"MC", "MN", "QStamp", "Meter", "Length", "Repeat", "Next", "Explicit"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				shouldColorize(out),
			))
			compressed := successor.Compress(mm)
			fmt.Fprintf(out, "%d measures, %d differ from their default successor\n", compressed.Len(), compressed.Explicit())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print measures as JSON")
	cmd.Flags().BoolVar(&explicitOnly, "explicit", false, "Only list measures that differ from their default successor")
	return cmd
}

func measureViews(mm *measure.Map) []measureView {
	compressed := successor.Compress(mm)
	views := make([]measureView, 0, mm.Len())
	for i, m := range mm.All() {
		views = append(views, measureView{
			Count:         m.Count,
			Name:          m.Name,
			QStamp:        m.QStamp,
			TimeSignature: m.TimeSignature,
			NominalLength: m.NominalLength,
			ActualLength:  m.ActualLength,
			StartRepeat:   m.StartRepeat,
			EndRepeat:     m.EndRepeat,
			Next:          m.Next,
			Default:       i > 0 && compressed.Deltas[i-1].IsDefault(),
		})
	}
	return views
}

func repeatLabel(start, end bool) string {
	var parts []string
	if start {
		parts = append(parts, "start")
	}
	if end {
		parts = append(parts, "end")
	}
	return strings.Join(parts, ",")
}

func formatNext(next []int) string {
	parts := make([]string, len(next))
	for i, n := range next {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func explicitMark(derivable bool) string {
	if derivable {
		return ""
	}
	return "*"
}
