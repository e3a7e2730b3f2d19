// Package table loads tab-separated measures tables, one row per measure as
// exported by score-analysis tooling, and converts them into measure maps.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"regexp"
	"strconv"
	"strings"

	"measuremap/internal/measure"
)

// Column names.
const (
	ColMC                     = "mc"
	ColMN                     = "mn"
	ColVolta                  = "volta"
	ColTimeSig                = "timesig"
	ColActDur                 = "act_dur"
	ColRepeats                = "repeats"
	ColNext                   = "next"
	ColQuarterBeats           = "quarterbeats"
	ColQuarterBeatsAllEndings = "quarterbeats_all_endings"
)

var requiredColumns = []string{ColMC, ColMN, ColTimeSig, ColActDur, ColRepeats, ColNext}

var mnPattern = regexp.MustCompile(`^(\d+)([a-g])?`)

// Row is one parsed measure row. Nil fractions mark missing values.
type Row struct {
	MC                     int
	MN                     int
	Volta                  int
	TimeSig                string
	ActDur                 *big.Rat
	Repeats                string
	Next                   []int
	QuarterBeats           *big.Rat
	QuarterBeatsAllEndings *big.Rat
}

// Table is a parsed measures table.
type Table struct {
	Rows []Row
	// HasAllEndings is set when the quarterbeats_all_endings column exists,
	// which is only the case for scores with voltas.
	HasAllEndings bool
}

// Load parses a measures table from r.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, measure.Wrap(measure.ErrFormat, "load table", "empty input", nil)
	}
	if err != nil {
		return nil, measure.Wrap(measure.ErrFormat, "load table", "read header", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, measure.Wrap(measure.ErrFormat, "load table", fmt.Sprintf("missing column %q", name), nil)
		}
	}
	_, hasAll := index[ColQuarterBeatsAllEndings]
	_, hasQuarter := index[ColQuarterBeats]
	if !hasAll && !hasQuarter {
		return nil, measure.Wrap(measure.ErrFormat, "load table",
			fmt.Sprintf("missing column %q or %q", ColQuarterBeats, ColQuarterBeatsAllEndings), nil)
	}

	t := &Table{HasAllEndings: hasAll}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, measure.Wrap(measure.ErrFormat, "load table", fmt.Sprintf("line %d", line), err)
		}
		row, err := parseRow(record, index)
		if err != nil {
			return nil, measure.Wrap(measure.ErrFormat, "load table", fmt.Sprintf("line %d", line), err)
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, measure.Wrap(measure.ErrStructural, "load table", "no measure rows", nil)
	}
	return t, nil
}

func parseRow(record []string, index map[string]int) (Row, error) {
	get := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var row Row
	mc, err := strconv.Atoi(get(ColMC))
	if err != nil {
		return Row{}, fmt.Errorf("mc: %w", err)
	}
	row.MC = mc

	mn, volta, err := ParseMN(get(ColMN))
	if err != nil {
		return Row{}, err
	}
	row.MN = mn
	if raw := get(ColVolta); raw != "" && !isNA(raw) {
		v, err := parseInt(raw)
		if err != nil {
			return Row{}, fmt.Errorf("volta: %w", err)
		}
		row.Volta = v
	} else {
		row.Volta = volta
	}

	row.TimeSig = get(ColTimeSig)
	if row.ActDur = ParseFraction(get(ColActDur)); row.ActDur == nil {
		return Row{}, fmt.Errorf("act_dur: invalid fraction %q", get(ColActDur))
	}
	row.Repeats = get(ColRepeats)
	if isNA(row.Repeats) {
		row.Repeats = ""
	}
	if row.Next, err = ParseTuple(get(ColNext)); err != nil {
		return Row{}, fmt.Errorf("next: %w", err)
	}
	row.QuarterBeats = ParseFraction(get(ColQuarterBeats))
	row.QuarterBeatsAllEndings = ParseFraction(get(ColQuarterBeatsAllEndings))
	return row, nil
}

// ParseMN splits a measure number such as "12" or "12a" into the number and
// the volta index (a=1). Letters after "e" yield volta 0.
func ParseMN(s string) (int, int, error) {
	match := mnPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, 0, fmt.Errorf("mn: invalid measure number %q", s)
	}
	mn, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, fmt.Errorf("mn: %w", err)
	}
	volta := 0
	if letter := match[2]; letter != "" && letter[0] <= 'e' {
		volta = int(letter[0]-'a') + 1
	}
	return mn, volta, nil
}

// ParseFraction parses "3/4", "1.5" or "2". Missing or invalid values
// return nil.
func ParseFraction(s string) *big.Rat {
	s = strings.TrimSpace(s)
	if s == "" || isNA(s) {
		return nil
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil
	}
	return r
}

// ParseTuple parses integer tuples written as "(2, 3)", "(2,)" or "()".
func ParseTuple(s string) ([]int, error) {
	s = strings.Trim(strings.TrimSpace(s), "(),")
	if s == "" || isNA(s) {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer tuple %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseInt(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(f), nil
}

func isNA(s string) bool {
	switch s {
	case "NA", "<NA>", "NaN", "nan", "None":
		return true
	}
	return false
}

// QStampColumn names the column qstamps are read from.
func (t *Table) QStampColumn() string {
	if t.HasAllEndings {
		return ColQuarterBeatsAllEndings
	}
	return ColQuarterBeats
}

// Columns converts the table into the column form of a measure map. Missing
// qstamps are NaN.
func (t *Table) Columns() (measure.Columns, error) {
	n := len(t.Rows)
	cols := measure.Columns{
		Count:         make([]int, n),
		QStamp:        make([]float64, n),
		Number:        make([]int, n),
		Volta:         make([]int, n),
		TimeSignature: make([]string, n),
		NominalLength: make([]float64, n),
		ActualLength:  make([]float64, n),
		StartRepeat:   make([]bool, n),
		EndRepeat:     make([]bool, n),
		Next:          make([][]int, n),
	}
	for i, row := range t.Rows {
		nominal, err := measure.NominalLength(row.TimeSig)
		if err != nil {
			return measure.Columns{}, fmt.Errorf("MC %d: %w", row.MC, err)
		}
		qstamp := row.QuarterBeats
		if t.HasAllEndings {
			qstamp = row.QuarterBeatsAllEndings
		}
		cols.Count[i] = row.MC
		cols.QStamp[i] = ratFloat(qstamp)
		cols.Number[i] = row.MN
		cols.Volta[i] = row.Volta
		cols.TimeSignature[i] = row.TimeSig
		cols.NominalLength[i] = nominal
		cols.ActualLength[i] = ratFloat(new(big.Rat).Mul(row.ActDur, big.NewRat(4, 1)))
		cols.StartRepeat[i] = strings.Contains(row.Repeats, "start")
		cols.EndRepeat[i] = strings.Contains(row.Repeats, "end")
		cols.Next[i] = row.Next
	}
	return cols, nil
}

// ToMap converts the table into a measure map. Any missing qstamp fails the
// whole conversion with measure.ErrMissingTimeline.
func (t *Table) ToMap() (*measure.Map, error) {
	column := t.QStampColumn()
	for _, row := range t.Rows {
		v := row.QuarterBeats
		if t.HasAllEndings {
			v = row.QuarterBeatsAllEndings
		}
		if v == nil {
			return nil, measure.Wrap(measure.ErrMissingTimeline, "table to map",
				fmt.Sprintf("there are NA values in the column %q (MC %d)", column, row.MC), nil)
		}
	}
	cols, err := t.Columns()
	if err != nil {
		return nil, err
	}
	return measure.FromColumns(cols)
}

func ratFloat(r *big.Rat) float64 {
	if r == nil {
		return math.NaN()
	}
	f, _ := r.Float64()
	return f
}

// LoadFile reads the table at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s could not be loaded: %w", path, err)
	}
	return t, nil
}

// ConvertFile loads the table at path and converts it into a measure map.
func ConvertFile(path string) (*measure.Map, error) {
	t, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	mm, err := t.ToMap()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mm, nil
}
