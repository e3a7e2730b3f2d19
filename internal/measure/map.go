package measure

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
)

// Map is an ordered, immutable sequence of measures addressed by count.
type Map struct {
	measures []Measure
}

// New validates the structural invariants of measures and returns a Map that
// owns a private copy of them.
func New(measures []Measure) (*Map, error) {
	if len(measures) == 0 {
		return nil, Wrap(ErrStructural, "new map", "no measures", nil)
	}
	owned := make([]Measure, len(measures))
	for i, m := range measures {
		if m.Count != i+1 {
			return nil, Wrap(ErrStructural, "new map",
				fmt.Sprintf("count at position %d is %d, expected %d", i, m.Count, i+1), nil)
		}
		if math.IsNaN(m.QStamp) {
			return nil, Wrap(ErrMissingTimeline, "new map", fmt.Sprintf("MC %d has no qstamp", m.Count), nil)
		}
		if field, ok := nonFinite(m); ok {
			return nil, Wrap(ErrFormat, "new map", fmt.Sprintf("MC %d has a non-finite %s", m.Count, field), nil)
		}
		owned[i] = m.Clone()
		if owned[i].Next == nil {
			owned[i].Next = []int{}
		}
	}
	for _, m := range owned {
		for _, next := range m.Next {
			if next < 1 || next > len(owned) {
				return nil, Wrap(ErrStructural, "new map",
					fmt.Sprintf("MC %d references MC %d outside 1..%d", m.Count, next, len(owned)), nil)
			}
		}
	}
	return &Map{measures: owned}, nil
}

// nonFinite names the first numeric field of m holding an infinity or NaN.
// A NaN qstamp is reported separately as a missing timeline value.
func nonFinite(m Measure) (string, bool) {
	switch {
	case math.IsInf(m.QStamp, 0):
		return "qstamp", true
	case math.IsNaN(m.NominalLength) || math.IsInf(m.NominalLength, 0):
		return "nominal_length", true
	case math.IsNaN(m.ActualLength) || math.IsInf(m.ActualLength, 0):
		return "actual_length", true
	}
	return "", false
}

// Record carries the attributes of one measure as supplied by a collaborator.
// Zero values are filled in by FromRecords where they can be derived.
type Record struct {
	Count         int      // 0 means "use the position"
	QStamp        *float64 // required
	Number        int
	Volta         int // used to derive Name when Name is empty
	Name          string
	TimeSignature string
	NominalLength float64 // 0 means "derive from TimeSignature"
	ActualLength  float64
	StartRepeat   bool
	EndRepeat     bool
	Next          []int
}

// FromRecords builds a Map from a sequence of attribute records.
func FromRecords(records []Record) (*Map, error) {
	if len(records) == 0 {
		return nil, Wrap(ErrStructural, "from records", "no measures", nil)
	}
	measures := make([]Measure, 0, len(records))
	for i, rec := range records {
		m, err := rec.measure(i + 1)
		if err != nil {
			return nil, err
		}
		measures = append(measures, m)
	}
	return New(measures)
}

func (r Record) measure(position int) (Measure, error) {
	count := r.Count
	if count == 0 {
		count = position
	}
	if r.QStamp == nil || math.IsNaN(*r.QStamp) {
		return Measure{}, Wrap(ErrMissingTimeline, "from records", fmt.Sprintf("MC %d has no qstamp", count), nil)
	}
	name := r.Name
	if name == "" {
		name = MeasureName(r.Number, r.Volta)
	}
	nominal := r.NominalLength
	if nominal == 0 && r.TimeSignature != "" {
		value, err := NominalLength(r.TimeSignature)
		if err != nil {
			return Measure{}, fmt.Errorf("MC %d: %w", count, err)
		}
		nominal = value
	}
	return Measure{
		Count:         count,
		QStamp:        *r.QStamp,
		Number:        r.Number,
		Name:          name,
		TimeSignature: r.TimeSignature,
		NominalLength: nominal,
		ActualLength:  r.ActualLength,
		StartRepeat:   r.StartRepeat,
		EndRepeat:     r.EndRepeat,
		Next:          DedupNext(r.Next),
	}, nil
}

// Columns is the column-oriented form of a measure map. Count, QStamp,
// Number, TimeSignature, ActualLength, StartRepeat, EndRepeat and Next are
// required and must have equal lengths; Name and NominalLength may be nil, in
// which case they are derived. A NaN qstamp marks a missing value.
type Columns struct {
	Count         []int
	QStamp        []float64
	Number        []int
	Volta         []int
	Name          []string
	TimeSignature []string
	NominalLength []float64
	ActualLength  []float64
	StartRepeat   []bool
	EndRepeat     []bool
	Next          [][]int
}

// FromColumns builds a Map from a column-oriented table.
func FromColumns(cols Columns) (*Map, error) {
	n := len(cols.Count)
	required := map[string]int{
		"qstamp":         len(cols.QStamp),
		"number":         len(cols.Number),
		"time_signature": len(cols.TimeSignature),
		"actual_length":  len(cols.ActualLength),
		"start_repeat":   len(cols.StartRepeat),
		"end_repeat":     len(cols.EndRepeat),
		"next":           len(cols.Next),
	}
	optional := map[string]int{
		"volta":          len(cols.Volta),
		"name":           len(cols.Name),
		"nominal_length": len(cols.NominalLength),
	}
	for _, name := range sortedKeys(required) {
		if required[name] != n {
			return nil, Wrap(ErrStructural, "from columns",
				fmt.Sprintf("column %s has %d rows, expected %d", name, required[name], n), nil)
		}
	}
	for _, name := range sortedKeys(optional) {
		if optional[name] != 0 && optional[name] != n {
			return nil, Wrap(ErrStructural, "from columns",
				fmt.Sprintf("column %s has %d rows, expected %d", name, optional[name], n), nil)
		}
	}

	records := make([]Record, n)
	for i := range n {
		qstamp := cols.QStamp[i]
		rec := Record{
			Count:         cols.Count[i],
			QStamp:        &qstamp,
			Number:        cols.Number[i],
			TimeSignature: cols.TimeSignature[i],
			ActualLength:  cols.ActualLength[i],
			StartRepeat:   cols.StartRepeat[i],
			EndRepeat:     cols.EndRepeat[i],
			Next:          cols.Next[i],
		}
		if cols.Volta != nil {
			rec.Volta = cols.Volta[i]
		}
		if cols.Name != nil {
			rec.Name = cols.Name[i]
		}
		if cols.NominalLength != nil {
			rec.NominalLength = cols.NominalLength[i]
		}
		records[i] = rec
	}
	return FromRecords(records)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of measures.
func (mm *Map) Len() int {
	if mm == nil {
		return 0
	}
	return len(mm.measures)
}

// At returns the measure at the 0-based index i.
func (mm *Map) At(i int) Measure {
	return mm.measures[i].Clone()
}

// ByCount looks up a measure by its 1-based count.
func (mm *Map) ByCount(count int) (Measure, bool) {
	if mm == nil || count < 1 || count > len(mm.measures) {
		return Measure{}, false
	}
	return mm.measures[count-1].Clone(), true
}

// Measures returns a copy of all measures in order.
func (mm *Map) Measures() []Measure {
	if mm == nil {
		return nil
	}
	out := make([]Measure, len(mm.measures))
	for i, m := range mm.measures {
		out[i] = m.Clone()
	}
	return out
}

// All iterates over the measures in order, yielding their 0-based index.
func (mm *Map) All() iter.Seq2[int, Measure] {
	return func(yield func(int, Measure) bool) {
		if mm == nil {
			return
		}
		for i, m := range mm.measures {
			if !yield(i, m.Clone()) {
				return
			}
		}
	}
}

// Equal reports whether both maps hold pairwise equal measures in order.
func (mm *Map) Equal(other *Map) bool {
	return mm.Compare(other) == nil
}

// Compare returns nil when both maps are equal, or a *ConsistencyError that
// names the first differing position and field.
func (mm *Map) Compare(other *Map) error {
	if mm.Len() != other.Len() {
		return &ConsistencyError{
			Part:  -1,
			Field: "length",
			Left:  strconv.Itoa(mm.Len()),
			Right: strconv.Itoa(other.Len()),
		}
	}
	for i := range mm.Len() {
		left, right := mm.measures[i], other.measures[i]
		if field, l, r, ok := firstDifference(left, right); !ok {
			return &ConsistencyError{Part: -1, Position: i + 1, Field: field, Left: l, Right: r}
		}
	}
	return nil
}

func firstDifference(a, b Measure) (string, string, string, bool) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case a.Count != b.Count:
		return "count", strconv.Itoa(a.Count), strconv.Itoa(b.Count), false
	case a.QStamp != b.QStamp:
		return "qstamp", f(a.QStamp), f(b.QStamp), false
	case a.Number != b.Number:
		return "number", strconv.Itoa(a.Number), strconv.Itoa(b.Number), false
	case a.Name != b.Name:
		return "name", strconv.Quote(a.Name), strconv.Quote(b.Name), false
	case a.TimeSignature != b.TimeSignature:
		return "time_signature", a.TimeSignature, b.TimeSignature, false
	case a.NominalLength != b.NominalLength:
		return "nominal_length", f(a.NominalLength), f(b.NominalLength), false
	case a.ActualLength != b.ActualLength:
		return "actual_length", f(a.ActualLength), f(b.ActualLength), false
	case a.StartRepeat != b.StartRepeat:
		return "start_repeat", strconv.FormatBool(a.StartRepeat), strconv.FormatBool(b.StartRepeat), false
	case a.EndRepeat != b.EndRepeat:
		return "end_repeat", strconv.FormatBool(a.EndRepeat), strconv.FormatBool(b.EndRepeat), false
	case !slices.Equal(a.Next, b.Next):
		return "next", fmt.Sprint(a.Next), fmt.Sprint(b.Next), false
	}
	return "", "", "", true
}

// Validate lints invariants that the constructors do not enforce: Next lists
// hold no duplicates, qstamp only decreases at measures entered through a
// jump, and the final measure only continues through a repeat jump.
func (mm *Map) Validate() error {
	if mm.Len() == 0 {
		return Wrap(ErrStructural, "validate", "no measures", nil)
	}
	var errs []error

	jumpTargets := make(map[int]struct{})
	for _, m := range mm.measures {
		for _, next := range m.Next {
			if next != m.Count+1 {
				jumpTargets[next] = struct{}{}
			}
		}
		if len(DedupNext(m.Next)) != len(m.Next) {
			errs = append(errs, Wrap(ErrStructural, "validate",
				fmt.Sprintf("MC %d has duplicate next entries %v", m.Count, m.Next), nil))
		}
	}

	for i := 1; i < len(mm.measures); i++ {
		prev, cur := mm.measures[i-1], mm.measures[i]
		if cur.QStamp >= prev.QStamp {
			continue
		}
		if _, ok := jumpTargets[cur.Count]; ok || hasBackwardEdge(prev) {
			continue
		}
		errs = append(errs, Wrap(ErrStructural, "validate",
			fmt.Sprintf("qstamp decreases from MC %d to MC %d without a jump", prev.Count, cur.Count), nil))
	}

	last := mm.measures[len(mm.measures)-1]
	for _, next := range last.Next {
		if !last.EndRepeat || next > last.Count {
			errs = append(errs, Wrap(ErrStructural, "validate",
				fmt.Sprintf("final MC %d continues to MC %d without closing a repeat", last.Count, next), nil))
			break
		}
	}
	return errors.Join(errs...)
}

func hasBackwardEdge(m Measure) bool {
	for _, next := range m.Next {
		if next <= m.Count {
			return true
		}
	}
	return false
}
