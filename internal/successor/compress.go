package successor

import (
	"fmt"
	"slices"

	"measuremap/internal/measure"
)

// Fields holds the overridden values of one measure. A nil pointer (or a nil
// Next) means the default successor's value applies.
type Fields struct {
	QStamp        *float64
	Number        *int
	Name          *string
	TimeSignature *string
	NominalLength *float64
	ActualLength  *float64
	StartRepeat   *bool
	EndRepeat     *bool
	Next          []int
}

// Delta is either a default entry (Override == nil) or an override.
type Delta struct {
	Override *Fields
}

// IsDefault reports whether the measure equals its default successor.
func (d Delta) IsDefault() bool { return d.Override == nil }

// Compressed is the derive-or-override form of a measure map: the first
// measure in full and one delta for every following measure.
type Compressed struct {
	First  measure.Measure
	Deltas []Delta
}

// Len returns the number of measures the compressed form expands to.
func (c Compressed) Len() int { return len(c.Deltas) + 1 }

// Diff computes the delta that turns the default successor of prev into cur.
// The final measure's default Next is empty.
func Diff(prev, cur measure.Measure, last bool) Delta {
	d := Default(prev)
	var f Fields
	changed := false
	if d.QStamp != cur.QStamp {
		f.QStamp, changed = ptr(cur.QStamp), true
	}
	if d.Number != cur.Number {
		f.Number, changed = ptr(cur.Number), true
	}
	if d.Name != cur.Name {
		f.Name, changed = ptr(cur.Name), true
	}
	if d.TimeSignature != cur.TimeSignature {
		f.TimeSignature, changed = ptr(cur.TimeSignature), true
	}
	if d.NominalLength != cur.NominalLength {
		f.NominalLength, changed = ptr(cur.NominalLength), true
	}
	if d.ActualLength != cur.ActualLength {
		f.ActualLength, changed = ptr(cur.ActualLength), true
	}
	if d.StartRepeat != cur.StartRepeat {
		f.StartRepeat, changed = ptr(cur.StartRepeat), true
	}
	if d.EndRepeat != cur.EndRepeat {
		f.EndRepeat, changed = ptr(cur.EndRepeat), true
	}
	if !slices.Equal(defaultNext(d, last), cur.Next) {
		f.Next, changed = slices.Clone(cur.Next), true
		if f.Next == nil {
			f.Next = []int{}
		}
	}
	if !changed {
		return Delta{}
	}
	return Delta{Override: &f}
}

// Apply expands the delta on top of the default successor of prev.
func (d Delta) Apply(prev measure.Measure, last bool) measure.Measure {
	m := Default(prev)
	m.Next = defaultNext(m, last)
	f := d.Override
	if f == nil {
		return m
	}
	if f.QStamp != nil {
		m.QStamp = *f.QStamp
	}
	if f.Number != nil {
		m.Number = *f.Number
	}
	if f.Name != nil {
		m.Name = *f.Name
	}
	if f.TimeSignature != nil {
		m.TimeSignature = *f.TimeSignature
	}
	if f.NominalLength != nil {
		m.NominalLength = *f.NominalLength
	}
	if f.ActualLength != nil {
		m.ActualLength = *f.ActualLength
	}
	if f.StartRepeat != nil {
		m.StartRepeat = *f.StartRepeat
	}
	if f.EndRepeat != nil {
		m.EndRepeat = *f.EndRepeat
	}
	if f.Next != nil {
		m.Next = slices.Clone(f.Next)
	}
	return m
}

// Compress turns a map into its derive-or-override form.
func Compress(mm *measure.Map) Compressed {
	out := Compressed{Deltas: make([]Delta, 0, max(mm.Len()-1, 0))}
	var prev measure.Measure
	for i, cur := range mm.All() {
		if i == 0 {
			out.First = cur
		} else {
			out.Deltas = append(out.Deltas, Diff(prev, cur, i == mm.Len()-1))
		}
		prev = cur
	}
	return out
}

// Expand rebuilds the measure map described by c.
func Expand(c Compressed) (*measure.Map, error) {
	if c.First.Count != 1 {
		return nil, measure.Wrap(measure.ErrStructural, "expand",
			fmt.Sprintf("first measure has count %d", c.First.Count), nil)
	}
	measures := make([]measure.Measure, 0, c.Len())
	prev := c.First.Clone()
	measures = append(measures, prev)
	for i, delta := range c.Deltas {
		cur := delta.Apply(prev, i == len(c.Deltas)-1)
		measures = append(measures, cur)
		prev = cur
	}
	return measure.New(measures)
}

// Explicit counts the deltas that carry overrides.
func (c Compressed) Explicit() int {
	n := 0
	for _, d := range c.Deltas {
		if !d.IsDefault() {
			n++
		}
	}
	return n
}

func ptr[T any](v T) *T { return &v }
