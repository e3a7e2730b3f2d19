// Package successor computes the linear continuation of a measure and uses
// it to validate and compress measure maps.
//
// Default answers "what would the next measure look like if nothing
// changed": no repeat, same meter, a full bar. A measure equal to its
// predecessor's default successor carries no information, so Compress stores
// it as an empty delta and only records overrides for the fields that differ.
package successor

import (
	"slices"

	"measuremap/internal/measure"
)

// Option adjusts the default successor.
type Option func(*options)

type options struct {
	timeSignature string
	nominalLength float64
}

// WithMeter overrides the time signature and nominal length carried into the
// successor.
func WithMeter(timeSignature string, nominalLength float64) Option {
	return func(o *options) {
		o.timeSignature = timeSignature
		o.nominalLength = nominalLength
	}
}

// Default returns the measure that would follow m under a purely linear
// reading. Inside a volta the successor keeps the measure number and takes
// the next volta letter.
func Default(m measure.Measure, opts ...Option) measure.Measure {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	number, volta := m.Number+1, 0
	if v := m.Volta(); v > 0 {
		number, volta = m.Number, v+1
	}
	timeSig, nominal := m.TimeSignature, m.NominalLength
	if o.timeSignature != "" {
		timeSig, nominal = o.timeSignature, o.nominalLength
	}
	count := m.Count + 1
	return measure.Measure{
		Count:         count,
		QStamp:        m.QStamp + m.ActualLength,
		Number:        number,
		Name:          measure.MeasureName(number, volta),
		TimeSignature: timeSig,
		NominalLength: nominal,
		ActualLength:  nominal,
		Next:          []int{count + 1},
	}
}

// Matches reports whether cur equals the default successor of prev in every
// field except Next.
func Matches(prev, cur measure.Measure) bool {
	return Default(prev).EqualIgnoringNext(cur)
}

// Differences lists the names of the fields, Next excluded, in which cur
// deviates from the default successor of prev.
func Differences(prev, cur measure.Measure) []string {
	d := Default(prev)
	var fields []string
	if d.Count != cur.Count {
		fields = append(fields, "count")
	}
	if d.QStamp != cur.QStamp {
		fields = append(fields, "qstamp")
	}
	if d.Number != cur.Number {
		fields = append(fields, "number")
	}
	if d.Name != cur.Name {
		fields = append(fields, "name")
	}
	if d.TimeSignature != cur.TimeSignature {
		fields = append(fields, "time_signature")
	}
	if d.NominalLength != cur.NominalLength {
		fields = append(fields, "nominal_length")
	}
	if d.ActualLength != cur.ActualLength {
		fields = append(fields, "actual_length")
	}
	if d.StartRepeat != cur.StartRepeat {
		fields = append(fields, "start_repeat")
	}
	if d.EndRepeat != cur.EndRepeat {
		fields = append(fields, "end_repeat")
	}
	return fields
}

// Finding describes a measure that cannot be regenerated from its predecessor.
type Finding struct {
	Count  int
	Fields []string
}

// Stats summarizes how much of a map is derivable from default successors.
type Stats struct {
	Total     int
	Derivable int
	Explicit  []Finding
}

// Report compares every measure with its predecessor's default successor.
func Report(mm *measure.Map) Stats {
	stats := Stats{Total: mm.Len()}
	var prev measure.Measure
	for i, cur := range mm.All() {
		if i == 0 {
			prev = cur
			continue
		}
		if fields := Differences(prev, cur); len(fields) == 0 {
			stats.Derivable++
		} else {
			stats.Explicit = append(stats.Explicit, Finding{Count: cur.Count, Fields: fields})
		}
		prev = cur
	}
	return stats
}

func defaultNext(d measure.Measure, last bool) []int {
	if last {
		return []int{}
	}
	return slices.Clone(d.Next)
}
