package codec

import (
	"measuremap/internal/measure"
	"measuremap/internal/successor"
)

// Key order of one measure object.
var measureKeys = []string{
	"count", "qstamp", "number", "name", "time_signature",
	"nominal_length", "actual_length", "start_repeat", "end_repeat", "next",
}

// Encode renders mm in the canonical layout.
func Encode(mm *measure.Map) []byte {
	items := make([]value, 0, mm.Len())
	for _, m := range mm.All() {
		items = append(items, object(measureMembers(m)))
	}
	var w writer
	array(items)(&w, 0)
	return w.buf.Bytes()
}

func measureMembers(m measure.Measure) []member {
	return []member{
		{"count", intValue(m.Count)},
		{"qstamp", floatValue(m.QStamp)},
		{"number", intValue(m.Number)},
		{"name", stringValue(m.Name)},
		{"time_signature", stringValue(m.TimeSignature)},
		{"nominal_length", floatValue(m.NominalLength)},
		{"actual_length", floatValue(m.ActualLength)},
		{"start_repeat", boolValue(m.StartRepeat)},
		{"end_repeat", boolValue(m.EndRepeat)},
		{"next", intList(m.Next)},
	}
}

// EncodeCompressed renders the derive-or-override form: the first measure in
// full and one entry per following measure, null where the measure equals its
// default successor.
func EncodeCompressed(c successor.Compressed) []byte {
	deltas := make([]value, len(c.Deltas))
	for i, d := range c.Deltas {
		if d.IsDefault() {
			deltas[i] = nullValue
			continue
		}
		deltas[i] = object(fieldMembers(*d.Override))
	}
	var w writer
	object([]member{
		{"first", object(measureMembers(c.First))},
		{"deltas", array(deltas)},
	})(&w, 0)
	return w.buf.Bytes()
}

func fieldMembers(f successor.Fields) []member {
	var out []member
	if f.QStamp != nil {
		out = append(out, member{"qstamp", floatValue(*f.QStamp)})
	}
	if f.Number != nil {
		out = append(out, member{"number", intValue(*f.Number)})
	}
	if f.Name != nil {
		out = append(out, member{"name", stringValue(*f.Name)})
	}
	if f.TimeSignature != nil {
		out = append(out, member{"time_signature", stringValue(*f.TimeSignature)})
	}
	if f.NominalLength != nil {
		out = append(out, member{"nominal_length", floatValue(*f.NominalLength)})
	}
	if f.ActualLength != nil {
		out = append(out, member{"actual_length", floatValue(*f.ActualLength)})
	}
	if f.StartRepeat != nil {
		out = append(out, member{"start_repeat", boolValue(*f.StartRepeat)})
	}
	if f.EndRepeat != nil {
		out = append(out, member{"end_repeat", boolValue(*f.EndRepeat)})
	}
	if f.Next != nil {
		out = append(out, member{"next", intList(f.Next)})
	}
	return out
}
