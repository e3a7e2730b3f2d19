package codec

import (
	"encoding/json"
	"fmt"
	"math"

	"measuremap/internal/measure"
	"measuremap/internal/successor"
)

// Decode parses a canonical measure map. Keys outside the canonical set are
// ignored.
func Decode(data []byte) (*measure.Map, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, measure.Wrap(measure.ErrFormat, "decode", "expected an array of measure objects", err)
	}
	if len(objects) == 0 {
		return nil, measure.Wrap(measure.ErrStructural, "decode", "no measures", nil)
	}
	measures := make([]measure.Measure, 0, len(objects))
	for i, obj := range objects {
		m, err := decodeMeasure(obj, i)
		if err != nil {
			return nil, err
		}
		measures = append(measures, m)
	}
	if err := checkNextRange(measures); err != nil {
		return nil, err
	}
	return measure.New(measures)
}

func decodeMeasure(obj map[string]json.RawMessage, index int) (measure.Measure, error) {
	if obj == nil {
		return measure.Measure{}, formatError(index, "entry is not an object")
	}
	for _, key := range measureKeys {
		if _, ok := obj[key]; !ok {
			return measure.Measure{}, formatError(index, fmt.Sprintf("missing field %q", key))
		}
	}
	r := fieldReader{obj: obj, index: index}
	m := measure.Measure{
		Count:         r.int("count"),
		QStamp:        r.qstamp(),
		Number:        r.int("number"),
		Name:          r.string("name"),
		TimeSignature: r.string("time_signature"),
		NominalLength: r.float("nominal_length"),
		ActualLength:  r.float("actual_length"),
		StartRepeat:   r.bool("start_repeat"),
		EndRepeat:     r.bool("end_repeat"),
		Next:          r.ints("next"),
	}
	return m, r.err
}

func checkNextRange(measures []measure.Measure) error {
	for i, m := range measures {
		for _, next := range m.Next {
			if next < 1 || next > len(measures) {
				return formatError(i, fmt.Sprintf("next entry %d outside 1..%d", next, len(measures)))
			}
		}
	}
	return nil
}

// DecodeCompressed parses the derive-or-override form written by
// EncodeCompressed.
func DecodeCompressed(data []byte) (successor.Compressed, error) {
	var doc struct {
		First  map[string]json.RawMessage   `json:"first"`
		Deltas []map[string]json.RawMessage `json:"deltas"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return successor.Compressed{}, measure.Wrap(measure.ErrFormat, "decode compressed",
			"expected an object with first and deltas", err)
	}
	if doc.First == nil {
		return successor.Compressed{}, measure.Wrap(measure.ErrFormat, "decode compressed", "missing first measure", nil)
	}
	first, err := decodeMeasure(doc.First, 0)
	if err != nil {
		return successor.Compressed{}, err
	}
	out := successor.Compressed{First: first, Deltas: make([]successor.Delta, len(doc.Deltas))}
	for i, obj := range doc.Deltas {
		if obj == nil {
			continue
		}
		r := fieldReader{obj: obj, index: i + 1}
		f := successor.Fields{
			QStamp:        optional(&r, "qstamp", r.float),
			Number:        optional(&r, "number", r.int),
			Name:          optional(&r, "name", r.string),
			TimeSignature: optional(&r, "time_signature", r.string),
			NominalLength: optional(&r, "nominal_length", r.float),
			ActualLength:  optional(&r, "actual_length", r.float),
			StartRepeat:   optional(&r, "start_repeat", r.bool),
			EndRepeat:     optional(&r, "end_repeat", r.bool),
		}
		if _, ok := obj["next"]; ok {
			f.Next = r.ints("next")
		}
		if r.err != nil {
			return successor.Compressed{}, r.err
		}
		out.Deltas[i] = successor.Delta{Override: &f}
	}
	return out, nil
}

func optional[T any](r *fieldReader, key string, read func(string) T) *T {
	if _, ok := r.obj[key]; !ok {
		return nil
	}
	v := read(key)
	return &v
}

// fieldReader decodes typed fields from one object and keeps the first error.
type fieldReader struct {
	obj   map[string]json.RawMessage
	index int
	err   error
}

func (r *fieldReader) decode(key string, dst any) bool {
	if r.err != nil {
		return false
	}
	raw := r.obj[key]
	if string(raw) == "null" {
		r.err = formatError(r.index, fmt.Sprintf("field %q is null", key))
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.err = formatError(r.index, fmt.Sprintf("field %q: %v", key, err))
		return false
	}
	return true
}

func (r *fieldReader) int(key string) int {
	var n json.Number
	if !r.decode(key, &n) {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return int(v)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		r.err = formatError(r.index, fmt.Sprintf("field %q is not an integer: %s", key, n))
		return 0
	}
	return int(f)
}

func (r *fieldReader) float(key string) float64 {
	var v float64
	r.decode(key, &v)
	return v
}

func (r *fieldReader) qstamp() float64 {
	if r.err == nil && string(r.obj["qstamp"]) == "null" {
		r.err = measure.Wrap(measure.ErrMissingTimeline, "decode", fmt.Sprintf("measure %d has no qstamp", r.index+1), nil)
		return 0
	}
	return r.float("qstamp")
}

func (r *fieldReader) string(key string) string {
	var v string
	r.decode(key, &v)
	return v
}

func (r *fieldReader) bool(key string) bool {
	var v bool
	r.decode(key, &v)
	return v
}

func (r *fieldReader) ints(key string) []int {
	var raw []json.Number
	if !r.decode(key, &raw) {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, n := range raw {
		v, err := n.Int64()
		if err != nil {
			r.err = formatError(r.index, fmt.Sprintf("field %q holds non-integer %s", key, n))
			return nil
		}
		out = append(out, int(v))
	}
	return out
}

func formatError(index int, msg string) error {
	return measure.Wrap(measure.ErrFormat, "decode", fmt.Sprintf("measure %d: %s", index+1, msg), nil)
}
