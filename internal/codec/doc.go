// Package codec reads and writes measure maps in their canonical JSON form.
//
// A .mm.json file is an array with one object per measure and a fixed key
// order: count, qstamp, number, name, time_signature, nominal_length,
// actual_length, start_repeat, end_repeat, next. Output is indented with two
// spaces, lists are expanded one item per line, floats always carry a
// fractional part, non-ASCII text is escaped and there is no trailing
// newline. This is the layout Python's json.dump(indent=2) produces, so maps
// written by other tools survive a load/store cycle byte for byte.
//
// Encode never fails for a map built through the measure package. Decode
// reports malformed input with measure.ErrFormat, a null qstamp with
// measure.ErrMissingTimeline and broken count sequences with
// measure.ErrStructural.
package codec
