// Package measure defines the measure map data model: one Measure per
// notated measure and the ordered, immutable Map that holds them.
//
// A Map is an arena of measures addressed by their 1-based count (MC). Each
// measure names its possible successors in performance order through Next,
// a list of counts into the same arena, so the repeat graph is stored without
// pointers and compares and serializes trivially.
//
// # Invariants
//
// New and the other constructors reject maps whose counts are not exactly
// 1..N in order or whose Next lists reference counts outside the map. Validate
// additionally lints the timeline (qstamp may only decrease where the
// measure is entered through a jump) and the shape of the final measure.
//
// # Errors
//
// Failures are tagged with one of the sentinel markers ErrMissingTimeline,
// ErrStructural, ErrFormat and ErrConsistency. Use errors.Is to classify them
// and Kind to obtain the short label recorded by the conversion ledger.
package measure
