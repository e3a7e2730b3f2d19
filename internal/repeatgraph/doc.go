// Package repeatgraph derives performance-order successors from per-measure
// barline facts.
//
// A score parser only knows the barlines attached to each measure. Build walks
// those facts left to right as a fold over a small State: RepeatTarget is the
// count a closing repeat jumps back to, and ResumeFrom marks the measure whose
// successors gain an edge when an alternate ending starts. Step is the pure
// transition for one measure; Build applies it to every fact and assembles the
// resulting measure.Map.
//
// Only the innermost open repeat is tracked. A start repeat inside a section
// that is still open replaces the jump target, so truly nested repeats are
// not modelled; sequential repeats and multi-ending voltas are.
package repeatgraph
