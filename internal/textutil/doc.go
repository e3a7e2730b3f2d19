// Package textutil provides text helpers for piece naming.
//
// Piece names are derived from input paths by stripping the known compound
// extensions (".mm.json", ".facts.json", ...) and titles are produced with
// Unicode-aware casing.
package textutil
