// Package batch converts every matching input under a directory tree into a
// measure map.
//
// Runner walks the tree, filters inputs by extension and glob pattern, and
// runs a Converter for each one on a bounded worker pool. Failures are logged
// and recorded but never abort sibling files. Outputs mirror the input tree
// under the output directory, or sit next to their inputs when no output
// directory is given. An advisory lock on the output tree keeps two runs from
// writing the same files, and an attached ledger lets incremental runs skip
// inputs whose content has not changed since their last successful
// conversion.
package batch
