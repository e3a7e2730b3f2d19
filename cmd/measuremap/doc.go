// Command measuremap converts score measure data into measure maps.
//
// It reads measures tables and structural-facts documents, writes measure
// maps as JSON, validates, compresses and expands existing maps, and runs
// whole directory trees through a bounded worker pool with a SQLite history
// of every run.
package main
