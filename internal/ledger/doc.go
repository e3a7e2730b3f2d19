// Package ledger persists batch conversion history in SQLite.
//
// Every batch run gets a row in runs keyed by a UUID, and every input file
// the run touched gets a row in files with its content hash, output path,
// status and error kind. Incremental batch runs consult LastSuccess to skip
// inputs whose hash matches a previous successful conversion.
package ledger
