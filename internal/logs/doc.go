// Package logs reads the daily JSON log files written by measuremap.
//
// Tail returns the last matching lines of a log file, or the lines appended
// after a known offset, and can wait for new lines in follow mode. Filter
// selects records by level, component, run ID and input file so a single
// batch run can be inspected after the fact.
package logs
