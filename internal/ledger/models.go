package ledger

import "time"

// Status is the outcome of one file in a batch run.
type Status string

const (
	StatusConverted Status = "converted"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is one batch invocation.
type Run struct {
	ID         string
	Kind       string
	Root       string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     Counts
}

// Finished reports whether FinishRun was recorded for the run.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Counts tallies file outcomes of a run.
type Counts struct {
	Converted int
	Failed    int
	Skipped   int
}

// Total returns the number of files the run looked at.
func (c Counts) Total() int {
	return c.Converted + c.Failed + c.Skipped
}

// FileRecord is the ledger entry of one input file within a run.
type FileRecord struct {
	ID           int64
	RunID        string
	InputPath    string
	OutputPath   string
	InputHash    string
	Status       Status
	Measures     int
	ErrorKind    string
	ErrorMessage string
	RecordedAt   time.Time
}
