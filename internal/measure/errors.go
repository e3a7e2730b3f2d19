package measure

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	ErrMissingTimeline = errors.New("missing timeline value")
	ErrStructural      = errors.New("structural error")
	ErrFormat          = errors.New("format error")
	ErrConsistency     = errors.New("consistency error")
)

// Wrap builds an error message with operation context while tagging it with
// the provided marker. The marker should be one of the sentinels above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrStructural
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "measure map"
	}
	return strings.Join(parts, ": ")
}

// ConsistencyError reports the first position at which two maps that were
// expected to be equal diverge.
type ConsistencyError struct {
	// Part is the index of the part compared against part 0, or -1 when the
	// comparison is not between score parts.
	Part     int
	Position int // count of the first differing measure
	Field    string
	Left     string
	Right    string
}

func (e *ConsistencyError) Error() string {
	var b strings.Builder
	if e.Part >= 0 {
		fmt.Fprintf(&b, "parts 0 and %d do not match", e.Part)
	} else {
		b.WriteString("measure maps do not match")
	}
	switch {
	case e.Field == "length":
		fmt.Fprintf(&b, ": %s vs %s measures", e.Left, e.Right)
	case e.Field != "":
		fmt.Fprintf(&b, " at MC %d: %s %s != %s", e.Position, e.Field, e.Left, e.Right)
	default:
		fmt.Fprintf(&b, " at MC %d", e.Position)
	}
	return b.String()
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

// ErrorKind implements the classification interface used by the ledger.
func (e *ConsistencyError) ErrorKind() string { return "consistency" }

// Kind returns a short classification label for err.
func Kind(err error) string {
	var classifier interface{ ErrorKind() string }
	switch {
	case err == nil:
		return ""
	case errors.As(err, &classifier):
		return classifier.ErrorKind()
	case errors.Is(err, ErrMissingTimeline):
		return "missing_timeline"
	case errors.Is(err, ErrStructural):
		return "structural"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return "io"
	default:
		return "unknown"
	}
}
