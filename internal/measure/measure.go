package measure

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// Measure is one entry of a measure map.
type Measure struct {
	Count         int     // MC, 1-based position in the map
	QStamp        float64 // quarter-note offset from the start of the piece
	Number        int     // MN as printed in the score
	Name          string  // MN plus volta letter, e.g. "12b"
	TimeSignature string
	NominalLength float64 // time signature in quarter notes
	ActualLength  float64 // real duration in quarter notes
	StartRepeat   bool
	EndRepeat     bool
	Next          []int // counts that may follow this measure in performance order
}

// Equal reports whether m and other agree on every field. Next is compared
// element-wise, order included.
func (m Measure) Equal(other Measure) bool {
	return m.EqualIgnoringNext(other) && slices.Equal(m.Next, other.Next)
}

// EqualIgnoringNext compares all fields except Next.
func (m Measure) EqualIgnoringNext(other Measure) bool {
	return m.Count == other.Count &&
		m.QStamp == other.QStamp &&
		m.Number == other.Number &&
		m.Name == other.Name &&
		m.TimeSignature == other.TimeSignature &&
		m.NominalLength == other.NominalLength &&
		m.ActualLength == other.ActualLength &&
		m.StartRepeat == other.StartRepeat &&
		m.EndRepeat == other.EndRepeat
}

// Clone returns a copy that shares no memory with m.
func (m Measure) Clone() Measure {
	m.Next = slices.Clone(m.Next)
	return m
}

// Volta returns the alternate-ending index encoded in the name suffix
// (a=1, b=2, ...), or 0 when the measure is not inside a volta.
func (m Measure) Volta() int {
	return VoltaFromName(m.Name)
}

// String renders a compact single-line description used in diagnostics.
func (m Measure) String() string {
	return fmt.Sprintf("MC %d (%s) q=%s ts=%s nominal=%s actual=%s start=%t end=%t next=%v",
		m.Count, m.Name,
		strconv.FormatFloat(m.QStamp, 'f', -1, 64),
		m.TimeSignature,
		strconv.FormatFloat(m.NominalLength, 'f', -1, 64),
		strconv.FormatFloat(m.ActualLength, 'f', -1, 64),
		m.StartRepeat, m.EndRepeat, m.Next)
}

// VoltaSuffix returns the letter for the given volta index: 1 -> "a", 2 -> "b".
// Indices outside 1..26 yield an empty suffix.
func VoltaSuffix(volta int) string {
	if volta < 1 || volta > 26 {
		return ""
	}
	return string(rune('a' + volta - 1))
}

// VoltaFromName extracts the volta index from a measure name such as "12b".
func VoltaFromName(name string) int {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return 0
	}
	last := name[len(name)-1]
	if last < 'a' || last > 'z' {
		return 0
	}
	prev := name[len(name)-2]
	if prev < '0' || prev > '9' {
		return 0
	}
	return int(last-'a') + 1
}

// MeasureName joins a measure number and its volta letter.
func MeasureName(number, volta int) string {
	return strconv.Itoa(number) + VoltaSuffix(volta)
}

// NominalLength converts a time signature such as "3/4" into its length in
// quarter notes (numerator / denominator * 4).
func NominalLength(timeSignature string) (float64, error) {
	ts := strings.TrimSpace(timeSignature)
	if ts == "" {
		return 0, Wrap(ErrFormat, "time signature", "empty value", nil)
	}
	r, ok := new(big.Rat).SetString(ts)
	if !ok || r.Sign() <= 0 {
		return 0, Wrap(ErrFormat, "time signature", fmt.Sprintf("invalid value %q", timeSignature), nil)
	}
	r.Mul(r, big.NewRat(4, 1))
	value, _ := r.Float64()
	return value, nil
}

// DedupNext removes repeated counts while keeping the first occurrence of each.
func DedupNext(next []int) []int {
	if len(next) == 0 {
		return []int{}
	}
	out := make([]int, 0, len(next))
	seen := make(map[int]struct{}, len(next))
	for _, count := range next {
		if _, ok := seen[count]; ok {
			continue
		}
		seen[count] = struct{}{}
		out = append(out, count)
	}
	return out
}
