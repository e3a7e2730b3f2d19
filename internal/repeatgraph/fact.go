package repeatgraph

import "strings"

// Barline classifies the left barline of a measure.
type Barline int

const (
	// BarlineNone means the parser reported no explicit left barline.
	BarlineNone Barline = iota
	// BarlineRegular is a plain single barline.
	BarlineRegular
	// BarlineRepeat is a repeat sign (start or end).
	BarlineRepeat
	// BarlineOther covers every other style (double, final, dashed, ...).
	BarlineOther
)

// ParseBarline maps a barline type label onto a Barline. Unknown non-empty
// labels become BarlineOther.
func ParseBarline(label string) Barline {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "none":
		return BarlineNone
	case "regular", "plain", "single":
		return BarlineRegular
	case "repeat", "start-repeat", "end-repeat":
		return BarlineRepeat
	default:
		return BarlineOther
	}
}

func (b Barline) String() string {
	switch b {
	case BarlineNone:
		return "none"
	case BarlineRegular:
		return "regular"
	case BarlineRepeat:
		return "repeat"
	default:
		return "other"
	}
}

// Fact is what a score parser knows about one measure.
type Fact struct {
	StartRepeat bool
	EndRepeat   bool
	LeftBarline Barline

	QStamp        *float64 // required
	Number        int      // MN as printed; 0 is a valid anacrusis number
	Volta         int      // 1-based alternate ending index, 0 outside voltas
	TimeSignature string   // empty carries the previous measure's signature
	NominalLength float64  // 0 derives the length from the time signature
	ActualLength  float64
}
