package repeatgraph

import (
	"errors"
	"fmt"

	"measuremap/internal/measure"
)

// State is carried from one measure to the next while building.
type State struct {
	RepeatTarget  int  // count to jump back to when the open repeat closes
	ResumeFrom    int  // count whose successors gain each new alternate ending
	PrevEndRepeat bool // whether the previous measure closed a repeat
}

// InitialState returns the state before the first measure.
func InitialState() State {
	return State{RepeatTarget: 1, ResumeFrom: 1}
}

// Link is a forward edge that a measure adds to an earlier measure's successors.
type Link struct {
	From int
	To   int
}

// Transition is the outcome of Step for one measure.
type Transition struct {
	State State
	Next  []int
	Link  *Link
}

// Step applies the barline rules to the measure at count. hasFollower reports
// whether another measure comes after it. A regular barline on the first
// measure leaves ResumeFrom at 1 rather than 0, so a later end repeat still
// falls through to its following measure instead of ending an alternate.
func Step(st State, count int, fact Fact, hasFollower bool) Transition {
	out := Transition{State: st}

	switch {
	case fact.StartRepeat:
		out.State.RepeatTarget = count
	case fact.LeftBarline == BarlineRegular:
		if st.PrevEndRepeat {
			out.Link = &Link{From: st.ResumeFrom, To: count}
		} else {
			// The first measure has no predecessor to resume from.
			out.State.ResumeFrom = max(count-1, 1)
		}
	}

	next := make([]int, 0, 2)
	if fact.EndRepeat {
		next = append(next, out.State.RepeatTarget)
	}
	resume := out.State.ResumeFrom
	closesEnding := fact.EndRepeat && count > resume && resume != 1
	if hasFollower && !closesEnding {
		next = append(next, count+1)
	}
	out.Next = next
	out.State.PrevEndRepeat = fact.EndRepeat
	return out
}

// Build derives the repeat graph for one part and returns its measure map.
func Build(facts []Fact) (*measure.Map, error) {
	if len(facts) == 0 {
		return nil, measure.Wrap(measure.ErrStructural, "build", "no measures", nil)
	}
	if facts[0].TimeSignature == "" {
		return nil, measure.Wrap(measure.ErrStructural, "build", "first measure has no time signature", nil)
	}

	nexts := make([][]int, len(facts))
	state := InitialState()
	for i, fact := range facts {
		count := i + 1
		if fact.QStamp == nil {
			return nil, measure.Wrap(measure.ErrMissingTimeline, "build", fmt.Sprintf("MC %d has no qstamp", count), nil)
		}
		tr := Step(state, count, fact, count < len(facts))
		nexts[i] = tr.Next
		if tr.Link != nil {
			nexts[tr.Link.From-1] = append(nexts[tr.Link.From-1], tr.Link.To)
		}
		state = tr.State
	}

	records := make([]measure.Record, len(facts))
	timeSig := facts[0].TimeSignature
	for i, fact := range facts {
		if fact.TimeSignature != "" {
			timeSig = fact.TimeSignature
		}
		records[i] = measure.Record{
			Count:         i + 1,
			QStamp:        fact.QStamp,
			Number:        fact.Number,
			Volta:         fact.Volta,
			TimeSignature: timeSig,
			NominalLength: fact.NominalLength,
			ActualLength:  fact.ActualLength,
			StartRepeat:   fact.StartRepeat,
			EndRepeat:     fact.EndRepeat,
			Next:          measure.DedupNext(nexts[i]),
		}
	}
	return measure.FromRecords(records)
}

// BuildParts builds the map for the first part. When checkParts is set and
// there are further parts, each is built and compared with the first; the
// first mismatch is returned as a *measure.ConsistencyError.
func BuildParts(parts [][]Fact, checkParts bool) (*measure.Map, error) {
	if len(parts) == 0 {
		return nil, measure.Wrap(measure.ErrStructural, "build parts", "no parts", nil)
	}
	first, err := Build(parts[0])
	if err != nil {
		return nil, fmt.Errorf("part 0: %w", err)
	}
	if !checkParts {
		return first, nil
	}
	for idx := 1; idx < len(parts); idx++ {
		other, err := Build(parts[idx])
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", idx, err)
		}
		if err := first.Compare(other); err != nil {
			var cerr *measure.ConsistencyError
			if errors.As(err, &cerr) {
				cerr.Part = idx
				return nil, cerr
			}
			return nil, err
		}
	}
	return first, nil
}
