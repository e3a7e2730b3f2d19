package successor

import (
	"slices"
	"testing"

	"measuremap/internal/measure"
)

func TestDefaultLinear(t *testing.T) {
	m := measure.Measure{
		Count: 3, QStamp: 8, Number: 3, Name: "3",
		TimeSignature: "4/4", NominalLength: 4, ActualLength: 4,
		StartRepeat: true, EndRepeat: true, Next: []int{1, 4},
	}
	got := Default(m)
	want := measure.Measure{
		Count: 4, QStamp: 12, Number: 4, Name: "4",
		TimeSignature: "4/4", NominalLength: 4, ActualLength: 4,
		Next: []int{5},
	}
	if !got.Equal(want) {
		t.Fatalf("Default() = %v, want %v", got, want)
	}
	if m.Count != 3 || !slices.Equal(m.Next, []int{1, 4}) {
		t.Fatal("Default must not mutate its input")
	}
}

func TestDefaultAfterPickup(t *testing.T) {
	pickup := measure.Measure{
		Count: 1, QStamp: 0, Number: 0, Name: "0",
		TimeSignature: "3/4", NominalLength: 3, ActualLength: 1,
	}
	got := Default(pickup)
	if got.QStamp != 1 || got.Number != 1 || got.ActualLength != 3 {
		t.Fatalf("unexpected successor of pickup: %v", got)
	}
}

func TestDefaultInsideVolta(t *testing.T) {
	m := measure.Measure{Count: 9, QStamp: 32, Number: 8, Name: "8a", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4}
	got := Default(m)
	if got.Number != 8 || got.Name != "8b" {
		t.Fatalf("expected 8b, got number=%d name=%q", got.Number, got.Name)
	}
}

func TestDefaultWithMeter(t *testing.T) {
	m := measure.Measure{Count: 1, Number: 1, Name: "1", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4}
	got := Default(m, WithMeter("6/8", 3))
	if got.TimeSignature != "6/8" || got.NominalLength != 3 || got.ActualLength != 3 {
		t.Fatalf("expected meter override, got %v", got)
	}
}

func TestMatchesIgnoresNext(t *testing.T) {
	prev := measure.Measure{Count: 1, QStamp: 0, Number: 1, Name: "1", TimeSignature: "3/4", NominalLength: 3, ActualLength: 3, Next: []int{2}}
	cur := measure.Measure{Count: 2, QStamp: 3, Number: 2, Name: "2", TimeSignature: "3/4", NominalLength: 3, ActualLength: 3, Next: []int{1, 3}}
	if !Matches(prev, cur) {
		t.Fatalf("expected match, differences: %v", Differences(prev, cur))
	}
	cur.TimeSignature = "2/4"
	cur.NominalLength = 2
	if Matches(prev, cur) {
		t.Fatal("expected meter change to break the match")
	}
	if got := Differences(prev, cur); !slices.Equal(got, []string{"time_signature", "nominal_length"}) {
		t.Fatalf("unexpected differences %v", got)
	}
}

func TestReport(t *testing.T) {
	mm := sampleMap(t)
	stats := Report(mm)
	if stats.Total != 6 {
		t.Fatalf("unexpected total %d", stats.Total)
	}
	if stats.Derivable+len(stats.Explicit) != 5 {
		t.Fatalf("expected 5 compared measures, got %+v", stats)
	}
	var counts []int
	for _, f := range stats.Explicit {
		counts = append(counts, f.Count)
	}
	if !slices.Equal(counts, []int{2, 4, 6}) {
		t.Fatalf("unexpected explicit measures %v (%+v)", counts, stats.Explicit)
	}
}

// sampleMap builds: pickup | 1 |: 2 | 3a :| 3b | 4 (meter change)
func sampleMap(t *testing.T) *measure.Map {
	t.Helper()
	mm, err := measure.New([]measure.Measure{
		{Count: 1, QStamp: 0, Number: 0, Name: "0", TimeSignature: "4/4", NominalLength: 4, ActualLength: 1, Next: []int{2}},
		{Count: 2, QStamp: 1, Number: 1, Name: "1", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4, StartRepeat: true, Next: []int{3}},
		{Count: 3, QStamp: 5, Number: 2, Name: "2", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4, Next: []int{4, 5}},
		{Count: 4, QStamp: 9, Number: 3, Name: "3a", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4, EndRepeat: true, Next: []int{2}},
		{Count: 5, QStamp: 13, Number: 3, Name: "3b", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4, Next: []int{6}},
		{Count: 6, QStamp: 17, Number: 4, Name: "4", TimeSignature: "3/4", NominalLength: 3, ActualLength: 3},
	})
	if err != nil {
		t.Fatalf("measure.New: %v", err)
	}
	return mm
}
