package successor

import (
	"errors"
	"slices"
	"testing"

	"measuremap/internal/measure"
)

func TestCompressExpandRoundTrip(t *testing.T) {
	mm := sampleMap(t)
	c := Compress(mm)
	if c.Len() != mm.Len() {
		t.Fatalf("compressed length %d, want %d", c.Len(), mm.Len())
	}

	var defaults []int
	for i, d := range c.Deltas {
		if d.IsDefault() {
			defaults = append(defaults, i+2)
		}
	}
	// MC 3 matches its default successor except for Next, which still has
	// to be stored; MC 5 (the second ending) is fully derivable.
	if !slices.Equal(defaults, []int{5}) {
		t.Fatalf("expected only MC 5 to be default, got %v", defaults)
	}
	if c.Explicit() != 4 {
		t.Fatalf("unexpected explicit count %d", c.Explicit())
	}

	third := c.Deltas[1].Override
	if third.QStamp != nil || third.Name != nil || !slices.Equal(third.Next, []int{4, 5}) {
		t.Fatalf("expected MC 3 to override only next, got %+v", third)
	}

	expanded, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if err := mm.Compare(expanded); err != nil {
		t.Fatalf("round trip mismatch: %v", err)
	}
}

func TestCompressLinearMapIsAllDefaults(t *testing.T) {
	measures := make([]measure.Measure, 4)
	for i := range measures {
		measures[i] = measure.Measure{
			Count: i + 1, QStamp: float64(i) * 3, Number: i + 1, Name: measure.MeasureName(i+1, 0),
			TimeSignature: "3/4", NominalLength: 3, ActualLength: 3,
		}
		if i < 3 {
			measures[i].Next = []int{i + 2}
		}
	}
	mm, err := measure.New(measures)
	if err != nil {
		t.Fatalf("measure.New: %v", err)
	}
	c := Compress(mm)
	for i, d := range c.Deltas {
		if !d.IsDefault() {
			t.Fatalf("delta %d carries override %+v", i, *d.Override)
		}
	}
	expanded, err := Expand(c)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !mm.Equal(expanded) {
		t.Fatal("expected expanded map to equal original")
	}
	if last := expanded.At(3); len(last.Next) != 0 {
		t.Fatalf("expected final measure without successors, got %v", last.Next)
	}
}

func TestExpandRejectsBadFirstMeasure(t *testing.T) {
	_, err := Expand(Compressed{First: measure.Measure{Count: 2}})
	if !errors.Is(err, measure.ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
}

func TestDeltaApplyOverridesOnlyGivenFields(t *testing.T) {
	prev := measure.Measure{Count: 1, QStamp: 0, Number: 1, Name: "1", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4}
	end := true
	d := Delta{Override: &Fields{EndRepeat: &end, Next: []int{1}}}
	got := d.Apply(prev, true)
	want := measure.Measure{Count: 2, QStamp: 4, Number: 2, Name: "2", TimeSignature: "4/4", NominalLength: 4, ActualLength: 4, EndRepeat: true, Next: []int{1}}
	if !got.Equal(want) {
		t.Fatalf("Apply() = %v, want %v", got, want)
	}
}
