package internaldefs

import "testing"

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHistogramBoundsMatchSuffixes(t *testing.T) {
	bounds := HistogramBounds()
	if len(bounds)+1 != len(HistogramBoundSuffix) {
		t.Fatalf("expected %d bounds plus +Inf, got %d", len(HistogramBoundSuffix)-1, len(bounds))
	}
	if bounds[0] != 0.005 || bounds[len(bounds)-1] != 0.5 {
		t.Fatalf("unexpected bounds %v", bounds)
	}
}
