package stats

import "testing"

func TestVarianceZeroWhenIdentical(t *testing.T) {
	xs := []float64{1.0123, 1.0123, 1.0123, 1.0123}
	if v := Variance(xs); v != 0 {
		t.Errorf("Variance of identical samples = %v, want 0", v)
	}
}

func TestVarianceDetectsDivergence(t *testing.T) {
	xs := []float64{1.0, 1.0, 1.0, 1.5}
	if v := Variance(xs); v <= 0 {
		t.Errorf("Variance of divergent samples = %v, want > 0", v)
	}
}

func TestMaxAbsDiff(t *testing.T) {
	xs := []float64{2.0, 2.0, 2.25, 1.75}
	if d := MaxAbsDiff(xs); d != 0.25 {
		t.Errorf("MaxAbsDiff = %v, want 0.25", d)
	}
}
