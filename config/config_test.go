package config

import "testing"

func TestDefaultsMatchDocumentedNumbers(t *testing.T) {
	c := Defaults()
	if c.SubstepCount != 4 || c.SolveIterations != 8 || c.RelaxIterations != 1 {
		t.Errorf("unexpected substep/iteration defaults: %+v", c)
	}
	if c.LinearSlop != 0.005 || c.SpeculativeDistance != 0.02 {
		t.Errorf("unexpected slop/speculative distance defaults: %+v", c)
	}
}

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	c := New(WithSubsteps(6), WithWorkers(8, 16))
	if c.SubstepCount != 6 {
		t.Errorf("expected 6 substeps, got %d", c.SubstepCount)
	}
	if c.WorkerCount != 8 || c.MinRangePerTask != 16 {
		t.Errorf("expected worker config applied, got %+v", c)
	}
}

func TestWithLinearSlopDerivesSpeculativeDistance(t *testing.T) {
	c := New(WithLinearSlop(0.01))
	if c.SpeculativeDistance != 0.04 {
		t.Errorf("expected speculative distance 0.04, got %v", c.SpeculativeDistance)
	}
}

func TestLoadYAMLPartialOverridesDefaults(t *testing.T) {
	c, err := LoadYAML([]byte("substep_count: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SubstepCount != 2 {
		t.Errorf("expected overridden substep count 2, got %d", c.SubstepCount)
	}
	if c.SolveIterations != 8 {
		t.Errorf("expected default solve iterations preserved, got %d", c.SolveIterations)
	}
}

func TestMarshalYAMLRoundTrips(t *testing.T) {
	c := New(WithSubsteps(3))
	data, err := MarshalYAML(c)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	back, err := LoadYAML(data)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if back.SubstepCount != 3 {
		t.Errorf("expected round-tripped substep count 3, got %d", back.SubstepCount)
	}
}
