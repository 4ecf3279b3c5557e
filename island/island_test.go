package island

import "testing"

func TestUpdateMinSleepTimeTakesMinimum(t *testing.T) {
	s := &Set{Islands: []Island{{ID: 0}}}
	s.UpdateMinSleepTime(0, []float32{0.5, 0.1, 0.9})
	if s.Islands[0].MinSleepTime != 0.1 {
		t.Errorf("expected min sleep time 0.1, got %v", s.Islands[0].MinSleepTime)
	}
	if s.Islands[0].BodyCount != 3 {
		t.Errorf("expected body count 3, got %d", s.Islands[0].BodyCount)
	}
}

func TestReadyToSleepThreshold(t *testing.T) {
	s := &Set{Islands: []Island{{MinSleepTime: 0.5}}}
	if s.ReadyToSleep(0, 0.6) {
		t.Errorf("should not be ready to sleep below threshold")
	}
	if !s.ReadyToSleep(0, 0.5) {
		t.Errorf("should be ready to sleep at threshold")
	}
}

func TestSelectSplitCandidatePrefersLargestSleepTime(t *testing.T) {
	s := &Set{Islands: []Island{
		{ID: 0, SplitCandidate: true, SplitSleepTime: 0.2},
		{ID: 1, SplitCandidate: true, SplitSleepTime: 0.8},
		{ID: 2, SplitCandidate: false, SplitSleepTime: 5.0},
	}}
	idx, ok := s.SelectSplitCandidate()
	if !ok || s.Islands[idx].ID != 1 {
		t.Fatalf("expected island 1 selected, got idx=%d ok=%v", idx, ok)
	}
}

func TestSelectSplitCandidateTieBreaksOnSmallestID(t *testing.T) {
	s := &Set{Islands: []Island{
		{ID: 5, SplitCandidate: true, SplitSleepTime: 1.0},
		{ID: 2, SplitCandidate: true, SplitSleepTime: 1.0},
	}}
	idx, ok := s.SelectSplitCandidate()
	if !ok || s.Islands[idx].ID != 2 {
		t.Fatalf("expected tie-break to island 2, got idx=%d ok=%v", idx, ok)
	}
}

func TestSelectSplitCandidateNoneEligible(t *testing.T) {
	s := &Set{Islands: []Island{{ID: 0, SplitCandidate: false}}}
	if _, ok := s.SelectSplitCandidate(); ok {
		t.Errorf("expected no candidate when none are eligible")
	}
}
