// Package island tracks per-island sleep-time bookkeeping and split
// candidate selection, spec.md §4.4 steps 5 and 8. No teacher precedent —
// the teacher's physics package has no island/sleep concept at all (every
// body is always simulated); this is built directly from the spec's
// description rather than adapted from an existing file.
package island

// Island is one connected component of awake, touching bodies.
type Island struct {
	ID int32

	// MinSleepTime is the minimum SleepTime across every body in the
	// island; the island can fall asleep once this reaches the
	// timeToSleep passed to ReadyToSleep.
	MinSleepTime float32

	// SplitSleepTime is set when a subset of this island's bodies could
	// be separated into their own island (e.g. a contact was destroyed
	// and the remaining graph is disconnected); it records how long that
	// candidate split-off subset has been quiescent, used to break ties
	// when more than one island is eligible to split in the same step.
	SplitSleepTime float32
	SplitCandidate bool

	BodyCount int32
}

// Set is the collection of islands for one solver set.
type Set struct {
	Islands []Island
}

// UpdateMinSleepTime recomputes island i's MinSleepTime from the sleep
// times of its member bodies, called once per step after integration
// per spec.md §4.4 step 5 ("update each awake island's minimum sleep
// time").
func (s *Set) UpdateMinSleepTime(islandIndex int, bodySleepTimes []float32) {
	if len(bodySleepTimes) == 0 {
		return
	}
	min := bodySleepTimes[0]
	for _, t := range bodySleepTimes[1:] {
		if t < min {
			min = t
		}
	}
	s.Islands[islandIndex].MinSleepTime = min
	s.Islands[islandIndex].BodyCount = int32(len(bodySleepTimes))
}

// ReadyToSleep reports whether island i's bodies have all been quiescent
// for at least timeToSleep seconds.
func (s *Set) ReadyToSleep(islandIndex int, timeToSleep float32) bool {
	return s.Islands[islandIndex].MinSleepTime >= timeToSleep
}

// SelectSplitCandidate picks the split candidate spec.md §4.4 step 8 names:
// the island with the largest SplitSleepTime, ties broken by the smallest
// ID so the choice is deterministic across worker counts (a requirement
// shared with the solver's testable determinism property).
func (s *Set) SelectSplitCandidate() (index int, ok bool) {
	best := -1
	for i := range s.Islands {
		isl := &s.Islands[i]
		if !isl.SplitCandidate {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		cur := &s.Islands[best]
		if isl.SplitSleepTime > cur.SplitSleepTime ||
			(isl.SplitSleepTime == cur.SplitSleepTime && isl.ID < cur.ID) {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
