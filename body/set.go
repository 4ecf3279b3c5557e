package body

import (
	"sync"

	"github.com/gazed/solve2d/handle"
	"github.com/gazed/solve2d/shape"
)

// SolverSet is the dense, index-parallel array storage for one set of
// bodies (the awake set, or one sleeping island's set) plus the
// generation table needed to detect dangling handles (spec.md §6
// "index+generation handles"). Allocation is grounded on the teacher's
// bodyUUID + sync.Mutex id-allocation pattern (physics/body.go),
// generalized from a monotonically increasing id to generation-tagged
// slot reuse so destroyed bodies free their slot for reuse.
type SolverSet struct {
	mu sync.Mutex

	world0 int32

	Sims   []Sim
	States []State

	generations []uint16
	free        []int32 // free-list of reusable slot indices

	Shapes []shape.Shape
}

// NewSolverSet creates an empty set for the given world id.
func NewSolverSet(world0 int32) *SolverSet {
	return &SolverSet{world0: world0}
}

// Create allocates a new body slot, returning its stable handle.
func (s *SolverSet) Create(sim Sim, st State) handle.BodyID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idx int32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
		s.Sims[idx] = sim
		s.States[idx] = st
	} else {
		idx = int32(len(s.Sims))
		s.Sims = append(s.Sims, sim)
		s.States = append(s.States, st)
		s.generations = append(s.generations, 0)
	}
	return handle.NewBodyID(idx, s.world0, s.generations[idx])
}

// Destroy frees a body's slot and bumps its generation so existing
// handles become detectably stale.
func (s *SolverSet) Destroy(id handle.BodyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := id.RawIndex()
	if idx < 0 || int(idx) >= len(s.Sims) {
		return
	}
	s.generations[idx]++
	s.free = append(s.free, idx)
}

// Resolve returns the raw index for a handle, or -1 if the handle is
// stale (its generation no longer matches the live slot).
func (s *SolverSet) Resolve(id handle.BodyID) int32 {
	idx := id.RawIndex()
	if idx < 0 || int(idx) >= len(s.generations) {
		return -1
	}
	if s.generations[idx] != id.Generation {
		return -1
	}
	return idx
}

// Count returns the number of body slots, including free-list entries
// that have not been reallocated — i.e. dense array length, matching
// spec.md's "dense indices" data model.
func (s *SolverSet) Count() int { return len(s.Sims) }

// HandleFor returns the current, valid handle for a live raw index —
// callers that already hold a raw index (e.g. from iterating Sims
// directly) and need to hand a stable handle.BodyID out through an event
// use this rather than reconstructing the generation themselves.
func (s *SolverSet) HandleFor(idx int32) handle.BodyID {
	return handle.NewBodyID(idx, s.world0, s.generations[idx])
}
