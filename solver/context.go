package solver

import (
	"github.com/gazed/solve2d/bitset"
	"github.com/gazed/solve2d/event"
	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/sensor"
)

// workerScratch is one worker's private accumulation buffer for the
// events produced while it walks its assigned blocks, spec.md §3's
// TaskContext — kept per-worker (not a single shared slice) so block
// kernels never need to synchronize a write to the output event arrays;
// poststep concatenates every worker's scratch once the step's stages are
// all complete.
//
// enlarged is this worker's enlargedSimBitSet (spec.md §4.4 step 6 /
// §5): finalize only records which sims need a broad-phase enlarge here,
// never calling broadphase.Tree.EnlargeProxy itself, since that mutates
// shared tree nodes and isn't safe to call from multiple workers at once.
// refitBroadPhase OR-reduces every worker's bitset and performs the
// actual enlarge serially after the join.
//
// sensorHits is this worker's sensorHits buffer (spec.md §3's
// TaskContext.sensorHits): CCD sweeps append discovered sensor overlaps
// here instead of calling sensor.Engine.Record directly, since Record's
// map/slice bookkeeping isn't safe for concurrent callers either.
type workerScratch struct {
	bodyMoves   []event.BodyMove
	contactHits []event.ContactHit
	sensorHits  []sensor.Pair

	enlarged *bitset.BitSet
}

// stepContext is the per-Step scratch shared read-only (aside from each
// worker's own workerScratch slot) across every stage's kernels, spec.md
// §3's StepContext: the substep timestep, its reciprocal, gravity, and
// the per-joint hit bitset threshold kernels populate.
type stepContext struct {
	dt              float32
	h, invH         float32
	maxAngularSpeed float32
	gravity         lin.Vec2

	jointHits []bool

	workers []workerScratch
}

func newStepContext(o Options, jointCount, bodyCount, workerCount int, dt float32) *stepContext {
	h := dt / float32(o.SubstepCount)
	invH := float32(0)
	if h > 0 {
		invH = 1 / h
	}
	maxAngularSpeed := float32(0)
	if dt > 0 {
		maxAngularSpeed = o.MaxRotation / dt
	}
	ctx := &stepContext{
		dt:              dt,
		h:               h,
		invH:            invH,
		maxAngularSpeed: maxAngularSpeed,
		gravity:         o.Gravity,
		jointHits:       make([]bool, jointCount),
		workers:         make([]workerScratch, workerCount),
	}
	for i := range ctx.workers {
		ctx.workers[i].enlarged = bitset.New(bodyCount)
	}
	return ctx
}
