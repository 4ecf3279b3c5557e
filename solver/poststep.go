package solver

import (
	"sort"

	"github.com/gazed/solve2d/bitset"
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/distance"
	"github.com/gazed/solve2d/event"
)

func (w *World) isDynamicAwake(i int32) bool {
	return w.bodies.Sims[i].Type == body.Dynamic && !w.asleep.Get(int(i))
}

// consolidate merges every worker's per-step scratch into one ordered
// event.Set, spec.md §4.2's post-step consolidation stage. Which worker
// runs which body block depends on work stealing, so the concatenated body
// moves are sorted by body index, giving the same order for every run and
// every workerCount.
func consolidate(ctx *stepContext) event.Set {
	var out event.Set
	for i := range ctx.workers {
		out.BodyMoves = append(out.BodyMoves, ctx.workers[i].bodyMoves...)
		out.ContactHits = append(out.ContactHits, ctx.workers[i].contactHits...)
	}
	sort.Slice(out.BodyMoves, func(a, b int) bool {
		return out.BodyMoves[a].BodyID.Index1 < out.BodyMoves[b].BodyID.Index1
	})
	return out
}

// refitBroadPhase performs every broad-phase mutation finalize's parallel
// pass only recorded, spec.md §5's "broad-phase mutation (EnlargeProxy,
// BufferMove) is serial, performed by the main thread after the solver
// joins" rule. kernelFinalizeBody runs across workers concurrently with
// solveCCDForBody's tree Queries, so it must never call EnlargeProxy/
// BufferMove itself (both rewire shared parent pointers, the tree root,
// and the tree's node slice); instead it only sets a bit in its worker's
// enlargedSimBitSet. Here those per-worker bitsets are OR-reduced into one
// set and every flagged body's shapes are enlarged for real, then each
// tree's moved-proxy queue is drained.
func (w *World) refitBroadPhase(ctx *stepContext) {
	enlarged := bitset.New(len(w.bodies.Sims))
	for i := range ctx.workers {
		if ctx.workers[i].enlarged != nil {
			bitset.OrInto(enlarged, ctx.workers[i].enlarged)
		}
	}

	enlarged.ForEachSet(func(i int) {
		sim := &w.bodies.Sims[int32(i)]
		for _, si := range w.shapesOfBody(int32(i)) {
			rec := &w.shapes[si]
			aabb := rec.shape.ComputeAABB(sim.Transform).Inflate(w.opts.SpeculativeDistance)
			w.trees[rec.bodyType].EnlargeProxy(rec.proxyID, aabb)
		}
	})

	for t := range w.trees {
		_ = w.trees[t].MovedProxies()
	}
}

// detectSensors runs the sensor overlap scan and double-buffered diff,
// spec.md §4.6: begin a new buffer, append the sensor hits CCD discovered
// mid-step (ctx is nil on the zero-dt path, where no CCD ran), record
// every true (non-AABB-only) overlap between an alive sensor shape and an
// alive non-sensor visitor shape in deterministic sorted order, then diff
// against the previous buffer to emit begin/end events.
func (w *World) detectSensors(ctx *stepContext, out *event.Set) {
	w.sensors.BeginStep()

	if ctx != nil {
		for i := range ctx.workers {
			for _, hit := range ctx.workers[i].sensorHits {
				w.sensors.Record(hit.Sensor, hit.Visitor)
			}
		}
	}

	var sensorIdx []int32
	for i := range w.shapes {
		if w.shapes[i].alive && w.shapes[i].shape.IsSensor {
			sensorIdx = append(sensorIdx, int32(i))
		}
	}
	sort.Slice(sensorIdx, func(a, b int) bool { return sensorIdx[a] < sensorIdx[b] })

	for _, si := range sensorIdx {
		sensor := &w.shapes[si]
		sensorID := sensor.id(w.world0, si)
		fat := w.trees[sensor.bodyType].FatAABB(sensor.proxyID)

		var visitors []int32
		for t := range w.trees {
			w.trees[t].Query(fat, func(otherIdx int32) bool {
				other := &w.shapes[otherIdx]
				if !other.alive || other.shape.IsSensor || other.bodyIdx == sensor.bodyIdx {
					return true
				}
				pA := distance.MakeProxy(&sensor.shape).Transform(w.bodies.Sims[sensor.bodyIdx].Transform)
				pB := distance.MakeProxy(&other.shape).Transform(w.bodies.Sims[other.bodyIdx].Transform)
				d := distance.ShapeDistance(pA, pB)
				if d.Distance-pA.Radius-pB.Radius > 0 {
					return true
				}
				visitors = append(visitors, otherIdx)
				return true
			})
		}
		sort.Slice(visitors, func(a, b int) bool { return visitors[a] < visitors[b] })
		for _, vi := range visitors {
			w.sensors.Record(sensorID, w.shapes[vi].id(w.world0, vi))
		}
	}

	w.sensors.EndStep(out)
}

// updateSleepState folds every awake dynamic body's sleep time into the
// single global island, transitions it to asleep once every member has
// been quiescent for opts.TimeToSleep, and marks the woken-to-asleep
// transition on each body's BodyMoveEvent (FellAsleep), spec.md §4.4 step
// 5 / §4.7.
func (w *World) updateSleepState(out *event.Set) {
	if !w.opts.EnableSleep || len(w.islands.Islands) == 0 {
		return
	}

	sleepTimes := make([]float32, 0, len(w.bodies.Sims))
	for i := range w.bodies.Sims {
		if w.isDynamicAwake(int32(i)) {
			sleepTimes = append(sleepTimes, w.bodies.Sims[i].SleepTime)
		}
	}
	if len(sleepTimes) == 0 {
		return
	}
	w.islands.UpdateMinSleepTime(0, sleepTimes)

	if !w.islands.ReadyToSleep(0, w.opts.TimeToSleep) {
		return
	}

	w.asleep.Grow(len(w.bodies.Sims))
	for i := range w.bodies.Sims {
		if w.isDynamicAwake(int32(i)) {
			w.asleep.Set(i)
			for j := range out.BodyMoves {
				if out.BodyMoves[j].BodyID == w.bodies.HandleFor(int32(i)) {
					out.BodyMoves[j].FellAsleep = true
				}
			}
		}
	}
	w.islands.Islands[0].MinSleepTime = 0
}
