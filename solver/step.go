package solver

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/event"
	"github.com/gazed/solve2d/joint"
)

// runColorStage executes one block array against one kernel for color c:
// non-overflow colors go through the stage machine's parallel dispatch,
// the reserved overflow color runs serially on the calling goroutine as a
// single synthetic block (spec.md §9's "overflow color is solved serially,
// interleaved with each color's parallel pass" resolution).
func (w *World) runColorStage(c int, arr *blockArray, kernel kernelFn, count int) {
	if c == overflowColor {
		if count > 0 {
			kernel(0, &block{start: 0, count: int32(count), kind: blockJointContact})
		}
		return
	}
	w.stages.dispatch(arr, kernel)
}

// Solve advances the world by dt, running the full staged pipeline: serial
// narrowphase/coloring, PrepareJoints/PrepareContacts, SubstepCount rounds
// of IntegrateVelocities→WarmStart→Solve→IntegratePositions→Relax, a
// final Restitution/StoreImpulses pass, parallel body finalization
// (inlining non-bullet CCD), the dedicated bullet CCD task, and post-step
// consolidation (broad-phase refit, sensor diff, sleep transition, event
// merge) — spec.md §4.2's stage ordering.
func (w *World) Solve(dt float32) event.Set {
	w.stages.start()

	if dt <= 0 {
		// zero-dt steps still refresh contacts/sensors so query-only
		// callers see a consistent world, but never move anything or
		// burn a solve — spec.md §8's zero-dt idempotence property.
		w.refreshContacts()
		var out event.Set
		w.detectSensors(nil, &out)
		return out
	}

	w.refreshContacts()
	w.rebuildColors()
	colorWorks := w.buildColorWork()

	ctx := newStepContext(w.opts, len(w.joints), len(w.bodies.Sims), w.opts.WorkerCount, dt)
	bodyBlocks := buildBodyBlocks(len(w.bodies.Sims), w.opts.WorkerCount)

	for i := range w.bodies.Sims {
		sim := &w.bodies.Sims[i]
		if sim.Type == body.Static {
			continue
		}
		sim.Center0 = sim.Center
		sim.Rotation0 = sim.Transform.Q
	}

	for c := 0; c <= overflowColor; c++ {
		bucket := &w.colors[c]
		work := &colorWorks[c]
		w.runColorStage(c, work.jointBlocks, w.kernelPrepareJoints(bucket, work, ctx.h), len(bucket.jointIndices))
		w.runColorStage(c, work.contactBlocks, w.kernelPrepareContacts(bucket, work, ctx.h), len(bucket.contactIndices))
	}

	for substep := 0; substep < w.opts.SubstepCount; substep++ {
		w.stages.dispatch(bodyBlocks, w.kernelIntegrateVelocities(ctx.gravity, ctx.h, ctx.maxAngularSpeed))

		for c := 0; c <= overflowColor; c++ {
			bucket := &w.colors[c]
			work := &colorWorks[c]
			w.runColorStage(c, work.jointBlocks, w.kernelWarmStartJoints(work), len(bucket.jointIndices))
			w.runColorStage(c, work.contactBlocks, w.kernelWarmStartContacts(work), len(bucket.contactIndices))
		}

		for it := 0; it < w.opts.SolveIterations; it++ {
			for c := 0; c <= overflowColor; c++ {
				bucket := &w.colors[c]
				work := &colorWorks[c]
				w.runColorStage(c, work.jointBlocks, w.kernelSolveJoints(work, true, ctx.h, ctx.invH, ctx.jointHits), len(bucket.jointIndices))
				w.runColorStage(c, work.contactBlocks, w.kernelSolveContacts(work, true, ctx.invH), len(bucket.contactIndices))
			}
		}

		w.stages.dispatch(bodyBlocks, w.kernelIntegratePositions(ctx.h))

		for it := 0; it < w.opts.RelaxIterations; it++ {
			for c := 0; c <= overflowColor; c++ {
				bucket := &w.colors[c]
				work := &colorWorks[c]
				w.runColorStage(c, work.jointBlocks, w.kernelSolveJoints(work, false, ctx.h, ctx.invH, ctx.jointHits), len(bucket.jointIndices))
				w.runColorStage(c, work.contactBlocks, w.kernelSolveContacts(work, false, ctx.invH), len(bucket.contactIndices))
			}
		}
	}

	for c := 0; c <= overflowColor; c++ {
		bucket := &w.colors[c]
		work := &colorWorks[c]
		w.runColorStage(c, work.contactBlocks, w.kernelRestitutionContacts(work, w.opts.RestitutionThreshold), len(bucket.contactIndices))
	}
	for c := 0; c <= overflowColor; c++ {
		bucket := &w.colors[c]
		work := &colorWorks[c]
		w.runColorStage(c, work.contactBlocks, w.kernelStoreImpulses(bucket, work), len(bucket.contactIndices))
	}

	w.stages.dispatch(bodyBlocks, w.kernelFinalizeBody(ctx))
	w.runContinuous(ctx)

	out := consolidate(ctx)
	w.refitBroadPhase(ctx)
	w.detectSensors(ctx, &out)
	w.updateSleepState(&out)
	w.collectConstraintEvents(&colorWorks, ctx, &out)

	return out
}

// collectConstraintEvents walks every color's working joints/contacts one
// last time (serially — this is event synthesis, not physics, and cheap
// relative to the solve just finished) to emit JointEvents for joints
// whose force/torque threshold was exceeded this step (ctx.jointHits) and
// ContactHitEvents for contacts whose approach speed was nonzero and
// whose owning shape opted into reporting.
func (w *World) collectConstraintEvents(colorWorks *[numColorSlots]colorWork, ctx *stepContext, out *event.Set) {
	for c := 0; c <= overflowColor; c++ {
		bucket := &w.colors[c]
		work := &colorWorks[c]

		for pos, wj := range work.workingJoints {
			idx := bucket.jointIndices[pos]
			if !ctx.jointHits[idx] {
				continue
			}
			out.Joints = append(out.Joints, event.Joint{
				JointID:  w.joints[idx].id,
				Reaction: joint.GetJointReaction(wj),
			})
		}

		for pos, wc := range work.workingContacts {
			ci := bucket.contactIndices[pos]
			rec := &w.contacts[ci]
			if !rec.enableEvents || wc.Manifold.Count == 0 {
				continue
			}
			approach := -wc.Manifold.Points[0].RelativeVelocity
			if approach <= 0 {
				continue
			}
			sA, sB := &w.shapes[rec.shapeA], &w.shapes[rec.shapeB]
			worldAnchor := w.bodies.Sims[rec.bodyA].Center.Add(wc.Manifold.Points[0].AnchorA)
			out.ContactHits = append(out.ContactHits, event.ContactHit{
				ShapeIDA:      sA.id(w.world0, rec.shapeA),
				ShapeIDB:      sB.id(w.world0, rec.shapeB),
				Point:         worldAnchor,
				Normal:        wc.Manifold.Normal,
				ApproachSpeed: approach,
			})
		}
	}
}

// Close stops the stage machine's worker goroutines. Call once a World is
// no longer needed.
func (w *World) Close() {
	w.stages.stop()
}
