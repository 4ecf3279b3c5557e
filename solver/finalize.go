package solver

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/event"
	"github.com/gazed/solve2d/math/lin"
)

// kernelFinalizeBody is the per-body finalization block kernel, spec.md
// §4.4's eight-step body finalization run once per step (not per
// substep) after the last relax/restitution pass:
//  1. apply the step's accumulated deltaPosition/deltaRotation onto the
//     start-of-step pose to get the body's final Transform/Center;
//  2. detect fast bodies and resolve non-bullet CCD inline (bullets are
//     swept separately by runContinuous's dedicated taskqueue pass);
//  3. compute sleepVelocity from the final velocity and this step's pose
//     delta, before the delta is reset, and update the sleep timer;
//  4. reset per-step state (deltas back to identity, forces/torque back
//     to zero) for the next step;
//  5. (unimplemented: split-island proposal — single global island);
//  6. record, per attached shape, whether the broad-phase proxy needs
//     enlarging — a fast body always needs it, otherwise only if the
//     shape's speculative-inflated AABB has escaped its current fat
//     bound — into this worker's enlargedSimBitSet. The actual
//     EnlargeProxy/BufferMove call happens serially in refitBroadPhase
//     after every worker has joined, since it rewires shared tree state;
//  7. emit a BodyMoveEvent into this worker's scratch;
//  8. (unimplemented: awakeIslandBitSet tie-break — single global island).
//
// An already-asleep body instead holds its pose and zero velocity,
// skipping all of the above.
func (w *World) kernelFinalizeBody(ctx *stepContext) kernelFn {
	invDt := float32(0)
	if ctx.dt > 0 {
		invDt = 1 / ctx.dt
	}
	return func(workerIndex int, b *block) {
		assertf(b.kind == blockBody, "kernelFinalizeBody: mis-typed block", "kind", b.kind)
		assertf(int(b.start+b.count) <= len(w.bodies.Sims), "kernelFinalizeBody: block out of range",
			"start", b.start, "count", b.count, "len", len(w.bodies.Sims))
		assertf(workerIndex < len(ctx.workers), "kernelFinalizeBody: worker index out of range",
			"workerIndex", workerIndex, "len", len(ctx.workers))
		scratch := &ctx.workers[workerIndex]
		for i := b.start; i < b.start+b.count; i++ {
			sim := &w.bodies.Sims[i]
			st := &w.bodies.States[i]
			if sim.Type == body.Static {
				continue
			}

			// asleep bodies hold their pose and zero velocity and skip
			// the steps below.
			if w.asleep.Get(int(i)) {
				st.LinearVelocity = lin.Vec2{}
				st.AngularVelocity = 0
				st.DeltaPosition = lin.Vec2{}
				st.DeltaRotation = lin.RotI
				continue
			}

			// step 1: apply deltas.
			sim.Transform.Q = sim.Rotation0.Mul(st.DeltaRotation)
			sim.Center = sim.Center0.Add(st.DeltaPosition)
			sim.Transform.P = sim.Center.Sub(sim.Transform.Q.Apply(sim.LocalCenter))

			// step 2: fast-body CCD, bullets deferred to runContinuous.
			if sim.Type == body.Dynamic && w.opts.EnableContinuous && isFastBody(sim) && !sim.IsBullet {
				w.solveCCDForBody(ctx, workerIndex, i)
			}

			// step 3: sleep timer, dynamic bodies only — sleepVelocity
			// folds in this step's pose delta, so it must be read before
			// the delta is reset below.
			if sim.Type == body.Dynamic && sim.EnableSleep && w.opts.EnableSleep {
				linSpeed := st.LinearVelocity.Len() + lin.Abs(st.AngularVelocity)*sim.MaxExtent
				deltaSpeed := 0.5 * invDt * (st.DeltaPosition.Len() + lin.Abs(st.DeltaRotation.S)*sim.MaxExtent)
				sleepVelocity := linSpeed
				if deltaSpeed > sleepVelocity {
					sleepVelocity = deltaSpeed
				}
				if sleepVelocity > sim.SleepThreshold {
					sim.SleepTime = 0
				} else {
					sim.SleepTime += ctx.dt
				}
			}

			// step 4: reset per-step deltas/forces.
			st.DeltaPosition = lin.Vec2{}
			st.DeltaRotation = lin.RotI
			sim.Force = lin.Vec2{}
			sim.Torque = 0
			sim.IsSpeedCapped = false

			// step 6: broad-phase enlarge-bit recording. Fast bodies
			// already outran their fat AABB by definition; others only
			// need it if the speculative-inflated AABB has escaped.
			fast := isFastBody(sim)
			sim.EnlargeBounds = fast
			if fast {
				scratch.enlarged.Set(int(i))
			} else {
				for _, si := range w.shapesOfBody(i) {
					rec := &w.shapes[si]
					aabb := rec.shape.ComputeAABB(sim.Transform).Inflate(w.opts.SpeculativeDistance)
					if !w.trees[rec.bodyType].FatAABB(rec.proxyID).Contains(aabb) {
						scratch.enlarged.Set(int(i))
						sim.EnlargeBounds = true
						break
					}
				}
			}

			// step 7: body-move event.
			scratch.bodyMoves = append(scratch.bodyMoves, event.BodyMove{
				BodyID:    w.bodies.HandleFor(i),
				Transform: sim.Transform,
			})
		}
	}
}
