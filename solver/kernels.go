package solver

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/contact"
	"github.com/gazed/solve2d/joint"
	"github.com/gazed/solve2d/math/lin"
)

// colorWork is the per-color, per-step scratch the stage machine's
// kernels read and write: prepared joint.Joint/contact.Constraint working
// structs (one per entry in the color's index lists, same order) plus the
// block arrays the scheduler partitions those lists into. Rebuilt once
// per step alongside rebuildColors.
type colorWork struct {
	jointBlocks   *blockArray
	contactBlocks *blockArray

	workingJoints   []*joint.Joint
	workingContacts []*contact.Constraint
}

// buildColorWork allocates (but does not yet prepare) the working arrays
// and block partitions for every color, sized from the freshly rebuilt
// w.colors index lists.
func (w *World) buildColorWork() [numColorSlots]colorWork {
	var work [numColorSlots]colorWork
	for c := 0; c < numColorSlots; c++ {
		bucket := &w.colors[c]
		work[c].workingJoints = make([]*joint.Joint, len(bucket.jointIndices))
		work[c].workingContacts = make([]*contact.Constraint, len(bucket.contactIndices))
		if c != overflowColor {
			work[c].jointBlocks = buildConstraintBlocks(len(bucket.jointIndices), w.opts.WorkerCount)
			work[c].contactBlocks = buildConstraintBlocks(len(bucket.contactIndices), w.opts.WorkerCount)
		}
	}
	return work
}

func (w *World) prepareJoint(rec *jointRecord, h float32) *joint.Joint {
	j := &joint.Joint{
		ID:           rec.id,
		Kind:         rec.kind,
		BodyA:        &w.bodies.Sims[rec.bodyA],
		BodyB:        &w.bodies.Sims[rec.bodyB],
		StateA:       &w.bodies.States[rec.bodyA],
		StateB:       &w.bodies.States[rec.bodyB],
		LocalAnchorA: rec.localAnchorA,
		LocalAnchorB: rec.localAnchorB,
		Distance:     rec.distance,
		Revolute:     rec.revolute,
	}
	hertz, damping := w.jointHertz(rec)
	joint.PrepareJoint(j, hertz, damping, h)
	return j
}

func (w *World) prepareContact(rec *contactRecord, h float32) *contact.Constraint {
	m := rec.manifold
	m.Friction = rec.friction
	m.Restitution = rec.restitution
	return contact.PrepareContact(&m, &w.bodies.Sims[rec.bodyA], &w.bodies.Sims[rec.bodyB],
		&w.bodies.States[rec.bodyA], &w.bodies.States[rec.bodyB],
		w.opts.ContactHertz, w.opts.ContactDampingRatio, h)
}

// kernelPrepareJoints returns the block kernel for the PrepareJoints
// stage over one color's joint block array.
func (w *World) kernelPrepareJoints(bucket *colorBucket, work *colorWork, h float32) kernelFn {
	return func(_ int, b *block) {
		assertf(b.kind == blockJointContact, "kernelPrepareJoints: mis-typed block", "kind", b.kind)
		assertf(int(b.start+b.count) <= len(work.workingJoints), "kernelPrepareJoints: block out of range",
			"start", b.start, "count", b.count, "len", len(work.workingJoints))
		for pos := b.start; pos < b.start+b.count; pos++ {
			rec := &w.joints[bucket.jointIndices[pos]]
			work.workingJoints[pos] = w.prepareJoint(rec, h)
		}
	}
}

func (w *World) kernelPrepareContacts(bucket *colorBucket, work *colorWork, h float32) kernelFn {
	return func(_ int, b *block) {
		assertf(b.kind == blockJointContact, "kernelPrepareContacts: mis-typed block", "kind", b.kind)
		assertf(int(b.start+b.count) <= len(work.workingContacts), "kernelPrepareContacts: block out of range",
			"start", b.start, "count", b.count, "len", len(work.workingContacts))
		for pos := b.start; pos < b.start+b.count; pos++ {
			rec := &w.contacts[bucket.contactIndices[pos]]
			work.workingContacts[pos] = w.prepareContact(rec, h)
		}
	}
}

func (w *World) kernelWarmStartJoints(work *colorWork) kernelFn {
	return func(_ int, b *block) {
		for pos := b.start; pos < b.start+b.count; pos++ {
			joint.WarmStartJoint(work.workingJoints[pos])
		}
	}
}

func (w *World) kernelWarmStartContacts(work *colorWork) kernelFn {
	return func(_ int, b *block) {
		for pos := b.start; pos < b.start+b.count; pos++ {
			contact.WarmStartContact(work.workingContacts[pos])
		}
	}
}

// jointHits is shared per-step scratch recording which joints exceeded
// their force/torque threshold this step, spec.md §4.3's jointStateBitSet
// ("first hit per joint wins"). Safe to write without synchronization:
// graph coloring guarantees each joint index is touched by exactly one
// worker within any given stage dispatch, and dispatches are strictly
// ordered by the stage-machine barrier.
func (w *World) kernelSolveJoints(work *colorWork, useBias bool, h, invH float32, jointHits []bool) kernelFn {
	return func(_ int, b *block) {
		for pos := b.start; pos < b.start+b.count; pos++ {
			j := work.workingJoints[pos]
			joint.SolveJoint(j, useBias, h)
			if !useBias {
				continue
			}
			rec := &w.joints[j.ID.Index1-1]
			if rec.forceThreshold <= 0 && rec.torqueThreshold <= 0 {
				continue
			}
			if jointHits[j.ID.Index1-1] {
				continue
			}
			reaction := joint.GetJointReaction(j)
			force := reaction.Len() * invH
			torque := float32(0)
			if j.Kind == joint.KindRevolute {
				torque = lin.Abs(j.Revolute.AngleImpulse) * invH
			}
			if (rec.forceThreshold > 0 && force > rec.forceThreshold) ||
				(rec.torqueThreshold > 0 && torque > rec.torqueThreshold) {
				jointHits[j.ID.Index1-1] = true
			}
		}
	}
}

func (w *World) kernelSolveContacts(work *colorWork, useBias bool, invH float32) kernelFn {
	return func(_ int, b *block) {
		for pos := b.start; pos < b.start+b.count; pos++ {
			contact.SolveContact(work.workingContacts[pos], useBias, invH)
		}
	}
}

func (w *World) kernelRestitutionContacts(work *colorWork, threshold float32) kernelFn {
	return func(_ int, b *block) {
		for pos := b.start; pos < b.start+b.count; pos++ {
			contact.ApplyRestitution(work.workingContacts[pos], threshold)
		}
	}
}

func (w *World) kernelStoreImpulses(bucket *colorBucket, work *colorWork) kernelFn {
	return func(_ int, b *block) {
		for pos := b.start; pos < b.start+b.count; pos++ {
			ci := bucket.contactIndices[pos]
			w.contacts[ci].manifold = contact.StoreImpulses(work.workingContacts[pos])
		}
	}
}

// kernelIntegrateVelocities applies force/gravity, Padé damping, and
// speed clamps to every dynamic body in [b.start, b.start+b.count),
// spec.md §4.3's IntegrateVelocities.
func (w *World) kernelIntegrateVelocities(gravity lin.Vec2, h, maxAngularSpeed float32) kernelFn {
	return func(_ int, b *block) {
		assertf(b.kind == blockBody, "kernelIntegrateVelocities: mis-typed block", "kind", b.kind)
		assertf(int(b.start+b.count) <= len(w.bodies.Sims), "kernelIntegrateVelocities: block out of range",
			"start", b.start, "count", b.count, "len", len(w.bodies.Sims))
		for i := b.start; i < b.start+b.count; i++ {
			sim := &w.bodies.Sims[i]
			st := &w.bodies.States[i]
			if sim.Type != body.Dynamic {
				continue
			}

			g := gravity
			if sim.GravityScale == 0 {
				g = lin.Vec2{}
			} else {
				g = g.Scale(sim.GravityScale)
			}
			linearAccel := g.Add(sim.Force.Scale(sim.InvMass))
			st.LinearVelocity = st.LinearVelocity.MulAdd(linearAccel, h)
			angularAccel := sim.Torque * sim.InvInertia
			st.AngularVelocity += angularAccel * h

			st.LinearVelocity = st.LinearVelocity.Scale(1 / (1 + h*sim.LinearDamping))
			st.AngularVelocity *= 1 / (1 + h*sim.AngularDamping)

			if sp := st.LinearVelocity.Len(); sp > sim.MaxLinearSpeed && sim.MaxLinearSpeed > 0 {
				st.LinearVelocity = st.LinearVelocity.Scale(sim.MaxLinearSpeed / sp)
				sim.IsSpeedCapped = true
			}
			cap := maxAngularSpeed
			if sim.MaxAngularSpeed > 0 && sim.MaxAngularSpeed < cap {
				cap = sim.MaxAngularSpeed
			}
			if !sim.AllowFastRotation && cap > 0 {
				if lin.Abs(st.AngularVelocity) > cap {
					if st.AngularVelocity < 0 {
						st.AngularVelocity = -cap
					} else {
						st.AngularVelocity = cap
					}
					sim.IsSpeedCapped = true
				}
			}

			st.ApplyLocks()
		}
	}
}

// kernelIntegratePositions accumulates deltaPosition/deltaRotation from
// each dynamic body's current velocity, spec.md §4.3's IntegratePositions.
func (w *World) kernelIntegratePositions(h float32) kernelFn {
	return func(_ int, b *block) {
		assertf(b.kind == blockBody, "kernelIntegratePositions: mis-typed block", "kind", b.kind)
		assertf(int(b.start+b.count) <= len(w.bodies.Sims), "kernelIntegratePositions: block out of range",
			"start", b.start, "count", b.count, "len", len(w.bodies.Sims))
		for i := b.start; i < b.start+b.count; i++ {
			sim := &w.bodies.Sims[i]
			st := &w.bodies.States[i]
			if sim.Type == body.Static {
				continue
			}
			st.ApplyLocks()
			st.DeltaPosition = st.DeltaPosition.MulAdd(st.LinearVelocity, h)
			st.DeltaRotation = lin.IntegrateRotation(st.DeltaRotation, h*st.AngularVelocity)
		}
	}
}
