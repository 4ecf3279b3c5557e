// Package joint implements the per-substep joint constraint kernels
// spec.md §4.3 delegates to an external collaborator: PrepareJoint,
// WarmStartJoint, SolveJoint, GetJointReaction. Grounded on the teacher's
// physics/pbd_base_constraints.go XPBD constraint layout (preprocessed
// data holding per-body world-space anchors and inverse inertia, a
// delta-lambda solve step, compliance/h² stiffness scaling) generalized
// from 3D quaternion XPBD to 2D impulse-based TGS-soft joints: compliance
// is replaced by the contact package's (hertz, dampingRatio) softness
// parameterization so joints and contacts share one stiffness vocabulary,
// and the lambda accumulator becomes a plain accumulated impulse.
package joint

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/handle"
	"github.com/gazed/solve2d/math/lin"
)

// Kind enumerates the supported joint types.
type Kind uint8

const (
	KindDistance Kind = iota
	KindRevolute
)

// Softness mirrors contact.Softness; duplicated rather than imported so
// joint has no dependency on contact, matching spec.md §6's description of
// joint and contact solving as independent external-collaborator-shaped
// concerns that happen to share a numeric idiom.
type Softness struct {
	BiasRate     float32
	MassScale    float32
	ImpulseScale float32
}

// MakeSoftness derives a Softness for (hertz, dampingRatio, h), identical
// in formula to contact.MakeSoftness (box2d v3's b2MakeSoft).
func MakeSoftness(hertz, dampingRatio, h float32) Softness {
	if hertz == 0 {
		return Softness{MassScale: 1}
	}
	omega := 2 * lin.PI * hertz
	a1 := 2*dampingRatio + h*omega
	a2 := h * omega * a1
	a3 := 1 / (1 + a2)
	return Softness{BiasRate: omega / a1, MassScale: a2 * a3, ImpulseScale: a3}
}

// Joint is the per-substep working set for one joint, shared by every
// joint Kind; type-specific fixed data lives in Distance/Revolute.
type Joint struct {
	ID   handle.JointID
	Kind Kind

	BodyA, BodyB   *body.Sim
	StateA, StateB *body.State

	// LocalAnchorA/B are the attachment points in each body's local frame.
	LocalAnchorA, LocalAnchorB lin.Vec2

	Soft Softness

	Distance DistanceJoint
	Revolute RevoluteJoint
}

// DistanceJoint holds a target separation and its prepared effective mass.
type DistanceJoint struct {
	Length   float32
	MinLength float32
	MaxLength float32
	EnableLimit bool

	Axis        lin.Vec2
	AxialMass   float32
	Impulse     float32
	LowerImpulse float32
	UpperImpulse float32
}

// RevoluteJoint pins two bodies' anchors together (a 2-constraint point
// weld along both axes, solved as a single 2x2 system per box2d's
// b2RevoluteJoint point-to-point constraint).
type RevoluteJoint struct {
	RA, RB  lin.Vec2 // current world anchor offsets from each body's center
	K00, K01, K11 float32 // 2x2 effective mass matrix (symmetric)
	Impulse lin.Vec2

	EnableLimit     bool
	ReferenceAngle  float32
	LowerAngle      float32
	UpperAngle      float32
	AngularMass     float32
	AngleImpulse    float32
	LowerAngleImpulse float32
	UpperAngleImpulse float32
}

// PrepareJoint computes world anchors and effective masses for j, the
// joint analogue of the teacher's
// calculate_positional_constraint_preprocessed_data, generalized from a
// per-call r1_wc/r2_wc/inertia-tensor bundle to a persistent struct reused
// every substep within a step.
func PrepareJoint(j *Joint, jointHertz, jointDampingRatio, h float32) {
	j.Soft = MakeSoftness(jointHertz, jointDampingRatio, h)

	switch j.Kind {
	case KindDistance:
		prepareDistance(j)
	case KindRevolute:
		prepareRevolute(j, h)
	}
}

func worldAnchor(sim *body.Sim, st *body.State, local lin.Vec2) lin.Vec2 {
	return st.DeltaRotation.Apply(sim.Transform.Q.Apply(local.Sub(sim.LocalCenter)))
}

func prepareDistance(j *Joint) {
	rA := worldAnchor(j.BodyA, j.StateA, j.LocalAnchorA)
	rB := worldAnchor(j.BodyB, j.StateB, j.LocalAnchorB)
	pA := j.BodyA.Center.Add(rA)
	pB := j.BodyB.Center.Add(rB)
	d := pB.Sub(pA)
	length := d.Len()
	axis := d.Unit()
	if length < lin.Epsilon {
		axis = lin.V2(1, 0)
	}

	crA := rA.Cross(axis)
	crB := rB.Cross(axis)
	k := j.BodyA.InvMass + j.BodyB.InvMass + j.BodyA.InvInertia*crA*crA + j.BodyB.InvInertia*crB*crB
	d2 := &j.Distance
	d2.Axis = axis
	if k > 0 {
		d2.AxialMass = 1 / k
	}
}

func prepareRevolute(j *Joint, h float32) {
	r := &j.Revolute
	r.RA = worldAnchor(j.BodyA, j.StateA, j.LocalAnchorA)
	r.RB = worldAnchor(j.BodyB, j.StateB, j.LocalAnchorB)

	mA, mB := j.BodyA.InvMass, j.BodyB.InvMass
	iA, iB := j.BodyA.InvInertia, j.BodyB.InvInertia

	r.K00 = mA + mB + iA*r.RA.Y*r.RA.Y + iB*r.RB.Y*r.RB.Y
	r.K01 = -iA*r.RA.X*r.RA.Y - iB*r.RB.X*r.RB.Y
	r.K11 = mA + mB + iA*r.RA.X*r.RA.X + iB*r.RB.X*r.RB.X

	k := iA + iB
	if k > 0 {
		r.AngularMass = 1 / k
	}
	_ = h
}

// WarmStartJoint applies each joint's carried-over impulse to both bodies'
// velocities, box2d v3's b2WarmStartJointsTask.
func WarmStartJoint(j *Joint) {
	switch j.Kind {
	case KindDistance:
		d := &j.Distance
		P := d.Distance2Impulse()
		applyLinear(j, d.Axis, P)
	case KindRevolute:
		r := &j.Revolute
		applyLinearV(j, r.Impulse)
		applyAngular(j, r.AngularMass, r.AngleImpulse)
	}
}

// Distance2Impulse folds the limit impulses into one scalar along Axis.
func (d *DistanceJoint) Distance2Impulse() float32 {
	return d.Impulse + d.LowerImpulse - d.UpperImpulse
}

func applyLinear(j *Joint, axis lin.Vec2, impulseMag float32) {
	P := axis.Scale(impulseMag)
	applyLinearV(j, P)
}

func applyLinearV(j *Joint, P lin.Vec2) {
	rA, rB := j.Revolute.RA, j.Revolute.RB
	if j.Kind == KindDistance {
		rA = worldAnchor(j.BodyA, j.StateA, j.LocalAnchorA)
		rB = worldAnchor(j.BodyB, j.StateB, j.LocalAnchorB)
	}
	j.StateA.LinearVelocity = j.StateA.LinearVelocity.MulAdd(P, -j.BodyA.InvMass)
	j.StateA.AngularVelocity -= j.BodyA.InvInertia * rA.Cross(P)
	j.StateB.LinearVelocity = j.StateB.LinearVelocity.MulAdd(P, j.BodyB.InvMass)
	j.StateB.AngularVelocity += j.BodyB.InvInertia * rB.Cross(P)
}

func applyAngular(j *Joint, mass, impulse float32) {
	j.StateA.AngularVelocity -= j.BodyA.InvInertia * impulse
	j.StateB.AngularVelocity += j.BodyB.InvInertia * impulse
}

// SolveJoint advances j's accumulated impulse by one sequential-impulse
// pass. useBias parallels contact.SolveContact's relax-pass flag: the
// final relax iteration each substep runs with useBias=false so joints
// settle velocity error without re-injecting positional bias.
func SolveJoint(j *Joint, useBias bool, h float32) {
	switch j.Kind {
	case KindDistance:
		solveDistance(j, useBias)
	case KindRevolute:
		solveRevolute(j, useBias)
	}
}

func solveDistance(j *Joint, useBias bool) {
	d := &j.Distance
	rA := worldAnchor(j.BodyA, j.StateA, j.LocalAnchorA)
	rB := worldAnchor(j.BodyB, j.StateB, j.LocalAnchorB)
	pA := j.BodyA.Center.Add(rA)
	pB := j.BodyB.Center.Add(rB)
	length := pB.Sub(pA).Len()
	c := length - d.Length

	vA := j.StateA.LinearVelocity.Add(lin.CrossSV(j.StateA.AngularVelocity, rA))
	vB := j.StateB.LinearVelocity.Add(lin.CrossSV(j.StateB.AngularVelocity, rB))
	vRel := d.Axis.Dot(vB.Sub(vA))

	bias, massScale, impulseScale := float32(0), float32(1), float32(0)
	if useBias {
		bias = j.Soft.BiasRate * c
		massScale = j.Soft.MassScale
		impulseScale = j.Soft.ImpulseScale
	}

	impulse := -d.AxialMass*massScale*(vRel+bias) - impulseScale*d.Impulse
	d.Impulse += impulse
	applyLinear(j, d.Axis, impulse)
}

func solveRevolute(j *Joint, useBias bool) {
	r := &j.Revolute
	rA := worldAnchor(j.BodyA, j.StateA, j.LocalAnchorA)
	rB := worldAnchor(j.BodyB, j.StateB, j.LocalAnchorB)
	pA := j.BodyA.Center.Add(rA)
	pB := j.BodyB.Center.Add(rB)
	c := pB.Sub(pA)

	vA := j.StateA.LinearVelocity.Add(lin.CrossSV(j.StateA.AngularVelocity, rA))
	vB := j.StateB.LinearVelocity.Add(lin.CrossSV(j.StateB.AngularVelocity, rB))
	cdot := vB.Sub(vA)

	bias := lin.Vec2{}
	massScale, impulseScale := float32(1), float32(0)
	if useBias {
		bias = c.Scale(j.Soft.BiasRate)
		massScale = j.Soft.MassScale
		impulseScale = j.Soft.ImpulseScale
	}

	rhs := cdot.Add(bias)
	det := r.K00*r.K11 - r.K01*r.K01
	var solved lin.Vec2
	if lin.Abs(det) > lin.Epsilon {
		inv := 1 / det
		solved = lin.Vec2{
			X: inv * (r.K11*rhs.X - r.K01*rhs.Y),
			Y: inv * (r.K00*rhs.Y - r.K01*rhs.X),
		}
	}
	impulse := solved.Scale(-massScale).Sub(r.Impulse.Scale(impulseScale))
	r.Impulse = r.Impulse.Add(impulse)
	applyLinearV(j, impulse)
}

// GetJointReaction returns the net impulse the joint applied last solve,
// the quantity spec.md's JointEventArray reports for tension/break checks.
func GetJointReaction(j *Joint) lin.Vec2 {
	switch j.Kind {
	case KindDistance:
		return j.Distance.Axis.Scale(j.Distance.Distance2Impulse())
	case KindRevolute:
		return j.Revolute.Impulse
	}
	return lin.Vec2{}
}
