package contact

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/math/lin"
)

// Softness carries the TGS-soft bias coefficients derived once per
// step from (hertz, dampingRatio, substepRate), box2d v3's b2Softness.
// spec.md's numeric defaults name contactHertz=30/contactDampingRatio=10
// for regular contacts and a stiffer implicit softness for the
// speculative-margin (zero hertz -> rigid) case.
type Softness struct {
	BiasRate       float32
	MassScale      float32
	ImpulseScale   float32
}

// MakeSoftness derives a Softness for the given angular frequency,
// damping ratio and substep duration, box2d v3's b2MakeSoft.
func MakeSoftness(hertz, dampingRatio, h float32) Softness {
	if hertz == 0 {
		return Softness{MassScale: 1}
	}
	omega := 2 * lin.PI * hertz
	a1 := 2*dampingRatio + h*omega
	a2 := h * omega * a1
	a3 := 1 / (1 + a2)
	return Softness{
		BiasRate:     omega / a1,
		MassScale:    a2 * a3,
		ImpulseScale: a3,
	}
}

// Constraint is the per-substep working set for one contact manifold,
// built once by PrepareContact and mutated in place by WarmStart/Solve.
type Constraint struct {
	Manifold Manifold

	BodyA, BodyB *body.Sim
	StateA, StateB *body.State

	Normal  lin.Vec2
	Friction float32
	Restitution float32

	Soft Softness
}

// PrepareContact computes anchors, effective masses, and relative normal
// velocity for every point in m, following the teacher's prepForSolver
// (compute world/local anchors, combined friction/restitution) generalized
// to box2d's soft-constraint effective-mass formula (1/(invMassA +
// invMassB + invIA·rA_cross_n² + invIB·rB_cross_n²)).
func PrepareContact(m *Manifold, bodyA, bodyB *body.Sim, stateA, stateB *body.State, contactHertz, dampingRatio, h float32) *Constraint {
	c := &Constraint{
		Manifold:    *m,
		BodyA:       bodyA,
		BodyB:       bodyB,
		StateA:      stateA,
		StateB:      stateB,
		Normal:      m.Normal,
		Friction:    m.Friction,
		Restitution: m.Restitution,
	}
	c.Soft = MakeSoftness(contactHertz, dampingRatio, h)

	tangent := c.Normal.RightPerp()
	for i := range c.Manifold.Points[:c.Manifold.Count] {
		p := &c.Manifold.Points[i]

		rA, rB := p.AnchorA, p.AnchorB
		rnA := rA.Cross(c.Normal)
		rnB := rB.Cross(c.Normal)
		kNormal := bodyA.InvMass + bodyB.InvMass + bodyA.InvInertia*rnA*rnA + bodyB.InvInertia*rnB*rnB
		if kNormal > 0 {
			p.NormalMass = 1 / kNormal
		}

		rtA := rA.Cross(tangent)
		rtB := rB.Cross(tangent)
		kTangent := bodyA.InvMass + bodyB.InvMass + bodyA.InvInertia*rtA*rtA + bodyB.InvInertia*rtB*rtB
		if kTangent > 0 {
			p.TangentMass = 1 / kTangent
		}

		vA := relativeVelocityAt(stateA, rA)
		vB := relativeVelocityAt(stateB, rB)
		p.RelativeVelocity = c.Normal.Dot(vB.Sub(vA))
		p.AdjustedSeparation = p.BaseSeparation
		p.MaxNormalImpulse = 0
	}
	return c
}

func relativeVelocityAt(s *body.State, r lin.Vec2) lin.Vec2 {
	return s.LinearVelocity.Add(lin.CrossSV(s.AngularVelocity, r))
}

// WarmStartContact applies each point's carried-over impulse to both
// bodies' velocities before the first solve pass, box2d v3's
// b2WarmStartContactsTask generalized from the teacher's model (the
// teacher never warm-starts velocities directly; it only preserves the
// scalar warmImpulse field for the solver's first iteration to read).
func WarmStartContact(c *Constraint) {
	tangent := c.Normal.RightPerp()
	for i := range c.Manifold.Points[:c.Manifold.Count] {
		p := &c.Manifold.Points[i]
		P := c.Normal.Scale(p.NormalImpulse).Add(tangent.Scale(p.TangentImpulse))
		applyImpulse(c.StateA, c.BodyA, p.AnchorA, P.Neg())
		applyImpulse(c.StateB, c.BodyB, p.AnchorB, P)
	}
}

func applyImpulse(s *body.State, b *body.Sim, r, impulse lin.Vec2) {
	s.LinearVelocity = s.LinearVelocity.MulAdd(impulse, b.InvMass)
	s.AngularVelocity += b.InvInertia * r.Cross(impulse)
}

// SolveContact runs one sequential-impulse pass over every point: normal
// impulse first (with the soft bias and a speculative-margin early-out
// per spec.md's CCD/speculative contact model), then friction clamped to
// Coulomb's cone against the just-solved normal impulse. useBias is false
// during the relax pass (spec.md's "relax iteration"), matching box2d
// v3's b2SolveContact(useBias bool).
func SolveContact(c *Constraint, useBias bool, invH float32) {
	tangent := c.Normal.RightPerp()

	for i := range c.Manifold.Points[:c.Manifold.Count] {
		p := &c.Manifold.Points[i]

		rA, rB := p.AnchorA, p.AnchorB

		// current separation = base separation adjusted by the bodies'
		// accumulated substep deltas projected onto the normal.
		dA := c.StateA.DeltaPosition.Add(c.StateA.DeltaRotation.Apply(rA)).Sub(rA)
		dB := c.StateB.DeltaPosition.Add(c.StateB.DeltaRotation.Apply(rB)).Sub(rB)
		ds := dB.Sub(dA)
		s := p.AdjustedSeparation + c.Normal.Dot(ds)

		var bias, massScale, impulseScale float32
		massScale, impulseScale = 1, 0
		if s > 0 {
			// speculative contact: not yet touching, bias drives the
			// bodies to arrive exactly at contact by the end of the
			// substep without any softness.
			bias = s * invH
		} else if useBias {
			bias = lin.Max(c.Soft.BiasRate*s, -4)
			massScale = c.Soft.MassScale
			impulseScale = c.Soft.ImpulseScale
		}

		vA := relativeVelocityAt(c.StateA, rA)
		vB := relativeVelocityAt(c.StateB, rB)
		vn := c.Normal.Dot(vB.Sub(vA))

		impulse := -p.NormalMass*massScale*(vn+bias) - impulseScale*p.NormalImpulse
		newImpulse := lin.Max(p.NormalImpulse+impulse, 0)
		impulse = newImpulse - p.NormalImpulse
		p.NormalImpulse = newImpulse
		p.MaxNormalImpulse = lin.Max(p.MaxNormalImpulse, newImpulse)

		P := c.Normal.Scale(impulse)
		applyImpulse(c.StateA, c.BodyA, rA, P.Neg())
		applyImpulse(c.StateB, c.BodyB, rB, P)
	}

	for i := range c.Manifold.Points[:c.Manifold.Count] {
		p := &c.Manifold.Points[i]
		rA, rB := p.AnchorA, p.AnchorB

		vA := relativeVelocityAt(c.StateA, rA)
		vB := relativeVelocityAt(c.StateB, rB)
		vt := tangent.Dot(vB.Sub(vA))

		impulse := -p.TangentMass * vt
		maxFriction := c.Friction * p.NormalImpulse
		newImpulse := lin.Clamp(p.TangentImpulse+impulse, -maxFriction, maxFriction)
		impulse = newImpulse - p.TangentImpulse
		p.TangentImpulse = newImpulse

		P := tangent.Scale(impulse)
		applyImpulse(c.StateA, c.BodyA, rA, P.Neg())
		applyImpulse(c.StateB, c.BodyB, rB, P)
	}
}

// ApplyRestitution re-injects each point's pre-solve approach velocity as
// a bounce, run once after the relax pass per spec.md's substep ordering,
// box2d v3's b2ApplyRestitutionTask. Points whose approach speed was below
// threshold or whose manifold carried no penetration are skipped, matching
// the teacher's combinedRestitution but applied as a velocity bias instead
// of Bullet's position-level bounce.
func ApplyRestitution(c *Constraint, threshold float32) {
	if c.Restitution == 0 {
		return
	}
	for i := range c.Manifold.Points[:c.Manifold.Count] {
		p := &c.Manifold.Points[i]
		if p.RelativeVelocity > -threshold || p.MaxNormalImpulse == 0 {
			continue
		}
		rA, rB := p.AnchorA, p.AnchorB
		vA := relativeVelocityAt(c.StateA, rA)
		vB := relativeVelocityAt(c.StateB, rB)
		vn := c.Normal.Dot(vB.Sub(vA))

		impulse := -p.NormalMass * (vn + c.Restitution*p.RelativeVelocity)
		newImpulse := lin.Max(p.NormalImpulse+impulse, 0)
		impulse = newImpulse - p.NormalImpulse
		p.NormalImpulse = newImpulse
		p.MaxNormalImpulse = lin.Max(p.MaxNormalImpulse, newImpulse)

		P := c.Normal.Scale(impulse)
		applyImpulse(c.StateA, c.BodyA, rA, P.Neg())
		applyImpulse(c.StateB, c.BodyB, rB, P)
	}
}

// StoreImpulses copies the solved impulses back into the manifold so the
// next step's PrepareContact/WarmStart can read them, and returns the
// manifold (spec.md's contract returns a manifold ready for warm-start
// matching against the *next* step's fresh narrowphase manifold).
func StoreImpulses(c *Constraint) Manifold {
	return c.Manifold
}
