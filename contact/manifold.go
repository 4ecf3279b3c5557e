// Package contact implements the per-substep contact constraint kernels
// spec.md §4.3 delegates to an external collaborator: PrepareContact,
// WarmStartContact, SolveContact, ApplyRestitution, StoreImpulses. Grounded
// on the teacher's physics/contact.go contactPair/pointOfContact manifold
// bookkeeping (persistent-point matching by local-anchor proximity,
// warm-started impulses carried point-to-point across steps) generalized
// from Bullet's 3D PGS model to box2d v3's 2D soft/TGS-bias contact solver:
// instead of refreshContacts' plain penetration-distance breaking test,
// anchors are stored as world-rotated offsets from each body's center of
// mass and the solver applies a
// per-substep soft bias (contactHertz/contactDampingRatio) rather than a
// single hard Baumgarte correction.
package contact

import "github.com/gazed/solve2d/math/lin"

// MaxManifoldPoints bounds 2D convex-convex manifolds to 2 points, box2d
// v3's cap (a 2D contact patch needs at most two points to be fully
// determined, unlike Bullet's 4-point 3D manifold in the teacher).
const MaxManifoldPoints = 2

// Point is one point of contact, carrying both the warm-startable solver
// state and the separation bookkeeping the narrowphase produces each step.
type Point struct {
	// AnchorA/AnchorB are the contact point expressed as an offset from
	// each body's center of mass, in world-rotated (not world-translated)
	// space — rotating with the body lets the solver recompute the world
	// point every substep without re-running narrowphase.
	AnchorA, AnchorB lin.Vec2

	// BaseSeparation is the separation at the anchors measured when the
	// manifold was prepared, before any substep integration; substeps
	// add each body's incremental deltaPosition/deltaRotation projected
	// onto the normal to get the current separation.
	BaseSeparation float32
	AdjustedSeparation float32

	NormalImpulse    float32
	TangentImpulse   float32
	MaxNormalImpulse float32
	NormalMass       float32
	TangentMass      float32
	RelativeVelocity float32 // normal velocity at prepare time, for restitution

	// ID is a stable key used to match this point against last step's
	// manifold for warm-starting, the role the teacher's closestPoint
	// local-anchor search plays, but keyed directly off narrowphase
	// feature ids instead of a nearest-neighbor search.
	ID uint16
}

// Manifold is the set of contact points between two shapes along with the
// shared normal and material properties used by every point.
type Manifold struct {
	Points     [MaxManifoldPoints]Point
	Count      int
	Normal     lin.Vec2 // world normal, points from A to B
	Friction   float32
	Restitution float32
}

// WarmStart copies impulses from prior (last step's manifold for the same
// pair) into m by matching point IDs, the generalized equivalent of the
// teacher's closestPoint persistent-manifold matching.
func (m *Manifold) WarmStart(prior *Manifold) {
	if prior == nil {
		return
	}
	for i := range m.Points[:m.Count] {
		for j := range prior.Points[:prior.Count] {
			if m.Points[i].ID == prior.Points[j].ID {
				m.Points[i].NormalImpulse = prior.Points[j].NormalImpulse
				m.Points[i].TangentImpulse = prior.Points[j].TangentImpulse
				break
			}
		}
	}
}
