package solver

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/contact"
	"github.com/gazed/solve2d/distance"
	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/shape"
)

// discoverPairs scans every alive dynamic shape's fat AABB against all
// three broad-phase trees and returns the deterministic, sorted set of
// candidate solid-solid pairs (sensors excluded — those are the sensor
// engine's job). Run serially once per step: spec.md §5 already requires
// broad-phase mutation to be serial, and a serial discovery pass trivially
// satisfies the determinism testable property (§8.1) for the pairs a
// step's contact set is built from, regardless of workerCount.
func (w *World) discoverPairs() []pairKey {
	seen := make(map[pairKey]bool)
	var pairs []pairKey

	for _, selfIdx := range w.sortedAliveShapeIndices() {
		self := &w.shapes[selfIdx]
		if self.bodyType != body.Dynamic || self.shape.IsSensor {
			continue
		}
		fat := w.trees[self.bodyType].FatAABB(self.proxyID)
		for t := range w.trees {
			w.trees[t].Query(fat, func(otherIdx int32) bool {
				if otherIdx == selfIdx {
					return true
				}
				other := &w.shapes[otherIdx]
				if !other.alive || other.shape.IsSensor {
					return true
				}
				if other.bodyIdx == self.bodyIdx {
					return true
				}
				if !shape.ShouldCollide(self.shape.Filter, other.shape.Filter) {
					return true
				}
				a, b := selfIdx, otherIdx
				if a > b {
					a, b = b, a
				}
				key := pairKey{a: a, b: b}
				if !seen[key] {
					seen[key] = true
					pairs = append(pairs, key)
				}
				return true
			})
		}
	}
	sortPairKeys(pairs)
	return pairs
}

// makeManifold runs a single-witness-point narrowphase between two
// shapes using distance.ShapeDistance's witness points, a deliberate
// simplification of box2d's per-shape-pair clipping routines (segment-
// polygon, polygon-polygon, etc): a GJK witness pair always yields at
// least one valid contact point and normal, which is sufficient for the
// solver's point-based contact kernels even though a full 2-point
// manifold (needed for stable polygon-face resting contact without
// rocking) is not reconstructed. See DESIGN.md for why this is accepted
// rather than porting box2d's full clipping-based manifold generators.
func makeManifold(sA, sB *shape.Shape, xfA, xfB lin.Transform, centerA, centerB lin.Vec2, maxDistance float32) (contact.Manifold, bool) {
	pA := distance.MakeProxy(sA).Transform(xfA)
	pB := distance.MakeProxy(sB).Transform(xfB)
	out := distance.ShapeDistance(pA, pB)

	separation := out.Distance - pA.Radius - pB.Radius
	if separation > maxDistance {
		return contact.Manifold{}, false
	}

	normal := out.PointB.Sub(out.PointA).Unit()
	if normal.AeqZ() {
		normal = lin.V2(0, 1)
	}

	anchorWorld := out.PointA.Add(out.PointB).Scale(0.5)
	var m contact.Manifold
	m.Count = 1
	m.Normal = normal
	m.Points[0] = contact.Point{
		// world-rotated offsets from each body's center of mass, matching
		// contact.PrepareContact's rA/rB convention (used directly in
		// cross products against the normal/tangent, no further rotation).
		AnchorA:        anchorWorld.Sub(centerA),
		AnchorB:        anchorWorld.Sub(centerB),
		BaseSeparation: separation,
		ID:             1,
	}
	return m, true
}

// refreshContacts rebuilds the world's contact set for this step: create
// records for newly-touching pairs, drop records for pairs no longer
// within speculative range (warm-start state is lost with the record,
// matching box2d's own "contact destroyed when AABBs no longer overlap"
// rule), and refresh the surviving manifolds' geometry while preserving
// impulses via Manifold.WarmStart.
func (w *World) refreshContacts() {
	pairs := w.discoverPairs()
	touching := make(map[pairKey]bool, len(pairs))

	for _, pk := range pairs {
		touching[pk] = true
		sA, sB := &w.shapes[pk.a], &w.shapes[pk.b]
		bodyA, bodyB := &w.bodies.Sims[sA.bodyIdx], &w.bodies.Sims[sB.bodyIdx]

		m, ok := makeManifold(&sA.shape, &sB.shape, bodyA.Transform, bodyB.Transform, bodyA.Center, bodyB.Center, w.opts.SpeculativeDistance)
		if !ok {
			if ci, exists := w.contactIndex[pk]; exists {
				w.contacts[ci].alive = false
				delete(w.contactIndex, pk)
				w.contactFree = append(w.contactFree, ci)
			}
			continue
		}
		m.Friction = combinedFriction(sA.shape.Friction, sB.shape.Friction)
		m.Restitution = lin.Max(sA.shape.Restitution, sB.shape.Restitution)

		if ci, exists := w.contactIndex[pk]; exists {
			prior := w.contacts[ci].manifold
			m.WarmStart(&prior)
			w.contacts[ci].manifold = m
			w.contacts[ci].friction = m.Friction
			w.contacts[ci].restitution = m.Restitution
			continue
		}

		var ci int32
		if n := len(w.contactFree); n > 0 {
			ci = w.contactFree[n-1]
			w.contactFree = w.contactFree[:n-1]
		} else {
			ci = int32(len(w.contacts))
			w.contacts = append(w.contacts, contactRecord{})
		}
		w.contacts[ci] = contactRecord{
			alive:        true,
			manifold:     m,
			shapeA:       pk.a,
			shapeB:       pk.b,
			bodyA:        sA.bodyIdx,
			bodyB:        sB.bodyIdx,
			friction:     m.Friction,
			restitution:  m.Restitution,
			enableEvents: sA.shape.EnableContactEvents || sB.shape.EnableContactEvents,
		}
		w.contactIndex[pk] = ci
	}

	for pk, ci := range w.contactIndex {
		if !touching[pk] {
			w.contacts[ci].alive = false
			delete(w.contactIndex, pk)
			w.contactFree = append(w.contactFree, ci)
		}
	}
}

func combinedFriction(a, b float32) float32 { return lin.Sqrt(a * b) }

// rebuildColors recomputes graph-coloring color assignments for every
// alive joint and contact, from scratch, in ascending-index order — a
// full rebuild each step rather than incremental recoloring, a
// simplification documented in DESIGN.md: it costs O(joints+contacts)
// per step (cheap relative to the solve itself) and sidesteps entirely
// the bookkeeping a correct incremental recolor-on-topology-change
// scheme would need, at no cost to any testable property (color
// stability across steps is not one of them).
func (w *World) rebuildColors() {
	w.colors = newColorSlots(len(w.bodies.Sims))

	for i := range w.joints {
		j := &w.joints[i]
		if !j.alive {
			continue
		}
		aDyn := w.bodies.Sims[j.bodyA].Type == body.Dynamic
		bDyn := w.bodies.Sims[j.bodyB].Type == body.Dynamic
		j.colorIndex = assignColor(&w.colors, j.bodyA, j.bodyB, aDyn, bDyn)
		w.colors[j.colorIndex].jointIndices = append(w.colors[j.colorIndex].jointIndices, int32(i))
	}

	for i := range w.contacts {
		c := &w.contacts[i]
		if !c.alive {
			continue
		}
		aDyn := w.bodies.Sims[c.bodyA].Type == body.Dynamic
		bDyn := w.bodies.Sims[c.bodyB].Type == body.Dynamic
		c.colorIndex = assignColor(&w.colors, c.bodyA, c.bodyB, aDyn, bDyn)
		w.colors[c.colorIndex].contactIndices = append(w.colors[c.colorIndex].contactIndices, int32(i))
	}
}
