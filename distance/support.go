// Package distance implements the shape-distance (closest point / overlap
// depth) and time-of-impact external collaborators spec.md §6 names:
// "ShapeDistance(shapeA, transformA, shapeB, transformB) -> distance,
// pointA, pointB" and "TimeOfImpact(sweepA, sweepB, shapeA, shapeB,
// target, tolerance) -> fraction, state". Grounded on the teacher's
// physics/gjk.go iterative simplex-refinement loop (add_to_simplex,
// do_simplex, the "100 iteration" cap, the degenerate early-out),
// generalized from gjk.go's 3D boolean-intersection GJK to box2d's 2D
// distance-GJK which additionally tracks witness points and barycentric
// coordinates so a true separation distance (not just yes/no) comes out.
package distance

import (
	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/shape"
)

// Proxy is a lightweight vertex list a convex shape is reduced to for GJK,
// mirroring the teacher's collider abstraction (physics/collider.go) but
// generalized to every shape.Kind instead of only sphere/box/plane.
type Proxy struct {
	Vertices []lin.Vec2
	Radius   float32
}

// MakeProxy extracts the GJK support proxy for a shape in the shape's local
// frame (no world transform applied here: callers map the *proxy* into a
// common frame once, via Transform below, before calling ShapeDistance).
func MakeProxy(s *shape.Shape) Proxy {
	switch s.Kind {
	case shape.KindCircle:
		return Proxy{Vertices: []lin.Vec2{s.Circle.Center}, Radius: s.Circle.Radius}
	case shape.KindCapsule:
		return Proxy{Vertices: []lin.Vec2{s.Capsule.P1, s.Capsule.P2}, Radius: s.Capsule.Radius}
	case shape.KindSegment:
		return Proxy{Vertices: []lin.Vec2{s.Segment.P1, s.Segment.P2}}
	case shape.KindChainSegment:
		return Proxy{Vertices: []lin.Vec2{s.Chain.P1, s.Chain.P2}}
	case shape.KindPolygon:
		verts := make([]lin.Vec2, s.Polygon.Count)
		copy(verts, s.Polygon.Vertices[:s.Polygon.Count])
		return Proxy{Vertices: verts, Radius: s.Polygon.Radius}
	}
	return Proxy{}
}

// Transform returns a copy of p with every vertex mapped through t.
func (p Proxy) Transform(t lin.Transform) Proxy {
	out := Proxy{Vertices: make([]lin.Vec2, len(p.Vertices)), Radius: p.Radius}
	for i, v := range p.Vertices {
		out.Vertices[i] = t.Apply(v)
	}
	return out
}

// support returns the vertex of p furthest in direction d.
func support(p Proxy, d lin.Vec2) (lin.Vec2, int) {
	bestIndex := 0
	best := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		v := p.Vertices[i].Dot(d)
		if v > best {
			best = v
			bestIndex = i
		}
	}
	return p.Vertices[bestIndex], bestIndex
}
