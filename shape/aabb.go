// Package shape defines the 2D collision primitives and bounding boxes
// consumed by the broadphase, distance, and contact packages. Per spec.md
// §1 shape and body storage are external collaborators; this package is
// the concrete storage the rest of the module is grounded against.
package shape

import "github.com/gazed/solve2d/math/lin"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Lo lin.Vec2
	Hi lin.Vec2
}

// Union returns the smallest AABB containing both a and b.
func Union(a, b AABB) AABB {
	return AABB{Lo: a.Lo.Min(b.Lo), Hi: a.Hi.Max(b.Hi)}
}

// Contains reports whether b fits entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Lo.X <= b.Lo.X && a.Lo.Y <= b.Lo.Y && a.Hi.X >= b.Hi.X && a.Hi.Y >= b.Hi.Y
}

// Overlaps reports whether a and b intersect.
func (a AABB) Overlaps(b AABB) bool {
	return a.Lo.X <= b.Hi.X && b.Lo.X <= a.Hi.X && a.Lo.Y <= b.Hi.Y && b.Lo.Y <= a.Hi.Y
}

// Inflate grows the box by margin on every side.
func (a AABB) Inflate(margin float32) AABB {
	m := lin.Vec2{X: margin, Y: margin}
	return AABB{Lo: a.Lo.Sub(m), Hi: a.Hi.Add(m)}
}

// Extents returns the half-width/half-height of the box.
func (a AABB) Extents() lin.Vec2 { return a.Hi.Sub(a.Lo).Scale(0.5) }

// Center returns the midpoint of the box.
func (a AABB) Center() lin.Vec2 { return a.Lo.Add(a.Hi).Scale(0.5) }

// Perimeter returns the perimeter, used by the broadphase tree's surface-
// area-heuristic node-cost comparisons.
func (a AABB) Perimeter() float32 {
	w, h := a.Hi.X-a.Lo.X, a.Hi.Y-a.Lo.Y
	return 2 * (w + h)
}
