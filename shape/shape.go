package shape

import "github.com/gazed/solve2d/math/lin"

// Kind enumerates the primitive shapes handled by narrowphase collision,
// grounded on the teacher's physics/shape.go shape-type enumeration.
type Kind uint8

const (
	KindCircle Kind = iota
	KindCapsule
	KindSegment
	KindChainSegment
	KindPolygon
	NumKinds
)

// Circle is a solid disc of the given radius, centered at Center.
type Circle struct {
	Center lin.Vec2
	Radius float32
}

// Capsule is a circle swept along a segment: the Minkowski sum of a
// segment and a disc of the given radius.
type Capsule struct {
	P1, P2 lin.Vec2
	Radius float32
}

// Segment is a single line segment with zero thickness, typically used
// for static terrain edges.
type Segment struct {
	P1, P2 lin.Vec2
}

// ChainSegment is a Segment carrying its neighboring ghost vertices so
// narrowphase/CCD can apply box2d's one-sided "smooth chain" collision
// rules and, per spec.md §4.5, the core-fraction early-out for CCD
// against chain interiors.
type ChainSegment struct {
	Ghost1 lin.Vec2
	Segment
	Ghost2    lin.Vec2
	ChainID   int32
}

// MaxPolygonVertices bounds convex polygon vertex counts, matching
// box2d's fixed small cap so polygon storage needs no allocation.
const MaxPolygonVertices = 8

// Polygon is a convex polygon with counter-clockwise winding and a
// rounding radius (0 for a sharp polygon, >0 for a rounded one).
type Polygon struct {
	Vertices [MaxPolygonVertices]lin.Vec2
	Normals  [MaxPolygonVertices]lin.Vec2
	Centroid lin.Vec2
	Radius   float32
	Count    int
}

// NewBoxPolygon builds an axis-aligned box polygon with the given
// half-extents centered at the origin.
func NewBoxPolygon(hx, hy float32) Polygon {
	p := Polygon{Count: 4}
	p.Vertices[0] = lin.V2(-hx, -hy)
	p.Vertices[1] = lin.V2(hx, -hy)
	p.Vertices[2] = lin.V2(hx, hy)
	p.Vertices[3] = lin.V2(-hx, hy)
	p.Normals[0] = lin.V2(0, -1)
	p.Normals[1] = lin.V2(1, 0)
	p.Normals[2] = lin.V2(0, 1)
	p.Normals[3] = lin.V2(-1, 0)
	p.Centroid = lin.Vec2{}
	return p
}

// Shape is a tagged union over the supported primitives, local to body
// space. Combine with a body transform to compute world-space bounds.
type Shape struct {
	Kind    Kind
	Circle  Circle
	Capsule Capsule
	Segment Segment
	Chain   ChainSegment
	Polygon Polygon

	// IsSensor shapes report overlap events instead of generating
	// contact constraints (spec.md §4.6).
	IsSensor bool
	// EnableContactEvents gates ContactHitEvent generation for this shape.
	EnableContactEvents bool
	// EnablePreSolveEvents gates the preSolveFcn callback for CCD hits.
	EnablePreSolveEvents bool
	// EnableCustomFiltering gates the customFilterFcn callback.
	EnableCustomFiltering bool

	Filter Filter

	Friction    float32
	Restitution float32
	Density     float32
}

// Filter implements the standard box2d category/mask/group collision
// filter: two shapes collide if their category bits intersect the other's
// mask bits, unless a non-zero matching group overrides that.
type Filter struct {
	CategoryBits uint64
	MaskBits     uint64
	GroupIndex   int32
}

// DefaultFilter collides with everything.
var DefaultFilter = Filter{CategoryBits: 1, MaskBits: ^uint64(0)}

// ShouldCollide applies the standard box2d filter rule.
func ShouldCollide(a, b Filter) bool {
	if a.GroupIndex == b.GroupIndex && a.GroupIndex != 0 {
		return a.GroupIndex > 0
	}
	return (a.MaskBits&b.CategoryBits) != 0 && (b.MaskBits&a.CategoryBits) != 0
}

// ComputeAABB returns the world-space AABB of the shape under transform t.
func (s *Shape) ComputeAABB(t lin.Transform) AABB {
	switch s.Kind {
	case KindCircle:
		c := t.Apply(s.Circle.Center)
		r := lin.Vec2{X: s.Circle.Radius, Y: s.Circle.Radius}
		return AABB{Lo: c.Sub(r), Hi: c.Add(r)}
	case KindCapsule:
		p1, p2 := t.Apply(s.Capsule.P1), t.Apply(s.Capsule.P2)
		r := lin.Vec2{X: s.Capsule.Radius, Y: s.Capsule.Radius}
		lo := p1.Min(p2).Sub(r)
		hi := p1.Max(p2).Add(r)
		return AABB{Lo: lo, Hi: hi}
	case KindSegment:
		p1, p2 := t.Apply(s.Segment.P1), t.Apply(s.Segment.P2)
		return AABB{Lo: p1.Min(p2), Hi: p1.Max(p2)}
	case KindChainSegment:
		p1, p2 := t.Apply(s.Chain.P1), t.Apply(s.Chain.P2)
		return AABB{Lo: p1.Min(p2), Hi: p1.Max(p2)}
	case KindPolygon:
		lo := t.Apply(s.Polygon.Vertices[0])
		hi := lo
		for i := 1; i < s.Polygon.Count; i++ {
			v := t.Apply(s.Polygon.Vertices[i])
			lo, hi = lo.Min(v), hi.Max(v)
		}
		r := lin.Vec2{X: s.Polygon.Radius, Y: s.Polygon.Radius}
		return AABB{Lo: lo.Sub(r), Hi: hi.Add(r)}
	}
	return AABB{}
}

// Centroid returns the shape's centroid in local space: the circle
// center, the capsule midpoint or the polygon's stored Centroid. Segments
// and chain segments return the origin.
func (s *Shape) Centroid() lin.Vec2 {
	switch s.Kind {
	case KindCircle:
		return s.Circle.Center
	case KindCapsule:
		return s.Capsule.P1.Add(s.Capsule.P2).Scale(0.5)
	case KindPolygon:
		return s.Polygon.Centroid
	default:
		return lin.Vec2{}
	}
}

// MassData holds the mass properties contributed by a single shape.
type MassData struct {
	Mass     float32
	Center   lin.Vec2
	Inertia  float32 // about the body's local center
}

// ComputeMass computes mass data for the shape at the given density,
// grounded on the teacher's Shape.Inertia contract (physics/shape.go)
// generalized to 2D moment-of-inertia formulas.
func (s *Shape) ComputeMass(density float32) MassData {
	switch s.Kind {
	case KindCircle:
		r := s.Circle.Radius
		mass := density * lin.PI * r * r
		inertia := mass * (0.5*r*r + s.Circle.Center.Dot(s.Circle.Center))
		return MassData{Mass: mass, Center: s.Circle.Center, Inertia: inertia}
	case KindCapsule:
		return computeCapsuleMass(s.Capsule, density)
	case KindPolygon:
		return computePolygonMass(s.Polygon, density)
	default:
		return MassData{}
	}
}

func computeCapsuleMass(c Capsule, density float32) MassData {
	radius := c.Radius
	rr := radius * radius
	length := c.P1.Dist(c.P2)
	center := c.P1.Add(c.P2).Scale(0.5)

	// rectangle (length x 2r) plus two half-circle caps, box2d's formula.
	ra := lin.PI * rr
	boxMass := density * length * 2 * radius
	circleMass := density * ra
	mass := boxMass + circleMass

	h := 0.5 * length
	boxInertia := boxMass * (4*radius*radius + length*length) / 12
	circleInertia := circleMass * (0.5*rr + h*h + 8*radius*h/(3*lin.PI))
	return MassData{Mass: mass, Center: center, Inertia: boxInertia + circleInertia}
}

func computePolygonMass(p Polygon, density float32) MassData {
	if p.Count == 0 {
		return MassData{}
	}
	origin := p.Vertices[0]
	area := float32(0)
	center := lin.Vec2{}
	inertia := float32(0)
	const inv3 = 1.0 / 3.0
	for i := 1; i < p.Count-1; i++ {
		e1 := p.Vertices[i].Sub(origin)
		e2 := p.Vertices[i+1].Sub(origin)
		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		center = center.MulAdd(e1.Add(e2), triArea*inv3)

		ex1, ey1 := e1.X, e1.Y
		ex2, ey2 := e2.X, e2.Y
		intx2 := ex1*ex1 + ex2*ex1 + ex2*ex2
		inty2 := ey1*ey1 + ey2*ey1 + ey2*ey2
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}
	mass := density * area
	if area > lin.Epsilon {
		center = center.Scale(1 / area)
	}
	centerWorld := center.Add(origin)
	inertia = density*inertia + mass*(centerWorld.Dot(centerWorld)-center.Dot(center))
	return MassData{Mass: mass, Center: centerWorld, Inertia: inertia}
}
