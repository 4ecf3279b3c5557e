package lin

// Vector performs 2D vector math needed by the solver, shapes, and contacts.

// Vec2 is a 2 element vector. It is also used as a point.
type Vec2 struct {
	X float32
	Y float32
}

// V2 is a convenience constructor for Vec2.
func V2(x, y float32) Vec2 { return Vec2{x, y} }

// Eq (==) returns true if v and a have identical elements.
func (v Vec2) Eq(a Vec2) bool { return v.X == a.X && v.Y == a.Y }

// Aeq (~=) almost-equals returns true if v and a are close enough to equal.
func (v Vec2) Aeq(a Vec2) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) }

// AeqZ (~=) almost-equals-zero returns true if v's squared length is
// close enough to zero that it makes no difference.
func (v Vec2) AeqZ() bool { return v.Dot(v) < Epsilon }

// Add (+) returns v+a.
func (v Vec2) Add(a Vec2) Vec2 { return Vec2{v.X + a.X, v.Y + a.Y} }

// Sub (-) returns v-a.
func (v Vec2) Sub(a Vec2) Vec2 { return Vec2{v.X - a.X, v.Y - a.Y} }

// Neg (-) returns -v.
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

// Scale (*) returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// MulAdd returns v + a*s, a single fused multiply-add used throughout the
// integration kernels (§4.3's `deltaPosition += h·v`).
func (v Vec2) MulAdd(a Vec2, s float32) Vec2 { return Vec2{v.X + a.X*s, v.Y + a.Y*s} }

// Dot returns the dot product of v and a.
func (v Vec2) Dot(a Vec2) float32 { return v.X*a.X + v.Y*a.Y }

// Cross returns the 2D "cross product" v×a, a scalar (the Z component of
// the 3D cross product of the inputs extended with Z=0).
func (v Vec2) Cross(a Vec2) float32 { return v.X*a.Y - v.Y*a.X }

// CrossSV returns the cross product of scalar s and vector v: s×v, used
// to turn an angular velocity into a linear velocity contribution at an
// offset (ω × r).
func CrossSV(s float32, v Vec2) Vec2 { return Vec2{-s * v.Y, s * v.X} }

// Len returns the length (magnitude) of v.
func (v Vec2) Len() float32 { return Sqrt(v.Dot(v)) }

// LenSqr returns the squared length of v.
func (v Vec2) LenSqr() float32 { return v.Dot(v) }

// Dist returns the distance between points v and a.
func (v Vec2) Dist(a Vec2) float32 { return Sqrt(v.DistSqr(a)) }

// DistSqr returns the squared distance between points v and a.
func (v Vec2) DistSqr(a Vec2) float32 {
	dx, dy := a.X-v.X, a.Y-v.Y
	return dx*dx + dy*dy
}

// Unit returns v normalized to length 1. The zero vector is returned
// unchanged.
func (v Vec2) Unit() Vec2 {
	length := v.Len()
	if length < Epsilon {
		return v
	}
	inv := 1 / length
	return Vec2{v.X * inv, v.Y * inv}
}

// Perp returns the left-hand perpendicular of v (rotate +90°), the
// standard box2d convention for converting an edge into an outward normal.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// RightPerp returns the right-hand perpendicular of v (rotate -90°).
func (v Vec2) RightPerp() Vec2 { return Vec2{v.Y, -v.X} }

// Lerp returns the linear interpolation of v to a by the given ratio.
func (v Vec2) Lerp(a Vec2, ratio float32) Vec2 {
	return Vec2{Lerp(v.X, a.X, ratio), Lerp(v.Y, a.Y, ratio)}
}

// Min returns the component-wise minimum of v and a.
func (v Vec2) Min(a Vec2) Vec2 { return Vec2{Min(v.X, a.X), Min(v.Y, a.Y)} }

// Max returns the component-wise maximum of v and a.
func (v Vec2) Max(a Vec2) Vec2 { return Vec2{Max(v.X, a.X), Max(v.Y, a.Y)} }

// Abs returns the component-wise absolute value of v.
func (v Vec2) Abs() Vec2 { return Vec2{Abs(v.X), Abs(v.Y)} }
