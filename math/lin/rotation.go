package lin

import "math"

// Rot is a 2D rotation stored as a cosine/sine pair rather than an angle,
// the box2d convention: composing and applying rotations is then a few
// multiply-adds instead of a trig call, and accumulated error is cheap to
// correct with a single Normalize.
type Rot struct {
	C float32 // cos(angle)
	S float32 // sin(angle)
}

// RotI is the identity rotation.
var RotI = Rot{C: 1, S: 0}

// NewRot builds a Rot from an angle in radians.
func NewRot(angle float32) Rot {
	s, c := math.Sincos(float64(angle))
	return Rot{C: float32(c), S: float32(s)}
}

// Angle returns the rotation's angle in radians, in (-PI, PI].
func (r Rot) Angle() float32 { return Atan2(r.S, r.C) }

// Mul (*) composes two rotations: apply b then r.
func (r Rot) Mul(b Rot) Rot {
	return Rot{
		C: r.C*b.C - r.S*b.S,
		S: r.S*b.C + r.C*b.S,
	}
}

// InvMul returns the rotation that maps r to b: r.Inv().Mul(b).
func (r Rot) InvMul(b Rot) Rot {
	return Rot{
		C: r.C*b.C + r.S*b.S,
		S: r.C*b.S - r.S*b.C,
	}
}

// Apply rotates vector v by r.
func (r Rot) Apply(v Vec2) Vec2 {
	return Vec2{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

// ApplyInv rotates vector v by the inverse of r.
func (r Rot) ApplyInv(v Vec2) Vec2 {
	return Vec2{r.C*v.X + r.S*v.Y, -r.S*v.X + r.C*v.Y}
}

// Normalize rescales r so that C²+S²==1, correcting the drift that
// accumulates from repeated IntegrateRotation calls.
func (r Rot) Normalize() Rot {
	mag := Sqrt(r.C*r.C + r.S*r.S)
	if mag < Epsilon {
		return RotI
	}
	inv := 1 / mag
	return Rot{C: r.C * inv, S: r.S * inv}
}

// Aeq (~=) almost-equals returns true if r and b are close enough to equal.
func (r Rot) Aeq(b Rot) bool { return Aeq(r.C, b.C) && Aeq(r.S, b.S) }

// IntegrateRotation advances rotation q by angular velocity deltaAngle
// (already scaled by dt), matching spec.md §4.3's IntegratePositions step:
// `deltaRotation = IntegrateRotation(deltaRotation, h·w)`. This is a
// first-order update (q2 = q1 + deltaAngle·perp(q1)) followed by a
// renormalize, cheaper per-substep than a full sin/cos recompute.
func IntegrateRotation(q Rot, deltaAngle float32) Rot {
	q2 := Rot{C: q.C - deltaAngle*q.S, S: q.S + deltaAngle*q.C}
	return q2.Normalize()
}

// RelativeAngle returns the angle of b relative to a, i.e. the angle you'd
// add to a to reach b.
func RelativeAngle(a, b Rot) float32 {
	s := a.C*b.S - a.S*b.C
	c := a.C*b.C + a.S*b.S
	return Atan2(s, c)
}
