package lin

// Transform is a 2D rigid transform: rotation then translation. It excludes
// scaling and shear, the same simplification the teacher's 3D T makes.
type Transform struct {
	P Vec2 // location (translation, origin)
	Q Rot  // rotation (direction, orientation)
}

// TransformI is the identity transform.
var TransformI = Transform{P: Vec2{}, Q: RotI}

// Eq (==) returns true if t and a have identical elements.
func (t Transform) Eq(a Transform) bool { return t.P.Eq(a.P) && t.Q == a.Q }

// Aeq (~=) almost-equals returns true if t and a are close enough to equal.
func (t Transform) Aeq(a Transform) bool { return t.P.Aeq(a.P) && t.Q.Aeq(a.Q) }

// Mul composes transforms: apply b first, then t.
func (t Transform) Mul(b Transform) Transform {
	return Transform{
		P: t.Q.Apply(b.P).Add(t.P),
		Q: t.Q.Mul(b.Q),
	}
}

// Apply transforms point v from local space into the space t is relative to.
func (t Transform) Apply(v Vec2) Vec2 { return t.Q.Apply(v).Add(t.P) }

// ApplyInv transforms point v from the space t is relative to into t's
// local space — the inverse of Apply.
func (t Transform) ApplyInv(v Vec2) Vec2 { return t.Q.ApplyInv(v.Sub(t.P)) }

// InvMulTransforms returns the transform that maps t's frame to b's frame:
// t.Inv().Mul(b). Used to express one body's pose relative to another's.
func InvMulTransforms(t, b Transform) Transform {
	return Transform{
		P: t.Q.ApplyInv(b.P.Sub(t.P)),
		Q: t.Q.InvMul(b.Q),
	}
}
