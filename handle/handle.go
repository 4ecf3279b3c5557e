// Package handle defines the stable external reference format used across
// the API boundary (spec.md §6): index+generation pairs so a dangling
// reference can always be detected by comparing generations, with no
// reference cycles in the data model.
package handle

// ShapeID is a stable external reference to a shape: {index1, world0,
// generation}. index1 = rawIndex+1 reserves 0 as "null" so a zero-valued
// ShapeID is always invalid.
type ShapeID struct {
	Index1     int32
	World0     int32
	Generation uint16
}

// Nil is the null shape handle.
var Nil = ShapeID{}

// IsNil reports whether the handle is the null handle.
func (id ShapeID) IsNil() bool { return id.Index1 == 0 }

// RawIndex returns the dense-array index this handle addresses.
func (id ShapeID) RawIndex() int32 { return id.Index1 - 1 }

// NewShapeID builds a handle from a dense index, world id, and generation.
func NewShapeID(rawIndex, world0 int32, generation uint16) ShapeID {
	return ShapeID{Index1: rawIndex + 1, World0: world0, Generation: generation}
}

// BodyID is the equivalent stable handle for bodies.
type BodyID struct {
	Index1     int32
	World0     int32
	Generation uint16
}

// IsNil reports whether the handle is the null handle.
func (id BodyID) IsNil() bool { return id.Index1 == 0 }

// RawIndex returns the dense-array index this handle addresses.
func (id BodyID) RawIndex() int32 { return id.Index1 - 1 }

// NewBodyID builds a handle from a dense index, world id, and generation.
func NewBodyID(rawIndex, world0 int32, generation uint16) BodyID {
	return BodyID{Index1: rawIndex + 1, World0: world0, Generation: generation}
}

// JointID is the equivalent stable handle for joints.
type JointID struct {
	Index1     int32
	World0     int32
	Generation uint16
}

// IsNil reports whether the handle is the null handle.
func (id JointID) IsNil() bool { return id.Index1 == 0 }
