// Package event defines the output event types the solver appends to
// during a step and returns in the post-step consolidation pass, spec.md
// §4.7 and §6's "event arrays are the only output channel" contract.
package event

import (
	"github.com/gazed/solve2d/handle"
	"github.com/gazed/solve2d/math/lin"
)

// BodyMove reports a body whose transform changed this step, emitted for
// every awake, non-sleeping body so a renderer can sync without re-reading
// the whole world.
type BodyMove struct {
	BodyID    handle.BodyID
	Transform lin.Transform
	FellAsleep bool
}

// SensorBeginTouch reports a sensor shape beginning to overlap a visitor
// shape, spec.md §4.6's sorted-merge diff output.
type SensorBeginTouch struct {
	SensorShapeID  handle.ShapeID
	VisitorShapeID handle.ShapeID
}

// SensorEndTouch reports a sensor shape no longer overlapping a visitor
// shape, including the case where the end is caused by shape destruction
// mid-step (spec.md's literal scenario S4).
type SensorEndTouch struct {
	SensorShapeID  handle.ShapeID
	VisitorShapeID handle.ShapeID
}

// ContactHit reports a contact whose approach speed exceeded the
// reporting shapes' EnableContactEvents threshold, spec.md §4.3's
// per-substep contact kernel output.
type ContactHit struct {
	ShapeIDA, ShapeIDB handle.ShapeID
	Point              lin.Vec2
	Normal             lin.Vec2
	ApproachSpeed      float32
}

// Joint reports a joint's net reaction impulse for the step, the quantity
// spec.md's JointEventArray exposes for tension/break checks.
type Joint struct {
	JointID  handle.JointID
	Reaction lin.Vec2
}

// Set bundles every event array produced by one step, returned from post-
// step consolidation.
type Set struct {
	BodyMoves    []BodyMove
	SensorBegins []SensorBeginTouch
	SensorEnds   []SensorEndTouch
	ContactHits  []ContactHit
	Joints       []Joint
}
