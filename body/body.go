// Package body holds the dense per-awake-body arrays spec.md §3 describes
// as BodySim/BodyState, external per §1/§6's "shape and body storage"
// collaborator contract. Field layout is grounded on the teacher's
// physics/body.go (pose, inverse mass/inertia, damping, status flags),
// generalized from a single 3D struct to the spec's parallel 2D
// BodySim/BodyState split and its generation-tagged id allocation
// (bodyUUID + sync.Mutex in the teacher) generalized to slot reuse.
package body

import "github.com/gazed/solve2d/math/lin"

// Type classifies a body's simulation behavior.
type Type uint8

const (
	Static Type = iota
	Kinematic
	Dynamic
)

// Sim is the per-awake-body integration record (spec.md §3 BodySim).
// BodyState[i] and Sim[i] always exist at the same index for a given
// awake solver set (invariant 1).
type Sim struct {
	Type Type

	Transform  lin.Transform // current world pose
	Center     lin.Vec2      // world-space center of mass
	Rotation0  lin.Rot       // rotation at the start of the step (sweep)
	Center0    lin.Vec2      // center of mass at the start of the step (sweep)

	LocalCenter lin.Vec2 // center of mass in body-local space
	InvMass     float32
	InvInertia  float32
	MinExtent   float32
	MaxExtent   float32

	Force  lin.Vec2
	Torque float32

	LinearDamping  float32
	AngularDamping float32
	GravityScale   float32

	MaxLinearSpeed  float32
	MaxAngularSpeed float32

	IsFast           bool
	IsBullet         bool
	IsSpeedCapped    bool
	HadTimeOfImpact  bool
	EnlargeBounds    bool
	AllowFastRotation bool

	EnableSleep     bool
	SleepThreshold  float32
	SleepTime       float32

	IslandID int32

	ShapeStart int32 // index of first shape in the body's shape run
	ShapeCount int32
}

// State is the per-substep mutable record (spec.md §3 BodyState),
// parallel-indexed with Sim.
type State struct {
	LinearVelocity  lin.Vec2
	AngularVelocity float32

	DeltaPosition lin.Vec2
	DeltaRotation lin.Rot

	LockLinearX  bool
	LockLinearY  bool
	LockAngularZ bool
}

// IdentityState returns a State with zero velocity and identity deltas,
// the reset target for §4.4 step 2 ("reset state deltas to identity").
func IdentityState() State {
	return State{DeltaRotation: lin.RotI}
}

// ApplyLocks zeroes the velocity components whose corresponding lock flag
// is set (spec.md §4.3 IntegrateVelocities, §4.4 step 1).
func (s *State) ApplyLocks() {
	if s.LockLinearX {
		s.LinearVelocity.X = 0
	}
	if s.LockLinearY {
		s.LinearVelocity.Y = 0
	}
	if s.LockAngularZ {
		s.AngularVelocity = 0
	}
}
