// Package solver implements the staged, lock-free, work-stealing parallel
// constraint solver, its speculative continuous-collision sub-pipeline, and
// the double-buffered sensor diff integration point — the CORE component
// spec.md describes, orchestrating the external collaborator packages
// (body, shape, broadphase, distance, contact, joint, island, sensor,
// bitset, arena, taskqueue, event, config). Grounded on the teacher's
// physics/physics.go Simulate() top-level shape (gravity application →
// solve → clear forces kept as the step skeleton) generalized to the full
// multi-substep/multi-stage/graph-colored parallel pipeline; the sync-bits/
// CAS block-stealing machinery itself has no teacher precedent (the teacher
// is single-threaded) and is built directly from spec.md §4.2/§5's bit-
// packing and CAS protocol.
package solver

import (
	"github.com/gazed/solve2d/config"
	"github.com/gazed/solve2d/math/lin"
)

// Options holds every solver tuning knob, the programmatic counterpart to
// config.Config (spec.md/SPEC_FULL.md's two-layer configuration split:
// config.Config for data-driven YAML fixtures, Options/Option here for
// direct in-process setup, grounded on the teacher's config.go
// `type Attr func(*Config)` idiom).
type Options struct {
	WorkerCount     int
	MinRangePerTask int

	SubstepCount    int
	SolveIterations int
	RelaxIterations int

	ContactHertz         float32
	ContactDampingRatio  float32
	JointHertz           float32
	JointDampingRatio    float32
	RestitutionThreshold float32

	LinearSlop          float32
	SpeculativeDistance float32
	AABBMargin          float32

	TimeToSleep    float32
	EnableSleep    bool
	MaxLinearSpeed float32
	MaxRotation    float32 // radians; MaxAngularSpeed = MaxRotation/dt each step

	EnableContinuous bool

	Gravity lin.Vec2
}

// DefaultOptions returns the numeric defaults DESIGN.md's Open Question #3
// records (box2d v3's published defaults, since spec.md's stage-ordering
// and glossary are written directly against that architecture).
func DefaultOptions() Options {
	linearSlop := float32(0.005)
	return Options{
		WorkerCount:          1,
		MinRangePerTask:      32,
		SubstepCount:         4,
		SolveIterations:      8,
		RelaxIterations:      1,
		ContactHertz:         30,
		ContactDampingRatio:  10,
		JointHertz:           60,
		JointDampingRatio:    2,
		RestitutionThreshold: 1.0,
		LinearSlop:           linearSlop,
		SpeculativeDistance:  4 * linearSlop,
		AABBMargin:           0.1,
		TimeToSleep:          0.5,
		EnableSleep:          true,
		MaxLinearSpeed:       400,
		MaxRotation:          0.25 * 3.14159265,
		EnableContinuous:     true,
		Gravity:              lin.V2(0, -10),
	}
}

// WithGravity sets the world's uniform gravity acceleration.
func WithGravity(g lin.Vec2) Option {
	return func(o *Options) { o.Gravity = g }
}

// Option configures Options, the teacher's functional-options idiom
// (config.Option / gazed-vu's `Attr`) renamed to this package's surface.
type Option func(*Options)

// WithWorkerCount sets the fixed worker-pool size and the minimum item range
// the work-block scheduler partitions by (spec.md §4.1/§5's "fixed worker
// pool of size workerCount").
func WithWorkerCount(workers, minRange int) Option {
	return func(o *Options) {
		if workers > 0 {
			o.WorkerCount = workers
		}
		if minRange > 0 {
			o.MinRangePerTask = minRange
		}
	}
}

// WithSubsteps sets the per-step substep count.
func WithSubsteps(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.SubstepCount = n
		}
	}
}

// WithIterations sets the solve and relax iteration counts.
func WithIterations(solve, relax int) Option {
	return func(o *Options) {
		if solve > 0 {
			o.SolveIterations = solve
		}
		if relax >= 0 {
			o.RelaxIterations = relax
		}
	}
}

// WithContactSoftness sets the contact softness parameters.
func WithContactSoftness(hertz, dampingRatio float32) Option {
	return func(o *Options) { o.ContactHertz = hertz; o.ContactDampingRatio = dampingRatio }
}

// WithJointSoftness sets the joint softness parameters.
func WithJointSoftness(hertz, dampingRatio float32) Option {
	return func(o *Options) { o.JointHertz = hertz; o.JointDampingRatio = dampingRatio }
}

// WithLinearSlop sets the linear slop and derives speculativeDistance as
// 4x it, matching spec.md's stated ratio.
func WithLinearSlop(slop float32) Option {
	return func(o *Options) {
		if slop > 0 {
			o.LinearSlop = slop
			o.SpeculativeDistance = 4 * slop
		}
	}
}

// WithAABBMargin sets the broad-phase fat-AABB margin.
func WithAABBMargin(margin float32) Option {
	return func(o *Options) { o.AABBMargin = margin }
}

// WithSleep configures island quiescence behavior.
func WithSleep(enabled bool, timeToSleep float32) Option {
	return func(o *Options) {
		o.EnableSleep = enabled
		if timeToSleep > 0 {
			o.TimeToSleep = timeToSleep
		}
	}
}

// WithContinuous toggles the CCD sub-pipeline (spec.md §4.5).
func WithContinuous(enabled bool) Option {
	return func(o *Options) { o.EnableContinuous = enabled }
}

// WithSpeedLimits sets the per-body velocity caps spec.md §4.3's
// IntegrateVelocities kernel clamps against.
func WithSpeedLimits(maxLinear, maxRotation float32) Option {
	return func(o *Options) {
		if maxLinear > 0 {
			o.MaxLinearSpeed = maxLinear
		}
		if maxRotation > 0 {
			o.MaxRotation = maxRotation
		}
	}
}

// NewOptions builds an Options from DefaultOptions with opts applied in
// order.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FromConfig bridges a data-driven config.Config (loaded via
// config.LoadYAML) into the solver's in-process Options, layering it over
// whatever DefaultOptions/earlier options already set. The two structs
// intentionally don't share a type: config.Config is the YAML-serializable
// surface (see config/config.go's document type), Options is what the
// solver reads every step, and this is the one place that reconciles them.
func FromConfig(c config.Config) Option {
	return func(o *Options) {
		if c.SubstepCount > 0 {
			o.SubstepCount = c.SubstepCount
		}
		if c.SolveIterations > 0 {
			o.SolveIterations = c.SolveIterations
		}
		if c.RelaxIterations >= 0 {
			o.RelaxIterations = c.RelaxIterations
		}
		if c.ContactHertz > 0 {
			o.ContactHertz = c.ContactHertz
		}
		if c.ContactDampingRatio > 0 {
			o.ContactDampingRatio = c.ContactDampingRatio
		}
		if c.JointHertz > 0 {
			o.JointHertz = c.JointHertz
		}
		if c.JointDampingRatio > 0 {
			o.JointDampingRatio = c.JointDampingRatio
		}
		if c.LinearSlop > 0 {
			o.LinearSlop = c.LinearSlop
			o.SpeculativeDistance = c.SpeculativeDistance
		}
		if c.AABBMargin > 0 {
			o.AABBMargin = c.AABBMargin
		}
		if c.TimeToSleep > 0 {
			o.TimeToSleep = c.TimeToSleep
		}
		if c.WorkerCount > 0 {
			o.WorkerCount = c.WorkerCount
		}
		if c.MinRangePerTask > 0 {
			o.MinRangePerTask = c.MinRangePerTask
		}
	}
}
