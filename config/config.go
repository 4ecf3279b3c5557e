// Package config supplies both a declarative WorldConfig document (loaded
// via gopkg.in/yaml.v3) and a functional-options API for programmatic
// setup, spec.md's numeric-defaults section generalized into a loadable,
// overridable configuration surface. The functional-options half is
// grounded directly on the teacher's config.go Attr-function pattern
// (Config struct + `type Attr func(*Config)` + constructor functions
// returning closures); the YAML half is grounded on gazed-vu/load/shd.go's
// yaml.Unmarshal-based asset loading, generalized from shader-metadata
// documents to a world's solver tuning document.
package config

import "gopkg.in/yaml.v3"

// Config holds every solver tuning knob spec.md's Design Notes section
// names a numeric default for.
type Config struct {
	SubstepCount int
	SolveIterations int
	RelaxIterations int

	ContactHertz        float32
	ContactDampingRatio float32
	JointHertz          float32
	JointDampingRatio   float32

	LinearSlop          float32
	SpeculativeDistance float32
	AABBMargin          float32
	TimeToSleep         float32

	WorkerCount  int
	MinRangePerTask int
}

// Defaults returns the numeric defaults spec.md's Design Notes section
// records: 4 substeps, 8 solve iterations, 1 relax iteration,
// contactHertz 30, contactDampingRatio 10, jointHertz 60,
// linearSlop 0.005, speculativeDistance = 4*linearSlop, aabbMargin 0.1,
// timeToSleep 0.5s.
func Defaults() Config {
	linearSlop := float32(0.005)
	return Config{
		SubstepCount:        4,
		SolveIterations:     8,
		RelaxIterations:     1,
		ContactHertz:        30,
		ContactDampingRatio: 10,
		JointHertz:          60,
		JointDampingRatio:   2,
		LinearSlop:          linearSlop,
		SpeculativeDistance: 4 * linearSlop,
		AABBMargin:          0.1,
		TimeToSleep:         0.5,
		WorkerCount:         1,
		MinRangePerTask:     32,
	}
}

// Option configures a Config, the teacher's `type Attr func(*Config)`
// idiom renamed to this module's vocabulary.
type Option func(*Config)

// WithSubsteps sets the per-step substep count.
func WithSubsteps(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.SubstepCount = n
		}
	}
}

// WithIterations sets the solve and relax iteration counts.
func WithIterations(solve, relax int) Option {
	return func(c *Config) {
		if solve > 0 {
			c.SolveIterations = solve
		}
		if relax >= 0 {
			c.RelaxIterations = relax
		}
	}
}

// WithContactSoftness sets the contact softness parameters.
func WithContactSoftness(hertz, dampingRatio float32) Option {
	return func(c *Config) { c.ContactHertz = hertz; c.ContactDampingRatio = dampingRatio }
}

// WithJointSoftness sets the joint softness parameters.
func WithJointSoftness(hertz, dampingRatio float32) Option {
	return func(c *Config) { c.JointHertz = hertz; c.JointDampingRatio = dampingRatio }
}

// WithLinearSlop sets the linear slop and derives speculativeDistance as
// 4x it, matching spec.md's stated ratio.
func WithLinearSlop(slop float32) Option {
	return func(c *Config) {
		if slop > 0 {
			c.LinearSlop = slop
			c.SpeculativeDistance = 4 * slop
		}
	}
}

// WithAABBMargin sets the broad-phase fat-AABB margin.
func WithAABBMargin(margin float32) Option {
	return func(c *Config) { c.AABBMargin = margin }
}

// WithTimeToSleep sets the island quiescence duration required to sleep.
func WithTimeToSleep(seconds float32) Option {
	return func(c *Config) { c.TimeToSleep = seconds }
}

// WithWorkers sets the worker count and minimum per-task item range the
// work-block scheduler partitions by.
func WithWorkers(workers, minRange int) Option {
	return func(c *Config) {
		if workers > 0 {
			c.WorkerCount = workers
		}
		if minRange > 0 {
			c.MinRangePerTask = minRange
		}
	}
}

// New builds a Config from Defaults with the given options applied in
// order, the teacher's `vu.NewEngine(vu.Title(...), vu.Size(...))` call
// shape.
func New(opts ...Option) Config {
	c := Defaults()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// document is the YAML-serializable shape of a WorldConfig file; field
// names are kept close to Config's but lower-cased/underscore-separated the way
// gazed-vu/load/shd.go's yaml documents are.
type document struct {
	SubstepCount        int     `yaml:"substep_count"`
	SolveIterations     int     `yaml:"solve_iterations"`
	RelaxIterations     int     `yaml:"relax_iterations"`
	ContactHertz        float32 `yaml:"contact_hertz"`
	ContactDampingRatio float32 `yaml:"contact_damping_ratio"`
	JointHertz          float32 `yaml:"joint_hertz"`
	JointDampingRatio   float32 `yaml:"joint_damping_ratio"`
	LinearSlop          float32 `yaml:"linear_slop"`
	AABBMargin          float32 `yaml:"aabb_margin"`
	TimeToSleep         float32 `yaml:"time_to_sleep"`
	WorkerCount         int     `yaml:"worker_count"`
	MinRangePerTask     int     `yaml:"min_range_per_task"`
}

// LoadYAML parses a WorldConfig document, applying its fields over
// Defaults() so a partial document only overrides what it specifies.
func LoadYAML(data []byte) (Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, err
	}
	c := Defaults()
	if doc.SubstepCount > 0 {
		c.SubstepCount = doc.SubstepCount
	}
	if doc.SolveIterations > 0 {
		c.SolveIterations = doc.SolveIterations
	}
	if doc.RelaxIterations > 0 {
		c.RelaxIterations = doc.RelaxIterations
	}
	if doc.ContactHertz > 0 {
		c.ContactHertz = doc.ContactHertz
	}
	if doc.ContactDampingRatio > 0 {
		c.ContactDampingRatio = doc.ContactDampingRatio
	}
	if doc.JointHertz > 0 {
		c.JointHertz = doc.JointHertz
	}
	if doc.JointDampingRatio > 0 {
		c.JointDampingRatio = doc.JointDampingRatio
	}
	if doc.LinearSlop > 0 {
		c.LinearSlop = doc.LinearSlop
		c.SpeculativeDistance = 4 * doc.LinearSlop
	}
	if doc.AABBMargin > 0 {
		c.AABBMargin = doc.AABBMargin
	}
	if doc.TimeToSleep > 0 {
		c.TimeToSleep = doc.TimeToSleep
	}
	if doc.WorkerCount > 0 {
		c.WorkerCount = doc.WorkerCount
	}
	if doc.MinRangePerTask > 0 {
		c.MinRangePerTask = doc.MinRangePerTask
	}
	return c, nil
}

// MarshalYAML serializes c back into a WorldConfig document, the inverse of
// LoadYAML, for tooling that wants to write out a starting-point config
// file to hand-edit.
func MarshalYAML(c Config) ([]byte, error) {
	doc := document{
		SubstepCount:        c.SubstepCount,
		SolveIterations:     c.SolveIterations,
		RelaxIterations:     c.RelaxIterations,
		ContactHertz:        c.ContactHertz,
		ContactDampingRatio: c.ContactDampingRatio,
		JointHertz:          c.JointHertz,
		JointDampingRatio:   c.JointDampingRatio,
		LinearSlop:          c.LinearSlop,
		AABBMargin:          c.AABBMargin,
		TimeToSleep:         c.TimeToSleep,
		WorkerCount:         c.WorkerCount,
		MinRangePerTask:     c.MinRangePerTask,
	}
	return yaml.Marshal(doc)
}
