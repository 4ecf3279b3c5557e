package solver

import (
	"sort"

	"github.com/gazed/solve2d/arena"
	"github.com/gazed/solve2d/bitset"
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/broadphase"
	"github.com/gazed/solve2d/contact"
	"github.com/gazed/solve2d/event"
	"github.com/gazed/solve2d/handle"
	"github.com/gazed/solve2d/island"
	"github.com/gazed/solve2d/joint"
	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/sensor"
	"github.com/gazed/solve2d/shape"
	"github.com/gazed/solve2d/taskqueue"
)

// shapeRecord is the world's flat shape storage, external per §6 but
// owned here since no other package needs a world-wide shape table —
// body.SolverSet only stores the per-body shape run, not the broad-phase
// proxy bookkeeping a shape also needs.
type shapeRecord struct {
	shape      shape.Shape
	bodyIdx    int32
	bodyType   body.Type
	proxyID    int32
	generation uint16
	alive      bool
}

func (s *shapeRecord) id(world0 int32, rawIndex int32) handle.ShapeID {
	return handle.NewShapeID(rawIndex, world0, s.generation)
}

// jointRecord is the world's persistent joint storage: the fixed
// definition plus the carried-over solver state (impulses) that must
// survive across steps for warm-starting, separate from joint.Joint
// (the per-step working struct PrepareJoint/SolveJoint mutate, rebuilt
// fresh from this record every step).
type jointRecord struct {
	id       handle.JointID
	alive    bool
	kind     joint.Kind
	bodyA    int32
	bodyB    int32
	localAnchorA, localAnchorB lin.Vec2

	distance joint.DistanceJoint
	revolute joint.RevoluteJoint

	hertz, dampingRatio           float32 // 0 means "use world default"
	forceThreshold, torqueThreshold float32

	colorIndex int
}

// contactRecord is the world's persistent contact storage, keyed by the
// (shapeA, shapeB) raw-index pair so a touching pair's manifold (and
// hence its warm-startable impulses) survives across steps exactly as
// long as the pair keeps overlapping.
type contactRecord struct {
	alive    bool
	manifold contact.Manifold
	shapeA, shapeB int32
	bodyA, bodyB   int32
	friction, restitution float32
	enableEvents bool
	colorIndex   int
}

type pairKey struct{ a, b int32 }

// World is the top-level solver entry point: owns body/shape/joint/
// contact storage, the three broad-phase trees, the sensor engine, and
// drives Step, the orchestration spec.md's component table assigns to
// `solver`. Grounded on the teacher's physics.go Simulate() shape
// (gravity apply -> solve -> clear forces) generalized to the full
// staged/colored/parallel pipeline.
type World struct {
	opts Options

	bodies *body.SolverSet
	shapes []shapeRecord
	shapeFree []int32

	trees [3]*broadphase.Tree // indexed by body.Type

	joints    []jointRecord
	jointFree []int32

	contacts     []contactRecord
	contactIndex map[pairKey]int32
	contactFree  []int32

	colors [numColorSlots]colorBucket

	// islands is deliberately kept as a single global island (index 0)
	// rather than true connected-component tracking: no collaborator
	// package provides a union-find/graph-connectivity primitive, and
	// building one was judged out of proportion to exercising
	// island.Set's sleep-timer/split-candidate API. See DESIGN.md.
	islands island.Set
	asleep  *bitset.BitSet

	sensors *sensor.Engine

	arena *arena.Arena
	queue taskqueue.Queue
	stages *stageMachine

	world0 int32
}

// NewWorld creates an empty world with the given options applied over
// DefaultOptions.
func NewWorld(world0 int32, opts ...Option) *World {
	o := NewOptions(opts...)
	w := &World{
		opts:         o,
		bodies:       body.NewSolverSet(world0),
		contactIndex: make(map[pairKey]int32),
		sensors:      sensor.NewEngine(),
		arena:        arena.New(1 << 16),
		queue:        taskqueue.NewPool(o.WorkerCount),
		stages:       newStageMachine(o.WorkerCount),
		islands:      island.Set{Islands: []island.Island{{ID: 0}}},
		asleep:       bitset.New(0),
		world0:       world0,
	}
	for t := range w.trees {
		w.trees[t] = broadphase.NewTree()
	}
	w.colors = newColorSlots(256)
	return w
}

// CreateBody allocates a new body and its broad-phase-less slot (shapes
// attach their own proxies via CreateShape). The caller supplies Transform
// and LocalCenter; Center/Center0/Rotation0 (the sweep-start bookkeeping
// CCD and finalize need) are derived here so every body starts with a
// consistent, zero-travel sweep.
func (w *World) CreateBody(sim body.Sim, st body.State) handle.BodyID {
	sim.Center = sim.Transform.Apply(sim.LocalCenter)
	sim.Center0 = sim.Center
	sim.Rotation0 = sim.Transform.Q
	return w.bodies.Create(sim, st)
}

// DestroyBody removes a body and every shape it owns.
func (w *World) DestroyBody(id handle.BodyID) {
	idx := w.bodies.Resolve(id)
	if idx < 0 {
		return
	}
	for i := range w.shapes {
		if w.shapes[i].alive && w.shapes[i].bodyIdx == idx {
			w.destroyShapeIndex(int32(i))
		}
	}
	w.bodies.Destroy(id)
}

// CreateShape attaches s to bodyID, inserting a broad-phase proxy sized
// to the shape's current world AABB plus speculativeDistance, matching
// the fat-bound convention the rest of the module assumes.
func (w *World) CreateShape(bodyID handle.BodyID, s shape.Shape) handle.ShapeID {
	idx := w.bodies.Resolve(bodyID)
	if idx < 0 {
		return handle.Nil
	}
	sim := &w.bodies.Sims[idx]

	var rawIndex int32
	var gen uint16
	if n := len(w.shapeFree); n > 0 {
		rawIndex = w.shapeFree[n-1]
		w.shapeFree = w.shapeFree[:n-1]
		gen = w.shapes[rawIndex].generation
	} else {
		rawIndex = int32(len(w.shapes))
		w.shapes = append(w.shapes, shapeRecord{})
	}

	aabb := s.ComputeAABB(sim.Transform).Inflate(w.opts.SpeculativeDistance)
	rec := &w.shapes[rawIndex]
	rec.shape = s
	rec.bodyIdx = idx
	rec.bodyType = sim.Type
	rec.generation = gen
	rec.alive = true
	rec.proxyID = w.trees[sim.Type].CreateProxy(aabb, rawIndex)

	return rec.id(w.world0, rawIndex)
}

// DestroyShape removes a single shape and emits any sensor end-touch
// events its removal forces immediately (spec.md's literal scenario S4).
func (w *World) DestroyShape(id handle.ShapeID, out *event.Set) {
	idx := id.RawIndex()
	if idx < 0 || int(idx) >= len(w.shapes) || !w.shapes[idx].alive || w.shapes[idx].generation != id.Generation {
		return
	}
	if out != nil {
		w.sensors.ForceEnd(id, out)
	}
	w.destroyShapeIndex(idx)
}

func (w *World) destroyShapeIndex(idx int32) {
	rec := &w.shapes[idx]
	if !rec.alive {
		return
	}
	w.trees[rec.bodyType].DestroyProxy(rec.proxyID)
	w.removeContactsForShape(idx)
	rec.alive = false
	rec.generation++
	w.shapeFree = append(w.shapeFree, idx)
}

func (w *World) removeContactsForShape(shapeIdx int32) {
	for pk, ci := range w.contactIndex {
		if pk.a == shapeIdx || pk.b == shapeIdx {
			w.contacts[ci].alive = false
			delete(w.contactIndex, pk)
			w.contactFree = append(w.contactFree, ci)
		}
	}
}

// JointDef is the caller-facing joint creation parameters.
type JointDef struct {
	Kind         joint.Kind
	BodyA, BodyB handle.BodyID
	LocalAnchorA, LocalAnchorB lin.Vec2

	// Distance joint parameters (Kind == KindDistance).
	Length, MinLength, MaxLength float32
	EnableLimit                  bool

	// Revolute joint parameters (Kind == KindRevolute).
	ReferenceAngle, LowerAngle, UpperAngle float32
	EnableAngleLimit                       bool

	// Hertz/DampingRatio of 0 means "use the world's JointHertz/
	// JointDampingRatio defaults".
	Hertz, DampingRatio float32

	// ForceThreshold/TorqueThreshold of 0 disables JointEvent reporting
	// for this joint (spec.md §4.3's jointStateBitSet mechanism).
	ForceThreshold, TorqueThreshold float32
}

// CreateJoint adds a joint between two bodies.
func (w *World) CreateJoint(def JointDef) handle.JointID {
	bodyA := w.bodies.Resolve(def.BodyA)
	bodyB := w.bodies.Resolve(def.BodyB)
	if bodyA < 0 || bodyB < 0 {
		return handle.JointID{}
	}

	var rawIndex int32
	var gen uint16
	if n := len(w.jointFree); n > 0 {
		rawIndex = w.jointFree[n-1]
		w.jointFree = w.jointFree[:n-1]
		gen = w.joints[rawIndex].id.Generation
	} else {
		rawIndex = int32(len(w.joints))
		w.joints = append(w.joints, jointRecord{})
	}
	id := handle.JointID{Index1: rawIndex + 1, World0: w.world0, Generation: gen}

	rec := &w.joints[rawIndex]
	*rec = jointRecord{
		id:               id,
		alive:            true,
		kind:             def.Kind,
		bodyA:            bodyA,
		bodyB:            bodyB,
		localAnchorA:     def.LocalAnchorA,
		localAnchorB:     def.LocalAnchorB,
		hertz:            def.Hertz,
		dampingRatio:     def.DampingRatio,
		forceThreshold:   def.ForceThreshold,
		torqueThreshold:  def.TorqueThreshold,
	}
	rec.distance.Length = def.Length
	rec.distance.MinLength = def.MinLength
	rec.distance.MaxLength = def.MaxLength
	rec.distance.EnableLimit = def.EnableLimit
	rec.revolute.ReferenceAngle = def.ReferenceAngle
	rec.revolute.LowerAngle = def.LowerAngle
	rec.revolute.UpperAngle = def.UpperAngle
	rec.revolute.EnableLimit = def.EnableAngleLimit

	return id
}

// DestroyJoint removes a joint.
func (w *World) DestroyJoint(id handle.JointID) {
	idx := id.Index1 - 1
	if idx < 0 || int(idx) >= len(w.joints) || !w.joints[idx].alive || w.joints[idx].id.Generation != id.Generation {
		return
	}
	w.joints[idx].alive = false
	w.joints[idx].id.Generation++
	w.jointFree = append(w.jointFree, idx)
}

func (w *World) jointHertz(r *jointRecord) (float32, float32) {
	h, d := r.hertz, r.dampingRatio
	if h == 0 {
		h = w.opts.JointHertz
	}
	if d == 0 {
		d = w.opts.JointDampingRatio
	}
	return h, d
}

// sortedAliveShapeIndices returns every alive shape's raw index in
// ascending order, the iteration order every per-step pass over shapes
// uses so results never depend on allocation/free-list history beyond
// what index reuse already captures, and never depend on workerCount.
func (w *World) sortedAliveShapeIndices() []int32 {
	out := make([]int32, 0, len(w.shapes))
	for i := range w.shapes {
		if w.shapes[i].alive {
			out = append(out, int32(i))
		}
	}
	return out
}

// shapesOfBody returns the raw indices of every alive shape attached to
// bodyIdx. Linear in shape count: World indexes shapes by their owning
// body rather than by a contiguous per-body run (unlike body.Sim's
// ShapeStart/ShapeCount fields, which this package leaves unused — shapes
// are created/destroyed independently of body allocation order here, so a
// contiguous run can't be maintained without relocating shapes on every
// create/destroy).
func (w *World) shapesOfBody(bodyIdx int32) []int32 {
	var out []int32
	for i := range w.shapes {
		if w.shapes[i].alive && w.shapes[i].bodyIdx == bodyIdx {
			out = append(out, int32(i))
		}
	}
	return out
}

func sortPairKeys(pairs []pairKey) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
}
