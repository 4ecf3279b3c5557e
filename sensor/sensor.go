// Package sensor implements the double-buffered sensor overlap engine
// spec.md §4.6 describes: each step recomputes the full set of
// (sensorShape, visitorShape) overlaps into a fresh buffer, then diffs it
// against the previous step's buffer to emit begin/end touch events, and
// swaps. Grounded on the teacher's physics/contact.go
// refreshContacts/mergeContacts persistence idea (compare this step's
// discovered pairs against last step's retained pairs, drop what's gone,
// keep/report what's new) generalized from a single manifold's point-level
// diff to a whole-world shape-pair-level diff with a stable sort so the
// emitted event order is deterministic across worker counts (spec.md's
// testable property for sensor event ordering).
package sensor

import (
	"log/slog"
	"sort"

	"github.com/gazed/solve2d/event"
	"github.com/gazed/solve2d/handle"
)

// maxHitsPerSensor bounds how many simultaneous visitor overlaps a single
// sensor shape tracks, spec.md's Open Question decision (see DESIGN.md):
// fixed capacity of 8, dropping overflow hits past that count (each drop
// is logged, see Record) rather than growing unbounded.
const maxHitsPerSensor = 8

// Pair is one sensor/visitor overlap, the unit both overlap buffers store.
type Pair struct {
	Sensor  handle.ShapeID
	Visitor handle.ShapeID
}

func less(a, b Pair) bool {
	if a.Sensor.World0 != b.Sensor.World0 {
		return a.Sensor.World0 < b.Sensor.World0
	}
	if a.Sensor.Index1 != b.Sensor.Index1 {
		return a.Sensor.Index1 < b.Sensor.Index1
	}
	if a.Visitor.World0 != b.Visitor.World0 {
		return a.Visitor.World0 < b.Visitor.World0
	}
	return a.Visitor.Index1 < b.Visitor.Index1
}

func eq(a, b Pair) bool {
	return a.Sensor == b.Sensor && a.Visitor == b.Visitor
}

// Engine owns two genuinely distinct overlap buffers — not a read/
// truncate view of a single slice, which would let Record's appends
// clobber the previous step's still-unread data — and swaps which one is
// "current" at the end of every step.
type Engine struct {
	buffers    [2][]Pair
	currentIdx int

	hitCounts map[handle.ShapeID]int
}

// NewEngine creates an empty sensor engine.
func NewEngine() *Engine {
	return &Engine{hitCounts: make(map[handle.ShapeID]int)}
}

// BeginStep truncates the working buffer for a fresh collection pass; the
// other buffer (last step's result) is left untouched until EndStep's
// diff reads it, then swapped out.
func (e *Engine) BeginStep() {
	e.buffers[e.currentIdx] = e.buffers[e.currentIdx][:0]
	for k := range e.hitCounts {
		delete(e.hitCounts, k)
	}
}

// Record adds a discovered overlap to the current step's buffer, subject
// to maxHitsPerSensor; overlaps past the cap for a given sensor are
// dropped, once per occurrence, logged via slog.Warn with the sensor's
// shape id and the cap so the drop is observable without being promoted
// to an error (spec.md §7's capacity-drop logging contract).
func (e *Engine) Record(sensorShape, visitorShape handle.ShapeID) {
	if e.hitCounts[sensorShape] >= maxHitsPerSensor {
		slog.Warn("sensor hit buffer overflow", "sensor", sensorShape, "capacity", maxHitsPerSensor)
		return
	}
	e.hitCounts[sensorShape]++
	cur := e.currentIdx
	e.buffers[cur] = append(e.buffers[cur], Pair{Sensor: sensorShape, Visitor: visitorShape})
}

// EndStep sorts the current buffer (for deterministic, worker-count-
// independent ordering) and diffs it against the previous step's sorted
// buffer via a linear sorted-merge, appending begin/end events to out,
// then swaps so this step's buffer becomes next step's `previous`.
func (e *Engine) EndStep(out *event.Set) {
	cur := e.buffers[e.currentIdx]
	prev := e.buffers[1-e.currentIdx]

	sort.SliceStable(cur, func(i, j int) bool { return less(cur[i], cur[j]) })
	sort.SliceStable(prev, func(i, j int) bool { return less(prev[i], prev[j]) })

	i, j := 0, 0
	for i < len(cur) && j < len(prev) {
		switch {
		case eq(cur[i], prev[j]):
			i++
			j++
		case less(cur[i], prev[j]):
			out.SensorBegins = append(out.SensorBegins, event.SensorBeginTouch{
				SensorShapeID: cur[i].Sensor, VisitorShapeID: cur[i].Visitor,
			})
			i++
		default:
			out.SensorEnds = append(out.SensorEnds, event.SensorEndTouch{
				SensorShapeID: prev[j].Sensor, VisitorShapeID: prev[j].Visitor,
			})
			j++
		}
	}
	for ; i < len(cur); i++ {
		out.SensorBegins = append(out.SensorBegins, event.SensorBeginTouch{
			SensorShapeID: cur[i].Sensor, VisitorShapeID: cur[i].Visitor,
		})
	}
	for ; j < len(prev); j++ {
		out.SensorEnds = append(out.SensorEnds, event.SensorEndTouch{
			SensorShapeID: prev[j].Sensor, VisitorShapeID: prev[j].Visitor,
		})
	}

	e.currentIdx = 1 - e.currentIdx
}

// ForceEnd immediately emits an end-touch event for every pair involving
// shapeID still present in the current buffer, and removes them — the
// mid-step shape-destruction path spec.md's literal scenario S4 names
// ("destroying a shape mid-step ends its sensor overlaps immediately
// rather than waiting for the next EndStep diff"). The same pair is also
// dropped from the `previous` buffer so the later EndStep diff in this
// same step doesn't see it as a phantom removal and double-report it.
func (e *Engine) ForceEnd(shapeID handle.ShapeID, out *event.Set) {
	cur := e.currentIdx
	prev := 1 - e.currentIdx
	e.buffers[cur] = removeShape(e.buffers[cur], shapeID, out)
	e.buffers[prev] = removeShape(e.buffers[prev], shapeID, nil)
}

func removeShape(pairs []Pair, shapeID handle.ShapeID, out *event.Set) []Pair {
	kept := pairs[:0]
	for _, p := range pairs {
		if p.Sensor == shapeID || p.Visitor == shapeID {
			if out != nil {
				out.SensorEnds = append(out.SensorEnds, event.SensorEndTouch{
					SensorShapeID: p.Sensor, VisitorShapeID: p.Visitor,
				})
			}
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
