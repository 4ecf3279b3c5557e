package solver

import (
	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/distance"
	"github.com/gazed/solve2d/handle"
	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/sensor"
	"github.com/gazed/solve2d/shape"
)

// maxSensorHitsPerCCDBody bounds how many sensor-shape crossings a single
// CCD sweep records before later ones are discarded, spec.md §4.5's
// "fixed-capacity (8) per-body buffer of {SensorHit, fraction}".
const maxSensorHitsPerCCDBody = 8

type ccdSensorHit struct {
	sensorShape handle.ShapeID
	fraction    float32
}

// sweepOf builds the swept pose distance.TimeOfImpact needs for a body's
// motion across this step, from the start-of-step pose stashed in
// Sim.Center0/Rotation0 to the post-integration pose in Sim.Center/
// Transform.Q, spec.md §4.5's "construct Sweep{center0, rotation0, center,
// rotation}".
func sweepOf(sim *body.Sim) distance.Sweep {
	return distance.Sweep{
		LocalCenter: sim.LocalCenter,
		C1:          sim.Center0,
		C2:          sim.Center,
		Q1:          sim.Rotation0,
		Q2:          sim.Transform.Q,
	}
}

// isFastBody flags a dynamic body whose swept travel this step exceeds
// half its core shape extent (box2d v3's tunneling heuristic) or that is
// explicitly marked IsBullet, spec.md §4.5's "identify fast bodies" step.
func isFastBody(sim *body.Sim) bool {
	if sim.Type != body.Dynamic {
		return false
	}
	if sim.IsBullet {
		return true
	}
	travel := sim.Center.Dist(sim.Center0)
	return sim.MinExtent > 0 && travel > 0.5*sim.MinExtent
}

// sweptAABB returns the union of a body's start-of-step and end-of-step
// shape AABBs, the broad-phase query region a CCD sweep searches.
func (w *World) sweptAABB(bodyIdx int32) (shape.AABB, bool) {
	sim := &w.bodies.Sims[bodyIdx]
	startXf := lin.Transform{P: sim.Center0.Sub(sim.Rotation0.Apply(sim.LocalCenter)), Q: sim.Rotation0}

	var box shape.AABB
	first := true
	for _, si := range w.shapesOfBody(bodyIdx) {
		s := &w.shapes[si].shape
		a := shape.Union(s.ComputeAABB(startXf), s.ComputeAABB(sim.Transform))
		if first {
			box = a
			first = false
		} else {
			box = shape.Union(box, a)
		}
	}
	return box, !first
}

// solveCCDForBody runs the conservative-advancement sweep for one fast
// body against every solid candidate its swept AABB touches, freezing the
// body at the earliest time of impact found (if any), spec.md §4.5's core
// per-body CCD routine. Sensor shapes swept through along the way are
// recorded into workerIndex's sensorHits scratch (never into w.sensors
// directly — this runs in parallel across workers, and sensor.Engine
// isn't safe for concurrent callers).
func (w *World) solveCCDForBody(ctx *stepContext, workerIndex int, bodyIdx int32) {
	sim := &w.bodies.Sims[bodyIdx]
	box, ok := w.sweptAABB(bodyIdx)
	if !ok {
		return
	}

	target := w.opts.LinearSlop
	tolerance := 0.25 * w.opts.LinearSlop
	minFraction := float32(1)
	var pendingSensorHits []ccdSensorHit

	ownShapes := w.shapesOfBody(bodyIdx)
	sweepSelf := sweepOf(sim)

	for t := range w.trees {
		w.trees[t].Query(box, func(otherIdx int32) bool {
			other := &w.shapes[otherIdx]
			if !other.alive || other.bodyIdx == bodyIdx {
				return true
			}
			if !shape.ShouldCollide(otherSelfFilterOf(w, ownShapes), other.shape.Filter) {
				return true
			}
			otherSim := &w.bodies.Sims[other.bodyIdx]
			// two dynamic bodies both participating in CCD this step would
			// double-sweep the same pair; only the bullet/fast body being
			// resolved treats the other side's sweep as moving, which is
			// still conservative (approach rate only grows).
			sweepOther := sweepOf(otherSim)

			pB := distance.MakeProxy(&other.shape)
			for _, si := range ownShapes {
				pA := distance.MakeProxy(&w.shapes[si].shape)
				in := distance.Input{
					ProxyA:      pA,
					ProxyB:      pB,
					SweepA:      sweepSelf,
					SweepB:      sweepOther,
					MaxFraction: minFraction,
				}
				out := distance.TimeOfImpact(in, target, tolerance)
				if out.State != distance.Hit {
					continue
				}
				if other.shape.IsSensor {
					if out.Fraction <= minFraction && len(pendingSensorHits) < maxSensorHitsPerCCDBody {
						pendingSensorHits = append(pendingSensorHits, ccdSensorHit{
							sensorShape: other.id(w.world0, otherIdx),
							fraction:    out.Fraction,
						})
					}
				} else if out.Fraction < minFraction {
					minFraction = out.Fraction
				}
			}
			return true
		})
	}

	// spec.md §4.5: "for every sensor hit with fraction < context.fraction,
	// append to the worker's sensorHits output buffer" — sensor hits
	// recorded after the eventual solid hit are discarded.
	if len(ownShapes) > 0 && ctx != nil {
		visitorShape := w.shapes[ownShapes[0]].id(w.world0, ownShapes[0])
		for _, hit := range pendingSensorHits {
			if hit.fraction < minFraction {
				ctx.workers[workerIndex].sensorHits = append(ctx.workers[workerIndex].sensorHits, sensor.Pair{
					Sensor: hit.sensorShape, Visitor: visitorShape,
				})
			}
		}
	}

	if minFraction >= 1 {
		return
	}

	frozen := sweepSelf.Transform(minFraction)
	sim.Transform = frozen
	sim.Center = frozen.Apply(sim.LocalCenter)
	sim.HadTimeOfImpact = true
}

// otherSelfFilterOf returns the filter to collide-check a candidate shape
// against: the filter of the sweeping body's first shape, which stands in
// for the whole body. The filters of the body's other shapes are not
// consulted.
func otherSelfFilterOf(w *World, ownShapes []int32) shape.Filter {
	if len(ownShapes) == 0 {
		return shape.DefaultFilter
	}
	return w.shapes[ownShapes[0]].shape.Filter
}

// runContinuous dispatches CCD for every fast/bullet body found this step.
// Bullets run as a dedicated taskqueue job (spec.md §4.5's "bullet bodies
// get a dedicated parallel task") since each sweep does its own broad-
// phase queries and bodies are independent once positions are finalized;
// ordinary fast (non-bullet) bodies are resolved inline by finalizeBody's
// per-block kernel instead (see finalize.go), so this only covers
// IsBullet-flagged bodies.
func (w *World) runContinuous(ctx *stepContext) {
	if !w.opts.EnableContinuous {
		return
	}
	var bullets []int32
	for i := range w.bodies.Sims {
		sim := &w.bodies.Sims[int32(i)]
		if sim.Type == body.Dynamic && sim.IsBullet {
			bullets = append(bullets, int32(i))
		}
	}
	if len(bullets) == 0 {
		return
	}
	h := w.queue.Enqueue(func(start, end, threadIndex int, _ any) {
		for k := start; k < end; k++ {
			w.solveCCDForBody(ctx, threadIndex, bullets[k])
		}
	}, len(bullets), 1, nil)
	w.queue.Finish(h)
}
