package solver

import (
	"math"
	"testing"

	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/internal/stats"
	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/shape"
)

// groundAndBall builds a small scene: a static box ground at y=0 and a
// dynamic circle dropped from some height above it, gravity pointing down.
func groundAndBall(opts ...Option) (*World, func()) {
	w := NewWorld(0, opts...)

	ground := w.CreateBody(body.Sim{
		Type:      body.Static,
		Transform: lin.Transform{P: lin.V2(0, 0), Q: lin.RotI},
	}, body.State{DeltaRotation: lin.RotI})
	groundBox := shape.Shape{Kind: shape.KindPolygon, Polygon: shape.NewBoxPolygon(5, 0.5), Friction: 0.3}
	w.CreateShape(ground, groundBox)

	ball := w.CreateBody(body.Sim{
		Type:           body.Dynamic,
		Transform:      lin.Transform{P: lin.V2(0, 3), Q: lin.RotI},
		InvMass:        1,
		InvInertia:     1,
		MinExtent:      0.5,
		MaxExtent:      0.5,
		GravityScale:   1,
		MaxLinearSpeed: 400,
		EnableSleep:    true,
		SleepThreshold: 0.05,
	}, body.State{DeltaRotation: lin.RotI})
	circle := shape.Shape{Kind: shape.KindCircle, Circle: shape.Circle{Radius: 0.5}, Friction: 0.3, EnableContactEvents: true}
	w.CreateShape(ball, circle)

	return w, w.Close
}

func TestBallSettlesAboveGround(t *testing.T) {
	w, done := groundAndBall(WithWorkerCount(2, 4))
	defer done()

	dt := float32(1.0 / 60.0)
	for i := 0; i < 180; i++ {
		w.Solve(dt)
	}

	idx := int32(1) // ball created second
	sim := &w.bodies.Sims[idx]
	if sim.Center.Y < 0.9 || sim.Center.Y > 1.2 {
		t.Fatalf("ball did not settle near ground+radius, got center.Y=%v", sim.Center.Y)
	}
	if sim.Center.Y < 0 {
		t.Fatalf("ball tunneled through the ground, center.Y=%v", sim.Center.Y)
	}
}

func TestZeroDtIsIdempotent(t *testing.T) {
	w, done := groundAndBall()
	defer done()

	before := w.bodies.Sims[1]
	out := w.Solve(0)
	after := w.bodies.Sims[1]

	if before.Center != after.Center || before.Transform != after.Transform {
		t.Fatalf("zero-dt Solve moved a body: before=%+v after=%+v", before, after)
	}
	if len(out.BodyMoves) != 0 {
		t.Fatalf("zero-dt Solve emitted BodyMove events: %+v", out.BodyMoves)
	}
}

func TestDeterminismAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) lin.Vec2 {
		w, done := groundAndBall(WithWorkerCount(workers, 4))
		defer done()
		dt := float32(1.0 / 60.0)
		for i := 0; i < 60; i++ {
			w.Solve(dt)
		}
		return w.bodies.Sims[1].Center
	}

	base := run(1)
	for _, wc := range []int{2, 4, 8} {
		got := run(wc)
		if !got.Aeq(base) {
			t.Fatalf("workerCount=%d diverged from workerCount=1: got=%v want=%v", wc, got, base)
		}
	}

	xs := make([]float64, 0, 4)
	for _, wc := range []int{1, 2, 4, 8} {
		xs = append(xs, float64(run(wc).Y))
	}
	if v := stats.Variance(xs); v != 0 {
		t.Fatalf("settled center.Y varies across workerCount: variance=%v samples=%v", v, xs)
	}
}

func TestSensorBeginAndEndTouch(t *testing.T) {
	w := NewWorld(0)
	defer w.Close()

	sensorBody := w.CreateBody(body.Sim{Type: body.Static, Transform: lin.Transform{P: lin.V2(0, 0), Q: lin.RotI}}, body.State{DeltaRotation: lin.RotI})
	sensorShape := w.CreateShape(sensorBody, shape.Shape{
		Kind:     shape.KindCircle,
		Circle:   shape.Circle{Radius: 1},
		IsSensor: true,
	})

	visitorBody := w.CreateBody(body.Sim{
		Type:         body.Dynamic,
		Transform:    lin.Transform{P: lin.V2(5, 0), Q: lin.RotI},
		InvMass:      1,
		InvInertia:   1,
		GravityScale: 0,
	}, body.State{DeltaRotation: lin.RotI})
	w.CreateShape(visitorBody, shape.Shape{Kind: shape.KindCircle, Circle: shape.Circle{Radius: 0.5}})

	// far away: no overlap yet.
	out := w.Solve(1.0 / 60.0)
	if len(out.SensorBegins) != 0 {
		t.Fatalf("unexpected sensor begin before overlap: %+v", out.SensorBegins)
	}

	// teleport the visitor into the sensor's area and step again.
	w.bodies.Sims[1].Transform.P = lin.V2(0, 0)
	w.bodies.Sims[1].Center = lin.V2(0, 0)
	out = w.Solve(1.0 / 60.0)
	if len(out.SensorBegins) != 1 {
		t.Fatalf("expected one sensor begin, got %d: %+v", len(out.SensorBegins), out.SensorBegins)
	}
	if out.SensorBegins[0].SensorShapeID != sensorShape {
		t.Fatalf("sensor begin reported wrong sensor shape")
	}

	// teleport back out: expect an end-touch.
	w.bodies.Sims[1].Transform.P = lin.V2(5, 0)
	w.bodies.Sims[1].Center = lin.V2(5, 0)
	out = w.Solve(1.0 / 60.0)
	if len(out.SensorEnds) != 1 {
		t.Fatalf("expected one sensor end, got %d: %+v", len(out.SensorEnds), out.SensorEnds)
	}
}

func TestOverflowColorRunsSerially(t *testing.T) {
	// more contacts sharing one dynamic body than maxColors forces overflow.
	w := NewWorld(0, WithWorkerCount(4, 4))
	defer w.Close()

	hub := w.CreateBody(body.Sim{
		Type:         body.Dynamic,
		Transform:    lin.Transform{P: lin.V2(0, 0), Q: lin.RotI},
		InvMass:      1,
		InvInertia:   1,
		GravityScale: 0,
	}, body.State{DeltaRotation: lin.RotI})
	w.CreateShape(hub, shape.Shape{Kind: shape.KindCircle, Circle: shape.Circle{Radius: 3}})

	for i := 0; i < maxColors+3; i++ {
		angle := float64(i) * 0.2
		pos := lin.V2(3.49*float32(math.Cos(angle)), 3.49*float32(math.Sin(angle)))
		b := w.CreateBody(body.Sim{
			Type:      body.Static,
			Transform: lin.Transform{P: pos, Q: lin.RotI},
		}, body.State{DeltaRotation: lin.RotI})
		w.CreateShape(b, shape.Shape{Kind: shape.KindCircle, Circle: shape.Circle{Radius: 0.5}})
	}

	// must not deadlock or panic: the overflow color's constraints still
	// have to be resolved even though they all touch the same dynamic body.
	for i := 0; i < 5; i++ {
		w.Solve(1.0 / 60.0)
	}
}
