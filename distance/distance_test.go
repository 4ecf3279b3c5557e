package distance

import (
	"testing"

	"github.com/gazed/solve2d/math/lin"
)

func circleProxy(cx, cy, r float32) Proxy {
	return Proxy{Vertices: []lin.Vec2{lin.V2(cx, cy)}, Radius: r}
}

func TestShapeDistanceSeparatedCircles(t *testing.T) {
	a := circleProxy(0, 0, 0)
	b := circleProxy(10, 0, 0)
	out := ShapeDistance(a, b)
	if lin.Abs(out.Distance-10) > 1e-3 {
		t.Errorf("expected distance 10, got %v", out.Distance)
	}
}

func TestShapeDistanceCoincidentPoints(t *testing.T) {
	a := circleProxy(5, 5, 0)
	b := circleProxy(5, 5, 0)
	out := ShapeDistance(a, b)
	if out.Distance > 1e-3 {
		t.Errorf("expected ~0 distance, got %v", out.Distance)
	}
}

func TestShapeDistancePolygonVsPoint(t *testing.T) {
	square := Proxy{Vertices: []lin.Vec2{
		lin.V2(-1, -1), lin.V2(1, -1), lin.V2(1, 1), lin.V2(-1, 1),
	}}
	point := circleProxy(5, 0, 0)
	out := ShapeDistance(square, point)
	if lin.Abs(out.Distance-4) > 1e-3 {
		t.Errorf("expected distance 4, got %v", out.Distance)
	}
}

func TestShapeDistanceOverlappingPolygons(t *testing.T) {
	square1 := Proxy{Vertices: []lin.Vec2{
		lin.V2(-1, -1), lin.V2(1, -1), lin.V2(1, 1), lin.V2(-1, 1),
	}}
	square2 := Proxy{Vertices: []lin.Vec2{
		lin.V2(-0.5, -0.5), lin.V2(0.5, -0.5), lin.V2(0.5, 0.5), lin.V2(-0.5, 0.5),
	}}
	out := ShapeDistance(square1, square2)
	if out.Distance > 1e-3 {
		t.Errorf("expected ~0 distance for fully nested squares, got %v", out.Distance)
	}
}

func TestTimeOfImpactHeadOnApproach(t *testing.T) {
	a := circleProxy(0, 0, 0.5)
	b := circleProxy(0, 0, 0.5)

	in := Input{
		ProxyA: a,
		ProxyB: b,
		SweepA: Sweep{C1: lin.V2(-5, 0), C2: lin.V2(0, 0), Q1: lin.RotI, Q2: lin.RotI},
		SweepB: Sweep{C1: lin.V2(5, 0), C2: lin.V2(0, 0), Q1: lin.RotI, Q2: lin.RotI},
		MaxFraction: 1,
	}
	out := TimeOfImpact(in, 0.01, 0.005)
	if out.State != Hit {
		t.Fatalf("expected Hit state, got %v", out.State)
	}
	if out.Fraction <= 0 || out.Fraction >= 1 {
		t.Errorf("expected fraction strictly in (0,1), got %v", out.Fraction)
	}
}

func TestTimeOfImpactNeverMeet(t *testing.T) {
	a := circleProxy(0, 0, 0.5)
	b := circleProxy(0, 0, 0.5)
	in := Input{
		ProxyA: a,
		ProxyB: b,
		SweepA: Sweep{C1: lin.V2(-5, 0), C2: lin.V2(-4, 0), Q1: lin.RotI, Q2: lin.RotI},
		SweepB: Sweep{C1: lin.V2(5, 0), C2: lin.V2(6, 0), Q1: lin.RotI, Q2: lin.RotI},
		MaxFraction: 1,
	}
	out := TimeOfImpact(in, 0.01, 0.005)
	if out.State != Separated {
		t.Errorf("expected Separated state, got %v", out.State)
	}
}

func TestTimeOfImpactAlreadyOverlapped(t *testing.T) {
	a := circleProxy(0, 0, 1)
	b := circleProxy(0, 0, 1)
	in := Input{
		ProxyA: a,
		ProxyB: b,
		SweepA: Sweep{C1: lin.V2(0, 0), C2: lin.V2(0, 0), Q1: lin.RotI, Q2: lin.RotI},
		SweepB: Sweep{C1: lin.V2(0, 0), C2: lin.V2(0, 0), Q1: lin.RotI, Q2: lin.RotI},
		MaxFraction: 1,
	}
	out := TimeOfImpact(in, 0.01, 0.005)
	if out.State != Overlapped {
		t.Errorf("expected Overlapped state, got %v", out.State)
	}
}
