package contact

import (
	"testing"

	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/math/lin"
)

func fallingPair() (*body.Sim, *body.State, *body.Sim, *body.State) {
	ground := &body.Sim{Type: body.Static}
	groundState := &body.State{DeltaRotation: lin.RotI}

	box := &body.Sim{Type: body.Dynamic, InvMass: 1, InvInertia: 1}
	boxState := &body.State{
		LinearVelocity: lin.V2(0, -5),
		DeltaRotation:  lin.RotI,
	}
	return ground, groundState, box, boxState
}

func restingManifold() *Manifold {
	return &Manifold{
		Count:  1,
		Normal: lin.V2(0, 1),
		Points: [MaxManifoldPoints]Point{
			{AnchorA: lin.V2(0, 0), AnchorB: lin.V2(0, -0.5), BaseSeparation: -0.01, ID: 1},
		},
		Friction:    0.3,
		Restitution: 0,
	}
}

func TestSolveContactStopsPenetratingVelocity(t *testing.T) {
	groundSim, groundState, boxSim, boxState := fallingPair()
	m := restingManifold()

	h := float32(1.0 / 240.0)
	c := PrepareContact(m, groundSim, boxSim, groundState, boxState, 30, 10, h)
	WarmStartContact(c)
	for i := 0; i < 8; i++ {
		SolveContact(c, true, 1/h)
	}
	SolveContact(c, false, 1/h)

	if boxState.LinearVelocity.Y < -lin.Epsilon {
		t.Errorf("expected non-penetrating normal velocity after solve, got %v", boxState.LinearVelocity.Y)
	}
}

func TestSolveContactFrictionClampedToNormalImpulse(t *testing.T) {
	groundSim, groundState, boxSim, boxState := fallingPair()
	boxState.LinearVelocity = lin.V2(10, -1)
	m := restingManifold()
	m.Friction = 1.0

	h := float32(1.0 / 240.0)
	c := PrepareContact(m, groundSim, boxSim, groundState, boxState, 30, 10, h)
	WarmStartContact(c)
	for i := 0; i < 4; i++ {
		SolveContact(c, true, 1/h)
	}

	p := c.Manifold.Points[0]
	if lin.Abs(p.TangentImpulse) > c.Friction*p.NormalImpulse+1e-3 {
		t.Errorf("tangent impulse %v exceeds friction cone bound %v", p.TangentImpulse, c.Friction*p.NormalImpulse)
	}
}

func TestApplyRestitutionSkippedWhenZero(t *testing.T) {
	groundSim, groundState, boxSim, boxState := fallingPair()
	m := restingManifold()
	c := PrepareContact(m, groundSim, boxSim, groundState, boxState, 30, 10, 1.0/240.0)
	before := c.Manifold.Points[0].NormalImpulse
	ApplyRestitution(c, 1.0)
	after := c.Manifold.Points[0].NormalImpulse
	if before != after {
		t.Errorf("expected no change when restitution is 0, before=%v after=%v", before, after)
	}
}

func TestWarmStartCarriesImpulseAcrossManifolds(t *testing.T) {
	prior := restingManifold()
	prior.Points[0].NormalImpulse = 3.5
	prior.Points[0].TangentImpulse = 0.2

	next := restingManifold()
	next.WarmStart(prior)

	if next.Points[0].NormalImpulse != 3.5 {
		t.Errorf("expected warm-started normal impulse 3.5, got %v", next.Points[0].NormalImpulse)
	}
}
