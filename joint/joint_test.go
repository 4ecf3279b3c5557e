package joint

import (
	"testing"

	"github.com/gazed/solve2d/body"
	"github.com/gazed/solve2d/math/lin"
)

func anchoredPair() (*body.Sim, *body.State, *body.Sim, *body.State) {
	a := &body.Sim{Type: body.Static, Transform: lin.TransformI}
	aState := &body.State{DeltaRotation: lin.RotI}
	b := &body.Sim{Type: body.Dynamic, InvMass: 1, InvInertia: 1, Transform: lin.TransformI, Center: lin.V2(3, 0)}
	bState := &body.State{LinearVelocity: lin.V2(0, 2), DeltaRotation: lin.RotI}
	return a, aState, b, bState
}

func TestDistanceJointPullsToLength(t *testing.T) {
	aSim, aState, bSim, bState := anchoredPair()
	j := &Joint{
		Kind: KindDistance, BodyA: aSim, BodyB: bSim, StateA: aState, StateB: bState,
		Distance: DistanceJoint{Length: 2},
	}
	h := float32(1.0 / 240.0)
	PrepareJoint(j, 0, 0, h)
	WarmStartJoint(j)
	for i := 0; i < 20; i++ {
		SolveJoint(j, true, h)
	}
	SolveJoint(j, false, h)

	axialSpeed := j.Distance.Axis.Dot(bState.LinearVelocity)
	if lin.Abs(axialSpeed) > 0.5 {
		t.Errorf("expected axial velocity to settle near 0, got %v", axialSpeed)
	}
}

func TestRevoluteJointOpposesSeparationVelocity(t *testing.T) {
	aSim, aState, bSim, bState := anchoredPair()
	j := &Joint{
		Kind: KindRevolute, BodyA: aSim, BodyB: bSim, StateA: aState, StateB: bState,
	}
	h := float32(1.0 / 240.0)
	PrepareJoint(j, 60, 2, h)
	WarmStartJoint(j)
	before := bState.LinearVelocity
	SolveJoint(j, true, h)
	if bState.LinearVelocity.Eq(before) {
		t.Errorf("expected revolute solve to change B's velocity")
	}
}

func TestGetJointReactionNonZeroAfterSolve(t *testing.T) {
	aSim, aState, bSim, bState := anchoredPair()
	j := &Joint{
		Kind: KindDistance, BodyA: aSim, BodyB: bSim, StateA: aState, StateB: bState,
		Distance: DistanceJoint{Length: 2},
	}
	h := float32(1.0 / 240.0)
	PrepareJoint(j, 60, 2, h)
	SolveJoint(j, true, h)
	reaction := GetJointReaction(j)
	if reaction.LenSqr() == 0 {
		t.Errorf("expected non-zero joint reaction after solving")
	}
}
