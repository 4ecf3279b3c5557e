package lin

import "testing"

func TestAeq(t *testing.T) {
	if !Aeq(1.0000001, 1.0000002) {
		t.Error("expected values within epsilon to compare almost-equal")
	}
	if Aeq(1.0, 1.1) {
		t.Error("expected values outside epsilon to compare unequal")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("expected 5, got %f", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("expected 10, got %f", got)
	}
}

func TestVec2Basics(t *testing.T) {
	a := V2(1, 2)
	b := V2(3, 4)
	if got := a.Add(b); !got.Eq(V2(4, 6)) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Dot(b); got != 11 {
		t.Errorf("Dot: got %f, want 11", got)
	}
	if got := a.Cross(b); got != -2 {
		t.Errorf("Cross: got %f, want -2", got)
	}
}

func TestRotIdentity(t *testing.T) {
	r := RotI
	v := V2(1, 0)
	if got := r.Apply(v); !got.Aeq(v) {
		t.Errorf("identity rotation changed vector: got %v", got)
	}
}

func TestRotQuarterTurn(t *testing.T) {
	r := NewRot(PI / 2)
	got := r.Apply(V2(1, 0))
	if !got.Aeq(V2(0, 1)) {
		t.Errorf("expected (0,1), got %v", got)
	}
}

func TestIntegrateRotationStaysUnit(t *testing.T) {
	q := RotI
	for i := 0; i < 1000; i++ {
		q = IntegrateRotation(q, 0.01)
	}
	mag := q.C*q.C + q.S*q.S
	if !Aeq(mag, 1.0) {
		t.Errorf("expected unit rotation after repeated integration, got magnitude %f", mag)
	}
}

func TestTransformApplyInvRoundTrips(t *testing.T) {
	tr := Transform{P: V2(3, 4), Q: NewRot(0.7)}
	v := V2(10, -5)
	local := tr.ApplyInv(tr.Apply(v))
	if !local.Aeq(v) {
		t.Errorf("round trip failed: got %v, want %v", local, v)
	}
}
