package sensor

import (
	"testing"

	"github.com/gazed/solve2d/event"
	"github.com/gazed/solve2d/handle"
)

func shapeID(i int32) handle.ShapeID { return handle.NewShapeID(i, 0, 0) }

func TestEngineEmitsBeginOnFirstOverlap(t *testing.T) {
	e := NewEngine()
	e.BeginStep()
	e.Record(shapeID(1), shapeID(2))
	var out event.Set
	e.EndStep(&out)

	if len(out.SensorBegins) != 1 || len(out.SensorEnds) != 0 {
		t.Fatalf("expected 1 begin, 0 end, got %d/%d", len(out.SensorBegins), len(out.SensorEnds))
	}
}

func TestEnginePersistsOverlapAcrossSteps(t *testing.T) {
	e := NewEngine()
	e.BeginStep()
	e.Record(shapeID(1), shapeID(2))
	var out1 event.Set
	e.EndStep(&out1)

	e.BeginStep()
	e.Record(shapeID(1), shapeID(2))
	var out2 event.Set
	e.EndStep(&out2)

	if len(out2.SensorBegins) != 0 || len(out2.SensorEnds) != 0 {
		t.Errorf("expected no events for a persisting overlap, got begins=%d ends=%d", len(out2.SensorBegins), len(out2.SensorEnds))
	}
}

func TestEngineEmitsEndWhenOverlapStops(t *testing.T) {
	e := NewEngine()
	e.BeginStep()
	e.Record(shapeID(1), shapeID(2))
	var out1 event.Set
	e.EndStep(&out1)

	e.BeginStep()
	var out2 event.Set
	e.EndStep(&out2)

	if len(out2.SensorEnds) != 1 {
		t.Fatalf("expected 1 end event, got %d", len(out2.SensorEnds))
	}
}

func TestEngineCapsHitsPerSensor(t *testing.T) {
	e := NewEngine()
	e.BeginStep()
	for i := int32(0); i < maxHitsPerSensor+5; i++ {
		e.Record(shapeID(1), shapeID(i+100))
	}
	var out event.Set
	e.EndStep(&out)
	if len(out.SensorBegins) != maxHitsPerSensor {
		t.Errorf("expected capped at %d hits, got %d", maxHitsPerSensor, len(out.SensorBegins))
	}
}

func TestForceEndRemovesOverlapImmediately(t *testing.T) {
	e := NewEngine()
	e.BeginStep()
	e.Record(shapeID(1), shapeID(2))
	var out1 event.Set
	e.EndStep(&out1)

	e.BeginStep()
	e.Record(shapeID(1), shapeID(2))

	var forced event.Set
	e.ForceEnd(shapeID(2), &forced)
	if len(forced.SensorEnds) != 1 {
		t.Fatalf("expected forced end event, got %d", len(forced.SensorEnds))
	}

	var out2 event.Set
	e.EndStep(&out2)
	if len(out2.SensorEnds) != 0 {
		t.Errorf("expected no duplicate end event from EndStep, got %d", len(out2.SensorEnds))
	}
}

func TestSortedDeterministicOrdering(t *testing.T) {
	e := NewEngine()
	e.BeginStep()
	e.Record(shapeID(5), shapeID(9))
	e.Record(shapeID(1), shapeID(2))
	e.Record(shapeID(3), shapeID(1))
	var out event.Set
	e.EndStep(&out)
	if len(out.SensorBegins) != 3 {
		t.Fatalf("expected 3 begins, got %d", len(out.SensorBegins))
	}
	for i := 1; i < len(out.SensorBegins); i++ {
		a := out.SensorBegins[i-1].SensorShapeID
		b := out.SensorBegins[i].SensorShapeID
		if a.Index1 > b.Index1 {
			t.Errorf("expected sorted sensor order, got %d before %d", a.Index1, b.Index1)
		}
	}
}
