package broadphase

import (
	"testing"

	"github.com/gazed/solve2d/math/lin"
	"github.com/gazed/solve2d/shape"
)

func box(cx, cy, hx, hy float32) shape.AABB {
	return shape.AABB{
		Lo: lin.V2(cx-hx, cy-hy),
		Hi: lin.V2(cx+hx, cy+hy),
	}
}

func TestCreateAndQueryProxy(t *testing.T) {
	tree := NewTree()
	id := tree.CreateProxy(box(0, 0, 1, 1), 42)

	hits := 0
	tree.Query(box(0, 0, 0.5, 0.5), func(userData int32) bool {
		if userData != 42 {
			t.Errorf("unexpected userData %d", userData)
		}
		hits++
		return true
	})
	if hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}

	tree.DestroyProxy(id)
	hits = 0
	tree.Query(box(0, 0, 0.5, 0.5), func(int32) bool { hits++; return true })
	if hits != 0 {
		t.Errorf("expected 0 hits after destroy, got %d", hits)
	}
}

func TestQueryMissesDisjointAABB(t *testing.T) {
	tree := NewTree()
	tree.CreateProxy(box(0, 0, 1, 1), 1)
	tree.CreateProxy(box(100, 100, 1, 1), 2)

	hits := []int32{}
	tree.Query(box(0, 0, 2, 2), func(userData int32) bool {
		hits = append(hits, userData)
		return true
	})
	if len(hits) != 1 || hits[0] != 1 {
		t.Errorf("expected only proxy 1 to hit, got %v", hits)
	}
}

func TestEnlargeProxyFatBoundAbsorbsSmallMotion(t *testing.T) {
	tree := NewTree()
	id := tree.CreateProxy(box(0, 0, 1, 1), 7)
	fatBefore := tree.FatAABB(id)

	moved := box(0.01, 0, 1, 1)
	changed := tree.EnlargeProxy(id, moved)
	if changed {
		t.Errorf("small motion within margin should not change fat bound")
	}
	if tree.FatAABB(id) != fatBefore {
		t.Errorf("fat bound should be unchanged for a contained motion")
	}
}

func TestEnlargeProxyEscapeTriggersReinsert(t *testing.T) {
	tree := NewTree()
	id := tree.CreateProxy(box(0, 0, 1, 1), 7)

	far := box(50, 50, 1, 1)
	changed := tree.EnlargeProxy(id, far)
	if !changed {
		t.Errorf("expected fat bound to change for an escaping motion")
	}
	if !tree.FatAABB(id).Contains(far) {
		t.Errorf("new fat bound must contain the escaping AABB")
	}

	hits := 0
	tree.Query(box(50, 50, 2, 2), func(int32) bool { hits++; return true })
	if hits != 1 {
		t.Errorf("expected to find the moved proxy at its new location, got %d hits", hits)
	}
}

func TestBufferMoveDrainsOnce(t *testing.T) {
	tree := NewTree()
	id := tree.CreateProxy(box(0, 0, 1, 1), 1)
	tree.BufferMove(id)
	tree.BufferMove(id)

	moved := tree.MovedProxies()
	if len(moved) != 1 {
		t.Errorf("expected single dedup'd entry, got %d", len(moved))
	}
	if len(tree.MovedProxies()) != 0 {
		t.Errorf("MovedProxies should drain the buffer")
	}
}

func TestManyProxiesQueryConsistency(t *testing.T) {
	tree := NewTree()
	ids := make([]int32, 0, 50)
	for i := 0; i < 50; i++ {
		x := float32(i) * 3
		ids = append(ids, tree.CreateProxy(box(x, 0, 1, 1), int32(i)))
	}
	for i := 0; i < 50; i++ {
		x := float32(i) * 3
		found := false
		tree.Query(box(x, 0, 0.1, 0.1), func(userData int32) bool {
			if userData == int32(i) {
				found = true
			}
			return true
		})
		if !found {
			t.Errorf("proxy %d not found via query", i)
		}
	}
	for _, id := range ids {
		tree.DestroyProxy(id)
	}
	if tree.root != nullNode {
		t.Errorf("tree should be empty after destroying all proxies")
	}
}
