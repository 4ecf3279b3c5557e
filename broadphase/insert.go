package broadphase

import "github.com/gazed/solve2d/shape"

// insertLeaf adds leaf to the tree using the standard dynamic-tree
// "cheapest sibling" heuristic: descend from the root choosing whichever
// child produces the smaller perimeter increase, matching box2d's
// b2DynamicTree_InsertLeaf shape. No rotation/rebalancing pass is
// performed — this tree favors simplicity over guaranteed O(log n)
// query depth, acceptable for the bounded body counts the solver targets.
func (t *Tree) insertLeaf(leaf int32) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combined := shape.Union(t.nodes[index].aabb, leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2 * combinedArea
		inheritCost := 2 * (combinedArea - area)

		cost1 := costFor(t, child1, leafAABB) + inheritCost
		cost2 := costFor(t, child2, leafAABB) + inheritCost

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}
	sibling := index

	oldParent := t.nodes[sibling].parent
	newParent := t.allocNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = shape.Union(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
	} else {
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
		t.root = newParent
	}

	t.refitAncestors(t.nodes[leaf].parent)
}

func costFor(t *Tree, id int32, leafAABB shape.AABB) float32 {
	if t.nodes[id].isLeaf() {
		return shape.Union(leafAABB, t.nodes[id].aabb).Perimeter()
	}
	combined := shape.Union(leafAABB, t.nodes[id].aabb)
	return combined.Perimeter() - t.nodes[id].aabb.Perimeter()
}

func (t *Tree) refitAncestors(id int32) {
	for id != nullNode {
		id = t.balance(id)
		child1 := t.nodes[id].child1
		child2 := t.nodes[id].child2
		t.nodes[id].height = 1 + maxI32(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[id].aabb = shape.Union(t.nodes[child1].aabb, t.nodes[child2].aabb)
		id = t.nodes[id].parent
	}
}

// balance is a no-op placeholder: this tree does not perform AVL-style
// rotations, trading query-depth optimality for implementation
// simplicity (see insertLeaf's doc comment).
func (t *Tree) balance(id int32) int32 { return id }

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// removeLeaf detaches leaf from the tree, collapsing its former sibling
// into the grandparent slot.
func (t *Tree) removeLeaf(leaf int32) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling int32
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)
		t.refitAncestors(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}
