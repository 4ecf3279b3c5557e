// Package broadphase implements the dynamic AABB tree spec.md §6 names as
// an external collaborator with the contract `Query(tree, aabb, maskBits,
// callback, ctx)`, `EnlargeProxy`, `BufferMove`. No tree of this shape
// exists in the teacher; physics/broad.go's O(n²) bounding-sphere pair
// scan can't satisfy the CCD call sites in spec.md §4.5 which need
// "query the static tree with sweptBox" against an arbitrary AABB, so
// this is new code. The "accept if query box still fits inside an
// enlarged fat bound" idea carries over from broad.go's
// max_distance_for_collision margin.
package broadphase

import "github.com/gazed/solve2d/shape"

const nullNode = -1

type node struct {
	aabb       shape.AABB
	parent     int32
	child1     int32
	child2     int32
	height     int32 // -1 for free-list nodes, 0 for leaves
	userData   int32 // shapeId.Index1-style payload (opaque to the tree)
	moved      bool
}

func (n *node) isLeaf() bool { return n.child1 == nullNode }

// Tree is a dynamic bounding-volume tree over fattened AABBs, one
// instance per body type (static/kinematic/dynamic) per spec.md §6.
type Tree struct {
	nodes     []node
	root      int32
	freeList  int32
	moveStack []int32 // proxies enlarged/moved since the last BufferMove drain
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{root: nullNode, freeList: nullNode}
}

func (t *Tree) allocNode() int32 {
	if t.freeList != nullNode {
		id := t.freeList
		t.freeList = t.nodes[id].child1
		t.nodes[id] = node{parent: nullNode, child1: nullNode, child2: nullNode, height: 0}
		return id
	}
	t.nodes = append(t.nodes, node{parent: nullNode, child1: nullNode, child2: nullNode, height: 0})
	return int32(len(t.nodes) - 1)
}

func (t *Tree) freeNode(id int32) {
	t.nodes[id].child1 = t.freeList
	t.nodes[id].height = -1
	t.freeList = id
}

// aabbMargin fattens a proxy's stored AABB so small motions don't churn
// the tree, matching spec.md's fatAABB/aabbMargin concept.
const aabbMargin = 0.1

// CreateProxy inserts a new leaf for the given tight AABB and returns its
// proxy id (a tree-local node index, wrapped by the caller's shape
// handle).
func (t *Tree) CreateProxy(tightAABB shape.AABB, userData int32) int32 {
	id := t.allocNode()
	t.nodes[id].aabb = tightAABB.Inflate(aabbMargin)
	t.nodes[id].userData = userData
	t.nodes[id].height = 0
	t.insertLeaf(id)
	return id
}

// DestroyProxy removes a proxy from the tree.
func (t *Tree) DestroyProxy(id int32) {
	t.removeLeaf(id)
	t.freeNode(id)
}

// FatAABB returns the proxy's current (fattened) bound.
func (t *Tree) FatAABB(id int32) shape.AABB { return t.nodes[id].aabb }

// EnlargeProxy replaces proxy id's fat AABB with newAABB inflated by
// aabbMargin if newAABB escapes the current fat bound, reinserts the
// leaf, and records it for BufferMove. Returns
// true if the fat bound changed. This is the exact contract named in
// spec.md §4.4 step 6 ("if it escapes the fatAABB, inflate by
// aabbMargin, mark enlargedAABB").
func (t *Tree) EnlargeProxy(id int32, newAABB shape.AABB) bool {
	fat := t.nodes[id].aabb
	if fat.Contains(newAABB) {
		return false
	}
	enlarged := newAABB.Inflate(aabbMargin)
	t.nodes[id].aabb = enlarged
	t.removeLeaf(id)
	t.insertLeaf(id)
	t.BufferMove(id)
	return true
}

// BufferMove records that a proxy moved this step, for the serial
// broad-phase refit spec.md §5 requires ("broad-phase mutation is
// serial, performed by the main thread after the solver joins").
func (t *Tree) BufferMove(id int32) {
	if !t.nodes[id].moved {
		t.nodes[id].moved = true
		t.moveStack = append(t.moveStack, id)
	}
}

// MovedProxies returns and clears the set of proxies buffered via
// BufferMove since the last call.
func (t *Tree) MovedProxies() []int32 {
	out := t.moveStack
	for _, id := range out {
		t.nodes[id].moved = false
	}
	t.moveStack = nil
	return out
}

// Query visits every leaf whose fat AABB overlaps aabb, calling cb with
// the leaf's userData. cb returns false to stop the query early. This is
// the `Query(tree, aabb, maskBits, callback, ctx)` contract from spec.md
// §6 — maskBits filtering is the caller's responsibility inside cb,
// since the tree stores opaque userData, not shape filters.
func (t *Tree) Query(aabb shape.AABB, cb func(userData int32) bool) {
	if t.root == nullNode {
		return
	}
	stack := []int32{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if !n.aabb.Overlaps(aabb) {
			continue
		}
		if n.isLeaf() {
			if !cb(n.userData) {
				return
			}
			continue
		}
		stack = append(stack, n.child1, n.child2)
	}
}
