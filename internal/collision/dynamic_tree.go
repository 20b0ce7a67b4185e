package collision

import "phys2d/internal/vmath"

const nullNode = -1

type treeNode struct {
	aabb     AABB
	userData interface{}
	parent   int // free-list next when not allocated
	child1   int
	child2   int
	height   int // -1 when free, 0 for leaves
	moved    bool
}

func (n *treeNode) isLeaf() bool { return n.child1 == nullNode }

// DynamicTree is a balanced binary tree of fattened AABBs. Leaves are
// proxies; internal nodes enclose their children. Proxies can move within
// their fat box without disturbing the tree.
type DynamicTree struct {
	root     int
	nodes    []treeNode
	count    int
	freeList int
}

func NewDynamicTree() *DynamicTree {
	t := &DynamicTree{
		root:     nullNode,
		nodes:    make([]treeNode, 16),
		freeList: 0,
	}
	for i := range t.nodes {
		t.nodes[i].parent = i + 1
		t.nodes[i].height = -1
	}
	t.nodes[len(t.nodes)-1].parent = nullNode
	return t
}

func (t *DynamicTree) allocateNode() int {
	if t.freeList == nullNode {
		// Grow the pool.
		old := t.nodes
		t.nodes = make([]treeNode, 2*len(old))
		copy(t.nodes, old)
		for i := len(old); i < len(t.nodes); i++ {
			t.nodes[i].parent = i + 1
			t.nodes[i].height = -1
		}
		t.nodes[len(t.nodes)-1].parent = nullNode
		t.freeList = len(old)
	}

	id := t.freeList
	t.freeList = t.nodes[id].parent
	n := &t.nodes[id]
	n.parent = nullNode
	n.child1 = nullNode
	n.child2 = nullNode
	n.height = 0
	n.userData = nil
	n.moved = false
	t.count++
	return id
}

func (t *DynamicTree) freeNode(id int) {
	t.nodes[id].parent = t.freeList
	t.nodes[id].height = -1
	t.nodes[id].userData = nil
	t.freeList = id
	t.count--
}

// CreateProxy inserts a fattened copy of aabb and returns the proxy id.
func (t *DynamicTree) CreateProxy(aabb AABB, userData interface{}) int {
	id := t.allocateNode()
	r := vmath.V(aabbExtension, aabbExtension)
	t.nodes[id].aabb = AABB{aabb.Lower.Sub(r), aabb.Upper.Add(r)}
	t.nodes[id].userData = userData
	t.nodes[id].moved = true
	t.insertLeaf(id)
	return id
}

func (t *DynamicTree) DestroyProxy(id int) {
	t.removeLeaf(id)
	t.freeNode(id)
}

// MoveProxy updates a proxy with a new tight aabb and its recent
// displacement. Returns true when the proxy actually re-entered the tree,
// i.e. it escaped its fat box.
func (t *DynamicTree) MoveProxy(id int, aabb AABB, displacement vmath.Vec2) bool {
	r := vmath.V(aabbExtension, aabbExtension)
	fat := AABB{aabb.Lower.Sub(r), aabb.Upper.Add(r)}

	// Predict where the proxy is headed.
	d := displacement.Scale(aabbMultiplier)
	if d.X < 0 {
		fat.Lower.X += d.X
	} else {
		fat.Upper.X += d.X
	}
	if d.Y < 0 {
		fat.Lower.Y += d.Y
	} else {
		fat.Upper.Y += d.Y
	}

	node := &t.nodes[id]
	if node.aabb.Contains(aabb) {
		// Still inside the fat box. Shrink only if the fat box has become
		// much larger than the tight one.
		huge := AABB{
			Lower: fat.Lower.Sub(vmath.V(4*aabbExtension, 4*aabbExtension)),
			Upper: fat.Upper.Add(vmath.V(4*aabbExtension, 4*aabbExtension)),
		}
		if huge.Contains(node.aabb) {
			return false
		}
	}

	t.removeLeaf(id)
	t.nodes[id].aabb = fat
	t.insertLeaf(id)
	t.nodes[id].moved = true
	return true
}

func (t *DynamicTree) UserData(id int) interface{} { return t.nodes[id].userData }
func (t *DynamicTree) FatAABB(id int) AABB         { return t.nodes[id].aabb }

func (t *DynamicTree) wasMoved(id int) bool { return t.nodes[id].moved }
func (t *DynamicTree) clearMoved(id int)    { t.nodes[id].moved = false }

// Query invokes callback for every proxy whose fat box overlaps aabb. The
// callback returns false to stop early.
func (t *DynamicTree) Query(aabb AABB, callback func(id int) bool) {
	stack := make([]int, 0, 64)
	stack = append(stack, t.root)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		node := &t.nodes[id]
		if !Overlap(node.aabb, aabb) {
			continue
		}
		if node.isLeaf() {
			if !callback(id) {
				return
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

// Height returns the tree height, 0 for an empty tree.
func (t *DynamicTree) Height() int {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].height
}

func (t *DynamicTree) insertLeaf(leaf int) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	// Descend to the best sibling by surface-area heuristic.
	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combined := t.nodes[index].aabb.Combine(leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2.0 * combinedArea
		inheritance := 2.0 * (combinedArea - area)

		descendCost := func(child int) float64 {
			c := leafAABB.Combine(t.nodes[child].aabb)
			if t.nodes[child].isLeaf() {
				return c.Perimeter() + inheritance
			}
			oldArea := t.nodes[child].aabb.Perimeter()
			return c.Perimeter() - oldArea + inheritance
		}
		cost1 := descendCost(child1)
		cost2 := descendCost(child2)

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
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = leafAABB.Combine(t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes[newParent].child1 = sibling
	t.nodes[newParent].child2 = leaf
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	t.fixUpward(t.nodes[leaf].parent)
}

func (t *DynamicTree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling int
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
		t.fixUpward(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}

// fixUpward rebalances and refits boxes from index to the root.
func (t *DynamicTree) fixUpward(index int) {
	for index != nullNode {
		index = t.balance(index)
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		t.nodes[index].height = 1 + maxInt(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = t.nodes[child1].aabb.Combine(t.nodes[child2].aabb)
		index = t.nodes[index].parent
	}
}

// balance performs one rotation on a subtree if its children differ in
// height by more than one. Returns the new subtree root.
func (t *DynamicTree) balance(iA int) int {
	A := &t.nodes[iA]
	if A.isLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &t.nodes[iB]
	C := &t.nodes[iC]
	bal := C.height - B.height

	if bal > 1 {
		return t.rotate(iA, iC, iB)
	}
	if bal < -1 {
		return t.rotate(iA, iB, iC)
	}
	return iA
}

// rotate promotes child iUp of iA; iOther is the other child.
func (t *DynamicTree) rotate(iA, iUp, iOther int) int {
	A := &t.nodes[iA]
	Up := &t.nodes[iUp]

	iF := Up.child1
	iG := Up.child2
	F := &t.nodes[iF]
	G := &t.nodes[iG]

	Up.child1 = iA
	Up.parent = A.parent
	A.parent = iUp

	if Up.parent != nullNode {
		if t.nodes[Up.parent].child1 == iA {
			t.nodes[Up.parent].child1 = iUp
		} else {
			t.nodes[Up.parent].child2 = iUp
		}
	} else {
		t.root = iUp
	}

	// Hang the shorter grandchild back on A in the promoted child's slot.
	other := &t.nodes[iOther]
	if F.height > G.height {
		Up.child2 = iF
		t.replaceChild(iA, iUp, iG)
		G.parent = iA
		A.aabb = other.aabb.Combine(G.aabb)
		Up.aabb = A.aabb.Combine(F.aabb)
		A.height = 1 + maxInt(other.height, G.height)
		Up.height = 1 + maxInt(A.height, F.height)
	} else {
		Up.child2 = iG
		t.replaceChild(iA, iUp, iF)
		F.parent = iA
		A.aabb = other.aabb.Combine(F.aabb)
		Up.aabb = A.aabb.Combine(G.aabb)
		A.height = 1 + maxInt(other.height, F.height)
		Up.height = 1 + maxInt(A.height, G.height)
	}
	return iUp
}

func (t *DynamicTree) replaceChild(parent, oldChild, newChild int) {
	if t.nodes[parent].child1 == oldChild {
		t.nodes[parent].child1 = newChild
	} else {
		t.nodes[parent].child2 = newChild
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
