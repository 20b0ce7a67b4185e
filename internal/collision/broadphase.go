package collision

import (
	"sort"

	"phys2d/internal/vmath"
)

// BroadPhase wraps the dynamic tree with deferred pair reporting. Proxy
// moves are buffered; Commit re-queries the moved proxies and emits new
// candidate pairs exactly once each. Lost overlaps are not reported here;
// the contact set prunes those during its refresh pass via TestOverlap.
type BroadPhase struct {
	tree       *DynamicTree
	moveBuffer []int
	pairs      []proxyPair
}

type proxyPair struct {
	a, b int
}

func NewBroadPhase() *BroadPhase {
	return &BroadPhase{tree: NewDynamicTree()}
}

func (bp *BroadPhase) CreateProxy(aabb AABB, userData interface{}) int {
	id := bp.tree.CreateProxy(aabb, userData)
	bp.bufferMove(id)
	return id
}

func (bp *BroadPhase) DestroyProxy(id int) {
	bp.unbufferMove(id)
	bp.tree.DestroyProxy(id)
}

// MoveProxy records a proxy's new bounds; the pair update happens at Commit.
func (bp *BroadPhase) MoveProxy(id int, aabb AABB, displacement vmath.Vec2) {
	if bp.tree.MoveProxy(id, aabb, displacement) {
		bp.bufferMove(id)
	}
}

// TouchProxy forces a proxy into the next Commit's pair pass, used when
// filtering state changed without the proxy moving.
func (bp *BroadPhase) TouchProxy(id int) {
	bp.bufferMove(id)
}

func (bp *BroadPhase) UserData(id int) interface{} { return bp.tree.UserData(id) }
func (bp *BroadPhase) FatAABB(id int) AABB         { return bp.tree.FatAABB(id) }
func (bp *BroadPhase) Count() int                  { return bp.tree.count }

// TestOverlap reports whether two proxies' fat boxes overlap.
func (bp *BroadPhase) TestOverlap(a, b int) bool {
	return Overlap(bp.tree.FatAABB(a), bp.tree.FatAABB(b))
}

// Query invokes callback with the user data of every proxy overlapping aabb.
func (bp *BroadPhase) Query(aabb AABB, callback func(userData interface{}) bool) {
	bp.tree.Query(aabb, func(id int) bool {
		return callback(bp.tree.UserData(id))
	})
}

func (bp *BroadPhase) bufferMove(id int) {
	bp.moveBuffer = append(bp.moveBuffer, id)
}

func (bp *BroadPhase) unbufferMove(id int) {
	for i := range bp.moveBuffer {
		if bp.moveBuffer[i] == id {
			bp.moveBuffer[i] = nullNode
		}
	}
}

// Commit flushes buffered moves and reports each new candidate pair once via
// addPair, passing the two proxies' user data.
func (bp *BroadPhase) Commit(addPair func(a, b interface{})) {
	bp.pairs = bp.pairs[:0]

	for _, queryID := range bp.moveBuffer {
		if queryID == nullNode {
			continue
		}
		fat := bp.tree.FatAABB(queryID)
		bp.tree.Query(fat, func(id int) bool {
			if id == queryID {
				return true
			}
			// When both proxies moved, only the lower id reports the pair.
			if bp.tree.wasMoved(id) && id > queryID {
				return true
			}
			p := proxyPair{a: queryID, b: id}
			if p.a > p.b {
				p.a, p.b = p.b, p.a
			}
			bp.pairs = append(bp.pairs, p)
			return true
		})
	}

	for _, id := range bp.moveBuffer {
		if id != nullNode {
			bp.tree.clearMoved(id)
		}
	}
	bp.moveBuffer = bp.moveBuffer[:0]

	sort.Slice(bp.pairs, func(i, j int) bool {
		if bp.pairs[i].a != bp.pairs[j].a {
			return bp.pairs[i].a < bp.pairs[j].a
		}
		return bp.pairs[i].b < bp.pairs[j].b
	})
	for i := 0; i < len(bp.pairs); i++ {
		if i > 0 && bp.pairs[i] == bp.pairs[i-1] {
			continue
		}
		addPair(bp.tree.UserData(bp.pairs[i].a), bp.tree.UserData(bp.pairs[i].b))
	}
}
