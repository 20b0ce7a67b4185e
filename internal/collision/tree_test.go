package collision

import (
	"testing"

	"phys2d/internal/vmath"
)

func unitAABB(x, y float64) AABB {
	return AABB{Lower: vmath.V(x, y), Upper: vmath.V(x+1, y+1)}
}

func TestDynamicTreeQuery(t *testing.T) {
	tree := NewDynamicTree()

	a := tree.CreateProxy(unitAABB(0, 0), "a")
	tree.CreateProxy(unitAABB(10, 0), "b")
	tree.CreateProxy(unitAABB(20, 0), "c")

	var hits []string
	tree.Query(unitAABB(0.5, 0.5), func(id int) bool {
		hits = append(hits, tree.UserData(id).(string))
		return true
	})
	if len(hits) != 1 || hits[0] != "a" {
		t.Errorf("Expected query to find only a, got %v", hits)
	}

	tree.DestroyProxy(a)
	hits = nil
	tree.Query(unitAABB(0.5, 0.5), func(id int) bool {
		hits = append(hits, tree.UserData(id).(string))
		return true
	})
	if len(hits) != 0 {
		t.Errorf("Expected no hits after destroy, got %v", hits)
	}
}

func TestDynamicTreeMoveProxy(t *testing.T) {
	tree := NewDynamicTree()
	id := tree.CreateProxy(unitAABB(0, 0), nil)

	// A tiny move stays inside the fattened AABB.
	if tree.MoveProxy(id, unitAABB(0.01, 0), vmath.V(0.01, 0)) {
		t.Error("Small move should not reinsert the proxy")
	}

	if !tree.MoveProxy(id, unitAABB(50, 0), vmath.V(50, 0)) {
		t.Error("Large move should reinsert the proxy")
	}
	found := false
	tree.Query(unitAABB(50, 0), func(int) bool {
		found = true
		return false
	})
	if !found {
		t.Error("Moved proxy not found at its new position")
	}
}

func TestDynamicTreeStaysBalanced(t *testing.T) {
	tree := NewDynamicTree()

	// Sorted insertion is the worst case for a naive tree.
	const n = 256
	for i := 0; i < n; i++ {
		tree.CreateProxy(unitAABB(float64(2*i), 0), i)
	}

	// A balanced tree over 256 leaves stays well under this.
	if h := tree.Height(); h > 16 {
		t.Errorf("Tree height %d after %d sorted inserts", h, n)
	}

	count := 0
	tree.Query(AABB{Lower: vmath.V(-1, -1), Upper: vmath.V(1000, 2)}, func(int) bool {
		count++
		return true
	})
	if count != n {
		t.Errorf("Expected %d proxies, found %d", n, count)
	}
}

func TestBroadPhaseCommit(t *testing.T) {
	bp := NewBroadPhase()

	a := bp.CreateProxy(unitAABB(0, 0), "a")
	b := bp.CreateProxy(unitAABB(0.5, 0), "b")
	bp.CreateProxy(unitAABB(30, 0), "c")

	type pair struct{ a, b string }
	var pairs []pair
	bp.Commit(func(x, y interface{}) {
		pairs = append(pairs, pair{x.(string), y.(string)})
	})
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d: %v", len(pairs), pairs)
	}
	got := pairs[0]
	if !(got.a == "a" && got.b == "b" || got.a == "b" && got.b == "a") {
		t.Errorf("Expected pair a/b, got %v", got)
	}

	// Nothing moved, so no pairs are reported.
	pairs = nil
	bp.Commit(func(x, y interface{}) {
		pairs = append(pairs, pair{x.(string), y.(string)})
	})
	if len(pairs) != 0 {
		t.Errorf("Expected no pairs without movement, got %v", pairs)
	}

	// Moving far away produces no new overlap.
	bp.MoveProxy(b, unitAABB(60, 0), vmath.V(60, 0))
	pairs = nil
	bp.Commit(func(x, y interface{}) {
		pairs = append(pairs, pair{x.(string), y.(string)})
	})
	if len(pairs) != 0 {
		t.Errorf("Expected no pairs after separating, got %v", pairs)
	}

	if !bp.TestOverlap(a, a) {
		t.Error("A proxy must overlap itself")
	}
	if bp.TestOverlap(a, b) {
		t.Error("Separated proxies should not overlap")
	}
}

func TestBroadPhaseTouchProxy(t *testing.T) {
	bp := NewBroadPhase()
	a := bp.CreateProxy(unitAABB(0, 0), "a")
	bp.CreateProxy(unitAABB(0.5, 0), "b")
	bp.Commit(func(x, y interface{}) {})

	// TouchProxy re-buffers an unmoved proxy, as refiltering does.
	bp.TouchProxy(a)
	count := 0
	bp.Commit(func(x, y interface{}) { count++ })
	if count != 1 {
		t.Errorf("Expected touched proxy to report its pair again, got %d", count)
	}
}
