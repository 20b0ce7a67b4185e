package dynamics

import "phys2d/internal/collision"

// contactSet owns the broad phase and the world's contact list. New
// broad-phase pairs become contacts; contacts whose proxies stop
// overlapping are destroyed during refresh.
type contactSet struct {
	world      *World
	broadPhase *collision.BroadPhase
	list       *Contact
	count      int
}

func newContactSet(w *World) *contactSet {
	return &contactSet{
		world:      w,
		broadPhase: collision.NewBroadPhase(),
	}
}

// addPair is the broad-phase commit callback; user data are *Shape.
func (cs *contactSet) addPair(a, b interface{}) {
	shapeA := a.(*Shape)
	shapeB := b.(*Shape)
	bodyA := shapeA.body
	bodyB := shapeB.body

	if bodyA == bodyB {
		return
	}
	if bodyA.IsStatic() && bodyB.IsStatic() {
		return
	}

	// One contact per shape pair; scan the shorter body's edge list.
	for edge := bodyB.contactList; edge != nil; edge = edge.Next {
		if edge.Other != bodyA {
			continue
		}
		c := edge.Contact
		if (c.shapeA == shapeA && c.shapeB == shapeB) || (c.shapeA == shapeB && c.shapeB == shapeA) {
			return
		}
	}

	if bodyB.isConnectedNoCollide(bodyA) {
		return
	}
	if !cs.world.filter.ShouldCollide(shapeA, shapeB) {
		return
	}

	c := newContact(shapeA, shapeB)
	c.prev = nil
	c.next = cs.list
	if cs.list != nil {
		cs.list.prev = c
	}
	cs.list = c
	cs.count++

	// Wire the graph edges into both bodies.
	ba, bb := c.shapeA.body, c.shapeB.body
	c.edgeA.Prev = nil
	c.edgeA.Next = ba.contactList
	if ba.contactList != nil {
		ba.contactList.Prev = &c.edgeA
	}
	ba.contactList = &c.edgeA

	c.edgeB.Prev = nil
	c.edgeB.Next = bb.contactList
	if bb.contactList != nil {
		bb.contactList.Prev = &c.edgeB
	}
	bb.contactList = &c.edgeB
}

// destroy unlinks a contact from the world list and both bodies. A touching
// contact reports End before it goes.
func (cs *contactSet) destroy(c *Contact) {
	if c.IsTouching() {
		if l := cs.world.contactListener; l != nil {
			l.End(c)
		}
		c.shapeA.body.WakeUp()
		c.shapeB.body.WakeUp()
	}

	if c.prev != nil {
		c.prev.next = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	}
	if cs.list == c {
		cs.list = c.next
	}

	ba, bb := c.shapeA.body, c.shapeB.body
	if c.edgeA.Prev != nil {
		c.edgeA.Prev.Next = c.edgeA.Next
	}
	if c.edgeA.Next != nil {
		c.edgeA.Next.Prev = c.edgeA.Prev
	}
	if ba.contactList == &c.edgeA {
		ba.contactList = c.edgeA.Next
	}
	if c.edgeB.Prev != nil {
		c.edgeB.Prev.Next = c.edgeB.Next
	}
	if c.edgeB.Next != nil {
		c.edgeB.Next.Prev = c.edgeB.Prev
	}
	if bb.contactList == &c.edgeB {
		bb.contactList = c.edgeB.Next
	}

	cs.count--
}

// refresh updates every contact's manifold for the new transforms, prunes
// pairs whose proxies no longer overlap, and re-marks the slow flag from the
// bodies' relative speed over the pending step.
func (cs *contactSet) refresh(step TimeStep) {
	c := cs.list
	for c != nil {
		next := c.next
		bodyA := c.shapeA.body
		bodyB := c.shapeB.body

		if c.flags&contactFlagFilter != 0 {
			c.flags &^= contactFlagFilter
			if bodyB.isConnectedNoCollide(bodyA) || !cs.world.filter.ShouldCollide(c.shapeA, c.shapeB) {
				cs.destroy(c)
				c = next
				continue
			}
		}

		if bodyA.IsSleeping() && bodyB.IsSleeping() {
			c = next
			continue
		}

		if c.shapeA.proxyID == nullProxy || c.shapeB.proxyID == nullProxy ||
			!cs.broadPhase.TestOverlap(c.shapeA.proxyID, c.shapeB.proxyID) {
			cs.destroy(c)
			c = next
			continue
		}

		c.update(cs.world.contactListener)

		// A pair whose relative travel this step is within the slop cannot
		// tunnel, so the impact scan may ignore it.
		relSpeed := bodyA.linearVelocity.Sub(bodyB.linearVelocity).Length()
		if relSpeed*step.DT < 2.0*linearSlop {
			c.flags |= contactFlagSlow
		} else {
			c.flags &^= contactFlagSlow
		}

		c = next
	}
}

// destroyBodyContacts drops every contact attached to a body.
func (cs *contactSet) destroyBodyContacts(b *Body) {
	edge := b.contactList
	for edge != nil {
		c := edge.Contact
		edge = edge.Next
		cs.destroy(c)
	}
}

// commit flushes buffered proxy moves; new overlapping pairs become
// contacts.
func (cs *contactSet) commit() {
	cs.broadPhase.Commit(cs.addPair)
}
