package dynamics

import (
	"phys2d/internal/collision"
	"phys2d/internal/vmath"
)

// WorldDef configures a world. The solver toggles are per world; there is
// no process-wide state.
type WorldDef struct {
	Gravity vmath.Vec2
	// Bounds limits where bodies may live. A body whose shapes leave the
	// bounds entirely is reported to the boundary listener and frozen.
	Bounds        collision.AABB
	AllowSleeping bool

	EnableTOI          bool
	WarmStarting       bool
	PositionCorrection bool
}

// DefaultWorldDef returns a def with downward gravity, generous bounds and
// every solver feature enabled.
func DefaultWorldDef() WorldDef {
	return WorldDef{
		Gravity: vmath.V(0, -10),
		Bounds: collision.AABB{
			Lower: vmath.V(-200, -200),
			Upper: vmath.V(200, 200),
		},
		AllowSleeping:      true,
		EnableTOI:          true,
		WarmStarting:       true,
		PositionCorrection: true,
	}
}

// World owns all bodies, joints and contacts and advances them through
// Step. A world is single-threaded; the locked flag rejects mutation from
// callbacks that run during a step.
type World struct {
	contacts *contactSet

	bodyList  *Body
	bodyCount int

	jointList  Joint
	jointCount int

	groundBody *Body

	gravity vmath.Vec2
	bounds  collision.AABB

	allowSleep         bool
	enableTOI          bool
	warmStarting       bool
	positionCorrection bool

	locked bool

	destructionListener DestructionListener
	boundaryListener    BoundaryListener
	contactListener     ContactListener
	filter              ContactFilter
	debugDraw           DebugDraw

	// positionIterationCount is the largest number of position iterations
	// any island used in the last step, a solver health diagnostic.
	positionIterationCount int
}

// NewWorld creates an empty world with a ground body for anchoring joints
// like the mouse joint.
func NewWorld(def WorldDef) *World {
	w := &World{
		gravity:            def.Gravity,
		bounds:             def.Bounds,
		allowSleep:         def.AllowSleeping,
		enableTOI:          def.EnableTOI,
		warmStarting:       def.WarmStarting,
		positionCorrection: def.PositionCorrection,
		filter:             defaultFilter{},
	}
	w.contacts = newContactSet(w)

	gd := DefaultBodyDef()
	w.groundBody = w.CreateBody(&gd)
	return w
}

func (w *World) SetDestructionListener(l DestructionListener) { w.destructionListener = l }
func (w *World) SetBoundaryListener(l BoundaryListener)       { w.boundaryListener = l }
func (w *World) SetContactListener(l ContactListener)         { w.contactListener = l }
func (w *World) SetDebugDraw(d DebugDraw)                     { w.debugDraw = d }

// SetContactFilter replaces the collision filter; nil restores the default.
func (w *World) SetContactFilter(f ContactFilter) {
	if f == nil {
		f = defaultFilter{}
	}
	w.filter = f
}

func (w *World) Gravity() vmath.Vec2     { return w.gravity }
func (w *World) SetGravity(g vmath.Vec2) { w.gravity = g }
func (w *World) Bounds() collision.AABB  { return w.bounds }
func (w *World) GroundBody() *Body       { return w.groundBody }
func (w *World) BodyList() *Body         { return w.bodyList }
func (w *World) JointList() Joint        { return w.jointList }
func (w *World) BodyCount() int          { return w.bodyCount }
func (w *World) JointCount() int         { return w.jointCount }
func (w *World) ContactCount() int       { return w.contacts.count }
func (w *World) IsLocked() bool          { return w.locked }

// PositionIterationCount reports the deepest position correction loop of
// the last step.
func (w *World) PositionIterationCount() int { return w.positionIterationCount }

// SetContinuousPhysics toggles the impact sub-stepping pass.
func (w *World) SetContinuousPhysics(enable bool) { w.enableTOI = enable }

// SetWarmStarting toggles impulse carry-over between steps.
func (w *World) SetWarmStarting(enable bool) { w.warmStarting = enable }

// SetPositionCorrection toggles the overlap removal pass.
func (w *World) SetPositionCorrection(enable bool) { w.positionCorrection = enable }

// CreateBody adds a body to the world. Forbidden while stepping.
func (w *World) CreateBody(def *BodyDef) *Body {
	assert(!w.locked, "CreateBody called during Step")

	b := newBody(def, w)
	b.prev = nil
	b.next = w.bodyList
	if w.bodyList != nil {
		w.bodyList.prev = b
	}
	w.bodyList = b
	w.bodyCount++
	return b
}

// DestroyBody removes a body, cascading through its joints and shapes. The
// destruction listener hears about each joint first, then each shape.
// Forbidden while stepping.
func (w *World) DestroyBody(b *Body) {
	assert(!w.locked, "DestroyBody called during Step")

	je := b.jointList
	for je != nil {
		next := je.Next
		if w.destructionListener != nil {
			w.destructionListener.SayGoodbyeJoint(je.Joint)
		}
		w.DestroyJoint(je.Joint)
		je = next
	}

	w.contacts.destroyBodyContacts(b)

	s := b.shapeList
	for s != nil {
		next := s.next
		if w.destructionListener != nil {
			w.destructionListener.SayGoodbyeShape(s)
		}
		s.destroyProxy(w.contacts.broadPhase)
		s.body = nil
		s.next = nil
		s = next
	}
	b.shapeList = nil
	b.shapeCount = 0

	if b.prev != nil {
		b.prev.next = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	if w.bodyList == b {
		w.bodyList = b.next
	}
	b.world = nil
	w.bodyCount--
}

// CreateJoint links a joint into the constraint graph. When the joint
// disables collision between its bodies, their existing contacts are
// flagged for re-filtering. Forbidden while stepping.
func (w *World) CreateJoint(def JointDef) Joint {
	assert(!w.locked, "CreateJoint called during Step")

	j := def.build()
	base := j.base()

	base.prev = nil
	base.next = w.jointList
	if w.jointList != nil {
		w.jointList.base().prev = j
	}
	w.jointList = j
	w.jointCount++

	base.edgeA.Joint = j
	base.edgeA.Other = base.bodyB
	base.edgeA.Prev = nil
	base.edgeA.Next = base.bodyA.jointList
	if base.bodyA.jointList != nil {
		base.bodyA.jointList.Prev = &base.edgeA
	}
	base.bodyA.jointList = &base.edgeA

	base.edgeB.Joint = j
	base.edgeB.Other = base.bodyA
	base.edgeB.Prev = nil
	base.edgeB.Next = base.bodyB.jointList
	if base.bodyB.jointList != nil {
		base.bodyB.jointList.Prev = &base.edgeB
	}
	base.bodyB.jointList = &base.edgeB

	if !base.collideConnected {
		flagPairContacts(base.bodyA, base.bodyB)
	}
	return j
}

// DestroyJoint removes a joint and wakes its bodies. Forbidden while
// stepping.
func (w *World) DestroyJoint(j Joint) {
	assert(!w.locked, "DestroyJoint called during Step")

	base := j.base()
	collideConnected := base.collideConnected

	if base.prev != nil {
		base.prev.base().next = base.next
	}
	if base.next != nil {
		base.next.base().prev = base.prev
	}
	if w.jointList == j {
		w.jointList = base.next
	}

	bodyA, bodyB := base.bodyA, base.bodyB
	bodyA.WakeUp()
	bodyB.WakeUp()

	if base.edgeA.Prev != nil {
		base.edgeA.Prev.Next = base.edgeA.Next
	}
	if base.edgeA.Next != nil {
		base.edgeA.Next.Prev = base.edgeA.Prev
	}
	if bodyA.jointList == &base.edgeA {
		bodyA.jointList = base.edgeA.Next
	}
	if base.edgeB.Prev != nil {
		base.edgeB.Prev.Next = base.edgeB.Next
	}
	if base.edgeB.Next != nil {
		base.edgeB.Next.Prev = base.edgeB.Prev
	}
	if bodyB.jointList == &base.edgeB {
		bodyB.jointList = base.edgeB.Next
	}

	w.jointCount--

	// Collision between the bodies may resume. Suppressed pairs never got a
	// contact, so re-pair through the broad phase; the smaller body keeps
	// this cheap.
	if !collideConnected {
		body := bodyA
		if bodyB.shapeCount < bodyA.shapeCount {
			body = bodyB
		}
		for s := body.shapeList; s != nil; s = s.next {
			s.Refilter()
		}
	}
}

// flagPairContacts marks every contact between two bodies for re-filtering
// on the next refresh.
func flagPairContacts(bodyA, bodyB *Body) {
	for edge := bodyB.contactList; edge != nil; edge = edge.Next {
		if edge.Other == bodyA {
			edge.Contact.flags |= contactFlagFilter
		}
	}
}

// isConnectedNoCollide reports whether a joint connects the bodies and asks
// for their contacts to be suppressed.
func (b *Body) isConnectedNoCollide(other *Body) bool {
	for je := b.jointList; je != nil; je = je.Next {
		if je.Other == other {
			if !je.Joint.CollideConnected() {
				return true
			}
		}
	}
	return false
}

// QueryAABB calls back for every shape whose broad-phase box overlaps the
// given box. Return false from the callback to stop.
func (w *World) QueryAABB(aabb collision.AABB, callback func(*Shape) bool) {
	w.contacts.broadPhase.Query(aabb, func(userData interface{}) bool {
		return callback(userData.(*Shape))
	})
}

// Step advances the world by dt seconds using the given solver iteration
// count. The order is fixed: refresh contact manifolds, solve the discrete
// islands, run the continuous-collision sub-steps, then emit debug draw.
// The world is locked for the duration; create and destroy calls from
// callbacks panic.
func (w *World) Step(dt float64, iterations int) {
	w.locked = true

	step := makeStep(dt, iterations)
	step.warmStarting = w.warmStarting

	// Update manifolds and begin/persist/end events for the new poses.
	w.contacts.refresh(step)

	if step.DT > 0 {
		w.solve(step)
	}
	if w.enableTOI && step.DT > 0 {
		w.solveTOI(step)
	}

	w.drawDebugData()
	w.locked = false
}

// solve runs the discrete part of the step: partition the awake constraint
// graph into islands and solve each one independently.
func (w *World) solve(step TimeStep) {
	w.positionIterationCount = 0

	is := newIsland(w.bodyCount, w.contacts.count, w.jointCount)

	for b := w.bodyList; b != nil; b = b.next {
		b.flags &^= bodyFlagIsland
	}
	for c := w.contacts.list; c != nil; c = c.next {
		c.flags &^= contactFlagIsland
	}
	for j := w.jointList; j != nil; j = j.base().next {
		j.base().island = false
	}

	stack := make([]*Body, 0, w.bodyCount)
	for seed := w.bodyList; seed != nil; seed = seed.next {
		if seed.flags&(bodyFlagIsland|bodyFlagSleep|bodyFlagFrozen) != 0 {
			continue
		}
		if seed.IsStatic() {
			continue
		}

		is.clear()
		stack = stack[:0]
		stack = append(stack, seed)
		seed.flags |= bodyFlagIsland

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			is.addBody(b)
			// Clear the sleep flag but keep the accumulated sleep timer;
			// the island solver decides below whether the island rests.
			b.flags &^= bodyFlagSleep

			// Static bodies bound the island; do not propagate past them.
			if b.IsStatic() {
				continue
			}

			for ce := b.contactList; ce != nil; ce = ce.Next {
				c := ce.Contact
				if c.flags&contactFlagIsland != 0 {
					continue
				}
				if !c.IsSolid() || !c.IsTouching() {
					continue
				}
				is.addContact(c)
				c.flags |= contactFlagIsland

				other := ce.Other
				if other.flags&bodyFlagIsland != 0 {
					continue
				}
				stack = append(stack, other)
				other.flags |= bodyFlagIsland
			}

			for je := b.jointList; je != nil; je = je.Next {
				if je.Joint.base().island {
					continue
				}
				is.addJoint(je.Joint)
				je.Joint.base().island = true

				other := je.Other
				if other.flags&bodyFlagIsland != 0 {
					continue
				}
				stack = append(stack, other)
				other.flags |= bodyFlagIsland
			}
		}

		iters := is.solve(step, w.gravity, w.positionCorrection, w.allowSleep)
		if iters > w.positionIterationCount {
			w.positionIterationCount = iters
		}

		// Static bodies may border several islands; let the next island
		// reach them again.
		for _, b := range is.bodies {
			if b.IsStatic() {
				b.flags &^= bodyFlagIsland
			}
		}
	}

	// Move proxies, detect escapes, then let the broad phase surface new
	// pairs.
	for b := w.bodyList; b != nil; b = b.next {
		if b.flags&(bodyFlagSleep|bodyFlagFrozen) != 0 || b.IsStatic() {
			continue
		}
		if !b.synchronizeShapes() {
			if w.boundaryListener != nil {
				w.boundaryListener.Violation(b)
			}
			b.freeze()
		}
	}
	w.contacts.commit()
}

// solveTOI runs the continuous-collision pass: repeatedly find the earliest
// impact left in the frame, advance the involved bodies to it, and solve a
// small island there with the remaining time.
func (w *World) solveTOI(step TimeStep) {
	is := newIsland(w.bodyCount, maxTOIContacts, 0)

	for b := w.bodyList; b != nil; b = b.next {
		b.flags &^= bodyFlagIsland
		b.sweep.T0 = 0
	}
	for c := w.contacts.list; c != nil; c = c.next {
		c.flags &^= contactFlagIsland | contactFlagTOI
	}

	for {
		// Find the earliest remaining impact.
		var minContact *Contact
		minTOI := 1.0

		for c := w.contacts.list; c != nil; c = c.next {
			if c.flags&(contactFlagSlow|contactFlagNonSolid) != 0 {
				continue
			}

			toi := 1.0
			if c.flags&contactFlagTOI != 0 {
				toi = c.toi
			} else {
				b1 := c.shapeA.body
				b2 := c.shapeB.body
				if (b1.IsStatic() || b1.IsSleeping()) && (b2.IsStatic() || b2.IsSleeping()) {
					continue
				}

				// Put both sweeps on the same interval base.
				t0 := b1.sweep.T0
				if b1.sweep.T0 < b2.sweep.T0 {
					t0 = b2.sweep.T0
					b1.sweep.Advance(t0)
				} else if b2.sweep.T0 < b1.sweep.T0 {
					t0 = b1.sweep.T0
					b2.sweep.Advance(t0)
				}
				assert(t0 < 1.0, "sweep interval exhausted")

				proxyA := collision.MakeProxy(c.shapeA.geometry)
				proxyB := collision.MakeProxy(c.shapeB.geometry)
				toi = collision.TimeOfImpact(&proxyA, b1.sweep, &proxyB, b2.sweep)
				assert(toi >= 0 && toi <= 1, "impact time out of range: %v", toi)

				// Map from the remaining interval back onto the frame.
				if toi > 0 && toi < 1 {
					toi = (1.0-toi)*t0 + toi
					if toi > 1 {
						toi = 1
					}
				}
				c.toi = toi
				c.flags |= contactFlagTOI
			}

			if vmath.Epsilon < toi && toi < minTOI {
				minContact = c
				minTOI = toi
			}
		}

		if minContact == nil || 1.0-100.0*vmath.Epsilon < minTOI {
			// No impact inside this frame.
			break
		}

		b1 := minContact.shapeA.body
		b2 := minContact.shapeB.body
		b1.advance(minTOI)
		b2.advance(minTOI)

		// The impact pose must produce real contact points; a grazing
		// result just retries with the cache invalidated.
		minContact.update(w.contactListener)
		minContact.flags &^= contactFlagTOI
		if minContact.manifold.PointCount == 0 {
			continue
		}

		seed := b1
		if seed.IsStatic() {
			seed = b2
		}

		is.clear()
		stack := make([]*Body, 0, w.bodyCount)
		stack = append(stack, seed)
		seed.flags |= bodyFlagIsland

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			is.addBody(b)
			b.WakeUp()

			if b.IsStatic() {
				continue
			}

			for ce := b.contactList; ce != nil; ce = ce.Next {
				if len(is.contacts) == maxTOIContacts {
					break
				}
				c := ce.Contact
				if c.flags&(contactFlagIsland|contactFlagNonSolid) != 0 {
					continue
				}
				if !c.IsTouching() {
					continue
				}
				is.addContact(c)
				c.flags |= contactFlagIsland

				other := ce.Other
				if other.flags&bodyFlagIsland != 0 {
					continue
				}
				if !other.IsStatic() {
					// Bring the neighbor to the impact time before it
					// joins the sub-step.
					other.advance(minTOI)
					other.WakeUp()
				}
				stack = append(stack, other)
				other.flags |= bodyFlagIsland
			}
		}

		subStep := makeStep((1.0-minTOI)*step.DT, step.Iterations)
		is.solveImpact(subStep)

		for _, b := range is.bodies {
			b.flags &^= bodyFlagIsland

			if b.flags&(bodyFlagSleep|bodyFlagFrozen) != 0 || b.IsStatic() {
				continue
			}
			if !b.synchronizeShapes() {
				if w.boundaryListener != nil {
					w.boundaryListener.Violation(b)
				}
				b.freeze()
				continue
			}
			// The sub-step moved the body, so cached impact times around
			// it are stale.
			for ce := b.contactList; ce != nil; ce = ce.Next {
				ce.Contact.flags &^= contactFlagTOI | contactFlagIsland
			}
		}

		w.contacts.commit()
	}
}
