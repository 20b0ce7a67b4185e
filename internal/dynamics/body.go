package dynamics

import "phys2d/internal/vmath"

// Body flags.
const (
	bodyFlagIsland uint32 = 1 << iota
	bodyFlagSleep
	bodyFlagAllowSleep
	bodyFlagFrozen
	bodyFlagFixedRotation
)

// BodyDef configures a new body. A body starts static; it becomes dynamic
// once SetMassFromShapes finds nonzero density.
type BodyDef struct {
	Position        vmath.Vec2
	Angle           float64
	LinearVelocity  vmath.Vec2
	AngularVelocity float64
	LinearDamping   float64
	AngularDamping  float64
	AllowSleep      bool
	FixedRotation   bool
	UserData        interface{}
}

// DefaultBodyDef returns a def for a sleepable body at the origin.
func DefaultBodyDef() BodyDef {
	return BodyDef{AllowSleep: true}
}

// Body is a rigid body. Bodies are created and destroyed through the world
// and linked into its intrusive body list. A body carries its shape list and
// the contact and joint edges that make it a node of the constraint graph.
type Body struct {
	world      *World
	prev, next *Body

	flags uint32

	xf    vmath.Transform // body origin transform
	sweep vmath.Sweep     // center-of-mass motion over the current step

	linearVelocity  vmath.Vec2
	angularVelocity float64
	force           vmath.Vec2
	torque          float64

	mass, invMass float64
	inertia, invI float64

	linearDamping  float64
	angularDamping float64
	sleepTime      float64

	shapeList   *Shape
	shapeCount  int
	jointList   *JointEdge
	contactList *ContactEdge

	UserData interface{}
}

func newBody(def *BodyDef, world *World) *Body {
	b := &Body{
		world:           world,
		xf:              vmath.XF(def.Position, def.Angle),
		linearVelocity:  def.LinearVelocity,
		angularVelocity: def.AngularVelocity,
		linearDamping:   def.LinearDamping,
		angularDamping:  def.AngularDamping,
		UserData:        def.UserData,
	}
	if def.AllowSleep {
		b.flags |= bodyFlagAllowSleep
	}
	if def.FixedRotation {
		b.flags |= bodyFlagFixedRotation
	}
	b.sweep.C0 = b.xf.P
	b.sweep.C = b.xf.P
	b.sweep.A0 = def.Angle
	b.sweep.A = def.Angle
	return b
}

// CreateShape attaches a shape to the body. Forbidden while the world is
// stepping.
func (b *Body) CreateShape(def *ShapeDef) *Shape {
	assert(!b.world.locked, "CreateShape called during Step")
	s := newShape(def, b)
	s.next = b.shapeList
	b.shapeList = s
	b.shapeCount++
	if !b.IsFrozen() {
		s.createProxy(b.world.contacts.broadPhase, b.xf)
	}
	return s
}

// DestroyShape removes a shape and the contacts that reference it.
// Forbidden while the world is stepping.
func (b *Body) DestroyShape(s *Shape) {
	assert(!b.world.locked, "DestroyShape called during Step")
	assert(s.body == b, "shape belongs to another body")

	// Drop contacts involving this shape.
	edge := b.contactList
	for edge != nil {
		c := edge.Contact
		edge = edge.Next
		if c.shapeA == s || c.shapeB == s {
			b.world.contacts.destroy(c)
		}
	}

	s.destroyProxy(b.world.contacts.broadPhase)
	for link := &b.shapeList; *link != nil; link = &(*link).next {
		if *link == s {
			*link = s.next
			break
		}
	}
	s.body = nil
	s.next = nil
	b.shapeCount--
}

// SetMassFromShapes computes mass, center of mass and rotational inertia
// from the attached shapes' densities. Zero total mass leaves the body
// static.
func (b *Body) SetMassFromShapes() {
	b.mass, b.invMass = 0, 0
	b.inertia, b.invI = 0, 0

	var center vmath.Vec2
	for s := b.shapeList; s != nil; s = s.next {
		md := s.geometry.ComputeMass(s.density)
		b.mass += md.Mass
		center = center.Add(md.Center.Scale(md.Mass))
		b.inertia += md.I + md.Mass*md.Center.Dot(md.Center)
	}

	if b.mass > 0 {
		b.invMass = 1.0 / b.mass
		center = center.Scale(b.invMass)
		// Inertia about the center of mass.
		b.inertia -= b.mass * center.Dot(center)
		if b.inertia > 0 && b.flags&bodyFlagFixedRotation == 0 {
			b.invI = 1.0 / b.inertia
		} else {
			b.inertia, b.invI = 0, 0
		}
	}

	b.sweep.LocalCenter = center
	b.sweep.C = b.xf.Apply(center)
	b.sweep.C0 = b.sweep.C
}

// SetTransform teleports the body. Forbidden while the world is stepping.
func (b *Body) SetTransform(position vmath.Vec2, angle float64) {
	assert(!b.world.locked, "SetTransform called during Step")
	b.xf = vmath.XF(position, angle)
	b.sweep.C = b.xf.Apply(b.sweep.LocalCenter)
	b.sweep.C0 = b.sweep.C
	b.sweep.A = angle
	b.sweep.A0 = angle
	b.sweep.T0 = 0

	bp := b.world.contacts.broadPhase
	for s := b.shapeList; s != nil; s = s.next {
		if s.proxyID != nullProxy {
			bp.MoveProxy(s.proxyID, s.geometry.ComputeAABB(b.xf), vmath.Vec2{})
			bp.TouchProxy(s.proxyID)
		}
	}
}

func (b *Body) Position() vmath.Vec2       { return b.xf.P }
func (b *Body) Angle() float64             { return b.sweep.A }
func (b *Body) Transform() vmath.Transform { return b.xf }
func (b *Body) WorldCenter() vmath.Vec2    { return b.sweep.C }
func (b *Body) LocalCenter() vmath.Vec2    { return b.sweep.LocalCenter }
func (b *Body) Mass() float64              { return b.mass }
func (b *Body) Inertia() float64           { return b.inertia }
func (b *Body) LinearVelocity() vmath.Vec2 { return b.linearVelocity }
func (b *Body) AngularVelocity() float64   { return b.angularVelocity }
func (b *Body) ShapeList() *Shape          { return b.shapeList }
func (b *Body) JointList() *JointEdge      { return b.jointList }
func (b *Body) ContactList() *ContactEdge  { return b.contactList }
func (b *Body) Next() *Body                { return b.next }
func (b *Body) World() *World              { return b.world }

func (b *Body) SetLinearVelocity(v vmath.Vec2) { b.linearVelocity = v }
func (b *Body) SetAngularVelocity(w float64)   { b.angularVelocity = w }

// WorldPoint maps a body-local point to world coordinates.
func (b *Body) WorldPoint(local vmath.Vec2) vmath.Vec2 { return b.xf.Apply(local) }

// LocalPoint maps a world point to body coordinates.
func (b *Body) LocalPoint(world vmath.Vec2) vmath.Vec2 { return b.xf.ApplyT(world) }

// ApplyForce accumulates a force at a world point; wakes the body.
func (b *Body) ApplyForce(force, point vmath.Vec2) {
	if b.IsSleeping() {
		b.WakeUp()
	}
	b.force = b.force.Add(force)
	b.torque += point.Sub(b.sweep.C).Cross(force)
}

// ApplyTorque accumulates a torque; wakes the body.
func (b *Body) ApplyTorque(torque float64) {
	if b.IsSleeping() {
		b.WakeUp()
	}
	b.torque += torque
}

// ApplyImpulse changes velocity immediately; wakes the body.
func (b *Body) ApplyImpulse(impulse, point vmath.Vec2) {
	if b.IsSleeping() {
		b.WakeUp()
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
	b.angularVelocity += b.invI * point.Sub(b.sweep.C).Cross(impulse)
}

func (b *Body) IsStatic() bool   { return b.invMass == 0 }
func (b *Body) IsFrozen() bool   { return b.flags&bodyFlagFrozen != 0 }
func (b *Body) IsSleeping() bool { return b.flags&bodyFlagSleep != 0 }

// AllowSleeping toggles whether the island solver may put this body to
// sleep; turning it off wakes the body.
func (b *Body) AllowSleeping(allow bool) {
	if allow {
		b.flags |= bodyFlagAllowSleep
	} else {
		b.flags &^= bodyFlagAllowSleep
		b.WakeUp()
	}
}

// WakeUp clears the sleep state and timer.
func (b *Body) WakeUp() {
	b.flags &^= bodyFlagSleep
	b.sleepTime = 0
}

// PutToSleep stops the body and marks it sleeping.
func (b *Body) PutToSleep() {
	b.flags |= bodyFlagSleep
	b.sleepTime = 0
	b.linearVelocity = vmath.Vec2{}
	b.angularVelocity = 0
	b.force = vmath.Vec2{}
	b.torque = 0
}

// synchronizeTransform rebuilds the origin transform from the sweep's end
// pose.
func (b *Body) synchronizeTransform() {
	b.xf.R = vmath.RotationMat22(b.sweep.A)
	b.xf.P = b.sweep.C.Sub(b.xf.R.MulV(b.sweep.LocalCenter))
}

// synchronizeShapes moves the broad-phase proxies across the motion from
// the sweep's start pose to the current transform. Returns false when a
// shape has left the world bounds.
func (b *Body) synchronizeShapes() bool {
	xf1 := vmath.XF(vmath.Vec2{}, b.sweep.A0)
	xf1.P = b.sweep.C0.Sub(xf1.R.MulV(b.sweep.LocalCenter))

	inRange := true
	bp := b.world.contacts.broadPhase
	for s := b.shapeList; s != nil; s = s.next {
		if !s.synchronize(bp, b.world.bounds, xf1, b.xf) {
			inRange = false
		}
	}
	return inRange
}

// advance moves the body's sweep to interval time t and snaps its transform
// there, collapsing the start of the remaining motion.
func (b *Body) advance(t float64) {
	b.sweep.Advance(t)
	b.sweep.C = b.sweep.C0
	b.sweep.A = b.sweep.A0
	b.synchronizeTransform()
}

// freeze takes the body out of simulation after a boundary violation:
// velocities cleared, proxies removed, contacts dropped.
func (b *Body) freeze() {
	b.flags |= bodyFlagFrozen
	b.linearVelocity = vmath.Vec2{}
	b.angularVelocity = 0

	edge := b.contactList
	for edge != nil {
		c := edge.Contact
		edge = edge.Next
		b.world.contacts.destroy(c)
	}
	for s := b.shapeList; s != nil; s = s.next {
		s.destroyProxy(b.world.contacts.broadPhase)
	}
}
