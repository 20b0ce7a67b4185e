package dynamics

import "phys2d/internal/vmath"

// JointEdge links a joint into a body's joint list, mirroring ContactEdge
// for the joint half of the constraint graph.
type JointEdge struct {
	Other      *Body
	Joint      Joint
	Prev, Next *JointEdge
}

// Joint is a constraint between two bodies. Implementations live in this
// package; the solver talks to them through the unexported methods and the
// debug drawer through the anchors, so new joint kinds need no special
// casing in the stepper.
type Joint interface {
	BodyA() *Body
	BodyB() *Body

	// Anchor1 and Anchor2 are the joint's attachment points in world
	// coordinates.
	Anchor1() vmath.Vec2
	Anchor2() vmath.Vec2

	// CollideConnected reports whether the two bodies may still generate
	// contacts with each other.
	CollideConnected() bool

	base() *jointBase
	initVelocityConstraints(step *TimeStep)
	solveVelocityConstraints(step *TimeStep)
	// solvePositionConstraints returns true when the position error is
	// within tolerance.
	solvePositionConstraints() bool
}

// JointDef is implemented by the per-kind definition structs consumed by
// World.CreateJoint.
type JointDef interface {
	build() Joint
}

type jointBase struct {
	prev, next       Joint
	edgeA, edgeB     JointEdge
	bodyA, bodyB     *Body
	island           bool
	collideConnected bool
	userData         interface{}
}

func makeJointBase(bodyA, bodyB *Body, collideConnected bool, userData interface{}) jointBase {
	return jointBase{
		bodyA:            bodyA,
		bodyB:            bodyB,
		collideConnected: collideConnected,
		userData:         userData,
	}
}

// NextJoint iterates the world joint list.
func NextJoint(j Joint) Joint { return j.base().next }

// JointUserData returns the user data stored on any joint.
func JointUserData(j Joint) interface{} { return j.base().userData }
