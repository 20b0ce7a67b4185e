package dynamics

import (
	"math"

	"phys2d/internal/vmath"
)

// MouseJointDef configures a soft constraint dragging a body point toward a
// moving world target. BodyA is a ground body; only BodyB is driven.
type MouseJointDef struct {
	BodyA, BodyB *Body
	Target       vmath.Vec2 // world point on BodyB to grab
	MaxForce     float64
	FrequencyHz  float64
	DampingRatio float64
	UserData     interface{}
}

// DefaultMouseJointDef returns a def with the usual dragging response.
func DefaultMouseJointDef(ground, body *Body, target vmath.Vec2) MouseJointDef {
	return MouseJointDef{
		BodyA:        ground,
		BodyB:        body,
		Target:       target,
		MaxForce:     1000.0 * body.mass,
		FrequencyHz:  5.0,
		DampingRatio: 0.7,
	}
}

func (def MouseJointDef) build() Joint {
	return &MouseJoint{
		jointBase:    makeJointBase(def.BodyA, def.BodyB, false, def.UserData),
		target:       def.Target,
		localAnchor:  def.BodyB.LocalPoint(def.Target),
		maxForce:     def.MaxForce,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

// MouseJoint drags a body point toward a target with a critically damped
// spring, clamped to a maximum force.
type MouseJoint struct {
	jointBase

	target       vmath.Vec2
	localAnchor  vmath.Vec2
	maxForce     float64
	frequencyHz  float64
	dampingRatio float64

	// Solver state.
	rB      vmath.Vec2
	mass    vmath.Mat22
	c       vmath.Vec2
	gamma   float64
	beta    float64
	impulse vmath.Vec2
	dt      float64
}

func (j *MouseJoint) BodyA() *Body           { return j.bodyA }
func (j *MouseJoint) BodyB() *Body           { return j.bodyB }
func (j *MouseJoint) CollideConnected() bool { return j.collideConnected }
func (j *MouseJoint) base() *jointBase       { return &j.jointBase }

func (j *MouseJoint) Anchor1() vmath.Vec2 { return j.target }
func (j *MouseJoint) Anchor2() vmath.Vec2 { return j.bodyB.WorldPoint(j.localAnchor) }

// SetTarget moves the drag target; wakes the body.
func (j *MouseJoint) SetTarget(target vmath.Vec2) {
	if j.bodyB.IsSleeping() {
		j.bodyB.WakeUp()
	}
	j.target = target
}

func (j *MouseJoint) Target() vmath.Vec2 { return j.target }

func (j *MouseJoint) initVelocityConstraints(step *TimeStep) {
	b := j.bodyB

	omega := 2.0 * math.Pi * j.frequencyHz
	damp := 2.0 * b.mass * j.dampingRatio * omega
	k := b.mass * omega * omega

	j.dt = step.DT
	j.gamma = step.DT * (damp + step.DT*k)
	if j.gamma != 0 {
		j.gamma = 1.0 / j.gamma
	}
	j.beta = step.DT * k * j.gamma

	j.rB = b.xf.R.MulV(j.localAnchor.Sub(b.sweep.LocalCenter))

	// K = invMass * I2 + invI * [rB]ᵀ[rB] + gamma * I2
	invM, invI := b.invMass, b.invI
	j.mass = vmath.Mat22{
		Col1: vmath.V(invM+invI*j.rB.Y*j.rB.Y+j.gamma, -invI*j.rB.X*j.rB.Y),
		Col2: vmath.V(-invI*j.rB.X*j.rB.Y, invM+invI*j.rB.X*j.rB.X+j.gamma),
	}

	j.c = b.sweep.C.Add(j.rB).Sub(j.target)

	if step.warmStarting {
		b.linearVelocity = b.linearVelocity.Add(j.impulse.Scale(invM))
		b.angularVelocity += invI * j.rB.Cross(j.impulse)
	} else {
		j.impulse = vmath.Vec2{}
	}
	b.angularVelocity *= 0.98
}

func (j *MouseJoint) solveVelocityConstraints(step *TimeStep) {
	b := j.bodyB

	cdot := b.linearVelocity.Add(vmath.CrossSV(b.angularVelocity, j.rB))
	rhs := cdot.Add(j.c.Scale(j.beta)).Add(j.impulse.Scale(j.gamma))
	impulse := j.mass.Solve(rhs.Neg())

	old := j.impulse
	j.impulse = j.impulse.Add(impulse)
	maxImpulse := j.dt * j.maxForce
	if j.impulse.LengthSquared() > maxImpulse*maxImpulse {
		j.impulse = j.impulse.Scale(maxImpulse / j.impulse.Length())
	}
	impulse = j.impulse.Sub(old)

	b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
	b.angularVelocity += b.invI * j.rB.Cross(impulse)
}

func (j *MouseJoint) solvePositionConstraints() bool { return true }
