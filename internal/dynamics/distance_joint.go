package dynamics

import (
	"math"

	"phys2d/internal/vmath"
)

// DistanceJointDef configures a joint holding two anchor points at a fixed
// distance. A nonzero FrequencyHz softens the constraint into a damped
// spring.
type DistanceJointDef struct {
	BodyA, BodyB     *Body
	LocalAnchorA     vmath.Vec2
	LocalAnchorB     vmath.Vec2
	Length           float64
	FrequencyHz      float64
	DampingRatio     float64
	CollideConnected bool
	UserData         interface{}
}

// InitDistanceJointDef fills a def from world-space anchors; the rest length
// is their current distance.
func InitDistanceJointDef(bodyA, bodyB *Body, anchorA, anchorB vmath.Vec2) DistanceJointDef {
	return DistanceJointDef{
		BodyA:        bodyA,
		BodyB:        bodyB,
		LocalAnchorA: bodyA.LocalPoint(anchorA),
		LocalAnchorB: bodyB.LocalPoint(anchorB),
		Length:       anchorB.Sub(anchorA).Length(),
	}
}

func (def DistanceJointDef) build() Joint {
	return &DistanceJoint{
		jointBase:    makeJointBase(def.BodyA, def.BodyB, def.CollideConnected, def.UserData),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		length:       math.Max(def.Length, linearSlop),
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

// DistanceJoint keeps two local anchor points a fixed distance apart.
type DistanceJoint struct {
	jointBase

	localAnchorA vmath.Vec2
	localAnchorB vmath.Vec2
	length       float64
	frequencyHz  float64
	dampingRatio float64

	// Solver state.
	u       vmath.Vec2 // unit vector from anchor A to anchor B
	rA, rB  vmath.Vec2
	mass    float64
	impulse float64
	gamma   float64
	bias    float64
}

func (j *DistanceJoint) BodyA() *Body           { return j.bodyA }
func (j *DistanceJoint) BodyB() *Body           { return j.bodyB }
func (j *DistanceJoint) CollideConnected() bool { return j.collideConnected }
func (j *DistanceJoint) base() *jointBase       { return &j.jointBase }

func (j *DistanceJoint) Anchor1() vmath.Vec2 { return j.bodyA.WorldPoint(j.localAnchorA) }
func (j *DistanceJoint) Anchor2() vmath.Vec2 { return j.bodyB.WorldPoint(j.localAnchorB) }

func (j *DistanceJoint) Length() float64 { return j.length }

func (j *DistanceJoint) initVelocityConstraints(step *TimeStep) {
	bA, bB := j.bodyA, j.bodyB

	j.rA = bA.xf.R.MulV(j.localAnchorA.Sub(bA.sweep.LocalCenter))
	j.rB = bB.xf.R.MulV(j.localAnchorB.Sub(bB.sweep.LocalCenter))

	d := bB.sweep.C.Add(j.rB).Sub(bA.sweep.C.Add(j.rA))
	var curLength float64
	j.u, curLength = d.Normalize()

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := bA.invMass + bA.invI*crA*crA + bB.invMass + bB.invI*crB*crB

	if invMass != 0 {
		j.mass = 1.0 / invMass
	} else {
		j.mass = 0
	}

	j.gamma = 0
	j.bias = 0
	if j.frequencyHz > 0 {
		c := curLength - j.length
		omega := 2.0 * math.Pi * j.frequencyHz
		damp := 2.0 * j.mass * j.dampingRatio * omega
		k := j.mass * omega * omega
		j.gamma = step.DT * (damp + step.DT*k)
		if j.gamma != 0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * step.DT * k * j.gamma
		invMass += j.gamma
		if invMass != 0 {
			j.mass = 1.0 / invMass
		} else {
			j.mass = 0
		}
	}

	if step.warmStarting {
		p := j.u.Scale(j.impulse)
		bA.linearVelocity = bA.linearVelocity.Sub(p.Scale(bA.invMass))
		bA.angularVelocity -= bA.invI * j.rA.Cross(p)
		bB.linearVelocity = bB.linearVelocity.Add(p.Scale(bB.invMass))
		bB.angularVelocity += bB.invI * j.rB.Cross(p)
	} else {
		j.impulse = 0
	}
}

func (j *DistanceJoint) solveVelocityConstraints(step *TimeStep) {
	bA, bB := j.bodyA, j.bodyB

	vpA := bA.linearVelocity.Add(vmath.CrossSV(bA.angularVelocity, j.rA))
	vpB := bB.linearVelocity.Add(vmath.CrossSV(bB.angularVelocity, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	p := j.u.Scale(impulse)
	bA.linearVelocity = bA.linearVelocity.Sub(p.Scale(bA.invMass))
	bA.angularVelocity -= bA.invI * j.rA.Cross(p)
	bB.linearVelocity = bB.linearVelocity.Add(p.Scale(bB.invMass))
	bB.angularVelocity += bB.invI * j.rB.Cross(p)
}

func (j *DistanceJoint) solvePositionConstraints() bool {
	if j.frequencyHz > 0 {
		// Springs do not need position correction.
		return true
	}
	bA, bB := j.bodyA, j.bodyB

	rA := bA.xf.R.MulV(j.localAnchorA.Sub(bA.sweep.LocalCenter))
	rB := bB.xf.R.MulV(j.localAnchorB.Sub(bB.sweep.LocalCenter))
	d := bB.sweep.C.Add(rB).Sub(bA.sweep.C.Add(rA))

	u, length := d.Normalize()
	c := vmath.Clamp(length-j.length, -maxLinearCorrection, maxLinearCorrection)

	impulse := -j.mass * c
	p := u.Scale(impulse)

	bA.sweep.C = bA.sweep.C.Sub(p.Scale(bA.invMass))
	bA.sweep.A -= bA.invI * rA.Cross(p)
	bB.sweep.C = bB.sweep.C.Add(p.Scale(bB.invMass))
	bB.sweep.A += bB.invI * rB.Cross(p)

	bA.synchronizeTransform()
	bB.synchronizeTransform()

	return math.Abs(c) < linearSlop
}
