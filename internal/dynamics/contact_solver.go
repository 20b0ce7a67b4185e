package dynamics

import (
	"math"

	"phys2d/internal/collision"
	"phys2d/internal/vmath"
)

type constraintPoint struct {
	rA, rB         vmath.Vec2
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

type contactConstraint struct {
	points       [collision.MaxManifoldPoints]constraintPoint
	normal       vmath.Vec2
	manifold     *collision.Manifold
	bodyA, bodyB *Body
	radiusA      float64
	radiusB      float64
	friction     float64
	pointCount   int
}

// contactSolver turns the touching contacts of one island into velocity and
// position constraints and iterates them with sequential impulses.
type contactSolver struct {
	constraints []contactConstraint
}

func newContactSolver(contacts []*Contact) *contactSolver {
	cs := &contactSolver{
		constraints: make([]contactConstraint, 0, len(contacts)),
	}

	for _, contact := range contacts {
		bodyA := contact.shapeA.body
		bodyB := contact.shapeB.body
		manifold := &contact.manifold

		wm := contact.WorldManifold()

		cc := contactConstraint{
			normal:     wm.Normal,
			manifold:   manifold,
			bodyA:      bodyA,
			bodyB:      bodyB,
			radiusA:    contact.shapeA.geometry.Radius(),
			radiusB:    contact.shapeB.geometry.Radius(),
			friction:   contact.friction,
			pointCount: manifold.PointCount,
		}
		tangent := cc.normal.CrossScalar(1.0)

		for i := 0; i < manifold.PointCount; i++ {
			mp := &manifold.Points[i]
			p := &cc.points[i]

			p.normalImpulse = mp.NormalImpulse
			p.tangentImpulse = mp.TangentImpulse
			p.rA = wm.Points[i].Sub(bodyA.sweep.C)
			p.rB = wm.Points[i].Sub(bodyB.sweep.C)

			rnA := p.rA.Cross(cc.normal)
			rnB := p.rB.Cross(cc.normal)
			kNormal := bodyA.invMass + bodyB.invMass + bodyA.invI*rnA*rnA + bodyB.invI*rnB*rnB
			p.normalMass = 1.0 / kNormal

			rtA := p.rA.Cross(tangent)
			rtB := p.rB.Cross(tangent)
			kTangent := bodyA.invMass + bodyB.invMass + bodyA.invI*rtA*rtA + bodyB.invI*rtB*rtB
			p.tangentMass = 1.0 / kTangent

			// Restitution only above the bounce threshold.
			p.velocityBias = 0
			vRel := cc.normal.Dot(relativeVelocity(bodyA, bodyB, p.rA, p.rB))
			if vRel < -velocityThreshold {
				p.velocityBias = -contact.restitution * vRel
			}
		}

		cs.constraints = append(cs.constraints, cc)
	}
	return cs
}

func relativeVelocity(bodyA, bodyB *Body, rA, rB vmath.Vec2) vmath.Vec2 {
	vB := bodyB.linearVelocity.Add(vmath.CrossSV(bodyB.angularVelocity, rB))
	vA := bodyA.linearVelocity.Add(vmath.CrossSV(bodyA.angularVelocity, rA))
	return vB.Sub(vA)
}

// initVelocityConstraints applies the accumulated impulses from the last
// step, or zeroes them when warm starting is off.
func (cs *contactSolver) initVelocityConstraints(warmStarting bool) {
	for i := range cs.constraints {
		cc := &cs.constraints[i]
		bodyA, bodyB := cc.bodyA, cc.bodyB
		tangent := cc.normal.CrossScalar(1.0)

		for k := 0; k < cc.pointCount; k++ {
			p := &cc.points[k]
			if !warmStarting {
				p.normalImpulse = 0
				p.tangentImpulse = 0
				continue
			}
			impulse := cc.normal.Scale(p.normalImpulse).Add(tangent.Scale(p.tangentImpulse))
			bodyA.linearVelocity = bodyA.linearVelocity.Sub(impulse.Scale(bodyA.invMass))
			bodyA.angularVelocity -= bodyA.invI * p.rA.Cross(impulse)
			bodyB.linearVelocity = bodyB.linearVelocity.Add(impulse.Scale(bodyB.invMass))
			bodyB.angularVelocity += bodyB.invI * p.rB.Cross(impulse)
		}
	}
}

func (cs *contactSolver) solveVelocityConstraints() {
	for i := range cs.constraints {
		cc := &cs.constraints[i]
		bodyA, bodyB := cc.bodyA, cc.bodyB
		tangent := cc.normal.CrossScalar(1.0)

		for k := 0; k < cc.pointCount; k++ {
			p := &cc.points[k]

			// Normal impulse with accumulated clamping.
			dv := relativeVelocity(bodyA, bodyB, p.rA, p.rB)
			vn := dv.Dot(cc.normal)
			lambda := -p.normalMass * (vn - p.velocityBias)
			newImpulse := math.Max(p.normalImpulse+lambda, 0)
			lambda = newImpulse - p.normalImpulse
			p.normalImpulse = newImpulse

			impulse := cc.normal.Scale(lambda)
			bodyA.linearVelocity = bodyA.linearVelocity.Sub(impulse.Scale(bodyA.invMass))
			bodyA.angularVelocity -= bodyA.invI * p.rA.Cross(impulse)
			bodyB.linearVelocity = bodyB.linearVelocity.Add(impulse.Scale(bodyB.invMass))
			bodyB.angularVelocity += bodyB.invI * p.rB.Cross(impulse)

			// Friction clamped by the normal impulse.
			dv = relativeVelocity(bodyA, bodyB, p.rA, p.rB)
			vt := dv.Dot(tangent)
			lambda = -p.tangentMass * vt
			maxFriction := cc.friction * p.normalImpulse
			newImpulse = vmath.Clamp(p.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - p.tangentImpulse
			p.tangentImpulse = newImpulse

			impulse = tangent.Scale(lambda)
			bodyA.linearVelocity = bodyA.linearVelocity.Sub(impulse.Scale(bodyA.invMass))
			bodyA.angularVelocity -= bodyA.invI * p.rA.Cross(impulse)
			bodyB.linearVelocity = bodyB.linearVelocity.Add(impulse.Scale(bodyB.invMass))
			bodyB.angularVelocity += bodyB.invI * p.rB.Cross(impulse)
		}
	}
}

// storeImpulses writes accumulated impulses back into the manifolds so the
// next step can warm start from them.
func (cs *contactSolver) storeImpulses() {
	for i := range cs.constraints {
		cc := &cs.constraints[i]
		for k := 0; k < cc.pointCount; k++ {
			cc.manifold.Points[k].NormalImpulse = cc.points[k].normalImpulse
			cc.manifold.Points[k].TangentImpulse = cc.points[k].tangentImpulse
		}
	}
}

// positionManifoldPoint re-evaluates one manifold point at the bodies'
// current transforms for the position solver.
func positionManifoldPoint(cc *contactConstraint, index int) (normal, point vmath.Vec2, separation float64) {
	m := cc.manifold
	xfA := cc.bodyA.xf
	xfB := cc.bodyB.xf

	switch m.Type {
	case collision.ManifoldCircles:
		pointA := xfA.Apply(m.LocalPoint)
		pointB := xfB.Apply(m.Points[0].LocalPoint)
		normal, _ = pointB.Sub(pointA).Normalize()
		point = pointA.Add(pointB).Scale(0.5)
		separation = pointB.Sub(pointA).Dot(normal) - cc.radiusA - cc.radiusB

	case collision.ManifoldFaceA:
		normal = xfA.R.MulV(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)
		clipPoint := xfB.Apply(m.Points[index].LocalPoint)
		separation = clipPoint.Sub(planePoint).Dot(normal) - cc.radiusA - cc.radiusB
		point = clipPoint

	case collision.ManifoldFaceB:
		normal = xfB.R.MulV(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)
		clipPoint := xfA.Apply(m.Points[index].LocalPoint)
		separation = clipPoint.Sub(planePoint).Dot(normal) - cc.radiusA - cc.radiusB
		point = clipPoint
		// Keep the normal pointing from A to B.
		normal = normal.Neg()
	}
	return normal, point, separation
}

// solvePositionConstraints pushes overlapping bodies apart along the contact
// normals and returns the most negative separation seen, so callers can stop
// iterating once overlap is within tolerance.
func (cs *contactSolver) solvePositionConstraints(baumgarteFactor float64) float64 {
	minSeparation := 0.0

	for i := range cs.constraints {
		cc := &cs.constraints[i]
		bodyA, bodyB := cc.bodyA, cc.bodyB

		for k := 0; k < cc.pointCount; k++ {
			normal, point, separation := positionManifoldPoint(cc, k)
			minSeparation = math.Min(minSeparation, separation)

			c := baumgarteFactor * vmath.Clamp(separation+linearSlop, -maxLinearCorrection, 0)

			rA := point.Sub(bodyA.sweep.C)
			rB := point.Sub(bodyB.sweep.C)
			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			kNormal := bodyA.invMass + bodyB.invMass + bodyA.invI*rnA*rnA + bodyB.invI*rnB*rnB

			impulse := 0.0
			if kNormal > 0 {
				impulse = -c / kNormal
			}
			p := normal.Scale(impulse)

			bodyA.sweep.C = bodyA.sweep.C.Sub(p.Scale(bodyA.invMass))
			bodyA.sweep.A -= bodyA.invI * rA.Cross(p)
			bodyA.synchronizeTransform()

			bodyB.sweep.C = bodyB.sweep.C.Add(p.Scale(bodyB.invMass))
			bodyB.sweep.A += bodyB.invI * rB.Cross(p)
			bodyB.synchronizeTransform()
		}
	}

	return minSeparation
}
