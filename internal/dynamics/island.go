package dynamics

import (
	"math"

	"phys2d/internal/vmath"
)

// island is the reusable scratch buffer the stepper fills with one connected
// component of the constraint graph at a time. Solving an island never
// touches bodies outside it, which is what lets the rest of the world sleep
// undisturbed.
type island struct {
	bodies   []*Body
	contacts []*Contact
	joints   []Joint

	bodyCapacity    int
	contactCapacity int
	jointCapacity   int
}

func newIsland(bodyCapacity, contactCapacity, jointCapacity int) *island {
	return &island{
		bodies:          make([]*Body, 0, bodyCapacity),
		contacts:        make([]*Contact, 0, contactCapacity),
		joints:          make([]Joint, 0, jointCapacity),
		bodyCapacity:    bodyCapacity,
		contactCapacity: contactCapacity,
		jointCapacity:   jointCapacity,
	}
}

func (is *island) clear() {
	is.bodies = is.bodies[:0]
	is.contacts = is.contacts[:0]
	is.joints = is.joints[:0]
}

func (is *island) addBody(b *Body) {
	assert(len(is.bodies) < is.bodyCapacity, "island body overflow")
	is.bodies = append(is.bodies, b)
}

func (is *island) addContact(c *Contact) {
	assert(len(is.contacts) < is.contactCapacity, "island contact overflow")
	is.contacts = append(is.contacts, c)
}

func (is *island) addJoint(j Joint) {
	assert(len(is.joints) < is.jointCapacity, "island joint overflow")
	is.joints = append(is.joints, j)
}

// solve advances the island by one discrete step: integrate velocities,
// iterate the velocity constraints, integrate positions, then remove
// residual overlap. Returns the number of position iterations used.
func (is *island) solve(step TimeStep, gravity vmath.Vec2, correctPositions, allowSleep bool) int {
	h := step.DT

	for _, b := range is.bodies {
		if b.IsStatic() {
			continue
		}

		b.linearVelocity = b.linearVelocity.Add(gravity.Add(b.force.Scale(b.invMass)).Scale(h))
		b.angularVelocity += h * b.invI * b.torque

		// Damping as a stable first-order approximation of dv/dt = -c*v.
		b.linearVelocity = b.linearVelocity.Scale(1.0 / (1.0 + h*b.linearDamping))
		b.angularVelocity *= 1.0 / (1.0 + h*b.angularDamping)
	}

	solver := newContactSolver(is.contacts)
	solver.initVelocityConstraints(step.warmStarting)
	for _, j := range is.joints {
		j.initVelocityConstraints(&step)
	}

	for i := 0; i < step.Iterations; i++ {
		for _, j := range is.joints {
			j.solveVelocityConstraints(&step)
		}
		solver.solveVelocityConstraints()
	}
	solver.storeImpulses()

	for _, b := range is.bodies {
		if b.IsStatic() {
			continue
		}

		// Clamp runaway motion before integrating.
		translation := b.linearVelocity.Scale(h)
		if translation.LengthSquared() > maxTranslation*maxTranslation {
			b.linearVelocity = b.linearVelocity.Scale(maxTranslation / translation.Length())
		}
		rotation := h * b.angularVelocity
		if rotation*rotation > maxRotation*maxRotation {
			b.angularVelocity *= maxRotation / math.Abs(rotation)
		}

		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A
		b.sweep.C = b.sweep.C.Add(b.linearVelocity.Scale(h))
		b.sweep.A += h * b.angularVelocity

		b.synchronizeTransform()
	}

	positionIterations := 0
	positionSolved := false
	if correctPositions {
		for ; positionIterations < step.Iterations; positionIterations++ {
			minSeparation := solver.solvePositionConstraints(baumgarte)
			contactsOkay := minSeparation >= -3.0*linearSlop

			jointsOkay := true
			for _, j := range is.joints {
				ok := j.solvePositionConstraints()
				jointsOkay = jointsOkay && ok
			}

			if contactsOkay && jointsOkay {
				positionSolved = true
				break
			}
		}
	} else {
		positionSolved = true
	}

	if allowSleep {
		is.updateSleep(h, positionSolved)
	}

	return positionIterations
}

// solveImpact resolves one impact sub-step: no gravity, no warm starting,
// no sleep, and the stiffer position factor so the touching pair separates
// within the shortened interval.
func (is *island) solveImpact(subStep TimeStep) {
	solver := newContactSolver(is.contacts)
	solver.initVelocityConstraints(false)

	for i := 0; i < subStep.Iterations; i++ {
		solver.solveVelocityConstraints()
	}

	h := subStep.DT
	for _, b := range is.bodies {
		if b.IsStatic() {
			continue
		}

		translation := b.linearVelocity.Scale(h)
		if translation.LengthSquared() > maxTranslation*maxTranslation {
			b.linearVelocity = b.linearVelocity.Scale(maxTranslation / translation.Length())
		}
		rotation := h * b.angularVelocity
		if rotation*rotation > maxRotation*maxRotation {
			b.angularVelocity *= maxRotation / math.Abs(rotation)
		}

		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A
		b.sweep.C = b.sweep.C.Add(b.linearVelocity.Scale(h))
		b.sweep.A += h * b.angularVelocity

		b.synchronizeTransform()
	}

	for i := 0; i < subStep.Iterations; i++ {
		if solver.solvePositionConstraints(toiBaumgarte) >= -1.5*linearSlop {
			break
		}
	}

	solver.storeImpulses()
}

func (is *island) updateSleep(h float64, positionSolved bool) {
	minSleepTime := vmath.MaxFloat

	linTolSqr := linearSleepTolerance * linearSleepTolerance
	angTolSqr := angularSleepTolerance * angularSleepTolerance

	for _, b := range is.bodies {
		if b.IsStatic() {
			continue
		}
		if b.flags&bodyFlagAllowSleep == 0 ||
			b.angularVelocity*b.angularVelocity > angTolSqr ||
			b.linearVelocity.LengthSquared() > linTolSqr {
			b.sleepTime = 0
			minSleepTime = 0
		} else {
			b.sleepTime += h
			minSleepTime = math.Min(minSleepTime, b.sleepTime)
		}
	}

	if minSleepTime >= timeToSleep && positionSolved {
		for _, b := range is.bodies {
			b.PutToSleep()
		}
	}
}
