// Package dynamics implements the rigid-body simulation: bodies, shapes
// attached to them, contacts and joints forming a constraint graph, and the
// world stepper that partitions the graph into islands, solves them with
// sequential impulses and runs the continuous-collision sub-step loop.
package dynamics

import (
	"fmt"
	"math"

	"phys2d/internal/collision"
)

// Solver and sleep tuning. Meters-kilograms-seconds units.
const (
	// velocityThreshold is the relative normal speed below which collisions
	// are treated as inelastic.
	velocityThreshold = 1.0

	// maxLinearCorrection caps the positional push applied per iteration to
	// prevent overshoot.
	maxLinearCorrection = 0.2

	// baumgarte scales how much overlap the position solver removes per
	// iteration; toiBaumgarte is the stiffer factor for sub-steps.
	baumgarte    = 0.2
	toiBaumgarte = 0.75

	// maxTranslation and maxRotation clamp per-step motion to keep the
	// numerics sane.
	maxTranslation = 2.0
	maxRotation    = 0.5 * math.Pi

	// maxTOIContacts bounds how many contacts a single impact island will
	// take on.
	maxTOIContacts = 32

	// A body must stay below the sleep tolerances for timeToSleep seconds
	// before the island puts it to sleep.
	timeToSleep           = 0.5
	linearSleepTolerance  = 0.01
	angularSleepTolerance = 2.0 / 180.0 * math.Pi
)

const linearSlop = collision.LinearSlop

// assert panics with a formatted message when an internal invariant is
// violated.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("dynamics: "+format, args...))
	}
}
