package dynamics

import "phys2d/internal/vmath"

// DestructionListener is told about shapes and joints that are destroyed
// implicitly, as a side effect of destroying their body. Explicit destroys
// do not report.
type DestructionListener interface {
	SayGoodbyeJoint(j Joint)
	SayGoodbyeShape(s *Shape)
}

// BoundaryListener is told when a body's shapes have left the world bounds.
// The body is frozen right after the callback returns; the listener may not
// mutate the world.
type BoundaryListener interface {
	Violation(b *Body)
}

// ContactListener receives contact lifecycle events during the step. The
// callbacks run while the world is locked, so they may inspect but not
// mutate it.
type ContactListener interface {
	// Begin fires when two shapes start touching, End when they stop.
	Begin(c *Contact)
	End(c *Contact)
	// Persist fires for contacts that keep touching across a refresh,
	// before the solver runs.
	Persist(c *Contact)
}

// ContactFilter decides whether two shapes should generate contacts at all.
type ContactFilter interface {
	ShouldCollide(a, b *Shape) bool
}

type defaultFilter struct{}

func (defaultFilter) ShouldCollide(a, b *Shape) bool {
	fa, fb := a.Filter, b.Filter
	if fa.GroupIndex == fb.GroupIndex && fa.GroupIndex != 0 {
		return fa.GroupIndex > 0
	}
	return fa.MaskBits&fb.CategoryBits != 0 && fa.CategoryBits&fb.MaskBits != 0
}

// Draw flags select what DrawDebugData renders.
const (
	DrawShapes uint32 = 1 << iota
	DrawJoints
	DrawAABBs
	DrawCenterOfMass
)

// DebugDraw is implemented by renderers; the world walks its own structures
// and emits primitives at the end of every step.
type DebugDraw interface {
	Flags() uint32
	DrawPolygon(vertices []vmath.Vec2, color Color)
	DrawSolidPolygon(vertices []vmath.Vec2, color Color)
	DrawCircle(center vmath.Vec2, radius float64, color Color)
	DrawSolidCircle(center vmath.Vec2, radius float64, axis vmath.Vec2, color Color)
	DrawSegment(p1, p2 vmath.Vec2, color Color)
	DrawTransform(xf vmath.Transform)
}

// Color is a normalized RGB triple for debug drawing.
type Color struct {
	R, G, B float64
}
