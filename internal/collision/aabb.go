// Package collision holds the geometric side of the engine: shapes, bounding
// boxes, the narrow phase that produces contact manifolds, closest-distance
// queries, the conservative-advancement time-of-impact solver and the
// broad-phase spatial index.
package collision

import "phys2d/internal/vmath"

// Tuning constants in meters-kilograms-seconds units.
const (
	// LinearSlop is the collision and constraint tolerance. Numerically
	// significant, visually not.
	LinearSlop = 0.005

	// PolygonRadius is the skin around polygons. The continuous collision
	// solver needs this buffer to find roots before shapes overlap.
	PolygonRadius = 2.0 * LinearSlop

	// MaxManifoldPoints is the number of contact points between two convex
	// shapes.
	MaxManifoldPoints = 2

	// MaxPolygonVertices bounds convex polygon size.
	MaxPolygonVertices = 8

	// aabbExtension fattens proxies in the dynamic tree so small movements
	// do not trigger tree updates. aabbMultiplier scales the predicted
	// displacement added on top.
	aabbExtension  = 0.1
	aabbMultiplier = 2.0
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Lower, Upper vmath.Vec2
}

func (a AABB) Center() vmath.Vec2  { return a.Lower.Add(a.Upper).Scale(0.5) }
func (a AABB) Extents() vmath.Vec2 { return a.Upper.Sub(a.Lower).Scale(0.5) }

func (a AABB) Perimeter() float64 {
	w := a.Upper.X - a.Lower.X
	h := a.Upper.Y - a.Lower.Y
	return 2.0 * (w + h)
}

// Combine returns the union of two boxes.
func (a AABB) Combine(b AABB) AABB {
	return AABB{vmath.MinV(a.Lower, b.Lower), vmath.MaxV(a.Upper, b.Upper)}
}

// Contains reports whether b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Lower.X <= b.Lower.X && a.Lower.Y <= b.Lower.Y &&
		b.Upper.X <= a.Upper.X && b.Upper.Y <= a.Upper.Y
}

// Overlap reports whether two boxes intersect.
func Overlap(a, b AABB) bool {
	if b.Lower.X-a.Upper.X > 0 || b.Lower.Y-a.Upper.Y > 0 {
		return false
	}
	if a.Lower.X-b.Upper.X > 0 || a.Lower.Y-b.Upper.Y > 0 {
		return false
	}
	return true
}
