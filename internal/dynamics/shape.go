package dynamics

import (
	"phys2d/internal/collision"
	"phys2d/internal/vmath"
)

// FilterData controls which shape pairs may collide.
type FilterData struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilterData collides with everything.
var DefaultFilterData = FilterData{CategoryBits: 0x0001, MaskBits: 0xFFFF}

// ShapeDef configures a shape attached to a body.
type ShapeDef struct {
	Geometry    collision.Shape
	Friction    float64
	Restitution float64
	Density     float64
	IsSensor    bool
	Filter      FilterData
	UserData    interface{}
}

// DefaultShapeDef returns a def with the common material values filled in.
func DefaultShapeDef(geometry collision.Shape) ShapeDef {
	return ShapeDef{
		Geometry: geometry,
		Friction: 0.2,
		Filter:   DefaultFilterData,
	}
}

const nullProxy = -1

// Shape is geometry attached to a body, with material properties and one
// broad-phase proxy. Shapes form a singly linked list on their body.
type Shape struct {
	geometry collision.Shape
	body     *Body
	next     *Shape
	proxyID  int

	Friction    float64
	Restitution float64
	Filter      FilterData
	UserData    interface{}

	density float64
	sensor  bool
}

func newShape(def *ShapeDef, body *Body) *Shape {
	return &Shape{
		geometry:    def.Geometry,
		body:        body,
		proxyID:     nullProxy,
		Friction:    def.Friction,
		Restitution: def.Restitution,
		Filter:      def.Filter,
		UserData:    def.UserData,
		density:     def.Density,
		sensor:      def.IsSensor,
	}
}

func (s *Shape) Geometry() collision.Shape { return s.geometry }
func (s *Shape) Body() *Body               { return s.body }
func (s *Shape) Next() *Shape              { return s.next }
func (s *Shape) IsSensor() bool            { return s.sensor }

// TestPoint reports whether a world point is inside the shape.
func (s *Shape) TestPoint(p vmath.Vec2) bool {
	return s.geometry.TestPoint(s.body.xf, p)
}

func (s *Shape) createProxy(bp *collision.BroadPhase, xf vmath.Transform) {
	s.proxyID = bp.CreateProxy(s.geometry.ComputeAABB(xf), s)
}

func (s *Shape) destroyProxy(bp *collision.BroadPhase) {
	if s.proxyID != nullProxy {
		bp.DestroyProxy(s.proxyID)
		s.proxyID = nullProxy
	}
}

// synchronize moves the proxy to cover the shape's swept volume between two
// transforms. It reports false when the shape has left the given bounds,
// which the world treats as a boundary violation.
func (s *Shape) synchronize(bp *collision.BroadPhase, bounds collision.AABB, xf1, xf2 vmath.Transform) bool {
	if s.proxyID == nullProxy {
		return true
	}
	aabb := s.geometry.ComputeAABB(xf1).Combine(s.geometry.ComputeAABB(xf2))
	if !collision.Overlap(bounds, aabb) {
		return false
	}
	bp.MoveProxy(s.proxyID, aabb, xf2.P.Sub(xf1.P))
	return true
}

// Refilter re-runs broad-phase pairing for this shape. Call it after
// changing the shape's filter data so existing contacts are re-checked and
// suppressed pairs can form again.
func (s *Shape) Refilter() {
	// Flag existing contacts for re-evaluation.
	for edge := s.body.contactList; edge != nil; edge = edge.Next {
		c := edge.Contact
		if c.shapeA == s || c.shapeB == s {
			c.flags |= contactFlagFilter
		}
	}
	if s.proxyID != nullProxy {
		s.body.world.contacts.broadPhase.TouchProxy(s.proxyID)
	}
}
