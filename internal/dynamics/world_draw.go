package dynamics

import (
	"phys2d/internal/collision"
	"phys2d/internal/vmath"
)

// drawDebugData walks the world and emits primitives to the registered
// debug drawer at the end of each step.
func (w *World) drawDebugData() {
	if w.debugDraw == nil {
		return
	}
	flags := w.debugDraw.Flags()

	if flags&DrawShapes != 0 {
		for b := w.bodyList; b != nil; b = b.next {
			var color Color
			switch {
			case b.IsStatic():
				color = Color{0.5, 0.9, 0.5}
			case b.IsFrozen():
				color = Color{0.5, 0.5, 0.5}
			case b.IsSleeping():
				color = Color{0.5, 0.5, 0.9}
			default:
				color = Color{0.9, 0.7, 0.7}
			}
			for s := b.shapeList; s != nil; s = s.next {
				w.drawShape(s, b.xf, color)
			}
		}
	}

	if flags&DrawJoints != 0 {
		for j := w.jointList; j != nil; j = j.base().next {
			w.debugDraw.DrawSegment(j.Anchor1(), j.Anchor2(), Color{0.5, 0.8, 0.8})
		}
	}

	if flags&DrawAABBs != 0 {
		bp := w.contacts.broadPhase
		color := Color{0.9, 0.3, 0.9}
		for b := w.bodyList; b != nil; b = b.next {
			for s := b.shapeList; s != nil; s = s.next {
				if s.proxyID == nullProxy {
					continue
				}
				aabb := bp.FatAABB(s.proxyID)
				w.debugDraw.DrawPolygon([]vmath.Vec2{
					aabb.Lower,
					{X: aabb.Upper.X, Y: aabb.Lower.Y},
					aabb.Upper,
					{X: aabb.Lower.X, Y: aabb.Upper.Y},
				}, color)
			}
		}
	}

	if flags&DrawCenterOfMass != 0 {
		for b := w.bodyList; b != nil; b = b.next {
			xf := b.xf
			xf.P = b.sweep.C
			w.debugDraw.DrawTransform(xf)
		}
	}
}

func (w *World) drawShape(s *Shape, xf vmath.Transform, color Color) {
	switch g := s.geometry.(type) {
	case *collision.Circle:
		center := xf.Apply(g.Position)
		w.debugDraw.DrawSolidCircle(center, g.R, xf.R.Col1, color)
	case *collision.Polygon:
		vertices := make([]vmath.Vec2, len(g.Vertices))
		for i, v := range g.Vertices {
			vertices[i] = xf.Apply(v)
		}
		w.debugDraw.DrawSolidPolygon(vertices, color)
	}
}
