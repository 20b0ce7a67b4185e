package collision

import "phys2d/internal/vmath"

// CollideCircles computes the manifold between two circles.
func CollideCircles(m *Manifold, a *Circle, xfA vmath.Transform, b *Circle, xfB vmath.Transform) {
	m.PointCount = 0

	pA := xfA.Apply(a.Position)
	pB := xfB.Apply(b.Position)

	d := pB.Sub(pA)
	r := a.R + b.R
	if d.LengthSquared() > r*r {
		return
	}

	m.Type = ManifoldCircles
	m.LocalPoint = a.Position
	m.LocalNormal = vmath.Vec2{}
	m.PointCount = 1
	m.Points[0].LocalPoint = b.Position
	m.Points[0].ID = 0
}

// CollidePolygonAndCircle computes the manifold between a polygon (shape A)
// and a circle (shape B).
func CollidePolygonAndCircle(m *Manifold, a *Polygon, xfA vmath.Transform, b *Circle, xfB vmath.Transform) {
	m.PointCount = 0

	// Circle center in the polygon's frame.
	c := xfB.Apply(b.Position)
	cLocal := xfA.ApplyT(c)

	// Face of maximum separation.
	normalIndex := 0
	separation := -vmath.MaxFloat
	radius := PolygonRadius + b.R
	for i := range a.Vertices {
		s := a.Normals[i].Dot(cLocal.Sub(a.Vertices[i]))
		if s > radius {
			return
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := a.Vertices[normalIndex]
	v2 := a.Vertices[(normalIndex+1)%len(a.Vertices)]

	if separation < vmath.Epsilon {
		// Center inside the polygon.
		m.PointCount = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = a.Normals[normalIndex]
		m.LocalPoint = v1.Add(v2).Scale(0.5)
		m.Points[0].LocalPoint = b.Position
		m.Points[0].ID = 0
		return
	}

	// Voronoi regions of the reference edge.
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))
	switch {
	case u1 <= 0:
		if cLocal.Sub(v1).LengthSquared() > radius*radius {
			return
		}
		m.LocalNormal, _ = cLocal.Sub(v1).Normalize()
		m.LocalPoint = v1
	case u2 <= 0:
		if cLocal.Sub(v2).LengthSquared() > radius*radius {
			return
		}
		m.LocalNormal, _ = cLocal.Sub(v2).Normalize()
		m.LocalPoint = v2
	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		if cLocal.Sub(faceCenter).Dot(a.Normals[normalIndex]) > radius {
			return
		}
		m.LocalNormal = a.Normals[normalIndex]
		m.LocalPoint = faceCenter
	}

	m.PointCount = 1
	m.Type = ManifoldFaceA
	m.Points[0].LocalPoint = b.Position
	m.Points[0].ID = 0
}
