package collision

import "phys2d/internal/vmath"

// findMaxSeparation finds the edge of poly1 with the greatest separation
// against poly2's vertices.
func findMaxSeparation(poly1 *Polygon, xf1 vmath.Transform, poly2 *Polygon, xf2 vmath.Transform) (int, float64) {
	// Work in poly2's frame.
	xf := vmath.Transform{
		P: xf2.ApplyT(xf1.P),
		R: vmath.Mat22{Col1: xf2.R.MulTV(xf1.R.Col1), Col2: xf2.R.MulTV(xf1.R.Col2)},
	}

	bestIndex := 0
	maxSeparation := -vmath.MaxFloat
	for i := range poly1.Vertices {
		n := xf.R.MulV(poly1.Normals[i])
		v1 := xf.Apply(poly1.Vertices[i])

		si := vmath.MaxFloat
		for _, v2 := range poly2.Vertices {
			if s := n.Dot(v2.Sub(v1)); s < si {
				si = s
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}
	return bestIndex, maxSeparation
}

// findIncidentEdge returns the edge of poly2 most anti-parallel to the
// reference edge of poly1.
func findIncidentEdge(c *[2]clipVertex, poly1 *Polygon, xf1 vmath.Transform, edge1 int, poly2 *Polygon, xf2 vmath.Transform) {
	// Reference normal in poly2's frame.
	normal1 := xf2.R.MulTV(xf1.R.MulV(poly1.Normals[edge1]))

	index := 0
	minDot := vmath.MaxFloat
	for i := range poly2.Vertices {
		if dot := normal1.Dot(poly2.Normals[i]); dot < minDot {
			minDot = dot
			index = i
		}
	}

	i1 := index
	i2 := (index + 1) % len(poly2.Vertices)

	c[0] = clipVertex{
		v: xf2.Apply(poly2.Vertices[i1]),
		id: ContactFeature{
			IndexA: byte(edge1), IndexB: byte(i1),
			TypeA: FeatureFace, TypeB: FeatureVertex,
		},
	}
	c[1] = clipVertex{
		v: xf2.Apply(poly2.Vertices[i2]),
		id: ContactFeature{
			IndexA: byte(edge1), IndexB: byte(i2),
			TypeA: FeatureFace, TypeB: FeatureVertex,
		},
	}
}

// CollidePolygons computes the manifold between two convex polygons using
// the separating axes of both and clipping the incident edge against the
// reference face side planes.
func CollidePolygons(m *Manifold, a *Polygon, xfA vmath.Transform, b *Polygon, xfB vmath.Transform) {
	m.PointCount = 0
	totalRadius := PolygonRadius + PolygonRadius

	edgeA, separationA := findMaxSeparation(a, xfA, b, xfB)
	if separationA > totalRadius {
		return
	}
	edgeB, separationB := findMaxSeparation(b, xfB, a, xfA)
	if separationB > totalRadius {
		return
	}

	var (
		poly1, poly2 *Polygon
		xf1, xf2     vmath.Transform
		edge1        int
		flip         bool
	)
	const relativeTol = 0.98
	const absoluteTol = 0.001
	if separationB > relativeTol*separationA+absoluteTol {
		poly1, poly2 = b, a
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		m.Type = ManifoldFaceB
		flip = true
	} else {
		poly1, poly2 = a, b
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
		m.Type = ManifoldFaceA
	}

	var incidentEdge [2]clipVertex
	findIncidentEdge(&incidentEdge, poly1, xf1, edge1, poly2, xf2)

	iv1 := edge1
	iv2 := (edge1 + 1) % len(poly1.Vertices)
	v11 := poly1.Vertices[iv1]
	v12 := poly1.Vertices[iv2]

	localTangent, _ := v12.Sub(v11).Normalize()
	localNormal := localTangent.CrossScalar(1.0)
	planePoint := v11.Add(v12).Scale(0.5)

	tangent := xf1.R.MulV(localTangent)
	normal := tangent.CrossScalar(1.0)

	wv11 := xf1.Apply(v11)
	wv12 := xf1.Apply(v12)

	frontOffset := normal.Dot(wv11)
	sideOffset1 := -tangent.Dot(wv11) + totalRadius
	sideOffset2 := tangent.Dot(wv12) + totalRadius

	var clipPoints1, clipPoints2 [2]clipVertex
	if clipSegmentToLine(&clipPoints1, incidentEdge, tangent.Neg(), sideOffset1, iv1) < 2 {
		return
	}
	if clipSegmentToLine(&clipPoints2, clipPoints1, tangent, sideOffset2, iv2) < 2 {
		return
	}

	m.LocalNormal = localNormal
	m.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < MaxManifoldPoints; i++ {
		if normal.Dot(clipPoints2[i].v)-frontOffset > totalRadius {
			continue
		}
		cp := &m.Points[pointCount]
		cp.LocalPoint = xf2.ApplyT(clipPoints2[i].v)
		cp.NormalImpulse = 0
		cp.TangentImpulse = 0
		id := clipPoints2[i].id
		if flip {
			id.IndexA, id.IndexB = id.IndexB, id.IndexA
			id.TypeA, id.TypeB = id.TypeB, id.TypeA
		}
		cp.ID = id.ID()
		pointCount++
	}
	m.PointCount = pointCount
}
