package collision

import "phys2d/internal/vmath"

// ContactFeature names the vertex or face pair a contact point came from.
// Matching features across narrow-phase updates lets the solver carry
// accumulated impulses over, which is what makes warm starting work.
type ContactFeature struct {
	IndexA, IndexB byte
	TypeA, TypeB   byte
}

const (
	FeatureVertex byte = 0
	FeatureFace   byte = 1
)

// ContactID is the packed form of a ContactFeature used as a match key.
type ContactID uint32

func (f ContactFeature) ID() ContactID {
	return ContactID(uint32(f.IndexA) | uint32(f.IndexB)<<8 | uint32(f.TypeA)<<16 | uint32(f.TypeB)<<24)
}

// ManifoldPoint is one contact point. LocalPoint's frame depends on the
// manifold type. Impulses persist across updates for warm starting.
type ManifoldPoint struct {
	LocalPoint     vmath.Vec2
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactID
}

type ManifoldType uint8

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// Manifold describes touching geometry between two convex shapes in a
// transform-independent way:
//   - circles: LocalPoint is the center of shape A, each point's LocalPoint
//     the center of shape B
//   - faceA/faceB: LocalNormal and LocalPoint describe the reference face,
//     each point's LocalPoint is a clipped vertex of the other shape
type Manifold struct {
	Points      [MaxManifoldPoints]ManifoldPoint
	LocalNormal vmath.Vec2
	LocalPoint  vmath.Vec2
	Type        ManifoldType
	PointCount  int
}

// WorldManifold is a manifold evaluated at concrete body transforms.
type WorldManifold struct {
	Normal      vmath.Vec2
	Points      [MaxManifoldPoints]vmath.Vec2
	Separations [MaxManifoldPoints]float64
}

// Initialize evaluates m at the given transforms and skin radii.
func (wm *WorldManifold) Initialize(m *Manifold, xfA vmath.Transform, radiusA float64, xfB vmath.Transform, radiusB float64) {
	if m.PointCount == 0 {
		return
	}

	switch m.Type {
	case ManifoldCircles:
		wm.Normal = vmath.V(1, 0)
		pointA := xfA.Apply(m.LocalPoint)
		pointB := xfB.Apply(m.Points[0].LocalPoint)
		if d := pointB.Sub(pointA); d.LengthSquared() > vmath.Epsilon*vmath.Epsilon {
			wm.Normal, _ = d.Normalize()
		}
		cA := pointA.Add(wm.Normal.Scale(radiusA))
		cB := pointB.Sub(wm.Normal.Scale(radiusB))
		wm.Points[0] = cA.Add(cB).Scale(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = xfA.R.MulV(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)
		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfB.Apply(m.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Scale(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Scale(radiusB))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		normal := xfB.R.MulV(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)
		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfA.Apply(m.Points[i].LocalPoint)
			cB := clipPoint.Add(normal.Scale(radiusB - clipPoint.Sub(planePoint).Dot(normal)))
			cA := clipPoint.Sub(normal.Scale(radiusA))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(normal)
		}
		// Report the normal from A to B regardless of the reference face.
		wm.Normal = normal.Neg()
	}
}

// clipVertex is a vertex carried through segment clipping with its feature.
type clipVertex struct {
	v  vmath.Vec2
	id ContactFeature
}

// clipSegmentToLine clips two vertices against a half-plane and returns the
// number kept. vertexIndexA tags points generated on the clip plane.
func clipSegmentToLine(out *[2]clipVertex, in [2]clipVertex, normal vmath.Vec2, offset float64, vertexIndexA int) int {
	count := 0

	d0 := normal.Dot(in[0].v) - offset
	d1 := normal.Dot(in[1].v) - offset

	if d0 <= 0 {
		out[count] = in[0]
		count++
	}
	if d1 <= 0 {
		out[count] = in[1]
		count++
	}

	if d0*d1 < 0 {
		interp := d0 / (d0 - d1)
		out[count].v = in[0].v.Add(in[1].v.Sub(in[0].v).Scale(interp))
		out[count].id = ContactFeature{
			IndexA: byte(vertexIndexA),
			IndexB: in[0].id.IndexB,
			TypeA:  FeatureVertex,
			TypeB:  FeatureFace,
		}
		count++
	}

	return count
}
