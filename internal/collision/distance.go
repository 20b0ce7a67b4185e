package collision

import "phys2d/internal/vmath"

// DistanceProxy is the vertex cloud plus skin radius of a shape, the form
// the distance and time-of-impact queries consume.
type DistanceProxy struct {
	Vertices []vmath.Vec2
	Radius   float64
}

// MakeProxy extracts a distance proxy from a shape.
func MakeProxy(s Shape) DistanceProxy {
	n := s.VertexCount()
	p := DistanceProxy{
		Vertices: make([]vmath.Vec2, n),
		Radius:   s.Radius(),
	}
	for i := 0; i < n; i++ {
		p.Vertices[i] = s.Vertex(i)
	}
	return p
}

func (p *DistanceProxy) support(d vmath.Vec2) int {
	best := 0
	bestValue := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		if value := p.Vertices[i].Dot(d); value > bestValue {
			best = i
			bestValue = value
		}
	}
	return best
}

// DistanceInput configures a closest-point query between two posed proxies.
type DistanceInput struct {
	ProxyA, ProxyB         DistanceProxy
	TransformA, TransformB vmath.Transform
	UseRadii               bool
}

// DistanceOutput carries the witness points and their separation.
type DistanceOutput struct {
	PointA, PointB vmath.Vec2
	Distance       float64
	Iterations     int
}

type simplexVertex struct {
	wA, wB vmath.Vec2 // support points on A and B
	w      vmath.Vec2 // wB - wA
	a      float64    // barycentric weight
	iA, iB int
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

func (s *simplex) searchDirection() vmath.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e12 := s.v[1].w.Sub(s.v[0].w)
		sgn := e12.Cross(s.v[0].w.Neg())
		if sgn > 0 {
			return vmath.CrossSV(1.0, e12)
		}
		return e12.CrossScalar(1.0)
	}
	return vmath.Vec2{}
}

func (s *simplex) closestPoint() vmath.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return s.v[0].w.Scale(s.v[0].a).Add(s.v[1].w.Scale(s.v[1].a))
	}
	return vmath.Vec2{}
}

func (s *simplex) witnessPoints() (vmath.Vec2, vmath.Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA := s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a))
		pB := s.v[0].wB.Scale(s.v[0].a).Add(s.v[1].wB.Scale(s.v[1].a))
		return pA, pB
	default:
		p := s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a)).Add(s.v[2].wA.Scale(s.v[2].a))
		return p, p
	}
}

// solve2 finds the closest point to the origin on a segment.
func (s *simplex) solve2() {
	w1, w2 := s.v[0].w, s.v[1].w
	e12 := w2.Sub(w1)

	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	d12_1 := w2.Dot(e12)
	if d12_1 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}

	inv := 1.0 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 finds the closest point to the origin on a triangle.
func (s *simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := w2.Sub(w1)
	d12_1 := w2.Dot(e12)
	d12_2 := -w1.Dot(e12)

	e13 := w3.Sub(w1)
	d13_1 := w3.Dot(e13)
	d13_2 := -w1.Dot(e13)

	e23 := w3.Sub(w2)
	d23_1 := w3.Dot(e23)
	d23_2 := -w2.Dot(e23)

	n123 := e12.Cross(e13)
	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	if d12_2 <= 0 && d13_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}
	if d12_1 > 0 && d12_2 > 0 && d123_3 <= 0 {
		inv := 1.0 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
		return
	}
	if d13_1 > 0 && d13_2 > 0 && d123_2 <= 0 {
		inv := 1.0 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[2].a = d13_2 * inv
		s.v[1] = s.v[2]
		s.count = 2
		return
	}
	if d12_1 <= 0 && d23_2 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}
	if d13_1 <= 0 && d23_1 <= 0 {
		s.v[0] = s.v[2]
		s.v[0].a = 1
		s.count = 1
		return
	}
	if d23_1 > 0 && d23_2 > 0 && d123_1 <= 0 {
		inv := 1.0 / (d23_1 + d23_2)
		s.v[1].a = d23_1 * inv
		s.v[2].a = d23_2 * inv
		s.v[0] = s.v[2]
		s.count = 2
		return
	}

	inv := 1.0 / (d123_1 + d123_2 + d123_3)
	s.v[0].a = d123_1 * inv
	s.v[1].a = d123_2 * inv
	s.v[2].a = d123_3 * inv
	s.count = 3
}

// Distance computes the closest points between two convex shapes using GJK.
func Distance(input *DistanceInput) DistanceOutput {
	pA, pB := &input.ProxyA, &input.ProxyB
	xfA, xfB := input.TransformA, input.TransformB

	var s simplex
	s.count = 1
	s.v[0].iA = 0
	s.v[0].iB = 0
	s.v[0].wA = xfA.Apply(pA.Vertices[0])
	s.v[0].wB = xfB.Apply(pB.Vertices[0])
	s.v[0].w = s.v[0].wB.Sub(s.v[0].wA)
	s.v[0].a = 1

	const maxIterations = 20
	var out DistanceOutput
	var saveA, saveB [3]int

	for out.Iterations < maxIterations {
		saveCount := s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.v[i].iA
			saveB[i] = s.v[i].iB
		}

		switch s.count {
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}
		if s.count == 3 {
			// Origin inside the hull; overlapping.
			break
		}

		d := s.searchDirection()
		if d.LengthSquared() < vmath.Epsilon*vmath.Epsilon {
			break
		}

		vertex := &s.v[s.count]
		vertex.iA = pA.support(xfA.R.MulTV(d.Neg()))
		vertex.wA = xfA.Apply(pA.Vertices[vertex.iA])
		vertex.iB = pB.support(xfB.R.MulTV(d))
		vertex.wB = xfB.Apply(pB.Vertices[vertex.iB])
		vertex.w = vertex.wB.Sub(vertex.wA)
		out.Iterations++

		// A repeated support vertex means no progress.
		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.iA == saveA[i] && vertex.iB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}
		s.count++
	}

	out.PointA, out.PointB = s.witnessPoints()
	out.Distance = out.PointA.Sub(out.PointB).Length()

	if input.UseRadii {
		rA, rB := pA.Radius, pB.Radius
		if out.Distance > rA+rB && out.Distance > vmath.Epsilon {
			out.Distance -= rA + rB
			normal, _ := out.PointB.Sub(out.PointA).Normalize()
			out.PointA = out.PointA.Add(normal.Scale(rA))
			out.PointB = out.PointB.Sub(normal.Scale(rB))
		} else {
			p := out.PointA.Add(out.PointB).Scale(0.5)
			out.PointA = p
			out.PointB = p
			out.Distance = 0
		}
	}
	return out
}
