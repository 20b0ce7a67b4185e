package collision

import (
	"math"

	"phys2d/internal/vmath"
)

// MassData holds the mass properties computed for a shape.
type MassData struct {
	Mass   float64
	Center vmath.Vec2 // center of mass in shape-local coordinates
	I      float64    // rotational inertia about the center of mass
}

// Shape is convex geometry in body-local coordinates.
type Shape interface {
	// ComputeAABB returns the bounding box of the shape under the given
	// transform.
	ComputeAABB(xf vmath.Transform) AABB

	// ComputeMass returns mass properties for the given density.
	ComputeMass(density float64) MassData

	// TestPoint reports whether a world point is inside the shape.
	TestPoint(xf vmath.Transform, p vmath.Vec2) bool

	// Proxy data for distance and time-of-impact queries: the vertex cloud
	// and the skin radius around it.
	VertexCount() int
	Vertex(i int) vmath.Vec2
	Radius() float64
}

// Circle is a circle centered at a body-local position.
type Circle struct {
	Position vmath.Vec2
	R        float64
}

func (c *Circle) ComputeAABB(xf vmath.Transform) AABB {
	p := xf.Apply(c.Position)
	r := vmath.V(c.R, c.R)
	return AABB{p.Sub(r), p.Add(r)}
}

func (c *Circle) ComputeMass(density float64) MassData {
	mass := density * math.Pi * c.R * c.R
	return MassData{
		Mass:   mass,
		Center: c.Position,
		I:      mass * 0.5 * c.R * c.R,
	}
}

func (c *Circle) TestPoint(xf vmath.Transform, p vmath.Vec2) bool {
	center := xf.Apply(c.Position)
	d := p.Sub(center)
	return d.Dot(d) <= c.R*c.R
}

func (c *Circle) VertexCount() int        { return 1 }
func (c *Circle) Vertex(i int) vmath.Vec2 { return c.Position }
func (c *Circle) Radius() float64         { return c.R }

// Polygon is a convex polygon. Vertices are counter-clockwise; Normals[i] is
// the outward normal of the edge from Vertices[i] to Vertices[i+1].
type Polygon struct {
	Vertices []vmath.Vec2
	Normals  []vmath.Vec2
	Centroid vmath.Vec2
}

// NewBox builds an axis-aligned box of half-extents hx, hy about the body
// origin.
func NewBox(hx, hy float64) *Polygon {
	return NewOffsetBox(hx, hy, vmath.Vec2{}, 0)
}

// NewOffsetBox builds a box of half-extents hx, hy centered at a local
// point with a local rotation.
func NewOffsetBox(hx, hy float64, center vmath.Vec2, angle float64) *Polygon {
	p := &Polygon{
		Vertices: []vmath.Vec2{
			{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy},
		},
		Normals: []vmath.Vec2{
			{Y: -1}, {X: 1}, {Y: 1}, {X: -1},
		},
		Centroid: center,
	}
	xf := vmath.XF(center, angle)
	for i := range p.Vertices {
		p.Vertices[i] = xf.Apply(p.Vertices[i])
		p.Normals[i] = xf.R.MulV(p.Normals[i])
	}
	return p
}

// NewPolygon builds a convex polygon from counter-clockwise vertices.
func NewPolygon(vertices []vmath.Vec2) *Polygon {
	n := len(vertices)
	p := &Polygon{
		Vertices: append([]vmath.Vec2(nil), vertices...),
		Normals:  make([]vmath.Vec2, n),
	}
	for i := 0; i < n; i++ {
		edge := p.Vertices[(i+1)%n].Sub(p.Vertices[i])
		normal, _ := edge.CrossScalar(1.0).Normalize()
		p.Normals[i] = normal
	}
	p.Centroid = polygonCentroid(p.Vertices)
	return p
}

func polygonCentroid(vs []vmath.Vec2) vmath.Vec2 {
	var c vmath.Vec2
	area := 0.0
	for i := range vs {
		p1 := vs[i]
		p2 := vs[(i+1)%len(vs)]
		cross := p1.Cross(p2)
		area += 0.5 * cross
		c = c.Add(p1.Add(p2).Scale(cross / 6.0))
	}
	return c.Scale(1.0 / area)
}

func (p *Polygon) ComputeAABB(xf vmath.Transform) AABB {
	lower := xf.Apply(p.Vertices[0])
	upper := lower
	for _, v := range p.Vertices[1:] {
		w := xf.Apply(v)
		lower = vmath.MinV(lower, w)
		upper = vmath.MaxV(upper, w)
	}
	r := vmath.V(PolygonRadius, PolygonRadius)
	return AABB{lower.Sub(r), upper.Add(r)}
}

func (p *Polygon) ComputeMass(density float64) MassData {
	var center vmath.Vec2
	area := 0.0
	inertia := 0.0

	// Integrate over triangle fans anchored at the first vertex.
	ref := p.Vertices[0]
	for i := 1; i+1 < len(p.Vertices); i++ {
		e1 := p.Vertices[i].Sub(ref)
		e2 := p.Vertices[i+1].Sub(ref)
		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Scale(triArea / 3.0))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y
		inertia += (0.25 / 3.0) * d * (intx2 + inty2)
	}

	center = center.Scale(1.0 / area)
	md := MassData{
		Mass:   density * area,
		Center: center.Add(ref),
	}
	// inertia is about the reference vertex; shift to the centroid.
	md.I = density*inertia - md.Mass*center.Dot(center)
	return md
}

func (p *Polygon) TestPoint(xf vmath.Transform, pt vmath.Vec2) bool {
	local := xf.ApplyT(pt)
	for i := range p.Vertices {
		if p.Normals[i].Dot(local.Sub(p.Vertices[i])) > 0 {
			return false
		}
	}
	return true
}

func (p *Polygon) VertexCount() int        { return len(p.Vertices) }
func (p *Polygon) Vertex(i int) vmath.Vec2 { return p.Vertices[i] }
func (p *Polygon) Radius() float64         { return PolygonRadius }

// Support returns the index of the vertex furthest along direction d, which
// must be in shape-local coordinates.
func (p *Polygon) Support(d vmath.Vec2) int {
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
