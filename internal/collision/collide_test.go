package collision

import (
	"math"
	"testing"

	"phys2d/internal/vmath"
)

func TestCollideCircles(t *testing.T) {
	a := &Circle{R: 0.5}
	b := &Circle{R: 0.5}

	var m Manifold
	CollideCircles(&m, a, vmath.XF(vmath.V(0, 0), 0), b, vmath.XF(vmath.V(0.7, 0), 0))
	if m.PointCount != 1 {
		t.Fatalf("Expected 1 contact point, got %d", m.PointCount)
	}
	if m.Type != ManifoldCircles {
		t.Errorf("Expected circles manifold, got %v", m.Type)
	}

	var wm WorldManifold
	wm.Initialize(&m, vmath.XF(vmath.V(0, 0), 0), a.R, vmath.XF(vmath.V(0.7, 0), 0), b.R)
	if wm.Normal.X < 0.99 {
		t.Errorf("Expected normal pointing from A to B, got %v", wm.Normal)
	}
	if sep := wm.Separations[0]; math.Abs(sep-(-0.3)) > 1e-9 {
		t.Errorf("Expected separation -0.3, got %v", sep)
	}

	CollideCircles(&m, a, vmath.XF(vmath.V(0, 0), 0), b, vmath.XF(vmath.V(1.5, 0), 0))
	if m.PointCount != 0 {
		t.Errorf("Separated circles should produce no points, got %d", m.PointCount)
	}
}

func TestCollidePolygonAndCircle(t *testing.T) {
	box := NewBox(0.5, 0.5)
	circle := &Circle{R: 0.3}

	var m Manifold
	CollidePolygonAndCircle(&m, box, vmath.XF(vmath.V(0, 0), 0), circle, vmath.XF(vmath.V(0.7, 0), 0))
	if m.PointCount != 1 {
		t.Fatalf("Expected 1 contact point, got %d", m.PointCount)
	}

	var wm WorldManifold
	wm.Initialize(&m, vmath.XF(vmath.V(0, 0), 0), box.Radius(), vmath.XF(vmath.V(0.7, 0), 0), circle.R)
	if wm.Normal.X < 0.99 {
		t.Errorf("Expected +x normal, got %v", wm.Normal)
	}
	if wm.Separations[0] >= 0 {
		t.Errorf("Expected penetration, got separation %v", wm.Separations[0])
	}

	// Circle center inside the polygon.
	CollidePolygonAndCircle(&m, box, vmath.XF(vmath.V(0, 0), 0), circle, vmath.XF(vmath.V(0.3, 0), 0))
	if m.PointCount != 1 {
		t.Errorf("Expected contact with center inside, got %d points", m.PointCount)
	}

	CollidePolygonAndCircle(&m, box, vmath.XF(vmath.V(0, 0), 0), circle, vmath.XF(vmath.V(2, 0), 0))
	if m.PointCount != 0 {
		t.Errorf("Separated pair should produce no points, got %d", m.PointCount)
	}
}

func TestCollidePolygons(t *testing.T) {
	a := NewBox(0.5, 0.5)
	b := NewBox(0.5, 0.5)

	var m Manifold
	CollidePolygons(&m, a, vmath.XF(vmath.V(0, 0), 0), b, vmath.XF(vmath.V(0.9, 0), 0))
	if m.PointCount != 2 {
		t.Fatalf("Expected 2 contact points for overlapping edges, got %d", m.PointCount)
	}

	var wm WorldManifold
	wm.Initialize(&m, vmath.XF(vmath.V(0, 0), 0), a.Radius(), vmath.XF(vmath.V(0.9, 0), 0), b.Radius())
	if wm.Normal.X < 0.99 {
		t.Errorf("Expected +x normal, got %v", wm.Normal)
	}
	for i := 0; i < m.PointCount; i++ {
		if wm.Separations[i] >= 0 {
			t.Errorf("Point %d: expected penetration, got separation %v", i, wm.Separations[i])
		}
	}

	// Contact IDs must be distinct so warm starting can match points.
	if m.Points[0].ID == m.Points[1].ID {
		t.Error("Expected distinct contact IDs")
	}

	CollidePolygons(&m, a, vmath.XF(vmath.V(0, 0), 0), b, vmath.XF(vmath.V(3, 0), 0))
	if m.PointCount != 0 {
		t.Errorf("Separated boxes should produce no points, got %d", m.PointCount)
	}
}

func TestCollidePolygonsRotated(t *testing.T) {
	a := NewBox(2, 0.5)
	b := NewBox(0.5, 0.5)

	// A tilted box resting a corner on a slab. At 30 degrees the lowest
	// corner sits 0.683 below the box center, so y=1.15 digs it in slightly.
	var m Manifold
	CollidePolygons(&m, a, vmath.XF(vmath.V(0, 0), 0), b, vmath.XF(vmath.V(0, 1.15), math.Pi/6))
	if m.PointCount == 0 {
		t.Fatal("Expected contact for corner resting on slab")
	}

	var wm WorldManifold
	wm.Initialize(&m, vmath.XF(vmath.V(0, 0), 0), a.Radius(), vmath.XF(vmath.V(0, 1.15), math.Pi/6), b.Radius())
	if wm.Normal.Y < 0.99 {
		t.Errorf("Expected +y normal off the slab's top face, got %v", wm.Normal)
	}
}

func TestDistance(t *testing.T) {
	a := MakeProxy(NewBox(0.5, 0.5))
	b := MakeProxy(NewBox(0.5, 0.5))

	input := DistanceInput{
		ProxyA:     a,
		ProxyB:     b,
		TransformA: vmath.XF(vmath.V(0, 0), 0),
		TransformB: vmath.XF(vmath.V(2, 0), 0),
	}
	out := Distance(&input)
	if math.Abs(out.Distance-1.0) > 1e-6 {
		t.Errorf("Expected hull distance 1.0, got %v", out.Distance)
	}
	if math.Abs(out.PointA.X-0.5) > 1e-6 || math.Abs(out.PointB.X-1.5) > 1e-6 {
		t.Errorf("Unexpected witness points %v %v", out.PointA, out.PointB)
	}

	// Overlapping hulls report zero once radii are applied.
	input.TransformB = vmath.XF(vmath.V(0.5, 0), 0)
	input.UseRadii = true
	out = Distance(&input)
	if out.Distance != 0 {
		t.Errorf("Expected zero distance for overlap, got %v", out.Distance)
	}
}

func TestDistanceCircleProxies(t *testing.T) {
	a := MakeProxy(&Circle{R: 0.5})
	b := MakeProxy(&Circle{R: 0.5})

	input := DistanceInput{
		ProxyA:     a,
		ProxyB:     b,
		TransformA: vmath.XF(vmath.V(0, 0), 0),
		TransformB: vmath.XF(vmath.V(3, 4), 0),
		UseRadii:   true,
	}
	out := Distance(&input)
	if math.Abs(out.Distance-4.0) > 1e-6 {
		t.Errorf("Expected surface distance 4.0, got %v", out.Distance)
	}
}

func TestPolygonMass(t *testing.T) {
	box := NewBox(0.5, 0.5)
	md := box.ComputeMass(1.0)
	if math.Abs(md.Mass-1.0) > 1e-9 {
		t.Errorf("Expected mass 1, got %v", md.Mass)
	}
	if math.Abs(md.Center.X) > 1e-9 || math.Abs(md.Center.Y) > 1e-9 {
		t.Errorf("Expected centroid at origin, got %v", md.Center)
	}
	// Box inertia about its centroid: m*(w^2+h^2)/12.
	if want := 1.0 * 2.0 / 12.0; math.Abs(md.I-want) > 1e-9 {
		t.Errorf("Expected inertia %v, got %v", want, md.I)
	}

	// Offsetting the box moves the centroid but not the inertia about it.
	offset := NewOffsetBox(0.5, 0.5, vmath.V(3, 0), 0)
	md2 := offset.ComputeMass(1.0)
	if math.Abs(md2.Center.X-3.0) > 1e-9 {
		t.Errorf("Expected centroid at x=3, got %v", md2.Center)
	}
	if math.Abs(md2.I-md.I) > 1e-9 {
		t.Errorf("Inertia about centroid should not change with offset: %v vs %v", md2.I, md.I)
	}
}

func TestCircleMass(t *testing.T) {
	c := &Circle{R: 2}
	md := c.ComputeMass(0.5)
	if want := 0.5 * math.Pi * 4; math.Abs(md.Mass-want) > 1e-9 {
		t.Errorf("Expected mass %v, got %v", want, md.Mass)
	}
	if want := md.Mass * 0.5 * 4; math.Abs(md.I-want) > 1e-9 {
		t.Errorf("Expected inertia %v, got %v", want, md.I)
	}
}

func TestShapeTestPoint(t *testing.T) {
	box := NewBox(1, 1)
	xf := vmath.XF(vmath.V(5, 0), math.Pi/4)
	if !box.TestPoint(xf, vmath.V(5, 1.2)) {
		t.Error("Rotated box should contain point above its center")
	}
	if box.TestPoint(xf, vmath.V(6.2, 1.2)) {
		t.Error("Rotated box should not contain its old corner region")
	}

	c := &Circle{Position: vmath.V(1, 0), R: 0.5}
	if !c.TestPoint(vmath.XF(vmath.V(0, 0), math.Pi/2), vmath.V(0, 1)) {
		t.Error("Rotated circle should contain its rotated center")
	}
}

func TestClipSegmentToLine(t *testing.T) {
	in := [2]clipVertex{
		{v: vmath.V(-1, 0)},
		{v: vmath.V(1, 0)},
	}

	var out [2]clipVertex
	n := clipSegmentToLine(&out, in, vmath.V(1, 0), 0.5, 0)
	if n != 2 {
		t.Fatalf("Expected 2 vertices after clipping, got %d", n)
	}
	for i := 0; i < n; i++ {
		if out[i].v.X > 0.5+1e-9 {
			t.Errorf("Vertex %d not clipped: %v", i, out[i].v)
		}
	}

	// Fully behind the plane: nothing survives.
	n = clipSegmentToLine(&out, in, vmath.V(1, 0), -2, 0)
	if n != 0 {
		t.Errorf("Expected 0 vertices, got %d", n)
	}
}
