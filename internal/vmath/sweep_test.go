package vmath

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSweepTransformInterpolates(t *testing.T) {
	s := Sweep{
		C0: V(0, 0),
		C:  V(10, 0),
		A0: 0,
		A:  1,
	}

	xf := s.Transform(0.5)
	if !almostEqual(xf.P.X, 5) || !almostEqual(xf.P.Y, 0) {
		t.Errorf("Expected midpoint (5,0), got (%v,%v)", xf.P.X, xf.P.Y)
	}

	xf = s.Transform(1)
	if !almostEqual(xf.P.X, 10) {
		t.Errorf("Expected end position 10, got %v", xf.P.X)
	}
}

func TestSweepTransformAccountsForLocalCenter(t *testing.T) {
	s := Sweep{
		LocalCenter: V(1, 0),
		C0:          V(0, 0),
		C:           V(0, 0),
		A0:          math.Pi / 2,
		A:           math.Pi / 2,
	}

	// The origin sits at center minus the rotated local center.
	xf := s.Transform(1)
	if !almostEqual(xf.P.X, 0) || !almostEqual(xf.P.Y, -1) {
		t.Errorf("Expected origin (0,-1), got (%v,%v)", xf.P.X, xf.P.Y)
	}
}

func TestSweepAdvanceRebasesInterval(t *testing.T) {
	s := Sweep{
		C0: V(0, 0),
		C:  V(10, 0),
		A0: 0,
		A:  2,
	}

	s.Advance(0.5)
	if !almostEqual(s.T0, 0.5) {
		t.Errorf("Expected T0 0.5, got %v", s.T0)
	}
	if !almostEqual(s.C0.X, 5) {
		t.Errorf("Expected start sample at 5, got %v", s.C0.X)
	}
	if !almostEqual(s.A0, 1) {
		t.Errorf("Expected start angle 1, got %v", s.A0)
	}

	// Interpolation over the remaining interval still hits the same poses.
	xf := s.Transform(0.75)
	if !almostEqual(xf.P.X, 7.5) {
		t.Errorf("Expected position 7.5 at t=0.75, got %v", xf.P.X)
	}
}

func TestSweepAdvanceIgnoresBackwardTime(t *testing.T) {
	s := Sweep{C0: V(2, 0), C: V(4, 0), T0: 0.5}
	s.Advance(0.25)
	if s.T0 != 0.5 || s.C0.X != 2 {
		t.Error("Advance must not move the interval backward")
	}
}

func TestSweepNormalizeAngle(t *testing.T) {
	s := Sweep{A0: 4*math.Pi + 1, A: 4*math.Pi + 2}
	s.NormalizeAngle()
	if !almostEqual(s.A0, 1) || !almostEqual(s.A, 2) {
		t.Errorf("Expected angles (1,2), got (%v,%v)", s.A0, s.A)
	}
}

func TestVec2Normalize(t *testing.T) {
	v, length := V(3, 4).Normalize()
	if !almostEqual(length, 5) {
		t.Errorf("Expected length 5, got %v", length)
	}
	if !almostEqual(v.Length(), 1) {
		t.Errorf("Expected unit vector, got length %v", v.Length())
	}

	_, length = V(0, 0).Normalize()
	if length != 0 {
		t.Errorf("Zero vector should report zero length, got %v", length)
	}
}

func TestMat22Solve(t *testing.T) {
	m := Mat22{Col1: V(2, 0), Col2: V(0, 4)}
	x := m.Solve(V(6, 8))
	if !almostEqual(x.X, 3) || !almostEqual(x.Y, 2) {
		t.Errorf("Expected solution (3,2), got (%v,%v)", x.X, x.Y)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	xf := XF(V(3, -2), 0.7)
	p := V(1.5, 2.5)
	back := xf.ApplyT(xf.Apply(p))
	if !almostEqual(back.X, p.X) || !almostEqual(back.Y, p.Y) {
		t.Errorf("Round trip failed: got (%v,%v)", back.X, back.Y)
	}
}
