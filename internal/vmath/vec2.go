// Package vmath provides the 2D vector, matrix and transform math used by
// the collision and dynamics packages. All values are float64; angles are
// radians.
package vmath

import "math"

// Epsilon is the machine epsilon of the single-precision lineage this engine
// derives its tolerances from. Several stepping cutoffs compare against
// multiples of it, so it must stay a meaningful magnitude rather than the
// float64 denormal floor.
const Epsilon = 1.1920929e-7

// MaxFloat is the largest representable value, used as an initial bound in
// min-searches.
const MaxFloat = math.MaxFloat64

// Vec2 is a 2D column vector.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{x, y} }

func (v Vec2) Add(w Vec2) Vec2      { return Vec2{v.X + w.X, v.Y + w.Y} }
func (v Vec2) Sub(w Vec2) Vec2      { return Vec2{v.X - w.X, v.Y - w.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{s * v.X, s * v.Y} }
func (v Vec2) Neg() Vec2            { return Vec2{-v.X, -v.Y} }

func (v Vec2) Dot(w Vec2) float64   { return v.X*w.X + v.Y*w.Y }
func (v Vec2) Cross(w Vec2) float64 { return v.X*w.Y - v.Y*w.X }

// CrossScalar computes v × s, treating s as a z-axis scalar.
func (v Vec2) CrossScalar(s float64) Vec2 { return Vec2{s * v.Y, -s * v.X} }

// CrossSV computes s × v for a z-axis scalar s.
func CrossSV(s float64, v Vec2) Vec2 { return Vec2{-s * v.Y, s * v.X} }

func (v Vec2) Length() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }

// Normalize returns the unit vector and the original length. Vectors shorter
// than Epsilon come back unchanged with length zero.
func (v Vec2) Normalize() (Vec2, float64) {
	length := v.Length()
	if length < Epsilon {
		return v, 0
	}
	inv := 1.0 / length
	return Vec2{v.X * inv, v.Y * inv}, length
}

// Skew returns the counter-clockwise perpendicular.
func (v Vec2) Skew() Vec2 { return Vec2{-v.Y, v.X} }

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

func MinV(a, b Vec2) Vec2 { return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)} }
func MaxV(a, b Vec2) Vec2 { return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)} }

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func ClampV(v, lo, hi Vec2) Vec2 { return MaxV(lo, MinV(v, hi)) }

// Mat22 is a 2x2 matrix in column-major form.
type Mat22 struct {
	Col1, Col2 Vec2
}

// RotationMat22 builds the rotation matrix for the given angle.
func RotationMat22(angle float64) Mat22 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat22{Vec2{c, s}, Vec2{-s, c}}
}

func (m Mat22) MulV(v Vec2) Vec2 {
	return Vec2{m.Col1.X*v.X + m.Col2.X*v.Y, m.Col1.Y*v.X + m.Col2.Y*v.Y}
}

// MulTV multiplies by the transpose, the inverse for rotations.
func (m Mat22) MulTV(v Vec2) Vec2 {
	return Vec2{v.Dot(m.Col1), v.Dot(m.Col2)}
}

func (m Mat22) Transpose() Mat22 {
	return Mat22{Vec2{m.Col1.X, m.Col2.X}, Vec2{m.Col1.Y, m.Col2.Y}}
}

// Solve finds x such that m*x = b. Degenerate matrices yield the zero vector.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12 := m.Col1.X, m.Col2.X
	a21, a22 := m.Col1.Y, m.Col2.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

// Transform carries a body frame: position P of the local origin and
// rotation R.
type Transform struct {
	P Vec2
	R Mat22
}

// XF builds a transform from a position and an angle.
func XF(p Vec2, angle float64) Transform {
	return Transform{P: p, R: RotationMat22(angle)}
}

// Apply maps a local point into the world frame.
func (t Transform) Apply(v Vec2) Vec2 { return t.R.MulV(v).Add(t.P) }

// ApplyT maps a world point into the local frame.
func (t Transform) ApplyT(v Vec2) Vec2 { return t.R.MulTV(v.Sub(t.P)) }
