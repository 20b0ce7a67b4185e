package vmath

import "math"

// Sweep describes the motion of a body's center of mass over the current
// step interval. Positions C0/C and angles A0/A are samples at interval
// times T0 and 1; LocalCenter is the center of mass in body coordinates.
// The continuous-collision loop re-bases T0 forward as bodies are advanced
// to their impact times, so T0 is always in [0,1).
type Sweep struct {
	LocalCenter Vec2
	C0, C       Vec2
	A0, A       float64
	T0          float64
}

// Transform returns the body transform at interval time t in [T0, 1].
// When the remaining interval has collapsed below machine epsilon the end
// pose is used directly.
func (s *Sweep) Transform(t float64) Transform {
	var p Vec2
	var angle float64
	if 1.0-s.T0 > Epsilon {
		alpha := (t - s.T0) / (1.0 - s.T0)
		p = s.C0.Scale(1.0 - alpha).Add(s.C.Scale(alpha))
		angle = (1.0-alpha)*s.A0 + alpha*s.A
	} else {
		p = s.C
		angle = s.A
	}

	xf := Transform{R: RotationMat22(angle)}
	xf.P = p.Sub(xf.R.MulV(s.LocalCenter))
	return xf
}

// Advance moves the start of the sweep forward to interval time t. The end
// samples are untouched; only the T0 base and the start samples change, so
// interpolation over the remaining [t, 1] window stays consistent.
func (s *Sweep) Advance(t float64) {
	if s.T0 < t && 1.0-s.T0 > Epsilon {
		alpha := (t - s.T0) / (1.0 - s.T0)
		s.C0 = s.C0.Scale(1.0 - alpha).Add(s.C.Scale(alpha))
		s.A0 = (1.0-alpha)*s.A0 + alpha*s.A
		s.T0 = t
	}
}

// NormalizeAngle subtracts whole turns so A0 lands in [0, 2*pi), keeping
// interpolation well conditioned over long runs.
func (s *Sweep) NormalizeAngle() {
	twoPi := 2.0 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A -= d
}
