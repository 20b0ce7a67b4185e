package collision

import (
	"math"

	"phys2d/internal/vmath"
)

// sweepTransformAt poses a sweep at fraction beta of its remaining interval,
// beta in [0, 1].
func sweepTransformAt(s *vmath.Sweep, beta float64) vmath.Transform {
	p := s.C0.Scale(1.0 - beta).Add(s.C.Scale(beta))
	angle := (1.0-beta)*s.A0 + beta*s.A
	xf := vmath.Transform{R: vmath.RotationMat22(angle)}
	xf.P = p.Sub(xf.R.MulV(s.LocalCenter))
	return xf
}

// outerRadius is the furthest a proxy's surface reaches from the sweep's
// center of mass, the lever arm for the angular part of the approach bound.
func outerRadius(p *DistanceProxy, localCenter vmath.Vec2) float64 {
	r := 0.0
	for _, v := range p.Vertices {
		if d := v.Sub(localCenter).Length(); d > r {
			r = d
		}
	}
	return r + p.Radius
}

// TimeOfImpact finds the first fraction of the sweeps' remaining interval at
// which the two shapes come within a slop-derived target separation, using
// conservative advancement: at each candidate time the closest distance is
// measured, and the time is advanced by the distance excess divided by an
// upper bound on the approach speed. The result is in [0, 1]; 1 means the
// shapes do not meet within the interval. Both sweeps must cover the same
// interval (callers advance them to a common start before the query).
func TimeOfImpact(proxyA *DistanceProxy, sweepA vmath.Sweep, proxyB *DistanceProxy, sweepB vmath.Sweep) float64 {
	totalRadius := proxyA.Radius + proxyB.Radius
	target := math.Max(LinearSlop, totalRadius-3.0*LinearSlop)
	tolerance := 0.25 * LinearSlop

	// Motion across the remaining interval.
	dA := sweepA.C.Sub(sweepA.C0)
	dB := sweepB.C.Sub(sweepB.C0)
	omegaA := sweepA.A - sweepA.A0
	omegaB := sweepB.A - sweepB.A0
	angularBound := math.Abs(omegaA)*outerRadius(proxyA, sweepA.LocalCenter) +
		math.Abs(omegaB)*outerRadius(proxyB, sweepB.LocalCenter)

	input := DistanceInput{
		ProxyA: *proxyA,
		ProxyB: *proxyB,
	}

	t := 0.0
	const maxIterations = 20
	for iter := 0; iter < maxIterations; iter++ {
		input.TransformA = sweepTransformAt(&sweepA, t)
		input.TransformB = sweepTransformAt(&sweepB, t)
		out := Distance(&input)

		// out.Distance is between the vertex hulls; target already accounts
		// for the skin radii.
		if out.Distance < target+tolerance {
			return t
		}

		normal, length := out.PointB.Sub(out.PointA).Normalize()
		if length < vmath.Epsilon {
			return t
		}

		// Approach speed upper bound along the separating axis.
		bound := dA.Sub(dB).Dot(normal) + angularBound
		if bound < tolerance {
			// Not approaching; no impact this interval.
			return 1.0
		}

		t += (out.Distance - target) / bound
		if t >= 1.0 {
			return 1.0
		}
	}
	return t
}
