// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package jmath

import (
	"math"

	"honnef.co/go/curve"
)

// Wang's Formula (as described in Pyramid Algorithms by Ron Goldman, 2003,
// Chapter 5, Section 5.6.3 on Bezier Approximation) is a fast method for
// computing a lower bound on the number of recursive subdivisions required
// to approximate a Bezier curve within a certain tolerance. The formula for
// a Bezier curve of degree n, control points p[0]...p[n], and flattening
// tolerance tol is:
//
//	m = max([length(p[k+2] - 2*p[k+1] + p[k]) for (0 <= k <= n-2)])
//	segments >= sqrt((n * (n - 1) * m) / (8 * tol))
//
// The curve degree term sqrt(n * (n - 1) / 8) specialized for cubics:
const sqrtOfDegreeTermCubic = 0.86602540378

// The curve degree term sqrt(n * (n - 1) / 8) specialized for quadratics:
const sqrtOfDegreeTermQuad = 0.5

// RsqrtOfTol is the reciprocal square root of a flattening tolerance of 0.2
// pixels, the default tolerance used when estimating segment counts for
// tessellation.
const RsqrtOfTol = 2.2360679775

func transformVec(t Transform, v curve.Vec2) curve.Vec2 {
	return curve.Vec(
		float64(t.Matrix[0])*v.X+float64(t.Matrix[2])*v.Y,
		float64(t.Matrix[1])*v.X+float64(t.Matrix[3])*v.Y,
	)
}

// WangQuadratic returns the number of line segments (already rounded up,
// as a float) needed to flatten the given transformed
// quadratic Bezier within the tolerance implied by rsqrtOfTol.
func WangQuadratic(rsqrtOfTol float64, p0, p1, p2 curve.Vec2, t Transform) float64 {
	v := p1.Mul(-2).Add(p0).Add(p2)
	v = transformVec(t, v)
	m := v.Hypot()
	return math.Ceil(sqrtOfDegreeTermQuad * math.Sqrt(m) * rsqrtOfTol)
}

// WangCubic returns the number of line segments needed to flatten the given
// transformed cubic Bezier within the tolerance implied by rsqrtOfTol.
func WangCubic(rsqrtOfTol float64, p0, p1, p2, p3 curve.Vec2, t Transform) float64 {
	v1 := p1.Mul(-2).Add(p0).Add(p2)
	v2 := p2.Mul(-2).Add(p1).Add(p3)
	v1 = transformVec(t, v1)
	v2 = transformVec(t, v2)
	m := max(v1.Hypot(), v2.Hypot())
	return math.Ceil(sqrtOfDegreeTermCubic * math.Sqrt(m) * rsqrtOfTol)
}

// TransformScale approximates the linear scale factor applied by t, used to
// rescale precomputed segment-count estimates when the active transform
// changes between insertion and tessellation time.
func TransformScale(t Transform) float64 {
	m := t.Matrix
	v1x := float64(m[0]) + float64(m[3])
	v2x := float64(m[0]) - float64(m[3])
	v1y := float64(m[1]) - float64(m[2])
	v2y := float64(m[1]) + float64(m[2])
	return 0.5 * (math.Sqrt(v1x*v1x+v1y*v1y) + math.Sqrt(v2x*v2x+v2y*v2y))
}
