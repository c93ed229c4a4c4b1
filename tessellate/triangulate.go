// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tessellate

import "honnef.co/go/curve"

// FanTriangulator is a minimal InnerFanTriangulator: it fans every contour's
// curve endpoints from the first vertex of the first contour. It is not a
// constrained Delaunay or ear-clipping triangulator — it does not guarantee
// a correct interior for self-intersecting or concave paths — but it gives
// the interior-triangulation plan a real, exercisable triangle stream so the
// rest of the pipeline (resource counting, buffer packing, the draw call)
// can be built and tested against it. A production triangulator is a drop-in
// replacement behind the same interface.
type FanTriangulator struct {
	points []curve.Vec2
}

// NewFanTriangulator collects one polygon vertex per curve in contours (each
// curve's start point) and returns a triangulator that fans them from the
// first vertex. Contours with fewer than 3 combined vertices produce a
// triangulator with zero triangles.
func NewFanTriangulator(contours []ContourInfo) *FanTriangulator {
	var points []curve.Vec2
	for _, c := range contours {
		for _, seg := range c.Curves {
			points = append(points, seg.P0)
		}
	}
	return &FanTriangulator{points: points}
}

func (f *FanTriangulator) TriangleCount() int {
	if len(f.points) < 3 {
		return 0
	}
	return len(f.points) - 2
}

// AppendTriangles appends (x,y) pairs for each triangle's three vertices, in
// fan order around f.points[0].
func (f *FanTriangulator) AppendTriangles(dst []float32) []float32 {
	n := f.TriangleCount()
	if n == 0 {
		return dst
	}
	pivot := f.points[0]
	for i := 1; i <= n; i++ {
		a, b := f.points[i], f.points[i+1]
		dst = append(dst,
			float32(pivot.X), float32(pivot.Y),
			float32(a.X), float32(a.Y),
			float32(b.X), float32(b.Y),
		)
	}
	return dst
}
