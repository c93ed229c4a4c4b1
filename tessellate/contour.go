// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tessellate

import (
	"iter"
	"math"

	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/jmath"
)

// ContourInfo describes one contiguous subpath (contour) of a path after it
// has been walked and measured. It records everything the midpoint-fan plan
// needs to lay the contour's patches into the tessellation texture: its
// curves (including any cap-marker segments), how many parametric segments
// it needs (ParametricSegmentCount), and whether it is closed.
type ContourInfo struct {
	// Curves holds one entry per curve (line/quad/cubic) in the contour, in
	// order, each already chopped into cubic form.
	Curves []CurveSegment
	Closed bool

	// ParametricSegmentCount is the sum, over Curves, of the Wang's-formula
	// segment estimate, including the segment counts of the cap-marker
	// segments WalkContours adds at both ends of an open stroke contour.
	ParametricSegmentCount int
}

// CurveSegment is one cubic Bezier (lines and quadratics are raised to
// cubic form) together with its Wang's-formula segment estimate.
type CurveSegment struct {
	P0, P1, P2, P3 curve.Vec2
	Segments       int
}

func wangsSegments(p0, p1, p2, p3 curve.Vec2, t jmath.Transform) int {
	n := jmath.WangCubic(jmath.RsqrtOfTol, p0, p1, p2, p3, t)
	if n < 1 {
		n = 1
	}
	return int(n)
}

// WalkContours splits a raw path into per-contour curve lists, raising
// every line and quadratic segment to cubic form so that the rest of the
// pipeline only has to deal with one segment type, exactly as Rive's PLS
// draw-path processing does before tessellation.
//
// style controls the join-as-cap emulation described on ContourInfo: an
// open stroke contour is given one extra "join" segment at each end so the
// stroke cap can be rendered by the ordinary join geometry (see
// insertStrokeCapMarkerSegment in the encoding this was adapted from). A
// round cap's marker carries the polar segment count a round join of the
// same transformed stroke width would need; any other cap style gets the
// usual single zero-length segment.
func WalkContours(path iter.Seq[curve.PathElement], t jmath.Transform, style Style) []ContourInfo {
	isStroke := style.IsStroke()
	startCapSegs, endCapSegs := 1, 1
	if isStroke {
		scaledWidth := jmath.TransformScale(t) * float64(style.LineWidth)
		if style.StartCap() == curve.RoundCap {
			startCapSegs = PolarSegmentCount(scaledWidth)
		}
		if style.EndCap() == curve.RoundCap {
			endCapSegs = PolarSegmentCount(scaledWidth)
		}
	}

	var contours []ContourInfo
	var cur *ContourInfo
	var start, last curve.Vec2
	haveLast := false

	// closeContour finishes the current contour. Only an explicit ClosePath
	// (explicit == true) closes it; a contour ended by a MoveTo or by the end
	// of the path stays open.
	closeContour := func(explicit bool) {
		if cur == nil {
			return
		}
		if explicit && haveLast && (last.X != start.X || last.Y != start.Y) {
			appendLine(cur, last, start, t)
			cur.Closed = true
		} else if explicit && len(cur.Curves) > 0 {
			cur.Closed = true
		}
		if isStroke && !cur.Closed {
			prependCapJoinMarker(cur, startCapSegs)
			appendCapJoinMarker(cur, endCapSegs)
		}
		contours = append(contours, *cur)
		cur = nil
	}

	for el := range path {
		switch el.Kind {
		case curve.MoveToKind:
			closeContour(false)
			cur = &ContourInfo{}
			start = curve.Vec2(el.P0)
			last = start
			haveLast = true
		case curve.LineToKind:
			if cur == nil {
				cur = &ContourInfo{}
				start = curve.Vec2(el.P0)
				last = start
				haveLast = true
				continue
			}
			p := curve.Vec2(el.P0)
			appendLine(cur, last, p, t)
			last = p
		case curve.QuadToKind:
			if cur == nil {
				continue
			}
			p1 := curve.Vec2(el.P0)
			p2 := curve.Vec2(el.P1)
			appendQuad(cur, last, p1, p2, t)
			last = p2
		case curve.CubicToKind:
			if cur == nil {
				continue
			}
			p1 := curve.Vec2(el.P0)
			p2 := curve.Vec2(el.P1)
			p3 := curve.Vec2(el.P2)
			appendCubic(cur, last, p1, p2, p3, t)
			last = p3
		case curve.ClosePathKind:
			closeContour(true)
			haveLast = false
		}
	}
	closeContour(false)
	return contours
}

func appendLine(c *ContourInfo, p0, p1 curve.Vec2, t jmath.Transform) {
	if p0 == p1 {
		return
	}
	mid1 := p0.Lerp(p1, 1.0/3.0)
	mid2 := p0.Lerp(p1, 2.0/3.0)
	appendCubic(c, p0, mid1, mid2, p1, t)
}

func appendQuad(c *ContourInfo, p0, p1, p2 curve.Vec2, t jmath.Transform) {
	c1 := p0.Add(p1.Sub(p0).Mul(2.0 / 3.0))
	c2 := p2.Add(p1.Sub(p2).Mul(2.0 / 3.0))
	appendCubic(c, p0, c1, c2, p2, t)
}

func appendCubic(c *ContourInfo, p0, p1, p2, p3 curve.Vec2, t jmath.Transform) {
	n := wangsSegments(p0, p1, p2, p3, t)
	c.Curves = append(c.Curves, CurveSegment{p0, p1, p2, p3, n})
	c.ParametricSegmentCount += n
}

// appendCapJoinMarker and prependCapJoinMarker emit a zero-length join
// segment at the contour's tail and start, respectively, so both of an open
// stroke's caps can be encoded and rasterized using the exact same join
// geometry as an interior vertex, rather than needing a dedicated cap shader
// path. This mirrors insertStrokeCapMarkerSegment, called at both ends of
// the contour.
func appendCapJoinMarker(c *ContourInfo, segs int) {
	if len(c.Curves) == 0 {
		return
	}
	last := c.Curves[len(c.Curves)-1].P3
	c.Curves = append(c.Curves, CurveSegment{last, last, last, last, segs})
	c.ParametricSegmentCount += segs
}

func prependCapJoinMarker(c *ContourInfo, segs int) {
	if len(c.Curves) == 0 {
		return
	}
	first := c.Curves[0].P0
	marker := CurveSegment{first, first, first, first, segs}
	c.Curves = append(c.Curves, CurveSegment{})
	copy(c.Curves[1:], c.Curves[:len(c.Curves)-1])
	c.Curves[0] = marker
	c.ParametricSegmentCount += segs
}

// PolarSegmentCount returns the number of polar (rotation-based) segments
// required to draw a round join or cap of the given transformed radius,
// following the same arc-angle derivation used for stroke-cap tile-crossing
// estimates.
func PolarSegmentCount(scaledStrokeWidth float64) int {
	const minTheta = 1e-6
	const tol = 0.25
	radius := math.Max(tol, scaledStrokeWidth*0.5)
	theta := math.Max(2.0*math.Acos(1.0-tol/radius), minTheta)
	return int(math.Max(2, math.Ceil(math.Pi/2/theta)))
}
