// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tessellate

import (
	"iter"
	"math"

	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/jmath"
)

// Plan is the result of processing one path: either a midpoint-fan plan (one
// patch per contour segment span, fanning from a midpoint) or an interior-
// triangulation plan (the interior filled by a triangulator, with only the
// outer curves tessellated into patches).
type Plan struct {
	Kind PlanKind

	Contours []ContourInfo

	// TessVertexCount is the number of patch instances this path needs:
	// midpoint-fan patches for a MidpointFanPlan, outer-curve patches for an
	// InteriorTriangulationPlan. It counts patches, not individual
	// tessellation vertices.
	TessVertexCount int

	// InnerFanTriangulator, set only for InteriorTriangulation plans,
	// produces the interior triangle list. BuildPlan fills it with a
	// FanTriangulator; any implementation of the interface can stand in, as
	// this package only needs its triangle count and stream.
	InnerFanTriangulator InnerFanTriangulator
}

type PlanKind int

const (
	MidpointFanPlan PlanKind = iota
	InteriorTriangulationPlan
)

// InnerFanTriangulator triangulates the non-curved interior of a filled
// path once its outer curves have been subtracted out. PLS's own
// implementation is a red-black-tree sweep (GrInnerFanTriangulator in the
// upstream renderer); this interface intentionally only asks for what the
// flush engine needs to emit GPU triangles, so alternate triangulators can
// be swapped in.
type InnerFanTriangulator interface {
	TriangleCount() int
	AppendTriangles(dst []float32) []float32
}

// areaThreshold is the screen-space area, in pixels², above which a filled
// path is large enough that triangulating its interior directly is cheaper
// than tessellating a full midpoint fan over every contour. It is tuned to
// the same order of magnitude as Rive's own heuristic, which compares
// against patch count rather than area; we use area because it is cheap to
// derive once from the path's transformed bounding box.
const areaThreshold = 512 * 512

// contourCountThreshold mirrors the secondary heuristic: many small
// contours (e.g. a path built from hundreds of tiny glyphs) are cheaper to
// fan directly than to triangulate, even when the combined bounding box is
// large.
const contourCountThreshold = 64

// FindTransformedArea computes the screen-space area of bounds after being
// mapped through t, by summing the cross products of the two triangles that
// make up its transformed quadrilateral. Ported from FindTransformedArea in
// the PLS renderer.
func FindTransformedArea(bounds [4]float32, t jmath.Transform) float32 {
	pts := [4]curve.Vec2{
		curve.Vec(float64(bounds[0]), float64(bounds[1])),
		curve.Vec(float64(bounds[2]), float64(bounds[1])),
		curve.Vec(float64(bounds[2]), float64(bounds[3])),
		curve.Vec(float64(bounds[0]), float64(bounds[3])),
	}
	var screen [4]curve.Vec2
	for i, p := range pts {
		screen[i] = curve.Vec(
			float64(t.Matrix[0])*p.X+float64(t.Matrix[2])*p.Y+float64(t.Translation[0]),
			float64(t.Matrix[1])*p.X+float64(t.Matrix[3])*p.Y+float64(t.Translation[1]),
		)
	}
	v0 := screen[1].Sub(screen[0])
	v1 := screen[2].Sub(screen[0])
	v2 := screen[3].Sub(screen[0])
	cross := func(a, b curve.Vec2) float64 { return a.X*b.Y - a.Y*b.X }
	return float32((math.Abs(cross(v0, v1)) + math.Abs(cross(v1, v2))) * 0.5)
}

// ChooseStrategy classifies a fill path by its transformed bounding-box
// area and contour count, returning the plan kind the caller should build.
// Strokes are always tessellated with the midpoint-fan plan: an
// interior-triangulated interior has no notion of stroke width.
func ChooseStrategy(bounds [4]float32, t jmath.Transform, numContours int, isStroke bool) PlanKind {
	if isStroke {
		return MidpointFanPlan
	}
	area := FindTransformedArea(bounds, t)
	if area >= areaThreshold && numContours < contourCountThreshold {
		return InteriorTriangulationPlan
	}
	return MidpointFanPlan
}

// BuildPlan walks path and classifies it, producing the patches-worth of
// work the flush engine will lay into the tessellation texture.
func BuildPlan(path iter.Seq[curve.PathElement], t jmath.Transform, bounds [4]float32, style Style) Plan {
	isStroke := style.IsStroke()
	contours := WalkContours(path, t, style)
	kind := ChooseStrategy(bounds, t, len(contours), isStroke)

	total := 0
	for _, c := range contours {
		if kind == MidpointFanPlan {
			// Every contour needs at least one patch to close the fan, even
			// if it has zero measured segments (a degenerate point).
			segs := c.ParametricSegmentCount
			if segs == 0 {
				segs = 1
			}
			total += numPatchesForSpan(segs, kMidpointFanPatchSegmentSpan)
		} else {
			// Outer-curve patches are allocated per curve, clamped to
			// kMaxCurveSubdivisions worth of patches each, rather than one
			// lump sum per contour: a single very-high-segment-count curve
			// must not starve the patches a sibling curve in the same
			// contour needs.
			if len(c.Curves) == 0 {
				total++
				continue
			}
			for _, seg := range c.Curves {
				total += SubdivisionCountForCubic(float64(seg.Segments), kMaxOuterCurveParametricSegments)
			}
		}
	}

	var triangulator InnerFanTriangulator
	if kind == InteriorTriangulationPlan {
		triangulator = NewFanTriangulator(contours)
	}

	return Plan{
		Kind:                 kind,
		Contours:             contours,
		TessVertexCount:      total,
		InnerFanTriangulator: triangulator,
	}
}

// kMaxOuterCurveParametricSegments bounds, via MaxCurveSubdivisions, how
// many outer-curve patches a single cubic may be chopped into within one
// path, independent of its own Wang's-formula segment estimate.
const kMaxOuterCurveParametricSegments = 1024

func numPatchesForSpan(segments, span int) int {
	n := segments / span
	if segments%span != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
