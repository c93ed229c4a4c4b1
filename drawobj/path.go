// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package drawobj

import (
	"iter"

	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/jmath"
	"github.com/inkstone-gfx/pls/tessellate"
)

// PathDraw is a filled or stroked path, tessellated as either a midpoint
// fan or (for large simple fills) an interior triangulation. Which plan a
// given path uses is decided once, at construction, by NewPathDraw's call
// to tessellate.ChooseStrategy — the classification is otherwise
// unreachable from outside this package, satisfying the invariant that it
// is deterministic given (transform, path, paint, fill rule).
type PathDraw struct {
	base

	plan     tessellate.Plan
	fillRule gfx.Fill
	isStroke bool
}

// NewPathDraw builds the path plan for path under transform and paint,
// selecting midpoint-fan or interior-triangulation tessellation per
// FindTransformedArea / contour count, and returns a ready-to-count Draw
// Object. bounds is the path's pixel-space bounding box under transform.
func NewPathDraw(path iter.Seq[curve.PathElement], t jmath.Transform, bounds [4]int32, style tessellate.Style, brush gfx.Brush, blend gfx.BlendMode, clipID uint32) *PathDraw {
	isStroke := style.IsStroke()
	fbounds := [4]float32{float32(bounds[0]), float32(bounds[1]), float32(bounds[2]), float32(bounds[3])}
	plan := tessellate.BuildPlan(path, t, fbounds, style)

	return &PathDraw{
		base: base{
			bounds:    bounds,
			transform: t,
			blend:     blend,
			clipID:    clipID,
			brush:     brush,
		},
		plan:     plan,
		fillRule: style.Fill(),
		isStroke: isStroke,
	}
}

func (d *PathDraw) Variant() Variant {
	if d.plan.Kind == tessellate.InteriorTriangulationPlan {
		return InteriorTriangulationPath
	}
	return MidpointFanPath
}

func (d *PathDraw) ResourceCounts() ResourceCounters {
	var c ResourceCounters
	c.PathCount = 1
	c.ContourCount = uint32(len(d.plan.Contours))

	switch d.plan.Kind {
	case tessellate.MidpointFanPlan:
		c.MidpointFanTessVertexCount = uint32(d.plan.TessVertexCount)
	case tessellate.InteriorTriangulationPlan:
		c.OuterCubicTessVertexCount = uint32(d.plan.TessVertexCount)
		if d.plan.InnerFanTriangulator != nil {
			c.MaxTriangleVertexCount = uint32(d.plan.InnerFanTriangulator.TriangleCount() * 3)
		}
	}

	for _, contour := range d.plan.Contours {
		segs := contour.ParametricSegmentCount
		if segs == 0 {
			segs = 1
		}
		c.TessellatedSegmentCount += uint32(segs)
	}

	return c
}

func (d *PathDraw) AllocateGradientIfNeeded(ctx RenderContext, counters *ResourceCounters) bool {
	return d.base.allocateGradient(ctx, counters)
}

func (d *PathDraw) PushToRenderContext(ctx RenderContext) {
	fillRule := uint32(0)
	if d.fillRule == gfx.EvenOdd {
		fillRule = 1
	}

	paintIndex := ctx.AppendPaint(d.paintRecord())
	pathIndex := ctx.AppendPath(PathRecord{
		Transform:  d.transform,
		ClipID:     d.clipID,
		BlendMode:  uint32(d.blend.Mix)<<8 | uint32(d.blend.Compose),
		FillRule:   fillRule,
		PaintIndex: paintIndex,
	})

	patchType := uint32(0) // tessellate.MidpointFanPatch
	if d.plan.Kind == tessellate.InteriorTriangulationPlan {
		patchType = 1 // tessellate.OuterCurvePatch
	}

	for _, contour := range d.plan.Contours {
		contourIndex := ctx.AppendContour(contour)
		for _, seg := range contour.Curves {
			span := TessVertexSpan{
				P0P1:                [4]float32{float32(seg.P0.X), float32(seg.P0.Y), float32(seg.P1.X), float32(seg.P1.Y)},
				P2P3:                [4]float32{float32(seg.P2.X), float32(seg.P2.Y), float32(seg.P3.X), float32(seg.P3.Y)},
				Params:              [4]float32{float32(seg.Segments), 0, 0, 0},
				PathAndContourIndex: [4]uint32{pathIndex, contourIndex, patchType, 0},
			}
			ctx.AppendTessVertexSpan(span)
		}
	}

	if d.plan.Kind == tessellate.InteriorTriangulationPlan && d.plan.InnerFanTriangulator != nil {
		buf := make([]float32, 0, d.plan.InnerFanTriangulator.TriangleCount()*6)
		buf = d.plan.InnerFanTriangulator.AppendTriangles(buf)
		ctx.AppendTriangleVertices(buf)
	}
}

func (d *PathDraw) ReleaseRefs() {
	d.base.releaseRefs()
}
