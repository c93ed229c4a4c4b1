// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package drawobj

import (
	"structs"

	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/gradient"
	"github.com/inkstone-gfx/pls/jmath"
	"github.com/inkstone-gfx/pls/tessellate"
)

// Variant tags the four draw kinds the engine knows how to emit. Modeled as
// a tagged interface rather than a dispatch table on an enum: each variant
// carries data the others don't (a tessellate.Plan vs. an image + mesh
// buffers), so a Go interface expresses this polymorphism directly.
type Variant int

const (
	MidpointFanPath Variant = iota
	InteriorTriangulationPath
	ImageRect
	ImageMesh
)

func (v Variant) String() string {
	switch v {
	case MidpointFanPath:
		return "midpointFanPath"
	case InteriorTriangulationPath:
		return "interiorTriangulationPath"
	case ImageRect:
		return "imageRect"
	case ImageMesh:
		return "imageMesh"
	default:
		return "unknown"
	}
}

// TessVertexSpan is one instance of the tessellation-texture vertex format:
// a control-point quadruple, parametric/polar segment counts, and
// path/contour indices. structs.HostLayout pins its field layout so it can
// be reinterpreted as raw bytes for a buffer upload via safeish.AsBytes.
type TessVertexSpan struct {
	_ structs.HostLayout

	P0P1                [4]float32
	P2P3                [4]float32
	Params              [4]float32
	PathAndContourIndex [4]uint32
}

// PathRecord is the per-path GPU-visible record: the fields a fragment
// shader needs to resolve a pixel's winding contribution and paint.
type PathRecord struct {
	_ structs.HostLayout

	Transform  jmath.Transform
	ClipID     uint32
	BlendMode  uint32
	FillRule   uint32
	PaintIndex uint32
}

// PaintRecord is the per-draw paint descriptor: a solid color, or a
// gradient reference resolved through the gradient cache.
type PaintRecord struct {
	_ structs.HostLayout

	Kind         uint32
	SolidColor   [4]float32
	GradientRow  uint32
	GradientX0X1 [2]float32
}

const (
	paintKindSolid = iota
	paintKindGradient
	paintKindImage
)

// RenderContext is the seam a Draw Object writes through. It abstracts the
// ring-buffer bookkeeping (offsets into the mapped path/contour/paint/
// paint-aux/tess-span/triangle regions) and the gradient cache so this
// package does not need to know about ring slots, mapped buffers or the
// backend in use. The flush engine implements it.
type RenderContext interface {
	Gradients() *gradient.Cache

	// AcquireImageDescriptor allocates img's per-frame descriptor set if it
	// hasn't been allocated yet this frame, returning true the first time it
	// is called for img in a given frame and false on every subsequent call.
	AcquireImageDescriptor(img *gfx.Image) bool

	AppendPath(rec PathRecord) uint32
	AppendContour(rec tessellate.ContourInfo) uint32
	AppendPaint(rec PaintRecord) uint32
	AppendTessVertexSpan(span TessVertexSpan) uint32
	AppendTriangleVertices(vertices []float32)

	// AppendImageMesh stages an image-mesh draw's vertex/uv/index buffers,
	// associating them with pathIndex (the value AppendPath returned for
	// this same draw) so the main draw pass can look the batch back up when
	// it reaches that path record and issue an indexed draw instead of the
	// default four-vertex quad.
	AppendImageMesh(pathIndex uint32, vertices, uvs []float32, indices []uint16)
}

// Object is the interface every Draw Object variant implements. Draws are
// held by a frame-scoped DrawList (they are not allocated from its arena)
// and must have ReleaseRefs called exactly once, when the list resets,
// regardless of whether the draw ever reached pushToRenderContext.
type Object interface {
	Variant() Variant
	Bounds() [4]int32
	BlendMode() gfx.BlendMode
	ResourceCounts() ResourceCounters

	// AllocateGradientIfNeeded requests this draw's gradient cache slot, if
	// it has a gradient brush, adding the resulting span/row counts into
	// counters. It returns false, performing no allocation, if the gradient
	// texture has no room; the caller must then partial-flush and retry.
	AllocateGradientIfNeeded(ctx RenderContext, counters *ResourceCounters) bool

	// PushToRenderContext writes this draw's records into ctx. The number
	// of bytes/records written must equal ResourceCounts() exactly.
	PushToRenderContext(ctx RenderContext)

	// ReleaseRefs decrements every shared reference (image, gradient stops)
	// this draw holds. Safe to call exactly once; a second call is a bug in
	// the caller, not something this contract defends against.
	ReleaseRefs()
}

// base holds the attributes common to every draw variant: pixel-space
// bounds, transform, blend mode, clip and an optional gradient brush.
type base struct {
	bounds    [4]int32
	transform jmath.Transform
	blend     gfx.BlendMode
	clipID    uint32
	clipInv   *jmath.Transform
	brush     gfx.Brush

	gradRecord     gradient.Record
	gradStops      []gfx.ColorStop
	hasComplexGrad bool
}

func (b *base) Bounds() [4]int32 { return b.bounds }

func (b *base) BlendMode() gfx.BlendMode { return b.blend }

func (b *base) allocateGradient(ctx RenderContext, counters *ResourceCounters) bool {
	gb, ok := b.brush.(gfx.GradientBrush)
	if !ok {
		return true
	}
	var stops []gfx.ColorStop
	switch g := gb.Gradient.(type) {
	case gfx.LinearGradient:
		stops = g.Stops
	case gfx.RadialGradient:
		stops = g.Stops
	case gfx.SweepGradient:
		stops = g.Stops
	default:
		return true
	}
	rec, ok := ctx.Gradients().Allocate(stops)
	if !ok {
		return false
	}
	b.gradRecord = rec
	b.gradStops = stops
	if !rec.Simple {
		b.hasComplexGrad = true
		counters.ComplexGradientSpanCount += uint32(len(stops) - 1)
	}
	return true
}

func (b *base) paintRecord() PaintRecord {
	switch br := b.brush.(type) {
	case gfx.SolidBrush:
		return PaintRecord{Kind: paintKindSolid, SolidColor: br.Color.Premul32()}
	case gfx.GradientBrush:
		if b.gradRecord.Simple {
			return PaintRecord{
				Kind:        paintKindGradient,
				GradientRow: b.gradRecord.Row,
			}
		}
		return PaintRecord{Kind: paintKindGradient, GradientRow: b.gradRecord.Row}
	case gfx.ImageBrush:
		return PaintRecord{Kind: paintKindImage}
	default:
		return PaintRecord{Kind: paintKindSolid, SolidColor: [4]float32{0, 0, 0, 1}}
	}
}

func (b *base) releaseRefs() {
	b.gradStops = nil
}
