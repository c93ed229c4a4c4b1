// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package drawobj implements the Draw Object: the polymorphic, arena-
// allocated record the client pushes for every path, image rect and image
// mesh, together with the resource-count vector the flush engine uses to
// size its ring-buffer reservations before any bytes are written.
package drawobj

// ResourceCounters totals the GPU resources one or more Draw Objects will
// consume: patch-buffer vertices split by patch kind, path/contour record
// counts, tessellation-texture rows, triangle-list vertices for interior-
// triangulated fills, image draws, and gradient-texture spans. It supports
// elementwise addition (totaling a frame) and subtraction (testing whether
// a candidate draw would still fit within a remaining budget during
// gradient-texture spill).
type ResourceCounters struct {
	MidpointFanTessVertexCount uint32
	OuterCubicTessVertexCount  uint32
	PathCount                  uint32
	ContourCount               uint32
	TessellatedSegmentCount    uint32
	MaxTriangleVertexCount     uint32
	ImageDrawCount             uint32
	ComplexGradientSpanCount   uint32
	MeshVertexCount            uint32
	MeshIndexCount             uint32
}

// Add returns the elementwise sum of c and other.
func (c ResourceCounters) Add(other ResourceCounters) ResourceCounters {
	return ResourceCounters{
		MidpointFanTessVertexCount: c.MidpointFanTessVertexCount + other.MidpointFanTessVertexCount,
		OuterCubicTessVertexCount:  c.OuterCubicTessVertexCount + other.OuterCubicTessVertexCount,
		PathCount:                  c.PathCount + other.PathCount,
		ContourCount:               c.ContourCount + other.ContourCount,
		TessellatedSegmentCount:    c.TessellatedSegmentCount + other.TessellatedSegmentCount,
		MaxTriangleVertexCount:     c.MaxTriangleVertexCount + other.MaxTriangleVertexCount,
		ImageDrawCount:             c.ImageDrawCount + other.ImageDrawCount,
		ComplexGradientSpanCount:   c.ComplexGradientSpanCount + other.ComplexGradientSpanCount,
		MeshVertexCount:            c.MeshVertexCount + other.MeshVertexCount,
		MeshIndexCount:             c.MeshIndexCount + other.MeshIndexCount,
	}
}

// Sub returns the elementwise difference of c and other. Fields are clamped
// at zero rather than wrapping, since callers use Sub to test "what remains
// of a budget" and a negative remainder is meaningless.
func (c ResourceCounters) Sub(other ResourceCounters) ResourceCounters {
	sub := func(a, b uint32) uint32 {
		if b >= a {
			return 0
		}
		return a - b
	}
	return ResourceCounters{
		MidpointFanTessVertexCount: sub(c.MidpointFanTessVertexCount, other.MidpointFanTessVertexCount),
		OuterCubicTessVertexCount:  sub(c.OuterCubicTessVertexCount, other.OuterCubicTessVertexCount),
		PathCount:                  sub(c.PathCount, other.PathCount),
		ContourCount:               sub(c.ContourCount, other.ContourCount),
		TessellatedSegmentCount:    sub(c.TessellatedSegmentCount, other.TessellatedSegmentCount),
		MaxTriangleVertexCount:     sub(c.MaxTriangleVertexCount, other.MaxTriangleVertexCount),
		ImageDrawCount:             sub(c.ImageDrawCount, other.ImageDrawCount),
		ComplexGradientSpanCount:   sub(c.ComplexGradientSpanCount, other.ComplexGradientSpanCount),
		MeshVertexCount:            sub(c.MeshVertexCount, other.MeshVertexCount),
		MeshIndexCount:             sub(c.MeshIndexCount, other.MeshIndexCount),
	}
}

// TessVertexCount sums the two tessellation counters of this vector, across
// both patch kinds.
func (c ResourceCounters) TessVertexCount() uint32 {
	return c.MidpointFanTessVertexCount + c.OuterCubicTessVertexCount
}

// FitsWithin reports whether c can be satisfied by a budget of remaining
// capacity, checked field by field. Used by allocateGradientIfNeeded-style
// checks where only ComplexGradientSpanCount is usually load-bearing, but
// callers may reuse it for any single-field capacity test.
func (c ResourceCounters) FitsWithin(budget ResourceCounters) bool {
	return c.MidpointFanTessVertexCount <= budget.MidpointFanTessVertexCount &&
		c.OuterCubicTessVertexCount <= budget.OuterCubicTessVertexCount &&
		c.PathCount <= budget.PathCount &&
		c.ContourCount <= budget.ContourCount &&
		c.TessellatedSegmentCount <= budget.TessellatedSegmentCount &&
		c.MaxTriangleVertexCount <= budget.MaxTriangleVertexCount &&
		c.ImageDrawCount <= budget.ImageDrawCount &&
		c.ComplexGradientSpanCount <= budget.ComplexGradientSpanCount &&
		c.MeshVertexCount <= budget.MeshVertexCount &&
		c.MeshIndexCount <= budget.MeshIndexCount
}
