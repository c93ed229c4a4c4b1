// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package flush implements the Flush Engine: the per-flush state machine
// that drains a frame's Draw Object list into the gradient, tessellation
// and main PLS draw passes.
package flush

import (
	"honnef.co/go/wgpu"

	"github.com/inkstone-gfx/pls/backend"
	"github.com/inkstone-gfx/pls/drawobj"
)

// ColorLoadAction is the color-attachment load operation for the main
// draw pass.
type ColorLoadAction = backend.LoadAction

const (
	PreserveRenderTarget = backend.PreserveRenderTarget
	ClearLoad            = backend.ClearLoad
	DontCare             = backend.DontCare
)

// RenderTarget is the destination surface a flush writes to: a color
// attachment view plus the format/size the backend needs to size and
// reuse auxiliary images.
type RenderTarget struct {
	ID     uintptr
	View   *wgpu.TextureView
	Format wgpu.TextureFormat
	Width  uint32
	Height uint32
}

// Descriptor carries everything one call to Flush needs: which render
// target to draw into, which interlock mode and load action to use, and
// the slice of the frame's accumulated buffers this flush should drain.
// Mirrors the FlushDescriptor fields recognized by the external interface.
type Descriptor struct {
	RenderTarget       RenderTarget
	InterlockMode      backend.InterlockMode
	ColorLoadAction    ColorLoadAction
	ClearColor         [4]float32
	CoverageClearValue uint32

	// AdvancedBlendEnabled marks that at least one draw in this flush uses an
	// advanced (non-Porter-Duff) blend mode under Atomics mode. When combined
	// with a Clear load action it forces a memory barrier between the
	// attachment clear and the first draw, since the atomic-coverage image's
	// clear and the advanced-blend shader's read of the still-clearing color
	// attachment would otherwise race.
	AdvancedBlendEnabled bool

	RenderTargetUpdateBounds [4]int32

	DrawList *drawobj.DrawList

	FirstPath            uint32
	FirstContour         uint32
	FirstPaint           uint32
	FirstPaintAux        uint32
	FirstTessVertexSpan  uint32
	FirstComplexGradSpan uint32

	TessVertexSpanCount   uint32
	TessDataHeight        uint32
	ComplexGradSpanCount  uint32
	ComplexGradRowsTop    uint32
	ComplexGradRowsHeight uint32

	SimpleGradDataOffsetInBytes uint32
	SimpleGradTexelsWidth       uint32
	SimpleGradTexelsHeight      uint32

	FlushUniformDataOffsetInBytes uint32
	CombinedShaderFeatures        uint32
	Wireframe                     bool
	IsFinalFlushOfFrame           bool

	FrameCompletionFence  chan struct{}
	ExternalCommandBuffer *wgpu.CommandEncoder
}
