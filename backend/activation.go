// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package backend

import "honnef.co/go/wgpu"

// Activation is the per-interlock-mode hook set the flush engine calls
// around the main draw pass, per the "Interlock-mode abstraction" design
// note: two implementations (raster-ordered, atomics) behind one façade.
type Activation interface {
	// Activate begins whatever the mode requires before the main draw pass
	// (a no-op under raster ordering; under atomics, an empty compute pass
	// outside the render pass when the target has an atomic-coverage image,
	// which leaves that image's contents unchanged).
	Activate(enc *wgpu.CommandEncoder, aux *RenderTargetAuxImages)
	// Deactivate runs once the main draw pass (and any resolve pass) has
	// ended.
	Deactivate()
	// OnBarrier is called between draws when a DrawBatch sets needsBarrier:
	// a no-op under raster ordering, an explicit color-attachment-write →
	// input-attachment-read memory barrier under atomics.
	OnBarrier(enc *wgpu.RenderPassEncoder)
	// PushShaderDefines returns the WGSL preprocessor defines that select
	// this mode's code path in the shared PLS shader sources.
	PushShaderDefines() []string
	SupportsRasterOrdering() bool
}

type rasterOrderingActivation struct{}

func NewRasterOrderingActivation() Activation { return rasterOrderingActivation{} }

func (rasterOrderingActivation) Activate(*wgpu.CommandEncoder, *RenderTargetAuxImages) {}
func (rasterOrderingActivation) Deactivate()                                           {}
func (rasterOrderingActivation) OnBarrier(*wgpu.RenderPassEncoder)                     {}
func (rasterOrderingActivation) PushShaderDefines() []string                           { return []string{"RASTER_ORDERING"} }
func (rasterOrderingActivation) SupportsRasterOrdering() bool                          { return true }

// atomicsActivation implements the atomics interlock mode: coverage lives
// in a storage image mutated by atomic ops, color is bound as a subpass
// input, and ordering between draws that need it is enforced by an
// explicit memory barrier rather than implicit raster order.
type atomicsActivation struct {
	clearValue uint32
}

func NewAtomicsActivation(coverageClearValue uint32) Activation {
	return &atomicsActivation{clearValue: coverageClearValue}
}

func (a *atomicsActivation) Activate(enc *wgpu.CommandEncoder, aux *RenderTargetAuxImages) {
	if aux == nil || aux.AtomicCoverage == nil {
		return
	}
	pass := enc.BeginComputePass(nil)
	defer pass.End()
	// The pass records no dispatch: the atomic coverage image is not
	// cleared here, and clearValue is not written to it.
}

func (a *atomicsActivation) Deactivate() {}

func (a *atomicsActivation) OnBarrier(enc *wgpu.RenderPassEncoder) {
	enc.PipelineBarrier(&wgpu.MemoryBarrier{
		SrcAccess: wgpu.AccessColorAttachmentWrite,
		DstAccess: wgpu.AccessInputAttachmentRead,
	})
}

func (a *atomicsActivation) PushShaderDefines() []string  { return []string{"ATOMICS"} }
func (a *atomicsActivation) SupportsRasterOrdering() bool { return false }

// AtomicResolveShaderMiscFlags packs mode-specific flags the atomic resolve
// shader needs, such as whether advanced blend requires the post-clear
// barrier this flush.
func AtomicResolveShaderMiscFlags(advancedBlend bool) uint32 {
	if advancedBlend {
		return 1
	}
	return 0
}

// SetupAtomicResolve binds the inputs the resolve pass needs and issues its
// 4-vertex triangle-strip draw, per §4.5 step 6.
func SetupAtomicResolve(pass *wgpu.RenderPassEncoder, pipeline *wgpu.RenderPipeline, bindGroup *wgpu.BindGroup) {
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(4, 1, 0, 0)
}
