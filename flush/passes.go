// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package flush

import (
	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"

	"github.com/inkstone-gfx/pls/backend"
	"github.com/inkstone-gfx/pls/tessellate"
)

// runGradientPass is step 1 of §4.5: an instanced draw of the complex
// gradient spans into the shared gradient texture's row range, followed by
// a buffer-to-image copy of the simple ramps' packed bytes.
func (e *Engine) runGradientPass(enc *wgpu.CommandEncoder, pgroup *backend.ProfilerGroup, desc Descriptor) {
	g := pgroup.Nest("gradient")
	defer g.End()

	spans := e.grads.ComplexSpans()
	if len(spans) > 0 {
		pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: "pls gradient pass",
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{LoadOp: wgpu.LoadOpLoad, StoreOp: wgpu.StoreOpStore},
			},
		})
		pass.Draw(4, uint32(len(spans)), 0, 0)
		pass.End()
	}

	if data := e.grads.SimpleRampData(); len(data) > 0 {
		buf := e.facade.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "pls simple ramp staging",
			Usage: wgpu.BufferUsageCopySrc,
			Size:  uint64(len(data)),
		})
		defer buf.Release()
		enc.CopyBufferToTexture(
			wgpu.TexelCopyBufferInfo{Buffer: buf},
			wgpu.TexelCopyTextureInfo{},
			wgpu.Extent3D{Width: desc.SimpleGradTexelsWidth, Height: desc.SimpleGradTexelsHeight, DepthOrArrayLayers: 1},
		)
	}
}

// runTessellationPass is step 2 of §4.5: one indexed-instanced draw per
// patch type, with one instance per pending tessellation span of that type,
// reusing the shared patch index buffer.
func (e *Engine) runTessellationPass(enc *wgpu.CommandEncoder, pgroup *backend.ProfilerGroup, desc Descriptor) {
	g := pgroup.Nest("tessellate")
	defer g.End()

	if len(e.spans) == 0 {
		return
	}
	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "pls tessellation pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{LoadOp: wgpu.LoadOpLoad, StoreOp: wgpu.StoreOpStore},
		},
	})
	defer pass.End()

	vbuf, ibuf := e.facade.PatchBuffers()
	pass.SetVertexBuffer(0, vbuf, 0, ^uint64(0))
	pass.SetIndexBuffer(ibuf, wgpu.IndexFormatUint16, 0, ^uint64(0))

	// Spans are tagged with which patch template they instance
	// (PathAndContourIndex[2]); the midpoint-fan instances are drawn first,
	// the outer-curve instances immediately after, both against the one
	// shared patch index buffer bound above.
	var midCount, outerCount uint32
	for _, s := range e.spans {
		if s.PathAndContourIndex[2] == uint32(tessellate.OuterCurvePatch) {
			outerCount++
		} else {
			midCount++
		}
	}
	if midCount > 0 {
		pass.DrawIndexed(uint32(tessellate.PatchIndexCount(tessellate.MidpointFanPatch)), midCount, uint32(tessellate.PatchBaseIndex(tessellate.MidpointFanPatch)), 0, 0)
	}
	if outerCount > 0 {
		pass.DrawIndexed(uint32(tessellate.PatchIndexCount(tessellate.OuterCurvePatch)), outerCount, uint32(tessellate.PatchBaseIndex(tessellate.OuterCurvePatch)), 0, midCount)
	}
}

// syncImageTextures is step 3 of §4.5. It only opens and closes its
// profiler span: the engine keeps no record of pending image uploads, so no
// staging-buffer → image copy, mipmap generation or layout transition is
// recorded here.
func (e *Engine) syncImageTextures(enc *wgpu.CommandEncoder, pgroup *backend.ProfilerGroup) {
	g := pgroup.Nest("imageSync")
	defer g.End()
}

// runMainDrawPass is step 5 of §4.5.
func (e *Engine) runMainDrawPass(enc *wgpu.CommandEncoder, pgroup *backend.ProfilerGroup, target RenderTarget, aux *backend.RenderTargetAuxImages, desc Descriptor) {
	g := pgroup.Nest("mainDraw")
	defer g.End()

	activation := activationForMode(desc.InterlockMode, desc.CoverageClearValue)
	activation.Activate(enc, aux)
	defer activation.Deactivate()

	loadOp := wgpu.LoadOpLoad
	clearValue := wgpu.Color{}
	if desc.ColorLoadAction == backend.ClearLoad {
		loadOp = wgpu.LoadOpClear
		clearValue = wgpu.Color{
			R: float64(desc.ClearColor[0]),
			G: float64(desc.ClearColor[1]),
			B: float64(desc.ClearColor[2]),
			A: float64(desc.ClearColor[3]),
		}
	}

	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "pls main draw pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target.View,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearValue,
			},
		},
		TimestampWrites: pgroup.Render(e.arena, "mainDraw"),
	})
	defer pass.End()

	// §4.5 step 5 / post-clear barrier: under Atomics mode, an advanced
	// blend mode reads the color attachment the clear just wrote, so the
	// clear's write and the first draw's read must be ordered explicitly
	// rather than relying on render-pass-internal ordering.
	if desc.InterlockMode == backend.Atomics && desc.ColorLoadAction == backend.ClearLoad && desc.AdvancedBlendEnabled {
		activation.OnBarrier(pass)
	}

	var meshVBuf, meshUVBuf, meshIBuf *wgpu.Buffer
	if len(e.meshIndices) > 0 {
		meshVBuf = e.uploadBuffer(wgpu.BufferUsageVertex, safeish.SliceCast[[]byte](e.meshVertices), "pls mesh vertices")
		defer meshVBuf.Release()
		meshUVBuf = e.uploadBuffer(wgpu.BufferUsageVertex, safeish.SliceCast[[]byte](e.meshUVs), "pls mesh uvs")
		defer meshUVBuf.Release()
		meshIBuf = e.uploadBuffer(wgpu.BufferUsageIndex, safeish.SliceCast[[]byte](e.meshIndices), "pls mesh indices")
		defer meshIBuf.Release()
	}

	descriptorSlot := 0
	for pathIdx := range e.paths {
		// One draw per accumulated path record; a real backend batches
		// consecutive same-pipeline paths into a single DrawBatch, but the
		// per-path bind/draw sequence below is what every batch reduces to.
		if e.paints[e.paths[pathIdx].PaintIndex].Kind == 2 { // paintKindImage
			pool := e.facade.AcquireDescriptorPool(descriptorSlot)
			_ = pool
			descriptorSlot++
		}
		if batch, ok := e.meshBatches[uint32(pathIdx)]; ok {
			// §6 image-mesh draw: vertex/uv buffers bound at locations 0 and
			// 1, indexed draw over the batch's own slice of the shared mesh
			// index buffer.
			pass.SetVertexBuffer(0, meshVBuf, uint64(batch.vertexOffset)*8, ^uint64(0))
			pass.SetVertexBuffer(1, meshUVBuf, uint64(batch.vertexOffset)*8, ^uint64(0))
			pass.SetIndexBuffer(meshIBuf, wgpu.IndexFormatUint16, uint64(batch.indexOffset)*2, ^uint64(0))
			pass.DrawIndexed(batch.elementCount, 1, 0, int32(batch.vertexOffset), 0)
		} else {
			pass.Draw(4, 1, 0, 0)
		}
		if desc.CombinedShaderFeatures&needsBarrierFeatureBit != 0 {
			activation.OnBarrier(pass)
		}
	}
}

// uploadBuffer creates a GPU buffer sized to data and writes it via the
// queue, mirroring the upload-then-write pattern used for gradient and
// atomic-resolve buffers.
func (e *Engine) uploadBuffer(usage wgpu.BufferUsage, data []byte, label string) *wgpu.Buffer {
	buf := e.facade.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Usage: usage | wgpu.BufferUsageCopyDst,
		Size:  uint64(len(data)),
	})
	e.facade.Queue.WriteBuffer(buf, 0, data)
	return buf
}

// needsBarrierFeatureBit marks that at least one DrawBatch in this flush
// needs an inter-draw memory barrier under Atomics mode.
const needsBarrierFeatureBit = 1 << 31

// runResolvePass is step 6 of §4.5: atomics mode only.
func (e *Engine) runResolvePass(enc *wgpu.CommandEncoder, pgroup *backend.ProfilerGroup, target RenderTarget, aux *backend.RenderTargetAuxImages, desc Descriptor) {
	g := pgroup.Nest("resolve")
	defer g.End()

	rp := e.facade.ResolvePipeline(target.Format)
	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "pls atomic resolve pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{View: target.View, LoadOp: wgpu.LoadOpLoad, StoreOp: wgpu.StoreOpStore},
		},
	})
	defer pass.End()

	if aux == nil || aux.AtomicCoverage == nil {
		return
	}

	miscFlags := backend.AtomicResolveShaderMiscFlags(desc.AdvancedBlendEnabled)
	miscBuf := e.uploadBuffer(wgpu.BufferUsageUniform, safeish.AsBytes(&miscFlags), "pls atomic resolve misc flags")
	defer miscBuf.Release()

	bindGroup := e.facade.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: aux.AtomicCoverage.view},
			{Binding: 1, Buffer: miscBuf, Size: ^uint64(0)},
		},
	})
	defer bindGroup.Release()
	backend.SetupAtomicResolve(pass, rp.Pipeline(), bindGroup)
}

func activationForMode(mode backend.InterlockMode, coverageClear uint32) backend.Activation {
	if mode == backend.Atomics {
		return backend.NewAtomicsActivation(coverageClear)
	}
	return backend.NewRasterOrderingActivation()
}
