// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package backend

import (
	"fmt"
	"unsafe"

	lru "github.com/hashicorp/golang-lru/v2"
	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"

	"github.com/inkstone-gfx/pls/mem"
	"github.com/inkstone-gfx/pls/ring"
	"github.com/inkstone-gfx/pls/tessellate"
)

// InterlockMode selects how the main draw pass reads and writes the
// per-pixel PLS planes (color, coverage, clip, scratch).
type InterlockMode int

const (
	RasterOrdering InterlockMode = iota
	Atomics
	// DepthStencil is reserved and treated as a no-op: flush.Engine.Drain
	// returns for it without staging or submitting any work, and without an
	// error.
	DepthStencil
)

func (m InterlockMode) String() string {
	switch m {
	case RasterOrdering:
		return "rasterOrdering"
	case Atomics:
		return "atomics"
	case DepthStencil:
		return "depthStencil"
	default:
		return "unknown"
	}
}

// LoadAction is the color-attachment load operation for the main draw
// pass, one axis of the render-pass-variant key.
type LoadAction int

const (
	PreserveRenderTarget LoadAction = iota
	ClearLoad
	DontCare
)

// renderPassVariantCount is the number of (target-format × load-op)
// render-pass variants the cache distinguishes: two target formats
// (RGBA8, BGRA8) times three load actions.
const renderPassVariantCount = 6

// RenderPassVariant identifies one of the fixed render-pass configurations
// the facade caches pipelines against.
func RenderPassVariant(format wgpu.TextureFormat, load LoadAction) int {
	formatIdx := 0
	if format == wgpu.TextureFormatBGRA8Unorm {
		formatIdx = 1
	}
	return formatIdx*3 + int(load)
}

// PipelineKey composes a shader's unique key, its option bits (wireframe,
// shader features) and the render-pass variant it will be bound under into
// a single comparable integer, so the pipeline cache can be a sorted slice
// (mem.BinaryTreeMap) instead of a hash table. optBits is the number of
// low bits of the composite reserved for options.
func PipelineKey(shaderUniqueKey int64, options int64, optBits uint, variantIdx int) int64 {
	return ((shaderUniqueKey<<optBits)|options)*int64(renderPassVariantCount) + int64(variantIdx)
}

// DescriptorPool wraps one frame's worth of per-draw image-texture bind
// groups. Reset "returns" the pool to the free list; wgpu bind groups are
// immutable, so unlike a Vulkan descriptor pool this only clears the
// pool's own bookkeeping — new bind groups simply replace the slice.
type DescriptorPool struct {
	sets []*wgpu.BindGroup
}

func (p *DescriptorPool) Reset() { p.sets = p.sets[:0] }

func (p *DescriptorPool) Add(set *wgpu.BindGroup) { p.sets = append(p.sets, set) }

// resolvePipeline is the full-screen triangle-strip pass that converts
// atomic coverage to final color at the end of a flush under Atomics mode.
// Structurally a full-screen-quad blit pipeline, retargeted from a
// post-compute color blit to the PLS atomic-resolve shader.
type resolvePipeline struct {
	bindLayout *wgpu.BindGroupLayout
	pipeline   *wgpu.RenderPipeline
}

// Pipeline returns the underlying render pipeline, for callers issuing the
// resolve draw directly.
func (p *resolvePipeline) Pipeline() *wgpu.RenderPipeline { return p.pipeline }

func newResolvePipeline(dev *wgpu.Device, format wgpu.TextureFormat) *resolvePipeline {
	const src = `
		@vertex
		fn vs_main(@builtin(vertex_index) ix: u32) -> @builtin(position) vec4<f32> {
			var vertex = vec2(-1.0, 1.0);
			switch ix {
				case 1u: { vertex = vec2(-1.0, -1.0); }
				case 2u: { vertex = vec2(1.0, 1.0); }
				case 3u: { vertex = vec2(1.0, -1.0); }
				default: {}
			}
			return vec4(vertex, 0.0, 1.0);
		}

		@group(0) @binding(0)
		var atomic_coverage: texture_2d<u32>;

		@group(0) @binding(1)
		var<uniform> misc_flags: u32;

		@fragment
		fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
			let coverage = textureLoad(atomic_coverage, vec2<i32>(pos.xy), 0);
			var color = vec4<f32>(coverage) / 255.0;
			if (misc_flags & 1u) != 0u {
				color.a = min(color.a, 1.0);
			}
			return color;
		}`

	shader := dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  "pls atomic resolve",
		Source: wgpu.ShaderSourceWGSL(src),
	})
	bindLayout := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Visibility: wgpu.ShaderStageFragment,
				Binding:    0,
				Texture: &wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUint,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Visibility: wgpu.ShaderStageFragment,
				Binding:    1,
				Buffer: &wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	layout := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "pls atomic resolve layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindLayout},
	})
	pipeline := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "pls atomic resolve pipeline",
		Layout: layout,
		Vertex: &wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: format, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
		},
		Multisample: &wgpu.MultisampleState{Count: 1, Mask: ^uint32(0)},
	})
	return &resolvePipeline{bindLayout: bindLayout, pipeline: pipeline}
}

// auxImage is one of the per-render-target auxiliary images the main draw
// pass reads and writes alongside color: coverage, clip, scratch, or (under
// Atomics) the atomic coverage storage image. Generalized from a single
// blit target to four named per-target auxiliary attachments.
type auxImage struct {
	view   *wgpu.TextureView
	width  uint32
	height uint32
}

func newAuxImage(dev *wgpu.Device, width, height uint32, usage wgpu.TextureUsage, format wgpu.TextureFormat, label string) *auxImage {
	tex := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         usage,
		Format:        format,
	})
	defer tex.Release()
	return &auxImage{view: tex.CreateView(nil), width: width, height: height}
}

// RenderTargetAuxImages holds the four auxiliary images a render target
// needs under PLS: coverage, clip, scratch color, and (atomics mode only)
// atomic coverage.
type RenderTargetAuxImages struct {
	Coverage       *auxImage
	Clip           *auxImage
	Scratch        *auxImage
	AtomicCoverage *auxImage
}

// Facade is the graphics-API-specific backend: it owns the device/queue,
// the render-pass-variant-keyed pipeline cache, the shader-module cache,
// per-frame descriptor pools, and the atomic-resolve pipeline. The flush
// engine and the root package reach it through these methods, though they
// also use honnef.co/go/wgpu types directly.
type Facade struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	pipelines     mem.BinaryTreeMap[int64, *wgpu.RenderPipeline]
	shaderModules mem.BinaryTreeMap[int64, *wgpu.ShaderModule]
	keyArena      *mem.Arena

	// descriptorPools is a bounded LRU: per the design note, the free list
	// of per-frame descriptor pools is bounded, and overflow deletes the
	// pool rather than growing forever.
	descriptorPools *lru.Cache[int, *DescriptorPool]

	resolve map[wgpu.TextureFormat]*resolvePipeline

	targets map[uintptr]*RenderTargetAuxImages

	patchBuffers *patchBuffers

	// retiredAux defers releasing a render target's old auxiliary images
	// until KBufferRingSize resizes later, since up to that many flushes'
	// worth of GPU work submitted before the resize may still reference them.
	retiredAux *ring.Ring
}

// alwaysSignaledFence is a ring.Fence for resources whose retirement is
// driven by resize count rather than an actual GPU completion signal.
type alwaysSignaledFence struct{}

func (alwaysSignaledFence) Signaled() bool { return true }
func (alwaysSignaledFence) Wait()          {}

// patchBuffers is the shared, instanced patch vertex/index buffer pair every
// tessellated draw reuses, built once from tessellate.GeneratePatchBufferData
// and cached for the Facade's lifetime.
type patchBuffers struct {
	vertexBuf *wgpu.Buffer
	indexBuf  *wgpu.Buffer
}

// PatchBuffers returns the shared patch vertex/index buffers, building them
// on first use.
func (f *Facade) PatchBuffers() (vertexBuf, indexBuf *wgpu.Buffer) {
	if f.patchBuffers == nil {
		vertices, indices, _, _ := tessellate.GeneratePatchBufferData()
		vbuf := f.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "pls patch vertices",
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			Size:  uint64(len(vertices)) * uint64(unsafe.Sizeof(tessellate.PatchVertex{})),
		})
		f.Queue.WriteBuffer(vbuf, 0, safeish.SliceCast[[]byte](vertices))

		ibuf := f.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "pls patch indices",
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			Size:  uint64(len(indices)) * 2,
		})
		f.Queue.WriteBuffer(ibuf, 0, safeish.SliceCast[[]byte](indices))

		f.patchBuffers = &patchBuffers{vertexBuf: vbuf, indexBuf: ibuf}
	}
	return f.patchBuffers.vertexBuf, f.patchBuffers.indexBuf
}

func NewFacade(dev *wgpu.Device, queue *wgpu.Queue, maxPooledDescriptorSets int) *Facade {
	pools, err := lru.NewWithEvict[int, *DescriptorPool](maxPooledDescriptorSets, func(_ int, pool *DescriptorPool) {
		pool.sets = nil
	})
	if err != nil {
		panic(fmt.Sprintf("invalid descriptor pool capacity: %v", err))
	}
	return &Facade{
		Device:          dev,
		Queue:           queue,
		keyArena:        mem.NewArena(),
		descriptorPools: pools,
		resolve:         make(map[wgpu.TextureFormat]*resolvePipeline),
		targets:         make(map[uintptr]*RenderTargetAuxImages),
		retiredAux:      ring.New("retiredAux"),
	}
}

// Pipeline returns the cached render pipeline for key, building it with
// build if this is the first request for that key this engine lifetime.
func (f *Facade) Pipeline(key int64, build func() *wgpu.RenderPipeline) *wgpu.RenderPipeline {
	if p, ok := f.pipelines.Get(key); ok {
		return p
	}
	p := build()
	f.pipelines.Insert(f.keyArena, key, p)
	return p
}

// ShaderModule returns the cached shader module pair for key (draw-type ×
// interlock-mode × shader-features), building it with build on first use.
func (f *Facade) ShaderModule(key int64, build func() *wgpu.ShaderModule) *wgpu.ShaderModule {
	if m, ok := f.shaderModules.Get(key); ok {
		return m
	}
	m := build()
	f.shaderModules.Insert(f.keyArena, key, m)
	return m
}

// AcquireDescriptorPool returns a per-frame descriptor pool for slot,
// drawing from the bounded LRU free list.
func (f *Facade) AcquireDescriptorPool(slot int) *DescriptorPool {
	if p, ok := f.descriptorPools.Get(slot); ok {
		p.Reset()
		return p
	}
	p := &DescriptorPool{}
	f.descriptorPools.Add(slot, p)
	return p
}

// ResolvePipeline returns the atomic-resolve pipeline for format, building
// it on first use.
func (f *Facade) ResolvePipeline(format wgpu.TextureFormat) *resolvePipeline {
	if p, ok := f.resolve[format]; ok {
		return p
	}
	p := newResolvePipeline(f.Device, format)
	f.resolve[format] = p
	return p
}

// SyncRenderTarget ensures target's auxiliary images exist at (width,
// height), recreating them if the target's size changed since the last
// flush, per §4.5 step 4 ("render target sync").
func (f *Facade) SyncRenderTarget(target uintptr, width, height uint32, mode InterlockMode) *RenderTargetAuxImages {
	aux, ok := f.targets[target]
	if ok && aux.Coverage != nil && aux.Coverage.width == width && aux.Coverage.height == height {
		return aux
	}
	if ok {
		// The old aux set may still be referenced by GPU work from flushes
		// submitted before this resize; drop it only after KBufferRingSize
		// further resizes, since the ring advances once per resize.
		f.retiredAux.DeferRelease(aux)
		f.retiredAux.SetCurrentFence(alwaysSignaledFence{})
	}
	aux = &RenderTargetAuxImages{
		Coverage: newAuxImage(f.Device, width, height, wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding, wgpu.TextureFormatR32Uint, "pls coverage"),
		Clip:     newAuxImage(f.Device, width, height, wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding, wgpu.TextureFormatR32Uint, "pls clip"),
		Scratch:  newAuxImage(f.Device, width, height, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding, wgpu.TextureFormatRGBA8Unorm, "pls scratch color"),
	}
	if mode == Atomics {
		aux.AtomicCoverage = newAuxImage(f.Device, width, height, wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding, wgpu.TextureFormatR32Uint, "pls atomic coverage")
	}
	f.targets[target] = aux
	return aux
}
