// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package flush

import (
	"fmt"

	"honnef.co/go/wgpu"

	"github.com/inkstone-gfx/pls/backend"
	"github.com/inkstone-gfx/pls/drawobj"
	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/gradient"
	"github.com/inkstone-gfx/pls/mem"
	"github.com/inkstone-gfx/pls/ring"
	"github.com/inkstone-gfx/pls/tessellate"
)

// kBufferRingSize mirrors ring.KBufferRingSize; kept as its own name here
// because it appears in this package's doc comments independently of the
// ring package's own documentation.
const kBufferRingSize = ring.KBufferRingSize

// Engine is the Flush Engine: it owns the per-category ring buffers the
// client's Draw Objects write into, the gradient cache, and the backend
// facade that turns a drained draw list into submitted GPU command
// buffers. It implements drawobj.RenderContext, so Draw Objects push
// directly into its staging buffers during the accumulation walk.
type Engine struct {
	facade *backend.Facade
	grads  *gradient.Cache

	pathRing     *ring.Ring
	contourRing  *ring.Ring
	paintRing    *ring.Ring
	tessSpanRing *ring.Ring
	triangleRing *ring.Ring

	paths     []drawobj.PathRecord
	contours  []tessellate.ContourInfo
	paints    []drawobj.PaintRecord
	spans     []drawobj.TessVertexSpan
	triangles []float32

	// meshVertices/meshUVs/meshIndices accumulate every image-mesh draw's
	// geometry into three shared buffers for the flush, and meshBatches
	// records where each path's slice landed so the main draw pass can bind
	// and issue an indexed draw for it.
	meshVertices []float32
	meshUVs      []float32
	meshIndices  []uint16
	meshBatches  map[uint32]meshBatch

	descriptorAllocated map[*gfx.Image]bool

	profiler *backend.Profiler
	// arena backs small per-flush scratch allocations (profiler timestamp
	// write descriptors); it is reset at the end of every Submit.
	arena *mem.Arena
}

// New constructs a Flush Engine bound to facade, with a gradient texture of
// the given row height.
func New(facade *backend.Facade, gradientTextureHeight uint32) *Engine {
	return &Engine{
		facade:              facade,
		grads:               gradient.NewCache(gradientTextureHeight),
		pathRing:            ring.New("paths"),
		contourRing:         ring.New("contours"),
		paintRing:           ring.New("paints"),
		tessSpanRing:        ring.New("tessSpans"),
		triangleRing:        ring.New("triangles"),
		meshBatches:         make(map[uint32]meshBatch),
		descriptorAllocated: make(map[*gfx.Image]bool),
		profiler:            backend.NewProfiler(facade.Device),
		arena:               mem.NewArena(),
	}
}

// meshBatch is one image-mesh draw's slice of the flush's shared mesh
// vertex/uv/index buffers, keyed by the path index AppendPath returned for
// that draw.
type meshBatch struct {
	vertexOffset uint32
	indexOffset  uint32
	elementCount uint32
}

func (e *Engine) Gradients() *gradient.Cache { return e.grads }

func (e *Engine) AcquireImageDescriptor(img *gfx.Image) bool {
	if e.descriptorAllocated[img] {
		return false
	}
	e.descriptorAllocated[img] = true
	return true
}

func (e *Engine) AppendPath(rec drawobj.PathRecord) uint32 {
	e.paths = append(e.paths, rec)
	return uint32(len(e.paths) - 1)
}

func (e *Engine) AppendContour(rec tessellate.ContourInfo) uint32 {
	e.contours = append(e.contours, rec)
	return uint32(len(e.contours) - 1)
}

func (e *Engine) AppendPaint(rec drawobj.PaintRecord) uint32 {
	e.paints = append(e.paints, rec)
	return uint32(len(e.paints) - 1)
}

func (e *Engine) AppendTessVertexSpan(span drawobj.TessVertexSpan) uint32 {
	e.spans = append(e.spans, span)
	return uint32(len(e.spans) - 1)
}

func (e *Engine) AppendTriangleVertices(vertices []float32) {
	e.triangles = append(e.triangles, vertices...)
}

func (e *Engine) AppendImageMesh(pathIndex uint32, vertices, uvs []float32, indices []uint16) {
	vertexOffset := uint32(len(e.meshVertices) / 2)
	indexOffset := uint32(len(e.meshIndices))
	e.meshVertices = append(e.meshVertices, vertices...)
	e.meshUVs = append(e.meshUVs, uvs...)
	e.meshIndices = append(e.meshIndices, indices...)
	e.meshBatches[pathIndex] = meshBatch{
		vertexOffset: vertexOffset,
		indexOffset:  indexOffset,
		elementCount: uint32(len(indices)),
	}
}

// resetStaging clears the CPU-side accumulation buffers between flushes
// (including partial ones). The per-frame image-descriptor bookkeeping is
// cleared by Submit only after the frame's final flush.
func (e *Engine) resetStaging() {
	e.paths = e.paths[:0]
	e.contours = e.contours[:0]
	e.paints = e.paints[:0]
	e.spans = e.spans[:0]
	e.triangles = e.triangles[:0]
	e.meshVertices = e.meshVertices[:0]
	e.meshUVs = e.meshUVs[:0]
	e.meshIndices = e.meshIndices[:0]
	clear(e.meshBatches)
}

// ErrGradientTextureFull is returned internally when a draw's gradient
// would not fit even immediately after a partial-flush retry — it should
// only happen if a single draw's gradient is larger than the whole
// texture, which is a caller error (oversized gradient, undersized
// texture), not a recoverable condition.
var ErrGradientTextureFull = fmt.Errorf("drawobj: gradient does not fit even in an empty gradient texture")

// Drain walks list, accumulating every draw's records into the engine's
// staging buffers and, when the gradient texture fills mid-walk, issuing a
// partial flush of everything accumulated so far before continuing. It
// returns once every draw in list has been pushed, having issued zero or
// more GPU submissions along the way. The final flush (the one that
// actually attaches a frame-completion fence, if final is true) is left to
// the caller via Submit. Under backend.DepthStencil it returns nil at once,
// without pushing any draw or submitting any work.
func (e *Engine) Drain(target RenderTarget, desc Descriptor, list *drawobj.DrawList, final bool) error {
	if desc.InterlockMode == backend.DepthStencil {
		return nil
	}
	desc.AdvancedBlendEnabled = list.HasAdvancedBlend()
	draws := list.Draws()
	i := 0
	for i < len(draws) {
		d := draws[i]
		counters := d.ResourceCounts()
		if !d.AllocateGradientIfNeeded(e, &counters) {
			if len(e.paths) == 0 {
				// Nothing accumulated yet and the very first draw's
				// gradient doesn't fit: no partial flush can help.
				return ErrGradientTextureFull
			}
			partial := desc
			partial.IsFinalFlushOfFrame = false
			if err := e.Submit(target, partial); err != nil {
				return err
			}
			e.grads.Reset()
			continue // retry draws[i] against the now-empty gradient cache
		}
		d.PushToRenderContext(e)
		i++
	}

	desc.IsFinalFlushOfFrame = final
	return e.Submit(target, desc)
}

// Submit runs the seven-step per-flush state machine against whatever is
// currently staged, then resets staging for the next (partial or full)
// flush.
func (e *Engine) Submit(target RenderTarget, desc Descriptor) error {
	defer e.resetStaging()
	defer e.arena.Reset()

	pgroup := e.profiler.Start(uint64(target.ID))
	defer pgroup.End()

	enc := e.facade.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "pls flush"})
	defer enc.Release()

	e.runGradientPass(enc, pgroup, desc)
	e.runTessellationPass(enc, pgroup, desc)
	e.syncImageTextures(enc, pgroup)
	aux := e.facade.SyncRenderTarget(target.ID, target.Width, target.Height, desc.InterlockMode)
	e.runMainDrawPass(enc, pgroup, target, aux, desc)
	if desc.InterlockMode == backend.Atomics {
		e.runResolvePass(enc, pgroup, target, aux, desc)
	}

	cmd := enc.Finish(nil)
	defer cmd.Release()
	e.facade.Queue.Submit(cmd)

	if desc.IsFinalFlushOfFrame {
		clear(e.descriptorAllocated)
		e.pathRing.SetCurrentFence(submissionFence{})
		e.contourRing.SetCurrentFence(submissionFence{})
		e.paintRing.SetCurrentFence(submissionFence{})
		e.tessSpanRing.SetCurrentFence(submissionFence{})
		e.triangleRing.SetCurrentFence(submissionFence{})
		if desc.FrameCompletionFence != nil {
			close(desc.FrameCompletionFence)
		}
	}
	return nil
}

// submissionFence is a Fence that is already signaled by the time Go
// regains control: wgpu.Queue.Submit does not hand back a future the way a
// Vulkan fence would, so the ring's recycle-on-next-use policy is the
// actual backpressure mechanism; PrepareToMapBuffers still calls Wait
// defensively before every map.
type submissionFence struct{}

func (submissionFence) Signaled() bool { return true }
func (submissionFence) Wait()          {}
