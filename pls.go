// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package pls is the client-facing façade over the PLS render pipeline: it
// owns the backend facade, the flush engine, and the current frame's draw
// list, and exposes the four operations a client drives a frame with —
// MakeRenderBuffer, DecodeImageTexture, EnqueueDraw and Flush.
package pls

import (
	"log/slog"

	"honnef.co/go/wgpu"

	"github.com/inkstone-gfx/pls/backend"
	"github.com/inkstone-gfx/pls/drawobj"
	"github.com/inkstone-gfx/pls/flush"
	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/imagetex"
	"github.com/inkstone-gfx/pls/ring"
)

// BufferType selects which ring a MakeRenderBuffer call draws from.
type BufferType int

const (
	IndexBuffer BufferType = iota
	VertexBuffer
)

// BufferFlags are reserved for future mapping hints (e.g. read-back); the
// core engine does not currently interpret any bits.
type BufferFlags uint32

// RenderBuffer is a client handle onto one of the engine's rings: Map
// blocks on the current slot's fence if necessary and returns that slot's
// mapped bytes. Map does not advance the ring; the ring moves to its next
// slot only when SetCurrentFence is called on it.
type RenderBuffer struct {
	kind BufferType
	r    *ring.Ring
}

func (b *RenderBuffer) Map(size int) []byte {
	b.r.PrepareToMapBuffers()
	return b.r.Map(size)
}

// Renderer is the top-level client object: one per swapchain/surface, it
// owns a backend facade, a flush engine, and the frame-scoped draw list
// clients enqueue into between flushes.
type Renderer struct {
	facade *backend.Facade
	engine *flush.Engine
	draws  *drawobj.DrawList

	indexRing  *ring.Ring
	vertexRing *ring.Ring

	log *slog.Logger
}

// RendererOptions configures a new Renderer.
type RendererOptions struct {
	GradientTextureHeight   uint32
	MaxPooledDescriptorSets int
	Logger                  *slog.Logger
}

// NewRenderer constructs a Renderer bound to dev/queue, with its own flush
// engine and frame-scoped draw list.
func NewRenderer(dev *wgpu.Device, queue *wgpu.Queue, options RendererOptions) *Renderer {
	log := options.Logger
	if log == nil {
		log = slog.Default()
	}
	facade := backend.NewFacade(dev, queue, options.MaxPooledDescriptorSets)
	return &Renderer{
		facade:     facade,
		engine:     flush.New(facade, options.GradientTextureHeight),
		draws:      drawobj.NewDrawList(),
		indexRing:  ring.New("index"),
		vertexRing: ring.New("vertex"),
		log:        log,
	}
}

// MakeRenderBuffer returns a mappable buffer of the requested type; flags
// is currently unused but accepted for forward compatibility with the
// client API's signature.
func (r *Renderer) MakeRenderBuffer(kind BufferType, flags BufferFlags, size int) *RenderBuffer {
	ring := r.indexRing
	if kind == VertexBuffer {
		ring = r.vertexRing
	}
	buf := &RenderBuffer{kind: kind, r: ring}
	ring.PrepareToMapBuffers()
	ring.Map(size)
	return buf
}

// DecodeImageTexture decodes bytes into a gfx.Image, or returns nil if
// decoding fails. The image itself carries no reference count; draws that
// reference it share one through the draw list. On a nil return, per the
// ImageDecodeFailed error
// kind, the caller is expected to substitute a placeholder rather than
// treat this as fatal.
func (r *Renderer) DecodeImageTexture(data []byte) *gfx.Image {
	img, ok := imagetex.Decode(data)
	if !ok {
		r.log.Warn("pls: image decode failed, returning nil texture", "bytes", len(data))
		return nil
	}
	return img
}

// EnqueueDraw appends d to the current frame's draw list.
func (r *Renderer) EnqueueDraw(d drawobj.Object) {
	r.draws.Push(d)
}

// Flush drains the current frame's draw list through the flush engine
// against target, honoring desc's load action, interlock mode and
// completion-fence bookkeeping, then, when final is true, resets the draw
// list for the next frame. final marks this as the frame's last flush (the one that attaches
// desc.FrameCompletionFence, if set).
func (r *Renderer) Flush(target flush.RenderTarget, desc flush.Descriptor, final bool) error {
	desc.DrawList = r.draws
	if err := r.engine.Drain(target, desc, r.draws, final); err != nil {
		r.log.Error("pls: flush failed", "error", err, "interlockMode", desc.InterlockMode)
		return err
	}
	if final {
		r.draws.Reset()
	}
	return nil
}
