// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package ring implements the multi-frame GPU resource lifecycle: a ring of
// mapped buffers, one slot per in-flight frame, gated by per-slot
// completion fences, plus a purgatory for resources that must outlive the
// slot that last referenced them.
package ring

import "fmt"

// KBufferRingSize is the number of in-flight frame slots. It must be at
// least 2 so the CPU can be preparing slot N+1 while the GPU still reads
// slot N.
const KBufferRingSize = 3

// Fence reports whether GPU work that reads a ring slot has completed. The
// only CPU suspension point in the engine is Wait, called from
// PrepareToMapBuffers when the slot about to be reused hasn't signaled yet.
type Fence interface {
	Signaled() bool
	Wait()
}

// signaledFence is a Fence that has already completed; used to seed slots
// that have never been submitted to the GPU.
type signaledFence struct{}

func (signaledFence) Signaled() bool { return true }
func (signaledFence) Wait()          {}

// Buffer is a single mapped, resizable host-visible buffer backing one ring
// slot. Real backends replace Data with a persistently-mapped device
// allocation; the ring only needs byte-addressable storage and a capacity.
type Buffer struct {
	Data     []byte
	Capacity int
}

func (b *Buffer) ensure(size int) {
	if size <= b.Capacity {
		return
	}
	b.Data = make([]byte, size)
	b.Capacity = size
}

type deferredDeletion struct {
	resource  any
	freeAfter int // absolute slot generation after which this may be dropped
}

// Slot is one ring position: a buffer plus the fence that signals when the
// GPU has finished consuming the data written into it.
type Slot struct {
	Buffer Buffer
	Fence  Fence
}

// Ring cycles KBufferRingSize slots, fence-gating reuse and deferring the
// destruction of resources that a slot's in-flight GPU work might still
// reference. Generalized from a single compute-dispatch resource pool to
// the render-pass-oriented ring the flush engine needs.
type Ring struct {
	name       string
	slots      [KBufferRingSize]Slot
	cur        int
	generation int
	purgatory  []deferredDeletion
}

func New(name string) *Ring {
	r := &Ring{name: name}
	for i := range r.slots {
		r.slots[i].Fence = signaledFence{}
	}
	return r
}

// PrepareToMapBuffers blocks, if necessary, until the slot about to be
// (re)used has finished being consumed by the GPU. This is the engine's
// only CPU wait outside of shutdown.
func (r *Ring) PrepareToMapBuffers() {
	slot := &r.slots[r.cur]
	if !slot.Fence.Signaled() {
		slot.Fence.Wait()
	}
}

// Map returns the current slot's buffer, growing it to at least minSize
// bytes if needed. Callers must call PrepareToMapBuffers first.
func (r *Ring) Map(minSize int) []byte {
	slot := &r.slots[r.cur]
	slot.Buffer.ensure(minSize)
	return slot.Buffer.Data[:minSize]
}

// CurrentFence returns the fence guarding the slot currently mapped for
// writing, so a caller can attach it as a frame-completion fence.
func (r *Ring) CurrentFence() Fence { return r.slots[r.cur].Fence }

// SetCurrentFence installs the fence that will signal once the GPU has
// finished consuming the current slot's contents, then advances to the next
// slot for subsequent writes.
func (r *Ring) SetCurrentFence(f Fence) {
	r.slots[r.cur].Fence = f
	r.generation++
	r.cur = (r.cur + 1) % KBufferRingSize
	r.reclaimPurgatory()
}

// DeferRelease schedules resource to be considered free only once the
// current slot's in-flight GPU work has completed, matching the "purgatory"
// deferred-deletion policy for resources (descriptor sets, staging buffers)
// that a submitted command buffer may still reference.
func (r *Ring) DeferRelease(resource any) {
	r.purgatory = append(r.purgatory, deferredDeletion{resource, r.generation + KBufferRingSize})
}

func (r *Ring) reclaimPurgatory() {
	live := r.purgatory[:0]
	for _, d := range r.purgatory {
		if r.generation >= d.freeAfter {
			continue
		}
		live = append(live, d)
	}
	r.purgatory = live
}

func (r *Ring) String() string {
	return fmt.Sprintf("ring(%s, slot=%d, gen=%d, purgatory=%d)", r.name, r.cur, r.generation, len(r.purgatory))
}

// BufferSize computes the byte size of a buffer holding count elements of a
// fixed per-element size, aligned up to alignment. Grounded on the
// teacher's generic BufferSize[T] sizing helper in renderer/config.go,
// generalized here to a plain function since the ring's buffers are sized
// from run time draw counts rather than compile-time GPU struct layouts.
func BufferSize(count, elemSize, alignment int) int {
	size := count * elemSize
	if alignment <= 1 {
		return size
	}
	return (size + alignment - 1) &^ (alignment - 1)
}
