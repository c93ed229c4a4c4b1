// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package backend implements the graphics-API facade: PLS activation policy
// per interlock mode, render-pass/pipeline caching, and descriptor-set
// pooling. The flush engine and the root package also import
// honnef.co/go/wgpu for the encoder, buffer and texture types they pass in.
package backend

import "github.com/inkstone-gfx/pls/ring"

// Resettable is anything a free list can hand back out after the GPU work
// referencing it has completed — a descriptor pool whose sets get reused,
// a query set whose timestamps get overwritten, and so on.
type Resettable interface {
	Reset()
}

type pendingRelease[T Resettable] struct {
	value T
	fence ring.Fence
}

// FreeList is a fence-gated pool of reusable GPU-side objects, grounded on
// the GPU profiler's own query-set/resolve-buffer/map-buffer free lists.
// Release defers an object's return to the free list until the fence
// supplied at release time has signaled: an object is returned to the free
// list when its last reference drops, but not reused until the
// frame-completion fence signals.
type FreeList[T Resettable] struct {
	newFn   func() T
	free    []T
	pending []pendingRelease[T]
}

func NewFreeList[T Resettable](newFn func() T) *FreeList[T] {
	return &FreeList[T]{newFn: newFn}
}

// Acquire returns a free object, reusing one from the pool if available
// (Reclaim has already reset it), or constructing a fresh one otherwise.
func (p *FreeList[T]) Acquire() T {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		return v
	}
	return p.newFn()
}

// Release schedules value to return to the free list once fence signals.
func (p *FreeList[T]) Release(value T, fence ring.Fence) {
	p.pending = append(p.pending, pendingRelease[T]{value, fence})
}

// Reclaim moves every pending release whose fence has signaled back onto
// the free list, resetting it first. Call once per flush.
func (p *FreeList[T]) Reclaim() {
	live := p.pending[:0]
	for _, pr := range p.pending {
		if pr.fence.Signaled() {
			pr.value.Reset()
			p.free = append(p.free, pr.value)
		} else {
			live = append(live, pr)
		}
	}
	p.pending = live
}

// Len reports how many objects are immediately available without
// allocating.
func (p *FreeList[T]) Len() int { return len(p.free) }

// Pending reports how many objects are awaiting their fence.
func (p *FreeList[T]) Pending() int { return len(p.pending) }
