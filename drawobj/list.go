// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package drawobj

import (
	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/mem"
)

// DrawList is the frame-scoped, homogeneous container the client pushes
// Draw Objects into. Draws are ordinary heap objects, not allocated from the
// list's arena; Reset walks the list invoking ReleaseRefs on every entry
// before resetting the arena, so shared references (images, gradient
// stops) are always released deterministically, even if the frame never
// reached flush. It also tracks one shared imageRef per *gfx.Image
// referenced this frame, so two draws of the same decoded texture (e.g. a
// rect border built from several ImageRectDraws) share one ref count
// instead of each tracking the image independently.
type DrawList struct {
	arena  *mem.Arena
	draws  []Object
	images map[*gfx.Image]imageRef

	// hasAdvancedBlend tracks whether any pushed draw uses a non-Porter-Duff
	// blend mode, so the flush descriptor's post-clear barrier (§4.5 step 5)
	// can be gated without re-walking every draw at flush time.
	hasAdvancedBlend bool
}

func NewDrawList() *DrawList {
	return &DrawList{arena: mem.NewArena(), images: make(map[*gfx.Image]imageRef)}
}

// imageRefFor returns a shared imageRef for img: a retained handle onto the
// frame's existing reference if another draw already referenced img this
// frame, or a freshly minted one otherwise.
func (l *DrawList) imageRefFor(img *gfx.Image) imageRef {
	if ref, ok := l.images[img]; ok {
		return ref.retain()
	}
	ref := newImageRef(img)
	l.images[img] = ref
	return ref
}

// Arena returns the frame-scoped arena this list resets each frame. The
// draw constructors in this package do not allocate from it.
func (l *DrawList) Arena() *mem.Arena { return l.arena }

// Push appends d to the current frame's draw list.
func (l *DrawList) Push(d Object) {
	l.draws = append(l.draws, d)
	if d.BlendMode().IsAdvanced() {
		l.hasAdvancedBlend = true
	}
}

func (l *DrawList) Draws() []Object { return l.draws }

func (l *DrawList) Len() int { return len(l.draws) }

// HasAdvancedBlend reports whether any draw pushed this frame uses a
// non-Porter-Duff blend mode, for populating flush.Descriptor.AdvancedBlendEnabled.
func (l *DrawList) HasAdvancedBlend() bool { return l.hasAdvancedBlend }

// ResourceCounts sums ResourceCounts() across every draw pushed so far this
// frame.
func (l *DrawList) ResourceCounts() ResourceCounters {
	var total ResourceCounters
	for _, d := range l.draws {
		total = total.Add(d.ResourceCounts())
	}
	return total
}

// Reset releases every draw's shared references and reclaims the arena,
// readying the list for the next frame.
func (l *DrawList) Reset() {
	for _, d := range l.draws {
		d.ReleaseRefs()
	}
	l.draws = l.draws[:0]
	clear(l.images)
	l.hasAdvancedBlend = false
	l.arena.Reset()
}
