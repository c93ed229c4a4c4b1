// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package drawobj

import (
	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/jmath"
)

// imageRef is a shared, ref-counted handle to a decoded image texture. It
// is the thing releaseRefs actually decrements; multiple draws (and future
// frames, if the client caches decoded textures) may point at the same
// imageRef.
type imageRef struct {
	image    *gfx.Image
	refCount *int32
}

func newImageRef(img *gfx.Image) imageRef {
	rc := int32(1)
	return imageRef{image: img, refCount: &rc}
}

func (r imageRef) retain() imageRef {
	if r.refCount != nil {
		*r.refCount++
	}
	return r
}

func (r imageRef) release() {
	if r.refCount != nil {
		*r.refCount--
	}
}

// ImageRectDraw draws a decoded image texture into an axis-aligned
// destination rectangle.
type ImageRectDraw struct {
	base
	img   imageRef
	alpha float32
}

func NewImageRectDraw(list *DrawList, img *gfx.Image, t jmath.Transform, bounds [4]int32, alpha float32, blend gfx.BlendMode, clipID uint32) *ImageRectDraw {
	return &ImageRectDraw{
		base: base{
			bounds:    bounds,
			transform: t,
			blend:     blend,
			clipID:    clipID,
			brush:     gfx.ImageBrush{Image: *img},
		},
		img:   list.imageRefFor(img),
		alpha: alpha,
	}
}

func (d *ImageRectDraw) Variant() Variant { return ImageRect }

func (d *ImageRectDraw) ResourceCounts() ResourceCounters {
	return ResourceCounters{PathCount: 1, ImageDrawCount: 1}
}

func (d *ImageRectDraw) AllocateGradientIfNeeded(ctx RenderContext, counters *ResourceCounters) bool {
	return true
}

func (d *ImageRectDraw) PushToRenderContext(ctx RenderContext) {
	ctx.AcquireImageDescriptor(d.img.image)
	paintIndex := ctx.AppendPaint(PaintRecord{Kind: paintKindImage, SolidColor: [4]float32{1, 1, 1, d.alpha}})
	ctx.AppendPath(PathRecord{
		Transform:  d.transform,
		ClipID:     d.clipID,
		BlendMode:  uint32(d.blend.Mix)<<8 | uint32(d.blend.Compose),
		PaintIndex: paintIndex,
	})
}

func (d *ImageRectDraw) ReleaseRefs() {
	d.img.release()
	d.base.releaseRefs()
}

// ImageMeshDraw draws a decoded image texture warped across an arbitrary
// triangle mesh with per-vertex UVs — the shape used for e.g. mesh-warp
// deformation of a source image.
type ImageMeshDraw struct {
	base
	img      imageRef
	vertices []float32 // interleaved x,y
	uvs      []float32 // interleaved u,v
	indices  []uint16
	alpha    float32
}

func NewImageMeshDraw(list *DrawList, img *gfx.Image, t jmath.Transform, bounds [4]int32, vertices, uvs []float32, indices []uint16, alpha float32, blend gfx.BlendMode, clipID uint32) *ImageMeshDraw {
	return &ImageMeshDraw{
		base: base{
			bounds:    bounds,
			transform: t,
			blend:     blend,
			clipID:    clipID,
			brush:     gfx.ImageBrush{Image: *img},
		},
		img:      list.imageRefFor(img),
		vertices: vertices,
		uvs:      uvs,
		indices:  indices,
		alpha:    alpha,
	}
}

func (d *ImageMeshDraw) Variant() Variant { return ImageMesh }

func (d *ImageMeshDraw) ElementCount() int { return len(d.indices) }

func (d *ImageMeshDraw) ResourceCounts() ResourceCounters {
	return ResourceCounters{
		PathCount:       1,
		ImageDrawCount:  1,
		MeshVertexCount: uint32(len(d.vertices) / 2),
		MeshIndexCount:  uint32(d.ElementCount()),
	}
}

func (d *ImageMeshDraw) AllocateGradientIfNeeded(ctx RenderContext, counters *ResourceCounters) bool {
	return true
}

func (d *ImageMeshDraw) PushToRenderContext(ctx RenderContext) {
	// The image texture's descriptor set is allocated at most once per
	// frame regardless of how many mesh draws reference it; AcquireImageDescriptor
	// enforces that by returning false on every call after the first.
	ctx.AcquireImageDescriptor(d.img.image)
	paintIndex := ctx.AppendPaint(PaintRecord{Kind: paintKindImage, SolidColor: [4]float32{1, 1, 1, d.alpha}})
	pathIndex := ctx.AppendPath(PathRecord{
		Transform:  d.transform,
		ClipID:     d.clipID,
		BlendMode:  uint32(d.blend.Mix)<<8 | uint32(d.blend.Compose),
		PaintIndex: paintIndex,
	})
	ctx.AppendImageMesh(pathIndex, d.vertices, d.uvs, d.indices)
}

func (d *ImageMeshDraw) ReleaseRefs() {
	d.img.release()
	d.base.releaseRefs()
}
