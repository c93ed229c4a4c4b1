package drawobj

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/gradient"
	"github.com/inkstone-gfx/pls/jmath"
	"github.com/inkstone-gfx/pls/tessellate"
)

func rectPath(x0, y0, x1, y1 float64) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		pts := []curve.Point{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		}
		if !yield(curve.PathElement{Kind: curve.MoveToKind, P0: pts[0]}) {
			return
		}
		for _, p := range pts[1:] {
			if !yield(curve.PathElement{Kind: curve.LineToKind, P0: p}) {
				return
			}
		}
		yield(curve.PathElement{Kind: curve.ClosePathKind})
	}
}

type meshBatch struct {
	pathIndex uint32
	vertices  []float32
	uvs       []float32
	indices   []uint16
}

// fakeContext is a minimal RenderContext used to exercise the push
// contract without a real flush engine.
type fakeContext struct {
	grads         *gradient.Cache
	paths         []PathRecord
	contours      []tessellate.ContourInfo
	paints        []PaintRecord
	spans         []TessVertexSpan
	triangles     []float32
	meshes        []meshBatch
	descriptorReq map[*gfx.Image]bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		grads:         gradient.NewCache(4),
		descriptorReq: make(map[*gfx.Image]bool),
	}
}

func (c *fakeContext) Gradients() *gradient.Cache { return c.grads }

func (c *fakeContext) AcquireImageDescriptor(img *gfx.Image) bool {
	if c.descriptorReq[img] {
		return false
	}
	c.descriptorReq[img] = true
	return true
}

func (c *fakeContext) AppendPath(rec PathRecord) uint32 {
	c.paths = append(c.paths, rec)
	return uint32(len(c.paths) - 1)
}

func (c *fakeContext) AppendContour(rec tessellate.ContourInfo) uint32 {
	c.contours = append(c.contours, rec)
	return uint32(len(c.contours) - 1)
}

func (c *fakeContext) AppendPaint(rec PaintRecord) uint32 {
	c.paints = append(c.paints, rec)
	return uint32(len(c.paints) - 1)
}

func (c *fakeContext) AppendTessVertexSpan(span TessVertexSpan) uint32 {
	c.spans = append(c.spans, span)
	return uint32(len(c.spans) - 1)
}

func (c *fakeContext) AppendTriangleVertices(vertices []float32) {
	c.triangles = append(c.triangles, vertices...)
}

func (c *fakeContext) AppendImageMesh(pathIndex uint32, vertices, uvs []float32, indices []uint16) {
	c.meshes = append(c.meshes, meshBatch{pathIndex, vertices, uvs, indices})
}

func TestPathDrawResourceCountsMatchPush(t *testing.T) {
	style := tessellate.StyleFromFill(gfx.NonZero)
	brush := gfx.SolidBrush{Color: gfx.RGBA(1, 0, 0, 1)}
	d := NewPathDraw(rectPath(0, 0, 10, 10), jmath.Identity, [4]int32{0, 0, 10, 10}, style, brush, gfx.BlendMode{}, 0)

	counts := d.ResourceCounts()
	require.Equal(t, MidpointFanPath, d.Variant())
	require.EqualValues(t, 1, counts.PathCount)
	require.True(t, counts.MidpointFanTessVertexCount > 0)

	ctx := newFakeContext()
	ok := d.AllocateGradientIfNeeded(ctx, &counts)
	require.True(t, ok)

	d.PushToRenderContext(ctx)
	require.Len(t, ctx.paths, 1)
	require.Len(t, ctx.contours, int(counts.ContourCount))

	var pushedSegments uint32
	for _, c := range ctx.contours {
		segs := c.ParametricSegmentCount
		if segs == 0 {
			segs = 1
		}
		pushedSegments += uint32(segs)
	}
	require.Equal(t, counts.TessellatedSegmentCount, pushedSegments)

	d.ReleaseRefs()
}

func TestPathDrawWithGradientBrushAllocatesComplexSpans(t *testing.T) {
	stops := []gfx.ColorStop{
		{Offset: 0, Color: gfx.RGBA(1, 0, 0, 1)},
		{Offset: 0.5, Color: gfx.RGBA(0, 1, 0, 1)},
		{Offset: 1, Color: gfx.RGBA(0, 0, 1, 1)},
	}
	brush := gfx.GradientBrush{Gradient: gfx.LinearGradient{Stops: stops}}
	style := tessellate.StyleFromFill(gfx.NonZero)
	d := NewPathDraw(rectPath(0, 0, 1000, 1000), jmath.Identity, [4]int32{0, 0, 1000, 1000}, style, brush, gfx.BlendMode{}, 0)

	counts := d.ResourceCounts()
	ctx := newFakeContext()
	ok := d.AllocateGradientIfNeeded(ctx, &counts)
	require.True(t, ok)
	require.EqualValues(t, len(stops)-1, counts.ComplexGradientSpanCount)
	require.Len(t, ctx.Gradients().ComplexSpans(), len(stops)-1)
}

func TestImageMeshDrawPushesMeshGeometry(t *testing.T) {
	list := NewDrawList()
	img := &gfx.Image{}
	vertices := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	uvs := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	indices := []uint16{0, 1, 2, 0, 2, 3}
	d := NewImageMeshDraw(list, img, jmath.Identity, [4]int32{0, 0, 1, 1}, vertices, uvs, indices, 1, gfx.BlendMode{}, 0)

	counts := d.ResourceCounts()
	require.EqualValues(t, 4, counts.MeshVertexCount)
	require.EqualValues(t, len(indices), counts.MeshIndexCount)

	ctx := newFakeContext()
	d.PushToRenderContext(ctx)
	require.Len(t, ctx.paths, 1)
	require.Len(t, ctx.meshes, 1)
	require.Equal(t, uint32(0), ctx.meshes[0].pathIndex)
	require.Equal(t, indices, ctx.meshes[0].indices)

	d.ReleaseRefs()
}

func TestImageDrawsSharingAnImageShareOneRefCount(t *testing.T) {
	list := NewDrawList()
	img := &gfx.Image{}
	a := NewImageRectDraw(list, img, jmath.Identity, [4]int32{0, 0, 1, 1}, 1, gfx.BlendMode{}, 0)
	b := NewImageRectDraw(list, img, jmath.Identity, [4]int32{1, 0, 2, 1}, 1, gfx.BlendMode{}, 0)
	require.EqualValues(t, 2, *a.img.refCount)
	require.Same(t, a.img.refCount, b.img.refCount)

	a.ReleaseRefs()
	require.EqualValues(t, 1, *b.img.refCount)
	b.ReleaseRefs()
	require.EqualValues(t, 0, *b.img.refCount)
}

func TestDrawListResetReleasesRefs(t *testing.T) {
	list := NewDrawList()
	style := tessellate.StyleFromFill(gfx.NonZero)
	brush := gfx.SolidBrush{Color: gfx.RGBA(0, 1, 0, 1)}
	d := NewPathDraw(rectPath(0, 0, 5, 5), jmath.Identity, [4]int32{0, 0, 5, 5}, style, brush, gfx.BlendMode{}, 0)
	list.Push(d)
	require.Equal(t, 1, list.Len())

	img := &gfx.Image{}
	imgDraw := NewImageRectDraw(list, img, jmath.Identity, [4]int32{0, 0, 5, 5}, 1, gfx.BlendMode{}, 0)
	list.Push(imgDraw)
	require.EqualValues(t, 1, *imgDraw.img.refCount)

	list.Reset()
	require.Equal(t, 0, list.Len())
	require.EqualValues(t, 0, *imgDraw.img.refCount)
}
