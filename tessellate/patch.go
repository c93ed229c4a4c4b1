// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tessellate

import "structs"

// PatchType selects which of the two patch geometries a tessellation span
// contributes to: a midpoint fan (used by the general midpoint-fan plan) or
// an outer curve strip ending in a one-segment bowtie join (used by the
// interior-triangulation plan's outer border).
type PatchType int

const (
	MidpointFanPatch PatchType = iota
	OuterCurvePatch
)

// kMidpointFanPatchSegmentSpan and kOuterCurvePatchSegmentSpan bound how
// many tessellated segments a single GPU patch instance covers. Both must
// be powers of two (kOuterCurvePatchSegmentSpan minus its trailing bowtie
// join segment), since the triangle fan is built middle-out by repeated
// doubling.
const (
	kMidpointFanPatchSegmentSpan    = 8
	kOuterCurvePatchSegmentSpan     = 17
	kJoinSegmentCount               = 1
	kPatchSegmentCountExcludingJoin = kOuterCurvePatchSegmentSpan - kJoinSegmentCount
)

// PatchVertex is a single vertex of the reusable, instanced patch geometry.
// LocalIndex/OuterOrInner/Fan select where on the patch template this
// vertex sits; Params packs the patch's segment span and vertex-role tag so
// the vertex shader can reconstruct tessellation-texture coordinates.
type PatchVertex struct {
	_ structs.HostLayout

	LocalIndex   float32
	OuterOrInner float32
	FanBlend     float32
	Params       float32

	MirroredLocalIndex   float32
	MirroredOuterOrInner float32
	MirroredFanBlend     float32
}

const (
	strokeVertex      = 0
	fanVertex         = 1
	fanMidpointVertex = 2
)

func packParams(patchSegmentSpan int, vertexType int) float32 {
	return float32((patchSegmentSpan << 2) | vertexType)
}

var borderPattern = [6]uint16{0, 1, 2, 2, 1, 3}
var negativeBorderPattern = [6]uint16{0, 2, 1, 1, 2, 3}

// generatePatch appends the vertex/index template for one patch type to
// vertices/indices, offsetting indices by baseVertex. It is a direct port
// of generate_buffer_data_for_patch_type from Rive's PLS renderer.
func generatePatch(patchType PatchType, baseVertex uint16, vertices []PatchVertex, indices []uint16) ([]PatchVertex, []uint16) {
	patchSegmentSpan := kMidpointFanPatchSegmentSpan
	if patchType == OuterCurvePatch {
		patchSegmentSpan = kOuterCurvePatchSegmentSpan
	}

	borderStart := len(vertices)
	for i := 0; i < patchSegmentSpan; i++ {
		params := packParams(patchSegmentSpan, strokeVertex)
		l := float32(i)
		r := l + 1
		if patchType == OuterCurvePatch {
			vertices = append(vertices,
				PatchVertex{l, 0, .5, params, r, 0, .5},
				PatchVertex{l, 1, .0, params, l, 0, .5},
				PatchVertex{r, 0, .5, params, r, 1, .0},
				PatchVertex{r, 1, .0, params, l, 1, .0},
			)
		} else {
			vertices = append(vertices,
				PatchVertex{l, -1, 1, params, r - 1, -1, 1},
				PatchVertex{l, +1, 0, params, l - 1, -1, 1},
				PatchVertex{r, -1, 1, params, r - 1, +1, 0},
				PatchVertex{r, +1, 0, params, l - 1, +1, 0},
			)
		}
	}

	if patchType == OuterCurvePatch {
		params := packParams(patchSegmentSpan, strokeVertex)
		for i := 0; i < patchSegmentSpan; i++ {
			l := float32(i)
			r := l + 1
			vertices = append(vertices,
				PatchVertex{l, -.0, .5, params, r, -0, .5},
				PatchVertex{r, -.0, .5, params, r, -1, .0},
				PatchVertex{l, -1, .0, params, l, -0, .5},
				PatchVertex{r, -1, .0, params, l, -1, .0},
			)
		}
	}

	fanVerticesIdx := len(vertices)
	fanSegmentSpan := patchSegmentSpan
	if patchType == OuterCurvePatch {
		fanSegmentSpan = patchSegmentSpan - 1
	}
	if fanSegmentSpan&(fanSegmentSpan-1) != 0 {
		panic("fan span must be a power of two")
	}
	for i := 0; i <= fanSegmentSpan; i++ {
		params := packParams(patchSegmentSpan, fanVertex)
		if patchType == OuterCurvePatch {
			vertices = append(vertices, PatchVertex{float32(i), 0, 1, params, 0, 0, 0})
		} else {
			vertices = append(vertices, PatchVertex{float32(i), -1, 1, params, float32(i) - 1, -1, 1})
		}
	}

	midpointIdx := len(vertices)
	if patchType == MidpointFanPatch {
		vertices = append(vertices, PatchVertex{0, 0, 1, packParams(patchSegmentSpan, fanMidpointVertex), 0, 0, 0})
	}

	const borderPatternVertexCount = 4
	borderEdgeVerticesIdx := borderStart
	for seg := 0; seg < patchSegmentSpan; seg++ {
		for _, off := range borderPattern {
			indices = append(indices, baseVertex+uint16(borderEdgeVerticesIdx-borderStart)+off)
		}
		borderEdgeVerticesIdx += borderPatternVertexCount
	}
	if patchType == OuterCurvePatch {
		for seg := 0; seg < patchSegmentSpan; seg++ {
			for _, off := range negativeBorderPattern {
				indices = append(indices, baseVertex+uint16(borderEdgeVerticesIdx-borderStart)+off)
			}
			borderEdgeVerticesIdx += borderPatternVertexCount
		}
	}

	for step := 1; step < fanSegmentSpan; step <<= 1 {
		for i := 0; i < fanSegmentSpan; i += step * 2 {
			indices = append(indices,
				baseVertex+uint16(fanVerticesIdx-borderStart+i),
				baseVertex+uint16(fanVerticesIdx-borderStart+i+step),
				baseVertex+uint16(fanVerticesIdx-borderStart+i+step*2),
			)
		}
	}
	if patchType == MidpointFanPatch {
		indices = append(indices,
			baseVertex+uint16(fanVerticesIdx-borderStart),
			baseVertex+uint16(fanVerticesIdx-borderStart+fanSegmentSpan),
			baseVertex+uint16(midpointIdx-borderStart),
		)
	}

	return vertices, indices
}

// GeneratePatchBufferData builds the two instanced patch templates (midpoint
// fan, then outer curve) that every tessellated draw reuses. It is computed
// once at startup and uploaded to a static vertex/index buffer pair.
func GeneratePatchBufferData() (vertices []PatchVertex, indices []uint16, midpointFanVertexCount, midpointFanIndexCount int) {
	vertices, indices = generatePatch(MidpointFanPatch, 0, nil, nil)
	midpointFanVertexCount = len(vertices)
	midpointFanIndexCount = len(indices)
	vertices, indices = generatePatch(OuterCurvePatch, uint16(midpointFanVertexCount), vertices, indices)
	return
}

// PatchIndexCount returns how many indices in the shared patch index buffer
// belong to patchType's template.
func PatchIndexCount(patchType PatchType) int {
	_, indices, midVC, midIC := GeneratePatchBufferData()
	_ = midVC
	if patchType == MidpointFanPatch {
		return midIC
	}
	return len(indices) - midIC
}

// PatchBaseIndex returns the starting index, within the shared patch index
// buffer, of patchType's template.
func PatchBaseIndex(patchType PatchType) int {
	if patchType == MidpointFanPatch {
		return 0
	}
	_, _, _, midIC := GeneratePatchBufferData()
	return midIC
}

// MaxCurveSubdivisions bounds how many outerCurve patches a single cubic can
// be chopped into, given a maximum parametric segment count produced by
// Wang's formula.
func MaxCurveSubdivisions(maxParametricSegments int) int {
	return (maxParametricSegments + kPatchSegmentCountExcludingJoin - 1) / kPatchSegmentCountExcludingJoin
}

// SubdivisionCountForCubic converts a Wang's-formula segment estimate into a
// clamped count of outerCurve patches, mirroring FindSubdivisionCount.
func SubdivisionCountForCubic(wangsSegments float64, maxParametricSegments int) int {
	n := int(wangsSegments) / kPatchSegmentCountExcludingJoin
	if int(wangsSegments)%kPatchSegmentCountExcludingJoin != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	if max := MaxCurveSubdivisions(maxParametricSegments); n > max {
		n = max
	}
	return n
}
