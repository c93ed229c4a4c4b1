package tessellate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkstone-gfx/pls/jmath"
)

func TestChooseStrategySmallPathUsesMidpointFan(t *testing.T) {
	bounds := [4]float32{0, 0, 10, 10}
	kind := ChooseStrategy(bounds, jmath.Identity, 1, false)
	require.Equal(t, MidpointFanPlan, kind)
}

func TestChooseStrategyLargeSimplePathUsesInteriorTriangulation(t *testing.T) {
	bounds := [4]float32{0, 0, 1000, 1000}
	kind := ChooseStrategy(bounds, jmath.Identity, 1, false)
	require.Equal(t, InteriorTriangulationPlan, kind)
}

func TestChooseStrategyStrokeAlwaysMidpointFan(t *testing.T) {
	bounds := [4]float32{0, 0, 1000, 1000}
	kind := ChooseStrategy(bounds, jmath.Identity, 1, true)
	require.Equal(t, MidpointFanPlan, kind)
}

func TestChooseStrategyManyContoursUsesMidpointFan(t *testing.T) {
	bounds := [4]float32{0, 0, 1000, 1000}
	kind := ChooseStrategy(bounds, jmath.Identity, contourCountThreshold+1, false)
	require.Equal(t, MidpointFanPlan, kind)
}

func TestFindTransformedAreaIdentity(t *testing.T) {
	area := FindTransformedArea([4]float32{0, 0, 10, 20}, jmath.Identity)
	require.InDelta(t, 200, area, 0.001)
}

func TestGeneratePatchBufferDataCounts(t *testing.T) {
	vertices, indices, midVC, midIC := GeneratePatchBufferData()
	require.NotEmpty(t, vertices)
	require.NotEmpty(t, indices)
	require.Less(t, midVC, len(vertices))
	require.Less(t, midIC, len(indices))
	// Every index must reference a valid vertex.
	for _, idx := range indices {
		require.Less(t, int(idx), len(vertices))
	}
}

func TestPatchIndexCountAndBaseIndexPartitionTheSharedBuffer(t *testing.T) {
	_, indices, _, _ := GeneratePatchBufferData()

	require.Equal(t, 0, PatchBaseIndex(MidpointFanPatch))
	midCount := PatchIndexCount(MidpointFanPatch)
	outerBase := PatchBaseIndex(OuterCurvePatch)
	outerCount := PatchIndexCount(OuterCurvePatch)

	require.Equal(t, midCount, outerBase)
	require.Equal(t, len(indices), midCount+outerCount)
}

func TestNumPatchesForSpan(t *testing.T) {
	require.Equal(t, 1, numPatchesForSpan(1, 8))
	require.Equal(t, 1, numPatchesForSpan(8, 8))
	require.Equal(t, 2, numPatchesForSpan(9, 8))
}
