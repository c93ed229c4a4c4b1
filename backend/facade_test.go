package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
	"honnef.co/go/wgpu"
)

func TestRenderPassVariantIsStableAndBounded(t *testing.T) {
	seen := make(map[int]bool)
	for _, format := range []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm} {
		for _, load := range []LoadAction{PreserveRenderTarget, ClearLoad, DontCare} {
			v := RenderPassVariant(format, load)
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, renderPassVariantCount)
			require.False(t, seen[v], "variant key collision")
			seen[v] = true
		}
	}
	require.Len(t, seen, renderPassVariantCount)
}

func TestPipelineKeyDistinguishesVariants(t *testing.T) {
	k1 := PipelineKey(42, 0, 4, 0)
	k2 := PipelineKey(42, 0, 4, 1)
	require.NotEqual(t, k1, k2)

	k3 := PipelineKey(42, 1, 4, 0)
	require.NotEqual(t, k1, k3)
}

func TestPipelineKeyDeterministic(t *testing.T) {
	require.Equal(t, PipelineKey(7, 2, 4, 3), PipelineKey(7, 2, 4, 3))
}
