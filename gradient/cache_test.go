package gradient

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkstone-gfx/pls/gfx"
)

func stops(offsets ...float32) []gfx.ColorStop {
	out := make([]gfx.ColorStop, len(offsets))
	for i, o := range offsets {
		out[i] = gfx.ColorStop{Offset: o, Color: gfx.RGBA(float32(i)/float32(len(offsets)), 0, 0, 1)}
	}
	return out
}

func TestAllocateSimpleRamp(t *testing.T) {
	c := NewCache(4)
	rec, ok := c.Allocate(stops(0, 1))
	require.True(t, ok)
	require.True(t, rec.Simple)
	require.Equal(t, uint32(0), rec.Row)
	require.Len(t, c.SimpleRampData(), 16)
}

func TestAllocateComplexRamp(t *testing.T) {
	c := NewCache(4)
	rec, ok := c.Allocate(stops(0, 0.5, 1))
	require.True(t, ok)
	require.False(t, rec.Simple)
	require.Len(t, c.ComplexSpans(), 2)
}

func TestAllocateReusesIdenticalStops(t *testing.T) {
	c := NewCache(4)
	s := stops(0, 1)
	rec1, ok := c.Allocate(s)
	require.True(t, ok)
	rec2, ok := c.Allocate(s)
	require.True(t, ok)
	require.Equal(t, rec1.Row, rec2.Row)
	require.Equal(t, uint32(1), c.RowsUsed())
}

func TestAllocateSignalsFullInsteadOfEvicting(t *testing.T) {
	c := NewCache(2)
	_, ok := c.Allocate(stops(0, 1))
	require.True(t, ok)
	_, ok = c.Allocate(stops(0, 0.5, 1))
	require.True(t, ok)
	_, ok = c.Allocate(stops(0, 0.25, 1))
	require.False(t, ok, "cache should signal full rather than evict")

	c.Reset()
	rec, ok := c.Allocate(stops(0, 0.25, 1))
	require.True(t, ok)
	require.Equal(t, uint32(0), rec.Row)
}
