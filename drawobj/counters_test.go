package drawobj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceCountersAddSub(t *testing.T) {
	a := ResourceCounters{PathCount: 3, ContourCount: 5, ComplexGradientSpanCount: 2}
	b := ResourceCounters{PathCount: 1, ContourCount: 2, ComplexGradientSpanCount: 1}

	sum := a.Add(b)
	require.Equal(t, uint32(4), sum.PathCount)
	require.Equal(t, uint32(7), sum.ContourCount)
	require.Equal(t, uint32(3), sum.ComplexGradientSpanCount)

	diff := sum.Sub(a)
	require.Equal(t, b, diff)
}

func TestResourceCountersSubClampsAtZero(t *testing.T) {
	a := ResourceCounters{PathCount: 1}
	b := ResourceCounters{PathCount: 5}
	require.Equal(t, ResourceCounters{}, a.Sub(b))
}

func TestResourceCountersFitsWithin(t *testing.T) {
	budget := ResourceCounters{ComplexGradientSpanCount: 4}
	require.True(t, ResourceCounters{ComplexGradientSpanCount: 3}.FitsWithin(budget))
	require.False(t, ResourceCounters{ComplexGradientSpanCount: 5}.FitsWithin(budget))
}
