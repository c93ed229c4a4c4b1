// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tessellate

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/jmath"
)

func bigRectPath(x0, y0, x1, y1 float64) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		pts := []curve.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
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

func TestFanTriangulatorTriangleCount(t *testing.T) {
	tri := NewFanTriangulator([]ContourInfo{
		{Curves: []CurveSegment{
			{P0: curve.Vec(0, 0)},
			{P0: curve.Vec(1, 0)},
			{P0: curve.Vec(1, 1)},
			{P0: curve.Vec(0, 1)},
		}},
	})
	require.Equal(t, 2, tri.TriangleCount())

	buf := tri.AppendTriangles(nil)
	require.Len(t, buf, 2*3*2)
}

func TestFanTriangulatorDegenerateHasNoTriangles(t *testing.T) {
	tri := NewFanTriangulator([]ContourInfo{{Curves: []CurveSegment{{P0: curve.Vec(0, 0)}}}})
	require.Equal(t, 0, tri.TriangleCount())
	require.Nil(t, tri.AppendTriangles(nil))
}

func TestBuildPlanLargeFillGetsInnerFanTriangulator(t *testing.T) {
	style := StyleFromFill(gfx.NonZero)
	bounds := [4]float32{0, 0, 1000, 1000}
	plan := BuildPlan(bigRectPath(0, 0, 1000, 1000), jmath.Identity, bounds, style)

	require.Equal(t, InteriorTriangulationPlan, plan.Kind)
	require.NotNil(t, plan.InnerFanTriangulator)
	require.True(t, plan.InnerFanTriangulator.TriangleCount() > 0)
}
