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

func openLinePath(x0, y0, x1, y1, x2, y2 float64) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		if !yield(curve.PathElement{Kind: curve.MoveToKind, P0: curve.Point{X: x0, Y: y0}}) {
			return
		}
		if !yield(curve.PathElement{Kind: curve.LineToKind, P0: curve.Point{X: x1, Y: y1}}) {
			return
		}
		yield(curve.PathElement{Kind: curve.LineToKind, P0: curve.Point{X: x2, Y: y2}})
	}
}

func TestWalkContoursOpenStrokeGetsLeadingAndTrailingCapMarkers(t *testing.T) {
	fill := WalkContours(openLinePath(0, 0, 10, 0, 10, 10), jmath.Identity, StyleFromFill(gfx.NonZero))
	require.Len(t, fill, 1)
	interiorJoins := len(fill[0].Curves)

	stroke := StyleFromStroke(curve.Stroke{Width: 2, StartCap: curve.ButtCap, EndCap: curve.ButtCap})
	contours := WalkContours(openLinePath(0, 0, 10, 0, 10, 10), jmath.Identity, stroke)
	require.Len(t, contours, 1)

	// Two cap markers (leading and trailing) bracket the same interior join
	// curves the unstroked fill produced.
	require.Equal(t, interiorJoins+2, len(contours[0].Curves))

	first := contours[0].Curves[0]
	require.Equal(t, first.P0, first.P3)
	last := contours[0].Curves[len(contours[0].Curves)-1]
	require.Equal(t, last.P0, last.P3)
}

func TestWalkContoursRoundCapUsesPolarSegmentCount(t *testing.T) {
	stroke := StyleFromStroke(curve.Stroke{Width: 4, StartCap: curve.RoundCap, EndCap: curve.RoundCap})
	contours := WalkContours(openLinePath(0, 0, 10, 0, 10, 10), jmath.Identity, stroke)
	require.Len(t, contours, 1)

	want := PolarSegmentCount(4)
	require.Equal(t, want, contours[0].Curves[0].Segments)
	require.Equal(t, want, contours[0].Curves[len(contours[0].Curves)-1].Segments)
}

func TestWalkContoursClosedContourGetsNoCapMarkers(t *testing.T) {
	rect := func(yield func(curve.PathElement) bool) {
		pts := []curve.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
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

	stroke := StyleFromStroke(curve.Stroke{Width: 2, StartCap: curve.RoundCap, EndCap: curve.RoundCap})
	contours := WalkContours(rect, jmath.Identity, stroke)
	require.Len(t, contours, 1)
	require.True(t, contours[0].Closed)
	require.Len(t, contours[0].Curves, 4)
}
