// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Command plsdemo exercises the draw-list accumulation path against
// scenario S1 from the engine's testable properties: a single solid-filled
// midpoint-fan rectangle, and prints the resource counters a flush would
// observe draining it. It does not open a GPU device — device and surface
// setup is platform-specific and left to the embedding application; this
// only demonstrates the CPU-side contract between a Draw Object and the
// engine's accumulation counters.
package main

import (
	"flag"
	"fmt"
	"iter"
	"os"

	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/drawobj"
	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/jmath"
	"github.com/inkstone-gfx/pls/tessellate"
)

func rectPath(x0, y0, x1, y1 float64) iter.Seq[curve.PathElement] {
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

func main() {
	var width, height float64
	flag.Float64Var(&width, "width", 200, "rectangle width")
	flag.Float64Var(&height, "height", 100, "rectangle height")
	flag.Parse()

	list := drawobj.NewDrawList()
	style := tessellate.StyleFromFill(gfx.NonZero)
	brush := gfx.SolidBrush{Color: gfx.RGBA(1, 0, 0, 1)}
	d := drawobj.NewPathDraw(
		rectPath(0, 0, width, height),
		jmath.Identity,
		[4]int32{0, 0, int32(width), int32(height)},
		style, brush, gfx.BlendMode{}, 0,
	)
	list.Push(d)

	counts := list.ResourceCounts()
	fmt.Fprintf(os.Stdout, "draws=%d paths=%d contours=%d midpointFanVerts=%d segments=%d\n",
		list.Len(), counts.PathCount, counts.ContourCount, counts.MidpointFanTessVertexCount, counts.TessellatedSegmentCount)

	list.Reset()
}
