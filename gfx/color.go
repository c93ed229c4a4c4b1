// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"encoding/binary"
	"math"

	"honnef.co/go/color"

	"github.com/inkstone-gfx/pls/jmath"
)

// Color is a paint color carried through the draw-object and gradient-cache
// pipeline. It wraps honnef.co/go/color.Color so that arbitrary color spaces
// can be supplied by callers while the renderer always consumes premultiplied
// linear sRGB.
type Color struct {
	c color.Color
}

func RGBA(r, g, b, a float32) Color {
	return Color{c: color.Color{
		Space:  color.SRGB,
		Values: [4]float64{float64(r), float64(g), float64(b), float64(a)},
	}}
}

func FromColor(c color.Color) Color {
	return Color{c: c}
}

func (c Color) LinearSRGB() Color {
	return Color{c: c.c.Convert(color.LinearSRGB)}
}

func (c Color) WithAlphaFactor(alpha float32) Color {
	cc := c.c
	cc.Values[3] *= float64(alpha)
	return Color{c: cc}
}

// Lerp interpolates between c and other in whatever color space c is
// currently in. Callers that need the interpolation to happen in linear
// space should call LinearSRGB on both operands first.
func (c Color) Lerp(other Color, t float64) Color {
	o := other.c.Convert(c.c.Space)
	return Color{c: color.Color{
		Space: c.c.Space,
		Values: [4]float64{
			c.c.Values[0] + (o.Values[0]-c.c.Values[0])*t,
			c.c.Values[1] + (o.Values[1]-c.c.Values[1])*t,
			c.c.Values[2] + (o.Values[2]-c.c.Values[2])*t,
			c.c.Values[3] + (o.Values[3]-c.c.Values[3])*t,
		},
	}}
}

func (c Color) Premul16() [4]uint16 {
	cc := c.c.Convert(color.LinearSRGB)
	a := cc.Values[3]
	return [4]uint16{
		jmath.Float16(float32(cc.Values[0] * a)),
		jmath.Float16(float32(cc.Values[1] * a)),
		jmath.Float16(float32(cc.Values[2] * a)),
		jmath.Float16(float32(a)),
	}
}

func (c Color) Premul32() [4]float32 {
	cc := c.c.Convert(color.LinearSRGB)
	a := cc.Values[3]
	return [4]float32{
		float32(cc.Values[0] * a),
		float32(cc.Values[1] * a),
		float32(cc.Values[2] * a),
		float32(a),
	}
}

// PremulUint32 packs the color as four premultiplied 8-bit linear-sRGB
// channels, matching the RGBA draw-data layout used by the solid-color draw
// path.
func (c Color) PremulUint32() uint32 {
	p := c.Premul32()
	clamp := func(v float32) uint32 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint32(math.Round(float64(v) * 255))
	}
	return clamp(p[0]) | clamp(p[1])<<8 | clamp(p[2])<<16 | clamp(p[3])<<24
}

// appendKey appends a byte-stable encoding of c to buf, used by the gradient
// cache to build lookup keys for color stop sequences.
func (c Color) appendKey(buf []byte) []byte {
	buf = append(buf, c.c.Space.ID...)
	for _, v := range c.c.Values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}
