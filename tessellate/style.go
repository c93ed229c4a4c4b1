// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tessellate

import (
	"structs"

	"honnef.co/go/curve"

	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/jmath"
)

// Style packs fill/stroke parameters into the form consumed by the midpoint-
// fan and interior-triangulation planners. It mirrors the bit layout used by
// GPU-resident path styles in the wider rendering ecosystem: the top bits
// select fill-vs-stroke and fill rule, the bits below them carry join/cap
// selection, and the miter limit rides in the low 16 bits as a packed half
// float so the
// whole style fits in one machine word plus the stroke width.
type Style struct {
	_ structs.HostLayout

	FlagsAndMiterLimit uint32
	LineWidth          float32
}

const (
	FlagsStyleBit uint32 = 0x8000_0000 // 0 = fill, 1 = stroke
	FlagsFillBit  uint32 = 0x4000_0000 // 0 = non-zero, 1 = even-odd

	FlagsJoinBitsBevel uint32 = 0
	FlagsJoinBitsMiter uint32 = 0x1000_0000
	FlagsJoinBitsRound uint32 = 0x2000_0000
	FlagsJoinMask      uint32 = 0x3000_0000

	flagsCapBitsButt   uint32 = 0
	flagsCapBitsSquare uint32 = 0x0100_0000
	flagsCapBitsRound  uint32 = 0x0200_0000

	flagsStartCapBitsButt   uint32 = flagsCapBitsButt << 2
	flagsStartCapBitsSquare uint32 = flagsCapBitsSquare << 2
	flagsStartCapBitsRound  uint32 = flagsCapBitsRound << 2
	flagsEndCapBitsButt     uint32 = flagsCapBitsButt
	flagsEndCapBitsSquare   uint32 = flagsCapBitsSquare
	flagsEndCapBitsRound    uint32 = flagsCapBitsRound

	FlagsStartCapMask uint32 = 0x0C00_0000
	FlagsEndCapMask   uint32 = 0x0300_0000
	MiterLimitMask    uint32 = 0xFFFF
)

func (s Style) IsStroke() bool { return s.FlagsAndMiterLimit&FlagsStyleBit != 0 }

func (s Style) Fill() gfx.Fill {
	if s.FlagsAndMiterLimit&FlagsFillBit != 0 {
		return gfx.EvenOdd
	}
	return gfx.NonZero
}

func (s Style) Join() curve.Join {
	switch s.FlagsAndMiterLimit & FlagsJoinMask {
	case FlagsJoinBitsMiter:
		return curve.MiterJoin
	case FlagsJoinBitsRound:
		return curve.RoundJoin
	default:
		return curve.BevelJoin
	}
}

func capFromBits(bits uint32) curve.Cap {
	switch bits {
	case flagsCapBitsSquare:
		return curve.SquareCap
	case flagsCapBitsRound:
		return curve.RoundCap
	default:
		return curve.ButtCap
	}
}

func (s Style) StartCap() curve.Cap {
	return capFromBits((s.FlagsAndMiterLimit & FlagsStartCapMask) >> 2)
}

func (s Style) EndCap() curve.Cap {
	return capFromBits(s.FlagsAndMiterLimit & FlagsEndCapMask)
}

func StyleFromFill(fill gfx.Fill) Style {
	var fillBit uint32
	if fill == gfx.EvenOdd {
		fillBit = FlagsFillBit
	}
	return Style{FlagsAndMiterLimit: fillBit}
}

func StyleFromStroke(stroke curve.Stroke) Style {
	flags := FlagsStyleBit
	switch stroke.Join {
	case curve.BevelJoin:
		flags |= FlagsJoinBitsBevel
	case curve.MiterJoin:
		flags |= FlagsJoinBitsMiter
	case curve.RoundJoin:
		flags |= FlagsJoinBitsRound
	}
	switch stroke.StartCap {
	case curve.ButtCap:
		flags |= flagsStartCapBitsButt
	case curve.SquareCap:
		flags |= flagsStartCapBitsSquare
	case curve.RoundCap:
		flags |= flagsStartCapBitsRound
	}
	switch stroke.EndCap {
	case curve.ButtCap:
		flags |= flagsEndCapBitsButt
	case curve.SquareCap:
		flags |= flagsEndCapBitsSquare
	case curve.RoundCap:
		flags |= flagsEndCapBitsRound
	}
	miterLimit := uint32(jmath.Float16(float32(stroke.MiterLimit)))
	return Style{
		FlagsAndMiterLimit: flags | miterLimit,
		LineWidth:          float32(stroke.Width),
	}
}
