// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gradient implements the shared gradient (color ramp) texture:
// bottom-up row allocation, simple/complex ramp classification, and
// identity-keyed reuse across draws within a flush.
package gradient

import (
	"encoding/binary"
	"strings"

	"github.com/inkstone-gfx/pls/gfx"
	"github.com/inkstone-gfx/pls/jmath"
)

// kGradTextureWidth is the fixed width, in texels, of every row of the
// shared gradient texture. Ported from Rive's PLS renderer, where it is
// also the sample count baked into every complex-ramp instanced draw.
const kGradTextureWidth = 512

// GradientSpan is one instanced quad of a complex ramp's color-ramp draw:
// it interpolates linearly between From and To across the texel range
// [X0, X1) of its assigned row.
type GradientSpan struct {
	X0, X1   float32
	Row      uint32
	From, To [4]uint16
}

// Record describes one cached gradient's placement in the texture.
type Record struct {
	Row uint32
	// Simple is true when the gradient has exactly two stops and can be
	// resolved directly from From/To without any GradientSpan instances.
	Simple   bool
	From, To [4]uint16
}

type cacheEntry struct {
	record Record
	epoch  uint64
}

// Cache allocates rows of the gradient texture for the lifetime of one
// flush, reusing rows for color-stop sequences it has already seen (keyed
// on their byte-stable encoding) and refusing new allocations once the
// texture is full. Rows replace a flat retained-sample-count eviction
// policy: rather than evicting the least-recently-used ramp, a full cache
// signals the caller so a partial flush can reclaim the texture and retry.
type Cache struct {
	height uint32

	epoch   uint64
	mapping map[string]*cacheEntry
	nextRow uint32

	simpleData []byte // packed [From,To] pairs for the current flush's simple ramps
	complex    []GradientSpan

	key []byte
}

func NewCache(height uint32) *Cache {
	return &Cache{
		height:  height,
		mapping: make(map[string]*cacheEntry),
	}
}

// Reset starts a new flush: the row cursor, the per-flush upload buffers and
// the identity-keyed mapping are all cleared, so no record can point at a
// row the reset cursor hands out again.
func (c *Cache) Reset() {
	clear(c.mapping)
	c.nextRow = 0
	c.simpleData = c.simpleData[:0]
	c.complex = c.complex[:0]
}

// Maintain evicts mapping entries that haven't been touched in the last two
// epochs, bounding memory when a client cycles through many distinct
// gradients over the program's lifetime.
func (c *Cache) Maintain() {
	c.epoch++
	for k, v := range c.mapping {
		if v.epoch+2 < c.epoch {
			delete(c.mapping, k)
		}
	}
}

func appendStopsKey(buf []byte, stops []gfx.ColorStop) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(stops)))
	for _, s := range stops {
		buf = s.AppendKey(buf)
	}
	return buf
}

// Allocate resolves stops to a gradient Record, allocating a fresh
// texture row if the sequence hasn't been seen this flush and the cache
// still has room. It returns ok=false, with no allocation performed, if the
// gradient's row would exceed the texture's height — the caller must then
// perform a partial flush (draining everything queued so far and resetting
// the cache) before retrying.
func (c *Cache) Allocate(stops []gfx.ColorStop) (Record, bool) {
	key := appendStopsKey(c.key[:0], stops)
	c.key = key[:0]
	keyStr := string(key)

	if entry, ok := c.mapping[keyStr]; ok {
		entry.epoch = c.epoch
		return entry.record, true
	}

	if c.nextRow >= c.height {
		return Record{}, false
	}

	row := c.nextRow
	c.nextRow++

	var rec Record
	if len(stops) == 2 {
		rec = Record{
			Row:    row,
			Simple: true,
			From:   stops[0].Color.LinearSRGB().Premul16(),
			To:     stops[1].Color.LinearSRGB().Premul16(),
		}
		c.simpleData = append(c.simpleData, packSimple(rec.From, rec.To)...)
	} else {
		rec = Record{Row: row}
		for i := 0; i+1 < len(stops); i++ {
			from := stops[i].Color.LinearSRGB().Premul16()
			to := stops[i+1].Color.LinearSRGB().Premul16()
			c.complex = append(c.complex, GradientSpan{
				X0:   stops[i].Offset * kGradTextureWidth,
				X1:   stops[i+1].Offset * kGradTextureWidth,
				Row:  row,
				From: from,
				To:   to,
			})
		}
	}

	c.mapping[strings.Clone(keyStr)] = &cacheEntry{record: rec, epoch: c.epoch}
	return rec, true
}

func packSimple(from, to [4]uint16) []byte {
	var buf [16]byte
	for i, v := range from {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	for i, v := range to {
		binary.LittleEndian.PutUint16(buf[8+i*2:], v)
	}
	return buf[:]
}

// SimpleRampData returns the packed [From,To] byte pairs queued this flush,
// ready for a buffer-to-image copy into the bottom rows of the texture.
func (c *Cache) SimpleRampData() []byte { return c.simpleData }

// ComplexSpans returns the GradientSpan instances queued this flush, ready
// to be instanced-drawn by the color-ramp pipeline.
func (c *Cache) ComplexSpans() []GradientSpan { return c.complex }

// RowsUsed reports how many of the texture's rows have been claimed so far
// this flush.
func (c *Cache) RowsUsed() uint32 { return c.nextRow }

func (c *Cache) Height() uint32 { return c.height }
