// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package imagetex decodes the byte formats a client may hand to
// decodeImageTexture into a gfx.Image ready for a Draw Object to reference.
package imagetex

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/inkstone-gfx/pls/gfx"
)

// Decode sniffs and decodes bytes, returning a gfx.Image on success. It
// returns false (not an error) on any decode failure, matching the client
// API's decodeImageTexture contract: callers substitute a placeholder
// rather than propagate a decode error up through the draw list.
func Decode(data []byte) (*gfx.Image, bool) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return &gfx.Image{Image: img, Extend: gfx.Pad}, true
}

// ErrUnrecognizedFormat is wrapped by DecodeStrict around any error from
// image.Decode (unrecognized format or malformed data), for callers that
// want the failure reason rather
// than Decode's placeholder-friendly bool.
var ErrUnrecognizedFormat = fmt.Errorf("imagetex: unrecognized image format")

// DecodeStrict is Decode with the underlying error preserved, for
// diagnostics; the client-facing façade still uses Decode's bool form.
func DecodeStrict(data []byte) (*gfx.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	return &gfx.Image{Image: img, Extend: gfx.Pad}, nil
}
