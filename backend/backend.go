// Package backend implements the Backend Service external collaborator
// from spec.md §6: fetching a font's RLE-compressed base and fetching
// glyph bundles for a batch of code points.
package backend

import (
	"context"

	"github.com/Shea690901/TachyFont/inject"
)

// FontInfo names the font a request is for, mirroring the build step's
// per-font identity (family, weight, and the backend URL root it's
// served from).
type FontInfo struct {
	Family  string
	Weight  string
	URLBase string
}

// Service is the Backend Service interface of spec.md §6. Codepoints
// passed to RequestCodepoints must number no more than the caller's
// configured req_size (default 2200); the Service itself does not chunk.
type Service interface {
	RequestFontBase(ctx context.Context, info FontInfo) ([]byte, error)
	RequestCodepoints(ctx context.Context, info FontInfo, codepoints []rune) (*inject.Bundle, error)
}
