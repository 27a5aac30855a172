// Package face implements the Font Face Binder external collaborator
// from spec.md §6 and the two-stage font-face swap of spec.md §4.6.3.
package face

import "context"

// Binder installs byte blobs under temporary families, previews them,
// and atomically promotes a preview into the real family+weight rule —
// the operations spec.md §4.6.3's setFont drives in sequence.
type Binder interface {
	// InstallTemporary registers data under a synthetic family derived
	// from family+weight (e.g. "tmp-" + family) and returns that family
	// name for use by Preload/Promote.
	InstallTemporary(ctx context.Context, family, weight string, data []byte) (tmpFamily string, err error)

	// Preload synchronously rasterizes sampleText at sizePx in
	// tmpFamily, so the later Promote swap never triggers a visible
	// parse/rasterize pause.
	Preload(ctx context.Context, tmpFamily, sampleText string, sizePx int) error

	// Promote removes any existing rule for realFamily+weight and
	// renames tmpFamily's rule to realFamily, atomically from the
	// renderer's point of view.
	Promote(ctx context.Context, tmpFamily, realFamily, weight string) error

	// SetVisibility flips the CSS visibility of class, per spec.md
	// §4.6's visibility guard.
	SetVisibility(class string, visible bool)
}
