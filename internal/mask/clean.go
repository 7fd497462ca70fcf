package mask

// CleanOptions tunes the denoising pass. The zero value disables everything;
// DefaultCleanOptions matches the 5x5 kernel the source maps were digitized
// with.
type CleanOptions struct {
	Shape          Shape
	Radius         int // structuring-element radius; 0 skips close/open
	MajorityWindow int // odd window for modal smoothing; 0 skips it
}

// DefaultCleanOptions returns the standard cleanup parameters.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{Shape: Diamond, Radius: 2}
}

// maxCleanPasses caps the fixpoint iteration; real masks settle within two
// or three passes.
const maxCleanPasses = 16

// Clean denoises a category mask: closing to fill small gaps, opening to
// remove isolated noise, then an optional modal smoothing pass. The pass is
// repeated until the mask stops changing, so the whole filter is idempotent.
// The input is not modified. An empty result simply means the category is
// absent from this raster.
func Clean(m *Mask, opts CleanOptions) *Mask {
	out := m.Clone()
	if opts.Radius <= 0 && opts.MajorityWindow < 3 {
		return out
	}
	el := NewElement(opts.Shape, opts.Radius)
	for i := 0; i < maxCleanPasses; i++ {
		next := out
		if opts.Radius > 0 {
			next = Open(Close(next, el), el)
		}
		if opts.MajorityWindow >= 3 {
			next = Majority(next, opts.MajorityWindow)
		}
		if next.Equal(out) {
			return next
		}
		out = next
	}
	return out
}
