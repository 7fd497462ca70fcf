// Package mask implements per-category binary rasters and the morphological
// cleanup applied to them before vectorization.
package mask

// Mask is a boolean grid with the same dimensions and origin convention as
// the source raster (row 0 at the top). Cells outside the grid read false.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// New returns an all-false mask of the given dimensions.
func New(width, height int) *Mask {
	return &Mask{width: width, height: height, bits: make([]bool, width*height)}
}

// Width returns the grid width.
func (m *Mask) Width() int { return m.width }

// Height returns the grid height.
func (m *Mask) Height() int { return m.height }

// Get reads the cell at (x, y); out-of-range cells are false.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Set writes the cell at (x, y). Out-of-range writes are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.bits[y*m.width+x] = v
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is set.
func (m *Mask) Empty() bool { return m.Count() == 0 }

// Clone returns an independent copy.
func (m *Mask) Clone() *Mask {
	c := New(m.width, m.height)
	copy(c.bits, m.bits)
	return c
}

// Equal reports whether two masks have identical dimensions and cells.
func (m *Mask) Equal(o *Mask) bool {
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i, b := range m.bits {
		if b != o.bits[i] {
			return false
		}
	}
	return true
}
