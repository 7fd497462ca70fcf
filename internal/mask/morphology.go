package mask

// Shape selects the structuring-element neighborhood.
type Shape int

const (
	// Diamond includes cells within manhattan distance radius.
	Diamond Shape = iota
	// Disc includes cells within euclidean distance radius.
	Disc
)

func (s Shape) String() string {
	if s == Disc {
		return "disc"
	}
	return "diamond"
}

// Element is a precomputed structuring-element offset set.
type Element struct {
	offsets [][2]int
}

// NewElement builds a structuring element of the given shape and radius.
// Radius 0 degenerates to the identity element.
func NewElement(shape Shape, radius int) Element {
	var offs [][2]int
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			switch shape {
			case Disc:
				if dx*dx+dy*dy <= r2 {
					offs = append(offs, [2]int{dx, dy})
				}
			default:
				if abs(dx)+abs(dy) <= radius {
					offs = append(offs, [2]int{dx, dy})
				}
			}
		}
	}
	return Element{offsets: offs}
}

// Dilate sets every cell that has any true cell under the element.
func Dilate(m *Mask, el Element) *Mask {
	out := New(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			for _, off := range el.offsets {
				if m.Get(x+off[0], y+off[1]) {
					out.Set(x, y, true)
					break
				}
			}
		}
	}
	return out
}

// Erode keeps only cells whose whole element neighborhood is true. The grid
// border counts as false, so regions touching the edge shrink there too.
func Erode(m *Mask, el Element) *Mask {
	out := New(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			all := true
			for _, off := range el.offsets {
				if !m.Get(x+off[0], y+off[1]) {
					all = false
					break
				}
			}
			out.Set(x, y, all)
		}
	}
	return out
}

// Close fills pinholes and bridges near-touching fragments: dilate then erode.
func Close(m *Mask, el Element) *Mask {
	return Erode(Dilate(m, el), el)
}

// Open strips isolated noise cells: erode then dilate.
func Open(m *Mask, el Element) *Mask {
	return Dilate(Erode(m, el), el)
}

// Majority smooths the mask with a modal vote over an odd-sized square
// window. Cells outside the grid do not vote.
func Majority(m *Mask, window int) *Mask {
	if window < 3 {
		return m.Clone()
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2
	out := New(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			votes, cells := 0, 0
			for dy := -half; dy <= half; dy++ {
				for dx := -half; dx <= half; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.width || ny >= m.height {
						continue
					}
					cells++
					if m.Get(nx, ny) {
						votes++
					}
				}
			}
			out.Set(x, y, votes*2 > cells)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
