package vectorize

import "github.com/sells-group/digitize-cli/internal/mask"

// Connectivity selects how diagonal cells relate.
type Connectivity int

const (
	// Connect4 treats only edge-adjacent cells as connected.
	Connect4 Connectivity = 4
	// Connect8 also connects diagonal neighbors, matching the contour
	// behavior the source maps were digitized with.
	Connect8 Connectivity = 8
)

var neighbors4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var neighbors8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// component is one maximal connected region of true cells.
type component struct {
	id    int
	cells [][2]int // BFS discovery order, seeded row-major
}

// components labels the mask's connected regions. Cells are visited in
// row-major order and regions are numbered in discovery order, so the result
// is identical on every run.
func components(m *mask.Mask, conn Connectivity) []component {
	width, height := m.Width(), m.Height()
	labels := make([]int, width*height)
	for i := range labels {
		labels[i] = -1
	}
	offsets := neighbors4
	if conn == Connect8 {
		offsets = neighbors8
	}

	var comps []component
	var queue [][2]int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !m.Get(x, y) || labels[y*width+x] >= 0 {
				continue
			}
			id := len(comps)
			comp := component{id: id}
			queue = queue[:0]
			queue = append(queue, [2]int{x, y})
			labels[y*width+x] = id
			for len(queue) > 0 {
				c := queue[0]
				queue = queue[1:]
				comp.cells = append(comp.cells, c)
				for _, off := range offsets {
					nx, ny := c[0]+off[0], c[1]+off[1]
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					if !m.Get(nx, ny) || labels[ny*width+nx] >= 0 {
						continue
					}
					labels[ny*width+nx] = id
					queue = append(queue, [2]int{nx, ny})
				}
			}
			comps = append(comps, comp)
		}
	}
	return comps
}
