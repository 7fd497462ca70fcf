package vectorize

// Boundary tracing over pixel-corner vertices. Every cell of a component
// contributes one directed unit edge per side that faces a cell outside the
// component; the edges are oriented so the component interior stays on the
// left when y grows downward. Chaining the edges yields the exterior ring
// plus one ring per enclosed hole.

// Directions, clockwise in screen coordinates (y down).
const (
	dirRight = iota
	dirDown
	dirLeft
	dirUp
)

var dirDelta = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// edgeGrid stores, per pixel-corner vertex, a bitmask of outgoing directed
// edges not yet consumed by a ring walk.
type edgeGrid struct {
	width  int // vertices per row: mask width + 1
	height int
	out    []uint8
}

func newEdgeGrid(maskWidth, maskHeight int) *edgeGrid {
	w, h := maskWidth+1, maskHeight+1
	return &edgeGrid{width: w, height: h, out: make([]uint8, w*h)}
}

func (g *edgeGrid) add(x, y, dir int)      { g.out[y*g.width+x] |= 1 << dir }
func (g *edgeGrid) has(x, y, dir int) bool { return g.out[y*g.width+x]&(1<<dir) != 0 }
func (g *edgeGrid) take(x, y, dir int)     { g.out[y*g.width+x] &^= 1 << dir }

// addCellEdges emits the boundary edges of one cell. inComp reports whether a
// neighboring cell belongs to the same component.
func (g *edgeGrid) addCellEdges(x, y int, inComp func(x, y int) bool) {
	if !inComp(x, y-1) {
		g.add(x, y, dirRight) // top side, left to right
	}
	if !inComp(x+1, y) {
		g.add(x+1, y, dirDown) // right side, top to bottom
	}
	if !inComp(x, y+1) {
		g.add(x+1, y+1, dirLeft) // bottom side, right to left
	}
	if !inComp(x-1, y) {
		g.add(x, y+1, dirUp) // left side, bottom to top
	}
}

// walk consumes one ring starting with the given edge. Consecutive collinear
// edges are merged, so ring vertices mark direction changes only. The
// returned flat coordinate slice is closed (first pair equals last pair).
//
// At a vertex with several outgoing edges (regions pinched at a corner) the
// walk prefers the left-most turn; diagonally touching cells of one component
// then stay on a single ring instead of splitting apart.
func (g *edgeGrid) walk(startX, startY, startDir int) []float64 {
	ring := []float64{float64(startX), float64(startY)}
	x, y, dir := startX, startY, startDir
	for {
		g.take(x, y, dir)
		x += dirDelta[dir][0]
		y += dirDelta[dir][1]
		if x == startX && y == startY {
			break
		}
		next := -1
		for _, cand := range [4]int{(dir + 3) % 4, dir, (dir + 1) % 4, (dir + 2) % 4} {
			if g.has(x, y, cand) {
				next = cand
				break
			}
		}
		if next < 0 {
			// Open chain; cannot happen for well-formed cell boundaries.
			break
		}
		if next != dir {
			ring = append(ring, float64(x), float64(y))
		}
		dir = next
	}
	ring = append(ring, float64(startX), float64(startY))
	return ring
}

// traceComponent returns the rings bounding one component. The exterior ring
// carries positive signed area in pixel coordinates; hole rings are negative.
// Rings are emitted in a fixed order derived from cell discovery order.
func traceComponent(comp component, inComp func(x, y int) bool) [][]float64 {
	maxX, maxY := 0, 0
	for _, c := range comp.cells {
		if c[0] > maxX {
			maxX = c[0]
		}
		if c[1] > maxY {
			maxY = c[1]
		}
	}
	grid := newEdgeGrid(maxX+1, maxY+1)
	for _, c := range comp.cells {
		grid.addCellEdges(c[0], c[1], inComp)
	}

	var rings [][]float64
	for _, c := range comp.cells {
		// Each cell can start a walk from any of its four sides.
		starts := [4][3]int{
			{c[0], c[1], dirRight},
			{c[0] + 1, c[1], dirDown},
			{c[0] + 1, c[1] + 1, dirLeft},
			{c[0], c[1] + 1, dirUp},
		}
		for _, s := range starts {
			if grid.has(s[0], s[1], s[2]) {
				rings = append(rings, grid.walk(s[0], s[1], s[2]))
			}
		}
	}
	return rings
}
