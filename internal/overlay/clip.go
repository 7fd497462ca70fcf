package overlay

import (
	"math"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// Ring intersection via Greiner-Hormann vertex lists. Both rings must be
// simple and wound positive. Crossings within crossEpsilon of a vertex are
// treated as touches, not crossings; rings that merely touch fall through to
// the containment cases.
const crossEpsilon = 1e-12

type clipNode struct {
	x, y      float64
	next      *clipNode
	prev      *clipNode
	intersect bool
	entry     bool
	visited   bool
	neighbor  *clipNode
	alpha     float64
}

// nudgeFactor scales the translation applied to the clip ring when collinear
// shared edges defeat the crossing test.
const nudgeFactor = 1e-9

// intersectRings clips the subject ring against the clip ring and returns
// the intersection as zero or more closed flat rings wound positive. ok is
// false when the rings overlap through collinear shared boundary and the
// overlap stays unresolved even after nudging the clip ring; callers must
// report such pairs rather than treat them as disjoint.
func intersectRings(subject, clip []float64) (rings [][]float64, ok bool) {
	if rings, done := clipOnce(subject, clip); done {
		return rings, true
	}
	// Shared collinear edges produce no proper crossings. Translate the clip
	// ring off the shared segments and retry; the area error is O(nudge).
	d := nudgeFactor * ringSpan(subject, clip)
	if rings, done := clipOnce(subject, shiftRing(clip, d, d)); done {
		return rings, true
	}
	return nil, false
}

// clipOnce runs one Greiner-Hormann pass. done is false when the pass found
// no proper crossings yet the ring interiors overlap, leaving the result
// undecided.
func clipOnce(subject, clip []float64) ([][]float64, bool) {
	sub := buildList(subject)
	clp := buildList(clip)
	if sub == nil || clp == nil {
		return nil, true
	}

	crossings := insertIntersections(sub, clp)
	if crossings == 0 {
		// No proper crossing: full containment, boundary touch, or disjoint.
		if ringInRing(subject, clip) {
			return [][]float64{normalizeRing(subject)}, true
		}
		if ringInRing(clip, subject) {
			return [][]float64{normalizeRing(clip)}, true
		}
		if interiorsOverlap(subject, clip) {
			return nil, false
		}
		return nil, true
	}

	markEntries(sub, clip)
	markEntries(clp, subject)
	return traverse(sub), true
}

// interiorsOverlap reports whether any vertex or edge midpoint of one ring
// lies strictly inside the other. With no proper crossings this separates
// real overlap from mere boundary contact.
func interiorsOverlap(a, b []float64) bool {
	return interiorPointIn(a, b) || interiorPointIn(b, a)
}

func interiorPointIn(a, b []float64) bool {
	for i := 0; i+3 < len(a); i += 2 {
		mx, my := (a[i]+a[i+2])/2, (a[i+1]+a[i+3])/2
		for _, p := range [2][2]float64{{a[i], a[i+1]}, {mx, my}} {
			if !onRing(b, p[0], p[1]) && geomodel.PointInRing(b, p[0], p[1]) {
				return true
			}
		}
	}
	return false
}

// ringSpan returns the largest bounding-box extent of either ring.
func ringSpan(a, b []float64) float64 {
	span := 0.0
	for _, flat := range [2][]float64{a, b} {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for i := 0; i+1 < len(flat); i += 2 {
			minX = math.Min(minX, flat[i])
			maxX = math.Max(maxX, flat[i])
			minY = math.Min(minY, flat[i+1])
			maxY = math.Max(maxY, flat[i+1])
		}
		span = math.Max(span, math.Max(maxX-minX, maxY-minY))
	}
	return span
}

func shiftRing(flat []float64, dx, dy float64) []float64 {
	out := make([]float64, len(flat))
	for i := 0; i+1 < len(flat); i += 2 {
		out[i], out[i+1] = flat[i]+dx, flat[i+1]+dy
	}
	return out
}

// buildList turns a closed flat ring into a circular doubly linked list of
// its distinct vertices.
func buildList(flat []float64) *clipNode {
	n := len(flat)/2 - 1
	if n < 3 {
		return nil
	}
	var head, tail *clipNode
	for i := 0; i < n; i++ {
		node := &clipNode{x: flat[i*2], y: flat[i*2+1]}
		if head == nil {
			head = node
		} else {
			tail.next = node
			node.prev = tail
		}
		tail = node
	}
	tail.next = head
	head.prev = tail
	return head
}

// insertIntersections finds every proper edge crossing between the two lists
// and splices a paired intersection node into each, ordered by position along
// the edge. Returns the number of crossings inserted.
func insertIntersections(sub, clp *clipNode) int {
	count := 0
	for s := sub; ; {
		sNext := nextVertex(s)
		for c := clp; ; {
			cNext := nextVertex(c)
			ok, t, u, ix, iy := segmentIntersection(
				s.x, s.y, sNext.x, sNext.y,
				c.x, c.y, cNext.x, cNext.y,
			)
			if ok {
				a := &clipNode{x: ix, y: iy, intersect: true, alpha: t}
				b := &clipNode{x: ix, y: iy, intersect: true, alpha: u}
				a.neighbor, b.neighbor = b, a
				spliceNode(s, sNext, a)
				spliceNode(c, cNext, b)
				count++
			}
			c = cNext
			if c == clp {
				break
			}
		}
		s = sNext
		if s == sub {
			break
		}
	}
	return count
}

// nextVertex skips intersection nodes to reach the next original vertex.
func nextVertex(n *clipNode) *clipNode {
	v := n.next
	for v.intersect {
		v = v.next
	}
	return v
}

// spliceNode inserts node between the original vertices a and b, keeping
// intersection nodes sorted by alpha.
func spliceNode(a, b, node *clipNode) {
	at := a
	for at.next != b && at.next.alpha < node.alpha {
		at = at.next
	}
	node.next = at.next
	node.prev = at
	at.next.prev = node
	at.next = node
}

// segmentIntersection reports a proper crossing of segments ab and cd, with
// the parametric positions along each. Crossings at (or within epsilon of)
// an endpoint are rejected.
func segmentIntersection(ax, ay, bx, by, cx, cy, dx, dy float64) (ok bool, t, u, ix, iy float64) {
	rX, rY := bx-ax, by-ay
	sX, sY := dx-cx, dy-cy
	denom := rX*sY - rY*sX
	if denom == 0 {
		return false, 0, 0, 0, 0
	}
	qpX, qpY := cx-ax, cy-ay
	t = (qpX*sY - qpY*sX) / denom
	u = (qpX*rY - qpY*rX) / denom
	if t <= crossEpsilon || t >= 1-crossEpsilon || u <= crossEpsilon || u >= 1-crossEpsilon {
		return false, 0, 0, 0, 0
	}
	return true, t, u, ax + t*rX, ay + t*rY
}

// markEntries sets the entry/exit flag on every intersection node of the
// list, toggling from the containment status of the list's first vertex.
func markEntries(list *clipNode, other []float64) {
	entry := !geomodel.PointInRing(other, list.x, list.y)
	for n := list; ; {
		if n.intersect {
			n.entry = entry
			entry = !entry
		}
		n = n.next
		if n == list {
			break
		}
	}
}

// traverse walks the marked lists and emits the intersection rings.
func traverse(sub *clipNode) [][]float64 {
	var rings [][]float64
	for start := sub; ; {
		if start.intersect && !start.visited {
			ring := []float64{start.x, start.y}
			cur := start
			for {
				cur.visited = true
				cur.neighbor.visited = true
				if cur.entry {
					for {
						cur = cur.next
						ring = append(ring, cur.x, cur.y)
						if cur.intersect {
							break
						}
					}
				} else {
					for {
						cur = cur.prev
						ring = append(ring, cur.x, cur.y)
						if cur.intersect {
							break
						}
					}
				}
				cur = cur.neighbor
				if cur == start || cur.visited && cur.neighbor.visited && samePoint(cur, start) {
					break
				}
			}
			ring = geomodel.CloseRing(ring)
			if math.Abs(geomodel.RingArea(ring)) > crossEpsilon {
				rings = append(rings, normalizeRing(ring))
			}
		}
		start = start.next
		if start == sub {
			break
		}
	}
	return rings
}

func samePoint(a, b *clipNode) bool { return a.x == b.x && a.y == b.y }

// ringInRing reports whether ring a lies inside ring b, judged by the first
// vertex of a that is not on b's boundary.
func ringInRing(a, b []float64) bool {
	for i := 0; i+1 < len(a)-2; i += 2 {
		if onRing(b, a[i], a[i+1]) {
			continue
		}
		return geomodel.PointInRing(b, a[i], a[i+1])
	}
	// Every vertex sits on the boundary; test an edge midpoint instead.
	mx, my := (a[0]+a[2])/2, (a[1]+a[3])/2
	return geomodel.PointInRing(b, mx, my)
}

// onRing reports whether the point lies on one of the ring's segments.
func onRing(flat []float64, x, y float64) bool {
	for i := 0; i+3 < len(flat); i += 2 {
		ax, ay, bx, by := flat[i], flat[i+1], flat[i+2], flat[i+3]
		crossp := (bx-ax)*(y-ay) - (by-ay)*(x-ax)
		if math.Abs(crossp) > crossEpsilon {
			continue
		}
		if x >= math.Min(ax, bx)-crossEpsilon && x <= math.Max(ax, bx)+crossEpsilon &&
			y >= math.Min(ay, by)-crossEpsilon && y <= math.Max(ay, by)+crossEpsilon {
			return true
		}
	}
	return false
}

// normalizeRing returns the ring closed and wound positive.
func normalizeRing(flat []float64) []float64 {
	flat = geomodel.CloseRing(flat)
	if geomodel.RingArea(flat) < 0 {
		n := len(flat) / 2
		out := make([]float64, len(flat))
		for i := 0; i < n; i++ {
			j := n - 1 - i
			out[i*2], out[i*2+1] = flat[j*2], flat[j*2+1]
		}
		return out
	}
	return flat
}
