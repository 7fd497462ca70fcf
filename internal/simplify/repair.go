package simplify

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// areaEpsilon bounds how much repair may grow a polygon's area. Repair fixes
// winding and drops degenerate rings; it must never fabricate area out of an
// invalid shape beyond this slack.
const areaEpsilon = 1e-9

// Polygon simplifies every ring of p within tolerance and repairs the result.
// A simplified ring that collapses or turns self-intersecting reverts to its
// unsimplified form: grid-traced input rings are always valid, so reverting
// restores validity at the cost of extra vertices. Holes that collapse are
// dropped. The input polygon is not modified.
func Polygon(p *geom.Polygon, tolerance float64) (*geom.Polygon, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "simplify: empty polygon")
	}
	rings := make([][]float64, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		orig := geomodel.CloseRing(p.LinearRing(i).FlatCoords())
		s := dedupe(ringSimplify(orig, tolerance))
		if ringDegenerate(s) || ringSelfIntersects(s) {
			s = dedupe(orig)
		}
		if ringDegenerate(s) {
			if i == 0 {
				return nil, eris.New("simplify: exterior ring degenerate")
			}
			continue // collapsed hole, drop it
		}
		rings = append(rings, s)
	}
	out, err := geomodel.NewPolygonFromRings(rings...)
	if err != nil {
		return nil, err
	}
	return Repair(out)
}

// Repair returns a repaired copy of p: consecutive duplicate vertices
// removed, degenerate holes dropped, exterior wound positive and holes
// negative. A polygon whose exterior remains self-intersecting after repair
// is reported as invalid rather than silently patched; the repaired area is
// never allowed to exceed the input area by more than a negligible epsilon.
func Repair(p *geom.Polygon) (*geom.Polygon, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "simplify: empty polygon")
	}
	before := geomodel.PolygonArea(p)

	rings := make([][]float64, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		r := dedupe(geomodel.CloseRing(p.LinearRing(i).FlatCoords()))
		if ringDegenerate(r) {
			if i == 0 {
				return nil, eris.New("simplify: exterior ring degenerate")
			}
			continue
		}
		wantPositive := i == 0
		if (geomodel.RingArea(r) > 0) != wantPositive {
			r = reverseRing(r)
		}
		rings = append(rings, r)
	}

	out, err := geomodel.NewPolygonFromRings(rings...)
	if err != nil {
		return nil, err
	}
	if ringSelfIntersects(out.LinearRing(0).FlatCoords()) {
		return nil, eris.New("simplify: exterior ring self-intersects")
	}
	if after := geomodel.PolygonArea(out); after > before+math.Max(areaEpsilon, before*areaEpsilon) {
		return nil, eris.Errorf("simplify: repair grew area %g -> %g", before, after)
	}
	return out, nil
}

// Validate reports whether every ring of p is closed, non-degenerate, and
// free of proper self-intersections.
func Validate(p *geom.Polygon) error {
	if p == nil || p.NumLinearRings() == 0 {
		return eris.New("simplify: polygon has no rings")
	}
	for i := 0; i < p.NumLinearRings(); i++ {
		flat := p.LinearRing(i).FlatCoords()
		n := len(flat)
		if n < 8 {
			return eris.Errorf("simplify: ring %d has too few vertices", i)
		}
		if flat[0] != flat[n-2] || flat[1] != flat[n-1] {
			return eris.Errorf("simplify: ring %d is not closed", i)
		}
		if ringSelfIntersects(flat) {
			return eris.Errorf("simplify: ring %d self-intersects", i)
		}
	}
	return nil
}

// dedupe removes consecutive duplicate vertices, keeping the ring closed.
func dedupe(flat []float64) []float64 {
	if len(flat) < 4 {
		return flat
	}
	out := []float64{flat[0], flat[1]}
	for i := 2; i+1 < len(flat); i += 2 {
		if flat[i] == out[len(out)-2] && flat[i+1] == out[len(out)-1] {
			continue
		}
		out = append(out, flat[i], flat[i+1])
	}
	return geomodel.CloseRing(out)
}

// ringDegenerate reports rings with fewer than three distinct vertices or no
// area.
func ringDegenerate(flat []float64) bool {
	if len(flat) < 8 { // 3 distinct vertices plus closure
		return true
	}
	return geomodel.RingArea(flat) == 0
}

func reverseRing(flat []float64) []float64 {
	n := len(flat) / 2
	out := make([]float64, len(flat))
	for i := 0; i < n; i++ {
		j := n - 1 - i
		out[i*2], out[i*2+1] = flat[j*2], flat[j*2+1]
	}
	return out
}

// ringSelfIntersects tests every non-adjacent segment pair for a proper
// crossing. Shared endpoints (pinched rings from diagonal cell contacts) are
// allowed. Quadratic, but simplified rings are short.
func ringSelfIntersects(flat []float64) bool {
	n := len(flat)/2 - 1 // segments
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // first and last segments share the closure vertex
			}
			if segmentsCross(
				flat[i*2], flat[i*2+1], flat[(i+1)*2], flat[(i+1)*2+1],
				flat[j*2], flat[j*2+1], flat[(j+1)*2], flat[(j+1)*2+1],
			) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing of segments ab and cd: the
// segments intersect at a point interior to both.
func segmentsCross(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross(cx, cy, dx, dy, ax, ay)
	d2 := cross(cx, cy, dx, dy, bx, by)
	d3 := cross(ax, ay, bx, by, cx, cy)
	d4 := cross(ax, ay, bx, by, dx, dy)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}
