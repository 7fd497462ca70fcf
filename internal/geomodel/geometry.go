package geomodel

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// RingArea returns the signed shoelace area of a flat XY ring. Positive for
// counter-clockwise winding in a y-up coordinate system.
func RingArea(flat []float64) float64 {
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[i*2]*flat[j*2+1] - flat[j*2]*flat[i*2+1]
	}
	return sum / 2
}

// PolygonArea returns the unsigned area of a polygon: the exterior ring minus
// its holes, floored at zero.
func PolygonArea(p *geom.Polygon) float64 {
	if p == nil || p.NumLinearRings() == 0 {
		return 0
	}
	area := math.Abs(RingArea(p.LinearRing(0).FlatCoords()))
	for i := 1; i < p.NumLinearRings(); i++ {
		area -= math.Abs(RingArea(p.LinearRing(i).FlatCoords()))
	}
	if area < 0 {
		return 0
	}
	return area
}

// PolygonBounds returns the bounding box of the exterior ring.
func PolygonBounds(p *geom.Polygon) BoundingBox {
	b := EmptyBounds()
	if p == nil || p.NumLinearRings() == 0 {
		return b
	}
	flat := p.LinearRing(0).FlatCoords()
	for i := 0; i+1 < len(flat); i += 2 {
		b = b.Extend(flat[i], flat[i+1])
	}
	return b
}

// PointInRing reports whether (x, y) is strictly inside the flat XY ring,
// by ray casting.
func PointInRing(flat []float64, x, y float64) bool {
	n := len(flat) / 2
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[i*2], flat[i*2+1]
		xj, yj := flat[j*2], flat[j*2+1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PointInPolygon reports whether (x, y) lies in the polygon interior,
// excluding its holes.
func PointInPolygon(p *geom.Polygon, x, y float64) bool {
	if p == nil || p.NumLinearRings() == 0 {
		return false
	}
	if !PointInRing(p.LinearRing(0).FlatCoords(), x, y) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if PointInRing(p.LinearRing(i).FlatCoords(), x, y) {
			return false
		}
	}
	return true
}

// CloseRing appends the first vertex if the flat ring is not already closed.
func CloseRing(flat []float64) []float64 {
	n := len(flat)
	if n < 6 {
		return flat
	}
	if flat[0] == flat[n-2] && flat[1] == flat[n-1] {
		return flat
	}
	return append(flat, flat[0], flat[1])
}

// NewPolygonFromRings builds an XY polygon from flat rings, closing each.
// The first ring is the exterior.
func NewPolygonFromRings(rings ...[]float64) (*geom.Polygon, error) {
	if len(rings) == 0 {
		return nil, eris.New("geomodel: polygon needs at least one ring")
	}
	p := geom.NewPolygon(geom.XY)
	for _, flat := range rings {
		ring := geom.NewLinearRingFlat(geom.XY, CloseRing(flat))
		if err := p.Push(ring); err != nil {
			return nil, eris.Wrap(err, "geomodel: push ring")
		}
	}
	return p, nil
}
