package geomodel

import (
	"github.com/twpayne/go-geom"
)

// CRSWGS84 is the coordinate reference identity of georeferenced layers.
const CRSWGS84 = "EPSG:4326"

// CRSPixel marks layers still in raster pixel space.
const CRSPixel = "pixel"

// Feature is one attributed polygon: a speed-category region with its
// display color and area. Area is recomputed after simplification and again
// after georeferencing, in the units of the layer's CRS.
type Feature struct {
	ID       string
	Category string
	Hex      string
	Area     float64
	Geom     *geom.Polygon
}

// Bounds returns the feature's bounding box.
func (f Feature) Bounds() BoundingBox { return PolygonBounds(f.Geom) }

// Layer is an attributed vector layer: the output of the pipeline and the
// input to the overlay engine.
type Layer struct {
	CRS      string
	Features []Feature
}

// TotalArea sums the feature areas.
func (l *Layer) TotalArea() float64 {
	var sum float64
	for _, f := range l.Features {
		sum += f.Area
	}
	return sum
}

// CategoryCounts returns the number of features per category label.
func (l *Layer) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range l.Features {
		counts[f.Category]++
	}
	return counts
}

// Bounds returns the bounding box of every feature in the layer.
func (l *Layer) Bounds() BoundingBox {
	b := EmptyBounds()
	for _, f := range l.Features {
		fb := f.Bounds()
		b = b.Extend(fb.XMin, fb.YMin)
		b = b.Extend(fb.XMax, fb.YMax)
	}
	return b
}

// Point is a named location used by the point-join overlay.
type Point struct {
	ID string
	X  float64
	Y  float64
}
