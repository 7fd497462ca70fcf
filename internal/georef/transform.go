// Package georef maps pixel-space geometry into geographic coordinates with
// an axis-aligned affine transform. No rotation or shear is modeled.
package georef

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// Transform is the affine mapping x' = x*XScale + XOffset,
// y' = y*YScale + YOffset, derived once per run and applied identically to
// every vertex of every polygon.
type Transform struct {
	XScale  float64 `json:"x_scale"`
	YScale  float64 `json:"y_scale"`
	XOffset float64 `json:"x_offset"`
	YOffset float64 `json:"y_offset"`
}

// New derives the transform taking the source box onto the target box. With
// originTop set (the raster convention, row 0 at the top) the y axis is
// flipped so the top of the source maps to the target's north edge. A
// degenerate source extent has no defined transform and fails fast.
func New(source, target geomodel.BoundingBox, originTop bool) (Transform, error) {
	if source.Width() == 0 || source.Height() == 0 {
		return Transform{}, eris.Wrapf(geomodel.ErrTransformUndefined,
			"source extent (%g,%g)-(%g,%g)", source.XMin, source.YMin, source.XMax, source.YMax)
	}
	if err := target.Validate(); err != nil {
		return Transform{}, eris.Wrap(err, "georef: target bbox")
	}

	t := Transform{XScale: target.Width() / source.Width()}
	t.XOffset = target.XMin - source.XMin*t.XScale
	if originTop {
		t.YScale = -target.Height() / source.Height()
		t.YOffset = target.YMax - source.YMin*t.YScale
	} else {
		t.YScale = target.Height() / source.Height()
		t.YOffset = target.YMin - source.YMin*t.YScale
	}
	return t, nil
}

// Apply transforms a single vertex.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.XScale + t.XOffset, y*t.YScale + t.YOffset
}

// Polygon returns a transformed copy of p, every ring included.
func (t Transform) Polygon(p *geom.Polygon) (*geom.Polygon, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "georef: empty polygon")
	}
	rings := make([][]float64, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		src := p.LinearRing(i).FlatCoords()
		dst := make([]float64, len(src))
		for j := 0; j+1 < len(src); j += 2 {
			dst[j], dst[j+1] = t.Apply(src[j], src[j+1])
		}
		rings = append(rings, dst)
	}
	return geomodel.NewPolygonFromRings(rings...)
}

// Layer transforms every feature of a pixel-space layer into the target CRS,
// recomputing areas in the destination units.
func (t Transform) Layer(l *geomodel.Layer, crs string) (*geomodel.Layer, error) {
	out := &geomodel.Layer{CRS: crs, Features: make([]geomodel.Feature, 0, len(l.Features))}
	for _, f := range l.Features {
		g, err := t.Polygon(f.Geom)
		if err != nil {
			return nil, eris.Wrapf(err, "georef: feature %s", f.ID)
		}
		f.Geom = g
		f.Area = geomodel.PolygonArea(g)
		out.Features = append(out.Features, f)
	}
	return out, nil
}
