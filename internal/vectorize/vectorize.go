// Package vectorize converts cleaned category masks into polygon geometries,
// one polygon per maximal connected region, with enclosed regions of other
// categories becoming interior rings.
package vectorize

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/mask"
)

// Options tunes vectorization.
type Options struct {
	Connectivity Connectivity
	// MinArea is the pixel-space noise floor: traced polygons below it are
	// discarded as classification noise. It scales with image resolution and
	// is therefore a parameter, not a constant.
	MinArea float64
}

// DefaultOptions matches the contour parameters of the source digitizing
// scripts (8-connected regions, 100 px minimum area at 300 dpi).
func DefaultOptions() Options {
	return Options{Connectivity: Connect8, MinArea: 100}
}

// Run traces every connected true-region of the mask into a polygon in pixel
// coordinates. The output order and vertices are fully deterministic for a
// given mask. An empty result is not an error.
func Run(m *mask.Mask, opts Options) ([]*geom.Polygon, error) {
	if m == nil || m.Width() == 0 || m.Height() == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "vectorize: empty mask")
	}
	conn := opts.Connectivity
	if conn != Connect4 && conn != Connect8 {
		conn = Connect8
	}

	comps := components(m, conn)
	var polys []*geom.Polygon
	dropped := 0
	for _, comp := range comps {
		member := make(map[[2]int]bool, len(comp.cells))
		for _, c := range comp.cells {
			member[c] = true
		}
		inComp := func(x, y int) bool { return member[[2]int{x, y}] }

		rings := traceComponent(comp, inComp)
		poly, extras, err := assemble(rings)
		if err != nil {
			return nil, err
		}
		for _, p := range append([]*geom.Polygon{poly}, extras...) {
			if p == nil {
				continue
			}
			if geomodel.PolygonArea(p) < opts.MinArea {
				dropped++
				continue
			}
			polys = append(polys, p)
		}
	}
	if dropped > 0 {
		zap.L().Debug("vectorize: dropped sub-threshold polygons",
			zap.Int("dropped", dropped), zap.Float64("min_area", opts.MinArea))
	}
	return polys, nil
}

// assemble splits traced rings into one exterior polygon with holes. Rings
// with positive signed area are exteriors, negative ones are holes of the
// component. A pinched component can yield more than one exterior; the
// largest keeps the holes and the rest are returned as standalone polygons.
func assemble(rings [][]float64) (*geom.Polygon, []*geom.Polygon, error) {
	var exteriors [][]float64
	var holes [][]float64
	for _, r := range rings {
		if geomodel.RingArea(r) >= 0 {
			exteriors = append(exteriors, r)
		} else {
			holes = append(holes, r)
		}
	}
	if len(exteriors) == 0 {
		return nil, nil, nil
	}
	largest := 0
	for i, r := range exteriors {
		if geomodel.RingArea(r) > geomodel.RingArea(exteriors[largest]) {
			largest = i
		}
	}
	primary, err := geomodel.NewPolygonFromRings(append([][]float64{exteriors[largest]}, holes...)...)
	if err != nil {
		return nil, nil, eris.Wrap(err, "vectorize: assemble polygon")
	}
	var extras []*geom.Polygon
	for i, r := range exteriors {
		if i == largest {
			continue
		}
		p, err := geomodel.NewPolygonFromRings(r)
		if err != nil {
			return nil, nil, eris.Wrap(err, "vectorize: assemble pinched polygon")
		}
		extras = append(extras, p)
	}
	return primary, extras, nil
}
