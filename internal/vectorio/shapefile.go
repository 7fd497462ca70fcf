package vectorio

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// ReadShapefileLayer loads polygon records from a shapefile. The category
// attribute comes from nameField (case-insensitive); records with a missing
// or empty attribute are kept with an empty category. Shapefile part rings
// are regrouped so holes attach to the exterior that precedes them.
func ReadShapefileLayer(path, nameField, crs string) (*geomodel.Layer, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vectorio: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader.Fields(), nameField)
	layer := &geomodel.Layer{CRS: crs}
	var skipped int

	for reader.Next() {
		n, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		category := ""
		if nameIdx >= 0 {
			category = strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		}

		for j, p := range polygonsFromParts(poly) {
			id := fmt.Sprintf("%s/%d", category, n)
			if category == "" {
				id = fmt.Sprintf("record/%d", n)
			}
			if j > 0 {
				id = fmt.Sprintf("%s/%d", id, j)
			}
			layer.Features = append(layer.Features, geomodel.Feature{
				ID:       id,
				Category: category,
				Area:     geomodel.PolygonArea(p),
				Geom:     p,
			})
		}
	}

	if skipped > 0 {
		zap.L().Debug("vectorio: skipped non-polygon shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return layer, nil
}

// ReadShapefilePoints loads point records for the point-join overlay.
func ReadShapefilePoints(path, nameField string) ([]geomodel.Point, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vectorio: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader.Fields(), nameField)
	var points []geomodel.Point

	for reader.Next() {
		n, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			continue
		}
		id := fmt.Sprintf("point/%d", n)
		if nameIdx >= 0 {
			if v := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00")); v != "" {
				id = v
			}
		}
		points = append(points, geomodel.Point{ID: id, X: pt.X, Y: pt.Y})
	}
	return points, nil
}

func fieldIndex(fields []shp.Field, name string) int {
	for i, f := range fields {
		fname := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(fname, name) {
			return i
		}
	}
	return -1
}

// polygonsFromParts regroups shapefile rings into polygons. Shapefiles wind
// exteriors clockwise in a y-up frame, so a negative shoelace area marks an
// exterior and a positive one marks a hole.
func polygonsFromParts(p *shp.Polygon) []*geom.Polygon {
	var polys []*geom.Polygon
	var current [][]float64

	flush := func() {
		if len(current) == 0 {
			return
		}
		poly, err := geomodel.NewPolygonFromRings(current...)
		if err == nil {
			polys = append(polys, poly)
		}
		current = nil
	}

	parts := append([]int32{}, p.Parts...)
	parts = append(parts, int32(len(p.Points)))
	for i := 0; i+1 < len(parts); i++ {
		ring := flatRing(p.Points[parts[i]:parts[i+1]])
		if len(ring) < 8 {
			continue
		}
		if geomodel.RingArea(ring) < 0 {
			// New exterior. Normalize winding to positive.
			flush()
			current = [][]float64{reverseFlat(ring)}
		} else if len(current) > 0 {
			current = append(current, reverseFlat(ring))
		}
	}
	flush()
	return polys
}

func flatRing(pts []shp.Point) []float64 {
	ring := make([]float64, 0, 2*len(pts))
	for _, pt := range pts {
		ring = append(ring, pt.X, pt.Y)
	}
	return ring
}

func reverseFlat(ring []float64) []float64 {
	out := make([]float64, len(ring))
	n := len(ring) / 2
	for i := 0; i < n; i++ {
		out[2*i] = ring[len(ring)-2*(i+1)]
		out[2*i+1] = ring[len(ring)-2*(i+1)+1]
	}
	return out
}
