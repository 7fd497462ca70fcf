// Package vectorio reads and writes the vector interchange formats the
// digitizer speaks: GeoJSON for layer output and external datasets,
// shapefiles for boundary data, CSV for point locations.
package vectorio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// WriteGeoJSON serializes the layer as a GeoJSON FeatureCollection with
// speed_category, color_code, and area properties on every feature.
func WriteGeoJSON(path string, layer *geomodel.Layer) error {
	fc := &geojson.FeatureCollection{}
	for _, f := range layer.Features {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       f.ID,
			Geometry: f.Geom,
			Properties: map[string]interface{}{
				"speed_category": f.Category,
				"color_code":     f.Hex,
				"area":           f.Area,
			},
		})
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "vectorio: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "vectorio: write %s", path)
	}
	return nil
}

// ReadGeoJSONLayer loads a polygon FeatureCollection. The category attribute
// is taken from categoryProp; features without it keep an empty category.
// MultiPolygons are split into one feature per part.
func ReadGeoJSONLayer(path, categoryProp, crs string) (*geomodel.Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vectorio: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "vectorio: unmarshal %s", path)
	}

	layer := &geomodel.Layer{CRS: crs}
	for i, gf := range fc.Features {
		category := ""
		hex := ""
		if gf.Properties != nil {
			if v, ok := gf.Properties[categoryProp].(string); ok {
				category = v
			}
			if v, ok := gf.Properties["color_code"].(string); ok {
				hex = v
			}
		}
		id := gf.ID
		if id == "" {
			id = fmt.Sprintf("feature/%d", i)
		}
		for j, poly := range splitPolygons(gf.Geometry) {
			fid := id
			if j > 0 {
				fid = fmt.Sprintf("%s/%d", id, j)
			}
			layer.Features = append(layer.Features, geomodel.Feature{
				ID:       fid,
				Category: category,
				Hex:      hex,
				Area:     geomodel.PolygonArea(poly),
				Geom:     poly,
			})
		}
	}
	return layer, nil
}

// ReadGeoJSONPoints loads Point features for the point-join overlay.
func ReadGeoJSONPoints(path, idProp string) ([]geomodel.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vectorio: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "vectorio: unmarshal %s", path)
	}

	var points []geomodel.Point
	for i, gf := range fc.Features {
		pt, ok := gf.Geometry.(*geom.Point)
		if !ok {
			continue
		}
		id := gf.ID
		if gf.Properties != nil {
			if v, ok := gf.Properties[idProp].(string); ok && v != "" {
				id = v
			}
		}
		if id == "" {
			id = fmt.Sprintf("point/%d", i)
		}
		points = append(points, geomodel.Point{ID: id, X: pt.X(), Y: pt.Y()})
	}
	return points, nil
}

// splitPolygons flattens a geometry into plain polygons.
func splitPolygons(g geom.T) []*geom.Polygon {
	switch t := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{t}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			out = append(out, t.Polygon(i))
		}
		return out
	default:
		return nil
	}
}
