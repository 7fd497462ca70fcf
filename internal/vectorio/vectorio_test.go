package vectorio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

func testLayer(t *testing.T) *geomodel.Layer {
	t.Helper()
	sq, err := geomodel.NewPolygonFromRings([]float64{-82, 41, -81, 41, -81, 42, -82, 42, -82, 41})
	require.NoError(t, err)
	return &geomodel.Layer{CRS: geomodel.CRSWGS84, Features: []geomodel.Feature{
		{ID: "0-9 Mbps/0", Category: "0-9 Mbps", Hex: "#bb1122", Area: 1, Geom: sq},
	}}
}

func TestGeoJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.geojson")
	require.NoError(t, WriteGeoJSON(path, testLayer(t)))

	got, err := ReadGeoJSONLayer(path, "speed_category", geomodel.CRSWGS84)
	require.NoError(t, err)
	require.Len(t, got.Features, 1)

	f := got.Features[0]
	assert.Equal(t, "0-9 Mbps/0", f.ID)
	assert.Equal(t, "0-9 Mbps", f.Category)
	assert.Equal(t, "#bb1122", f.Hex)
	assert.InDelta(t, 1.0, f.Area, 1e-9)
	assert.Equal(t, geomodel.BoundingBox{XMin: -82, YMin: 41, XMax: -81, YMax: 42}, f.Bounds())
}

func TestWriteGeoJSON_Properties(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layer.geojson")
	require.NoError(t, WriteGeoJSON(path, testLayer(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"FeatureCollection"`)
	assert.Contains(t, s, `"speed_category"`)
	assert.Contains(t, s, `"color_code"`)
	assert.Contains(t, s, `"area"`)
}

func TestReadGeoJSONLayer_MissingFile(t *testing.T) {
	_, err := ReadGeoJSONLayer(filepath.Join(t.TempDir(), "nope.geojson"), "name", geomodel.CRSWGS84)
	require.Error(t, err)
}

func TestReadGeoJSONPoints(t *testing.T) {
	geojson := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-81.7, 41.5]},
			 "properties": {"name": "library"}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-81.6, 41.45]},
			 "properties": {}}
		]
	}`
	path := filepath.Join(t.TempDir(), "points.geojson")
	require.NoError(t, os.WriteFile(path, []byte(geojson), 0o644))

	points, err := ReadGeoJSONPoints(path, "name")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "library", points[0].ID)
	assert.InDelta(t, -81.7, points[0].X, 1e-12)
	assert.InDelta(t, 41.5, points[0].Y, 1e-12)
	assert.NotEmpty(t, points[1].ID)
}

func TestReadPointsCSV(t *testing.T) {
	csv := "name,lon,lat\nlibrary,-81.7,41.5\nschool,-81.6,41.45\n"
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	points, err := ReadPointsCSV(path)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "library", points[0].ID)
	assert.InDelta(t, -81.7, points[0].X, 1e-12)
	assert.InDelta(t, 41.5, points[0].Y, 1e-12)
	assert.Equal(t, "school", points[1].ID)
}

func TestReadPointsCSV_AlternateHeaders(t *testing.T) {
	csv := "x,y\n1.5,2.5\n"
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	points, err := ReadPointsCSV(path)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 1.5, points[0].X, 1e-12)
	assert.InDelta(t, 2.5, points[0].Y, 1e-12)
}

func TestReadPointsCSV_MissingColumns(t *testing.T) {
	csv := "a,b\n1,2\n"
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	_, err := ReadPointsCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coordinate columns")
}

func TestReadPointsCSV_BadCoordinate(t *testing.T) {
	csv := "lon,lat\nnot-a-number,41.5\n"
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	_, err := ReadPointsCSV(path)
	require.Error(t, err)
}
