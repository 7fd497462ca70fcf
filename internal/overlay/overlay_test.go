package overlay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

func square(t *testing.T, x0, y0, x1, y1 float64) *geomodel.Feature {
	t.Helper()
	p, err := geomodel.NewPolygonFromRings([]float64{x0, y0, x1, y0, x1, y1, x0, y1, x0, y0})
	require.NoError(t, err)
	return &geomodel.Feature{Area: geomodel.PolygonArea(p), Geom: p}
}

func layerOf(crs string, features ...geomodel.Feature) *geomodel.Layer {
	return &geomodel.Layer{CRS: crs, Features: features}
}

func feature(t *testing.T, id, category string, x0, y0, x1, y1 float64) geomodel.Feature {
	t.Helper()
	f := square(t, x0, y0, x1, y1)
	f.ID = id
	f.Category = category
	return *f
}

func TestIntersect_OverlappingSquares(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 2, 2))
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract-1", 1, 1, 3, 3))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	require.Len(t, res.Intersections, 1)

	ix := res.Intersections[0]
	assert.Equal(t, "a/0", ix.FeatureA)
	assert.Equal(t, "b/0", ix.FeatureB)
	assert.InDelta(t, 1.0, ix.Area, 1e-9)

	require.Len(t, res.Aggregates, 1)
	assert.Equal(t, "fast", res.Aggregates[0].CategoryA)
	assert.Equal(t, "tract-1", res.Aggregates[0].CategoryB)
	assert.InDelta(t, 1.0, res.Aggregates[0].TotalArea, 1e-9)
	assert.Equal(t, 1, res.Aggregates[0].Count)
}

func TestIntersectRings_CollinearSharedEdge(t *testing.T) {
	// The bottom edges are collinear and the left clip edge meets the subject
	// boundary at vertices only, so no proper crossing exists.
	subject := []float64{0, 0, 2, 0, 2, 2, 0, 2, 0, 0}
	clip := []float64{1, 0, 3, 0, 3, 2, 1, 2, 1, 0}

	rings, ok := intersectRings(subject, clip)
	require.True(t, ok)
	require.Len(t, rings, 1)
	assert.InDelta(t, 2.0, geomodel.RingArea(rings[0]), 1e-6)
}

func TestIntersect_CollinearSharedEdge(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 2, 2))
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 1, 0, 3, 2))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	require.Len(t, res.Intersections, 1)
	assert.InDelta(t, 2.0, res.Intersections[0].Area, 1e-6)
	assert.Empty(t, res.Excluded)
}

func TestIntersect_EdgeTouchIsNotOverlap(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 2, 2))
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 2, 0, 4, 2))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Intersections)
	assert.Empty(t, res.Excluded)
}

func TestIntersect_AreaNeverExceedsInputs(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 2, 2))
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 1.5, 0.5, 4, 3))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	for _, ix := range res.Intersections {
		assert.LessOrEqual(t, ix.Area, a.Features[0].Area+1e-9)
		assert.LessOrEqual(t, ix.Area, b.Features[0].Area+1e-9)
	}
}

func TestIntersect_Containment(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 4, 4))
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 1, 1, 2, 2))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	require.Len(t, res.Intersections, 1)
	assert.InDelta(t, 1.0, res.Intersections[0].Area, 1e-9)
}

func TestIntersect_Disjoint(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 1, 1))
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 5, 5, 6, 6))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Intersections)
	assert.Empty(t, res.Aggregates)
}

func TestIntersect_CRSMismatch(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 1, 1))
	b := layerOf(geomodel.CRSPixel, feature(t, "b/0", "tract", 0, 0, 1, 1))

	_, err := Intersect(context.Background(), a, b, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CRS mismatch")
}

func TestIntersect_InvalidFeatureExcludedNotFatal(t *testing.T) {
	bowtie, err := geomodel.NewPolygonFromRings([]float64{0, 0, 4, 4, 4, 0, 0, 3, 0, 0})
	require.NoError(t, err)

	a := layerOf(geomodel.CRSWGS84,
		feature(t, "a/0", "fast", 0, 0, 2, 2),
		geomodel.Feature{ID: "a/1", Category: "fast", Area: 2, Geom: bowtie},
	)
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 1, 1, 3, 3))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)

	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "a/1", res.Excluded[0].FeatureID)
	assert.Equal(t, "a", res.Excluded[0].Layer)
	assert.NotEmpty(t, res.Excluded[0].Reason)

	// The valid feature still intersects.
	require.Len(t, res.Intersections, 1)
	assert.Equal(t, "a/0", res.Intersections[0].FeatureA)
}

func TestIntersect_HoleSubtracted(t *testing.T) {
	donut, err := geomodel.NewPolygonFromRings(
		[]float64{0, 0, 6, 0, 6, 6, 0, 6, 0, 0},
		[]float64{2, 2, 2, 4, 4, 4, 4, 2, 2, 2},
	)
	require.NoError(t, err)

	a := layerOf(geomodel.CRSWGS84, geomodel.Feature{
		ID: "a/0", Category: "fast", Area: geomodel.PolygonArea(donut), Geom: donut,
	})
	b := layerOf(geomodel.CRSWGS84, feature(t, "b/0", "tract", 1, 1, 5, 5))

	res, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)
	require.Len(t, res.Intersections, 1)

	// 4x4 clip square minus the 2x2 hole.
	assert.InDelta(t, 12.0, res.Intersections[0].Area, 1e-9)
}

func TestIntersect_Deterministic(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84,
		feature(t, "a/0", "fast", 0, 0, 2, 2),
		feature(t, "a/1", "slow", 2, 0, 4, 2),
		feature(t, "a/2", "fast", 0, 2, 2, 4),
	)
	b := layerOf(geomodel.CRSWGS84,
		feature(t, "b/0", "t1", 1, 1, 3, 3),
		feature(t, "b/1", "t2", 0.5, 0.5, 1.5, 3.5),
	)

	first, err := Intersect(context.Background(), a, b, Options{Workers: 4})
	require.NoError(t, err)
	second, err := Intersect(context.Background(), a, b, Options{Workers: 1})
	require.NoError(t, err)

	require.Equal(t, len(first.Intersections), len(second.Intersections))
	for i := range first.Intersections {
		assert.Equal(t, first.Intersections[i].FeatureA, second.Intersections[i].FeatureA)
		assert.Equal(t, first.Intersections[i].FeatureB, second.Intersections[i].FeatureB)
		assert.InDelta(t, first.Intersections[i].Area, second.Intersections[i].Area, 1e-12)
	}
	assert.Equal(t, first.Aggregates, second.Aggregates)
}

func TestIntersect_EmptyLayer(t *testing.T) {
	a := layerOf(geomodel.CRSWGS84, feature(t, "a/0", "fast", 0, 0, 1, 1))
	_, err := Intersect(context.Background(), a, layerOf(geomodel.CRSWGS84), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, geomodel.ErrDegenerateInput)
}

func TestPointJoin(t *testing.T) {
	layer := layerOf(geomodel.CRSWGS84,
		feature(t, "fast/0", "fast", 0, 0, 2, 2),
		feature(t, "slow/0", "slow", 3, 3, 5, 5),
	)
	points := []geomodel.Point{
		{ID: "p1", X: 1, Y: 1},
		{ID: "p2", X: 4, Y: 4},
		{ID: "p3", X: 10, Y: 10},
	}

	matches, err := PointJoin(layer, points)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.True(t, matches[0].Matched)
	assert.Equal(t, "fast/0", matches[0].FeatureID)
	assert.Equal(t, "fast", matches[0].Category)

	assert.True(t, matches[1].Matched)
	assert.Equal(t, "slow/0", matches[1].FeatureID)

	// Unmatched points are reported, not errors.
	assert.False(t, matches[2].Matched)
	assert.Empty(t, matches[2].FeatureID)
}

func TestPointJoin_OverlapEarliestWins(t *testing.T) {
	layer := layerOf(geomodel.CRSWGS84,
		feature(t, "first/0", "first", 0, 0, 4, 4),
		feature(t, "second/0", "second", 0, 0, 4, 4),
	)

	matches, err := PointJoin(layer, []geomodel.Point{{ID: "p", X: 2, Y: 2}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "first/0", matches[0].FeatureID)
}
