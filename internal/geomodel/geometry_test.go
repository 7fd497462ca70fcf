package geomodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingArea_Orientation(t *testing.T) {
	// Unit square, counter-clockwise in a y-up frame.
	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}
	assert.InDelta(t, 1.0, RingArea(ccw), 1e-12)

	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	assert.InDelta(t, -1.0, RingArea(cw), 1e-12)
}

func TestPolygonArea_WithHole(t *testing.T) {
	outer := []float64{0, 0, 4, 0, 4, 4, 0, 4, 0, 0}
	hole := []float64{1, 1, 1, 2, 2, 2, 2, 1, 1, 1} // negative winding
	p, err := NewPolygonFromRings(outer, hole)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, PolygonArea(p), 1e-12)
}

func TestPointInPolygon(t *testing.T) {
	outer := []float64{0, 0, 4, 0, 4, 4, 0, 4, 0, 0}
	hole := []float64{1, 1, 1, 3, 3, 3, 3, 1, 1, 1}
	p, err := NewPolygonFromRings(outer, hole)
	require.NoError(t, err)

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"interior", 3.5, 3.5, true},
		{"inside hole", 2, 2, false},
		{"outside", 5, 5, false},
		{"far outside", -1, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInPolygon(p, tt.x, tt.y))
		})
	}
}

func TestBoundingBox_Validate(t *testing.T) {
	ok := BoundingBox{XMin: -81.82, YMin: 41.39, XMax: -81.55, YMax: 41.60}
	require.NoError(t, ok.Validate())

	degenerate := BoundingBox{XMin: 0, YMin: 0, XMax: 0, YMax: 1}
	err := degenerate.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestBoundingBox_Intersects(t *testing.T) {
	a := BoundingBox{XMin: 0, YMin: 0, XMax: 2, YMax: 2}
	assert.True(t, a.Intersects(BoundingBox{XMin: 1, YMin: 1, XMax: 3, YMax: 3}))
	assert.False(t, a.Intersects(BoundingBox{XMin: 3, YMin: 3, XMax: 4, YMax: 4}))
}

func TestLayer_Counts(t *testing.T) {
	sq, err := NewPolygonFromRings([]float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0})
	require.NoError(t, err)

	l := &Layer{CRS: CRSWGS84, Features: []Feature{
		{ID: "a/0", Category: "a", Area: 1, Geom: sq},
		{ID: "a/1", Category: "a", Area: 1, Geom: sq},
		{ID: "b/0", Category: "b", Area: 1, Geom: sq},
	}}
	assert.InDelta(t, 3.0, l.TotalArea(), 1e-12)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, l.CategoryCounts())
}
