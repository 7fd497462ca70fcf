package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/overlay"
)

func TestWriteOverlayWorkbook(t *testing.T) {
	result := &overlay.Result{
		Intersections: []overlay.Intersection{
			{FeatureA: "fast/0", FeatureB: "tract/0", CategoryA: "fast", CategoryB: "tract-1", Area: 0.25},
			{FeatureA: "fast/1", FeatureB: "tract/0", CategoryA: "fast", CategoryB: "tract-1", Area: 0.50},
		},
		Aggregates: []overlay.Aggregate{
			{CategoryA: "fast", CategoryB: "tract-1", TotalArea: 0.75, Count: 2},
		},
		Excluded: []overlay.Exclusion{
			{Layer: "a", FeatureID: "fast/9", Category: "fast", Reason: "exterior ring self-intersects"},
		},
	}

	path := filepath.Join(t.TempDir(), "overlay.xlsx")
	require.NoError(t, WriteOverlayWorkbook(path, result))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Aggregates", f.Sheets[0].Name)
	assert.Equal(t, "Intersections", f.Sheets[1].Name)
	assert.Equal(t, "Excluded", f.Sheets[2].Name)

	// Header plus one aggregate row.
	require.Len(t, f.Sheets[0].Rows, 2)
	assert.Equal(t, "fast", f.Sheets[0].Rows[1].Cells[0].String())
	assert.Equal(t, 2, len(f.Sheets[1].Rows)-1)
}

func TestWriteOverlayWorkbook_NoExclusions(t *testing.T) {
	result := &overlay.Result{
		Aggregates: []overlay.Aggregate{{CategoryA: "a", CategoryB: "b", TotalArea: 1, Count: 1}},
	}
	path := filepath.Join(t.TempDir(), "overlay.xlsx")
	require.NoError(t, WriteOverlayWorkbook(path, result))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 2)
}

func TestWritePointMatchWorkbook(t *testing.T) {
	matches := []overlay.PointMatch{
		{Point: geomodel.Point{ID: "library", X: -81.7, Y: 41.5}, Matched: true, FeatureID: "fast/0", Category: "fast"},
		{Point: geomodel.Point{ID: "school", X: -81.0, Y: 41.0}, Matched: false},
	}

	path := filepath.Join(t.TempDir(), "points.xlsx")
	require.NoError(t, WritePointMatchWorkbook(path, matches))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	require.Len(t, f.Sheets[0].Rows, 3)
	assert.Equal(t, "library", f.Sheets[0].Rows[1].Cells[0].String())
}
