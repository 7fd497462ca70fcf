package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// bandRaster paints the top half of a 4x4 raster in the lowest speed tier's
// color and the bottom half in background white.
func bandRaster(t *testing.T) *geomodel.Raster {
	t.Helper()
	r, err := geomodel.NewRaster(4, 4)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if y < 2 {
				r.SetRGB(x, y, 187, 17, 34)
			} else {
				r.SetRGB(x, y, 255, 255, 255)
			}
		}
	}
	return r
}

func bandParams() Params {
	p := DefaultParams()
	p.Target = geomodel.BoundingBox{XMin: -82, YMin: 41, XMax: -81, YMax: 42}
	p.MinPixelCount = 0
	p.WidenMargin = 0
	p.CleanRadius = 0
	p.MinPolygonArea = 0
	p.PixelTolerance = 0.5
	p.GeoTolerance = 0
	p.Workers = 1
	return p
}

func TestRun_EndToEnd(t *testing.T) {
	out, err := Run(context.Background(), bandRaster(t), bandParams())
	require.NoError(t, err)

	require.Len(t, out.Layer.Features, 1)
	f := out.Layer.Features[0]
	assert.Equal(t, "0-9 Mbps/0", f.ID)
	assert.Equal(t, "0-9 Mbps", f.Category)
	assert.Equal(t, "#bb1122", f.Hex)
	assert.Equal(t, geomodel.CRSWGS84, out.Layer.CRS)

	// Top half of the raster covers the northern half of the target extent.
	b := f.Bounds()
	assert.InDelta(t, -82.0, b.XMin, 1e-9)
	assert.InDelta(t, -81.0, b.XMax, 1e-9)
	assert.InDelta(t, 41.5, b.YMin, 1e-9)
	assert.InDelta(t, 42.0, b.YMax, 1e-9)
	assert.InDelta(t, 0.5, f.Area, 1e-9)

	// Exterior wound positive after the y flip.
	assert.Greater(t, geomodel.RingArea(f.Geom.LinearRing(0).FlatCoords()), 0.0)

	assert.Equal(t, 8, out.Report.CategoryPixels["0-9 Mbps"])
	assert.Equal(t, 1, out.Report.CategoryPolygons["0-9 Mbps"])
	assert.Equal(t, 1, out.Report.FeatureCount)
	assert.NotEmpty(t, out.Report.RunID)
	assert.Empty(t, out.Report.Excluded)
}

func TestRun_TwoCategories(t *testing.T) {
	r, err := geomodel.NewRaster(4, 4)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 && y < 2 {
				r.SetRGB(x, y, 187, 17, 34)
			} else {
				r.SetRGB(x, y, 84, 173, 89)
			}
		}
	}

	p := bandParams()
	// Tight ranges keep the 100+ representative color out of the default
	// palette's overlapping 50-100 window.
	p.Palette = geomodel.Palette{
		geomodel.CategoryAround("0-9 Mbps", "#bb1122", 187, 17, 34, 10),
		geomodel.CategoryAround("100+ Mbps", "#54ad59", 84, 173, 89, 10),
	}

	out, err := Run(context.Background(), r, p)
	require.NoError(t, err)
	require.Len(t, out.Layer.Features, 2)

	byCat := make(map[string]geomodel.Feature, 2)
	for _, f := range out.Layer.Features {
		byCat[f.Category] = f
	}

	low, ok := byCat["0-9 Mbps"]
	require.True(t, ok)
	assert.InDelta(t, 0.25, low.Area, 1e-9)
	b := low.Bounds()
	assert.InDelta(t, -82.0, b.XMin, 1e-9)
	assert.InDelta(t, -81.5, b.XMax, 1e-9)
	assert.InDelta(t, 41.5, b.YMin, 1e-9)
	assert.InDelta(t, 42.0, b.YMax, 1e-9)

	high, ok := byCat["100+ Mbps"]
	require.True(t, ok)
	assert.InDelta(t, 0.75, high.Area, 1e-9)
	hb := high.Bounds()
	assert.InDelta(t, -82.0, hb.XMin, 1e-9)
	assert.InDelta(t, -81.0, hb.XMax, 1e-9)
	assert.InDelta(t, 41.0, hb.YMin, 1e-9)
	assert.InDelta(t, 42.0, hb.YMax, 1e-9)

	assert.Equal(t, 4, out.Report.CategoryPixels["0-9 Mbps"])
	assert.Equal(t, 12, out.Report.CategoryPixels["100+ Mbps"])
	assert.Equal(t, 1, out.Report.CategoryPolygons["0-9 Mbps"])
	assert.Equal(t, 1, out.Report.CategoryPolygons["100+ Mbps"])
	assert.Equal(t, 2, out.Report.FeatureCount)
	assert.Empty(t, out.Report.Excluded)
}

func TestRun_PixelLayerPrecedesGeoreferencing(t *testing.T) {
	out, err := Run(context.Background(), bandRaster(t), bandParams())
	require.NoError(t, err)

	require.Len(t, out.PixelLayer.Features, 1)
	assert.Equal(t, geomodel.CRSPixel, out.PixelLayer.CRS)

	b := out.PixelLayer.Features[0].Bounds()
	assert.Equal(t, geomodel.BoundingBox{XMin: 0, YMin: 0, XMax: 4, YMax: 2}, b)
	assert.InDelta(t, 8.0, out.PixelLayer.Features[0].Area, 1e-12)
}

func TestRun_AbsentCategoriesWarnNotFail(t *testing.T) {
	out, err := Run(context.Background(), bandRaster(t), bandParams())
	require.NoError(t, err)

	// Four of the five palette tiers never appear in the raster.
	absent := 0
	for _, w := range out.Report.Warnings {
		if w.Message == "category absent after cleanup" {
			absent++
		}
	}
	assert.Equal(t, 4, absent)
}

func TestRun_DegenerateRaster(t *testing.T) {
	_, err := Run(context.Background(), nil, bandParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, geomodel.ErrDegenerateInput)
}

func TestRun_DegenerateTarget(t *testing.T) {
	p := bandParams()
	p.Target = geomodel.BoundingBox{XMin: -82, YMin: 41, XMax: -82, YMax: 42}
	_, err := Run(context.Background(), bandRaster(t), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, geomodel.ErrDegenerateInput)
}

func TestRun_AllBackgroundYieldsEmptyLayer(t *testing.T) {
	r, err := geomodel.NewRaster(4, 4)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			r.SetRGB(x, y, 255, 255, 255)
		}
	}

	out, err := Run(context.Background(), r, bandParams())
	require.NoError(t, err)
	assert.Empty(t, out.Layer.Features)
	assert.Len(t, out.Report.Warnings, 5)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, geomodel.CRSWGS84, p.CRS)
	assert.Equal(t, 100, p.MinPixelCount)
	assert.InDelta(t, 0.0001, p.GeoTolerance, 1e-12)
	require.NoError(t, p.Palette.Validate())
	require.NoError(t, ClevelandBounds().Validate())
}
