package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

func testRaster(t *testing.T, width, height int, fill func(x, y int) [3]uint8) *geomodel.Raster {
	t.Helper()
	r, err := geomodel.NewRaster(width, height)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := fill(x, y)
			r.SetRGB(x, y, c[0], c[1], c[2])
		}
	}
	return r
}

func TestRun_SingleMembership(t *testing.T) {
	palette := geomodel.Palette{
		geomodel.CategoryAround("red", "#bb1122", 187, 17, 34, 10),
		geomodel.CategoryAround("green", "#59903b", 89, 144, 59, 10),
	}
	// Top two rows red, bottom two rows green.
	r := testRaster(t, 4, 4, func(x, y int) [3]uint8 {
		if y < 2 {
			return [3]uint8{187, 17, 34}
		}
		return [3]uint8{89, 144, 59}
	})

	res, err := Run(context.Background(), r, palette, Options{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 8, res.Counts["red"])
	assert.Equal(t, 8, res.Counts["green"])
	assert.Equal(t, 0, res.Ambiguous)
	assert.Empty(t, res.Widened)

	// Masks partition the raster: no pixel in two masks.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			red := res.Masks["red"].Get(x, y)
			green := res.Masks["green"].Get(x, y)
			assert.False(t, red && green, "pixel (%d,%d) in two masks", x, y)
			assert.True(t, red || green, "pixel (%d,%d) unassigned", x, y)
		}
	}
}

func TestRun_ExclusionBeatsInclusion(t *testing.T) {
	// The gray range sits entirely inside the category tolerance window.
	palette := geomodel.Palette{
		{Label: "road", Low: [3]uint8{100, 100, 100}, High: [3]uint8{150, 150, 150}, Exclude: true},
		geomodel.CategoryAround("mid", "#787878", 120, 120, 120, 40),
	}
	r := testRaster(t, 2, 2, func(x, y int) [3]uint8 {
		return [3]uint8{120, 120, 120}
	})

	res, err := Run(context.Background(), r, palette, Options{Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Counts["mid"])
	assert.True(t, res.Masks["mid"].Empty())
}

func TestRun_PriorityResolvesOverlap(t *testing.T) {
	// Both ranges contain the pixel color; the first category wins.
	palette := geomodel.Palette{
		geomodel.CategoryAround("first", "#646464", 100, 100, 100, 20),
		geomodel.CategoryAround("second", "#6e6e6e", 110, 110, 110, 20),
	}
	r := testRaster(t, 3, 1, func(x, y int) [3]uint8 {
		return [3]uint8{105, 105, 105}
	})

	res, err := Run(context.Background(), r, palette, Options{Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Counts["first"])
	assert.Equal(t, 0, res.Counts["second"])
	assert.Equal(t, 3, res.Ambiguous)
}

func TestRun_WidenedFallback(t *testing.T) {
	// Strictly, no pixel matches; all sit 10 channel units off, inside the
	// widened margin.
	palette := geomodel.Palette{
		geomodel.CategoryAround("red", "#bb1122", 187, 17, 34, 5),
	}
	r := testRaster(t, 4, 4, func(x, y int) [3]uint8 {
		return [3]uint8{197, 27, 44}
	})

	res, err := Run(context.Background(), r, palette, Options{MinPixelCount: 10, WidenMargin: 15, Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"red"}, res.Widened)
	assert.Equal(t, 16, res.Counts["red"])
}

func TestRun_WidenedNeverClaimsExcluded(t *testing.T) {
	palette := geomodel.Palette{
		{Label: "background", Low: [3]uint8{235, 235, 235}, High: [3]uint8{255, 255, 255}, Exclude: true},
		geomodel.CategoryAround("pale", "#e6e6e6", 230, 230, 230, 2),
	}
	// All pixels are background white, inside the widened pale window.
	r := testRaster(t, 4, 4, func(x, y int) [3]uint8 {
		return [3]uint8{240, 240, 240}
	})

	res, err := Run(context.Background(), r, palette, Options{MinPixelCount: 10, WidenMargin: 15, Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Counts["pale"])
	assert.True(t, res.Masks["pale"].Empty())
}

func TestRun_EmptyRaster(t *testing.T) {
	_, err := Run(context.Background(), nil, geomodel.DefaultPalette(), DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, geomodel.ErrDegenerateInput)
}

func TestRun_Deterministic(t *testing.T) {
	palette := geomodel.DefaultPalette()
	r := testRaster(t, 16, 16, func(x, y int) [3]uint8 {
		switch {
		case (x+y)%7 == 0:
			return [3]uint8{187, 17, 34}
		case (x+y)%3 == 0:
			return [3]uint8{84, 173, 89}
		default:
			return [3]uint8{255, 255, 255}
		}
	})

	first, err := Run(context.Background(), r, palette, Options{Workers: 4})
	require.NoError(t, err)
	second, err := Run(context.Background(), r, palette, Options{Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, first.Counts, second.Counts)
	for label, m := range first.Masks {
		assert.True(t, m.Equal(second.Masks[label]), "mask %q differs between runs", label)
	}
}

func TestPixel(t *testing.T) {
	palette := geomodel.DefaultPalette()

	label, ok := Pixel(palette, 187, 17, 34)
	require.True(t, ok)
	assert.Equal(t, "0-9 Mbps", label)

	// The default ±50 windows overlap: the 100+ representative color also
	// falls inside the 50-100 window, which wins on priority.
	label, ok = Pixel(palette, 84, 173, 89)
	require.True(t, ok)
	assert.Equal(t, "50-100 Mbps", label)

	_, ok = Pixel(palette, 255, 255, 255)
	assert.False(t, ok)
}
