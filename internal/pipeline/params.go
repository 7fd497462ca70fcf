package pipeline

import (
	"github.com/sells-group/digitize-cli/internal/classify"
	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/mask"
	"github.com/sells-group/digitize-cli/internal/vectorize"
)

// Params collects every tunable of a digitizing run. The original scripts
// re-implemented the pipeline once per parameter variation; here the
// variations are configuration only.
type Params struct {
	Palette geomodel.Palette
	// Target is the geographic extent the raster depicts.
	Target geomodel.BoundingBox
	CRS    string

	// Classifier.
	MinPixelCount int
	WidenMargin   int

	// Mask cleanup.
	CleanShape     mask.Shape
	CleanRadius    int
	MajorityWindow int

	// Vectorizer.
	Connectivity   vectorize.Connectivity
	MinPolygonArea float64

	// Simplification, one tolerance per coordinate system. Pixel tolerance
	// applies before georeferencing, geographic tolerance after; the two are
	// never interchangeable.
	PixelTolerance float64
	GeoTolerance   float64

	// Workers bounds per-category concurrency; 0 means NumCPU.
	Workers int
}

// DefaultParams returns the parameters the Cuyahoga map was digitized with:
// ±50 channel tolerance palette, 100 px noise floor, 2 px simplification,
// 1e-4 degree simplification after georeferencing.
func DefaultParams() Params {
	return Params{
		Palette:        geomodel.DefaultPalette(),
		CRS:            geomodel.CRSWGS84,
		MinPixelCount:  classify.DefaultOptions().MinPixelCount,
		WidenMargin:    classify.DefaultOptions().WidenMargin,
		CleanShape:     mask.Diamond,
		CleanRadius:    2,
		Connectivity:   vectorize.Connect8,
		MinPolygonArea: 100,
		PixelTolerance: 2.0,
		GeoTolerance:   0.0001,
	}
}

// ClevelandBounds is the geographic extent of the source broadband map.
func ClevelandBounds() geomodel.BoundingBox {
	return geomodel.BoundingBox{XMin: -81.82, YMin: 41.39, XMax: -81.55, YMax: 41.60}
}
