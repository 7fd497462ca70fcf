// Package pipeline wires the digitizing stages into one parameterized run:
// classification, mask cleanup, vectorization, simplification, and
// georeferencing. Each stage is a pure transformation over the previous
// stage's output.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/digitize-cli/internal/classify"
	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/georef"
	"github.com/sells-group/digitize-cli/internal/mask"
	"github.com/sells-group/digitize-cli/internal/simplify"
	"github.com/sells-group/digitize-cli/internal/vectorize"
)

// Output is a completed run: the georeferenced layer plus its report. The
// pixel-space layer is retained for inspection and tests.
type Output struct {
	Layer      *geomodel.Layer
	PixelLayer *geomodel.Layer
	Transform  georef.Transform
	Report     Report
}

// Run executes the full pipeline over one raster. Degenerate inputs abort
// before any output; per-feature problems are collected on the report while
// the run continues. Failed extraction yields warnings or an empty layer,
// never fabricated placeholder geometry.
func Run(ctx context.Context, raster *geomodel.Raster, params Params) (*Output, error) {
	start := time.Now()
	if raster == nil || raster.Width() == 0 || raster.Height() == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "pipeline: empty raster")
	}
	if err := params.Palette.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: palette")
	}
	if err := params.Target.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: target bbox")
	}

	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting digitize run",
		zap.Int("width", raster.Width()),
		zap.Int("height", raster.Height()),
		zap.Int("categories", len(params.Palette.Speeds())),
	)

	report := Report{
		RunID:            runID,
		StartedAt:        start.UTC(),
		CategoryPixels:   make(map[string]int),
		CategoryPolygons: make(map[string]int),
	}

	// Stage 1: classification.
	cls, err := classify.Run(ctx, raster, params.Palette, classify.Options{
		MinPixelCount: params.MinPixelCount,
		WidenMargin:   params.WidenMargin,
		Workers:       params.Workers,
	})
	if err != nil {
		return nil, err
	}
	report.WidenedFallback = cls.Widened
	report.AmbiguousPixels = cls.Ambiguous
	for label, n := range cls.Counts {
		report.CategoryPixels[label] = n
	}

	// Stages 2-4 run per category; categories are independent and own their
	// masks, so they proceed concurrently. Output order follows palette
	// priority order regardless of scheduling.
	speeds := params.Palette.Speeds()
	type catResult struct {
		features []geomodel.Feature
		warnings []Warning
		excluded []Exclusion
	}
	results := make([]catResult, len(speeds))

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ci, cat := range speeds {
		ci, cat := ci, cat
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &results[ci]

			// Stage 2: mask cleanup.
			cleaned := mask.Clean(cls.Masks[cat.Label], mask.CleanOptions{
				Shape:          params.CleanShape,
				Radius:         params.CleanRadius,
				MajorityWindow: params.MajorityWindow,
			})
			if cleaned.Empty() {
				res.warnings = append(res.warnings, Warning{
					Stage:    "clean",
					Category: cat.Label,
					Message:  "category absent after cleanup",
				})
				return nil
			}

			// Stage 3: vectorization.
			polys, err := vectorize.Run(cleaned, vectorize.Options{
				Connectivity: params.Connectivity,
				MinArea:      params.MinPolygonArea,
			})
			if err != nil {
				return eris.Wrapf(err, "pipeline: vectorize %s", cat.Label)
			}
			if len(polys) == 0 {
				res.warnings = append(res.warnings, Warning{
					Stage:    "vectorize",
					Category: cat.Label,
					Message:  "no polygons above the noise floor",
				})
				return nil
			}

			// Stage 4: simplification and repair, pixel-space tolerance.
			for i, p := range polys {
				id := fmt.Sprintf("%s/%d", cat.Label, i)
				sp, err := simplify.Polygon(p, params.PixelTolerance)
				if err != nil {
					res.excluded = append(res.excluded, Exclusion{
						FeatureID: id,
						Category:  cat.Label,
						Reason:    err.Error(),
					})
					continue
				}
				res.features = append(res.features, geomodel.Feature{
					ID:       id,
					Category: cat.Label,
					Hex:      cat.Hex,
					Area:     geomodel.PolygonArea(sp),
					Geom:     sp,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: category stages")
	}

	pixelLayer := &geomodel.Layer{CRS: geomodel.CRSPixel}
	for ci := range results {
		pixelLayer.Features = append(pixelLayer.Features, results[ci].features...)
		report.Warnings = append(report.Warnings, results[ci].warnings...)
		report.Excluded = append(report.Excluded, results[ci].excluded...)
		report.CategoryPolygons[speeds[ci].Label] = len(results[ci].features)
	}

	// Stage 5: georeferencing. The full raster extent anchors the transform
	// so runs over the same map are comparable regardless of coverage.
	transform, err := georef.New(raster.Bounds(), params.Target, true)
	if err != nil {
		return nil, err
	}
	geoLayer, err := transform.Layer(pixelLayer, params.CRS)
	if err != nil {
		return nil, err
	}

	// The y flip reverses ring winding; re-repair restores orientation and
	// recomputes areas, then geographic-tolerance simplification trims
	// vertices that only mattered at pixel precision.
	for i := range geoLayer.Features {
		f := &geoLayer.Features[i]
		sp, err := simplify.Polygon(f.Geom, params.GeoTolerance)
		if err != nil {
			report.Excluded = append(report.Excluded, Exclusion{
				FeatureID: f.ID,
				Category:  f.Category,
				Reason:    err.Error(),
			})
			continue
		}
		f.Geom = sp
		f.Area = geomodel.PolygonArea(sp)
	}
	geoLayer.Features = dropExcluded(geoLayer.Features, report.Excluded)

	report.FeatureCount = len(geoLayer.Features)
	report.Elapsed = time.Since(start)
	log.Info("pipeline: digitize run complete",
		zap.Int("features", report.FeatureCount),
		zap.Int("warnings", len(report.Warnings)),
		zap.Int("excluded", len(report.Excluded)),
		zap.Duration("elapsed", report.Elapsed),
	)

	return &Output{
		Layer:      geoLayer,
		PixelLayer: pixelLayer,
		Transform:  transform,
		Report:     report,
	}, nil
}

// dropExcluded filters features named in the exclusion list.
func dropExcluded(features []geomodel.Feature, excluded []Exclusion) []geomodel.Feature {
	if len(excluded) == 0 {
		return features
	}
	bad := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		bad[e.FeatureID] = true
	}
	out := features[:0]
	for _, f := range features {
		if !bad[f.ID] {
			out = append(out, f)
		}
	}
	return out
}
