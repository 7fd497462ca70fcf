// Package overlay computes polygon-polygon intersections and polygon-point
// containment joins between independently produced vector layers.
package overlay

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/simplify"
)

// Intersection is one piece of overlap between a feature of layer A and a
// feature of layer B, carrying attributes inherited from both.
type Intersection struct {
	FeatureA  string  `json:"feature_a"`
	FeatureB  string  `json:"feature_b"`
	CategoryA string  `json:"category_a"`
	CategoryB string  `json:"category_b"`
	Area      float64 `json:"area"`
	Geom      *geom.Polygon
}

// Aggregate totals the intersections for one attribute combination.
type Aggregate struct {
	CategoryA string  `json:"category_a"`
	CategoryB string  `json:"category_b"`
	TotalArea float64 `json:"total_area"`
	Count     int     `json:"count"`
}

// Exclusion identifies a feature dropped from the overlay because its
// geometry stayed invalid after repair. Exclusions are reported, never
// silent.
type Exclusion struct {
	Layer     string `json:"layer"`
	FeatureID string `json:"feature_id"`
	Category  string `json:"category"`
	Reason    string `json:"reason"`
}

// Result is the output of an intersection overlay.
type Result struct {
	Intersections []Intersection
	Aggregates    []Aggregate
	Excluded      []Exclusion
}

// Options tunes the overlay.
type Options struct {
	// Workers bounds concurrency across features of layer A; 0 means NumCPU.
	Workers int
}

// Intersect overlays two layers and returns every pairwise polygon
// intersection plus per-category-pair aggregates. Invalid geometries are
// repaired first; features that stay invalid are excluded and reported.
func Intersect(ctx context.Context, a, b *geomodel.Layer, opts Options) (*Result, error) {
	if a == nil || b == nil || len(a.Features) == 0 || len(b.Features) == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "overlay: empty layer")
	}
	if a.CRS != b.CRS {
		return nil, eris.Errorf("overlay: CRS mismatch %q vs %q", a.CRS, b.CRS)
	}

	res := &Result{}
	cleanA := repairLayer("a", a, res)
	cleanB := repairLayer("b", b, res)

	ix := buildIndex(cleanB)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perFeature := make([][]Intersection, len(cleanA))
	perExcluded := make([][]Exclusion, len(cleanA))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range cleanA {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fa := cleanA[i]
			for _, j := range ix.search(fa.Bounds()) {
				fb := cleanB[j]
				xs, excl := intersectFeatures(fa, fb)
				perFeature[i] = append(perFeature[i], xs...)
				perExcluded[i] = append(perExcluded[i], excl...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "overlay: intersect")
	}

	for i := range perFeature {
		res.Intersections = append(res.Intersections, perFeature[i]...)
		res.Excluded = append(res.Excluded, perExcluded[i]...)
	}
	res.Aggregates = aggregate(res.Intersections)
	zap.L().Info("overlay: intersection complete",
		zap.Int("pairs", len(res.Intersections)),
		zap.Int("excluded", len(res.Excluded)),
	)
	return res, nil
}

// intersectFeatures clips two features and returns one record per resulting
// ring. Holes of either input are clipped against each result ring and
// subtracted. Pairs the clipper cannot resolve come back as exclusions, so
// overlap area is never dropped silently.
func intersectFeatures(fa, fb geomodel.Feature) ([]Intersection, []Exclusion) {
	extA := fa.Geom.LinearRing(0).FlatCoords()
	extB := fb.Geom.LinearRing(0).FlatCoords()
	bases, ok := intersectRings(extA, extB)
	if !ok {
		return nil, []Exclusion{unresolvedPair(fa, fb)}
	}
	var out []Intersection
	for _, base := range bases {
		rings := [][]float64{base}
		area := geomodel.RingArea(base)
		for _, hole := range holesOf(fa.Geom, fb.Geom) {
			parts, ok := intersectRings(normalizeRing(hole), base)
			if !ok {
				return nil, []Exclusion{unresolvedPair(fa, fb)}
			}
			for _, part := range parts {
				area -= math.Abs(geomodel.RingArea(part))
				rings = append(rings, part)
			}
		}
		if area <= 0 {
			continue
		}
		p, err := geomodel.NewPolygonFromRings(rings...)
		if err != nil {
			continue
		}
		out = append(out, Intersection{
			FeatureA:  fa.ID,
			FeatureB:  fb.ID,
			CategoryA: fa.Category,
			CategoryB: fb.Category,
			Area:      area,
			Geom:      p,
		})
	}
	return out, nil
}

func unresolvedPair(fa, fb geomodel.Feature) Exclusion {
	zap.L().Warn("overlay: pair unresolved by clipper",
		zap.String("feature_a", fa.ID),
		zap.String("feature_b", fb.ID),
	)
	return Exclusion{
		Layer:     "a",
		FeatureID: fa.ID,
		Category:  fa.Category,
		Reason:    "overlap with " + fb.ID + " could not be resolved",
	}
}

func holesOf(polys ...*geom.Polygon) [][]float64 {
	var holes [][]float64
	for _, p := range polys {
		for i := 1; i < p.NumLinearRings(); i++ {
			holes = append(holes, p.LinearRing(i).FlatCoords())
		}
	}
	return holes
}

// repairLayer validates every feature, repairing where needed. Features that
// stay invalid are excluded and recorded on the result.
func repairLayer(name string, l *geomodel.Layer, res *Result) []geomodel.Feature {
	clean := make([]geomodel.Feature, 0, len(l.Features))
	for _, f := range l.Features {
		if simplify.Validate(f.Geom) == nil {
			clean = append(clean, f)
			continue
		}
		repaired, err := simplify.Repair(f.Geom)
		if err != nil {
			res.Excluded = append(res.Excluded, Exclusion{
				Layer:     name,
				FeatureID: f.ID,
				Category:  f.Category,
				Reason:    err.Error(),
			})
			zap.L().Warn("overlay: feature excluded after failed repair",
				zap.String("layer", name),
				zap.String("feature", f.ID),
				zap.Error(err),
			)
			continue
		}
		f.Geom = repaired
		f.Area = geomodel.PolygonArea(repaired)
		clean = append(clean, f)
	}
	return clean
}

// aggregate groups intersections by (category_a, category_b).
func aggregate(xs []Intersection) []Aggregate {
	type key struct{ a, b string }
	areas := make(map[key][]float64)
	for _, x := range xs {
		k := key{x.CategoryA, x.CategoryB}
		areas[k] = append(areas[k], x.Area)
	}
	out := make([]Aggregate, 0, len(areas))
	for k, v := range areas {
		out = append(out, Aggregate{
			CategoryA: k.a,
			CategoryB: k.b,
			TotalArea: floats.Sum(v),
			Count:     len(v),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryA != out[j].CategoryA {
			return out[i].CategoryA < out[j].CategoryA
		}
		return out[i].CategoryB < out[j].CategoryB
	})
	return out
}
