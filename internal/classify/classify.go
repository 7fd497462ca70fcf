// Package classify assigns each raster pixel to at most one speed category
// from the legend palette, producing one binary mask per category.
package classify

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/mask"
)

const unclassified = -1

// Options tunes classification.
type Options struct {
	// MinPixelCount is the global match count under which a category's
	// ranges are re-tried widened.
	MinPixelCount int
	// WidenMargin is the symmetric per-channel widening applied in the
	// fallback pass.
	WidenMargin int
	// Workers bounds the number of concurrent row bands; 0 means NumCPU.
	Workers int
}

// DefaultOptions returns the thresholds the source maps were digitized with.
func DefaultOptions() Options {
	return Options{MinPixelCount: 100, WidenMargin: 15}
}

// Result holds per-category masks and classification statistics.
type Result struct {
	// Masks maps speed-category label to its pixel mask. Every non-excluded
	// palette category has an entry, possibly empty.
	Masks map[string]*mask.Mask
	// Counts maps label to the number of pixels assigned.
	Counts map[string]int
	// Widened lists categories whose strict ranges fell below MinPixelCount
	// and were re-tried with widened ranges.
	Widened []string
	// Ambiguous counts pixels matched by more than one strict range; these
	// are resolved by priority order, never at random.
	Ambiguous int
}

// Run classifies every pixel of the raster against the palette. Exclusion
// ranges are tested before inclusion ranges, so structural map colors are
// never assigned to a speed category even when they fall inside one's
// tolerance window.
func Run(ctx context.Context, r *geomodel.Raster, palette geomodel.Palette, opts Options) (*Result, error) {
	if r == nil || r.Width() == 0 || r.Height() == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "classify: empty raster")
	}
	if err := palette.Validate(); err != nil {
		return nil, eris.Wrap(err, "classify: palette")
	}

	speeds := palette.Speeds()
	exclusions := palette.Exclusions()
	width, height := r.Width(), r.Height()

	assign := make([]int, width*height)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Strict pass, parallel over row bands. Each band owns a disjoint slice
	// of the assignment grid.
	ambiguous := make([]int, workers)
	g, ctx := errgroup.WithContext(ctx)
	band := (height + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		y0, y1 := w*band, min((w+1)*band, height)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for x := 0; x < width; x++ {
					cr, cg, cb := r.RGB(x, y)
					idx, matches := classifyPixel(speeds, exclusions, cr, cg, cb)
					assign[y*width+x] = idx
					if matches > 1 {
						ambiguous[w]++
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "classify: strict pass")
	}

	res := &Result{
		Masks:  make(map[string]*mask.Mask, len(speeds)),
		Counts: make(map[string]int, len(speeds)),
	}
	for _, n := range ambiguous {
		res.Ambiguous += n
	}
	if res.Ambiguous > 0 {
		zap.L().Warn("classify: overlapping category ranges resolved by priority",
			zap.Int("pixels", res.Ambiguous))
	}

	counts := make([]int, len(speeds))
	for _, idx := range assign {
		if idx >= 0 {
			counts[idx]++
		}
	}

	// Fallback pass: widen under-represented categories, in priority order.
	// Widened ranges only claim pixels still unclassified; strict assignments
	// are never overwritten.
	for i, c := range speeds {
		if counts[i] >= opts.MinPixelCount || opts.WidenMargin <= 0 {
			continue
		}
		widened := c.Widened(opts.WidenMargin)
		claimed := 0
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pos := y*width + x
				if assign[pos] != unclassified {
					continue
				}
				cr, cg, cb := r.RGB(x, y)
				if excluded(exclusions, cr, cg, cb) {
					continue
				}
				if widened.Matches(cr, cg, cb) {
					assign[pos] = i
					claimed++
				}
			}
		}
		counts[i] += claimed
		res.Widened = append(res.Widened, c.Label)
		zap.L().Info("classify: widened under-represented category",
			zap.String("category", c.Label),
			zap.Int("strict_pixels", counts[i]-claimed),
			zap.Int("widened_pixels", claimed),
			zap.Int("margin", opts.WidenMargin),
		)
	}

	for i, c := range speeds {
		m := mask.New(width, height)
		res.Masks[c.Label] = m
		res.Counts[c.Label] = counts[i]
	}
	for pos, idx := range assign {
		if idx >= 0 {
			res.Masks[speeds[idx].Label].Set(pos%width, pos/width, true)
		}
	}
	return res, nil
}

// Pixel returns the category label for a single pixel, or ok=false when the
// pixel is unclassified. Pure function over the pixel and the palette.
func Pixel(palette geomodel.Palette, r, g, b uint8) (string, bool) {
	speeds := palette.Speeds()
	idx, _ := classifyPixel(speeds, palette.Exclusions(), r, g, b)
	if idx == unclassified {
		return "", false
	}
	return speeds[idx].Label, true
}

func classifyPixel(speeds, exclusions []geomodel.Category, r, g, b uint8) (idx, matches int) {
	if excluded(exclusions, r, g, b) {
		return unclassified, 0
	}
	idx = unclassified
	for i, c := range speeds {
		if c.Matches(r, g, b) {
			if idx == unclassified {
				idx = i
			}
			matches++
		}
	}
	return idx, matches
}

func excluded(exclusions []geomodel.Category, r, g, b uint8) bool {
	for _, c := range exclusions {
		if c.Matches(r, g, b) {
			return true
		}
	}
	return false
}
