package overlay

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// featureIndex is an R-tree over feature bounding boxes, used to prune the
// pairwise cross-product down to candidate pairs.
type featureIndex struct {
	tr rtree.RTreeG[int]
}

func buildIndex(features []geomodel.Feature) *featureIndex {
	ix := &featureIndex{}
	for i, f := range features {
		b := f.Bounds()
		ix.tr.Insert([2]float64{b.XMin, b.YMin}, [2]float64{b.XMax, b.YMax}, i)
	}
	return ix
}

// search returns the indices of features whose boxes intersect b, in
// ascending order so downstream processing stays deterministic.
func (ix *featureIndex) search(b geomodel.BoundingBox) []int {
	var hits []int
	ix.tr.Search(
		[2]float64{b.XMin, b.YMin},
		[2]float64{b.XMax, b.YMax},
		func(_, _ [2]float64, i int) bool {
			hits = append(hits, i)
			return true
		},
	)
	sort.Ints(hits)
	return hits
}

// searchPoint returns candidate features whose boxes contain the point.
func (ix *featureIndex) searchPoint(x, y float64) []int {
	return ix.search(geomodel.BoundingBox{XMin: x, YMin: y, XMax: x, YMax: y})
}
