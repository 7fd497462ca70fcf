package overlay

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// PointMatch is the join result for one point: the containing feature's
// attributes, or Matched=false when no polygon contains the point. An
// unmatched point is an answer, not an error.
type PointMatch struct {
	Point     geomodel.Point `json:"point"`
	Matched   bool           `json:"matched"`
	FeatureID string         `json:"feature_id,omitempty"`
	Category  string         `json:"category,omitempty"`
	Hex       string         `json:"hex,omitempty"`
}

// PointJoin returns, for each point, the one polygon whose interior contains
// it. When polygons overlap (which the pipeline never produces, but external
// layers may), the earliest feature in layer order wins.
func PointJoin(layer *geomodel.Layer, points []geomodel.Point) ([]PointMatch, error) {
	if layer == nil || len(layer.Features) == 0 {
		return nil, eris.Wrap(geomodel.ErrDegenerateInput, "overlay: empty layer")
	}

	ix := buildIndex(layer.Features)
	out := make([]PointMatch, 0, len(points))
	matched := 0
	for _, pt := range points {
		m := PointMatch{Point: pt}
		for _, i := range ix.searchPoint(pt.X, pt.Y) {
			f := layer.Features[i]
			if geomodel.PointInPolygon(f.Geom, pt.X, pt.Y) {
				m.Matched = true
				m.FeatureID = f.ID
				m.Category = f.Category
				m.Hex = f.Hex
				matched++
				break
			}
		}
		out = append(out, m)
	}
	zap.L().Info("overlay: point join complete",
		zap.Int("points", len(points)),
		zap.Int("matched", matched),
	)
	return out, nil
}
