package geomodel

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Fatal error sentinels. A run aborts before producing any output when one of
// these is returned; per-feature problems are reported through
// InvalidGeometryError instead.
var (
	// ErrDegenerateInput marks an empty raster, empty palette, or zero-area
	// bounding box.
	ErrDegenerateInput = eris.New("geomodel: degenerate input")

	// ErrTransformUndefined marks a georeferencing request over a zero-extent
	// source bounding box.
	ErrTransformUndefined = eris.New("geomodel: transform undefined")
)

// InvalidGeometryError identifies a single feature that remained topologically
// invalid after repair. The owning run continues; the feature is excluded and
// reported.
type InvalidGeometryError struct {
	FeatureID string
	Category  string
	Reason    string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("geomodel: invalid geometry %s (%s): %s", e.FeatureID, e.Category, e.Reason)
}
