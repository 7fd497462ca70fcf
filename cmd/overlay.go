package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/digitize-cli/internal/export"
	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/overlay"
	"github.com/sells-group/digitize-cli/internal/vectorio"
)

var (
	overlayCategoryProp string
	overlayXLSX         string
	overlayGeoJSON      string
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Overlay a digitized layer against other datasets",
}

// -- overlay intersect --

var overlayIntersectCmd = &cobra.Command{
	Use:   "intersect <layer-a> <layer-b>",
	Short: "Compute pairwise polygon intersections between two layers",
	Long: `Intersects every polygon of layer A with every polygon of layer B and
aggregates intersection areas per category pair. Layers may be GeoJSON
or shapefiles; both must share a coordinate system.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		layerA, err := readLayer(args[0])
		if err != nil {
			return err
		}
		layerB, err := readLayer(args[1])
		if err != nil {
			return err
		}

		result, err := overlay.Intersect(ctx, layerA, layerB, overlay.Options{Workers: cfg.Overlay.Workers})
		if err != nil {
			return eris.Wrap(err, "overlay intersect")
		}

		zap.L().Info("overlay complete",
			zap.Int("intersections", len(result.Intersections)),
			zap.Int("aggregates", len(result.Aggregates)),
			zap.Int("excluded", len(result.Excluded)),
		)

		if overlayXLSX != "" {
			if err := export.WriteOverlayWorkbook(overlayXLSX, result); err != nil {
				return err
			}
		}
		if overlayGeoJSON != "" {
			if err := vectorio.WriteGeoJSON(overlayGeoJSON, intersectionLayer(result, layerA.CRS)); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Aggregates []overlay.Aggregate `json:"aggregates"`
			Excluded   []overlay.Exclusion `json:"excluded,omitempty"`
		}{result.Aggregates, result.Excluded})
	},
}

// -- overlay points --

var overlayPointsCmd = &cobra.Command{
	Use:   "points <layer> <points>",
	Short: "Assign points to the polygons that contain them",
	Long: `Looks up, for each point, the speed category polygon whose interior
contains it. Points may come from CSV, GeoJSON, or a shapefile.
Unmatched points are reported as unmatched, never errors.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, err := readLayer(args[0])
		if err != nil {
			return err
		}
		points, err := readPoints(args[1])
		if err != nil {
			return err
		}

		matches, err := overlay.PointJoin(layer, points)
		if err != nil {
			return eris.Wrap(err, "overlay points")
		}

		matched := 0
		for _, m := range matches {
			if m.Matched {
				matched++
			}
		}
		zap.L().Info("point join complete",
			zap.Int("points", len(matches)),
			zap.Int("matched", matched),
		)

		if overlayXLSX != "" {
			if err := export.WritePointMatchWorkbook(overlayXLSX, matches); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	},
}

// readLayer loads a polygon layer, dispatching on the file extension.
func readLayer(path string) (*geomodel.Layer, error) {
	if strings.HasSuffix(strings.ToLower(path), ".shp") {
		return vectorio.ReadShapefileLayer(path, overlayCategoryProp, geomodel.CRSWGS84)
	}
	return vectorio.ReadGeoJSONLayer(path, overlayCategoryProp, geomodel.CRSWGS84)
}

// readPoints loads a point dataset, dispatching on the file extension.
func readPoints(path string) ([]geomodel.Point, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		return vectorio.ReadPointsCSV(path)
	case strings.HasSuffix(strings.ToLower(path), ".shp"):
		return vectorio.ReadShapefilePoints(path, "name")
	default:
		return vectorio.ReadGeoJSONPoints(path, "name")
	}
}

// intersectionLayer wraps intersection geometries as a layer for GeoJSON
// output.
func intersectionLayer(result *overlay.Result, crs string) *geomodel.Layer {
	layer := &geomodel.Layer{CRS: crs}
	for _, ix := range result.Intersections {
		layer.Features = append(layer.Features, geomodel.Feature{
			ID:       ix.FeatureA + "*" + ix.FeatureB,
			Category: ix.CategoryA + " x " + ix.CategoryB,
			Area:     ix.Area,
			Geom:     ix.Geom,
		})
	}
	return layer
}

func init() {
	overlayCmd.PersistentFlags().StringVar(&overlayCategoryProp, "category-prop", "speed_category", "feature property or attribute holding the category name")
	overlayCmd.PersistentFlags().StringVar(&overlayXLSX, "xlsx", "", "write results to an XLSX workbook at this path")
	overlayIntersectCmd.Flags().StringVar(&overlayGeoJSON, "geojson", "", "write intersection geometries to a GeoJSON file")
	overlayCmd.AddCommand(overlayIntersectCmd)
	overlayCmd.AddCommand(overlayPointsCmd)
	rootCmd.AddCommand(overlayCmd)
}
