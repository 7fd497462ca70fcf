package main

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/digitize-cli/internal/config"
	"github.com/sells-group/digitize-cli/internal/geomodel"
	"github.com/sells-group/digitize-cli/internal/mask"
	"github.com/sells-group/digitize-cli/internal/pipeline"
	"github.com/sells-group/digitize-cli/internal/rasterio"
	"github.com/sells-group/digitize-cli/internal/store"
	"github.com/sells-group/digitize-cli/internal/vectorize"
	"github.com/sells-group/digitize-cli/internal/vectorio"
)

var (
	digitizeOut     string
	digitizeBounds  string
	digitizePalette string
	digitizeNoCrop  bool
	digitizeNoStore bool
	digitizePixels  string
)

var digitizeCmd = &cobra.Command{
	Use:   "digitize <image>",
	Short: "Digitize a broadband speed map into GeoJSON polygons",
	Long: `Classifies map pixels into speed categories, cleans the category masks,
traces polygon boundaries, simplifies them, and georeferences the result
into WGS84 longitude/latitude.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source := args[0]

		params, err := buildParams()
		if err != nil {
			return err
		}
		if digitizeBounds != "" {
			b, err := parseBounds(digitizeBounds)
			if err != nil {
				return err
			}
			params.Target = b
		}

		raster, err := rasterio.Load(source)
		if err != nil {
			return err
		}
		if !digitizeNoCrop {
			window := rasterio.CropWindow{
				Top:    cfg.Digitize.Crop.Top,
				Bottom: cfg.Digitize.Crop.Bottom,
				Left:   cfg.Digitize.Crop.Left,
				Right:  cfg.Digitize.Crop.Right,
			}
			if raster, err = rasterio.Crop(raster, window); err != nil {
				return err
			}
		}
		if cfg.Digitize.MaxDimension > 0 {
			if raster, err = rasterio.Downscale(raster, cfg.Digitize.MaxDimension); err != nil {
				return err
			}
		}

		out := digitizeOut
		if out == "" {
			out = strings.TrimSuffix(source, pathExt(source)) + ".geojson"
		}

		var st store.Store
		var run *store.Run
		if !digitizeNoStore {
			if st, err = initStore(); err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			if run, err = st.CreateRun(ctx, source, out, &params); err != nil {
				return err
			}
		}

		result, err := pipeline.Run(ctx, raster, params)
		if err != nil {
			if run != nil {
				if serr := st.UpdateRunStatus(ctx, run.ID, store.RunStatusFailed); serr != nil {
					zap.L().Warn("ledger update failed", zap.Error(serr))
				}
			}
			return eris.Wrap(err, "digitize")
		}

		if err := vectorio.WriteGeoJSON(out, result.Layer); err != nil {
			return err
		}
		if digitizePixels != "" {
			if err := vectorio.WriteGeoJSON(digitizePixels, result.PixelLayer); err != nil {
				return err
			}
		}

		if run != nil {
			result.Report.RunID = run.ID
			if err := st.UpdateRunReport(ctx, run.ID, &result.Report); err != nil {
				return err
			}
		}

		zap.L().Info("digitize complete",
			zap.String("source", source),
			zap.String("output", out),
			zap.Int("features", len(result.Layer.Features)),
			zap.Int("warnings", len(result.Report.Warnings)),
		)
		return nil
	},
}

// buildParams merges configuration defaults into pipeline parameters.
func buildParams() (pipeline.Params, error) {
	params := pipeline.DefaultParams()
	d := cfg.Digitize

	palettePath := d.PalettePath
	if digitizePalette != "" {
		palettePath = digitizePalette
	}
	palette, err := config.LoadPalette(palettePath, d.Tolerance)
	if err != nil {
		return params, err
	}
	params.Palette = palette
	params.Target = geomodel.BoundingBox{
		XMin: d.Bounds.West,
		YMin: d.Bounds.South,
		XMax: d.Bounds.East,
		YMax: d.Bounds.North,
	}
	params.MinPixelCount = d.MinPixelCount
	params.WidenMargin = d.WidenMargin
	params.CleanShape = mask.Diamond
	params.CleanRadius = d.CleanRadius
	params.MajorityWindow = d.MajorityWindow
	if d.Connectivity == 4 {
		params.Connectivity = vectorize.Connect4
	}
	params.MinPolygonArea = d.MinPolygonArea
	params.PixelTolerance = d.PixelTolerance
	params.GeoTolerance = d.GeoTolerance
	params.Workers = d.Workers
	return params, nil
}

// parseBounds parses "west,south,east,north".
func parseBounds(s string) (geomodel.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geomodel.BoundingBox{}, eris.Errorf("bounds must be west,south,east,north: %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geomodel.BoundingBox{}, eris.Wrapf(err, "parse bounds %q", s)
		}
		vals[i] = v
	}
	return geomodel.BoundingBox{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, nil
}

func pathExt(path string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndex(path, "/") {
		return path[i:]
	}
	return ""
}

func init() {
	digitizeCmd.Flags().StringVarP(&digitizeOut, "out", "o", "", "output GeoJSON path (default: input path with .geojson)")
	digitizeCmd.Flags().StringVar(&digitizeBounds, "bounds", "", "geographic extent as west,south,east,north (default from config)")
	digitizeCmd.Flags().StringVar(&digitizePalette, "palette", "", "palette yaml path (default from config)")
	digitizeCmd.Flags().BoolVar(&digitizeNoCrop, "no-crop", false, "skip the margin crop")
	digitizeCmd.Flags().BoolVar(&digitizeNoStore, "no-store", false, "skip recording the run in the ledger")
	digitizeCmd.Flags().StringVar(&digitizePixels, "pixel-layer", "", "also write the pre-georeference pixel layer to this path")
	rootCmd.AddCommand(digitizeCmd)
}
