package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// paletteFile is the on-disk palette schema. Speed categories are listed in
// priority order and defined by a center color plus a tolerance; exclusions
// carry explicit channel ranges.
type paletteFile struct {
	Categories []struct {
		Label     string   `yaml:"label"`
		Hex       string   `yaml:"hex"`
		RGB       [3]uint8 `yaml:"rgb"`
		Tolerance int      `yaml:"tolerance"`
	} `yaml:"categories"`
	Exclusions []struct {
		Label string   `yaml:"label"`
		Low   [3]uint8 `yaml:"low"`
		High  [3]uint8 `yaml:"high"`
	} `yaml:"exclusions"`
}

// LoadPalette reads a palette from a yaml file. An empty path returns the
// built-in Cleveland map palette. defaultTolerance applies to categories
// that omit their own.
func LoadPalette(path string, defaultTolerance int) (geomodel.Palette, error) {
	if path == "" {
		return geomodel.DefaultPalette(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read palette %s", path)
	}
	var pf paletteFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, eris.Wrapf(err, "config: parse palette %s", path)
	}

	var palette geomodel.Palette
	for _, e := range pf.Exclusions {
		palette = append(palette, geomodel.Category{
			Label:   e.Label,
			Low:     e.Low,
			High:    e.High,
			Exclude: true,
		})
	}
	for _, c := range pf.Categories {
		tol := c.Tolerance
		if tol == 0 {
			tol = defaultTolerance
		}
		palette = append(palette, geomodel.CategoryAround(c.Label, c.Hex, c.RGB[0], c.RGB[1], c.RGB[2], tol))
	}

	if err := palette.Validate(); err != nil {
		return nil, eris.Wrapf(err, "config: palette %s", path)
	}
	return palette, nil
}
