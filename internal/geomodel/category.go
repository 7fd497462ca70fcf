package geomodel

import (
	"github.com/rotisserie/eris"
)

// Category is one entry of the map legend: a labeled speed class with an
// inclusive per-channel color range. Exclusion categories describe structural
// map colors (background, roads, water) that must never be assigned to a
// speed class; they are tested before any inclusion range.
type Category struct {
	Label   string   `yaml:"label" json:"label"`
	Hex     string   `yaml:"hex" json:"hex"`
	Low     [3]uint8 `yaml:"low" json:"low"`
	High    [3]uint8 `yaml:"high" json:"high"`
	Exclude bool     `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// Matches reports whether every channel falls inside the inclusive range.
func (c Category) Matches(r, g, b uint8) bool {
	return r >= c.Low[0] && r <= c.High[0] &&
		g >= c.Low[1] && g <= c.High[1] &&
		b >= c.Low[2] && b <= c.High[2]
}

// Widened returns a copy with every channel range grown by margin, clamped
// to [0, 255].
func (c Category) Widened(margin int) Category {
	w := c
	for i := 0; i < 3; i++ {
		w.Low[i] = clampChannel(int(c.Low[i]) - margin)
		w.High[i] = clampChannel(int(c.High[i]) + margin)
	}
	return w
}

// CategoryAround builds a speed category from a representative color and a
// symmetric tolerance, the way the legend colors are sampled.
func CategoryAround(label, hex string, r, g, b uint8, tolerance int) Category {
	c := Category{Label: label, Hex: hex}
	for i, v := range [3]uint8{r, g, b} {
		c.Low[i] = clampChannel(int(v) - tolerance)
		c.High[i] = clampChannel(int(v) + tolerance)
	}
	return c
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Palette is the full ordered legend. Slice order is priority order: when
// ranges overlap, the earliest matching category wins.
type Palette []Category

// Validate rejects empty palettes, duplicate labels, and inverted ranges.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return eris.Wrap(ErrDegenerateInput, "palette is empty")
	}
	seen := make(map[string]bool, len(p))
	speeds := 0
	for _, c := range p {
		if c.Label == "" {
			return eris.New("geomodel: palette category without label")
		}
		if seen[c.Label] {
			return eris.Errorf("geomodel: duplicate palette label %q", c.Label)
		}
		seen[c.Label] = true
		for i := 0; i < 3; i++ {
			if c.Low[i] > c.High[i] {
				return eris.Errorf("geomodel: palette %q channel %d range inverted", c.Label, i)
			}
		}
		if !c.Exclude {
			speeds++
		}
	}
	if speeds == 0 {
		return eris.Wrap(ErrDegenerateInput, "palette has no speed categories")
	}
	return nil
}

// Speeds returns the non-exclusion categories in priority order.
func (p Palette) Speeds() []Category {
	out := make([]Category, 0, len(p))
	for _, c := range p {
		if !c.Exclude {
			out = append(out, c)
		}
	}
	return out
}

// Exclusions returns the structural-color categories.
func (p Palette) Exclusions() []Category {
	var out []Category
	for _, c := range p {
		if c.Exclude {
			out = append(out, c)
		}
	}
	return out
}

// ByLabel returns the category with the given label.
func (p Palette) ByLabel(label string) (Category, bool) {
	for _, c := range p {
		if c.Label == label {
			return c, true
		}
	}
	return Category{}, false
}

// DefaultPalette is the Cuyahoga County broadband profile legend, sampled at
// 300 dpi, with the structural colors that bleed into the speed tolerances.
func DefaultPalette() Palette {
	const tol = 50
	return Palette{
		{Label: "background", Hex: "#ffffff", Low: [3]uint8{235, 235, 235}, High: [3]uint8{255, 255, 255}, Exclude: true},
		{Label: "roads", Hex: "#888888", Low: [3]uint8{110, 110, 110}, High: [3]uint8{170, 170, 170}, Exclude: true},
		{Label: "water", Hex: "#9bc4e2", Low: [3]uint8{130, 170, 200}, High: [3]uint8{200, 230, 255}, Exclude: true},
		CategoryAround("0-9 Mbps", "#bb1122", 187, 17, 34, tol),
		CategoryAround("10-24 Mbps", "#673a15", 103, 58, 21, tol),
		CategoryAround("25-49 Mbps", "#dddd55", 221, 221, 85, tol),
		CategoryAround("50-100 Mbps", "#59903b", 89, 144, 59, tol),
		CategoryAround("100+ Mbps", "#54ad59", 84, 173, 89, tol),
	}
}
