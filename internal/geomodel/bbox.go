package geomodel

import (
	"math"

	"github.com/rotisserie/eris"
)

// BoundingBox is an axis-aligned extent in either pixel or geographic units.
type BoundingBox struct {
	XMin float64 `json:"x_min" yaml:"x_min" mapstructure:"x_min"`
	YMin float64 `json:"y_min" yaml:"y_min" mapstructure:"y_min"`
	XMax float64 `json:"x_max" yaml:"x_max" mapstructure:"x_max"`
	YMax float64 `json:"y_max" yaml:"y_max" mapstructure:"y_max"`
}

// Width returns the horizontal extent.
func (b BoundingBox) Width() float64 { return b.XMax - b.XMin }

// Height returns the vertical extent.
func (b BoundingBox) Height() float64 { return b.YMax - b.YMin }

// Contains reports whether the point lies inside or on the box boundary.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// Intersects reports whether the two boxes overlap.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.XMin <= o.XMax && o.XMin <= b.XMax && b.YMin <= o.YMax && o.YMin <= b.YMax
}

// Extend grows the box to include the point.
func (b BoundingBox) Extend(x, y float64) BoundingBox {
	return BoundingBox{
		XMin: math.Min(b.XMin, x),
		YMin: math.Min(b.YMin, y),
		XMax: math.Max(b.XMax, x),
		YMax: math.Max(b.YMax, y),
	}
}

// EmptyBounds returns a box that Extend collapses onto the first point.
func EmptyBounds() BoundingBox {
	return BoundingBox{
		XMin: math.Inf(1), YMin: math.Inf(1),
		XMax: math.Inf(-1), YMax: math.Inf(-1),
	}
}

// Validate rejects boxes with zero or negative extent on either axis.
func (b BoundingBox) Validate() error {
	if !(b.XMax > b.XMin) || !(b.YMax > b.YMin) {
		return eris.Wrapf(ErrDegenerateInput,
			"bbox (%g,%g)-(%g,%g) has zero extent", b.XMin, b.YMin, b.XMax, b.YMax)
	}
	return nil
}
