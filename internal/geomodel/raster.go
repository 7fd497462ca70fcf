// Package geomodel holds the shared data model for the map digitizing
// pipeline: rasters, color categories, attributed vector features, and the
// error taxonomy the stages report through.
package geomodel

import (
	"image"

	"github.com/rotisserie/eris"
)

// Raster is an RGB pixel grid with row 0 at the top. It is loaded once per
// run and treated as immutable by every pipeline stage.
type Raster struct {
	width  int
	height int
	pix    []uint8 // 3 bytes per pixel, row-major
}

// NewRaster allocates a zeroed raster of the given dimensions.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Wrapf(ErrDegenerateInput, "raster %dx%d", width, height)
	}
	return &Raster{width: width, height: height, pix: make([]uint8, width*height*3)}, nil
}

// RasterFromImage converts a decoded image to a Raster, discarding alpha.
func RasterFromImage(img image.Image) (*Raster, error) {
	bounds := img.Bounds()
	r, err := NewRaster(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r.SetRGB(x-bounds.Min.X, y-bounds.Min.Y, uint8(cr>>8), uint8(cg>>8), uint8(cb>>8))
		}
	}
	return r, nil
}

// Width returns the pixel width.
func (r *Raster) Width() int { return r.width }

// Height returns the pixel height.
func (r *Raster) Height() int { return r.height }

// RGB returns the channel values at (x, y).
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	i := (y*r.width + x) * 3
	return r.pix[i], r.pix[i+1], r.pix[i+2]
}

// SetRGB writes the channel values at (x, y). Only loaders and tests mutate
// a raster; pipeline stages never do.
func (r *Raster) SetRGB(x, y int, cr, cg, cb uint8) {
	i := (y*r.width + x) * 3
	r.pix[i], r.pix[i+1], r.pix[i+2] = cr, cg, cb
}

// Bounds returns the pixel-space bounding box (0,0)-(width,height).
func (r *Raster) Bounds() BoundingBox {
	return BoundingBox{XMin: 0, YMin: 0, XMax: float64(r.width), YMax: float64(r.height)}
}
