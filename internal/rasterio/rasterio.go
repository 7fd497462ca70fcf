// Package rasterio loads raster map images into the pipeline's in-memory
// grid. Page rasterization itself (PDF to image) is an external concern; this
// package only consumes the resulting image files.
package rasterio

import (
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// Load decodes a PNG or JPEG file into a Raster.
func Load(path string) (*geomodel.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rasterio: open %s", path)
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "rasterio: decode %s", path)
	}
	r, err := geomodel.RasterFromImage(img)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("rasterio: loaded image",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", r.Width()),
		zap.Int("height", r.Height()),
	)
	return r, nil
}

// CropWindow is a fractional crop, each bound in [0, 1] of the image
// dimension. The source maps carry a header and legend that the digitizer
// must not classify; the window cuts them away.
type CropWindow struct {
	Top    float64 `yaml:"top" mapstructure:"top"`
	Bottom float64 `yaml:"bottom" mapstructure:"bottom"`
	Left   float64 `yaml:"left" mapstructure:"left"`
	Right  float64 `yaml:"right" mapstructure:"right"`
}

// Zero reports an unset window (no cropping).
func (w CropWindow) Zero() bool {
	return w.Top == 0 && w.Bottom == 0 && w.Left == 0 && w.Right == 0
}

// Crop returns the sub-raster selected by the fractional window.
func Crop(r *geomodel.Raster, w CropWindow) (*geomodel.Raster, error) {
	if w.Bottom <= w.Top || w.Right <= w.Left ||
		w.Top < 0 || w.Left < 0 || w.Bottom > 1 || w.Right > 1 {
		return nil, eris.Errorf("rasterio: invalid crop window %+v", w)
	}
	y0, y1 := int(float64(r.Height())*w.Top), int(float64(r.Height())*w.Bottom)
	x0, x1 := int(float64(r.Width())*w.Left), int(float64(r.Width())*w.Right)
	out, err := geomodel.NewRaster(x1-x0, y1-y0)
	if err != nil {
		return nil, eris.Wrap(err, "rasterio: crop")
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cr, cg, cb := r.RGB(x, y)
			out.SetRGB(x-x0, y-y0, cr, cg, cb)
		}
	}
	return out, nil
}

// Downscale resamples the raster so its longest side is at most maxDim,
// preserving aspect ratio. A raster already within bounds is returned as is.
func Downscale(r *geomodel.Raster, maxDim int) (*geomodel.Raster, error) {
	if maxDim <= 0 {
		return nil, eris.Errorf("rasterio: invalid max dimension %d", maxDim)
	}
	long := r.Width()
	if r.Height() > long {
		long = r.Height()
	}
	if long <= maxDim {
		return r, nil
	}
	scale := float64(maxDim) / float64(long)
	dw := int(float64(r.Width()) * scale)
	dh := int(float64(r.Height()) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), toImage(r), image.Rect(0, 0, r.Width(), r.Height()), xdraw.Src, nil)
	return geomodel.RasterFromImage(dst)
}

// Save writes the raster as a PNG, used for mask and crop inspection.
func Save(path string, r *geomodel.Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "rasterio: create %s", path)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, toImage(r)); err != nil {
		return eris.Wrapf(err, "rasterio: encode %s", path)
	}
	return nil
}

func toImage(r *geomodel.Raster) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			cr, cg, cb := r.RGB(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = cr, cg, cb, 255
		}
	}
	return img
}
