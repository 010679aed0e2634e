package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/imaging/colormodel"
	"github.com/gogpu/imaging/pixel"
)

// Image pairs a raster with the color model that interprets its samples.
// It implements draw.Image: At returns non-premultiplied color.NRGBA and
// Set encodes through the color model.
//
// An Image is not safe for concurrent mutation.
type Image struct {
	raster *pixel.Raster
	model  colormodel.ColorModel
	typ    ImageType
}

var _ draw.Image = (*Image)(nil)

// NewImage wraps r. The color model must be compatible with the raster's
// sample model.
func NewImage(cm colormodel.ColorModel, r *pixel.Raster) (*Image, error) {
	if cm == nil || r == nil {
		return nil, fmt.Errorf("%w: image needs a color model and a raster", ErrFormat)
	}
	if !cm.IsCompatibleRaster(r) {
		return nil, fmt.Errorf("%w: color model %v cannot interpret the raster", ErrFormat, cm)
	}
	return &Image{raster: r, model: cm, typ: TypeCustom}, nil
}

// Raster returns the underlying raster.
func (img *Image) Raster() *pixel.Raster { return img.raster }

// Model returns the color model of the samples.
func (img *Image) Model() colormodel.ColorModel { return img.model }

// Type returns the predefined type of the image, TypeCustom if none.
func (img *Image) Type() ImageType { return img.typ }

// Width returns the width in pixels.
func (img *Image) Width() int { return img.raster.Width() }

// Height returns the height in pixels.
func (img *Image) Height() int { return img.raster.Height() }

// IsAlphaPremultiplied reports whether color samples are stored
// premultiplied.
func (img *Image) IsAlphaPremultiplied() bool { return img.model.IsAlphaPremultiplied() }

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle { return img.raster.Bounds() }

// At implements image.Image. Points outside the bounds are transparent.
func (img *Image) At(x, y int) color.Color {
	argb, err := img.RGB(x, y)
	if err != nil {
		return color.NRGBA{}
	}
	return nrgba(argb)
}

// Set implements draw.Image. Points outside the bounds are ignored.
func (img *Image) Set(x, y int, c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	_ = img.SetRGB(x, y, uint32(n.A)<<24|uint32(n.R)<<16|uint32(n.G)<<8|uint32(n.B))
}

// RGB returns the pixel at (x, y) as non-premultiplied sRGB 0xAARRGGBB.
func (img *Image) RGB(x, y int) (uint32, error) {
	data, err := img.raster.DataElements(x, y, nil)
	if err != nil {
		return 0, err
	}
	return img.model.RGBData(data)
}

// SetRGB encodes non-premultiplied sRGB 0xAARRGGBB at (x, y).
func (img *Image) SetRGB(x, y int, argb uint32) error {
	data, err := img.model.DataElementsFromRGB(argb, nil)
	if err != nil {
		return err
	}
	return img.raster.SetDataElements(x, y, data)
}

// CoerceData rewrites the samples in place to the requested
// premultiplication and switches the image to the matching color model.
func (img *Image) CoerceData(premultiplied bool) error {
	cm, err := img.model.CoerceData(img.raster, premultiplied)
	if err != nil {
		return err
	}
	if cm != img.model {
		img.model = cm
		img.typ = img.typ.withPremultiplied(premultiplied)
	}
	return nil
}

// Compatible allocates a w by h image with the same color model and
// sample layout.
func (img *Image) Compatible(w, h int) (*Image, error) {
	r, err := img.raster.CompatibleRaster(w, h)
	if err != nil {
		return nil, err
	}
	return &Image{raster: r, model: img.model, typ: img.typ}, nil
}

// NRGBA copies the image into a standard library image with the same
// bounds.
func (img *Image) NRGBA() *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			argb, err := img.RGB(x, y)
			if err != nil {
				continue
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = uint8(argb >> 16)
			out.Pix[i+1] = uint8(argb >> 8)
			out.Pix[i+2] = uint8(argb)
			out.Pix[i+3] = uint8(argb >> 24)
		}
	}
	return out
}

// FromImage copies src into a TypeIntARGB image with the same bounds.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	img, err := newImageOfType(TypeIntARGB, b)
	if err != nil {
		return nil, err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, src.At(x, y))
		}
	}
	return img, nil
}

func nrgba(argb uint32) color.NRGBA {
	return color.NRGBA{R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb), A: uint8(argb >> 24)}
}
