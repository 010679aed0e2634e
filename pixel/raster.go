package pixel

import (
	"fmt"
	"image"
)

// Raster pairs one SampleModel with one DataBuffer and places the samples
// at an origin. Raster coordinates (x, y) map to sample model coordinates
// (x - tx, y - ty) where (tx, ty) is the sample model translation; child
// rasters share their parent's buffer through a shifted translation.
//
// The raster is writable. Like DataBuffer it is not synchronised.
type Raster struct {
	model  SampleModel
	buf    *DataBuffer
	bounds image.Rectangle
	tx, ty int
	parent *Raster
}

// footprinter is implemented by every layout in this package: it reports
// the element count and bank count a buffer needs.
type footprinter interface {
	footprint() (size, numBanks int, err error)
}

// NewRaster validates that buf can back sm and returns a raster with its
// upper-left corner at origin.
func NewRaster(sm SampleModel, buf *DataBuffer, origin image.Point) (*Raster, error) {
	if sm == nil || buf == nil {
		return nil, formatError("raster needs a sample model and a buffer")
	}
	if sm.DataType() != buf.DataType() {
		return nil, formatError("sample model type %v does not match buffer type %v",
			sm.DataType(), buf.DataType())
	}
	if fp, ok := sm.(footprinter); ok {
		size, banks, err := fp.footprint()
		if err != nil {
			return nil, err
		}
		if buf.Size() < size || buf.NumBanks() < banks {
			return nil, formatError("buffer of %d elements in %d banks is too small, need %d in %d",
				buf.Size(), buf.NumBanks(), size, banks)
		}
	}
	return &Raster{
		model:  sm,
		buf:    buf,
		bounds: image.Rect(origin.X, origin.Y, origin.X+sm.Width(), origin.Y+sm.Height()),
		tx:     origin.X,
		ty:     origin.Y,
	}, nil
}

// NewWritableRaster allocates a buffer for sm.
func NewWritableRaster(sm SampleModel, origin image.Point) (*Raster, error) {
	buf, err := sm.NewDataBuffer()
	if err != nil {
		return nil, err
	}
	return NewRaster(sm, buf, origin)
}

// NewInterleavedRaster allocates a tightly packed pixel interleaved raster.
func NewInterleavedRaster(dataType DataType, w, h, numBands int, origin image.Point) (*Raster, error) {
	sm, err := NewInterleavedSampleModel(dataType, w, h, numBands)
	if err != nil {
		return nil, err
	}
	return NewWritableRaster(sm, origin)
}

// NewBandedRaster allocates a raster with one bank per band.
func NewBandedRaster(dataType DataType, w, h, numBands int, origin image.Point) (*Raster, error) {
	sm, err := NewBandedSampleModel(dataType, w, h, numBands)
	if err != nil {
		return nil, err
	}
	return NewWritableRaster(sm, origin)
}

// NewPackedRaster allocates a single band raster with bitsPerPixel bits
// per pixel packed into elements of dataType.
func NewPackedRaster(dataType DataType, w, h, bitsPerPixel int, origin image.Point) (*Raster, error) {
	sm, err := NewMultiPixelPackedSampleModel(dataType, w, h, bitsPerPixel)
	if err != nil {
		return nil, err
	}
	return NewWritableRaster(sm, origin)
}

// NewPackedMaskRaster allocates a raster storing each pixel in one element
// with a bit mask per band.
func NewPackedMaskRaster(dataType DataType, w, h int, masks []uint32, origin image.Point) (*Raster, error) {
	sm, err := NewSinglePixelPackedSampleModel(dataType, w, h, masks)
	if err != nil {
		return nil, err
	}
	return NewWritableRaster(sm, origin)
}

// SampleModel returns the raster's sample model.
func (r *Raster) SampleModel() SampleModel { return r.model }

// DataBuffer returns the backing buffer.
func (r *Raster) DataBuffer() *DataBuffer { return r.buf }

// Parent returns the raster this one is a child of, or nil.
func (r *Raster) Parent() *Raster { return r.parent }

// Bounds returns the raster rectangle.
func (r *Raster) Bounds() image.Rectangle { return r.bounds }

// MinX returns the left edge.
func (r *Raster) MinX() int { return r.bounds.Min.X }

// MinY returns the top edge.
func (r *Raster) MinY() int { return r.bounds.Min.Y }

// Width returns the width in pixels.
func (r *Raster) Width() int { return r.bounds.Dx() }

// Height returns the height in pixels.
func (r *Raster) Height() int { return r.bounds.Dy() }

// NumBands returns the number of bands.
func (r *Raster) NumBands() int { return r.model.NumBands() }

// DataType returns the storage element type.
func (r *Raster) DataType() DataType { return r.model.DataType() }

// TransferType returns the sample model transfer type.
func (r *Raster) TransferType() DataType { return r.model.TransferType() }

// NumDataElements returns the transfer elements per pixel.
func (r *Raster) NumDataElements() int { return r.model.NumDataElements() }

// SampleModelTranslate returns the offset subtracted from raster
// coordinates before they reach the sample model.
func (r *Raster) SampleModelTranslate() image.Point { return image.Pt(r.tx, r.ty) }

func (r *Raster) checkPixel(x, y int) error {
	if !image.Pt(x, y).In(r.bounds) {
		return fmt.Errorf("%w: (%d, %d) outside raster %v", ErrOutOfRange, x, y, r.bounds)
	}
	return nil
}

func (r *Raster) checkRect(x, y, w, h int) error {
	if w < 0 || h < 0 || x < r.bounds.Min.X || y < r.bounds.Min.Y ||
		x > r.bounds.Max.X-w || y > r.bounds.Max.Y-h {
		return fmt.Errorf("%w: rectangle (%d, %d) %dx%d outside raster %v",
			ErrOutOfRange, x, y, w, h, r.bounds)
	}
	return nil
}

// Sample returns one sample.
func (r *Raster) Sample(x, y, band int) (int, error) {
	if err := r.checkPixel(x, y); err != nil {
		return 0, err
	}
	return r.model.Sample(x-r.tx, y-r.ty, band, r.buf)
}

// SampleDouble returns one sample as a float64.
func (r *Raster) SampleDouble(x, y, band int) (float64, error) {
	if err := r.checkPixel(x, y); err != nil {
		return 0, err
	}
	return r.model.SampleDouble(x-r.tx, y-r.ty, band, r.buf)
}

// SetSample stores one sample.
func (r *Raster) SetSample(x, y, band, v int) error {
	if err := r.checkPixel(x, y); err != nil {
		return err
	}
	return r.model.SetSample(x-r.tx, y-r.ty, band, v, r.buf)
}

// SetSampleDouble stores one sample.
func (r *Raster) SetSampleDouble(x, y, band int, v float64) error {
	if err := r.checkPixel(x, y); err != nil {
		return err
	}
	return r.model.SetSampleDouble(x-r.tx, y-r.ty, band, v, r.buf)
}

// Pixel returns all bands of a pixel.
func (r *Raster) Pixel(x, y int, dst []int) ([]int, error) {
	if err := r.checkPixel(x, y); err != nil {
		return nil, err
	}
	return r.model.Pixel(x-r.tx, y-r.ty, dst, r.buf)
}

// SetPixel stores all bands of a pixel.
func (r *Raster) SetPixel(x, y int, px []int) error {
	if err := r.checkPixel(x, y); err != nil {
		return err
	}
	return r.model.SetPixel(x-r.tx, y-r.ty, px, r.buf)
}

// PixelDouble returns all bands of a pixel as float64.
func (r *Raster) PixelDouble(x, y int, dst []float64) ([]float64, error) {
	if err := r.checkPixel(x, y); err != nil {
		return nil, err
	}
	return r.model.PixelDouble(x-r.tx, y-r.ty, dst, r.buf)
}

// SetPixelDouble stores all bands of a pixel.
func (r *Raster) SetPixelDouble(x, y int, px []float64) error {
	if err := r.checkPixel(x, y); err != nil {
		return err
	}
	return r.model.SetPixelDouble(x-r.tx, y-r.ty, px, r.buf)
}

// Pixels returns the samples of a rectangle in raster coordinates.
func (r *Raster) Pixels(x, y, w, h int, dst []int) ([]int, error) {
	if err := r.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	return r.model.Pixels(x-r.tx, y-r.ty, w, h, dst, r.buf)
}

// SetPixels stores the samples of a rectangle in raster coordinates.
func (r *Raster) SetPixels(x, y, w, h int, px []int) error {
	if err := r.checkRect(x, y, w, h); err != nil {
		return err
	}
	return r.model.SetPixels(x-r.tx, y-r.ty, w, h, px, r.buf)
}

// PixelsDouble returns the samples of a rectangle as float64.
func (r *Raster) PixelsDouble(x, y, w, h int, dst []float64) ([]float64, error) {
	if err := r.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	return r.model.PixelsDouble(x-r.tx, y-r.ty, w, h, dst, r.buf)
}

// SetPixelsDouble stores the samples of a rectangle.
func (r *Raster) SetPixelsDouble(x, y, w, h int, px []float64) error {
	if err := r.checkRect(x, y, w, h); err != nil {
		return err
	}
	return r.model.SetPixelsDouble(x-r.tx, y-r.ty, w, h, px, r.buf)
}

// Samples returns one band of a rectangle.
func (r *Raster) Samples(x, y, w, h, band int, dst []int) ([]int, error) {
	if err := r.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	return r.model.Samples(x-r.tx, y-r.ty, w, h, band, dst, r.buf)
}

// SetSamples stores one band of a rectangle.
func (r *Raster) SetSamples(x, y, w, h, band int, s []int) error {
	if err := r.checkRect(x, y, w, h); err != nil {
		return err
	}
	return r.model.SetSamples(x-r.tx, y-r.ty, w, h, band, s, r.buf)
}

// DataElements returns the pixel in its transfer representation.
func (r *Raster) DataElements(x, y int, dst any) (any, error) {
	if err := r.checkPixel(x, y); err != nil {
		return nil, err
	}
	return r.model.DataElements(x-r.tx, y-r.ty, dst, r.buf)
}

// SetDataElements stores a pixel from its transfer representation.
func (r *Raster) SetDataElements(x, y int, obj any) error {
	if err := r.checkPixel(x, y); err != nil {
		return err
	}
	return r.model.SetDataElements(x-r.tx, y-r.ty, obj, r.buf)
}

// CreateChild returns a raster sharing this raster's buffer. The region
// (parentX, parentY, w, h) of this raster appears at (childMinX, childMinY)
// in the child. bands selects and orders a subset of bands; nil keeps all.
func (r *Raster) CreateChild(parentX, parentY, w, h, childMinX, childMinY int, bands []int) (*Raster, error) {
	if err := r.checkRect(parentX, parentY, w, h); err != nil {
		return nil, err
	}
	sm := r.model
	if bands != nil {
		var err error
		if sm, err = sm.SubsetSampleModel(bands); err != nil {
			return nil, err
		}
	}
	dx, dy := childMinX-parentX, childMinY-parentY
	return &Raster{
		model:  sm,
		buf:    r.buf,
		bounds: image.Rect(childMinX, childMinY, childMinX+w, childMinY+h),
		tx:     r.tx + dx,
		ty:     r.ty + dy,
		parent: r,
	}, nil
}

// CompatibleRaster returns a new raster of the same layout family and
// size w x h at the origin.
func (r *Raster) CompatibleRaster(w, h int) (*Raster, error) {
	return r.CompatibleRasterAt(image.Rect(0, 0, w, h))
}

// CompatibleRasterAt returns a new raster of the same layout family
// covering bounds.
func (r *Raster) CompatibleRasterAt(bounds image.Rectangle) (*Raster, error) {
	sm, err := r.model.CompatibleSampleModel(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	return NewWritableRaster(sm, bounds.Min)
}

// SetRect copies the samples of src that overlap this raster.
// Both rasters must have the same number of bands.
func (r *Raster) SetRect(src *Raster) error {
	if src.NumBands() != r.NumBands() {
		return formatError("cannot copy %d bands into %d", src.NumBands(), r.NumBands())
	}
	area := r.bounds.Intersect(src.bounds)
	if area.Empty() {
		return nil
	}
	w := area.Dx()
	if r.DataType().IsFloating() || src.DataType().IsFloating() {
		var row []float64
		for y := area.Min.Y; y < area.Max.Y; y++ {
			var err error
			if row, err = src.PixelsDouble(area.Min.X, y, w, 1, row); err != nil {
				return err
			}
			if err := r.SetPixelsDouble(area.Min.X, y, w, 1, row); err != nil {
				return err
			}
		}
		return nil
	}
	var row []int
	for y := area.Min.Y; y < area.Max.Y; y++ {
		var err error
		if row, err = src.Pixels(area.Min.X, y, w, 1, row); err != nil {
			return err
		}
		if err := r.SetPixels(area.Min.X, y, w, 1, row); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy with a compatible layout at the same bounds.
func (r *Raster) Copy() (*Raster, error) {
	c, err := r.CompatibleRasterAt(r.bounds)
	if err != nil {
		return nil, err
	}
	if err := c.SetRect(r); err != nil {
		return nil, err
	}
	return c, nil
}
