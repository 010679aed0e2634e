package op

import (
	"fmt"
	"image"
	"math"
	"slices"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/colormodel"
	"github.com/gogpu/imaging/colorspace"
	"github.com/gogpu/imaging/internal/parallel"
	"github.com/gogpu/imaging/pixel"
)

// AffineTransformOp resamples a source through an affine matrix.
//
// Every destination pixel centre is mapped back into the source with the
// inverse matrix and sampled with the operator's interpolation. Destination
// pixels whose centre maps outside the source keep their value, so a
// destination with a translated origin is drawn only where it overlaps the
// transformed source.
type AffineTransformOp struct {
	m      f64.Aff3
	inv    f64.Aff3
	interp Interpolation
	opts   options
}

// NewAffineTransformOp creates an operator for m. It returns
// ErrNonInvertible when m cannot be inverted.
func NewAffineTransformOp(m f64.Aff3, interp Interpolation, opts ...Option) (*AffineTransformOp, error) {
	if interp < NearestNeighbor || interp > Bicubic {
		return nil, fmt.Errorf("%w: unknown interpolation %v", pixel.ErrFormat, interp)
	}
	inv, ok := invert(m)
	if !ok {
		return nil, fmt.Errorf("%w: determinant %g", ErrNonInvertible, Determinant(m))
	}
	return &AffineTransformOp{m: m, inv: inv, interp: interp, opts: newOptions(opts)}, nil
}

// Kind implements imaging.Operation.
func (o *AffineTransformOp) Kind() imaging.OpKind { return imaging.OpAffine }

// Matrix returns the forward matrix.
func (o *AffineTransformOp) Matrix() f64.Aff3 { return o.m }

// Interpolation returns the interpolation mode.
func (o *AffineTransformOp) Interpolation() Interpolation { return o.interp }

// Bounds2D returns the smallest integer rectangle holding the four
// transformed corners of r.
func (o *AffineTransformOp) Bounds2D(r image.Rectangle) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4]image.Point{r.Min, {r.Max.X, r.Min.Y}, {r.Min.X, r.Max.Y}, r.Max} {
		x, y := transformPoint(o.m, float64(c.X), float64(c.Y))
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// destSize is the size of a default destination: it starts at the origin
// and reaches the far corner of the transformed source.
func (o *AffineTransformOp) destSize(r image.Rectangle) (w, h int, err error) {
	b := o.Bounds2D(r)
	if b.Max.X <= 0 || b.Max.Y <= 0 {
		return 0, 0, fmt.Errorf("%w: transformed bounds %v lie above or left of the origin", pixel.ErrFormat, b)
	}
	return b.Max.X, b.Max.Y, nil
}

// FilterRaster resamples src into dst, allocating a compatible dst when
// nil. src and dst must differ.
func (o *AffineTransformOp) FilterRaster(src, dst *pixel.Raster) (*pixel.Raster, error) {
	if src == dst {
		return nil, fmt.Errorf("%w: source and destination are the same raster", pixel.ErrFormat)
	}
	if dst == nil {
		w, h, err := o.destSize(src.Bounds())
		if err != nil {
			return nil, err
		}
		if dst, err = src.CompatibleRaster(w, h); err != nil {
			return nil, err
		}
	}
	if dst.NumBands() != src.NumBands() {
		return nil, fmt.Errorf("%w: source has %d bands, destination %d",
			pixel.ErrFormat, src.NumBands(), dst.NumBands())
	}
	if imaging.AccelerateRaster(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}
	return dst, o.resample(src, dst)
}

// FilterImage resamples src into dst, allocating dst when nil. src and dst
// must differ.
//
// An opaque source is resampled as ARGB when the interpolation blends
// pixels and the matrix is more than an integral scale, so that edges get
// coverage. A destination of another color space type or sample
// representation is filled through an intermediate image.
func (o *AffineTransformOp) FilterImage(src, dst *imaging.Image) (*imaging.Image, error) {
	if src == dst {
		return nil, fmt.Errorf("%w: source and destination are the same image", pixel.ErrFormat)
	}
	in := src
	needARGB := o.interp != NearestNeighbor && !isIntegralScale(o.m) &&
		src.Model().Transparency() == colormodel.Opaque
	if needARGB {
		var err error
		if in, err = withOpaqueAlpha(src, o.opts); err != nil {
			return nil, err
		}
	}
	if dst == nil {
		w, h, err := o.destSize(in.Bounds())
		if err != nil {
			return nil, err
		}
		if dst, err = in.Compatible(w, h); err != nil {
			return nil, err
		}
	}
	if imaging.AccelerateImage(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}
	if in.Model() == dst.Model() || sameRepresentation(in, dst) {
		return dst, o.resample(in.Raster(), dst.Raster())
	}

	imaging.Logger().Debug("op: resampling through an intermediate image",
		"src", in.Type(), "dst", dst.Type())
	r, err := in.Raster().CompatibleRasterAt(dst.Bounds())
	if err != nil {
		return nil, err
	}
	work, err := imaging.NewImage(in.Model(), r)
	if err != nil {
		return nil, err
	}
	if err := transfer(dst, work, o.opts); err != nil {
		return nil, err
	}
	if err := o.resample(in.Raster(), work.Raster()); err != nil {
		return nil, err
	}
	return dst, transfer(work, dst, o.opts)
}

// withOpaqueAlpha copies src into an image with an alpha band over the same
// bounds: TypeIntARGB for 8-bit sRGB, otherwise a component model of the
// same color space and depth.
func withOpaqueAlpha(src *imaging.Image, opts options) (*imaging.Image, error) {
	tmp, err := alphaCompatible(src)
	if err != nil {
		return nil, err
	}
	if b := src.Bounds(); b.Min != (image.Point{}) {
		r, err := tmp.Raster().CreateChild(0, 0, b.Dx(), b.Dy(), b.Min.X, b.Min.Y, nil)
		if err != nil {
			return nil, err
		}
		if tmp, err = imaging.NewImage(tmp.Model(), r); err != nil {
			return nil, err
		}
	}
	return tmp, transfer(src, tmp, opts)
}

func alphaCompatible(src *imaging.Image) (*imaging.Image, error) {
	cm := src.Model()
	depth := slices.Max(cm.ComponentSizes())
	if cm.ColorSpace() == colorspace.SRGB && depth <= 8 {
		return imaging.NewImageOfType(imaging.TypeIntARGB, src.Width(), src.Height())
	}
	tt := pixel.TypeFloat
	switch {
	case cm.TransferType().IsFloating():
		tt = cm.TransferType()
	case depth <= 8:
		tt = pixel.TypeByte
	case depth <= 16:
		tt = pixel.TypeUShort
	}
	acm, err := colormodel.NewComponentColorModel(cm.ColorSpace(), nil, true, false, colormodel.Translucent, tt)
	if err != nil {
		return nil, err
	}
	r, err := acm.CompatibleRaster(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	return imaging.NewImage(acm, r)
}

// sampleRange returns the representable range of band b of r.
func sampleRange(r *pixel.Raster, b int) (lo, hi float64) {
	switch dt := r.DataType(); {
	case dt.IsFloating():
		return math.Inf(-1), math.Inf(1)
	case dt == pixel.TypeShort:
		return math.MinInt16, math.MaxInt16
	case dt == pixel.TypeInt && r.SampleModel().SampleSize(b) >= 32:
		return math.MinInt32, math.MaxInt32
	default:
		return 0, float64(uint64(1)<<r.SampleModel().SampleSize(b) - 1)
	}
}

// resample fills every pixel of dst whose centre maps inside src.
func (o *AffineTransformOp) resample(src, dst *pixel.Raster) error {
	sb, db := src.Bounds(), dst.Bounds()
	sw, sh, nb := sb.Dx(), sb.Dy(), src.NumBands()
	pix, err := src.PixelsDouble(sb.Min.X, sb.Min.Y, sw, sh, nil)
	if err != nil {
		return err
	}
	at := func(x, y, b int) float64 {
		return pix[(clampInt(y, 0, sh-1)*sw+clampInt(x, 0, sw-1))*nb+b]
	}
	lo, hi := make([]float64, nb), make([]float64, nb)
	for b := range nb {
		lo[b], hi[b] = sampleRange(dst, b)
	}
	floating := dst.DataType().IsFloating()

	return parallel.Rows(db.Dy(), o.opts.parallelism, func(y0, y1 int) error {
		var row []float64
		for y := db.Min.Y + y0; y < db.Min.Y+y1; y++ {
			var err error
			if row, err = dst.PixelsDouble(db.Min.X, y, db.Dx(), 1, row); err != nil {
				return err
			}
			for i := range db.Dx() {
				u, v := transformPoint(o.inv, float64(db.Min.X+i)+0.5, float64(y)+0.5)
				u -= float64(sb.Min.X)
				v -= float64(sb.Min.Y)
				if !(u >= 0 && v >= 0 && u < float64(sw) && v < float64(sh)) {
					continue
				}
				px := row[i*nb : (i+1)*nb]
				o.sample(px, u, v, nb, at)
				if !floating {
					for b, s := range px {
						px[b] = math.Min(math.Max(math.Floor(s+0.5), lo[b]), hi[b])
					}
				}
			}
			if err := dst.SetPixelsDouble(db.Min.X, y, db.Dx(), 1, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// sample interpolates all bands at source position (u, v), in pixels from
// the top-left of the source.
func (o *AffineTransformOp) sample(px []float64, u, v float64, nb int, at func(x, y, b int) float64) {
	switch o.interp {
	case NearestNeighbor:
		x, y := int(u), int(v)
		for b := range nb {
			px[b] = at(x, y, b)
		}
	case Bilinear:
		fx, fy := u-0.5, v-0.5
		x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
		tx, ty := fx-float64(x0), fy-float64(y0)
		for b := range nb {
			top := lerp(at(x0, y0, b), at(x0+1, y0, b), tx)
			bottom := lerp(at(x0, y0+1, b), at(x0+1, y0+1, b), tx)
			px[b] = lerp(top, bottom, ty)
		}
	case Bicubic:
		fx, fy := u-0.5, v-0.5
		x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
		wx, wy := cubicWeights(fx-float64(x0)), cubicWeights(fy-float64(y0))
		for b := range nb {
			var s float64
			for j := range 4 {
				var r float64
				for i := range 4 {
					r += wx[i] * at(x0-1+i, y0-1+j, b)
				}
				s += wy[j] * r
			}
			px[b] = s
		}
	}
}
