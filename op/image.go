package op

import (
	"fmt"
	"slices"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/pixel"
)

// view returns a w by h window onto the top-left of r with origin (0, 0),
// restricted to bands (nil for all).
func view(r *pixel.Raster, w, h int, bands []int) (*pixel.Raster, error) {
	return r.CreateChild(r.MinX(), r.MinY(), w, h, 0, 0, bands)
}

// commonViews returns origin-aligned views of the overlap of src and dst.
func commonViews(src, dst *pixel.Raster) (s, d *pixel.Raster, err error) {
	w, h := min(src.Width(), dst.Width()), min(src.Height(), dst.Height())
	if w <= 0 || h <= 0 {
		return nil, nil, fmt.Errorf("%w: rasters do not overlap", pixel.ErrFormat)
	}
	if s, err = view(src, w, h, nil); err != nil {
		return nil, nil, err
	}
	if d, err = view(dst, w, h, nil); err != nil {
		return nil, nil, err
	}
	return s, d, nil
}

func bandRange(lo, hi int) []int {
	b := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		b = append(b, i)
	}
	return b
}

// sameRepresentation reports whether samples of a can be written to b
// unchanged: same color space, component sizes and non-premultiplied alpha.
func sameRepresentation(a, b *imaging.Image) bool {
	ma, mb := a.Model(), b.Model()
	if ma == mb {
		return !ma.IsAlphaPremultiplied()
	}
	return ma.ColorSpace() == mb.ColorSpace() &&
		ma.HasAlpha() == mb.HasAlpha() &&
		!ma.IsAlphaPremultiplied() && !mb.IsAlphaPremultiplied() &&
		slices.Equal(ma.ComponentSizes(), mb.ComponentSizes()) &&
		a.Raster().NumBands() == b.Raster().NumBands()
}

// transfer writes the overlap of a into b. Samples are copied when the
// representations agree and converted through normalized components
// otherwise.
func transfer(a, b *imaging.Image, opts options) error {
	if sameRepresentation(a, b) {
		s, d, err := commonViews(a.Raster(), b.Raster())
		if err != nil {
			return err
		}
		return d.SetRect(s)
	}
	_, err := (&ColorConvertOp{opts: opts}).FilterImage(a, b)
	return err
}

// plainWindow returns the w by h top-left window of img with origin (0, 0)
// and non-premultiplied samples at the depth of img. commit writes the
// window back; it is a no-op unless img is premultiplied.
func plainWindow(img *imaging.Image, w, h int) (win *imaging.Image, commit func() error, err error) {
	v, err := view(img.Raster(), w, h, nil)
	if err != nil {
		return nil, nil, err
	}
	if win, err = imaging.NewImage(img.Model(), v); err != nil {
		return nil, nil, err
	}
	if !img.IsAlphaPremultiplied() {
		return win, func() error { return nil }, nil
	}
	c, err := v.Copy()
	if err != nil {
		return nil, nil, err
	}
	plain, err := imaging.NewImage(img.Model(), c)
	if err != nil {
		return nil, nil, err
	}
	if err := plain.CoerceData(false); err != nil {
		return nil, nil, err
	}
	commit = func() error {
		if err := v.SetRect(plain.Raster()); err != nil {
			return err
		}
		back, err := imaging.NewImage(plain.Model(), v)
		if err != nil {
			return err
		}
		return back.CoerceData(true)
	}
	return plain, commit, nil
}

// filterImageBands applies fn to the color bands of src (all bands when
// withAlpha) and writes the result to dst, allocating dst when nil. Alpha
// passes through unchanged otherwise.
//
// Premultiplied images are filtered on non-premultiplied samples of the
// same depth. When dst cannot take the samples of src directly, fn runs
// into an intermediate image in the representation of src that is then
// color converted into dst.
func filterImageBands(src, dst *imaging.Image, withAlpha bool, opts options,
	fn func(s, d *pixel.Raster) error) (*imaging.Image, error) {
	var err error
	if dst == nil {
		if dst, err = src.Compatible(src.Width(), src.Height()); err != nil {
			return nil, err
		}
	}
	numColor := src.Model().NumColorComponents()
	if sameRepresentation(src, dst) {
		sr, dr, err := commonViews(src.Raster(), dst.Raster())
		if err != nil {
			return nil, err
		}
		return dst, applyBands(sr, dr, numColor, withAlpha, src != dst, fn)
	}

	w, h := min(src.Width(), dst.Width()), min(src.Height(), dst.Height())
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: images do not overlap", pixel.ErrFormat)
	}
	in, _, err := plainWindow(src, w, h)
	if err != nil {
		return nil, err
	}
	out, commit, err := plainWindow(dst, w, h)
	if err != nil {
		return nil, err
	}
	work := out
	if !sameRepresentation(in, out) {
		if work, err = in.Compatible(w, h); err != nil {
			return nil, err
		}
		imaging.Logger().Debug("op: converting through an intermediate image",
			"src", src.Type(), "dst", dst.Type())
	}
	if err := applyBands(in.Raster(), work.Raster(), numColor, withAlpha, true, fn); err != nil {
		return nil, err
	}
	if work != out {
		if err := transfer(work, out, opts); err != nil {
			return nil, err
		}
	}
	return dst, commit()
}

// applyBands runs fn over all bands of s and d, or over the color bands
// only, copying alpha when copyAlpha.
func applyBands(s, d *pixel.Raster, numColor int, withAlpha, copyAlpha bool,
	fn func(s, d *pixel.Raster) error) error {
	if withAlpha || numColor == s.NumBands() {
		return fn(s, d)
	}
	return filterColorBands(s, d, numColor, copyAlpha, fn)
}

func filterColorBands(sr, wr *pixel.Raster, numColor int, copyAlpha bool,
	fn func(s, d *pixel.Raster) error) error {
	w, h, nb := sr.Width(), sr.Height(), sr.NumBands()
	color := bandRange(0, numColor)
	sc, err := view(sr, w, h, color)
	if err != nil {
		return err
	}
	wc, err := view(wr, w, h, color)
	if err != nil {
		return err
	}
	if err := fn(sc, wc); err != nil {
		return err
	}
	if !copyAlpha {
		return nil
	}
	alpha := bandRange(numColor, nb)
	sa, err := view(sr, w, h, alpha)
	if err != nil {
		return err
	}
	wa, err := view(wr, w, h, alpha)
	if err != nil {
		return err
	}
	return wa.SetRect(sa)
}
