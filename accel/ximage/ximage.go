// Package ximage registers an accelerator backed by golang.org/x/image/draw.
//
// It handles nearest neighbour affine transforms between images of the same
// 8-bit sRGB type and declines everything else, which then runs on the
// portable implementation.
//
// Usage:
//
//	import _ "github.com/gogpu/imaging/accel/ximage"
package ximage

import (
	"image"
	"log/slog"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/op"
	"github.com/gogpu/imaging/pixel"
)

func init() {
	imaging.RegisterAccelerator(&Accelerator{})
}

// Accelerator runs affine transforms through x/image/draw.
type Accelerator struct {
	log atomic.Pointer[slog.Logger]
}

// Name implements imaging.Accelerator.
func (a *Accelerator) Name() string { return "x/image/draw" }

// SetLogger sets the logger used for decline reasons.
func (a *Accelerator) SetLogger(l *slog.Logger) { a.log.Store(l) }

func (a *Accelerator) logger() *slog.Logger {
	if l := a.log.Load(); l != nil {
		return l
	}
	return imaging.Logger()
}

// CanAccelerate implements imaging.Accelerator.
func (a *Accelerator) CanAccelerate(kind imaging.OpKind) bool {
	return kind&imaging.OpAffine != 0
}

// lossless lists the types that round trip through image.NRGBA exactly.
var lossless = map[imaging.ImageType]bool{
	imaging.TypeIntRGB:    true,
	imaging.TypeIntARGB:   true,
	imaging.TypeIntBGR:    true,
	imaging.Type3ByteBGR:  true,
	imaging.Type4ByteABGR: true,
}

// FilterImage implements imaging.Accelerator.
func (a *Accelerator) FilterImage(o imaging.Operation, src, dst *imaging.Image) error {
	t, ok := o.(*op.AffineTransformOp)
	if !ok || t.Interpolation() != op.NearestNeighbor {
		return imaging.ErrNotAccelerated
	}
	if src.Type() != dst.Type() || !lossless[src.Type()] {
		a.logger().Debug("ximage: declined image types", "src", src.Type(), "dst", dst.Type())
		return imaging.ErrNotAccelerated
	}

	// x/image/draw truncates mapped coordinates toward zero. Shifting the
	// source to start at (1, 1) makes that agree with flooring.
	in := src.NRGBA()
	if !opaque(in) {
		a.logger().Debug("ximage: declined translucent source")
		return imaging.ErrNotAccelerated
	}
	d := image.Pt(1, 1).Sub(in.Rect.Min)
	in.Rect = in.Rect.Add(d)
	m := op.Multiply(t.Matrix(), op.Translate(float64(-d.X), float64(-d.Y)))

	out := dst.NRGBA()
	xdraw.NearestNeighbor.Transform(out, m, in, in.Rect, xdraw.Src, nil)
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := out.NRGBAAt(x, y)
			argb := uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			if err := dst.SetRGB(x, y, argb); err != nil {
				return err
			}
		}
	}
	return nil
}

// opaque reports whether every pixel of img has full alpha. x/image/draw
// composes through premultiplied 16-bit color, which is exact only then.
func opaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return false
			}
		}
	}
	return true
}

// FilterRaster implements imaging.Accelerator. Rasters carry no color
// model, so it always declines.
func (a *Accelerator) FilterRaster(imaging.Operation, *pixel.Raster, *pixel.Raster) error {
	return imaging.ErrNotAccelerated
}

var _ imaging.Accelerator = (*Accelerator)(nil)
