package op

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/pixel"
)

// newRaster returns an interleaved raster at the origin holding samples
// in row-major pixel order.
func newRaster(t *testing.T, dt pixel.DataType, w, h, nb int, samples []int) *pixel.Raster {
	t.Helper()
	r, err := pixel.NewInterleavedRaster(dt, w, h, nb, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	if samples != nil {
		if err := r.SetPixels(0, 0, w, h, samples); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func allPixels(t *testing.T, r *pixel.Raster) []int {
	t.Helper()
	px, err := r.Pixels(r.MinX(), r.MinY(), r.Width(), r.Height(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return px
}

func TestAffineIdentityNearestImage(t *testing.T) {
	src, err := imaging.NewImageOfType(imaging.TypeIntARGB, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := range 3 {
		for x := range 4 {
			if err := src.SetRGB(x, y, 0xff000000|uint32(x*50)<<16|uint32(y*80)); err != nil {
				t.Fatal(err)
			}
		}
	}

	o, err := NewAffineTransformOp(Identity(), NearestNeighbor, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.FilterImage(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(0, 0, 4, 3); dst.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", dst.Bounds(), want)
	}
	for y := range 3 {
		for x := range 4 {
			got, _ := dst.RGB(x, y)
			want, _ := src.RGB(x, y)
			if got != want {
				t.Errorf("pixel (%d,%d) = %#08x, want %#08x", x, y, got, want)
			}
		}
	}
}

func TestAffineTranslateRaster(t *testing.T) {
	src := newRaster(t, pixel.TypeByte, 3, 1, 1, []int{10, 20, 30})
	o, err := NewAffineTransformOp(Translate(1, 0), NearestNeighbor, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.FilterRaster(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := allPixels(t, dst); !slices.Equal(got, []int{0, 10, 20, 30}) {
		t.Errorf("translated = %v, want [0 10 20 30]", got)
	}
}

func TestAffineTranslatedDestination(t *testing.T) {
	src := newRaster(t, pixel.TypeByte, 4, 1, 1, []int{1, 2, 3, 4})
	dst, err := pixel.NewInterleavedRaster(pixel.TypeByte, 3, 1, 1, image.Pt(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.SetPixels(2, 0, 3, 1, []int{99, 99, 99}); err != nil {
		t.Fatal(err)
	}
	o, err := NewAffineTransformOp(Identity(), NearestNeighbor, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.FilterRaster(src, dst); err != nil {
		t.Fatal(err)
	}
	if got := allPixels(t, dst); !slices.Equal(got, []int{3, 4, 99}) {
		t.Errorf("dst = %v, want [3 4 99]", got)
	}
}

func TestAffineBilinearScale(t *testing.T) {
	src := newRaster(t, pixel.TypeByte, 2, 1, 1, []int{0, 100})
	o, err := NewAffineTransformOp(Scale(2, 2), Bilinear, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.FilterRaster(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if dst.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	want := []int{0, 25, 75, 100, 0, 25, 75, 100}
	if got := allPixels(t, dst); !slices.Equal(got, want) {
		t.Errorf("scaled = %v, want %v", got, want)
	}
}

func TestAffineBicubicClampsToDepth(t *testing.T) {
	// Catmull-Rom overshoots next to a hard edge.
	src := newRaster(t, pixel.TypeByte, 4, 1, 1, []int{0, 0, 255, 255})
	o, err := NewAffineTransformOp(Translate(0.25, 0), Bicubic, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.FilterRaster(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range allPixels(t, dst) {
		if v < 0 || v > 255 {
			t.Errorf("sample %d = %d outside byte range", i, v)
		}
	}
}

func TestAffineRejectsSameSource(t *testing.T) {
	r := newRaster(t, pixel.TypeByte, 2, 2, 1, nil)
	o, err := NewAffineTransformOp(Identity(), NearestNeighbor)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.FilterRaster(r, r); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("same raster: err = %v, want ErrFormat", err)
	}
}

func TestAffineNegativeBoundsNeedDestination(t *testing.T) {
	r := newRaster(t, pixel.TypeByte, 2, 2, 1, nil)
	o, err := NewAffineTransformOp(Translate(-10, -10), NearestNeighbor, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.FilterRaster(r, nil); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("bounds left of origin: err = %v, want ErrFormat", err)
	}
}

func TestAffineOpaqueSourceBecomesARGB(t *testing.T) {
	src, err := imaging.NewImageOfType(imaging.TypeIntRGB, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	o, err := NewAffineTransformOp(Multiply(Translate(4, 0), Rotate(0.2)), Bilinear, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.FilterImage(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if dst.Type() != imaging.TypeIntARGB {
		t.Errorf("dst type = %v, want %v", dst.Type(), imaging.TypeIntARGB)
	}

	integral, err := NewAffineTransformOp(Scale(2, 2), Bilinear, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	if dst, err = integral.FilterImage(src, nil); err != nil {
		t.Fatal(err)
	}
	if dst.Type() != imaging.TypeIntRGB {
		t.Errorf("integral scale: dst type = %v, want %v", dst.Type(), imaging.TypeIntRGB)
	}
}

func TestAffineIntoDifferentType(t *testing.T) {
	src, err := imaging.NewImageOfType(imaging.TypeIntARGB, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for y := range 2 {
		for x := range 2 {
			_ = src.SetRGB(x, y, 0xff336699)
		}
	}
	dst, err := imaging.NewImageOfType(imaging.Type4ByteABGRPre, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	o, err := NewAffineTransformOp(Identity(), NearestNeighbor, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.FilterImage(src, dst); err != nil {
		t.Fatal(err)
	}
	if got, _ := dst.RGB(1, 1); got != 0xff336699 {
		t.Errorf("dst pixel = %#08x, want 0xff336699", got)
	}
}
