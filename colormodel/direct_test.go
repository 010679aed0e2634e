package colormodel

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/imaging/colorspace"
	icolor "github.com/gogpu/imaging/internal/color"
	"github.com/gogpu/imaging/pixel"
)

func newARGB(t *testing.T, premultiplied bool) *DirectColorModel {
	t.Helper()
	m, err := NewDirectColorModelWith(colorspace.SRGB, 32, 0xff0000, 0xff00, 0xff, 0xff000000,
		premultiplied, pixel.TypeInt)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func within(a, b, tol int) bool {
	d := a - b
	return d >= -tol && d <= tol
}

func TestDirectARGB(t *testing.T) {
	m := newARGB(t, false)
	if m.Transparency() != Translucent || m.TransferType() != pixel.TypeInt {
		t.Fatalf("transparency %v transfer %v", m.Transparency(), m.TransferType())
	}
	const px = 0x80112233
	if got, _ := m.RGB(px); got != px {
		t.Errorf("RGB = %#x, want %#x", got, px)
	}
	if r, _ := m.Red(px); r != 0x11 {
		t.Errorf("Red = %#x", r)
	}
	if a, _ := m.Alpha(px); a != 0x80 {
		t.Errorf("Alpha = %#x", a)
	}
	obj, err := m.DataElementsFromRGB(px, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := uint32(obj.([]int32)[0]); got != px {
		t.Errorf("DataElementsFromRGB = %#x, want %#x", got, px)
	}
	if got, _ := m.RGBData(obj); got != px {
		t.Errorf("RGBData = %#x", got)
	}
	comps, _ := m.ComponentsData(obj, nil)
	if len(comps) != 4 || comps[0] != 0x11 || comps[3] != 0x80 {
		t.Errorf("ComponentsData = %v", comps)
	}
}

func TestDirect565Scaling(t *testing.T) {
	m, err := NewDirectColorModel(16, 0xf800, 0x7e0, 0x1f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.TransferType() != pixel.TypeUShort || m.Transparency() != Opaque || m.HasAlpha() {
		t.Fatalf("transfer %v transparency %v alpha %v", m.TransferType(), m.Transparency(), m.HasAlpha())
	}
	tests := []struct {
		name string
		px   uint32
		get  func(uint32) (int, error)
		want int
	}{
		{"full red", 0xf800, m.Red, 255},
		{"one step of red", 0x0800, m.Red, 8},
		{"full green", 0x07e0, m.Green, 255},
		{"half green", 0x0400, m.Green, 130},
		{"full blue", 0x001f, m.Blue, 255},
		{"opaque alpha", 0, m.Alpha, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := tt.get(tt.px); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDirectPremultipliedRead(t *testing.T) {
	m := newARGB(t, true)
	if r, _ := m.Red(0x80400000); !within(r, 128, 1) {
		t.Errorf("Red of premultiplied half red = %d, want about 128", r)
	}
	if r, _ := m.Red(0x00400000); r != 0 {
		t.Errorf("Red with zero alpha = %d, want 0", r)
	}
	obj, _ := m.DataElementsFromRGB(0x80ff0000, nil)
	if got := uint32(obj.([]int32)[0]); got>>16&0xff != 0x80 {
		t.Errorf("premultiplied encoding = %#x", got)
	}
}

func TestDirectLinearRGB(t *testing.T) {
	m, err := NewDirectColorModelWith(colorspace.LinearRGB, 24, 0xff0000, 0xff00, 0xff, 0, false, pixel.TypeInt)
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := m.Red(0x7f0000); r != int(icolor.Linear8ToSRGB8(127)) {
		t.Errorf("Red = %d, want %d", r, icolor.Linear8ToSRGB8(127))
	}
	for _, argb := range []uint32{0xff000000, 0xffffffff, 0xff808080, 0xff20c040} {
		obj, err := m.DataElementsFromRGB(argb, nil)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := m.RGBData(obj)
		for shift := 0; shift < 24; shift += 8 {
			if !within(int(got>>shift&0xff), int(argb>>shift&0xff), 3) {
				t.Errorf("round trip of %#x = %#x", argb, got)
				break
			}
		}
	}

	wide, err := NewDirectColorModelWith(colorspace.LinearRGB, 32, 0xffff0000, 0xffff, 0, 0, false, pixel.TypeInt)
	if err == nil || wide != nil {
		t.Errorf("empty blue mask accepted")
	}
	m16, err := NewDirectColorModelWith(colorspace.LinearRGB, 32, 0x7ff00000, 0xffc00, 0x3ff, 0, false, pixel.TypeInt)
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := m16.Red(0x7ff00000); r != 255 {
		t.Errorf("11-bit full red = %d", r)
	}
}

func TestDirectConstructionErrors(t *testing.T) {
	tests := []struct {
		name string
		cs   colorspace.ColorSpace
		bits int
		r    uint32
		g    uint32
		b    uint32
		a    uint32
		tt   pixel.DataType
	}{
		{"non contiguous", colorspace.SRGB, 16, 0xf0f0, 0x0f00, 0x000f, 0, pixel.TypeUShort},
		{"overlap", colorspace.SRGB, 16, 0xff00, 0x0ff0, 0x000f, 0, pixel.TypeUShort},
		{"exceeds pixel size", colorspace.SRGB, 16, 0xff0000, 0xff00, 0xff, 0, pixel.TypeInt},
		{"gray space", colorspace.LinearGray, 24, 0xff0000, 0xff00, 0xff, 0, pixel.TypeInt},
		{"lab space", colorspace.CIELab, 24, 0xff0000, 0xff00, 0xff, 0, pixel.TypeInt},
		{"float transfer", colorspace.SRGB, 24, 0xff0000, 0xff00, 0xff, 0, pixel.TypeFloat},
		{"pixel wider than transfer", colorspace.SRGB, 24, 0xff0000, 0xff00, 0xff, 0, pixel.TypeUShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirectColorModelWith(tt.cs, tt.bits, tt.r, tt.g, tt.b, tt.a, false, tt.tt)
			if !errors.Is(err, pixel.ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}
}

func TestDirectTransferErrors(t *testing.T) {
	m := newARGB(t, false)
	if _, err := m.RedData([]uint8{1}); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("wrong array type: err = %v, want ErrFormat", err)
	}
	if _, err := m.RedData("pixel"); !errors.Is(err, pixel.ErrUnsupported) {
		t.Errorf("non transfer value: err = %v, want ErrUnsupported", err)
	}
}

func TestDirectCompatibleRaster(t *testing.T) {
	m := newARGB(t, false)
	r, err := m.CompatibleRaster(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsCompatibleRaster(r) {
		t.Error("CompatibleRaster is not compatible")
	}
	other, _ := pixel.NewInterleavedRaster(pixel.TypeByte, 3, 2, 4, image.Point{})
	if m.IsCompatibleRaster(other) {
		t.Error("interleaved byte raster reported compatible")
	}
	bitmask, err := NewDirectColorModel(16, 0x7c00, 0x3e0, 0x1f, 0x8000)
	if err != nil {
		t.Fatal(err)
	}
	if bitmask.Transparency() != Bitmask {
		t.Errorf("1-bit alpha transparency = %v", bitmask.Transparency())
	}
}

func setPixels(t *testing.T, r *pixel.Raster, px [][]int) {
	t.Helper()
	for i, p := range px {
		if err := r.SetPixel(i, 0, p); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDirectCoerceData(t *testing.T) {
	m := newARGB(t, false)
	r, _ := m.CompatibleRaster(3, 1)
	setPixels(t, r, [][]int{{200, 100, 50, 128}, {10, 20, 30, 0}, {255, 255, 255, 255}})

	pm, err := m.CoerceData(r, true)
	if err != nil {
		t.Fatal(err)
	}
	if !pm.IsAlphaPremultiplied() {
		t.Fatal("coerced model is not premultiplied")
	}
	want := [][]int{{100, 50, 25, 128}, {0, 0, 0, 0}, {255, 255, 255, 255}}
	for x, w := range want {
		got, _ := r.Pixel(x, 0, nil)
		for b := range w {
			if got[b] != w[b] {
				t.Errorf("pixel %d = %v, want %v", x, got, w)
				break
			}
		}
	}

	again, err := pm.CoerceData(r, true)
	if err != nil {
		t.Fatal(err)
	}
	if again != pm {
		t.Error("coercing to the current state returned a new model")
	}
	p0, _ := r.Pixel(0, 0, nil)
	if p0[0] != 100 {
		t.Errorf("idempotent coerce changed samples: %v", p0)
	}

	um, err := pm.CoerceData(r, false)
	if err != nil {
		t.Fatal(err)
	}
	if um.IsAlphaPremultiplied() {
		t.Error("model still premultiplied")
	}
	back, _ := r.Pixel(0, 0, nil)
	if !within(back[0], 200, 1) || !within(back[1], 100, 1) || !within(back[2], 50, 1) {
		t.Errorf("unpremultiplied pixel = %v", back)
	}
	zero, _ := r.Pixel(1, 0, nil)
	if zero[0] != 0 {
		t.Errorf("zero alpha pixel = %v, colour should stay cleared", zero)
	}
}

func TestCoerceRoundTripFromPremultiplied(t *testing.T) {
	m := newARGB(t, true)
	r, _ := m.CompatibleRaster(4, 1)
	orig := [][]int{{100, 50, 25, 128}, {3, 2, 1, 7}, {64, 64, 0, 64}, {9, 9, 9, 255}}
	setPixels(t, r, orig)
	um, err := m.CoerceData(r, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := um.CoerceData(r, true); err != nil {
		t.Fatal(err)
	}
	for x, o := range orig {
		got, _ := r.Pixel(x, 0, nil)
		for b := range o {
			if !within(got[b], o[b], 1) {
				t.Errorf("pixel %d = %v, want %v", x, got, o)
				break
			}
		}
	}
}

func TestAlphaRaster(t *testing.T) {
	m := newARGB(t, false)
	r, _ := m.CompatibleRaster(2, 1)
	setPixels(t, r, [][]int{{1, 2, 3, 40}, {5, 6, 7, 80}})
	ar, err := m.AlphaRaster(r)
	if err != nil {
		t.Fatal(err)
	}
	if ar.NumBands() != 1 {
		t.Fatalf("alpha raster has %d bands", ar.NumBands())
	}
	if a, _ := ar.Sample(1, 0, 0); a != 80 {
		t.Errorf("alpha = %d, want 80", a)
	}
	opaque, _ := NewDirectColorModel(24, 0xff0000, 0xff00, 0xff, 0)
	if ar, err := opaque.AlphaRaster(r); ar != nil || err != nil {
		t.Errorf("opaque AlphaRaster = %v, %v", ar, err)
	}
}
