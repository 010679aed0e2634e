package op

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/pixel"
)

func TestRescaleRaster(t *testing.T) {
	tests := []struct {
		name   string
		dt     pixel.DataType
		scale  float32
		offset float32
		in     []int
		want   []int
	}{
		{"byte lookup path clamps", pixel.TypeByte, 2, 10, []int{0, 100, 200}, []int{10, 210, 255}},
		{"byte truncates", pixel.TypeByte, 0.5, 0, []int{3, 255, 1}, []int{1, 127, 0}},
		{"negative clamps to zero", pixel.TypeByte, 1, -50, []int{10, 60, 255}, []int{0, 10, 205}},
		{"ushort lookup path", pixel.TypeUShort, 3, 1, []int{0, 1000, 30000}, []int{1, 3001, 65535}},
		{"short float path", pixel.TypeShort, 2, 0, []int{-5, 100, 20000}, []int{0, 200, 32767}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newRaster(t, tt.dt, len(tt.in), 1, 1, tt.in)
			o, err := NewRescaleOp([]float32{tt.scale}, []float32{tt.offset}, WithoutAcceleration())
			if err != nil {
				t.Fatal(err)
			}
			dst, err := o.FilterRaster(src, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := allPixels(t, dst); !slices.Equal(got, tt.want) {
				t.Errorf("rescaled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRescaleFloatRasterUnclamped(t *testing.T) {
	src, err := pixel.NewInterleavedRaster(pixel.TypeFloat, 2, 1, 1, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	_ = src.SetPixelsDouble(0, 0, 2, 1, []float64{100, -1.5})
	o, _ := NewRescaleOp([]float32{2}, []float32{10}, WithoutAcceleration())
	dst, err := o.FilterRaster(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := dst.PixelsDouble(0, 0, 2, 1, nil)
	if !slices.Equal(got, []float64{210, 7}) {
		t.Errorf("float rescale = %v, want [210 7]", got)
	}
}

func TestRescaleTableMatchesFloatPath(t *testing.T) {
	samples := make([]int, 256)
	for i := range samples {
		samples[i] = i
	}
	src := newRaster(t, pixel.TypeByte, 256, 1, 1, samples)
	scales, offsets := []float32{1.7}, []float32{-3.2}

	viaTable := newRaster(t, pixel.TypeByte, 256, 1, 1, nil)
	srcBits, dstBits, ok := lookupBits(src, viaTable)
	if !ok || srcBits != 8 || dstBits != 8 {
		t.Fatalf("lookupBits = %d, %d, %v", srcBits, dstBits, ok)
	}
	if err := lookupRaster(rescaleTable(scales, offsets, srcBits, dstBits), src, viaTable, 1); err != nil {
		t.Fatal(err)
	}
	viaFloat := newRaster(t, pixel.TypeByte, 256, 1, 1, nil)
	if err := rescaleRaster(src, viaFloat, scales, offsets, 1); err != nil {
		t.Fatal(err)
	}
	if a, b := allPixels(t, viaTable), allPixels(t, viaFloat); !slices.Equal(a, b) {
		t.Errorf("table and float paths differ:\n%v\n%v", a, b)
	}
}

func TestLookupBits(t *testing.T) {
	byte3 := newRaster(t, pixel.TypeByte, 1, 1, 3, nil)
	short := newRaster(t, pixel.TypeShort, 1, 1, 3, nil)
	float := newRaster(t, pixel.TypeFloat, 1, 1, 3, nil)
	packed, err := pixel.NewPackedMaskRaster(pixel.TypeUShort, 1, 1, []uint32{0xf800, 0x07e0, 0x001f}, image.Point{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		src, dst *pixel.Raster
		ok       bool
	}{
		{"byte to byte", byte3, byte3, true},
		{"565 to byte", packed, byte3, true},
		{"byte to 565", byte3, packed, false},
		{"signed source", short, byte3, false},
		{"float destination", byte3, float, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := lookupBits(tt.src, tt.dst); ok != tt.ok {
				t.Errorf("lookupBits ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestRescaleImageKeepsAlpha(t *testing.T) {
	src, err := imaging.NewImageOfType(imaging.TypeIntARGB, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := src.SetRGB(0, 0, 0x80102030); err != nil {
		t.Fatal(err)
	}
	o, err := NewRescaleOp([]float32{2}, []float32{0}, WithoutAcceleration())
	if err != nil {
		t.Fatal(err)
	}
	dst, err := o.FilterImage(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := dst.RGB(0, 0); got != 0x80204060 {
		t.Errorf("RGB = %#08x, want 0x80204060", got)
	}
}

func TestRescaleFactorCounts(t *testing.T) {
	if _, err := NewRescaleOp([]float32{1, 2}, []float32{0}); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("length mismatch: err = %v, want ErrFormat", err)
	}
	if _, err := NewRescaleOp(nil, nil); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("no factors: err = %v, want ErrFormat", err)
	}

	o, err := NewRescaleOp([]float32{1, 1}, []float32{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.FilterRaster(newRaster(t, pixel.TypeByte, 1, 1, 3, nil), nil); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("2 factors on 3 bands: err = %v, want ErrFormat", err)
	}
	gray, err := imaging.NewImageOfType(imaging.TypeByteGray, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.FilterImage(gray, nil); !errors.Is(err, pixel.ErrFormat) {
		t.Errorf("2 factors on gray: err = %v, want ErrFormat", err)
	}
	if o.NumFactors() != 2 || !slices.Equal(o.ScaleFactors(), []float32{1, 1}) {
		t.Errorf("accessors: %d %v", o.NumFactors(), o.ScaleFactors())
	}
}
