package colormodel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/imaging/colorspace"
	"github.com/gogpu/imaging/pixel"
)

func newGray(t *testing.T, tt pixel.DataType) *ComponentColorModel {
	t.Helper()
	m, err := NewComponentColorModel(colorspace.LinearGray, nil, false, false, Opaque, tt)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNormalizeComponents(t *testing.T) {
	rgb565, err := NewDirectColorModel(16, 0xf800, 0x7e0, 0x1f, 0)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		m     ColorModel
		comps []int
		norm  []float32
	}{
		{"ARGB", newARGB(t, false), []int{0x11, 0x22, 0x33, 0x80},
			[]float32{17.0 / 255, 34.0 / 255, 51.0 / 255, 128.0 / 255}},
		{"premultiplied ARGB", newARGB(t, true), []int{64, 32, 0, 128},
			[]float32{0.5, 0.25, 0, 128.0 / 255}},
		{"transparent premultiplied", newARGB(t, true), []int{0, 0, 0, 0}, []float32{0, 0, 0, 0}},
		{"565", rgb565, []int{31, 63, 0}, []float32{1, 1, 0}},
		{"gray ushort", newGray(t, pixel.TypeUShort), []int{65535}, []float32{1}},
		{"gray short", newGray(t, pixel.TypeShort), []int{32767}, []float32{1}},
	}
	approx := cmpopts.EquateApprox(0, 1e-6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm, err := tt.m.NormalizeComponents(tt.comps, nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.norm, norm, approx); diff != "" {
				t.Errorf("NormalizeComponents (-want +got):\n%s", diff)
			}
			comps, err := tt.m.UnnormalizeComponents(norm, nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.comps, comps); diff != "" {
				t.Errorf("UnnormalizeComponents (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnnormalizeComponentsRounding(t *testing.T) {
	m := newARGB(t, false)
	got, err := m.UnnormalizeComponents([]float32{0.5, -1, 2, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{128, 0, 255, 255}, got); diff != "" {
		t.Errorf("UnnormalizeComponents (-want +got):\n%s", diff)
	}
}

func TestNormalizeComponentsErrors(t *testing.T) {
	float := newGray(t, pixel.TypeFloat)
	if _, err := float.NormalizeComponents([]int{1}, nil); !errors.Is(err, pixel.ErrUnsupported) {
		t.Errorf("float model: err = %v, want ErrUnsupported", err)
	}
	if _, err := float.UnnormalizeComponents([]float32{1}, nil); !errors.Is(err, pixel.ErrUnsupported) {
		t.Errorf("float model: err = %v, want ErrUnsupported", err)
	}
	m := newARGB(t, false)
	if _, err := m.NormalizeComponents([]int{1, 2, 3}, nil); !errors.Is(err, pixel.ErrOutOfRange) {
		t.Errorf("short components: err = %v, want ErrOutOfRange", err)
	}
	if _, err := m.UnnormalizeComponents([]float32{1}, nil); !errors.Is(err, pixel.ErrOutOfRange) {
		t.Errorf("short normalized: err = %v, want ErrOutOfRange", err)
	}
}

func TestRGBDefault(t *testing.T) {
	m := RGBDefault()
	if m != RGBDefault() {
		t.Error("RGBDefault is not shared")
	}
	if m.PixelSize() != 32 || !m.HasAlpha() || m.IsAlphaPremultiplied() || m.ColorSpace() != colorspace.SRGB {
		t.Errorf("RGBDefault = %v", m)
	}
	px, err := m.DataElement([]int{0x11, 0x22, 0x33, 0x80})
	if err != nil {
		t.Fatal(err)
	}
	if px != 0x80112233 {
		t.Errorf("DataElement = %#08x, want 0x80112233", px)
	}
	if px, _ = m.DataElementFromNormalized([]float32{1, 0, 0, 1}); px != 0xffff0000 {
		t.Errorf("DataElementFromNormalized = %#08x, want 0xffff0000", px)
	}
}

func TestDirectDataElementFromNormalizedPremultiplies(t *testing.T) {
	px, err := newARGB(t, true).DataElementFromNormalized([]float32{1, 0.5, 0, 128.0 / 255})
	if err != nil {
		t.Fatal(err)
	}
	if px != 0x80804000 {
		t.Errorf("DataElementFromNormalized = %#08x, want 0x80804000", px)
	}
}

func TestComponentDataElement(t *testing.T) {
	gray := newGray(t, pixel.TypeByte)
	if px, err := gray.DataElement([]int{200}); err != nil || px != 200 {
		t.Errorf("DataElement = %d, %v; want 200", px, err)
	}
	if _, err := gray.DataElement([]int{300}); !errors.Is(err, pixel.ErrOutOfRange) {
		t.Errorf("out of range: err = %v, want ErrOutOfRange", err)
	}
	if px, err := gray.DataElementFromNormalized([]float32{1}); err != nil || px != 255 {
		t.Errorf("DataElementFromNormalized = %d, %v; want 255", px, err)
	}
	if px, err := newGray(t, pixel.TypeUShort).DataElementFromNormalized([]float32{1}); err != nil || px != 65535 {
		t.Errorf("ushort DataElementFromNormalized = %d, %v; want 65535", px, err)
	}

	rgb, err := NewComponentColorModel(colorspace.SRGB, nil, false, false, Opaque, pixel.TypeByte)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		fn   func() (uint32, error)
	}{
		{"three components", func() (uint32, error) { return rgb.DataElement([]int{1, 2, 3}) }},
		{"float", func() (uint32, error) { return newGray(t, pixel.TypeFloat).DataElement([]int{1}) }},
		{"signed", func() (uint32, error) {
			return newGray(t, pixel.TypeShort).DataElementFromNormalized([]float32{0.5})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, pixel.ErrUnsupported) {
				t.Errorf("err = %v, want ErrUnsupported", err)
			}
		})
	}
}
