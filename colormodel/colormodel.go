package colormodel

import (
	"fmt"

	"github.com/gogpu/imaging/colorspace"
	"github.com/gogpu/imaging/pixel"
)

// Transparency classifies the alpha values a model can represent.
type Transparency uint8

// Transparency classes.
const (
	Opaque Transparency = iota + 1
	Bitmask
	Translucent
)

func (t Transparency) String() string {
	switch t {
	case Opaque:
		return "opaque"
	case Bitmask:
		return "bitmask"
	case Translucent:
		return "translucent"
	}
	return fmt.Sprintf("Transparency(%d)", t)
}

// ColorModel interprets the samples of a raster as colors.
//
// Pixel-valued accessors take a packed integer pixel. Data-valued
// accessors take a transfer array as returned by
// pixel.SampleModel.DataElements. 8-bit results are sRGB.
type ColorModel interface {
	ColorSpace() colorspace.ColorSpace
	PixelSize() int
	NumComponents() int
	NumColorComponents() int
	ComponentSize(i int) int
	ComponentSizes() []int
	HasAlpha() bool
	IsAlphaPremultiplied() bool
	Transparency() Transparency
	TransferType() pixel.DataType

	Red(px uint32) (int, error)
	Green(px uint32) (int, error)
	Blue(px uint32) (int, error)
	Alpha(px uint32) (int, error)
	RGB(px uint32) (uint32, error)

	RedData(data any) (int, error)
	GreenData(data any) (int, error)
	BlueData(data any) (int, error)
	AlphaData(data any) (int, error)

	// RGBData returns the pixel as non-premultiplied 0xAARRGGBB.
	RGBData(data any) (uint32, error)

	// ComponentsData returns the unnormalized components of a pixel:
	// color components then alpha.
	ComponentsData(data any, dst []int) ([]int, error)

	// NormalizedComponents returns color components in the natural range
	// of the color space followed by alpha in [0,1]. Premultiplied models
	// return premultiplied values.
	NormalizedComponents(data any, dst []float32) ([]float32, error)

	// NormalizeComponents scales unnormalized components to [0,1] by
	// their sizes. Colors of premultiplied models are divided by alpha.
	NormalizeComponents(components []int, dst []float32) ([]float32, error)

	// UnnormalizeComponents is the inverse of NormalizeComponents,
	// rounding half up.
	UnnormalizeComponents(normalized []float32, dst []int) ([]int, error)

	// DataElement packs unnormalized components into an int pixel.
	DataElement(components []int) (uint32, error)

	// DataElementFromNormalized packs normalized components into an int
	// pixel.
	DataElementFromNormalized(normalized []float32) (uint32, error)

	// DataElementsFromRGB encodes a non-premultiplied 0xAARRGGBB value.
	DataElementsFromRGB(argb uint32, dst any) (any, error)
	DataElementsFromComponents(components []int, dst any) (any, error)
	DataElementsFromNormalized(normalized []float32, dst any) (any, error)

	CompatibleSampleModel(w, h int) (pixel.SampleModel, error)
	CompatibleRaster(w, h int) (*pixel.Raster, error)
	IsCompatibleSampleModel(sm pixel.SampleModel) bool
	IsCompatibleRaster(r *pixel.Raster) bool

	// CoerceData rewrites the samples of r in place so that they match the
	// requested premultiplication and returns the model describing the
	// result. It returns the receiver when nothing needs to change.
	CoerceData(r *pixel.Raster, premultiplied bool) (ColorModel, error)

	// AlphaRaster returns a single band child of r holding alpha, or nil
	// when the model has no alpha.
	AlphaRaster(r *pixel.Raster) (*pixel.Raster, error)
}

// base carries the fields common to every color model.
type base struct {
	cs            colorspace.ColorSpace
	bits          []int
	pixelBits     int
	hasAlpha      bool
	premultiplied bool
	transparency  Transparency
	transferType  pixel.DataType
	numComponents int
	numColor      int
	maxValues     []int
}

func newBase(cs colorspace.ColorSpace, bits []int, pixelBits int, hasAlpha, premultiplied bool,
	transparency Transparency, transferType pixel.DataType) (base, error) {
	if cs == nil {
		return base{}, fmt.Errorf("%w: nil color space", pixel.ErrFormat)
	}
	numColor := cs.NumComponents()
	numComponents := numColor
	if hasAlpha {
		numComponents++
	}
	if len(bits) != numComponents {
		return base{}, fmt.Errorf("%w: %d component sizes for %d components",
			pixel.ErrFormat, len(bits), numComponents)
	}
	if !transferType.IsValid() {
		return base{}, fmt.Errorf("%w: transfer type %v", pixel.ErrUnsupported, transferType)
	}
	sum := 0
	maxValues := make([]int, numComponents)
	for i, n := range bits {
		if n < 0 {
			return base{}, fmt.Errorf("%w: negative size for component %d", pixel.ErrFormat, i)
		}
		sum += n
		if n > 0 && n < 64 {
			maxValues[i] = 1<<n - 1
		}
	}
	if sum > pixelBits {
		return base{}, fmt.Errorf("%w: components need %d bits, pixel has %d",
			pixel.ErrFormat, sum, pixelBits)
	}
	if !hasAlpha {
		premultiplied = false
		transparency = Opaque
	}
	return base{
		cs:            cs,
		bits:          append([]int(nil), bits...),
		pixelBits:     pixelBits,
		hasAlpha:      hasAlpha,
		premultiplied: premultiplied,
		transparency:  transparency,
		transferType:  transferType,
		numComponents: numComponents,
		numColor:      numColor,
		maxValues:     maxValues,
	}, nil
}

// ColorSpace returns the color space of the color components.
func (m *base) ColorSpace() colorspace.ColorSpace { return m.cs }

// PixelSize returns the number of bits per pixel.
func (m *base) PixelSize() int { return m.pixelBits }

// NumComponents returns the number of components including alpha.
func (m *base) NumComponents() int { return m.numComponents }

// NumColorComponents returns the number of color components.
func (m *base) NumColorComponents() int { return m.numColor }

// ComponentSize returns the bit depth of component i.
func (m *base) ComponentSize(i int) int { return m.bits[i] }

// ComponentSizes returns a copy of the per-component bit depths.
func (m *base) ComponentSizes() []int { return append([]int(nil), m.bits...) }

// HasAlpha reports whether the model has an alpha component.
func (m *base) HasAlpha() bool { return m.hasAlpha }

// IsAlphaPremultiplied reports whether color components are stored
// multiplied by alpha.
func (m *base) IsAlphaPremultiplied() bool { return m.premultiplied }

// Transparency returns the transparency class.
func (m *base) Transparency() Transparency { return m.transparency }

// TransferType returns the transfer array type of pixels.
func (m *base) TransferType() pixel.DataType { return m.transferType }

// AlphaRaster returns a child raster with only the alpha band.
func (m *base) AlphaRaster(r *pixel.Raster) (*pixel.Raster, error) {
	if !m.hasAlpha {
		return nil, nil
	}
	return r.CreateChild(r.MinX(), r.MinY(), r.Width(), r.Height(), r.MinX(), r.MinY(),
		[]int{m.numComponents - 1})
}

// NormalizeComponents implements ColorModel for integral models.
func (m *base) NormalizeComponents(components []int, dst []float32) ([]float32, error) {
	if m.transferType.IsFloating() {
		return nil, m.unsupported("unnormalized components")
	}
	if len(components) < m.numComponents {
		return nil, fmt.Errorf("%w: %d components, want %d", pixel.ErrOutOfRange,
			len(components), m.numComponents)
	}
	if cap(dst) < m.numComponents {
		dst = make([]float32, m.numComponents)
	}
	dst = dst[:m.numComponents]
	for i := range dst {
		dst[i] = float32(components[i]) / float32(m.maxValues[i])
	}
	if m.hasAlpha && m.premultiplied {
		a := dst[m.numColor]
		for i := range m.numColor {
			if a == 0 {
				dst[i] = 0
			} else {
				dst[i] /= a
			}
		}
	}
	return dst, nil
}

// UnnormalizeComponents implements ColorModel for integral models. Values
// are clamped to [0,1] first.
func (m *base) UnnormalizeComponents(normalized []float32, dst []int) ([]int, error) {
	if m.transferType.IsFloating() {
		return nil, m.unsupported("unnormalized components")
	}
	if len(normalized) < m.numComponents {
		return nil, fmt.Errorf("%w: %d components, want %d", pixel.ErrOutOfRange,
			len(normalized), m.numComponents)
	}
	if cap(dst) < m.numComponents {
		dst = make([]int, m.numComponents)
	}
	dst = dst[:m.numComponents]
	a := float32(1)
	if m.hasAlpha && m.premultiplied {
		a = min(max(normalized[m.numColor], 0), 1)
	}
	for i := range dst {
		v := min(max(normalized[i], 0), 1)
		if i < m.numColor {
			v *= a
		}
		dst[i] = int(v*float32(m.maxValues[i]) + 0.5)
	}
	return dst, nil
}

func (m *base) unsupported(what string) error {
	return fmt.Errorf("%w: %s with transfer type %v", pixel.ErrUnsupported, what, m.transferType)
}

// transferElems returns the transfer array ensured for n elements of the
// model's transfer type.
func (m *base) transferElems(dst any, n int) (any, error) {
	return pixel.EnsureTransferArray(dst, m.transferType, n)
}

// scale8 maps a raw component to 8 bits with round half up.
func scale8(raw, maxValue int) int {
	if maxValue == 255 {
		return raw
	}
	return int(float32(raw)*(255/float32(maxValue)) + 0.5)
}

// packARGB assembles 0xAARRGGBB from 8-bit channels.
func packARGB(a, r, g, b int) uint32 {
	return uint32(a&0xff)<<24 | uint32(r&0xff)<<16 | uint32(g&0xff)<<8 | uint32(b&0xff)
}
