package colormodel

import (
	"fmt"
	"image"

	"github.com/gogpu/imaging/colorspace"
	icolor "github.com/gogpu/imaging/internal/color"
	"github.com/gogpu/imaging/pixel"
)

// ComponentColorModel interprets one sample per component: the color
// components of its color space followed by optional alpha. Integral
// samples scale to the color space range of each component; float and
// double samples hold values in that range directly.
type ComponentColorModel struct {
	base
	floating bool
	isSRGB   bool
	lo       []float32
	span     []float32
}

// NewComponentColorModel creates a component model. bits nil gives every
// component the full width of the transfer type. A zero transparency with
// alpha means Translucent.
func NewComponentColorModel(cs colorspace.ColorSpace, bits []int, hasAlpha, premultiplied bool,
	transparency Transparency, transferType pixel.DataType) (*ComponentColorModel, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: nil color space", pixel.ErrFormat)
	}
	n := cs.NumComponents()
	if hasAlpha {
		n++
	}
	floating := transferType.IsFloating()
	if bits == nil || floating {
		bits = make([]int, n)
		for i := range bits {
			bits[i] = transferType.Bits()
		}
	}
	for i, b := range bits {
		if !floating && (b < 1 || b > transferType.Bits()) {
			return nil, fmt.Errorf("%w: component %d has %d bits, transfer type %v holds %d",
				pixel.ErrFormat, i, b, transferType, transferType.Bits())
		}
	}
	if hasAlpha && transparency == 0 {
		transparency = Translucent
	}
	sum := 0
	for _, b := range bits {
		sum += b
	}
	b, err := newBase(cs, bits, sum, hasAlpha, premultiplied, transparency, transferType)
	if err != nil {
		return nil, err
	}
	if transferType == pixel.TypeShort {
		for i, nb := range b.bits {
			if nb == 16 {
				b.maxValues[i] = 1<<15 - 1
			}
		}
	}
	m := &ComponentColorModel{
		base:     b,
		floating: floating,
		isSRGB:   colorspace.IsSRGB(cs),
		lo:       make([]float32, b.numColor),
		span:     make([]float32, b.numColor),
	}
	for i := range b.numColor {
		m.lo[i] = cs.MinValue(i)
		m.span[i] = cs.MaxValue(i) - m.lo[i]
	}
	return m, nil
}

// samples reads every component of a transfer array pixel.
func (m *ComponentColorModel) samples(data any) ([]float64, error) {
	dt, n := pixel.TransferType(data)
	switch {
	case dt == pixel.TypeUndefined:
		return nil, m.unsupported(fmt.Sprintf("pixel data %T", data))
	case dt != m.transferType:
		return nil, fmt.Errorf("%w: pixel data %T, want %v", pixel.ErrFormat, data, m.transferType)
	case n < m.numComponents:
		return nil, fmt.Errorf("%w: %d pixel elements, want %d", pixel.ErrOutOfRange, n, m.numComponents)
	}
	s := make([]float64, m.numComponents)
	for i := range s {
		s[i] = pixel.TransferDouble(data, i)
	}
	return s, nil
}

// unit returns the components of data in [0,1] per component, alpha last,
// with color still premultiplied if the model is.
func (m *ComponentColorModel) unit(s []float64) []float32 {
	u := make([]float32, m.numComponents)
	for i, v := range s {
		switch {
		case !m.floating:
			u[i] = float32(v) / float32(m.maxValues[i])
		case i < m.numColor:
			u[i] = (float32(v) - m.lo[i]) / m.span[i]
		default:
			u[i] = float32(v)
		}
	}
	return u
}

// rgb returns the non-premultiplied sRGB color and alpha of data in [0,1].
func (m *ComponentColorModel) rgb(data any) ([]float32, float32, error) {
	s, err := m.samples(data)
	if err != nil {
		return nil, 0, err
	}
	u := m.unit(s)
	a := float32(1)
	if m.hasAlpha {
		a = u[m.numColor]
	}
	c := u[:m.numColor]
	if m.premultiplied {
		for i := range c {
			if a == 0 {
				c[i] = 0
			} else {
				c[i] /= a
			}
		}
	}
	if m.isSRGB {
		return []float32{icolor.Clamp01(c[0]), icolor.Clamp01(c[1]), icolor.Clamp01(c[2])}, a, nil
	}
	natural := make([]float32, len(c))
	for i, v := range c {
		natural[i] = m.lo[i] + v*m.span[i]
	}
	return m.cs.ToRGB(natural), a, nil
}

func (m *ComponentColorModel) channel8(data any, i int) (int, error) {
	if m.isSRGB && !m.floating && !m.premultiplied {
		s, err := m.samples(data)
		if err != nil {
			return 0, err
		}
		return scale8(int(s[i]), m.maxValues[i]), nil
	}
	rgb, _, err := m.rgb(data)
	if err != nil {
		return 0, err
	}
	return icolor.QuantizeUnit(rgb[i], 255), nil
}

// RedData returns the 8-bit sRGB red of a pixel.
func (m *ComponentColorModel) RedData(data any) (int, error) { return m.channel8(data, 0) }

// GreenData returns the 8-bit sRGB green of a pixel.
func (m *ComponentColorModel) GreenData(data any) (int, error) { return m.channel8(data, 1) }

// BlueData returns the 8-bit sRGB blue of a pixel.
func (m *ComponentColorModel) BlueData(data any) (int, error) { return m.channel8(data, 2) }

// AlphaData returns the 8-bit alpha of a pixel, 255 without alpha.
func (m *ComponentColorModel) AlphaData(data any) (int, error) {
	s, err := m.samples(data)
	if err != nil {
		return 0, err
	}
	if !m.hasAlpha {
		return 255, nil
	}
	if m.floating {
		return icolor.QuantizeUnit(float32(s[m.numColor]), 255), nil
	}
	return scale8(int(s[m.numColor]), m.maxValues[m.numColor]), nil
}

// RGBData returns a pixel as non-premultiplied 0xAARRGGBB.
func (m *ComponentColorModel) RGBData(data any) (uint32, error) {
	a, err := m.AlphaData(data)
	if err != nil {
		return 0, err
	}
	if m.isSRGB && !m.floating && !m.premultiplied {
		s, _ := m.samples(data)
		return packARGB(a, scale8(int(s[0]), m.maxValues[0]), scale8(int(s[1]), m.maxValues[1]),
			scale8(int(s[2]), m.maxValues[2])), nil
	}
	rgb, _, err := m.rgb(data)
	if err != nil {
		return 0, err
	}
	return packARGB(a, icolor.QuantizeUnit(rgb[0], 255), icolor.QuantizeUnit(rgb[1], 255),
		icolor.QuantizeUnit(rgb[2], 255)), nil
}

// singleComponentData wraps an int pixel into a transfer array. Only
// single component integral models accept int pixels.
func (m *ComponentColorModel) singleComponentData(px uint32) (any, error) {
	if err := m.intPixels(); err != nil {
		return nil, err
	}
	obj, err := m.transferElems(nil, 1)
	if err != nil {
		return nil, err
	}
	pixel.SetTransferInt(obj, 0, int(px))
	return obj, nil
}

// Red returns the 8-bit red of a single component int pixel.
func (m *ComponentColorModel) Red(px uint32) (int, error) {
	data, err := m.singleComponentData(px)
	if err != nil {
		return 0, err
	}
	return m.RedData(data)
}

// Green returns the 8-bit green of a single component int pixel.
func (m *ComponentColorModel) Green(px uint32) (int, error) {
	data, err := m.singleComponentData(px)
	if err != nil {
		return 0, err
	}
	return m.GreenData(data)
}

// Blue returns the 8-bit blue of a single component int pixel.
func (m *ComponentColorModel) Blue(px uint32) (int, error) {
	data, err := m.singleComponentData(px)
	if err != nil {
		return 0, err
	}
	return m.BlueData(data)
}

// Alpha returns 255: a single component model has no alpha.
func (m *ComponentColorModel) Alpha(px uint32) (int, error) {
	data, err := m.singleComponentData(px)
	if err != nil {
		return 0, err
	}
	return m.AlphaData(data)
}

// RGB returns a single component int pixel as 0xAARRGGBB.
func (m *ComponentColorModel) RGB(px uint32) (uint32, error) {
	data, err := m.singleComponentData(px)
	if err != nil {
		return 0, err
	}
	return m.RGBData(data)
}

// ComponentsData returns the raw samples of an integral pixel.
func (m *ComponentColorModel) ComponentsData(data any, dst []int) ([]int, error) {
	if m.floating {
		return nil, m.unsupported("unnormalized components")
	}
	s, err := m.samples(data)
	if err != nil {
		return nil, err
	}
	if cap(dst) < m.numComponents {
		dst = make([]int, m.numComponents)
	}
	dst = dst[:m.numComponents]
	for i, v := range s {
		dst[i] = int(v)
	}
	return dst, nil
}

// NormalizedComponents returns color components in the natural range of
// the color space and alpha in [0,1].
func (m *ComponentColorModel) NormalizedComponents(data any, dst []float32) ([]float32, error) {
	s, err := m.samples(data)
	if err != nil {
		return nil, err
	}
	if cap(dst) < m.numComponents {
		dst = make([]float32, m.numComponents)
	}
	dst = dst[:m.numComponents]
	for i, v := range s {
		switch {
		case m.floating:
			dst[i] = float32(v)
		case i < m.numColor:
			dst[i] = m.lo[i] + float32(v)/float32(m.maxValues[i])*m.span[i]
		default:
			dst[i] = float32(v) / float32(m.maxValues[i])
		}
	}
	return dst, nil
}

// DataElementsFromNormalized encodes natural color components and [0,1]
// alpha.
func (m *ComponentColorModel) DataElementsFromNormalized(normalized []float32, dst any) (any, error) {
	if len(normalized) < m.numComponents {
		return nil, fmt.Errorf("%w: %d components, want %d", pixel.ErrOutOfRange,
			len(normalized), m.numComponents)
	}
	obj, err := m.transferElems(dst, m.numComponents)
	if err != nil {
		return nil, err
	}
	for i := range m.numComponents {
		v := normalized[i]
		switch {
		case m.floating:
			pixel.SetTransferDouble(obj, i, float64(v))
		case i < m.numColor:
			pixel.SetTransferInt(obj, i, icolor.QuantizeUnit((v-m.lo[i])/m.span[i], m.maxValues[i]))
		default:
			pixel.SetTransferInt(obj, i, icolor.QuantizeUnit(v, m.maxValues[i]))
		}
	}
	return obj, nil
}

func (m *ComponentColorModel) intPixels() error {
	if m.numComponents != 1 || m.floating {
		return fmt.Errorf("%w: int pixels need a single integral component, model has %d",
			pixel.ErrUnsupported, m.numComponents)
	}
	return nil
}

// DataElement returns the sample of a single component integral model.
func (m *ComponentColorModel) DataElement(components []int) (uint32, error) {
	if err := m.intPixels(); err != nil {
		return 0, err
	}
	if len(components) < 1 {
		return 0, fmt.Errorf("%w: no components", pixel.ErrOutOfRange)
	}
	if v := components[0]; v < 0 || v > m.maxValues[0] {
		return 0, fmt.Errorf("%w: component %d outside [0, %d]", pixel.ErrOutOfRange, v, m.maxValues[0])
	}
	return uint32(components[0]), nil
}

// DataElementFromNormalized encodes a natural range component of a single
// component unsigned model as DataElementsFromNormalized does.
func (m *ComponentColorModel) DataElementFromNormalized(normalized []float32) (uint32, error) {
	if err := m.intPixels(); err != nil {
		return 0, err
	}
	if m.transferType == pixel.TypeShort {
		return 0, m.unsupported("int pixels from signed samples")
	}
	obj, err := m.DataElementsFromNormalized(normalized, nil)
	if err != nil {
		return 0, err
	}
	return uint32(pixel.TransferInt(obj, 0)), nil
}

// DataElementsFromComponents stores raw integral samples.
func (m *ComponentColorModel) DataElementsFromComponents(components []int, dst any) (any, error) {
	if m.floating {
		return nil, m.unsupported("unnormalized components")
	}
	if len(components) < m.numComponents {
		return nil, fmt.Errorf("%w: %d components, want %d", pixel.ErrOutOfRange,
			len(components), m.numComponents)
	}
	obj, err := m.transferElems(dst, m.numComponents)
	if err != nil {
		return nil, err
	}
	for i := range m.numComponents {
		pixel.SetTransferInt(obj, i, components[i])
	}
	return obj, nil
}

// DataElementsFromRGB encodes 0xAARRGGBB, premultiplying when the model
// is premultiplied.
func (m *ComponentColorModel) DataElementsFromRGB(argb uint32, dst any) (any, error) {
	a := float32(argb>>24) / 255
	rgb := []float32{float32(argb>>16&0xff) / 255, float32(argb>>8&0xff) / 255, float32(argb&0xff) / 255}
	natural := rgb
	if !m.isSRGB {
		natural = m.cs.FromRGB(rgb)
	}
	n := make([]float32, m.numComponents)
	for i := range m.numColor {
		v := natural[i]
		if m.premultiplied {
			v = m.lo[i] + (v-m.lo[i])*a
		}
		n[i] = v
	}
	if m.hasAlpha {
		n[m.numColor] = a
	}
	return m.DataElementsFromNormalized(n, dst)
}

// CompatibleSampleModel returns a pixel interleaved model with one band
// per component.
func (m *ComponentColorModel) CompatibleSampleModel(w, h int) (pixel.SampleModel, error) {
	return pixel.NewInterleavedSampleModel(m.transferType, w, h, m.numComponents)
}

// CompatibleRaster allocates a raster this model can interpret.
func (m *ComponentColorModel) CompatibleRaster(w, h int) (*pixel.Raster, error) {
	sm, err := m.CompatibleSampleModel(w, h)
	if err != nil {
		return nil, err
	}
	return pixel.NewWritableRaster(sm, image.Point{})
}

// IsCompatibleSampleModel reports whether sm has one band per component,
// the model's transfer type and enough bits per band.
func (m *ComponentColorModel) IsCompatibleSampleModel(sm pixel.SampleModel) bool {
	if sm.NumBands() != m.numComponents || sm.TransferType() != m.transferType {
		return false
	}
	for i, b := range m.bits {
		if sm.SampleSize(i) < b {
			return false
		}
	}
	return true
}

// IsCompatibleRaster reports whether r uses a compatible sample model.
func (m *ComponentColorModel) IsCompatibleRaster(r *pixel.Raster) bool {
	return m.IsCompatibleSampleModel(r.SampleModel())
}

// CoerceData premultiplies or divides the color samples of r by alpha and
// returns the model for the new state.
func (m *ComponentColorModel) CoerceData(r *pixel.Raster, premultiplied bool) (ColorModel, error) {
	if !m.hasAlpha || m.premultiplied == premultiplied {
		return m, nil
	}
	if err := coerceRaster(r, m.numColor, m.maxValues, premultiplied); err != nil {
		return nil, err
	}
	c := *m
	c.premultiplied = premultiplied
	return &c, nil
}

// String describes the model.
func (m *ComponentColorModel) String() string {
	return fmt.Sprintf("ComponentColorModel: %d components %v alpha=%v premultiplied=%v",
		m.numComponents, m.bits, m.hasAlpha, m.premultiplied)
}
