package colormodel

import (
	"fmt"
	"image"
	"math/bits"
	"slices"
	"sync"

	"github.com/gogpu/imaging/colorspace"
	icolor "github.com/gogpu/imaging/internal/color"
	"github.com/gogpu/imaging/pixel"
)

// DirectColorModel interprets a packed integer pixel whose red, green,
// blue and optional alpha components each occupy a contiguous bit mask.
// The color space must be an RGB space with every component in [0,1].
//
// sRGB and linear RGB models take scalar fast paths; other RGB spaces
// convert through the color space.
type DirectColorModel struct {
	base
	masks           []uint32
	shifts          []int
	isSRGB          bool
	isLinearRGB     bool
	linearPrecision int
}

var rgbDefault = sync.OnceValue(func() *DirectColorModel {
	m, err := NewDirectColorModel(32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000)
	if err != nil {
		panic(err)
	}
	return m
})

// RGBDefault returns the shared model of 8-bit non-premultiplied sRGB with
// alpha packed as 0xAARRGGBB.
func RGBDefault() *DirectColorModel { return rgbDefault() }

// NewDirectColorModel creates a non-premultiplied sRGB model. amask 0
// means no alpha. The transfer type is the smallest of byte, ushort and
// int holding bits.
func NewDirectColorModel(bits int, rmask, gmask, bmask, amask uint32) (*DirectColorModel, error) {
	tt := pixel.TypeInt
	switch {
	case bits <= 8:
		tt = pixel.TypeByte
	case bits <= 16:
		tt = pixel.TypeUShort
	}
	return NewDirectColorModelWith(colorspace.SRGB, bits, rmask, gmask, bmask, amask, false, tt)
}

// NewDirectColorModelWith creates a packed model with an explicit color
// space, premultiplication and transfer type.
func NewDirectColorModelWith(cs colorspace.ColorSpace, pixelBits int, rmask, gmask, bmask, amask uint32,
	premultiplied bool, transferType pixel.DataType) (*DirectColorModel, error) {
	if cs == nil || cs.Type() != colorspace.TypeRGB {
		return nil, fmt.Errorf("%w: packed color models need an RGB color space", pixel.ErrFormat)
	}
	for i := range 3 {
		if cs.MinValue(i) != 0 || cs.MaxValue(i) != 1 {
			return nil, fmt.Errorf("%w: component %d of the color space is not in [0,1]", pixel.ErrFormat, i)
		}
	}
	if transferType != pixel.TypeByte && transferType != pixel.TypeUShort && transferType != pixel.TypeInt {
		return nil, fmt.Errorf("%w: packed pixels need byte, ushort or int transfer, got %v",
			pixel.ErrFormat, transferType)
	}
	if pixelBits < 1 || pixelBits > transferType.Bits() {
		return nil, fmt.Errorf("%w: %d bit pixels do not fit %v", pixel.ErrFormat, pixelBits, transferType)
	}

	masks := []uint32{rmask, gmask, bmask}
	if amask != 0 {
		masks = append(masks, amask)
	}
	var used uint32
	sizes := make([]int, len(masks))
	shifts := make([]int, len(masks))
	for i, mask := range masks {
		if mask == 0 {
			return nil, fmt.Errorf("%w: mask of component %d is empty", pixel.ErrFormat, i)
		}
		shifts[i] = bits.TrailingZeros32(mask)
		sizes[i] = bits.OnesCount32(mask)
		if run := mask >> shifts[i]; run&(run+1) != 0 {
			return nil, fmt.Errorf("%w: mask %#x of component %d is not contiguous", pixel.ErrFormat, mask, i)
		}
		if pixelBits < 32 && mask>>pixelBits != 0 {
			return nil, fmt.Errorf("%w: mask %#x of component %d overflows %d bit pixels",
				pixel.ErrFormat, mask, i, pixelBits)
		}
		if used&mask != 0 {
			return nil, fmt.Errorf("%w: mask %#x of component %d overlaps another", pixel.ErrFormat, mask, i)
		}
		used |= mask
	}

	transparency := Translucent
	if amask != 0 && sizes[3] == 1 {
		transparency = Bitmask
	}
	b, err := newBase(cs, sizes, pixelBits, amask != 0, premultiplied, transparency, transferType)
	if err != nil {
		return nil, err
	}
	m := &DirectColorModel{
		base:            b,
		masks:           masks,
		shifts:          shifts,
		isSRGB:          colorspace.IsSRGB(cs),
		isLinearRGB:     colorspace.IsLinearRGB(cs),
		linearPrecision: 8,
	}
	if slices.Max(sizes[:3]) > 8 {
		m.linearPrecision = 16
	}
	return m, nil
}

// RedMask returns the bit mask of red.
func (m *DirectColorModel) RedMask() uint32 { return m.masks[0] }

// GreenMask returns the bit mask of green.
func (m *DirectColorModel) GreenMask() uint32 { return m.masks[1] }

// BlueMask returns the bit mask of blue.
func (m *DirectColorModel) BlueMask() uint32 { return m.masks[2] }

// AlphaMask returns the bit mask of alpha, 0 without alpha.
func (m *DirectColorModel) AlphaMask() uint32 {
	if !m.hasAlpha {
		return 0
	}
	return m.masks[3]
}

// Masks returns a copy of the component masks, alpha last if present.
func (m *DirectColorModel) Masks() []uint32 { return slices.Clone(m.masks) }

func (m *DirectColorModel) raw(px uint32, i int) int {
	return int((px & m.masks[i]) >> m.shifts[i])
}

// pixelOf reads the packed pixel held in a transfer array.
func (m *DirectColorModel) pixelOf(data any) (uint32, error) {
	dt, n := pixel.TransferType(data)
	switch {
	case dt == pixel.TypeUndefined:
		return 0, m.unsupported(fmt.Sprintf("pixel data %T", data))
	case dt != m.transferType:
		return 0, fmt.Errorf("%w: pixel data %T, want %v", pixel.ErrFormat, data, m.transferType)
	case n < 1:
		return 0, fmt.Errorf("%w: empty pixel data", pixel.ErrOutOfRange)
	}
	return uint32(pixel.TransferInt(data, 0)), nil
}

func (m *DirectColorModel) storePixel(px uint32, dst any) (any, error) {
	obj, err := m.transferElems(dst, 1)
	if err != nil {
		return nil, err
	}
	pixel.SetTransferInt(obj, 0, int(int32(px)))
	return obj, nil
}

// component8 returns color component i of px as an 8-bit sRGB value.
func (m *DirectColorModel) component8(px uint32, i int) int {
	switch {
	case m.isSRGB:
		return m.srgbComponent(px, i)
	case m.isLinearRGB:
		return m.linearComponent(px, i)
	}
	rgb := m.cs.ToRGB(m.colorComponents(px))
	return icolor.QuantizeUnit(rgb[i], 255)
}

func (m *DirectColorModel) srgbComponent(px uint32, i int) int {
	c := m.raw(px, i)
	if m.premultiplied {
		a := m.raw(px, 3)
		if a == 0 {
			return 0
		}
		v := float32(c) / float32(m.maxValues[i]) * float32(m.maxValues[3]) / float32(a)
		return min(int(v*255+0.5), 255)
	}
	return scale8(c, m.maxValues[i])
}

func (m *DirectColorModel) linearComponent(px uint32, i int) int {
	c := m.raw(px, i)
	factor := float32(int(1)<<m.linearPrecision - 1)
	switch {
	case m.premultiplied:
		a := m.raw(px, 3)
		if a == 0 {
			return 0
		}
		v := float32(c) / float32(m.maxValues[i]) * float32(m.maxValues[3]) / float32(a)
		c = int(min(v, 1)*factor + 0.5)
	case m.bits[i] != m.linearPrecision:
		c = int(float32(c)*factor/float32(m.maxValues[i]) + 0.5)
	}
	if m.linearPrecision == 8 {
		return int(icolor.Linear8ToSRGB8(uint8(c)))
	}
	return int(icolor.Linear16ToSRGB8(uint16(c)))
}

// colorComponents returns the non-premultiplied color components of px in
// [0,1].
func (m *DirectColorModel) colorComponents(px uint32) []float32 {
	c := make([]float32, 3)
	for i := range c {
		c[i] = float32(m.raw(px, i)) / float32(m.maxValues[i])
	}
	if m.premultiplied {
		a := float32(m.raw(px, 3)) / float32(m.maxValues[3])
		for i := range c {
			if a == 0 {
				c[i] = 0
			} else {
				c[i] = min(c[i]/a, 1)
			}
		}
	}
	return c
}

// Red returns the 8-bit sRGB red of px.
func (m *DirectColorModel) Red(px uint32) (int, error) { return m.component8(px, 0), nil }

// Green returns the 8-bit sRGB green of px.
func (m *DirectColorModel) Green(px uint32) (int, error) { return m.component8(px, 1), nil }

// Blue returns the 8-bit sRGB blue of px.
func (m *DirectColorModel) Blue(px uint32) (int, error) { return m.component8(px, 2), nil }

// Alpha returns the 8-bit alpha of px, 255 without alpha.
func (m *DirectColorModel) Alpha(px uint32) (int, error) {
	if !m.hasAlpha {
		return 255, nil
	}
	return scale8(m.raw(px, 3), m.maxValues[3]), nil
}

// RGB returns px as non-premultiplied 0xAARRGGBB.
func (m *DirectColorModel) RGB(px uint32) (uint32, error) {
	a, _ := m.Alpha(px)
	return packARGB(a, m.component8(px, 0), m.component8(px, 1), m.component8(px, 2)), nil
}

// RedData returns the 8-bit sRGB red of a transfer array pixel.
func (m *DirectColorModel) RedData(data any) (int, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return 0, err
	}
	return m.Red(px)
}

// GreenData returns the 8-bit sRGB green of a transfer array pixel.
func (m *DirectColorModel) GreenData(data any) (int, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return 0, err
	}
	return m.Green(px)
}

// BlueData returns the 8-bit sRGB blue of a transfer array pixel.
func (m *DirectColorModel) BlueData(data any) (int, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return 0, err
	}
	return m.Blue(px)
}

// AlphaData returns the 8-bit alpha of a transfer array pixel.
func (m *DirectColorModel) AlphaData(data any) (int, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return 0, err
	}
	return m.Alpha(px)
}

// RGBData returns a transfer array pixel as 0xAARRGGBB.
func (m *DirectColorModel) RGBData(data any) (uint32, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return 0, err
	}
	return m.RGB(px)
}

// Components returns the raw component values of px.
func (m *DirectColorModel) Components(px uint32, dst []int) []int {
	if cap(dst) < m.numComponents {
		dst = make([]int, m.numComponents)
	}
	dst = dst[:m.numComponents]
	for i := range dst {
		dst[i] = m.raw(px, i)
	}
	return dst
}

// ComponentsData returns the raw component values of a transfer array
// pixel.
func (m *DirectColorModel) ComponentsData(data any, dst []int) ([]int, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return nil, err
	}
	return m.Components(px, dst), nil
}

// Pixel packs raw component values.
func (m *DirectColorModel) Pixel(components []int) (uint32, error) {
	if len(components) < m.numComponents {
		return 0, fmt.Errorf("%w: %d components, want %d", pixel.ErrOutOfRange,
			len(components), m.numComponents)
	}
	var px uint32
	for i, mask := range m.masks {
		px |= (uint32(components[i]) << m.shifts[i]) & mask
	}
	return px, nil
}

// DataElement is Pixel.
func (m *DirectColorModel) DataElement(components []int) (uint32, error) { return m.Pixel(components) }

// DataElementFromNormalized packs non-premultiplied [0,1] components,
// premultiplying them when the model is premultiplied.
func (m *DirectColorModel) DataElementFromNormalized(normalized []float32) (uint32, error) {
	c, err := m.UnnormalizeComponents(normalized, nil)
	if err != nil {
		return 0, err
	}
	return m.Pixel(c)
}

// NormalizedComponents returns the components of a transfer array pixel
// in [0,1].
func (m *DirectColorModel) NormalizedComponents(data any, dst []float32) ([]float32, error) {
	px, err := m.pixelOf(data)
	if err != nil {
		return nil, err
	}
	if cap(dst) < m.numComponents {
		dst = make([]float32, m.numComponents)
	}
	dst = dst[:m.numComponents]
	for i := range dst {
		dst[i] = float32(m.raw(px, i)) / float32(m.maxValues[i])
	}
	return dst, nil
}

// DataElementsFromRGB encodes 0xAARRGGBB, premultiplying when the model
// is premultiplied.
func (m *DirectColorModel) DataElementsFromRGB(argb uint32, dst any) (any, error) {
	r, g, b := int(argb>>16&0xff), int(argb>>8&0xff), int(argb&0xff)
	a := float32(argb>>24) / 255
	var c []float32
	switch {
	case m.isSRGB:
		c = []float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}
	case m.isLinearRGB && m.linearPrecision == 8:
		c = []float32{
			float32(icolor.SRGB8ToLinear8(uint8(r))) / 255,
			float32(icolor.SRGB8ToLinear8(uint8(g))) / 255,
			float32(icolor.SRGB8ToLinear8(uint8(b))) / 255,
		}
	case m.isLinearRGB:
		c = []float32{
			float32(icolor.SRGB8ToLinear16(uint8(r))) / 65535,
			float32(icolor.SRGB8ToLinear16(uint8(g))) / 65535,
			float32(icolor.SRGB8ToLinear16(uint8(b))) / 65535,
		}
	default:
		c = m.cs.FromRGB([]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255})
	}
	var px uint32
	for i := range 3 {
		v := c[i]
		if m.premultiplied {
			v *= a
		}
		px |= uint32(icolor.QuantizeUnit(v, m.maxValues[i])) << m.shifts[i] & m.masks[i]
	}
	if m.hasAlpha {
		px |= uint32(icolor.QuantizeUnit(a, m.maxValues[3])) << m.shifts[3] & m.masks[3]
	}
	return m.storePixel(px, dst)
}

// DataElementsFromComponents packs raw component values into a transfer
// array.
func (m *DirectColorModel) DataElementsFromComponents(components []int, dst any) (any, error) {
	px, err := m.Pixel(components)
	if err != nil {
		return nil, err
	}
	return m.storePixel(px, dst)
}

// DataElementsFromNormalized packs [0,1] component values into a transfer
// array.
func (m *DirectColorModel) DataElementsFromNormalized(normalized []float32, dst any) (any, error) {
	if len(normalized) < m.numComponents {
		return nil, fmt.Errorf("%w: %d components, want %d", pixel.ErrOutOfRange,
			len(normalized), m.numComponents)
	}
	var px uint32
	for i, mask := range m.masks {
		px |= uint32(icolor.QuantizeUnit(normalized[i], m.maxValues[i])) << m.shifts[i] & mask
	}
	return m.storePixel(px, dst)
}

// CompatibleSampleModel returns a single pixel packed model with the
// model's masks.
func (m *DirectColorModel) CompatibleSampleModel(w, h int) (pixel.SampleModel, error) {
	return pixel.NewSinglePixelPackedSampleModel(m.transferType, w, h, m.masks)
}

// CompatibleRaster allocates a raster this model can interpret.
func (m *DirectColorModel) CompatibleRaster(w, h int) (*pixel.Raster, error) {
	sm, err := m.CompatibleSampleModel(w, h)
	if err != nil {
		return nil, err
	}
	return pixel.NewWritableRaster(sm, image.Point{})
}

// IsCompatibleSampleModel reports whether sm is single pixel packed with
// the same masks and transfer type.
func (m *DirectColorModel) IsCompatibleSampleModel(sm pixel.SampleModel) bool {
	sp, ok := sm.(*pixel.SinglePixelPackedSampleModel)
	if !ok || sp.NumBands() != m.numComponents || sp.TransferType() != m.transferType {
		return false
	}
	return slices.Equal(sp.BitMasks(), m.masks)
}

// IsCompatibleRaster reports whether r uses a compatible sample model.
func (m *DirectColorModel) IsCompatibleRaster(r *pixel.Raster) bool {
	return m.IsCompatibleSampleModel(r.SampleModel())
}

// CoerceData premultiplies or divides the color samples of r by alpha and
// returns the model for the new state.
func (m *DirectColorModel) CoerceData(r *pixel.Raster, premultiplied bool) (ColorModel, error) {
	if !m.hasAlpha || m.premultiplied == premultiplied {
		return m, nil
	}
	if err := coerceRaster(r, m.numColor, m.maxValues, premultiplied); err != nil {
		return nil, err
	}
	return NewDirectColorModelWith(m.cs, m.pixelBits, m.masks[0], m.masks[1], m.masks[2], m.masks[3],
		premultiplied, m.transferType)
}

// String describes the model.
func (m *DirectColorModel) String() string {
	return fmt.Sprintf("DirectColorModel: rmask=%#x gmask=%#x bmask=%#x amask=%#x",
		m.masks[0], m.masks[1], m.masks[2], m.AlphaMask())
}
