package pixel

import "math/bits"

// MultiPixelPackedSampleModel packs several single-band pixels into each
// storage element. Pixel x of row y starts at bit
//
//	DataBitOffset + x*PixelBitStride
//
// of the row beginning at element y*ScanlineStride, counted from the most
// significant bit of each element.
type MultiPixelPackedSampleModel struct {
	modelBase
	pixelBitStride int
	scanlineStride int
	dataBitOffset  int
	elemBits       int
	bitMask        uint32
	transferType   DataType
}

// NewMultiPixelPackedSampleModel creates a packed model with the minimal
// scanline stride and no bit offset.
func NewMultiPixelPackedSampleModel(dataType DataType, w, h, pixelBitStride int) (*MultiPixelPackedSampleModel, error) {
	eb := dataType.Bits()
	if !dataType.IsIntegral() || dataType == TypeShort {
		return nil, formatError("packed pixels need byte, ushort or int storage, got %v", dataType)
	}
	stride := (w*pixelBitStride + eb - 1) / eb
	return NewMultiPixelPackedSampleModelWith(dataType, w, h, pixelBitStride, stride, 0)
}

// NewMultiPixelPackedSampleModelWith creates a packed model with explicit
// scanline stride (in elements) and data bit offset.
func NewMultiPixelPackedSampleModelWith(dataType DataType, w, h, pixelBitStride,
	scanlineStride, dataBitOffset int) (*MultiPixelPackedSampleModel, error) {
	if dataType != TypeByte && dataType != TypeUShort && dataType != TypeInt {
		return nil, formatError("packed pixels need byte, ushort or int storage, got %v", dataType)
	}
	base, err := newModelBase(dataType, w, h, 1)
	if err != nil {
		return nil, err
	}
	eb := dataType.Bits()
	if pixelBitStride <= 0 || pixelBitStride > eb || bits.OnesCount(uint(pixelBitStride)) != 1 {
		return nil, formatError("pixel spans element boundary: %d bits per pixel in %d-bit elements",
			pixelBitStride, eb)
	}
	if dataBitOffset < 0 || dataBitOffset%pixelBitStride != 0 {
		return nil, formatError("data bit offset %d is not a multiple of pixel bit stride %d",
			dataBitOffset, pixelBitStride)
	}
	if scanlineStride < 0 {
		return nil, formatError("scanline stride %d is negative", scanlineStride)
	}
	if h > 1 && int64(scanlineStride)*int64(eb) < int64(w)*int64(pixelBitStride) {
		return nil, formatError("scanline stride %d elements is too small for %d pixels of %d bits",
			scanlineStride, w, pixelBitStride)
	}
	tt := TypeInt
	switch {
	case pixelBitStride <= 8:
		tt = TypeByte
	case pixelBitStride <= 16:
		tt = TypeUShort
	}
	m := &MultiPixelPackedSampleModel{
		modelBase:      base,
		pixelBitStride: pixelBitStride,
		scanlineStride: scanlineStride,
		dataBitOffset:  dataBitOffset,
		elemBits:       eb,
		bitMask:        uint32(1)<<pixelBitStride - 1,
		transferType:   tt,
	}
	m.acc = m
	return m, nil
}

// PixelBitStride returns the number of bits per pixel.
func (m *MultiPixelPackedSampleModel) PixelBitStride() int { return m.pixelBitStride }

// ScanlineStride returns the number of elements per row.
func (m *MultiPixelPackedSampleModel) ScanlineStride() int { return m.scanlineStride }

// DataBitOffset returns the bit offset of the first pixel of every row.
func (m *MultiPixelPackedSampleModel) DataBitOffset() int { return m.dataBitOffset }

// Offset returns the element holding pixel (x, y).
func (m *MultiPixelPackedSampleModel) Offset(x, y int) int {
	return y*m.scanlineStride + (m.dataBitOffset+x*m.pixelBitStride)/m.elemBits
}

// BitOffset returns the bit position of pixel x inside its element,
// counted from the most significant bit.
func (m *MultiPixelPackedSampleModel) BitOffset(x int) int {
	return (m.dataBitOffset + x*m.pixelBitStride) & (m.elemBits - 1)
}

// TransferType is the smallest of byte, ushort and int holding one pixel.
func (m *MultiPixelPackedSampleModel) TransferType() DataType { return m.transferType }

// NumDataElements is always 1.
func (m *MultiPixelPackedSampleModel) NumDataElements() int { return 1 }

// SampleSize returns the pixel bit stride.
func (m *MultiPixelPackedSampleModel) SampleSize(int) int { return m.pixelBitStride }

// SampleSizes returns the single band size.
func (m *MultiPixelPackedSampleModel) SampleSizes() []int { return []int{m.pixelBitStride} }

func (m *MultiPixelPackedSampleModel) locate(x, y int) (index, shift int) {
	bitnum := m.dataBitOffset + x*m.pixelBitStride
	index = y*m.scanlineStride + bitnum/m.elemBits
	shift = m.elemBits - (bitnum & (m.elemBits - 1)) - m.pixelBitStride
	return index, shift
}

func (m *MultiPixelPackedSampleModel) sampleAt(x, y, _ int, data *DataBuffer) int {
	index, shift := m.locate(x, y)
	elem := uint32(data.Elem(index))
	return int((elem >> shift) & m.bitMask)
}

func (m *MultiPixelPackedSampleModel) setSampleAt(x, y, _, v int, data *DataBuffer) {
	index, shift := m.locate(x, y)
	elem := uint32(data.Elem(index))
	elem &^= m.bitMask << shift
	elem |= (uint32(v) & m.bitMask) << shift
	data.SetElem(index, int(int32(elem)))
}

func (m *MultiPixelPackedSampleModel) sampleDoubleAt(x, y, band int, data *DataBuffer) float64 {
	return float64(m.sampleAt(x, y, band, data))
}

func (m *MultiPixelPackedSampleModel) setSampleDoubleAt(x, y, band int, v float64, data *DataBuffer) {
	m.setSampleAt(x, y, band, int(saturateInt32(v)), data)
}

// DataElements returns the pixel value in a one-element transfer array.
func (m *MultiPixelPackedSampleModel) DataElements(x, y int, dst any, data *DataBuffer) (any, error) {
	if err := m.checkPixel(x, y); err != nil {
		return nil, err
	}
	obj, err := EnsureTransferArray(dst, m.transferType, 1)
	if err != nil {
		return nil, err
	}
	SetTransferInt(obj, 0, m.sampleAt(x, y, 0, data))
	return obj, nil
}

// SetDataElements stores the pixel value held in a one-element transfer
// array.
func (m *MultiPixelPackedSampleModel) SetDataElements(x, y int, obj any, data *DataBuffer) error {
	if err := m.checkPixel(x, y); err != nil {
		return err
	}
	if _, err := EnsureTransferArray(obj, m.transferType, 1); err != nil {
		return err
	}
	m.setSampleAt(x, y, 0, TransferInt(obj, 0), data)
	return nil
}

// NewDataBuffer allocates a single bank ending at the element holding the
// last pixel of the last row.
func (m *MultiPixelPackedSampleModel) NewDataBuffer() (*DataBuffer, error) {
	size, _, err := m.footprint()
	if err != nil {
		return nil, err
	}
	return NewDataBuffer(m.dataType, size, 1)
}

func (m *MultiPixelPackedSampleModel) footprint() (int, int, error) {
	last := int64(m.scanlineStride)*int64(m.height-1) +
		(int64(m.dataBitOffset)+int64(m.width)*int64(m.pixelBitStride)-1)/int64(m.elemBits)
	if last+1 > maxBufferElements {
		return 0, 0, formatError("buffer of %d elements overflows", last+1)
	}
	return int(last + 1), 1, nil
}

// CompatibleSampleModel returns a packed model with the same pixel size.
func (m *MultiPixelPackedSampleModel) CompatibleSampleModel(w, h int) (SampleModel, error) {
	return NewMultiPixelPackedSampleModel(m.dataType, w, h, m.pixelBitStride)
}

// SubsetSampleModel accepts only the single band 0.
func (m *MultiPixelPackedSampleModel) SubsetSampleModel(bands []int) (SampleModel, error) {
	if err := checkBandList(bands, 1); err != nil {
		return nil, err
	}
	return m, nil
}
