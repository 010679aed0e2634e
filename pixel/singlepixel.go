package pixel

import (
	"math/bits"
	"slices"
)

// SinglePixelPackedSampleModel stores one pixel per storage element with
// each band in a contiguous bit mask of that element. Pixel (x, y) lives
// at element y*ScanlineStride + x of bank 0.
type SinglePixelPackedSampleModel struct {
	modelBase
	scanlineStride int
	masks          []uint32
	offsets        []int
	sizes          []int
}

// NewSinglePixelPackedSampleModel creates a model with scanline stride w.
func NewSinglePixelPackedSampleModel(dataType DataType, w, h int, masks []uint32) (*SinglePixelPackedSampleModel, error) {
	return NewSinglePixelPackedSampleModelWith(dataType, w, h, w, masks)
}

// NewSinglePixelPackedSampleModelWith creates a model with an explicit
// scanline stride. Masks must be contiguous, pairwise disjoint and fit in
// the storage element.
func NewSinglePixelPackedSampleModelWith(dataType DataType, w, h, scanlineStride int,
	masks []uint32) (*SinglePixelPackedSampleModel, error) {
	if dataType != TypeByte && dataType != TypeUShort && dataType != TypeInt {
		return nil, formatError("packed pixels need byte, ushort or int storage, got %v", dataType)
	}
	base, err := newModelBase(dataType, w, h, len(masks))
	if err != nil {
		return nil, err
	}
	if scanlineStride < w {
		return nil, formatError("scanline stride %d is less than width %d", scanlineStride, w)
	}
	limit := uint64(1)<<dataType.Bits() - 1
	var used uint32
	m := &SinglePixelPackedSampleModel{
		modelBase:      base,
		scanlineStride: scanlineStride,
		masks:          slices.Clone(masks),
		offsets:        make([]int, len(masks)),
		sizes:          make([]int, len(masks)),
	}
	for i, mask := range masks {
		if !isContiguousMask(mask) {
			return nil, formatError("mask %#x of band %d is not contiguous", mask, i)
		}
		if uint64(mask) > limit {
			return nil, formatError("mask %#x of band %d exceeds %d-bit element", mask, i, dataType.Bits())
		}
		if used&mask != 0 {
			return nil, formatError("mask %#x of band %d overlaps another band", mask, i)
		}
		used |= mask
		m.offsets[i] = bits.TrailingZeros32(mask)
		m.sizes[i] = bits.OnesCount32(mask)
	}
	m.acc = m
	return m, nil
}

// ScanlineStride returns the number of elements per row.
func (m *SinglePixelPackedSampleModel) ScanlineStride() int { return m.scanlineStride }

// BitMasks returns a copy of the per-band masks.
func (m *SinglePixelPackedSampleModel) BitMasks() []uint32 { return slices.Clone(m.masks) }

// BitOffsets returns a copy of the per-band shifts.
func (m *SinglePixelPackedSampleModel) BitOffsets() []int { return slices.Clone(m.offsets) }

// Offset returns the element holding pixel (x, y).
func (m *SinglePixelPackedSampleModel) Offset(x, y int) int { return y*m.scanlineStride + x }

// TransferType equals the storage type.
func (m *SinglePixelPackedSampleModel) TransferType() DataType { return m.dataType }

// NumDataElements is always 1.
func (m *SinglePixelPackedSampleModel) NumDataElements() int { return 1 }

// SampleSize returns the mask width of a band.
func (m *SinglePixelPackedSampleModel) SampleSize(band int) int { return m.sizes[band] }

// SampleSizes returns the mask width of every band.
func (m *SinglePixelPackedSampleModel) SampleSizes() []int { return slices.Clone(m.sizes) }

func (m *SinglePixelPackedSampleModel) sampleAt(x, y, band int, data *DataBuffer) int {
	elem := uint32(data.Elem(y*m.scanlineStride + x))
	return int((elem & m.masks[band]) >> m.offsets[band])
}

func (m *SinglePixelPackedSampleModel) setSampleAt(x, y, band, v int, data *DataBuffer) {
	i := y*m.scanlineStride + x
	elem := uint32(data.Elem(i))
	elem = elem&^m.masks[band] | (uint32(v)<<m.offsets[band])&m.masks[band]
	data.SetElem(i, int(int32(elem)))
}

func (m *SinglePixelPackedSampleModel) sampleDoubleAt(x, y, band int, data *DataBuffer) float64 {
	return float64(m.sampleAt(x, y, band, data))
}

func (m *SinglePixelPackedSampleModel) setSampleDoubleAt(x, y, band int, v float64, data *DataBuffer) {
	m.setSampleAt(x, y, band, int(saturateInt32(v)), data)
}

// DataElements returns the whole storage element of the pixel.
func (m *SinglePixelPackedSampleModel) DataElements(x, y int, dst any, data *DataBuffer) (any, error) {
	if err := m.checkPixel(x, y); err != nil {
		return nil, err
	}
	obj, err := EnsureTransferArray(dst, m.dataType, 1)
	if err != nil {
		return nil, err
	}
	SetTransferInt(obj, 0, data.Elem(y*m.scanlineStride+x))
	return obj, nil
}

// SetDataElements stores the whole storage element of the pixel.
func (m *SinglePixelPackedSampleModel) SetDataElements(x, y int, obj any, data *DataBuffer) error {
	if err := m.checkPixel(x, y); err != nil {
		return err
	}
	if _, err := EnsureTransferArray(obj, m.dataType, 1); err != nil {
		return err
	}
	data.SetElem(y*m.scanlineStride+x, TransferInt(obj, 0))
	return nil
}

func (m *SinglePixelPackedSampleModel) footprint() (int, int, error) {
	size := int64(m.scanlineStride)*int64(m.height-1) + int64(m.width)
	if size > maxBufferElements {
		return 0, 0, formatError("buffer of %d elements overflows", size)
	}
	return int(size), 1, nil
}

// NewDataBuffer allocates a single bank covering the last pixel.
func (m *SinglePixelPackedSampleModel) NewDataBuffer() (*DataBuffer, error) {
	size, _, err := m.footprint()
	if err != nil {
		return nil, err
	}
	return NewDataBuffer(m.dataType, size, 1)
}

// CompatibleSampleModel returns a model with the same masks and a
// scanline stride equal to w.
func (m *SinglePixelPackedSampleModel) CompatibleSampleModel(w, h int) (SampleModel, error) {
	return NewSinglePixelPackedSampleModel(m.dataType, w, h, m.masks)
}

// SubsetSampleModel keeps the masks of the listed bands.
func (m *SinglePixelPackedSampleModel) SubsetSampleModel(bands []int) (SampleModel, error) {
	if err := checkBandList(bands, m.numBands); err != nil {
		return nil, err
	}
	masks := make([]uint32, len(bands))
	for i, b := range bands {
		masks[i] = m.masks[b]
	}
	return NewSinglePixelPackedSampleModelWith(m.dataType, m.width, m.height, m.scanlineStride, masks)
}
