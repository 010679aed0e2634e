package pixel

import "slices"

// ComponentSampleModel stores each sample of a pixel in its own buffer
// element. Band b of pixel (x, y) lives in bank BankIndices[b] at element
//
//	y*ScanlineStride + x*PixelStride + BandOffsets[b]
//
// The model covers pixel interleaved, band interleaved and banded layouts.
type ComponentSampleModel struct {
	modelBase
	pixelStride    int
	scanlineStride int
	bandOffsets    []int
	bankIndices    []int
	numBanks       int
}

// NewComponentSampleModel creates a model with explicit strides, bank
// indices and band offsets.
func NewComponentSampleModel(dataType DataType, w, h, pixelStride, scanlineStride int,
	bankIndices, bandOffsets []int) (*ComponentSampleModel, error) {
	base, err := newModelBase(dataType, w, h, len(bandOffsets))
	if err != nil {
		return nil, err
	}
	if pixelStride < 0 {
		return nil, formatError("pixel stride %d is negative", pixelStride)
	}
	if scanlineStride < 0 {
		return nil, formatError("scanline stride %d is negative", scanlineStride)
	}
	if len(bankIndices) != len(bandOffsets) {
		return nil, formatError("%d bank indices for %d band offsets", len(bankIndices), len(bandOffsets))
	}
	numBanks := 0
	for b := range bandOffsets {
		if bankIndices[b] < 0 {
			return nil, formatError("band %d has negative bank index %d", b, bankIndices[b])
		}
		if bandOffsets[b] < 0 {
			return nil, formatError("band %d has negative offset %d", b, bandOffsets[b])
		}
		numBanks = max(numBanks, bankIndices[b]+1)
	}
	m := &ComponentSampleModel{
		modelBase:      base,
		pixelStride:    pixelStride,
		scanlineStride: scanlineStride,
		bandOffsets:    slices.Clone(bandOffsets),
		bankIndices:    slices.Clone(bankIndices),
		numBanks:       numBanks,
	}
	m.acc = m
	return m, nil
}

// NewPixelInterleavedSampleModel creates a model whose bands all live in
// bank 0 and lie within one pixel stride of each other.
func NewPixelInterleavedSampleModel(dataType DataType, w, h, pixelStride, scanlineStride int,
	bandOffsets []int) (*ComponentSampleModel, error) {
	if len(bandOffsets) == 0 {
		return nil, formatError("need at least one band")
	}
	minOff, maxOff := slices.Min(bandOffsets), slices.Max(bandOffsets)
	if maxOff-minOff > scanlineStride {
		return nil, formatError("band offsets span %d elements, more than scanline stride %d",
			maxOff-minOff, scanlineStride)
	}
	if pixelStride*w > scanlineStride {
		return nil, formatError("pixel stride %d times width %d exceeds scanline stride %d",
			pixelStride, w, scanlineStride)
	}
	if pixelStride < maxOff-minOff {
		return nil, formatError("pixel stride %d is less than band offset span %d",
			pixelStride, maxOff-minOff)
	}
	return NewComponentSampleModel(dataType, w, h, pixelStride, scanlineStride,
		make([]int, len(bandOffsets)), bandOffsets)
}

// NewInterleavedSampleModel creates a tightly packed pixel interleaved
// model with bands in order at offsets 0..numBands-1.
func NewInterleavedSampleModel(dataType DataType, w, h, numBands int) (*ComponentSampleModel, error) {
	offsets := make([]int, max(numBands, 0))
	for i := range offsets {
		offsets[i] = i
	}
	return NewPixelInterleavedSampleModel(dataType, w, h, numBands, w*numBands, offsets)
}

// PixelStride returns the element distance between horizontally adjacent
// pixels.
func (m *ComponentSampleModel) PixelStride() int { return m.pixelStride }

// ScanlineStride returns the element distance between vertically adjacent
// pixels.
func (m *ComponentSampleModel) ScanlineStride() int { return m.scanlineStride }

// BandOffsets returns a copy of the per-band element offsets.
func (m *ComponentSampleModel) BandOffsets() []int { return slices.Clone(m.bandOffsets) }

// BankIndices returns a copy of the per-band bank indices.
func (m *ComponentSampleModel) BankIndices() []int { return slices.Clone(m.bankIndices) }

// NumBanks returns the number of banks the model addresses.
func (m *ComponentSampleModel) NumBanks() int { return m.numBanks }

// Offset returns the element index of band 0 of pixel (x, y) in its bank.
func (m *ComponentSampleModel) Offset(x, y int) int {
	return y*m.scanlineStride + x*m.pixelStride + m.bandOffsets[0]
}

// BandOffset returns the element index of the given band of (x, y).
func (m *ComponentSampleModel) BandOffset(x, y, band int) int {
	return y*m.scanlineStride + x*m.pixelStride + m.bandOffsets[band]
}

// TransferType equals the storage type.
func (m *ComponentSampleModel) TransferType() DataType { return m.dataType }

// NumDataElements equals the number of bands.
func (m *ComponentSampleModel) NumDataElements() int { return m.numBands }

// SampleSize returns the element width of the data type.
func (m *ComponentSampleModel) SampleSize(int) int { return m.dataType.Bits() }

// SampleSizes returns the element width for every band.
func (m *ComponentSampleModel) SampleSizes() []int {
	s := make([]int, m.numBands)
	for i := range s {
		s[i] = m.dataType.Bits()
	}
	return s
}

func (m *ComponentSampleModel) sampleAt(x, y, band int, data *DataBuffer) int {
	return data.ElemBank(m.bankIndices[band], y*m.scanlineStride+x*m.pixelStride+m.bandOffsets[band])
}

func (m *ComponentSampleModel) setSampleAt(x, y, band, v int, data *DataBuffer) {
	data.SetElemBank(m.bankIndices[band], y*m.scanlineStride+x*m.pixelStride+m.bandOffsets[band], v)
}

func (m *ComponentSampleModel) sampleDoubleAt(x, y, band int, data *DataBuffer) float64 {
	return data.ElemDouble(m.bankIndices[band], y*m.scanlineStride+x*m.pixelStride+m.bandOffsets[band])
}

func (m *ComponentSampleModel) setSampleDoubleAt(x, y, band int, v float64, data *DataBuffer) {
	data.SetElemDouble(m.bankIndices[band], y*m.scanlineStride+x*m.pixelStride+m.bandOffsets[band], v)
}

// DataElements returns one transfer element per band.
func (m *ComponentSampleModel) DataElements(x, y int, dst any, data *DataBuffer) (any, error) {
	if err := m.checkPixel(x, y); err != nil {
		return nil, err
	}
	obj, err := EnsureTransferArray(dst, m.dataType, m.numBands)
	if err != nil {
		return nil, err
	}
	for b := range m.numBands {
		if m.dataType.IsFloating() {
			SetTransferDouble(obj, b, m.sampleDoubleAt(x, y, b, data))
		} else {
			SetTransferInt(obj, b, m.sampleAt(x, y, b, data))
		}
	}
	return obj, nil
}

// SetDataElements stores one transfer element per band.
func (m *ComponentSampleModel) SetDataElements(x, y int, obj any, data *DataBuffer) error {
	if err := m.checkPixel(x, y); err != nil {
		return err
	}
	if _, err := EnsureTransferArray(obj, m.dataType, m.numBands); err != nil {
		return err
	}
	for b := range m.numBands {
		if m.dataType.IsFloating() {
			m.setSampleDoubleAt(x, y, b, TransferDouble(obj, b), data)
		} else {
			m.setSampleAt(x, y, b, TransferInt(obj, b), data)
		}
	}
	return nil
}

// bufferSize returns the element count a bank needs so that every valid
// address fits: the largest band offset plus the extremal stride terms.
func (m *ComponentSampleModel) bufferSize() (int, error) {
	size := int64(slices.Max(m.bandOffsets))
	size += int64(m.pixelStride) * int64(m.width-1)
	size += int64(m.scanlineStride) * int64(m.height-1)
	size++
	if size > maxBufferElements {
		return 0, formatError("buffer of %d elements overflows", size)
	}
	return int(size), nil
}

func (m *ComponentSampleModel) footprint() (int, int, error) {
	size, err := m.bufferSize()
	return size, slices.Max(m.bankIndices) + 1, err
}

// NewDataBuffer allocates a buffer with NumBanks banks covering the model.
func (m *ComponentSampleModel) NewDataBuffer() (*DataBuffer, error) {
	size, err := m.bufferSize()
	if err != nil {
		return nil, err
	}
	return NewDataBuffer(m.dataType, size, m.numBanks)
}

// CompatibleSampleModel keeps each band in its bank and packs the bands of
// every bank at offsets 0..k-1 in their original offset order. The pixel
// stride becomes the largest per-bank band count.
func (m *ComponentSampleModel) CompatibleSampleModel(w, h int) (SampleModel, error) {
	offsets, stride := m.repack()
	if int64(w)*int64(stride) >= maxBufferElements {
		return nil, formatError("scanline of %d pixels overflows", w)
	}
	return NewComponentSampleModel(m.dataType, w, h, stride, w*stride, m.bankIndices, offsets)
}

func (m *ComponentSampleModel) repack() (offsets []int, stride int) {
	offsets = make([]int, m.numBands)
	stride = 1
	for bank := range m.numBanks {
		var bands []int
		for b, bi := range m.bankIndices {
			if bi == bank {
				bands = append(bands, b)
			}
		}
		slices.SortStableFunc(bands, func(a, b int) int { return m.bandOffsets[a] - m.bandOffsets[b] })
		for rank, b := range bands {
			offsets[b] = rank
		}
		stride = max(stride, len(bands))
	}
	return offsets, stride
}

// SubsetSampleModel returns a view of the listed bands.
func (m *ComponentSampleModel) SubsetSampleModel(bands []int) (SampleModel, error) {
	return m.subset(bands)
}

func (m *ComponentSampleModel) subset(bands []int) (*ComponentSampleModel, error) {
	if err := checkBandList(bands, m.numBands); err != nil {
		return nil, err
	}
	banks := make([]int, len(bands))
	offsets := make([]int, len(bands))
	for i, b := range bands {
		banks[i] = m.bankIndices[b]
		offsets[i] = m.bandOffsets[b]
	}
	return NewComponentSampleModel(m.dataType, m.width, m.height, m.pixelStride, m.scanlineStride,
		banks, offsets)
}
