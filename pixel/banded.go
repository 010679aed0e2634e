package pixel

// BandedSampleModel is a ComponentSampleModel with a pixel stride of 1,
// normally with every band in its own bank.
type BandedSampleModel struct {
	*ComponentSampleModel
}

// NewBandedSampleModel creates a model with band b in bank b at offset 0.
func NewBandedSampleModel(dataType DataType, w, h, numBands int) (*BandedSampleModel, error) {
	banks := make([]int, max(numBands, 0))
	for i := range banks {
		banks[i] = i
	}
	return NewBandedSampleModelWith(dataType, w, h, w, banks, make([]int, len(banks)))
}

// NewBandedSampleModelWith creates a banded model with explicit scanline
// stride, bank indices and band offsets.
func NewBandedSampleModelWith(dataType DataType, w, h, scanlineStride int,
	bankIndices, bandOffsets []int) (*BandedSampleModel, error) {
	if scanlineStride < w {
		return nil, formatError("scanline stride %d is less than width %d", scanlineStride, w)
	}
	c, err := NewComponentSampleModel(dataType, w, h, 1, scanlineStride, bankIndices, bandOffsets)
	if err != nil {
		return nil, err
	}
	return &BandedSampleModel{ComponentSampleModel: c}, nil
}

// CompatibleSampleModel returns a fresh banded model with one bank per band.
func (m *BandedSampleModel) CompatibleSampleModel(w, h int) (SampleModel, error) {
	return NewBandedSampleModel(m.dataType, w, h, m.numBands)
}

// SubsetSampleModel returns a banded view of the listed bands.
func (m *BandedSampleModel) SubsetSampleModel(bands []int) (SampleModel, error) {
	c, err := m.subset(bands)
	if err != nil {
		return nil, err
	}
	return &BandedSampleModel{ComponentSampleModel: c}, nil
}
