package pixel

import (
	"fmt"
	"math"
)

// SampleModel describes how the samples of a width x height raster with
// NumBands bands are laid out inside a DataBuffer.
//
// Every accessor is bounds checked: coordinates outside [0,Width) x
// [0,Height) or a band outside [0,NumBands) return an error wrapping
// [ErrOutOfRange]. Sample models are immutable.
type SampleModel interface {
	Width() int
	Height() int
	NumBands() int

	// DataType is the element type of the backing buffer.
	DataType() DataType

	// TransferType is the element type used by DataElements and
	// SetDataElements. It differs from DataType for packed layouts.
	TransferType() DataType

	// NumDataElements is the number of transfer elements per pixel.
	NumDataElements() int

	// SampleSize returns the number of significant bits of a band.
	SampleSize(band int) int
	SampleSizes() []int

	Sample(x, y, band int, data *DataBuffer) (int, error)
	SampleDouble(x, y, band int, data *DataBuffer) (float64, error)
	SetSample(x, y, band, v int, data *DataBuffer) error
	SetSampleDouble(x, y, band int, v float64, data *DataBuffer) error

	// Pixel returns all bands of one pixel. dst is reused when large enough.
	Pixel(x, y int, dst []int, data *DataBuffer) ([]int, error)
	SetPixel(x, y int, px []int, data *DataBuffer) error
	PixelDouble(x, y int, dst []float64, data *DataBuffer) ([]float64, error)
	SetPixelDouble(x, y int, px []float64, data *DataBuffer) error

	// Pixels returns the samples of a rectangle, pixel by pixel in
	// row-major order with all bands of a pixel adjacent.
	Pixels(x, y, w, h int, dst []int, data *DataBuffer) ([]int, error)
	SetPixels(x, y, w, h int, px []int, data *DataBuffer) error
	PixelsDouble(x, y, w, h int, dst []float64, data *DataBuffer) ([]float64, error)
	SetPixelsDouble(x, y, w, h int, px []float64, data *DataBuffer) error

	// Samples returns one band of a rectangle in row-major order.
	Samples(x, y, w, h, band int, dst []int, data *DataBuffer) ([]int, error)
	SetSamples(x, y, w, h, band int, s []int, data *DataBuffer) error

	// DataElements returns the pixel in its physical packing as a transfer
	// array of TransferType with NumDataElements entries. dst may be nil.
	DataElements(x, y int, dst any, data *DataBuffer) (any, error)
	SetDataElements(x, y int, obj any, data *DataBuffer) error

	// CompatibleSampleModel returns a same-family model of the given size
	// with contiguous, zero-based band offsets.
	CompatibleSampleModel(w, h int) (SampleModel, error)

	// SubsetSampleModel returns a model restricted to the listed bands in
	// the listed order, sharing the physical addressing.
	SubsetSampleModel(bands []int) (SampleModel, error)

	// NewDataBuffer allocates a buffer that covers every reachable address.
	NewDataBuffer() (*DataBuffer, error)
}

// sampleAccess is the unchecked per-sample addressing a layout provides.
// modelBase builds the checked and bulk accessors on top of it.
type sampleAccess interface {
	sampleAt(x, y, band int, data *DataBuffer) int
	setSampleAt(x, y, band, v int, data *DataBuffer)
	sampleDoubleAt(x, y, band int, data *DataBuffer) float64
	setSampleDoubleAt(x, y, band int, v float64, data *DataBuffer)
}

// modelBase holds the geometry common to all layouts and implements the
// bounds-checked accessors of SampleModel through sampleAccess.
type modelBase struct {
	width    int
	height   int
	numBands int
	dataType DataType
	acc      sampleAccess
}

// maxBufferElements is the largest bank a model may require.
const maxBufferElements = math.MaxInt32

func newModelBase(dataType DataType, w, h, numBands int) (modelBase, error) {
	if w <= 0 || h <= 0 {
		return modelBase{}, formatError("width %d and height %d must be positive", w, h)
	}
	if int64(w)*int64(h) >= maxBufferElements {
		return modelBase{}, formatError("dimensions %dx%d are too large", w, h)
	}
	if !dataType.IsValid() {
		return modelBase{}, fmt.Errorf("%w: data type %v", ErrUnsupported, dataType)
	}
	if numBands < 1 {
		return modelBase{}, formatError("need at least one band, got %d", numBands)
	}
	return modelBase{width: w, height: h, numBands: numBands, dataType: dataType}, nil
}

// Width returns the width in pixels.
func (m modelBase) Width() int { return m.width }

// Height returns the height in pixels.
func (m modelBase) Height() int { return m.height }

// NumBands returns the number of bands.
func (m modelBase) NumBands() int { return m.numBands }

// DataType returns the storage element type.
func (m modelBase) DataType() DataType { return m.dataType }

func (m modelBase) checkPixel(x, y int) error {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return outOfRange(x, y, 0)
	}
	return nil
}

func (m modelBase) checkSample(x, y, band int) error {
	if x < 0 || y < 0 || x >= m.width || y >= m.height || band < 0 || band >= m.numBands {
		return outOfRange(x, y, band)
	}
	return nil
}

func (m modelBase) checkRect(x, y, w, h int) error {
	if w < 0 || h < 0 || x < 0 || y < 0 || x > m.width-w || y > m.height-h {
		return fmt.Errorf("%w: rectangle (%d, %d) %dx%d outside %dx%d",
			ErrOutOfRange, x, y, w, h, m.width, m.height)
	}
	return nil
}

func grow[T any](dst []T, n int) []T {
	if cap(dst) >= n {
		return dst[:n]
	}
	return make([]T, n)
}

// Sample returns one sample as an int.
func (m modelBase) Sample(x, y, band int, data *DataBuffer) (int, error) {
	if err := m.checkSample(x, y, band); err != nil {
		return 0, err
	}
	return m.acc.sampleAt(x, y, band, data), nil
}

// SampleDouble returns one sample as a float64.
func (m modelBase) SampleDouble(x, y, band int, data *DataBuffer) (float64, error) {
	if err := m.checkSample(x, y, band); err != nil {
		return 0, err
	}
	return m.acc.sampleDoubleAt(x, y, band, data), nil
}

// SetSample stores one sample.
func (m modelBase) SetSample(x, y, band, v int, data *DataBuffer) error {
	if err := m.checkSample(x, y, band); err != nil {
		return err
	}
	m.acc.setSampleAt(x, y, band, v, data)
	return nil
}

// SetSampleDouble stores one sample.
func (m modelBase) SetSampleDouble(x, y, band int, v float64, data *DataBuffer) error {
	if err := m.checkSample(x, y, band); err != nil {
		return err
	}
	m.acc.setSampleDoubleAt(x, y, band, v, data)
	return nil
}

// Pixel returns all bands of the pixel at (x, y).
func (m modelBase) Pixel(x, y int, dst []int, data *DataBuffer) ([]int, error) {
	if err := m.checkPixel(x, y); err != nil {
		return nil, err
	}
	dst = grow(dst, m.numBands)
	for b := range m.numBands {
		dst[b] = m.acc.sampleAt(x, y, b, data)
	}
	return dst, nil
}

// SetPixel stores all bands of the pixel at (x, y).
func (m modelBase) SetPixel(x, y int, px []int, data *DataBuffer) error {
	if err := m.checkPixel(x, y); err != nil {
		return err
	}
	if len(px) < m.numBands {
		return fmt.Errorf("%w: pixel has %d samples, want %d", ErrOutOfRange, len(px), m.numBands)
	}
	for b := range m.numBands {
		m.acc.setSampleAt(x, y, b, px[b], data)
	}
	return nil
}

// PixelDouble returns all bands of the pixel at (x, y) as float64.
func (m modelBase) PixelDouble(x, y int, dst []float64, data *DataBuffer) ([]float64, error) {
	if err := m.checkPixel(x, y); err != nil {
		return nil, err
	}
	dst = grow(dst, m.numBands)
	for b := range m.numBands {
		dst[b] = m.acc.sampleDoubleAt(x, y, b, data)
	}
	return dst, nil
}

// SetPixelDouble stores all bands of the pixel at (x, y).
func (m modelBase) SetPixelDouble(x, y int, px []float64, data *DataBuffer) error {
	if err := m.checkPixel(x, y); err != nil {
		return err
	}
	if len(px) < m.numBands {
		return fmt.Errorf("%w: pixel has %d samples, want %d", ErrOutOfRange, len(px), m.numBands)
	}
	for b := range m.numBands {
		m.acc.setSampleDoubleAt(x, y, b, px[b], data)
	}
	return nil
}

// Pixels returns the samples of the rectangle (x, y, w, h).
func (m modelBase) Pixels(x, y, w, h int, dst []int, data *DataBuffer) ([]int, error) {
	if err := m.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	dst = grow(dst, w*h*m.numBands)
	i := 0
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			for b := range m.numBands {
				dst[i] = m.acc.sampleAt(px, py, b, data)
				i++
			}
		}
	}
	return dst, nil
}

// SetPixels stores the samples of the rectangle (x, y, w, h).
func (m modelBase) SetPixels(x, y, w, h int, src []int, data *DataBuffer) error {
	if err := m.checkRect(x, y, w, h); err != nil {
		return err
	}
	if len(src) < w*h*m.numBands {
		return fmt.Errorf("%w: %d samples for %dx%d pixels", ErrOutOfRange, len(src), w, h)
	}
	i := 0
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			for b := range m.numBands {
				m.acc.setSampleAt(px, py, b, src[i], data)
				i++
			}
		}
	}
	return nil
}

// PixelsDouble returns the samples of the rectangle (x, y, w, h) as float64.
func (m modelBase) PixelsDouble(x, y, w, h int, dst []float64, data *DataBuffer) ([]float64, error) {
	if err := m.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	dst = grow(dst, w*h*m.numBands)
	i := 0
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			for b := range m.numBands {
				dst[i] = m.acc.sampleDoubleAt(px, py, b, data)
				i++
			}
		}
	}
	return dst, nil
}

// SetPixelsDouble stores the samples of the rectangle (x, y, w, h).
func (m modelBase) SetPixelsDouble(x, y, w, h int, src []float64, data *DataBuffer) error {
	if err := m.checkRect(x, y, w, h); err != nil {
		return err
	}
	if len(src) < w*h*m.numBands {
		return fmt.Errorf("%w: %d samples for %dx%d pixels", ErrOutOfRange, len(src), w, h)
	}
	i := 0
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			for b := range m.numBands {
				m.acc.setSampleDoubleAt(px, py, b, src[i], data)
				i++
			}
		}
	}
	return nil
}

// Samples returns one band of the rectangle (x, y, w, h).
func (m modelBase) Samples(x, y, w, h, band int, dst []int, data *DataBuffer) ([]int, error) {
	if err := m.checkRect(x, y, w, h); err != nil {
		return nil, err
	}
	if band < 0 || band >= m.numBands {
		return nil, outOfRange(x, y, band)
	}
	dst = grow(dst, w*h)
	i := 0
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			dst[i] = m.acc.sampleAt(px, py, band, data)
			i++
		}
	}
	return dst, nil
}

// SetSamples stores one band of the rectangle (x, y, w, h).
func (m modelBase) SetSamples(x, y, w, h, band int, src []int, data *DataBuffer) error {
	if err := m.checkRect(x, y, w, h); err != nil {
		return err
	}
	if band < 0 || band >= m.numBands {
		return outOfRange(x, y, band)
	}
	if len(src) < w*h {
		return fmt.Errorf("%w: %d samples for %dx%d pixels", ErrOutOfRange, len(src), w, h)
	}
	i := 0
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			m.acc.setSampleAt(px, py, band, src[i], data)
			i++
		}
	}
	return nil
}

// checkBandList validates a subset band list against numBands.
func checkBandList(bands []int, numBands int) error {
	if len(bands) == 0 {
		return formatError("empty band list")
	}
	if len(bands) > numBands {
		return formatError("%d bands requested from a %d band model", len(bands), numBands)
	}
	seen := make([]bool, numBands)
	for _, b := range bands {
		if b < 0 || b >= numBands {
			return formatError("band index %d outside [0,%d)", b, numBands)
		}
		if seen[b] {
			return formatError("duplicate band index %d", b)
		}
		seen[b] = true
	}
	return nil
}

// isContiguousMask reports whether mask is a single non-empty run of ones.
func isContiguousMask(mask uint32) bool {
	if mask == 0 {
		return false
	}
	for mask&1 == 0 {
		mask >>= 1
	}
	return mask&(mask+1) == 0
}
