package op

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/internal/parallel"
	"github.com/gogpu/imaging/pixel"
)

// RescaleOp computes dst = src*scale + offset per band, clamping integral
// results to [0, 2^bits-1] of the destination band and truncating.
//
// On rasters the factor count must be 1 or the band count. On images it
// must be 1 or the number of color components, leaving alpha unchanged, or
// the number of components including alpha.
//
// When the source has at most 16 unsigned bits per sample and every
// destination band has 8 or 16 unsigned bits, the factors are baked into a
// lookup table once and the samples go through LookupOp.
type RescaleOp struct {
	scales  []float32
	offsets []float32
	opts    options
}

// NewRescaleOp creates a rescale operator. scales and offsets must have
// the same non-zero length.
func NewRescaleOp(scales, offsets []float32, opts ...Option) (*RescaleOp, error) {
	if len(scales) == 0 || len(scales) != len(offsets) {
		return nil, fmt.Errorf("%w: %d scale factors and %d offsets", pixel.ErrFormat, len(scales), len(offsets))
	}
	return &RescaleOp{scales: slices.Clone(scales), offsets: slices.Clone(offsets), opts: newOptions(opts)}, nil
}

// Kind implements imaging.Operation.
func (o *RescaleOp) Kind() imaging.OpKind { return imaging.OpRescale }

// NumFactors returns the number of scale and offset pairs.
func (o *RescaleOp) NumFactors() int { return len(o.scales) }

// ScaleFactors returns a copy of the scale factors.
func (o *RescaleOp) ScaleFactors() []float32 { return slices.Clone(o.scales) }

// Offsets returns a copy of the offsets.
func (o *RescaleOp) Offsets() []float32 { return slices.Clone(o.offsets) }

// FilterRaster rescales every band of src into dst, allocating a
// compatible dst when nil. src and dst may be the same raster.
func (o *RescaleOp) FilterRaster(src, dst *pixel.Raster) (*pixel.Raster, error) {
	nb := src.NumBands()
	if n := len(o.scales); n != 1 && n != nb {
		return nil, fmt.Errorf("%w: %d rescale factors for %d bands", pixel.ErrFormat, n, nb)
	}
	var err error
	if dst == nil {
		if dst, err = src.CompatibleRaster(src.Width(), src.Height()); err != nil {
			return nil, err
		}
	}
	if dst.NumBands() != nb {
		return nil, fmt.Errorf("%w: source has %d bands, destination %d", pixel.ErrFormat, nb, dst.NumBands())
	}
	if imaging.AccelerateRaster(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}
	s, d, err := commonViews(src, dst)
	if err != nil {
		return nil, err
	}
	return dst, o.rescale(s, d, o.scales, o.offsets)
}

// FilterImage rescales the samples of src into dst, allocating a
// compatible dst when nil.
func (o *RescaleOp) FilterImage(src, dst *imaging.Image) (*imaging.Image, error) {
	withAlpha, err := componentRule(len(o.scales), src, "rescale factors")
	if err != nil {
		return nil, err
	}
	if dst != nil && imaging.AccelerateImage(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}
	return filterImageBands(src, dst, withAlpha, o.opts, func(s, d *pixel.Raster) error {
		return o.rescale(s, d, o.scales, o.offsets)
	})
}

func (o *RescaleOp) rescale(s, d *pixel.Raster, scales, offsets []float32) error {
	if srcBits, dstBits, ok := lookupBits(s, d); ok {
		imaging.Logger().Debug("op: rescale through lookup table", "srcBits", srcBits, "dstBits", dstBits)
		return lookupRaster(rescaleTable(scales, offsets, srcBits, dstBits), s, d, o.opts.parallelism)
	}
	return rescaleRaster(s, d, scales, offsets, o.opts.parallelism)
}

// lookupBits reports whether the lookup table path applies and the sample
// depths it needs.
func lookupBits(s, d *pixel.Raster) (srcBits, dstBits int, ok bool) {
	unsigned := func(t pixel.DataType) bool {
		return t == pixel.TypeByte || t == pixel.TypeUShort || t == pixel.TypeInt
	}
	ssm, dsm := s.SampleModel(), d.SampleModel()
	if !unsigned(s.DataType()) || !unsigned(d.DataType()) {
		return 0, 0, false
	}
	for b := range s.NumBands() {
		srcBits = max(srcBits, ssm.SampleSize(b))
	}
	dstBits = dsm.SampleSize(0)
	for b := range d.NumBands() {
		if dsm.SampleSize(b) != dstBits {
			return 0, 0, false
		}
	}
	if srcBits > 16 || (dstBits != 8 && dstBits != 16) {
		return 0, 0, false
	}
	return srcBits, dstBits, true
}

// rescaleTable bakes int(i*scale + offset), clamped to the destination
// range, for every source value.
func rescaleTable(scales, offsets []float32, srcBits, dstBits int) LookupTable {
	size := 1 << srcBits
	hi := 1<<dstBits - 1
	entry := func(b, i int) int {
		return clampInt(int(float32(i)*scales[b]+offsets[b]), 0, hi)
	}
	if dstBits == 8 {
		data := make([][]uint8, len(scales))
		for b := range data {
			data[b] = make([]uint8, size)
			for i := range size {
				data[b][i] = uint8(entry(b, i))
			}
		}
		return &ByteLookupTable{table[uint8]{data: data}}
	}
	data := make([][]uint16, len(scales))
	for b := range data {
		data[b] = make([]uint16, size)
		for i := range size {
			data[b][i] = uint16(entry(b, i))
		}
	}
	return &ShortLookupTable{table[uint16]{data: data}}
}

// rescaleRaster evaluates the factors per sample in float32.
func rescaleRaster(s, d *pixel.Raster, scales, offsets []float32, workers int) error {
	w, nb := s.Width(), s.NumBands()
	floating := d.DataType().IsFloating()
	hi := make([]float32, nb)
	for b := range hi {
		bits := d.SampleModel().SampleSize(b)
		hi[b] = float32(math.MaxInt32)
		if bits < 32 {
			hi[b] = float32(int(1)<<bits - 1)
		}
		if d.DataType() == pixel.TypeShort {
			hi[b] = math.MaxInt16
		}
	}
	return parallel.Rows(s.Height(), workers, func(y0, y1 int) error {
		var row []float64
		for y := y0; y < y1; y++ {
			var err error
			if row, err = s.PixelsDouble(0, y, w, 1, row); err != nil {
				return err
			}
			for i, v := range row {
				b := i % nb
				k := b
				if len(scales) == 1 {
					k = 0
				}
				r := float32(v)*scales[k] + offsets[k]
				if !floating {
					r = float32(math.Trunc(float64(min(max(r, 0), hi[b]))))
				}
				row[i] = float64(r)
			}
			if err := d.SetPixelsDouble(0, y, w, 1, row); err != nil {
				return err
			}
		}
		return nil
	})
}
