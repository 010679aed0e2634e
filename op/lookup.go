package op

import (
	"fmt"

	"github.com/gogpu/imaging"
	"github.com/gogpu/imaging/internal/parallel"
	"github.com/gogpu/imaging/pixel"
)

// LookupTable maps sample values through one or more tables. It is
// implemented by ByteLookupTable and ShortLookupTable.
type LookupTable interface {
	// NumComponents returns the number of tables.
	NumComponents() int

	// Offset is subtracted from a sample before indexing.
	Offset() int

	// LookupPixel maps every sample of src, writing into dst when it is
	// large enough. With one table every sample uses it; otherwise sample
	// i uses table i.
	LookupPixel(src, dst []int) ([]int, error)

	lookup(band, v int) (int, error)
}

type table[T uint8 | uint16] struct {
	offset int
	data   [][]T
}

func newTable[T uint8 | uint16](offset int, data [][]T) (table[T], error) {
	if offset < 0 {
		return table[T]{}, fmt.Errorf("%w: negative lookup offset %d", pixel.ErrFormat, offset)
	}
	if len(data) == 0 {
		return table[T]{}, fmt.Errorf("%w: no lookup tables", pixel.ErrFormat)
	}
	for i, d := range data {
		if len(d) == 0 {
			return table[T]{}, fmt.Errorf("%w: lookup table %d is empty", pixel.ErrFormat, i)
		}
	}
	return table[T]{offset: offset, data: data}, nil
}

func (t table[T]) NumComponents() int { return len(t.data) }

func (t table[T]) Offset() int { return t.offset }

func (t table[T]) lookup(band, v int) (int, error) {
	d := t.data[0]
	if len(t.data) > 1 {
		d = t.data[band]
	}
	i := v - t.offset
	if i < 0 || i >= len(d) {
		return 0, fmt.Errorf("%w: sample %d of band %d outside lookup table [%d, %d)",
			pixel.ErrFormat, v, band, t.offset, t.offset+len(d))
	}
	return int(d[i]), nil
}

func (t table[T]) LookupPixel(src, dst []int) ([]int, error) {
	if len(t.data) > 1 && len(src) > len(t.data) {
		return nil, fmt.Errorf("%w: %d samples for %d tables", pixel.ErrFormat, len(src), len(t.data))
	}
	if cap(dst) < len(src) {
		dst = make([]int, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		out, err := t.lookup(i, v)
		if err != nil {
			return nil, err
		}
		dst[i] = out
	}
	return dst, nil
}

// ByteLookupTable holds 8-bit table entries.
type ByteLookupTable struct {
	table[uint8]
}

// NewByteLookupTable creates a lookup table from one table shared by all
// bands or one table per band.
func NewByteLookupTable(offset int, data ...[]uint8) (*ByteLookupTable, error) {
	t, err := newTable(offset, data)
	if err != nil {
		return nil, err
	}
	return &ByteLookupTable{t}, nil
}

// Table returns the tables. They must not be modified.
func (t *ByteLookupTable) Table() [][]uint8 { return t.data }

// ShortLookupTable holds 16-bit table entries.
type ShortLookupTable struct {
	table[uint16]
}

// NewShortLookupTable creates a lookup table from one table shared by all
// bands or one table per band.
func NewShortLookupTable(offset int, data ...[]uint16) (*ShortLookupTable, error) {
	t, err := newTable(offset, data)
	if err != nil {
		return nil, err
	}
	return &ShortLookupTable{t}, nil
}

// Table returns the tables. They must not be modified.
func (t *ShortLookupTable) Table() [][]uint16 { return t.data }

// LookupOp maps every sample through a lookup table.
//
// On rasters the table count must be 1 or the band count. On images it must
// be 1 or the number of color components, leaving alpha unchanged, or the
// number of components including alpha.
type LookupOp struct {
	table LookupTable
	opts  options
}

// NewLookupOp creates a lookup operator.
func NewLookupOp(t LookupTable, opts ...Option) (*LookupOp, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil lookup table", pixel.ErrFormat)
	}
	return &LookupOp{table: t, opts: newOptions(opts)}, nil
}

// Kind implements imaging.Operation.
func (o *LookupOp) Kind() imaging.OpKind { return imaging.OpLookup }

// Table returns the lookup table.
func (o *LookupOp) Table() LookupTable { return o.table }

// FilterRaster looks up every band of src into dst, allocating a
// compatible dst when nil. src and dst may be the same raster.
func (o *LookupOp) FilterRaster(src, dst *pixel.Raster) (*pixel.Raster, error) {
	nb := src.NumBands()
	if n := o.table.NumComponents(); n != 1 && n != nb {
		return nil, fmt.Errorf("%w: %d lookup tables for %d bands", pixel.ErrFormat, n, nb)
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
	return dst, lookupRaster(o.table, s, d, o.opts.parallelism)
}

// FilterImage looks up the samples of src into dst, allocating a
// compatible dst when nil.
func (o *LookupOp) FilterImage(src, dst *imaging.Image) (*imaging.Image, error) {
	withAlpha, err := componentRule(o.table.NumComponents(), src, "lookup tables")
	if err != nil {
		return nil, err
	}
	if dst != nil && imaging.AccelerateImage(o.opts.accelerator(), o, src, dst) {
		return dst, nil
	}
	return filterImageBands(src, dst, withAlpha, o.opts, func(s, d *pixel.Raster) error {
		return lookupRaster(o.table, s, d, o.opts.parallelism)
	})
}

// componentRule checks a factor or table count n against the components
// of img. It reports whether alpha is included.
func componentRule(n int, img *imaging.Image, what string) (withAlpha bool, err error) {
	cm := img.Model()
	switch {
	case n == 1 || n == cm.NumColorComponents():
		return false, nil
	case n == cm.NumComponents():
		return true, nil
	}
	return false, fmt.Errorf("%w: %d %s for %d color components (%d with alpha)",
		pixel.ErrFormat, n, what, cm.NumColorComponents(), cm.NumComponents())
}

// lookupRaster maps every sample of s into d. Both have origin (0, 0) and
// the same size.
func lookupRaster(t LookupTable, s, d *pixel.Raster, workers int) error {
	w, nb := s.Width(), s.NumBands()
	return parallel.Rows(s.Height(), workers, func(y0, y1 int) error {
		var row []int
		for y := y0; y < y1; y++ {
			var err error
			if row, err = s.Pixels(0, y, w, 1, row); err != nil {
				return err
			}
			for i, v := range row {
				if row[i], err = t.lookup(i%nb, v); err != nil {
					return err
				}
			}
			if err := d.SetPixels(0, y, w, 1, row); err != nil {
				return err
			}
		}
		return nil
	})
}
