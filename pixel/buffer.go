package pixel

import "fmt"

// DataBuffer is a flat, typed, multi-bank array of samples.
//
// Every bank has its own element offset and shares the declared size.
// Element indices passed to the accessors are relative to the bank offset.
// DataBuffer carries no addressing knowledge; that is the job of a
// [SampleModel]. Accessing an index outside a bank panics like a slice
// access does.
//
// Thread safety: DataBuffer is not synchronised. Concurrent writes to the
// same buffer require external coordination.
type DataBuffer struct {
	dataType DataType
	size     int
	offsets  []int
	store    store
}

// store is the element-kind specific half of a DataBuffer. It is selected
// once when the buffer is created so that the accessors dispatch through a
// single interface call instead of switching on the data type.
type store interface {
	numBanks() int
	bankLen(bank int) int
	elemInt(bank, i int) int
	setElemInt(bank, i, v int)
	elemDouble(bank, i int) float64
	setElemDouble(bank, i int, v float64)
	copyRange(dst store, bank, srcOff, dstOff, n int)
}

type banks[T Element] struct {
	data      [][]T
	toInt     func(T) int
	fromFloat func(float64) T
}

func (b *banks[T]) numBanks() int                        { return len(b.data) }
func (b *banks[T]) bankLen(bank int) int                 { return len(b.data[bank]) }
func (b *banks[T]) elemInt(bank, i int) int              { return b.toInt(b.data[bank][i]) }
func (b *banks[T]) setElemInt(bank, i, v int)            { b.data[bank][i] = T(v) }
func (b *banks[T]) elemDouble(bank, i int) float64       { return float64(b.data[bank][i]) }
func (b *banks[T]) setElemDouble(bank, i int, v float64) { b.data[bank][i] = b.fromFloat(v) }

func (b *banks[T]) copyRange(dst store, bank, srcOff, dstOff, n int) {
	d := dst.(*banks[T])
	copy(d.data[bank][dstOff:dstOff+n], b.data[bank][srcOff:srcOff+n])
}

func newBanks[T Element](data [][]T) *banks[T] {
	b := &banks[T]{data: data}
	switch TypeOf[T]() {
	case TypeFloat, TypeDouble:
		b.toInt = func(v T) int { return int(saturateInt32(float64(v))) }
		b.fromFloat = func(f float64) T { return T(f) }
	case TypeInt:
		b.toInt = func(v T) int { return int(v) }
		b.fromFloat = func(f float64) T { return T(saturateInt32(f)) }
	default:
		// Narrow integers keep the low bits of the saturated int32.
		b.toInt = func(v T) int { return int(v) }
		b.fromFloat = func(f float64) T { return T(int(saturateInt32(f))) }
	}
	return b
}

func allocBanks[T Element](numBanks, length int) *banks[T] {
	data := make([][]T, numBanks)
	for i := range data {
		data[i] = make([]T, length)
	}
	return newBanks(data)
}

// NewDataBuffer allocates a zeroed buffer with numBanks banks of size
// elements each.
func NewDataBuffer(dataType DataType, size, numBanks int) (*DataBuffer, error) {
	if size < 0 || numBanks < 1 {
		return nil, formatError("invalid buffer size %d with %d banks", size, numBanks)
	}
	var s store
	switch dataType {
	case TypeByte:
		s = allocBanks[uint8](numBanks, size)
	case TypeUShort:
		s = allocBanks[uint16](numBanks, size)
	case TypeShort:
		s = allocBanks[int16](numBanks, size)
	case TypeInt:
		s = allocBanks[int32](numBanks, size)
	case TypeFloat:
		s = allocBanks[float32](numBanks, size)
	case TypeDouble:
		s = allocBanks[float64](numBanks, size)
	default:
		return nil, fmt.Errorf("%w: buffer of type %v", ErrUnsupported, dataType)
	}
	return &DataBuffer{
		dataType: dataType,
		size:     size,
		offsets:  make([]int, numBanks),
		store:    s,
	}, nil
}

// Wrap creates a buffer over caller-owned banks without copying.
// offsets may be nil, meaning every bank starts at element 0.
// Every bank must satisfy offset+size <= len(bank).
func Wrap[T Element](data [][]T, size int, offsets []int) (*DataBuffer, error) {
	if len(data) == 0 {
		return nil, formatError("buffer needs at least one bank")
	}
	if offsets == nil {
		offsets = make([]int, len(data))
	} else {
		if len(offsets) != len(data) {
			return nil, formatError("%d offsets for %d banks", len(offsets), len(data))
		}
		offsets = append([]int(nil), offsets...)
	}
	if size < 0 {
		return nil, formatError("negative buffer size %d", size)
	}
	for i, bank := range data {
		if offsets[i] < 0 || offsets[i]+size > len(bank) {
			return nil, formatError("bank %d: offset %d + size %d exceeds length %d",
				i, offsets[i], size, len(bank))
		}
	}
	return &DataBuffer{
		dataType: TypeOf[T](),
		size:     size,
		offsets:  offsets,
		store:    newBanks(data),
	}, nil
}

// Banks returns the typed backing banks when T matches the buffer type.
// Offsets still apply to the returned slices.
func Banks[T Element](b *DataBuffer) ([][]T, bool) {
	s, ok := b.store.(*banks[T])
	if !ok {
		return nil, false
	}
	return s.data, true
}

// DataType returns the element type of every bank.
func (b *DataBuffer) DataType() DataType {
	return b.dataType
}

// NumBanks returns the number of banks.
func (b *DataBuffer) NumBanks() int {
	return b.store.numBanks()
}

// Size returns the number of usable elements per bank.
func (b *DataBuffer) Size() int {
	return b.size
}

// Offset returns the element offset of bank 0.
func (b *DataBuffer) Offset() int {
	return b.offsets[0]
}

// Offsets returns a copy of the per-bank element offsets.
func (b *DataBuffer) Offsets() []int {
	return append([]int(nil), b.offsets...)
}

// Elem returns element i of bank 0 as an int.
func (b *DataBuffer) Elem(i int) int {
	return b.store.elemInt(0, i+b.offsets[0])
}

// ElemBank returns element i of the given bank as an int. Unsigned types
// are zero extended, signed types sign extended and floating types
// truncated toward zero with saturation.
func (b *DataBuffer) ElemBank(bank, i int) int {
	return b.store.elemInt(bank, i+b.offsets[bank])
}

// SetElem stores v into element i of bank 0.
func (b *DataBuffer) SetElem(i, v int) {
	b.store.setElemInt(0, i+b.offsets[0], v)
}

// SetElemBank stores v into element i of the given bank, keeping the low
// bits for narrow integer types.
func (b *DataBuffer) SetElemBank(bank, i, v int) {
	b.store.setElemInt(bank, i+b.offsets[bank], v)
}

// ElemFloat returns element i of the given bank as a float32.
func (b *DataBuffer) ElemFloat(bank, i int) float32 {
	return float32(b.store.elemDouble(bank, i+b.offsets[bank]))
}

// SetElemFloat stores v into element i of the given bank.
func (b *DataBuffer) SetElemFloat(bank, i int, v float32) {
	b.store.setElemDouble(bank, i+b.offsets[bank], float64(v))
}

// ElemDouble returns element i of the given bank as a float64.
func (b *DataBuffer) ElemDouble(bank, i int) float64 {
	return b.store.elemDouble(bank, i+b.offsets[bank])
}

// SetElemDouble stores v into element i of the given bank.
func (b *DataBuffer) SetElemDouble(bank, i int, v float64) {
	b.store.setElemDouble(bank, i+b.offsets[bank], v)
}

// Clone returns a deep copy of the usable region of every bank. The copy
// has zero offsets.
func (b *DataBuffer) Clone() *DataBuffer {
	c, _ := NewDataBuffer(b.dataType, b.size, b.NumBanks())
	for bank := range b.NumBanks() {
		b.store.copyRange(c.store, bank, b.offsets[bank], 0, b.size)
	}
	return c
}
