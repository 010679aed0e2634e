package pixel

import "fmt"

// NewTransferArray allocates a transfer array of n elements for the given
// type: []uint8, []uint16, []int16, []int32, []float32 or []float64.
func NewTransferArray(t DataType, n int) (any, error) {
	switch t {
	case TypeByte:
		return make([]uint8, n), nil
	case TypeUShort:
		return make([]uint16, n), nil
	case TypeShort:
		return make([]int16, n), nil
	case TypeInt:
		return make([]int32, n), nil
	case TypeFloat:
		return make([]float32, n), nil
	case TypeDouble:
		return make([]float64, n), nil
	}
	return nil, fmt.Errorf("%w: transfer type %v", ErrUnsupported, t)
}

// TransferType reports the DataType of a transfer array and its length.
func TransferType(obj any) (DataType, int) {
	switch a := obj.(type) {
	case []uint8:
		return TypeByte, len(a)
	case []uint16:
		return TypeUShort, len(a)
	case []int16:
		return TypeShort, len(a)
	case []int32:
		return TypeInt, len(a)
	case []float32:
		return TypeFloat, len(a)
	case []float64:
		return TypeDouble, len(a)
	}
	return TypeUndefined, 0
}

// EnsureTransferArray returns obj when it is a transfer array of type t
// holding at least n elements, or a new one when obj is nil.
func EnsureTransferArray(obj any, t DataType, n int) (any, error) {
	if obj == nil {
		return NewTransferArray(t, n)
	}
	got, l := TransferType(obj)
	if got != t {
		return nil, fmt.Errorf("%w: transfer array %T, want %v", ErrFormat, obj, t)
	}
	if l < n {
		return nil, fmt.Errorf("%w: transfer array holds %d elements, want %d", ErrOutOfRange, l, n)
	}
	return obj, nil
}

// TransferInt returns element i of a transfer array as an int with the
// same coercion rules as [DataBuffer.ElemBank].
func TransferInt(obj any, i int) int {
	switch a := obj.(type) {
	case []uint8:
		return int(a[i])
	case []uint16:
		return int(a[i])
	case []int16:
		return int(a[i])
	case []int32:
		return int(a[i])
	case []float32:
		return int(saturateInt32(float64(a[i])))
	case []float64:
		return int(saturateInt32(a[i]))
	}
	panic(fmt.Sprintf("pixel: %T is not a transfer array", obj))
}

// SetTransferInt stores v into element i of a transfer array.
func SetTransferInt(obj any, i, v int) {
	switch a := obj.(type) {
	case []uint8:
		a[i] = uint8(v)
	case []uint16:
		a[i] = uint16(v)
	case []int16:
		a[i] = int16(v)
	case []int32:
		a[i] = int32(v)
	case []float32:
		a[i] = float32(v)
	case []float64:
		a[i] = float64(v)
	default:
		panic(fmt.Sprintf("pixel: %T is not a transfer array", obj))
	}
}

// TransferDouble returns element i of a transfer array as a float64.
func TransferDouble(obj any, i int) float64 {
	switch a := obj.(type) {
	case []uint8:
		return float64(a[i])
	case []uint16:
		return float64(a[i])
	case []int16:
		return float64(a[i])
	case []int32:
		return float64(a[i])
	case []float32:
		return float64(a[i])
	case []float64:
		return a[i]
	}
	panic(fmt.Sprintf("pixel: %T is not a transfer array", obj))
}

// SetTransferDouble stores v into element i of a transfer array,
// truncating with saturation for integer types.
func SetTransferDouble(obj any, i int, v float64) {
	switch a := obj.(type) {
	case []uint8:
		a[i] = uint8(saturateInt32(v))
	case []uint16:
		a[i] = uint16(saturateInt32(v))
	case []int16:
		a[i] = int16(saturateInt32(v))
	case []int32:
		a[i] = saturateInt32(v)
	case []float32:
		a[i] = float32(v)
	case []float64:
		a[i] = v
	default:
		panic(fmt.Sprintf("pixel: %T is not a transfer array", obj))
	}
}
