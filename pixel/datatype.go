package pixel

// DataType identifies the primitive element type of a buffer bank or a
// transfer array.
type DataType uint8

const (
	// TypeUndefined is the zero value and never valid for storage.
	TypeUndefined DataType = iota

	// TypeByte is an unsigned 8-bit element.
	TypeByte

	// TypeUShort is an unsigned 16-bit element.
	TypeUShort

	// TypeShort is a signed 16-bit element.
	TypeShort

	// TypeInt is a signed 32-bit element.
	TypeInt

	// TypeFloat is a 32-bit IEEE float element.
	TypeFloat

	// TypeDouble is a 64-bit IEEE float element.
	TypeDouble

	dataTypeCount
)

var dataTypeBits = [dataTypeCount]int{
	TypeByte:   8,
	TypeUShort: 16,
	TypeShort:  16,
	TypeInt:    32,
	TypeFloat:  32,
	TypeDouble: 64,
}

// Bits returns the element width in bits, or 0 for an invalid type.
func (t DataType) Bits() int {
	if t >= dataTypeCount {
		return 0
	}
	return dataTypeBits[t]
}

// IsValid reports whether t is a storage type.
func (t DataType) IsValid() bool {
	return t > TypeUndefined && t < dataTypeCount
}

// IsIntegral reports whether t stores integers.
func (t DataType) IsIntegral() bool {
	return t >= TypeByte && t <= TypeInt
}

// IsFloating reports whether t stores floating point values.
func (t DataType) IsFloating() bool {
	return t == TypeFloat || t == TypeDouble
}

// String returns a string representation of the data type.
func (t DataType) String() string {
	switch t {
	case TypeByte:
		return "Byte"
	case TypeUShort:
		return "UShort"
	case TypeShort:
		return "Short"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	default:
		return "Undefined"
	}
}

// Element is the set of Go types that back a bank. Each type maps to
// exactly one DataType.
type Element interface {
	uint8 | uint16 | int16 | int32 | float32 | float64
}

// TypeOf returns the DataType backed by the Go element type T.
func TypeOf[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return TypeByte
	case uint16:
		return TypeUShort
	case int16:
		return TypeShort
	case int32:
		return TypeInt
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	}
	return TypeUndefined
}

// saturateInt32 converts f to int32 the way a checked float-to-int cast
// does: NaN becomes 0 and out-of-range values saturate.
func saturateInt32(f float64) int32 {
	switch {
	case f != f:
		return 0
	case f >= 2147483647:
		return 2147483647
	case f <= -2147483648:
		return -2147483648
	}
	return int32(f)
}
