// Package color provides sRGB transfer curves and the lookup tables used by
// the packed color model fast paths for linear RGB.
//
// The 8-bit tables are built at init. The 16-bit to 8-bit table has 65536
// entries and is built on first use.
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
package color

import (
	"math"
	"sync"
)

// sRGBToLinearLUT converts sRGB byte [0-255] to linear float32 [0.0-1.0].
var sRGBToLinearLUT [256]float32

// 8-bit code conversions between the sRGB and linear encodings.
var (
	linear8ToSRGB8  [256]uint8
	sRGB8ToLinear8  [256]uint8
	sRGB8ToLinear16 [256]uint16
)

var (
	linear16Once    sync.Once
	linear16ToSRGB8 []uint8
)

func init() {
	for i := range 256 {
		s := float64(i) / 255.0
		linear := srgbDecode(s)
		sRGBToLinearLUT[i] = float32(linear)
		sRGB8ToLinear8[i] = uint8(linear*255.0 + 0.5)
		sRGB8ToLinear16[i] = uint16(linear*65535.0 + 0.5)
		linear8ToSRGB8[i] = uint8(srgbEncode(s)*255.0 + 0.5)
	}
}

func srgbDecode(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func srgbEncode(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

// SRGBToLinearFast converts sRGB byte to linear float32 using lookup table.
//
// Example:
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// Linear8ToSRGB8 re-encodes an 8-bit linear code as an 8-bit sRGB code.
func Linear8ToSRGB8(v uint8) uint8 {
	return linear8ToSRGB8[v]
}

// SRGB8ToLinear8 re-encodes an 8-bit sRGB code as an 8-bit linear code.
func SRGB8ToLinear8(v uint8) uint8 {
	return sRGB8ToLinear8[v]
}

// SRGB8ToLinear16 re-encodes an 8-bit sRGB code as a 16-bit linear code.
func SRGB8ToLinear16(v uint8) uint16 {
	return sRGB8ToLinear16[v]
}

// Linear16ToSRGB8 re-encodes a 16-bit linear code as an 8-bit sRGB code.
func Linear16ToSRGB8(v uint16) uint8 {
	linear16Once.Do(func() {
		linear16ToSRGB8 = make([]uint8, 65536)
		for i := range linear16ToSRGB8 {
			linear16ToSRGB8[i] = uint8(srgbEncode(float64(i)/65535.0)*255.0 + 0.5)
		}
	})
	return linear16ToSRGB8[v]
}
