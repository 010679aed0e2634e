package op

import (
	"fmt"
	"math"
)

// Interpolation selects how an affine transform samples its source.
type Interpolation uint8

const (
	// NearestNeighbor copies the sample whose pixel contains the mapped
	// point.
	NearestNeighbor Interpolation = iota + 1

	// Bilinear blends the 2x2 neighbourhood around the mapped point.
	Bilinear

	// Bicubic applies a Catmull-Rom spline over the 4x4 neighbourhood.
	Bicubic
)

func (i Interpolation) String() string {
	switch i {
	case NearestNeighbor:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	}
	return fmt.Sprintf("Interpolation(%d)", i)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// cubicWeight is the Catmull-Rom kernel (a = -0.5) at distance t.
func cubicWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t < 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	}
	return 0
}

// cubicWeights returns the four kernel taps for fractional offset f from
// the sample at index 1.
func cubicWeights(f float64) [4]float64 {
	return [4]float64{cubicWeight(1 + f), cubicWeight(f), cubicWeight(1 - f), cubicWeight(2 - f)}
}
