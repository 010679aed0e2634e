package op

import (
	"math"

	"golang.org/x/image/math/f64"
)

// An affine matrix is an f64.Aff3 holding the first two rows of
//
//	| a  b  c |
//	| d  e  f |
//	| 0  0  1 |
//
// so that x' = a*x + b*y + c and y' = d*x + e*y + f.

// Identity returns the identity transform.
func Identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

// Scale returns a scale by (sx, sy) around the origin.
func Scale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

// Rotate returns a rotation by angle radians around the origin. With y
// pointing down, positive angles turn clockwise on screen.
func Rotate(angle float64) f64.Aff3 {
	sin, cos := math.Sincos(angle)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// Shear returns a shear with horizontal factor sx and vertical factor sy.
func Shear(sx, sy float64) f64.Aff3 {
	return f64.Aff3{1, sx, 0, sy, 1, 0}
}

// Multiply returns m*n: n applied first, then m.
func Multiply(m, n f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Determinant returns the determinant of the linear part of m.
func Determinant(m f64.Aff3) float64 {
	return m[0]*m[4] - m[1]*m[3]
}

// invert returns the inverse of m. ok is false when the determinant is
// below float64 machine epsilon in magnitude or not finite.
func invert(m f64.Aff3) (inv f64.Aff3, ok bool) {
	det := Determinant(m)
	if math.Abs(det) < epsilon || math.IsNaN(det) || math.IsInf(det, 0) {
		return f64.Aff3{}, false
	}
	d := 1 / det
	return f64.Aff3{
		m[4] * d,
		-m[1] * d,
		(m[1]*m[5] - m[2]*m[4]) * d,
		-m[3] * d,
		m[0] * d,
		(m[2]*m[3] - m[0]*m[5]) * d,
	}, true
}

// epsilon is the float64 machine epsilon, 2^-52.
const epsilon = 0x1p-52

// transformPoint applies m to (x, y).
func transformPoint(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// isIntegralScale reports whether m only translates and scales by whole
// factors.
func isIntegralScale(m f64.Aff3) bool {
	if m[1] != 0 || m[3] != 0 {
		return false
	}
	return m[0] == math.Trunc(m[0]) && m[4] == math.Trunc(m[4])
}
