package colormodel

import (
	"fmt"

	"github.com/gogpu/imaging/pixel"
)

// coerceRaster multiplies (premultiplied true) or divides the first
// numColor bands of every pixel of r by the normalized alpha held in band
// numColor. Zero alpha clears the color samples when multiplying and
// leaves them untouched when dividing. Integral results round half up and
// are clamped to maxValues.
func coerceRaster(r *pixel.Raster, numColor int, maxValues []int, premultiplied bool) error {
	nb := r.NumBands()
	if nb != numColor+1 {
		return fmt.Errorf("%w: raster has %d bands, color model %d", pixel.ErrFormat, nb, numColor+1)
	}
	if r.DataType().IsFloating() {
		return coerceRasterFloat(r, numColor, premultiplied)
	}
	aMax := float32(maxValues[numColor])
	x0, w := r.MinX(), r.Width()
	var row []int
	for y := r.MinY(); y < r.MinY()+r.Height(); y++ {
		var err error
		if row, err = r.Pixels(x0, y, w, 1, row); err != nil {
			return err
		}
		for x := range w {
			px := row[x*nb : (x+1)*nb]
			a := float32(px[numColor]) / aMax
			switch {
			case premultiplied && a == 0:
				clear(px[:numColor])
			case premultiplied && a != 1:
				for c := range numColor {
					px[c] = int(float32(px[c])*a + 0.5)
				}
			case !premultiplied && a != 0 && a != 1:
				inv := 1 / a
				for c := range numColor {
					px[c] = min(int(float32(px[c])*inv+0.5), maxValues[c])
				}
			}
		}
		if err := r.SetPixels(x0, y, w, 1, row); err != nil {
			return err
		}
	}
	return nil
}

func coerceRasterFloat(r *pixel.Raster, numColor int, premultiplied bool) error {
	nb := r.NumBands()
	x0, w := r.MinX(), r.Width()
	var row []float64
	for y := r.MinY(); y < r.MinY()+r.Height(); y++ {
		var err error
		if row, err = r.PixelsDouble(x0, y, w, 1, row); err != nil {
			return err
		}
		for x := range w {
			px := row[x*nb : (x+1)*nb]
			a := px[numColor]
			switch {
			case premultiplied:
				for c := range numColor {
					px[c] *= a
				}
			case a != 0:
				for c := range numColor {
					px[c] /= a
				}
			}
		}
		if err := r.SetPixelsDouble(x0, y, w, 1, row); err != nil {
			return err
		}
	}
	return nil
}
