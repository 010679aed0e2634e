// Package imaging is the pixel storage and color transform layer of a 2D
// imaging toolkit.
//
// # Overview
//
// The module separates how samples are addressed from what they mean:
//
//   - [github.com/gogpu/imaging/pixel] lays samples out in flat buffers
//     (pixel interleaved, banded, bit packed) behind the SampleModel
//     contract and wraps them in a Raster.
//   - [github.com/gogpu/imaging/colormodel] interprets the samples of a
//     pixel as color, converting to and from sRGB.
//   - [github.com/gogpu/imaging/colorspace] provides color spaces, ICC
//     profile headers and the color management module contract.
//   - [github.com/gogpu/imaging/op] applies affine, rescale, lookup and
//     color conversion operators to rasters and images.
//   - [github.com/gogpu/imaging/producer] pushes image data to consumers.
//
// This package joins a raster and a color model into an [Image], which
// implements [image.Image] and [draw.Image].
//
// # Quick Start
//
//	img, err := imaging.NewImageOfType(imaging.TypeIntARGB, 640, 480)
//	if err != nil {
//	    return err
//	}
//	img.Set(10, 10, color.NRGBA{R: 255, A: 255})
//
//	scale, _ := op.NewRescaleOp([]float32{2}, []float32{10})
//	dst, err := scale.FilterImage(img, nil)
//
// # Acceleration
//
// Operators first offer work to an optional [Accelerator]. An accelerator
// that returns [ErrNotAccelerated] hands the work back to the portable
// implementation, which remains the reference for correctness:
//
//	import _ "github.com/gogpu/imaging/accel/ximage"
//
// # Logging
//
// Nothing is logged by default. See [SetLogger].
package imaging
